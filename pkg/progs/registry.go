package progs

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/crystal-mush/goqwsv/pkg/metrics"
)

// NumBuiltins is the number of builtin ids the interpreter may call.
const NumBuiltins = 107

// BuiltinFunc is the handler signature for builtins.
type BuiltinFunc func(c *Context) error

// Builtin is one entry of the builtin table.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

// builtinTable is indexed by builtin id. The ids are part of the compiled
// progs ABI and never move.
var builtinTable = [...]Builtin{
	{"fixme", fnFixme},
	{"makevectors", fnMakeVectors},
	{"setorigin", fnSetOrigin},
	{"setmodel", fnSetModel},
	{"setsize", fnSetSize},
	{"fixme", fnFixme},
	{"break", fnBreak},
	{"random", fnRandom},
	{"sound", fnSound},
	{"normalize", fnNormalize},
	{"error", fnError},
	{"objerror", fnObjError},
	{"vlen", fnVlen},
	{"vectoyaw", fnVecToYaw},
	{"spawn", fnSpawn},
	{"remove", fnRemove},
	{"traceline", fnTraceLine},
	{"checkclient", fnCheckClient},
	{"find", fnFind},
	{"precache_sound", fnPrecacheSound},
	{"precache_model", fnPrecacheModel},
	{"stuffcmd", fnStuffCmd},
	{"findradius", fnFindRadius},
	{"bprint", fnBprint},
	{"sprint", fnSprint},
	{"dprint", fnDprint},
	{"ftos", fnFtos},
	{"vtos", fnVtos},
	{"coredump", fnCoreDump},
	{"traceon", fnTraceOn},
	{"traceoff", fnTraceOff},
	{"eprint", fnEprint},
	{"walkmove", fnWalkMove},
	{"fixme", fnFixme},
	{"droptofloor", fnDropToFloor},
	{"lightstyle", fnLightStyle},
	{"rint", fnRint},
	{"floor", fnFloor},
	{"ceil", fnCeil},
	{"fixme", fnFixme},
	{"checkbottom", fnCheckBottom},
	{"pointcontents", fnPointContents},
	{"fixme", fnFixme},
	{"fabs", fnFabs},
	{"aim", fnAim},
	{"cvar", fnCvar},
	{"localcmd", fnLocalCmd},
	{"nextent", fnNextEnt},
	{"fixme", fnFixme},
	{"changeyaw", fnChangeYaw},
	{"fixme", fnFixme},
	{"vectoangles", fnVecToAngles},
	{"WriteByte", fnWriteByte},
	{"WriteChar", fnWriteChar},
	{"WriteShort", fnWriteShort},
	{"WriteLong", fnWriteLong},
	{"WriteCoord", fnWriteCoord},
	{"WriteAngle", fnWriteAngle},
	{"WriteString", fnWriteString},
	{"WriteEntity", fnWriteEntity},
	{"sin", fnSin},
	{"cos", fnCos},
	{"sqrt", fnSqrt},
	{"min", fnMin},
	{"max", fnMax},
	{"fixme", fnFixme},
	{"fixme", fnFixme},
	{"movetogoal", fnMoveToGoal},
	{"precache_file", fnPrecacheFile},
	{"makestatic", fnMakeStatic},
	{"changelevel", fnChangeLevel},
	{"fixme", fnFixme},
	{"cvar_set", fnCvarSet},
	{"centerprint", fnCenterPrint},
	{"ambientsound", fnAmbientSound},
	{"precache_model2", fnPrecacheModel},
	{"precache_sound2", fnPrecacheSound},
	{"precache_file2", fnPrecacheFile},
	{"setspawnparms", fnSetSpawnParms},
	{"logfrag", fnLogFrag},
	{"infokey", fnInfoKey},
	{"stof", fnStof},
	{"multicast", fnMulticast},
	{"executecmd", fnExecuteCmd},
	{"tokanize", fnTokanize},
	{"argc", fnArgc},
	{"argv", fnArgv},
	{"teamfield", fnTeamField},
	{"substr", fnSubstr},
	{"strcat", fnStrcat},
	{"strlen", fnStrlen},
	{"str2byte", fnStr2Byte},
	{"str2short", fnStr2Short},
	{"newstr", fnNewStr},
	{"freestr", fnFreeStr},
	{"conprint", fnConPrint},
	{"readcmd", fnReadCmd},
	{"strcpy", fnStrcpy},
	{"strstr", fnStrstr},
	{"strncpy", fnStrncpy},
	{"log", fnLog},
	{"redirectcmd", fnRedirectCmd},
	{"calltimeofday", fnCallTimeOfDay},
	{"forcedemoframe", fnForceDemoFrame},
	{"findmap", fnFindMap},
	{"listmaps", fnListMaps},
	{"findmapname", fnFindMapName},
}

// The table must have exactly NumBuiltins entries.
var _ = [1]int{}[len(builtinTable)-NumBuiltins]

// Registry dispatches builtin calls by id.
type Registry struct {
	table [NumBuiltins]Builtin
}

func NewRegistry() *Registry {
	return &Registry{table: builtinTable}
}

// Lookup returns the builtin with the given id.
func (r *Registry) Lookup(id int) (Builtin, bool) {
	if id < 0 || id >= len(r.table) {
		return Builtin{}, false
	}
	return r.table[id], true
}

// Find returns the id of the first builtin named name, ignoring case.
func (r *Registry) Find(name string) (int, bool) {
	for id, b := range r.table {
		if strings.EqualFold(b.Name, name) {
			return id, true
		}
	}
	return 0, false
}

// Call runs builtin id with argc parameters already loaded into c's
// globals. Faults are logged and counted, then returned: a *FatalError
// means the server must stop, any other error aborts only the script.
func (r *Registry) Call(c *Context, id, argc int) error {
	b, ok := r.Lookup(id)
	if !ok {
		err := &RunError{Msg: fmt.Sprintf("bad builtin call number %d", id)}
		return r.fault(c, err)
	}
	if argc < 0 || argc > MaxParms {
		err := &RunError{Builtin: b.Name, Msg: fmt.Sprintf("called with %d parameters", argc)}
		return r.fault(c, err)
	}
	c.Argc = argc
	c.Metrics.BuiltinCall(b.Name)
	err := b.Fn(c)
	if err == nil {
		return nil
	}
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return r.fault(c, err)
	}
	var re *RunError
	if !errors.As(err, &re) {
		re = &RunError{Err: err}
		err = re
	}
	if re.Builtin == "" {
		re.Builtin = b.Name
	}
	return r.fault(c, err)
}

func (r *Registry) fault(c *Context, err error) error {
	var fatal *FatalError
	if errors.As(err, &fatal) {
		log.Printf("progs: fatal: %v", err)
		c.Metrics.BuiltinFault(metrics.SeverityProcess)
		return err
	}
	log.Printf("progs: %v", err)
	c.Metrics.BuiltinFault(metrics.SeverityScript)
	return err
}

func fnFixme(c *Context) error {
	return runErrorf("unimplemented builtin")
}
