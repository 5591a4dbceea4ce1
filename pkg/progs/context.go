// Package progs is the builtin function layer the game-logic interpreter
// calls into: argument decoding from the interpreter's global slots, the
// numbered builtin table, and the builtins themselves.
package progs

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/crystal-mush/goqwsv/pkg/console"
	"github.com/crystal-mush/goqwsv/pkg/metrics"
	"github.com/crystal-mush/goqwsv/pkg/route"
	"github.com/crystal-mush/goqwsv/pkg/strtab"
)

// Global slot layout shared with the interpreter. Every parameter occupies
// ParmSize cells so that a vector fits in one parameter.
const (
	OfsReturn = 1
	OfsParm0  = 4
	ParmSize  = 3
	MaxParms  = 8
	NumSlots  = OfsParm0 + MaxParms*ParmSize

	NumSpawnParms = 16
)

// Vec3 is a script vector.
type Vec3 [3]float32

// Trace is the result of a traceline, copied into the trace_* globals.
type Trace struct {
	AllSolid    bool
	StartSolid  bool
	InOpen      bool
	InWater     bool
	Fraction    float32
	EndPos      Vec3
	PlaneNormal Vec3
	PlaneDist   float32
	Ent         int
}

// Globals are the interpreter globals builtins read and write. Slots holds
// the raw return and parameter cells; the named fields are the system
// globals the interpreter shares with the server.
type Globals struct {
	Slots [NumSlots]uint32

	Self      int
	Other     int
	MsgEntity int
	Time      float32

	VForward Vec3
	VRight   Vec3
	VUp      Vec3

	Parms [NumSpawnParms]float32
	Trace Trace
}

// Context is the per-server state every builtin runs against. A Context is
// reused across calls; Argc is set by Registry.Call before each one.
type Context struct {
	G    *Globals
	Argc int

	Strings  *strtab.Manager
	Router   *route.Router
	Console  *console.Console
	Assets   *Assets
	Metrics  *metrics.Metrics
	Rand     *rand.Rand
	Now      func() time.Time
	Maps     MapLister
	Entities Entities
	Physics  Physics
	World    Visibility
	VM       Interpreter
	Host     Host
	Frags    FragLogger
	Logs     ModLogger

	// Tokens holds the last tokanize result.
	Tokens *console.Args
	// TeamField is the entity field offset the mod declared with teamfield.
	TeamField int

	lastChangelevel int
}

// NewContext returns a context with fresh globals, a seeded random source
// and wall-clock time. Entity, physics, visibility, interpreter and host
// collaborators start detached and are replaced by the caller.
func NewContext(strs *strtab.Manager, r *route.Router, con *console.Console) *Context {
	return &Context{
		G:               &Globals{},
		Strings:         strs,
		Router:          r,
		Console:         con,
		Assets:          NewAssets(),
		Rand:            rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Now:             time.Now,
		Entities:        detached{},
		Physics:         detached{},
		World:           detached{},
		VM:              detached{},
		Host:            detached{},
		Tokens:          console.Tokenize(""),
		lastChangelevel: -1,
	}
}

func parmOfs(n int) int { return OfsParm0 + n*ParmSize }

// Float returns parameter n as a float.
func (c *Context) Float(n int) float32 {
	return math.Float32frombits(c.G.Slots[parmOfs(n)])
}

// Int returns parameter n reinterpreted as an integer cell.
func (c *Context) Int(n int) int32 {
	return int32(c.G.Slots[parmOfs(n)])
}

// Vector returns parameter n as a vector.
func (c *Context) Vector(n int) Vec3 {
	o := parmOfs(n)
	return Vec3{
		math.Float32frombits(c.G.Slots[o]),
		math.Float32frombits(c.G.Slots[o+1]),
		math.Float32frombits(c.G.Slots[o+2]),
	}
}

// Entity returns parameter n as an entity number.
func (c *Context) Entity(n int) int { return int(c.Int(n)) }

// String resolves parameter n through the string manager.
func (c *Context) String(n int) (string, error) {
	s, err := c.Strings.ResolveRaw(c.Int(n))
	if err != nil {
		return "", &RunError{Msg: fmt.Sprintf("parm %d", n), Err: err}
	}
	return s, nil
}

// VarString concatenates parameters first..Argc-1, capped at one scratch
// buffer.
func (c *Context) VarString(first int) (string, error) {
	var out []byte
	for i := first; i < c.Argc; i++ {
		s, err := c.String(i)
		if err != nil {
			return "", err
		}
		out = append(out, s...)
		if len(out) >= strtab.ScratchSize-1 {
			return string(out[:strtab.ScratchSize-1]), nil
		}
	}
	return string(out), nil
}

// ReturnFloat stores f in the return slot.
func (c *Context) ReturnFloat(f float32) {
	c.G.Slots[OfsReturn] = math.Float32bits(f)
}

// ReturnBool stores 1 or 0.
func (c *Context) ReturnBool(b bool) {
	if b {
		c.ReturnFloat(1)
		return
	}
	c.ReturnFloat(0)
}

// ReturnInt stores a raw integer cell.
func (c *Context) ReturnInt(v int32) {
	c.G.Slots[OfsReturn] = uint32(v)
}

// ReturnEntity stores an entity number.
func (c *Context) ReturnEntity(ent int) { c.ReturnInt(int32(ent)) }

// ReturnVector stores v across the three return cells.
func (c *Context) ReturnVector(v Vec3) {
	for i := range v {
		c.G.Slots[OfsReturn+i] = math.Float32bits(v[i])
	}
}

// ReturnHandle stores an encoded string handle.
func (c *Context) ReturnHandle(h strtab.Handle) {
	c.ReturnInt(c.Strings.Encode(h))
}

// ReturnTemp copies s into a scratch buffer and returns its handle.
func (c *Context) ReturnTemp(s string) {
	c.ReturnHandle(c.Strings.TempString(s))
}

// Returned helpers read the return slot back; the interpreter and tests use
// them after a call.

func (c *Context) ReturnedFloat() float32 {
	return math.Float32frombits(c.G.Slots[OfsReturn])
}

func (c *Context) ReturnedInt() int32 { return int32(c.G.Slots[OfsReturn]) }

func (c *Context) ReturnedVector() Vec3 {
	return Vec3{
		math.Float32frombits(c.G.Slots[OfsReturn]),
		math.Float32frombits(c.G.Slots[OfsReturn+1]),
		math.Float32frombits(c.G.Slots[OfsReturn+2]),
	}
}

func (c *Context) ReturnedString() (string, error) {
	return c.Strings.ResolveRaw(c.ReturnedInt())
}

// SetArgs loads parameters from Go values: float32, float64 and int become
// floats, Vec3 a vector, Entity an entity number, string a scratch string
// and strtab.Handle its encoded form. Argc is left for Registry.Call.
func (c *Context) SetArgs(args ...any) error {
	if len(args) > MaxParms {
		return fmt.Errorf("progs: %d arguments, at most %d", len(args), MaxParms)
	}
	for i, a := range args {
		o := parmOfs(i)
		switch v := a.(type) {
		case float32:
			c.G.Slots[o] = math.Float32bits(v)
		case float64:
			c.G.Slots[o] = math.Float32bits(float32(v))
		case int:
			c.G.Slots[o] = math.Float32bits(float32(v))
		case Entity:
			c.G.Slots[o] = uint32(int32(v))
		case Vec3:
			for j := range v {
				c.G.Slots[o+j] = math.Float32bits(v[j])
			}
		case string:
			c.G.Slots[o] = uint32(c.Strings.Encode(c.Strings.TempString(v)))
		case strtab.Handle:
			c.G.Slots[o] = uint32(c.Strings.Encode(v))
		default:
			return fmt.Errorf("progs: argument %d: unsupported type %T", i, a)
		}
	}
	return nil
}

// Entity marks an entity-number argument for SetArgs.
type Entity int

// print writes to the console, honoring any active redirect.
func (c *Context) print(format string, args ...any) {
	c.Console.Printf(format, args...)
}
