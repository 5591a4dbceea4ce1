package progs

import (
	"github.com/crystal-mush/goqwsv/pkg/fraglog"
	"github.com/crystal-mush/goqwsv/pkg/maps"
)

// The interfaces below are the collaborators the builtins delegate to. The
// interpreter, entity storage, physics and visibility live outside this
// package; the server wires concrete implementations into a Context.

// Entities is entity storage.
type Entities interface {
	Spawn() (int, error)
	Remove(ent int) error
	NumEdicts() int
	IsFree(ent int) bool
	// StringField returns a string field by field offset.
	StringField(ent, field int) (string, error)
	// SetModel stores the model name and index and sets the bounds for
	// inline models.
	SetModel(ent int, model string, index int) error
	Static(ent int) (StaticInfo, error)
	// Describe returns the printable field dump of one entity.
	Describe(ent int) string
	// DescribeAll dumps every live entity.
	DescribeAll() string
}

// StaticInfo is what makestatic reads from an entity.
type StaticInfo struct {
	Model    string
	Frame    int
	Colormap int
	Skin     int
	Origin   Vec3
	Angles   Vec3
}

// Physics is movement and collision.
type Physics interface {
	SetOrigin(ent int, org Vec3)
	SetSize(ent int, mins, maxs Vec3)
	TraceLine(v1, v2 Vec3, noMonsters bool, pass int) Trace
	WalkMove(ent int, yaw, dist float32) bool
	DropToFloor(ent int) bool
	CheckBottom(ent int) bool
	PointContents(p Vec3) int
	ChangeYaw(ent int)
	MoveToGoal(ent int, dist float32)
	// FindRadius links every solid entity within rad of org through the
	// chain field and returns the head, or 0.
	FindRadius(org Vec3, rad float32) int
}

// Visibility is potentially-visible-set logic and sound emission.
type Visibility interface {
	CheckClient(self int) int
	Multicast(origin Vec3, to int, msg []byte) error
	StartSound(ent, channel int, sample string, volume int, atten float32) error
}

// Interpreter is the script VM.
type Interpreter interface {
	// FunctionName names the script function currently executing.
	FunctionName() string
	FindFunction(name string) (int, bool)
	Execute(fn int) error
	SetTrace(on bool)
}

// Host is server-level state builtins consult.
type Host interface {
	Loading() bool
	Active() bool
	SpawnCount() int
	ServerInfo(key string) string
	LocalInfo(key string) string
	SetLightStyle(style int, value string) error
}

// FragLogger receives frags from logfrag. line is the formatted text line.
type FragLogger interface {
	LogFrag(f fraglog.Frag, line string) error
}

// ModLogger appends text to a named mod log.
type ModLogger interface {
	Append(name, text string) error
}

// MapLister lists the installed maps.
type MapLister interface {
	List() ([]maps.Entry, error)
}

var (
	_ ModLogger = (*fraglog.ModLog)(nil)
	_ MapLister = (*maps.Dir)(nil)
)
