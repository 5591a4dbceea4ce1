package progs

import "errors"

// ErrDetached is returned by builtins that need a collaborator the server
// has not wired, such as entity storage on a server with no game loaded.
var ErrDetached = errors.New("progs: no world attached")

// detached stands in for every collaborator until the server wires one.
type detached struct{}

func (detached) Spawn() (int, error) { return 0, ErrDetached }
func (detached) Remove(int) error { return ErrDetached }
func (detached) NumEdicts() int { return 0 }
func (detached) IsFree(int) bool { return true }
func (detached) StringField(int, int) (string, error) { return "", ErrDetached }
func (detached) SetModel(int, string, int) error { return ErrDetached }
func (detached) Static(int) (StaticInfo, error) { return StaticInfo{}, ErrDetached }
func (detached) Describe(int) string { return "" }
func (detached) DescribeAll() string { return "" }
func (detached) SetOrigin(int, Vec3) {}
func (detached) SetSize(int, Vec3, Vec3) {}
func (detached) WalkMove(int, float32, float32) bool { return false }
func (detached) DropToFloor(int) bool { return false }
func (detached) CheckBottom(int) bool { return false }
func (detached) PointContents(Vec3) int { return 0 }
func (detached) ChangeYaw(int) {}
func (detached) MoveToGoal(int, float32) {}
func (detached) FindRadius(Vec3, float32) int { return 0 }
func (detached) CheckClient(int) int { return 0 }
func (detached) Multicast(Vec3, int, []byte) error { return ErrDetached }
func (detached) StartSound(int, int, string, int, float32) error { return ErrDetached }
func (detached) FunctionName() string { return "?" }
func (detached) FindFunction(string) (int, bool) { return 0, false }
func (detached) Execute(int) error { return ErrDetached }
func (detached) SetTrace(bool) {}
func (detached) Loading() bool { return false }
func (detached) Active() bool { return false }
func (detached) SpawnCount() int { return 0 }
func (detached) ServerInfo(string) string { return "" }
func (detached) LocalInfo(string) string { return "" }
func (detached) SetLightStyle(int, string) error { return nil }

func (detached) TraceLine(_, end Vec3, _ bool, _ int) Trace {
	return Trace{Fraction: 1, EndPos: end}
}

var (
	_ Entities    = detached{}
	_ Physics     = detached{}
	_ Visibility  = detached{}
	_ Interpreter = detached{}
	_ Host        = detached{}
)
