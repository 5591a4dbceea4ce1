package progs

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/crystal-mush/goqwsv/pkg/client"
	"github.com/crystal-mush/goqwsv/pkg/console"
	"github.com/crystal-mush/goqwsv/pkg/demo"
	"github.com/crystal-mush/goqwsv/pkg/fraglog"
	"github.com/crystal-mush/goqwsv/pkg/maps"
	"github.com/crystal-mush/goqwsv/pkg/route"
	"github.com/crystal-mush/goqwsv/pkg/strtab"
)

type fakeEntities struct {
	num     int
	free    map[int]bool
	fields  map[[2]int]string
	models  map[int]string
	static  map[int]StaticInfo
	removed []int
}

func (f *fakeEntities) Spawn() (int, error) {
	f.num++
	return f.num - 1, nil
}

func (f *fakeEntities) Remove(ent int) error {
	f.removed = append(f.removed, ent)
	f.free[ent] = true
	return nil
}

func (f *fakeEntities) NumEdicts() int { return f.num }
func (f *fakeEntities) IsFree(ent int) bool { return f.free[ent] }
func (f *fakeEntities) Describe(ent int) string { return fmt.Sprintf("entity %d\n", ent) }
func (f *fakeEntities) DescribeAll() string { return "all entities\n" }

func (f *fakeEntities) StringField(ent, field int) (string, error) {
	return f.fields[[2]int{ent, field}], nil
}

func (f *fakeEntities) SetModel(ent int, model string, index int) error {
	f.models[ent] = model
	return nil
}

func (f *fakeEntities) Static(ent int) (StaticInfo, error) {
	info, ok := f.static[ent]
	if !ok {
		return StaticInfo{}, fmt.Errorf("no entity %d", ent)
	}
	return info, nil
}

type fakeHost struct {
	loading bool
	active  bool
	spawn   int
	server  map[string]string
	local   map[string]string
	styles  map[int]string
}

func (h *fakeHost) Loading() bool { return h.loading }
func (h *fakeHost) Active() bool { return h.active }
func (h *fakeHost) SpawnCount() int { return h.spawn }
func (h *fakeHost) ServerInfo(key string) string { return h.server[key] }
func (h *fakeHost) LocalInfo(key string) string { return h.local[key] }

func (h *fakeHost) SetLightStyle(style int, value string) error {
	h.styles[style] = value
	return nil
}

type fakeVM struct {
	name     string
	funcs    map[string]int
	executed []int
	trace    bool
}

func (v *fakeVM) FunctionName() string { return v.name }
func (v *fakeVM) SetTrace(on bool) { v.trace = on }

func (v *fakeVM) FindFunction(name string) (int, bool) {
	fn, ok := v.funcs[name]
	return fn, ok
}

func (v *fakeVM) Execute(fn int) error {
	v.executed = append(v.executed, fn)
	return nil
}

type fakeFrags struct {
	frags []fraglog.Frag
	lines []string
}

func (f *fakeFrags) LogFrag(fr fraglog.Frag, line string) error {
	f.frags = append(f.frags, fr)
	f.lines = append(f.lines, line)
	return nil
}

type fakeMaps []maps.Entry

func (m fakeMaps) List() ([]maps.Entry, error) { return m, nil }

type testEnv struct {
	c      *Context
	reg    *Registry
	out    *bytes.Buffer
	host   *fakeHost
	ents   *fakeEntities
	vm     *fakeVM
	frags  *fakeFrags
	router *route.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clients := client.NewTable(client.Options{MaxClients: 4})
	router := route.New(clients, demo.NewRecorder(), route.DefaultSizes)
	con := console.New()
	out := &bytes.Buffer{}
	con.Out = out

	e := &testEnv{
		reg:    NewRegistry(),
		out:    out,
		router: router,
		host: &fakeHost{
			loading: true, active: true, spawn: 1,
			server: map[string]string{}, local: map[string]string{}, styles: map[int]string{},
		},
		ents: &fakeEntities{
			num: 8, free: map[int]bool{}, fields: map[[2]int]string{},
			models: map[int]string{}, static: map[int]StaticInfo{},
		},
		vm:    &fakeVM{name: "think", funcs: map[string]int{}},
		frags: &fakeFrags{},
	}
	router.Loading = e.host.Loading
	e.c = NewContext(strtab.NewManager(nil, 0), router, con)
	e.c.Host = e.host
	e.c.Entities = e.ents
	e.c.VM = e.vm
	e.c.Frags = e.frags
	e.c.Now = func() time.Time { return time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local) }
	return e
}

// call loads args and invokes the named builtin with argc = len(args).
func (e *testEnv) call(t *testing.T, name string, args ...any) error {
	t.Helper()
	return e.callArgc(t, name, len(args), args...)
}

func (e *testEnv) callArgc(t *testing.T, name string, argc int, args ...any) error {
	t.Helper()
	id, ok := e.reg.Find(name)
	if !ok {
		t.Fatalf("no builtin %q", name)
	}
	if err := e.c.SetArgs(args...); err != nil {
		t.Fatalf("SetArgs: %v", err)
	}
	return e.reg.Call(e.c, id, argc)
}

func (e *testEnv) mustCall(t *testing.T, name string, args ...any) {
	t.Helper()
	if err := e.call(t, name, args...); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

func (e *testEnv) str(t *testing.T) string {
	t.Helper()
	s, err := e.c.ReturnedString()
	if err != nil {
		t.Fatalf("ReturnedString: %v", err)
	}
	return s
}

func (e *testEnv) connect(t *testing.T, num int, name string) *client.Client {
	t.Helper()
	cl, err := e.router.Clients.Connect(num, name)
	if err != nil {
		t.Fatalf("Connect(%d): %v", num, err)
	}
	cl.State = client.StateSpawned
	return cl
}

type sinkFunc func()

func (s sinkFunc) WriteFrame(string, *demo.Frame) error {
	s()
	return nil
}
