package server

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crystal-mush/goqwsv/pkg/client"
	"github.com/crystal-mush/goqwsv/pkg/config"
	"github.com/crystal-mush/goqwsv/pkg/console"
	"github.com/crystal-mush/goqwsv/pkg/metrics"
	"github.com/crystal-mush/goqwsv/pkg/progs"
	"github.com/crystal-mush/goqwsv/pkg/route"
	"github.com/crystal-mush/goqwsv/pkg/wire"
)

// newTestServer builds a server whose files all live in a temp dir. mods
// adjust the config before the server is built.
func newTestServer(t *testing.T, mods ...func(*config.Config)) (*Server, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.MaxClients = 4
	cfg.GameDir = dir
	cfg.MapsDir = filepath.Join(dir, "maps")
	cfg.DemoDir = filepath.Join(dir, "demos")
	cfg.RecordingDB = filepath.Join(dir, "recordings.db")
	cfg.FragDB = filepath.Join(dir, "frags.db")
	for _, mod := range mods {
		mod(cfg)
	}

	s, err := New(cfg, metrics.New(time.Now()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	out := &bytes.Buffer{}
	s.Console.Out = out
	return s, out
}

func writeMaps(t *testing.T, s *Server, names ...string) {
	t.Helper()
	if err := os.MkdirAll(s.Conf.MapsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, name := range names {
		path := filepath.Join(s.Conf.MapsDir, name+".bsp")
		if err := os.WriteFile(path, make([]byte, 64), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func connect(t *testing.T, s *Server, num int, name string) *client.Client {
	t.Helper()
	cl, err := s.Clients.Connect(num, name)
	if err != nil {
		t.Fatalf("Connect(%d): %v", num, err)
	}
	cl.State = client.StateSpawned
	return cl
}

func TestMapResetsLevelState(t *testing.T) {
	s, _ := newTestServer(t)
	writeMaps(t, s, "e1m1")

	if _, err := s.Strings.AllocateDynamic("left over", 16); err != nil {
		t.Fatalf("AllocateDynamic: %v", err)
	}
	if err := s.Progs.Assets.PrecacheModel("progs/player.mdl"); err != nil {
		t.Fatalf("PrecacheModel: %v", err)
	}
	s.Router.Signon.PutByte(1)
	s.SetLightStyle(3, "abc")

	s.Console.ExecuteLine("map e1m1")

	if s.Strings.DynamicInUse() != 0 {
		t.Errorf("dynamic strings survived the map change")
	}
	if s.Progs.Assets.ModelIndex("progs/player.mdl") != -1 {
		t.Errorf("precache list survived the map change")
	}
	if s.Router.Signon.Len() != 0 {
		t.Errorf("signon length = %d", s.Router.Signon.Len())
	}
	if s.LightStyle(3) != "" {
		t.Errorf("light style survived the map change")
	}
	if s.SpawnCount() != 1 || !s.Active() || s.Loading() {
		t.Errorf("spawn=%d active=%v loading=%v", s.SpawnCount(), s.Active(), s.Loading())
	}
	if s.MapName() != "e1m1" || s.ServerInfo("map") != "e1m1" {
		t.Errorf("map = %q, serverinfo map = %q", s.MapName(), s.ServerInfo("map"))
	}
}

func TestMapUnknown(t *testing.T) {
	s, out := newTestServer(t)
	s.Console.ExecuteLine("map nowhere")
	if !strings.Contains(out.String(), "Can't find nowhere.bsp") {
		t.Errorf("console = %q", out.String())
	}
	if s.SpawnCount() != 0 {
		t.Errorf("SpawnCount = %d", s.SpawnCount())
	}
}

func TestOnSpawnWritesSignon(t *testing.T) {
	s, _ := newTestServer(t)
	s.OnSpawn = func(string) error {
		return s.Router.Write(route.DestInit, 0, []byte{9})
	}
	if err := s.SpawnServer("start"); err != nil {
		t.Fatalf("SpawnServer: %v", err)
	}
	if !bytes.Equal(s.Router.Signon.Bytes(), []byte{9}) {
		t.Errorf("signon = %v", s.Router.Signon.Bytes())
	}

	s.OnSpawn = func(string) error { return errors.New("no worldspawn") }
	if err := s.SpawnServer("broken"); err == nil {
		t.Fatal("SpawnServer succeeded")
	}
	if s.Active() || s.Loading() {
		t.Errorf("active=%v loading=%v after failed spawn", s.Active(), s.Loading())
	}
}

func TestBuiltinCommand(t *testing.T) {
	s, out := newTestServer(t)
	s.Console.ExecuteLine("builtin strlen hello")
	s.Console.ExecuteLine("builtin 90 abc")
	s.Console.ExecuteLine("builtin substr hello 1 3")
	s.Console.ExecuteLine("builtin nosuch")
	for _, want := range []string{
		"strlen returned 5\n",
		"strlen returned 3\n",
		`"ell"`,
		"Unknown builtin nosuch\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("console missing %q:\n%s", want, out.String())
		}
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"#3", progs.Entity(3)},
		{"1,2,3", progs.Vec3{1, 2, 3}},
		{"2.5", float32(2.5)},
		{"abc", "abc"},
		{"#x", "#x"},
		{"1,b,3", "1,b,3"},
	}
	for _, tt := range tests {
		if got := parseLiteral(tt.in); got != tt.want {
			t.Errorf("parseLiteral(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestErrorBuiltinFailsFrame(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.Console.Cbuf.AddText("builtin error boom\n"); err != nil {
		t.Fatalf("AddText: %v", err)
	}
	err := s.Frame(0.1)
	var fatal *progs.FatalError
	if !errors.As(err, &fatal) || fatal.Msg != "boom" {
		t.Fatalf("Frame = %v", err)
	}
	if err := s.Frame(0.1); err != nil {
		t.Errorf("second Frame = %v", err)
	}
}

func TestObjErrorDoesNotFailFrame(t *testing.T) {
	s, out := newTestServer(t)
	s.Console.ExecuteLine("builtin objerror oops")
	if err := s.Frame(0.1); err != nil {
		t.Errorf("Frame = %v", err)
	}
	if !strings.Contains(out.String(), "objerror: ") {
		t.Errorf("console = %q", out.String())
	}
}

func TestLogFragRecordsRingAndStore(t *testing.T) {
	s, out := newTestServer(t)
	connect(t, s, 1, "alpha")
	connect(t, s, 2, "beta")

	s.Console.ExecuteLine("builtin logfrag #1 #2")
	if got := s.FragRing.Current(); got != "\\alpha\\beta\\\n" {
		t.Errorf("ring = %q", got)
	}
	n, err := s.Frags.Kills(context.Background(), "alpha")
	if err != nil || n != 1 {
		t.Errorf("Kills = %d, %v", n, err)
	}
	s.Console.ExecuteLine("frags")
	if !strings.Contains(out.String(), "alpha killed beta") {
		t.Errorf("console = %q", out.String())
	}
}

func TestLogFragWithoutDatabase(t *testing.T) {
	s, out := newTestServer(t, func(c *config.Config) { c.FragDB = "" })
	connect(t, s, 1, "alpha")
	connect(t, s, 2, "beta")
	s.Console.ExecuteLine("frag_log_type 1")
	s.Console.ExecuteLine("builtin logfrag #1 #2")
	if !strings.HasPrefix(s.FragRing.Current(), "\\frag\\alpha\\beta\\") {
		t.Errorf("ring = %q", s.FragRing.Current())
	}
	out.Reset()
	s.Console.ExecuteLine("frags")
	if !strings.HasPrefix(out.String(), "\\frag\\alpha") {
		t.Errorf("frags = %q", out.String())
	}
}

func TestRedirectFlushesToClient(t *testing.T) {
	s, _ := newTestServer(t)
	cl := connect(t, s, 1, "alpha")

	r := s.Console.Redirect
	if err := r.BeginCapture(console.Target{Kind: console.RedirectClient, Client: 1}); err != nil {
		t.Fatalf("BeginCapture: %v", err)
	}
	s.Console.Printf("hi\n")
	if _, err := r.EndCapture(); err != nil {
		t.Fatalf("EndCapture: %v", err)
	}
	if want := wire.PrintMessage(wire.PrintHigh, "hi\n"); !bytes.Equal(cl.Reliable.Bytes(), want) {
		t.Errorf("reliable = %q, want %q", cl.Reliable.Bytes(), want)
	}
}

func TestRecordingPersists(t *testing.T) {
	s, out := newTestServer(t)
	s.Console.ExecuteLine("record duel1")
	if err := s.Router.Write(route.DestAll, 0, []byte{1, 2}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Frame(0.1); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	s.Console.ExecuteLine("stop")

	info, err := s.Recordings.Info("duel1")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if !info.Finished || info.Frames != 1 {
		t.Errorf("info = %+v", info)
	}
	if _, err := os.Stat(filepath.Join(s.Conf.DemoDir, "duel1.mvd")); err != nil {
		t.Errorf("demo file: %v", err)
	}
	s.Console.ExecuteLine("recordings")
	if !strings.Contains(out.String(), "duel1") || !strings.Contains(out.String(), "1 recordings") {
		t.Errorf("console = %q", out.String())
	}
	s.Console.ExecuteLine("recordings delete duel1")
	if _, err := s.Recordings.Info("duel1"); err == nil {
		t.Error("recording still stored after delete")
	}
}

func TestCvarsFromConfig(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) {
		c.SpecPrint = 2
		c.Cvars = map[string]string{"timelimit": "20", "hostname": "qw test"}
	})
	if s.Router.SpecPrint() != 2 {
		t.Errorf("SpecPrint = %d", s.Router.SpecPrint())
	}
	if s.Console.Cvars.Value("timelimit") != 20 {
		t.Errorf("timelimit = %v", s.Console.Cvars.Value("timelimit"))
	}
	if s.ServerInfo("hostname") != "qw test" {
		t.Errorf("hostname = %q", s.ServerInfo("hostname"))
	}
	s.Console.ExecuteLine("sv_specprint 7")
	if s.Router.SpecPrint() != 7 {
		t.Errorf("SpecPrint after set = %d", s.Router.SpecPrint())
	}
}

func TestInfoCommands(t *testing.T) {
	s, out := newTestServer(t)
	s.Console.ExecuteLine("serverinfo fraglimit 30")
	s.Console.ExecuteLine("localinfo motd welcome")
	if s.ServerInfo("fraglimit") != "30" || s.LocalInfo("motd") != "welcome" {
		t.Fatalf("info = %q %q", s.ServerInfo("fraglimit"), s.LocalInfo("motd"))
	}
	s.Console.ExecuteLine("builtin infokey #0 motd")
	if !strings.Contains(out.String(), `"welcome"`) {
		t.Errorf("console = %q", out.String())
	}
	s.Console.ExecuteLine(`serverinfo fraglimit ""`)
	if s.ServerInfo("fraglimit") != "" {
		t.Error("empty value did not remove the key")
	}
}

func TestChangelevelQueuesMap(t *testing.T) {
	s, _ := newTestServer(t)
	writeMaps(t, s, "e1m1", "e1m2")
	if err := s.SpawnServer("e1m1"); err != nil {
		t.Fatalf("SpawnServer: %v", err)
	}
	s.Console.ExecuteLine("builtin changelevel e1m2")
	s.Console.ExecuteLine("builtin changelevel e1m3")
	if got := s.Console.Cbuf.Text(); got != "map e1m2\n" {
		t.Fatalf("cbuf = %q", got)
	}
	if err := s.Frame(0.1); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if s.MapName() != "e1m2" || s.SpawnCount() != 2 {
		t.Errorf("map = %q spawn = %d", s.MapName(), s.SpawnCount())
	}
}

func TestLightStyle(t *testing.T) {
	s, _ := newTestServer(t)
	if err := s.SetLightStyle(MaxLightStyles, "a"); err == nil {
		t.Error("out of range style accepted")
	}
	if err := s.SpawnServer("start"); err != nil {
		t.Fatalf("SpawnServer: %v", err)
	}
	cl := connect(t, s, 1, "alpha")
	s.Console.ExecuteLine("builtin lightstyle 5 abc")
	if s.LightStyle(5) != "abc" {
		t.Errorf("style 5 = %q", s.LightStyle(5))
	}
	if cl.Reliable.Len() == 0 {
		t.Error("spawned client did not get the light style")
	}
}

func TestFrameDropsClients(t *testing.T) {
	s, _ := newTestServer(t)
	gone := connect(t, s, 1, "alpha")
	stay := connect(t, s, 2, "beta")
	gone.Drop = true

	if err := s.Frame(0.1); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if gone.State != client.StateFree {
		t.Errorf("dropped client state = %s", gone.State)
	}
	if want := wire.PrintMessage(wire.PrintHigh, "alpha left the game\n"); !bytes.Equal(stay.Reliable.Bytes(), want) {
		t.Errorf("reliable = %q", stay.Reliable.Bytes())
	}
}

func TestMetricsSample(t *testing.T) {
	s, _ := newTestServer(t)
	connect(t, s, 1, "alpha")
	connect(t, s, 3, "gamma")
	s.Metrics.Update()

	families, err := s.Metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "qwsv_clients_connected" {
			if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 2 {
				t.Errorf("clients connected = %v", v)
			}
			return
		}
	}
	t.Error("qwsv_clients_connected not gathered")
}
