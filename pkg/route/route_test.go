package route

import (
	"bytes"
	"errors"
	"testing"

	"github.com/crystal-mush/goqwsv/pkg/client"
	"github.com/crystal-mush/goqwsv/pkg/demo"
	"github.com/crystal-mush/goqwsv/pkg/wire"
)

type testEnv struct {
	router    *Router
	clients   *client.Table
	rec       *demo.Recorder
	loading   bool
	specprint int
}

func newTestEnv(t *testing.T, budget int) *testEnv {
	t.Helper()
	env := &testEnv{
		clients:   client.NewTable(client.Options{MaxClients: 8, ReliableBudget: budget}),
		rec:       demo.NewRecorder(),
		specprint: client.SpecPrintCenter | client.SpecPrintSprint | client.SpecPrintStuff,
	}
	env.router = New(env.clients, env.rec, DefaultSizes)
	env.router.Loading = func() bool { return env.loading }
	env.router.SpecPrint = func() int { return env.specprint }
	return env
}

func (e *testEnv) connect(t *testing.T, num int) *client.Client {
	t.Helper()
	c, err := e.clients.Connect(num, "player")
	if err != nil {
		t.Fatalf("Connect(%d): %v", num, err)
	}
	c.State = client.StateSpawned
	return c
}

func (e *testEnv) spectator(t *testing.T, num, track, mask int) *client.Client {
	t.Helper()
	c := e.connect(t, num)
	c.Spectator = true
	c.SpecTrack = track
	c.SpecPrint = mask
	return c
}

func TestRouteCodes(t *testing.T) {
	env := newTestEnv(t, 0)
	r := env.router
	if b, err := r.Route(DestBroadcast); err != nil || b != r.Datagram {
		t.Errorf("broadcast = %v, %v", b, err)
	}
	if b, err := r.Route(DestAll); err != nil || b != r.Reliable {
		t.Errorf("all = %v, %v", b, err)
	}
	if b, err := r.Route(DestMulticast); err != nil || b != r.Multicast {
		t.Errorf("multicast = %v, %v", b, err)
	}
	if _, err := r.Route(DestInit); !errors.Is(err, ErrInitOutsideLoading) {
		t.Errorf("init while active = %v", err)
	}
	env.loading = true
	if b, err := r.Route(DestInit); err != nil || b != r.Signon {
		t.Errorf("init while loading = %v, %v", b, err)
	}
	for _, code := range []int{DestOne, 5, -1} {
		if _, err := r.Route(code); !errors.Is(err, ErrBadDestination) {
			t.Errorf("Route(%d) = %v", code, err)
		}
	}
}

func TestWriteOneRequiresClient(t *testing.T) {
	env := newTestEnv(t, 0)
	for _, ent := range []int{0, 3, 9} {
		if err := env.router.Write(DestOne, ent, []byte{1}); !errors.Is(err, client.ErrNotAClient) {
			t.Errorf("Write to entity %d = %v", ent, err)
		}
	}
	c := env.connect(t, 3)
	if err := env.router.Write(DestOne, 3, []byte{1, 2}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(c.Reliable.Bytes(), []byte{1, 2}) {
		t.Errorf("reliable = % x", c.Reliable.Bytes())
	}
}

func TestWriteOneOverBudget(t *testing.T) {
	env := newTestEnv(t, 4)
	c := env.connect(t, 1)
	env.router.Write(DestOne, 1, []byte{1, 2, 3})
	err := env.router.Write(DestOne, 1, []byte{4, 5})
	if !errors.Is(err, client.ErrReliableOverflow) {
		t.Fatalf("over-budget write = %v", err)
	}
	if !bytes.Equal(c.Reliable.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("stream changed to % x", c.Reliable.Bytes())
	}
}

func TestWritesAreRecorded(t *testing.T) {
	env := newTestEnv(t, 0)
	env.connect(t, 2)
	env.rec.Start("test")
	env.router.Write(DestOne, 2, []byte{9, 'a', 0})
	env.router.Write(DestAll, 0, []byte{7})
	env.router.Write(DestBroadcast, 0, []byte{6})

	recs := env.rec.Pending()
	if len(recs) != 2 {
		t.Fatalf("recorded %d records: %+v", len(recs), recs)
	}
	if recs[0].Kind != demo.KindSingle || recs[0].To != 1 || !bytes.Equal(recs[0].Payload, []byte{9, 'a', 0}) {
		t.Errorf("single record = %+v", recs[0])
	}
	if recs[1].Kind != demo.KindAll || !bytes.Equal(recs[1].Payload, []byte{7}) {
		t.Errorf("all record = %+v", recs[1])
	}
}

func TestSpectatorMirrorGating(t *testing.T) {
	env := newTestEnv(t, 0)
	primary := env.connect(t, 1)
	tracking := env.spectator(t, 2, 1, client.SpecPrintSprint)
	other := env.spectator(t, 3, 4, client.SpecPrintSprint)
	noBit := env.spectator(t, 4, 1, client.SpecPrintCenter)
	player := env.connect(t, 5)
	player.SpecTrack = 1
	player.SpecPrint = client.SpecPrintSprint

	if err := env.router.Sprint(primary, wire.PrintHigh, "hi\n"); err != nil {
		t.Fatalf("Sprint: %v", err)
	}
	want := wire.PrintMessage(wire.PrintHigh, "hi\n")
	if !bytes.Equal(primary.Reliable.Bytes(), want) {
		t.Errorf("primary got % x", primary.Reliable.Bytes())
	}
	if !bytes.Equal(tracking.Reliable.Bytes(), want) {
		t.Errorf("tracking spectator got % x", tracking.Reliable.Bytes())
	}
	for _, c := range []*client.Client{other, noBit, player} {
		if c.Reliable.Len() != 0 {
			t.Errorf("client %d received a mirror", c.Num)
		}
	}

	// Turning the bit off affects only later messages.
	tracking.SpecPrint = 0
	env.router.Sprint(primary, wire.PrintHigh, "again\n")
	if !bytes.Equal(tracking.Reliable.Bytes(), want) {
		t.Errorf("spectator received after bit cleared: % x", tracking.Reliable.Bytes())
	}
}

func TestMirrorNeedsServerCategory(t *testing.T) {
	env := newTestEnv(t, 0)
	env.specprint = client.SpecPrintSprint
	primary := env.connect(t, 1)
	spec := env.spectator(t, 2, 1, client.SpecPrintCenter|client.SpecPrintSprint)
	env.router.CenterPrint(primary, "centered")
	if spec.Reliable.Len() != 0 {
		t.Error("centerprint mirrored although sv_specprint excludes it")
	}
}

func TestMirrorFailureDoesNotFailPrimary(t *testing.T) {
	env := newTestEnv(t, 16)
	primary := env.connect(t, 1)
	spec := env.spectator(t, 2, 1, client.SpecPrintCenter)
	spec.Reliable.Write(make([]byte, 15))
	if err := env.router.CenterPrint(primary, "hello"); err != nil {
		t.Fatalf("CenterPrint = %v", err)
	}
	if primary.Reliable.Len() == 0 {
		t.Error("primary not delivered")
	}
}

func TestClientPrintLevel(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.connect(t, 1)
	c.MessageLevel = wire.PrintMedium
	env.router.ClientPrint(c, wire.PrintLow, "pickup\n")
	if c.Reliable.Len() != 0 {
		t.Error("low print delivered above message level")
	}
	env.router.ClientPrint(c, wire.PrintChat, "chat\n")
	if c.Reliable.Len() == 0 {
		t.Error("chat print not delivered")
	}
}

func TestStuffCmdDeliversLines(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.connect(t, 1)
	spec := env.spectator(t, 2, 1, client.SpecPrintStuff)

	env.router.StuffCmd(c, "alias a b\npartial")
	env.router.StuffCmd(c, " line\n")

	var want []byte
	want = append(want, wire.StuffTextMessage("alias a b\n")...)
	want = append(want, wire.StuffTextMessage("partial line\n")...)
	if !bytes.Equal(c.Reliable.Bytes(), want) {
		t.Errorf("client got %q", c.Reliable.Bytes())
	}
	if !bytes.Equal(spec.Reliable.Bytes(), want) {
		t.Errorf("spectator got %q", spec.Reliable.Bytes())
	}
}

func TestStuffCmdDisconnect(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.connect(t, 1)
	env.router.StuffCmd(c, "echo pending")
	if err := env.router.StuffCmd(c, "\nsay bye\ndisconnect\n"); err != nil {
		t.Fatalf("StuffCmd: %v", err)
	}
	if !c.Drop {
		t.Error("client not flagged for drop")
	}
	if c.Reliable.Len() != 0 {
		t.Errorf("delivered %q alongside disconnect", c.Reliable.Bytes())
	}
	if c.Stuff.Len() != 0 {
		t.Errorf("stufftext buffer not cleared: %q", c.Stuff.Pending())
	}
}

func TestStuffCmdOverflow(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.connect(t, 1)
	big := string(make([]byte, client.DefaultStuffSize))
	if err := env.router.StuffCmd(c, big); !errors.Is(err, client.ErrStuffOverflow) {
		t.Errorf("StuffCmd = %v", err)
	}
}

func TestStuffCmdReliableOverflowIsAtomic(t *testing.T) {
	env := newTestEnv(t, 20)
	c := env.connect(t, 1)
	spec := env.spectator(t, 2, 1, client.SpecPrintStuff)

	// Each line fits the budget alone; together they do not.
	err := env.router.StuffCmd(c, "aaaaaaaa\nbbbbbbbb\n")
	if !errors.Is(err, client.ErrReliableOverflow) {
		t.Fatalf("StuffCmd = %v, want reliable overflow", err)
	}
	if c.Reliable.Len() != 0 {
		t.Errorf("partial delivery %q", c.Reliable.Bytes())
	}
	if spec.Reliable.Len() != 0 {
		t.Errorf("spectator got %q", spec.Reliable.Bytes())
	}
	if c.Stuff.Pending() != "" {
		t.Errorf("stufftext buffer = %q, want unchanged", c.Stuff.Pending())
	}
}

func TestStuffCmdOverflowKeepsPartialLine(t *testing.T) {
	env := newTestEnv(t, 20)
	c := env.connect(t, 1)
	env.router.StuffCmd(c, "echo")
	if err := env.router.StuffCmd(c, " aaaa\nbbbbbbbb\n"); !errors.Is(err, client.ErrReliableOverflow) {
		t.Fatalf("StuffCmd = %v", err)
	}
	if c.Stuff.Pending() != "echo" {
		t.Fatalf("stufftext buffer = %q, want %q", c.Stuff.Pending(), "echo")
	}

	c.Reliable.Flush()
	if err := env.router.StuffCmd(c, " ok\n"); err != nil {
		t.Fatalf("StuffCmd after flush: %v", err)
	}
	if want := wire.StuffTextMessage("echo ok\n"); !bytes.Equal(c.Reliable.Bytes(), want) {
		t.Errorf("got %q, want %q", c.Reliable.Bytes(), want)
	}
}

func TestReliableAllSkipsUnspawned(t *testing.T) {
	env := newTestEnv(t, 0)
	a := env.connect(t, 1)
	b, _ := env.clients.Connect(2, "loading")
	env.router.ReliableAll(wire.LightStyleMessage(0, "m"))
	if a.Reliable.Len() == 0 || b.Reliable.Len() != 0 {
		t.Errorf("spawned got %d bytes, connected got %d", a.Reliable.Len(), b.Reliable.Len())
	}
}
