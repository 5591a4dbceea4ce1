// Package client holds per-client server state: the reliable output stream,
// the stufftext accumulator and the identity fields builtins query.
package client

import (
	"errors"
	"fmt"
)

// DefaultMaxClients is the client table size of the stock server.
const DefaultMaxClients = 32

var ErrNotAClient = errors.New("client: entity is not a client")

// State tracks where a client slot is in its lifecycle.
type State int

const (
	StateFree      State = iota // Unused slot
	StateZombie                 // Disconnected, slot not yet reusable
	StateConnected              // Has a netchan, not yet in game
	StateSpawned                // Fully in game
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateZombie:
		return "zombie"
	case StateConnected:
		return "connected"
	case StateSpawned:
		return "spawned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Spectator mirroring categories, used both in Client.SpecPrint and the
// sv_specprint cvar.
const (
	SpecPrintCenter = 1 << iota
	SpecPrintSprint
	SpecPrintStuff
)

// Client is one player or spectator slot.
type Client struct {
	Num          int    // Entity number, 1..MaxClients
	State        State
	Name         string
	Team         string
	Login        string // Authenticated account, "" when none
	Spectator    bool
	SpecTrack    int // Entity number the spectator follows, 0 = free flying
	SpecPrint    int // Mirroring categories this spectator asked for
	MessageLevel int // Lowest print level delivered
	Drop         bool // Set when the server should disconnect the client
	Addr         string
	RealAddr     string // Address reported by a proxy, if any
	Ping         int
	FilePercent  int // Download progress, 0 when no download is active
	Userinfo     map[string]string
	SpawnParms   [16]float32

	Reliable *ReliableStream
	Stuff    *StuffBuffer
}

// Active reports whether the client can receive messages.
func (c *Client) Active() bool { return c.State >= StateConnected }

// InfoValue returns a userinfo key.
func (c *Client) InfoValue(key string) string {
	if c.Userinfo == nil {
		return ""
	}
	return c.Userinfo[key]
}

// Options sizes the buffers of every client in a Table.
type Options struct {
	MaxClients     int
	ReliableBudget int
	StuffSize      int
}

// Table is the fixed set of client slots. Entity number n maps to slot n-1.
type Table struct {
	clients []*Client
	opts    Options
}

func NewTable(opts Options) *Table {
	if opts.MaxClients <= 0 {
		opts.MaxClients = DefaultMaxClients
	}
	t := &Table{clients: make([]*Client, opts.MaxClients), opts: opts}
	for i := range t.clients {
		t.clients[i] = t.newClient(i + 1)
	}
	return t
}

func (t *Table) newClient(num int) *Client {
	return &Client{
		Num:      num,
		Reliable: NewReliableStream(t.opts.ReliableBudget),
		Stuff:    NewStuffBuffer(t.opts.StuffSize),
		Userinfo: map[string]string{},
	}
}

// Max returns the number of slots.
func (t *Table) Max() int { return len(t.clients) }

// Slot returns the client for entity number num regardless of state.
func (t *Table) Slot(num int) (*Client, error) {
	if num < 1 || num > len(t.clients) {
		return nil, fmt.Errorf("%w: entity %d outside [1,%d]", ErrNotAClient, num, len(t.clients))
	}
	return t.clients[num-1], nil
}

// Get returns the connected client for entity number num.
func (t *Table) Get(num int) (*Client, error) {
	c, err := t.Slot(num)
	if err != nil {
		return nil, err
	}
	if !c.Active() {
		return nil, fmt.Errorf("%w: entity %d is %s", ErrNotAClient, num, c.State)
	}
	return c, nil
}

// All returns every slot in entity order.
func (t *Table) All() []*Client { return t.clients }

// Connect resets slot num and marks it connected.
func (t *Table) Connect(num int, name string) (*Client, error) {
	if _, err := t.Slot(num); err != nil {
		return nil, err
	}
	c := t.newClient(num)
	c.Name = name
	c.State = StateConnected
	t.clients[num-1] = c
	return c, nil
}

// Disconnect frees slot num.
func (t *Table) Disconnect(num int) {
	if c, err := t.Slot(num); err == nil {
		c.State = StateFree
		c.Drop = false
		c.Reliable.Flush()
		c.Stuff.Clear()
	}
}
