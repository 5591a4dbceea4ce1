// Package route maps progs message destinations onto the server's output
// buffers and per-client reliable streams, mirroring what it sends into the
// active session recording.
package route

import (
	"errors"
	"fmt"
	"log"

	"github.com/crystal-mush/goqwsv/pkg/client"
	"github.com/crystal-mush/goqwsv/pkg/demo"
	"github.com/crystal-mush/goqwsv/pkg/metrics"
	"github.com/crystal-mush/goqwsv/pkg/wire"
)

// Destination codes used by the Write* builtins.
const (
	DestBroadcast = 0 // unreliable datagram to everyone
	DestOne       = 1 // reliable to msg_entity
	DestAll       = 2 // reliable to everyone
	DestInit      = 3 // signon buffer, loading only
	DestMulticast = 4 // multicast scratch buffer
)

var (
	ErrBadDestination     = errors.New("route: bad destination")
	ErrInitOutsideLoading = errors.New("route: MSG_INIT can only be written while loading")
)

// Router owns the shared server output buffers. Fields are wired once by
// the server and not changed while a frame runs.
type Router struct {
	Clients   *client.Table
	Datagram  *wire.Buffer
	Reliable  *wire.Buffer
	Signon    *wire.Buffer
	Multicast *wire.Buffer
	Demo      *demo.Recorder
	Metrics   *metrics.Metrics

	// Loading reports whether the server is spawning a map.
	Loading func() bool
	// SpecPrint returns the sv_specprint category mask.
	SpecPrint func() int
}

// Sizes of the shared buffers for New.
type Sizes struct {
	Datagram  int
	Reliable  int
	Signon    int
	Multicast int
}

// DefaultSizes are the stock server buffer sizes.
var DefaultSizes = Sizes{Datagram: 1450, Reliable: 1450, Signon: 8192, Multicast: 1450}

func New(clients *client.Table, rec *demo.Recorder, sizes Sizes) *Router {
	return &Router{
		Clients:   clients,
		Datagram:  wire.NewBuffer("datagram", sizes.Datagram, true),
		Reliable:  wire.NewBuffer("reliable datagram", sizes.Reliable, false),
		Signon:    wire.NewBuffer("signon", sizes.Signon, false),
		Multicast: wire.NewBuffer("multicast", sizes.Multicast, false),
		Demo:      rec,
	}
}

// Route returns the shared buffer for a destination code. DestOne has no
// shared buffer and is rejected; use ClientFor and WriteOne.
func (r *Router) Route(code int) (*wire.Buffer, error) {
	switch code {
	case DestBroadcast:
		return r.Datagram, nil
	case DestAll:
		return r.Reliable, nil
	case DestInit:
		if r.Loading == nil || !r.Loading() {
			return nil, ErrInitOutsideLoading
		}
		return r.Signon, nil
	case DestMulticast:
		return r.Multicast, nil
	case DestOne:
		return nil, fmt.Errorf("%w: MSG_ONE has no shared buffer", ErrBadDestination)
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadDestination, code)
	}
}

// ClientFor resolves an entity number to a connected client.
func (r *Router) ClientFor(ent int) (*client.Client, error) {
	return r.Clients.Get(ent)
}

// Write sends one encoded fragment to destination code. msgEntity is only
// used for DestOne.
func (r *Router) Write(code, msgEntity int, p []byte) error {
	if code == DestOne {
		c, err := r.ClientFor(msgEntity)
		if err != nil {
			return fmt.Errorf("route: WriteDest: %w", err)
		}
		return r.WriteOne(c, p)
	}
	buf, err := r.Route(code)
	if err != nil {
		return err
	}
	if _, err := buf.Write(p); err != nil {
		return err
	}
	if code == DestAll {
		r.recordAll(p)
	}
	return nil
}

// WriteOne appends p to c's reliable stream and records it for c.
func (r *Router) WriteOne(c *client.Client, p []byte) error {
	if err := r.send(c, p); err != nil {
		return err
	}
	r.record(demo.KindSingle, c.Num-1, p)
	return nil
}

// send appends p to c's reliable stream without recording it.
func (r *Router) send(c *client.Client, p []byte) error {
	if _, err := c.Reliable.Write(p); err != nil {
		r.Metrics.ReliableOverflow()
		return fmt.Errorf("route: client %d: %w", c.Num, err)
	}
	r.Metrics.ReliableBytes(len(p))
	return nil
}

// ReliableAll sends p to every spawned client's reliable stream and records
// it once as dem_all. Clients that cannot take it are skipped and logged.
func (r *Router) ReliableAll(p []byte) {
	for _, c := range r.Clients.All() {
		if c.State != client.StateSpawned {
			continue
		}
		if err := r.send(c, p); err != nil {
			log.Printf("route: %v", err)
		}
	}
	r.recordAll(p)
}

func (r *Router) recordAll(p []byte) { r.record(demo.KindAll, 0, p) }

func (r *Router) record(kind demo.Kind, to int, p []byte) {
	if r.Demo == nil || !r.Demo.Recording() {
		return
	}
	if err := r.Demo.Write(kind, to, p); err != nil {
		log.Printf("route: demo %s: %v", kind, err)
	}
}
