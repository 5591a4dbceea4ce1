// Package server wires the qwsv subsystems together: the client table, the
// output router, the string manager, the console and the recorder, plus the
// stores that outlive a map.
package server

import (
	"errors"
	"fmt"
	"log"

	"github.com/crystal-mush/goqwsv/pkg/client"
	"github.com/crystal-mush/goqwsv/pkg/config"
	"github.com/crystal-mush/goqwsv/pkg/console"
	"github.com/crystal-mush/goqwsv/pkg/demo"
	"github.com/crystal-mush/goqwsv/pkg/fraglog"
	"github.com/crystal-mush/goqwsv/pkg/maps"
	"github.com/crystal-mush/goqwsv/pkg/metrics"
	"github.com/crystal-mush/goqwsv/pkg/progs"
	"github.com/crystal-mush/goqwsv/pkg/recstore"
	"github.com/crystal-mush/goqwsv/pkg/route"
	"github.com/crystal-mush/goqwsv/pkg/strtab"
	"github.com/crystal-mush/goqwsv/pkg/wire"
)

// MaxLightStyles is the number of light style slots.
const MaxLightStyles = 64

// Server is the running game server.
type Server struct {
	Conf     *config.Config
	Console  *console.Console
	Clients  *client.Table
	Router   *route.Router
	Strings  *strtab.Manager
	Recorder *demo.Recorder
	Progs    *progs.Context
	Builtins *progs.Registry
	Metrics  *metrics.Metrics
	Maps     *maps.Dir
	ModLogs  *fraglog.ModLog
	FragRing *fraglog.Ring

	Frags      *fraglog.Store  // nil when frag_db is unset
	Recordings *recstore.Store // nil when recording_db is unset

	// OnSpawn, if set, runs while a new map is loading. This is where the
	// interpreter runs the world's spawn functions.
	OnSpawn func(mapName string) error

	loading     bool
	active      bool
	spawnCount  int
	mapName     string
	serverInfo  map[string]string
	localInfo   map[string]string
	lightStyles [MaxLightStyles]string
	time        float64
	fatal       error
}

// New builds a server from cfg. m may be nil to run without metrics.
func New(cfg *config.Config, m *metrics.Metrics) (*Server, error) {
	s := &Server{
		Conf:       cfg,
		Metrics:    m,
		Builtins:   progs.NewRegistry(),
		Maps:       maps.NewDir(cfg.MapsDir),
		ModLogs:    &fraglog.ModLog{Dir: cfg.GameDir},
		FragRing:   fraglog.NewRing(0),
		serverInfo: map[string]string{},
		localInfo:  map[string]string{},
	}

	if cfg.FragDB != "" {
		st, err := fraglog.Open(cfg.FragDB)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.Frags = st
	}
	if cfg.RecordingDB != "" {
		st, err := recstore.Open(cfg.RecordingDB)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("server: %w", err)
		}
		s.Recordings = st
	}

	// --- Output ---
	s.Recorder = demo.NewRecorder()
	if cfg.DemoDir != "" {
		s.Recorder.AddSink(demo.NewFileSink(cfg.DemoDir))
	}
	if s.Recordings != nil {
		s.Recorder.AddSink(s.Recordings)
	}
	s.Recorder.OnBytes = m.DemoBytes

	s.Clients = client.NewTable(client.Options{
		MaxClients:     cfg.MaxClients,
		ReliableBudget: cfg.ReliableBudget,
		StuffSize:      cfg.StuffTextMax,
	})
	s.Router = route.New(s.Clients, s.Recorder, route.Sizes{
		Datagram:  cfg.DatagramSize,
		Reliable:  cfg.ReliableBudget,
		Signon:    cfg.SignonSize,
		Multicast: cfg.MulticastSize,
	})
	s.Router.Metrics = m
	s.Router.Loading = s.Loading

	// --- Console ---
	s.Console = console.New()
	s.Console.Redirect = console.NewRedirector(cfg.RedirectSize)
	s.Console.Redirect.Flush = s.flushRedirect
	s.Console.RegisterDefaults()
	s.registerCvars()
	s.registerCommands()
	s.Router.SpecPrint = func() int { return int(s.Console.Cvars.Value("sv_specprint")) }

	// --- Progs ---
	s.Strings = strtab.NewManager(strtab.NewConstantPool(nil), cfg.MaxDynamicStrings)
	s.Progs = progs.NewContext(s.Strings, s.Router, s.Console)
	s.Progs.Metrics = m
	s.Progs.Host = s
	s.Progs.Maps = s.Maps
	s.Progs.Frags = s
	s.Progs.Logs = s.ModLogs

	if m != nil {
		m.Sample = func(m *metrics.Metrics) {
			m.SetClientsConnected(s.connected())
			m.SetDynamicStrings(s.Strings.DynamicInUse())
		}
	}
	return s, nil
}

// Close stops any recording and closes the stores.
func (s *Server) Close() error {
	var errs []error
	if s.Recorder != nil && s.Recorder.Recording() {
		errs = append(errs, s.Recorder.Stop(s.time))
	}
	if s.Recordings != nil {
		errs = append(errs, s.Recordings.Close())
	}
	if s.Frags != nil {
		errs = append(errs, s.Frags.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) registerCvars() {
	cv := s.Console.Cvars
	cv.Register("sv_specprint", fmt.Sprint(s.Conf.SpecPrint), 0)
	cv.Register("frag_log_type", fmt.Sprint(s.Conf.FragLogType), 0)
	host := cv.Register("hostname", "unnamed", console.CvarServerInfo)
	host.OnChange = func(v *console.Cvar) { s.serverInfo[v.Name] = v.String }
	s.serverInfo[host.Name] = host.String

	for name, value := range s.Conf.Cvars {
		if _, ok := cv.Find(name); !ok {
			cv.Register(name, value, 0)
			continue
		}
		if err := cv.Set(name, value); err != nil {
			log.Printf("server: cvar %s: %v", name, err)
		}
	}
}

// --- Frames ---

// Time returns the server clock in seconds.
func (s *Server) Time() float64 { return s.time }

// Frame advances the clock by dt, runs queued console commands, drops
// clients marked for it and flushes the recording frame. It returns the
// first process-fatal error raised by a builtin since the last frame.
func (s *Server) Frame(dt float64) error {
	s.time += dt
	s.Progs.G.Time = float32(s.time)
	s.Console.Execute()

	for _, cl := range s.Clients.All() {
		if cl.Drop {
			s.dropClient(cl)
		}
	}
	if err := s.Recorder.SendFrame(s.time); err != nil {
		log.Printf("server: demo frame: %v", err)
	}
	s.Router.Datagram.Clear()

	if err := s.fatal; err != nil {
		s.fatal = nil
		return err
	}
	return nil
}

// Call runs builtin id with args and records a process-fatal error for the
// next Frame.
func (s *Server) Call(id int, args ...any) error {
	if err := s.Progs.SetArgs(args...); err != nil {
		return err
	}
	err := s.Builtins.Call(s.Progs, id, len(args))
	var fatal *progs.FatalError
	if errors.As(err, &fatal) {
		s.fatal = err
	}
	return err
}

func (s *Server) dropClient(cl *client.Client) {
	log.Printf("server: dropping client %d (%s)", cl.Num, cl.Name)
	name := cl.Name
	s.Clients.Disconnect(cl.Num)
	s.Router.BroadcastPrint(wire.PrintHigh, name+" left the game\n")
}

func (s *Server) connected() int {
	n := 0
	for _, cl := range s.Clients.All() {
		if cl.Active() {
			n++
		}
	}
	return n
}

// flushRedirect delivers captured console text to the client that asked
// for it.
func (s *Server) flushRedirect(t console.Target, text string) {
	switch t.Kind {
	case console.RedirectClient, console.RedirectModClient:
		cl, err := s.Clients.Slot(t.Client)
		if err != nil {
			log.Printf("server: redirect %s: %v", t, err)
			return
		}
		if err := s.Router.ClientPrint(cl, wire.PrintHigh, text); err != nil {
			log.Printf("server: redirect %s: %v", t, err)
		}
	default:
		log.Printf("server: redirect %s: %s", t, text)
	}
}
