package server

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/crystal-mush/goqwsv/pkg/fraglog"
	"github.com/crystal-mush/goqwsv/pkg/progs"
)

// --- Level state ---

func (s *Server) Loading() bool   { return s.loading }
func (s *Server) Active() bool    { return s.active }
func (s *Server) SpawnCount() int { return s.spawnCount }

// MapName returns the map being played, "" before the first spawn.
func (s *Server) MapName() string { return s.mapName }

// ServerInfo returns a key of the public server info string.
func (s *Server) ServerInfo(key string) string { return s.serverInfo[key] }

// LocalInfo returns a key of the server-private info string.
func (s *Server) LocalInfo(key string) string { return s.localInfo[key] }

// SetServerInfo sets or, with an empty value, removes a serverinfo key.
func (s *Server) SetServerInfo(key, value string) { setInfo(s.serverInfo, key, value) }

// SetLocalInfo sets or, with an empty value, removes a localinfo key.
func (s *Server) SetLocalInfo(key, value string) { setInfo(s.localInfo, key, value) }

func setInfo(m map[string]string, key, value string) {
	if value == "" {
		delete(m, key)
		return
	}
	m[key] = value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetLightStyle stores a light style pattern for clients that join later.
func (s *Server) SetLightStyle(style int, value string) error {
	if style < 0 || style >= MaxLightStyles {
		return fmt.Errorf("server: light style %d out of range", style)
	}
	s.lightStyles[style] = value
	return nil
}

// LightStyle returns the pattern stored for style.
func (s *Server) LightStyle(style int) string {
	if style < 0 || style >= MaxLightStyles {
		return ""
	}
	return s.lightStyles[style]
}

// SpawnServer starts map name. Everything owned by the previous level is
// released: dynamic strings, precache lists, the signon buffer and queued
// broadcasts.
func (s *Server) SpawnServer(name string) error {
	log.Printf("server: spawning %s", name)
	s.active = false
	s.loading = true
	defer func() { s.loading = false }()

	s.spawnCount++
	s.mapName = name
	if n := s.Strings.ClearDynamic(); n > 0 {
		log.Printf("server: released %d dynamic strings", n)
	}
	s.Metrics.SetDynamicStrings(0)
	s.Progs.Assets.Reset()
	s.Router.Signon.Clear()
	s.Router.Reliable.Clear()
	s.Router.Datagram.Clear()
	s.Router.Multicast.Clear()
	s.lightStyles = [MaxLightStyles]string{}
	s.SetServerInfo("map", name)

	if s.OnSpawn != nil {
		if err := s.OnSpawn(name); err != nil {
			return fmt.Errorf("server: spawn %s: %w", name, err)
		}
	}
	s.active = true
	return nil
}

// LogFrag appends a frag line to the frag ring and, when a frag database is
// open, records the frag there too.
func (s *Server) LogFrag(f fraglog.Frag, line string) error {
	s.FragRing.Print(line)
	if s.Frags == nil {
		return nil
	}
	return s.Frags.Record(context.Background(), f)
}

var (
	_ progs.Host       = (*Server)(nil)
	_ progs.FragLogger = (*Server)(nil)
)
