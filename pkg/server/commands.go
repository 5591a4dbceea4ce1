package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/crystal-mush/goqwsv/pkg/console"
	"github.com/crystal-mush/goqwsv/pkg/maps"
	"github.com/crystal-mush/goqwsv/pkg/progs"
)

// registerCommands adds the server's console commands.
func (s *Server) registerCommands() {
	cmds := s.Console.Commands
	cmds.Register("map", s.cmdMap, "spawn a map")
	cmds.Register("status", s.cmdStatus, "show the map and client slots")
	cmds.Register("serverinfo", s.cmdServerInfo, "show or set a serverinfo key")
	cmds.Register("localinfo", s.cmdLocalInfo, "show or set a localinfo key")
	cmds.Register("record", s.cmdRecord, "start recording the session")
	cmds.Register("stop", s.cmdStop, "stop recording")
	cmds.Register("recordings", s.cmdRecordings, "list or delete stored recordings")
	cmds.Register("frags", s.cmdFrags, "show recent frags")
	cmds.Register("maps", s.cmdMaps, "list the maps directory")
	cmds.Register("builtin", s.cmdBuiltin, "call a builtin: builtin <id|name> [args...]")
}

func (s *Server) printf(format string, args ...any) { s.Console.Printf(format, args...) }

// --- Level ---

func (s *Server) cmdMap(a *console.Args) {
	if a.Argc() != 2 {
		s.printf("map <levelname> : continue game on a new level\n")
		return
	}
	name := a.Argv(1)
	entries, err := s.Maps.List()
	if err != nil {
		s.printf("Can't list maps: %v\n", err)
		return
	}
	if !hasMap(entries, name) {
		s.printf("Can't find %s.bsp\n", name)
		return
	}
	if err := s.SpawnServer(name); err != nil {
		s.printf("%v\n", err)
	}
}

func hasMap(entries []maps.Entry, name string) bool {
	for _, e := range entries {
		if strings.EqualFold(e.Name(), name) {
			return true
		}
	}
	return false
}

func (s *Server) cmdStatus(*console.Args) {
	s.printf("map:     %s\n", s.mapName)
	s.printf("time:    %.1f\n", s.time)
	s.printf("clients: %d/%d\n", s.connected(), s.Clients.Max())
	for _, cl := range s.Clients.All() {
		if !cl.Active() {
			continue
		}
		kind := "player"
		if cl.Spectator {
			kind = "spectator"
		}
		s.printf("%3d %-16s %-9s %4d %s\n", cl.Num, cl.Name, kind, cl.Ping, cl.State)
	}
}

func (s *Server) cmdServerInfo(a *console.Args) {
	s.infoCommand(a, s.serverInfo, s.SetServerInfo)
}

func (s *Server) cmdLocalInfo(a *console.Args) {
	s.infoCommand(a, s.localInfo, s.SetLocalInfo)
}

func (s *Server) infoCommand(a *console.Args, info map[string]string, set func(key, value string)) {
	switch a.Argc() {
	case 1:
		for _, k := range sortedKeys(info) {
			s.printf("%-20s %s\n", k, info[k])
		}
	case 3:
		set(a.Argv(1), a.Argv(2))
	default:
		s.printf("usage: %s [ <key> <value> ]\n", a.Argv(0))
	}
}

// --- Recording ---

func (s *Server) cmdRecord(a *console.Args) {
	if a.Argc() != 2 {
		s.printf("record <demoname>\n")
		return
	}
	if err := s.Recorder.Start(a.Argv(1)); err != nil {
		s.printf("%v\n", err)
		return
	}
	s.Recorder.ForceFrame = true
	s.printf("recording to %s\n", a.Argv(1))
}

func (s *Server) cmdStop(*console.Args) {
	if !s.Recorder.Recording() {
		s.printf("Not recording a demo.\n")
		return
	}
	name := s.Recorder.Name()
	if err := s.Recorder.Stop(s.time); err != nil {
		s.printf("%v\n", err)
	}
	s.printf("Completed demo %s\n", name)
}

func (s *Server) cmdRecordings(a *console.Args) {
	if s.Recordings == nil {
		s.printf("No recording database.\n")
		return
	}
	if a.Argc() == 3 && a.Argv(1) == "delete" {
		if err := s.Recordings.Delete(a.Argv(2)); err != nil {
			s.printf("%v\n", err)
			return
		}
		s.printf("Deleted %s\n", a.Argv(2))
		return
	}
	list, err := s.Recordings.List()
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	for _, info := range list {
		state := "recording"
		if info.Finished {
			state = fmt.Sprintf("%.1fs", info.Duration)
		}
		s.printf("%-24s %6d frames %8d bytes %s\n", info.Name, info.Frames, info.Bytes, state)
	}
	s.printf("%d recordings\n", len(list))
}

// --- Logs ---

func (s *Server) cmdFrags(a *console.Args) {
	if s.Frags == nil {
		s.printf("%s", s.FragRing.Current())
		return
	}
	n := 10
	if a.Argc() > 1 {
		if v, err := strconv.Atoi(a.Argv(1)); err == nil && v > 0 {
			n = v
		}
	}
	frags, err := s.Frags.Recent(context.Background(), n)
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	for _, f := range frags {
		s.printf("%s %s killed %s\n", f.At.Format("15:04:05"), f.Killer, f.Victim)
	}
}

func (s *Server) cmdMaps(*console.Args) {
	entries, err := s.Maps.List()
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	for _, e := range entries {
		s.printf("%-24s %8d\n", e.Name(), e.Size)
	}
	s.printf("%d maps\n", len(entries))
}

// --- Builtins ---

// cmdBuiltin calls a builtin with literal arguments: #n is an entity, x,y,z
// a vector, anything numeric a float and the rest strings.
func (s *Server) cmdBuiltin(a *console.Args) {
	if a.Argc() < 2 {
		s.printf("usage: builtin <id|name> [args...]\n")
		return
	}
	id, ok := s.lookupBuiltin(a.Argv(1))
	if !ok {
		s.printf("Unknown builtin %s\n", a.Argv(1))
		return
	}
	args := make([]any, 0, a.Argc()-2)
	for i := 2; i < a.Argc(); i++ {
		args = append(args, parseLiteral(a.Argv(i)))
	}
	b, _ := s.Builtins.Lookup(id)
	err := s.Call(id, args...)
	var fatal *progs.FatalError
	switch {
	case errors.As(err, &fatal):
		s.printf("%s: fatal: %v\n", b.Name, err)
	case err != nil:
		s.printf("%s: %v\n", b.Name, err)
	default:
		s.printf("%s returned %s\n", b.Name, s.describeReturn())
	}
}

func (s *Server) lookupBuiltin(arg string) (int, bool) {
	if id, err := strconv.Atoi(arg); err == nil {
		_, ok := s.Builtins.Lookup(id)
		return id, ok
	}
	return s.Builtins.Find(arg)
}

// describeReturn shows the return slot as a float and, when it holds a
// valid string handle, as a string.
func (s *Server) describeReturn() string {
	f := s.Progs.ReturnedFloat()
	out := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if str, err := s.Progs.ReturnedString(); err == nil && str != "" {
		out += fmt.Sprintf(" %q", str)
	}
	return out
}

func parseLiteral(arg string) any {
	if n, ok := strings.CutPrefix(arg, "#"); ok {
		if v, err := strconv.Atoi(n); err == nil {
			return progs.Entity(v)
		}
	}
	if parts := strings.Split(arg, ","); len(parts) == 3 {
		var v progs.Vec3
		valid := true
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
			if err != nil {
				valid = false
				break
			}
			v[i] = float32(f)
		}
		if valid {
			return v
		}
	}
	if f, err := strconv.ParseFloat(arg, 32); err == nil {
		return float32(f)
	}
	return arg
}
