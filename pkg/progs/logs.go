package progs

import (
	"log"

	"github.com/crystal-mush/goqwsv/pkg/fraglog"
)

// fnLogFrag records a kill between two client entities. Anything else is
// ignored. The frag_log_type cvar selects the old-style line format.
func fnLogFrag(c *Context) error {
	killer, err := c.Router.Clients.Slot(c.Entity(0))
	if err != nil {
		return nil
	}
	victim, err := c.Router.Clients.Slot(c.Entity(1))
	if err != nil {
		return nil
	}
	f := fraglog.Frag{
		Killer:     killer.Name,
		Victim:     victim.Name,
		KillerTeam: killer.Team,
		VictimTeam: victim.Team,
		At:         c.Now(),
	}
	line := f.Line(c.Console.Cvars.Value("frag_log_type") != 0)
	if c.Frags == nil {
		return nil
	}
	if err := c.Frags.LogFrag(f, line); err != nil {
		log.Printf("progs: logfrag: %v", err)
	}
	return nil
}

// fnLog appends text to a named mod log, echoing it to the console when
// the second argument is set.
func fnLog(c *Context) error {
	name, err := c.String(0)
	if err != nil {
		return err
	}
	echo := c.Float(1) != 0
	text, err := c.VarString(2)
	if err != nil {
		return err
	}
	if echo {
		c.Console.SysPrint(fraglog.CleanText(text))
	}
	if c.Logs == nil {
		return nil
	}
	if err := c.Logs.Append(name, text); err != nil {
		c.print("couldn't open log file %s\n", name)
		log.Printf("progs: log: %v", err)
	}
	return nil
}

// fnForceDemoFrame makes the recorder send frames even when they are
// empty. With an argument of 1 one is sent immediately.
func fnForceDemoFrame(c *Context) error {
	rec := c.Router.Demo
	if rec == nil {
		return nil
	}
	rec.ForceFrame = true
	if c.Float(0) == 1 {
		return wrapRun(rec.SendFrame(float64(c.G.Time)), "forcedemoframe")
	}
	return nil
}
