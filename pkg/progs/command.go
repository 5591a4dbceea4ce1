package progs

import (
	"time"

	"github.com/crystal-mush/goqwsv/pkg/console"
)

// --- Cvars ---

func fnCvar(c *Context) error {
	name, err := c.String(0)
	if err != nil {
		return err
	}
	c.ReturnFloat(float32(c.Console.Cvars.Value(name)))
	return nil
}

func fnCvarSet(c *Context) error {
	name, err := c.String(0)
	if err != nil {
		return err
	}
	val, err := c.String(1)
	if err != nil {
		return err
	}
	if _, ok := c.Console.Cvars.Find(name); !ok {
		c.print("cvar_set: variable %s not found\n", name)
		return nil
	}
	return wrapRun(c.Console.Cvars.Set(name, val), "cvar_set")
}

// --- Command buffer ---

// addText queues s. An overflow drops s; the buffer logs it.
func (c *Context) addText(s string) {
	_ = c.Console.Cbuf.AddText(s)
}

// executeSaved drains the command buffer, keeping self and other intact
// across any script code the commands run.
func (c *Context) executeSaved() {
	self, other := c.G.Self, c.G.Other
	c.Console.Execute()
	c.G.Self, c.G.Other = self, other
}

func fnLocalCmd(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	c.addText(s)
	return nil
}

func fnExecuteCmd(c *Context) error {
	c.executeSaved()
	return nil
}

// fnReadCmd runs a command and returns its console output. An outer
// capture is suspended for the duration and restored afterwards.
func fnReadCmd(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	c.executeSaved()
	c.addText(s)

	r := c.Console.Redirect
	saved := r.SaveAndSuspend()
	defer r.Restore(saved)
	if err := r.BeginCapture(console.Target{Kind: console.RedirectMod}); err != nil {
		return wrapRun(err, "readcmd")
	}
	c.executeSaved()
	out, err := r.EndCapture()
	if err != nil {
		return wrapRun(err, "readcmd")
	}
	c.ReturnTemp(out)
	return nil
}

// fnRedirectCmd runs a command with its output sent to a client. It does
// nothing while another capture is active.
func fnRedirectCmd(c *Context) error {
	r := c.Console.Redirect
	if r.Active() {
		return nil
	}
	ent := c.Entity(0)
	if _, err := c.Router.Clients.Slot(ent); err != nil {
		return &RunError{Msg: "Parm 0 not a client", Err: err}
	}
	s, err := c.String(1)
	if err != nil {
		return err
	}
	c.addText(s)
	if err := r.BeginCapture(console.Target{Kind: console.RedirectModClient, Client: ent}); err != nil {
		return wrapRun(err, "redirectcmd")
	}
	c.executeSaved()
	_, err = r.EndCapture()
	return wrapRun(err, "redirectcmd")
}

// fnChangeLevel queues a map change. Only the first request per map is
// honored.
func fnChangeLevel(c *Context) error {
	name, err := c.String(0)
	if err != nil {
		return err
	}
	spawn := c.Host.SpawnCount()
	if spawn == c.lastChangelevel {
		return nil
	}
	c.lastChangelevel = spawn
	c.addText("map " + name + "\n")
	return nil
}

// --- Tokenizer ---

func fnTokanize(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	c.Tokens = console.Tokenize(s)
	return nil
}

func fnArgc(c *Context) error {
	c.ReturnFloat(float32(c.Tokens.Argc()))
	return nil
}

func fnArgv(c *Context) error {
	n := int(c.Float(0))
	if argc := c.Tokens.Argc(); n >= argc {
		n = argc - 1
	}
	if n < 0 {
		n = 0
	}
	c.ReturnTemp(c.Tokens.Argv(n))
	return nil
}

// --- Interpreter hooks ---

// fnCallTimeOfDay calls the mod's timeofday function with the local date
// split into sec, min, hour, mday, month (0-11), year and a display string.
func fnCallTimeOfDay(c *Context) error {
	fn, ok := c.VM.FindFunction("timeofday")
	if !ok {
		return nil
	}
	now := c.Now()
	if err := c.SetArgs(
		now.Second(), now.Minute(), now.Hour(), now.Day(),
		int(now.Month()-time.January), now.Year(),
		now.Format("Mon Jan 02, 15:04 2006"),
	); err != nil {
		return wrapRun(err, "calltimeofday")
	}
	return wrapRun(c.VM.Execute(fn), "timeofday")
}

func fnTeamField(c *Context) error {
	c.TeamField = int(c.Int(0))
	return nil
}

func fnTraceOn(c *Context) error {
	c.VM.SetTrace(true)
	return nil
}

func fnTraceOff(c *Context) error {
	c.VM.SetTrace(false)
	return nil
}
