// Package console is the server's text command layer: the command buffer,
// tokenizer, command and cvar registries, and the redirect-aware output
// sink used by Con_Printf-style callers.
package console

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Console ties the command layer together.
type Console struct {
	Cbuf     *Cbuf
	Commands *Commands
	Cvars    *Cvars
	Redirect *Redirector

	// Out receives console output that is not captured. Nil sends it to the
	// process log.
	Out io.Writer
}

func New() *Console {
	return &Console{
		Cbuf:     NewCbuf(0),
		Commands: NewCommands(),
		Cvars:    NewCvars(),
		Redirect: NewRedirector(0),
	}
}

// Printf writes to the active capture, or to Out when nothing is captured.
func (c *Console) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

// Print is Printf without formatting.
func (c *Console) Print(s string) {
	if c.Redirect.Active() {
		c.Redirect.Write(s)
		return
	}
	c.SysPrint(s)
}

// SysPrint writes s to Out, or the process log, bypassing any capture.
func (c *Console) SysPrint(s string) {
	if c.Out != nil {
		io.WriteString(c.Out, s)
		return
	}
	log.Print(strings.TrimRight(s, "\n"))
}

// ExecuteLine runs one command line: a registered command, else a cvar
// query or assignment.
func (c *Console) ExecuteLine(line string) {
	args := Tokenize(line)
	if args.Argc() == 0 {
		return
	}
	name := args.Argv(0)
	if cmd, ok := c.Commands.Find(name); ok {
		cmd.Handler(args)
		return
	}
	if v, ok := c.Cvars.Find(name); ok {
		if args.Argc() == 1 {
			c.Printf("\"%s\" is \"%s\"\n", v.Name, v.String)
			return
		}
		if err := c.Cvars.Set(name, args.Argv(1)); err != nil {
			c.Printf("%v\n", err)
		}
		return
	}
	c.Printf("Unknown command \"%s\"\n", name)
}

// Execute drains the command buffer.
func (c *Console) Execute() {
	c.Cbuf.Execute(c.ExecuteLine)
}

// RegisterDefaults adds the commands every server has.
func (c *Console) RegisterDefaults() {
	c.Commands.Register("echo", func(a *Args) {
		c.Printf("%s\n", a.Args())
	}, "print text to the console")
	c.Commands.Register("set", func(a *Args) {
		if a.Argc() != 3 {
			c.Printf("usage: set <variable> <value>\n")
			return
		}
		if _, ok := c.Cvars.Find(a.Argv(1)); !ok {
			c.Cvars.Register(a.Argv(1), a.Argv(2), 0)
			return
		}
		if err := c.Cvars.Set(a.Argv(1), a.Argv(2)); err != nil {
			c.Printf("%v\n", err)
		}
	}, "create or change a cvar")
	c.Commands.Register("cvarlist", func(a *Args) {
		all := c.Cvars.All()
		for _, v := range all {
			c.Printf("%-20s \"%s\"\n", v.Name, v.String)
		}
		c.Printf("%d cvars\n", len(all))
	}, "list every cvar")
	c.Commands.Register("cmdlist", func(a *Args) {
		names := c.Commands.Names()
		for _, n := range names {
			c.Printf("%s\n", n)
		}
		c.Printf("%d commands\n", len(names))
	}, "list every command")
}
