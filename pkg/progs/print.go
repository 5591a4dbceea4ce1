package progs

import (
	"log"

	"github.com/crystal-mush/goqwsv/pkg/client"
)

// --- Console output ---

func fnDprint(c *Context) error {
	s, err := c.VarString(0)
	if err != nil {
		return err
	}
	c.Console.Print(s)
	return nil
}

// fnConPrint writes to the server console even while output is captured.
func fnConPrint(c *Context) error {
	s, err := c.VarString(0)
	if err != nil {
		return err
	}
	c.Console.SysPrint(s)
	return nil
}

func fnEprint(c *Context) error {
	c.Console.Print(c.Entities.Describe(c.Entity(0)))
	return nil
}

func fnCoreDump(c *Context) error {
	c.Console.Print(c.Entities.DescribeAll())
	return nil
}

func fnBreak(c *Context) error {
	c.print("break statement\n")
	return runErrorf("break statement")
}

// --- Errors ---

// fnError reports a server error and stops the process.
func fnError(c *Context) error {
	s, err := c.VarString(0)
	if err != nil {
		return err
	}
	fn := c.VM.FunctionName()
	c.print("======SERVER ERROR in %s:\n%s\n", fn, s)
	c.Console.Print(c.Entities.Describe(c.G.Self))
	return &FatalError{Function: fn, Msg: s}
}

// fnObjError reports an error against self, removes it and aborts the
// script.
func fnObjError(c *Context) error {
	s, err := c.VarString(0)
	if err != nil {
		return err
	}
	c.print("======OBJECT ERROR in %s:\n%s\n", c.VM.FunctionName(), s)
	c.Console.Print(c.Entities.Describe(c.G.Self))
	if err := c.Entities.Remove(c.G.Self); err != nil {
		log.Printf("progs: objerror: remove %d: %v", c.G.Self, err)
	}
	return runErrorf("Program error")
}

// --- Client output ---

func fnBprint(c *Context) error {
	level := int(c.Float(0))
	s, err := c.VarString(1)
	if err != nil {
		return err
	}
	c.Console.Print(s)
	c.Router.BroadcastPrint(level, s)
	return nil
}

// printTarget resolves a print recipient. A bad entity is reported on the
// console and yields nil.
func (c *Context) printTarget(ent int, what string) *client.Client {
	cl, err := c.Router.ClientFor(ent)
	if err != nil {
		c.print("tried to %s to a non-client\n", what)
		return nil
	}
	return cl
}

func fnSprint(c *Context) error {
	cl := c.printTarget(c.Entity(0), "sprint")
	if cl == nil {
		return nil
	}
	level := int(c.Float(1))
	s, err := c.VarString(2)
	if err != nil {
		return err
	}
	return wrapRun(c.Router.Sprint(cl, level, s), "sprint")
}

func fnCenterPrint(c *Context) error {
	cl := c.printTarget(c.Entity(0), "centerprint")
	if cl == nil {
		return nil
	}
	s, err := c.VarString(1)
	if err != nil {
		return err
	}
	return wrapRun(c.Router.CenterPrint(cl, s), "centerprint")
}

func fnStuffCmd(c *Context) error {
	cl, err := c.Router.ClientFor(c.Entity(0))
	if err != nil {
		return &RunError{Msg: "Parm 0 not a client", Err: err}
	}
	s, err := c.String(1)
	if err != nil {
		return err
	}
	return wrapRun(c.Router.StuffCmd(cl, s), "stuffcmd")
}
