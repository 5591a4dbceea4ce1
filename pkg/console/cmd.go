package console

import (
	"sort"
	"strings"
)

// MaxArgs caps the number of tokens kept from one command line.
const MaxArgs = 80

// Args is a tokenized command line.
type Args struct {
	argv []string
	args string // everything after the first token
}

// Tokenize splits a command line into tokens. Quoted strings form one token,
// a "//" outside quotes ends the line, and parsing stops at a newline.
func Tokenize(text string) *Args {
	a := &Args{}
	i := 0
	for {
		for i < len(text) && text[i] <= ' ' && text[i] != '\n' {
			i++
		}
		if i >= len(text) || text[i] == '\n' {
			return a
		}
		if len(a.argv) == 1 {
			rest := text[i:]
			if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
				rest = rest[:nl]
			}
			a.args = strings.TrimRight(rest, " \t\r")
		}
		if strings.HasPrefix(text[i:], "//") {
			return a
		}
		var tok string
		if text[i] == '"' {
			i++
			start := i
			for i < len(text) && text[i] != '"' {
				i++
			}
			tok = text[start:i]
			if i < len(text) {
				i++
			}
		} else {
			start := i
			for i < len(text) && text[i] > ' ' {
				i++
			}
			tok = text[start:i]
		}
		if len(a.argv) < MaxArgs {
			a.argv = append(a.argv, tok)
		}
	}
}

// Argc returns the number of tokens.
func (a *Args) Argc() int { return len(a.argv) }

// Argv returns token i, or "" when i is out of range.
func (a *Args) Argv(i int) string {
	if i < 0 || i >= len(a.argv) {
		return ""
	}
	return a.argv[i]
}

// Args returns the raw text after the command name.
func (a *Args) Args() string { return a.args }

// CommandFunc handles one console command.
type CommandFunc func(args *Args)

// Command is a registered console command.
type Command struct {
	Name    string
	Handler CommandFunc
	Help    string
}

// Commands is the console command registry.
type Commands struct {
	cmds map[string]*Command
}

func NewCommands() *Commands {
	return &Commands{cmds: make(map[string]*Command)}
}

// Register adds a command, replacing any existing one with the same name.
func (c *Commands) Register(name string, handler CommandFunc, help string) {
	c.cmds[strings.ToLower(name)] = &Command{Name: name, Handler: handler, Help: help}
}

// Find returns the named command. Lookup is case-insensitive.
func (c *Commands) Find(name string) (*Command, bool) {
	cmd, ok := c.cmds[strings.ToLower(name)]
	return cmd, ok
}

// Names returns every registered command name, sorted.
func (c *Commands) Names() []string {
	out := make([]string, 0, len(c.cmds))
	for _, cmd := range c.cmds {
		out = append(out, cmd.Name)
	}
	sort.Strings(out)
	return out
}
