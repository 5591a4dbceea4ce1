package console

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrUnknownCvar = errors.New("console: unknown cvar")

// Cvar flags.
const (
	CvarServerInfo = 1 << iota // mirrored into serverinfo
	CvarReadOnly               // cannot be changed from the console or progs
)

// Cvar is a named console variable. Value is the numeric reading of String.
type Cvar struct {
	Name   string
	String string
	Value  float64
	Flags  int

	// OnChange, if set, runs after every successful Set.
	OnChange func(v *Cvar)
}

// Cvars is the console variable registry.
type Cvars struct {
	vars map[string]*Cvar
}

func NewCvars() *Cvars {
	return &Cvars{vars: make(map[string]*Cvar)}
}

// Register adds a cvar with a default value. Registering an existing name
// returns the existing cvar unchanged.
func (c *Cvars) Register(name, def string, flags int) *Cvar {
	key := strings.ToLower(name)
	if v, ok := c.vars[key]; ok {
		return v
	}
	v := &Cvar{Name: name, Flags: flags}
	v.set(def)
	c.vars[key] = v
	return v
}

// Find returns the named cvar.
func (c *Cvars) Find(name string) (*Cvar, bool) {
	v, ok := c.vars[strings.ToLower(name)]
	return v, ok
}

// Value returns the numeric value of a cvar, 0 when it does not exist.
func (c *Cvars) Value(name string) float64 {
	if v, ok := c.Find(name); ok {
		return v.Value
	}
	return 0
}

// StringValue returns the string value of a cvar, "" when it does not exist.
func (c *Cvars) StringValue(name string) string {
	if v, ok := c.Find(name); ok {
		return v.String
	}
	return ""
}

// Set changes a cvar.
func (c *Cvars) Set(name, value string) error {
	v, ok := c.Find(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCvar, name)
	}
	if v.Flags&CvarReadOnly != 0 {
		return fmt.Errorf("console: %s is read-only", v.Name)
	}
	v.set(value)
	if v.OnChange != nil {
		v.OnChange(v)
	}
	return nil
}

func (v *Cvar) set(s string) {
	v.String = s
	v.Value = Atof(s)
}

// All returns every cvar, sorted by name.
func (c *Cvars) All() []*Cvar {
	out := make([]*Cvar, 0, len(c.vars))
	for _, v := range c.vars {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Atof parses the longest numeric prefix of s after leading whitespace,
// returning 0 when there is none. Hex values with a 0x prefix are accepted.
func Atof(s string) float64 {
	s = strings.TrimLeft(s, " \t\r\n")
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		end := 2
		for end < len(s) && strings.IndexByte("0123456789abcdefABCDEF", s[end]) >= 0 {
			end++
		}
		n, _ := strconv.ParseUint(s[2:end], 16, 64)
		return sign * float64(n)
	}
	end := 0
	seenDot, seenDigit := false, false
	for end < len(s) {
		ch := s[end]
		if ch >= '0' && ch <= '9' {
			seenDigit = true
		} else if ch == '.' && !seenDot {
			seenDot = true
		} else {
			break
		}
		end++
	}
	if !seenDigit {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return sign * f
}
