package progs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/crystal-mush/goqwsv/pkg/console"
	"github.com/crystal-mush/goqwsv/pkg/strtab"
)

// --- Conversion ---

func fnFtos(c *Context) error {
	v := c.Float(0)
	if f := float64(v); f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
		c.ReturnTemp(strconv.Itoa(int(f)))
		return nil
	}
	c.ReturnTemp(fmt.Sprintf("%5.1f", v))
	return nil
}

func fnVtos(c *Context) error {
	v := c.Vector(0)
	c.ReturnTemp(fmt.Sprintf("'%5.1f %5.1f %5.1f'", v[0], v[1], v[2]))
	return nil
}

func fnStof(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	c.ReturnFloat(float32(console.Atof(s)))
	return nil
}

// --- Substrings ---

// fnSubstr returns up to n bytes of s starting at start. A negative start
// counts from 0; a negative n yields "".
func fnSubstr(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	start, n := int(c.Float(1)), int(c.Float(2))
	if start < 0 {
		start = 0
	}
	if s == "" || start >= len(s) || n <= 0 {
		c.ReturnTemp("")
		return nil
	}
	s = s[start:]
	c.ReturnTemp(s[:min(n, len(s))])
	return nil
}

func fnStrcat(c *Context) error {
	s, err := c.VarString(0)
	if err != nil {
		return err
	}
	c.ReturnTemp(s)
	return nil
}

func fnStrlen(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	c.ReturnFloat(float32(len(s)))
	return nil
}

// fnStr2Byte returns the first byte as a signed char.
func fnStr2Byte(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	if s == "" {
		c.ReturnFloat(0)
		return nil
	}
	c.ReturnFloat(float32(int8(s[0])))
	return nil
}

// fnStr2Short reads the first two bytes as a little-endian short.
func fnStr2Short(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	var b [2]byte
	copy(b[:], s)
	c.ReturnFloat(float32(int16(uint16(b[0]) | uint16(b[1])<<8)))
	return nil
}

func fnStrstr(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	sub, err := c.String(1)
	if err != nil {
		return err
	}
	i := strings.Index(s, sub)
	if i < 0 {
		c.ReturnInt(0)
		return nil
	}
	c.ReturnTemp(s[i:])
	return nil
}

// --- Dynamic strings ---

// fnNewStr allocates a dynamic copy of its argument. An optional size
// reserves room for later strcpy calls.
func fnNewStr(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	size := len(s) + 1
	if c.Argc == 2 {
		if n := int(c.Float(1)); n > size {
			size = n
		}
	}
	h, err := c.Strings.AllocateDynamic(s, size)
	if err != nil {
		return wrapRun(err, "newstr")
	}
	c.Metrics.SetDynamicStrings(c.Strings.DynamicInUse())
	c.ReturnHandle(h)
	return nil
}

func fnFreeStr(c *Context) error {
	raw := c.Int(0)
	h, err := c.Strings.Decode(raw)
	if err != nil || h.Kind != strtab.KindDynamic {
		return runErrorf("freestr: Bad pointer %d", raw)
	}
	if err := c.Strings.FreeDynamic(h); err != nil {
		return wrapRun(err, "freestr")
	}
	c.Metrics.SetDynamicStrings(c.Strings.DynamicInUse())
	return nil
}

func storeInto(c *Context, limit int) error {
	dst, err := c.Strings.Decode(c.Int(0))
	if err != nil {
		return wrapRun(err, "destination")
	}
	src, err := c.String(1)
	if err != nil {
		return err
	}
	return wrapRun(c.Strings.Store(dst, src, limit), "store")
}

func fnStrcpy(c *Context) error { return storeInto(c, -1) }

func fnStrncpy(c *Context) error {
	n := int(c.Float(2))
	if n < 0 {
		n = -1
	}
	return storeInto(c, n)
}

// --- Info keys ---

// fnInfoKey reads a server key for entity 0, or a client property or
// userinfo key for a client entity. Anything else yields "".
func fnInfoKey(c *Context) error {
	ent := c.Entity(0)
	key, err := c.String(1)
	if err != nil {
		return err
	}
	var value string
	switch {
	case ent == 0:
		if value = c.Host.ServerInfo(key); value == "" {
			value = c.Host.LocalInfo(key)
		}
	case ent >= 1 && ent <= c.Router.Clients.Max():
		cl, err := c.Router.Clients.Slot(ent)
		if err != nil {
			return wrapRun(err, "infokey")
		}
		switch key {
		case "ip":
			value = cl.Addr
		case "realip":
			value = cl.RealAddr
		case "download":
			if cl.FilePercent != 0 {
				value = strconv.Itoa(cl.FilePercent)
			} else {
				value = "-1"
			}
		case "ping":
			value = strconv.Itoa(cl.Ping)
		case "login":
			value = cl.Login
		default:
			value = cl.InfoValue(key)
		}
	}
	c.ReturnTemp(value)
	return nil
}
