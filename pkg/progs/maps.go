package progs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crystal-mush/goqwsv/pkg/maps"
	"github.com/crystal-mush/goqwsv/pkg/wire"
)

// sep is the QuakeWorld bullet glyph used between map ids and names.
const sep = "\x85"

func (c *Context) mapList() ([]maps.Entry, error) {
	if c.Maps == nil {
		return nil, nil
	}
	list, err := c.Maps.List()
	if err != nil {
		return nil, wrapRun(err, "maps")
	}
	return list, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// fnFindMap returns the 1-based id of a map given by id or name, or 0.
func fnFindMap(c *Context) error {
	s, err := c.String(0)
	if err != nil {
		return err
	}
	id := 0
	if isDigits(s) {
		id, _ = strconv.Atoi(s)
	}
	if !strings.Contains(s, ".bsp") {
		s += ".bsp"
	}
	list, err := c.mapList()
	if err != nil {
		return err
	}
	for i, m := range list {
		if (id > 0 && i+1 == id) || m.File == s {
			c.ReturnFloat(float32(i + 1))
			return nil
		}
	}
	c.ReturnFloat(0)
	return nil
}

// fnFindMapName returns the name of map id without its extension.
func fnFindMapName(c *Context) error {
	id := int(c.Float(0))
	list, err := c.mapList()
	if err != nil {
		return err
	}
	if id < 1 || id > len(list) {
		c.ReturnFloat(0)
		return nil
	}
	c.ReturnTemp(list[id-1].Name())
	return nil
}

// fnListMaps prints part of the map list to a client.
//
//	listmaps(client, level, range, start, style, footer)
//
// Styles: 0 a single line of "id name", 1 rows of ten numbered per row,
// 2 one map per line, 3 two columns. range maps are shown starting at id
// start. The return value is the id to continue from, or 0 when the list
// is exhausted.
func fnListMaps(c *Context) error {
	ent, level := c.Entity(0), int(c.Float(1))
	rng, start := int(c.Float(2)), int(c.Float(3))
	style, footer := int(c.Float(4)), c.Float(5) != 0

	cl, err := c.Router.ClientFor(ent)
	if err != nil {
		c.print("tried to listmaps to a non-client\n")
		c.ReturnFloat(0)
		return nil
	}
	list, err := c.mapList()
	if err != nil {
		return err
	}

	var perr error
	out := func(format string, args ...any) {
		if perr == nil {
			perr = c.Router.ClientPrint(cl, level, fmt.Sprintf(format, args...))
		}
	}

	n := len(list)
	if n == 0 {
		out("No maps.\n")
		c.ReturnFloat(0)
		return wrapRun(perr, "listmaps")
	}
	if rng <= 0 || rng > n {
		rng = n
	}
	start--
	if start < 0 || start >= n {
		start = 0
	}
	pad := len(strconv.Itoa(n))
	perRow := min(rng, 10)

	var line strings.Builder
	shown, idx := 0, start
	for ; idx < n && shown < rng; idx++ {
		id, name := idx+1, list[idx].Name()
		switch style {
		case 1:
			if shown%perRow == 0 {
				hdr := fmt.Sprintf("%d-%d", id, id+perRow-1)
				out("%*s %s ", pad*2+1, hdr, sep)
			}
			cell := fmt.Sprintf("%d:%s ", shown%perRow+1, name)
			shown++
			if shown%2 != 0 {
				cell = wire.RedText(cell)
			}
			line.WriteString(cell)
			if shown%perRow == 0 {
				out("%s\n", line.String())
				line.Reset()
			}
		case 2:
			out("%*s%s %s\n", pad, wire.RedText(strconv.Itoa(id)), sep, name)
			shown++
		case 3:
			cell := fmt.Sprintf("%s%s%-13s", wire.RedText(fmt.Sprintf("%03d", id)), sep, clip(name, 13))
			shown++
			if idx+1 >= n || shown >= rng {
				line.WriteString(cell)
				continue
			}
			idx++
			shown++
			next := list[idx].Name()
			out("%s %s%s%-13s\n", cell, wire.RedText(fmt.Sprintf("%03d", idx+1)), sep, clip(next, 13))
		default:
			out("%s%s%s ", wire.RedText(strconv.Itoa(id)), sep, name)
			shown++
		}
	}
	switch {
	case (style == 1 || style == 3) && line.Len() > 0:
		out("%s\n", line.String())
	case style == 0:
		out("\n")
	}

	if idx < n {
		c.ReturnFloat(float32(idx + 1))
		return wrapRun(perr, "listmaps")
	}
	if footer {
		size := float64(maps.TotalSize(list))
		out("%s %d maps %.0fKB (%.2fMB)\n", wire.RedText("Total:"), n, size/1024, size/1024/1024)
	}
	c.ReturnFloat(0)
	return wrapRun(perr, "listmaps")
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
