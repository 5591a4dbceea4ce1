package route

import (
	"fmt"
	"log"

	"github.com/crystal-mush/goqwsv/pkg/client"
	"github.com/crystal-mush/goqwsv/pkg/demo"
	"github.com/crystal-mush/goqwsv/pkg/wire"
)

// ClientPrint sends s to c at level. Nothing is sent when c has raised its
// message level above level.
func (r *Router) ClientPrint(c *client.Client, level int, s string) error {
	if level < c.MessageLevel {
		return nil
	}
	return r.WriteOne(c, wire.PrintMessage(level, s))
}

// BroadcastPrint sends s to every connected client that accepts level, and
// records it once as dem_all.
func (r *Router) BroadcastPrint(level int, s string) {
	msg := wire.PrintMessage(level, s)
	for _, c := range r.Clients.All() {
		if !c.Active() || level < c.MessageLevel {
			continue
		}
		if err := r.send(c, msg); err != nil {
			log.Printf("route: bprint: %v", err)
		}
	}
	r.recordAll(msg)
}

// Sprint prints to a client and mirrors the print to spectators tracking it.
func (r *Router) Sprint(c *client.Client, level int, s string) error {
	if err := r.ClientPrint(c, level, s); err != nil {
		return err
	}
	r.mirror(c, client.SpecPrintSprint, func(spec *client.Client) error {
		if level < spec.MessageLevel {
			return nil
		}
		return r.send(spec, wire.PrintMessage(level, s))
	})
	return nil
}

// CenterPrint sends a centered message and mirrors it.
func (r *Router) CenterPrint(c *client.Client, s string) error {
	msg := wire.CenterPrintMessage(s)
	if err := r.WriteOne(c, msg); err != nil {
		return err
	}
	r.mirror(c, client.SpecPrintCenter, func(spec *client.Client) error {
		return r.send(spec, msg)
	})
	return nil
}

// StuffCmd appends text to c's stufftext buffer and delivers every complete
// line as its own svc_stufftext. If any of those lines is the disconnect
// sentinel, c is flagged for drop and none of them are delivered. The lines
// go into the reliable stream as one message: when they do not all fit,
// nothing is sent and the stufftext buffer is left as it was.
func (r *Router) StuffCmd(c *client.Client, text string) error {
	prev := c.Stuff.Pending()
	if err := c.Stuff.Append(text); err != nil {
		return err
	}
	lines := c.Stuff.Drain()
	if client.ContainsDisconnect(lines) {
		c.Drop = true
		c.Stuff.Clear()
		log.Printf("route: client %d stuffed disconnect", c.Num)
		return nil
	}
	if len(lines) == 0 {
		return nil
	}
	msgs := make([][]byte, len(lines))
	for i, line := range lines {
		msgs[i] = wire.StuffTextMessage(line)
	}
	if err := r.sendParts(c, "svc_stufftext", msgs); err != nil {
		c.Stuff.Restore(prev)
		return err
	}
	for _, msg := range msgs {
		r.record(demo.KindSingle, c.Num-1, msg)
	}
	r.mirror(c, client.SpecPrintStuff, func(spec *client.Client) error {
		return r.sendParts(spec, "svc_stufftext", msgs)
	})
	return nil
}

// sendParts appends parts to c's reliable stream as a single message. The
// stream is unchanged when any part does not fit.
func (r *Router) sendParts(c *client.Client, tag string, parts [][]byte) error {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if err := c.Reliable.Begin(tag, total); err != nil {
		r.Metrics.ReliableOverflow()
		return fmt.Errorf("route: client %d: %w", c.Num, err)
	}
	defer c.Reliable.End()
	for _, p := range parts {
		if err := c.Reliable.Append(p); err != nil {
			r.Metrics.ReliableOverflow()
			return fmt.Errorf("route: client %d: %w", c.Num, err)
		}
	}
	r.Metrics.ReliableBytes(total)
	return nil
}

// Spectators returns the connected spectators other than primary that
// track it and asked for category.
func (r *Router) Spectators(primary *client.Client, category int) []*client.Client {
	var out []*client.Client
	for _, spec := range r.Clients.All() {
		if spec == primary || !spec.Active() || !spec.Spectator {
			continue
		}
		if spec.SpecTrack == primary.Num && spec.SpecPrint&category != 0 {
			out = append(out, spec)
		}
	}
	return out
}

// mirror delivers to tracking spectators when sv_specprint enables
// category. Mirrored copies are not recorded. Failures are logged only.
func (r *Router) mirror(primary *client.Client, category int, deliver func(*client.Client) error) {
	if r.SpecPrint == nil || r.SpecPrint()&category == 0 {
		return
	}
	for _, spec := range r.Spectators(primary, category) {
		if err := deliver(spec); err != nil {
			log.Printf("route: mirror to spectator %d: %v", spec.Num, err)
		}
	}
}
