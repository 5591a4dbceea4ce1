package console

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

// DefaultRedirectSize is the capture buffer size of the stock server.
const DefaultRedirectSize = 8000

var (
	ErrRedirectActive = errors.New("console: output already redirected")
	ErrNotRedirected  = errors.New("console: output not redirected")
)

// TargetKind says where captured console output goes.
type TargetKind int

const (
	RedirectNone      TargetKind = iota
	RedirectClient               // a client's own console command
	RedirectPacket               // an out-of-band rcon request
	RedirectMod                  // captured for progs (readcmd)
	RedirectModClient            // captured for progs on behalf of client Client
)

func (k TargetKind) String() string {
	switch k {
	case RedirectNone:
		return "none"
	case RedirectClient:
		return "client"
	case RedirectPacket:
		return "packet"
	case RedirectMod:
		return "mod"
	case RedirectModClient:
		return "modclient"
	default:
		return fmt.Sprintf("redirect(%d)", int(k))
	}
}

// Target is a capture destination. Client is an entity number and only
// meaningful for RedirectClient and RedirectModClient.
type Target struct {
	Kind   TargetKind
	Client int
}

func (t Target) String() string {
	if t.Kind == RedirectClient || t.Kind == RedirectModClient {
		return fmt.Sprintf("%s %d", t.Kind, t.Client)
	}
	return t.Kind.String()
}

// delivers reports whether text captured for t is sent somewhere when the
// capture ends or the buffer fills.
func (t Target) delivers() bool { return t.Kind != RedirectMod && t.Kind != RedirectNone }

// Saved is a suspended capture: its target and everything captured so far.
type Saved struct {
	target Target
	text   string
}

// Target returns the suspended target.
func (s Saved) Target() Target { return s.target }

// Redirector is the single process-wide console capture slot.
type Redirector struct {
	max    int
	target Target
	buf    strings.Builder

	// Flush delivers captured text for targets that have a recipient.
	Flush func(t Target, text string)
}

func NewRedirector(max int) *Redirector {
	if max <= 0 {
		max = DefaultRedirectSize
	}
	return &Redirector{max: max}
}

// Active reports whether a capture is installed.
func (r *Redirector) Active() bool { return r.target.Kind != RedirectNone }

// Target returns the current target.
func (r *Redirector) Target() Target { return r.target }

// Text returns what the current capture holds.
func (r *Redirector) Text() string { return r.buf.String() }

// BeginCapture installs t. It fails if another capture is already active.
func (r *Redirector) BeginCapture(t Target) error {
	if r.Active() {
		return fmt.Errorf("%w: %s", ErrRedirectActive, r.target)
	}
	if t.Kind == RedirectNone {
		return nil
	}
	r.target = t
	r.buf.Reset()
	return nil
}

// EndCapture removes the current capture and returns its text. Text for
// client targets is delivered through Flush as well.
func (r *Redirector) EndCapture() (string, error) {
	if !r.Active() {
		return "", ErrNotRedirected
	}
	text := r.buf.String()
	t := r.target
	r.target = Target{}
	r.buf.Reset()
	if t.delivers() && text != "" && r.Flush != nil {
		r.Flush(t, text)
	}
	return text, nil
}

// SaveAndSuspend detaches the current capture, if any, without delivering
// it. Restore puts it back.
func (r *Redirector) SaveAndSuspend() Saved {
	s := Saved{target: r.target, text: r.buf.String()}
	r.target = Target{}
	r.buf.Reset()
	return s
}

// Restore reinstates a saved capture, replacing whatever is active. A saved
// "none" leaves no capture installed.
func (r *Redirector) Restore(s Saved) {
	r.target = s.target
	r.buf.Reset()
	r.buf.WriteString(s.text)
}

// Write captures text. When the buffer would overflow, delivering targets
// are flushed first; progs captures keep what fits.
func (r *Redirector) Write(text string) {
	if !r.Active() {
		return
	}
	if r.buf.Len()+len(text) > r.max-1 {
		if r.target.delivers() && r.Flush != nil {
			r.Flush(r.target, r.buf.String())
			r.buf.Reset()
		}
		if room := r.max - 1 - r.buf.Len(); len(text) > room {
			log.Printf("console: %s capture truncated", r.target)
			text = text[:max(room, 0)]
		}
	}
	r.buf.WriteString(text)
}
