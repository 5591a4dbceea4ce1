package fraglog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var ErrBadLogName = errors.New("fraglog: bad log name")

// ModLog appends progs-written text to <Dir>/<name>.log.
type ModLog struct {
	Dir string
	mu  sync.Mutex
}

// Append cleans text and appends it to the named log. Names may not leave
// Dir.
func (l *ModLog) Append(name, text string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrBadLogName, name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	path := filepath.Join(l.Dir, name+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("fraglog: couldn't open log file %s: %w", path, err)
	}
	if _, err := f.WriteString(CleanText(text)); err != nil {
		f.Close()
		return fmt.Errorf("fraglog: write %s: %w", path, err)
	}
	return f.Close()
}

// Ring is the server's two-slot frag buffer: frags accumulate in the
// current slot while the other holds the previous batch for clients that
// ask for the log.
type Ring struct {
	seq  int
	bufs [2]strings.Builder
	max  int
}

// NewRing returns a ring whose slots hold up to max bytes each.
func NewRing(max int) *Ring {
	if max <= 0 {
		max = 8192
	}
	return &Ring{seq: 1, max: max}
}

// Sequence returns the current log sequence number.
func (r *Ring) Sequence() int { return r.seq }

// Print appends s to the current slot. The slot rolls over when full.
func (r *Ring) Print(s string) {
	cur := &r.bufs[r.seq&1]
	if cur.Len()+len(s) > r.max {
		r.Swap()
		cur = &r.bufs[r.seq&1]
	}
	cur.WriteString(s)
}

// Swap advances the sequence, clearing the slot that becomes current, and
// returns the contents of the slot just finished.
func (r *Ring) Swap() string {
	done := r.bufs[r.seq&1].String()
	r.seq++
	r.bufs[r.seq&1].Reset()
	return done
}

// Current returns the text in the current slot.
func (r *Ring) Current() string { return r.bufs[r.seq&1].String() }

// Previous returns the text of the last finished slot.
func (r *Ring) Previous() string { return r.bufs[(r.seq-1)&1].String() }
