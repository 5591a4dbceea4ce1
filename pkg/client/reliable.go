package client

import (
	"errors"
	"fmt"
)

// DefaultReliableBudget matches the stock MAX_MSGLEN backbuffer size.
const DefaultReliableBudget = 1450

// ErrReliableOverflow is returned when a write would push a client's
// outstanding reliable bytes past its budget.
var ErrReliableOverflow = errors.New("client: reliable buffer overflow")

// ReliableStream is the per-client ordered outbound reliable channel. Writes
// are all-or-nothing: a rejected write leaves the pending bytes untouched.
type ReliableStream struct {
	budget int
	data   []byte
	mark   int    // start of the open message, -1 when none
	tag    string // name of the open message, for diagnostics
	total  int    // bytes accepted since creation
}

// NewReliableStream returns a stream holding at most budget pending bytes.
func NewReliableStream(budget int) *ReliableStream {
	if budget <= 0 {
		budget = DefaultReliableBudget
	}
	return &ReliableStream{budget: budget, mark: -1}
}

func (s *ReliableStream) Len() int    { return len(s.data) }
func (s *ReliableStream) Budget() int { return s.budget }
func (s *ReliableStream) Total() int  { return s.total }

// Bytes returns the pending bytes. The slice is only valid until the next
// write or Flush.
func (s *ReliableStream) Bytes() []byte { return s.data }

// Check reports whether n more bytes fit.
func (s *ReliableStream) Check(n int) error {
	if len(s.data)+n > s.budget {
		return fmt.Errorf("%w: %d pending + %d > %d", ErrReliableOverflow, len(s.data), n, s.budget)
	}
	return nil
}

// Begin opens a multi-part message. sizeHint is checked up front but not
// reserved; later Appends are checked again.
func (s *ReliableStream) Begin(tag string, sizeHint int) error {
	if err := s.Check(sizeHint); err != nil {
		return fmt.Errorf("client: begin %s: %w", tag, err)
	}
	s.mark = len(s.data)
	s.tag = tag
	return nil
}

// Append adds p to the open message. On overflow the whole open message is
// rolled back.
func (s *ReliableStream) Append(p []byte) error {
	if err := s.Check(len(p)); err != nil {
		if s.mark >= 0 {
			s.total -= len(s.data) - s.mark
			s.data = s.data[:s.mark]
			err = fmt.Errorf("client: %s: %w", s.tag, err)
			s.mark = -1
		}
		return err
	}
	s.data = append(s.data, p...)
	s.total += len(p)
	return nil
}

// End closes the open message.
func (s *ReliableStream) End() {
	s.mark = -1
	s.tag = ""
}

// Write appends p as one complete message.
func (s *ReliableStream) Write(p []byte) (int, error) {
	if err := s.Check(len(p)); err != nil {
		return 0, err
	}
	s.data = append(s.data, p...)
	s.total += len(p)
	return len(p), nil
}

// Flush hands the pending bytes to the caller and empties the stream.
func (s *ReliableStream) Flush() []byte {
	out := s.data
	s.data = nil
	s.mark = -1
	return out
}
