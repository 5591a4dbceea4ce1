package demo

import (
	"errors"
	"fmt"
	"log"
)

// DefaultMaxFrame bounds the bytes collected before a frame is flushed early.
const DefaultMaxFrame = 8192

var (
	ErrNotRecording = errors.New("demo: not recording")
	ErrRecording    = errors.New("demo: already recording")
	ErrBadTarget    = errors.New("demo: record target out of range")
)

// FrameSink receives finished frames of the named recording.
type FrameSink interface {
	WriteFrame(name string, f *Frame) error
}

// Finisher is implemented by sinks that need to know when a recording ends.
type Finisher interface {
	Finish(name string) error
}

// Recorder collects records for the active recording. It is driven from
// the simulation thread and is not safe for concurrent use.
type Recorder struct {
	MaxFrame int
	// ForceFrame asks the server to flush a frame on its next tick even when
	// the frame would otherwise be skipped.
	ForceFrame bool
	// OnBytes, if set, is told the payload size of every accepted write.
	OnBytes func(n int)

	sinks []FrameSink
	name  string
	on    bool
	frame Frame
	seq   uint64
}

func NewRecorder(sinks ...FrameSink) *Recorder {
	return &Recorder{MaxFrame: DefaultMaxFrame, sinks: sinks}
}

// AddSink registers another destination for frames.
func (r *Recorder) AddSink(s FrameSink) { r.sinks = append(r.sinks, s) }

// Recording reports whether Start has been called without a matching Stop.
func (r *Recorder) Recording() bool { return r.on }

// Name returns the active recording's name.
func (r *Recorder) Name() string { return r.name }

// Start begins a recording called name.
func (r *Recorder) Start(name string) error {
	if r.on {
		return fmt.Errorf("%w: %s", ErrRecording, r.name)
	}
	r.name = name
	r.on = true
	r.seq = 0
	r.frame = Frame{}
	log.Printf("demo: recording %s", name)
	return nil
}

// Stop flushes the pending frame and ends the recording.
func (r *Recorder) Stop(now float64) error {
	if !r.on {
		return ErrNotRecording
	}
	err := r.SendFrame(now)
	for _, s := range r.sinks {
		if f, ok := s.(Finisher); ok {
			if ferr := f.Finish(r.name); ferr != nil && err == nil {
				err = ferr
			}
		}
	}
	log.Printf("demo: stopped %s after %d frames", r.name, r.seq)
	r.on = false
	r.name = ""
	return err
}

// Pending returns the records of the frame being built.
func (r *Recorder) Pending() []Record { return r.frame.Records }

// Write adds payload to the current frame. Consecutive writes with the same
// kind and target are merged into one record. Writes while not recording
// are ignored.
func (r *Recorder) Write(kind Kind, to int, payload []byte) error {
	if !r.on {
		return nil
	}
	if to < 0 || to > MaxTarget {
		return fmt.Errorf("%w: %d", ErrBadTarget, to)
	}
	max := r.MaxFrame
	if max <= 0 {
		max = DefaultMaxFrame
	}
	if len(r.frame.Records) > 0 && r.frame.Size()+len(payload)+recordHeaderSize > max {
		if err := r.SendFrame(r.frame.Time); err != nil {
			return err
		}
	}
	if n := len(r.frame.Records); n > 0 {
		last := &r.frame.Records[n-1]
		if last.Kind == kind && last.To == to {
			last.Payload = append(last.Payload, payload...)
			r.count(len(payload))
			return nil
		}
	}
	r.frame.Records = append(r.frame.Records, Record{
		Kind:    kind,
		To:      to,
		Payload: append([]byte(nil), payload...),
	})
	r.count(len(payload))
	return nil
}

func (r *Recorder) count(n int) {
	if r.OnBytes != nil {
		r.OnBytes(n)
	}
}

// SendFrame hands the current frame to every sink and starts a new one. An
// empty frame is only sent when ForceFrame is set.
func (r *Recorder) SendFrame(now float64) error {
	if !r.on {
		return nil
	}
	if len(r.frame.Records) == 0 && !r.ForceFrame {
		return nil
	}
	f := r.frame
	f.Seq = r.seq
	f.Time = now
	r.seq++
	r.frame = Frame{Time: now}
	r.ForceFrame = false

	var errs []error
	for _, s := range r.sinks {
		if err := s.WriteFrame(r.name, &f); err != nil {
			log.Printf("demo: write frame %d of %s: %v", f.Seq, r.name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
