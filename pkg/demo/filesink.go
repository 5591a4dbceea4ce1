package demo

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSink appends frames to <Dir>/<name>.mvd. Each frame is a one-byte
// millisecond delta from the previous frame followed by its records.
type FileSink struct {
	Dir string

	mu    sync.Mutex
	files map[string]*demoFile
}

type demoFile struct {
	f    *os.File
	last float64
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir, files: make(map[string]*demoFile)}
}

// Path returns the file a recording is written to.
func (s *FileSink) Path(name string) string {
	return filepath.Join(s.Dir, name+".mvd")
}

func (s *FileSink) WriteFrame(name string, f *Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	df, ok := s.files[name]
	if !ok {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return fmt.Errorf("demo: create %s: %w", s.Dir, err)
		}
		fh, err := os.Create(s.Path(name))
		if err != nil {
			return fmt.Errorf("demo: create %s: %w", name, err)
		}
		df = &demoFile{f: fh, last: f.Time}
		s.files[name] = df
	}

	msec := int((f.Time - df.last) * 1000)
	msec = max(0, min(msec, 255))
	df.last = f.Time

	buf := append([]byte{byte(msec)}, EncodeFrame(nil, f)...)
	if _, err := df.f.Write(buf); err != nil {
		return fmt.Errorf("demo: write %s: %w", name, err)
	}
	return nil
}

// Finish closes the recording's file.
func (s *FileSink) Finish(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	df, ok := s.files[name]
	if !ok {
		return nil
	}
	delete(s.files, name)
	if err := df.f.Close(); err != nil {
		return fmt.Errorf("demo: close %s: %w", name, err)
	}
	return nil
}

var (
	_ FrameSink = (*FileSink)(nil)
	_ Finisher  = (*FileSink)(nil)
)
