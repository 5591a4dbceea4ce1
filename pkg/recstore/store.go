// Package recstore persists session recordings in a bbolt database so they
// survive restarts and can be listed or replayed frame by frame.
package recstore

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/crystal-mush/goqwsv/pkg/demo"
	bbolt "go.etcd.io/bbolt"
)

var ErrNotFound = errors.New("recstore: recording not found")

// Info summarises one stored recording.
type Info struct {
	Name     string    `cbor:"1,keyasint"`
	Frames   uint64    `cbor:"2,keyasint"`
	Bytes    uint64    `cbor:"3,keyasint"`
	Started  time.Time `cbor:"4,keyasint"`
	Finished bool      `cbor:"5,keyasint"`
	Duration float64   `cbor:"6,keyasint"` // server seconds between first and last frame
}

// Store wraps a bbolt database of recordings.
type Store struct {
	bolt *bbolt.DB
	now  func() time.Time
}

// Open opens or creates a bbolt database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("recstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketFrames} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("recstore: create buckets: %w", err)
	}

	return &Store{bolt: db, now: time.Now}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Path returns the filesystem path of the underlying bbolt database.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

// WriteFrame stores f and updates the recording's summary in one
// transaction.
func (s *Store) WriteFrame(name string, f *demo.Frame) error {
	data, err := encodeFrame(f)
	if err != nil {
		return fmt.Errorf("recstore: encode frame %d of %s: %w", f.Seq, name, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		info := &Info{Name: name, Started: s.now()}
		if raw := meta.Get([]byte(name)); raw != nil {
			info, err = decodeInfo(raw)
			if err != nil {
				return err
			}
			if info.Finished {
				// A new recording reusing an old name replaces it.
				if err := deleteFrames(tx, name); err != nil {
					return err
				}
				info = &Info{Name: name, Started: s.now()}
			}
		}
		if err := tx.Bucket(bucketFrames).Put(frameKey(name, f.Seq), data); err != nil {
			return err
		}
		info.Frames++
		info.Bytes += uint64(f.Size())
		info.Duration = f.Time
		enc, err := encodeInfo(info)
		if err != nil {
			return err
		}
		return meta.Put([]byte(name), enc)
	})
}

// Finish marks a recording complete.
func (s *Store) Finish(name string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		raw := meta.Get([]byte(name))
		if raw == nil {
			return nil
		}
		info, err := decodeInfo(raw)
		if err != nil {
			return err
		}
		info.Finished = true
		enc, err := encodeInfo(info)
		if err != nil {
			return err
		}
		log.Printf("recstore: %s finished, %d frames, %d bytes", name, info.Frames, info.Bytes)
		return meta.Put([]byte(name), enc)
	})
}

// Info returns the summary of one recording.
func (s *Store) Info(name string) (*Info, error) {
	var info *Info
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketMeta).Get([]byte(name))
		if raw == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		var err error
		info, err = decodeInfo(raw)
		return err
	})
	return info, err
}

// List returns every recording summary, ordered by name.
func (s *Store) List() ([]*Info, error) {
	var out []*Info
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).ForEach(func(k, v []byte) error {
			info, err := decodeInfo(v)
			if err != nil {
				log.Printf("recstore: skipping %q: %v", k, err)
				return nil
			}
			out = append(out, info)
			return nil
		})
	})
	return out, err
}

// Frames returns the stored frames of a recording in sequence order.
func (s *Store) Frames(name string) ([]*demo.Frame, error) {
	var out []*demo.Frame
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketMeta).Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		prefix := framePrefix(name)
		c := tx.Bucket(bucketFrames).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if _, ok := keyToSeq(k); !ok {
				continue
			}
			f, err := decodeFrame(v)
			if err != nil {
				return err
			}
			out = append(out, f)
		}
		return nil
	})
	return out, err
}

// Delete removes a recording and its frames.
func (s *Store) Delete(name string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err := deleteFrames(tx, name); err != nil {
			return err
		}
		return meta.Delete([]byte(name))
	})
}

func deleteFrames(tx *bbolt.Tx, name string) error {
	prefix := framePrefix(name)
	b := tx.Bucket(bucketFrames)
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ demo.FrameSink = (*Store)(nil)
	_ demo.Finisher  = (*Store)(nil)
)
