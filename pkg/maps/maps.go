// Package maps lists the .bsp files in the game's maps directory. The
// listing is cached and dropped whenever the directory changes on disk.
package maps

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Entry is one map file.
type Entry struct {
	File string // file name including .bsp
	Size int64
}

// Name returns the map name without the .bsp extension.
func (e Entry) Name() string { return strings.TrimSuffix(e.File, ".bsp") }

// Lister returns the maps available to the server, sorted by file name.
type Lister interface {
	List() ([]Entry, error)
}

// Dir lists maps in a directory.
type Dir struct {
	Path string

	mu     sync.Mutex
	cached []Entry
	valid  bool
}

func NewDir(path string) *Dir { return &Dir{Path: path} }

// List returns the cached listing, reading the directory if needed. A
// missing directory is an empty listing.
func (d *Dir) List() ([]Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.valid {
		return d.cached, nil
	}
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		if os.IsNotExist(err) {
			d.cached, d.valid = nil, true
			return nil, nil
		}
		return nil, fmt.Errorf("maps: read %s: %w", d.Path, err)
	}
	var out []Entry
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".bsp") {
			continue
		}
		var size int64
		if info, err := de.Info(); err == nil {
			size = info.Size()
		}
		out = append(out, Entry{File: de.Name(), Size: size})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	d.cached, d.valid = out, true
	return out, nil
}

// Invalidate drops the cached listing.
func (d *Dir) Invalidate() {
	d.mu.Lock()
	d.valid = false
	d.cached = nil
	d.mu.Unlock()
}

// Watch invalidates the listing whenever a .bsp file in the directory is
// created, removed or renamed. The returned function stops watching.
func (d *Dir) Watch() (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("maps: start watcher: %w", err)
	}
	if err := watcher.Add(d.Path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("maps: watch %s: %w", d.Path, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
					continue
				}
				if filepath.Ext(event.Name) != ".bsp" {
					continue
				}
				log.Printf("maps: %s changed, refreshing listing", filepath.Base(event.Name))
				d.Invalidate()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("maps: watcher error: %v", err)
			}
		}
	}()
	log.Printf("maps: watching %s", d.Path)

	return func() {
		watcher.Close()
		<-done
	}, nil
}

// TotalSize sums the sizes of entries.
func TotalSize(entries []Entry) int64 {
	var n int64
	for _, e := range entries {
		n += e.Size
	}
	return n
}

var _ Lister = (*Dir)(nil)
