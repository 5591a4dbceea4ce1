package maps

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeMap(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestListSortedBSPOnly(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "e1m1.bsp", 10)
	writeMap(t, dir, "dm2.bsp", 20)
	writeMap(t, dir, "readme.txt", 5)
	os.Mkdir(filepath.Join(dir, "sub.bsp"), 0o755)

	d := NewDir(dir)
	list, err := d.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].File != "dm2.bsp" || list[1].Name() != "e1m1" {
		t.Fatalf("List = %+v", list)
	}
	if TotalSize(list) != 30 {
		t.Errorf("TotalSize = %d", TotalSize(list))
	}
}

func TestListCachesUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "a.bsp", 1)
	d := NewDir(dir)
	d.List()
	writeMap(t, dir, "b.bsp", 1)
	if list, _ := d.List(); len(list) != 1 {
		t.Fatalf("cache not used: %+v", list)
	}
	d.Invalidate()
	if list, _ := d.List(); len(list) != 2 {
		t.Errorf("after Invalidate = %+v", list)
	}
}

func TestMissingDirIsEmpty(t *testing.T) {
	d := NewDir(filepath.Join(t.TempDir(), "nope"))
	list, err := d.List()
	if err != nil || len(list) != 0 {
		t.Errorf("List = %v, %v", list, err)
	}
}

func TestWatchInvalidates(t *testing.T) {
	dir := t.TempDir()
	d := NewDir(dir)
	stop, err := d.Watch()
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer stop()

	d.List()
	writeMap(t, dir, "new.bsp", 1)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if list, _ := d.List(); len(list) == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("listing not refreshed after new map appeared")
}
