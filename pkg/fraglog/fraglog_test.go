package fraglog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanText(t *testing.T) {
	in := string([]byte{'a', 0x80 | 'b', 18, 27, 16, 17, 5, 1, '\n', 141})
	want := "ab09[].#\n<"
	if got := CleanText(in); got != want {
		t.Errorf("CleanText = %q, want %q", got, want)
	}
}

func TestFragLine(t *testing.T) {
	f := Frag{
		Killer: "alpha", Victim: "beta", KillerTeam: "red", VictimTeam: "blue",
		At: time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local),
	}
	if got := f.Line(false); got != "\\alpha\\beta\\\n" {
		t.Errorf("new style = %q", got)
	}
	want := "\\frag\\alpha\\beta\\red\\blue\\2024-3-7 9:5:2\\\n"
	if got := f.Line(true); got != want {
		t.Errorf("old style = %q, want %q", got, want)
	}
}

func TestStoreRecordAndQuery(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "frags.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	for _, v := range []string{"b", "c", "b"} {
		if err := s.Record(ctx, Frag{Killer: "a", Victim: v, At: now}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	s.Record(ctx, Frag{Killer: "b", Victim: "a", At: now})

	n, err := s.Kills(ctx, "a")
	if err != nil || n != 3 {
		t.Errorf("Kills(a) = %d, %v", n, err)
	}
	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Killer != "b" || recent[1].Victim != "b" {
		t.Errorf("Recent = %+v", recent)
	}
	if !recent[0].At.Equal(now) {
		t.Errorf("time = %v", recent[0].At)
	}
}

func TestModLogAppend(t *testing.T) {
	dir := t.TempDir()
	l := &ModLog{Dir: dir}
	l.Append("votes", "map dm2\n")
	l.Append("votes", string([]byte{0x80 | 'o', 'k', '\n'}))
	data, err := os.ReadFile(filepath.Join(dir, "votes.log"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "map dm2\nok\n" {
		t.Errorf("log = %q", data)
	}
	for _, bad := range []string{"", "../x", "a/b"} {
		if err := l.Append(bad, "x"); !errors.Is(err, ErrBadLogName) {
			t.Errorf("Append(%q) = %v", bad, err)
		}
	}
}

func TestRing(t *testing.T) {
	r := NewRing(10)
	r.Print("abc")
	r.Print("def")
	if r.Current() != "abcdef" {
		t.Fatalf("current = %q", r.Current())
	}
	seq := r.Sequence()
	r.Print("ghijk")
	if r.Sequence() != seq+1 {
		t.Error("full slot did not roll over")
	}
	if r.Previous() != "abcdef" || r.Current() != "ghijk" {
		t.Errorf("previous %q current %q", r.Previous(), r.Current())
	}
}
