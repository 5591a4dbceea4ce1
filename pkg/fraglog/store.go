// Package fraglog writes the server's kill log: a text line per frag in the
// classic QuakeWorld formats, a queryable SQLite table of the same frags,
// and the per-mod text logs progs append to.
package fraglog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Frag is one kill.
type Frag struct {
	Killer     string
	Victim     string
	KillerTeam string
	VictimTeam string
	At         time.Time
}

// Line formats f for the text frag log. The old-style format carries teams
// and a timestamp.
func (f Frag) Line(oldStyle bool) string {
	if !oldStyle {
		return fmt.Sprintf("\\%s\\%s\\\n", f.Killer, f.Victim)
	}
	t := f.At
	return fmt.Sprintf("\\frag\\%s\\%s\\%s\\%s\\%d-%d-%d %d:%d:%d\\\n",
		f.Killer, f.Victim, f.KillerTeam, f.VictimTeam,
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Store is a SQLite frag table.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

const schema = `CREATE TABLE IF NOT EXISTS frags (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	killer      TEXT NOT NULL,
	victim      TEXT NOT NULL,
	killer_team TEXT NOT NULL DEFAULT '',
	victim_team TEXT NOT NULL DEFAULT '',
	at          INTEGER NOT NULL
)`

// Open opens a SQLite database, sets WAL mode and busy timeout, and creates
// the frags table.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("fraglog: open %s: %w", path, err)
	}
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("fraglog: init %s: %w", path, err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the filesystem path of the database.
func (s *Store) Path() string { return s.path }

// Record inserts f.
func (s *Store) Record(ctx context.Context, f Frag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO frags (killer, victim, killer_team, victim_team, at) VALUES (?, ?, ?, ?, ?)`,
		f.Killer, f.Victim, f.KillerTeam, f.VictimTeam, f.At.Unix())
	if err != nil {
		return fmt.Errorf("fraglog: record: %w", err)
	}
	return nil
}

// Recent returns up to n frags, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Frag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT killer, victim, killer_team, victim_team, at FROM frags ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("fraglog: recent: %w", err)
	}
	defer rows.Close()
	var out []Frag
	for rows.Next() {
		var f Frag
		var at int64
		if err := rows.Scan(&f.Killer, &f.Victim, &f.KillerTeam, &f.VictimTeam, &at); err != nil {
			return nil, fmt.Errorf("fraglog: scan: %w", err)
		}
		f.At = time.Unix(at, 0)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Kills returns the number of frags credited to killer.
func (s *Store) Kills(ctx context.Context, killer string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM frags WHERE killer = ?`, killer).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("fraglog: kills: %w", err)
	}
	return n, nil
}
