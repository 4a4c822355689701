// Package journal records every George command sent by a client, with its
// raw reply, into a local SQLite file.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/johhnry/gotvpaint/george"
)

// Entry is one journaled command.
type Entry struct {
	ID       ulid.ULID
	Time     time.Time
	Command  string
	Reply    string
	Duration time.Duration
	// Err is the transport error text, empty when the host replied.
	// Sentinel replies are host answers and are kept in Reply.
	Err string
}

// Store is a journal backed by a SQLite file.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens or creates the journal at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS commands (
		id TEXT PRIMARY KEY,
		at INTEGER NOT NULL,
		command TEXT NOT NULL,
		reply TEXT NOT NULL,
		duration_ns INTEGER NOT NULL,
		err TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create commands table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record stores e, assigning an id when e has none.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == (ulid.ULID{}) {
		e.ID = ulid.Make()
	}
	if e.Time.IsZero() {
		e.Time = ulid.Time(e.ID.Time())
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commands(id, at, command, reply, duration_ns, err) VALUES(?,?,?,?,?,?)`,
		e.ID.String(), e.Time.UnixNano(), e.Command, e.Reply, int64(e.Duration), e.Err)
	if err != nil {
		return e, fmt.Errorf("insert command: %w", err)
	}
	return e, nil
}

// List returns the most recent entries, newest first. limit <= 0 returns
// all of them.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, at, command, reply, duration_ns, err FROM commands ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select commands: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			id       string
			at, dura int64
		)
		if err := rows.Scan(&id, &at, &e.Command, &e.Reply, &dura, &e.Err); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if e.ID, err = ulid.Parse(id); err != nil {
			return nil, fmt.Errorf("decode id %q: %w", id, err)
		}
		e.Time = time.Unix(0, at)
		e.Duration = time.Duration(dura)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Middleware records every command passing through a client. A failure to
// record is logged and does not fail the command.
func Middleware(s *Store, logger *slog.Logger) george.Middleware {
	return func(next george.Handler) george.Handler {
		return func(ctx context.Context, cmd george.Command) (string, error) {
			start := time.Now()
			reply, err := next(ctx, cmd)
			e := Entry{
				Time:     start,
				Command:  cmd.Format(),
				Reply:    reply,
				Duration: time.Since(start),
			}
			if err != nil {
				e.Err = err.Error()
			}
			if _, recErr := s.Record(context.WithoutCancel(ctx), e); recErr != nil {
				logger.Warn("journal write failed", "command", cmd.Name, "error", recErr)
			}
			return reply, err
		}
	}
}
