// Package journal keeps a persistent record of node events in SQLite.
//
// It is attached to the node logger as a logging.Sink so warnings, errors
// and lifecycle events survive a reset. The CLI dumps and clears it.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ResetMessage is the message the node logs when it resets. LastReset
// looks for it.
const ResetMessage = "node reset requested"

// writeTimeout bounds a sink write so a locked database cannot stall the
// run loop for long.
const writeTimeout = 2 * time.Second

// Entry is one journal record.
type Entry struct {
	ID      int64
	Time    time.Time
	Level   string
	Message string
	Attrs   string
}

// String renders the entry as one dump line.
func (e Entry) String() string {
	line := e.Time.UTC().Format(time.RFC3339Nano) + " " + e.Level + " " + e.Message
	if e.Attrs != "" {
		line += " " + e.Attrs
	}
	return line
}

// Journal reads and writes the journal table.
//
// Thread Safety:
//   - All methods are safe for concurrent use; database/sql serialises
//     access to the single connection.
type Journal struct {
	db    *sql.DB
	limit int

	now func() time.Time

	mu      sync.RWMutex
	onError func(err error)
}

// New returns a journal over db. limit caps the number of entries kept;
// 0 keeps all.
func New(db *sql.DB, limit int) *Journal {
	return &Journal{db: db, limit: limit, now: time.Now}
}

// SetOnError sets a callback for failed sink writes. The callback must
// not log through a logger this journal is attached to.
func (j *Journal) SetOnError(fn func(err error)) {
	j.mu.Lock()
	j.onError = fn
	j.mu.Unlock()
}

// Write implements logging.Sink. Failures go to the OnError callback.
func (j *Journal) Write(level slog.Level, msg, attrs string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	err := j.Record(ctx, Entry{Time: j.now(), Level: level.String(), Message: msg, Attrs: attrs})
	if err == nil {
		return
	}
	j.mu.RLock()
	fn := j.onError
	j.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

// Record inserts e and prunes the oldest entries beyond the limit.
// A zero Time is replaced with now.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = j.now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO journal (ts, level, message, attrs) VALUES (?, ?, ?, ?)`,
		e.Time.UnixNano(), e.Level, e.Message, e.Attrs,
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	if j.limit <= 0 {
		return nil
	}
	_, err = j.db.ExecContext(ctx,
		`DELETE FROM journal WHERE id NOT IN (SELECT id FROM journal ORDER BY id DESC LIMIT ?)`,
		j.limit,
	)
	if err != nil {
		return fmt.Errorf("pruning journal: %w", err)
	}
	return nil
}

// List returns entries oldest first. limit <= 0 returns all; otherwise the
// most recent limit entries.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, ts, level, message, attrs FROM journal ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}

	// Newest-first from the query; flip for chronological output.
	for i, k := 0, len(entries)-1; i < k; i, k = i+1, k-1 {
		entries[i], entries[k] = entries[k], entries[i]
	}
	return entries, nil
}

// Dump writes every entry to w, one per line, oldest first, and returns
// the number written.
func (j *Journal) Dump(ctx context.Context, w io.Writer) (int, error) {
	entries, err := j.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return 0, fmt.Errorf("writing journal dump: %w", err)
	}
	return len(entries), nil
}

// Clear deletes every entry and returns how many were removed.
func (j *Journal) Clear(ctx context.Context) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM journal`)
	if err != nil {
		return 0, fmt.Errorf("clearing journal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared entries: %w", err)
	}
	return n, nil
}

// LastReset returns the most recent reset entry. ok is false when the
// node has never reset.
func (j *Journal) LastReset(ctx context.Context) (Entry, bool, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, ts, level, message, attrs FROM journal WHERE message = ? ORDER BY id DESC LIMIT 1`,
		ResetMessage,
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var ts int64
	if err := s.Scan(&e.ID, &ts, &e.Level, &e.Message, &e.Attrs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scanning journal entry: %w", err)
	}
	e.Time = time.Unix(0, ts).UTC()
	return e, nil
}
