package journal

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/database"
	_ "github.com/nerrad567/gray-logic-node/migrations"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// openTestJournal opens a migrated temporary database.
func openTestJournal(t *testing.T, limit int) (*Journal, *database.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	j := New(db.DB, limit)
	tick := t0
	j.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return j, db
}

// =============================================================================
// Record / List Tests
// =============================================================================

func TestRecordAndList(t *testing.T) {
	j, _ := openTestJournal(t, 0)
	ctx := context.Background()

	for _, msg := range []string{"boot", "connected", "skill started"} {
		if err := j.Record(ctx, Entry{Level: "INFO", Message: msg}); err != nil {
			t.Fatalf("Record(%q) error = %v", msg, err)
		}
	}

	entries, err := j.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
	if entries[0].Message != "boot" || entries[2].Message != "skill started" {
		t.Errorf("List() order = %q..%q, want boot..skill started", entries[0].Message, entries[2].Message)
	}
	if !entries[0].Time.Equal(t0.Add(time.Second)) {
		t.Errorf("entries[0].Time = %v, want %v", entries[0].Time, t0.Add(time.Second))
	}

	recent, err := j.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(recent) != 2 || recent[0].Message != "connected" || recent[1].Message != "skill started" {
		t.Errorf("List(2) = %+v, want the two newest oldest first", recent)
	}
}

func TestRecord_Prunes(t *testing.T) {
	j, _ := openTestJournal(t, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := j.Record(ctx, Entry{Level: "INFO", Message: string(rune('a' + i))}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := j.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Message)
	}
	if strings.Join(got, "") != "cde" {
		t.Errorf("kept entries = %v, want [c d e]", got)
	}
}

func TestRecord_Unmigrated(t *testing.T) {
	db, err := database.Open(context.Background(), config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "bare.db")})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	j := New(db.DB, 0)
	if err := j.Record(context.Background(), Entry{Level: "INFO", Message: "x"}); err == nil {
		t.Error("Record() error = nil without journal table")
	}

	var reported error
	j.SetOnError(func(err error) { reported = err })
	j.Write(slog.LevelWarn, "lost", "")
	if reported == nil {
		t.Error("Write() did not report the failure to OnError")
	}
}

// =============================================================================
// Sink Tests
// =============================================================================

func TestWrite_Sink(t *testing.T) {
	j, _ := openTestJournal(t, 0)

	j.Write(slog.LevelWarn, "switch runaway", "skill=switch triggers=11")

	entries, err := j.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != "WARN" || e.Message != "switch runaway" || e.Attrs != "skill=switch triggers=11" {
		t.Errorf("entry = %+v", e)
	}
}

// =============================================================================
// Dump / Clear Tests
// =============================================================================

func TestDump(t *testing.T) {
	j, _ := openTestJournal(t, 0)
	ctx := context.Background()

	_ = j.Record(ctx, Entry{Level: "INFO", Message: "boot"})
	_ = j.Record(ctx, Entry{Level: "ERROR", Message: "reconnect failed", Attrs: "attempt=5"})

	var b strings.Builder
	n, err := j.Dump(ctx, &b)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Dump() = %d, want 2", n)
	}

	want := "2026-01-01T12:00:01Z INFO boot\n" +
		"2026-01-01T12:00:02Z ERROR reconnect failed attempt=5\n"
	if b.String() != want {
		t.Errorf("Dump() output = %q, want %q", b.String(), want)
	}
}

func TestClear(t *testing.T) {
	j, _ := openTestJournal(t, 0)
	ctx := context.Background()

	_ = j.Record(ctx, Entry{Level: "INFO", Message: "a"})
	_ = j.Record(ctx, Entry{Level: "INFO", Message: "b"})

	n, err := j.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}

	entries, err := j.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List() after Clear returned %d entries", len(entries))
	}
}

// =============================================================================
// LastReset Tests
// =============================================================================

func TestLastReset(t *testing.T) {
	j, _ := openTestJournal(t, 0)
	ctx := context.Background()

	if _, ok, err := j.LastReset(ctx); err != nil || ok {
		t.Fatalf("LastReset() on empty journal = ok %v, err %v", ok, err)
	}

	_ = j.Record(ctx, Entry{Level: "WARN", Message: ResetMessage, Attrs: "reason=switch runaway"})
	_ = j.Record(ctx, Entry{Level: "INFO", Message: "boot"})
	_ = j.Record(ctx, Entry{Level: "WARN", Message: ResetMessage, Attrs: "reason=reset command received"})
	_ = j.Record(ctx, Entry{Level: "INFO", Message: "boot"})

	e, ok, err := j.LastReset(ctx)
	if err != nil {
		t.Fatalf("LastReset() error = %v", err)
	}
	if !ok {
		t.Fatal("LastReset() ok = false, want true")
	}
	if e.Attrs != "reason=reset command received" {
		t.Errorf("LastReset().Attrs = %q, want the newest reset", e.Attrs)
	}
}

func TestList_Cancelled(t *testing.T) {
	j, _ := openTestJournal(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := j.List(ctx, 0); err == nil || !errors.Is(err, context.Canceled) {
		t.Errorf("List() with cancelled context error = %v, want context.Canceled", err)
	}
}
