package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/razonbilstro/nucleo/internal/journal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mirrorRecord(id, command, outcome string) journal.Record {
	return journal.Record{
		Timestamp:  time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		DispatchID: id,
		Command:    command,
		Class:      "safe",
		Outcome:    outcome,
		ExitCode:   0,
		DurationMs: 40,
	}
}

func TestOpen_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.Append(mirrorRecord("id-1", "ls", "success")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	n, err := db.Count()
	if err != nil || n != 1 {
		t.Fatalf("Count = %d (%v), want 1", n, err)
	}
}

func TestAppendAndGet(t *testing.T) {
	db := openTestDB(t)

	rec := mirrorRecord("id-get", "rm -rf /tmp/x", "failed")
	rec.ExitCode = 1
	rec.Output = "permission denied"
	if err := db.Append(rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := db.Get("id-get")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Command != rec.Command || got.Outcome != "failed" || got.ExitCode != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Output != "permission denied" {
		t.Errorf("output = %q", got.Output)
	}
	if !got.Timestamp.Equal(rec.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, rec.Timestamp)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Get("nope"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestAppend_DuplicateDispatchIDRejected(t *testing.T) {
	db := openTestDB(t)
	rec := mirrorRecord("dup", "ls", "success")
	if err := db.Append(rec); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := db.Append(rec); err == nil {
		t.Fatal("duplicate dispatch_id should be rejected")
	}
}

func TestList(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		outcome := "success"
		if i%2 == 1 {
			outcome = "failed"
		}
		rec := mirrorRecord(fmt.Sprintf("id-%d", i), fmt.Sprintf("cmd-%d scan", i), outcome)
		if err := db.Append(rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		records, err := db.List(ListOptions{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) != 5 {
			t.Fatalf("got %d records", len(records))
		}
		if records[0].DispatchID != "id-4" {
			t.Errorf("first record = %s, want id-4", records[0].DispatchID)
		}
	})

	t.Run("outcome filter", func(t *testing.T) {
		records, err := db.List(ListOptions{Outcome: "failed"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d failed records, want 2", len(records))
		}
	})

	t.Run("search filter", func(t *testing.T) {
		records, err := db.List(ListOptions{Search: "cmd-3"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) != 1 || records[0].DispatchID != "id-3" {
			t.Fatalf("search miss: %+v", records)
		}
	})

	t.Run("limit and offset", func(t *testing.T) {
		records, err := db.List(ListOptions{Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		if records[0].DispatchID != "id-3" {
			t.Errorf("offset record = %s, want id-3", records[0].DispatchID)
		}
	})
}
