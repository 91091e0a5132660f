package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/playperu/quizcore/internal/database"
)

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLite(ctx, db, "test")
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	store := setupSQLite(t)

	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := store.Set("timers", doc{Name: "session", Count: 3}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got doc
	if err := store.Get("timers", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "session" || got.Count != 3 {
		t.Errorf("unexpected value %+v", got)
	}

	// Overwrite keeps the same key.
	if err := store.Set("timers", doc{Name: "session", Count: 7}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := store.Get("timers", &got); err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if got.Count != 7 {
		t.Errorf("expected overwritten count 7, got %d", got.Count)
	}
}

func TestSQLiteNotFound(t *testing.T) {
	store := setupSQLite(t)

	var dest any
	if err := store.Get("missing", &dest); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRemove(t *testing.T) {
	store := setupSQLite(t)

	if err := store.Set("scores", map[string]int{"t1": 10}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Remove("scores"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	var dest map[string]int
	if err := store.Get("scores", &dest); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}

	// Removing an absent key is fine.
	if err := store.Remove("scores"); err != nil {
		t.Errorf("second remove: %v", err)
	}
}

func TestSQLiteNamespacesAreIsolated(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a, err := NewSQLite(ctx, db, "session-a")
	if err != nil {
		t.Fatalf("init a: %v", err)
	}
	b, err := NewSQLite(ctx, db, "session-b")
	if err != nil {
		t.Fatalf("init b: %v", err)
	}

	if err := a.Set("scores", map[string]int{"t1": 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	var dest map[string]int
	if err := b.Get("scores", &dest); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected namespace isolation, got %v", err)
	}
}
