package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/n0rdy/queuewatch/common"

	"github.com/jonboulle/clockwork"
)

func newTestSQLiteRepo(t *testing.T) (*SQLiteRepo, *clockwork.FakeClock) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "queuewatch.db")
	if err := RunSQLiteMigrations(dbPath); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	clock := clockwork.NewFakeClock()
	repo, err := NewSQLiteRepo(dbPath, clock)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, clock
}

func TestSQLiteRepo_EmptyStore(t *testing.T) {
	repo, _ := newTestSQLiteRepo(t)

	address, found, err := repo.GetAddress(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || address != "" {
		t.Fatalf("expected nothing stored, got %q", address)
	}
}

func TestSQLiteRepo_SaveOverwrites(t *testing.T) {
	repo, clock := newTestSQLiteRepo(t)
	ctx := context.Background()

	if err := repo.SaveAddress(ctx, "10.0.0.1:8080"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Advance(time.Minute)
	if err := repo.SaveAddress(ctx, "https://broker.local"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	address, found, err := repo.GetAddress(ctx)
	if err != nil || !found {
		t.Fatalf("expected a stored address, got found=%v err=%v", found, err)
	}
	if address != "https://broker.local" {
		t.Fatalf("expected the last write to win, got %q", address)
	}

	var count int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM settings;`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}
}

func TestSQLiteRepo_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "queuewatch.db")
	ctx := context.Background()

	if err := RunSQLiteMigrations(dbPath); err != nil {
		t.Fatal(err)
	}
	repo, err := NewSQLiteRepo(dbPath, clockwork.NewRealClock())
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveAddress(ctx, "10.0.0.1:8080"); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	// second run finds no change to apply
	if err := RunSQLiteMigrations(dbPath); err != nil {
		t.Fatal(err)
	}
	reopened, err := NewSQLiteRepo(dbPath, clockwork.NewRealClock())
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	address, found, err := reopened.GetAddress(ctx)
	if err != nil || !found || address != "10.0.0.1:8080" {
		t.Fatalf("expected the address to survive a restart, got %q found=%v err=%v", address, found, err)
	}
}

func TestSQLiteRepo_ClosedReturnsInternal(t *testing.T) {
	repo, _ := newTestSQLiteRepo(t)
	repo.Close()

	_, _, err := repo.GetAddress(context.Background())
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err := repo.SaveAddress(context.Background(), "x"); !errors.Is(err, common.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
