package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"mealbills/internal/storage"
	"mealbills/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return newTestStore(t) })
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c := storagetest.MustConsumer(t, s, "Hamad")
	s.Close()

	s, err = storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.GetConsumer(context.Background(), c.ID)
	if err != nil || got.Name != "Hamad" {
		t.Fatalf("expected consumer to survive reopen, got %+v (err=%v)", got, err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
