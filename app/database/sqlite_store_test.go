package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "state.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Expected store, got error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	data, err := store.Get(ctx, "seen")
	if err != nil || data != nil {
		t.Fatalf("Expected empty result, got %s, %v", data, err)
	}

	if err := store.Commit(ctx, []Blob{{Key: "seen", Data: []byte(`{"a":{}}`)}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Commit(ctx, []Blob{{Key: "seen", Data: []byte(`{"b":{}}`)}}); err != nil {
		t.Fatal(err)
	}

	data, err = store.Get(ctx, "seen")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"b":{}}` {
		t.Errorf("Expected upserted value, got '%s'", data)
	}
}

func TestSQLiteStoreReopensMigratedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Commit(context.Background(), []Blob{{Key: "history/x", Data: []byte(`[]`)}}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Expected reopen to succeed, got %v", err)
	}
	defer reopened.Close()

	data, err := reopened.Get(context.Background(), "history/x")
	if err != nil || string(data) != "[]" {
		t.Errorf("Expected persisted blob, got '%s', %v", data, err)
	}
}
