package db

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()

	version, err := database.GetVersion()
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	if version != schemaVersion {
		t.Errorf("schema version = %d, want %d", version, schemaVersion)
	}

	// Tables exist and are writable
	if _, err := database.Exec(`INSERT INTO documents (path, data) VALUES ('data/test', '{}')`); err != nil {
		t.Errorf("insert document: %v", err)
	}
	if _, err := database.Exec(`INSERT INTO collection_docs (collection, id, data) VALUES ('data/test/items', 'a', '{}')`); err != nil {
		t.Errorf("insert collection doc: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	first.Close()

	second, err := Open(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	if second.Path() != dbPath {
		t.Errorf("path = %s, want %s", second.Path(), dbPath)
	}
}
