package store

import (
	"path/filepath"
	"testing"

	"github.com/n0roo/vibespinner/internal/db"
)

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewSQLite(database)
}

// Both implementations must behave identically
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, setupSQLite(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}

func TestSetGetDocument(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		if _, ok, err := s.GetDocument("data/app"); err != nil || ok {
			t.Fatalf("missing doc: ok=%v err=%v", ok, err)
		}

		if err := s.SetDocument("data/app", map[string]any{"a": "1"}, false); err != nil {
			t.Fatalf("set: %v", err)
		}

		data, ok, err := s.GetDocument("data/app")
		if err != nil || !ok {
			t.Fatalf("get: ok=%v err=%v", ok, err)
		}
		if data["a"] != "1" {
			t.Errorf("a = %v, want 1", data["a"])
		}
	})
}

func TestSetDocumentMergePreservesFields(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		if err := s.SetDocument("data/app", map[string]any{"a": "1", "b": "2"}, false); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := s.SetDocument("data/app", map[string]any{"b": "3"}, true); err != nil {
			t.Fatalf("merge set: %v", err)
		}

		data, _, err := s.GetDocument("data/app")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if data["a"] != "1" {
			t.Errorf("merge dropped field a: %v", data["a"])
		}
		if data["b"] != "3" {
			t.Errorf("b = %v, want 3", data["b"])
		}
	})
}

func TestAddDeleteCollectionDocument(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		id, err := s.AddDocument("data/app/items", map[string]any{"name": "Cafe X"})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if id == "" {
			t.Fatal("empty id")
		}

		path := Join("data/app/items", id)
		data, ok, err := s.GetDocument(path)
		if err != nil || !ok {
			t.Fatalf("get by path: ok=%v err=%v", ok, err)
		}
		if data["name"] != "Cafe X" {
			t.Errorf("name = %v", data["name"])
		}

		if err := s.DeleteDocument(path); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, ok, _ := s.GetDocument(path); ok {
			t.Error("document still present after delete")
		}
	})
}

func TestUpdateFields(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		id, err := s.AddDocument("data/app/items", map[string]any{"name": "Cafe X", "tags": []any{"food"}})
		if err != nil {
			t.Fatalf("add: %v", err)
		}

		path := Join("data/app/items", id)
		if err := s.UpdateFields(path, map[string]any{"name": "Cafe Y"}); err != nil {
			t.Fatalf("update: %v", err)
		}

		data, _, err := s.GetDocument(path)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if data["name"] != "Cafe Y" {
			t.Errorf("name = %v, want Cafe Y", data["name"])
		}
		if tags, ok := data["tags"].([]any); !ok || len(tags) != 1 {
			t.Errorf("untouched field lost: %v", data["tags"])
		}
	})
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ch, cancel, err := s.Subscribe("data/app/items")
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		defer cancel()

		snap := <-ch
		if len(snap.Docs) != 0 {
			t.Fatalf("initial snapshot has %d docs", len(snap.Docs))
		}

		if _, err := s.AddDocument("data/app/items", map[string]any{"name": "A"}); err != nil {
			t.Fatalf("add: %v", err)
		}

		snap = <-ch
		if len(snap.Docs) != 1 {
			t.Fatalf("snapshot has %d docs, want 1", len(snap.Docs))
		}
		if snap.Docs[0].Data["name"] != "A" {
			t.Errorf("name = %v", snap.Docs[0].Data["name"])
		}
	})
}

func TestSnapshotNewestFirst(t *testing.T) {
	s := NewMemory()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.AddDocument("data/app/items", map[string]any{"name": name}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	ch, cancel, err := s.Subscribe("data/app/items")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	snap := <-ch
	want := []string{"third", "second", "first"}
	for i, doc := range snap.Docs {
		if doc.Data["name"] != want[i] {
			t.Errorf("docs[%d] = %v, want %s", i, doc.Data["name"], want[i])
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ch, cancel, err := s.Subscribe("data/app/items")
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		<-ch
		cancel()

		if _, err := s.AddDocument("data/app/items", map[string]any{"name": "A"}); err != nil {
			t.Fatalf("add: %v", err)
		}

		if _, open := <-ch; open {
			t.Error("channel still open after cancel")
		}
	})
}
