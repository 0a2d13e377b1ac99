package catalog

import (
	"testing"

	"github.com/n0roo/vibespinner/internal/store"
)

var tester = Author{ID: "user-1", Name: "Tester", Email: "tester@example.com"}

func setupService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewService(st, SharedPaths("vibe-test")), st
}

// sync refreshes the service cache from the store
func sync(t *testing.T, svc *Service) {
	t.Helper()
	ch, cancel, err := svc.Subscribe()
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	svc.ApplySnapshot(<-ch)
}

func TestAddRejectsIncompleteInput(t *testing.T) {
	svc, _ := setupService(t)

	cases := []struct {
		name     string
		itemName string
		tags     []string
	}{
		{"empty name", "   ", []string{"food"}},
		{"no tags", "Cafe X", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			added, err := svc.Add(tc.itemName, tc.tags, tester)
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			if added {
				t.Error("incomplete add was accepted")
			}
		})
	}

	sync(t, svc)
	if len(svc.Items()) != 0 {
		t.Errorf("store received %d writes", len(svc.Items()))
	}
}

func TestAddWritesItem(t *testing.T) {
	svc, _ := setupService(t)

	added, err := svc.Add("  Cafe X  ", []string{"food", "italian", "cozy"}, tester)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("add rejected")
	}

	sync(t, svc)
	items := svc.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	item := items[0]
	if item.Name != "Cafe X" {
		t.Errorf("name = %q, want trimmed", item.Name)
	}
	if item.CreatedBy != tester.ID || item.CreatedByName != tester.Name || item.CreatedByEmail != tester.Email {
		t.Errorf("author fields wrong: %+v", item)
	}
	if len(item.Tags) != 3 {
		t.Errorf("tags = %v", item.Tags)
	}
}

func TestUpdatePreservesCreationMetadata(t *testing.T) {
	svc, _ := setupService(t)

	if _, err := svc.Add("Cafe X", []string{"food"}, tester); err != nil {
		t.Fatalf("add: %v", err)
	}
	sync(t, svc)
	id := svc.Items()[0].ID

	editor := Author{ID: "user-2", Name: "Editor"}
	updated, err := svc.Update(id, "Cafe Y", []string{"food", "cozy"}, editor)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated {
		t.Fatal("update reported no write")
	}

	sync(t, svc)
	item, ok := svc.Get(id)
	if !ok {
		t.Fatal("item gone after update")
	}
	if item.Name != "Cafe Y" || len(item.Tags) != 2 {
		t.Errorf("update not applied: %+v", item)
	}
	if item.CreatedBy != tester.ID {
		t.Errorf("createdBy changed to %q", item.CreatedBy)
	}
	if item.UpdatedBy != editor.ID {
		t.Errorf("updatedBy = %q", item.UpdatedBy)
	}
}

func TestDeleteRemovesItem(t *testing.T) {
	svc, _ := setupService(t)

	if _, err := svc.Add("Cafe X", []string{"food"}, tester); err != nil {
		t.Fatalf("add: %v", err)
	}
	sync(t, svc)
	id := svc.Items()[0].ID

	if err := svc.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sync(t, svc)
	if len(svc.Items()) != 0 {
		t.Errorf("items = %d after delete", len(svc.Items()))
	}
}

func TestStripTagUpdatesEveryHolder(t *testing.T) {
	svc, _ := setupService(t)

	for _, name := range []string{"A", "B", "C"} {
		if _, err := svc.Add(name, []string{"food", "quick"}, tester); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if _, err := svc.Add("D", []string{"drink"}, tester); err != nil {
		t.Fatalf("add D: %v", err)
	}
	sync(t, svc)

	if updated := svc.StripTag("quick", tester); updated != 3 {
		t.Errorf("updated = %d, want 3", updated)
	}

	sync(t, svc)
	for _, item := range svc.Items() {
		if item.HasTag("quick") {
			t.Errorf("item %s still holds the stripped tag", item.Name)
		}
	}
}

func TestStripTagBestEffortOnFailure(t *testing.T) {
	svc, st := setupService(t)

	if _, err := svc.Add("A", []string{"quick"}, tester); err != nil {
		t.Fatalf("add: %v", err)
	}
	sync(t, svc)

	st.FailWrites = true
	if updated := svc.StripTag("quick", tester); updated != 0 {
		t.Errorf("updated = %d with failing store", updated)
	}
}
