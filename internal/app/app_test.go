package app

import (
	"testing"

	"github.com/n0roo/vibespinner/internal/auth"
	"github.com/n0roo/vibespinner/internal/config"
	"github.com/n0roo/vibespinner/internal/store"
)

var session = auth.Session{
	UserID:      "user-1",
	DisplayName: "Tester",
	Email:       "tester@example.com",
}

func setupApp(t *testing.T) *App {
	t.Helper()

	a, err := New(config.Defaults(), store.NewMemory(), session)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(a.Stop)

	a.Sync()
	return a
}

func addItem(t *testing.T, a *App, name string, tags ...string) string {
	t.Helper()
	for _, tag := range tags {
		group, ok := a.Schema().GroupOf(tag)
		if !ok {
			t.Fatalf("tag %q not in schema", tag)
		}
		a.ToggleTag(CtxForm, group, tag)
	}
	added, err := a.AddItem(name)
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	if !added {
		t.Fatalf("add %s rejected", name)
	}
	a.Sync()
	for _, item := range a.Items() {
		if item.Name == name {
			return item.ID
		}
	}
	t.Fatalf("item %s not in snapshot", name)
	return ""
}

func TestAddItemClearsForm(t *testing.T) {
	a := setupApp(t)

	a.ToggleTag(CtxForm, "Type", "food")
	a.ToggleTag(CtxForm, "Cuisine / Style", "italian")

	added, err := a.AddItem("Cafe X")
	if err != nil || !added {
		t.Fatalf("add: added=%v err=%v", added, err)
	}

	if a.Selection(CtxForm).Count() != 0 {
		t.Error("form not cleared after add")
	}

	a.Sync()
	if len(a.Items()) != 1 {
		t.Fatalf("items = %d", len(a.Items()))
	}
	if a.Items()[0].CreatedByName != "Tester" {
		t.Errorf("createdByName = %q", a.Items()[0].CreatedByName)
	}
}

func TestAddItemIncompleteNoOp(t *testing.T) {
	a := setupApp(t)

	// Tags selected but no name
	a.ToggleTag(CtxForm, "Type", "food")
	if added, err := a.AddItem("   "); err != nil || added {
		t.Fatalf("empty name: added=%v err=%v", added, err)
	}
	// Name but no tags
	a.Selection(CtxForm).Clear()
	if added, err := a.AddItem("Cafe X"); err != nil || added {
		t.Fatalf("no tags: added=%v err=%v", added, err)
	}

	a.Sync()
	if len(a.Items()) != 0 {
		t.Errorf("store was written: %d items", len(a.Items()))
	}
	if a.Selection(CtxForm).Count() != 0 {
		t.Error("form cleared by a rejected submit")
	}
}

func TestFilteredItemsScenario(t *testing.T) {
	a := setupApp(t)
	addItem(t, a, "Cafe X", "food", "italian", "cozy")
	addItem(t, a, "Taqueria", "food", "mexican")

	a.ToggleTag(CtxFilter, "Type", "food")
	if got := a.FilteredItems(); len(got) != 2 {
		t.Fatalf("Type=food matched %d", len(got))
	}

	a.ToggleTag(CtxFilter, "Cuisine / Style", "mexican")
	got := a.FilteredItems()
	if len(got) != 1 || got[0].Name != "Taqueria" {
		t.Fatalf("cuisine filter matched %v", got)
	}

	// Cascade: clearing food sweeps the cuisine selection with it
	a.ToggleTag(CtxFilter, "Type", "food")
	if got := a.FilteredItems(); len(got) != 0 {
		t.Errorf("matched %d after cascade, want 0", len(got))
	}
}

func TestEditPreservesCreation(t *testing.T) {
	a := setupApp(t)
	id := addItem(t, a, "Cafe X", "food", "italian")

	item, ok := a.BeginEdit(id)
	if !ok {
		t.Fatal("begin edit failed")
	}
	if item.Name != "Cafe X" {
		t.Errorf("loaded name = %q", item.Name)
	}
	// Existing tags are pre-selected, visibility included
	if !a.Selection(CtxEdit).IsSelected("Cuisine / Style", "italian") {
		t.Error("edit context missing existing tag")
	}

	a.ToggleTag(CtxEdit, "Tag", "cozy")
	saved, err := a.SubmitEdit("Cafe Y")
	if err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	if !saved {
		t.Fatal("submit edit reported no write")
	}

	a.Sync()
	edited := a.Items()[0]
	if edited.Name != "Cafe Y" || len(edited.Tags) != 3 {
		t.Errorf("edit not applied: %+v", edited)
	}
	if edited.CreatedBy != session.UserID {
		t.Errorf("createdBy = %q", edited.CreatedBy)
	}
	if _, editing := a.Editing(); editing {
		t.Error("edit state not cleared")
	}
}

func TestSubmitEditBlankNameKeepsSession(t *testing.T) {
	a := setupApp(t)
	id := addItem(t, a, "Cafe X", "food", "italian")

	if _, ok := a.BeginEdit(id); !ok {
		t.Fatal("begin edit failed")
	}

	saved, err := a.SubmitEdit("   ")
	if err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	if saved {
		t.Fatal("blank name reported as saved")
	}

	// The session stays open for another attempt
	if editingID, editing := a.Editing(); !editing || editingID != id {
		t.Errorf("edit session closed by rejected submit (editing=%v id=%q)", editing, editingID)
	}
	if a.Selection(CtxEdit).Count() == 0 {
		t.Error("edit context cleared by rejected submit")
	}

	a.Sync()
	if got := a.Items()[0].Name; got != "Cafe X" {
		t.Errorf("name = %q, want unchanged", got)
	}
}

func TestTwoPhaseDelete(t *testing.T) {
	a := setupApp(t)
	id := addItem(t, a, "Cafe X", "food")

	deleted, err := a.PressDelete(id)
	if err != nil {
		t.Fatalf("first press: %v", err)
	}
	if deleted {
		t.Fatal("first press deleted")
	}
	if armed, ok := a.ArmedDelete(); !ok || armed != id {
		t.Fatalf("armed = %q/%v", armed, ok)
	}

	deleted, err = a.PressDelete(id)
	if err != nil {
		t.Fatalf("second press: %v", err)
	}
	if !deleted {
		t.Fatal("second press did not delete")
	}

	a.Sync()
	if len(a.Items()) != 0 {
		t.Errorf("items = %d after delete", len(a.Items()))
	}
}

func TestUnrelatedActionDisarmsDelete(t *testing.T) {
	a := setupApp(t)
	id := addItem(t, a, "Cafe X", "food")

	if _, err := a.PressDelete(id); err != nil {
		t.Fatal(err)
	}
	a.ToggleTag(CtxFilter, "Type", "food")

	if _, ok := a.ArmedDelete(); ok {
		t.Fatal("still armed after unrelated action")
	}
	if deleted, _ := a.PressDelete(id); deleted {
		t.Error("press after disarm deleted")
	}
}

func TestAddTagPersists(t *testing.T) {
	a := setupApp(t)

	added, err := a.AddTag("Tag", " Rooftop ")
	if err != nil || !added {
		t.Fatalf("add tag: added=%v err=%v", added, err)
	}
	if !a.Schema().Has("Tag", "rooftop") {
		t.Error("schema missing new tag")
	}

	// Duplicate is a silent no-op
	if added, err := a.AddTag("Tag", "rooftop"); err != nil || added {
		t.Errorf("duplicate: added=%v err=%v", added, err)
	}
}

func TestDeleteTagCascades(t *testing.T) {
	a := setupApp(t)
	addItem(t, a, "A", "food", "quick")
	addItem(t, a, "B", "drink", "quick")
	addItem(t, a, "C", "place", "quick")

	a.ToggleTag(CtxFilter, "Tag", "quick")

	removed, err := a.DeleteTag("Tag", "quick")
	if err != nil || !removed {
		t.Fatalf("delete tag: removed=%v err=%v", removed, err)
	}

	if a.Schema().Has("Tag", "quick") {
		t.Error("schema still lists the tag")
	}
	if a.Selection(CtxFilter).Count() != 0 {
		t.Error("filter selection kept the deleted tag")
	}

	a.Sync()
	for _, item := range a.Items() {
		if item.HasTag("quick") {
			t.Errorf("item %s still holds the deleted tag", item.Name)
		}
	}
}

func TestWriteFailureLeavesStateUnchanged(t *testing.T) {
	st := store.NewMemory()
	a, err := New(config.Defaults(), st, session)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.Stop()

	a.ToggleTag(CtxForm, "Type", "food")
	st.FailWrites = true

	added, err := a.AddItem("Cafe X")
	if err == nil || added {
		t.Fatalf("failing store: added=%v err=%v", added, err)
	}
	// Form survives so the user can retry
	if !a.Selection(CtxForm).IsSelected("Type", "food") {
		t.Error("form cleared despite write failure")
	}

	if added, err := a.AddTag("Tag", "rooftop"); err == nil || added {
		t.Fatalf("failing schema save: added=%v err=%v", added, err)
	}
	if a.Schema().Has("Tag", "rooftop") {
		t.Error("schema mutated despite write failure")
	}
}

func TestPerUserScopeSeparatesPools(t *testing.T) {
	cfg := config.Defaults()
	cfg.Store.Scope = config.ScopeUser
	st := store.NewMemory()

	first, err := New(cfg, st, session)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := first.Start(); err != nil {
		t.Fatal(err)
	}
	defer first.Stop()

	first.ToggleTag(CtxForm, "Type", "food")
	if _, err := first.AddItem("Mine"); err != nil {
		t.Fatalf("add: %v", err)
	}
	first.Sync()
	if len(first.Items()) != 1 {
		t.Fatalf("owner sees %d items", len(first.Items()))
	}

	other, err := New(cfg, st, auth.Session{UserID: "user-2"})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := other.Start(); err != nil {
		t.Fatal(err)
	}
	defer other.Stop()

	other.Sync()
	if len(other.Items()) != 0 {
		t.Errorf("other user sees %d items", len(other.Items()))
	}
}
