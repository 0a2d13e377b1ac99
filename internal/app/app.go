// Package app owns the application state: the signed-in session, the
// tag schema, the live item cache, and the three selection contexts.
// Frontends (CLI, TUI) drive it from a single loop; every user intent
// is one method call that runs to completion.
package app

import (
	"fmt"
	"time"

	"github.com/n0roo/vibespinner/internal/auth"
	"github.com/n0roo/vibespinner/internal/catalog"
	"github.com/n0roo/vibespinner/internal/config"
	"github.com/n0roo/vibespinner/internal/filter"
	"github.com/n0roo/vibespinner/internal/schema"
	"github.com/n0roo/vibespinner/internal/selection"
	"github.com/n0roo/vibespinner/internal/store"
)

// ContextName selects one of the three selection contexts
type ContextName string

const (
	CtxForm   ContextName = "form"
	CtxEdit   ContextName = "edit"
	CtxFilter ContextName = "filter"
)

// App is the explicit application state passed to every operation
type App struct {
	cfg     *config.Config
	store   store.Store
	session auth.Session

	schema  *schema.Schema
	svc     *catalog.Service
	confirm *catalog.Confirmer

	form    *selection.Context
	edit    *selection.Context
	filters *selection.Context

	editingID string

	snapshots <-chan store.Snapshot
	cancel    store.CancelFunc
}

// New assembles the app for a signed-in session
func New(cfg *config.Config, st store.Store, session auth.Session) (*App, error) {
	var paths catalog.Paths
	if cfg.Store.Scope == config.ScopeUser {
		paths = catalog.UserPaths(cfg.App.ID, session.UserID)
	} else {
		paths = catalog.SharedPaths(cfg.App.ID)
	}

	s, err := schema.Load(st, paths.SchemaDoc, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	filterPolicy := selection.PolicyMulti
	if cfg.Filter.ORPolicy == config.ORSingle {
		filterPolicy = selection.PolicySingle
	}

	return &App{
		cfg:     cfg,
		store:   st,
		session: session,
		schema:  s,
		svc:     catalog.NewService(st, paths),
		confirm: catalog.NewConfirmer(time.Duration(cfg.Filter.ConfirmWindowSecs) * time.Second),
		form:    selection.New(selection.PolicyMulti),
		edit:    selection.New(selection.PolicyMulti),
		filters: selection.New(filterPolicy),
	}, nil
}

// Start opens the item snapshot stream
func (a *App) Start() error {
	ch, cancel, err := a.svc.Subscribe()
	if err != nil {
		return fmt.Errorf("subscribe items: %w", err)
	}
	a.snapshots = ch
	a.cancel = cancel
	return nil
}

// Stop cancels the snapshot stream
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Snapshots exposes the stream for the frontend's event loop
func (a *App) Snapshots() <-chan store.Snapshot {
	return a.snapshots
}

// Apply replaces the item cache from a snapshot
func (a *App) Apply(snap store.Snapshot) {
	a.svc.ApplySnapshot(snap)
}

// Sync drains any pending snapshot without blocking
func (a *App) Sync() {
	for {
		select {
		case snap, ok := <-a.snapshots:
			if !ok {
				return
			}
			a.Apply(snap)
		default:
			return
		}
	}
}

// Session returns the signed-in session
func (a *App) Session() auth.Session {
	return a.session
}

// Schema returns the current tag schema
func (a *App) Schema() *schema.Schema {
	return a.schema
}

// Selection returns the named selection context
func (a *App) Selection(name ContextName) *selection.Context {
	switch name {
	case CtxEdit:
		return a.edit
	case CtxFilter:
		return a.filters
	default:
		return a.form
	}
}

// ToggleTag flips a tag in a context; any delete arm state is an
// unrelated action and disarms
func (a *App) ToggleTag(name ContextName, group, tag string) {
	a.confirm.Disarm()
	a.Selection(name).Toggle(a.schema, group, schema.Normalize(tag))
}

// Items returns the full cached list, newest first
func (a *App) Items() []catalog.Item {
	return a.svc.Items()
}

// FilteredItems evaluates the filter bar against the cached list
func (a *App) FilteredItems() []catalog.Item {
	mode := filter.EmptyNone
	if a.cfg.Filter.EmptyMode == config.EmptyAll {
		mode = filter.EmptyAll
	}
	return filter.Evaluate(a.svc.Items(), a.filters, a.schema, mode)
}

// AddItem submits the add form. Incomplete input (empty name or no
// selected tags) is a silent no-op; on success the form is cleared.
func (a *App) AddItem(name string) (added bool, err error) {
	a.confirm.Disarm()

	added, err = a.svc.Add(name, a.form.All(), a.author())
	if err != nil {
		// Form state is kept so the user can retry
		return false, err
	}
	if added {
		a.form.Clear()
		a.form.Recompute(a.schema)
	}
	return added, nil
}

// BeginEdit seeds the edit context from an item's current tags
func (a *App) BeginEdit(id string) (catalog.Item, bool) {
	a.confirm.Disarm()

	item, ok := a.svc.Get(id)
	if !ok {
		return catalog.Item{}, false
	}
	a.editingID = id
	a.edit.Seed(a.schema, item.Tags)
	return item, true
}

// SubmitEdit writes back the edited name and tags. A blank name is a
// silent no-op that keeps the edit session open for another attempt.
func (a *App) SubmitEdit(name string) (saved bool, err error) {
	if a.editingID == "" {
		return false, nil
	}
	updated, err := a.svc.Update(a.editingID, name, a.edit.All(), a.author())
	if err != nil {
		return false, err
	}
	if !updated {
		return false, nil
	}
	a.CancelEdit()
	return true, nil
}

// CancelEdit abandons the edit form
func (a *App) CancelEdit() {
	a.editingID = ""
	a.edit.Clear()
}

// Editing returns the id of the item being edited, if any
func (a *App) Editing() (string, bool) {
	return a.editingID, a.editingID != ""
}

// PressDelete registers a delete click. The first click arms the item;
// a second click within the window performs the store delete.
func (a *App) PressDelete(id string) (deleted bool, err error) {
	if !a.confirm.Trigger(id) {
		return false, nil
	}
	if err := a.svc.Delete(id); err != nil {
		return false, err
	}
	return true, nil
}

// ArmedDelete returns the item currently armed for deletion, if any
func (a *App) ArmedDelete() (string, bool) {
	return a.confirm.Armed()
}

// AddTag adds a tag to a schema group and persists the schema. Invalid
// input is a silent no-op.
func (a *App) AddTag(group, tag string) (added bool, err error) {
	a.confirm.Disarm()

	next := a.schema.Clone()
	if !next.AddTag(group, tag) {
		return false, nil
	}
	if err := schema.Save(a.store, a.svc.Paths().SchemaDoc, next, a.session.UserID); err != nil {
		// Persist failed: local schema stays as it was
		return false, err
	}
	a.schema = next
	return true, nil
}

// DeleteTag removes a tag from a schema group, strips it from every
// item holding it, persists the schema, and drops stale selections in
// all three contexts
func (a *App) DeleteTag(group, tag string) (removed bool, err error) {
	a.confirm.Disarm()

	next := a.schema.Clone()
	if !next.RemoveTag(group, tag) {
		return false, nil
	}

	// Item updates go out before the schema write; both best effort in
	// the sense that the store's eventual consistency window is tolerated
	a.svc.StripTag(schema.Normalize(tag), a.author())

	if err := schema.Save(a.store, a.svc.Paths().SchemaDoc, next, a.session.UserID); err != nil {
		return false, err
	}
	a.schema = next

	a.form.DropMissing(a.schema)
	a.edit.DropMissing(a.schema)
	a.filters.DropMissing(a.schema)
	return true, nil
}

func (a *App) author() catalog.Author {
	return catalog.Author{
		ID:    a.session.UserID,
		Name:  a.session.DisplayName,
		Email: a.session.Email,
	}
}
