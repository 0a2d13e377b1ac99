// Package catalog owns the item lifecycle: the live item cache fed by
// store snapshots, add/edit/delete, and the cascades that keep items
// consistent with schema mutations.
package catalog

import (
	"fmt"
	"log"
	"strings"

	"github.com/n0roo/vibespinner/internal/store"
)

// Paths addresses the schema document and the items collection. The
// service never interprets their structure.
type Paths struct {
	SchemaDoc string
	Items     string
}

// SharedPaths addresses the deployment-wide shared pool
func SharedPaths(appID string) Paths {
	return Paths{
		SchemaDoc: store.Join("data", appID),
		Items:     store.Join("data", appID, "items"),
	}
}

// UserPaths addresses a per-user item pool
func UserPaths(appID, userID string) Paths {
	return Paths{
		SchemaDoc: store.Join("data", appID),
		Items:     store.Join("data", appID, "users", userID, "items"),
	}
}

// Service handles item operations against the store
type Service struct {
	store store.Store
	paths Paths
	items []Item
}

// NewService creates an item service
func NewService(st store.Store, paths Paths) *Service {
	return &Service{store: st, paths: paths}
}

// Paths returns the service's store addresses
func (s *Service) Paths() Paths {
	return s.paths
}

// Subscribe opens the snapshot stream for the items collection
func (s *Service) Subscribe() (<-chan store.Snapshot, store.CancelFunc, error) {
	return s.store.Subscribe(s.paths.Items)
}

// ApplySnapshot replaces the item cache wholesale. Snapshots are level
// triggered: each carries the full collection, newest first.
func (s *Service) ApplySnapshot(snap store.Snapshot) {
	items := make([]Item, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		items = append(items, fromDoc(doc))
	}
	s.items = items
}

// Items returns the cached item list, newest first
func (s *Service) Items() []Item {
	return s.items
}

// Get looks up a cached item by id
func (s *Service) Get(id string) (Item, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Add writes a new item. An empty trimmed name or empty tag set is an
// incomplete user action, not an error: no store call, added is false.
func (s *Service) Add(name string, tags []string, by Author) (added bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" || len(tags) == 0 {
		return false, nil
	}

	_, err = s.store.AddDocument(s.paths.Items, map[string]any{
		"name":           name,
		"tags":           tags,
		"createdBy":      by.ID,
		"createdByName":  by.Name,
		"createdByEmail": by.Email,
	})
	if err != nil {
		return false, fmt.Errorf("add item: %w", err)
	}
	return true, nil
}

// Update rewrites an item's name and tags only; creation metadata is
// left untouched. A blank name is a silent no-op, reported so the
// caller can keep its edit state open.
func (s *Service) Update(id, name string, tags []string, by Author) (updated bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	err = s.store.UpdateFields(store.Join(s.paths.Items, id), map[string]any{
		"name":      name,
		"tags":      tags,
		"updatedBy": by.ID,
	})
	if err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}
	return true, nil
}

// Delete removes an item
func (s *Service) Delete(id string) error {
	if err := s.store.DeleteDocument(store.Join(s.paths.Items, id)); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// StripTag removes a deleted tag from every cached item holding it, as
// independent best-effort writes. Failures are logged per item and do
// not block the caller's schema update; the store's next snapshot
// resolves any brief inconsistency.
func (s *Service) StripTag(tag string, by Author) (updated int) {
	for _, item := range s.items {
		if !item.HasTag(tag) {
			continue
		}

		kept := make([]string, 0, len(item.Tags)-1)
		for _, t := range item.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}

		err := s.store.UpdateFields(store.Join(s.paths.Items, item.ID), map[string]any{
			"tags":      kept,
			"updatedBy": by.ID,
		})
		if err != nil {
			log.Printf("strip tag %q from item %s: %v", tag, item.ID, err)
			continue
		}
		updated++
	}
	return updated
}
