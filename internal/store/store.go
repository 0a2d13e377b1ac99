// Package store abstracts the document backend. Paths are hierarchical
// strings ("data/<app>" for singleton documents, "data/<app>/items" for
// collections); callers never interpret their structure.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// Document is a stored document plus its server-assigned metadata
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot carries the full current state of a collection, newest first
type Snapshot struct {
	Docs []Document
}

// CancelFunc stops a subscription
type CancelFunc func()

// Store is the document backend consumed by the catalog
type Store interface {
	// GetDocument fetches a singleton document. ok is false when absent.
	GetDocument(path string) (data map[string]any, ok bool, err error)

	// SetDocument writes a singleton document. With merge, existing
	// top-level fields not present in data are preserved.
	SetDocument(path string, data map[string]any, merge bool) error

	// UpdateFields overwrites the given top-level fields of an existing
	// document, singleton or collection member.
	UpdateFields(path string, fields map[string]any) error

	// AddDocument appends to a collection and returns the assigned id.
	// Creation time is assigned by the store.
	AddDocument(collection string, data map[string]any) (string, error)

	// DeleteDocument removes a collection member.
	DeleteDocument(path string) error

	// Subscribe delivers the current snapshot immediately and a fresh
	// snapshot after every write to the collection, ordered by creation
	// time descending. Each snapshot replaces the previous one wholesale.
	Subscribe(collection string) (<-chan Snapshot, CancelFunc, error)

	Close() error
}

// Join builds a path from segments
func Join(segments ...string) string {
	path := ""
	for i, s := range segments {
		if i > 0 {
			path += "/"
		}
		path += s
	}
	return path
}
