package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process store with the same semantics as SQLite.
// It backs tests and keeps the catalog logic runnable without a database.
type Memory struct {
	mu          sync.Mutex
	docs        map[string]map[string]any
	collections map[string]map[string]*memDoc
	subs        map[string][]*subscriber
	seq         int64

	// FailWrites makes every mutating call fail, for error-path tests
	FailWrites bool
}

type memDoc struct {
	data      map[string]any
	createdAt time.Time
	updatedAt time.Time
	seq       int64
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		docs:        make(map[string]map[string]any),
		collections: make(map[string]map[string]*memDoc),
		subs:        make(map[string][]*subscriber),
	}
}

// GetDocument fetches a document by path
func (m *Memory) GetDocument(path string) (map[string]any, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data, ok := m.docs[path]; ok {
		return cloneMap(data), true, nil
	}
	if collection, id, ok := splitPath(path); ok {
		if doc, present := m.collections[collection][id]; present {
			return cloneMap(doc.data), true, nil
		}
	}
	return nil, false, nil
}

// SetDocument writes a singleton document, optionally merging fields
func (m *Memory) SetDocument(path string, data map[string]any, merge bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return fmt.Errorf("set %s: write refused", path)
	}

	next := cloneMap(data)
	if merge {
		if existing, ok := m.docs[path]; ok {
			for k, v := range existing {
				if _, present := next[k]; !present {
					next[k] = v
				}
			}
		}
	}
	m.docs[path] = next
	return nil
}

// UpdateFields overwrites top-level fields of an existing document
func (m *Memory) UpdateFields(path string, fields map[string]any) error {
	m.mu.Lock()

	if m.FailWrites {
		m.mu.Unlock()
		return fmt.Errorf("update %s: write refused", path)
	}

	if collection, id, ok := splitPath(path); ok {
		if doc, present := m.collections[collection][id]; present {
			for k, v := range fields {
				doc.data[k] = v
			}
			doc.updatedAt = time.Now()
			m.mu.Unlock()
			m.notify(collection)
			return nil
		}
	}
	if data, ok := m.docs[path]; ok {
		for k, v := range fields {
			data[k] = v
		}
		m.mu.Unlock()
		return nil
	}

	m.mu.Unlock()
	return fmt.Errorf("update %s: %w", path, ErrNotFound)
}

// AddDocument appends a document to a collection
func (m *Memory) AddDocument(collection string, data map[string]any) (string, error) {
	m.mu.Lock()

	if m.FailWrites {
		m.mu.Unlock()
		return "", fmt.Errorf("add to %s: write refused", collection)
	}

	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]*memDoc)
	}

	m.seq++
	id := uuid.New().String()
	now := time.Now()
	m.collections[collection][id] = &memDoc{
		data:      cloneMap(data),
		createdAt: now,
		updatedAt: now,
		seq:       m.seq,
	}
	m.mu.Unlock()

	m.notify(collection)
	return id, nil
}

// DeleteDocument removes a collection member
func (m *Memory) DeleteDocument(path string) error {
	m.mu.Lock()

	if m.FailWrites {
		m.mu.Unlock()
		return fmt.Errorf("delete %s: write refused", path)
	}

	collection, id, ok := splitPath(path)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete %s: not a collection member path", path)
	}
	if _, present := m.collections[collection][id]; !present {
		m.mu.Unlock()
		return fmt.Errorf("delete %s: %w", path, ErrNotFound)
	}
	delete(m.collections[collection], id)
	m.mu.Unlock()

	m.notify(collection)
	return nil
}

// Subscribe registers a snapshot listener for a collection
func (m *Memory) Subscribe(collection string) (<-chan Snapshot, CancelFunc, error) {
	sub := &subscriber{collection: collection, ch: make(chan Snapshot, 1)}

	m.mu.Lock()
	sub.ch <- m.snapshot(collection)
	m.subs[collection] = append(m.subs[collection], sub)
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		list := m.subs[collection]
		for i, candidate := range list {
			if candidate == sub {
				m.subs[collection] = append(list[:i], list[i+1:]...)
				close(sub.ch)
				return
			}
		}
	}
	return sub.ch, cancel, nil
}

// Close is a no-op for the in-memory store
func (m *Memory) Close() error { return nil }

// snapshot builds the collection state, newest first. Caller holds mu.
func (m *Memory) snapshot(collection string) Snapshot {
	var snap Snapshot
	for id, doc := range m.collections[collection] {
		snap.Docs = append(snap.Docs, Document{
			ID:        id,
			Data:      cloneMap(doc.data),
			CreatedAt: doc.createdAt,
			UpdatedAt: doc.updatedAt,
		})
	}
	// Insertion sequence breaks createdAt ties
	seqOf := func(d Document) int64 { return m.collections[collection][d.ID].seq }
	sort.Slice(snap.Docs, func(i, j int) bool {
		return seqOf(snap.Docs[i]) > seqOf(snap.Docs[j])
	})
	return snap
}

func (m *Memory) notify(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot(collection)
	for _, sub := range m.subs[collection] {
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- snap:
		default:
		}
	}
}

func cloneMap(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case []string:
			out[k] = append([]string(nil), val...)
		case []any:
			out[k] = append([]any(nil), val...)
		default:
			out[k] = v
		}
	}
	return out
}
