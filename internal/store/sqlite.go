package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/n0roo/vibespinner/internal/db"
)

// SQLite persists documents in the local database
type SQLite struct {
	db *db.DB

	mu   sync.Mutex
	subs map[string][]*subscriber
}

type subscriber struct {
	collection string
	ch         chan Snapshot
}

// NewSQLite creates a store backed by the given database
func NewSQLite(database *db.DB) *SQLite {
	return &SQLite{
		db:   database,
		subs: make(map[string][]*subscriber),
	}
}

// GetDocument fetches a singleton document by path
func (s *SQLite) GetDocument(path string) (map[string]any, bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT data FROM documents WHERE path = ?`, path).Scan(&raw)
	if err == sql.ErrNoRows {
		// Collection members are also addressable by full path
		collection, id, ok := splitPath(path)
		if !ok {
			return nil, false, nil
		}
		err = s.db.QueryRow(`SELECT data FROM collection_docs WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("get document %s: %w", path, err)
	}

	data, err := decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode document %s: %w", path, err)
	}
	return data, true, nil
}

// SetDocument writes a singleton document, optionally merging fields
func (s *SQLite) SetDocument(path string, data map[string]any, merge bool) error {
	if merge {
		existing, ok, err := s.GetDocument(path)
		if err != nil {
			return err
		}
		if ok {
			for k, v := range existing {
				if _, present := data[k]; !present {
					data[k] = v
				}
			}
		}
	}

	raw, err := encode(data)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", path, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO documents (path, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, path, raw)
	if err != nil {
		return fmt.Errorf("set document %s: %w", path, err)
	}
	return nil
}

// UpdateFields overwrites the given top-level fields of an existing document
func (s *SQLite) UpdateFields(path string, fields map[string]any) error {
	data, ok, err := s.GetDocument(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("update %s: %w", path, ErrNotFound)
	}
	for k, v := range fields {
		data[k] = v
	}

	raw, err := encode(data)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", path, err)
	}

	collection, id, split := splitPath(path)
	if split {
		res, err := s.db.Exec(`
			UPDATE collection_docs SET data = ?, updated_at = CURRENT_TIMESTAMP
			WHERE collection = ? AND id = ?
		`, raw, collection, id)
		if err != nil {
			return fmt.Errorf("update document %s: %w", path, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			s.notify(collection)
			return nil
		}
	}

	_, err = s.db.Exec(`
		UPDATE documents SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE path = ?
	`, raw, path)
	if err != nil {
		return fmt.Errorf("update document %s: %w", path, err)
	}
	return nil
}

// AddDocument appends a document to a collection and returns its id
func (s *SQLite) AddDocument(collection string, data map[string]any) (string, error) {
	raw, err := encode(data)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.Exec(`
		INSERT INTO collection_docs (collection, id, data) VALUES (?, ?, ?)
	`, collection, id, raw)
	if err != nil {
		return "", fmt.Errorf("add document to %s: %w", collection, err)
	}

	s.notify(collection)
	return id, nil
}

// DeleteDocument removes a collection member
func (s *SQLite) DeleteDocument(path string) error {
	collection, id, ok := splitPath(path)
	if !ok {
		return fmt.Errorf("delete %s: not a collection member path", path)
	}

	res, err := s.db.Exec(`DELETE FROM collection_docs WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %s: %w", path, ErrNotFound)
	}

	s.notify(collection)
	return nil
}

// Subscribe registers a snapshot listener for a collection
func (s *SQLite) Subscribe(collection string) (<-chan Snapshot, CancelFunc, error) {
	snap, err := s.query(collection)
	if err != nil {
		return nil, nil, err
	}

	sub := &subscriber{collection: collection, ch: make(chan Snapshot, 1)}
	sub.ch <- snap

	s.mu.Lock()
	s.subs[collection] = append(s.subs[collection], sub)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.subs[collection]
		for i, candidate := range list {
			if candidate == sub {
				s.subs[collection] = append(list[:i], list[i+1:]...)
				close(sub.ch)
				return
			}
		}
	}
	return sub.ch, cancel, nil
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// query loads the full collection, newest first
func (s *SQLite) query(collection string) (Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, data, created_at, updated_at FROM collection_docs
		WHERE collection = ?
		ORDER BY created_at DESC, id DESC
	`, collection)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var snap Snapshot
	for rows.Next() {
		var doc Document
		var raw string
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return Snapshot{}, fmt.Errorf("scan %s: %w", collection, err)
		}
		if doc.Data, err = decode(raw); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
		}
		snap.Docs = append(snap.Docs, doc)
	}
	return snap, rows.Err()
}

// notify pushes a fresh snapshot to every subscriber of the collection.
// A slow consumer only ever sees the latest snapshot; intermediate states
// are dropped, which is safe because snapshots are level-triggered.
func (s *SQLite) notify(collection string) {
	s.mu.Lock()
	active := len(s.subs[collection])
	s.mu.Unlock()

	if active == 0 {
		return
	}

	snap, err := s.query(collection)
	if err != nil {
		return
	}

	// Send while holding the lock so a concurrent cancel cannot close a
	// channel mid-delivery. Sends never block: buffer of one, drained first.
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs[collection] {
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

func splitPath(path string) (collection, id string, ok bool) {
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}

func encode(data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decode(raw string) (map[string]any, error) {
	data := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}
