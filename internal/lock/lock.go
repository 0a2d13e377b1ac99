// Package lock serializes multi-step catalog mutations across
// processes. Tag deletion strips items and rewrites the schema in
// separate writes, so two concurrent editors need a lock around it.
package lock

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/n0roo/vibespinner/internal/db"
)

// SchemaResource names the lock guarding taxonomy rewrites
const SchemaResource = "schema"

// DefaultTTL is how long a lock may be held before it is presumed
// abandoned by a dead process
const DefaultTTL = 30 * time.Second

// Lock represents a held resource lock
type Lock struct {
	Resource   string
	Owner      string
	AcquiredAt time.Time
}

// Service handles lock operations
type Service struct {
	db  *db.DB
	ttl time.Duration
}

// NewService creates a new lock service
func NewService(database *db.DB) *Service {
	return &Service{db: database, ttl: DefaultTTL}
}

// ttlModifier renders the TTL as a sqlite datetime offset
func (s *Service) ttlModifier() string {
	return fmt.Sprintf("-%d seconds", int(s.ttl.Seconds()))
}

// Acquire attempts to acquire a lock on a resource. Expired locks are
// swept first, so a crashed holder does not wedge the catalog.
func (s *Service) Acquire(resource, owner string) error {
	s.db.Exec(`DELETE FROM locks WHERE resource = ? AND acquired_at < datetime('now', ?)`,
		resource, s.ttlModifier())

	var existing string
	err := s.db.QueryRow(`SELECT owner FROM locks WHERE resource = ?`, resource).Scan(&existing)
	if err == nil {
		return fmt.Errorf("resource %q is locked by %q", resource, existing)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check lock: %w", err)
	}

	if _, err := s.db.Exec(`INSERT INTO locks (resource, owner) VALUES (?, ?)`, resource, owner); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	return nil
}

// Release releases a lock on a resource
func (s *Service) Release(resource string) error {
	result, err := s.db.Exec(`DELETE FROM locks WHERE resource = ?`, resource)
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no lock held on %q", resource)
	}
	return nil
}

// IsLocked checks if a resource is locked and by whom
func (s *Service) IsLocked(resource string) (bool, string, error) {
	var owner string
	err := s.db.QueryRow(`SELECT owner FROM locks WHERE resource = ? AND acquired_at >= datetime('now', ?)`,
		resource, s.ttlModifier()).Scan(&owner)
	if err == sql.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	return true, owner, nil
}

// List returns all active locks
func (s *Service) List() ([]Lock, error) {
	rows, err := s.db.Query(`SELECT resource, owner, acquired_at FROM locks ORDER BY acquired_at`)
	if err != nil {
		return nil, fmt.Errorf("list locks: %w", err)
	}
	defer rows.Close()

	var locks []Lock
	for rows.Next() {
		var l Lock
		if err := rows.Scan(&l.Resource, &l.Owner, &l.AcquiredAt); err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	return locks, nil
}

// Clear removes all locks
func (s *Service) Clear() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM locks`)
	if err != nil {
		return 0, fmt.Errorf("clear locks: %w", err)
	}
	return result.RowsAffected()
}

// WithSchemaLock runs fn while holding the schema lock
func (s *Service) WithSchemaLock(owner string, fn func() error) error {
	if err := s.Acquire(SchemaResource, owner); err != nil {
		return err
	}
	defer s.Release(SchemaResource)
	return fn()
}
