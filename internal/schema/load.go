package schema

import (
	"fmt"
	"log"

	"github.com/n0roo/vibespinner/internal/store"
)

// Load fetches the shared schema document, initializing it with the
// default taxonomy when absent or unreadable. The initializing write is
// a merge, so concurrent first-loads converge on the same document.
func Load(st store.Store, path, userID string) (*Schema, error) {
	data, ok, err := st.GetDocument(path)
	if err != nil {
		// Fail open: a read failure must not block the app
		log.Printf("schema load failed, using defaults: %v", err)
		return Default(), nil
	}

	if ok {
		s, err := FromDoc(data)
		if err == nil {
			if verr := s.Validate(); verr != nil {
				return nil, fmt.Errorf("stored schema invalid: %w", verr)
			}
			return s, nil
		}
		log.Printf("stored schema unreadable, reinitializing: %v", err)
	}

	s := Default()
	doc, err := s.ToDoc()
	if err != nil {
		return nil, err
	}
	doc["createdBy"] = userID
	if err := st.SetDocument(path, doc, true); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Save persists the schema with a merge write
func Save(st store.Store, path string, s *Schema, userID string) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid schema: %w", err)
	}
	doc, err := s.ToDoc()
	if err != nil {
		return err
	}
	doc["updatedBy"] = userID
	if err := st.SetDocument(path, doc, true); err != nil {
		return fmt.Errorf("save schema: %w", err)
	}
	return nil
}
