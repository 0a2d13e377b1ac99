package catalog

import (
	"time"

	"github.com/n0roo/vibespinner/internal/store"
)

// Item is a cataloged place
type Item struct {
	ID             string
	Name           string
	Tags           []string
	CreatedBy      string
	CreatedByName  string
	CreatedByEmail string
	CreatedAt      time.Time
	UpdatedBy      string
	UpdatedAt      time.Time
}

// Author identifies the user performing a write
type Author struct {
	ID    string
	Name  string
	Email string
}

// HasTag reports whether the item carries a tag
func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// fromDoc converts a stored document into an Item. Unknown fields are
// ignored; missing tags yield an empty set (stale documents happen).
func fromDoc(doc store.Document) Item {
	item := Item{
		ID:             doc.ID,
		Name:           str(doc.Data["name"]),
		CreatedBy:      str(doc.Data["createdBy"]),
		CreatedByName:  str(doc.Data["createdByName"]),
		CreatedByEmail: str(doc.Data["createdByEmail"]),
		UpdatedBy:      str(doc.Data["updatedBy"]),
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	switch tags := doc.Data["tags"].(type) {
	case []string:
		item.Tags = append(item.Tags, tags...)
	case []any:
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				item.Tags = append(item.Tags, s)
			}
		}
	}
	return item
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
