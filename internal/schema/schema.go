// Package schema defines the tag-group taxonomy: named groups of tags,
// each with an OR/AND combination rule and an optional activation
// condition on another group's selection.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Logic is a group's tag combination rule
type Logic string

const (
	LogicOR  Logic = "OR"
	LogicAND Logic = "AND"
)

// Condition activates a group only while the referenced group's
// selection intersects AnyOf
type Condition struct {
	Group string   `json:"group"`
	AnyOf []string `json:"values"`
}

// Group is a named bucket of selectable tags
type Group struct {
	Tags      []string   `json:"tags"`
	Logic     Logic      `json:"logic"`
	Condition *Condition `json:"condition,omitempty"`
}

// Schema maps group names to groups plus an explicit display order
type Schema struct {
	Groups map[string]*Group `json:"groups"`
	Order  []string          `json:"order,omitempty"`
}

// Default returns the built-in starting taxonomy
func Default() *Schema {
	return &Schema{
		Groups: map[string]*Group{
			"Type": {
				Tags:  []string{"food", "drink", "place"},
				Logic: LogicOR,
			},
			"Cuisine / Style": {
				Tags:      []string{"italian", "mexican", "sushi", "cafe", "cocktails", "brewery"},
				Logic:     LogicOR,
				Condition: &Condition{Group: "Type", AnyOf: []string{"food", "drink"}},
			},
			"Tag": {
				Tags:  []string{"cozy", "lively", "fancy", "casual", "outdoor", "quick", "coffee"},
				Logic: LogicOR,
			},
		},
		Order: []string{"Type", "Cuisine / Style", "Tag"},
	}
}

// Normalize canonicalizes a tag value
func Normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// AddTag inserts a normalized tag into a group, keeping the group's tag
// list sorted. Unknown group, empty tag and duplicates are silent no-ops;
// the return reports whether the schema changed.
func (s *Schema) AddTag(group, tag string) bool {
	g, ok := s.Groups[group]
	if !ok {
		return false
	}
	tag = Normalize(tag)
	if tag == "" {
		return false
	}
	for _, existing := range g.Tags {
		if existing == tag {
			return false
		}
	}
	g.Tags = append(g.Tags, tag)
	sort.Strings(g.Tags)
	return true
}

// RemoveTag removes a tag from a group, reporting whether it was present.
// Callers are responsible for cascading the removal to items.
func (s *Schema) RemoveTag(group, tag string) bool {
	g, ok := s.Groups[group]
	if !ok {
		return false
	}
	tag = Normalize(tag)
	for i, existing := range g.Tags {
		if existing == tag {
			g.Tags = append(g.Tags[:i], g.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether a group currently offers a tag
func (s *Schema) Has(group, tag string) bool {
	g, ok := s.Groups[group]
	if !ok {
		return false
	}
	for _, existing := range g.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// HasTag reports whether any group offers a tag
func (s *Schema) HasTag(tag string) bool {
	for name := range s.Groups {
		if s.Has(name, tag) {
			return true
		}
	}
	return false
}

// GroupOf returns the name of the group offering a tag
func (s *Schema) GroupOf(tag string) (string, bool) {
	for _, name := range s.Ordered() {
		if s.Has(name, tag) {
			return name, true
		}
	}
	return "", false
}

// Ordered returns group names in display order: the explicit order list
// first, then any remaining groups sorted by name
func (s *Schema) Ordered() []string {
	seen := make(map[string]bool, len(s.Groups))
	var names []string
	for _, name := range s.Order {
		if _, ok := s.Groups[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range s.Groups {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Validate rejects schemas whose conditions reference missing groups,
// the group itself, or form a cycle, and schemas whose display order
// evaluates a conditioned group before the group it conditions on.
func (s *Schema) Validate() error {
	for name, g := range s.Groups {
		if g.Condition == nil {
			continue
		}
		if g.Condition.Group == name {
			return fmt.Errorf("group %q conditions on itself", name)
		}
		if _, ok := s.Groups[g.Condition.Group]; !ok {
			return fmt.Errorf("group %q conditions on unknown group %q", name, g.Condition.Group)
		}

		// Follow the condition chain; revisiting a group is a cycle
		visited := map[string]bool{name: true}
		current := g.Condition.Group
		for {
			if visited[current] {
				return fmt.Errorf("condition cycle through group %q", name)
			}
			visited[current] = true
			next := s.Groups[current].Condition
			if next == nil {
				break
			}
			current = next.Group
		}
	}

	position := make(map[string]int, len(s.Groups))
	for i, name := range s.Ordered() {
		position[name] = i
	}
	for name, g := range s.Groups {
		if g.Condition != nil && position[name] < position[g.Condition.Group] {
			return fmt.Errorf("group %q ordered before its condition group %q", name, g.Condition.Group)
		}
	}
	return nil
}

// Clone deep-copies the schema
func (s *Schema) Clone() *Schema {
	out := &Schema{
		Groups: make(map[string]*Group, len(s.Groups)),
		Order:  append([]string(nil), s.Order...),
	}
	for name, g := range s.Groups {
		copied := &Group{
			Tags:  append([]string(nil), g.Tags...),
			Logic: g.Logic,
		}
		if g.Condition != nil {
			copied.Condition = &Condition{
				Group: g.Condition.Group,
				AnyOf: append([]string(nil), g.Condition.AnyOf...),
			}
		}
		out.Groups[name] = copied
	}
	return out
}

// FromDoc decodes a schema from a stored document's groups/order fields
func FromDoc(data map[string]any) (*Schema, error) {
	raw, err := json.Marshal(map[string]any{
		"groups": data["groups"],
		"order":  data["order"],
	})
	if err != nil {
		return nil, fmt.Errorf("encode schema doc: %w", err)
	}

	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode schema doc: %w", err)
	}
	if s.Groups == nil {
		return nil, fmt.Errorf("schema doc has no groups")
	}
	return &s, nil
}

// ToDoc encodes the schema's persisted fields
func (s *Schema) ToDoc() (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	data := make(map[string]any)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return data, nil
}
