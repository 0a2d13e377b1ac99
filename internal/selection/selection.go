// Package selection tracks per-context tag selections (add form, edit
// form, filter bar) and keeps them consistent with the schema's
// conditional-visibility rules.
package selection

import (
	"sort"

	"github.com/n0roo/vibespinner/internal/schema"
)

// Policy controls how toggling behaves in OR groups
type Policy string

const (
	// PolicyMulti flips membership independently (default)
	PolicyMulti Policy = "multi"
	// PolicySingle clears the group before selecting, one tag at a time
	PolicySingle Policy = "single"
)

// Context is one independent selection area
type Context struct {
	policy   Policy
	selected map[string]map[string]struct{}
}

// New creates an empty selection context
func New(policy Policy) *Context {
	if policy == "" {
		policy = PolicyMulti
	}
	return &Context{
		policy:   policy,
		selected: make(map[string]map[string]struct{}),
	}
}

// Toggle flips a tag's selection. In OR groups the context's policy
// applies; AND groups always flip membership. Selecting always triggers
// a visibility recompute, so dependent groups cascade immediately.
func (c *Context) Toggle(s *schema.Schema, group, tag string) {
	g, ok := s.Groups[group]
	if !ok || !s.Has(group, tag) {
		return
	}

	if c.IsSelected(group, tag) {
		delete(c.selected[group], tag)
		if len(c.selected[group]) == 0 {
			delete(c.selected, group)
		}
	} else {
		if g.Logic == schema.LogicOR && c.policy == PolicySingle {
			delete(c.selected, group)
		}
		if c.selected[group] == nil {
			c.selected[group] = make(map[string]struct{})
		}
		c.selected[group][tag] = struct{}{}
	}

	c.Recompute(s)
}

// IsSelected reports whether a tag is selected in a group
func (c *Context) IsSelected(group, tag string) bool {
	_, ok := c.selected[group][tag]
	return ok
}

// Selected returns a group's selected tags, sorted
func (c *Context) Selected(group string) []string {
	if len(c.selected[group]) == 0 {
		return nil
	}
	tags := make([]string, 0, len(c.selected[group]))
	for tag := range c.selected[group] {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// All returns every selected tag across groups, sorted
func (c *Context) All() []string {
	var tags []string
	for group := range c.selected {
		tags = append(tags, c.Selected(group)...)
	}
	sort.Strings(tags)
	return tags
}

// Active returns the groups holding at least one selection, in schema
// display order
func (c *Context) Active(s *schema.Schema) []string {
	var groups []string
	for _, name := range s.Ordered() {
		if len(c.selected[name]) > 0 {
			groups = append(groups, name)
		}
	}
	return groups
}

// Count returns the total number of selected tags
func (c *Context) Count() int {
	n := 0
	for _, tags := range c.selected {
		n += len(tags)
	}
	return n
}

// Visible reports whether a group is currently selectable: groups
// without a condition always are; conditioned groups require the
// conditioned-on group's selection to intersect the condition values
func (c *Context) Visible(s *schema.Schema, group string) bool {
	g, ok := s.Groups[group]
	if !ok {
		return false
	}
	if g.Condition == nil {
		return true
	}
	for _, want := range g.Condition.AnyOf {
		if c.IsSelected(g.Condition.Group, want) {
			return true
		}
	}
	return false
}

// Recompute reapplies conditional visibility: every selected tag in a
// group that is no longer visible is deselected. Groups are walked in
// display order, so a cascade settles in a single pass; with no
// intervening toggle the call is a no-op.
func (c *Context) Recompute(s *schema.Schema) {
	for _, name := range s.Ordered() {
		if s.Groups[name].Condition == nil {
			continue
		}
		if !c.Visible(s, name) {
			delete(c.selected, name)
		}
	}
}

// DropMissing deselects tags the schema no longer offers
func (c *Context) DropMissing(s *schema.Schema) {
	for group, tags := range c.selected {
		for tag := range tags {
			if !s.Has(group, tag) {
				delete(tags, tag)
			}
		}
		if len(tags) == 0 {
			delete(c.selected, group)
		}
	}
	c.Recompute(s)
}

// Seed replaces the context's state with an item's tags, mapping each
// tag to the group offering it; stale tags from deleted groups are
// ignored. Used to open the edit form.
func (c *Context) Seed(s *schema.Schema, tags []string) {
	c.selected = make(map[string]map[string]struct{})
	for _, tag := range tags {
		group, ok := s.GroupOf(tag)
		if !ok {
			continue
		}
		if c.selected[group] == nil {
			c.selected[group] = make(map[string]struct{})
		}
		c.selected[group][tag] = struct{}{}
	}
	c.Recompute(s)
}

// Clear empties the context
func (c *Context) Clear() {
	c.selected = make(map[string]map[string]struct{})
}

// Snapshot returns group -> sorted selected tags, for rendering and
// for asserting state in tests
func (c *Context) Snapshot() map[string][]string {
	out := make(map[string][]string, len(c.selected))
	for group := range c.selected {
		out[group] = c.Selected(group)
	}
	return out
}
