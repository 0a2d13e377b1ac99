// Package filter evaluates the filter bar's selections against the item
// list. Pure: no store access, input order preserved.
package filter

import (
	"github.com/n0roo/vibespinner/internal/catalog"
	"github.com/n0roo/vibespinner/internal/schema"
	"github.com/n0roo/vibespinner/internal/selection"
)

// EmptyMode defines what an empty filter set means
type EmptyMode string

const (
	// EmptyNone shows nothing until a filter is active (default;
	// distinguishes "no filter" from "show all")
	EmptyNone EmptyMode = "none"
	// EmptyAll shows the full list while no filter is active
	EmptyAll EmptyMode = "all"
)

// Evaluate returns the items matching every active group's selection,
// in input order. A group matches per its logic: OR needs one selected
// tag on the item, AND needs all of them. Untagged items never match
// while any group is active.
func Evaluate(items []catalog.Item, filters *selection.Context, s *schema.Schema, mode EmptyMode) []catalog.Item {
	active := filters.Active(s)
	if len(active) == 0 {
		if mode == EmptyAll {
			return items
		}
		return nil
	}

	var out []catalog.Item
	for _, item := range items {
		if Matches(item, active, filters, s) {
			out = append(out, item)
		}
	}
	return out
}

// Matches reports whether one item satisfies every active group
func Matches(item catalog.Item, active []string, filters *selection.Context, s *schema.Schema) bool {
	if len(item.Tags) == 0 {
		return false
	}

	itemTags := make(map[string]struct{}, len(item.Tags))
	for _, tag := range item.Tags {
		itemTags[tag] = struct{}{}
	}

	for _, group := range active {
		selected := filters.Selected(group)
		logic := schema.LogicOR
		if g, ok := s.Groups[group]; ok {
			logic = g.Logic
		}

		if logic == schema.LogicAND {
			for _, tag := range selected {
				if _, ok := itemTags[tag]; !ok {
					return false
				}
			}
		} else {
			hit := false
			for _, tag := range selected {
				if _, ok := itemTags[tag]; ok {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}
	}
	return true
}
