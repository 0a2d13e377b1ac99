package tui

import (
	"fmt"
	"strings"

	"github.com/n0roo/vibespinner/internal/app"
	"github.com/n0roo/vibespinner/internal/catalog"
)

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return m.spinner.View() + " Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.currentTab {
	case TabBrowse:
		b.WriteString(m.renderBrowseTab())
	case TabAll:
		b.WriteString(m.renderAllTab())
	case TabAdd:
		b.WriteString(m.renderAddTab())
	case TabTags:
		b.WriteString(m.renderTagsTab())
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	sess := m.app.Session()
	who := itemMetaStyle.Render(sess.DisplayName + " <" + sess.Email + ">")
	return titleStyle.Render("Vibespinner") + "  " + who + "\n"
}

func (m Model) renderTabs() string {
	var tabs []string
	for i := 0; i < tabCount; i++ {
		t := Tab(i)
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == m.currentTab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return strings.Join(tabs, "")
}

func (m Model) renderBrowseTab() string {
	var b strings.Builder

	b.WriteString(m.renderChips(app.CtxFilter, true))
	b.WriteString("\n")
	b.WriteString(m.renderItems(m.app.FilteredItems()))

	if m.app.Selection(app.CtxFilter).Count() == 0 {
		b.WriteString(itemMetaStyle.Render("Pick tags above to see matching places.") + "\n")
	}
	return b.String()
}

func (m Model) renderAllTab() string {
	return m.renderItems(m.app.Items())
}

func (m Model) renderAddTab() string {
	var b strings.Builder

	if m.editing {
		b.WriteString(groupTitleStyle.Foreground(warningColor).Render("Editing place") + "\n")
	}
	b.WriteString(m.nameInput.View() + "\n\n")
	b.WriteString(m.renderChips(m.formContext(), m.focus == focusChips))
	return b.String()
}

func (m Model) renderTagsTab() string {
	var b strings.Builder

	groups := m.managedGroups()
	if len(groups) == 0 {
		return itemMetaStyle.Render("No editable tag groups.") + "\n"
	}

	s := m.app.Schema()
	cur := wrap(m.groupCursor, len(groups))
	for gi, group := range groups {
		title := group
		if gi == cur {
			title = "› " + title
		} else {
			title = "  " + title
		}
		b.WriteString(groupTitleStyle.Render(title) + "\n  ")

		for ti, tag := range s.Groups[group].Tags {
			if gi == cur && ti == m.tagCursor && m.focus == focusChips {
				b.WriteString(chipCursorStyle.Render(tag))
			} else {
				b.WriteString(chipStyle.Render(tag))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n\n")
	}

	b.WriteString(m.tagInput.View() + "\n")
	return b.String()
}

// renderChips draws each visible group of a selection context as a
// titled row of chips
func (m Model) renderChips(name app.ContextName, showCursor bool) string {
	var b strings.Builder

	s := m.app.Schema()
	sel := m.app.Selection(name)

	idx := 0
	for _, group := range s.Ordered() {
		if !sel.Visible(s, group) {
			continue
		}
		b.WriteString(groupTitleStyle.Render(group) + "\n  ")
		for _, tag := range s.Groups[group].Tags {
			switch {
			case showCursor && idx == m.chipCursor:
				b.WriteString(chipCursorStyle.Render(tag))
			case sel.IsSelected(group, tag):
				b.WriteString(chipSelectedStyle.Render(tag))
			default:
				b.WriteString(chipStyle.Render(tag))
			}
			b.WriteString(" ")
			idx++
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderItems(items []catalog.Item) string {
	var b strings.Builder

	if len(items) == 0 {
		return itemMetaStyle.Render("No places here yet.") + "\n"
	}

	armedID, armed := m.app.ArmedDelete()
	for i, item := range items {
		name := item.Name
		if i == m.itemCursor {
			name = itemCursorStyle.Render("› " + name)
		} else {
			name = itemNameStyle.Render("  " + name)
		}
		b.WriteString(name)

		if len(item.Tags) > 0 {
			b.WriteString("  " + itemMetaStyle.Render(strings.Join(item.Tags, ", ")))
		}
		if item.CreatedByName != "" {
			b.WriteString(itemMetaStyle.Render(fmt.Sprintf("  by %s", item.CreatedByName)))
		}
		if !item.CreatedAt.IsZero() {
			b.WriteString(itemMetaStyle.Render("  " + item.CreatedAt.Format("2006-01-02")))
		}
		if armed && item.ID == armedID {
			b.WriteString("  " + armedStyle.Render("Sure? press d again"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}

	var help string
	switch m.currentTab {
	case TabBrowse:
		help = "←/→ chips · space toggle · c clear · ↑/↓ items · e edit · d delete · tab switch · q quit"
	case TabAll:
		help = "↑/↓ items · e edit · d delete · tab switch · q quit"
	case TabAdd:
		if m.typing() {
			help = "type name · esc to tags · enter submit"
		} else {
			help = "←/→ chips · space toggle · enter save · esc name field · tab switch"
		}
	case TabTags:
		if m.typing() {
			help = "type tag · enter add · esc back"
		} else {
			help = "↑/↓ group · ←/→ tag · x delete tag · esc new tag · tab switch"
		}
	}
	b.WriteString(footerStyle.Render(help))
	return b.String()
}
