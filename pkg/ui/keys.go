package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
)

type keyBinding struct {
	key         string
	description string
}

// AddKeyBinding registers a rune key with its help text and handler.
func (c *CoreView) AddKeyBinding(key, description string, handler func()) *CoreView {
	c.keyBindings[key] = description
	if handler != nil {
		c.keyHandlers[key] = handler
	}
	c.helpPanel.SetText(c.getHelpText())
	return c
}

// RemoveKeyBinding drops a binding added with AddKeyBinding.
func (c *CoreView) RemoveKeyBinding(key string) *CoreView {
	delete(c.keyBindings, key)
	delete(c.keyHandlers, key)
	c.helpPanel.SetText(c.getHelpText())
	return c
}

// handleKey dispatches in this order: registered handlers, the built-in
// R, / and ? keys, then Esc to the back callback.
func (c *CoreView) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		if c.onBack != nil {
			c.onBack()
			return nil
		}
		return event
	case tcell.KeyRune:
		key := string(event.Rune())
		if _, registered := c.keyBindings[key]; !registered {
			return event
		}
		if handler, ok := c.keyHandlers[key]; ok {
			handler()
			return nil
		}
		switch key {
		case "R":
			c.RefreshData()
		case "/":
			c.showFilterModal()
		case "?":
			c.ToggleHelpExpanded()
		}
		return nil
	}
	return event
}

// ToggleHelpExpanded switches the help panel between the key grid and the
// full reference modal.
func (c *CoreView) ToggleHelpExpanded() {
	c.helpExpanded = !c.helpExpanded
	if c.helpExpanded && c.pages != nil {
		ShowInfoModal(c.pages, c.app, "Help", c.getExpandedHelpText(), func() {
			c.helpExpanded = false
			c.app.SetFocus(c.table)
		})
	}
}

func (c *CoreView) showFilterModal() {
	if c.pages == nil {
		return
	}
	ShowCompactStyledInputModal(c.pages, c.app, "Filter", "Contains", c.filterQuery, 30, nil,
		func(text string, cancelled bool) {
			if !cancelled {
				c.SetFilterQuery(text)
			}
			c.app.SetFocus(c.table)
		})
}

func buildSortedBindings(keyBindings map[string]string) []keyBinding {
	bindings := make([]keyBinding, 0, len(keyBindings))
	for key, description := range keyBindings {
		bindings = append(bindings, keyBinding{key, description})
	}
	sort.Slice(bindings, func(i, j int) bool {
		li, lj := strings.ToLower(bindings[i].key), strings.ToLower(bindings[j].key)
		if li != lj {
			return li < lj
		}
		return bindings[i].key < bindings[j].key
	})
	return bindings
}

// formatBindingsColumns lays bindings out four per column.
func formatBindingsColumns(bindings []keyBinding) string {
	const rows = 4
	width := 0
	for _, b := range bindings {
		if len(b.description) > width {
			width = len(b.description)
		}
	}
	lines := make([]string, rows)
	for i, b := range bindings {
		cell := fmt.Sprintf("[purple::b]<%s>[white::-] %-*s ", b.key, width, b.description)
		lines[i%rows] += cell
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func (c *CoreView) getHelpText() string {
	return formatBindingsColumns(buildSortedBindings(c.keyBindings))
}

func (c *CoreView) getExpandedHelpText() string {
	var sb strings.Builder
	sb.WriteString("[yellow]Keybinding Reference:[white]\n\n")
	sb.WriteString("  [aqua]ESC[white]    - Back / close\n")
	sb.WriteString("  [aqua]Enter[white]  - Open the selected row\n")
	for _, b := range buildSortedBindings(c.keyBindings) {
		sb.WriteString(fmt.Sprintf("  [aqua]%-6s[white] - %s\n", b.key, b.description))
	}
	if v := c.GetCurrentView(); v != "" {
		sb.WriteString("\n[yellow]Current View:[white] " + v + "\n")
	}
	return sb.String()
}
