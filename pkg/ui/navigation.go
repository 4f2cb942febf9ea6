package ui

import (
	"fmt"
	"strings"
)

// FormatBreadcrumbs renders labels as a breadcrumb trail with the last
// label highlighted.
func FormatBreadcrumbs(labels []string) string {
	var sb strings.Builder
	for i, view := range labels {
		if i > 0 {
			sb.WriteString(" [yellow]>[white] ")
		}
		if i == len(labels)-1 {
			sb.WriteString(fmt.Sprintf("[black:orange] %s [-:-]", view))
		} else {
			sb.WriteString(fmt.Sprintf("[black:aqua] %s [-:-]", view))
		}
	}
	return sb.String()
}

func (c *CoreView) updateBreadcrumbs() {
	c.breadcrumbs.SetText(FormatBreadcrumbs(c.navStack))
}

// SetViewStack replaces the breadcrumb trail.
func (c *CoreView) SetViewStack(stack []string) {
	c.navStack = append([]string(nil), stack...)
	c.updateBreadcrumbs()
}

// PushView appends a breadcrumb.
func (c *CoreView) PushView(view string) {
	c.navStack = append(c.navStack, view)
	c.updateBreadcrumbs()
}

// PopView drops the last breadcrumb, keeping the root.
func (c *CoreView) PopView() string {
	if len(c.navStack) <= 1 {
		return ""
	}
	last := c.navStack[len(c.navStack)-1]
	c.navStack = c.navStack[:len(c.navStack)-1]
	c.updateBreadcrumbs()
	return last
}

// GetCurrentView returns the last breadcrumb.
func (c *CoreView) GetCurrentView() string {
	if len(c.navStack) == 0 {
		return ""
	}
	return c.navStack[len(c.navStack)-1]
}
