package ui

import (
	"regexp"
	"strings"
	"time"

	"certa/pkg/appapi"
)

const maxLogLines = 200

var colorTag = regexp.MustCompile(`\[[a-zA-Z0-9:#\-]*\]`)

// Log appends a timestamped line to the log panel and mirrors the plain
// text into the application log file.
func (c *CoreView) Log(message string) {
	line := "[gray]" + time.Now().Format("15:04:05") + "[white] " + message
	c.logLines = append(c.logLines, line)
	if len(c.logLines) > maxLogLines {
		c.logLines = c.logLines[len(c.logLines)-maxLogLines:]
	}
	c.logPanel.SetText(strings.Join(c.logLines, "\n"))
	c.logPanel.ScrollToEnd()
	appapi.Log().Info("[%s] %s", c.title, StripColors(message))
}

// StripColors removes tview color tags.
func StripColors(s string) string {
	return colorTag.ReplaceAllString(s, "")
}
