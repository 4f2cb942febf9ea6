package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/pgavlin/femto"
	"github.com/pgavlin/femto/runtime"
	"github.com/rivo/tview"
)

// TextEditor wraps a femto view with the monokai colorscheme and the
// standard key map: Ctrl+S saves, Ctrl+H shows help.
type TextEditor struct {
	*femto.View
	buffer *femto.Buffer
	onSave func(text string) error
}

// NewTextEditor edits text. path only selects syntax highlighting.
func NewTextEditor(pages *tview.Pages, app *tview.Application, text, path string, onSave func(text string) error) *TextEditor {
	var colorscheme femto.Colorscheme
	if monokai := runtime.Files.FindFile(femto.RTColorscheme, "monokai"); monokai != nil {
		if data, err := monokai.Data(); err == nil {
			colorscheme = femto.ParseColorscheme(string(data))
		}
	}

	buffer := femto.NewBufferFromString(text, path)
	view := femto.NewView(buffer)
	view.SetRuntimeFiles(runtime.Files)
	view.SetColorscheme(colorscheme)

	e := &TextEditor{View: view, buffer: buffer, onSave: onSave}
	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlS:
			if e.onSave == nil {
				return nil
			}
			if err := e.onSave(e.Text()); err != nil {
				ShowStandardErrorModal(pages, app, "Save failed", err.Error(), func() { app.SetFocus(view) })
			}
			return nil
		case tcell.KeyCtrlH:
			ShowInfoModal(pages, app, "Editor Help", EditorHelpText(), func() { app.SetFocus(view) })
			return nil
		}
		return event
	})
	return e
}

// Text returns the buffer contents.
func (e *TextEditor) Text() string {
	return e.buffer.String()
}

// EditorHelpText lists the editor keys.
func EditorHelpText() string {
	return strings.TrimSpace(`
[yellow]Editor Help[white]

[green]File[white]
Ctrl+S  - Save
Ctrl+H  - Show this help

[green]Navigation[white]
Arrow keys  - Move cursor
Home/End    - Line start/end
PgUp/PgDn   - Page up/down

[green]Editing[white]
Ctrl+Z  - Undo
Ctrl+Y  - Redo
Ctrl+C  - Copy
Ctrl+X  - Cut
Ctrl+V  - Paste
Ctrl+A  - Select all
`)
}
