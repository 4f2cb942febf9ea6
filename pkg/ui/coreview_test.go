package ui

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newView() *CoreView {
	v := NewCoreView(tview.NewApplication(), tview.NewPages(), "Certifications")
	v.SetTableHeaders([]string{"ID", "Patient", "Period"})
	return v
}

func TestFilterMapsBackToSourceRows(t *testing.T) {
	v := newView()
	v.SetTableData([][]string{
		{"c1", "Ada Lovelace", "2026-03"},
		{"c2", "Alan Turing", "2026-03"},
		{"c3", "Ada Byron", "2026-04"},
	})

	v.SetFilterQuery("ada")
	require.Len(t, v.GetTableData(), 2)

	v.GetTable().Select(2, 0)
	assert.Equal(t, 2, v.GetSelectedRow())
	assert.Equal(t, "c3", v.GetSelectedRowData()[0])

	v.SetFilterQuery("")
	assert.Len(t, v.GetTableData(), 3)
}

func TestSelectionFollowsRecordAcrossRefresh(t *testing.T) {
	v := newView()
	v.SetSelectionKey("ID")
	v.SetTableData([][]string{{"c1", "a", ""}, {"c2", "b", ""}})
	v.GetTable().Select(2, 0)

	v.SetTableData([][]string{{"c0", "new", ""}, {"c1", "a", ""}, {"c2", "b", ""}})
	assert.Equal(t, "c2", v.GetSelectedRowData()[0])

	v.SetTableData(nil)
	assert.Equal(t, -1, v.GetSelectedRow())
}

func TestKeyBindingDispatch(t *testing.T) {
	v := newView()
	hits := 0
	v.AddKeyBinding("n", "New", func() { hits++ })

	assert.Nil(t, v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone)))
	assert.Equal(t, 1, hits)

	unbound := tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)
	assert.Equal(t, unbound, v.handleKey(unbound))

	refreshed := 0
	v.SetRefreshCallback(func() { refreshed++ })
	v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'R', tcell.ModNone))
	v.SetLoading(true)
	v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'R', tcell.ModNone))
	assert.Equal(t, 1, refreshed)

	back := 0
	v.SetBackCallback(func() { back++ })
	assert.Nil(t, v.handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.Equal(t, 1, back)
}

func TestHelpTextListsBindings(t *testing.T) {
	v := newView()
	v.AddKeyBinding("p", "PDF", nil)
	help := v.getHelpText()
	assert.Contains(t, help, "<p>")
	assert.Contains(t, help, "<R>")
	assert.Contains(t, help, "Refresh")
}

func TestBreadcrumbs(t *testing.T) {
	assert.Equal(t,
		"[black:aqua] Details [-:-] [yellow]>[white] [black:orange] Sessions [-:-]",
		FormatBreadcrumbs([]string{"Details", "Sessions"}))

	v := newView()
	v.SetViewStack([]string{"certifications"})
	v.PushView("c1")
	assert.Equal(t, "c1", v.GetCurrentView())
	assert.Equal(t, "c1", v.PopView())
	assert.Equal(t, "", v.PopView())
}

func TestStripColors(t *testing.T) {
	assert.Equal(t, "Loaded 3 certifications", StripColors("[green]Loaded [::b]3[::-] certifications[white]"))
}

func TestFormPanelErrorSlots(t *testing.T) {
	f := NewFormPanel("Session")
	f.AddInput("date", "Date", "2026-03-02", 12)
	f.AddDropDown("status", "Status", []string{"scheduled", "completed"}, 1, nil)
	f.AddCheckbox("signed", "Signed", true)

	assert.Equal(t, "2026-03-02", f.Text("date"))
	assert.Equal(t, "completed", f.Text("status"))
	assert.Equal(t, 1, f.Selected("status"))
	assert.True(t, f.Checked("signed"))

	f.SetErrors(map[string]string{"date": "Date must fall within 2026-03", "schedules": "Session conflicts detected for Monday 09:00"}, "")
	assert.Equal(t, "Date must fall within 2026-03", f.FieldError("date"))
	assert.Equal(t, "Session conflicts detected for Monday 09:00", f.GeneralError())

	f.ClearErrors()
	assert.Empty(t, f.FieldError("date"))
	assert.Empty(t, f.GeneralError())
}

func TestSignaturePadPNG(t *testing.T) {
	p := NewSignaturePad(10, 4)
	assert.True(t, p.Empty())
	data, err := p.PNG(3)
	require.NoError(t, err)
	assert.Nil(t, data)

	p.Mark(2, 1)
	p.Mark(99, 99)
	assert.False(t, p.Empty())

	data, err = p.PNG(3)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 12, img.Bounds().Dy())

	r, _, _, _ := img.At(7, 4).RGBA()
	assert.Zero(t, r)
	r, _, _, _ = img.At(0, 0).RGBA()
	assert.NotZero(t, r)

	p.Clear()
	assert.True(t, p.Empty())
}

func TestSignaturePadKeyboardStrokes(t *testing.T) {
	p := NewSignaturePad(5, 2)
	handler := p.InputHandler()
	send := func(k tcell.Key, r rune) { handler(tcell.NewEventKey(k, r, tcell.ModNone), func(tview.Primitive) {}) }

	send(tcell.KeyRune, ' ')
	send(tcell.KeyRight, 0)
	send(tcell.KeyRight, 0)
	send(tcell.KeyRune, ' ')
	send(tcell.KeyDown, 0)

	assert.True(t, p.cells[0][0])
	assert.True(t, p.cells[0][2])
	assert.False(t, p.cells[1][2])

	send(tcell.KeyBackspace2, 0)
	assert.True(t, p.Empty())
}
