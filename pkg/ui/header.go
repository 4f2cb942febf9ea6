package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"certa/pkg/appapi"
)

// HeaderView shows the metadata of the selected feature, or the
// application's own when none is selected.
type HeaderView struct {
	*tview.Box
	app     appapi.FeatureMetadata
	feature *appapi.FeatureMetadata
	status  string
}

// NewHeaderView shows app until a feature is set.
func NewHeaderView(app appapi.FeatureMetadata) *HeaderView {
	return &HeaderView{Box: tview.NewBox(), app: app, status: "Disconnected"}
}

// SetFeature selects the metadata to show; nil shows the application.
func (v *HeaderView) SetFeature(meta *appapi.FeatureMetadata) *HeaderView {
	v.feature = meta
	return v
}

// SetStatus sets the status line, e.g. the connected account.
func (v *HeaderView) SetStatus(status string) *HeaderView {
	v.status = status
	return v
}

func (v *HeaderView) Draw(screen tcell.Screen) {
	v.Box.DrawForSubclass(screen, v)
	x, y, width, height := v.GetInnerRect()
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			screen.SetContent(x+col, y+row, ' ', nil, tcell.StyleDefault.Background(tcell.ColorBlack))
		}
	}

	meta := v.app
	if v.feature != nil {
		meta = *v.feature
	}
	updated := ""
	if !meta.LastUpdated.IsZero() {
		updated = meta.LastUpdated.Format("Jan 2006")
	}

	label := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	value := tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorBlack)
	status := tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorBlack)

	rows := []struct {
		name, val string
		style     tcell.Style
	}{
		{"Name:", meta.Name, value},
		{"Version:", meta.Version, value},
		{"Author:", meta.Author, value},
		{"Status:", v.status, status},
		{"Updated:", updated, value},
	}
	for i, r := range rows {
		line := y + 1 + i*2
		if line >= y+height {
			break
		}
		drawText(screen, x+2, line, width-2, r.name, label)
		drawText(screen, x+12, line, width-12, r.val, r.style)
	}
}

func drawText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, r := range text {
		if i >= maxWidth {
			return
		}
		screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}
