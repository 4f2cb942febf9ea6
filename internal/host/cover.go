package host

import (
	"fmt"
	"strings"

	"certa/pkg/appapi"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const logo = `[#FF6B00]
 ██████ ███████ ██████  ████████  █████  
██      ██      ██   ██    ██    ██   ██ 
██      █████   ██████     ██    ███████ 
██      ██      ██   ██    ██    ██   ██ 
 ██████ ███████ ██   ██    ██    ██   ██ [white]
`

const (
	welcome     = `[#FFD700]Welcome to certa![white]`
	description = `[#00BCD4]Monthly therapy certifications, sessions and signatures from the terminal[white]`
	commands    = `[#03A9F4]• Pick a feature in the left sidebar
• Press [#FF9900]'c'[white] in the help list to switch account
• Press [#FF9900]'a'[white] to edit the configuration
• Press [#FF9900]Shift+Tab[white] to move between panels[white]`
)

// Cover is the welcome screen listing the registered features.
func Cover(features []appapi.FeatureMetadata) tview.Primitive {
	logoBox := tview.NewTextView()
	logoBox.SetDynamicColors(true)
	logoBox.SetTextAlign(tview.AlignCenter)
	logoBox.SetText(logo + "\n[#FF8C40]  certa - therapy certification client  [white]")

	available := "connect an account"
	if len(features) > 0 {
		names := make([]string, len(features))
		for i, f := range features {
			names[i] = f.Name
		}
		available = strings.Join(names, ", ")
	}
	infoBox := tview.NewTextView()
	infoBox.SetDynamicColors(true)
	infoBox.SetTextAlign(tview.AlignCenter)
	infoBox.SetBorder(true)
	infoBox.SetBorderColor(tcell.ColorDarkCyan)
	infoBox.SetTitle(" About ")
	infoBox.SetTitleColor(tcell.ColorOrange)
	infoBox.SetBorderPadding(1, 1, 2, 2)
	infoBox.SetText(fmt.Sprintf("%s\n\n[#4CAF50]Version:[white] v%s\n[#4CAF50]Features:[white] %s\n\n%s",
		welcome, Version, available, description))

	var b strings.Builder
	for _, f := range features {
		fmt.Fprintf(&b, "[#FFD700]✨ %s[white]\n   %s\n\n", f.Name, f.Description)
	}
	b.WriteString("[#FFD700]✨ Getting Started[white]\n   " + commands)

	featuresBox := tview.NewTextView()
	featuresBox.SetDynamicColors(true)
	featuresBox.SetTextAlign(tview.AlignLeft)
	featuresBox.SetBorder(true)
	featuresBox.SetBorderColor(tcell.ColorDarkCyan)
	featuresBox.SetTitle(" Features ")
	featuresBox.SetTitleColor(tcell.ColorOrange)
	featuresBox.SetBorderPadding(1, 1, 2, 2)
	featuresBox.SetText(b.String())

	grid := tview.NewGrid()
	grid.SetColumns(0, 40, 44, 0)
	grid.SetRows(0, 9, 0, 16, 0)
	grid.SetBorders(false)
	grid.AddItem(logoBox, 1, 1, 1, 2, 0, 0, true)
	grid.AddItem(infoBox, 3, 1, 1, 1, 0, 0, false)
	grid.AddItem(featuresBox, 3, 2, 1, 1, 0, 0, false)

	frame := tview.NewFrame(grid)
	frame.SetBorders(0, 0, 0, 0, 0, 0)
	frame.AddText("Press Shift+Tab to navigate", true, tview.AlignCenter, tcell.ColorDimGray)
	return frame
}
