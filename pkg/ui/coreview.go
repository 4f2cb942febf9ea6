// Package ui provides the terminal widgets shared by the certa features:
// a table view with info/help/log panels and breadcrumbs, standard modals,
// a form panel with per-field error slots and a signature pad.
package ui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// CoreView is the standard feature screen: a header row (info, key help,
// log), a separator, the data table and the breadcrumb bar.
//
// All methods must run on the tview event goroutine; background work
// reaches the view through Application.QueueUpdateDraw.
type CoreView struct {
	app        *tview.Application
	pages      *tview.Pages
	mainLayout *tview.Flex
	title      string

	infoPanel   *tview.TextView
	helpPanel   *tview.TextView
	logPanel    *tview.TextView
	breadcrumbs *tview.TextView

	table        *tview.Table
	tableHeaders []string
	rawTableData [][]string
	tableData    [][]string
	filteredIdx  []int
	selectionKey string
	selectedRow  int
	filterQuery  string

	keyBindings  map[string]string
	keyHandlers  map[string]func()
	helpExpanded bool

	dataMutex sync.Mutex
	isLoading bool
	onRefresh func()

	onRowSelected func(row int)
	onBack        func()

	navStack []string
	logLines []string
}

// NewCoreView builds a view titled title. Modals are added to pages.
func NewCoreView(app *tview.Application, pages *tview.Pages, title string) *CoreView {
	c := &CoreView{
		app:         app,
		pages:       pages,
		title:       title,
		selectedRow: -1,
		keyBindings: map[string]string{
			"R": "Refresh",
			"/": "Filter",
			"?": "Help",
		},
		keyHandlers: map[string]func(){},
	}
	c.initUI()
	return c
}

func (c *CoreView) initUI() {
	c.breadcrumbs = tview.NewTextView()
	c.breadcrumbs.SetDynamicColors(true)
	c.breadcrumbs.SetTextAlign(tview.AlignLeft)
	c.breadcrumbs.SetBackgroundColor(tcell.ColorDefault)

	c.infoPanel = tview.NewTextView()
	c.infoPanel.SetDynamicColors(true)
	c.infoPanel.SetText(fmt.Sprintf("[yellow]%s[white]\nStatus: Idle", c.title))
	c.infoPanel.SetBackgroundColor(tcell.ColorDefault)

	c.helpPanel = tview.NewTextView()
	c.helpPanel.SetDynamicColors(true)
	c.helpPanel.SetBackgroundColor(tcell.ColorDefault)
	c.helpPanel.SetText(c.getHelpText())

	c.logPanel = tview.NewTextView()
	c.logPanel.SetDynamicColors(true)
	c.logPanel.SetScrollable(true)
	c.logPanel.SetBackgroundColor(tcell.ColorDefault)

	c.table = tview.NewTable()
	c.table.SetBorders(false)
	c.table.SetSelectable(true, false)
	c.table.SetFixed(1, 0)
	c.table.SetBackgroundColor(tcell.ColorDefault)
	c.table.SetSelectedStyle(
		tcell.StyleDefault.
			Foreground(tcell.ColorBlack).
			Background(tcell.ColorAqua).
			Attributes(tcell.AttrBold),
	)
	c.table.SetTitle(fmt.Sprintf(" [yellow]%s[white] ", c.title))
	c.table.SetTitleAlign(tview.AlignCenter)

	c.table.SetSelectionChangedFunc(func(row, column int) {
		if row <= 0 {
			return
		}
		if row-1 < len(c.tableData) {
			c.selectedRow = row - 1
		}
	})
	c.table.SetSelectedFunc(func(row, column int) {
		if row <= 0 || row-1 >= len(c.tableData) {
			return
		}
		c.selectedRow = row - 1
		if c.onRowSelected != nil {
			c.onRowSelected(c.sourceIndex(c.selectedRow))
		}
	})

	headerRow := tview.NewFlex()
	headerRow.SetDirection(tview.FlexColumn)
	headerRow.SetBackgroundColor(tcell.ColorDefault)
	headerRow.AddItem(c.infoPanel, 0, 1, false).
		AddItem(c.helpPanel, 0, 1, false).
		AddItem(c.logPanel, 0, 1, false)

	separator := tview.NewBox().
		SetBackgroundColor(tcell.ColorDefault).
		SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
			for i := 0; i < width; i++ {
				screen.SetContent(x+i, y, tcell.RuneHLine, nil, tcell.StyleDefault.Foreground(tcell.ColorAqua))
			}
			return x, y, width, height
		})

	c.mainLayout = tview.NewFlex()
	c.mainLayout.SetDirection(tview.FlexRow)
	c.mainLayout.SetBackgroundColor(tcell.ColorDefault)
	c.mainLayout.AddItem(headerRow, 6, 0, false).
		AddItem(separator, 1, 0, false).
		AddItem(c.table, 0, 1, true).
		AddItem(c.breadcrumbs, 1, 0, false)
	c.mainLayout.SetInputCapture(c.handleKey)
}

// GetLayout returns the primitive to mount.
func (c *CoreView) GetLayout() tview.Primitive {
	return c.mainLayout
}

// GetTable exposes the table for focus management.
func (c *CoreView) GetTable() *tview.Table {
	return c.table
}

// Pages is the container modals are added to.
func (c *CoreView) Pages() *tview.Pages {
	return c.pages
}

// App returns the owning application.
func (c *CoreView) App() *tview.Application {
	return c.app
}

// SetInfoText replaces the info panel.
func (c *CoreView) SetInfoText(text string) *CoreView {
	c.infoPanel.SetText(text)
	return c
}

// SetRowSelectedCallback runs on Enter with the index into the data passed
// to SetTableData, filters notwithstanding.
func (c *CoreView) SetRowSelectedCallback(callback func(row int)) *CoreView {
	c.onRowSelected = callback
	return c
}

// SetBackCallback runs on Esc.
func (c *CoreView) SetBackCallback(callback func()) *CoreView {
	c.onBack = callback
	return c
}
