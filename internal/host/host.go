// Package host is the certa shell: the header, the feature sidebar, the
// main frame and the help list, plus account switching and settings.
package host

import (
	"fmt"
	"sync/atomic"
	"time"

	"certa/features/certifications"
	"certa/features/patients"
	"certa/internal/config"
	"certa/internal/models"
	"certa/internal/registry"
	"certa/internal/workspace"
	"certa/pkg/appapi"
	"certa/pkg/ui"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Version is stamped into the header and the cover.
const Version = "1.0.0"

// Metadata describes the client itself; the header shows it until a
// feature is selected.
var Metadata = appapi.FeatureMetadata{
	Name:        "certa",
	Version:     Version,
	Description: "Therapy certifications from the terminal",
	Author:      "certa",
	License:     "MIT",
	Tags:        []string{"therapy", "certifications"},
	LastUpdated: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
}

// Options configures New.
type Options struct {
	Config     *config.Config
	ConfigPath string
	// Secrets holds the backend accounts; nil disables the account
	// selector.
	Secrets appapi.SecretsProvider
}

type Host struct {
	App         *tview.Application
	Pages       *tview.Pages
	MainFrame   *tview.Frame
	MainUI      *tview.Grid
	Header      *ui.HeaderView
	FeatureList *tview.List
	HelpList    *tview.List
	Registry    *registry.Registry
	Active      appapi.Feature
	Workspace   *workspace.Workspace

	cfg        *config.Config
	configPath string
	secrets    appapi.SecretsProvider
	expired    atomic.Bool
}

func New(app *tview.Application, pages *tview.Pages, opts Options) *Host {
	mainFrame := tview.NewFrame(nil)
	mainFrame.SetBackgroundColor(tcell.ColorDefault)
	mainFrame.SetBorderPadding(0, 0, 0, 0)

	mainUI := tview.NewGrid()
	mainUI.SetBackgroundColor(tcell.ColorDefault)

	h := &Host{
		App:         app,
		Pages:       pages,
		MainFrame:   mainFrame,
		MainUI:      mainUI,
		Header:      ui.NewHeaderView(Metadata),
		FeatureList: featureList(),
		Registry:    registry.New(),
		cfg:         opts.Config,
		configPath:  opts.ConfigPath,
		secrets:     opts.Secrets,
	}
	h.FeatureList.AddItem("Not connected", "Select an account", '0', h.ShowAccounts)
	h.HelpList = h.newHelpList()
	return h
}

func featureList() *tview.List {
	list := tview.NewList().ShowSecondaryText(false)
	list.SetMainTextColor(tcell.ColorPurple)
	list.SetBackgroundColor(tcell.ColorDefault)
	return list
}

// Layout assembles the grid, installs panel cycling and returns the root
// primitive.
func (h *Host) Layout() tview.Primitive {
	h.MainFrame.SetPrimitive(Cover(h.Registry.All()))

	// minWidth=0 so the grid renders on small terminals
	h.MainUI.SetRows(12, 0, 3).SetColumns(25, 0)
	h.MainUI.SetBorders(true).SetBordersColor(tcell.ColorAqua)
	h.MainUI.AddItem(h.Header, 0, 0, 1, 1, 0, 0, false).
		AddItem(h.FeatureList, 1, 0, 1, 1, 0, 0, true).
		AddItem(h.MainFrame, 0, 1, 3, 1, 0, 0, false).
		AddItem(h.HelpList, 2, 0, 1, 1, 0, 0, false)

	h.Pages.AddPage("main", h.MainUI, true, true)

	// Shift+Tab or Ctrl+Down cycles the panels; Ctrl+Down is for terminals
	// that do not send Shift+Tab.
	h.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyBacktab ||
			(event.Key() == tcell.KeyDown && event.Modifiers()&tcell.ModCtrl != 0) {
			h.cyclePanels()
			return nil
		}
		return event
	})
	return h.Pages
}

func (h *Host) cyclePanels() {
	switch h.App.GetFocus() {
	case h.FeatureList:
		h.App.SetFocus(h.HelpList)
	case h.HelpList:
		if content := h.MainFrame.GetPrimitive(); content != nil {
			h.App.SetFocus(content)
		} else {
			h.App.SetFocus(h.FeatureList)
		}
	default:
		h.App.SetFocus(h.FeatureList)
	}
}

// Connect builds a fresh workspace for acct (nil uses the configured URL),
// registers the features over it and lists them in the sidebar. The
// previous workspace's active feature is stopped first.
func (h *Host) Connect(acct *config.Account) error {
	ws, err := workspace.New(h.cfg, acct, workspace.Options{OnSessionExpired: h.sessionExpired})
	if err != nil {
		return err
	}
	h.stopActive()
	h.Workspace = ws
	h.expired.Store(false)

	certs := certifications.New(ws)
	pats := patients.New(ws)
	pats.SetCertifyFunc(func(p models.Patient) {
		h.Activate(certifications.Name)
		certs.NewForPatient(p)
	})

	h.Registry = registry.New()
	h.Registry.Register(certs)
	h.Registry.Register(pats)
	h.refreshFeatureList()

	h.Header.SetFeature(nil).SetStatus("Connected: " + ws.Label())
	h.MainFrame.SetPrimitive(Cover(h.Registry.All()))
	appapi.Log().Info("connected to %s (%s)", ws.Label(), ws.Conn.BaseURL)
	return nil
}

func (h *Host) refreshFeatureList() {
	h.FeatureList.Clear()
	for i, name := range h.Registry.Names() {
		shortcut := rune(0)
		if i < 9 {
			shortcut = rune('1' + i)
		}
		h.FeatureList.AddItem(name, "", shortcut, nil)
	}
	h.FeatureList.SetSelectedFunc(func(_ int, name, _ string, _ rune) {
		h.Activate(name)
	})
	h.FeatureList.SetChangedFunc(func(_ int, name, _ string, _ rune) {
		h.showMetadata(name)
	})
}

// Activate stops the current feature and mounts name in the main frame.
func (h *Host) Activate(name string) {
	feature, ok := h.Registry.Get(name)
	if !ok {
		h.showError("Unknown feature", fmt.Errorf("no feature named %q", name))
		return
	}
	h.stopActive()
	h.Active = feature

	component := feature.Start(h.App)
	h.MainFrame.SetPrimitive(component)
	h.showMetadata(name)
	h.selectInList(name)
}

func (h *Host) selectInList(name string) {
	for i := 0; i < h.FeatureList.GetItemCount(); i++ {
		if main, _ := h.FeatureList.GetItemText(i); main == name {
			h.FeatureList.SetCurrentItem(i)
			return
		}
	}
}

func (h *Host) stopActive() {
	if h.Active == nil {
		return
	}
	if stoppable, ok := h.Active.(appapi.Stoppable); ok {
		stoppable.Stop()
	}
	h.Active = nil
}

// Stop unmounts the active feature; cmd/certa calls it on exit.
func (h *Host) Stop() {
	h.stopActive()
}

func (h *Host) showMetadata(name string) {
	if meta, ok := h.Registry.Metadata(name); ok {
		h.Header.SetFeature(&meta)
		return
	}
	h.Header.SetFeature(nil)
}

func (h *Host) showError(title string, err error) {
	infoText := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText(fmt.Sprintf("%s\n\n%v", title, err)).
		SetTextColor(tcell.ColorRed)
	infoText.SetBackgroundColor(tcell.ColorDefault)
	infoText.SetBorder(true).
		SetTitle(" Error ").
		SetTitleAlign(tview.AlignCenter)
	h.MainFrame.SetPrimitive(infoText)
	h.Header.SetFeature(nil)
}

func (h *Host) newHelpList() *tview.List {
	list := tview.NewList().
		AddItem("Refresh", "", 'r', nil).
		AddItem("Settings", "", 'a', nil).
		AddItem("Accounts", "", 'c', nil)
	list.ShowSecondaryText(false)
	list.SetBackgroundColor(tcell.ColorDefault)
	list.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		switch index {
		case 0:
			h.refresh()
		case 1:
			h.ShowSettings()
		case 2:
			h.ShowAccounts()
		}
	})
	return list
}

// refresh remounts the active feature, which reloads its data.
func (h *Host) refresh() {
	if h.Active == nil {
		h.MainFrame.SetPrimitive(Cover(h.Registry.All()))
		return
	}
	h.Activate(h.Active.GetMetadata().Name)
}
