package host

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"certa/internal/config"
	"certa/pkg/appapi"
	"certa/pkg/ui"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// saveConfig accepts text only if it parses, then writes it to path and
// makes it the host configuration. Connections pick it up on the next
// account switch.
func (h *Host) saveConfig(path, text string) error {
	if path == h.configPath {
		cfg, err := config.Parse([]byte(text))
		if err != nil {
			return err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		cfg.Token = h.cfg.Token
		*h.cfg = *cfg
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	appapi.Log().Info("saved %s", path)
	return nil
}

func (h *Host) newEditor(path string) tview.Primitive {
	content, err := os.ReadFile(path)
	if err != nil {
		return errorText(fmt.Sprintf("Could not read %s\n\n%v", path, err))
	}
	editor := ui.NewTextEditor(h.Pages, h.App, string(content), path, func(text string) error {
		return h.saveConfig(path, text)
	})
	editor.SetBorder(true)
	editor.SetTitle(" " + filepath.Base(path) + " [gray](Ctrl+S save, Ctrl+H help)[white] ")
	return editor
}

func errorText(text string) *tview.TextView {
	tv := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText(text).
		SetTextColor(tcell.ColorYellow)
	tv.SetBackgroundColor(tcell.ColorDefault)
	tv.SetBorder(true)
	return tv
}

// ShowSettings lists the configuration files and edits the selected one.
func (h *Host) ShowSettings() {
	files, err := discoverConfigs(appapi.ConfigsDir(), h.configPath)
	if err != nil || len(files) == 0 {
		h.MainFrame.SetPrimitive(errorText(fmt.Sprintf("No configuration files found.\n\nExpected location: %s/certa.yaml", appapi.ConfigsDir())))
		return
	}
	h.stopActive()

	settingsGrid := tview.NewGrid()
	settingsGrid.SetRows(0)
	settingsGrid.SetColumns(30, 0)
	settingsGrid.SetBorders(true).SetBordersColor(tcell.ColorGray)
	settingsGrid.SetBackgroundColor(tcell.ColorDefault)

	configList := tview.NewList().ShowSecondaryText(false)
	configList.SetMainTextColor(tcell.ColorPurple)
	configList.SetBackgroundColor(tcell.ColorDefault)
	for i, f := range files {
		shortcut := rune(0)
		if i < 9 {
			shortcut = rune('1' + i)
		}
		configList.AddItem(filepath.Base(f), f, shortcut, nil)
	}

	editor := h.newEditor(files[0])
	configList.SetSelectedFunc(func(_ int, _, path string, _ rune) {
		settingsGrid.RemoveItem(editor)
		editor = h.newEditor(path)
		settingsGrid.AddItem(editor, 0, 1, 1, 1, 0, 0, true)
		h.App.SetFocus(editor)
	})

	settingsGrid.AddItem(configList, 0, 0, 1, 1, 0, 0, true)
	settingsGrid.AddItem(editor, 0, 1, 1, 1, 0, 0, false)
	h.MainFrame.SetPrimitive(settingsGrid)
	h.Header.SetFeature(&appapi.FeatureMetadata{
		Name:        "settings",
		Version:     Version,
		Description: "Edit the client configuration",
	})
	h.App.SetFocus(configList)
}

// discoverConfigs lists the yaml and .env files in dir, with primary
// (the active config file) first.
func discoverConfigs(dir, primary string) ([]string, error) {
	var files []string
	if primary != "" {
		if _, err := os.Stat(primary); err == nil {
			files = append(files, primary)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if len(files) > 0 {
			return files, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		full := filepath.Join(dir, name)
		if full == primary {
			continue
		}
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") || name == ".env" {
			files = append(files, full)
		}
	}
	return files, nil
}
