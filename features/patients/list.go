package patients

import (
	"context"
	"fmt"

	"certa/pkg/ui"

	"github.com/rivo/tview"
)

func (f *Feature) newListView() *ui.CoreView {
	view := ui.NewCoreView(f.app, f.pages, "Patients")
	view.SetTableHeaders([]string{"ID", "Name", "Born", "MRN", "Phone", "E-mail", "Active"})
	view.SetSelectionKey("ID")
	view.SetViewStack([]string{"Patients"})

	view.AddKeyBinding("n", "New", func() { f.showForm(nil) })
	view.AddKeyBinding("e", "Edit", f.editSelected)
	view.AddKeyBinding("d", "Delete", f.deleteSelected)
	view.AddKeyBinding("c", "Certify", f.certifySelected)
	view.AddKeyBinding("s", "Search", f.showSearch)
	view.AddKeyBinding("a", "Active only", f.toggleActive)
	view.SetRefreshCallback(f.load)
	view.SetRowSelectedCallback(func(row int) {
		if row >= 0 && row < len(f.rows) {
			p := f.rows[row]
			f.showForm(&p)
		}
	})
	return view
}

func (f *Feature) editSelected() {
	if p, ok := f.selected(); ok {
		f.showForm(&p)
	}
}

func (f *Feature) certifySelected() {
	p, ok := f.selected()
	if !ok || f.certify == nil {
		return
	}
	f.certify(p)
}

func (f *Feature) showSearch() {
	ui.ShowCompactStyledInputModal(f.pages, f.app, "Search patients", "Name/MRN", f.filter.Search, 30, nil,
		func(text string, cancelled bool) {
			f.focusList()
			if cancelled {
				return
			}
			f.filter.Search = text
			f.load()
		})
}

// toggleActive cycles all -> active -> inactive.
func (f *Feature) toggleActive() {
	switch {
	case f.filter.Active == nil:
		v := true
		f.filter.Active = &v
	case *f.filter.Active:
		v := false
		f.filter.Active = &v
	default:
		f.filter.Active = nil
	}
	f.view.Log("[blue]Showing " + activeLabel(f.filter.Active) + " patients")
	f.load()
}

func (f *Feature) deleteSelected() {
	p, ok := f.selected()
	if !ok {
		return
	}
	del := func() {
		f.async(func(ctx context.Context) error {
			return f.ws.Patients.Delete(ctx, p.ID)
		}, func(err error) {
			f.focusList()
			if err != nil {
				f.errs.HandleError(err, ui.ErrorLevelError, "Delete failed")
				return
			}
			f.view.Log(fmt.Sprintf("[green]Deleted patient %s", tview.Escape(p.FullName())))
		})
	}
	if !f.ws.Config.UI.ConfirmDeletes {
		del()
		return
	}
	ui.ShowStandardConfirmationModal(f.pages, f.app, "Delete patient", fmt.Sprintf("Delete %s?", p.FullName()), func(confirmed bool) {
		if confirmed {
			del()
			return
		}
		f.focusList()
	})
}
