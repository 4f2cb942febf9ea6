package certifications

import (
	"context"
	"fmt"

	"certa/internal/forms"
	"certa/internal/models"
	"certa/pkg/ui"

	"github.com/rivo/tview"
)

func (f *Feature) newListView() *ui.CoreView {
	view := ui.NewCoreView(f.app, f.pages, "Certifications")
	view.SetTableHeaders([]string{"ID", "Patient", "Period", "Status", "Therapy", "Therapist"})
	view.SetSelectionKey("ID")
	view.SetViewStack([]string{"Certifications"})

	view.AddKeyBinding("n", "New", f.newCertification)
	view.AddKeyBinding("e", "Edit", f.editSelected)
	view.AddKeyBinding("d", "Delete", f.deleteSelected)
	view.AddKeyBinding("s", "Submit", f.submitSelected)
	view.AddKeyBinding("p", "PDF", f.pdfSelected)
	view.AddKeyBinding("f", "Server filter", f.showFilter)
	view.SetRefreshCallback(f.load)
	view.SetRowSelectedCallback(func(row int) {
		if row >= 0 && row < len(f.rows) {
			f.openModal(f.rows[row].ID)
		}
	})
	return view
}

func (f *Feature) showFilter() {
	ui.ShowCompactStyledInputModal(f.pages, f.app, "Server filter", "Status/period/search", FormatFilter(f.filter), 30, nil,
		func(text string, cancelled bool) {
			f.focusList()
			if cancelled {
				return
			}
			f.setFilter(ParseFilter(text))
		})
}

func (f *Feature) editSelected() {
	cert, ok := f.selected()
	if !ok {
		return
	}
	f.openModal(cert.ID)
	f.modal.navigateEdit()
}

func (f *Feature) deleteSelected() {
	cert, ok := f.selected()
	if !ok {
		return
	}
	f.confirmDelete(cert, f.focusList)
}

// confirmDelete removes cert after confirmation; after runs once the
// outcome is known.
func (f *Feature) confirmDelete(cert models.Certification, after func()) {
	del := func() {
		f.async(func(ctx context.Context) error {
			return f.ws.Certifications.Delete(ctx, cert.ID)
		}, func(err error) {
			if err != nil {
				f.errs.HandleError(err, ui.ErrorLevelError, "Delete failed")
				return
			}
			f.view.Log(fmt.Sprintf("[green]Deleted certification %s (%s)", tview.Escape(cert.PatientName()), cert.Period()))
			if f.modal != nil && f.modal.certID == cert.ID {
				f.modal.close()
			}
			after()
		})
	}
	if !f.ws.Config.UI.ConfirmDeletes {
		del()
		return
	}
	text := fmt.Sprintf("Delete the %s certification for %s?", cert.Period(), cert.PatientName())
	ui.ShowStandardConfirmationModal(f.pages, f.app, "Delete certification", text, func(confirmed bool) {
		if confirmed {
			del()
			return
		}
		after()
	})
}

func (f *Feature) submitSelected() {
	cert, ok := f.selected()
	if !ok {
		return
	}
	f.submit(cert.ID, f.focusList)
}

// submit loads the full record, checks it is complete and submits it.
func (f *Feature) submit(id string, after func()) {
	var submitted models.Certification
	f.view.Log("[blue]Submitting certification " + id)
	f.async(func(ctx context.Context) error {
		detail, err := f.ws.Certifications.Detail(ctx, id)
		if err != nil {
			return err
		}
		if err := forms.Certification(models.InputFromCertification(detail), true); err != nil {
			return err
		}
		submitted, err = f.ws.Certifications.Submit(ctx, id)
		return err
	}, func(err error) {
		if err != nil {
			f.errs.HandleError(err, ui.ErrorLevelError, "Submit failed")
			after()
			return
		}
		f.view.Log(fmt.Sprintf("[green]Submitted %s (%s)", tview.Escape(submitted.PatientName()), submitted.Period()))
		if f.modal != nil && f.modal.certID == id {
			f.modal.replace(submitted)
		}
		after()
	})
}

func (f *Feature) pdfSelected() {
	cert, ok := f.selected()
	if !ok {
		return
	}
	f.downloadPDF(cert)
}

func (f *Feature) downloadPDF(cert models.Certification) {
	dir := f.ws.Config.DownloadDir
	var path string
	var size int64
	f.view.Log("[blue]Downloading " + PDFFileName(cert))
	f.async(func(ctx context.Context) error {
		var err error
		path, size, err = DownloadPDF(ctx, f.ws.Certifications, cert, dir)
		return err
	}, func(err error) {
		if err != nil {
			f.errs.HandleError(err, ui.ErrorLevelError, "PDF download failed")
			return
		}
		f.view.Log(fmt.Sprintf("[green]Saved %s (%d bytes)", tview.Escape(path), size))
	})
}
