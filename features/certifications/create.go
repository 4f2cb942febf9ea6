package certifications

import (
	"context"
	"fmt"
	"time"

	"certa/internal/models"
	"certa/pkg/ui"

	"github.com/rivo/tview"
)

const formPage = "certification-form"

func (f *Feature) newCertification() {
	f.openCreateForm(models.CertificationInput{})
}

// NewForPatient opens the new-certification form with p selected. The
// feature must be mounted.
func (f *Feature) NewForPatient(p models.Patient) {
	if !f.mounted.Load() {
		return
	}
	f.openCreateForm(models.CertificationInput{PatientID: p.ID})
}

func (f *Feature) openCreateForm(in models.CertificationInput) {
	now := time.Now().In(f.ws.Location())
	if in.Month == 0 {
		in.Month = int(now.Month())
	}
	if in.Year == 0 {
		in.Year = now.Year()
	}
	if in.TherapistID == "" {
		in.TherapistID = f.ws.Conn.TherapistID
	}
	f.withPatients(func(patients []models.Patient) {
		f.showCreateForm(in, patients)
	})
}

// withPatients hands the cached patient list to fn, loading it first when
// the cache is empty.
func (f *Feature) withPatients(fn func([]models.Patient)) {
	if snap := f.ws.Patients.Snapshot(); len(snap.Items) > 0 {
		fn(snap.Items)
		return
	}
	f.async(func(ctx context.Context) error {
		return f.ws.Patients.Load(ctx, models.PatientFilter{PageSize: f.ws.PageSize()})
	}, func(err error) {
		if err != nil {
			f.errs.HandleError(err, ui.ErrorLevelWarning, "Patients")
		}
		fn(f.ws.Patients.Snapshot().Items)
	})
}

func (f *Feature) showCreateForm(in models.CertificationInput, patients []models.Patient) {
	form := newCertForm("New Certification", in, patients, f.ws.Location(), f.ws.Config.UI.PreviewSessions)

	closeForm := func() {
		f.pages.RemovePage(formPage)
		f.focusList()
	}
	saving := false
	form.panel.AddButton("Create", func() {
		if saving {
			return
		}
		in, ok := form.validate()
		if !ok {
			return
		}
		saving = true
		var created models.Certification
		f.async(func(ctx context.Context) error {
			var err error
			created, err = f.ws.Certifications.Create(ctx, in)
			return err
		}, func(err error) {
			saving = false
			if err != nil {
				form.showError(err)
				return
			}
			closeForm()
			f.view.Log(fmt.Sprintf("[green]Created certification %s (%s)", tview.Escape(created.PatientName()), created.Period()))
			f.openModal(created.ID)
		})
	})
	form.panel.AddButton("Cancel", closeForm)
	form.panel.SetCancelFunc(closeForm)

	f.pages.AddPage(formPage, ui.Centered(form.layout, 110, 34), true, true)
	f.app.SetFocus(form.panel)
}
