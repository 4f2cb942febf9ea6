package patients

import (
	"context"
	"fmt"

	"certa/internal/forms"
	"certa/internal/models"
	"certa/pkg/ui"

	"github.com/rivo/tview"
)

const (
	formPage = "patient-form"

	fieldDateOfBirth = "dateOfBirth"
	fieldMRN         = "medicalRecordNumber"
	fieldPhone       = "phone"
	fieldAddress     = "address"
	fieldDiagnosis   = "diagnosis"
	fieldActive      = "active"
)

func newPatientPanel(title string, in models.PatientInput) *ui.FormPanel {
	panel := ui.NewFormPanel(title)
	panel.AddInput(forms.FieldFirstName, "First name", in.FirstName, 30)
	panel.AddInput(forms.FieldLastName, "Last name", in.LastName, 30)
	panel.AddInput(fieldDateOfBirth, "Born (YYYY-MM-DD)", in.DateOfBirth, 12)
	panel.AddInput(fieldMRN, "Record number", in.MedicalRecordNumber, 20)
	panel.AddInput(fieldPhone, "Phone", in.Phone, 20)
	panel.AddInput(forms.FieldEmail, "E-mail", in.Email, 36)
	panel.AddInput(fieldAddress, "Address", in.Address, 40)
	panel.AddInput(fieldDiagnosis, "Diagnosis", in.Diagnosis, 40)
	panel.AddCheckbox(fieldActive, "Active", in.Active)
	return panel
}

func patientInput(panel *ui.FormPanel) models.PatientInput {
	return models.PatientInput{
		FirstName:           panel.Text(forms.FieldFirstName),
		LastName:            panel.Text(forms.FieldLastName),
		DateOfBirth:         panel.Text(fieldDateOfBirth),
		MedicalRecordNumber: panel.Text(fieldMRN),
		Phone:               panel.Text(fieldPhone),
		Email:               panel.Text(forms.FieldEmail),
		Address:             panel.Text(fieldAddress),
		Diagnosis:           panel.Text(fieldDiagnosis),
		Active:              panel.Checked(fieldActive),
	}
}

// showForm creates a patient when existing is nil and edits it otherwise.
// Errors stay on the form; it closes only after the backend accepted it.
func (f *Feature) showForm(existing *models.Patient) {
	title := "New Patient"
	in := models.PatientInput{Active: true}
	if existing != nil {
		title = "Edit Patient"
		in = models.InputFromPatient(*existing)
	}
	panel := newPatientPanel(title, in)

	closeForm := func() {
		f.pages.RemovePage(formPage)
		f.focusList()
	}
	saving := false
	panel.AddButton("Save", func() {
		if saving {
			return
		}
		in := patientInput(panel)
		if err := forms.Patient(in); err != nil {
			routed := forms.Route(err)
			panel.SetErrors(routed.Fields, routed.General)
			return
		}
		panel.ClearErrors()
		saving = true

		var saved models.Patient
		f.async(func(ctx context.Context) error {
			var err error
			if existing != nil {
				saved, err = f.ws.Patients.Update(ctx, existing.ID, in)
			} else {
				saved, err = f.ws.Patients.Create(ctx, in)
			}
			return err
		}, func(err error) {
			saving = false
			if err != nil {
				routed := forms.Route(err)
				panel.SetErrors(routed.Fields, routed.General)
				return
			}
			closeForm()
			f.view.Log(fmt.Sprintf("[green]Saved patient %s", tview.Escape(saved.FullName())))
		})
	})
	if existing != nil {
		panel.AddButton("New certification", func() {
			if f.certify != nil {
				closeForm()
				f.certify(*existing)
			}
		})
	}
	panel.AddButton("Cancel", closeForm)
	panel.SetCancelFunc(closeForm)

	f.pages.AddPage(formPage, ui.Centered(panel, 70, 32), true, true)
	f.app.SetFocus(panel)
}
