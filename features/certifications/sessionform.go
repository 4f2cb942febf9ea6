package certifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"certa/internal/forms"
	"certa/internal/models"
	"certa/internal/schedule"
	"certa/pkg/ui"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const signatureScale = 4

// sessionForm adds or edits one session: the fields on the left, the
// signature pad and the notes editor on the right.
type sessionForm struct {
	panel    *ui.FormPanel
	pad      *ui.SignaturePad
	notes    *ui.TextEditor
	layout   *tview.Flex
	existing *models.TherapySession
	initial  models.SessionInput
}

// defaultSession pre-fills a new session with the first scheduled visit
// that has none yet, or the first day of the period.
func defaultSession(cert models.Certification, loc *time.Location) models.SessionInput {
	if planned, err := schedule.PlanSessions(cert, loc); err == nil && len(planned) > 0 {
		return planned[0]
	}
	return models.SessionInput{
		Date:      fmt.Sprintf("%s-01", cert.Period()),
		StartTime: "09:00",
		EndTime:   "10:00",
		Status:    models.SessionScheduled,
	}
}

func (m *certModal) newSessionForm(existing *models.TherapySession) *sessionForm {
	title := "Add Session"
	in := defaultSession(m.cert, m.f.ws.Location())
	if existing != nil {
		title = "Edit Session"
		in = models.InputFromSession(*existing)
	}
	s := &sessionForm{
		panel:    ui.NewFormPanel(title),
		pad:      ui.NewSignaturePad(48, 8),
		existing: existing,
		initial:  in,
	}
	s.notes = ui.NewTextEditor(m.f.pages, m.f.app, in.Notes, "notes.md", nil)
	s.notes.SetBorder(true)
	s.notes.SetBorderColor(tcell.ColorGray)
	s.notes.SetTitle(" Notes ")

	statuses := make([]string, len(models.SessionStatuses))
	current := 0
	for i, st := range models.SessionStatuses {
		statuses[i] = string(st)
		if st == in.Status {
			current = i
		}
	}

	s.panel.AddInput(forms.FieldDate, "Date", in.Date, 12)
	s.panel.AddInput(forms.FieldStartTime, "Start", in.StartTime, 6)
	s.panel.AddInput(forms.FieldEndTime, "End", in.EndTime, 6)
	s.panel.AddDropDown(forms.FieldStatus, "Status", statuses, current, nil)
	s.panel.AddInput(forms.FieldSignature, "Signed by", in.SignerName, 30)

	signatureState := tview.NewTextView().SetDynamicColors(true)
	signatureState.SetBackgroundColor(tcell.ColorDefault)
	showSignatureState := func() {
		switch {
		case !s.pad.Empty():
			signatureState.SetText("[green]New signature drawn")
		case existing != nil && existing.Signed():
			signatureState.SetText("[gray]Signature on file; draw to replace it")
		default:
			signatureState.SetText("[gray]Draw with the mouse, or arrows + Space")
		}
	}
	s.pad.SetChangedFunc(showSignatureState)
	showSignatureState()

	s.panel.AddButton("Save", func() { m.saveSession(s) })
	s.panel.AddButton("Clear signature", func() {
		s.pad.Clear()
		showSignatureState()
	})
	s.panel.AddButton("Cancel", m.back)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.pad, 10, 0, false).
		AddItem(signatureState, 1, 0, false).
		AddItem(s.notes, 0, 1, false)
	s.layout = tview.NewFlex().
		AddItem(s.panel, 0, 1, true).
		AddItem(right, 0, 1, false)
	s.layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF2:
			m.f.app.SetFocus(s.panel)
		case tcell.KeyF3:
			m.f.app.SetFocus(s.pad)
		case tcell.KeyF4:
			m.f.app.SetFocus(s.notes)
		default:
			return event
		}
		return nil
	})
	return s
}

// input collects the form. A freshly drawn signature replaces the stored
// one.
func (s *sessionForm) input() (models.SessionInput, error) {
	in := s.initial
	in.Date = s.panel.Text(forms.FieldDate)
	in.StartTime = s.panel.Text(forms.FieldStartTime)
	in.EndTime = s.panel.Text(forms.FieldEndTime)
	in.Status = models.SessionStatus(s.panel.Text(forms.FieldStatus))
	in.SignerName = s.panel.Text(forms.FieldSignature)
	in.Notes = strings.TrimSpace(s.notes.Text())

	png, err := s.pad.PNG(signatureScale)
	if err != nil {
		return in, fmt.Errorf("encode signature: %w", err)
	}
	if png != nil {
		in.Signature = png
	}
	return in, nil
}

func (m *certModal) saveSession(s *sessionForm) {
	in, err := s.input()
	if err == nil {
		err = forms.Session(in, m.cert)
	}
	if err != nil {
		routed := forms.Route(err)
		s.panel.SetErrors(routed.Fields, routed.General)
		return
	}
	s.panel.ClearErrors()

	certID := m.cert.ID
	var saved models.TherapySession
	m.f.async(func(ctx context.Context) error {
		var err error
		if s.existing != nil {
			saved, err = m.f.ws.Client.UpdateSession(ctx, s.existing.ID, in)
		} else {
			saved, err = m.f.ws.Client.CreateSession(ctx, certID, in)
		}
		return err
	}, func(err error) {
		if m.closed {
			return
		}
		if err != nil {
			routed := forms.Route(err)
			s.panel.SetErrors(routed.Fields, routed.General)
			return
		}
		m.putSession(saved)
		m.log(fmt.Sprintf("[green]Saved session %s %s", saved.Date, saved.StartTime))
		m.back()
	})
}
