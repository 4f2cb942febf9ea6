package certifications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"certa/internal/api"
	"certa/internal/models"
	"certa/internal/navigator"
	"certa/internal/schedule"
	"certa/pkg/ui"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
)

// notesWidth is the widest notes cell in the sessions table, in columns.
const notesWidth = 40

// notesPreview flattens notes to one line and cuts it to notesWidth
// terminal columns without splitting a rune.
func notesPreview(notes string) string {
	return runewidth.Truncate(strings.ReplaceAll(notes, "\n", " "), notesWidth, "...")
}

var errLocked = errors.New("Only draft or rejected certifications can be changed")

func textBlock(text string) *tview.TextView {
	tv := tview.NewTextView()
	tv.SetDynamicColors(true)
	tv.SetWrap(true)
	tv.SetScrollable(true)
	tv.SetBorderPadding(1, 1, 2, 2)
	tv.SetBackgroundColor(tcell.ColorDefault)
	tv.SetText(text)
	return tv
}

func actionList() *tview.List {
	list := tview.NewList()
	list.ShowSecondaryText(false)
	list.SetHighlightFullLine(true)
	list.SetSelectedBackgroundColor(tcell.ColorAqua)
	list.SetSelectedTextColor(tcell.ColorBlack)
	list.SetBorder(true)
	list.SetBorderColor(tcell.ColorGray)
	list.SetTitle(" Actions ")
	list.SetBackgroundColor(tcell.ColorDefault)
	return list
}

// Loading is shown while the certification is being fetched.
func (m *certModal) Loading() tview.Primitive {
	tv := textBlock("\n[yellow]Loading certification...[white]")
	tv.SetTextAlign(tview.AlignCenter)
	return tv
}

// Failed shows err with a retry key.
func (m *certModal) Failed(err error) tview.Primitive {
	tv := textBlock(fmt.Sprintf("\n[red]%s[white]\n\n[gray]r: retry  Esc: back", tview.Escape(api.Message(err))))
	tv.SetTextAlign(tview.AlignCenter)
	tv.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'r' {
			m.reload()
			return nil
		}
		return event
	})
	return tv
}

func (m *certModal) CertificationDetails(string) tview.Primitive {
	c := m.cert
	text := textBlock(detailsText(c))

	list := actionList()
	list.AddItem("Sessions", "", 's', func() { m.navigate(navigator.SessionsList(c.ID)) })
	if c.Editable() {
		list.AddItem("Add session", "", 'a', func() { m.navigate(navigator.AddSession(c.ID)) })
		list.AddItem("Edit certification", "", 'e', func() { m.navigate(navigator.CertificationEdit(c.ID)) })
		list.AddItem("Plan sessions", "", 'g', m.planSessions)
		list.AddItem("Submit", "", 'u', func() { m.f.submit(c.ID, m.render) })
	}
	list.AddItem("Download PDF", "", 'p', func() { m.f.downloadPDF(c) })
	if c.Editable() {
		list.AddItem("Delete", "", 'd', func() { m.f.confirmDelete(c, m.render) })
	}
	list.AddItem("Close", "", 'q', m.close)

	return tview.NewFlex().
		AddItem(text, 0, 1, false).
		AddItem(list, 28, 0, true)
}

func detailsText(c models.Certification) string {
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			value = "[gray]-[white]"
		} else {
			value = tview.Escape(value)
		}
		fmt.Fprintf(&b, "[yellow]%-14s[white] %s\n", label+":", value)
	}
	row("Patient", c.PatientName())
	row("Period", c.Period())
	row("Status", string(c.Status))
	row("Therapist", c.TherapistName)
	row("Therapy", c.TherapyType)
	if c.SubmittedAt != nil {
		row("Submitted", c.SubmittedAt.Local().Format("2006-01-02 15:04"))
	}
	row("Notes", c.Notes)

	b.WriteString("\n[aqua]Schedules[white]\n")
	if len(c.Schedules) == 0 {
		b.WriteString("  [gray]none[white]\n")
	}
	for _, s := range c.Schedules {
		fmt.Fprintf(&b, "  %s", tview.Escape(s.Label()))
		if s.RRule != "" {
			fmt.Fprintf(&b, " [gray]%s[white]", tview.Escape(s.RRule))
		}
		b.WriteString("\n")
	}

	counts := map[models.SessionStatus]int{}
	signed := 0
	for _, s := range c.Sessions {
		counts[s.Status]++
		if s.Signed() {
			signed++
		}
	}
	fmt.Fprintf(&b, "\n[aqua]Sessions[white]\n  %d recorded, %d completed, %d scheduled, %d signed\n",
		len(c.Sessions), counts[models.SessionCompleted], counts[models.SessionScheduled], signed)
	return b.String()
}

// sortedSessions orders by date then start time.
func sortedSessions(in []models.TherapySession) []models.TherapySession {
	out := append([]models.TherapySession(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (m *certModal) SessionsList(certificationID string) tview.Primitive {
	sessions := sortedSessions(m.cert.Sessions)

	table := tview.NewTable()
	table.SetSelectable(true, false)
	table.SetFixed(1, 0)
	table.SetBackgroundColor(tcell.ColorDefault)
	table.SetSelectedStyle(tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorAqua))
	for col, h := range []string{"Date", "Start", "End", "Status", "Signed", "Notes"} {
		table.SetCell(0, col, tview.NewTableCell(h).SetTextColor(tcell.ColorYellow).SetSelectable(false).SetExpansion(1))
	}
	for i, s := range sessions {
		signed := "no"
		if s.Signed() {
			signed = "yes"
		}
		for col, v := range []string{s.Date, s.StartTime, s.EndTime, string(s.Status), signed, notesPreview(s.Notes)} {
			table.SetCell(i+1, col, tview.NewTableCell(tview.Escape(v)).SetExpansion(1))
		}
	}
	if len(sessions) == 0 {
		table.SetCell(1, 0, tview.NewTableCell("No sessions recorded").SetTextColor(tcell.ColorGray).SetSelectable(false))
	} else {
		table.Select(1, 0)
	}

	selected := func() (models.TherapySession, bool) {
		row, _ := table.GetSelection()
		if row < 1 || row > len(sessions) {
			return models.TherapySession{}, false
		}
		return sessions[row-1], true
	}
	table.SetSelectedFunc(func(row, _ int) {
		if s, ok := selected(); ok {
			m.navigate(navigator.SessionDetails(certificationID, s.ID))
		}
	})
	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case 'a':
			if m.cert.Editable() {
				m.navigate(navigator.AddSession(certificationID))
			}
		case 'e':
			if s, ok := selected(); ok && m.cert.Editable() {
				m.navigate(navigator.EditSession(certificationID, s.ID))
			}
		case 'd':
			if s, ok := selected(); ok && m.cert.Editable() {
				m.deleteSession(s)
			}
		default:
			return event
		}
		return nil
	})

	title := textBlock(fmt.Sprintf("[yellow]%d sessions[white] for %s", len(sessions), tview.Escape(m.cert.Period())))
	title.SetBorderPadding(0, 0, 1, 1)
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(title, 1, 0, false).
		AddItem(table, 0, 1, true)
}

func (m *certModal) SessionDetails(certificationID, sessionID string) tview.Primitive {
	s, ok := m.cert.Session(sessionID)
	if !ok {
		return m.Failed(fmt.Errorf("Session %s not found", sessionID))
	}
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			value = "[gray]-[white]"
		} else {
			value = tview.Escape(value)
		}
		fmt.Fprintf(&b, "[yellow]%-12s[white] %s\n", label+":", value)
	}
	row("Date", s.Date)
	row("Time", s.StartTime+" - "+s.EndTime)
	row("Status", string(s.Status))
	row("Signer", s.SignerName)
	if s.Signed() {
		signedAt := ""
		if !s.SignedAt.IsZero() {
			signedAt = " on " + s.SignedAt.Local().Format("2006-01-02 15:04")
		}
		row("Signature", fmt.Sprintf("captured%s (%d bytes)", signedAt, len(s.Signature)))
	} else {
		row("Signature", "")
	}
	b.WriteString("\n[aqua]Notes[white]\n")
	b.WriteString(tview.Escape(s.Notes))

	list := actionList()
	if m.cert.Editable() {
		list.AddItem("Edit", "", 'e', func() { m.navigate(navigator.EditSession(certificationID, sessionID)) })
		list.AddItem("Delete", "", 'd', func() { m.deleteSession(s) })
	}
	list.AddItem("Back", "", 'b', m.back)

	return tview.NewFlex().
		AddItem(textBlock(b.String()), 0, 1, false).
		AddItem(list, 20, 0, true)
}

func (m *certModal) AddSession(certificationID string) tview.Primitive {
	if !m.cert.Editable() {
		return m.Failed(errLocked)
	}
	return m.newSessionForm(nil).layout
}

func (m *certModal) EditSession(certificationID, sessionID string) tview.Primitive {
	if !m.cert.Editable() {
		return m.Failed(errLocked)
	}
	s, ok := m.cert.Session(sessionID)
	if !ok {
		return m.Failed(fmt.Errorf("Session %s not found", sessionID))
	}
	return m.newSessionForm(&s).layout
}

func (m *certModal) CertificationEdit(certificationID string) tview.Primitive {
	if !m.cert.Editable() {
		return m.Failed(errLocked)
	}
	patients := m.f.ws.Patients.Snapshot().Items
	if p := m.cert.Patient; p != nil && !hasPatient(patients, p.ID) {
		patients = append([]models.Patient{{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}}, patients...)
	}
	form := newCertForm("Edit Certification", models.InputFromCertification(m.cert), patients, m.f.ws.Location(), m.f.ws.Config.UI.PreviewSessions)

	saving := false
	form.panel.AddButton("Save", func() {
		if saving {
			return
		}
		in, ok := form.validate()
		if !ok {
			return
		}
		saving = true
		var updated models.Certification
		m.f.async(func(ctx context.Context) error {
			var err error
			updated, err = m.f.ws.Certifications.Update(ctx, certificationID, in)
			return err
		}, func(err error) {
			saving = false
			if m.closed {
				return
			}
			if err != nil {
				form.showError(err)
				return
			}
			m.log(fmt.Sprintf("[green]Saved certification %s", certificationID))
			if updated.Schedules == nil {
				updated.Schedules = in.Schedules
			}
			m.nav.GoBack()
			m.replace(updated)
		})
	})
	form.panel.AddButton("Cancel", m.back)
	return form.layout
}

func hasPatient(patients []models.Patient, id string) bool {
	for _, p := range patients {
		if p.ID == id {
			return true
		}
	}
	return false
}

// planSessions creates a scheduled session for every occurrence of the
// schedules that has no session yet.
func (m *certModal) planSessions() {
	planned, err := schedule.PlanSessions(m.cert, m.f.ws.Location())
	if err != nil {
		m.f.errs.HandleError(err, ui.ErrorLevelError, "Plan sessions")
		return
	}
	if len(planned) == 0 {
		m.log("[yellow]Every scheduled date already has a session")
		return
	}

	certID := m.cert.ID
	create := func() {
		var created []models.TherapySession
		m.f.async(func(ctx context.Context) error {
			for _, in := range planned {
				s, err := m.f.ws.Client.CreateSession(ctx, certID, in)
				if err != nil {
					return err
				}
				created = append(created, s)
			}
			return nil
		}, func(err error) {
			if m.closed {
				return
			}
			for _, s := range created {
				m.putSession(s)
			}
			m.log(fmt.Sprintf("[green]Planned %d of %d sessions", len(created), len(planned)))
			if err != nil {
				m.f.errs.HandleError(err, ui.ErrorLevelError, "Plan sessions")
			}
			m.render()
		})
	}
	text := fmt.Sprintf("Create %d scheduled sessions for %s from the therapy schedules?", len(planned), m.cert.Period())
	ui.ShowStandardConfirmationModal(m.f.pages, m.f.app, "Plan sessions", text, func(confirmed bool) {
		if confirmed {
			create()
			return
		}
		m.render()
	})
}

func (m *certModal) deleteSession(s models.TherapySession) {
	del := func() {
		m.f.async(func(ctx context.Context) error {
			return m.f.ws.Client.DeleteSession(ctx, s.ID)
		}, func(err error) {
			if m.closed {
				return
			}
			if err != nil {
				m.f.errs.HandleError(err, ui.ErrorLevelError, "Delete session")
				m.render()
				return
			}
			m.dropSession(s.ID)
			m.log(fmt.Sprintf("[green]Deleted session %s %s", s.Date, s.StartTime))
			// Leave every view of the deleted session.
			for m.nav.Current().SessionID() == s.ID {
				if !m.nav.GoBack() {
					break
				}
			}
			m.render()
		})
	}
	if !m.f.ws.Config.UI.ConfirmDeletes {
		del()
		return
	}
	text := fmt.Sprintf("Delete the session on %s at %s?", s.Date, s.StartTime)
	ui.ShowStandardConfirmationModal(m.f.pages, m.f.app, "Delete session", text, func(confirmed bool) {
		if confirmed {
			del()
			return
		}
		m.render()
	})
}
