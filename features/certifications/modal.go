package certifications

import (
	"context"
	"fmt"

	"certa/internal/models"
	"certa/internal/navigator"
	"certa/pkg/ui"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const modalPage = "certification-modal"

// certModal shows one certification. What it shows is decided by the
// navigator's current state; Esc walks back through the history and
// closes the modal at the root.
type certModal struct {
	f      *Feature
	certID string
	nav    *navigator.Navigator

	cert    models.Certification
	loading bool
	loadErr error
	closed  bool

	frame  *tview.Flex
	crumbs *tview.TextView
	body   *tview.Flex
	hint   *tview.TextView
}

func (f *Feature) openModal(id string) {
	if f.modal != nil {
		f.modal.close()
	}
	m := &certModal{
		f:      f,
		certID: id,
		nav:    navigator.New(id),
		crumbs: tview.NewTextView(),
		body:   tview.NewFlex(),
		hint:   tview.NewTextView(),
	}
	m.crumbs.SetDynamicColors(true)
	m.crumbs.SetBackgroundColor(tcell.ColorDefault)
	m.hint.SetDynamicColors(true)
	m.hint.SetBackgroundColor(tcell.ColorDefault)
	m.body.SetBackgroundColor(tcell.ColorDefault)

	m.frame = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(m.crumbs, 1, 0, false).
		AddItem(m.body, 0, 1, true).
		AddItem(m.hint, 1, 0, false)
	m.frame.SetBorder(true)
	m.frame.SetBorderColor(tcell.ColorAqua)
	m.frame.SetTitleColor(tcell.ColorOrange)
	m.frame.SetBackgroundColor(tcell.ColorDefault)
	m.frame.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			m.back()
			return nil
		}
		return event
	})

	f.modal = m
	f.pages.AddPage(modalPage, ui.Centered(m.frame, 120, 38), true, true)
	m.reload()
}

// reload fetches the certification with its sessions. The loading block
// replaces whatever view is current until the response arrives.
func (m *certModal) reload() {
	m.loading = true
	m.loadErr = nil
	m.render()

	var cert models.Certification
	m.f.async(func(ctx context.Context) error {
		var err error
		cert, err = m.f.ws.Certifications.Detail(ctx, m.certID)
		return err
	}, func(err error) {
		if m.closed {
			return
		}
		m.loading = false
		m.loadErr = err
		if err == nil {
			m.cert = cert
		}
		m.render()
	})
}

// render draws the block for the current state.
func (m *certModal) render() {
	if m.closed {
		return
	}
	state := m.nav.Current()
	block := navigator.Resolve[tview.Primitive](m.loading, m.loadErr, state, m)

	m.body.Clear()
	m.body.AddItem(block, 0, 1, true)
	m.crumbs.SetText(ui.FormatBreadcrumbs(append([]string{"Certifications"}, m.nav.Breadcrumbs()...)))
	m.hint.SetText(hintFor(state.Kind(), m.nav.AtRoot()))

	title := " Certification "
	if m.cert.ID != "" {
		title = fmt.Sprintf(" %s · %s · %s ", m.cert.PatientName(), m.cert.Period(), m.cert.Status)
	}
	m.frame.SetTitle(tview.Escape(title))
	m.f.app.SetFocus(block)
}

func hintFor(kind navigator.Kind, atRoot bool) string {
	back := "Esc: back"
	if atRoot {
		back = "Esc: close"
	}
	switch kind {
	case navigator.KindSessionsList:
		return "[gray]Enter: open  a: add  e: edit  d: delete  " + back
	case navigator.KindAddSession, navigator.KindEditSession:
		return "[gray]F2: form  F3: signature  F4: notes  " + back
	case navigator.KindCertificationEdit:
		return "[gray]Tab: next field  " + back
	}
	return "[gray]Enter: select  " + back
}

func (m *certModal) navigate(state navigator.ViewState) {
	m.nav.NavigateTo(state)
	m.render()
}

func (m *certModal) navigateEdit() {
	m.navigate(navigator.CertificationEdit(m.certID))
}

// back returns to the previous view, closing the modal at the root.
func (m *certModal) back() {
	if !m.nav.GoBack() {
		m.close()
		return
	}
	m.render()
}

func (m *certModal) close() {
	if m.closed {
		return
	}
	m.closed = true
	m.f.pages.RemovePage(modalPage)
	if m.f.modal == m {
		m.f.modal = nil
	}
	m.f.focusList()
}

// replace swaps in a fresher copy of the certification, keeping the
// sessions and schedules when the response did not embed them.
func (m *certModal) replace(cert models.Certification) {
	if cert.Sessions == nil {
		cert.Sessions = m.cert.Sessions
	}
	if cert.Schedules == nil {
		cert.Schedules = m.cert.Schedules
	}
	m.cert = cert
	m.render()
}

// putSession inserts or replaces s in the local copy.
func (m *certModal) putSession(s models.TherapySession) {
	for i := range m.cert.Sessions {
		if m.cert.Sessions[i].ID == s.ID {
			m.cert.Sessions[i] = s
			return
		}
	}
	m.cert.Sessions = append(m.cert.Sessions, s)
}

func (m *certModal) dropSession(id string) {
	for i := range m.cert.Sessions {
		if m.cert.Sessions[i].ID == id {
			m.cert.Sessions = append(m.cert.Sessions[:i:i], m.cert.Sessions[i+1:]...)
			return
		}
	}
}

func (m *certModal) log(msg string) {
	m.f.view.Log(msg)
}
