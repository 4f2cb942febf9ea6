package patients

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certa/internal/config"
	"certa/internal/forms"
	"certa/internal/models"
	"certa/internal/workspace"
	"certa/pkg/ui"
)

type fakeBackend struct {
	mu       sync.Mutex
	patients []models.Patient
	queries  []string
	creates  int
	deleted  []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{patients: []models.Patient{
		{ID: "p1", FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1815-12-10", MedicalRecordNumber: "MRN1", Email: "ada@example.com", Active: true},
		{ID: "p2", FirstName: "Alan", LastName: "Turing", Active: false},
	}}
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": status, "message": message, "data": data})
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /patients", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.queries = append(b.queries, r.URL.Query().Get("active"))
		writeEnvelope(w, http.StatusOK, "", map[string]interface{}{"items": b.patients, "total": len(b.patients)})
	})
	mux.HandleFunc("POST /patients", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var in models.PatientInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.LastName == "Duplicate" {
			writeEnvelope(w, http.StatusUnprocessableEntity, "A patient with this record number already exists", nil)
			return
		}
		b.creates++
		p := models.Patient{ID: "p3", FirstName: in.FirstName, LastName: in.LastName, Active: in.Active}
		b.patients = append(b.patients, p)
		writeEnvelope(w, http.StatusCreated, "", p)
	})
	mux.HandleFunc("PUT /patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in models.PatientInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeEnvelope(w, http.StatusOK, "", models.Patient{ID: r.PathValue("id"), FirstName: in.FirstName, LastName: in.LastName, Active: in.Active})
	})
	mux.HandleFunc("DELETE /patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.deleted = append(b.deleted, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newTestFeature(t *testing.T, b *fakeBackend) *Feature {
	t.Helper()
	t.Setenv("CERTA_HOME", t.TempDir())
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.URL = srv.URL
	cfg.UI.ConfirmDeletes = false
	ws, err := workspace.New(cfg, nil, workspace.Options{HTTPClient: srv.Client()})
	require.NoError(t, err)

	f := New(ws)
	f.queue = func(fn func()) { fn() }
	f.spawn = func(fn func()) { fn() }
	f.Start(tview.NewApplication())
	t.Cleanup(f.Stop)
	return f
}

// frontForm digs the form panel out of the centered page on top.
func frontForm(t *testing.T, f *Feature) *ui.FormPanel {
	t.Helper()
	name, page := f.pages.GetFrontPage()
	require.Equal(t, formPage, name)
	outer, ok := page.(*tview.Flex)
	require.True(t, ok)
	inner, ok := outer.GetItem(1).(*tview.Flex)
	require.True(t, ok)
	panel, ok := inner.GetItem(1).(*ui.FormPanel)
	require.True(t, ok)
	return panel
}

func press(t *testing.T, panel *ui.FormPanel, label string) {
	t.Helper()
	idx := panel.Form().GetButtonIndex(label)
	require.GreaterOrEqual(t, idx, 0, label)
	panel.Form().GetButton(idx).InputHandler()(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})
}

func TestStartLoadsPatients(t *testing.T) {
	f := newTestFeature(t, newFakeBackend())

	require.Len(t, f.rows, 2)
	assert.Equal(t, []string{"p1", "Ada Lovelace", "1815-12-10", "MRN1", "", "ada@example.com", "yes"}, f.view.GetTableData()[0])
	assert.Equal(t, 1, f.ws.Patients.SubscriberCount())

	f.Stop()
	assert.Equal(t, 0, f.ws.Patients.SubscriberCount())
}

func TestToggleActiveCyclesFilter(t *testing.T) {
	b := newFakeBackend()
	f := newTestFeature(t, b)

	f.toggleActive()
	f.toggleActive()
	f.toggleActive()

	assert.Equal(t, []string{"", "true", "false", ""}, b.queries)
	assert.Nil(t, f.filter.Active)
}

func TestFormRoutesValidationErrors(t *testing.T) {
	b := newFakeBackend()
	f := newTestFeature(t, b)

	f.showForm(nil)
	panel := frontForm(t, f)
	panel.SetText(forms.FieldEmail, "not-an-address")
	press(t, panel, "Save")

	assert.Equal(t, "First name is required", panel.FieldError(forms.FieldFirstName))
	assert.Equal(t, "Last name is required", panel.FieldError(forms.FieldLastName))
	assert.Equal(t, "Enter a valid e-mail address", panel.FieldError(forms.FieldEmail))
	assert.Zero(t, b.creates)
	assert.True(t, f.pages.HasPage(formPage))
}

func TestCreatePatientPrependsAndCloses(t *testing.T) {
	b := newFakeBackend()
	f := newTestFeature(t, b)

	f.showForm(nil)
	panel := frontForm(t, f)
	panel.SetText(forms.FieldFirstName, "Grace")
	panel.SetText(forms.FieldLastName, "Hopper")
	press(t, panel, "Save")

	assert.Equal(t, 1, b.creates)
	assert.False(t, f.pages.HasPage(formPage))
	require.Len(t, f.rows, 3)
	assert.Equal(t, "p3", f.rows[0].ID)
	assert.True(t, f.rows[0].Active)
}

func TestBackendRejectionShowsInBanner(t *testing.T) {
	f := newTestFeature(t, newFakeBackend())

	f.showForm(nil)
	panel := frontForm(t, f)
	panel.SetText(forms.FieldFirstName, "Grace")
	panel.SetText(forms.FieldLastName, "Duplicate")
	press(t, panel, "Save")

	assert.Equal(t, "A patient with this record number already exists", panel.GeneralError())
	assert.True(t, f.pages.HasPage(formPage))
	assert.Len(t, f.rows, 2)
}

func TestEditPatientReplacesRow(t *testing.T) {
	f := newTestFeature(t, newFakeBackend())

	p := f.rows[1]
	f.showForm(&p)
	panel := frontForm(t, f)
	assert.False(t, panel.Checked(fieldActive))
	panel.SetText(forms.FieldFirstName, "Alan M.")
	press(t, panel, "Save")

	require.Len(t, f.rows, 2)
	assert.Equal(t, "Alan M. Turing", f.rows[1].FullName())
}

func TestCertifyHandsPatientOver(t *testing.T) {
	f := newTestFeature(t, newFakeBackend())
	var certified []string
	f.SetCertifyFunc(func(p models.Patient) { certified = append(certified, p.ID) })

	p := f.rows[0]
	f.showForm(&p)
	press(t, frontForm(t, f), "New certification")
	assert.Equal(t, []string{"p1"}, certified)
	assert.False(t, f.pages.HasPage(formPage))

	f.view.GetTable().Select(2, 0)
	f.certifySelected()
	assert.Equal(t, []string{"p1", "p2"}, certified)
}

func TestDeleteSelectedRemovesRow(t *testing.T) {
	b := newFakeBackend()
	f := newTestFeature(t, b)

	f.view.GetTable().Select(1, 0)
	f.deleteSelected()

	assert.Equal(t, []string{"p1"}, b.deleted)
	require.Len(t, f.rows, 1)
	assert.Equal(t, "p2", f.rows[0].ID)
}
