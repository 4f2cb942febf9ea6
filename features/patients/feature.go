// Package patients lists the therapist's patients and edits them.
package patients

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"certa/internal/api"
	"certa/internal/models"
	"certa/internal/store"
	"certa/internal/workspace"
	"certa/pkg/appapi"
	"certa/pkg/ui"

	"github.com/rivo/tview"
)

// Name is the sidebar entry.
const Name = "patients"

// Feature is the patients screen.
type Feature struct {
	ws *workspace.Workspace

	app   *tview.Application
	pages *tview.Pages
	view  *ui.CoreView
	errs  *ui.ErrorHandler

	sub         store.Subscription
	subscribed  bool
	mounted     atomic.Bool
	ctx         context.Context
	cancel      context.CancelFunc
	lastVersion uint64

	filter  models.PatientFilter
	rows    []models.Patient
	certify func(models.Patient)

	queue func(func())
	spawn func(func())
}

// New returns an unmounted feature over ws.
func New(ws *workspace.Workspace) *Feature {
	return &Feature{
		ws:     ws,
		filter: models.PatientFilter{PageSize: ws.PageSize()},
		spawn:  func(fn func()) { go fn() },
	}
}

// SetCertifyFunc sets what "new certification for this patient" does.
func (f *Feature) SetCertifyFunc(fn func(models.Patient)) {
	f.certify = fn
}

// GetMetadata describes the feature for the host header.
func (f *Feature) GetMetadata() appapi.FeatureMetadata {
	return appapi.FeatureMetadata{
		Name:        Name,
		Version:     "1.0.0",
		Description: "Patients receiving therapy",
		Author:      "certa",
		License:     "MIT",
		Tags:        []string{"patients"},
		LastUpdated: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Start builds the view and subscribes to the patient store.
func (f *Feature) Start(app *tview.Application) tview.Primitive {
	f.app = app
	if f.queue == nil {
		f.queue = func(fn func()) { app.QueueUpdateDraw(fn) }
	}
	f.pages = tview.NewPages()
	f.view = f.newListView()
	f.errs = ui.NewErrorHandler(app, f.pages, f.view.Log, api.Message)
	f.pages.AddPage("patients-list", f.view.GetLayout(), true, true)

	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.mounted.Store(true)
	f.lastVersion = 0
	f.sub = f.ws.Patients.Subscribe(f)
	f.subscribed = true

	f.render(f.ws.Patients.Snapshot())
	app.SetFocus(f.view.GetTable())
	f.load()
	return f.pages
}

// Stop drops the subscription and cancels in-flight requests.
func (f *Feature) Stop() {
	f.mounted.Store(false)
	if f.subscribed {
		f.ws.Patients.Unsubscribe(f.sub)
		f.subscribed = false
	}
	if f.cancel != nil {
		f.cancel()
	}
}

// OnChange receives store snapshots.
func (f *Feature) OnChange(snap store.Snapshot[models.Patient]) {
	if !f.mounted.Load() {
		return
	}
	f.queue(func() {
		if f.mounted.Load() {
			f.render(snap)
		}
	})
}

func (f *Feature) render(snap store.Snapshot[models.Patient]) {
	if snap.Version < f.lastVersion {
		return
	}
	f.lastVersion = snap.Version

	f.rows = snap.Items
	data := make([][]string, len(snap.Items))
	for i, p := range snap.Items {
		active := "no"
		if p.Active {
			active = "yes"
		}
		data[i] = []string{p.ID, p.FullName(), p.DateOfBirth, p.MedicalRecordNumber, p.Phone, p.Email, active}
	}
	f.view.SetTableData(data)
	f.view.SetLoading(snap.Loading)

	status := "Ready"
	switch {
	case snap.Loading:
		status = "Loading..."
	case snap.LastError != "":
		status = "[red]" + tview.Escape(snap.LastError) + "[white]"
	}
	f.view.SetInfoText(fmt.Sprintf("[yellow]Patients[white]\nAccount: %s\nSearch: %s\nShowing: %s\nStatus: %s",
		tview.Escape(f.ws.Label()), tview.Escape(orNone(f.filter.Search)), activeLabel(f.filter.Active), status))
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func activeLabel(active *bool) string {
	switch {
	case active == nil:
		return "all"
	case *active:
		return "active"
	}
	return "inactive"
}

func (f *Feature) load() {
	ctx, filter := f.ctx, f.filter
	f.spawn(func() {
		if err := f.ws.Patients.Load(ctx, filter); err != nil {
			f.queue(func() {
				if f.mounted.Load() {
					f.errs.HandleError(err, ui.ErrorLevelWarning, "Load failed")
				}
			})
		}
	})
}

func (f *Feature) async(work func(ctx context.Context) error, done func(err error)) {
	ctx := f.ctx
	f.spawn(func() {
		err := work(ctx)
		f.queue(func() {
			if f.mounted.Load() {
				done(err)
			}
		})
	})
}

func (f *Feature) selected() (models.Patient, bool) {
	idx := f.view.GetSelectedRow()
	if idx < 0 || idx >= len(f.rows) {
		return models.Patient{}, false
	}
	return f.rows[idx], true
}

func (f *Feature) focusList() {
	f.app.SetFocus(f.view.GetTable())
}
