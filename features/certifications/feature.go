// Package certifications is the certification list and the certification
// modal: details, sessions and the edit forms, navigated as a stack of
// view states.
package certifications

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
const Name = "certifications"

// Feature is the certifications screen. It is mounted by Start and
// unmounted by Stop; any response arriving after Stop is dropped.
type Feature struct {
	ws *workspace.Workspace

	app   *tview.Application
	pages *tview.Pages
	view  *ui.CoreView
	errs  *ui.ErrorHandler
	modal *certModal

	sub         store.Subscription
	subscribed  bool
	mounted     atomic.Bool
	ctx         context.Context
	cancel      context.CancelFunc
	lastVersion uint64

	filter models.CertificationFilter
	// stale is set when a load was skipped because another was running.
	stale bool
	rows  []models.Certification

	// queue hands a closure to the UI goroutine; spawn runs work off it.
	queue func(func())
	spawn func(func())
}

// New returns an unmounted feature over ws.
func New(ws *workspace.Workspace) *Feature {
	return &Feature{
		ws:     ws,
		filter: models.CertificationFilter{PageSize: ws.PageSize()},
		spawn:  func(fn func()) { go fn() },
	}
}

// GetMetadata describes the feature for the host header.
func (f *Feature) GetMetadata() appapi.FeatureMetadata {
	return appapi.FeatureMetadata{
		Name:        Name,
		Version:     "1.0.0",
		Description: "Monthly therapy certifications, sessions and signatures",
		Author:      "certa",
		License:     "MIT",
		Tags:        []string{"certifications", "sessions", "pdf"},
		LastUpdated: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Start builds the list view, subscribes to the certification store and
// starts the first load.
func (f *Feature) Start(app *tview.Application) tview.Primitive {
	f.app = app
	if f.queue == nil {
		f.queue = func(fn func()) { app.QueueUpdateDraw(fn) }
	}
	f.pages = tview.NewPages()
	f.view = f.newListView()
	f.errs = ui.NewErrorHandler(app, f.pages, f.view.Log, api.Message)
	f.pages.AddPage("certifications-list", f.view.GetLayout(), true, true)

	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.mounted.Store(true)
	f.lastVersion = 0
	f.stale = false
	f.sub = f.ws.Certifications.Subscribe(f)
	f.subscribed = true

	f.render(f.ws.Certifications.Snapshot())
	app.SetFocus(f.view.GetTable())
	f.load()
	return f.pages
}

// Stop drops the store subscription and cancels in-flight requests.
func (f *Feature) Stop() {
	f.mounted.Store(false)
	if f.subscribed {
		f.ws.Certifications.Unsubscribe(f.sub)
		f.subscribed = false
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.modal = nil
}

// OnChange receives store snapshots, possibly from a request goroutine.
func (f *Feature) OnChange(snap store.Snapshot[models.Certification]) {
	if !f.mounted.Load() {
		return
	}
	f.queue(func() {
		if f.mounted.Load() {
			f.render(snap)
		}
	})
}

// render draws snap unless a newer snapshot is already on screen.
func (f *Feature) render(snap store.Snapshot[models.Certification]) {
	if snap.Version < f.lastVersion {
		return
	}
	f.lastVersion = snap.Version
	defer f.reloadIfStale(snap)

	f.rows = snap.Items
	data := make([][]string, len(snap.Items))
	for i, c := range snap.Items {
		data[i] = []string{
			c.ID,
			c.PatientName(),
			c.Period(),
			string(c.Status),
			c.TherapyType,
			c.TherapistName,
		}
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
	filter := FormatFilter(f.filter)
	if filter == "" {
		filter = "none"
	}
	f.view.SetInfoText(fmt.Sprintf("[yellow]Certifications[white]\nAccount: %s\nFilter: %s\nCount: %d\nStatus: %s",
		tview.Escape(f.ws.Label()), tview.Escape(filter), len(snap.Items), status))
}

// load refreshes the shared list with the current filter. When another
// load is already running the list is marked stale and reloaded once that
// load completes, so the rows end up matching the filter on screen.
func (f *Feature) load() {
	ctx, filter := f.ctx, f.filter
	f.spawn(func() {
		ran, err := f.ws.Certifications.TryLoad(ctx, filter)
		f.queue(func() {
			if !f.mounted.Load() {
				return
			}
			if !ran {
				f.stale = true
				f.reloadIfStale(f.ws.Certifications.Snapshot())
				return
			}
			if err != nil {
				f.errs.HandleError(err, ui.ErrorLevelWarning, "Load failed")
			}
		})
	})
}

// reloadIfStale starts the deferred load once no load is running.
func (f *Feature) reloadIfStale(snap store.Snapshot[models.Certification]) {
	if !f.stale || snap.Loading {
		return
	}
	f.stale = false
	f.load()
}

// setFilter replaces the server filter and reloads.
func (f *Feature) setFilter(filter models.CertificationFilter) {
	filter.PageSize = f.filter.PageSize
	f.filter = filter
	f.view.Log(fmt.Sprintf("[blue]Filter: %s", tview.Escape(FormatFilter(filter))))
	f.load()
}

// async runs work off the UI goroutine and delivers its error to done on
// the UI goroutine, unless the feature was unmounted in between.
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

// selected returns the certification under the cursor.
func (f *Feature) selected() (models.Certification, bool) {
	idx := f.view.GetSelectedRow()
	if idx < 0 || idx >= len(f.rows) {
		return models.Certification{}, false
	}
	return f.rows[idx], true
}

func (f *Feature) focusList() {
	f.app.SetFocus(f.view.GetTable())
}
