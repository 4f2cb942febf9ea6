// Package workspace builds the per-account object graph: the API client and
// the shared stores every feature reads from. A new Workspace is built each
// time the user switches account; nothing here is a package-level singleton.
package workspace

import (
	"net/http"
	"time"

	"certa/internal/api"
	"certa/internal/config"
	"certa/internal/store"
	"certa/pkg/appapi"

	"go.uber.org/zap"
)

// Workspace is what features receive when they are constructed.
type Workspace struct {
	Config  *config.Config
	Account *config.Account
	Conn    config.Connection

	Client         *api.Client
	Certifications *store.CertificationStore
	Patients       *store.PatientStore
}

// Options tunes New.
type Options struct {
	// OnSessionExpired runs on every 401, from the request goroutine.
	OnSessionExpired func()
	// HTTPClient overrides the client built from the connection timeout.
	HTTPClient *http.Client
}

// New connects cfg and the optional account and builds the stores.
func New(cfg *config.Config, acct *config.Account, opts Options) (*Workspace, error) {
	conn, err := config.Connect(cfg, acct)
	if err != nil {
		return nil, err
	}
	client := api.NewClient(api.Options{
		BaseURL:          conn.BaseURL,
		Token:            conn.Token,
		Timeout:          conn.Timeout,
		HTTPClient:       opts.HTTPClient,
		OnSessionExpired: opts.OnSessionExpired,
	})
	if !cfg.Debug.LogAPICalls {
		// Failures are still logged; per-request lines are not.
		client.SetLogger(appapi.Log().Zap().Named("api").WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
	}
	return &Workspace{
		Config:         cfg,
		Account:        acct,
		Conn:           conn,
		Client:         client,
		Certifications: store.NewCertificationStore(api.CertificationBackend{Client: client}),
		Patients:       store.NewPatientStore(api.PatientBackend{Client: client}),
	}, nil
}

// Label names the connection for headers and logs.
func (w *Workspace) Label() string {
	if w.Account != nil {
		return w.Account.Label()
	}
	return w.Conn.BaseURL
}

// Location is the zone schedules are expanded in.
func (w *Workspace) Location() *time.Location {
	if w.Conn.Location == nil {
		return time.Local
	}
	return w.Conn.Location
}

// PageSize is the list page size, 0 meaning the backend default.
func (w *Workspace) PageSize() int {
	return w.Config.UI.PageSize
}
