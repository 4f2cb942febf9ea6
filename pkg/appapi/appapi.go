// Package appapi holds the pieces shared between the certa host and its
// features: on-disk layout, the feature lifecycle contract, the HTTP client
// factory, logging and the secrets accessor.
package appapi

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rivo/tview"
)

// CertaHome is the root directory for all certa data under the user's home.
// Layout:
//
//	~/.certa/
//	├── configs/certa.yaml     ← client configuration
//	├── secrets/certa.kdbx     ← KeePass database with backend accounts
//	├── keys/certa.key         ← KeePass key file (auto-generated)
//	└── logs/<name>.log        ← host + per-feature log files
const CertaHome = ".certa"

// FeatureMetadata describes a feature shown in the host sidebar.
type FeatureMetadata struct {
	Name        string    // unique identifier, used as the sidebar entry
	Version     string    // semver
	Description string    // one-line summary shown in the header
	Author      string
	License     string
	Tags        []string
	LastUpdated time.Time
}

// Feature is the minimal interface every feature must implement.
// Start is the mount point: a feature subscribes to the stores it reads
// from here and returns the primitive the host places in the main frame.
type Feature interface {
	Start(*tview.Application) tview.Primitive
	GetMetadata() FeatureMetadata
}

// Stoppable is the unmount hook. The host calls Stop on the active feature
// before starting another one; features must drop every store subscription.
type Stoppable interface {
	Stop()
}

// CertaDir returns the absolute path to ~/.certa.
// CERTA_HOME overrides the location, which the tests rely on.
func CertaDir() string {
	if dir := os.Getenv("CERTA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		panic("cannot resolve user home directory: " + err.Error())
	}
	return filepath.Join(home, CertaHome)
}

// ConfigsDir returns the absolute path to ~/.certa/configs.
func ConfigsDir() string {
	return filepath.Join(CertaDir(), "configs")
}

// LogsDir returns the absolute path to ~/.certa/logs.
func LogsDir() string {
	return filepath.Join(CertaDir(), "logs")
}

// DefaultConfigPath returns ~/.certa/configs/certa.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigsDir(), "certa.yaml")
}

// NewHTTPClient returns an http.Client that forces IPv4 connections.
// Some environments (notably Termux on Android) advertise IPv6 but fail
// to route it, so "tcp4" is used for every dial.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp4", addr)
		},
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
