// Package secrets stores backend accounts for certa in a KeePass database.
//
// The database lives at ~/.certa/secrets/certa.kdbx and is unlocked with a
// key file at ~/.certa/keys/certa.key. Both are created on first run.
//
// Paths follow section/environment/name, e.g. backend/production/clinic.
// A backend account keeps the API base URL in URL, the therapist login in
// UserName and the bearer token in Password; therapist_id and timezone are
// custom attributes. Entries under the backend section are normalised and
// checked on Put; other sections are stored as given.
package secrets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"certa/pkg/appapi"
)

// ErrNotFound is returned when a path does not resolve to an entry.
var ErrNotFound = errors.New("secrets: entry not found")

// BackendSection is the top-level group holding API accounts.
const BackendSection = "backend"

// Custom attributes understood on backend accounts.
const (
	AttrTherapistID = "therapist_id"
	AttrTimezone    = "timezone"
)

// Entry is a single secret with the standard KeePass fields plus custom
// attributes.
type Entry struct {
	Title            string
	UserName         string
	Password         string
	URL              string
	Notes            string
	CustomAttributes map[string]string
}

// Token is the bearer token of a backend account.
func (e *Entry) Token() string { return e.Password }

// TherapistID is the therapist the account signs sessions as.
func (e *Entry) TherapistID() string { return e.CustomAttributes[AttrTherapistID] }

// Timezone is the IANA zone sessions are scheduled in, if set.
func (e *Entry) Timezone() string { return e.CustomAttributes[AttrTimezone] }

// Provider is implemented by every secrets backend.
type Provider interface {
	Get(path string) (*Entry, error)
	Put(path string, entry *Entry) error
	Delete(path string) error
	// List returns entry paths under prefix, sorted.
	List(prefix string) ([]string, error)
	Close() error
}

// DefaultDBPath returns ~/.certa/secrets/certa.kdbx
func DefaultDBPath() string {
	return filepath.Join(appapi.CertaDir(), "secrets", "certa.kdbx")
}

// DefaultKeyPath returns ~/.certa/keys/certa.key
func DefaultKeyPath() string {
	return filepath.Join(appapi.CertaDir(), "keys", "certa.key")
}

// New opens (or bootstraps) the default database.
func New() (Provider, error) {
	return NewWithPaths(DefaultDBPath(), DefaultKeyPath())
}

// entryPath is a parsed section/environment/name.
type entryPath struct {
	section     string
	environment string
	name        string
}

func (p entryPath) String() string {
	return p.section + "/" + p.environment + "/" + p.name
}

func parsePath(path string) (entryPath, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return entryPath{}, fmt.Errorf("secrets: invalid path %q, expected section/environment/name", path)
	}
	for _, p := range parts {
		if p == "" {
			return entryPath{}, fmt.Errorf("secrets: path %q has an empty segment", path)
		}
	}
	return entryPath{section: parts[0], environment: parts[1], name: parts[2]}, nil
}
