package secrets

import (
	"certa/pkg/appapi"
)

// Adapter exposes a Provider as an appapi.SecretsProvider so features never
// import this package.
type Adapter struct {
	inner Provider
}

// NewAdapter wraps p.
func NewAdapter(p Provider) appapi.SecretsProvider {
	return &Adapter{inner: p}
}

func (a *Adapter) Get(path string) (*appapi.SecretEntry, error) {
	e, err := a.inner.Get(path)
	if err != nil {
		return nil, err
	}
	return &appapi.SecretEntry{
		Title:            e.Title,
		UserName:         e.UserName,
		Password:         e.Password,
		URL:              e.URL,
		Notes:            e.Notes,
		CustomAttributes: copyAttrs(e.CustomAttributes),
	}, nil
}

func (a *Adapter) Put(path string, e *appapi.SecretEntry) error {
	return a.inner.Put(path, &Entry{
		Title:            e.Title,
		UserName:         e.UserName,
		Password:         e.Password,
		URL:              e.URL,
		Notes:            e.Notes,
		CustomAttributes: copyAttrs(e.CustomAttributes),
	})
}

func (a *Adapter) Delete(path string) error { return a.inner.Delete(path) }

func (a *Adapter) List(prefix string) ([]string, error) { return a.inner.List(prefix) }

func (a *Adapter) Close() error { return a.inner.Close() }

func copyAttrs(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
