package appapi

import (
	"fmt"
	"sync"
)

// SecretsProvider is the interface features use to read/write secrets.
// The concrete implementation lives in pkg/secrets.
type SecretsProvider interface {
	Get(path string) (*SecretEntry, error)
	Put(path string, entry *SecretEntry) error
	Delete(path string) error
	List(prefix string) ([]string, error)
	Close() error
}

// SecretEntry mirrors secrets.Entry so features don't import pkg/secrets.
type SecretEntry struct {
	Title            string
	UserName         string
	Password         string
	URL              string
	Notes            string
	CustomAttributes map[string]string
}

var (
	globalSecrets   SecretsProvider
	globalSecretsMu sync.RWMutex
)

// SetSecretsProvider registers the global secrets provider.
// Called once by cmd/certa during startup.
func SetSecretsProvider(p SecretsProvider) {
	globalSecretsMu.Lock()
	defer globalSecretsMu.Unlock()
	globalSecrets = p
}

// Secrets returns the global secrets provider.
// Panics if the provider has not been initialised.
func Secrets() SecretsProvider {
	globalSecretsMu.RLock()
	defer globalSecretsMu.RUnlock()
	if globalSecrets == nil {
		panic("appapi.Secrets() called before SetSecretsProvider()")
	}
	return globalSecrets
}

// HasSecrets reports whether a secrets provider has been initialised.
func HasSecrets() bool {
	globalSecretsMu.RLock()
	defer globalSecretsMu.RUnlock()
	return globalSecrets != nil
}

// ResolveSecret returns the entry at path (e.g. "backend/production/clinic").
func ResolveSecret(path string) (*SecretEntry, error) {
	if !HasSecrets() {
		return nil, fmt.Errorf("secrets provider not available")
	}
	return Secrets().Get(path)
}
