package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"certa/pkg/appapi"
	"certa/pkg/secrets"
)

// SecretsSection is the top-level KeePass group holding backend accounts.
const SecretsSection = secrets.BackendSection

// Account is a backend login built from a KeePass entry
// (backend/<environment>/<name>).
type Account struct {
	Name        string
	Environment string
	URL         string
	UserName    string
	Token       string
	TherapistID string
	Timezone    string
	Description string
}

// Path is the account's KeePass path.
func (a Account) Path() string {
	return SecretsSection + "/" + a.Environment + "/" + a.Name
}

// Label renders "production/clinic".
func (a Account) Label() string {
	return a.Environment + "/" + a.Name
}

// Connection is everything the API client needs.
type Connection struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	TherapistID string
	Location    *time.Location
}

// DiscoverAccounts lists usable accounts in the enabled environments,
// sorted by environment then name. Entries without URL or token are skipped.
func DiscoverAccounts(p appapi.SecretsProvider, cfg *Config) ([]Account, error) {
	if p == nil {
		return nil, fmt.Errorf("secrets provider not available")
	}
	paths, err := p.List(SecretsSection + "/")
	if err != nil {
		return nil, fmt.Errorf("list backend secrets: %w", err)
	}
	enabled := cfg.EnabledEnvironments()

	var accounts []Account
	for _, path := range paths {
		env := extractEnvironment(path)
		if env == "" || !enabled[env] {
			continue
		}
		entry, err := p.Get(path)
		if err != nil {
			continue
		}
		acct := entryToAccount(entry, env)
		if acct.URL == "" || acct.Token == "" {
			continue
		}
		accounts = append(accounts, acct)
	}

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Environment != accounts[j].Environment {
			return accounts[i].Environment < accounts[j].Environment
		}
		return accounts[i].Name < accounts[j].Name
	})
	return accounts, nil
}

func extractEnvironment(path string) string {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

func entryToAccount(entry *appapi.SecretEntry, env string) Account {
	acct := Account{
		Name:        entry.Title,
		Environment: env,
		URL:         strings.TrimRight(entry.URL, "/"),
		UserName:    entry.UserName,
		Token:       entry.Password,
		Description: entry.Notes,
	}
	if ca := entry.CustomAttributes; ca != nil {
		acct.TherapistID = ca[secrets.AttrTherapistID]
		acct.Timezone = ca[secrets.AttrTimezone]
	}
	return acct
}

// FindAccount matches selector against "env/name" first, then a bare name.
func FindAccount(accounts []Account, selector string) (Account, bool) {
	for _, a := range accounts {
		if a.Label() == selector {
			return a, true
		}
	}
	for _, a := range accounts {
		if a.Name == selector {
			return a, true
		}
	}
	return Account{}, false
}

// EnsureExampleAccount seeds a placeholder entry so the group layout is
// visible in KeePass on first run.
func EnsureExampleAccount(p appapi.SecretsProvider) error {
	existing, err := p.List(SecretsSection + "/")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return p.Put(SecretsSection+"/development/example", &appapi.SecretEntry{
		Title:    "example",
		UserName: "therapist@example.com",
		URL:      "",
		Notes:    "Set URL to the API base URL and Password to the API token.",
		CustomAttributes: map[string]string{
			secrets.AttrTherapistID: "",
			secrets.AttrTimezone:    "",
		},
	})
}

// Connect merges an optional account with the configuration. The account
// supplies URL and token; config and env fill in whatever it leaves empty.
func Connect(cfg *Config, acct *Account) (Connection, error) {
	conn := Connection{
		BaseURL: strings.TrimRight(cfg.API.URL, "/"),
		Token:   cfg.Token,
		Timeout: cfg.Timeout(),
	}
	tz := cfg.Timezone
	if acct != nil {
		conn.BaseURL = acct.URL
		conn.Token = acct.Token
		conn.TherapistID = acct.TherapistID
		if acct.Timezone != "" {
			tz = acct.Timezone
		}
	}
	if conn.BaseURL == "" {
		return Connection{}, fmt.Errorf("no API URL: select an account or set %s", EnvAPIURL)
	}

	loc := time.Local
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return Connection{}, fmt.Errorf("timezone %q: %w", tz, err)
		}
		loc = l
	}
	conn.Location = loc
	return conn, nil
}
