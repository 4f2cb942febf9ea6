package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certa/pkg/appapi"
	"certa/pkg/secrets"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CERTA_HOME", dir)
	for _, k := range []string{EnvAPIURL, EnvAPIToken, EnvTimeout, EnvDownloadDir, EnvTimezone} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadWritesDefaultOnFirstRun(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "configs", "certa.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 50, cfg.UI.PageSize)
	assert.Equal(t, filepath.Join(dir, "downloads"), cfg.DownloadDir)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# certa client configuration")
	assert.Contains(t, string(data), "timeout_seconds: 30")
	assert.NotContains(t, string(data), "token:")
}

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	isolate(t)
	cfg, err := Parse([]byte("api:\n  url: https://api.clinic.test\nui:\n  page_size: 10\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.clinic.test", cfg.API.URL)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
	assert.Equal(t, 10, cfg.UI.PageSize)
	assert.True(t, cfg.UI.ConfirmDeletes)
}

func TestParseRejectsBadValues(t *testing.T) {
	isolate(t)
	_, err := Parse([]byte("api:\n  timeout_seconds: 0\n"))
	assert.ErrorContains(t, err, "timeout_seconds")

	_, err = Parse([]byte("timezone: Mars/Olympus\n"))
	assert.ErrorContains(t, err, "Mars/Olympus")

	_, err = Parse([]byte("api: [\n"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAPIURL, "https://env.test")
	t.Setenv(EnvAPIToken, "tok")
	t.Setenv(EnvTimeout, "5")
	t.Setenv(EnvDownloadDir, "/tmp/pdfs")
	t.Setenv(EnvTimezone, "Europe/Paris")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "https://env.test", cfg.API.URL)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "/tmp/pdfs", cfg.DownloadDir)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())

	t.Setenv(EnvTimeout, "soon")
	assert.ErrorContains(t, Default().ApplyEnv(), EnvTimeout)
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("CERTA_TEST_ONLY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CERTA_TEST_ONLY") })

	require.NoError(t, LoadEnvFile(envPath))
	assert.Equal(t, "from-file", os.Getenv("CERTA_TEST_ONLY"))

	assert.Error(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}

func newSecrets(t *testing.T) appapi.SecretsProvider {
	t.Helper()
	dir := t.TempDir()
	p, err := secrets.NewWithPaths(filepath.Join(dir, "certa.kdbx"), filepath.Join(dir, "certa.key"))
	require.NoError(t, err)
	a := secrets.NewAdapter(p)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestDiscoverAccounts(t *testing.T) {
	isolate(t)
	p := newSecrets(t)
	put := func(path, url, token string, attrs map[string]string) {
		require.NoError(t, p.Put(path, &appapi.SecretEntry{URL: url, Password: token, CustomAttributes: attrs}))
	}
	put("backend/staging/clinic-b", "https://staging.test/", "t2", nil)
	put("backend/production/clinic-a", "https://prod.test", "t1", map[string]string{"therapist_id": "T1", "timezone": "UTC"})
	put("backend/production/no-token", "https://prod.test", "", nil)
	put("backend/sandbox/hidden", "https://sandbox.test", "t3", nil)
	put("other/production/x", "https://x.test", "t4", nil)

	accounts, err := DiscoverAccounts(p, Default())
	require.NoError(t, err)

	require.Len(t, accounts, 2)
	assert.Equal(t, "production/clinic-a", accounts[0].Label())
	assert.Equal(t, "T1", accounts[0].TherapistID)
	assert.Equal(t, "backend/production/clinic-a", accounts[0].Path())
	assert.Equal(t, "https://staging.test", accounts[1].URL)

	got, ok := FindAccount(accounts, "clinic-b")
	require.True(t, ok)
	assert.Equal(t, "staging", got.Environment)
	_, ok = FindAccount(accounts, "production/clinic-b")
	assert.False(t, ok)
}

func TestEnsureExampleAccountOnlyOnEmptyGroup(t *testing.T) {
	isolate(t)
	p := newSecrets(t)

	require.NoError(t, EnsureExampleAccount(p))
	paths, err := p.List("backend/")
	require.NoError(t, err)
	assert.Equal(t, []string{"backend/development/example"}, paths)

	require.NoError(t, EnsureExampleAccount(p))
	paths, _ = p.List("backend/")
	assert.Len(t, paths, 1)

	accounts, err := DiscoverAccounts(p, Default())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestConnect(t *testing.T) {
	isolate(t)
	cfg := Default()
	_, err := Connect(cfg, nil)
	assert.ErrorContains(t, err, EnvAPIURL)

	cfg.API.URL = "https://cfg.test/"
	cfg.Token = "cfg-token"
	conn, err := Connect(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cfg.test", conn.BaseURL)
	assert.Equal(t, "cfg-token", conn.Token)

	acct := &Account{Name: "a", Environment: "production", URL: "https://acct.test", Token: "acct", TherapistID: "T9", Timezone: "UTC"}
	conn, err = Connect(cfg, acct)
	require.NoError(t, err)
	assert.Equal(t, "https://acct.test", conn.BaseURL)
	assert.Equal(t, "acct", conn.Token)
	assert.Equal(t, "T9", conn.TherapistID)
	assert.Equal(t, time.UTC, conn.Location)
}
