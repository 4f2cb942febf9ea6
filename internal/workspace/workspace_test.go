package workspace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certa/internal/api"
	"certa/internal/config"
	"certa/internal/models"
)

func TestNewWiresStoresToTheAccount(t *testing.T) {
	t.Setenv("CERTA_HOME", t.TempDir())
	var expired atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acct-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Token expired"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data":   []models.Patient{{ID: "p1", FirstName: "Ada", LastName: "Lovelace"}},
		})
	}))
	defer srv.Close()

	cfg := config.Default()
	acct := &config.Account{Name: "clinic", Environment: "production", URL: srv.URL, Token: "acct-token"}
	ws, err := New(cfg, acct, Options{OnSessionExpired: func() { expired.Add(1) }})
	require.NoError(t, err)
	assert.Equal(t, "production/clinic", ws.Label())

	require.NoError(t, ws.Patients.Load(context.Background(), models.PatientFilter{}))
	p, ok := ws.Patients.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", p.FullName())

	bad := &config.Account{Name: "old", Environment: "production", URL: srv.URL, Token: "stale"}
	ws2, err := New(cfg, bad, Options{OnSessionExpired: func() { expired.Add(1) }})
	require.NoError(t, err)
	err = ws2.Certifications.Load(context.Background(), models.CertificationFilter{})
	assert.ErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, int32(1), expired.Load())
	assert.Equal(t, "Token expired", ws2.Certifications.Snapshot().LastError)
}

func TestNewWithoutURLFails(t *testing.T) {
	t.Setenv("CERTA_HOME", t.TempDir())
	_, err := New(config.Default(), nil, Options{})
	assert.Error(t, err)
}
