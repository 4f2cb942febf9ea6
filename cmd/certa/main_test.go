package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certa/internal/models"
)

// execute runs the root command with args against a fresh CERTA_HOME.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CERTA_HOME", t.TempDir())
	configPath, accountName, envFile, pdfDir = "", "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPDFCommandSavesFile(t *testing.T) {
	pdf := []byte("%PDF-1.7 certification")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /certifications/c1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": models.Certification{
			ID: "c1", Month: 3, Year: 2026,
			Patient: &models.PatientSummary{FirstName: "Ada", LastName: "Lovelace"},
		}})
	})
	mux.HandleFunc("GET /certifications/c1/sessions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []models.TherapySession{}})
	})
	mux.HandleFunc("GET /certifications/c1/certification-pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	t.Setenv("CERTA_API_URL", srv.URL)

	dir := t.TempDir()
	out, err := execute(t, "pdf", "c1", "-o", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "certification-ada-lovelace-2026-03.pdf")
	assert.Contains(t, out, "Saved "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdf, data)
}

func TestPDFCommandUnknownAccount(t *testing.T) {
	_, err := execute(t, "pdf", "c1", "--account", "nope")
	assert.EqualError(t, err, `account "nope" not found`)
}

func TestAccountsCommandListsSeededStore(t *testing.T) {
	out, err := execute(t, "accounts")
	require.NoError(t, err)
	// The seeded example has no URL, so nothing is usable yet.
	assert.Contains(t, out, "No accounts.")
}
