package certifications

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"certa/internal/models"
	"certa/internal/store"
)

// PDFFileName returns "certification-<patient>-<yyyy>-<mm>.pdf" with the
// patient name reduced to lower-case ASCII words joined by dashes.
func PDFFileName(cert models.Certification) string {
	patient := slug(cert.PatientName())
	if patient == "" {
		patient = slug(cert.ID)
	}
	return fmt.Sprintf("certification-%s-%04d-%02d.pdf", patient, cert.Year, cert.Month)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// DownloadPDF streams the rendered certification into dir and returns the
// file path and its size. A failed download leaves no partial file behind.
func DownloadPDF(ctx context.Context, certs *store.CertificationStore, cert models.Certification, dir string) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, PDFFileName(cert))

	tmp, err := os.CreateTemp(dir, ".certification-*.pdf")
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := certs.DownloadPDF(ctx, cert.ID, tmp)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", n, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", n, fmt.Errorf("save %s: %w", path, err)
	}
	return path, n, nil
}
