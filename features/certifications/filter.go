package certifications

import (
	"fmt"
	"strings"
	"time"

	"certa/internal/models"
)

var filterStatuses = []models.CertificationStatus{
	models.StatusDraft,
	models.StatusSubmitted,
	models.StatusApproved,
	models.StatusRejected,
}

// ParseFilter reads the filter modal's free text. A status name sets the
// status, "YYYY-MM" sets the period and the remaining words become the
// search term.
func ParseFilter(text string) models.CertificationFilter {
	var f models.CertificationFilter
	var search []string
	for _, word := range strings.Fields(text) {
		if status, ok := parseStatus(word); ok {
			f.Status = status
			continue
		}
		if t, err := time.Parse("2006-01", word); err == nil {
			f.Year, f.Month = t.Year(), int(t.Month())
			continue
		}
		search = append(search, word)
	}
	f.Search = strings.Join(search, " ")
	return f
}

// FormatFilter is the inverse of ParseFilter, used to pre-fill the modal.
func FormatFilter(f models.CertificationFilter) string {
	var parts []string
	if f.Status != "" {
		parts = append(parts, string(f.Status))
	}
	if f.Year > 0 && f.Month > 0 {
		parts = append(parts, fmt.Sprintf("%04d-%02d", f.Year, f.Month))
	}
	if f.Search != "" {
		parts = append(parts, f.Search)
	}
	return strings.Join(parts, " ")
}

func parseStatus(word string) (models.CertificationStatus, bool) {
	for _, s := range filterStatuses {
		if strings.EqualFold(word, string(s)) {
			return s, true
		}
	}
	return "", false
}
