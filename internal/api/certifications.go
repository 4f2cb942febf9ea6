package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"certa/internal/models"
)

func certificationQuery(f models.CertificationFilter) url.Values {
	q := url.Values{}
	setString(q, "patientId", f.PatientID)
	setString(q, "therapistId", f.TherapistID)
	setInt(q, "month", f.Month)
	setInt(q, "year", f.Year)
	setString(q, "status", string(f.Status))
	setString(q, "search", f.Search)
	setString(q, "dateFrom", f.DateFrom)
	setString(q, "dateTo", f.DateTo)
	setInt(q, "page", f.Page)
	setInt(q, "pageSize", f.PageSize)
	setString(q, "sort", f.Sort)
	return q
}

// ListCertifications calls GET /certifications.
func (c *Client) ListCertifications(ctx context.Context, f models.CertificationFilter) (models.Page[models.Certification], error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/certifications", certificationQuery(f), nil, &raw); err != nil {
		return models.Page[models.Certification]{}, err
	}
	page, err := decodeList[models.Certification](raw)
	if err != nil {
		return page, fmt.Errorf("decode certifications: %w", err)
	}
	return page, nil
}

// GetCertification calls GET /certifications/{id}. withDetail asks the
// backend to embed sessions and schedules.
func (c *Client) GetCertification(ctx context.Context, id string, withDetail bool) (models.Certification, error) {
	var q url.Values
	if withDetail {
		q = url.Values{"include": {"sessions,schedules"}}
	}
	var cert models.Certification
	err := c.do(ctx, http.MethodGet, "/certifications/"+url.PathEscape(id), q, nil, &cert)
	return cert, err
}

// CreateCertification calls POST /certifications.
func (c *Client) CreateCertification(ctx context.Context, in models.CertificationInput) (models.Certification, error) {
	var cert models.Certification
	err := c.do(ctx, http.MethodPost, "/certifications", nil, in, &cert)
	return cert, err
}

// UpdateCertification calls PUT /certifications/{id}.
func (c *Client) UpdateCertification(ctx context.Context, id string, in models.CertificationInput) (models.Certification, error) {
	var cert models.Certification
	err := c.do(ctx, http.MethodPut, "/certifications/"+url.PathEscape(id), nil, in, &cert)
	return cert, err
}

// DeleteCertification calls DELETE /certifications/{id}.
func (c *Client) DeleteCertification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/certifications/"+url.PathEscape(id), nil, nil, nil)
}

// SubmitCertification calls POST /certifications/{id}/submit.
func (c *Client) SubmitCertification(ctx context.Context, id string) (models.Certification, error) {
	var cert models.Certification
	err := c.do(ctx, http.MethodPost, "/certifications/"+url.PathEscape(id)+"/submit", nil, nil, &cert)
	return cert, err
}

// DownloadCertificationPDF streams GET /certifications/{id}/certification-pdf
// into w and returns the number of bytes written.
func (c *Client) DownloadCertificationPDF(ctx context.Context, id string, w io.Writer) (int64, error) {
	return c.download(ctx, "/certifications/"+url.PathEscape(id)+"/certification-pdf", w)
}

// ReplaceSchedules calls PUT /certifications/{id}/schedules.
func (c *Client) ReplaceSchedules(ctx context.Context, id string, schedules []models.TherapySchedule) ([]models.TherapySchedule, error) {
	var out []models.TherapySchedule
	body := map[string]interface{}{"schedules": schedules}
	err := c.do(ctx, http.MethodPut, "/certifications/"+url.PathEscape(id)+"/schedules", nil, body, &out)
	return out, err
}
