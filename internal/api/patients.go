package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"certa/internal/models"
)

// ListPatients calls GET /patients.
func (c *Client) ListPatients(ctx context.Context, f models.PatientFilter) (models.Page[models.Patient], error) {
	q := url.Values{}
	setString(q, "search", f.Search)
	if f.Active != nil {
		q.Set("active", strconv.FormatBool(*f.Active))
	}
	setInt(q, "page", f.Page)
	setInt(q, "pageSize", f.PageSize)

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/patients", q, nil, &raw); err != nil {
		return models.Page[models.Patient]{}, err
	}
	page, err := decodeList[models.Patient](raw)
	if err != nil {
		return page, fmt.Errorf("decode patients: %w", err)
	}
	return page, nil
}

// GetPatient calls GET /patients/{id}.
func (c *Client) GetPatient(ctx context.Context, id string) (models.Patient, error) {
	var p models.Patient
	err := c.do(ctx, http.MethodGet, "/patients/"+url.PathEscape(id), nil, nil, &p)
	return p, err
}

// CreatePatient calls POST /patients.
func (c *Client) CreatePatient(ctx context.Context, in models.PatientInput) (models.Patient, error) {
	var p models.Patient
	err := c.do(ctx, http.MethodPost, "/patients", nil, in, &p)
	return p, err
}

// UpdatePatient calls PUT /patients/{id}.
func (c *Client) UpdatePatient(ctx context.Context, id string, in models.PatientInput) (models.Patient, error) {
	var p models.Patient
	err := c.do(ctx, http.MethodPut, "/patients/"+url.PathEscape(id), nil, in, &p)
	return p, err
}

// DeletePatient calls DELETE /patients/{id}.
func (c *Client) DeletePatient(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/patients/"+url.PathEscape(id), nil, nil, nil)
}
