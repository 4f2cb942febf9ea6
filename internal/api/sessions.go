package api

import (
	"context"
	"net/http"
	"net/url"

	"certa/internal/models"
)

// ListSessions calls GET /certifications/{id}/sessions.
func (c *Client) ListSessions(ctx context.Context, certificationID string) ([]models.TherapySession, error) {
	var out []models.TherapySession
	err := c.do(ctx, http.MethodGet, "/certifications/"+url.PathEscape(certificationID)+"/sessions", nil, nil, &out)
	return out, err
}

// CreateSession calls POST /certifications/{id}/sessions.
func (c *Client) CreateSession(ctx context.Context, certificationID string, in models.SessionInput) (models.TherapySession, error) {
	var s models.TherapySession
	err := c.do(ctx, http.MethodPost, "/certifications/"+url.PathEscape(certificationID)+"/sessions", nil, in, &s)
	return s, err
}

// GetSession calls GET /sessions/{id}.
func (c *Client) GetSession(ctx context.Context, id string) (models.TherapySession, error) {
	var s models.TherapySession
	err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(id), nil, nil, &s)
	return s, err
}

// UpdateSession calls PUT /sessions/{id}.
func (c *Client) UpdateSession(ctx context.Context, id string, in models.SessionInput) (models.TherapySession, error) {
	var s models.TherapySession
	err := c.do(ctx, http.MethodPut, "/sessions/"+url.PathEscape(id), nil, in, &s)
	return s, err
}

// DeleteSession calls DELETE /sessions/{id}.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil, nil, nil)
}

// SignSession calls POST /sessions/{id}/signature with a PNG signature.
func (c *Client) SignSession(ctx context.Context, id, signerName string, png []byte) (models.TherapySession, error) {
	var s models.TherapySession
	body := map[string]interface{}{"signerName": signerName, "signature": png}
	err := c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(id)+"/signature", nil, body, &s)
	return s, err
}
