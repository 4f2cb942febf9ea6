// Package api is the REST client for the certification backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"certa/internal/models"
	"certa/pkg/appapi"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// HTTPClient overrides the default appapi.NewHTTPClient(Timeout).
	HTTPClient *http.Client
	// OnSessionExpired runs once per 401 response, before the error is
	// returned to the caller.
	OnSessionExpired func()
}

// Client talks to the certification backend. It is safe for concurrent use.
type Client struct {
	baseURL          string
	token            string
	httpClient       *http.Client
	onSessionExpired func()
	logger           *zap.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = appapi.NewHTTPClient(timeout)
	}
	return &Client{
		baseURL:          strings.TrimRight(opts.BaseURL, "/"),
		token:            opts.Token,
		httpClient:       hc,
		onSessionExpired: opts.OnSessionExpired,
		logger:           appapi.Log().Zap().Named("api"),
	}
}

// SetLogger replaces the structured logger.
func (c *Client) SetLogger(l *zap.Logger) {
	if l != nil {
		c.logger = l
	}
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the shape every JSON response is expected to have.
type envelope struct {
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// failure reports the code carried by an error envelope. Status may be a
// number ("status": 400), a numeric string, or a failure word like "error".
// Record statuses such as "draft" or "completed" are not envelope failures.
func (e envelope) failure() (code int, failed bool) {
	raw := bytes.TrimSpace(e.Status)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n int
	if json.Unmarshal(raw, &n) != nil {
		var word string
		if json.Unmarshal(raw, &word) != nil {
			return 0, false
		}
		switch strings.ToLower(word) {
		case "error", "fail", "failed", "failure":
			return http.StatusBadRequest, true
		}
		if n, _ = strconv.Atoi(word); n == 0 {
			return 0, false
		}
	}
	return n, n != 0 && (n < 200 || n >= 300)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send performs req and turns transport failures and non-2xx responses into
// *Error. On success the caller owns resp.Body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Path),
			zap.String("request_id", req.Header.Get("X-Request-ID")),
			zap.Error(err))
		return nil, networkError(err)
	}

	c.logger.Debug("request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var env envelope
	message := ""
	if json.Unmarshal(data, &env) == nil {
		message = env.Message
	}
	return nil, c.reject(resp.StatusCode, message)
}

// reject builds the *Error for a failed response and fires the session
// expired hook on 401.
func (c *Client) reject(status int, message string) *Error {
	apiErr := backendError(status, message)
	if apiErr.Kind == KindSessionExpired && c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	return apiErr
}

// do issues a JSON request and decodes the envelope's data into out (which
// may be nil for empty-bodied responses).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(fmt.Errorf("read response: %w", err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	payload := data
	var env envelope
	if json.Unmarshal(data, &env) == nil {
		if code, failed := env.failure(); failed {
			c.logger.Warn("error envelope on success status",
				zap.String("method", method),
				zap.String("url", path),
				zap.Int("http_status", resp.StatusCode),
				zap.Int("status", code))
			return c.reject(code, env.Message)
		}
		if len(env.Data) > 0 {
			payload = env.Data
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// download streams a binary response body into w.
func (c *Client) download(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, networkError(fmt.Errorf("stream %s: %w", path, err))
	}
	return n, nil
}

// decodeList accepts either a paginated object or a bare array.
func decodeList[T any](raw json.RawMessage) (models.Page[T], error) {
	var page models.Page[T]
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Items); err != nil {
			return page, err
		}
		page.Total = len(page.Items)
		return page, nil
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return page, err
	}
	return page, nil
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, fmt.Sprint(v))
	}
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}
