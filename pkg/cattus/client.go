// Package cattus is the Go client for the cattus dashboard API. It covers
// the activity feed pipeline: paginated fetching, the load-more timeline and
// the realtime update channel.
package cattus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/types"
)

// ErrUnauthorized is returned on a 401 so the embedding app can clear its
// stored token and send the user back to login.
var ErrUnauthorized = errors.New("cattus: unauthorized")

// Client talks to the cattus REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialProvider
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client for the API at baseURL. Credentials are injected,
// never read from globals.
func NewClient(baseURL string, creds CredentialProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		creds:      creds,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ActivitiesByCat returns one page of a cat's activity history, newest first.
func (c *Client) ActivitiesByCat(ctx context.Context, catID int64, offset, limit int) ([]models.Activity, error) {
	path := fmt.Sprintf("/activities/%d/cat?offset=%d&limit=%d", catID, offset, limit)
	return c.fetchActivities(ctx, path, limit)
}

// ActivitiesByCamera returns one page of a camera's feed. The server has
// historically ignored pagination on this endpoint, so the page size is also
// enforced here; the hasMore heuristic upstream stays sound either way.
func (c *Client) ActivitiesByCamera(ctx context.Context, cameraID int64, offset, limit int) ([]models.Activity, error) {
	path := fmt.Sprintf("/activities/camera/%d?offset=%d&limit=%d", cameraID, offset, limit)
	return c.fetchActivities(ctx, path, limit)
}

// ActivitiesByCompany returns one page of the company-wide feed with cat and
// camera relations embedded.
func (c *Client) ActivitiesByCompany(ctx context.Context, companyID int64, offset, limit int) ([]models.Activity, error) {
	q := url.Values{}
	q.Set("offset", fmt.Sprint(offset))
	q.Set("limit", fmt.Sprint(limit))
	q.Set("relations", "cat,camera")
	path := fmt.Sprintf("/activities/%d/company?%s", companyID, q.Encode())
	return c.fetchActivities(ctx, path, limit)
}

// CreateActivity registers an administrative activity record.
func (c *Client) CreateActivity(ctx context.Context, a models.Activity) (*models.Activity, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, "/activities", body)
	if err != nil {
		return nil, err
	}
	var created wireActivity
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("cattus: decode created activity: %w", err)
	}
	norm, ok := created.normalize()
	if !ok {
		return nil, errors.New("cattus: created activity missing start time")
	}
	return &norm, nil
}

// fetchActivities performs the GET, normalizes legacy shapes and enforces the
// requested limit. Failures return an empty (non-nil) slice together with the
// error so callers can always render the empty state without nil checks.
func (c *Client) fetchActivities(ctx context.Context, path string, limit int) ([]models.Activity, error) {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		c.logger.Error("activity fetch failed", "path", path, "err", err)
		return []models.Activity{}, err
	}

	var raw []wireActivity
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Error("activity payload malformed", "path", path, "err", err)
		return []models.Activity{}, fmt.Errorf("cattus: decode activities: %w", err)
	}

	out := make([]models.Activity, 0, len(raw))
	for _, w := range raw {
		a, ok := w.normalize()
		if !ok {
			continue
		}
		out = append(out, a)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	token, err := c.creds.Token()
	if err != nil {
		return nil, fmt.Errorf("cattus: credentials: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cattus: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	var envelope types.APIResponse
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("cattus: decode envelope: %w", err)
	}
	if !envelope.Success {
		msg := envelope.Message
		if msg == "" && envelope.Error != nil {
			msg = envelope.Error.Message
		}
		return nil, fmt.Errorf("cattus: server rejected request: %s", msg)
	}
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
