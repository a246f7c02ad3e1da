package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/stats"
	"github.com/2beens/fittracker/internal/fitness/tracker"
	"github.com/2beens/fittracker/internal/fitness/users"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var _ tracker.Store = (*Client)(nil)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fittracker api: %d %s", e.StatusCode, e.Message)
}

// Client talks to the fittracker HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func entriesPath(userID string, modality records.Modality) string {
	return fmt.Sprintf("/users/%s/entries/%s", url.PathEscape(userID), modality)
}

func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	var resp users.ListResponse
	if err := c.do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) ListRecords(ctx context.Context, userID string, modality records.Modality) ([]records.Record, error) {
	var resp records.ListResponse
	if err := c.do(ctx, http.MethodGet, entriesPath(userID, modality), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *Client) CreateRecord(ctx context.Context, record records.Record) (string, error) {
	var resp records.AddResponse
	if err := c.do(ctx, http.MethodPost, entriesPath(record.UserID, record.Modality()), record, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) DeleteRecord(ctx context.Context, userID string, modality records.Modality, id string) error {
	path := entriesPath(userID, modality) + "/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// UserStats fetches the chart series and rolling totals of a user at ref.
func (c *Client) UserStats(ctx context.Context, userID string, modality records.Modality, ref time.Time) (*stats.UserStats, error) {
	path := fmt.Sprintf("/users/%s/stats/%s?at=%s", url.PathEscape(userID), modality, url.QueryEscape(ref.Format(time.RFC3339Nano)))
	var resp stats.UserStats
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Overview(ctx context.Context, modality records.Modality) (*stats.Overview, error) {
	var resp stats.Overview
	if err := c.do(ctx, http.MethodGet, "/overview/"+modality.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBytes)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
