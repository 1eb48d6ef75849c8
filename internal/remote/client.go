// Package remote talks to the instance's REST table API
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/standardbeagle/nowmeta/internal/config"
	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/version"
)

const tablePath = "/api/now/table/"

// maxErrorBody bounds how much of a failed response is kept
const maxErrorBody = 4096

// DisplayMode maps to sysparm_display_value
type DisplayMode string

const (
	// DisplayRaw returns stored values only
	DisplayRaw DisplayMode = "false"
	// DisplayLabels returns display values only
	DisplayLabels DisplayMode = "true"
	// DisplayBoth returns {value, display_value} pairs
	DisplayBoth DisplayMode = "all"
)

// Request is one table read
type Request struct {
	Table   string
	Query   string
	Fields  []string
	Limit   int
	Display DisplayMode
}

// Querier reads records from a remote table. Implementations must be safe
// for concurrent use.
type Querier interface {
	Query(ctx context.Context, req Request) ([]normalize.Record, error)
}

// Client is the HTTP implementation of Querier
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
	UserAgent  string
}

// NewClient builds a client from validated remote settings
func NewClient(remote config.Remote) *Client {
	timeout := remote.TimeoutSec
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSec
	}
	return &Client{
		BaseURL:  strings.TrimRight(remote.URL, "/"),
		Username: remote.Username,
		Password: remote.Password,
		HTTPClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		UserAgent: "nowmeta/" + version.Version,
	}
}

type tableResponse struct {
	Result []normalize.Record `json:"result"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error"`
	Status string `json:"status"`
}

// Query issues GET /api/now/table/{table}
func (c *Client) Query(ctx context.Context, req Request) ([]normalize.Record, error) {
	if req.Table == "" {
		return nil, nmerrors.NewMissingFieldError("table")
	}

	fullURL := c.BaseURL + tablePath + url.PathEscape(req.Table) + "?" + encodeParams(req).Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, nmerrors.NewTransportError(req.Table, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Username != "" {
		httpReq.SetBasicAuth(c.Username, c.Password)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, nmerrors.NewTransportError(req.Table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, decodeError(req.Table, resp.StatusCode, body)
	}

	var out tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nmerrors.NewTransportError(req.Table, fmt.Errorf("failed to decode response: %w", err))
	}
	if out.Result == nil {
		return []normalize.Record{}, nil
	}
	return out.Result, nil
}

func encodeParams(req Request) url.Values {
	v := url.Values{}
	if req.Query != "" {
		v.Set("sysparm_query", req.Query)
	}
	if len(req.Fields) > 0 {
		v.Set("sysparm_fields", strings.Join(req.Fields, ","))
	}
	if req.Limit > 0 {
		v.Set("sysparm_limit", strconv.Itoa(req.Limit))
	}
	display := req.Display
	if display == "" {
		display = DisplayRaw
	}
	v.Set("sysparm_display_value", string(display))
	v.Set("sysparm_exclude_reference_link", "true")
	return v
}

// decodeError keeps the remote message and detail when the body is the
// API's error envelope and falls back to the status text otherwise
func decodeError(table string, status int, body []byte) error {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return nmerrors.NewRemoteError(table, status, envelope.Error.Message, envelope.Error.Detail)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return nmerrors.NewRemoteError(table, status, msg, "")
}
