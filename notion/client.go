package notion

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

	goerrors "github.com/goliatone/go-errors"

	"github.com/daypulse/daypulse/core"
)

const defaultClientTimeout = 30 * time.Second
const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB
const defaultAPIVersion = "2022-06-28"
const defaultPageSize = 100

// DateProperty is the collection property the sync engine keys on.
const DateProperty = "Date"

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the destination document store's REST API.
type Client struct {
	baseURL              string
	token                string
	version              string
	httpClient           HTTPDoer
	maxResponseBodyBytes int64
}

type ClientOption func(*Client)

func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

func WithResponseBodyLimit(limit int64) ClientOption {
	return func(c *Client) {
		c.maxResponseBodyBytes = limit
	}
}

func NewClient(cfg core.DestinationConfig, options ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, goerrors.New("notion: base url is required", goerrors.CategoryValidation).
			WithTextCode(core.SyncErrorConfigInvalid)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "notion: invalid base url").
			WithTextCode(core.SyncErrorConfigInvalid)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, goerrors.New("notion: token is required", goerrors.CategoryValidation).
			WithTextCode(core.SyncErrorConfigInvalid)
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = defaultAPIVersion
	}

	client := &Client{
		baseURL:              baseURL,
		token:                token,
		version:              version,
		httpClient:           &http.Client{Timeout: defaultClientTimeout},
		maxResponseBodyBytes: defaultResponseBodyLimit,
	}
	for _, option := range options {
		if option != nil {
			option(client)
		}
	}
	return client, nil
}

// QueryByDateRange returns one page of records whose Date property falls in
// the inclusive range.
func (c *Client) QueryByDateRange(ctx context.Context, q core.SinkQuery) (core.SinkPage, error) {
	collection := strings.TrimSpace(q.Collection)
	if collection == "" {
		return core.SinkPage{}, goerrors.New("notion: collection id is required", goerrors.CategoryBadInput).
			WithTextCode(core.SyncErrorBadInput)
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	body := map[string]any{
		"page_size": pageSize,
		"filter": map[string]any{
			"and": []any{
				map[string]any{"property": DateProperty, "date": map[string]any{"on_or_after": q.StartDate}},
				map[string]any{"property": DateProperty, "date": map[string]any{"on_or_before": q.EndDate}},
			},
		},
	}
	if cursor := strings.TrimSpace(q.Cursor); cursor != "" {
		body["start_cursor"] = cursor
	}

	raw, err := c.do(ctx, http.MethodPost, "/databases/"+url.PathEscape(collection)+"/query", body)
	if err != nil {
		return core.SinkPage{}, err
	}

	var decoded struct {
		Results []struct {
			ID         string                    `json:"id"`
			Properties map[string]map[string]any `json:"properties"`
		} `json:"results"`
		HasMore    bool   `json:"has_more"`
		NextCursor string `json:"next_cursor"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return core.SinkPage{}, goerrors.Wrap(err, goerrors.CategoryExternal, "notion: decode query response").
			WithTextCode(core.SyncErrorIndexFailed)
	}

	page := core.SinkPage{HasMore: decoded.HasMore, NextCursor: decoded.NextCursor}
	for _, result := range decoded.Results {
		row := core.SinkRow{
			ID:     result.ID,
			Fields: flattenProperties(result.Properties),
		}
		if date, ok := row.Fields[DateProperty].(string); ok && len(date) >= 10 {
			row.Date = date[:10]
		}
		page.Rows = append(page.Rows, row)
	}
	return page, nil
}

// CreateRecord creates one record and returns its id.
func (c *Client) CreateRecord(ctx context.Context, in core.CreateRecordInput) (string, error) {
	collection := strings.TrimSpace(in.Collection)
	if collection == "" {
		return "", goerrors.New("notion: collection id is required", goerrors.CategoryBadInput).
			WithTextCode(core.SyncErrorBadInput)
	}

	body := map[string]any{
		"parent":     map[string]any{"database_id": collection},
		"properties": buildProperties(in.Fields),
	}
	if icon := buildIcon(in.Icon); icon != nil {
		body["icon"] = icon
	}

	raw, err := c.do(ctx, http.MethodPost, "/pages", body)
	if err != nil {
		return "", err
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryExternal, "notion: decode create response").
			WithTextCode(core.SyncErrorWriteFailed)
	}
	return decoded.ID, nil
}

// UpdateRecord overwrites the given fields on an existing record.
func (c *Client) UpdateRecord(ctx context.Context, recordID string, fields core.FieldSet) error {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return goerrors.New("notion: record id is required", goerrors.CategoryBadInput).
			WithTextCode(core.SyncErrorBadInput)
	}

	_, err := c.do(ctx, http.MethodPatch, "/pages/"+url.PathEscape(recordID), map[string]any{
		"properties": buildProperties(fields),
	})
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body map[string]any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "notion: encode request").
			WithTextCode(core.SyncErrorInternal)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "notion: create request").
			WithTextCode(core.SyncErrorInternal)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "notion: execute request").
			WithTextCode(core.SyncErrorWriteFailed)
	}
	defer res.Body.Close()

	raw, err := c.readBody(res.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, goerrors.New("notion: rate limited", goerrors.CategoryRateLimit).
			WithTextCode(core.SyncErrorThrottled)
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return nil, goerrors.New(
			fmt.Sprintf("notion: request rejected with status %d", res.StatusCode),
			goerrors.CategoryAuth,
		).WithTextCode(core.SyncErrorWriteFailed)
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, goerrors.New(
			fmt.Sprintf("notion: unexpected status %d: %s", res.StatusCode, truncateBody(raw)),
			goerrors.CategoryExternal,
		).WithTextCode(core.SyncErrorWriteFailed)
	}
	return raw, nil
}

func (c *Client) readBody(reader io.Reader) ([]byte, error) {
	limit := c.maxResponseBodyBytes
	if limit <= 0 {
		limit = defaultResponseBodyLimit
	}
	raw, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "notion: read response body").
			WithTextCode(core.SyncErrorWriteFailed)
	}
	if int64(len(raw)) > limit {
		return nil, goerrors.New(
			fmt.Sprintf("notion: response body exceeds limit of %d bytes", limit),
			goerrors.CategoryExternal,
		).WithTextCode(core.SyncErrorWriteFailed)
	}
	return raw, nil
}

func truncateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

var _ core.StoreClient = (*Client)(nil)
