package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/daypulse/daypulse/core"
)

const defaultClientTimeout = 30 * time.Second
const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB

const loginPath = "/auth/login"

var metricPaths = map[core.MetricID]string{
	core.MetricSleep:    "/wellness/daily-sleep",
	core.MetricSteps:    "/wellness/daily-steps",
	core.MetricActivity: "/activities/daily",
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the tracker's REST API: one session login, then one
// day-scoped GET per metric per date. A 401 mid-run re-authenticates once and
// retries, since tracker sessions expire without warning.
type Client struct {
	baseURL              string
	email                string
	password             string
	httpClient           HTTPDoer
	maxResponseBodyBytes int64

	mu    sync.Mutex
	token string
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

func NewClient(cfg core.TrackerConfig, options ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, goerrors.New("garmin: base url is required", goerrors.CategoryValidation).
			WithTextCode(core.SyncErrorConfigInvalid)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "garmin: invalid base url").
			WithTextCode(core.SyncErrorConfigInvalid)
	}

	client := &Client{
		baseURL:              baseURL,
		email:                strings.TrimSpace(cfg.Email),
		password:             cfg.Password,
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

// Login authenticates eagerly. FetchDaily logs in lazily on first use, so
// calling Login is only needed to fail fast on bad credentials.
func (c *Client) Login(ctx context.Context) error {
	_, err := c.ensureToken(ctx, true)
	return err
}

// FetchDaily returns the raw metric payload for one date. A 404 or an empty
// body reads as no data for the day, not an error.
func (c *Client) FetchDaily(ctx context.Context, metric core.MetricID, date string) (core.SourceRecord, bool, error) {
	path, ok := metricPaths[metric]
	if !ok {
		return core.SourceRecord{}, false, core.MetricNotFoundError(string(metric))
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return core.SourceRecord{}, false, goerrors.New("garmin: date is required", goerrors.CategoryBadInput).
			WithTextCode(core.SyncErrorBadInput)
	}

	payload, found, err := c.getDaily(ctx, path, date, false)
	if err != nil {
		return core.SourceRecord{}, false, err
	}
	if !found {
		return core.SourceRecord{}, false, nil
	}
	return core.SourceRecord{Metric: metric, Date: date, Payload: payload}, true, nil
}

func (c *Client) getDaily(ctx context.Context, path, date string, retried bool) (map[string]any, bool, error) {
	token, err := c.ensureToken(ctx, false)
	if err != nil {
		return nil, false, err
	}

	endpoint := c.baseURL + path + "?date=" + url.QueryEscape(date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryInternal, "garmin: create request").
			WithTextCode(core.SyncErrorInternal)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, goerrors.Wrap(err, goerrors.CategoryExternal, "garmin: execute request").
			WithTextCode(core.SyncErrorFetchFailed)
	}
	defer res.Body.Close()

	body, err := c.readBody(res.Body)
	if err != nil {
		return nil, false, err
	}

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, false, nil
	case res.StatusCode == http.StatusUnauthorized && !retried:
		c.invalidateToken()
		return c.getDaily(ctx, path, date, true)
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, false, goerrors.New(
			fmt.Sprintf("garmin: rate limited fetching %s", date),
			goerrors.CategoryRateLimit,
		).WithTextCode(core.SyncErrorThrottled)
	case res.StatusCode != http.StatusOK:
		return nil, false, goerrors.New(
			fmt.Sprintf("garmin: unexpected status %d fetching %s", res.StatusCode, date),
			goerrors.CategoryExternal,
		).WithTextCode(core.SyncErrorFetchFailed)
	}

	if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, false, nil
	}

	payload := map[string]any{}
	if err := json.Unmarshal(body, &payload); err != nil {
		// Some endpoints answer with a single-element array per day.
		var list []map[string]any
		if listErr := json.Unmarshal(body, &list); listErr == nil {
			if len(list) == 0 {
				return nil, false, nil
			}
			return list[0], true, nil
		}
		return nil, false, goerrors.Wrap(err, goerrors.CategoryExternal, "garmin: decode response").
			WithTextCode(core.SyncErrorFetchFailed)
	}
	return payload, true, nil
}

func (c *Client) ensureToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && !force {
		return c.token, nil
	}

	if c.email == "" || c.password == "" {
		return "", goerrors.New("garmin: email and password are required", goerrors.CategoryAuth).
			WithTextCode(core.SyncErrorConfigInvalid)
	}

	payload, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "garmin: encode login payload").
			WithTextCode(core.SyncErrorInternal)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "garmin: create login request").
			WithTextCode(core.SyncErrorInternal)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryExternal, "garmin: execute login request").
			WithTextCode(core.SyncErrorFetchFailed)
	}
	defer res.Body.Close()

	body, err := c.readBody(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return "", goerrors.New("garmin: login rejected", goerrors.CategoryAuth).
			WithTextCode(core.SyncErrorFetchFailed)
	}
	if res.StatusCode != http.StatusOK {
		return "", goerrors.New(
			fmt.Sprintf("garmin: unexpected login status %d", res.StatusCode),
			goerrors.CategoryExternal,
		).WithTextCode(core.SyncErrorFetchFailed)
	}

	var decoded struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryExternal, "garmin: decode login response").
			WithTextCode(core.SyncErrorFetchFailed)
	}
	if strings.TrimSpace(decoded.Token) == "" {
		return "", goerrors.New("garmin: login response missing token", goerrors.CategoryExternal).
			WithTextCode(core.SyncErrorFetchFailed)
	}
	c.token = strings.TrimSpace(decoded.Token)
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) readBody(reader io.Reader) ([]byte, error) {
	limit := c.maxResponseBodyBytes
	if limit <= 0 {
		limit = defaultResponseBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "garmin: read response body").
			WithTextCode(core.SyncErrorFetchFailed)
	}
	if int64(len(body)) > limit {
		return nil, goerrors.New(
			fmt.Sprintf("garmin: response body exceeds limit of %d bytes", limit),
			goerrors.CategoryExternal,
		).WithTextCode(core.SyncErrorFetchFailed)
	}
	return body, nil
}

var _ core.TrackerClient = (*Client)(nil)
