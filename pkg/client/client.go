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

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the address of a locally running API server.
	DefaultBaseURL = "http://localhost:8000"

	defaultTimeout      = 30 * time.Second
	defaultRetryInitial = 200 * time.Millisecond
	maxErrorBody        = 64 << 10
)

// Operation names used in logs and metrics.
const (
	opStorePageVisit = "store_page_visit"
	opSemanticSearch = "semantic_search"
	opShowResults    = "show_results"
)

// Client talks to the pasttense HTTP API. It is safe for concurrent use.
type Client struct {
	baseURL      string
	http         *http.Client
	apiKey       string
	retries      int
	retryInitial time.Duration
	obs          *observer
}

// New creates a Client for baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("pasttense: parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("pasttense: base url must be an absolute http(s) url, got %q", baseURL)
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.retries < 0 {
		return nil, fmt.Errorf("pasttense: retries must not be negative, got %d", cfg.retries)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         httpClient(cfg),
		apiKey:       cfg.apiKey,
		retries:      cfg.retries,
		retryInitial: defaultRetryInitial,
		obs:          obs,
	}, nil
}

func httpClient(cfg *clientConfig) *http.Client {
	if cfg.httpClient == nil {
		return &http.Client{Timeout: cfg.timeout}
	}
	if cfg.timeout <= 0 || cfg.httpClient.Timeout > 0 {
		return cfg.httpClient
	}
	hc := *cfg.httpClient
	hc.Timeout = cfg.timeout
	return &hc
}

// StorePageVisit records a browsing event.
func (c *Client) StorePageVisit(ctx context.Context, v PageVisit) (StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, opStorePageVisit, "/page_visit", v, &resp); err != nil {
		return StatusResponse{}, err
	}
	return resp, nil
}

// SemanticSearch finds visited pages similar to the query.
func (c *Client) SemanticSearch(ctx context.Context, q SearchQuery) (SearchResponse, error) {
	var resp SearchResponse
	if err := c.post(ctx, opSemanticSearch, "/semantic_search", q, &resp); err != nil {
		return SearchResponse{}, err
	}
	return resp, nil
}

// ShowResults loads the stored pages for urls. Unknown URLs are skipped by the server.
func (c *Client) ShowResults(ctx context.Context, urls []string) (ShowResponse, error) {
	if urls == nil {
		urls = []string{}
	}
	var resp ShowResponse
	if err := c.post(ctx, opShowResults, "/show_results", urls, &resp); err != nil {
		return ShowResponse{}, err
	}
	return resp, nil
}

// post sends one JSON POST, repeating it on retryable failures.
// All attempts share the same X-Request-ID.
func (c *Client) post(ctx context.Context, op, path string, in, out any) (err error) {
	start := time.Now()
	attempts := 0
	defer func() { c.obs.observe(op, start, attempts, err) }()

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("pasttense: encode %s request: %w", op, err)
	}
	requestID := uuid.NewString()

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.retryInitial),
		backoff.WithMultiplier(2),
		backoff.WithMaxElapsedTime(0),
	)
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retries)), ctx)

	return backoff.RetryNotify(func() error {
		attempts++
		return c.attempt(ctx, path, requestID, body, out)
	}, policy, func(err error, wait time.Duration) {
		c.obs.retrying(op, err, wait)
	})
}

func (c *Client) attempt(ctx context.Context, path, requestID string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("pasttense: build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return fmt.Errorf("pasttense: POST %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := readAPIError(resp, requestID)
		if apiErr.retryable() {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("pasttense: decode %s response: %w", path, err))
	}
	return nil
}

func readAPIError(resp *http.Response, requestID string) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && (body.Code != "" || body.Message != "") {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
