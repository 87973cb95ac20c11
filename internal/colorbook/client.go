package colorbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ImageService is the remote image API used by the state containers. It is
// implemented by *Client and by fakes in tests.
type ImageService interface {
	FetchImages(ctx context.Context, baseURL string) ([]ImageRecord, error)
	SearchImages(ctx context.Context, baseURL, query string) ([]ImageRecord, error)
	GenerateImage(ctx context.Context, baseURL, prompt, appToken string) (ImageRecord, error)
}

// ByteFetcher downloads raw image bytes.
type ByteFetcher interface {
	FetchBytes(ctx context.Context, rawURL string) ([]byte, error)
}

// HealthChecker probes /api/health.
type HealthChecker interface {
	Health(ctx context.Context, baseURL string) (HealthStatus, error)
}

// Ensure Client implements the service interfaces at compile time.
var (
	_ ImageService  = (*Client)(nil)
	_ ByteFetcher   = (*Client)(nil)
	_ HealthChecker = (*Client)(nil)
)

// Client talks to the coloring book HTTP API. It holds no per-server state, so
// one Client can be shared by every state container.
type Client struct {
	http      *http.Client
	userAgent string
	maxBytes  int64 // FetchBytes body limit
}

// AppTokenHeader carries the optional app token on generate calls.
const AppTokenHeader = "X-App-Token"

const (
	// DefaultServerURL is the production host used when nothing is configured.
	DefaultServerURL = "https://coloringbook.brerum.com"

	defaultUserAgent = "coloringbook/0.1"
	requestTimeout   = 60 * time.Second
	maxImageBytes    = 32 << 20
)

// NewClient builds a Client with the default transport settings.
func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		maxBytes:  maxImageBytes,
	}
}

// NewClientWithHTTP builds a Client around an existing http.Client.
func NewClientWithHTTP(hc *http.Client) *Client {
	if hc == nil {
		return NewClient()
	}
	return &Client{http: hc, userAgent: defaultUserAgent, maxBytes: maxImageBytes}
}

// FetchImages retrieves the full image list.
func (c *Client) FetchImages(ctx context.Context, baseURL string) ([]ImageRecord, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	endpoint, err := endpointURL(baseURL, "/api/images", nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Images *[]ImageRecord `json:"images"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Images == nil {
		return nil, invalidResponse(errors.New("images field missing"))
	}
	return *payload.Images, nil
}

// SearchImages runs a server-side search. The query is sent as given.
func (c *Client) SearchImages(ctx context.Context, baseURL, query string) ([]ImageRecord, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("q", query)
	endpoint, err := endpointURL(baseURL, "/api/search", values)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Images *[]ImageRecord `json:"images"`
		Query  string         `json:"query"`
		Total  int            `json:"total"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Images == nil {
		return nil, invalidResponse(errors.New("images field missing"))
	}
	return *payload.Images, nil
}

// GenerateImage asks the server to create a new coloring page. appToken is sent
// as X-App-Token when non-empty.
func (c *Client) GenerateImage(ctx context.Context, baseURL, prompt, appToken string) (ImageRecord, error) {
	if c == nil {
		return ImageRecord{}, fmt.Errorf("client is nil")
	}
	endpoint, err := endpointURL(baseURL, "/api/generate", nil)
	if err != nil {
		return ImageRecord{}, err
	}
	body, err := json.Marshal(GenerateRequest{Prompt: prompt})
	if err != nil {
		return ImageRecord{}, fmt.Errorf("encode request: %w", err)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if appToken != "" {
		header.Set(AppTokenHeader, appToken)
	}
	var payload GenerateResponse
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, header, &payload); err != nil {
		return ImageRecord{}, err
	}
	if payload.Image == nil {
		return ImageRecord{}, invalidResponse(errors.New("image field missing"))
	}
	return *payload.Image, nil
}

// FetchBytes downloads the resource at rawURL.
func (c *Client) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	u, err := parseAbsolute(rawURL)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, http.MethodGet, u, nil, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelled(ctx.Err())
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("fetch %s: %w (limit %d bytes)", u.Redacted(), ErrImageTooLarge, c.maxBytes)
	}
	return data, nil
}

// Health queries /api/health. Any non-200 status is reported as a ServerError.
func (c *Client) Health(ctx context.Context, baseURL string) (HealthStatus, error) {
	if c == nil {
		return HealthStatus{}, fmt.Errorf("client is nil")
	}
	endpoint, err := endpointURL(baseURL, "/api/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	var payload HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, nil, &payload); err != nil {
		// A 200 with an unexpected body still means the server is up.
		if errors.Is(err, ErrInvalidResponse) {
			return HealthStatus{Status: "healthy"}, nil
		}
		return HealthStatus{}, err
	}
	return payload, nil
}

// Healthy reports whether the server answered /api/health with 200.
func (c *Client) Healthy(ctx context.Context, baseURL string) bool {
	_, err := c.Health(ctx, baseURL)
	return err == nil
}

func (c *Client) doJSON(ctx context.Context, method string, endpoint *url.URL, body []byte, header http.Header, dest any) error {
	resp, err := c.send(ctx, method, endpoint, body, header)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return cancelled(ctx.Err())
		}
		return invalidResponse(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// send executes the request and returns the response only for HTTP 200.
func (c *Client) send(ctx context.Context, method string, endpoint *url.URL, body []byte, header http.Header) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, invalidURL(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, cancelled(err)
		}
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, ServerError(resp.StatusCode)
	}
	return resp, nil
}

func endpointURL(baseURL, path string, query url.Values) (*url.URL, error) {
	base, err := parseAbsolute(normalizeBase(baseURL))
	if err != nil {
		return nil, err
	}
	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return &u, nil
}

func parseAbsolute(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, invalidURL(errors.New("url is empty"))
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, invalidURL(fmt.Errorf("parse url %q: %w", raw, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalidURL(fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return nil, invalidURL(fmt.Errorf("url %q has no host", raw))
	}
	return u, nil
}
