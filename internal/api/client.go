// Package api provides the HTTP client layer for the remote storefront API:
// bearer authentication with a single transparent refresh, and a
// first-success-wins combinator over fallback endpoint candidates.
package api

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

	"github.com/Mohamedmnem11/ivita/pkg/logger"
	"github.com/tidwall/gjson"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 8 << 20
	errBodyLimit       = 64 << 10

	refreshPath = "/auth/refresh"
)

// CredentialStore is the session-scoped token pair the client reads and
// maintains. An empty access token means the request goes out anonymous.
type CredentialStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(token string)
	Clear()
}

// Config configures the storefront API client.
type Config struct {
	// BaseURL is the root of the remote API (e.g. https://api-stage.ivitasa.com).
	BaseURL string
	// HTTPClient is used to execute requests. When nil, a default client
	// with a conservative timeout is used.
	HTTPClient *http.Client
	// Credentials holds the access/refresh token pair. Optional; without it
	// every request is anonymous and 401s are returned as-is.
	Credentials CredentialStore
	// MaxBodyBytes caps response bodies to prevent memory exhaustion.
	MaxBodyBytes int64
	Logger       *logger.Logger
}

// Client executes authenticated requests against the storefront API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	creds        CredentialStore
	maxBodyBytes int64
	log          *logger.Logger
}

// New creates a storefront API client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api: BaseURL must be a valid URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api: BaseURL scheme must be http or https")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if client.Timeout == 0 {
		client.Timeout = defaultTimeout
	}

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodySize
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("api")
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   client,
		creds:        cfg.Credentials,
		maxBodyBytes: maxBodyBytes,
		log:          log,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Authenticated reports whether the client currently holds an access token.
func (c *Client) Authenticated() bool {
	return c.creds != nil && c.creds.AccessToken() != ""
}

// Do executes a request against path with an optional JSON body. A 401
// response triggers exactly one transparent refresh of the access token
// followed by one retry of the original request. Refresh failure clears the
// stored credentials and returns ErrSessionExpired.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: marshal request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || c.creds == nil || c.creds.RefreshToken() == "" {
		return resp, nil
	}
	resp.Body.Close()

	if err := c.refresh(ctx); err != nil {
		c.creds.Clear()
		c.log.WithError(err).Warn("token refresh failed; session cleared")
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	return c.send(ctx, method, path, payload)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var bodyReader io.Reader = http.NoBody
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: execute request: %w", err)
	}
	return resp, nil
}

// refresh exchanges the stored refresh token for a new access token.
func (c *Client) refresh(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{"refresh_token": c.creds.RefreshToken()})
	if err != nil {
		return fmt.Errorf("marshal refresh payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	if err != nil {
		return fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: ErrorMessage(body, "refresh rejected")}
	}

	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return fmt.Errorf("refresh response missing access_token")
	}
	c.creds.SetAccessToken(token)
	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// ReadBody drains a successful response into a byte slice, honoring the
// client body cap. Non-2xx responses become *APIError.
func (c *Client) ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, &APIError{Status: resp.StatusCode, Message: ErrorMessage(body, resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("api: read response body: %w", err)
	}
	return body, nil
}

// DecodeResponse decodes a JSON response into target. Non-2xx responses
// become *APIError. A nil target discards the body.
func (c *Client) DecodeResponse(resp *http.Response, target interface{}) error {
	body, err := c.ReadBody(resp)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
