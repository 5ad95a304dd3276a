// Package github talks to the code-hosting API for git-pr-release. It wraps
// go-github for the pull-request surface and keeps a direct HTTP path for the
// endpoints go-github does not model (interactive authorization creation).
package github

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the default GitHub API base URL.
	DefaultBaseURL = "https://api.github.com"

	// TokenEnv is the environment variable consulted for the API token.
	TokenEnv = "GIT_PR_RELEASE_TOKEN"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL, used for enterprise hosts (the
// /api/v3 endpoint variant) and for test recorders.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTimeout sets a custom HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithInsecureTLS disables TLS peer verification. Enterprise instances often
// sit behind self-signed certificates; this is a compatibility carve-out for
// them, never the default.
func WithInsecureTLS(insecure bool) ClientOption {
	return func(c *Client) {
		c.insecureTLS = insecure
	}
}

// Client is the hosting API client.
type Client struct {
	token       string
	baseURL     string
	timeout     time.Duration
	insecureTLS bool
	httpClient  *http.Client

	mu           sync.Mutex
	githubClient *github.Client // lazy-loaded
}

// NewClient creates a client with the given token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.insecureTLS && c.httpClient.Transport == nil {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return c
}

// TokenFromEnv returns the token from the environment, empty when unset.
func TokenFromEnv() string {
	return os.Getenv(TokenEnv)
}

// SetToken updates the client's authentication token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.githubClient = nil
}

// GitHubClient returns the underlying go-github client, building it on first
// use from the configured token, base URL and TLS mode.
func (c *Client) GitHubClient() *github.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.githubClient == nil {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
		tc := oauth2.NewClient(ctx, ts)
		c.githubClient = github.NewClient(tc)

		if c.baseURL != DefaultBaseURL && c.baseURL != "" {
			baseURL := c.baseURL + "/"
			parsedURL, err := url.Parse(baseURL)
			if err == nil {
				c.githubClient.BaseURL = parsedURL
			}
		}
	}
	return c.githubClient
}

// NewRequest creates an authenticated HTTP request against the API base URL.
// The path is joined to the base, so pass "/authorizations" style paths.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	return req, nil
}

// Do sends an HTTP request, decoding a 2xx JSON response into result when
// result is non-nil. Non-2xx responses become *APIError.
func (c *Client) Do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
