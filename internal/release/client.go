package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// Client fetches the latest release of one owner/repository pair.
type Client struct {
	owner     string
	repo      string
	baseURL   string
	token     string // Optional, raises the API rate limit
	userAgent string
	page      string
	client    *http.Client
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (used by tests and GitHub Enterprise).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithToken sets a bearer token for authentication.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient sets the transport. Timeouts belong here.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets the logger used to record swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithReleasesPage overrides the fallback page returned by ReleasesPage.
func WithReleasesPage(u string) Option {
	return func(c *Client) { c.page = u }
}

// NewClient creates a client for owner/repo.
func NewClient(owner, repo string, opts ...Option) *Client {
	c := &Client{
		owner:     owner,
		repo:      repo,
		baseURL:   DefaultBaseURL,
		userAgent: "qboxup",
		client:    http.DefaultClient,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReleasesPage returns the fallback navigation target for this repository.
func (c *Client) ReleasesPage() string {
	if c.page != "" {
		return c.page
	}
	return ReleasesPageURL(c.owner, c.repo)
}

// FetchLatest performs exactly one request for the latest release. Every
// failure (transport, status, body) is logged and reported as nil, which
// callers treat as "no release available".
func (c *Client) FetchLatest(ctx context.Context) *Info {
	info, err := c.fetchLatest(ctx)
	if err != nil {
		c.logger.Warn("latest release unavailable",
			"repo", c.owner+"/"+c.repo, "err", err)
		return nil
	}
	c.logger.Debug("fetched latest release",
		"repo", c.owner+"/"+c.repo, "version", info.Version, "assets", len(info.Assets))
	return info
}

func (c *Client) fetchLatest(ctx context.Context) (*Info, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("release API returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("release has no tag")
	}

	return release.toInfo(), nil
}
