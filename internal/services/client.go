package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/shared"
)

const (
	DefaultBaseURL = "https://api.music.apple.com/v1"
	DefaultTimeout = 30 * time.Second

	// MaxBodySize caps how much of a response body is read.
	MaxBodySize = 1 << 20
)

var (
	errEmptyPath    = errors.New("path is empty")
	errPathQuery    = errors.New("path must not contain a query or fragment")
	errAbsolutePath = errors.New("path must be relative to the base URL")
)

// Options configures a [Client]. Zero values select the defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient is used as-is when set and is never closed by the client.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client executes catalog requests with one authentication strategy.
//
// A Client is safe for concurrent use. The configuration is fixed at construction; the only state that changes is the
// closed flag set by [Client.Close].
type Client struct {
	base       *url.URL
	timeout    time.Duration
	strategy   auth.Strategy
	httpClient *http.Client
	ownsClient bool
	logger     *log.Logger

	closeOnce sync.Once
	closed    atomic.Bool
}

// New creates a [Client]. The strategy must have an authentication method configured.
func New(strategy auth.Strategy, opts Options) (*Client, error) {
	if strategy.IsZero() {
		return nil, shared.NewValidationError("no authentication method provided")
	}

	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, shared.NewValidationError("invalid base URL %q", raw)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		base:     base,
		timeout:  timeout,
		strategy: strategy,
		logger:   opts.Logger,
	}

	if opts.HTTPClient != nil {
		c.httpClient = opts.HTTPClient
	} else {
		c.httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
		c.ownsClient = true
	}

	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c, nil
}

// NewFromConfig builds a [Client] from the [client] section of the configuration.
func NewFromConfig(strategy auth.Strategy, cfg shared.ClientConfig, logger *log.Logger) (*Client, error) {
	return New(strategy, Options{
		BaseURL: cfg.BaseURLOrDefault(),
		Timeout: cfg.TimeoutDuration(),
		Logger:  logger,
	})
}

// Strategy returns the client's authentication strategy.
func (c *Client) Strategy() auth.Strategy { return c.strategy }

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Close releases the transport. It is safe to call more than once; requests issued afterwards fail with a
// validation error.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.ownsClient {
			c.httpClient.CloseIdleConnections()
		}
	})
	return nil
}

// Execute performs req and decodes a 2xx body into T. Every failure is a [*shared.Error].
func Execute[T any](ctx context.Context, c *Client, req Request) (*T, error) {
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, shared.NewParsingError("failed to decode response", err)
	}
	return &out, nil
}

// Raw performs req and returns the undecoded 2xx body.
func (c *Client) Raw(ctx context.Context, req Request) (json.RawMessage, error) {
	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req Request) ([]byte, error) {
	if c.closed.Load() {
		return nil, shared.NewValidationError("client is closed")
	}

	u, err := req.resolve(c.base)
	if err != nil {
		return nil, &shared.Error{Kind: shared.KindValidation, Message: "invalid request URL", Err: err}
	}

	token, err := c.strategy.Resolve(ctx)
	if err != nil {
		var classified *shared.Error
		if errors.As(err, &classified) {
			return nil, classified
		}
		return nil, shared.NewNetworkError("failed to resolve token", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), nil)
	if err != nil {
		return nil, &shared.Error{Kind: shared.KindValidation, Message: "failed to create request", Err: err}
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "path", u.Path, "error", err)
		return nil, shared.NewNetworkError("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, shared.NewNetworkError("failed to read response", err)
	}

	c.logger.Debug("request", "method", req.Method, "path", u.Path, "status", resp.StatusCode,
		"bytes", len(body), "duration", time.Since(start))

	if len(body) > MaxBodySize {
		return nil, &shared.Error{Kind: shared.KindParsing, Status: resp.StatusCode, Message: "response body exceeds 1 MiB"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Classify(resp.StatusCode, body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &shared.Error{Kind: shared.KindParsing, Status: resp.StatusCode, Message: "no data"}
	}
	return body, nil
}
