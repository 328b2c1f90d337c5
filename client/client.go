// Package client implements the authenticated request pipeline for the
// Novademy API. Every outbound call passes through it: it is the sole place
// where bearer tokens are attached, where failures are classified into the
// apierr taxonomy, and where an expired access token is transparently
// refreshed (once, single-flight) before the original request is replayed.
package client

import (
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/novademy/novademy-go/internal/config"
	"github.com/novademy/novademy-go/session"
)

// Client wraps an http.Client with the session-aware pipeline. All methods
// are safe for concurrent use; concurrent 401 handlers share one in-flight
// refresh.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      session.Store
	logger     zerolog.Logger

	refreshMu sync.Mutex
	pending   *pendingRefresh
}

// Option modifies a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (primarily for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the pipeline logger. Default is a nop logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New initializes a Client against the configured base URL with required
// dependencies. Optional configuration can be provided via options.
func New(cfg config.APIConfig, store session.Store, options ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("[NewClient] config is required")
	}
	if store == nil {
		return nil, errors.New("[NewClient] session store is required")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.GetHTTPTimeout()},
		baseURL:    cfg.GetBaseURL(),
		store:      store,
		logger:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns a point-in-time view of the stored session. Domain
// services read session state through this instead of touching the store.
// Storage-medium failures degrade to an empty (logged out) snapshot.
func (c *Client) Session() session.Snapshot {
	snap, err := session.Read(c.store)
	if err != nil {
		c.logger.Warn().Err(err).Msg("session store read failed; treating as logged out")
		return session.Snapshot{}
	}
	return snap
}

// ClearSession removes every stored session entry.
func (c *Client) ClearSession() error {
	return c.store.RemoveMany(session.Keys...)
}

func (c *Client) accessToken() string {
	tok, err := c.store.Get(session.KeyAccessToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("access token read failed; proceeding unauthenticated")
		return ""
	}
	return tok
}
