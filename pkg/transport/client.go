package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tgoo/authadm/pkg/config"
	"golang.org/x/time/rate"
)

const (
	msgSessionExpired = "Session expired. Please sign in again."
	msgForbidden      = "You do not have permission to perform this action."
	msgServerError    = "Server error. Please try again later."
)

// SessionStorage is the persisted session the transport consults before
// each request and clears on an unauthorized response.
type SessionStorage interface {
	// Token returns the persisted bearer token, or "" when absent.
	Token() string

	// Clear removes the persisted session.
	Clear()
}

// LoginRedirector is invoked after an unauthorized response so the caller
// ends up at the login entry point.
type LoginRedirector interface {
	RedirectToLogin()
}

// Client is a thin HTTP client for the auth service. It attaches the bearer
// token from the persisted session and handles 401/403/5xx responses
// globally; all other failures propagate to the caller untouched. It never
// retries.
type Client struct {
	log        logrus.FieldLogger
	baseURL    string
	httpClient *http.Client
	storage    SessionStorage
	notifier   Notifier
	redirector LoginRedirector
	limiter    *rate.Limiter

	// onUnauthorized, when set, runs after the persisted session is
	// cleared so in-memory session state can be reset as well.
	onUnauthorized func()
}

// NewClient creates a transport client for the configured auth service.
func NewClient(
	log logrus.FieldLogger,
	cfg *config.API,
	storage SessionStorage,
	notifier Notifier,
	redirector LoginRedirector,
) *Client {
	c := &Client{
		log:        log.WithField("component", "transport"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		storage:    storage,
		notifier:   notifier,
		redirector: redirector,
	}

	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(
			rate.Limit(float64(cfg.RequestsPerMinute)/60.0),
			cfg.RequestsPerMinute,
		)
	}

	return c
}

// OnUnauthorized registers a hook that runs after a 401 response has
// cleared the persisted session.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// Send performs one HTTP request. A non-nil body is JSON-encoded; a non-nil
// out receives the decoded 2xx response body. Query parameters are sent
// verbatim; absent keys stay absent.
func (c *Client) Send(
	ctx context.Context,
	method, path string,
	body any,
	query url.Values,
	out any,
) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}

		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	// An absent token is not an error here; the request simply goes out
	// unauthenticated.
	if token := c.storage.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.WithField("method", method).
		WithField("path", path).
		Debug("Sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}

		return nil
	}

	return c.handleErrorResponse(resp)
}

// handleErrorResponse maps non-2xx responses to APIErrors and performs the
// global side effects for 401, 403, and 5xx statuses.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errBody apiErrorBody

	// A malformed or empty error body falls back to the status text.
	_ = json.NewDecoder(resp.Body).Decode(&errBody)

	apiErr := newAPIError(resp.StatusCode, errBody)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Invalid or expired token. Every caller must behave identically,
		// so the session teardown happens here rather than upstream.
		c.storage.Clear()

		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}

		c.notifier.Notify(msgSessionExpired)
		c.redirector.RedirectToLogin()
	case resp.StatusCode == http.StatusForbidden:
		c.notifier.Notify(msgForbidden)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.notifier.Notify(msgServerError)
	}

	return apiErr
}
