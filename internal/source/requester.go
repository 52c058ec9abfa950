// Package source holds the HTTP plumbing shared by the remote content
// clients in its subpackages.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/akiba/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
	userAgent      = "akiba/1.0"
)

// Options configures a Requester.
type Options struct {
	BaseURL           string
	Timeout           time.Duration // 0 means 30s
	RequestsPerSecond float64       // <= 0 disables rate limiting
	Accept            string        // defaults to application/json
	RetryDelay        time.Duration // first backoff step, 0 means 500ms
	HTTPClient        *http.Client  // overrides Timeout when set
}

// Requester performs rate-limited GET requests with retry against one API.
type Requester struct {
	baseURL    string
	accept     string
	retryDelay time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	name       string
}

// NewRequester creates a requester. name labels log lines ("jikan", ...).
func NewRequester(name string, opts Options, logger *slog.Logger) *Requester {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Accept == "" {
		opts.Accept = "application/json"
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = baseRetryDelay
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Requester{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		accept:     opts.Accept,
		retryDelay: opts.RetryDelay,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.With("source", name),
		name:       name,
	}
}

// Get requests path with query and returns the response body.
//
// 429 and 5xx responses are retried with exponential backoff. A 404 maps to
// domain.ErrNotFound, transport failures to domain.ErrServerOffline.
func (r *Requester) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := r.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Check context before each attempt
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Wait before retry (exponential backoff)
		if attempt > 0 {
			delay := r.retryDelay * time.Duration(1<<(attempt-1))
			r.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", r.accept)
		req.Header.Set("User-Agent", userAgent)

		r.logger.Debug("request", "url", reqURL, "attempt", attempt)

		resp, err := r.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Error("request failed", "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = domain.ErrRateLimited
			r.logger.Warn("rate limited, will retry", "attempt", attempt, "path", path)
			continue
		case resp.StatusCode >= 500 && resp.StatusCode < 600:
			lastErr = fmt.Errorf("server error: %d - %s", resp.StatusCode, string(body))
			r.logger.Warn("server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", maxRetries,
				"path", path,
			)
			continue
		default:
			r.logger.Error("request error", "status", resp.StatusCode, "body", string(body))
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	r.logger.Error("request failed after retries", "error", lastErr, "url", reqURL)
	return nil, lastErr
}

// GetJSON requests path and decodes the body into dest.
func (r *Requester) GetJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := r.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", r.name, err)
	}
	return nil
}
