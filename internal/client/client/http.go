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

	"github.com/dmitrijs2005/conops/internal/logging"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries a per-request id for server log correlation.
	RequestIDHeader = "X-Request-ID"

	maxResponseBody = 32 << 20
)

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	settings  Settings
	http      *http.Client
	logger    logging.Logger
	userAgent string
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the default http.Client. No timeout is applied by
// default; callers bound calls with the context.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.logger = l }
}

func WithUserAgent(ua string) Option {
	return func(h *HTTPClient) { h.userAgent = ua }
}

func NewHTTPClient(settings Settings, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		settings:  settings,
		http:      &http.Client{},
		logger:    logging.Nop(),
		userAgent: "conops",
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("component", "transport")
	return c
}

type request struct {
	method    string
	segments  []string
	query     url.Values
	body      any
	anonymous bool
}

// do performs r and decodes the envelope's data into T. It never returns an
// error that is not an *Error.
func do[T any](ctx context.Context, c *HTTPClient, r request) (T, error) {
	var zero T

	ep, err := c.settings.Endpoint(ctx)
	if err != nil {
		return zero, StoreError(fmt.Errorf("read endpoint: %w", err))
	}
	if strings.TrimSpace(ep.Host) == "" {
		return zero, Unprocessable("server host is not configured")
	}

	var token string
	if !r.anonymous {
		if token, err = c.settings.Token(ctx); err != nil {
			return zero, StoreError(fmt.Errorf("read token: %w", err))
		}
	}

	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return zero, Unprocessable("could not encode request: %v", err)
		}
		body = bytes.NewReader(buf)
	}

	target := BuildURL(ep, r.query, r.segments...)
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return zero, Unprocessable("invalid request %s %s: %v", r.method, target, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.With("method", r.method, "path", req.URL.Path, "request_id", requestID)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return zero, communicationError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		log.Warn(ctx, "reading response failed", "status", resp.StatusCode, "error", err)
		return zero, communicationError(err)
	}
	log.Debug(ctx, "request done", "status", resp.StatusCode, "bytes", len(raw), "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, apiError(resp.StatusCode, errorMessage(resp.StatusCode, resp.Header.Get("Content-Type"), raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, malformedResponse(err)
	}

	if env.Status != statusSuccess {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("server reported status %q", env.Status)
		}
		var fields []FieldError
		if env.DetailedStatus == detailedStatusValidation && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &fields); err != nil {
				log.Warn(ctx, "undecodable validation details", "error", err)
			}
		}
		return zero, serverError(msg, fields)
	}

	if _, ok := any(zero).(NoContent); ok {
		return zero, nil
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return zero, serverError("Missing data in response", nil)
	}

	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, decodeFailure(err)
	}
	return out, nil
}
