// Package submit sends a feedback record to the configured endpoint in a
// single POST and classifies the response.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/feedbackform/internal/feedback"
	"github.com/dshills/feedbackform/internal/logger"
	"github.com/dshills/feedbackform/internal/metrics"
	"github.com/dshills/feedbackform/internal/redact"
)

// DefaultEndpoint is where records go when nothing else is configured.
const DefaultEndpoint = "http://localhost:3002/feedbacks"

// DefaultTimeout bounds one round-trip when no *http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 64 * 1024

// Sender delivers a record and reports how it went.
type Sender interface {
	Send(ctx context.Context, rec feedback.Record) Result
}

// Client posts records as JSON. Create it with New.
type Client struct {
	endpoint string
	http     *http.Client
	metrics  *metrics.Recorder
	log      *zap.SugaredLogger
	newID    func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport, e.g. with an httptest server's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the round-trip timeout. It applies to a copy of the
// current HTTP client, so it composes with WithHTTPClient in any order.
// Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithMetrics records every round-trip in r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// WithLogger overrides the global logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client posting to endpoint, which must be an absolute
// http or https URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: expected an absolute http(s) URL", endpoint)
	}

	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get()
	}
	return c, nil
}

// Endpoint returns the URL records are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Send posts rec once. Only HTTP 201 counts as success; any other status is
// KindRejected and any failure to complete the exchange is KindNetworkFailure.
// Send never retries.
func (c *Client) Send(ctx context.Context, rec feedback.Record) Result {
	start := time.Now()
	res := c.send(ctx, rec)
	elapsed := time.Since(start)
	c.metrics.ObserveSubmission(string(res.Kind), elapsed)

	fields := []any{
		"request_id", res.RequestID,
		"kind", res.Kind,
		"elapsed", elapsed,
		"email", redact.MaskEmail(rec.Email),
	}
	if res.Status != 0 {
		fields = append(fields, "status", res.Status)
	}
	if res.Kind == KindSuccess {
		c.log.Infow("feedback submitted", fields...)
	} else {
		c.log.Warnw("feedback submission failed", append(fields, "error", res.Err)...)
	}
	return res
}

func (c *Client) send(ctx context.Context, rec feedback.Record) Result {
	id := c.newID()

	body, err := json.Marshal(rec)
	if err != nil {
		return Result{Kind: KindNetworkFailure, RequestID: id, Err: fmt.Errorf("marshaling record: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Kind: KindNetworkFailure, RequestID: id, Err: fmt.Errorf("creating HTTP request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", id)

	c.log.Debugw("posting feedback", "request_id", id, "endpoint", c.endpoint, "record", redact.Record(rec))

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Kind: KindNetworkFailure, RequestID: id, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	// The status decides the result; the body is only kept as an excerpt.
	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.log.Debugw("reading response body", "request_id", id, "error", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return Result{
			Kind:      KindRejected,
			Status:    resp.StatusCode,
			RequestID: id,
			Err:       &RejectedError{Status: resp.StatusCode, Body: truncate(string(respBytes), 200)},
		}
	}
	return Result{Kind: KindSuccess, Status: resp.StatusCode, RequestID: id}
}

// IsRejected reports whether err carries a non-201 response.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
