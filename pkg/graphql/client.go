package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphql_client_requests_total",
			Help: "Total number of outbound GraphQL requests",
		},
		[]string{"operation", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphql_client_request_duration_seconds",
			Help:    "Outbound GraphQL request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)
)

const (
	outcomeOK           = "ok"
	outcomeGraphQLError = "graphql_error"
	outcomeTransport    = "transport_error"
	outcomeRejected     = "circuit_open"
	outcomeCanceled     = "canceled"
)

const maxResponseBytes = 1 << 20

// Request is a GraphQL operation document with its variables.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Error is a single entry of a response's errors array.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Code returns extensions.code, or "" when it is absent or not a string.
func (e Error) Code() string {
	if c, ok := e.Extensions["code"].(string); ok {
		return c
	}
	return ""
}

// Errors is returned by Do when the server answered with a non-empty errors
// array. Order is preserved as received.
type Errors []Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		if code := err.Code(); code != "" {
			msgs = append(msgs, fmt.Sprintf("%s (%s)", err.Message, code))
			continue
		}
		msgs = append(msgs, err.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Codes returns every non-empty extensions.code in order.
func (e Errors) Codes() []string {
	codes := make([]string, 0, len(e))
	for _, err := range e {
		if code := err.Code(); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// HTTPError reports a non-2xx response that carried no GraphQL errors.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return "graphql: unexpected http status " + e.Status
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors"`
}

type Client struct {
	endpoint   string
	client     *http.Client
	cb         *CircuitBreaker
	timeout    time.Duration
	maxRetries int
	headers    map[string]string
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default instrumented http.Client. A nil client
// is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout sets the per-request timeout on a copy of the http.Client, so
// a client passed through WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(c *Client) { c.cb = cb }
}

// WithRetries enables retries on transport failures and 5xx responses.
// The default is zero: every Do issues exactly one request.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		headers: make(map[string]string),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// Do posts req and decodes the data member into out. A response with errors
// returns Errors and leaves out untouched. A response without data returns
// nil and leaves out untouched.
func (c *Client) Do(ctx context.Context, req Request, out any, headers map[string]string) error {
	operation := req.OperationName
	if operation == "" {
		operation = "anonymous"
	}

	if err := ctx.Err(); err != nil {
		requestsTotal.WithLabelValues(operation, outcomeCanceled).Inc()
		return err
	}

	if c.cb != nil {
		if err := c.cb.CheckBeforeRequest(); err != nil {
			requestsTotal.WithLabelValues(operation, outcomeRejected).Inc()
			c.logger.Error("request blocked by circuit breaker", zap.String("operation", operation), zap.Error(err))
			return err
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("graphql: encode request: %w", err)
	}

	start := time.Now()
	resp, err := c.attemptRequest(ctx, body, headers)
	requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; the endpoint's health is unknown.
			c.onAbort()
			requestsTotal.WithLabelValues(operation, outcomeCanceled).Inc()
			return err
		}
		c.onFailure()
		requestsTotal.WithLabelValues(operation, outcomeTransport).Inc()
		return err
	}

	if err := decode(resp, out); err != nil {
		var gqlErrs Errors
		var httpErr *HTTPError
		switch {
		case ctx.Err() != nil:
			c.onAbort()
			requestsTotal.WithLabelValues(operation, outcomeCanceled).Inc()
		case errors.As(err, &gqlErrs):
			c.onSuccess()
			requestsTotal.WithLabelValues(operation, outcomeGraphQLError).Inc()
		case errors.As(err, &httpErr) && httpErr.StatusCode < 500:
			c.onSuccess()
			requestsTotal.WithLabelValues(operation, outcomeTransport).Inc()
		default:
			c.onFailure()
			requestsTotal.WithLabelValues(operation, outcomeTransport).Inc()
		}
		return err
	}

	c.onSuccess()
	requestsTotal.WithLabelValues(operation, outcomeOK).Inc()
	return nil
}

func (c *Client) attemptRequest(ctx context.Context, body []byte, headers map[string]string) (*http.Response, error) {
	const baseDelay = 100 * time.Millisecond
	const maxJitterMs = 100

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	var response *http.Response

	for i := 0; i <= c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("graphql: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		response, err = c.client.Do(req)
		lastErr = err

		if err == nil && response.StatusCode < 500 {
			return response, nil
		}

		if i == c.maxRetries {
			break
		}

		backoff := baseDelay * time.Duration(math.Pow(2, float64(i)))
		sleepDuration := backoff + time.Duration(r.Intn(maxJitterMs))*time.Millisecond

		if response != nil {
			response.Body.Close()
		}

		c.logger.Warn("graphql request failed, retrying",
			zap.Int("attempt", i+1),
			zap.Duration("sleep_duration", sleepDuration),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepDuration):
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("graphql: request failed: %w", lastErr)
	}

	// 5xx on the last attempt: hand it to decode, the body may still carry
	// GraphQL errors.
	return response, nil
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("graphql: read response: %w", err)
	}

	var payload response
	if err := json.Unmarshal(raw, &payload); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		}
		return fmt.Errorf("graphql: decode response: %w", err)
	}

	if len(payload.Errors) > 0 {
		return payload.Errors
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data := bytes.TrimSpace(payload.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("graphql: decode data: %w", err)
	}
	return nil
}

func (c *Client) onSuccess() {
	if c.cb != nil {
		c.cb.OnSuccess()
	}
}

func (c *Client) onAbort() {
	if c.cb != nil {
		c.cb.OnAbort()
	}
}

func (c *Client) onFailure() {
	if c.cb != nil {
		c.cb.OnFailure()
	}
}
