package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/pickem-client/internal/logging"
	"github.com/preston-bernstein/pickem-client/internal/metrics"
)

// Config controls how the client reaches the pick'em backend.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Client issues JSON requests against the backend. It never retries; wrap it
// in a RetryingReader for idempotent reads that should.
type Client struct {
	baseURL    string
	httpClient httpDoer
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// BaseURL returns the normalized backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type call struct {
	method   string
	endpoint string
	// label groups metrics for templated paths, e.g. "GET /weeks/{id}/games".
	label string
	body  any
	token string
	out   any
}

// Call performs one request. body is JSON-encoded when non-nil; token, when
// set, goes out as a bearer credential; out receives the decoded 2xx body.
// Non-2xx responses yield *RequestError, missing responses *TransportError.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any, token string, out any) error {
	return c.do(ctx, call{method: method, endpoint: endpoint, body: body, token: token, out: out})
}

func (c *Client) do(ctx context.Context, req call) error {
	if req.label == "" {
		req.label = req.method + " " + req.endpoint
	}
	start := time.Now()
	err := c.roundTrip(ctx, req)
	c.metrics.RecordAPICall(req.label, time.Since(start), err)

	logger := logging.FromContext(ctx, c.logger)
	if err != nil {
		logging.Debug(logger, "api call failed",
			logging.FieldEndpoint, req.label,
			logging.FieldDurationMS, time.Since(start).Milliseconds(),
			"error", err,
		)
		return err
	}
	logging.Debug(logger, "api call complete",
		logging.FieldEndpoint, req.label,
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req call) error {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Method: req.method, Endpoint: req.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{
			Status:   resp.StatusCode,
			Message:  errorMessage(resp.Body),
			Method:   req.method,
			Endpoint: req.endpoint,
		}
	}

	if req.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: req.method, Endpoint: req.endpoint, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, req.out); err != nil {
		return &DecodeError{Endpoint: req.endpoint, Err: err}
	}
	return nil
}

func (c *Client) buildRequest(ctx context.Context, req call) (*http.Request, error) {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", req.endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	endpoint := req.endpoint
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(headerRequestID, requestID(ctx))
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	return httpReq, nil
}

// errorBody covers both {"message": "..."} and the framework default {"detail": "..."}.
type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return genericErrorMessage
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return genericErrorMessage
	}
	if strings.TrimSpace(body.Message) != "" {
		return body.Message
	}

	// detail is a string for handled errors and a list for validation failures.
	var detail string
	if len(body.Detail) > 0 && json.Unmarshal(body.Detail, &detail) == nil {
		if strings.TrimSpace(detail) != "" {
			return detail
		}
	}
	return genericErrorMessage
}
