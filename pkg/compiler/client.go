package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/bpmngen/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single compilation call.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps how much of a compiler response is read.
const maxResponseSize = 32 << 20

const tracerName = "github.com/aretw0/bpmngen/pkg/compiler"

type generateRequest struct {
	YAML string `json:"yaml"`
}

type generateResponse struct {
	BPMN *string `json:"bpmn"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// Client talks to the external BPMN compilation service.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	logger   *slog.Logger
	contract *contract
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its transport is wrapped for tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-call deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the service at baseURL.
// baseURL may be the service root or the full /generate-bpmn endpoint.
func New(baseURL string, opts ...Option) (*Client, error) {
	endpoint, err := endpointURL(baseURL)
	if err != nil {
		return nil, err
	}
	spec, err := loadContract()
	if err != nil {
		return nil, err
	}

	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		timeout:  DefaultTimeout,
		logger:   logging.NewNop(),
		contract: spec,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.http
	hc.Transport = otelhttp.NewTransport(base)
	c.http = &hc

	return c, nil
}

func endpointURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", errors.New("compiler URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid compiler URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid compiler URL %q: scheme must be http or https", baseURL)
	}
	if strings.HasSuffix(u.Path, generatePath) {
		return u.String(), nil
	}
	return u.JoinPath(generatePath).String(), nil
}

// Endpoint returns the resolved compilation URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Compile sends the definition text to the compiler and returns the BPMN XML
// exactly as received. Errors are always one of *NetworkError,
// *RemoteValidationError or *UnknownError.
func (c *Client) Compile(ctx context.Context, source string) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "compiler.Compile",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("bpmngen.source_bytes", len(source))),
	)
	defer span.End()

	markup, err := c.compile(ctx, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Classify(err))
		return "", err
	}
	span.SetAttributes(attribute.Int("bpmngen.markup_bytes", len(markup)))
	return markup, nil
}

func (c *Client) compile(ctx context.Context, source string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(generateRequest{YAML: source})
	if err != nil {
		return "", &UnknownError{Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &UnknownError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Compile: transport failed", "error", err, "endpoint", c.endpoint)
		return "", &NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", &NetworkError{Cause: fmt.Errorf("failed to read response: %w", err)}
	}
	c.logger.Debug("Compile: response received",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", rejection(resp.StatusCode, body)
	}

	if err := c.contract.checkResponse(ctx, req, resp, body); err != nil {
		return "", &UnknownError{Status: resp.StatusCode, Cause: fmt.Errorf("response violates compiler contract: %w", err)}
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &UnknownError{Status: resp.StatusCode, Cause: err}
	}
	if out.BPMN == nil {
		return "", &UnknownError{Status: resp.StatusCode, Cause: errors.New("response has no bpmn field")}
	}
	return *out.BPMN, nil
}

// rejection maps a non-2xx response to a classified error.
func rejection(status int, body []byte) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		if detail := detailText(er.Detail); detail != "" {
			return &RemoteValidationError{Status: status, Detail: detail}
		}
		if er.Error != "" {
			return &RemoteValidationError{Status: status, Detail: er.Error}
		}
	}
	return &UnknownError{Status: status, Cause: fmt.Errorf("%s", http.StatusText(status))}
}

// detailText returns a string detail verbatim. Structured details (such as
// request validation lists) are returned as compact JSON.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
