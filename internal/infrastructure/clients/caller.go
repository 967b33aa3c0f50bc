package clients

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/location-manager/zone-service/pkg/logging"
	"github.com/location-manager/zone-service/pkg/metrics"
	"github.com/location-manager/zone-service/pkg/resilience"
)

// DefaultTimeout bounds one outbound request
const DefaultTimeout = 15 * time.Second

// StatusError is returned when a collaborator answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Options carries the dependencies shared by every collaborator client
type Options struct {
	HTTPClient *http.Client
	Breakers   *resilience.Registry
	Retry      *resilience.RetryConfig
	Metrics    *metrics.Metrics
	Logger     *logging.Logger
}

// caller performs instrumented JSON calls to one collaborator
type caller struct {
	name       string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	retry      *resilience.RetryConfig
	metrics    *metrics.Metrics
	logger     *logging.Logger
	tracer     trace.Tracer
}

type response struct {
	status int
	body   []byte
}

func newCaller(name string, opts Options) *caller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	breakers := opts.Breakers
	if breakers == nil {
		var observer resilience.StateObserver
		if opts.Metrics != nil {
			observer = opts.Metrics
		}
		breakers = resilience.NewRegistry(logger.Logger, observer)
	}
	retry := opts.Retry
	if retry == nil {
		retry = resilience.DefaultRetryConfig()
	}
	if retry.Retryable == nil {
		cfg := *retry
		cfg.Retryable = retryable
		retry = &cfg
	}

	return &caller{
		name:       name,
		httpClient: httpClient,
		breaker:    breakers.Get(name),
		retry:      retry,
		metrics:    opts.Metrics,
		logger:     logger.WithComponent(name + "-client"),
		tracer:     otel.Tracer("clients"),
	}
}

// retryable reports whether a failed attempt is worth repeating
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// do sends one request through the breaker. Transport failures and 5xx replies
// are errors; other statuses are returned to the caller to interpret.
// Only idempotent calls are retried.
func (c *caller) do(ctx context.Context, operation, method, rawURL string, header http.Header, body interface{}, idempotent bool) (*response, error) {
	ctx, span := c.tracer.Start(ctx, c.name+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", c.name),
			attribute.String("http.method", method),
		),
	)
	defer span.End()

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", operation, err)
		}
	}

	attempt := func() (*response, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for key, values := range header {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, transportError(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(data)}
		}
		return &response{status: resp.StatusCode, body: data}, nil
	}

	start := time.Now()
	var result *response
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		if idempotent {
			result, err = resilience.RetryWithResult(ctx, c.retry, attempt)
		} else {
			result, err = attempt()
		}
		return err
	})
	duration := time.Since(start)

	if err == nil {
		span.SetAttributes(attribute.Int("http.status_code", result.status))
		span.SetStatus(codes.Ok, "")
	} else {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if c.metrics != nil {
		c.metrics.RecordExternalCall(c.name, operation, err == nil && result.status < 400, duration)
	}
	c.logger.ExternalCall(ctx, c.name, operation, duration, err)

	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", c.name, operation, err)
	}
	return result, nil
}

// decode unmarshals a 2xx reply into out; any other status becomes a StatusError
func (r *response) decode(out interface{}) error {
	if r.status < 200 || r.status >= 300 {
		return &StatusError{StatusCode: r.status, Body: truncate(r.body)}
	}
	if out == nil || len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// transportError drops the request URL, which may carry credentials
func transportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("request failed: %w", urlErr.Err)
	}
	return fmt.Errorf("request failed: %w", err)
}

func truncate(body []byte) string {
	const limit = 500
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
