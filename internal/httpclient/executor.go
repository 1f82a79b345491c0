package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of a response body is kept.
const maxBodyBytes = 1 << 20

// Response captures the parts of a response the callers inspect.
type Response struct {
	Status   int
	Headers  http.Header
	Body     []byte
	Duration time.Duration
}

// Executor executes HTTP requests with a per-request timeout.
type Executor struct {
	client  *http.Client
	timeout time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithTimeout sets the timeout applied to each request.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = timeout }
}

// WithClient sets a custom HTTP client.
func WithClient(client *http.Client) ExecutorOption {
	return func(e *Executor) { e.client = client }
}

// NewExecutor builds an Executor with the default client and timeout.
func NewExecutor(opts ...ExecutorOption) *Executor {
	cfg := DefaultConfig()
	e := &Executor{
		client:  New(cfg),
		timeout: cfg.Timeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Do executes req and reads the whole (capped) body. Duration is set even
// when an error is returned.
func (e *Executor) Do(ctx context.Context, req *http.Request) (Response, error) {
	start := time.Now()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.Do(req.WithContext(ctx))
	if err != nil {
		return Response{Duration: time.Since(start)}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	duration := time.Since(start)
	if err != nil {
		return Response{Status: resp.StatusCode, Duration: duration}, err
	}

	return Response{
		Status:   resp.StatusCode,
		Headers:  resp.Header.Clone(),
		Body:     body,
		Duration: duration,
	}, nil
}
