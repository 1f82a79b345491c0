package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rbxservers/rbxservers-bot/internal/httpclient"
)

// ErrNoBaseURL is returned when the runner has nowhere to send requests.
var ErrNoBaseURL = errors.New("smoke base URL is not configured")

// Options configures a Runner.
type Options struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
	// Client overrides the default HTTP client.
	Client *http.Client
}

// Runner issues a suite's requests one after another.
type Runner struct {
	baseURL string
	token   string
	exec    *httpclient.Executor
	logger  *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts Options, logger *zap.Logger) (*Runner, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, ErrNoBaseURL
	}

	execOpts := []httpclient.ExecutorOption{httpclient.WithTimeout(opts.Timeout)}
	if opts.Client != nil {
		execOpts = append(execOpts, httpclient.WithClient(opts.Client))
	}

	return &Runner{
		baseURL: base,
		token:   opts.Token,
		exec:    httpclient.NewExecutor(execOpts...),
		logger:  logger.Named("smoke"),
	}, nil
}

// Run executes every endpoint of the suite in order. A failing endpoint is
// logged and recorded; the run continues with the next one. Only context
// cancellation stops it early.
func (r *Runner) Run(ctx context.Context, suite Suite) Report {
	report := Report{Suite: suite.Name}
	logger := r.logger.With(zap.String("suite", suite.Name))
	logger.Info("Running smoke suite", zap.Int("endpoints", len(suite.Endpoints)))

	for _, ep := range suite.Endpoints {
		if ctx.Err() != nil {
			logger.Warn("Smoke suite cancelled", zap.Error(ctx.Err()))

			break
		}

		res := r.runEndpoint(ctx, ep)
		fields := []zap.Field{
			zap.String("endpoint", ep.Name),
			zap.String("method", res.Endpoint.Method),
			zap.String("path", ep.Path),
			zap.Int("status", res.StatusCode),
			zap.Duration("duration", res.Duration),
		}
		if res.Passed {
			logger.Info("Endpoint passed", fields...)
		} else {
			logger.Warn("Endpoint failed", append(fields, zap.String("reason", res.Message))...)
		}
		report.Results = append(report.Results, res)
	}

	return report
}

func (r *Runner) runEndpoint(ctx context.Context, ep Endpoint) Result {
	if ep.Method == "" {
		ep.Method = http.MethodGet
	}
	res := Result{Endpoint: ep}

	req, err := r.newRequest(ctx, ep)
	if err != nil {
		res.Message = err.Error()

		return res
	}

	resp, err := r.exec.Do(ctx, req)
	res.Duration = resp.Duration
	res.StatusCode = resp.Status
	if err != nil {
		res.Message = fmt.Sprintf("request failed: %v", err)

		return res
	}

	res.Passed, res.Message = evaluate(resp.Status, resp.Body)

	return res
}

func (r *Runner) newRequest(ctx context.Context, ep Endpoint) (*http.Request, error) {
	var body io.Reader
	if ep.Body != nil {
		payload, err := json.Marshal(ep.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, r.url(ep.Path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	return req, nil
}

func (r *Runner) url(path string) string {
	if path == "" {
		return r.baseURL
	}

	return r.baseURL + "/" + strings.TrimLeft(path, "/")
}
