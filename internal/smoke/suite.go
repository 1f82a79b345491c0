// Package smoke runs sequential smoke-test suites against the RbxServers
// REST API and reports which endpoints answered with a successful status.
package smoke

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rbxservers/rbxservers-bot/internal/config"
)

// Endpoint is one request of a suite.
type Endpoint struct {
	Name   string
	Method string
	Path   string
	Body   map[string]any
}

// Suite is an ordered list of endpoints.
type Suite struct {
	Name      string
	Endpoints []Endpoint
}

// Result is the outcome of a single endpoint.
type Result struct {
	Endpoint   Endpoint
	StatusCode int
	Duration   time.Duration
	Passed     bool
	Message    string
}

// Report aggregates one suite run.
type Report struct {
	Suite   string
	Results []Result
}

// Passed returns how many endpoints passed.
func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}

	return n
}

// Failed returns how many endpoints failed.
func (r Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// Write prints one line per endpoint followed by a summary line.
func (r Report) Write(w io.Writer) error {
	for _, res := range r.Results {
		verdict := "PASS"
		if !res.Passed {
			verdict = "FAIL"
		}
		if _, err := fmt.Fprintf(w, "%s  %-6s %-32s %3d  %6s  %s\n",
			verdict, res.Endpoint.Method, res.Endpoint.Path, res.StatusCode,
			res.Duration.Round(time.Millisecond), res.Message); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s: %d/%d passed\n", r.Suite, r.Passed(), len(r.Results))

	return err
}

// DefaultSuites are used when the config defines none. They mirror the two
// checks the API team runs after a deploy: the public API and the bot API.
func DefaultSuites() []Suite {
	return []Suite{
		{
			Name: "api",
			Endpoints: []Endpoint{
				{Name: "health", Method: http.MethodGet, Path: "/api/health"},
				{Name: "servers", Method: http.MethodGet, Path: "/api/servers"},
				{Name: "search", Method: http.MethodPost, Path: "/api/servers/search", Body: map[string]any{"query": "test", "limit": 5}},
			},
		},
		{
			Name: "bot",
			Endpoints: []Endpoint{
				{Name: "status", Method: http.MethodGet, Path: "/api/bot/status"},
				{Name: "stats", Method: http.MethodGet, Path: "/api/bot/stats"},
				{Name: "ping", Method: http.MethodPost, Path: "/api/bot/ping", Body: map[string]any{"source": "smoke"}},
			},
		},
	}
}

// SuitesFromConfig converts the configured suites, falling back to
// DefaultSuites when none are configured.
func SuitesFromConfig(cfg config.SmokeConfig) []Suite {
	if len(cfg.Suites) == 0 {
		return DefaultSuites()
	}

	suites := make([]Suite, 0, len(cfg.Suites))
	for _, s := range cfg.Suites {
		suite := Suite{Name: s.Name}
		for _, e := range s.Endpoints {
			suite.Endpoints = append(suite.Endpoints, Endpoint{
				Name:   e.Name,
				Method: strings.ToUpper(e.Method),
				Path:   e.Path,
				Body:   e.Body,
			})
		}
		suites = append(suites, suite)
	}

	return suites
}

// Select returns the suites whose names are listed, or all of them when
// names is empty.
func Select(suites []Suite, names []string) ([]Suite, error) {
	if len(names) == 0 {
		return suites, nil
	}

	byName := make(map[string]Suite, len(suites))
	for _, s := range suites {
		byName[s.Name] = s
	}

	selected := make([]Suite, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown smoke suite %q", name)
		}
		selected = append(selected, s)
	}

	return selected, nil
}
