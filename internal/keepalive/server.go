// Package keepalive serves the static HTTP routes that uptime monitors poll
// to see that the process is alive.
package keepalive

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// StatusReporter reports the connection state of the bot.
type StatusReporter interface {
	Status() string
}

// StatusDisabled is reported when the process runs without the bot.
const StatusDisabled = "disabled"

type staticStatus string

func (s staticStatus) Status() string { return string(s) }

// Options configures a Server.
type Options struct {
	Addr    string
	BotName string
	// Status is optional; without it the bot is reported as disabled.
	Status StatusReporter
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the keep-alive HTTP server.
type Server struct {
	addr      string
	botName   string
	status    StatusReporter
	now       func() time.Time
	startedAt time.Time
	logger    *zap.Logger
	engine    *gin.Engine
	srv       *http.Server
	bound     string
	done      chan struct{}
}

// NewServer builds the server and its routes. Nothing listens until Start.
func NewServer(opts Options, logger *zap.Logger) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Status == nil {
		opts.Status = staticStatus(StatusDisabled)
	}

	s := &Server{
		addr:      opts.Addr,
		botName:   opts.BotName,
		status:    opts.Status,
		now:       opts.Now,
		startedAt: opts.Now(),
		logger:    logger.Named("keepalive"),
	}
	s.engine = s.newEngine()

	return s
}

// Handler exposes the routes for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listen address and serves in the background. A bind
// error is returned to the caller; errors after that are only logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	return s.Serve(ln)
}

// Serve serves on an existing listener in the background.
func (s *Server) Serve(ln net.Listener) error {
	s.srv = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.done = make(chan struct{})
	s.bound = ln.Addr().String()

	s.logger.Info("Keep-alive server listening", zap.String("addr", s.bound))
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Keep-alive server stopped unexpectedly", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	err := s.srv.Shutdown(ctx)
	<-s.done
	s.logger.Info("Keep-alive server stopped")

	return err
}

// Addr returns the bound address once serving, otherwise the configured one.
func (s *Server) Addr() string {
	if s.bound != "" {
		return s.bound
	}

	return s.addr
}

// Uptime returns the time elapsed since the server was created.
func (s *Server) Uptime() time.Duration {
	return s.now().Sub(s.startedAt)
}
