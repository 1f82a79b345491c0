package keepalive

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rbxservers/rbxservers-bot/internal/config"
)

// Module provides the keep-alive server and runs it with the application.
var Module = fx.Module("keepalive",
	fx.Provide(NewServerFromConfig),
	fx.Invoke(registerLifecycle),
)

// ServerParams holds dependencies for NewServerFromConfig.
type ServerParams struct {
	fx.In
	Cfg    *config.Config
	Logger *zap.Logger
	Status StatusReporter `optional:"true"`
}

// NewServerFromConfig creates the keep-alive server from the app config.
func NewServerFromConfig(params ServerParams) *Server {
	if params.Cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	return NewServer(Options{
		Addr:    params.Cfg.KeepAlive.Addr,
		BotName: params.Cfg.BotName,
		Status:  params.Status,
	}, params.Logger)
}

// registerLifecycle starts the listener with the app. A bind failure is
// logged and not retried so the bot keeps running without it.
func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, s *Server, logger *zap.Logger) {
	if !cfg.KeepAliveEnabled() {
		logger.Info("Keep-alive server disabled")

		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.Start(); err != nil {
				logger.Error("Failed to start keep-alive server", zap.String("addr", s.addr), zap.Error(err))
			}

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Shutdown(ctx)
		},
	})
}
