// Package cli wires the rbxservers commands.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rbxservers/rbxservers-bot/internal/config"
	"github.com/rbxservers/rbxservers-bot/internal/infrastructure"
)

// exitError carries a specific process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	return 1
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(exitCode(err))
	}
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

// loadConfig reads the config file (optional), applies RBX_* env vars and
// then the --log-level flag.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(o.configPath)
	if err != nil {
		return nil, err
	}
	o.override(cfg)

	return cfg, nil
}

func (o *rootOptions) override(cfg *config.Config) {
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
}

// configOptions builds the config part of an fx graph: the file path goes
// through config.Module and flag overrides are applied as a decorator.
func (o *rootOptions) configOptions(decorate ...func(*config.Config)) fx.Option {
	return fx.Options(
		fx.Supply(o.configPath),
		config.Module,
		fx.Decorate(func(cfg *config.Config) *config.Config {
			o.override(cfg)
			for _, fn := range decorate {
				fn(cfg)
			}

			return cfg
		}),
	)
}

// newLogger builds a logger for one-shot commands. The returned func
// flushes it.
func newLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := infrastructure.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	return logger, func() { _ = infrastructure.SyncLogger(logger) }, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "rbxservers",
		Short:        "RbxServers Discord bot and its helper tools",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "Path to the YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the log level: debug|info|warn|error")

	cmd.AddCommand(
		serveCmd(opts),
		keepAliveCmd(opts),
		smokeCmd(opts),
		chromeCheckCmd(opts),
		gifCmd(opts),
		versionCmd(),
	)

	return cmd
}
