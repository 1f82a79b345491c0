package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/rbxservers/rbxservers-bot/internal/app"
	"github.com/rbxservers/rbxservers-bot/internal/bot"
	"github.com/rbxservers/rbxservers-bot/internal/commands"
	"github.com/rbxservers/rbxservers-bot/internal/config"
	"github.com/rbxservers/rbxservers-bot/internal/discord"
	"github.com/rbxservers/rbxservers-bot/internal/infrastructure"
	"github.com/rbxservers/rbxservers-bot/internal/keepalive"
)

// serveOptions is the full bot graph: gateway session, slash commands and
// the keep-alive server reporting the bot's state.
func serveOptions(opts *rootOptions, noKeepAlive bool) []fx.Option {
	return []fx.Option{
		opts.configOptions(func(cfg *config.Config) {
			if noKeepAlive {
				disabled := false
				cfg.KeepAlive.Enabled = &disabled
			}
		}),
		infrastructure.LoggerModule,

		discord.Module,
		commands.Module,
		bot.Module,
		keepalive.Module,

		fx.Provide(func(b *bot.Bot) keepalive.StatusReporter { return b }),
		fx.WithLogger(infrastructure.NewFxLoggerAdapter),
	}
}

func serveCmd(opts *rootOptions) *cobra.Command {
	var noKeepAlive bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot together with the keep-alive server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.New(serveOptions(opts, noKeepAlive)...).Run(cmd.Context())
		},
	}

	c.Flags().BoolVar(&noKeepAlive, "no-keepalive", false, "Do not start the keep-alive HTTP server")

	return c
}

// keepAliveOptions runs the keep-alive server alone. Without a bot it
// reports the bot state as disabled.
func keepAliveOptions(opts *rootOptions, addr string) []fx.Option {
	return []fx.Option{
		opts.configOptions(func(cfg *config.Config) {
			enabled := true
			cfg.KeepAlive.Enabled = &enabled
			if addr != "" {
				cfg.KeepAlive.Addr = addr
			}
		}),
		infrastructure.LoggerModule,
		keepalive.Module,
		fx.WithLogger(infrastructure.NewFxLoggerAdapter),
	}
}

func keepAliveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:   "keepalive",
		Short: "Run only the keep-alive HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.New(keepAliveOptions(opts, addr)...).Run(cmd.Context())
		},
	}

	c.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 0.0.0.0:8080)")

	return c
}
