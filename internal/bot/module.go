// Package bot provides bot service infrastructure and Fx modules.
package bot

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rbxservers/rbxservers-bot/internal/commands"
)

// Module provides the bot service and ties it to the application lifecycle.
// It needs the discord and commands modules.
var Module = fx.Module("bot",
	fx.Provide(
		commands.NewRegistrar,
		NewBot,
	),
	fx.Invoke(registerLifecycle),
)

// registerLifecycle hooks the bot's Start and Stop into the Fx lifecycle.
// Requesting the bot here builds the session first, so its Open hook runs
// before command registration.
func registerLifecycle(lc fx.Lifecycle, b *Bot, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting bot and registering commands")

			return b.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping bot")

			return b.Stop(ctx)
		},
	})
}
