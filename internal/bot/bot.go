package bot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rbxservers/rbxservers-bot/internal/commands"
	"github.com/rbxservers/rbxservers-bot/internal/config"
)

// Bot states reported by Status.
const (
	StatusConnecting = "connecting"
	StatusOnline     = "online"
)

// Bot represents the Discord bot.
type Bot struct {
	responder  commands.Responder
	cmdManager *commands.CommandManager
	config     *config.Config
	logger     *zap.Logger
	handled    *interactionCache
	ready      atomic.Bool
	account    atomic.Value
}

// NewBotParams holds dependencies for NewBot.
type NewBotParams struct {
	fx.In

	Cfg        *config.Config
	Session    *session.Session
	CmdManager *commands.CommandManager
	Logger     *zap.Logger
}

// NewBot creates the bot and subscribes its handlers to the session.
func NewBot(params NewBotParams) (*Bot, error) {
	if params.Session == nil {
		return nil, errors.New("session provided to NewBot is nil")
	}

	b, err := newBot(params.Session, params.CmdManager, params.Cfg, params.Logger)
	if err != nil {
		return nil, err
	}

	params.Session.AddHandler(func(e *gateway.ReadyEvent) {
		b.handleReady(e)
	})
	params.Session.AddHandler(func(e *gateway.InteractionCreateEvent) {
		b.handleInteraction(context.Background(), e)
	})

	b.logger.Info("Bot created")

	return b, nil
}

func newBot(r commands.Responder, cm *commands.CommandManager, cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	if cm == nil {
		return nil, errors.New("command manager provided to NewBot is nil")
	}
	if cfg == nil {
		return nil, errors.New("config provided to NewBot is nil")
	}
	if logger == nil {
		return nil, errors.New("logger provided to NewBot is nil")
	}

	handled, err := newInteractionCache(cfg.Discord.DedupCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create interaction cache: %w", err)
	}

	return &Bot{
		responder:  r,
		cmdManager: cm,
		config:     cfg,
		logger:     logger.Named("bot"),
		handled:    handled,
	}, nil
}

// Start registers the slash commands. Registration failures are logged and
// do not prevent the bot from running.
func (b *Bot) Start(ctx context.Context) error {
	guildIDs, invalid := b.config.Discord.ParseGuildIDs()
	for _, idStr := range invalid {
		b.logger.Error("Failed to parse guild ID", zap.String("guildIDStr", idStr))
	}
	if len(b.config.Discord.GuildIDs) == 0 {
		b.logger.Warn("No guild IDs configured, registering commands globally")
	}

	if err := b.cmdManager.RegisterCommands(ctx, guildIDs); err != nil {
		b.logger.Error("Slash command registration finished with errors", zap.Error(err))
	}

	return nil
}

// Stop removes the registered commands when configured to.
func (b *Bot) Stop(ctx context.Context) error {
	if !b.config.Discord.UnregisterOnStop {
		return nil
	}

	guildIDs, _ := b.config.Discord.ParseGuildIDs()
	if err := b.cmdManager.UnregisterAllCommands(guildIDs); err != nil {
		return fmt.Errorf("failed to unregister commands: %w", err)
	}

	return nil
}

// Status reports whether the gateway has become ready.
func (b *Bot) Status() string {
	if b.ready.Load() {
		return StatusOnline
	}

	return StatusConnecting
}

// username returns the bot account name once the gateway is ready.
func (b *Bot) username() string {
	name, _ := b.account.Load().(string)

	return name
}

func (b *Bot) handleReady(e *gateway.ReadyEvent) {
	b.account.Store(e.User.Username)
	b.ready.Store(true)
	b.logger.Info("Gateway ready",
		zap.String("username", e.User.Username),
		zap.Int("guilds", len(e.Guilds)),
	)
}

func senderName(e *gateway.InteractionCreateEvent) string {
	switch {
	case e.Member != nil:
		return e.Member.User.Username
	case e.User != nil:
		return e.User.Username
	default:
		return ""
	}
}
