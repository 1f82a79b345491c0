package commands

import (
	"context"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"go.uber.org/zap"

	"github.com/rbxservers/rbxservers-bot/internal/config"
)

// ServersCommand is the RbxServers extension. It answers /servers with a
// canned message taken from the config.
type ServersCommand struct {
	message string
	logger  *zap.Logger
}

// NewServersCommand creates the /servers command.
func NewServersCommand(cfg *config.Config, logger *zap.Logger) Command {
	return &ServersCommand{
		message: cfg.Discord.ServersMessage,
		logger:  logger.Named("servers_command"),
	}
}

// Name returns the name of the command.
func (c *ServersCommand) Name() string {
	return "servers"
}

// Description returns the description of the command.
func (c *ServersCommand) Description() string {
	return "Shows information about RbxServers."
}

// Options returns the command options.
func (c *ServersCommand) Options() []discord.CommandOption {
	return nil
}

// Execute sends the canned message.
func (c *ServersCommand) Execute(ctx context.Context, r Responder, e *gateway.InteractionCreateEvent, data *discord.CommandInteraction) error {
	c.logger.Debug("Answering servers command", zap.Stringer("interactionID", e.ID))

	return RespondText(r, e, c.message)
}
