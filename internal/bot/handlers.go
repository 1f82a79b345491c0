package bot

import (
	"context"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"go.uber.org/zap"

	"github.com/rbxservers/rbxservers-bot/internal/commands"
)

const (
	msgCommandNotFound = "Command not found."
	msgCommandFailed   = "An error occurred while executing the command."
)

// handleInteraction dispatches slash commands to the loaded commands.
func (b *Bot) handleInteraction(ctx context.Context, e *gateway.InteractionCreateEvent) {
	data, ok := e.Data.(*discord.CommandInteraction)
	if !ok {
		b.logger.Debug("Received unhandled interaction type", zap.Stringer("interactionID", e.ID))

		return
	}

	if !b.handled.firstSeen(e.ID) {
		b.logger.Debug("Skipping already handled interaction", zap.Stringer("interactionID", e.ID))

		return
	}

	logger := b.logger.With(
		zap.String("commandName", data.Name),
		zap.String("user", senderName(e)),
	)
	logger.Info("Received slash command")

	cmd, ok := b.cmdManager.GetCommand(data.Name)
	if !ok {
		logger.Warn("Unknown command")
		if err := commands.RespondText(b.responder, e, msgCommandNotFound); err != nil {
			logger.Error("Failed to respond to interaction for unknown command", zap.Error(err))
		}

		return
	}

	if err := cmd.Execute(ctx, b.responder, e, data); err != nil {
		logger.Error("Error executing command", zap.Error(err))
		if errResp := commands.RespondText(b.responder, e, msgCommandFailed); errResp != nil {
			logger.Error("Failed to send error response for command execution", zap.Error(errResp))
		}

		return
	}

	logger.Info("Command executed successfully")
}
