package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Registrar publishes slash command definitions to Discord.
type Registrar interface {
	BulkOverwriteCommands(appID discord.AppID, cmds []api.CreateCommandData) ([]discord.Command, error)
	BulkOverwriteGuildCommands(appID discord.AppID, guildID discord.GuildID, cmds []api.CreateCommandData) ([]discord.Command, error)
}

// NewRegistrar exposes the session's REST client as a Registrar.
func NewRegistrar(s *session.Session) Registrar {
	return s
}

// CommandManagerParams holds dependencies for NewCommandManager.
type CommandManagerParams struct {
	fx.In
	Registrar     Registrar `optional:"true"`
	ApplicationID discord.AppID
	Logger        *zap.Logger
	Commands      []Command `group:"commands"`
}

// CommandManager owns the loaded commands and their registration with Discord.
type CommandManager struct {
	registrar     Registrar
	applicationID discord.AppID
	logger        *zap.Logger
	commands      map[string]Command
}

// NewCommandManager loads every command contributed to the "commands" group.
// Nil entries are skipped and the first command wins on duplicate names.
func NewCommandManager(params CommandManagerParams) *CommandManager {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("commands")

	cm := &CommandManager{
		registrar:     params.Registrar,
		applicationID: params.ApplicationID,
		logger:        logger,
		commands:      make(map[string]Command, len(params.Commands)),
	}

	for _, cmd := range params.Commands {
		if cmd == nil {
			logger.Warn("Skipping nil command")

			continue
		}
		name := cmd.Name()
		if _, exists := cm.commands[name]; exists {
			logger.Warn("Duplicate command name, keeping the first one", zap.String("commandName", name))

			continue
		}
		cm.commands[name] = cmd
		logger.Debug("Loaded command", zap.String("commandName", name))
	}

	logger.Info("Command manager created", zap.Int("count", len(cm.commands)))

	return cm
}

// GetCommand retrieves a loaded command by its name.
func (cm *CommandManager) GetCommand(name string) (Command, bool) {
	cmd, ok := cm.commands[name]

	return cmd, ok
}

// Names returns the loaded command names in sorted order.
func (cm *CommandManager) Names() []string {
	names := make([]string, 0, len(cm.commands))
	for name := range cm.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (cm *CommandManager) createData() []api.CreateCommandData {
	names := cm.Names()
	cmds := make([]api.CreateCommandData, 0, len(names))
	for _, name := range names {
		cmd := cm.commands[name]
		cmds = append(cmds, api.CreateCommandData{
			Name:        cmd.Name(),
			Description: cmd.Description(),
			Options:     cmd.Options(),
		})
	}

	return cmds
}

// RegisterCommands registers all loaded commands with Discord for the given guilds,
// or globally when no guild is given. A failing guild does not stop the others;
// the returned error joins every failure.
func (cm *CommandManager) RegisterCommands(ctx context.Context, guildIDs []discord.GuildID) error {
	if cm.registrar == nil {
		return errors.New("command manager has no registrar")
	}

	cmds := cm.createData()
	if len(cmds) == 0 {
		cm.logger.Info("No commands to register.")

		return nil
	}

	if len(guildIDs) == 0 {
		registered, err := cm.registrar.BulkOverwriteCommands(cm.applicationID, cmds)
		if err != nil {
			return fmt.Errorf("failed to register global commands: %w", err)
		}
		cm.logger.Info("Registered global slash commands",
			zap.Int("count", len(registered)),
			zap.Stringer("applicationID", cm.applicationID),
		)

		return nil
	}

	var errs []error
	for _, guildID := range guildIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		registered, err := cm.registrar.BulkOverwriteGuildCommands(cm.applicationID, guildID, cmds)
		if err != nil {
			cm.logger.Error("Failed to bulk overwrite commands for guild",
				zap.Error(err),
				zap.Stringer("applicationID", cm.applicationID),
				zap.Stringer("guildID", guildID),
			)
			errs = append(errs, fmt.Errorf("guild %s: %w", guildID, err))

			continue
		}
		cm.logger.Info("Registered slash commands for guild",
			zap.Int("count", len(registered)),
			zap.Stringer("guildID", guildID),
		)
	}

	return errors.Join(errs...)
}

// UnregisterAllCommands removes every command from the given guilds, or the
// global scope when no guild is given.
func (cm *CommandManager) UnregisterAllCommands(guildIDs []discord.GuildID) error {
	if cm.registrar == nil {
		return errors.New("command manager has no registrar")
	}

	if len(guildIDs) == 0 {
		if _, err := cm.registrar.BulkOverwriteCommands(cm.applicationID, []api.CreateCommandData{}); err != nil {
			return fmt.Errorf("failed to unregister global commands: %w", err)
		}

		return nil
	}

	var errs []error
	for _, guildID := range guildIDs {
		if _, err := cm.registrar.BulkOverwriteGuildCommands(cm.applicationID, guildID, []api.CreateCommandData{}); err != nil {
			cm.logger.Error("Failed to unregister commands for guild", zap.Error(err), zap.Stringer("guildID", guildID))
			errs = append(errs, fmt.Errorf("guild %s: %w", guildID, err))

			continue
		}
		cm.logger.Info("Unregistered slash commands for guild", zap.Stringer("guildID", guildID))
	}

	return errors.Join(errs...)
}
