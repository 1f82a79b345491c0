// Package commands loads slash commands and registers them with Discord.
// Commands are contributed through the "commands" Fx value group, so an
// extension only needs an annotated constructor in Module.
package commands

import (
	"go.uber.org/fx"
)

// AsCommand annotates a constructor returning a Command so its result joins
// the "commands" group.
func AsCommand(constructor any) any {
	return fx.Annotate(
		constructor,
		fx.ResultTags(`group:"commands"`),
	)
}

// Module provides command-related dependencies. A Registrar must be
// provided elsewhere, normally from the Discord session.
var Module = fx.Module("commands",
	fx.Provide(
		NewCommandManager,
		AsCommand(NewPingCommand),
		AsCommand(NewVersionCommand),
		AsCommand(NewServersCommand),
	),
)
