package commands_test

import (
	"context"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/stretchr/testify/mock"

	"github.com/rbxservers/rbxservers-bot/internal/commands"
)

type mockCommand struct {
	mock.Mock
}

func newMockCommand(name string) *mockCommand {
	m := &mockCommand{}
	m.On("Name").Return(name)

	return m
}

func (m *mockCommand) Name() string {
	return m.Called().String(0)
}

func (m *mockCommand) Description() string {
	return "mock command"
}

func (m *mockCommand) Options() []discord.CommandOption {
	return nil
}

func (m *mockCommand) Execute(ctx context.Context, r commands.Responder, e *gateway.InteractionCreateEvent, data *discord.CommandInteraction) error {
	return m.Called(ctx, r, e, data).Error(0)
}

type mockRegistrar struct {
	mock.Mock
}

func (m *mockRegistrar) BulkOverwriteCommands(appID discord.AppID, cmds []api.CreateCommandData) ([]discord.Command, error) {
	args := m.Called(appID, cmds)

	return args.Get(0).([]discord.Command), args.Error(1)
}

func (m *mockRegistrar) BulkOverwriteGuildCommands(appID discord.AppID, guildID discord.GuildID, cmds []api.CreateCommandData) ([]discord.Command, error) {
	args := m.Called(appID, guildID, cmds)

	return args.Get(0).([]discord.Command), args.Error(1)
}

// recordingResponder captures interaction responses.
type recordingResponder struct {
	responses []api.InteractionResponse
	err       error
}

func (r *recordingResponder) RespondInteraction(id discord.InteractionID, token string, resp api.InteractionResponse) error {
	r.responses = append(r.responses, resp)

	return r.err
}

func (r *recordingResponder) lastContent() string {
	if len(r.responses) == 0 {
		return ""
	}
	data := r.responses[len(r.responses)-1].Data
	if data == nil || data.Content == nil {
		return ""
	}

	return data.Content.Val
}
