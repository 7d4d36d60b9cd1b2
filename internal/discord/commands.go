package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// commands is the /game command tree.
var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "game",
		Description: "Create/list/cancel game night posts.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Create a game post with map voting.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "type",
						Description: "Game type",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "PvP", Value: "pvp"},
							{Name: "Skirmish vs Bots", Value: "pve-bots"},
							{Name: "Co-op Campaign", Value: "coop-campaign"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "when",
						Description: `e.g., "today 7pm", "in 45m", "2025-09-18 19:30" (optional)`,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "maps",
						Description: "Comma-separated maps (optional; defaults used if blank)",
					},
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "ping_role",
						Description: "Role to ping (optional)",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List active game posts.",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "cancel",
				Description: "Cancel a game post you created.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "message",
						Description: "Message URL or message ID of the game post",
						Required:    true,
					},
				},
			},
		},
	},
}

// RegisterCommands overwrites the application's slash commands, guild
// scoped when guildID is set, global otherwise.
func (b *Bot) RegisterCommands(guildID string) error {
	appID := b.session.State.User.ID
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, guildID, commands); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	if guildID != "" {
		log.Info().Str("guild_id", guildID).Msg("registered guild commands")
	} else {
		log.Info().Msg("registered global commands")
	}
	return nil
}
