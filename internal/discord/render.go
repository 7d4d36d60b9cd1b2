package discord

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mcdev12/gamenight/internal/models"
	"github.com/mcdev12/gamenight/internal/when"
)

// Component custom id prefixes. The time buttons carry their unix
// timestamp and the cancel button its owner id, same trick the embed
// permits for stateless dispatch.
const (
	customIDJoin         = "gn_join"
	customIDLeave        = "gn_leave"
	customIDMapSelect    = "gn_map_select"
	customIDCancelPrefix = "gn_cancel_"
	customIDTimePrefix   = "gn_time_"
)

const (
	colorActive   = 0x00a3ff
	colorCanceled = 0xb71c1c
)

// ts renders Discord's timestamp markup: absolute plus relative.
func ts(unix int64) string {
	return fmt.Sprintf("<t:%d:F> (<t:%d:R>)", unix, unix)
}

// buildEmbed renders a lobby snapshot as the game post embed.
func buildEmbed(l *models.Lobby) *discordgo.MessageEmbed {
	mentions := make([]string, 0, len(l.Members))
	for _, id := range l.Members {
		mentions = append(mentions, fmt.Sprintf("<@%s>", id))
	}
	joined := strings.Join(mentions, "\n")
	if joined == "" {
		joined = "—"
	}

	leaderText := "No votes yet"
	if idx, ok := l.TopMapIndex(); ok {
		leaderText = fmt.Sprintf("Leading: **%s**", l.Maps[idx])
	}

	timeLine := "Start: *(choose a time below)*"
	if l.StartsAt != nil {
		timeLine = fmt.Sprintf("Start: %s", ts(l.StartsAt.Unix()))
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Players", Value: fmt.Sprintf("%d", len(l.Members)), Inline: true},
		{Name: "Current Map", Value: leaderText, Inline: true},
		{Name: "Joined", Value: joined},
	}
	for i, m := range l.Maps {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   m,
			Value:  fmt.Sprintf("Votes: **%d**", l.VotesFor(i)),
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Game Night • %s", l.Type.Pretty()),
		Description: timeLine + "\nMap voting below (1 vote per player; you can change it).",
		Color:       colorActive,
		Fields:      fields,
	}
}

// buildCanceledEmbed renders the tombstone for a canceled lobby.
func buildCanceledEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Game Canceled",
		Color: colorCanceled,
	}
}

// buildButtonsRow renders the Join/Leave/Cancel row.
func buildButtonsRow(ownerID string) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Join",
				Style:    discordgo.SuccessButton,
				CustomID: customIDJoin,
			},
			discordgo.Button{
				Label:    "Leave",
				Style:    discordgo.SecondaryButton,
				CustomID: customIDLeave,
			},
			discordgo.Button{
				Label:    "Cancel (Owner)",
				Style:    discordgo.DangerButton,
				CustomID: customIDCancelPrefix + ownerID,
			},
		},
	}
}

// buildMapSelect renders the map voting select menu.
func buildMapSelect(maps []string) discordgo.ActionsRow {
	options := make([]discordgo.SelectMenuOption, 0, len(maps))
	for i, m := range maps {
		options = append(options, discordgo.SelectMenuOption{
			Label: m,
			Value: fmt.Sprintf("%d", i),
		})
	}

	minValues := 1
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    customIDMapSelect,
				Placeholder: "Vote for a map",
				MinValues:   &minValues,
				MaxValues:   1,
				Options:     options,
			},
		},
	}
}

// buildTimePollRow renders the quick time-poll buttons.
func buildTimePollRow(options []when.QuickOption) discordgo.ActionsRow {
	buttons := make([]discordgo.MessageComponent, 0, len(options))
	for i, opt := range options {
		style := discordgo.PrimaryButton
		if i >= 2 {
			style = discordgo.SecondaryButton
		}
		buttons = append(buttons, discordgo.Button{
			Label:    opt.Label,
			Style:    style,
			CustomID: fmt.Sprintf("%s%d", customIDTimePrefix, opt.At.Unix()),
		})
	}
	return discordgo.ActionsRow{Components: buttons}
}

// buildComponents renders the full component set for a lobby snapshot,
// including the time poll while no start time is set.
func buildComponents(l *models.Lobby, quick []when.QuickOption) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	if l.NeedsTimePoll() {
		rows = append(rows, buildTimePollRow(quick))
	}
	rows = append(rows, buildButtonsRow(l.OwnerID), buildMapSelect(l.Maps))
	return rows
}

var (
	reMessageURL = regexp.MustCompile(`/channels/\d+/\d+/(\d+)`)
	reMessageID  = regexp.MustCompile(`^\d{17,20}$`)
)

// ExtractMessageID pulls a message id out of a message URL or a bare
// snowflake. Returns "" when neither shape matches.
func ExtractMessageID(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := reMessageURL.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if reMessageID.MatchString(raw) {
		return raw
	}
	return ""
}
