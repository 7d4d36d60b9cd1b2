// Package discord adapts Discord interactions to the lobby engine: slash
// commands and message components come in, embeds and component rows go
// out. The engine never sees Discord types.
package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gamenight/internal/lobby"
	"github.com/mcdev12/gamenight/internal/models"
)

// Bot is the Discord-facing side of the service. It owns the gateway
// session and translates interactions into engine calls.
type Bot struct {
	session *discordgo.Session
	app     *lobby.App
}

// NewBot creates a Discord session for the given bot token. Bind must be
// called before Open.
func NewBot(token string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	return &Bot{session: session}, nil
}

// Bind wires the lobby engine in and installs the interaction handlers.
func (b *Bot) Bind(app *lobby.App) {
	b.app = app
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Msg("logged in")
	})
	b.session.AddHandler(b.onInteraction)
}

// Open connects the gateway session.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Close shuts the gateway session down.
func (b *Bot) Close() error {
	return b.session.Close()
}

// IsAdmin implements lobby.AdminChecker via the member's channel
// permissions.
func (b *Bot) IsAdmin(ctx context.Context, actorID string, l *models.Lobby) (bool, error) {
	perms, err := b.session.UserChannelPermissions(actorID, l.ChannelID)
	if err != nil {
		return false, fmt.Errorf("lookup permissions: %w", err)
	}
	return perms&discordgo.PermissionAdministrator != 0, nil
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name != "game" || len(data.Options) == 0 {
			return
		}
		sub := data.Options[0]
		switch sub.Name {
		case "create":
			b.handleCreate(ctx, s, i, sub.Options)
		case "list":
			b.handleList(s, i)
		case "cancel":
			b.handleCancel(ctx, s, i, sub.Options)
		}

	case discordgo.InteractionMessageComponent:
		b.handleComponent(ctx, s, i)
	}
}

func (b *Bot) handleCreate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	req := lobby.CreateLobbyRequest{
		OwnerID:   interactionUserID(i),
		ChannelID: i.ChannelID,
	}
	for _, opt := range opts {
		switch opt.Name {
		case "type":
			req.Type = models.GameType(opt.StringValue())
		case "when":
			req.WhenText = opt.StringValue()
		case "maps":
			req.Maps = splitMaps(opt.StringValue())
		case "ping_role":
			req.PingRoleID = opt.RoleValue(nil, "").ID
		}
	}

	l := b.app.CreateLobby(ctx, req)

	content := ""
	if l.PingRoleID != "" {
		content = fmt.Sprintf("<@&%s>", l.PingRoleID)
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{buildEmbed(l)},
			Components: buildComponents(l, b.app.QuickOptions()),
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to post game message")
		return
	}

	// The posted message's id becomes the lobby id.
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch game message for registration")
		return
	}
	if err := b.app.Register(ctx, msg.ID, l); err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to register lobby")
	}
}

func (b *Bot) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	entries := b.app.List(context.Background())

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		timeText := "*time not set*"
		if e.Lobby.StartsAt != nil {
			timeText = ts(e.Lobby.StartsAt.Unix())
		}
		lines = append(lines, fmt.Sprintf("• **%s** — %s — Players %d — id: `%s`",
			e.Lobby.Type.Pretty(), timeText, len(e.Lobby.Members), e.ID))
	}

	content := "No active games."
	if len(lines) > 0 {
		content = strings.Join(lines, "\n")
	}
	b.respondEphemeral(s, i, content)
}

func (b *Bot) handleCancel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	raw := ""
	if len(opts) > 0 {
		raw = opts[0].StringValue()
	}
	messageID := ExtractMessageID(raw)
	if messageID == "" {
		b.respondEphemeral(s, i, "Could not parse message ID/URL.")
		return
	}

	snap, err := b.app.Cancel(ctx, messageID, interactionUserID(i))
	if err != nil {
		b.respondEphemeral(s, i, userFacing(err))
		return
	}

	// Best-effort: tombstone the original post. The lobby is already gone
	// from the store, so failure here only leaves a stale message behind.
	b.editCanceledMessage(snap.ChannelID, messageID)
	b.respondEphemeral(s, i, "Canceled.")
}

func (b *Bot) handleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	lobbyID := i.Message.ID
	actorID := interactionUserID(i)

	switch {
	case strings.HasPrefix(data.CustomID, customIDTimePrefix):
		unix, err := strconv.ParseInt(strings.TrimPrefix(data.CustomID, customIDTimePrefix), 10, 64)
		if err != nil {
			b.respondEphemeral(s, i, "Invalid time option.")
			return
		}
		snap, err := b.app.SetStartTime(ctx, lobbyID, actorID, time.Unix(unix, 0))
		if err != nil {
			b.respondEphemeral(s, i, userFacing(err))
			return
		}
		b.respondUpdate(s, i, snap)

	case strings.HasPrefix(data.CustomID, customIDCancelPrefix):
		if _, err := b.app.Cancel(ctx, lobbyID, actorID); err != nil {
			b.respondEphemeral(s, i, userFacing(err))
			return
		}
		b.respondCanceled(s, i)

	case data.CustomID == customIDJoin:
		snap, err := b.app.Join(ctx, lobbyID, actorID)
		if err != nil {
			b.respondEphemeral(s, i, userFacing(err))
			return
		}
		b.respondUpdate(s, i, snap)

	case data.CustomID == customIDLeave:
		snap, err := b.app.Leave(ctx, lobbyID, actorID)
		if err != nil {
			b.respondEphemeral(s, i, userFacing(err))
			return
		}
		b.respondUpdate(s, i, snap)

	case data.CustomID == customIDMapSelect:
		if len(data.Values) == 0 {
			return
		}
		idx, err := strconv.Atoi(data.Values[0])
		if err != nil {
			b.respondEphemeral(s, i, "Invalid map selection.")
			return
		}
		snap, err := b.app.Vote(ctx, lobbyID, actorID, idx)
		if err != nil {
			b.respondEphemeral(s, i, userFacing(err))
			return
		}
		b.respondUpdate(s, i, snap)
	}
}

// respondUpdate re-renders the game post in place.
func (b *Bot) respondUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, l *models.Lobby) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{buildEmbed(l)},
			Components: buildComponents(l, b.app.QuickOptions()),
		},
	})
	if err != nil {
		log.Error().Err(err).Str("message_id", i.Message.ID).Msg("failed to update game message")
	}
}

func (b *Bot) respondCanceled(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{buildCanceledEmbed()},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to render canceled message")
	}
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to send ephemeral response")
	}
}

func (b *Bot) editCanceledMessage(channelID, messageID string) {
	embeds := []*discordgo.MessageEmbed{buildCanceledEmbed()}
	components := []discordgo.MessageComponent{}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		log.Warn().Err(err).
			Str("channel_id", channelID).
			Str("message_id", messageID).
			Msg("failed to edit canceled game message")
	}
}

// userFacing maps engine errors onto the short messages shown to the
// actor.
func userFacing(err error) string {
	switch {
	case errors.Is(err, lobby.ErrLobbyNotFound):
		return "This game is no longer active."
	case errors.Is(err, lobby.ErrAlreadyMember):
		return "You already joined."
	case errors.Is(err, lobby.ErrNotMember):
		return "You are not in this lobby."
	case errors.Is(err, lobby.ErrInvalidMapIndex):
		return "Invalid map selection."
	case errors.Is(err, lobby.ErrUnauthorized):
		return "Only the creator or an admin can do that."
	default:
		return "Something went wrong."
	}
}

// interactionUserID works for both guild and DM interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// splitMaps parses the comma-separated maps option, dropping blanks.
func splitMaps(raw string) []string {
	parts := strings.Split(raw, ",")
	maps := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			maps = append(maps, p)
		}
	}
	return maps
}
