package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gamenight/internal/models"
)

const (
	natsMaxReconnects = -1 // infinite
	natsReconnectWait = 2 * time.Second
	publishTimeout    = 5 * time.Second
)

// Publisher publishes lobby lifecycle events to NATS JetStream.
// Publishing is strictly best-effort: the authoritative state change has
// already committed by the time an event goes out, so callers log and
// ignore any error returned here.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewPublisher connects to NATS and ensures the lobby event stream
// exists.
func NewPublisher(ctx context.Context, natsURL string) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectFilter},
		Storage:  jetstream.MemoryStorage, // lobby state is volatile anyway
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// Publish emits one lobby event with a snapshot attached.
func (p *Publisher) Publish(ctx context.Context, eventType Type, lobbyID string, lobby *models.Lobby) error {
	event := LobbyEvent{
		ID:        uuid.New().String(),
		LobbyID:   lobbyID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Lobby:     lobby,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if _, err := p.js.Publish(pubCtx, Subject(eventType), data); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	log.Debug().
		Str("event_id", event.ID).
		Str("event_type", string(eventType)).
		Str("lobby_id", lobbyID).
		Msg("published lobby event")
	return nil
}

// Close tears down the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// NopPublisher drops all events. Used when NATS is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType Type, lobbyID string, lobby *models.Lobby) error {
	return nil
}
