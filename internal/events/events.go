package events

import (
	"fmt"
	"time"

	"github.com/mcdev12/gamenight/internal/models"
)

// Type identifies a lobby lifecycle event.
type Type string

const (
	TypeLobbyCreated  Type = "lobby_created"
	TypeMemberJoined  Type = "member_joined"
	TypeMemberLeft    Type = "member_left"
	TypeVoteCast      Type = "vote_cast"
	TypeStartTimeSet  Type = "start_time_set"
	TypeLobbyCanceled Type = "lobby_canceled"
)

// Stream configuration shared by the publisher and the gateway consumer.
const (
	StreamName    = "LOBBY_EVENTS"
	SubjectPrefix = "lobby.events"
	SubjectFilter = "lobby.events.>"
)

// Subject returns the JetStream subject an event type is published on.
func Subject(t Type) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, t)
}

// LobbyEvent is the JSON envelope carried on the bus. The full lobby
// snapshot rides along so consumers never have to query state back.
type LobbyEvent struct {
	ID        string        `json:"id"`
	LobbyID   string        `json:"lobby_id"`
	Type      Type          `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Lobby     *models.Lobby `json:"lobby,omitempty"`
}
