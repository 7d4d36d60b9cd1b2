package lobby

import (
	"errors"

	"github.com/mcdev12/gamenight/internal/models"
)

// Domain errors. All are user-facing rejections the actor can correct
// and retry; none of them leaves a lobby in a partial state.
var (
	ErrLobbyNotFound   = errors.New("lobby not found")
	ErrLobbyExists     = errors.New("lobby already registered")
	ErrAlreadyMember   = errors.New("already joined")
	ErrNotMember       = errors.New("not in this lobby")
	ErrInvalidMapIndex = errors.New("invalid map selection")
	ErrUnauthorized    = errors.New("only the creator or an admin can do that")
)

// DefaultMaps is the voteable map pool used when a lobby is created
// without an explicit list.
var DefaultMaps = []string{
	"Mediterranean",
	"Oasis",
	"Alfheim",
	"Ghost Lake",
	"Savannah",
	"Marsh",
	"Anatolia",
	"Islands",
}

// CreateLobbyRequest carries the create-action payload.
type CreateLobbyRequest struct {
	OwnerID    string
	Type       models.GameType
	Maps       []string
	WhenText   string
	PingRoleID string
	ChannelID  string
}

// Entry pairs a lobby id with a snapshot of its state.
type Entry struct {
	ID    string        `json:"id"`
	Lobby *models.Lobby `json:"lobby"`
}
