package lobby

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gamenight/internal/events"
	"github.com/mcdev12/gamenight/internal/models"
	"github.com/mcdev12/gamenight/internal/when"
)

// AdminChecker is the external authorization collaborator. It reports
// whether an actor holds administrator capability on the host platform.
// It may do I/O and is always called outside the per-lobby lock.
type AdminChecker interface {
	IsAdmin(ctx context.Context, actorID string, l *models.Lobby) (bool, error)
}

// Publisher is where the app emits lifecycle events after a mutation
// commits. Implementations must not block indefinitely; failures are
// logged here and never surfaced to the actor.
type Publisher interface {
	Publish(ctx context.Context, eventType events.Type, lobbyID string, lobby *models.Lobby) error
}

// App is the lobby engine. Every operation is a single atomic transition
// on one lobby, validated and applied under that lobby's lock, with
// rendering and notification left to the caller on the returned
// snapshot.
type App struct {
	repo  *Repository
	admin AdminChecker
	pub   Publisher
	clock clockwork.Clock
}

// NewApp creates the lobby engine. pub may be events.NopPublisher{}.
func NewApp(repo *Repository, admin AdminChecker, pub Publisher, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		admin: admin,
		pub:   pub,
		clock: clock,
	}
}

// CreateLobby builds a new lobby from the create-action payload. It
// always succeeds: an empty map list falls back to DefaultMaps, a long
// one is truncated to the first MaxMaps entries in order, and a time
// phrase that fails to parse simply leaves the start unset so the caller
// offers the quick time poll. The owner joins implicitly.
//
// The returned lobby is not yet stored; the adapter posts the rendered
// message first and then calls Register with the resulting message id.
func (a *App) CreateLobby(ctx context.Context, req CreateLobbyRequest) *models.Lobby {
	maps := req.Maps
	if len(maps) == 0 {
		maps = append([]string(nil), DefaultMaps...)
	}
	if len(maps) > models.MaxMaps {
		maps = maps[:models.MaxMaps]
	}

	now := a.clock.Now()
	l := &models.Lobby{
		OwnerID:     req.OwnerID,
		Type:        req.Type,
		Maps:        maps,
		Members:     []string{req.OwnerID},
		VoteCounts:  make(map[int]int),
		VoterChoice: make(map[string]int),
		PingRoleID:  req.PingRoleID,
		ChannelID:   req.ChannelID,
		CreatedAt:   now,
	}

	if at, ok := when.Parse(req.WhenText, now); ok {
		l.StartsAt = &at
	}
	return l
}

// Register stores a freshly created lobby under the id its rendered
// message was assigned. Fails with ErrLobbyExists on id reuse.
func (a *App) Register(ctx context.Context, id string, l *models.Lobby) error {
	if err := a.repo.Register(id, l); err != nil {
		return err
	}
	log.Info().
		Str("lobby_id", id).
		Str("owner_id", l.OwnerID).
		Str("type", string(l.Type)).
		Bool("has_time", l.StartsAt != nil).
		Msg("lobby registered")
	a.publish(ctx, events.TypeLobbyCreated, id, l)
	return nil
}

// Join adds the actor to the lobby's member set. Joining twice is
// refused with ErrAlreadyMember and changes nothing.
func (a *App) Join(ctx context.Context, id, actorID string) (*models.Lobby, error) {
	snap, err := a.repo.Update(id, func(l *models.Lobby) error {
		if l.HasMember(actorID) {
			return ErrAlreadyMember
		}
		l.Members = append(l.Members, actorID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.publish(ctx, events.TypeMemberJoined, id, snap)
	return snap, nil
}

// Leave removes the actor from the member set and releases their active
// map vote in the same atomic step.
func (a *App) Leave(ctx context.Context, id, actorID string) (*models.Lobby, error) {
	snap, err := a.repo.Update(id, func(l *models.Lobby) error {
		if !l.HasMember(actorID) {
			return ErrNotMember
		}
		l.RemoveMember(actorID)
		l.ClearVote(actorID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.publish(ctx, events.TypeMemberLeft, id, snap)
	return snap, nil
}

// Vote records the actor's single map choice, atomically swapping out
// any prior choice so the voter is never double-counted or uncounted.
// Membership is deliberately not required: spectators may steer the map.
func (a *App) Vote(ctx context.Context, id, actorID string, mapIdx int) (*models.Lobby, error) {
	snap, err := a.repo.Update(id, func(l *models.Lobby) error {
		if mapIdx < 0 || mapIdx >= len(l.Maps) {
			return ErrInvalidMapIndex
		}
		l.ChangeVote(actorID, mapIdx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.publish(ctx, events.TypeVoteCast, id, snap)
	return snap, nil
}

// SetStartTime overwrites the lobby's start instant. Only the owner or a
// platform administrator may set it; the admin lookup happens before the
// lobby lock is taken so external I/O never stalls other actions.
func (a *App) SetStartTime(ctx context.Context, id, actorID string, at time.Time) (*models.Lobby, error) {
	if err := a.authorize(ctx, id, actorID); err != nil {
		return nil, err
	}
	snap, err := a.repo.Update(id, func(l *models.Lobby) error {
		l.StartsAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("lobby_id", id).
		Str("actor_id", actorID).
		Time("starts_at", at).
		Msg("lobby start time set")
	a.publish(ctx, events.TypeStartTimeSet, id, snap)
	return snap, nil
}

// Cancel removes the lobby and returns its final snapshot for the
// best-effort "canceled" render. Only the owner or an administrator may
// cancel.
func (a *App) Cancel(ctx context.Context, id, actorID string) (*models.Lobby, error) {
	if err := a.authorize(ctx, id, actorID); err != nil {
		return nil, err
	}
	snap, ok := a.repo.Remove(id)
	if !ok {
		return nil, ErrLobbyNotFound
	}
	log.Info().
		Str("lobby_id", id).
		Str("actor_id", actorID).
		Msg("lobby canceled")
	a.publish(ctx, events.TypeLobbyCanceled, id, snap)
	return snap, nil
}

// Get returns a snapshot of one lobby.
func (a *App) Get(ctx context.Context, id string) (*models.Lobby, error) {
	return a.repo.Get(id)
}

// List returns snapshots of all active lobbies in creation order.
func (a *App) List(ctx context.Context) []Entry {
	return a.repo.List()
}

// QuickOptions returns the time-poll choices relative to the engine's
// clock.
func (a *App) QuickOptions() []when.QuickOption {
	return when.QuickOptions(a.clock.Now())
}

// authorize admits the lobby owner and platform administrators.
func (a *App) authorize(ctx context.Context, id, actorID string) error {
	l, err := a.repo.Get(id)
	if err != nil {
		return err
	}
	if l.OwnerID == actorID {
		return nil
	}
	isAdmin, err := a.admin.IsAdmin(ctx, actorID, l)
	if err != nil {
		log.Warn().Err(err).
			Str("lobby_id", id).
			Str("actor_id", actorID).
			Msg("admin check failed")
		return ErrUnauthorized
	}
	if !isAdmin {
		return ErrUnauthorized
	}
	return nil
}

func (a *App) publish(ctx context.Context, eventType events.Type, id string, snap *models.Lobby) {
	if a.pub == nil {
		return
	}
	if err := a.pub.Publish(ctx, eventType, id, snap); err != nil {
		log.Warn().Err(err).
			Str("lobby_id", id).
			Str("event_type", string(eventType)).
			Msg("failed to publish lobby event")
	}
}
