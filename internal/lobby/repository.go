package lobby

import (
	"sync"

	"github.com/mcdev12/gamenight/internal/models"
)

// Repository is the in-memory lobby store. Contents are process-local
// and lost on restart by design.
//
// Mutations on one lobby id are serialized through that entry's own
// mutex, so compound updates (vote swap, leave-with-vote) are atomic per
// lobby while unrelated lobbies proceed in parallel. The outer lock only
// guards the map itself and is never held across an entry mutation.
type Repository struct {
	mu      sync.RWMutex
	lobbies map[string]*entry
	order   []string
}

type entry struct {
	mu      sync.Mutex
	lobby   *models.Lobby
	removed bool
}

// NewRepository returns an empty lobby store.
func NewRepository() *Repository {
	return &Repository{
		lobbies: make(map[string]*entry),
	}
}

// Register stores a new lobby under id. It fails with ErrLobbyExists if
// the id is already taken.
func (r *Repository) Register(id string, l *models.Lobby) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.lobbies[id]; exists {
		return ErrLobbyExists
	}
	r.lobbies[id] = &entry{lobby: l}
	r.order = append(r.order, id)
	return nil
}

// Get returns a snapshot of the lobby stored under id.
func (r *Repository) Get(id string) (*models.Lobby, error) {
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrLobbyNotFound
	}
	return e.lobby.Clone(), nil
}

// Update applies fn to the lobby stored under id while holding its
// entry lock, making the whole read-modify-write indivisible. If fn
// returns an error the lobby is left untouched only insofar as fn did
// not mutate it; fns here fail fast before mutating. On success a
// snapshot of the updated state is returned.
func (r *Repository) Update(id string, fn func(*models.Lobby) error) (*models.Lobby, error) {
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrLobbyNotFound
	}
	if err := fn(e.lobby); err != nil {
		return nil, err
	}
	return e.lobby.Clone(), nil
}

// Remove deletes the lobby stored under id and returns its final
// snapshot. Removing an absent id is a no-op with ok=false.
func (r *Repository) Remove(id string) (*models.Lobby, bool) {
	r.mu.Lock()
	e, exists := r.lobbies[id]
	if !exists {
		r.mu.Unlock()
		return nil, false
	}
	delete(r.lobbies, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.removed = true
	return e.lobby.Clone(), true
}

// List returns snapshots of all active lobbies in insertion order.
func (r *Repository) List() []Entry {
	r.mu.RLock()
	ids := append([]string(nil), r.order...)
	entries := make([]*entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, r.lobbies[id])
	}
	r.mu.RUnlock()

	out := make([]Entry, 0, len(ids))
	for i, e := range entries {
		e.mu.Lock()
		if !e.removed {
			out = append(out, Entry{ID: ids[i], Lobby: e.lobby.Clone()})
		}
		e.mu.Unlock()
	}
	return out
}

// Len returns the number of active lobbies.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lobbies)
}

func (r *Repository) lookup(id string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, exists := r.lobbies[id]
	if !exists {
		return nil, ErrLobbyNotFound
	}
	return e, nil
}
