package models

import (
	"time"
)

// GameType defines the kind of game a lobby is for.
type GameType string

const (
	GameTypePvP            GameType = "pvp"
	GameTypeSkirmishVsBots GameType = "pve-bots"
	GameTypeCoopCampaign   GameType = "coop-campaign"
)

// Pretty returns the display name for a game type.
func (t GameType) Pretty() string {
	switch t {
	case GameTypePvP:
		return "PvP"
	case GameTypeSkirmishVsBots:
		return "Skirmish vs Bots"
	case GameTypeCoopCampaign:
		return "Co-op Campaign"
	default:
		return string(t)
	}
}

// IsValid reports whether t is one of the known game types.
func (t GameType) IsValid() bool {
	switch t {
	case GameTypePvP, GameTypeSkirmishVsBots, GameTypeCoopCampaign:
		return true
	}
	return false
}

// MaxMaps caps the voteable map list; it matches the select-menu option
// limit of the chat platform.
const MaxMaps = 25

// Lobby represents one game post awaiting players and a start time.
// It is keyed externally by the id of the message it was rendered as.
type Lobby struct {
	OwnerID     string         `json:"owner_id"`
	Type        GameType       `json:"type"`
	StartsAt    *time.Time     `json:"starts_at,omitempty"`
	Maps        []string       `json:"maps"`
	Members     []string       `json:"members"`
	VoteCounts  map[int]int    `json:"vote_counts"`
	VoterChoice map[string]int `json:"voter_choice"`
	PingRoleID  string         `json:"ping_role_id,omitempty"`
	ChannelID   string         `json:"channel_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NeedsTimePoll reports whether the lobby should be rendered with the
// quick time-poll row, which is the case until a start time is set.
func (l *Lobby) NeedsTimePoll() bool {
	return l.StartsAt == nil
}

// HasMember reports whether userID has joined the lobby.
func (l *Lobby) HasMember(userID string) bool {
	for _, m := range l.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// RemoveMember drops userID from the member list, preserving order.
func (l *Lobby) RemoveMember(userID string) {
	for i, m := range l.Members {
		if m == userID {
			l.Members = append(l.Members[:i], l.Members[i+1:]...)
			return
		}
	}
}

// ChangeVote records voterID's single active map choice. Any prior choice
// is released first so the tally sum always equals the number of voters.
func (l *Lobby) ChangeVote(voterID string, mapIdx int) {
	if prev, ok := l.VoterChoice[voterID]; ok {
		l.decrementTally(prev)
	}
	l.VoterChoice[voterID] = mapIdx
	l.VoteCounts[mapIdx]++
}

// ClearVote releases voterID's active choice, if any.
func (l *Lobby) ClearVote(voterID string) {
	prev, ok := l.VoterChoice[voterID]
	if !ok {
		return
	}
	delete(l.VoterChoice, voterID)
	l.decrementTally(prev)
}

// decrementTally is clamped at zero; under correct operation it never
// needs the clamp.
func (l *Lobby) decrementTally(mapIdx int) {
	if c := l.VoteCounts[mapIdx]; c > 1 {
		l.VoteCounts[mapIdx] = c - 1
	} else {
		delete(l.VoteCounts, mapIdx)
	}
}

// VotesFor returns the tally for a map index.
func (l *Lobby) VotesFor(mapIdx int) int {
	return l.VoteCounts[mapIdx]
}

// TopMapIndex returns the map index with the highest tally, lowest index
// winning ties. ok is false when no votes have been cast.
func (l *Lobby) TopMapIndex() (idx int, ok bool) {
	best := 0
	for i := range l.Maps {
		if c := l.VoteCounts[i]; c > best {
			best = c
			idx = i
			ok = true
		}
	}
	return idx, ok
}

// Clone returns a deep copy safe to hand to renderers while the original
// keeps mutating under its lock.
func (l *Lobby) Clone() *Lobby {
	c := *l
	c.Maps = append([]string(nil), l.Maps...)
	c.Members = append([]string(nil), l.Members...)
	c.VoteCounts = make(map[int]int, len(l.VoteCounts))
	for k, v := range l.VoteCounts {
		c.VoteCounts[k] = v
	}
	c.VoterChoice = make(map[string]int, len(l.VoterChoice))
	for k, v := range l.VoterChoice {
		c.VoterChoice[k] = v
	}
	if l.StartsAt != nil {
		t := *l.StartsAt
		c.StartsAt = &t
	}
	return &c
}
