package models

import "testing"

func newLobby(maps ...string) *Lobby {
	return &Lobby{
		OwnerID:     "owner",
		Type:        GameTypePvP,
		Maps:        maps,
		Members:     []string{"owner"},
		VoteCounts:  make(map[int]int),
		VoterChoice: make(map[string]int),
	}
}

func checkTallySum(t *testing.T, l *Lobby) {
	t.Helper()
	sum := 0
	for _, c := range l.VoteCounts {
		sum += c
	}
	if sum != len(l.VoterChoice) {
		t.Fatalf("tally sum %d != voter count %d", sum, len(l.VoterChoice))
	}
}

func TestChangeVoteSwapsAtomically(t *testing.T) {
	l := newLobby("a", "b", "c")

	l.ChangeVote("u1", 0)
	checkTallySum(t, l)
	if l.VotesFor(0) != 1 {
		t.Fatalf("expected 1 vote for map 0, got %d", l.VotesFor(0))
	}

	l.ChangeVote("u1", 2)
	checkTallySum(t, l)
	if l.VotesFor(0) != 0 || l.VotesFor(2) != 1 {
		t.Fatalf("vote swap left tallies at %d/%d", l.VotesFor(0), l.VotesFor(2))
	}

	// Re-voting the same index is a no-op on the sum.
	l.ChangeVote("u1", 2)
	checkTallySum(t, l)
	if l.VotesFor(2) != 1 {
		t.Fatalf("expected 1 vote for map 2, got %d", l.VotesFor(2))
	}
}

func TestClearVote(t *testing.T) {
	l := newLobby("a", "b")

	l.ChangeVote("u1", 1)
	l.ClearVote("u1")
	checkTallySum(t, l)
	if l.VotesFor(1) != 0 {
		t.Fatalf("expected tally released, got %d", l.VotesFor(1))
	}

	// Clearing with no active vote changes nothing.
	l.ChangeVote("u2", 0)
	l.ClearVote("u1")
	checkTallySum(t, l)
	if l.VotesFor(0) != 1 {
		t.Fatalf("expected unrelated vote intact, got %d", l.VotesFor(0))
	}
}

func TestTopMapIndex(t *testing.T) {
	cases := []struct {
		name    string
		tallies map[int]int
		wantIdx int
		wantOK  bool
	}{
		{
			name:    "no votes",
			tallies: map[int]int{},
			wantOK:  false,
		},
		{
			name:    "tie broken by lowest index",
			tallies: map[int]int{0: 2, 1: 3, 2: 3, 3: 1},
			wantIdx: 1,
			wantOK:  true,
		},
		{
			name:    "single voter",
			tallies: map[int]int{3: 1},
			wantIdx: 3,
			wantOK:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newLobby("a", "b", "c", "d")
			l.VoteCounts = tc.tallies

			idx, ok := l.TopMapIndex()
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && idx != tc.wantIdx {
				t.Fatalf("idx = %d, want %d", idx, tc.wantIdx)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	l := newLobby("a", "b")
	l.ChangeVote("u1", 0)

	c := l.Clone()
	c.ChangeVote("u2", 1)
	c.Members = append(c.Members, "u2")
	c.Maps[0] = "changed"

	if len(l.VoterChoice) != 1 || len(l.Members) != 1 || l.Maps[0] != "a" {
		t.Fatal("mutation of clone leaked into original")
	}
}

func TestRemoveMemberPreservesOrder(t *testing.T) {
	l := newLobby("a")
	l.Members = []string{"owner", "u1", "u2"}

	l.RemoveMember("u1")
	if len(l.Members) != 2 || l.Members[0] != "owner" || l.Members[1] != "u2" {
		t.Fatalf("unexpected members %v", l.Members)
	}

	l.RemoveMember("missing")
	if len(l.Members) != 2 {
		t.Fatalf("removing a non-member changed the list: %v", l.Members)
	}
}
