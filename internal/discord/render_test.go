package discord

import (
	"testing"
	"time"

	"github.com/mcdev12/gamenight/internal/models"
	"github.com/mcdev12/gamenight/internal/when"
)

func TestExtractMessageID(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "message url",
			raw:  "https://discord.com/channels/111111111111111111/222222222222222222/333333333333333333",
			want: "333333333333333333",
		},
		{
			name: "bare snowflake",
			raw:  "123456789012345678",
			want: "123456789012345678",
		},
		{
			name: "snowflake with whitespace",
			raw:  "  123456789012345678 ",
			want: "123456789012345678",
		},
		{
			name: "too short",
			raw:  "12345",
			want: "",
		},
		{
			name: "not numeric",
			raw:  "definitely-not-an-id",
			want: "",
		},
		{
			name: "url without message segment",
			raw:  "https://discord.com/channels/111111111111111111",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractMessageID(tc.raw); got != tc.want {
				t.Fatalf("ExtractMessageID(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func testRenderLobby() *models.Lobby {
	return &models.Lobby{
		OwnerID:     "owner",
		Type:        models.GameTypePvP,
		Maps:        []string{"Oasis", "Marsh"},
		Members:     []string{"owner"},
		VoteCounts:  map[int]int{},
		VoterChoice: map[string]int{},
	}
}

func TestBuildComponentsIncludesTimePollOnlyWhenUnset(t *testing.T) {
	l := testRenderLobby()
	quick := when.QuickOptions(time.Date(2025, 9, 18, 10, 0, 0, 0, time.UTC))

	rows := buildComponents(l, quick)
	if len(rows) != 3 {
		t.Fatalf("expected time poll + buttons + select, got %d rows", len(rows))
	}

	at := time.Date(2025, 9, 18, 19, 0, 0, 0, time.UTC)
	l.StartsAt = &at
	rows = buildComponents(l, quick)
	if len(rows) != 2 {
		t.Fatalf("expected buttons + select once time is set, got %d rows", len(rows))
	}
}

func TestBuildEmbedLeaderLine(t *testing.T) {
	l := testRenderLobby()

	embed := buildEmbed(l)
	if embed.Fields[1].Value != "No votes yet" {
		t.Fatalf("expected no-votes leader line, got %q", embed.Fields[1].Value)
	}

	l.ChangeVote("owner", 1)
	embed = buildEmbed(l)
	if embed.Fields[1].Value != "Leading: **Marsh**" {
		t.Fatalf("unexpected leader line %q", embed.Fields[1].Value)
	}

	// One embed field per map follows the fixed three.
	if len(embed.Fields) != 3+len(l.Maps) {
		t.Fatalf("expected %d fields, got %d", 3+len(l.Maps), len(embed.Fields))
	}
}
