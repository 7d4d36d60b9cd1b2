package when

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	now := time.Date(2025, 9, 18, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "relative minutes",
			input:  "in 45m",
			want:   now.Add(45 * time.Minute),
			wantOK: true,
		},
		{
			name:   "relative minutes long form",
			input:  "in 45 minutes",
			want:   now.Add(45 * time.Minute),
			wantOK: true,
		},
		{
			name:   "relative hours",
			input:  "in 2h",
			want:   now.Add(2 * time.Hour),
			wantOK: true,
		},
		{
			name:   "relative hours long form",
			input:  "in 2 hours",
			want:   now.Add(2 * time.Hour),
			wantOK: true,
		},
		{
			name:   "today with pm",
			input:  "today 7pm",
			want:   time.Date(2025, 9, 18, 19, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "today with minutes no suffix is 24h",
			input:  "today 19:30",
			want:   time.Date(2025, 9, 18, 19, 30, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "tomorrow with pm minutes",
			input:  "tomorrow 8:30pm",
			want:   time.Date(2025, 9, 19, 20, 30, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "absolute date time",
			input:  "2025-09-18 19:30",
			want:   time.Date(2025, 9, 18, 19, 30, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "bare clock time",
			input:  "19:30",
			want:   time.Date(2025, 9, 18, 19, 30, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "bare clock with am",
			input:  "7:15am",
			want:   time.Date(2025, 9, 18, 7, 15, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "bare hour pm",
			input:  "7pm",
			want:   time.Date(2025, 9, 18, 19, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "12am maps to midnight",
			input:  "today 12am",
			want:   time.Date(2025, 9, 18, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "12pm stays noon",
			input:  "today 12pm",
			want:   time.Date(2025, 9, 18, 12, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:  "13pm accepted as-is",
			input: "13pm",
			// 13 is already >= 12 so pm adds nothing; permissive on purpose.
			want:   time.Date(2025, 9, 18, 13, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "case and whitespace insensitive",
			input:  "  Tomorrow 7PM ",
			want:   time.Date(2025, 9, 19, 19, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "unparseable",
			input:  "not a time",
			wantOK: false,
		},
		{
			name:   "empty",
			input:  "",
			wantOK: false,
		},
		{
			name:   "bare hour without suffix not accepted",
			input:  "7",
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.input, now)
			if ok != tc.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.input, ok, tc.wantOK)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseFirstMatchWins(t *testing.T) {
	now := time.Date(2025, 9, 18, 9, 0, 0, 0, time.UTC)

	// "in 5 m" must hit the relative-minutes family, never a later one.
	got, ok := Parse("in 5 m", now)
	if !ok {
		t.Fatal("expected a parse")
	}
	if want := now.Add(5 * time.Minute); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
