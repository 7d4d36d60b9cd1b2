package when

import "time"

// QuickOption is one precomputed scheduling shortcut offered when a lobby
// was created without a time phrase.
type QuickOption struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// QuickOptions returns the four quick scheduling choices for a time poll,
// in fixed order: +30m, +1h, tonight at 7pm, tomorrow at 7pm. If 19:00
// has already passed relative to now, "Tonight 7pm" rolls forward a day.
func QuickOptions(now time.Time) []QuickOption {
	tonight := time.Date(now.Year(), now.Month(), now.Day(), 19, 0, 0, 0, now.Location())
	if tonight.Before(now) {
		tonight = tonight.AddDate(0, 0, 1)
	}
	tomorrow := now.AddDate(0, 0, 1)
	tomorrow = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 19, 0, 0, 0, now.Location())

	return []QuickOption{
		{Label: "+30m", At: now.Add(30 * time.Minute)},
		{Label: "+1h", At: now.Add(time.Hour)},
		{Label: "Tonight 7pm", At: tonight},
		{Label: "Tomorrow 7pm", At: tomorrow},
	}
}
