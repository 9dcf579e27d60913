package models

import "time"

// Event represents one scheduled game from the odds provider.
// Immutable once fetched within a cache cycle.
type Event struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

// HasStarted reports whether the event's start time has passed a cutoff.
// The buffer widens the started window so games about to kick off are
// treated as started too.
func (e Event) HasStarted(now time.Time, buffer time.Duration) bool {
	return !e.CommenceTime.After(now.Add(buffer))
}

// EventSummary is the diagnostic view served by /api/college-games.
type EventSummary struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Bookmakers   int       `json:"bookmakers"`
}

// EventSummaryList is the payload for the diagnostic event listing.
type EventSummaryList struct {
	Count int            `json:"count"`
	Games []EventSummary `json:"games"`
}
