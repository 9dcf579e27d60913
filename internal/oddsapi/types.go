package oddsapi

import "time"

// eventResponse is the provider's event listing shape.
type eventResponse struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

// EventOdds is one event with its nested bookmaker quotes, as returned by
// both the bulk odds endpoint and the per-event odds endpoint.
type EventOdds struct {
	ID           string     `json:"id"`
	SportKey     string     `json:"sport_key"`
	CommenceTime time.Time  `json:"commence_time"`
	HomeTeam     string     `json:"home_team"`
	AwayTeam     string     `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one book's markets for an event.
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is one market offered by a bookmaker.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one selectable side of a market. Description carries the
// player name on prop markets. Point is absent on moneyline-style markets.
type Outcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point,omitempty"`
}
