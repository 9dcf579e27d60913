package models

// BetType represents the side or kind of the graded selection.
type BetType string

const (
	BetTypeSpread BetType = "Spread"
	BetTypeTotal  BetType = "Total"
	BetTypeOver   BetType = "Over"
	BetTypeUnder  BetType = "Under"
)

// KeyFactor is one entry of a bet's supporting factor breakdown.
type KeyFactor struct {
	Factor string `json:"factor"`
	Weight int    `json:"weight"`
	Score  int    `json:"score"`
}

// Bet is the externally visible graded unit. It is created fresh on every
// pipeline run and never mutated afterwards; the next refresh supersedes it.
//
// Team-game bets populate Team1/Team2 and carry Line as a display string
// ("Ohio State -3.5", "Over 57.5"). Player-prop bets populate
// Player/Team/Opponent/Prop and carry Line as the numeric point. Line is
// typed any so both shapes round-trip through the JSON snapshot unchanged.
type Bet struct {
	ID string `json:"id"`

	Team1 string `json:"team1,omitempty"`
	Team2 string `json:"team2,omitempty"`

	Player   string `json:"player,omitempty"`
	Team     string `json:"team,omitempty"`
	Opponent string `json:"opponent,omitempty"`
	Prop     string `json:"prop,omitempty"`

	Type           BetType     `json:"type"`
	Line           any         `json:"line"`
	Odds           float64     `json:"odds"`
	Grade          string      `json:"grade"`
	HitProbability int         `json:"hitProbability"`
	Edge           float64     `json:"edge"`
	GameTime       string      `json:"gameTime"`
	Venue          string      `json:"venue,omitempty"`
	KeyFactors     []KeyFactor `json:"keyFactors"`

	Analysis   string `json:"analysis,omitempty"`
	Motivation string `json:"motivation,omitempty"`
	RecentForm string `json:"recentForm,omitempty"`
	Injury     string `json:"injury,omitempty"`
	Weather    string `json:"weather,omitempty"`
	Updated    string `json:"updated,omitempty"`
	Conference string `json:"conference,omitempty"`
}

// BetList is the payload cached and served for a resource key. Warning is
// set when the upstream plan restricted part of the requested markets.
type BetList struct {
	Count   int    `json:"count"`
	Bets    []Bet  `json:"bets"`
	Warning string `json:"warning,omitempty"`
}
