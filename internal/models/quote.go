package models

// MarketKind identifies the category of wager a quote belongs to.
type MarketKind string

const (
	MarketSpreads    MarketKind = "spreads"
	MarketTotals     MarketKind = "totals"
	MarketPlayerProp MarketKind = "player_prop"
)

// Quote is one bookmaker's price for one outcome within one market of one
// event. Quotes are ephemeral: they exist between fetch and consolidation
// and are discarded afterwards.
type Quote struct {
	Market      MarketKind
	MarketKey   string // raw provider market key, e.g. "player_pass_yds"
	Outcome     string // outcome name, e.g. team name, "Over", "Under"
	Description string // player name on prop outcomes
	Price       float64
	Point       *float64
}

// ConsolidatedOutcome maps one outcome name to the single best quote
// observed for it within an event+market, together with the implied
// probability that won the comparison.
type ConsolidatedOutcome struct {
	Quote
	ImpliedProbability float64
}
