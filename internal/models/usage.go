package models

// UsageSnapshot holds the last-observed upstream quota signals. It is
// overwritten on each new observation, never accumulated.
type UsageSnapshot struct {
	ObservedAt string            `json:"observedAt"`
	Headers    map[string]string `json:"headers"`
}
