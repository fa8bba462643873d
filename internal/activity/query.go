// Package activity provides the activity store interface and implementations
// for the per-entity activity stream fed by offboarding domain events.
package activity

import "time"

// WeightOrder maps event weights to numeric severity (lower = more severe).
var WeightOrder = map[string]int{
	"critical": 1,
	"major":    2,
	"minor":    3,
	"info":     4,
}

// WeightSeverity returns the severity rank for a weight, treating unknown
// weights as "info".
func WeightSeverity(weight string) int {
	if s, ok := WeightOrder[weight]; ok {
		return s
	}
	return WeightOrder["info"]
}

// IsAtLeastWeight reports whether weight is at least as severe as min.
func IsAtLeastWeight(weight, min string) bool {
	return WeightSeverity(weight) <= WeightSeverity(min)
}

// QueryOptions controls filtering and pagination for entity activity queries.
type QueryOptions struct {
	Since      *time.Time // default: 6 months ago
	Until      *time.Time // default: now
	Categories []string   // filter to specific event categories
	MinWeight  string     // minimum weight threshold (default: "info")
	Limit      int        // max results (default: 100, max: 500)
	Cursor     string     // cursor for pagination
}

// DefaultQueryOptions returns QueryOptions with sensible defaults.
func DefaultQueryOptions() QueryOptions {
	sixMonthsAgo := time.Now().AddDate(0, -6, 0)
	now := time.Now()
	return QueryOptions{
		Since:     &sixMonthsAgo,
		Until:     &now,
		MinWeight: "info",
		Limit:     100,
	}
}

func (o QueryOptions) limit() int {
	if o.Limit <= 0 || o.Limit > 500 {
		return 100
	}
	return o.Limit
}
