package activity

import (
	"sort"
	"time"

	"github.com/matthewbaird/offboarding/internal/types"
)

// CategorySummary aggregates the entries of one event category.
type CategorySummary struct {
	Category         string         `json:"category"`
	Count            int            `json:"count"`
	ByWeight         map[string]int `json:"by_weight"`
	ByPolarity       map[string]int `json:"by_polarity"`
	DominantPolarity string         `json:"dominant_polarity"`
	Trend            string         `json:"trend"` // "improving", "stable", "declining"
}

// Summary condenses an entity's activity over a window, e.g. how a tenancy
// ended: evicted and written off reads very differently from a mutual exit.
type Summary struct {
	EntityType       string                     `json:"entity_type"`
	EntityID         string                     `json:"entity_id"`
	Since            time.Time                  `json:"since"`
	Until            time.Time                  `json:"until"`
	Categories       map[string]CategorySummary `json:"categories"`
	Sentiment        string                     `json:"sentiment"` // "positive", "mixed", "concerning", "critical"
	SentimentReason  string                     `json:"sentiment_reason"`
	MostSevereEvents []types.ActivityEntry      `json:"most_severe_events"`
}

// Summarize produces a Summary from entries within [since, until].
func Summarize(entries []types.ActivityEntry, entityType, entityID string, since, until time.Time) Summary {
	categories := make(map[string]*CategorySummary)
	for _, e := range entries {
		cs, ok := categories[e.Category]
		if !ok {
			cs = &CategorySummary{
				Category:   e.Category,
				ByWeight:   make(map[string]int),
				ByPolarity: make(map[string]int),
			}
			categories[e.Category] = cs
		}
		cs.Count++
		cs.ByWeight[e.Weight]++
		cs.ByPolarity[e.Polarity]++
	}

	result := make(map[string]CategorySummary, len(categories))
	for cat, cs := range categories {
		cs.DominantPolarity = dominantPolarity(cs.ByPolarity)
		cs.Trend = computeTrend(entries, cat, since, until)
		result[cat] = *cs
	}

	sentiment, reason := computeSentiment(entries)
	return Summary{
		EntityType:       entityType,
		EntityID:         entityID,
		Since:            since,
		Until:            until,
		Categories:       result,
		Sentiment:        sentiment,
		SentimentReason:  reason,
		MostSevereEvents: mostSevere(entries, 3),
	}
}

// dominantPolarity returns the polarity with the highest count. Ties go to
// the alphabetically first polarity so the result is stable.
func dominantPolarity(byPolarity map[string]int) string {
	best := ""
	bestCount := 0
	for p, c := range byPolarity {
		if c > bestCount || (c == bestCount && p < best) {
			best = p
			bestCount = c
		}
	}
	return best
}

// computeTrend compares negative volume in the first vs second half of the window.
func computeTrend(entries []types.ActivityEntry, category string, since, until time.Time) string {
	mid := since.Add(until.Sub(since) / 2)
	var firstHalf, secondHalf int
	for _, e := range entries {
		if e.Category != category || e.Polarity != "negative" {
			continue
		}
		if e.OccurredAt.Before(mid) {
			firstHalf++
		} else {
			secondHalf++
		}
	}
	if secondHalf > firstHalf+1 {
		return "declining"
	}
	if firstHalf > secondHalf+1 {
		return "improving"
	}
	return "stable"
}

func computeSentiment(entries []types.ActivityEntry) (string, string) {
	var criticalCount, majorNegative, negativeCount, positiveCount int
	for _, e := range entries {
		switch e.Polarity {
		case "negative":
			negativeCount++
			if e.Weight == "major" {
				majorNegative++
			}
		case "positive":
			positiveCount++
		}
		if e.Weight == "critical" {
			criticalCount++
		}
	}

	switch {
	case criticalCount > 0:
		return "critical", "Critical-weight activity present (eviction, abandonment or collections)."
	case majorNegative >= 2 || negativeCount > positiveCount*2:
		return "concerning", "Multiple major negative events or predominantly negative activity."
	case negativeCount > positiveCount:
		return "mixed", "More negative than positive activity, but nothing critical."
	}
	return "positive", "Activity is predominantly positive or neutral."
}

// mostSevere returns up to n entries, most severe weight first, newest first
// within a weight.
func mostSevere(entries []types.ActivityEntry, n int) []types.ActivityEntry {
	sorted := make([]types.ActivityEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := WeightSeverity(sorted[i].Weight), WeightSeverity(sorted[j].Weight)
		if wi != wj {
			return wi < wj
		}
		return sorted[i].OccurredAt.After(sorted[j].OccurredAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
