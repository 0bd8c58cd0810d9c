package service

import (
	"sort"
	"time"

	"sportsearch/internal/model"
)

// Ranker orders executor rows by a weighted blend of proximity and how
// soon the event takes place. Rows without a distance (no origin in the
// filter) rank purely by time.
type Ranker struct {
	weightDistance float64
	weightTime     float64
}

// NewRanker creates a ranker with the configured weights.
func NewRanker(weightDistance, weightTime float64) *Ranker {
	return &Ranker{weightDistance: weightDistance, weightTime: weightTime}
}

// Rank sorts events by descending score. The input slice is not modified.
func (r *Ranker) Rank(events []model.Event, ref time.Time) []model.Event {
	ranked := make([]model.Event, len(events))
	copy(ranked, events)

	sort.SliceStable(ranked, func(i, j int) bool {
		return r.score(ranked[i], ref) > r.score(ranked[j], ref)
	})
	return ranked
}

func (r *Ranker) score(e model.Event, ref time.Time) float64 {
	timeScore := r.timeScore(e.DatetimeLocal, ref)
	if e.DistanceKm == nil {
		return timeScore
	}
	return r.weightDistance*distanceScore(*e.DistanceKm) + r.weightTime*timeScore
}

// distanceScore maps kilometers to (0, 1]: 1 at zero distance, halved
// every 10 km.
func distanceScore(km float64) float64 {
	if km < 0 {
		km = 0
	}
	return 1.0 / (1.0 + km/10.0)
}

// timeScore favors events happening sooner, decaying linearly to zero at
// 30 days out. Past events score zero.
func (r *Ranker) timeScore(at, ref time.Time) float64 {
	days := at.Sub(ref).Hours() / 24
	if days < 0 {
		return 0
	}
	if days > 30 {
		return 0
	}
	return 1.0 - days/30.0
}

// Deduplicate collapses duplicate event ids, keeping the row with the
// smallest distance. Order of first appearance is preserved.
func Deduplicate(events []model.Event) []model.Event {
	best := make(map[int64]int, len(events))
	out := make([]model.Event, 0, len(events))

	for _, e := range events {
		idx, seen := best[e.ID]
		if !seen {
			best[e.ID] = len(out)
			out = append(out, e)
			continue
		}
		if e.DistanceKm != nil && (out[idx].DistanceKm == nil || *e.DistanceKm < *out[idx].DistanceKm) {
			out[idx] = e
		}
	}
	return out
}
