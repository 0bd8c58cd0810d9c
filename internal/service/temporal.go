package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"sportsearch/internal/model"
)

// maxRangeDeviationDays bounds how far a model-resolved range may sit from
// the reference date before it is treated as hallucinated.
const maxRangeDeviationDays = 500

// TemporalResolver turns natural time expressions into absolute, inclusive
// date ranges anchored to a reference date. Resolution is two-tiered: a
// deterministic rule table for common relative phrases, then the AI
// collaborator for everything else. The temporal dimension is advisory:
// if neither tier yields a valid range the resolver falls back to the
// default open window instead of failing.
type TemporalResolver struct {
	ai          AIClient
	horizonDays int
	logger      *zap.Logger
}

// NewTemporalResolver creates a new temporal resolver
func NewTemporalResolver(ai AIClient, horizonDays int, logger *zap.Logger) *TemporalResolver {
	return &TemporalResolver{ai: ai, horizonDays: horizonDays, logger: logger}
}

// Resolve converts a time phrase into a DateRange relative to ref.
// An empty or unresolvable phrase yields the default window; the returned
// range always satisfies From <= To.
func (t *TemporalResolver) Resolve(ctx context.Context, phrase string, ref time.Time) model.DateRange {
	ref = truncateToDate(ref)
	phrase = normalizePhrase(phrase)

	if phrase == "" {
		return t.DefaultWindow(ref)
	}

	if r, ok := resolveRule(phrase, ref); ok {
		return r
	}

	if r, ok := t.resolveWithAI(ctx, phrase, ref); ok {
		return r
	}

	t.logger.Debug("time phrase unresolved, using default window", zap.String("phrase", phrase))
	return t.DefaultWindow(ref)
}

// DefaultWindow is the unconstrained fallback: today through the horizon.
func (t *TemporalResolver) DefaultWindow(ref time.Time) model.DateRange {
	ref = truncateToDate(ref)
	return model.DateRange{From: ref, To: ref.AddDate(0, 0, t.horizonDays)}
}

func normalizePhrase(phrase string) string {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	phrase = strings.ReplaceAll(phrase, "_", " ")
	phrase = strings.TrimPrefix(phrase, "on ")
	return strings.Join(strings.Fields(phrase), " ")
}

// resolveRule handles the closed set of relative phrases with pure date
// arithmetic. Fully deterministic; no external calls.
func resolveRule(phrase string, ref time.Time) (model.DateRange, bool) {
	switch phrase {
	case "today", "tonight":
		return model.DateRange{From: ref, To: ref}, true
	case "tomorrow":
		d := ref.AddDate(0, 0, 1)
		return model.DateRange{From: d, To: d}, true
	case "this weekend":
		return currentWeekend(ref), true
	case "next weekend":
		sat := saturdayOfWeekend(ref).AddDate(0, 0, 7)
		return model.DateRange{From: sat, To: sat.AddDate(0, 0, 1)}, true
	case "this week":
		mon := mondayOfWeek(ref)
		return model.DateRange{From: mon, To: mon.AddDate(0, 0, 6)}, true
	case "next week":
		mon := mondayOfWeek(ref).AddDate(0, 0, 7)
		return model.DateRange{From: mon, To: mon.AddDate(0, 0, 6)}, true
	}

	if wd, ok := weekdayByName(phrase); ok {
		offset := (int(wd) - int(ref.Weekday()) + 7) % 7
		d := ref.AddDate(0, 0, offset)
		return model.DateRange{From: d, To: d}, true
	}

	return model.DateRange{}, false
}

// currentWeekend resolves "this weekend". On a weekend day it is the
// weekend already in progress, not the next one.
func currentWeekend(ref time.Time) model.DateRange {
	if ref.Weekday() == time.Sunday {
		return model.DateRange{From: ref, To: ref}
	}
	sat := ref.AddDate(0, 0, int(time.Saturday-ref.Weekday()))
	return model.DateRange{From: sat, To: sat.AddDate(0, 0, 1)}
}

// saturdayOfWeekend returns the Saturday of the weekend ref belongs to or
// precedes.
func saturdayOfWeekend(ref time.Time) time.Time {
	if ref.Weekday() == time.Sunday {
		return ref.AddDate(0, 0, -1)
	}
	return ref.AddDate(0, 0, int(time.Saturday-ref.Weekday()))
}

func mondayOfWeek(ref time.Time) time.Time {
	offset := (int(ref.Weekday()) + 6) % 7
	return ref.AddDate(0, 0, -offset)
}

func weekdayByName(phrase string) (time.Weekday, bool) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if phrase == strings.ToLower(wd.String()) {
			return wd, true
		}
	}
	return 0, false
}

// resolveWithAI delegates phrases outside the rule table to the language
// model, then validates the returned dates. An inverted range is swapped
// rather than rejected.
func (t *TemporalResolver) resolveWithAI(ctx context.Context, phrase string, ref time.Time) (model.DateRange, bool) {
	if t.ai == nil || !t.ai.IsEnabled() {
		return model.DateRange{}, false
	}

	out, err := t.ai.ResolveDates(ctx, phrase, ref)
	if err != nil {
		t.logger.Warn("date resolution call failed", zap.Error(err), zap.String("phrase", phrase))
		return model.DateRange{}, false
	}
	if out.Status != "OK" || out.DateFrom == "" || out.DateTo == "" {
		return model.DateRange{}, false
	}

	from, err := time.ParseInLocation("2006-01-02", out.DateFrom, time.UTC)
	if err != nil {
		return model.DateRange{}, false
	}
	to, err := time.ParseInLocation("2006-01-02", out.DateTo, time.UTC)
	if err != nil {
		return model.DateRange{}, false
	}

	if from.After(to) {
		from, to = to, from
	}

	if deviationDays(ref, from) > maxRangeDeviationDays || deviationDays(ref, to) > maxRangeDeviationDays {
		t.logger.Warn("model-resolved range too far from reference",
			zap.String("phrase", phrase), zap.Time("from", from), zap.Time("to", to))
		return model.DateRange{}, false
	}

	return model.DateRange{From: from, To: to}, true
}

func deviationDays(ref, d time.Time) int {
	days := int(d.Sub(ref).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

func truncateToDate(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
