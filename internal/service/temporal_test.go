package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"sportsearch/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Friday 2025-09-26, the reference date used throughout.
var friday = date(2025, time.September, 26)

func newRuleOnlyResolver() *TemporalResolver {
	// Disabled collaborator: only the rule table and the default window
	// can answer.
	return NewTemporalResolver(&stubAI{enabled: false}, 30, zap.NewNop())
}

func TestResolveRuleTable(t *testing.T) {
	tests := []struct {
		name   string
		phrase string
		ref    time.Time
		want   model.DateRange
	}{
		{
			name:   "today",
			phrase: "today",
			ref:    friday,
			want:   model.DateRange{From: friday, To: friday},
		},
		{
			name:   "tonight is today",
			phrase: "tonight",
			ref:    friday,
			want:   model.DateRange{From: friday, To: friday},
		},
		{
			name:   "tomorrow",
			phrase: "tomorrow",
			ref:    friday,
			want:   model.DateRange{From: date(2025, 9, 27), To: date(2025, 9, 27)},
		},
		{
			name:   "this weekend from a Friday",
			phrase: "this weekend",
			ref:    friday,
			want:   model.DateRange{From: date(2025, 9, 27), To: date(2025, 9, 28)},
		},
		{
			name:   "this weekend on a Saturday stays current",
			phrase: "this weekend",
			ref:    date(2025, 9, 27),
			want:   model.DateRange{From: date(2025, 9, 27), To: date(2025, 9, 28)},
		},
		{
			name:   "this weekend on a Sunday is the remaining Sunday",
			phrase: "this weekend",
			ref:    date(2025, 9, 28),
			want:   model.DateRange{From: date(2025, 9, 28), To: date(2025, 9, 28)},
		},
		{
			name:   "next weekend",
			phrase: "next weekend",
			ref:    friday,
			want:   model.DateRange{From: date(2025, 10, 4), To: date(2025, 10, 5)},
		},
		{
			name:   "next weekend from a Sunday",
			phrase: "next weekend",
			ref:    date(2025, 9, 28),
			want:   model.DateRange{From: date(2025, 10, 4), To: date(2025, 10, 5)},
		},
		{
			name:   "this week",
			phrase: "this week",
			ref:    friday,
			want:   model.DateRange{From: date(2025, 9, 22), To: date(2025, 9, 28)},
		},
		{
			name:   "next week starts the following Monday",
			phrase: "next week",
			ref:    friday,
			want:   model.DateRange{From: date(2025, 9, 29), To: date(2025, 10, 5)},
		},
		{
			name:   "next week from a Sunday still starts Monday",
			phrase: "next week",
			ref:    date(2025, 9, 28),
			want:   model.DateRange{From: date(2025, 9, 29), To: date(2025, 10, 5)},
		},
		{
			name:   "weekday name resolves to next occurrence",
			phrase: "monday",
			ref:    friday,
			want:   model.DateRange{From: date(2025, 9, 29), To: date(2025, 9, 29)},
		},
		{
			name:   "weekday name on that weekday is today",
			phrase: "friday",
			ref:    friday,
			want:   model.DateRange{From: friday, To: friday},
		},
		{
			name:   "underscored keyword normalized",
			phrase: "this_weekend",
			ref:    friday,
			want:   model.DateRange{From: date(2025, 9, 27), To: date(2025, 9, 28)},
		},
		{
			name:   "case and spacing normalized",
			phrase: "  This   Weekend ",
			ref:    friday,
			want:   model.DateRange{From: date(2025, 9, 27), To: date(2025, 9, 28)},
		},
		{
			name:   "on-prefix stripped",
			phrase: "on saturday",
			ref:    friday,
			want:   model.DateRange{From: date(2025, 9, 27), To: date(2025, 9, 27)},
		},
	}

	r := newRuleOnlyResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(context.Background(), tt.phrase, tt.ref)
			if !got.From.Equal(tt.want.From) || !got.To.Equal(tt.want.To) {
				t.Errorf("Resolve(%q, %s) = %s..%s, want %s..%s",
					tt.phrase, tt.ref.Format("2006-01-02"),
					got.From.Format("2006-01-02"), got.To.Format("2006-01-02"),
					tt.want.From.Format("2006-01-02"), tt.want.To.Format("2006-01-02"))
			}
			if !got.Valid() {
				t.Errorf("range %v is inverted", got)
			}
		})
	}
}

func TestResolveDeterminism(t *testing.T) {
	r := newRuleOnlyResolver()
	first := r.Resolve(context.Background(), "next week", friday)
	for i := 0; i < 5; i++ {
		again := r.Resolve(context.Background(), "next week", friday)
		if !again.From.Equal(first.From) || !again.To.Equal(first.To) {
			t.Fatalf("resolution not deterministic: %v vs %v", again, first)
		}
	}
}

func TestResolveEmptyPhraseDefaultWindow(t *testing.T) {
	r := newRuleOnlyResolver()
	got := r.Resolve(context.Background(), "", friday)
	want := model.DateRange{From: friday, To: friday.AddDate(0, 0, 30)}
	if !got.From.Equal(want.From) || !got.To.Equal(want.To) {
		t.Errorf("default window = %v, want %v", got, want)
	}
}

func TestResolveAITier(t *testing.T) {
	tests := []struct {
		name  string
		dates *DateRangeExtraction
		err   error
		want  model.DateRange
	}{
		{
			name:  "valid model range",
			dates: &DateRangeExtraction{Status: "OK", DateFrom: "2025-10-10", DateTo: "2025-10-12"},
			want:  model.DateRange{From: date(2025, 10, 10), To: date(2025, 10, 12)},
		},
		{
			name:  "inverted range swapped not failed",
			dates: &DateRangeExtraction{Status: "OK", DateFrom: "2025-10-12", DateTo: "2025-10-10"},
			want:  model.DateRange{From: date(2025, 10, 10), To: date(2025, 10, 12)},
		},
		{
			name:  "unclear status falls back",
			dates: &DateRangeExtraction{Status: "UNCLEAR"},
			want:  model.DateRange{From: friday, To: friday.AddDate(0, 0, 30)},
		},
		{
			name:  "malformed dates fall back",
			dates: &DateRangeExtraction{Status: "OK", DateFrom: "soonish", DateTo: "2025-10-12"},
			want:  model.DateRange{From: friday, To: friday.AddDate(0, 0, 30)},
		},
		{
			name:  "hallucinated far-future range falls back",
			dates: &DateRangeExtraction{Status: "OK", DateFrom: "2031-01-01", DateTo: "2031-12-31"},
			want:  model.DateRange{From: friday, To: friday.AddDate(0, 0, 30)},
		},
		{
			name: "collaborator error falls back",
			err:  errors.New("boom"),
			want: model.DateRange{From: friday, To: friday.AddDate(0, 0, 30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &stubAI{enabled: true, dates: tt.dates, datesErr: tt.err}
			r := NewTemporalResolver(ai, 30, zap.NewNop())

			got := r.Resolve(context.Background(), "around the autumn school break", friday)
			if !got.From.Equal(tt.want.From) || !got.To.Equal(tt.want.To) {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
			if ai.datesCalls != 1 {
				t.Errorf("collaborator calls = %d, want 1", ai.datesCalls)
			}
		})
	}
}

func TestRuleTableNeverCallsCollaborator(t *testing.T) {
	ai := &stubAI{enabled: true, dates: &DateRangeExtraction{Status: "OK", DateFrom: "2030-01-01", DateTo: "2030-01-02"}}
	r := NewTemporalResolver(ai, 30, zap.NewNop())

	r.Resolve(context.Background(), "this weekend", friday)
	if ai.datesCalls != 0 {
		t.Errorf("collaborator calls = %d, want 0 for rule-table phrase", ai.datesCalls)
	}
}
