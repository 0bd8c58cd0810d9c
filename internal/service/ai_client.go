package service

import (
	"context"
	"time"
)

// AIClient is the narrow contract with the language-understanding
// collaborator. The pipeline treats it as a fallible, schema-validated
// black box: any response that does not conform to the expected schema is
// a failure, never a partial success.
type AIClient interface {
	// ExtractIntent classifies a query and extracts raw slots.
	// strict asks for a more constrained prompt on retry.
	ExtractIntent(ctx context.Context, text string, strict bool) (*IntentExtraction, error)

	// ResolveDates normalizes a time phrase to an ISO date range anchored
	// to the reference date.
	ResolveDates(ctx context.Context, phrase string, ref time.Time) (*DateRangeExtraction, error)

	// IsEnabled returns whether the client is configured and ready.
	IsEnabled() bool
}

// IntentExtraction is the raw structured response for task=extract_intent.
// Values are untrusted until validated by the extractor.
type IntentExtraction struct {
	Intent       string   `json:"intent"`
	Cities       []string `json:"cities,omitempty"`
	Competitions []string `json:"competitions,omitempty"`
	TimePhrase   string   `json:"time_phrase,omitempty"`
	RadiusKm     *float64 `json:"radius_km,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
}

// DateRangeExtraction is the raw structured response for task=resolve_dates.
type DateRangeExtraction struct {
	Status     string  `json:"status"` // "OK" | "UNCLEAR" | "NO_TIME"
	DateFrom   string  `json:"date_from,omitempty"`
	DateTo     string  `json:"date_to,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
