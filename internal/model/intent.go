package model

import "strings"

// Intent is the closed category of what the user is asking for.
type Intent string

const (
	IntentEventsInCities      Intent = "events_in_cities"
	IntentEventsByCompetition Intent = "events_by_competition"
	IntentListCompetitions    Intent = "list_competitions"
	IntentEventsNearMe        Intent = "events_near_me"
	IntentUnclear             Intent = "unclear"
)

// ParseIntent maps a raw label to a known Intent. Unknown labels are not
// coerced to IntentUnclear: the caller must treat them as extraction failure.
func ParseIntent(label string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(label))) {
	case IntentEventsInCities:
		return IntentEventsInCities, true
	case IntentEventsByCompetition:
		return IntentEventsByCompetition, true
	case IntentListCompetitions:
		return IntentListCompetitions, true
	case IntentEventsNearMe:
		return IntentEventsNearMe, true
	case IntentUnclear:
		return IntentUnclear, true
	}
	return IntentUnclear, false
}

// NeedsDates reports whether the temporal resolver should run for the intent.
func (i Intent) NeedsDates() bool {
	return i != IntentListCompetitions
}

// ExtractedIntent is the validated output of the intent & slot extractor.
// Slot values are raw strings straight from the language model; the filter
// assembler is the only consumer and refuses instances with Valid == false.
type ExtractedIntent struct {
	Intent       Intent   `json:"intent"`
	Cities       []string `json:"cities,omitempty"`
	Competitions []string `json:"competitions,omitempty"`
	TimePhrase   string   `json:"time_phrase,omitempty"`
	RadiusKm     *float64 `json:"radius_km,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	Confidence   float64  `json:"confidence"`
	Valid        bool     `json:"-"`
}
