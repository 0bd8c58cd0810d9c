package model

import "time"

// Event is a single fixture row returned by the query executor.
type Event struct {
	ID            int64     `json:"id" db:"id"`
	MatchName     string    `json:"match_name" db:"match_name"`
	DatetimeLocal time.Time `json:"datetime_local" db:"datetime_local"`
	CompetitionID int64     `json:"competition_id" db:"competition_id"`
	Competition   string    `json:"competition" db:"competition"`
	VenueID       int64     `json:"venue_id" db:"venue_id"`
	Venue         string    `json:"venue" db:"venue"`
	City          string    `json:"city" db:"city"`
	Country       string    `json:"country" db:"country"`
	Latitude      float64   `json:"latitude" db:"latitude"`
	Longitude     float64   `json:"longitude" db:"longitude"`
	DistanceKm    *float64  `json:"distance_km,omitempty" db:"distance_km"`
}

// Competition is a league/competition row.
type Competition struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Sport string `json:"sport" db:"sport"`
}

// QueryResponse is the success payload rendered by the HTTP layer.
type QueryResponse struct {
	Query        string        `json:"query"`
	Filter       *FilterSpec   `json:"filter"`
	Events       []Event       `json:"events,omitempty"`
	Competitions []Competition `json:"competitions,omitempty"`
	Total        int           `json:"total"`
	Took         int64         `json:"took_ms"`
}

// ErrorResponse is the failure payload: a machine-readable code plus a
// single human-readable message, never a raw stack.
type ErrorResponse struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
}
