package model

import (
	"fmt"
	"time"
)

// RawQuery is the immutable per-request input: free text plus optional
// caller coordinates and result limit. Created once, never mutated.
type RawQuery struct {
	Text  string   `json:"query" binding:"required"`
	Lat   *float64 `json:"lat,omitempty"`
	Lon   *float64 `json:"lon,omitempty"`
	Limit int      `json:"limit,omitempty"`
}

// CallerPoint returns the caller-supplied coordinates, if both were given.
func (q RawQuery) CallerPoint() *GeoPoint {
	if q.Lat == nil || q.Lon == nil {
		return nil
	}
	return &GeoPoint{Lat: *q.Lat, Lon: *q.Lon}
}

// GeoPoint is a WGS 84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is a geographic bounding box used to validate that resolved
// coordinates fall inside the service region.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// DateRange is an inclusive calendar-date window with From <= To.
type DateRange struct {
	From time.Time `json:"date_from"`
	To   time.Time `json:"date_to"`
}

// Valid reports whether the range is ordered.
func (r DateRange) Valid() bool {
	return !r.From.After(r.To)
}

// FilterSpec is the pipeline's terminal artifact: the sole, validated
// contract handed to the query executor. Immutable once assembled.
// Origin is the near-me anchor; Points carries the resolved coordinates of
// every requested city, in slot order.
type FilterSpec struct {
	Intent       Intent     `json:"intent"`
	Cities       []string   `json:"cities,omitempty"`
	Competitions []string   `json:"competitions,omitempty"`
	DateFrom     time.Time  `json:"date_from"`
	DateTo       time.Time  `json:"date_to"`
	Origin       *GeoPoint  `json:"origin,omitempty"`
	Points       []GeoPoint `json:"points,omitempty"`
	RadiusKm     *float64   `json:"radius_km,omitempty"`
	Limit        int        `json:"limit"`
}

// SearchPoints returns the coordinates the executor searches around: the
// near-me origin when set, otherwise one point per resolved city.
func (s *FilterSpec) SearchPoints() []GeoPoint {
	if s.Origin != nil {
		return []GeoPoint{*s.Origin}
	}
	return s.Points
}

func (s *FilterSpec) String() string {
	return fmt.Sprintf("FilterSpec{intent=%s cities=%v competitions=%v dates=%s..%s origin=%v limit=%d}",
		s.Intent, s.Cities, s.Competitions,
		s.DateFrom.Format("2006-01-02"), s.DateTo.Format("2006-01-02"),
		s.Origin, s.Limit)
}
