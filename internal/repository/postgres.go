package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"sportsearch/internal/model"
	"sportsearch/internal/utils"
)

// PostgresRepository is the query executor: it consumes exactly one
// FilterSpec and returns a finite, already-bounded list of events from the
// geospatial store.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

const eventColumns = `
	e.id,
	e.match_name,
	e.datetime_local,
	e.competition_id,
	c.name AS competition,
	e.venue_id,
	v.name AS venue,
	COALESCE(v.city, '') AS city,
	v.country,
	v.latitude,
	v.longitude`

// FindEvents runs the filtered, bounded geospatial query described by the
// spec. Each search point gets its own PostGIS radius query ordered by
// distance; the combined rows may contain duplicates, which the caller
// collapses by event id. Without any point it filters by city and
// competition names and orders by time.
func (r *PostgresRepository) FindEvents(ctx context.Context, spec *model.FilterSpec) ([]model.Event, error) {
	if spec == nil {
		return nil, fmt.Errorf("nil filter spec")
	}

	points := spec.SearchPoints()
	if len(points) == 0 {
		query, args := buildEventsQuery(spec, nil)
		var events []model.Event
		if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
			return nil, fmt.Errorf("find events: %w", err)
		}
		return events, nil
	}

	var all []model.Event
	for i := range points {
		query, args := buildEventsQuery(spec, &points[i])
		var events []model.Event
		if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
			return nil, fmt.Errorf("find events near %v: %w", points[i], err)
		}
		all = append(all, events...)
	}
	return all, nil
}

// buildEventsQuery renders the SQL for one search point (or none) from the
// spec's filters.
func buildEventsQuery(spec *model.FilterSpec, origin *model.GeoPoint) (string, []interface{}) {
	selectClause := eventColumns + ",\n\tNULL::float8 AS distance_km"
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	orderBy := "e.datetime_local ASC"

	if origin != nil {
		radius := 25.0
		if spec.RadiusKm != nil {
			radius = *spec.RadiusKm
		}
		selectClause = eventColumns + fmt.Sprintf(`,
	ST_Distance(v.geom::geography, ST_SetSRID(ST_MakePoint($%d, $%d), 4326)::geography) / 1000.0 AS distance_km`,
			argIndex+1, argIndex)
		whereClauses = append(whereClauses, fmt.Sprintf(
			"ST_DWithin(v.geom::geography, ST_SetSRID(ST_MakePoint($%d, $%d), 4326)::geography, $%d * 1000)",
			argIndex+1, argIndex, argIndex+2))
		args = append(args, origin.Lat, origin.Lon, radius)
		argIndex += 3
		orderBy = "distance_km ASC, e.datetime_local ASC"
	}

	if len(spec.Cities) > 0 && origin == nil {
		placeholders := make([]string, len(spec.Cities))
		for i, city := range spec.Cities {
			placeholders[i] = fmt.Sprintf("v.city ILIKE $%d", argIndex)
			args = append(args, "%"+city+"%")
			argIndex++
		}
		whereClauses = append(whereClauses, "("+strings.Join(placeholders, " OR ")+")")
	}

	if len(spec.Competitions) > 0 {
		var placeholders []string
		for _, comp := range spec.Competitions {
			// Loose name match, plus the canonical league name when the
			// slot is a sport word ("football") or informal alias.
			placeholders = append(placeholders, fmt.Sprintf("c.name ILIKE $%d", argIndex))
			args = append(args, "%"+comp+"%")
			argIndex++
			if canonical, ok := utils.CanonicalCompetition(comp); ok && !strings.EqualFold(canonical, comp) {
				placeholders = append(placeholders, fmt.Sprintf("c.name ILIKE $%d", argIndex))
				args = append(args, "%"+canonical+"%")
				argIndex++
			}
		}
		whereClauses = append(whereClauses, "("+strings.Join(placeholders, " OR ")+")")
	}

	if !spec.DateFrom.IsZero() {
		whereClauses = append(whereClauses, fmt.Sprintf("e.datetime_local::date >= $%d", argIndex))
		args = append(args, spec.DateFrom)
		argIndex++
	}
	if !spec.DateTo.IsZero() {
		whereClauses = append(whereClauses, fmt.Sprintf("e.datetime_local::date <= $%d", argIndex))
		args = append(args, spec.DateTo)
		argIndex++
	}

	limit := spec.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN venues v ON e.venue_id = v.id
		JOIN competitions c ON e.competition_id = c.id
		WHERE %s
		ORDER BY %s
		LIMIT $%d`,
		selectClause, strings.Join(whereClauses, " AND "), orderBy, argIndex)
	args = append(args, limit)

	return query, args
}

// ListCompetitions returns all known competitions.
func (r *PostgresRepository) ListCompetitions(ctx context.Context) ([]model.Competition, error) {
	var competitions []model.Competition
	query := `SELECT id, name, COALESCE(sport, '') AS sport FROM competitions ORDER BY name`
	if err := r.db.SelectContext(ctx, &competitions, query); err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return competitions, nil
}
