package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"sportsearch/internal/config"
	"sportsearch/internal/model"
	"sportsearch/internal/utils"
)

const stageGeocode = "geocode"

// Geocoder resolves place names to coordinates inside the service region,
// memoizing successful resolutions in a shared bounded cache. Failures are
// never written back: a transient provider error must not become a
// permanently cached miss.
type Geocoder struct {
	client          GeocodingClient
	cache           *GeoCache
	bounds          model.Bounds
	minConfidence   float64
	ambiguityMargin float64
	logger          *zap.Logger
}

// NewGeocoder creates a geocoder with an injected cache, so tests can use
// a fake one.
func NewGeocoder(client GeocodingClient, cache *GeoCache, cfg *config.GeocodeConfig, logger *zap.Logger) *Geocoder {
	return &Geocoder{
		client: client,
		cache:  cache,
		bounds: model.Bounds{
			MinLat: cfg.RegionMinLat,
			MaxLat: cfg.RegionMaxLat,
			MinLon: cfg.RegionMinLon,
			MaxLon: cfg.RegionMaxLon,
		},
		minConfidence:   cfg.MinConfidence,
		ambiguityMargin: cfg.AmbiguityMargin,
		logger:          logger,
	}
}

// Bounds returns the service region bounding box.
func (g *Geocoder) Bounds() model.Bounds {
	return g.bounds
}

// Geocode resolves a place name to a point. Differently cased or spaced
// forms of the same name share one cache entry and one collaborator call.
func (g *Geocoder) Geocode(ctx context.Context, place string) (model.GeoPoint, error) {
	key := utils.NormalizePlace(place)
	if key == "" {
		return model.GeoPoint{}, model.NewPipelineError(model.ErrGeocodeFailed, stageGeocode,
			"Empty place name.")
	}

	if pt, ok := g.cache.Get(key); ok {
		return pt, nil
	}

	candidates, err := g.client.Search(ctx, key)
	if err != nil {
		g.logger.Warn("geocoding collaborator failed", zap.String("place", key), zap.Error(err))
		return model.GeoPoint{}, model.NewPipelineError(model.ErrGeocodeFailed, stageGeocode,
			fmt.Sprintf("Could not resolve %q.", place))
	}

	pt, err := g.selectCandidate(key, candidates)
	if err != nil {
		return model.GeoPoint{}, err
	}

	g.cache.Add(key, pt)
	return pt, nil
}

// selectCandidate picks the single highest-confidence candidate, but only
// if it clears the confidence threshold and no runner-up sits within the
// ambiguity margin of it.
func (g *Geocoder) selectCandidate(place string, candidates []GeoCandidate) (model.GeoPoint, error) {
	if len(candidates) == 0 {
		return model.GeoPoint{}, model.NewPipelineError(model.ErrGeocodeFailed, stageGeocode,
			fmt.Sprintf("No place named %q found in the service region.", place))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	best := candidates[0]
	if best.Confidence < g.minConfidence {
		return model.GeoPoint{}, model.NewPipelineError(model.ErrGeocodeFailed, stageGeocode,
			fmt.Sprintf("No confident match for %q.", place))
	}
	if len(candidates) > 1 && best.Confidence-candidates[1].Confidence < g.ambiguityMargin {
		return model.GeoPoint{}, model.NewPipelineError(model.ErrAmbiguousLocation, stageGeocode,
			fmt.Sprintf("%q matches several places; please be more specific.", place))
	}

	pt := model.GeoPoint{Lat: best.Lat, Lon: best.Lon}
	if !g.bounds.Contains(pt) {
		return model.GeoPoint{}, model.NewPipelineError(model.ErrGeocodeFailed, stageGeocode,
			fmt.Sprintf("%q is outside the service region.", place))
	}
	return pt, nil
}
