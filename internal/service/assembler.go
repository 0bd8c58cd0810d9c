package service

import (
	"sportsearch/internal/model"
	"sportsearch/internal/utils"
)

const stageAssemble = "assemble"

// Assembler merges extractor output, resolved dates, and resolved
// coordinates into a single validated FilterSpec. Pure merge/validation:
// no external calls, no mutation of its inputs.
type Assembler struct {
	defaultLimit    int
	maxLimit        int
	defaultRadiusKm float64
}

// NewAssembler creates a filter assembler with the configured limits.
func NewAssembler(defaultLimit, maxLimit int, defaultRadiusKm float64) *Assembler {
	return &Assembler{
		defaultLimit:    defaultLimit,
		maxLimit:        maxLimit,
		defaultRadiusKm: defaultRadiusKm,
	}
}

// Assemble builds the terminal FilterSpec. callerLimit comes from the raw
// request; extracted slot limits take precedence when valid.
func (a *Assembler) Assemble(
	extracted *model.ExtractedIntent,
	dates model.DateRange,
	points []model.GeoPoint,
	callerPoint *model.GeoPoint,
	callerLimit int,
) (*model.FilterSpec, error) {
	if extracted == nil || !extracted.Valid {
		return nil, model.NewPipelineError(model.ErrUnclearQuery, stageAssemble,
			"Extraction produced no trustworthy intent.")
	}

	origin := callerPoint
	if origin == nil && len(points) > 0 {
		p := points[0]
		origin = &p
	}

	if extracted.Intent == model.IntentEventsNearMe && origin == nil {
		return nil, model.NewPipelineError(model.ErrUnclearQuery, stageAssemble,
			"Location not specified. Please add a city name or share your coordinates.")
	}

	spec := &model.FilterSpec{
		Intent: extracted.Intent,
		Limit:  a.clampLimit(extracted.Limit, callerLimit),
	}

	// list_competitions ignores every location and date slot.
	if extracted.Intent == model.IntentListCompetitions {
		return spec, nil
	}

	spec.Cities = utils.DedupeFold(extracted.Cities)
	spec.Competitions = utils.DedupeFold(extracted.Competitions)
	spec.DateFrom = dates.From
	spec.DateTo = dates.To

	// Origin anchors near-me searches only. Every other intent keeps the
	// full list of resolved city coordinates so the executor can search
	// around each of them.
	if extracted.Intent == model.IntentEventsNearMe {
		spec.Origin = origin
	} else if len(points) > 0 {
		spec.Points = append([]model.GeoPoint(nil), points...)
	}

	if spec.Origin != nil || len(spec.Points) > 0 {
		radius := a.defaultRadiusKm
		if extracted.RadiusKm != nil && *extracted.RadiusKm > 0 {
			radius = *extracted.RadiusKm
		}
		spec.RadiusKm = &radius
	}

	return spec, nil
}

// clampLimit picks the first usable limit among slot hint and caller
// value, falling back to the default when both are absent or out of range.
func (a *Assembler) clampLimit(slotLimit, callerLimit int) int {
	for _, l := range []int{slotLimit, callerLimit} {
		if l >= 1 && l <= a.maxLimit {
			return l
		}
	}
	return a.defaultLimit
}
