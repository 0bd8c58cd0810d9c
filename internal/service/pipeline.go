package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sportsearch/internal/model"
)

// State is a pipeline state machine state. The machine only moves forward;
// Done and Failed are terminal.
type State int

const (
	StateStart State = iota
	StateExtracting
	StateBranching
	StateResolving
	StateAssembling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateExtracting:
		return "EXTRACTING"
	case StateBranching:
		return "BRANCHING"
	case StateResolving:
		return "RESOLVING"
	case StateAssembling:
		return "ASSEMBLING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Pipeline sequences extraction, temporal/geo resolution, and assembly for
// one request at a time. Each Run is an independent instance; instances
// share nothing but the geocoder's cache. Any stage failure transitions
// straight to FAILED and no partial result is ever returned.
type Pipeline struct {
	extractor *Extractor
	temporal  *TemporalResolver
	geocoder  *Geocoder
	assembler *Assembler
	logger    *zap.Logger
	clock     func() time.Time
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(extractor *Extractor, temporal *TemporalResolver, geocoder *Geocoder, assembler *Assembler, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		temporal:  temporal,
		geocoder:  geocoder,
		assembler: assembler,
		logger:    logger,
		clock:     time.Now,
	}
}

// pipelineRun tracks one instance's state transitions.
type pipelineRun struct {
	state State
	trace []string
}

func (r *pipelineRun) to(next State) {
	r.trace = append(r.trace, fmt.Sprintf("%s->%s", r.state, next))
	r.state = next
}

// Run executes the state machine for one raw query and returns the
// assembled FilterSpec, or the PipelineError that short-circuited it.
func (p *Pipeline) Run(ctx context.Context, raw model.RawQuery) (*model.FilterSpec, error) {
	run := &pipelineRun{state: StateStart}

	run.to(StateExtracting)
	extracted, err := p.extractor.Extract(ctx, raw.Text)
	if err != nil {
		return nil, p.fail(run, err)
	}

	run.to(StateBranching)
	// Branch guards: list_competitions needs neither resolver; geocoding
	// only runs when there are place names to resolve. Skipping is an
	// optimization and never changes the assembled spec.
	needDates := extracted.Intent.NeedsDates()
	needGeo := extracted.Intent != model.IntentListCompetitions && len(extracted.Cities) > 0

	callerPoint := raw.CallerPoint()
	if callerPoint != nil && !p.geocoder.Bounds().Contains(*callerPoint) {
		p.logger.Warn("caller coordinates outside service region, ignoring",
			zap.Float64("lat", callerPoint.Lat), zap.Float64("lon", callerPoint.Lon))
		callerPoint = nil
	}

	run.to(StateResolving)
	var (
		dates  model.DateRange
		points []model.GeoPoint
	)

	// The two resolving sub-stages have no data dependency and run
	// concurrently; a fatal geo failure cancels and discards the
	// temporal result.
	g, gctx := errgroup.WithContext(ctx)
	if needDates {
		g.Go(func() error {
			dates = p.temporal.Resolve(gctx, extracted.TimePhrase, p.clock())
			return nil
		})
	} else {
		dates = p.temporal.DefaultWindow(p.clock())
	}
	if needGeo {
		g.Go(func() error {
			resolved := make([]model.GeoPoint, 0, len(extracted.Cities))
			for _, city := range extracted.Cities {
				pt, err := p.geocoder.Geocode(gctx, city)
				if err != nil {
					return err
				}
				resolved = append(resolved, pt)
			}
			points = resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, p.fail(run, err)
	}

	run.to(StateAssembling)
	spec, err := p.assembler.Assemble(extracted, dates, points, callerPoint, raw.Limit)
	if err != nil {
		return nil, p.fail(run, err)
	}

	run.to(StateDone)
	p.logger.Info("pipeline completed",
		zap.String("intent", string(spec.Intent)),
		zap.Strings("trace", run.trace))
	return spec, nil
}

// fail moves the run to its terminal FAILED state and normalizes the error
// into a PipelineError for the response formatter.
func (p *Pipeline) fail(run *pipelineRun, err error) error {
	failedAt := run.state
	run.to(StateFailed)

	pe, ok := model.AsPipelineError(err)
	if !ok {
		pe = model.NewPipelineError(model.ErrUnclearQuery, failedAt.String(), err.Error())
	}

	p.logger.Info("pipeline failed",
		zap.String("code", string(pe.Code)),
		zap.String("stage", pe.Stage),
		zap.Strings("trace", run.trace))
	return pe
}
