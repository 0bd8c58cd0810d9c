package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sportsearch/internal/model"
)

// QueryExecutor is the storage collaborator: it consumes one FilterSpec
// and returns ranked, bounded results. How it computes them is its own
// business.
type QueryExecutor interface {
	FindEvents(ctx context.Context, spec *model.FilterSpec) ([]model.Event, error)
	ListCompetitions(ctx context.Context) ([]model.Competition, error)
}

// QueryService runs the understanding pipeline and hands the resulting
// FilterSpec to the executor. The executor is only reached on a fully
// successful pipeline run; failures surface as PipelineErrors.
type QueryService struct {
	pipeline *Pipeline
	executor QueryExecutor
	ranker   *Ranker
	logger   *zap.Logger
	clock    func() time.Time
}

// NewQueryService creates a new query service
func NewQueryService(pipeline *Pipeline, executor QueryExecutor, ranker *Ranker, logger *zap.Logger) *QueryService {
	return &QueryService{
		pipeline: pipeline,
		executor: executor,
		ranker:   ranker,
		logger:   logger,
		clock:    time.Now,
	}
}

// Query answers one free-text request end to end.
func (s *QueryService) Query(ctx context.Context, raw model.RawQuery) (*model.QueryResponse, error) {
	start := s.clock()

	spec, err := s.pipeline.Run(ctx, raw)
	if err != nil {
		return nil, err
	}

	resp := &model.QueryResponse{
		Query:  raw.Text,
		Filter: spec,
	}

	if spec.Intent == model.IntentListCompetitions {
		competitions, err := s.executor.ListCompetitions(ctx)
		if err != nil {
			return nil, fmt.Errorf("list competitions: %w", err)
		}
		resp.Competitions = competitions
		resp.Total = len(competitions)
		resp.Took = time.Since(start).Milliseconds()
		return resp, nil
	}

	events, err := s.executor.FindEvents(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	events = Deduplicate(events)
	events = s.ranker.Rank(events, start)
	if len(events) > spec.Limit {
		events = events[:spec.Limit]
	}

	resp.Events = events
	resp.Total = len(events)
	resp.Took = time.Since(start).Milliseconds()

	s.logger.Info("query answered",
		zap.String("intent", string(spec.Intent)),
		zap.Int("results", resp.Total),
		zap.Int64("took_ms", resp.Took))
	return resp, nil
}

// Competitions lists all competitions without running the pipeline.
func (s *QueryService) Competitions(ctx context.Context) ([]model.Competition, error) {
	return s.executor.ListCompetitions(ctx)
}
