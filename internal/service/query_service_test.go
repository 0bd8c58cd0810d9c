package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"sportsearch/internal/model"
)

// stubExecutor records calls and replays canned storage results.
type stubExecutor struct {
	events       []model.Event
	eventsErr    error
	findCalls    int
	lastSpec     *model.FilterSpec
	competitions []model.Competition
	listErr      error
	listCalls    int
}

func (s *stubExecutor) FindEvents(_ context.Context, spec *model.FilterSpec) ([]model.Event, error) {
	s.findCalls++
	s.lastSpec = spec
	return s.events, s.eventsErr
}

func (s *stubExecutor) ListCompetitions(_ context.Context) ([]model.Competition, error) {
	s.listCalls++
	return s.competitions, s.listErr
}

func newTestQueryService(ai *stubAI, geo *stubGeoClient, exec *stubExecutor) *QueryService {
	svc := NewQueryService(newTestPipeline(ai, geo), exec, NewRanker(0.7, 0.3), zap.NewNop())
	svc.clock = func() time.Time { return friday }
	return svc
}

func cityQueryAI() *stubAI {
	return &stubAI{
		enabled: true,
		intents: []*IntentExtraction{{
			Intent:     "events_in_cities",
			Cities:     []string{"Brussels"},
			TimePhrase: "this weekend",
			Confidence: 0.9,
		}},
	}
}

func TestQueryEventsPath(t *testing.T) {
	saturday := date(2025, 9, 27)
	exec := &stubExecutor{events: []model.Event{
		event(1, "duplicate far", saturday, ptrFloat(9)),
		event(2, "close derby", saturday, ptrFloat(1)),
		event(1, "duplicate near", saturday, ptrFloat(3)),
	}}
	svc := newTestQueryService(cityQueryAI(), &stubGeoClient{responses: [][]GeoCandidate{{brusselsCandidate}}}, exec)

	resp, err := svc.Query(context.Background(), model.RawQuery{Text: "events in Brussels this weekend"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if exec.findCalls != 1 {
		t.Errorf("FindEvents calls = %d, want 1", exec.findCalls)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2 after deduplication", resp.Total)
	}
	// The closest duplicate row survives and the nearer event ranks first.
	if resp.Events[0].ID != 2 {
		t.Errorf("first event id = %d, want 2", resp.Events[0].ID)
	}
	if resp.Events[1].ID != 1 || *resp.Events[1].DistanceKm != 3 {
		t.Errorf("second event = %+v, want id 1 at 3 km", resp.Events[1])
	}
	if resp.Filter == nil || resp.Filter.Intent != model.IntentEventsInCities {
		t.Errorf("filter = %+v, want events_in_cities spec", resp.Filter)
	}
}

func TestQueryTruncatesToLimit(t *testing.T) {
	saturday := date(2025, 9, 27)
	exec := &stubExecutor{}
	for i := int64(1); i <= 5; i++ {
		exec.events = append(exec.events, event(i, "match", saturday, nil))
	}
	svc := newTestQueryService(cityQueryAI(), &stubGeoClient{responses: [][]GeoCandidate{{brusselsCandidate}}}, exec)

	resp, err := svc.Query(context.Background(), model.RawQuery{Text: "events in Brussels this weekend", Limit: 3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(resp.Events) != 3 {
		t.Errorf("len(events) = %d, want 3", len(resp.Events))
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
}

func TestQueryPipelineFailureSkipsExecutor(t *testing.T) {
	ai := &stubAI{
		enabled: true,
		intents: []*IntentExtraction{{Intent: "unclear", Confidence: 0.1}},
	}
	exec := &stubExecutor{}
	svc := newTestQueryService(ai, &stubGeoClient{}, exec)

	_, err := svc.Query(context.Background(), model.RawQuery{Text: "blorp"})
	pe, ok := model.AsPipelineError(err)
	if !ok || pe.Code != model.ErrUnclearQuery {
		t.Fatalf("error = %v, want UNCLEAR_QUERY", err)
	}
	if exec.findCalls != 0 || exec.listCalls != 0 {
		t.Errorf("executor reached on pipeline failure: find=%d list=%d", exec.findCalls, exec.listCalls)
	}
}

func TestQueryListCompetitionsPath(t *testing.T) {
	ai := &stubAI{
		enabled: true,
		intents: []*IntentExtraction{{Intent: "list_competitions", Confidence: 0.95}},
	}
	exec := &stubExecutor{competitions: []model.Competition{
		{ID: 1, Name: "Jupiler Pro League", Sport: "football"},
		{ID: 2, Name: "BNXT League", Sport: "basketball"},
	}}
	svc := newTestQueryService(ai, &stubGeoClient{}, exec)

	resp, err := svc.Query(context.Background(), model.RawQuery{Text: "which competitions are there?"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if exec.listCalls != 1 || exec.findCalls != 0 {
		t.Errorf("executor calls: list=%d find=%d, want 1/0", exec.listCalls, exec.findCalls)
	}
	if resp.Total != 2 || len(resp.Competitions) != 2 {
		t.Errorf("total = %d, competitions = %d, want 2/2", resp.Total, len(resp.Competitions))
	}
	if resp.Events != nil {
		t.Error("events set on a competition listing")
	}
}

func TestQueryExecutorErrorPropagates(t *testing.T) {
	exec := &stubExecutor{eventsErr: errors.New("connection reset")}
	svc := newTestQueryService(cityQueryAI(), &stubGeoClient{responses: [][]GeoCandidate{{brusselsCandidate}}}, exec)

	_, err := svc.Query(context.Background(), model.RawQuery{Text: "events in Brussels this weekend"})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := model.AsPipelineError(err); ok {
		t.Errorf("storage error surfaced as PipelineError: %v", err)
	}
}

func TestCompetitionsBypassesPipeline(t *testing.T) {
	ai := &stubAI{enabled: true}
	exec := &stubExecutor{competitions: []model.Competition{{ID: 1, Name: "Lotto Super League", Sport: "football"}}}
	svc := newTestQueryService(ai, &stubGeoClient{}, exec)

	got, err := svc.Competitions(context.Background())
	if err != nil {
		t.Fatalf("Competitions: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if ai.extractCalls != 0 {
		t.Errorf("extraction calls = %d, want 0", ai.extractCalls)
	}
}
