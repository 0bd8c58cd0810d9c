package service

import (
	"context"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"sportsearch/internal/model"
	"sportsearch/internal/utils"
)

const stageExtract = "extract"

// Extractor turns free text into a validated ExtractedIntent by delegating
// language understanding to the AI collaborator. It performs no business
// inference itself: time phrases and place names leave here unresolved.
type Extractor struct {
	ai     AIClient
	logger *zap.Logger
}

// NewExtractor creates a new intent & slot extractor
func NewExtractor(ai AIClient, logger *zap.Logger) *Extractor {
	return &Extractor{ai: ai, logger: logger}
}

// Extract classifies the query and extracts raw slots. Any malformed,
// empty, or schema-violating model response yields UNCLEAR_QUERY; one
// bounded retry with a stricter prompt is attempted before giving up.
func (e *Extractor) Extract(ctx context.Context, text string) (*model.ExtractedIntent, error) {
	text = strings.TrimSpace(text)
	if len(text) < 2 {
		return nil, model.NewPipelineError(model.ErrUnclearQuery, stageExtract,
			"Query is empty or too short, please use a clearer expression.")
	}

	if e.ai == nil || !e.ai.IsEnabled() {
		e.logger.Warn("language model collaborator is not configured")
		return nil, model.NewPipelineError(model.ErrUnclearQuery, stageExtract,
			"Query understanding is unavailable.")
	}

	var out *model.ExtractedIntent
	attempt := 0
	backoff := retry.WithMaxRetries(1, retry.NewConstant(200*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		strict := attempt > 0
		attempt++

		raw, err := e.ai.ExtractIntent(ctx, text, strict)
		if err != nil {
			e.logger.Warn("intent extraction call failed", zap.Error(err), zap.Bool("strict", strict))
			return retry.RetryableError(err)
		}

		validated, err := e.validate(raw)
		if err != nil {
			e.logger.Warn("intent extraction rejected", zap.Error(err), zap.Bool("strict", strict))
			return retry.RetryableError(err)
		}

		out = validated
		return nil
	})
	if err != nil {
		return nil, model.NewPipelineError(model.ErrUnclearQuery, stageExtract,
			"I didn't understand your request. Please ask about sports events or competitions in Belgium.")
	}

	if out.Intent == model.IntentUnclear {
		return nil, model.NewPipelineError(model.ErrUnclearQuery, stageExtract,
			"I didn't understand your request. Please ask about sports events or competitions in Belgium.")
	}

	e.logger.Info("intent extracted",
		zap.String("intent", string(out.Intent)),
		zap.Strings("cities", out.Cities),
		zap.Strings("competitions", out.Competitions),
		zap.String("time_phrase", out.TimePhrase),
		zap.Float64("confidence", out.Confidence))

	return out, nil
}

// validate checks the raw model response against the ExtractedIntent
// schema. Unknown intent labels are extraction failures, not intents.
func (e *Extractor) validate(raw *IntentExtraction) (*model.ExtractedIntent, error) {
	if raw == nil || strings.TrimSpace(raw.Intent) == "" {
		return nil, errMissingIntent
	}

	intent, ok := model.ParseIntent(raw.Intent)
	if !ok {
		return nil, errUnknownIntent(raw.Intent)
	}

	confidence := raw.Confidence
	if confidence < 0 || confidence > 1 {
		confidence = 0
	}

	var radius *float64
	if raw.RadiusKm != nil && *raw.RadiusKm > 0 {
		r := *raw.RadiusKm
		radius = &r
	}

	return &model.ExtractedIntent{
		Intent:       intent,
		Cities:       utils.DedupeFold(raw.Cities),
		Competitions: utils.DedupeFold(raw.Competitions),
		TimePhrase:   strings.TrimSpace(raw.TimePhrase),
		RadiusKm:     radius,
		Limit:        raw.Limit,
		Confidence:   confidence,
		Valid:        true,
	}, nil
}

type extractionError string

func (e extractionError) Error() string { return string(e) }

const errMissingIntent = extractionError("model response is missing the intent field")

func errUnknownIntent(label string) error {
	return extractionError("unknown intent label: " + label)
}
