// Package parser turns free-text workout prompts into structured activity
// intents. The model-backed path is primary; a deterministic regex/keyword
// extractor takes over whenever the model is unavailable or returns
// unusable output.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/smallnumbers0/create-activity/internal/completion"
	"github.com/smallnumbers0/create-activity/internal/domain"
	"github.com/smallnumbers0/create-activity/internal/observability"
)

// CompletionClient is the completion dependency, narrowed for testing.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string, opts completion.Options) (string, error)
}

// KnowledgeService is the best-effort exercise lookup dependency.
type KnowledgeService interface {
	Search(ctx context.Context, query string, limit int) []domain.ExerciseMatch
	EnhanceContext(sport domain.SportType, ctx domain.Context) domain.Context
}

// knowledgeSearchLimit bounds the lookup feeding classification.
const knowledgeSearchLimit = 3

// errNoCompletionClient routes straight to the fallback path.
var errNoCompletionClient = errors.New("no completion client configured")

// Parser orchestrates the model call, the knowledge lookup, and the
// deterministic fallback.
type Parser struct {
	completions CompletionClient
	knowledge   KnowledgeService
	logger      *log.Logger
}

// New constructs a Parser. completions may be nil, in which case every
// parse uses the fallback path. knowledge may be nil to disable enrichment.
func New(completions CompletionClient, knowledge KnowledgeService, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{completions: completions, knowledge: knowledge, logger: logger}
}

// Parse extracts an ActivityIntent from a prompt. Model failures of any
// kind fall back to deterministic extraction; the only terminal error is a
// prompt with no recoverable duration.
func (p *Parser) Parse(ctx context.Context, prompt string) (domain.ActivityIntent, error) {
	matches := p.searchKnowledge(ctx, prompt)

	intent, err := p.parseWithModel(ctx, prompt, matches)
	if err != nil {
		if !errors.Is(err, errNoCompletionClient) {
			p.logger.Printf("model parse failed, using fallback: %v", err)
		}
		observability.RecordParse("model", "error")
		return p.parseFallback(prompt, matches)
	}

	observability.RecordParse("model", "success")
	return intent, nil
}

func (p *Parser) searchKnowledge(ctx context.Context, prompt string) []domain.ExerciseMatch {
	if p.knowledge == nil {
		return nil
	}
	return p.knowledge.Search(ctx, prompt, knowledgeSearchLimit)
}

// modelIntent is the wire shape expected from the model.
type modelIntent struct {
	SportType       string            `json:"sport_type"`
	DurationMinutes *float64          `json:"duration_minutes"`
	DistanceKM      *float64          `json:"distance_km"`
	Name            *string           `json:"name"`
	Style           string            `json:"description_style"`
	Confidence      *float64          `json:"confidence"`
	Context         map[string]string `json:"context"`
}

func (p *Parser) parseWithModel(ctx context.Context, prompt string, matches []domain.ExerciseMatch) (domain.ActivityIntent, error) {
	if p.completions == nil {
		return domain.ActivityIntent{}, errNoCompletionClient
	}

	system := parserSystemPrompt + knowledgeContextBlock(matches)
	content, err := p.completions.Complete(ctx, system, prompt, completion.Options{
		MaxTokens:   800,
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		return domain.ActivityIntent{}, err
	}

	var wire modelIntent
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &wire); err != nil {
		return domain.ActivityIntent{}, fmt.Errorf("decode model output: %w", err)
	}

	if wire.DurationMinutes == nil || *wire.DurationMinutes <= 0 {
		return domain.ActivityIntent{}, errors.New("model output missing positive duration_minutes")
	}
	sport, ok := domain.ParseSportType(wire.SportType)
	if !ok {
		return domain.ActivityIntent{}, fmt.Errorf("model output has unknown sport_type %q", wire.SportType)
	}

	confidence := 0.5
	if wire.Confidence != nil {
		confidence = *wire.Confidence
	}

	intentCtx := make(domain.Context, len(wire.Context))
	for key, value := range wire.Context {
		if value != "" {
			intentCtx[key] = value
		}
	}

	intent := domain.ActivityIntent{
		SportType:       sport,
		DurationMinutes: *wire.DurationMinutes,
		DistanceKM:      wire.DistanceKM,
		Name:            wire.Name,
		Style:           domain.StyleOrDefault(wire.Style),
		Confidence:      confidence,
		Context:         intentCtx,
	}

	p.enrich(&intent, matches)
	return intent, nil
}

// enrich re-runs context enhancement and pins the knowledge match onto the
// intent. No-op without a match.
func (p *Parser) enrich(intent *domain.ActivityIntent, matches []domain.ExerciseMatch) {
	if p.knowledge == nil || len(matches) == 0 {
		return
	}
	top := matches[0]
	intent.Context = p.knowledge.EnhanceContext(intent.SportType, intent.Context)
	intent.Knowledge = &domain.ExerciseKnowledge{
		MatchedExercise: top.Name,
		MatchScore:      top.Score,
		Keywords:        top.Keywords,
	}
}
