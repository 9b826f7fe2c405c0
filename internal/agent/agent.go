// Package agent orchestrates prompt parsing, content generation, and
// activity creation into user-facing workflows.
package agent

import (
	"context"
	"log"
	"time"

	"github.com/smallnumbers0/create-activity/internal/domain"
	"github.com/smallnumbers0/create-activity/internal/events"
	"github.com/smallnumbers0/create-activity/internal/observability"
	"github.com/smallnumbers0/create-activity/internal/strava"
)

// MinConfidence is the acceptance gate for parsed intents. The comparison
// is strict, so fallback parses (exactly 0.3) are accepted while anything
// scored lower is rejected.
const MinConfidence = 0.3

// PromptParser extracts structured intents from free text.
type PromptParser interface {
	Parse(ctx context.Context, prompt string) (domain.ActivityIntent, error)
}

// Generator produces activity names and descriptions. Implementations
// never fail; they substitute deterministic fallbacks instead.
type Generator interface {
	GenerateActivityName(ctx context.Context, sport domain.SportType, durationMinutes float64, distanceKM *float64, activityCtx domain.Context) string
	GenerateActivityDescription(ctx context.Context, sport domain.SportType, durationMinutes float64, distanceKM *float64, style domain.DescriptionStyle, activityCtx domain.Context) string
}

// TrackerClient is the activity-tracking service surface the agent needs.
type TrackerClient interface {
	CreateActivity(ctx context.Context, activity strava.NewActivity) (*strava.Activity, error)
	UpdateActivity(ctx context.Context, activityID int64, updates map[string]any) (*strava.Activity, error)
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	ListActivities(ctx context.Context, opts strava.ListOptions) ([]strava.Activity, error)
	GetAthlete(ctx context.Context) (*strava.Athlete, error)
}

// Agent ties the parsing, generation, and tracking collaborators together
// for a single authenticated user.
type Agent struct {
	parser    PromptParser
	generator Generator
	tracker   TrackerClient
	publisher events.Publisher
	userID    string
	logger    *log.Logger
	now       func() time.Time
}

// Config collects the agent's collaborators.
type Config struct {
	Parser    PromptParser
	Generator Generator
	Tracker   TrackerClient
	Publisher events.Publisher
	UserID    string
	Logger    *log.Logger
}

// New constructs an Agent.
func New(cfg Config) *Agent {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Agent{
		parser:    cfg.Parser,
		generator: cfg.Generator,
		tracker:   cfg.Tracker,
		publisher: publisher,
		userID:    cfg.UserID,
		logger:    logger,
		now:       time.Now,
	}
}

// Status values for WorkflowResult.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ParsingInfo retains how a prompt was interpreted, for traceability.
type ParsingInfo struct {
	OriginalPrompt string                `json:"original_prompt"`
	Intent         domain.ActivityIntent `json:"parsed_data"`
	Confidence     float64               `json:"confidence"`
}

// GeneratedContent carries the AI-produced text attached to an activity.
type GeneratedContent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// WorkflowResult is the discriminated outcome of a workflow invocation.
type WorkflowResult struct {
	Status      string            `json:"status"`
	Activity    *strava.Activity  `json:"activity,omitempty"`
	AIGenerated *GeneratedContent `json:"ai_generated,omitempty"`
	ParsingInfo *ParsingInfo      `json:"parsing_info,omitempty"`
	Message     string            `json:"message,omitempty"`
}

func errorResult(err error) WorkflowResult {
	return WorkflowResult{Status: StatusError, Message: err.Error()}
}

// CreateActivityFromPrompt runs the full natural-language workflow: parse,
// gate on confidence, generate content, create the remote record.
func (a *Agent) CreateActivityFromPrompt(ctx context.Context, prompt string) WorkflowResult {
	intent, err := a.parser.Parse(ctx, prompt)
	if err != nil {
		return errorResult(err)
	}

	if intent.Confidence < MinConfidence {
		return errorResult(domain.ErrLowConfidence)
	}

	result := a.createWithAI(ctx, intent, "prompt")
	if result.Status == StatusSuccess {
		result.ParsingInfo = &ParsingInfo{
			OriginalPrompt: prompt,
			Intent:         intent,
			Confidence:     intent.Confidence,
		}
	}
	return result
}

// QuickActivityInput creates an activity from minimal structured input.
type QuickActivityInput struct {
	SportType       domain.SportType
	DurationMinutes float64
	DistanceKM      *float64
	Name            *string
	Style           domain.DescriptionStyle
}

// CreateQuickActivity creates an activity directly from structured input,
// still generating a name (when absent) and a description.
func (a *Agent) CreateQuickActivity(ctx context.Context, input QuickActivityInput) WorkflowResult {
	if !input.SportType.Valid() {
		return WorkflowResult{Status: StatusError, Message: "unknown sport type"}
	}
	if input.DurationMinutes <= 0 {
		return WorkflowResult{Status: StatusError, Message: "duration_minutes must be positive"}
	}

	style := input.Style
	if style == "" {
		style = domain.StyleMotivational
	}

	intent := domain.ActivityIntent{
		SportType:       input.SportType,
		DurationMinutes: input.DurationMinutes,
		DistanceKM:      input.DistanceKM,
		Name:            input.Name,
		Style:           style,
		Confidence:      1,
		Context:         domain.Context{},
	}
	return a.createWithAI(ctx, intent, "quick")
}

// createWithAI generates missing content and creates the remote record.
// Content generation never aborts the workflow.
func (a *Agent) createWithAI(ctx context.Context, intent domain.ActivityIntent, source string) WorkflowResult {
	name := ""
	if intent.Name != nil {
		name = *intent.Name
	}
	if name == "" {
		name = a.generator.GenerateActivityName(ctx, intent.SportType, intent.DurationMinutes, intent.DistanceKM, intent.Context)
	}
	description := a.generator.GenerateActivityDescription(ctx, intent.SportType, intent.DurationMinutes, intent.DistanceKM, intent.Style, intent.Context)

	activity := strava.NewActivity{
		Name:           name,
		SportType:      intent.SportType,
		StartDateLocal: a.now(),
		ElapsedTime:    int(intent.DurationMinutes * 60),
		Description:    description,
	}
	if intent.DistanceKM != nil && *intent.DistanceKM > 0 {
		meters := *intent.DistanceKM * 1000
		activity.Distance = &meters
	}

	created, err := a.tracker.CreateActivity(ctx, activity)
	if err != nil {
		return errorResult(err)
	}
	observability.RecordActivityCreated()

	a.publishCreated(ctx, created, intent, source)

	return WorkflowResult{
		Status:      StatusSuccess,
		Activity:    created,
		AIGenerated: &GeneratedContent{Name: name, Description: description},
	}
}

// publishCreated emits the activity.created event; failures are logged and
// swallowed.
func (a *Agent) publishCreated(ctx context.Context, created *strava.Activity, intent domain.ActivityIntent, source string) {
	event := events.ActivityCreated{
		UserID:          a.userID,
		ActivityID:      created.ID,
		SportType:       string(intent.SportType),
		DurationMinutes: intent.DurationMinutes,
		Confidence:      intent.Confidence,
		Source:          source,
	}
	if intent.DistanceKM != nil {
		event.DistanceMeters = *intent.DistanceKM * 1000
	}
	if err := a.publisher.PublishActivityCreated(ctx, event); err != nil {
		a.logger.Printf("activity.created event not published: %v", err)
	}
}

// UpdateInput describes an activity update with optional regeneration.
type UpdateInput struct {
	ActivityID            int64
	Updates               map[string]any
	RegenerateName        bool
	RegenerateDescription bool
	Style                 domain.DescriptionStyle
}

// UpdateActivityWithAI merges manual updates with regenerated content and
// applies them. A failed fetch of the existing activity degrades to manual
// updates only.
func (a *Agent) UpdateActivityWithAI(ctx context.Context, input UpdateInput) (*strava.Activity, error) {
	updates := make(map[string]any, len(input.Updates)+2)
	for key, value := range input.Updates {
		updates[key] = value
	}

	if input.RegenerateName || input.RegenerateDescription {
		existing, err := a.tracker.GetActivity(ctx, input.ActivityID)
		if err != nil {
			a.logger.Printf("could not fetch activity %d for regeneration, applying manual updates only: %v", input.ActivityID, err)
		} else {
			sport, duration, distance := activityFacts(existing)
			if input.RegenerateName {
				updates["name"] = a.generator.GenerateActivityName(ctx, sport, duration, distance, nil)
			}
			if input.RegenerateDescription {
				style := input.Style
				if style == "" {
					style = domain.StyleMotivational
				}
				updates["description"] = a.generator.GenerateActivityDescription(ctx, sport, duration, distance, style, nil)
			}
		}
	}

	if len(updates) == 0 {
		return nil, strava.ErrEmptyUpdate
	}
	return a.tracker.UpdateActivity(ctx, input.ActivityID, updates)
}

// EnhanceActivityDescription regenerates and applies a description for an
// existing activity, returning the new text.
func (a *Agent) EnhanceActivityDescription(ctx context.Context, activityID int64, style domain.DescriptionStyle) (string, error) {
	existing, err := a.tracker.GetActivity(ctx, activityID)
	if err != nil {
		return "", err
	}

	sport, duration, distance := activityFacts(existing)
	if style == "" {
		style = domain.StyleMotivational
	}
	description := a.generator.GenerateActivityDescription(ctx, sport, duration, distance, style, nil)

	if _, err := a.tracker.UpdateActivity(ctx, activityID, map[string]any{"description": description}); err != nil {
		return "", err
	}
	return description, nil
}

// RecentActivities lists the athlete's latest activities.
func (a *Agent) RecentActivities(ctx context.Context, count int) ([]strava.Activity, error) {
	if count <= 0 {
		count = 10
	}
	return a.tracker.ListActivities(ctx, strava.ListOptions{PerPage: count})
}

// AthleteProfile fetches the authenticated athlete.
func (a *Agent) AthleteProfile(ctx context.Context) (*strava.Athlete, error) {
	return a.tracker.GetAthlete(ctx)
}

// activityFacts extracts generation inputs from a remote activity.
func activityFacts(activity *strava.Activity) (domain.SportType, float64, *float64) {
	sport, ok := domain.ParseSportType(activity.SportType)
	if !ok {
		sport = domain.SportRun
	}
	duration := float64(activity.ElapsedTime) / 60
	var distance *float64
	if activity.Distance > 0 {
		km := activity.Distance / 1000
		distance = &km
	}
	return sport, duration, distance
}
