package agent

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smallnumbers0/create-activity/internal/domain"
	"github.com/smallnumbers0/create-activity/internal/events"
	"github.com/smallnumbers0/create-activity/internal/strava"
)

type stubParser struct {
	intent domain.ActivityIntent
	err    error
}

func (s *stubParser) Parse(ctx context.Context, prompt string) (domain.ActivityIntent, error) {
	return s.intent, s.err
}

type stubGenerator struct {
	name        string
	description string

	nameCalls int
	descStyle domain.DescriptionStyle
}

func (s *stubGenerator) GenerateActivityName(ctx context.Context, sport domain.SportType, durationMinutes float64, distanceKM *float64, activityCtx domain.Context) string {
	s.nameCalls++
	return s.name
}

func (s *stubGenerator) GenerateActivityDescription(ctx context.Context, sport domain.SportType, durationMinutes float64, distanceKM *float64, style domain.DescriptionStyle, activityCtx domain.Context) string {
	s.descStyle = style
	return s.description
}

type stubTracker struct {
	created      strava.NewActivity
	createResult *strava.Activity
	createErr    error

	getResult *strava.Activity
	getErr    error

	updatedID      int64
	updatedFields  map[string]any
	updateResult   *strava.Activity
	updateErr      error
	listOpts       strava.ListOptions
	listResult     []strava.Activity
	athleteResult  *strava.Athlete
	athleteFetched bool
}

func (s *stubTracker) CreateActivity(ctx context.Context, activity strava.NewActivity) (*strava.Activity, error) {
	s.created = activity
	return s.createResult, s.createErr
}

func (s *stubTracker) UpdateActivity(ctx context.Context, activityID int64, updates map[string]any) (*strava.Activity, error) {
	s.updatedID = activityID
	s.updatedFields = updates
	return s.updateResult, s.updateErr
}

func (s *stubTracker) GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error) {
	return s.getResult, s.getErr
}

func (s *stubTracker) ListActivities(ctx context.Context, opts strava.ListOptions) ([]strava.Activity, error) {
	s.listOpts = opts
	return s.listResult, nil
}

func (s *stubTracker) GetAthlete(ctx context.Context) (*strava.Athlete, error) {
	s.athleteFetched = true
	return s.athleteResult, nil
}

type recordingPublisher struct {
	events []events.ActivityCreated
	err    error
}

func (r *recordingPublisher) PublishActivityCreated(ctx context.Context, event events.ActivityCreated) error {
	r.events = append(r.events, event)
	return r.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func floatPtr(v float64) *float64 { return &v }

func newTestAgent(parser *stubParser, generator *stubGenerator, tracker *stubTracker, publisher events.Publisher) *Agent {
	a := New(Config{
		Parser:    parser,
		Generator: generator,
		Tracker:   tracker,
		Publisher: publisher,
		UserID:    "athlete-1",
		Logger:    testLogger(),
	})
	a.now = func() time.Time {
		return time.Date(2025, time.March, 14, 7, 30, 0, 0, time.UTC)
	}
	return a
}

func TestCreateActivityFromPrompt(t *testing.T) {
	parser := &stubParser{intent: domain.ActivityIntent{
		SportType:       domain.SportRun,
		DurationMinutes: 30,
		DistanceKM:      floatPtr(5),
		Style:           domain.StyleCasual,
		Confidence:      0.9,
		Context:         domain.Context{"time_of_day": "morning"},
	}}
	generator := &stubGenerator{name: "Morning Miles", description: "Solid effort out there."}
	tracker := &stubTracker{createResult: &strava.Activity{ID: 42, Name: "Morning Miles", SportType: "Run"}}
	publisher := &recordingPublisher{}
	agent := newTestAgent(parser, generator, tracker, publisher)

	result := agent.CreateActivityFromPrompt(context.Background(), "30 minute 5k run this morning")

	require.Equal(t, StatusSuccess, result.Status)
	require.NotNil(t, result.Activity)
	require.EqualValues(t, 42, result.Activity.ID)
	require.Equal(t, "Morning Miles", result.AIGenerated.Name)
	require.Equal(t, "Solid effort out there.", result.AIGenerated.Description)
	require.NotNil(t, result.ParsingInfo)
	require.Equal(t, "30 minute 5k run this morning", result.ParsingInfo.OriginalPrompt)
	require.InDelta(t, 0.9, result.ParsingInfo.Confidence, 1e-9)

	require.Equal(t, "Morning Miles", tracker.created.Name)
	require.Equal(t, domain.SportRun, tracker.created.SportType)
	require.Equal(t, 1800, tracker.created.ElapsedTime)
	require.NotNil(t, tracker.created.Distance)
	require.InDelta(t, 5000, *tracker.created.Distance, 1e-9)
	require.Equal(t, "Solid effort out there.", tracker.created.Description)

	require.Len(t, publisher.events, 1)
	require.Equal(t, "athlete-1", publisher.events[0].UserID)
	require.EqualValues(t, 42, publisher.events[0].ActivityID)
	require.Equal(t, "prompt", publisher.events[0].Source)
	require.InDelta(t, 5000, publisher.events[0].DistanceMeters, 1e-9)
}

func TestCreateActivityFromPromptConfidenceGate(t *testing.T) {
	tracker := &stubTracker{createResult: &strava.Activity{ID: 1}}

	t.Run("below threshold rejected", func(t *testing.T) {
		parser := &stubParser{intent: domain.ActivityIntent{
			SportType:       domain.SportRun,
			DurationMinutes: 30,
			Confidence:      0.29,
		}}
		agent := newTestAgent(parser, &stubGenerator{}, tracker, &recordingPublisher{})

		result := agent.CreateActivityFromPrompt(context.Background(), "did stuff")

		require.Equal(t, StatusError, result.Status)
		require.Equal(t, domain.ErrLowConfidence.Error(), result.Message)
		require.Nil(t, result.Activity)
	})

	t.Run("threshold exactly accepted", func(t *testing.T) {
		parser := &stubParser{intent: domain.ActivityIntent{
			SportType:       domain.SportRun,
			DurationMinutes: 30,
			Confidence:      0.3,
		}}
		agent := newTestAgent(parser, &stubGenerator{name: "Run Session", description: "ok"}, tracker, &recordingPublisher{})

		result := agent.CreateActivityFromPrompt(context.Background(), "30 minute run")

		require.Equal(t, StatusSuccess, result.Status)
	})
}

func TestCreateActivityFromPromptParseError(t *testing.T) {
	parser := &stubParser{err: domain.ErrMissingDuration}
	agent := newTestAgent(parser, &stubGenerator{}, &stubTracker{}, &recordingPublisher{})

	result := agent.CreateActivityFromPrompt(context.Background(), "did some lifting")

	require.Equal(t, StatusError, result.Status)
	require.Equal(t, domain.ErrMissingDuration.Error(), result.Message)
}

func TestCreateActivityFromPromptKeepsParsedName(t *testing.T) {
	parser := &stubParser{intent: domain.ActivityIntent{
		SportType:       domain.SportRide,
		DurationMinutes: 60,
		Name:            stringPtr("Hill Repeats"),
		Confidence:      0.8,
	}}
	generator := &stubGenerator{name: "unused", description: "desc"}
	tracker := &stubTracker{createResult: &strava.Activity{ID: 7}}
	agent := newTestAgent(parser, generator, tracker, &recordingPublisher{})

	result := agent.CreateActivityFromPrompt(context.Background(), "60 minute hill repeats ride")

	require.Equal(t, StatusSuccess, result.Status)
	require.Equal(t, "Hill Repeats", tracker.created.Name)
	require.Zero(t, generator.nameCalls)
}

func TestCreateActivityFromPromptTrackerError(t *testing.T) {
	parser := &stubParser{intent: domain.ActivityIntent{
		SportType:       domain.SportRun,
		DurationMinutes: 30,
		Confidence:      0.9,
	}}
	tracker := &stubTracker{createErr: domain.ErrNotAuthenticated}
	publisher := &recordingPublisher{}
	agent := newTestAgent(parser, &stubGenerator{name: "n", description: "d"}, tracker, publisher)

	result := agent.CreateActivityFromPrompt(context.Background(), "30 minute run")

	require.Equal(t, StatusError, result.Status)
	require.Equal(t, domain.ErrNotAuthenticated.Error(), result.Message)
	require.Empty(t, publisher.events)
}

func TestCreateActivityFromPromptPublishFailureTolerated(t *testing.T) {
	parser := &stubParser{intent: domain.ActivityIntent{
		SportType:       domain.SportRun,
		DurationMinutes: 30,
		Confidence:      0.9,
	}}
	tracker := &stubTracker{createResult: &strava.Activity{ID: 9}}
	publisher := &recordingPublisher{err: errors.New("broker down")}
	agent := newTestAgent(parser, &stubGenerator{name: "n", description: "d"}, tracker, publisher)

	result := agent.CreateActivityFromPrompt(context.Background(), "30 minute run")

	require.Equal(t, StatusSuccess, result.Status)
}

func TestCreateQuickActivity(t *testing.T) {
	generator := &stubGenerator{name: "Quick Spin", description: "Nice ride."}
	tracker := &stubTracker{createResult: &strava.Activity{ID: 3}}
	publisher := &recordingPublisher{}
	agent := newTestAgent(&stubParser{}, generator, tracker, publisher)

	result := agent.CreateQuickActivity(context.Background(), QuickActivityInput{
		SportType:       domain.SportRide,
		DurationMinutes: 45,
		DistanceKM:      floatPtr(20),
	})

	require.Equal(t, StatusSuccess, result.Status)
	require.Nil(t, result.ParsingInfo)
	require.Equal(t, "Quick Spin", tracker.created.Name)
	require.Equal(t, 2700, tracker.created.ElapsedTime)
	require.InDelta(t, 20000, *tracker.created.Distance, 1e-9)
	require.Equal(t, domain.StyleMotivational, generator.descStyle)

	require.Len(t, publisher.events, 1)
	require.Equal(t, "quick", publisher.events[0].Source)
}

func TestCreateQuickActivityValidation(t *testing.T) {
	agent := newTestAgent(&stubParser{}, &stubGenerator{}, &stubTracker{}, &recordingPublisher{})

	result := agent.CreateQuickActivity(context.Background(), QuickActivityInput{
		SportType:       domain.SportType("Jousting"),
		DurationMinutes: 30,
	})
	require.Equal(t, StatusError, result.Status)

	result = agent.CreateQuickActivity(context.Background(), QuickActivityInput{
		SportType:       domain.SportRun,
		DurationMinutes: 0,
	})
	require.Equal(t, StatusError, result.Status)
}

func TestUpdateActivityWithAI(t *testing.T) {
	generator := &stubGenerator{name: "Regenerated", description: "Fresh description."}
	tracker := &stubTracker{
		getResult:    &strava.Activity{ID: 5, SportType: "Run", ElapsedTime: 1800, Distance: 5000},
		updateResult: &strava.Activity{ID: 5, Name: "Regenerated"},
	}
	agent := newTestAgent(&stubParser{}, generator, tracker, &recordingPublisher{})

	updated, err := agent.UpdateActivityWithAI(context.Background(), UpdateInput{
		ActivityID:            5,
		Updates:               map[string]any{"commute": true},
		RegenerateName:        true,
		RegenerateDescription: true,
		Style:                 domain.StyleTechnical,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	require.EqualValues(t, 5, tracker.updatedID)
	require.Equal(t, "Regenerated", tracker.updatedFields["name"])
	require.Equal(t, "Fresh description.", tracker.updatedFields["description"])
	require.Equal(t, true, tracker.updatedFields["commute"])
	require.Equal(t, domain.StyleTechnical, generator.descStyle)
}

func TestUpdateActivityWithAIFetchFailureDegrades(t *testing.T) {
	tracker := &stubTracker{
		getErr:       errors.New("not found"),
		updateResult: &strava.Activity{ID: 5},
	}
	agent := newTestAgent(&stubParser{}, &stubGenerator{}, tracker, &recordingPublisher{})

	_, err := agent.UpdateActivityWithAI(context.Background(), UpdateInput{
		ActivityID:     5,
		Updates:        map[string]any{"name": "Manual Name"},
		RegenerateName: true,
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "Manual Name"}, tracker.updatedFields)
}

func TestUpdateActivityWithAIEmptyUpdates(t *testing.T) {
	agent := newTestAgent(&stubParser{}, &stubGenerator{}, &stubTracker{}, &recordingPublisher{})

	_, err := agent.UpdateActivityWithAI(context.Background(), UpdateInput{ActivityID: 5})
	require.ErrorIs(t, err, strava.ErrEmptyUpdate)
}

func TestEnhanceActivityDescription(t *testing.T) {
	generator := &stubGenerator{description: "Enhanced text."}
	tracker := &stubTracker{
		getResult:    &strava.Activity{ID: 8, SportType: "Ride", ElapsedTime: 3600, Distance: 30000},
		updateResult: &strava.Activity{ID: 8},
	}
	agent := newTestAgent(&stubParser{}, generator, tracker, &recordingPublisher{})

	description, err := agent.EnhanceActivityDescription(context.Background(), 8, domain.StyleHumorous)
	require.NoError(t, err)
	require.Equal(t, "Enhanced text.", description)
	require.Equal(t, map[string]any{"description": "Enhanced text."}, tracker.updatedFields)
	require.Equal(t, domain.StyleHumorous, generator.descStyle)
}

func TestRecentActivitiesDefaultsCount(t *testing.T) {
	tracker := &stubTracker{listResult: []strava.Activity{{ID: 1}}}
	agent := newTestAgent(&stubParser{}, &stubGenerator{}, tracker, &recordingPublisher{})

	activities, err := agent.RecentActivities(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	require.Equal(t, 10, tracker.listOpts.PerPage)
}

func stringPtr(s string) *string { return &s }
