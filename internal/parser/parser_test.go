package parser

import (
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smallnumbers0/create-activity/internal/completion"
	"github.com/smallnumbers0/create-activity/internal/domain"
)

type stubCompletions struct {
	content        string
	err            error
	capturedSystem string
	capturedUser   string
	calls          int
}

func (s *stubCompletions) Complete(ctx context.Context, system, user string, opts completion.Options) (string, error) {
	s.capturedSystem = system
	s.capturedUser = user
	s.calls++
	return s.content, s.err
}

type stubKnowledge struct {
	matches  []domain.ExerciseMatch
	enhanced domain.Context
}

func (s *stubKnowledge) Search(ctx context.Context, query string, limit int) []domain.ExerciseMatch {
	return s.matches
}

func (s *stubKnowledge) EnhanceContext(sport domain.SportType, ctx domain.Context) domain.Context {
	if s.enhanced == nil {
		return ctx
	}
	merged := ctx.Clone()
	for k, v := range s.enhanced {
		merged[k] = v
	}
	return merged
}

type logWriter struct{ t *testing.T }

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(logWriter{t}, "", 0)
}

func rowingMatch() []domain.ExerciseMatch {
	return []domain.ExerciseMatch{{
		ExerciseEntry: domain.ExerciseEntry{
			Name:      "Rowing",
			SportType: domain.SportRowing,
			Keywords:  []string{"stroke", "catch"},
			Equipment: []string{"rowing machine"},
		},
		Score: 1.8,
	}}
}

func TestFallbackParsesMinutes(t *testing.T) {
	p := New(nil, nil, testLogger(t))

	intent, err := p.Parse(context.Background(), "I went for a 30 minute run this morning in the park, felt great!")
	require.NoError(t, err)

	require.Equal(t, domain.SportRun, intent.SportType)
	require.Equal(t, 30.0, intent.DurationMinutes)
	require.Nil(t, intent.DistanceKM)
	require.Equal(t, domain.StyleCasual, intent.Style)
	require.Equal(t, FallbackConfidence, intent.Confidence)
	require.Equal(t, "morning", intent.Context["time_of_day"])
	require.Equal(t, "outdoor", intent.Context["location"])
	require.Equal(t, "great", intent.Context["feeling"])
}

func TestFallbackConvertsHours(t *testing.T) {
	p := New(nil, nil, testLogger(t))

	intent, err := p.Parse(context.Background(), "2 hour hike on the trail")
	require.NoError(t, err)
	require.Equal(t, 120.0, intent.DurationMinutes)
	require.Equal(t, domain.SportHike, intent.SportType)
}

func TestFallbackConvertsMiles(t *testing.T) {
	p := New(nil, nil, testLogger(t))

	intent, err := p.Parse(context.Background(), "ran 1 mile in 10 minutes")
	require.NoError(t, err)
	require.NotNil(t, intent.DistanceKM)
	require.InDelta(t, 1.609, *intent.DistanceKM, 0.0001)
}

func TestFallbackMissingDurationIsError(t *testing.T) {
	p := New(nil, nil, testLogger(t))

	_, err := p.Parse(context.Background(), "did some lifting at the gym")
	require.ErrorIs(t, err, domain.ErrMissingDuration)
}

func TestFallbackKeywordOrder(t *testing.T) {
	p := New(nil, nil, testLogger(t))

	cases := map[string]domain.SportType{
		"rode my bike for 45 minutes":           domain.SportRide,
		"45 min in the pool":                    domain.SportSwim,
		"evening walk for 20 minutes":           domain.SportWalk,
		"30 minutes of stretching":              domain.SportYoga,
		"1 hour of strength work":               domain.SportWeightTraining,
		"20 min rowing session":                 domain.SportRowing,
		"90 minute ski tour":                    domain.SportCrossCountrySkiing,
		"25 minutes on the elliptical":          domain.SportElliptical,
		"easy 15 minute session before dinner":  domain.SportRun,
	}
	for prompt, want := range cases {
		intent, err := p.Parse(context.Background(), prompt)
		require.NoError(t, err, prompt)
		require.Equal(t, want, intent.SportType, prompt)
	}
}

func TestFallbackPrefersKnowledgeMatchSportType(t *testing.T) {
	knowledge := &stubKnowledge{matches: rowingMatch()}
	p := New(nil, knowledge, testLogger(t))

	// Keyword scan alone would classify this as a Ride.
	intent, err := p.Parse(context.Background(), "rode the erg for 20 minutes")
	require.NoError(t, err)
	require.Equal(t, domain.SportRowing, intent.SportType)

	require.NotNil(t, intent.Knowledge)
	require.Equal(t, "Rowing", intent.Knowledge.MatchedExercise)
	require.Equal(t, 1.8, intent.Knowledge.MatchScore)
	require.Equal(t, []string{"stroke", "catch"}, intent.Knowledge.Keywords)
}

func TestModelParseSuccess(t *testing.T) {
	completions := &stubCompletions{content: `{
		"sport_type": "Ride",
		"duration_minutes": 25,
		"distance_km": 5,
		"name": null,
		"description_style": "motivational",
		"confidence": 0.95,
		"context": {"weather": "windy", "intensity": "tough", "music": ""}
	}`}
	p := New(completions, nil, testLogger(t))

	intent, err := p.Parse(context.Background(), "Did a tough 5k bike ride for 25 minutes, windy but pushed through!")
	require.NoError(t, err)

	require.Equal(t, domain.SportRide, intent.SportType)
	require.Equal(t, 25.0, intent.DurationMinutes)
	require.NotNil(t, intent.DistanceKM)
	require.Equal(t, 5.0, *intent.DistanceKM)
	require.Nil(t, intent.Name)
	require.Equal(t, domain.StyleMotivational, intent.Style)
	require.Equal(t, 0.95, intent.Confidence)
	require.Equal(t, "windy", intent.Context["weather"])
	require.NotContains(t, intent.Context, "music")
}

func TestModelParseStripsCodeFence(t *testing.T) {
	completions := &stubCompletions{content: "```json\n{\"sport_type\": \"Run\", \"duration_minutes\": 30}\n```"}
	p := New(completions, nil, testLogger(t))

	intent, err := p.Parse(context.Background(), "30 minute run")
	require.NoError(t, err)
	require.Equal(t, domain.SportRun, intent.SportType)
	// Defaults when the model omits optional fields.
	require.Equal(t, domain.StyleCasual, intent.Style)
	require.Equal(t, 0.5, intent.Confidence)
	require.NotNil(t, intent.Context)
}

func TestModelErrorFallsBack(t *testing.T) {
	completions := &stubCompletions{err: errors.New("upstream timeout")}
	p := New(completions, nil, testLogger(t))

	intent, err := p.Parse(context.Background(), "quick 20 minute swim")
	require.NoError(t, err)
	require.Equal(t, domain.SportSwim, intent.SportType)
	require.Equal(t, FallbackConfidence, intent.Confidence)
}

func TestModelGarbageFallsBack(t *testing.T) {
	completions := &stubCompletions{content: "Sure! Here's your workout summary: it was great."}
	p := New(completions, nil, testLogger(t))

	intent, err := p.Parse(context.Background(), "quick 20 minute swim")
	require.NoError(t, err)
	require.Equal(t, FallbackConfidence, intent.Confidence)
}

func TestModelMissingDurationFallsBack(t *testing.T) {
	completions := &stubCompletions{content: `{"sport_type": "Run", "duration_minutes": 0}`}
	p := New(completions, nil, testLogger(t))

	intent, err := p.Parse(context.Background(), "ran for 45 minutes")
	require.NoError(t, err)
	require.Equal(t, 45.0, intent.DurationMinutes)
	require.Equal(t, FallbackConfidence, intent.Confidence)
}

func TestModelUnknownSportTypeFallsBack(t *testing.T) {
	completions := &stubCompletions{content: `{"sport_type": "Parkour", "duration_minutes": 15}`}
	p := New(completions, nil, testLogger(t))

	intent, err := p.Parse(context.Background(), "15 minutes of something")
	require.NoError(t, err)
	require.Equal(t, domain.SportRun, intent.SportType)
	require.Equal(t, FallbackConfidence, intent.Confidence)
}

func TestKnowledgeContextInSystemPrompt(t *testing.T) {
	completions := &stubCompletions{content: `{"sport_type": "Rowing", "duration_minutes": 20}`}
	knowledge := &stubKnowledge{matches: rowingMatch(), enhanced: domain.Context{"muscle_groups": "full body"}}
	p := New(completions, knowledge, testLogger(t))

	intent, err := p.Parse(context.Background(), "20 minutes on the erg")
	require.NoError(t, err)

	require.Contains(t, completions.capturedSystem, "Best matching exercise: Rowing")
	require.Contains(t, completions.capturedSystem, "rowing machine")
	require.Equal(t, "20 minutes on the erg", completions.capturedUser)
	require.Equal(t, "full body", intent.Context["muscle_groups"])
	require.NotNil(t, intent.Knowledge)
}
