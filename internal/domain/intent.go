package domain

// DescriptionStyle selects the tone for generated activity text.
type DescriptionStyle string

const (
	StyleMotivational DescriptionStyle = "motivational"
	StyleCasual       DescriptionStyle = "casual"
	StyleTechnical    DescriptionStyle = "technical"
	StyleHumorous     DescriptionStyle = "humorous"
)

// StyleOrDefault normalizes a style string, falling back to casual for
// anything outside the known set.
func StyleOrDefault(value string) DescriptionStyle {
	switch DescriptionStyle(value) {
	case StyleMotivational, StyleCasual, StyleTechnical, StyleHumorous:
		return DescriptionStyle(value)
	}
	return StyleCasual
}

// Context carries free-form semantic keys extracted from a prompt
// (location, time_of_day, feeling, ...). Values are short strings.
type Context map[string]string

// Clone returns an independent copy so enrichment never mutates the input.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ExerciseKnowledge records the knowledge-base match attached to an intent.
type ExerciseKnowledge struct {
	MatchedExercise string   `json:"matched_exercise"`
	MatchScore      float64  `json:"match_score"`
	Keywords        []string `json:"suggested_keywords,omitempty"`
}

// ActivityIntent is the structured interpretation of a free-text prompt.
// DurationMinutes is always > 0 on a successful parse.
type ActivityIntent struct {
	SportType       SportType          `json:"sport_type"`
	DurationMinutes float64            `json:"duration_minutes"`
	DistanceKM      *float64           `json:"distance_km,omitempty"`
	Name            *string            `json:"name,omitempty"`
	Style           DescriptionStyle   `json:"description_style"`
	Confidence      float64            `json:"confidence"`
	Context         Context            `json:"context"`
	Knowledge       *ExerciseKnowledge `json:"exercise_knowledge,omitempty"`
}

// ExerciseEntry is one record in the static exercise catalog. Entries are
// immutable reference data loaded once at startup.
type ExerciseEntry struct {
	Name           string    `json:"name"`
	SportType      SportType `json:"sport_type"`
	Synonyms       []string  `json:"synonyms"`
	Description    string    `json:"description"`
	MuscleGroups   []string  `json:"muscle_groups"`
	Equipment      []string  `json:"equipment"`
	IntensityLevel string    `json:"intensity_level"`
	LocationTypes  []string  `json:"location_types"`
	Keywords       []string  `json:"keywords"`
}

// ExerciseMatch pairs a catalog entry with its search relevance score.
type ExerciseMatch struct {
	ExerciseEntry
	Score float64 `json:"score"`
}
