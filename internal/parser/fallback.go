package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/smallnumbers0/create-activity/internal/domain"
	"github.com/smallnumbers0/create-activity/internal/observability"
)

// FallbackConfidence marks deterministic parses as the least-trusted path.
// It sits exactly on the acceptance boundary, so fallback results are
// accepted but nothing scored lower is.
const FallbackConfidence = 0.3

const milesToKM = 1.609

var (
	durationPattern = regexp.MustCompile(`(\d+)\s*(minute|min|hr|hour)`)
	distancePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(km|k|mile)`)
)

// sportKeywords is scanned in order; the first category with any keyword
// present in the prompt wins.
var sportKeywords = []struct {
	sport domain.SportType
	words []string
}{
	{domain.SportRide, []string{"bike", "cycling", "cycle", "rode"}},
	{domain.SportSwim, []string{"swim", "pool"}},
	{domain.SportHike, []string{"hike", "trail"}},
	{domain.SportWalk, []string{"walk"}},
	{domain.SportYoga, []string{"yoga", "stretching"}},
	{domain.SportWeightTraining, []string{"weight", "lifting", "gym", "strength"}},
	{domain.SportRowing, []string{"rowing", "row"}},
	{domain.SportCrossCountrySkiing, []string{"ski"}},
	{domain.SportElliptical, []string{"elliptical"}},
}

// parseFallback extracts an intent without the model. Duration is the only
// hard requirement; everything else degrades to defaults.
func (p *Parser) parseFallback(prompt string, matches []domain.ExerciseMatch) (domain.ActivityIntent, error) {
	lower := strings.ToLower(prompt)

	duration, ok := extractDuration(lower)
	if !ok {
		observability.RecordParse("fallback", "error")
		return domain.ActivityIntent{}, domain.ErrMissingDuration
	}

	intent := domain.ActivityIntent{
		SportType:       fallbackSportType(lower, matches),
		DurationMinutes: duration,
		DistanceKM:      extractDistance(lower),
		Style:           domain.StyleCasual,
		Confidence:      FallbackConfidence,
		Context:         extractContext(lower),
	}

	p.enrich(&intent, matches)
	observability.RecordParse("fallback", "success")
	return intent, nil
}

// extractDuration finds the first "<N> minute/min/hr/hour" token. Hour
// units multiply by 60.
func extractDuration(lower string) (float64, bool) {
	m := durationPattern.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	value, err := strconv.Atoi(m[1])
	if err != nil || value <= 0 {
		return 0, false
	}
	if strings.HasPrefix(m[2], "h") {
		value *= 60
	}
	return float64(value), true
}

// extractDistance finds the first "<N> km/k/mile" token, converting miles.
func extractDistance(lower string) *float64 {
	m := distancePattern.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	if m[2] == "mile" {
		value *= milesToKM
	}
	return &value
}

// fallbackSportType prefers the top knowledge match, then the ordered
// keyword scan, then Run.
func fallbackSportType(lower string, matches []domain.ExerciseMatch) domain.SportType {
	if len(matches) > 0 && matches[0].SportType.Valid() {
		return matches[0].SportType
	}
	for _, entry := range sportKeywords {
		if containsAny(lower, entry.words) {
			return entry.sport
		}
	}
	return domain.SportRun
}

// extractContext scans for coarse context signals.
func extractContext(lower string) domain.Context {
	ctx := domain.Context{}

	switch {
	case containsAny(lower, []string{"morning", "am"}):
		ctx["time_of_day"] = "morning"
	case containsAny(lower, []string{"evening", "night", "pm"}):
		ctx["time_of_day"] = "evening"
	case strings.Contains(lower, "afternoon"):
		ctx["time_of_day"] = "afternoon"
	}

	switch {
	case containsAny(lower, []string{"park", "outdoor", "outside"}):
		ctx["location"] = "outdoor"
	case containsAny(lower, []string{"gym", "indoor"}):
		ctx["location"] = "gym"
	}

	switch {
	case containsAny(lower, []string{"great", "amazing", "awesome", "fantastic"}):
		ctx["feeling"] = "great"
	case containsAny(lower, []string{"tough", "hard", "difficult", "challenging"}):
		ctx["feeling"] = "challenging"
	}

	switch {
	case containsAny(lower, []string{"rain", "rainy", "wet"}):
		ctx["weather"] = "rainy"
	case containsAny(lower, []string{"cold", "freezing"}):
		ctx["weather"] = "cold"
	case containsAny(lower, []string{"hot", "sunny", "warm"}):
		ctx["weather"] = "sunny"
	}

	if containsAny(lower, []string{"first time", "first", "new"}) {
		ctx["achievements"] = "first time"
	}

	return ctx
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
