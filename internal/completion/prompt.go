package completion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smallnumbers0/create-activity/internal/domain"
)

const nameSystemPrompt = `You are a creative fitness enthusiast who creates catchy, memorable names for workout activities.
Create short, engaging activity names that are:
- 2-6 words long
- Creative but not too quirky
- Appropriate for social media
- Reflect the activity type and effort`

const descriptionSystemPrompt = `You are a fitness enthusiast and social media expert who creates engaging activity descriptions.
%s

Guidelines:
- Keep it concise (50-150 words)
- Be authentic and relatable
- Include relevant emojis
- Avoid being overly boastful
- Make it engaging for social media`

var styleInstructions = map[domain.DescriptionStyle]string{
	domain.StyleMotivational: "Create an inspiring and motivational description that celebrates the achievement and encourages continued fitness.",
	domain.StyleCasual:       "Write a relaxed, friendly description as if sharing with friends on social media.",
	domain.StyleTechnical:    "Generate a detailed, data-focused description highlighting performance metrics and technical aspects.",
	domain.StyleHumorous:     "Create a fun, lighthearted description with some humor while still being encouraging.",
}

func styleInstruction(style domain.DescriptionStyle) string {
	if instruction, ok := styleInstructions[style]; ok {
		return instruction
	}
	return styleInstructions[domain.StyleMotivational]
}

// buildActivityContext renders the structured activity facts into the prompt
// body. Context keys are sorted so prompts are stable for a given intent.
func buildActivityContext(sport domain.SportType, durationMinutes float64, distanceKM *float64, activityCtx domain.Context) string {
	parts := []string{
		fmt.Sprintf("Activity type: %s", sport),
		fmt.Sprintf("Duration: %s", formatDuration(durationMinutes)),
	}
	if distanceKM != nil && *distanceKM > 0 {
		parts = append(parts, fmt.Sprintf("Distance: %.2f km", *distanceKM))
	}

	keys := make([]string, 0, len(activityCtx))
	for key, value := range activityCtx {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ReplaceAll(key, "_", " "), activityCtx[key]))
	}

	return strings.Join(parts, "\n")
}

func formatDuration(minutes float64) string {
	whole := int(minutes)
	if whole >= 60 {
		return fmt.Sprintf("%dh %dm", whole/60, whole%60)
	}
	return fmt.Sprintf("%d minutes", whole)
}

// FallbackName is the deterministic name used when generation fails.
func FallbackName(sport domain.SportType) string {
	return fmt.Sprintf("%s Session", sport)
}

// FallbackDescription is the deterministic description used when generation
// fails. It embeds the sport type and duration so the record still carries
// the essentials.
func FallbackDescription(sport domain.SportType, durationMinutes float64) string {
	return fmt.Sprintf("Great %s session! 💪 Completed %d minutes of solid training.",
		strings.ToLower(string(sport)), int(durationMinutes))
}
