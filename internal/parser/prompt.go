package parser

import (
	"fmt"
	"strings"

	"github.com/smallnumbers0/create-activity/internal/domain"
)

// parserSystemPrompt instructs the model to answer with nothing but a JSON
// object matching the intent schema. The two examples anchor field semantics.
const parserSystemPrompt = `You are an expert fitness activity parser. Parse the user's natural language description and extract structured activity data with rich context.

CRITICAL: You MUST return ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or code blocks. Just pure JSON.

Return this exact JSON structure:
{
    "sport_type": "one of: Run, Ride, Swim, Hike, Walk, WeightTraining, Yoga, CrossCountrySkiing, Rowing, Elliptical",
    "duration_minutes": number (required),
    "distance_km": number or null (optional),
    "name": null,
    "description_style": "one of: motivational, casual, technical, humorous",
    "confidence": number between 0-1,
    "context": {
        "location": "string or null",
        "time_of_day": "string or null",
        "weather": "string or null",
        "feeling": "string or null",
        "companions": "string or null",
        "intensity": "string or null",
        "equipment": "string or null",
        "goals": "string or null",
        "achievements": "string or null",
        "challenges": "string or null",
        "route": "string or null",
        "music": "string or null",
        "nutrition": "string or null",
        "recovery": "string or null",
        "highlights": "string or null"
    }
}

Examples:
"I went for a 30 minute run this morning in the park, felt great!"
{"sport_type": "Run", "duration_minutes": 30, "distance_km": null, "name": null, "description_style": "casual", "confidence": 0.9, "context": {"location": "park", "time_of_day": "morning", "feeling": "felt great", "route": "park", "companions": "alone"}}

"Did a tough 5k bike ride for 25 minutes, windy but pushed through!"
{"sport_type": "Ride", "duration_minutes": 25, "distance_km": 5, "name": null, "description_style": "motivational", "confidence": 0.95, "context": {"intensity": "tough", "weather": "windy", "challenges": "windy conditions", "achievements": "pushed through despite wind"}}

Return ONLY the JSON object for this prompt:`

// knowledgeContextBlock summarizes the best catalog match so the model can
// lean on it for sport-type classification.
func knowledgeContextBlock(matches []domain.ExerciseMatch) string {
	if len(matches) == 0 {
		return ""
	}
	top := matches[0]

	var b strings.Builder
	b.WriteString("\n\nKnowledge base context for this prompt:\n")
	fmt.Fprintf(&b, "- Best matching exercise: %s (sport type %s)\n", top.Name, top.SportType)
	if len(top.Keywords) > 0 {
		fmt.Fprintf(&b, "- Related keywords: %s\n", strings.Join(top.Keywords, ", "))
	}
	if len(top.Equipment) > 0 {
		fmt.Fprintf(&b, "- Typical equipment: %s\n", strings.Join(top.Equipment, ", "))
	}
	if len(top.LocationTypes) > 0 {
		fmt.Fprintf(&b, "- Typical locations: %s\n", strings.Join(top.LocationTypes, ", "))
	}
	return b.String()
}

// stripCodeFence removes a Markdown code fence wrapper when the model adds
// one despite the instructions.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
