package completion

import (
	"context"

	"github.com/smallnumbers0/create-activity/internal/domain"
)

// FallbackGenerator produces deterministic names and descriptions without
// a model backend, used when no API key is configured.
type FallbackGenerator struct{}

// GenerateActivityName returns the deterministic fallback name.
func (FallbackGenerator) GenerateActivityName(ctx context.Context, sport domain.SportType, durationMinutes float64, distanceKM *float64, activityCtx domain.Context) string {
	return FallbackName(sport)
}

// GenerateActivityDescription returns the deterministic fallback description.
func (FallbackGenerator) GenerateActivityDescription(ctx context.Context, sport domain.SportType, durationMinutes float64, distanceKM *float64, style domain.DescriptionStyle, activityCtx domain.Context) string {
	return FallbackDescription(sport, durationMinutes)
}
