// Package knowledge provides best-effort exercise lookups over a static
// catalog. Every operation degrades to empty results or an unchanged input
// when the index is unavailable; callers never see an error.
package knowledge

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/smallnumbers0/create-activity/internal/domain"
)

// minRelevanceScore drops noise hits the disjunction query still returns.
const minRelevanceScore = 0.05

// Service answers exercise queries against the seeded catalog.
type Service struct {
	index   bleve.Index
	entries []domain.ExerciseEntry
	logger  *log.Logger
}

// NewService builds the in-memory index. When indexing fails the service
// still constructs, permanently degraded to empty results.
func NewService(logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	entries := Catalog()
	index, err := newMemoryIndex(entries)
	if err != nil {
		logger.Printf("exercise knowledge index unavailable, lookups disabled: %v", err)
		index = nil
	}

	return &Service{index: index, entries: entries, logger: logger}
}

// Available reports whether the backing index could be built.
func (s *Service) Available() bool {
	return s.index != nil
}

// Close releases the index.
func (s *Service) Close() {
	if s.index != nil {
		_ = s.index.Close()
	}
}

// Search ranks catalog entries against free text. It returns an empty slice
// when the index is unavailable or nothing clears the relevance threshold.
func (s *Service) Search(ctx context.Context, query string, limit int) []domain.ExerciseMatch {
	if s.index == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	if limit <= 0 {
		limit = 5
	}

	result, err := s.index.SearchInContext(ctx, searchRequest(query, limit))
	if err != nil {
		s.logger.Printf("exercise search failed for %q: %v", query, err)
		return nil
	}

	matches := make([]domain.ExerciseMatch, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if hit.Score < minRelevanceScore {
			continue
		}
		idx, err := strconv.Atoi(hit.ID)
		if err != nil || idx < 0 || idx >= len(s.entries) {
			continue
		}
		matches = append(matches, domain.ExerciseMatch{
			ExerciseEntry: s.entries[idx],
			Score:         hit.Score,
		})
	}
	return matches
}

// SuggestionsFor returns catalog entries whose sport type matches exactly.
func (s *Service) SuggestionsFor(sport domain.SportType) []domain.ExerciseEntry {
	if s.index == nil {
		return nil
	}

	var out []domain.ExerciseEntry
	for _, entry := range s.entries {
		if entry.SportType == sport {
			out = append(out, entry)
		}
	}
	return out
}

// EnhanceContext merges knowledge from the top suggestion for the sport
// type into the parsed context. The merge is non-destructive: existing keys
// win, and the input map is never mutated. With no suggestions the input is
// returned as-is.
func (s *Service) EnhanceContext(sport domain.SportType, ctx domain.Context) domain.Context {
	suggestions := s.SuggestionsFor(sport)
	if len(suggestions) == 0 {
		return ctx
	}
	top := suggestions[0]

	enhanced := ctx.Clone()

	if _, ok := enhanced["keywords"]; !ok && len(top.Keywords) > 0 {
		enhanced["exercise_keywords"] = strings.Join(top.Keywords, ", ")
	}

	if location, ok := enhanced["location"]; ok && location != "" {
		lower := strings.ToLower(location)
		for _, equip := range top.Equipment {
			if equipmentMatchesLocation(equip, lower) {
				enhanced["equipment"] = equip
				break
			}
		}
	}

	if len(top.MuscleGroups) > 0 {
		enhanced["muscle_groups"] = strings.Join(top.MuscleGroups, ", ")
	}

	if _, ok := enhanced["intensity"]; !ok && top.IntensityLevel != "" {
		enhanced["intensity"] = top.IntensityLevel
	}

	return enhanced
}

// equipmentMatchesLocation reports whether any word of the equipment name
// appears in the lowercased location string.
func equipmentMatchesLocation(equipment, location string) bool {
	for _, word := range strings.Fields(strings.ToLower(equipment)) {
		if strings.Contains(location, word) {
			return true
		}
	}
	return false
}
