package knowledge

import (
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/smallnumbers0/create-activity/internal/domain"
)

// exerciseDocument is the flattened shape indexed in Bleve.
type exerciseDocument struct {
	Name           string   `json:"name"`
	SportType      string   `json:"sport_type"`
	Synonyms       []string `json:"synonyms"`
	Description    string   `json:"description"`
	MuscleGroups   []string `json:"muscle_groups"`
	Equipment      []string `json:"equipment"`
	IntensityLevel string   `json:"intensity_level"`
	LocationTypes  []string `json:"location_types"`
	Keywords       []string `json:"keywords"`
}

func toDocument(entry domain.ExerciseEntry) exerciseDocument {
	return exerciseDocument{
		Name:           entry.Name,
		SportType:      string(entry.SportType),
		Synonyms:       entry.Synonyms,
		Description:    entry.Description,
		MuscleGroups:   entry.MuscleGroups,
		Equipment:      entry.Equipment,
		IntensityLevel: entry.IntensityLevel,
		LocationTypes:  entry.LocationTypes,
		Keywords:       entry.Keywords,
	}
}

// newMemoryIndex builds an in-memory Bleve index seeded with the catalog.
// Document IDs are the catalog positions, so hits map straight back to
// entries.
func newMemoryIndex(entries []domain.ExerciseEntry) (bleve.Index, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	batch := index.NewBatch()
	for i, entry := range entries {
		if err := batch.Index(strconv.Itoa(i), toDocument(entry)); err != nil {
			_ = index.Close()
			return nil, err
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, err
	}
	return index, nil
}

// searchRequest ranks exercises against free text. Name and synonym hits
// outweigh keyword and description hits, approximating the hybrid ranking
// of a dedicated knowledge store.
func searchRequest(text string, limit int) *bleve.SearchRequest {
	fields := []struct {
		name  string
		boost float64
	}{
		{"name", 3.0},
		{"synonyms", 2.5},
		{"keywords", 2.0},
		{"location_types", 1.5},
		{"equipment", 1.0},
		{"description", 1.0},
	}

	queries := make([]query.Query, 0, len(fields))
	for _, f := range fields {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(f.name)
		mq.SetBoost(f.boost)
		queries = append(queries, mq)
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = limit
	return req
}
