package analysis

import (
	"inkwell/internal/models"
)

// Uncategorized is returned when no category matches.
const Uncategorized = "Uncategorized"

// CategoryScore is the number of distinct keywords of a category found in a text.
type CategoryScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ScoreCategories scores every named category in the order given. A keyword
// counts once however often it appears.
func ScoreCategories(text string, categories []models.Category) []CategoryScore {
	present := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		present[tok] = struct{}{}
	}

	scores := make([]CategoryScore, 0, len(categories))
	for _, cat := range categories {
		if cat.Name == "" {
			continue
		}
		seen := make(map[string]struct{}, len(cat.Keywords))
		score := 0
		for _, kw := range cat.Keywords {
			kw = normalizeKeyword(kw)
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			if _, ok := present[kw]; ok {
				score++
			}
		}
		scores = append(scores, CategoryScore{Name: cat.Name, Score: score})
	}
	return scores
}

// Classify picks the category with the highest score. An equal score later in
// the list does not displace an earlier one; zero everywhere yields Uncategorized.
func Classify(text string, categories []models.Category) string {
	best, bestScore := Uncategorized, 0
	for _, s := range ScoreCategories(text, categories) {
		if s.Score > bestScore {
			best, bestScore = s.Name, s.Score
		}
	}
	return best
}
