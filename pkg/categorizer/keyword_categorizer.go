package categorizer

import (
	"context"

	"inkwell/internal/analysis"
)

// KeywordCategorizer suggests the category and tags the analysis engine
// computes for the body.
type KeywordCategorizer struct {
	analyzer *analysis.Analyzer
}

var _ ContentCategorizer = (*KeywordCategorizer)(nil)

func NewKeywordCategorizer(analyzer *analysis.Analyzer) *KeywordCategorizer {
	if analyzer == nil {
		analyzer = analysis.NewAnalyzer(analysis.AnalyzerDeps{})
	}
	return &KeywordCategorizer{analyzer: analyzer}
}

// Categorize never fails. Confidence is the share of the winning category's
// distinct keywords found in the text, and 0 for Uncategorized.
func (c *KeywordCategorizer) Categorize(_ context.Context, req CategorizationRequest) (CategorizationResult, error) {
	res := c.analyzer.Compute(req.Body, req.Categories)

	result := CategorizationResult{
		SuggestedTags:     res.AutoTags,
		SuggestedCategory: res.SuggestedCategory,
		Source:            "keyword",
	}
	if res.SuggestedCategory == analysis.Uncategorized {
		return result, nil
	}

	for _, score := range c.analyzer.ExplainCategories(req.Body, req.Categories) {
		if score.Name != res.SuggestedCategory {
			continue
		}
		for _, cat := range req.Categories {
			if cat.Name == score.Name {
				if n := len(analysis.NormalizeKeywords(cat.Keywords)); n > 0 {
					result.Confidence = float64(score.Score) / float64(n)
				}
				break
			}
		}
		break
	}
	return result, nil
}
