package categorizer

import (
	"context"
	"errors"

	"inkwell/internal/models"
)

// ErrUnknownCategory is returned when a suggestion names no category of the taxonomy.
var ErrUnknownCategory = errors.New("categorizer: suggested category is not in the taxonomy")

// CategorizationRequest holds text + optional context
type CategorizationRequest struct {
	Title        string
	Body         string
	ExistingTags []string
	Categories   []models.Category // taxonomy snapshot the suggestion must come from
}

// CategorizationResult holds suggested categories
type CategorizationResult struct {
	SuggestedTags     []string `json:"suggested_tags"`
	SuggestedCategory string   `json:"suggested_category"`
	Confidence        float64  `json:"confidence"`
	Source            string   `json:"source"` // "keyword", "openai" or "gemini"
}

// ContentCategorizer categorizes content
type ContentCategorizer interface {
	Categorize(ctx context.Context, req CategorizationRequest) (CategorizationResult, error)
}
