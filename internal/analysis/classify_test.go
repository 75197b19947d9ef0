package analysis

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
)

func cat(name string, keywords ...string) models.Category {
	return models.Category{Name: name, Keywords: keywords}
}

func TestClassify(t *testing.T) {
	foxText := "The quick brown fox jumps over the lazy dog. The fox runs fast."

	testCases := []struct {
		name       string
		text       string
		categories []models.Category
		expected   string
	}{
		{
			name:       "higher score wins",
			text:       foxText,
			categories: []models.Category{cat("Animals", "fox", "dog"), cat("Sports", "runs")},
			expected:   "Animals",
		},
		{
			name:       "equal score keeps the earlier category",
			text:       "cats and football",
			categories: []models.Category{cat("Pets", "cats"), cat("Sports", "football")},
			expected:   "Pets",
		},
		{
			name:       "later strictly higher score wins",
			text:       "cats and football and goals",
			categories: []models.Category{cat("Pets", "cats"), cat("Sports", "football", "goals")},
			expected:   "Sports",
		},
		{
			name:       "presence not frequency",
			text:       "cats cats cats cats cats cats football goals",
			categories: []models.Category{cat("Pets", "cats"), cat("Sports", "football", "goals")},
			expected:   "Sports",
		},
		{
			name:       "no match",
			text:       foxText,
			categories: []models.Category{cat("Finance", "stocks", "bonds")},
			expected:   Uncategorized,
		},
		{
			name:       "empty taxonomy",
			text:       foxText,
			categories: nil,
			expected:   Uncategorized,
		},
		{
			name:       "empty text",
			text:       "",
			categories: []models.Category{cat("Animals", "fox")},
			expected:   Uncategorized,
		},
		{
			name:       "text is lowercased before matching",
			text:       "FOX and DOG",
			categories: []models.Category{cat("Animals", "fox", "dog")},
			expected:   "Animals",
		},
		{
			name:       "keyword must be a whole token",
			text:       "foxes everywhere",
			categories: []models.Category{cat("Animals", "fox")},
			expected:   Uncategorized,
		},
		{
			name:       "unnamed categories are ignored",
			text:       "fox",
			categories: []models.Category{cat("", "fox")},
			expected:   Uncategorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.text, tc.categories))
		})
	}
}

func TestScoreCategories_DuplicateKeywordsCountOnce(t *testing.T) {
	scores := ScoreCategories("fox fox dog", []models.Category{
		cat("Animals", "fox", "FOX", " fox ", "dog"),
		cat("Sports", "runs"),
	})
	assert.Equal(t, []CategoryScore{{Name: "Animals", Score: 2}, {Name: "Sports", Score: 0}}, scores)
}

func TestClassify_Deterministic(t *testing.T) {
	cats := []models.Category{cat("A", "x", "y"), cat("B", "y", "z"), cat("C", "x", "z")}
	for i := 0; i < 20; i++ {
		assert.Equal(t, "A", Classify("x y z", cats))
	}
}

func TestNormalizeKeywords(t *testing.T) {
	got := NormalizeKeywords([]string{" Fox", "fox", "", "DOG ", "Ｆｏｘ", "  "})
	assert.Equal(t, []string{"fox", "dog"}, got)
	assert.NotNil(t, NormalizeKeywords(nil))
}

func TestIsSingleToken(t *testing.T) {
	assert.True(t, IsSingleToken("Fox"))
	assert.True(t, IsSingleToken(" snake_case "))
	assert.False(t, IsSingleToken("machine learning"))
	assert.False(t, IsSingleToken("e-mail"))
	assert.False(t, IsSingleToken(""))
}
