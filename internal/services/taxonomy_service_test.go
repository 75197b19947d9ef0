package services_test

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/analysis"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/store"
	"inkwell/internal/tests/fakes"
	"inkwell/pkg/categorizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyService_CreateCategory(t *testing.T) {
	svc := services.NewTaxonomyService(fakes.NewStore())
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, services.CreateCategoryParams{
		Name:     " Travel ",
		Keywords: []string{"Flight", " hotel", "flight", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Travel", cat.Name)
	assert.Equal(t, "travel", cat.Slug)
	assert.Equal(t, []string{"flight", "hotel"}, cat.Keywords)

	_, err = svc.CreateCategory(ctx, services.CreateCategoryParams{Name: "travel"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	tests := []struct {
		name   string
		params services.CreateCategoryParams
	}{
		{"blank name", services.CreateCategoryParams{Name: " "}},
		{"reserved name", services.CreateCategoryParams{Name: "uncategorized"}},
		{"phrase keyword", services.CreateCategoryParams{Name: "Food", Keywords: []string{"street food"}}},
		{"punctuated keyword", services.CreateCategoryParams{Name: "Food", Keywords: []string{"a-la-carte"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCategory(ctx, tt.params)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestTaxonomyService_ListReplaceDelete(t *testing.T) {
	svc := services.NewTaxonomyService(fakes.NewStore())
	ctx := context.Background()

	empty, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	second, err := svc.CreateCategory(ctx, services.CreateCategoryParams{Name: "Second", Position: 2})
	require.NoError(t, err)
	first, err := svc.CreateCategory(ctx, services.CreateCategoryParams{Name: "First", Position: 1})
	require.NoError(t, err)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "First", cats[0].Name)

	updated, err := svc.ReplaceKeywords(ctx, second.ID, []string{"Beta", "beta"})
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, updated.Keywords)

	_, err = svc.ReplaceKeywords(ctx, 999, []string{"x"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.DeleteCategory(ctx, first.ID))
	_, err = svc.GetCategory(ctx, first.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, first.ID), store.ErrNotFound)
}

func TestCategorizationService(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	item, err := f.content.CreateContent(ctx, services.CreateContentParams{Title: "t", Body: "Finance news moved the market.", Tags: []string{"news"}})
	require.NoError(t, err)

	svc := services.NewCategorizationService(categorizer.NewKeywordCategorizer(nil), f.tags, f.store, f.store)

	cats, err := svc.CategorizeStoredContent(ctx, item.Content.ID)
	require.NoError(t, err)
	assert.Equal(t, "Business", cats.Category)
	assert.Equal(t, 1.0, cats.Confidence)
	assert.Equal(t, "keyword", cats.Source)

	require.NoError(t, svc.ApplyCategories(ctx, item.Content.ID, &services.ContentWithCategories{
		Category: "Software Development",
		Tags:     []string{"compilers"},
	}, true))
	stored, err := f.content.GetContent(ctx, item.Content.ID)
	require.NoError(t, err)
	assert.Equal(t, "Software Development", stored.Content.Category)
	assert.ElementsMatch(t, []string{"news", "compilers"}, tagNamesOf(stored.Tags))

	require.NoError(t, svc.ApplyCategories(ctx, item.Content.ID, &services.ContentWithCategories{Category: "Business"}, false))
	stored, err = f.content.GetContent(ctx, item.Content.ID)
	require.NoError(t, err)
	assert.Equal(t, "Software Development", stored.Content.Category, "suggestions are not applied without autoApply")

	assert.Error(t, svc.ApplyCategories(ctx, item.Content.ID, nil, true))

	_, err = svc.CategorizeStoredContent(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCategorizationService_BatchCategorize(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	a, err := f.content.CreateContent(ctx, services.CreateContentParams{Title: "a", Body: goPost})
	require.NoError(t, err)
	b, err := f.content.CreateContent(ctx, services.CreateContentParams{Title: "b", Body: "The market."})
	require.NoError(t, err)

	svc := services.NewCategorizationService(categorizer.NewKeywordCategorizer(nil), f.tags, f.store, f.store)
	results, err := svc.BatchCategorize(ctx, []int64{a.Content.ID, b.Content.ID, 999})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Software Development", results[a.Content.ID].Category)
	assert.Equal(t, "Business", results[b.Content.ID].Category)

	f.store.TaxonomyErr = errors.New("down")
	_, err = svc.BatchCategorize(ctx, []int64{a.Content.ID})
	assert.ErrorIs(t, err, analysis.ErrTaxonomyUnavailable)
}

func TestJobService_ListJobs(t *testing.T) {
	st := fakes.NewStore()
	svc := services.NewJobService(st)
	ctx := context.Background()

	jobs, err := svc.ListJobs(ctx, 0, -1)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, st.RecordJobEnqueue(ctx, store.JobRecordParams{
			TaskType:          "content:analyze",
			Status:            models.JobStatusEnqueued,
			RelatedEntityType: models.RelatedEntityContent,
			RelatedEntityID:   i,
		}))
	}
	jobs, err = svc.ListJobs(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.NotNil(t, jobs[0].RelatedEntityID)
	assert.Equal(t, int64(3), *jobs[0].RelatedEntityID, "newest first")
}

func TestTagService_ListTags(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	_, err := f.content.CreateContent(ctx, services.CreateContentParams{Title: "t", Body: goPost, Tags: []string{"zeta", "alpha"}})
	require.NoError(t, err)

	tags, err := f.tags.ListTags(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, tagNamesOf(tags))

	none, err := f.tags.TagContent(ctx, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
