package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *TaxonomyStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "taxonomy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTaxonomyStore_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := &models.Category{Name: "Home & Garden", Keywords: []string{"garden", "soil"}}
	require.NoError(t, s.CreateCategory(ctx, c))
	assert.NotZero(t, c.ID)
	assert.Equal(t, "home-garden", c.Slug)

	got, err := s.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home & Garden", got.Name)
	assert.Equal(t, []string{"garden", "soil"}, got.Keywords)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestTaxonomyStore_ListAllOrdering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCategory(ctx, &models.Category{Name: "Third", Position: 2}))
	require.NoError(t, s.CreateCategory(ctx, &models.Category{Name: "First", Position: 0}))
	require.NoError(t, s.CreateCategory(ctx, &models.Category{Name: "Second", Position: 0}))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "First", all[0].Name)
	assert.Equal(t, "Second", all[1].Name)
	assert.Equal(t, "Third", all[2].Name)
	assert.NotNil(t, all[0].Keywords)
}

func TestTaxonomyStore_ListAllEmpty(t *testing.T) {
	s := setupTestStore(t)
	all, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTaxonomyStore_Duplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCategory(ctx, &models.Category{Name: "Animals"}))
	err := s.CreateCategory(ctx, &models.Category{Name: "Animals"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestTaxonomyStore_UpdateAndDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := &models.Category{Name: "Animals", Keywords: []string{"dog"}}
	require.NoError(t, s.CreateCategory(ctx, c))

	require.NoError(t, s.UpdateCategoryKeywords(ctx, c.ID, []string{"cat", "bird"}))
	got, err := s.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "bird"}, got.Keywords)

	require.NoError(t, s.DeleteCategory(ctx, c.ID))
	_, err = s.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteCategory(ctx, c.ID), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateCategoryKeywords(ctx, 999, nil), store.ErrNotFound)
}

func TestTaxonomyStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateCategory(ctx, &models.Category{Name: "Animals"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Animals", all[0].Name)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
