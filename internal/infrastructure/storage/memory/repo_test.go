package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinito/internal/core/apperror"
	"infinito/internal/domain/contribution"
	"infinito/internal/domain/filter"
)

func TestLoadContributions_KeepsDirtyValues(t *testing.T) {
	contribs, err := LoadContributions()
	require.NoError(t, err)
	require.Len(t, contribs, 8)

	byCode := make(map[string]*contribution.Contribution)
	for _, c := range contribs {
		byCode[c.TrackingCode] = c
	}

	// "true" as a string
	assert.True(t, byCode["INF-2024-00002"].Verified.Bool())
	n, ok := byCode["INF-2024-00002"].TotalItems.Get()
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	// unparsable event date is kept, not dropped
	bad := byCode["INF-2024-00003"].EventDate
	assert.False(t, bad.Valid)
	assert.Equal(t, "fecha pendiente", bad.Raw)

	// fractional item count and "n/a" water are present but invalid
	assert.True(t, byCode["INF-2024-00008"].TotalItems.Invalid)
	assert.True(t, byCode["INF-2024-00006"].Water.Invalid)
}

func TestLoadProducts(t *testing.T) {
	products, err := LoadProducts()
	require.NoError(t, err)
	require.Len(t, products, 6)
	assert.NotNil(t, products[0].ContributionID)
	assert.True(t, products[3].Price.Invalid)
}

func TestSeededStore_VerifiedIsCoerced(t *testing.T) {
	ctx := context.Background()
	store, err := NewSeededStore(ctx)
	require.NoError(t, err)

	all, err := store.Contributions.List(ctx)
	require.NoError(t, err)

	res, err := filter.Apply(all, filter.Spec{Verified: filter.Some(true)}, filter.KindContribution)
	require.NoError(t, err)

	var codes []string
	for _, c := range res.Kept {
		codes = append(codes, c.TrackingCode)
	}
	assert.Equal(t, []string{"INF-2024-00001", "INF-2024-00002", "INF-2024-00006", "INF-2024-00007"}, codes)
}

func TestRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewContributionRepo()

	c := contribution.NewContribution("Ana", contribution.TypeClothing)
	c.TrackingCode = "INF-2026-00001"
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	got.DonorName = "changed"

	again, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.DonorName)
}

func TestRepo_OptimisticLocking(t *testing.T) {
	ctx := context.Background()
	repo := NewContributionRepo()

	c := contribution.NewContribution("Ana", contribution.TypeClothing)
	c.TrackingCode = "INF-2026-00001"
	require.NoError(t, repo.Create(ctx, c))

	first, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)

	first.Color = "red"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Color = "blue"
	err = repo.Update(ctx, second)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestRepo_Duplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewContributionRepo()

	a := contribution.NewContribution("Ana", contribution.TypeClothing)
	a.TrackingCode = "INF-2026-00001"
	require.NoError(t, repo.Create(ctx, a))

	b := contribution.NewContribution("Bea", contribution.TypeArt)
	b.TrackingCode = "INF-2026-00001"
	err := repo.Create(ctx, b)
	require.Error(t, err)

	_, err = repo.GetByCode(ctx, "INF-2099-00001")
	assert.True(t, apperror.IsNotFound(err))
}
