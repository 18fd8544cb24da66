package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilarsid/review-service/internal/domain"
	"github.com/nikhilarsid/review-service/internal/repository"
)

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

func strPtr(s string) *string { return &s }

func TestReviewRepository_CRUD(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	rv := &domain.Review{ProductID: "p1", AuthorID: "u1", AuthorName: "U1", Rating: 5, Comment: "Great"}
	require.NoError(t, repo.Create(ctx, rv))
	assert.NotEmpty(t, rv.ID)
	assert.False(t, rv.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, *rv, *got)

	got.Rating = 3
	got.Comment = "Okay"
	got.ProductID = "ignored"
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Rating)
	assert.Equal(t, "Okay", again.Comment)
	assert.Equal(t, "p1", again.ProductID)
	assert.Equal(t, rv.CreatedAt, again.CreatedAt)
	assert.True(t, again.UpdatedAt.After(again.CreatedAt))

	require.NoError(t, repo.Delete(ctx, rv.ID))
	_, err = repo.GetByID(ctx, rv.ID)
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, rv.ID), domain.ErrReviewNotFound)
}

func TestReviewRepository_ListOrderingAndFilters(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	first := &domain.Review{ProductID: "p1", MerchantID: strPtr("m1"), AuthorID: "u1", Rating: 4, Comment: "a"}
	second := &domain.Review{ProductID: "p1", AuthorID: "u2", Rating: 2, Comment: "b"}
	third := &domain.Review{ProductID: "p1", MerchantID: strPtr("m2"), AuthorID: "u1", Rating: 5, Comment: "c"}
	other := &domain.Review{ProductID: "p2", MerchantID: strPtr("m1"), AuthorID: "u1", Rating: 1, Comment: "d"}
	for _, rv := range []*domain.Review{first, second, third, other} {
		require.NoError(t, repo.Create(ctx, rv))
	}

	all, err := repo.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	m1, err := repo.ListByProductAndMerchant(ctx, "p1", "m1")
	require.NoError(t, err)
	require.Len(t, m1, 1)
	assert.Equal(t, first.ID, m1[0].ID)

	mine, err := repo.ListByAuthor(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	none, err := repo.ListByProduct(ctx, "p-none")
	require.NoError(t, err)
	require.NotNil(t, none)
	assert.Empty(t, none)
}
