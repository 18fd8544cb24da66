package repository

import (
	"context"

	"github.com/nikhilarsid/review-service/internal/domain"
)

// ReviewRepository defines the persistence operations for reviews. Lookups of
// an absent review return an error matching domain.ErrReviewNotFound; every
// other failure matches domain.ErrStorageFailure.
type ReviewRepository interface {
	// Create inserts a review and fills in its ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByProduct returns all reviews of a product, newest first.
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)

	// ListByProductAndMerchant returns reviews matching both the product and
	// the merchant, newest first.
	ListByProductAndMerchant(ctx context.Context, productID, merchantID string) ([]domain.Review, error)

	// ListByAuthor returns the reviews written by authorID, newest first.
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Review, error)

	// Update persists rating and comment and refreshes UpdatedAt.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review permanently.
	Delete(ctx context.Context, id string) error
}

// ReviewCache caches per-product review lists. An empty merchantID stands
// for the unfiltered list.
type ReviewCache interface {
	// Get returns the cached list and true on a hit.
	Get(ctx context.Context, productID, merchantID string) ([]domain.Review, bool, error)

	// Generation returns the product's invalidation counter. Read it before
	// loading the list that will be passed to Set.
	Generation(ctx context.Context, productID string) (int64, error)

	// Set stores a list for the given product and merchant filter unless the
	// product was invalidated after generation was read. It reports whether
	// the list was stored.
	Set(ctx context.Context, productID, merchantID string, generation int64, reviews []domain.Review) (bool, error)

	// Invalidate advances the generation and drops every cached list of the
	// product.
	Invalidate(ctx context.Context, productID string) error
}
