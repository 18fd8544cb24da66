// Package memory provides an in-process ReviewRepository for tests and
// local tooling.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilarsid/review-service/internal/domain"
)

// ReviewRepository stores reviews in a map. Timestamps are strictly
// increasing so that newest-first ordering is deterministic.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]domain.Review
	last    time.Time
	now     func() time.Time
}

// NewReviewRepository creates an empty repository.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		reviews: make(map[string]domain.Review),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *ReviewRepository) tick() time.Time {
	t := r.now()
	if !t.After(r.last) {
		t = r.last.Add(time.Microsecond)
	}
	r.last = t
	return t
}

// Create stores a copy of review and assigns ID and timestamps.
func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.tick()
	review.ID = uuid.NewString()
	review.CreatedAt = now
	review.UpdatedAt = now
	r.reviews[review.ID] = *review
	return nil
}

// GetByID returns a copy of the stored review.
func (r *ReviewRepository) GetByID(_ context.Context, id string) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rv, ok := r.reviews[id]
	if !ok {
		return nil, domain.ReviewNotFound(id)
	}
	return &rv, nil
}

// ListByProduct returns reviews of productID, newest first.
func (r *ReviewRepository) ListByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	return r.filter(func(rv domain.Review) bool {
		return rv.ProductID == productID
	}), nil
}

// ListByProductAndMerchant returns reviews of productID sold by merchantID.
func (r *ReviewRepository) ListByProductAndMerchant(_ context.Context, productID, merchantID string) ([]domain.Review, error) {
	return r.filter(func(rv domain.Review) bool {
		return rv.ProductID == productID && rv.MerchantID != nil && *rv.MerchantID == merchantID
	}), nil
}

// ListByAuthor returns reviews written by authorID, newest first.
func (r *ReviewRepository) ListByAuthor(_ context.Context, authorID string) ([]domain.Review, error) {
	return r.filter(func(rv domain.Review) bool {
		return rv.AuthorID == authorID
	}), nil
}

// Update writes rating and comment of an existing review.
func (r *ReviewRepository) Update(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reviews[review.ID]
	if !ok {
		return domain.ReviewNotFound(review.ID)
	}
	stored.Rating = review.Rating
	stored.Comment = review.Comment
	stored.UpdatedAt = r.tick()
	r.reviews[review.ID] = stored
	review.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return domain.ReviewNotFound(id)
	}
	delete(r.reviews, id)
	return nil
}

func (r *ReviewRepository) filter(keep func(domain.Review) bool) []domain.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Review{}
	for _, rv := range r.reviews {
		if keep(rv) {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
