package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikhilarsid/review-service/internal/domain"
	"github.com/nikhilarsid/review-service/internal/repository"
	apperrors "github.com/nikhilarsid/review-service/pkg/errors"
)

// ProductChecker verifies that a product (and optionally a variant) exists
// in the catalog. See catalog.Client.
type ProductChecker interface {
	CheckProduct(ctx context.Context, productID, variantID, authorization string) error
}

// EventPublisher publishes review lifecycle events.
type EventPublisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
	PublishReviewUpdated(ctx context.Context, review *domain.Review) error
	PublishReviewDeleted(ctx context.Context, review *domain.Review) error
}

// ReviewInput holds the client-supplied fields of a review. ProductID,
// VariantID and MerchantID are only read on create.
type ReviewInput struct {
	ProductID  string
	VariantID  *string
	MerchantID *string
	Comment    string
	Rating     int
}

// ReviewService orchestrates the review lifecycle: validation, the catalog
// existence check on create, author-only mutation and persistence.
type ReviewService struct {
	repo    repository.ReviewRepository
	catalog ProductChecker
	events  EventPublisher
	cache   repository.ReviewCache
	logger  *slog.Logger
}

// NewReviewService creates a new review service. events and cache may be
// nil; both are best effort and never fail a request the store accepted.
func NewReviewService(
	repo repository.ReviewRepository,
	catalog ProductChecker,
	events EventPublisher,
	cache repository.ReviewCache,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:    repo,
		catalog: catalog,
		events:  events,
		cache:   cache,
		logger:  logger,
	}
}

func validateContent(input *ReviewInput) error {
	if !domain.ValidRating(input.Rating) {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if domain.IsBlank(input.Comment) {
		return apperrors.InvalidInput("comment is required")
	}
	return nil
}

func requireIdentity(identity domain.Identity) error {
	if identity.UserID == "" {
		return apperrors.Unauthorized("authentication required")
	}
	return nil
}

func optional(p *string) *string {
	if p == nil {
		return nil
	}
	return domain.Optional(*p)
}

// CreateReview validates the input, confirms the product exists in the
// catalog and stores a review authored by identity.
func (s *ReviewService) CreateReview(ctx context.Context, identity domain.Identity, input *ReviewInput) (_ *domain.ReviewResponse, err error) {
	defer observe(opCreate, &err)

	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if domain.IsBlank(input.ProductID) {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if err := validateContent(input); err != nil {
		return nil, err
	}

	variantID := optional(input.VariantID)
	var variant string
	if variantID != nil {
		variant = *variantID
	}
	if err := s.catalog.CheckProduct(ctx, input.ProductID, variant, identity.Authorization); err != nil {
		return nil, err
	}

	review := &domain.Review{
		ProductID:  input.ProductID,
		VariantID:  variantID,
		MerchantID: optional(input.MerchantID),
		AuthorID:   identity.UserID,
		AuthorName: identity.DisplayName,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.String("author_id", review.AuthorID),
		slog.Int("rating", review.Rating),
	)

	s.invalidate(ctx, review.ProductID)
	s.publish(ctx, "review.created", review, func() error {
		return s.events.PublishReviewCreated(ctx, review)
	})

	resp := review.ToResponse()
	return &resp, nil
}

// UpdateReview replaces the rating and comment of a review owned by
// identity. The product reference is immutable and the catalog is not
// consulted.
func (s *ReviewService) UpdateReview(ctx context.Context, identity domain.Identity, reviewID string, input *ReviewInput) (_ *domain.ReviewResponse, err error) {
	defer observe(opUpdate, &err)

	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if err := validateContent(input); err != nil {
		return nil, err
	}

	review, err := s.loadOwned(ctx, identity, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = input.Rating
	review.Comment = input.Comment

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	s.invalidate(ctx, review.ProductID)
	s.publish(ctx, "review.updated", review, func() error {
		return s.events.PublishReviewUpdated(ctx, review)
	})

	resp := review.ToResponse()
	return &resp, nil
}

// DeleteReview permanently removes a review owned by identity.
func (s *ReviewService) DeleteReview(ctx context.Context, identity domain.Identity, reviewID string) (_ bool, err error) {
	defer observe(opDelete, &err)

	if err := requireIdentity(identity); err != nil {
		return false, err
	}

	review, err := s.loadOwned(ctx, identity, reviewID)
	if err != nil {
		return false, err
	}

	if err := s.repo.Delete(ctx, review.ID); err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	s.invalidate(ctx, review.ProductID)
	s.publish(ctx, "review.deleted", review, func() error {
		return s.events.PublishReviewDeleted(ctx, review)
	})

	return true, nil
}

// ListReviewsForProduct returns the reviews of a product, newest first. A
// non-blank merchantID restricts the result to that merchant.
func (s *ReviewService) ListReviewsForProduct(ctx context.Context, productID, merchantID string) (_ []domain.ReviewResponse, err error) {
	defer observe(opList, &err)

	if domain.IsBlank(productID) {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	merchantID = strings.TrimSpace(merchantID)

	// The generation is read before the store so a mutation that lands in
	// between makes the later Set a no-op instead of caching a stale list.
	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		cached, hit, cerr := s.cache.Get(ctx, productID, merchantID)
		if cerr != nil {
			s.logger.WarnContext(ctx, "review cache read failed",
				slog.String("product_id", productID),
				slog.String("error", cerr.Error()),
			)
		} else if hit {
			cacheLookups.WithLabelValues("hit").Inc()
			return domain.ToResponses(cached), nil
		}
		cacheLookups.WithLabelValues("miss").Inc()

		generation, cerr = s.cache.Generation(ctx, productID)
		if cerr != nil {
			s.logger.WarnContext(ctx, "review cache generation read failed",
				slog.String("product_id", productID),
				slog.String("error", cerr.Error()),
			)
		} else {
			cacheable = true
		}
	}

	var reviews []domain.Review
	if merchantID != "" {
		reviews, err = s.repo.ListByProductAndMerchant(ctx, productID, merchantID)
	} else {
		reviews, err = s.repo.ListByProduct(ctx, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	if cacheable {
		stored, cerr := s.cache.Set(ctx, productID, merchantID, generation, reviews)
		switch {
		case cerr != nil:
			s.logger.WarnContext(ctx, "review cache write failed",
				slog.String("product_id", productID),
				slog.String("error", cerr.Error()),
			)
		case !stored:
			s.logger.DebugContext(ctx, "review list changed while loading, not cached",
				slog.String("product_id", productID),
			)
		}
	}

	return domain.ToResponses(reviews), nil
}

// ListReviewsByAuthor returns the reviews written by identity, newest first.
func (s *ReviewService) ListReviewsByAuthor(ctx context.Context, identity domain.Identity) (_ []domain.ReviewResponse, err error) {
	defer observe(opListMine, &err)

	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	reviews, err := s.repo.ListByAuthor(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list author reviews: %w", err)
	}
	return domain.ToResponses(reviews), nil
}

// GetReview returns a single review.
func (s *ReviewService) GetReview(ctx context.Context, reviewID string) (_ *domain.ReviewResponse, err error) {
	defer observe(opGet, &err)

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	resp := review.ToResponse()
	return &resp, nil
}

// loadOwned loads a review and checks that identity authored it.
func (s *ReviewService) loadOwned(ctx context.Context, identity domain.Identity, reviewID string) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsAuthoredBy(identity.UserID) {
		s.logger.WarnContext(ctx, "review mutation by non-author rejected",
			slog.String("review_id", review.ID),
			slog.String("user_id", identity.UserID),
		)
		return nil, domain.NotReviewAuthor()
	}
	return review, nil
}

func (s *ReviewService) invalidate(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.WarnContext(ctx, "review cache invalidation failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ReviewService) publish(ctx context.Context, name string, review *domain.Review, fn func() error) {
	if s.events == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("event", name),
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
}
