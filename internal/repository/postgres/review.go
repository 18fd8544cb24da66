package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nikhilarsid/review-service/internal/domain"
	"github.com/nikhilarsid/review-service/pkg/database"
)

const reviewColumns = `id, product_id, variant_id, merchant_id, author_id, author_name,
		rating, comment, created_at, updated_at`

// ReviewRepository implements review persistence using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review. The database assigns id and timestamps.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	query := `
		INSERT INTO reviews (product_id, variant_id, merchant_id, author_id, author_name, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	defer func() { end(err) }()

	err = r.pool.QueryRow(ctx, query,
		review.ProductID,
		review.VariantID,
		review.MerchantID,
		review.AuthorID,
		review.AuthorName,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return domain.StorageFailure("insert review", err)
	}
	return nil
}

// GetByID retrieves a single review. Identifiers that are not UUIDs cannot
// exist and are reported as not found without a query.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ReviewNotFound(id)
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReview", query)

	rv, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		end(nil)
		return nil, domain.ReviewNotFound(id)
	}
	end(err)
	if err != nil {
		return nil, domain.StorageFailure("get review", err)
	}
	return rv, nil
}

// ListByProduct returns every review of productID, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC, id`

	return r.list(ctx, "ListReviewsByProduct", query, productID)
}

// ListByProductAndMerchant returns reviews of productID sold by merchantID,
// newest first.
func (r *ReviewRepository) ListByProductAndMerchant(ctx context.Context, productID, merchantID string) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1 AND merchant_id = $2
		ORDER BY created_at DESC, id`

	return r.list(ctx, "ListReviewsByProductAndMerchant", query, productID, merchantID)
}

// ListByAuthor returns reviews written by authorID, newest first.
func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE author_id = $1
		ORDER BY created_at DESC, id`

	return r.list(ctx, "ListReviewsByAuthor", query, authorID)
}

// Update writes rating and comment. Only those columns are mutable; the
// database refreshes updated_at. Concurrent updates are last-write-wins.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	ctx, end := database.TraceQuery(ctx, "UpdateReview", query)

	err := r.pool.QueryRow(ctx, query, review.ID, review.Rating, review.Comment).Scan(&review.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		end(nil)
		return domain.ReviewNotFound(review.ID)
	}
	end(err)
	if err != nil {
		return domain.StorageFailure("update review", err)
	}
	return nil
}

// Delete removes a review by id.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteReview", query)
	defer func() {
		if errors.Is(err, domain.ErrReviewNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return domain.StorageFailure("delete review", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ReviewNotFound(id)
	}
	return nil
}

func (r *ReviewRepository) list(ctx context.Context, op, query string, args ...any) (reviews []domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageFailure("list reviews", err)
	}
	defer rows.Close()

	reviews = []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, domain.StorageFailure("scan review row", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageFailure("iterate review rows", err)
	}
	return reviews, nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	if err := row.Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.VariantID,
		&rv.MerchantID,
		&rv.AuthorID,
		&rv.AuthorName,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rv, nil
}
