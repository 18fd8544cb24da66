package domain

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/nikhilarsid/review-service/pkg/errors"
)

// Sentinel errors for the review domain. Callers match them with errors.Is.
var (
	ErrReviewNotFound     = errors.New("review not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("product catalog unavailable")
	ErrNotReviewAuthor    = errors.New("caller is not the review author")
	ErrStorageFailure     = errors.New("review storage failure")
)

// ReviewNotFound returns a 404 for the review id.
func ReviewNotFound(id string) *apperrors.AppError {
	return apperrors.New("REVIEW_NOT_FOUND",
		fmt.Sprintf("review with id %s not found", id),
		http.StatusNotFound, ErrReviewNotFound)
}

// ProductNotFound returns a 404 for a product the catalog does not know.
func ProductNotFound(productID string) *apperrors.AppError {
	return apperrors.New("PRODUCT_NOT_FOUND",
		fmt.Sprintf("product with id %s not found", productID),
		http.StatusNotFound, ErrProductNotFound)
}

// CatalogUnavailable returns a 503 matching both ErrCatalogUnavailable and
// apperrors.ErrServiceUnavail. cause stays reachable through errors.Is and
// errors.As.
func CatalogUnavailable(cause error) *apperrors.AppError {
	appErr := apperrors.ServiceUnavailable("product catalog is unavailable, try again later")
	appErr.Code = "DEPENDENCY_UNAVAILABLE"
	appErr.Err = fmt.Errorf("%w: %w", ErrCatalogUnavailable, appErr.Err)
	if cause != nil {
		appErr.Err = fmt.Errorf("%w: %w", appErr.Err, cause)
	}
	return appErr
}

// NotReviewAuthor returns a 403 for a mutation by someone other than the author.
func NotReviewAuthor() *apperrors.AppError {
	return apperrors.New("FORBIDDEN",
		"only the author can modify this review",
		http.StatusForbidden, ErrNotReviewAuthor)
}

// StorageFailure wraps a store error so it matches ErrStorageFailure.
func StorageFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}
