package domain

import (
	"strings"
	"time"
)

// MaxCommentLength is the storage limit for a review comment.
const MaxCommentLength = 1000

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a persisted product review. ProductID and AuthorID never change
// after creation; AuthorName is a snapshot taken at creation time.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	VariantID  *string   `json:"variant_id"`
	MerchantID *string   `json:"merchant_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsAuthoredBy reports whether userID created the review.
func (r *Review) IsAuthoredBy(userID string) bool {
	return r.AuthorID == userID
}

// ReviewResponse is the client-facing projection of a Review.
type ReviewResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	VariantID  *string   `json:"variant_id"`
	MerchantID *string   `json:"merchant_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToResponse maps the review to its response form.
func (r *Review) ToResponse() ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		ProductID:  r.ProductID,
		VariantID:  r.VariantID,
		MerchantID: r.MerchantID,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// ToResponses maps a slice of reviews. The result is never nil.
func ToResponses(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, reviews[i].ToResponse())
	}
	return out
}

// Identity is the authenticated caller. Authorization is the raw inbound
// credential, forwarded unchanged to the product catalog.
type Identity struct {
	UserID        string
	DisplayName   string
	Authorization string
}

// ValidRating reports whether rating is within [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Optional returns nil for a blank string and a pointer to the trimmed s
// otherwise, so stored identifiers match trimmed query filters.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
