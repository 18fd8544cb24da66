package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikhilarsid/review-service/internal/domain"
	pkgkafka "github.com/nikhilarsid/review-service/pkg/kafka"
	"github.com/nikhilarsid/review-service/pkg/logger"
)

// Kafka topics for review lifecycle events.
var (
	TopicReviewCreated = pkgkafka.Topic("review", "created")
	TopicReviewUpdated = pkgkafka.Topic("review", "updated")
	TopicReviewDeleted = pkgkafka.Topic("review", "deleted")
)

// AggregateTypeReview is the aggregate type of every review event.
const AggregateTypeReview = "review"

// SourceReviewService identifies events originating from this service.
const SourceReviewService = "review-service"

// ReviewData is the payload of review.created and review.updated.
type ReviewData struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	VariantID  *string `json:"variant_id,omitempty"`
	MerchantID *string `json:"merchant_id,omitempty"`
	AuthorID   string  `json:"author_id"`
	Rating     int     `json:"rating"`
}

// ReviewDeletedData is the payload of review.deleted.
type ReviewDeletedData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	AuthorID  string `json:"author_id"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the review service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func reviewData(r *domain.Review) ReviewData {
	return ReviewData{
		ID:         r.ID,
		ProductID:  r.ProductID,
		VariantID:  r.VariantID,
		MerchantID: r.MerchantID,
		AuthorID:   r.AuthorID,
		Rating:     r.Rating,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, review, reviewData(review))
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewUpdated, review, reviewData(review))
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewDeleted, review, ReviewDeletedData{
		ID:        review.ID,
		ProductID: review.ProductID,
		AuthorID:  review.AuthorID,
	})
}

// publish keys the message by review id. product_id is copied into the
// metadata so consumers can route without decoding the payload.
func (p *Producer) publish(ctx context.Context, topic string, review *domain.Review, data any) error {
	event, err := pkgkafka.NewEvent(topic, review.ID, AggregateTypeReview, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.WithMetadata("product_id", review.ProductID)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", review.ID),
	)
	return nil
}
