package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/ReviewsGo/internal/domain"
	pkgkafka "github.com/utafrali/ReviewsGo/pkg/kafka"
)

// Kafka topic constants for review domain events.
const (
	TopicReviewCreated        = "reviews.review.created"
	TopicReviewUpdated        = "reviews.review.updated"
	TopicReviewDeleted        = "reviews.review.deleted"
	TopicCustomerDeleted      = "reviews.customer.deleted"
	TopicProductRatingUpdated = "reviews.product.rating_updated"
)

// Aggregate type constants.
const (
	AggregateTypeReview   = "review"
	AggregateTypeProduct  = "product"
	AggregateTypeCustomer = "customer"
)

// Source identifier for events originating from the reviews service.
const SourceReviewsService = "reviews-service"

// ReviewEventData is the payload for review lifecycle events.
type ReviewEventData struct {
	ReviewID   string `json:"review_id"`
	ProductID  string `json:"product_id"`
	CustomerID string `json:"customer_id"`
	Rating     int    `json:"rating"`
}

// RatingUpdatedData is the payload for a product.rating_updated event.
// AverageRating is nil when the product no longer has any reviews.
type RatingUpdatedData struct {
	ProductID     string   `json:"product_id"`
	AverageRating *float64 `json:"average_rating"`
}

// CustomerDeletedData is the payload for a customer.deleted event.
type CustomerDeletedData struct {
	CustomerID     string   `json:"customer_id"`
	ReviewsRemoved int      `json:"reviews_removed"`
	RatingsRemoved int      `json:"ratings_removed"`
	ProductIDs     []string `json:"product_ids"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the reviews service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publishReviewEvent(ctx context.Context, topic string, review *domain.Review) error {
	data := ReviewEventData{
		ReviewID:   review.ID,
		ProductID:  review.ProductID,
		CustomerID: review.CustomerID,
		Rating:     review.Rating,
	}

	event, err := pkgkafka.NewEvent(ctx, topic, review.ID, AggregateTypeReview, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publishReviewEvent(ctx, TopicReviewCreated, review)
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publishReviewEvent(ctx, TopicReviewUpdated, review)
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	return p.publishReviewEvent(ctx, TopicReviewDeleted, review)
}

// PublishRatingUpdated publishes a product.rating_updated event carrying the
// freshly recomputed average.
func (p *Producer) PublishRatingUpdated(ctx context.Context, productID string, average *float64) error {
	data := RatingUpdatedData{
		ProductID:     productID,
		AverageRating: average,
	}

	event, err := pkgkafka.NewEvent(ctx, TopicProductRatingUpdated, productID, AggregateTypeProduct, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create product.rating_updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductRatingUpdated, event); err != nil {
		return fmt.Errorf("publish product.rating_updated event: %w", err)
	}

	return nil
}

// PublishCustomerDeleted publishes a customer.deleted event after the cascade
// has completed.
func (p *Producer) PublishCustomerDeleted(ctx context.Context, data CustomerDeletedData) error {
	event, err := pkgkafka.NewEvent(ctx, TopicCustomerDeleted, data.CustomerID, AggregateTypeCustomer, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create customer.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCustomerDeleted, event); err != nil {
		return fmt.Errorf("publish customer.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published customer.deleted event",
		slog.String("customer_id", data.CustomerID),
		slog.Int("reviews_removed", data.ReviewsRemoved),
	)

	return nil
}
