package repository

import (
	"context"

	"github.com/utafrali/ReviewsGo/internal/domain"
)

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	// Create inserts a new customer.
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Customer, error)

	// List returns a page of customers and the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Customer, int, error)

	// Delete removes the customer row. It fails with a foreign key violation
	// if any reviews or ratings still reference the customer.
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	// Create inserts a new product with no average rating.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns a page of products and the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Product, int, error)
}

// ReviewRepository defines read operations for reviews. All writes go through
// the review service, which performs them inside per-product transactions.
type ReviewRepository interface {
	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByProduct returns a page of a product's reviews and the total count.
	ListByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error)

	// ListByCustomer returns all reviews written by the given customer,
	// ordered by product so cascading deletes can group work per product.
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Review, error)
}

// RatingRepository defines persistence operations for standalone ratings.
type RatingRepository interface {
	// Create inserts a new rating.
	Create(ctx context.Context, rating *domain.Rating) error

	// DeleteByCustomer removes all ratings submitted by the given customer.
	DeleteByCustomer(ctx context.Context, customerID string) (int, error)
}

// ReportRepository defines the read-only aggregation queries behind reports.
type ReportRepository interface {
	// KeywordFrequency groups reviews by exact text and counts occurrences,
	// ordered by count descending.
	KeywordFrequency(ctx context.Context, limit int) ([]domain.KeywordCount, error)

	// TopRated groups ratings by product, computes the mean value, and
	// returns at most limit products ordered by mean descending. Ties break
	// by ascending product ID for a stable order.
	TopRated(ctx context.Context, limit int) ([]domain.ProductRating, error)

	// ListReviewTexts returns (product_id, review_text) pairs for every
	// review, ordered by product ID. The sentiment report classifies these
	// in memory.
	ListReviewTexts(ctx context.Context) ([]domain.ReviewText, error)
}
