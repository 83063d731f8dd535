package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/ReviewsGo/internal/domain"
	"github.com/utafrali/ReviewsGo/pkg/database"
	apperrors "github.com/utafrali/ReviewsGo/pkg/errors"
)

// RatingRepository implements repository.RatingRepository using PostgreSQL.
type RatingRepository struct {
	pool database.DBTX
}

// NewRatingRepository creates a new PostgreSQL-backed rating repository.
func NewRatingRepository(pool database.DBTX) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Create inserts a new rating.
func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	query := `
		INSERT INTO ratings (id, product_id, customer_id, rating_value, rated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		rating.ID,
		rating.ProductID,
		rating.CustomerID,
		rating.Value,
		rating.RatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.InvalidInput("product and customer must exist")
		}
		return fmt.Errorf("create rating: %w", err)
	}

	return nil
}

// DeleteByCustomer removes all ratings submitted by the given customer and
// returns how many were removed.
func (r *RatingRepository) DeleteByCustomer(ctx context.Context, customerID string) (int, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE customer_id = $1`, customerID)
	if err != nil {
		return 0, fmt.Errorf("delete ratings by customer: %w", err)
	}

	return int(ct.RowsAffected()), nil
}
