package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/ReviewsGo/internal/domain"
	"github.com/utafrali/ReviewsGo/internal/repository"
	apperrors "github.com/utafrali/ReviewsGo/pkg/errors"
)

// RatingService records standalone numeric ratings. Ratings are deliberately
// kept apart from reviews: they feed the top-rated report but never the
// stored per-product average, which is derived from reviews alone.
type RatingService struct {
	repo   repository.RatingRepository
	logger *slog.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(repo repository.RatingRepository, logger *slog.Logger) *RatingService {
	return &RatingService{repo: repo, logger: logger}
}

// SubmitRating validates and persists a new rating.
func (s *RatingService) SubmitRating(ctx context.Context, rating *domain.Rating) (*domain.Rating, error) {
	if rating.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if rating.CustomerID == "" {
		return nil, apperrors.InvalidInput("customer_id is required")
	}
	if rating.Value < domain.MinRating || rating.Value > domain.MaxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("value must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	rating.ID = uuid.New().String()
	rating.RatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, rating); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "rating submitted",
		slog.String("rating_id", rating.ID),
		slog.String("product_id", rating.ProductID),
		slog.Int("rating_value", rating.Value),
	)

	return rating, nil
}
