package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/ReviewsGo/internal/domain"
	"github.com/utafrali/ReviewsGo/internal/event"
	"github.com/utafrali/ReviewsGo/internal/repository"
	"github.com/utafrali/ReviewsGo/pkg/database"
	apperrors "github.com/utafrali/ReviewsGo/pkg/errors"
)

// ReviewService maintains reviews and the product average-rating aggregate.
// Every mutation runs in a transaction that locks the affected product row,
// so the committed review set and the committed aggregate always agree.
type ReviewService struct {
	reviewRepo   repository.ReviewRepository
	customerRepo repository.CustomerRepository
	ratingRepo   repository.RatingRepository
	pool         database.DBTX
	producer     *event.Producer
	logger       *slog.Logger
	lockTimeout  time.Duration
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	customerRepo repository.CustomerRepository,
	ratingRepo repository.RatingRepository,
	pool database.DBTX,
	producer *event.Producer,
	logger *slog.Logger,
	lockTimeout time.Duration,
) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		customerRepo: customerRepo,
		ratingRepo:   ratingRepo,
		pool:         pool,
		producer:     producer,
		logger:       logger,
		lockTimeout:  lockTimeout,
	}
}

// UpdateReviewParams carries the changes applied by EditReview. ProductID is
// optional; when set to a different product, the review moves and both
// products' aggregates are recomputed.
type UpdateReviewParams struct {
	ProductID  string
	Rating     int
	ReviewText string
}

// GetReview retrieves a single review.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	return s.reviewRepo.GetByID(ctx, id)
}

// ListReviewsByProduct returns a page of a product's reviews.
func (s *ReviewService) ListReviewsByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	return s.reviewRepo.ListByProduct(ctx, productID, page, perPage)
}

// SubmitReview validates and persists a new review, recomputing the product's
// average rating in the same transaction.
func (s *ReviewService) SubmitReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if review.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if review.CustomerID == "" {
		return nil, apperrors.InvalidInput("customer_id is required")
	}
	if review.Rating < domain.MinRating || review.Rating > domain.MaxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if review.ReviewText == "" {
		return nil, apperrors.InvalidInput("review_text is required")
	}

	review.ID = uuid.New().String()
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	tx, err := s.beginProductTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.lockProduct(ctx, tx, review.ProductID, false); err != nil {
		return nil, err
	}

	var customerExists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, review.CustomerID).Scan(&customerExists)
	if err != nil {
		return nil, fmt.Errorf("check customer exists: %w", err)
	}
	if !customerExists {
		return nil, apperrors.NotFound("customer", review.CustomerID)
	}

	insertQuery := `
		INSERT INTO reviews (id, product_id, customer_id, rating, review_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, insertQuery,
		review.ID,
		review.ProductID,
		review.CustomerID,
		review.Rating,
		review.ReviewText,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	average, err := s.recomputeAggregate(ctx, tx, review.ProductID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit review transaction: %w", err)
	}
	aggregateRecomputes.WithLabelValues("review_created").Inc()

	s.publishReviewEvents(ctx, event.TopicReviewCreated, review, map[string]*float64{review.ProductID: average})

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// maxMoveRetries bounds how often a mutation restarts lock acquisition after
// a concurrent transaction moved the review to another product.
const maxMoveRetries = 3

// errReviewMoved signals that the review's product changed between the
// pre-transaction read and the locked in-transaction read.
var errReviewMoved = errors.New("review moved concurrently")

// EditReview applies rating/text changes to an existing review. If the edit
// moves the review to a different product, both the old and the new product's
// aggregates are recomputed under their locks, acquired in ascending product
// ID order to avoid deadlocks. The review's current product is re-read under
// its row lock inside the transaction; when a concurrent edit moved the
// review in the meantime, lock acquisition restarts with the fresh product
// set so no product's aggregate is ever recomputed without its lock.
func (s *ReviewService) EditReview(ctx context.Context, id string, params UpdateReviewParams) (*domain.Review, error) {
	if params.Rating < domain.MinRating || params.Rating > domain.MaxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if params.ReviewText == "" {
		return nil, apperrors.InvalidInput("review_text is required")
	}

	existing, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldProduct := existing.ProductID
	for attempt := 0; attempt < maxMoveRetries; attempt++ {
		updated, averages, current, err := s.editReviewTx(ctx, existing, params, oldProduct)
		if errors.Is(err, errReviewMoved) {
			oldProduct = current
			continue
		}
		if err != nil {
			return nil, err
		}
		aggregateRecomputes.WithLabelValues("review_updated").Add(float64(len(averages)))

		s.publishReviewEvents(ctx, event.TopicReviewUpdated, updated, averages)

		s.logger.InfoContext(ctx, "review updated",
			slog.String("review_id", id),
			slog.String("product_id", updated.ProductID),
			slog.Int("rating", params.Rating),
		)

		return updated, nil
	}

	return nil, apperrors.Contention("review", id)
}

// editReviewTx runs one edit attempt under the product locks derived from
// oldProduct. It returns errReviewMoved, plus the review's actual product,
// when the locked row no longer lives on oldProduct.
func (s *ReviewService) editReviewTx(ctx context.Context, existing *domain.Review, params UpdateReviewParams, oldProduct string) (*domain.Review, map[string]*float64, string, error) {
	newProduct := oldProduct
	if params.ProductID != "" {
		newProduct = params.ProductID
	}

	affected := []string{oldProduct}
	if newProduct != oldProduct {
		affected = append(affected, newProduct)
		sort.Strings(affected)
	}

	tx, err := s.beginProductTx(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, productID := range affected {
		// The old product must still exist while a review references it;
		// only the target of a move counts as caller input.
		internalRef := productID == oldProduct
		if err := s.lockProduct(ctx, tx, productID, internalRef); err != nil {
			return nil, nil, "", err
		}
	}

	current, err := s.lockReview(ctx, tx, existing.ID)
	if err != nil {
		return nil, nil, "", err
	}
	if current != oldProduct {
		return nil, nil, current, errReviewMoved
	}

	now := time.Now().UTC()
	updateQuery := `
		UPDATE reviews
		SET product_id = $1, rating = $2, review_text = $3, updated_at = $4
		WHERE id = $5`

	if _, err := tx.Exec(ctx, updateQuery, newProduct, params.Rating, params.ReviewText, now, existing.ID); err != nil {
		return nil, nil, "", fmt.Errorf("update review: %w", err)
	}

	averages := make(map[string]*float64, len(affected))
	for _, productID := range affected {
		avg, err := s.recomputeAggregate(ctx, tx, productID)
		if err != nil {
			return nil, nil, "", err
		}
		averages[productID] = avg
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, "", fmt.Errorf("commit review transaction: %w", err)
	}

	updated := *existing
	updated.ProductID = newProduct
	updated.Rating = params.Rating
	updated.ReviewText = params.ReviewText
	updated.UpdatedAt = now

	return &updated, averages, current, nil
}

// RemoveReview deletes a review and recomputes the product's average, which
// becomes NULL when the last review goes away. Like EditReview, the review's
// product is re-read under its row lock; a concurrent move restarts lock
// acquisition against the product the review actually lives on.
func (s *ReviewService) RemoveReview(ctx context.Context, id string) error {
	existing, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	productID := existing.ProductID
	for attempt := 0; attempt < maxMoveRetries; attempt++ {
		average, current, err := s.removeReviewTx(ctx, id, productID)
		if errors.Is(err, errReviewMoved) {
			productID = current
			continue
		}
		if err != nil {
			return err
		}
		aggregateRecomputes.WithLabelValues("review_deleted").Inc()

		removed := *existing
		removed.ProductID = productID
		s.publishReviewEvents(ctx, event.TopicReviewDeleted, &removed, map[string]*float64{productID: average})

		s.logger.InfoContext(ctx, "review removed",
			slog.String("review_id", id),
			slog.String("product_id", productID),
		)

		return nil
	}

	return apperrors.Contention("review", id)
}

// removeReviewTx runs one delete attempt under productID's lock, returning
// errReviewMoved with the actual product when the locked row moved.
func (s *ReviewService) removeReviewTx(ctx context.Context, id, productID string) (*float64, string, error) {
	tx, err := s.beginProductTx(ctx)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.lockProduct(ctx, tx, productID, true); err != nil {
		return nil, "", err
	}

	current, err := s.lockReview(ctx, tx, id)
	if err != nil {
		return nil, "", err
	}
	if current != productID {
		return nil, current, errReviewMoved
	}

	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		return nil, "", fmt.Errorf("delete review: %w", err)
	}

	average, err := s.recomputeAggregate(ctx, tx, productID)
	if err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit review transaction: %w", err)
	}

	return average, current, nil
}

// RemoveCustomer deletes a customer and cascades to every review and rating
// the customer owns. Each affected product's reviews are removed and its
// aggregate recomputed in an independent per-product transaction, so a
// customer with reviews across many products never serializes unrelated
// products behind one lock. The customer row goes last; its RESTRICT foreign
// keys then prove no dependent rows slipped through.
func (s *ReviewService) RemoveCustomer(ctx context.Context, customerID string) error {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return err
	}

	reviews, err := s.reviewRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	productIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, rev := range reviews {
		if _, ok := seen[rev.ProductID]; !ok {
			seen[rev.ProductID] = struct{}{}
			productIDs = append(productIDs, rev.ProductID)
		}
	}
	sort.Strings(productIDs)

	reviewsRemoved := 0
	for _, productID := range productIDs {
		removed, err := s.removeCustomerReviewsForProduct(ctx, customerID, productID)
		if err != nil {
			return err
		}
		reviewsRemoved += removed
	}
	cascadeDeletedReviews.Add(float64(reviewsRemoved))

	ratingsRemoved, err := s.ratingRepo.DeleteByCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	if err := s.customerRepo.Delete(ctx, customerID); err != nil {
		return err
	}

	if err := s.producer.PublishCustomerDeleted(ctx, event.CustomerDeletedData{
		CustomerID:     customerID,
		ReviewsRemoved: reviewsRemoved,
		RatingsRemoved: ratingsRemoved,
		ProductIDs:     productIDs,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish customer.deleted event",
			slog.String("customer_id", customerID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "customer removed",
		slog.String("customer_id", customerID),
		slog.Int("reviews_removed", reviewsRemoved),
		slog.Int("ratings_removed", ratingsRemoved),
		slog.Int("products_affected", len(productIDs)),
	)

	return nil
}

// removeCustomerReviewsForProduct deletes one customer's reviews on a single
// product and recomputes that product's aggregate, all under the product lock.
func (s *ReviewService) removeCustomerReviewsForProduct(ctx context.Context, customerID, productID string) (int, error) {
	tx, err := s.beginProductTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.lockProduct(ctx, tx, productID, true); err != nil {
		return 0, err
	}

	ct, err := tx.Exec(ctx, `DELETE FROM reviews WHERE customer_id = $1 AND product_id = $2`, customerID, productID)
	if err != nil {
		return 0, fmt.Errorf("delete customer reviews for product: %w", err)
	}

	average, err := s.recomputeAggregate(ctx, tx, productID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit cascade transaction: %w", err)
	}
	aggregateRecomputes.WithLabelValues("customer_deleted").Inc()

	if err := s.producer.PublishRatingUpdated(ctx, productID, average); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.rating_updated event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return int(ct.RowsAffected()), nil
}

// beginProductTx opens a transaction and bounds lock waits so contention on a
// hot product surfaces as a retryable error instead of an indefinite block.
func (s *ReviewService) beginProductTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin review transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("set lock timeout: %w", err)
	}

	return tx, nil
}

// lockProduct takes the exclusive per-product lock. A missing product maps to
// NotFound when the ID came from the caller, and to an integrity fault when a
// live review still references it. A lock timeout maps to a retryable
// contention error.
func (s *ReviewService) lockProduct(ctx context.Context, tx pgx.Tx, productID string, internalRef bool) error {
	var one int
	err := tx.QueryRow(ctx, `SELECT 1 FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&one)
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		if internalRef {
			return apperrors.Integrity(fmt.Sprintf("product %s referenced by reviews no longer exists", productID))
		}
		return apperrors.NotFound("product", productID)
	}
	if database.IsLockTimeout(err) {
		lockContentionRejections.Inc()
		return apperrors.Contention("product", productID)
	}
	return fmt.Errorf("lock product %s: %w", productID, err)
}

// lockReview takes the review's row lock and returns the product the review
// currently belongs to. The caller compares it against the product set it
// locked; a mismatch means a concurrent transaction moved the review after
// the pre-transaction read.
func (s *ReviewService) lockReview(ctx context.Context, tx pgx.Tx, id string) (string, error) {
	var productID string
	err := tx.QueryRow(ctx, `SELECT product_id FROM reviews WHERE id = $1 FOR UPDATE`, id).Scan(&productID)
	if err == nil {
		return productID, nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.NotFound("review", id)
	}
	if database.IsLockTimeout(err) {
		lockContentionRejections.Inc()
		return "", apperrors.Contention("review", id)
	}
	return "", fmt.Errorf("lock review %s: %w", id, err)
}

// recomputeAggregate derives the product's average rating from its live
// reviews and writes it back. The average is NULL when no reviews remain.
func (s *ReviewService) recomputeAggregate(ctx context.Context, tx pgx.Tx, productID string) (*float64, error) {
	var average *float64
	err := tx.QueryRow(ctx,
		`SELECT ROUND(AVG(rating)::numeric, 2)::float8 FROM reviews WHERE product_id = $1`,
		productID,
	).Scan(&average)
	if err != nil {
		return nil, fmt.Errorf("compute average rating: %w", err)
	}

	ct, err := tx.Exec(ctx,
		`UPDATE products SET average_rating = $1, updated_at = NOW() WHERE id = $2`,
		average, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("write average rating: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, apperrors.Integrity(fmt.Sprintf("product %s vanished during aggregate recomputation", productID))
	}

	return average, nil
}

// publishReviewEvents emits the review lifecycle event plus one rating event
// per recomputed product. Publish failures are logged, not surfaced: the
// mutation is already committed.
func (s *ReviewService) publishReviewEvents(ctx context.Context, topic string, review *domain.Review, averages map[string]*float64) {
	var err error
	switch topic {
	case event.TopicReviewCreated:
		err = s.producer.PublishReviewCreated(ctx, review)
	case event.TopicReviewUpdated:
		err = s.producer.PublishReviewUpdated(ctx, review)
	case event.TopicReviewDeleted:
		err = s.producer.PublishReviewDeleted(ctx, review)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review event",
			slog.String("topic", topic),
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	for productID, average := range averages {
		if err := s.producer.PublishRatingUpdated(ctx, productID, average); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish product.rating_updated event",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}
}
