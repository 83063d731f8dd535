package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/ReviewsGo/internal/domain"
	"github.com/utafrali/ReviewsGo/pkg/database"
)

// ReportRepository implements repository.ReportRepository using PostgreSQL.
type ReportRepository struct {
	pool database.DBTX
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool database.DBTX) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// KeywordFrequency groups reviews by their exact text and counts occurrences.
// This is a literal-text frequency count, not tokenized word analysis.
func (r *ReportRepository) KeywordFrequency(ctx context.Context, limit int) ([]domain.KeywordCount, error) {
	query := `
		SELECT review_text, count(*) AS occurrences
		FROM reviews
		GROUP BY review_text
		ORDER BY occurrences DESC, review_text ASC
		LIMIT $1`

	ctx, end := database.TraceQuery(ctx, "KeywordFrequency", query)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("keyword frequency: %w", err)
	}
	defer rows.Close()

	var counts []domain.KeywordCount
	for rows.Next() {
		var kc domain.KeywordCount
		if err := rows.Scan(&kc.Keyword, &kc.Count); err != nil {
			end(err)
			return nil, fmt.Errorf("scan keyword row: %w", err)
		}
		counts = append(counts, kc)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, fmt.Errorf("iterate keyword rows: %w", err)
	}
	end(nil)

	if counts == nil {
		counts = []domain.KeywordCount{}
	}

	return counts, nil
}

// TopRated groups ratings by product and returns at most limit products
// ordered by mean rating value descending, ties broken by ascending product ID.
func (r *ReportRepository) TopRated(ctx context.Context, limit int) ([]domain.ProductRating, error) {
	query := `
		SELECT ra.product_id, p.name, ROUND(AVG(ra.rating_value)::numeric, 2) AS mean_value, count(*) AS rating_count
		FROM ratings ra
		JOIN products p ON p.id = ra.product_id
		GROUP BY ra.product_id, p.name
		ORDER BY mean_value DESC, ra.product_id ASC
		LIMIT $1`

	ctx, end := database.TraceQuery(ctx, "TopRated", query)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("top rated products: %w", err)
	}
	defer rows.Close()

	var rankings []domain.ProductRating
	for rows.Next() {
		var pr domain.ProductRating
		if err := rows.Scan(&pr.ProductID, &pr.ProductName, &pr.AverageRating, &pr.ReviewCount); err != nil {
			end(err)
			return nil, fmt.Errorf("scan top rated row: %w", err)
		}
		rankings = append(rankings, pr)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, fmt.Errorf("iterate top rated rows: %w", err)
	}
	end(nil)

	if rankings == nil {
		rankings = []domain.ProductRating{}
	}

	return rankings, nil
}

// ListReviewTexts returns (product_id, review_text) pairs for all reviews,
// ordered by product ID.
func (r *ReportRepository) ListReviewTexts(ctx context.Context) ([]domain.ReviewText, error) {
	query := `
		SELECT product_id, review_text
		FROM reviews
		ORDER BY product_id ASC`

	ctx, end := database.TraceQuery(ctx, "ListReviewTexts", query)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("list review texts: %w", err)
	}
	defer rows.Close()

	var texts []domain.ReviewText
	for rows.Next() {
		var rt domain.ReviewText
		if err := rows.Scan(&rt.ProductID, &rt.Text); err != nil {
			end(err)
			return nil, fmt.Errorf("scan review text row: %w", err)
		}
		texts = append(texts, rt)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, fmt.Errorf("iterate review text rows: %w", err)
	}
	end(nil)

	return texts, nil
}
