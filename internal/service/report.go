package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/ReviewsGo/internal/domain"
	"github.com/utafrali/ReviewsGo/internal/repository"
	"github.com/utafrali/ReviewsGo/internal/sentiment"
)

const (
	cacheKeyKeywords  = "reports:keywords"
	cacheKeyTopRated  = "reports:top_rated"
	cacheKeySentiment = "reports:sentiment"

	// TopRatedLimit caps the top-rated report at ten products.
	TopRatedLimit = 10

	// keywordLimit bounds the keyword frequency report.
	keywordLimit = 100
)

// ReportService serves the three read-only reports. Results are cached in
// Redis with a short TTL; reports tolerate slightly stale data, and a cache
// failure degrades to querying Postgres directly.
type ReportService struct {
	repo   repository.ReportRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewReportService creates a new report service. cache may be nil to disable
// caching entirely.
func NewReportService(repo repository.ReportRepository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *ReportService {
	return &ReportService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// KeywordFrequency returns review texts grouped by exact content, most
// frequent first.
func (s *ReportService) KeywordFrequency(ctx context.Context) ([]domain.KeywordCount, error) {
	if cached, ok := cacheGet[[]domain.KeywordCount](ctx, s, cacheKeyKeywords); ok {
		return cached, nil
	}

	counts, err := s.repo.KeywordFrequency(ctx, keywordLimit)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKeyKeywords, counts)
	return counts, nil
}

// TopRatedProducts returns at most ten products ranked by mean rating value.
func (s *ReportService) TopRatedProducts(ctx context.Context) ([]domain.ProductRating, error) {
	if cached, ok := cacheGet[[]domain.ProductRating](ctx, s, cacheKeyTopRated); ok {
		return cached, nil
	}

	rankings, err := s.repo.TopRated(ctx, TopRatedLimit)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKeyTopRated, rankings)
	return rankings, nil
}

// SentimentReport classifies every review and counts sentiment classes per
// product. Products with no reviews are absent from the result.
func (s *ReportService) SentimentReport(ctx context.Context) ([]domain.ProductSentiment, error) {
	if cached, ok := cacheGet[[]domain.ProductSentiment](ctx, s, cacheKeySentiment); ok {
		return cached, nil
	}

	texts, err := s.repo.ListReviewTexts(ctx)
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by product, so one pass builds the report.
	var report []domain.ProductSentiment
	for _, rt := range texts {
		if len(report) == 0 || report[len(report)-1].ProductID != rt.ProductID {
			report = append(report, domain.ProductSentiment{ProductID: rt.ProductID})
		}
		counts := &report[len(report)-1].Counts
		switch sentiment.Classify(rt.Text) {
		case sentiment.Positive:
			counts.Positive++
		case sentiment.Negative:
			counts.Negative++
		default:
			counts.Neutral++
		}
	}

	if report == nil {
		report = []domain.ProductSentiment{}
	}

	s.cacheSet(ctx, cacheKeySentiment, report)
	return report, nil
}

func cacheGet[T any](ctx context.Context, s *ReportService, key string) (T, bool) {
	var zero T
	if s.cache == nil || s.ttl <= 0 {
		return zero, false
	}

	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.WarnContext(ctx, "report cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return zero, false
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.WarnContext(ctx, "report cache entry corrupt, ignoring",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return zero, false
	}

	return result, true
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.WarnContext(ctx, "report cache marshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.cache.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, fmt.Sprintf("report cache write failed for %s", key),
			slog.String("error", err.Error()),
		)
	}
}
