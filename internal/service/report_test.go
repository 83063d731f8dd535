package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ReviewsGo/internal/domain"
)

func newTestCache(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestReportService_KeywordFrequency_CachesResult(t *testing.T) {
	repo := new(mockReportRepository)
	svc := NewReportService(repo, newTestCache(t), 30*time.Second, testLogger())

	expected := []domain.KeywordCount{
		{Keyword: "good", Count: 3},
		{Keyword: "bad", Count: 1},
	}
	repo.On("KeywordFrequency", mock.Anything, keywordLimit).Return(expected, nil).Once()

	first, err := svc.KeywordFrequency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, first)

	// Second call is served from the cache; the repository is not hit again.
	second, err := svc.KeywordFrequency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, second)

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "KeywordFrequency", 1)
}

func TestReportService_TopRatedProducts_LimitIsTen(t *testing.T) {
	repo := new(mockReportRepository)
	svc := NewReportService(repo, nil, 0, testLogger())

	expected := []domain.ProductRating{
		{ProductID: "prod-1", ProductName: "Kettle", AverageRating: 4.5, ReviewCount: 12},
	}
	repo.On("TopRated", mock.Anything, TopRatedLimit).Return(expected, nil)

	rankings, err := svc.TopRatedProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, rankings)
	repo.AssertExpectations(t)
}

func TestReportService_SentimentReport_CountsPerProduct(t *testing.T) {
	repo := new(mockReportRepository)
	svc := NewReportService(repo, nil, 0, testLogger())

	repo.On("ListReviewTexts", mock.Anything).Return([]domain.ReviewText{
		{ProductID: "prod-1", Text: "good kettle"},
		{ProductID: "prod-1", Text: "bad handle"},
		{ProductID: "prod-1", Text: "bad lid, bad spout"},
		{ProductID: "prod-1", Text: "does the job"},
		{ProductID: "prod-2", Text: "Good but pricey"},
	}, nil)

	report, err := svc.SentimentReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 2)

	assert.Equal(t, "prod-1", report[0].ProductID)
	assert.Equal(t, domain.SentimentCounts{Positive: 1, Negative: 2, Neutral: 1}, report[0].Counts)

	// "Good" with a capital G does not match; classification is case sensitive.
	assert.Equal(t, "prod-2", report[1].ProductID)
	assert.Equal(t, domain.SentimentCounts{Neutral: 1}, report[1].Counts)
}

func TestReportService_SentimentReport_EmptyIsEmptySlice(t *testing.T) {
	repo := new(mockReportRepository)
	svc := NewReportService(repo, nil, 0, testLogger())

	repo.On("ListReviewTexts", mock.Anything).Return([]domain.ReviewText{}, nil)

	report, err := svc.SentimentReport(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Empty(t, report)
}

func TestReportService_CacheFailureFallsBackToRepository(t *testing.T) {
	repo := new(mockReportRepository)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewReportService(repo, cache, 30*time.Second, testLogger())

	expected := []domain.KeywordCount{{Keyword: "good", Count: 1}}
	repo.On("KeywordFrequency", mock.Anything, keywordLimit).Return(expected, nil)

	mr.Close()

	counts, err := svc.KeywordFrequency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, counts)
}
