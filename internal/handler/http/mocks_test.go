package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ReviewsGo/internal/domain"
	"github.com/utafrali/ReviewsGo/internal/event"
	"github.com/utafrali/ReviewsGo/internal/service"
	"github.com/utafrali/ReviewsGo/pkg/database"
	"github.com/utafrali/ReviewsGo/pkg/httputil"
	pkgkafka "github.com/utafrali/ReviewsGo/pkg/kafka"
)

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, productID, page, perPage)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Review, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) List(ctx context.Context, page, perPage int) ([]domain.Customer, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]domain.Customer), args.Int(1), args.Error(2)
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, page, perPage int) ([]domain.Product, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

type mockRatingRepository struct {
	mock.Mock
}

func (m *mockRatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *mockRatingRepository) DeleteByCustomer(ctx context.Context, customerID string) (int, error) {
	args := m.Called(ctx, customerID)
	return args.Int(0), args.Error(1)
}

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) KeywordFrequency(ctx context.Context, limit int) ([]domain.KeywordCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KeywordCount), args.Error(1)
}

func (m *mockReportRepository) TopRated(ctx context.Context, limit int) ([]domain.ProductRating, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductRating), args.Error(1)
}

func (m *mockReportRepository) ListReviewTexts(ctx context.Context) ([]domain.ReviewText, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewText), args.Error(1)
}

// ============================================================================
// Test Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	cfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	cfg.Async = true
	return event.NewProducer(pkgkafka.NewProducer(cfg, logger), logger)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool
}

func testReviewService(reviewRepo *mockReviewRepository, customerRepo *mockCustomerRepository, ratingRepo *mockRatingRepository, pool database.DBTX) *service.ReviewService {
	return service.NewReviewService(reviewRepo, customerRepo, ratingRepo, pool, testEventProducer(), testLogger(), 3*time.Second)
}

// setupRouter builds a chi router matching the production route layout.
func setupRouter(reviewRepo *mockReviewRepository, customerRepo *mockCustomerRepository, productRepo *mockProductRepository, ratingRepo *mockRatingRepository, reportRepo *mockReportRepository, pool database.DBTX) *chi.Mux {
	logger := testLogger()

	reviewSvc := testReviewService(reviewRepo, customerRepo, ratingRepo, pool)
	customerSvc := service.NewCustomerService(customerRepo, logger)
	productSvc := service.NewProductService(productRepo, logger)
	ratingSvc := service.NewRatingService(ratingRepo, logger)
	reportSvc := service.NewReportService(reportRepo, nil, 0, logger)

	customerHandler := NewCustomerHandler(customerSvc, reviewSvc, logger)
	productHandler := NewProductHandler(productSvc, logger)
	reviewHandler := NewReviewHandler(reviewSvc, logger)
	ratingHandler := NewRatingHandler(ratingSvc, logger)
	reportHandler := NewReportHandler(reportSvc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/", customerHandler.CreateCustomer)
		r.Get("/", customerHandler.ListCustomers)
		r.Get("/{customerId}", customerHandler.GetCustomer)
		r.Delete("/{customerId}", customerHandler.DeleteCustomer)
	})
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/", productHandler.CreateProduct)
		r.Get("/", productHandler.ListProducts)
		r.Get("/{productId}", productHandler.GetProduct)
		r.Get("/{productId}/reviews", reviewHandler.ListProductReviews)
	})
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/", reviewHandler.SubmitReview)
		r.Get("/{reviewId}", reviewHandler.GetReview)
		r.Put("/{reviewId}", reviewHandler.UpdateReview)
		r.Delete("/{reviewId}", reviewHandler.DeleteReview)
	})
	r.Route("/api/v1/ratings", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/", ratingHandler.SubmitRating)
	})
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/keywords", reportHandler.KeywordFrequency)
		r.Get("/top-rated", reportHandler.TopRatedProducts)
		r.Get("/sentiment", reportHandler.SentimentReport)
	})
	return r
}

// decodeResponse reads the response body into the httputil.Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

const (
	validProductID  = "550e8400-e29b-41d4-a716-446655440001"
	validCustomerID = "550e8400-e29b-41d4-a716-446655440002"
	validReviewID   = "550e8400-e29b-41d4-a716-446655440003"
)
