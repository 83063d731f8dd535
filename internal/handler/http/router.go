package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/ReviewsGo/internal/service"
	"github.com/utafrali/ReviewsGo/pkg/health"
	"github.com/utafrali/ReviewsGo/pkg/middleware"
)

// NewRouter creates a chi router with all reviews service routes registered.
func NewRouter(
	reviewService *service.ReviewService,
	customerService *service.CustomerService,
	productService *service.ProductService,
	ratingService *service.RatingService,
	reportService *service.ReportService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
	reportCacheMaxAge int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("reviews"))
	r.Use(middleware.Tracing("reviews"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	customerHandler := NewCustomerHandler(customerService, reviewService, logger)
	productHandler := NewProductHandler(productService, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)
	ratingHandler := NewRatingHandler(ratingService, logger)
	reportHandler := NewReportHandler(reportService, logger)

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

	// Reports are read-only and tolerate short staleness.
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Use(middleware.CacheControl(reportCacheMaxAge))

		r.Get("/keywords", reportHandler.KeywordFrequency)
		r.Get("/top-rated", reportHandler.TopRatedProducts)
		r.Get("/sentiment", reportHandler.SentimentReport)
	})

	return r
}
