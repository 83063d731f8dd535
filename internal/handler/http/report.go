package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/ReviewsGo/internal/service"
	"github.com/utafrali/ReviewsGo/pkg/httputil"
)

// ReportHandler handles HTTP requests for the read-only report endpoints.
type ReportHandler struct {
	service *service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report HTTP handler.
func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  logger,
	}
}

// KeywordFrequency handles GET /api/v1/reports/keywords
func (h *ReportHandler) KeywordFrequency(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.KeywordFrequency(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: counts})
}

// TopRatedProducts handles GET /api/v1/reports/top-rated
func (h *ReportHandler) TopRatedProducts(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.service.TopRatedProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rankings})
}

// SentimentReport handles GET /api/v1/reports/sentiment
func (h *ReportHandler) SentimentReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.SentimentReport(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}
