package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ReviewsGo/internal/domain"
	apperrors "github.com/utafrali/ReviewsGo/pkg/errors"
)

func floatPtr(f float64) *float64 { return &f }

func TestSubmitReview_Success(t *testing.T) {
	pool := newMockPool(t)
	router := setupRouter(new(mockReviewRepository), new(mockCustomerRepository), new(mockProductRepository), new(mockRatingRepository), new(mockReportRepository), pool)

	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	pool.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(pgxmock.NewResult("SET", 0))
	pool.ExpectQuery(`SELECT 1 FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(validProductID).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	pool.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM customers`).
		WithArgs(validCustomerID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	pool.ExpectExec("INSERT INTO reviews").
		WithArgs(pgxmock.AnyArg(), validProductID, validCustomerID, 5, "good kettle", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectQuery(`SELECT ROUND\(AVG\(rating\)`).
		WithArgs(validProductID).
		WillReturnRows(pgxmock.NewRows([]string{"round"}).AddRow(floatPtr(5.0)))
	pool.ExpectExec(`UPDATE products SET average_rating`).
		WithArgs(pgxmock.AnyArg(), validProductID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectCommit()

	body, _ := json.Marshal(SubmitReviewRequest{
		ProductID:  validProductID,
		CustomerID: validCustomerID,
		Rating:     5,
		ReviewText: "good kettle",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestSubmitReview_InvalidJSON(t *testing.T) {
	pool := newMockPool(t)
	router := setupRouter(new(mockReviewRepository), new(mockCustomerRepository), new(mockProductRepository), new(mockRatingRepository), new(mockReportRepository), pool)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/", bytes.NewReader([]byte(`{invalid`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestSubmitReview_ValidationError_RatingOutOfRange(t *testing.T) {
	pool := newMockPool(t)
	router := setupRouter(new(mockReviewRepository), new(mockCustomerRepository), new(mockProductRepository), new(mockRatingRepository), new(mockReportRepository), pool)

	body, _ := json.Marshal(SubmitReviewRequest{
		ProductID:  validProductID,
		CustomerID: validCustomerID,
		Rating:     6,
		ReviewText: "too enthusiastic",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestSubmitReview_LockContentionReturns503(t *testing.T) {
	pool := newMockPool(t)
	router := setupRouter(new(mockReviewRepository), new(mockCustomerRepository), new(mockProductRepository), new(mockRatingRepository), new(mockReportRepository), pool)

	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	pool.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(pgxmock.NewResult("SET", 0))
	pool.ExpectQuery(`SELECT 1 FROM products WHERE id = \$1 FOR UPDATE`).
		WithArgs(validProductID).
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})
	pool.ExpectRollback()

	body, _ := json.Marshal(SubmitReviewRequest{
		ProductID:  validProductID,
		CustomerID: validCustomerID,
		Rating:     4,
		ReviewText: "fine",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONTENTION", resp.Error.Code)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestGetReview_Success(t *testing.T) {
	pool := newMockPool(t)
	reviewRepo := new(mockReviewRepository)
	router := setupRouter(reviewRepo, new(mockCustomerRepository), new(mockProductRepository), new(mockRatingRepository), new(mockReportRepository), pool)

	reviewRepo.On("GetByID", mock.Anything, validReviewID).Return(&domain.Review{
		ID:         validReviewID,
		ProductID:  validProductID,
		CustomerID: validCustomerID,
		Rating:     4,
		ReviewText: "fine",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/"+validReviewID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	reviewRepo.AssertExpectations(t)
}

func TestGetReview_InvalidUUID(t *testing.T) {
	pool := newMockPool(t)
	router := setupRouter(new(mockReviewRepository), new(mockCustomerRepository), new(mockProductRepository), new(mockRatingRepository), new(mockReportRepository), pool)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestGetReview_NotFound(t *testing.T) {
	pool := newMockPool(t)
	reviewRepo := new(mockReviewRepository)
	router := setupRouter(reviewRepo, new(mockCustomerRepository), new(mockProductRepository), new(mockRatingRepository), new(mockReportRepository), pool)

	reviewRepo.On("GetByID", mock.Anything, validReviewID).Return(nil, apperrors.NotFound("review", validReviewID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/"+validReviewID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestDeleteReview_NotFound(t *testing.T) {
	pool := newMockPool(t)
	reviewRepo := new(mockReviewRepository)
	router := setupRouter(reviewRepo, new(mockCustomerRepository), new(mockProductRepository), new(mockRatingRepository), new(mockReportRepository), pool)

	reviewRepo.On("GetByID", mock.Anything, validReviewID).Return(nil, apperrors.NotFound("review", validReviewID))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/"+validReviewID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProductReviews_Paginates(t *testing.T) {
	pool := newMockPool(t)
	reviewRepo := new(mockReviewRepository)
	router := setupRouter(reviewRepo, new(mockCustomerRepository), new(mockProductRepository), new(mockRatingRepository), new(mockReportRepository), pool)

	reviewRepo.On("ListByProduct", mock.Anything, validProductID, 2, 10).Return([]domain.Review{
		{ID: validReviewID, ProductID: validProductID, CustomerID: validCustomerID, Rating: 4, ReviewText: "fine"},
	}, 11, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+validProductID+"/reviews?page=2&per_page=10", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var paged struct {
		Data       []domain.Review `json:"data"`
		TotalCount int             `json:"total_count"`
		Page       int             `json:"page"`
		TotalPages int             `json:"total_pages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&paged))
	assert.Len(t, paged.Data, 1)
	assert.Equal(t, 11, paged.TotalCount)
	assert.Equal(t, 2, paged.Page)
	assert.Equal(t, 2, paged.TotalPages)
	reviewRepo.AssertExpectations(t)
}
