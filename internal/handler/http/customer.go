package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/ReviewsGo/internal/domain"
	"github.com/utafrali/ReviewsGo/internal/service"
	"github.com/utafrali/ReviewsGo/pkg/httputil"
	"github.com/utafrali/ReviewsGo/pkg/pagination"
	"github.com/utafrali/ReviewsGo/pkg/validator"
)

// CustomerHandler handles HTTP requests for customer endpoints. Deletion goes
// through the review service because it cascades into review aggregates.
type CustomerHandler struct {
	customers *service.CustomerService
	reviews   *service.ReviewService
	logger    *slog.Logger
}

// NewCustomerHandler creates a new customer HTTP handler.
func NewCustomerHandler(customers *service.CustomerService, reviews *service.ReviewService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		reviews:   reviews,
		logger:    logger,
	}
}

// CreateCustomerRequest is the JSON request body for registering a customer.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Contact string `json:"contact" validate:"omitempty,max=100"`
}

// CreateCustomer handles POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	customer, err := h.customers.CreateCustomer(r.Context(), &domain.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Contact: req.Contact,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: customer})
}

// GetCustomer handles GET /api/v1/customers/{customerId}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := httputil.ParseUUID(w, chi.URLParam(r, "customerId"))
	if !ok {
		return
	}

	customer, err := h.customers.GetCustomer(r.Context(), customerID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: customer})
}

// ListCustomers handles GET /api/v1/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)

	customers, total, err := h.customers.ListCustomers(r.Context(), p.Page, p.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse[domain.Customer](customers, total, p.Page, p.PerPage))
}

// DeleteCustomer handles DELETE /api/v1/customers/{customerId}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := httputil.ParseUUID(w, chi.URLParam(r, "customerId"))
	if !ok {
		return
	}

	if err := h.reviews.RemoveCustomer(r.Context(), customerID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"customer_id": customerID.String(),
		"status":      "deleted",
	}})
}
