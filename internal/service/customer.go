package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/ReviewsGo/internal/domain"
	"github.com/utafrali/ReviewsGo/internal/repository"
	apperrors "github.com/utafrali/ReviewsGo/pkg/errors"
)

// CustomerService implements customer CRUD. Deletion is not here: removing a
// customer cascades into review aggregates and lives on ReviewService.
type CustomerService struct {
	repo   repository.CustomerRepository
	logger *slog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(repo repository.CustomerRepository, logger *slog.Logger) *CustomerService {
	return &CustomerService{repo: repo, logger: logger}
}

// CreateCustomer validates and persists a new customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if _, err := mail.ParseAddress(customer.Email); err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid email address %q", customer.Email))
	}

	customer.ID = uuid.New().String()
	customer.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "customer created",
		slog.String("customer_id", customer.ID),
	)

	return customer, nil
}

// GetCustomer retrieves a customer by ID.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// ListCustomers returns a page of customers and the total count.
func (s *CustomerService) ListCustomers(ctx context.Context, page, perPage int) ([]domain.Customer, int, error) {
	return s.repo.List(ctx, page, perPage)
}
