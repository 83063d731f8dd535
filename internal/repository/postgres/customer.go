package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/ReviewsGo/internal/domain"
	"github.com/utafrali/ReviewsGo/pkg/database"
	apperrors "github.com/utafrali/ReviewsGo/pkg/errors"
)

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a new customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, contact, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Contact,
		customer.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("customer", "email", customer.Email)
		}
		return fmt.Errorf("create customer: %w", err)
	}

	return nil
}

// GetByID retrieves a customer by its unique identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `
		SELECT id, name, email, contact, created_at
		FROM customers
		WHERE id = $1`

	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Contact,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", id)
		}
		return nil, fmt.Errorf("get customer by id: %w", err)
	}

	return &c, nil
}

// List returns a page of customers and the total count.
func (r *CustomerRepository) List(ctx context.Context, page, perPage int) ([]domain.Customer, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	offset := (page - 1) * perPage

	query := `
		SELECT id, name, email, contact, created_at,
			   count(*) OVER() AS total_count
		FROM customers
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var (
		customers  []domain.Customer
		totalCount int
	)

	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Contact, &c.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customer rows: %w", err)
	}

	if customers == nil {
		customers = []domain.Customer{}
	}

	return customers, totalCount, nil
}

// Delete removes the customer row. The reviews and ratings foreign keys are
// RESTRICT, so a delete while dependents remain fails rather than leaving
// dangling references.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Integrity(fmt.Sprintf("customer %s still has dependent rows", id))
		}
		return fmt.Errorf("delete customer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", id)
	}

	return nil
}
