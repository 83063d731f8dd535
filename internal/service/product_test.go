package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ReviewsGo/internal/domain"
	apperrors "github.com/utafrali/ReviewsGo/pkg/errors"
)

func TestProductService_CreateProduct(t *testing.T) {
	repo := new(mockProductRepository)
	svc := NewProductService(repo, testLogger())

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	product, err := svc.CreateProduct(context.Background(), &domain.Product{
		Name:       "Electric Kettle",
		Category:   "kitchen",
		PriceCents: 4599,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	// A new product has no reviews and therefore no average rating.
	assert.Nil(t, product.AverageRating)
	repo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	repo := new(mockProductRepository)
	svc := NewProductService(repo, testLogger())

	tests := []struct {
		name    string
		product domain.Product
	}{
		{"missing name", domain.Product{PriceCents: 100}},
		{"negative price", domain.Product{Name: "Kettle", PriceCents: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), &tt.product)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}

	repo.AssertNotCalled(t, "Create")
}

func TestProductService_GetProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepository)
	svc := NewProductService(repo, testLogger())

	repo.On("GetByID", mock.Anything, "prod-x").Return(nil, apperrors.NotFound("product", "prod-x"))

	_, err := svc.GetProduct(context.Background(), "prod-x")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
