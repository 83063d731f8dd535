package domain

import (
	"time"
)

// Rating bounds for reviews and standalone ratings.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a product review submitted by a customer. Every review
// carries a rating that contributes to the product's average.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	CustomerID string    `json:"customer_id"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
