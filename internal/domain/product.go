package domain

import (
	"time"
)

// Product represents an item in the catalog. AverageRating is nil when the
// product has no reviews; otherwise it is the average of the product's review
// ratings rounded to two decimal places.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category,omitempty"`
	Description   string    `json:"description,omitempty"`
	PriceCents    int64     `json:"price_cents"`
	AverageRating *float64  `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
