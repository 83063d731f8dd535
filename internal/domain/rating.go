package domain

import (
	"time"
)

// Rating is a standalone numeric score a customer gives a product without
// writing a review. Ratings feed the top-rated report but do not affect a
// product's stored average, which is derived from reviews only.
type Rating struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	CustomerID string    `json:"customer_id"`
	Value      int       `json:"rating_value"`
	RatedAt    time.Time `json:"rated_at"`
}
