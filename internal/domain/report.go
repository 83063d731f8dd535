package domain

// KeywordCount is one row of the keyword frequency report.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// ProductRating is one row of the top-rated products report.
type ProductRating struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// SentimentCounts holds the number of reviews per sentiment class.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// ProductSentiment is one row of the sentiment report. Products without
// reviews do not appear in the report.
type ProductSentiment struct {
	ProductID string          `json:"product_id"`
	Counts    SentimentCounts `json:"counts"`
}

// ReviewText is a (product, text) pair fed to the sentiment classifier.
type ReviewText struct {
	ProductID string
	Text      string
}
