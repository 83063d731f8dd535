// Package sentiment provides a deterministic keyword-based classifier for
// review text. It is intentionally crude: a case-sensitive substring check,
// not a language model.
package sentiment

import "strings"

// Sentiment is a coarse three-valued classification of review text.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Classify maps review text to a sentiment. The check order matters: text
// containing both "good" and "bad" classifies as Positive.
func Classify(text string) Sentiment {
	if strings.Contains(text, "good") {
		return Positive
	}
	if strings.Contains(text, "bad") {
		return Negative
	}
	return Neutral
}
