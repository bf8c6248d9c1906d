package nlp

import (
	"context"

	"textproc/internal/models"
)

// Engine is the external NLP capability consumed by the processing facade.
// Implementations are expected to wrap every internal failure with
// apperrors.ErrExternalCapability.
type Engine interface {
	// Classify runs zero-shot classification of text against the candidate
	// labels and returns the labels ranked by score, descending.
	Classify(ctx context.Context, text string, labels []string) ([]models.LabelScore, error)

	// Sentiment returns the sentiment label and score for the text.
	Sentiment(ctx context.Context, text string) (*models.LabelScore, error)

	// Entities returns the named-entity spans found in the text. An empty
	// slice is a valid outcome, not an error.
	Entities(ctx context.Context, text string) ([]models.Entity, error)
}
