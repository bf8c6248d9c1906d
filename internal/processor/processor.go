package processor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"textproc/internal/apperrors"
	"textproc/internal/models"
	"textproc/internal/nlp"
	"textproc/internal/store"
)

// languageAutoDetected is recorded when the caller does not name the language
// the text was processed as.
const languageAutoDetected = "auto-detected"

// supportedLanguages is the fixed set of languages the pretrained pipelines
// handle.
var supportedLanguages = []string{"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ko"}

// Processor is the single entry point for text processing. It dispatches text
// to the external NLP engine, wraps the outcome in a ProcessingResult, and
// persists it synchronously before returning. A call either yields a fully
// persisted result or an error; there is no partial success.
type Processor struct {
	engine nlp.Engine
	store  *store.Store
	logger *zap.Logger
}

// NewProcessor creates a new processing facade over the given engine and store.
func NewProcessor(engine nlp.Engine, st *store.Store, logger *zap.Logger) *Processor {
	return &Processor{
		engine: engine,
		store:  st,
		logger: logger,
	}
}

// ClassifyText runs zero-shot classification of text against candidateLabels.
// The stored result keeps the full ranking in descending score order;
// confidence is the top label's score.
func (p *Processor) ClassifyText(ctx context.Context, text string, candidateLabels []string, language string) (*models.ProcessingResult, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	if len(candidateLabels) == 0 {
		return nil, fmt.Errorf("%w: candidate labels must be non-empty", apperrors.ErrInput)
	}

	ranked, err := p.engine.Classify(ctx, text, candidateLabels)
	if err != nil {
		p.logger.Error("Zero-shot classification failed", zap.Error(err))
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: classification returned no labels", apperrors.ErrExternalCapability)
	}

	// The ranking is kept in descending score order.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	confidence := ranked[0].Score
	record, err := p.store.AddResult(text, normalizeLanguage(language), models.TaskClassification,
		models.TaskResult{Classification: ranked}, &confidence)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Text classified",
		zap.Int64("result_id", record.ID),
		zap.String("top_label", ranked[0].Label),
		zap.Float64("confidence", confidence))
	return record, nil
}

// AnalyzeSentiment runs sentiment analysis on text. Confidence is the score
// of the returned sentiment label.
func (p *Processor) AnalyzeSentiment(ctx context.Context, text, language string) (*models.ProcessingResult, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	outcome, err := p.engine.Sentiment(ctx, text)
	if err != nil {
		p.logger.Error("Sentiment analysis failed", zap.Error(err))
		return nil, err
	}

	confidence := outcome.Score
	record, err := p.store.AddResult(text, normalizeLanguage(language), models.TaskSentiment,
		models.TaskResult{Sentiment: outcome}, &confidence)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Sentiment analyzed",
		zap.Int64("result_id", record.ID),
		zap.String("label", outcome.Label),
		zap.Float64("confidence", confidence))
	return record, nil
}

// ExtractEntities runs named entity recognition on text. Confidence is the
// mean of per-entity scores, or nil when no entities were found.
func (p *Processor) ExtractEntities(ctx context.Context, text, language string) (*models.ProcessingResult, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}

	entities, err := p.engine.Entities(ctx, text)
	if err != nil {
		p.logger.Error("Entity extraction failed", zap.Error(err))
		return nil, err
	}

	var confidence *float64
	if len(entities) > 0 {
		sum := 0.0
		for _, e := range entities {
			sum += e.Score
		}
		mean := sum / float64(len(entities))
		confidence = &mean
	}

	record, err := p.store.AddResult(text, normalizeLanguage(language), models.TaskNER,
		models.TaskResult{Entities: entities}, confidence)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Entities extracted",
		zap.Int64("result_id", record.ID),
		zap.Int("count", len(entities)))
	return record, nil
}

// AvailableLanguages returns the languages the pipelines support.
func (p *Processor) AvailableLanguages() []string {
	out := make([]string, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// Statistics returns aggregate counts from the underlying store.
func (p *Processor) Statistics() (*models.Statistics, error) {
	return p.store.Statistics()
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text must be non-empty", apperrors.ErrInput)
	}
	return nil
}

func normalizeLanguage(language string) string {
	if language == "" {
		return languageAutoDetected
	}
	return language
}
