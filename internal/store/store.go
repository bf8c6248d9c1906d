package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"textproc/internal/apperrors"
	"textproc/internal/models"
)

// schemaVersion is recorded in the metadata block of every new backing file.
const schemaVersion = "1.0"

// document is the full on-disk structure of the backing file. Every mutation
// loads it whole, appends, and rewrites it whole. There is no locking; the
// store assumes a single logical writer.
type document struct {
	TextSamples       []models.TextSample       `json:"text_samples"`
	ProcessingResults []models.ProcessingResult `json:"processing_results"`
	Metadata          metadata                  `json:"metadata"`
}

type metadata struct {
	Created time.Time `json:"created"`
	Version string    `json:"version"`
}

// Store is a JSON-file-backed store for text samples and processing results.
type Store struct {
	path   string
	logger *zap.Logger
}

// New creates a store handle for the given backing file path. The file is not
// touched until Initialize or the first operation.
func New(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// seedSamples returns the fixed sample texts a fresh store is created with.
func seedSamples(now time.Time) []models.TextSample {
	seed := []struct {
		text, language, category string
	}{
		{"The economy is growing rapidly.", "en", "economy"},
		{"La economía está creciendo rápidamente.", "es", "economy"},
		{"L'économie croît rapidement.", "fr", "economy"},
		{"Die Wirtschaft wächst schnell.", "de", "economy"},
		{"L'economia sta crescendo rapidamente.", "it", "economy"},
		{"I love this new technology!", "en", "technology"},
		{"¡Me encanta esta nueva tecnología!", "es", "technology"},
		{"J'adore cette nouvelle technologie!", "fr", "technology"},
		{"The weather is beautiful today.", "en", "weather"},
		{"El clima está hermoso hoy.", "es", "weather"},
		{"Le temps est magnifique aujourd'hui.", "fr", "weather"},
		{"Das Wetter ist heute wunderschön.", "de", "weather"},
	}

	samples := make([]models.TextSample, 0, len(seed))
	for i, sd := range seed {
		samples = append(samples, models.TextSample{
			ID:       int64(i + 1),
			Text:     sd.text,
			Language: sd.language,
			Category: sd.category,
			Created:  now,
		})
	}
	return samples
}

func newDocument() *document {
	now := time.Now().UTC()
	return &document{
		TextSamples:       seedSamples(now),
		ProcessingResults: []models.ProcessingResult{},
		Metadata: metadata{
			Created: now,
			Version: schemaVersion,
		},
	}
}

// Initialize creates the backing file with seed samples if it does not exist.
// Idempotent: when the file is already present it is loaded and left as-is.
func (s *Store) Initialize() error {
	if _, err := os.Stat(s.path); err == nil {
		// Existing file: load it to surface corruption early, never re-seed.
		if _, err := s.load(); err != nil {
			return err
		}
		s.logger.Info("Store already initialized", zap.String("path", s.path))
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat backing file: %w", err)
	}

	doc := newDocument()
	if err := s.save(doc); err != nil {
		return err
	}
	s.logger.Info("Store created with seed samples",
		zap.String("path", s.path),
		zap.Int("samples", len(doc.TextSamples)))
	return nil
}

// Reset destructively replaces the backing file with a freshly seeded one.
// All-or-nothing: there is no partial clear.
func (s *Store) Reset() error {
	doc := newDocument()
	if err := s.save(doc); err != nil {
		return err
	}
	s.logger.Info("Store reset", zap.String("path", s.path))
	return nil
}

// AddSample validates and appends a text sample, assigning the next id in the
// sample collection, and rewrites the backing file.
func (s *Store) AddSample(text, language, category string) (*models.TextSample, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: sample text must be non-empty", apperrors.ErrValidation)
	}
	if language == "" {
		language = "auto"
	}
	if category == "" {
		category = "general"
	}

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	sample := models.TextSample{
		ID:       nextSampleID(doc.TextSamples),
		Text:     text,
		Language: language,
		Category: category,
		Created:  time.Now().UTC(),
	}
	doc.TextSamples = append(doc.TextSamples, sample)

	if err := s.save(doc); err != nil {
		return nil, err
	}
	return &sample, nil
}

// AddResult validates and appends a processing result, assigning the next id
// in the result collection, and rewrites the backing file.
func (s *Store) AddResult(text, language string, task models.Task, result models.TaskResult, confidence *float64) (*models.ProcessingResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: result text must be non-empty", apperrors.ErrValidation)
	}
	if !task.Valid() {
		return nil, fmt.Errorf("%w: unknown task %q", apperrors.ErrValidation, task)
	}
	if confidence != nil && (*confidence < 0.0 || *confidence > 1.0) {
		return nil, fmt.Errorf("%w: confidence %v out of [0.0, 1.0]", apperrors.ErrValidation, *confidence)
	}

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	record := models.ProcessingResult{
		ID:         nextResultID(doc.ProcessingResults),
		Text:       text,
		Language:   language,
		Task:       task,
		Result:     result,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	}
	doc.ProcessingResults = append(doc.ProcessingResults, record)

	if err := s.save(doc); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetSamples returns samples matching every provided filter, in insertion
// order. Empty filter values match everything.
func (s *Store) GetSamples(language, category string) ([]models.TextSample, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	matched := make([]models.TextSample, 0, len(doc.TextSamples))
	for _, sample := range doc.TextSamples {
		if language != "" && sample.Language != language {
			continue
		}
		if category != "" && sample.Category != category {
			continue
		}
		matched = append(matched, sample)
	}
	return matched, nil
}

// GetResults returns results matching every provided filter, in insertion
// order. Empty filter values match everything.
func (s *Store) GetResults(task models.Task, language string) ([]models.ProcessingResult, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	matched := make([]models.ProcessingResult, 0, len(doc.ProcessingResults))
	for _, record := range doc.ProcessingResults {
		if task != "" && record.Task != task {
			continue
		}
		if language != "" && record.Language != language {
			continue
		}
		matched = append(matched, record)
	}
	return matched, nil
}

// Statistics returns aggregate counts over both collections.
func (s *Store) Statistics() (*models.Statistics, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	stats := &models.Statistics{
		TotalSamples:      len(doc.TextSamples),
		TotalResults:      len(doc.ProcessingResults),
		ResultsByTask:     make(map[models.Task]int),
		SamplesByLanguage: make(map[string]int),
	}
	for _, record := range doc.ProcessingResults {
		stats.ResultsByTask[record.Task]++
	}
	for _, sample := range doc.TextSamples {
		stats.SamplesByLanguage[sample.Language]++
	}
	return stats, nil
}

// load reads and parses the entire backing file. A file that exists but does
// not parse into the expected structure is reported as corrupt; there is no
// partial parse and no silent recovery.
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing backing file is fatal the same way a corrupt one is:
			// the session must not proceed as if the store were empty.
			return nil, fmt.Errorf("%w: backing file %s does not exist (run Initialize first): %v", apperrors.ErrStoreCorrupt, s.path, err)
		}
		return nil, fmt.Errorf("read backing file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrStoreCorrupt, s.path, err)
	}
	if doc.Metadata.Version == "" {
		return nil, fmt.Errorf("%w: %s: missing metadata block", apperrors.ErrStoreCorrupt, s.path)
	}
	return &doc, nil
}

// save rewrites the entire backing file.
func (s *Store) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store document: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write backing file: %w", err)
	}
	return nil
}

func nextSampleID(samples []models.TextSample) int64 {
	if len(samples) == 0 {
		return 1
	}
	return samples[len(samples)-1].ID + 1
}

func nextResultID(results []models.ProcessingResult) int64 {
	if len(results) == 0 {
		return 1
	}
	return results[len(results)-1].ID + 1
}
