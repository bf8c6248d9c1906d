package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Task identifies which NLP pipeline produced a ProcessingResult. The set is
// closed: no other value is ever persisted.
type Task string

const (
	TaskClassification Task = "classification"
	TaskSentiment      Task = "sentiment"
	TaskNER            Task = "ner"
)

// Valid reports whether t is one of the closed task values.
func (t Task) Valid() bool {
	switch t {
	case TaskClassification, TaskSentiment, TaskNER:
		return true
	}
	return false
}

// TextSample represents a stored text sample. Immutable after insert.
type TextSample struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	Language string    `json:"language"` // ISO-639-1 code or "auto"
	Category string    `json:"category"`
	Created  time.Time `json:"created"`
}

// LabelScore is one ranked label with its score. Used both for zero-shot
// classification rankings and for the single sentiment outcome.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Entity is one named-entity span extracted from a text.
type Entity struct {
	TextSpan   string  `json:"text_span"`
	EntityType string  `json:"entity_type"`
	Score      float64 `json:"score"`
}

// TaskResult is the task-shaped payload of a ProcessingResult. Exactly one
// field is populated, matching the owning record's Task.
type TaskResult struct {
	Classification []LabelScore `json:"-"` // descending score
	Sentiment      *LabelScore  `json:"-"`
	Entities       []Entity     `json:"-"`
}

// ProcessingResult captures one processing outcome. Immutable after creation.
type ProcessingResult struct {
	ID         int64      `json:"id"`
	Text       string     `json:"text"`
	Language   string     `json:"language"` // code used for processing, or "auto-detected"
	Task       Task       `json:"task"`
	Result     TaskResult `json:"result"`
	Confidence *float64   `json:"confidence"` // nil when NER found no entities
	Timestamp  time.Time  `json:"timestamp"`
}

// processingResultJSON mirrors ProcessingResult with the result payload kept
// raw, so the on-disk shape of "result" is the bare payload, not a wrapper.
type processingResultJSON struct {
	ID         int64           `json:"id"`
	Text       string          `json:"text"`
	Language   string          `json:"language"`
	Task       Task            `json:"task"`
	Result     json.RawMessage `json:"result"`
	Confidence *float64        `json:"confidence"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (r ProcessingResult) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch r.Task {
	case TaskClassification:
		if r.Result.Classification == nil {
			payload = []LabelScore{}
		} else {
			payload = r.Result.Classification
		}
	case TaskSentiment:
		payload = r.Result.Sentiment
	case TaskNER:
		if r.Result.Entities == nil {
			payload = []Entity{}
		} else {
			payload = r.Result.Entities
		}
	default:
		return nil, fmt.Errorf("cannot marshal result with unknown task %q", r.Task)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(processingResultJSON{
		ID:         r.ID,
		Text:       r.Text,
		Language:   r.Language,
		Task:       r.Task,
		Result:     raw,
		Confidence: r.Confidence,
		Timestamp:  r.Timestamp,
	})
}

func (r *ProcessingResult) UnmarshalJSON(data []byte) error {
	var aux processingResultJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	out := ProcessingResult{
		ID:         aux.ID,
		Text:       aux.Text,
		Language:   aux.Language,
		Task:       aux.Task,
		Confidence: aux.Confidence,
		Timestamp:  aux.Timestamp,
	}

	switch aux.Task {
	case TaskClassification:
		if err := json.Unmarshal(aux.Result, &out.Result.Classification); err != nil {
			return fmt.Errorf("classification payload: %w", err)
		}
	case TaskSentiment:
		if err := json.Unmarshal(aux.Result, &out.Result.Sentiment); err != nil {
			return fmt.Errorf("sentiment payload: %w", err)
		}
	case TaskNER:
		if err := json.Unmarshal(aux.Result, &out.Result.Entities); err != nil {
			return fmt.Errorf("ner payload: %w", err)
		}
	default:
		return fmt.Errorf("cannot unmarshal result with unknown task %q", aux.Task)
	}

	*r = out
	return nil
}

// Statistics holds aggregate counts over the store.
type Statistics struct {
	TotalSamples      int            `json:"total_samples"`
	TotalResults      int            `json:"total_results"`
	ResultsByTask     map[Task]int   `json:"results_by_task"`
	SamplesByLanguage map[string]int `json:"samples_by_language"`
}
