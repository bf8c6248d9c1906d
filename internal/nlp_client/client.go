package nlp_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"textproc/internal/apperrors"
	"textproc/internal/models"
)

// Client is a client for the NLP pipeline serving API. It implements
// nlp.Engine over HTTP: every pipeline call is one synchronous POST against
// the serving service, which hosts the pretrained models.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ZeroShotRequest represents a zero-shot classification request.
type ZeroShotRequest struct {
	Text            string   `json:"text"`
	CandidateLabels []string `json:"candidate_labels"`
}

// ZeroShotResponse represents the ranked classification result.
type ZeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// TextRequest represents a single-text request for sentiment and NER.
type TextRequest struct {
	Text string `json:"text"`
}

// SentimentResponse represents the sentiment result.
type SentimentResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NERResponse represents the extracted entities.
type NERResponse struct {
	Entities []NEREntity `json:"entities"`
}

// NEREntity represents one entity span in a NER response.
type NEREntity struct {
	Word   string  `json:"word"`
	Entity string  `json:"entity"`
	Score  float64 `json:"score"`
}

// HealthResponse represents the serving service health check response.
type HealthResponse struct {
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
	Device       string `json:"device"`
	Message      string `json:"message"`
}

// ModelInfo represents information about the models hosted by the service.
type ModelInfo struct {
	ServiceName string            `json:"service_name"`
	Version     string            `json:"version"`
	Models      map[string]string `json:"models"`
	Device      string            `json:"device"`
	MaxLength   int               `json:"max_length"`
}

// NewClient creates a new NLP serving client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Classify runs zero-shot classification against the serving service.
func (c *Client) Classify(ctx context.Context, text string, labels []string) ([]models.LabelScore, error) {
	var resp ZeroShotResponse
	err := c.post(ctx, "/api/v1/pipeline/zero-shot", ZeroShotRequest{Text: text, CandidateLabels: labels}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Labels) != len(resp.Scores) {
		return nil, fmt.Errorf("%w: zero-shot response has %d labels but %d scores",
			apperrors.ErrExternalCapability, len(resp.Labels), len(resp.Scores))
	}

	ranked := make([]models.LabelScore, 0, len(resp.Labels))
	for i, label := range resp.Labels {
		ranked = append(ranked, models.LabelScore{Label: label, Score: resp.Scores[i]})
	}
	return ranked, nil
}

// Sentiment runs sentiment analysis against the serving service.
func (c *Client) Sentiment(ctx context.Context, text string) (*models.LabelScore, error) {
	var resp SentimentResponse
	if err := c.post(ctx, "/api/v1/pipeline/sentiment", TextRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &models.LabelScore{Label: resp.Label, Score: resp.Score}, nil
}

// Entities runs named entity recognition against the serving service.
func (c *Client) Entities(ctx context.Context, text string) ([]models.Entity, error) {
	var resp NERResponse
	if err := c.post(ctx, "/api/v1/pipeline/ner", TextRequest{Text: text}, &resp); err != nil {
		return nil, err
	}

	entities := make([]models.Entity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		entities = append(entities, models.Entity{
			TextSpan:   e.Word,
			EntityType: e.Entity,
			Score:      e.Score,
		})
	}
	return entities, nil
}

// HealthCheck checks if the serving service is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/api/v1/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetModelInfo retrieves information about the loaded models.
func (c *Client) GetModelInfo(ctx context.Context) (*ModelInfo, error) {
	var resp ModelInfo
	if err := c.get(ctx, "/api/v1/model/info", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, out interface{}) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", apperrors.ErrExternalCapability, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", apperrors.ErrExternalCapability, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", apperrors.ErrExternalCapability, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to send request: %v", apperrors.ErrExternalCapability, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: NLP service returned status %d: %s",
			apperrors.ErrExternalCapability, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", apperrors.ErrExternalCapability, err)
	}
	return nil
}
