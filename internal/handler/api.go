package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"textproc/internal/apperrors"
	"textproc/internal/models"
	"textproc/internal/nlp_client"
	"textproc/internal/processor"
	"textproc/internal/store"
)

// EngineStatus exposes the serving backend's health and model info. Satisfied
// by nlp_client.Client.
type EngineStatus interface {
	HealthCheck(ctx context.Context) (*nlp_client.HealthResponse, error)
	GetModelInfo(ctx context.Context) (*nlp_client.ModelInfo, error)
}

// Handler handles HTTP requests.
type Handler struct {
	processor *processor.Processor
	store     *store.Store
	engine    EngineStatus
	logger    *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(proc *processor.Processor, st *store.Store, engine EngineStatus, logger *zap.Logger) *Handler {
	return &Handler{
		processor: proc,
		store:     st,
		engine:    engine,
		logger:    logger,
	}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Processing endpoints
		api.POST("/process/classify", h.ProcessClassify)
		api.POST("/process/sentiment", h.ProcessSentiment)
		api.POST("/process/ner", h.ProcessNER)

		// Sample and result retrieval
		api.POST("/samples", h.AddSample)
		api.GET("/samples", h.GetSamples)
		api.GET("/results", h.GetResults)
		api.GET("/stats", h.GetStats)
		api.GET("/languages", h.GetLanguages)
		api.DELETE("/store", h.ResetStore)

		// Serving backend passthrough
		api.GET("/engine/health", h.EngineHealth)
		api.GET("/engine/info", h.EngineInfo)
	}

	// Health check
	r.GET("/health", h.HealthCheck)
}

// ClassifyRequest is the body of POST /api/v1/process/classify.
type ClassifyRequest struct {
	Text            string   `json:"text"`
	CandidateLabels []string `json:"candidate_labels"`
	Language        string   `json:"language"`
}

// ProcessClassify handles zero-shot classification requests.
func (h *Handler) ProcessClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.processor.ClassifyText(c.Request.Context(), req.Text, req.CandidateLabels, req.Language)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// TextRequest is the body of the sentiment and NER endpoints.
type TextRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// ProcessSentiment handles sentiment analysis requests.
func (h *Handler) ProcessSentiment(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.processor.AnalyzeSentiment(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ProcessNER handles entity extraction requests.
func (h *Handler) ProcessNER(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.processor.ExtractEntities(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// AddSampleRequest is the body of POST /api/v1/samples.
type AddSampleRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Category string `json:"category"`
}

// AddSample handles POST /api/v1/samples.
func (h *Handler) AddSample(c *gin.Context) {
	var req AddSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sample, err := h.store.AddSample(req.Text, req.Language, req.Category)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sample)
}

// GetSamples handles GET /api/v1/samples.
// Query parameters:
// - language: filter by language (optional)
// - category: filter by category (optional)
func (h *Handler) GetSamples(c *gin.Context) {
	language := c.Query("language")
	category := c.Query("category")

	samples, err := h.store.GetSamples(language, category)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

// GetResults handles GET /api/v1/results.
// Query parameters:
// - task: filter by task (optional, must be one of the closed task values)
// - language: filter by language (optional)
func (h *Handler) GetResults(c *gin.Context) {
	task := models.Task(c.Query("task"))
	language := c.Query("language")

	if task != "" && !task.Valid() {
		h.writeError(c, fmt.Errorf("%w: unknown task %q", apperrors.ErrValidation, task))
		return
	}

	results, err := h.store.GetResults(task, language)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetStats handles GET /api/v1/stats.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.processor.Statistics()
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetLanguages handles GET /api/v1/languages.
func (h *Handler) GetLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": h.processor.AvailableLanguages()})
}

// ResetStore handles DELETE /api/v1/store. Destructive: replaces the whole
// backing file with a freshly seeded one.
func (h *Handler) ResetStore(c *gin.Context) {
	if err := h.store.Reset(); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Store reset successfully"})
}

// EngineHealth proxies the serving backend's health check.
func (h *Handler) EngineHealth(c *gin.Context) {
	health, err := h.engine.HealthCheck(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, health)
}

// EngineInfo proxies the serving backend's model info.
func (h *Handler) EngineInfo(c *gin.Context) {
	info, err := h.engine.GetModelInfo(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps the error taxonomy onto HTTP statuses. Errors are surfaced
// with their message; none are converted into an empty success.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInput) || errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrExternalCapability):
		h.logger.Error("External capability failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
