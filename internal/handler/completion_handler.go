package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hpn/promptpal/internal/adapter"
	"github.com/hpn/promptpal/internal/domain"
)

// CompleteRequest is the body of POST /v1/complete.
type CompleteRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	APIKey string `json:"api_key"`
}

// CompleteResponse is returned when a completion succeeds.
type CompleteResponse struct {
	Text     string              `json:"text"`
	Provider domain.ProviderType `json:"provider"`
	Model    string              `json:"model"`
}

// CompletionHandler serves chat completions and the model catalog.
type CompletionHandler struct {
	completer    adapter.ChatCompleter
	models       []domain.ModelOption
	defaultModel string
	logger       *slog.Logger
}

// CompletionHandlerOption is a functional option for configuring CompletionHandler.
type CompletionHandlerOption func(*CompletionHandler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) CompletionHandlerOption {
	return func(h *CompletionHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithModels replaces the built-in model catalog and default selection.
func WithModels(models []domain.ModelOption, defaultModel string) CompletionHandlerOption {
	return func(h *CompletionHandler) {
		if len(models) > 0 {
			h.models = models
		}
		if defaultModel != "" {
			h.defaultModel = defaultModel
		}
	}
}

// NewCompletionHandler creates a new CompletionHandler.
func NewCompletionHandler(completer adapter.ChatCompleter, opts ...CompletionHandlerOption) *CompletionHandler {
	h := &CompletionHandler{
		completer:    completer,
		models:       domain.DefaultModels(),
		defaultModel: domain.DefaultModel,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// HandleComplete handles POST /v1/complete.
// The API key may be sent in the body or as an Authorization bearer token.
func (h *CompletionHandler) HandleComplete(c *gin.Context) {
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if req.APIKey == "" {
		req.APIKey = bearerToken(c.GetHeader("Authorization"))
	}
	if req.Model == "" {
		req.Model = h.defaultModel
	}

	c.Set(ctxModel, req.Model)

	result := h.completer.Complete(c.Request.Context(), req.Prompt, req.Model, req.APIKey)
	c.Set(ctxProvider, string(result.Provider))

	if !result.OK() {
		sendError(c, result.Err)
		return
	}

	c.JSON(http.StatusOK, CompleteResponse{
		Text:     result.Text,
		Provider: result.Provider,
		Model:    req.Model,
	})
}

// HandleModels handles GET /v1/models.
func (h *CompletionHandler) HandleModels(c *gin.Context) {
	data := make([]gin.H, len(h.models))
	for i, m := range h.models {
		data[i] = gin.H{
			"label":    m.Label,
			"value":    m.Value,
			"provider": m.Provider(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"object":  "list",
		"default": h.defaultModel,
		"data":    data,
	})
}

// HandleHealth handles GET /health.
func (h *CompletionHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"models": len(h.models),
	})
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header value.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
