package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hpn/promptpal/internal/flows"
)

// FlowRunner runs the prompt helper flows.
type FlowRunner interface {
	RewritePrompt(ctx context.Context, in flows.RewritePromptInput) (flows.RewritePromptOutput, error)
	SummarizeExpandedThought(ctx context.Context, in flows.SummarizeExpandedThoughtInput) (flows.SummarizeExpandedThoughtOutput, error)
}

var _ FlowRunner = (*flows.Runner)(nil)

// FlowsHandler exposes the flows over HTTP. A nil runner means no flows backend is configured.
type FlowsHandler struct {
	runner FlowRunner
	logger *slog.Logger
}

// NewFlowsHandler creates a FlowsHandler. runner may be nil.
func NewFlowsHandler(runner FlowRunner, logger *slog.Logger) *FlowsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlowsHandler{runner: runner, logger: logger}
}

// HandleRewritePrompt handles POST /v1/flows/rewrite-prompt.
func (h *FlowsHandler) HandleRewritePrompt(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var in flows.RewritePromptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		sendBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	c.Set(ctxModel, in.Model)

	out, err := h.runner.RewritePrompt(c.Request.Context(), in)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// HandleSummarizeExpandedThought handles POST /v1/flows/summarize-expanded-thought.
func (h *FlowsHandler) HandleSummarizeExpandedThought(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var in flows.SummarizeExpandedThoughtInput
	if err := c.ShouldBindJSON(&in); err != nil {
		sendBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	out, err := h.runner.SummarizeExpandedThought(c.Request.Context(), in)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlowsHandler) available(c *gin.Context) bool {
	if h.runner != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, errorBody(
		"Prompt flows are not configured. Set flows.api_key or GEMINI_API_KEY.",
		"flows_unavailable",
		0,
	))
	return false
}
