package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(completion *CompletionHandler, flowsHandler *FlowsHandler, logger *slog.Logger) *gin.Engine {
	router := gin.New()

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())
	router.Use(LoggingMiddleware(logger))

	v1 := router.Group("/v1")
	v1.POST("/complete", completion.HandleComplete)
	v1.GET("/models", completion.HandleModels)
	v1.POST("/flows/rewrite-prompt", flowsHandler.HandleRewritePrompt)
	v1.POST("/flows/summarize-expanded-thought", flowsHandler.HandleSummarizeExpandedThought)

	router.GET("/health", completion.HandleHealth)

	return router
}
