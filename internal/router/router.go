package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/linguaflow/tutor-apiserver/internal/handler"
	"github.com/linguaflow/tutor-apiserver/internal/middleware"
)

// Setup registers all routes.
func Setup(
	h *server.Hertz,
	chatHandler *handler.ChatHandler,
	speechHandler *handler.SpeechHandler,
	sessionHandler *handler.SessionHandler,
	feedbackHandler *handler.FeedbackHandler,
	healthHandler *handler.HealthHandler,
) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger())
	h.Use(middleware.CORS())

	// Health probes
	h.GET("/ping", healthHandler.Ping)
	h.GET("/health/ready", healthHandler.Readiness)
	h.GET("/health/live", healthHandler.Liveness)

	// API v1 routes
	apiV1 := h.Group("/api/v1")
	{
		// Tutor chat
		chat := apiV1.Group("/chat")
		{
			chat.POST("", chatHandler.Chat)
			chat.POST("/stream", chatHandler.StreamChat)
		}

		// Speech synthesis relay
		speech := apiV1.Group("/speech")
		{
			speech.POST("", speechHandler.Synthesize)
			speech.POST("/stream", speechHandler.SynthesizeStream)
		}

		// Session lifecycle and history
		sessions := apiV1.Group("/sessions")
		{
			sessions.GET("/:id/messages", sessionHandler.History)
			sessions.POST("/:id/abandon", sessionHandler.Abandon)
			sessions.POST("/:id/complete", sessionHandler.Complete)
		}
		apiV1.GET("/users/:id/sessions", sessionHandler.ListByUser)

		// Feedback
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}
}
