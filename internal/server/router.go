// Package server wires the HTTP surface: routing, request binding, and the
// mapping from application errors to response status codes.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/agents-play/server/internal/chat"
	"github.com/agents-play/server/internal/core"
)

// SetupRouter builds the gin engine with all application routes.
func SetupRouter(env core.Environment, controller *chat.Controller) *gin.Engine {
	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	h := newChatHandlers(controller)

	r.GET("/health", handleHealth)

	llm := r.Group("/llm")
	{
		llm.GET("/chats/messages", h.listChatMessages)
		llm.POST("/chats", h.createChatMessage)
	}

	return r
}

func handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"detail": "OK"})
}
