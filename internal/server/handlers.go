package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agents-play/server/internal/chat"
	errx "github.com/agents-play/server/internal/core/error"
	logx "github.com/agents-play/server/pkg/logger"
)

type chatHandlers struct {
	controller *chat.Controller
}

func newChatHandlers(controller *chat.Controller) *chatHandlers {
	return &chatHandlers{controller: controller}
}

func (h *chatHandlers) createChatMessage(c *gin.Context) {
	var payload chat.CreateChatMessagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": errx.InvalidPayloadMessage})
		return
	}

	resp, err := h.controller.CreateChatMessage(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *chatHandlers) listChatMessages(c *gin.Context) {
	resp, err := h.controller.ListChatMessages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondError maps application errors to HTTP responses. Internal details
// never leave the process; clients only see the safe message.
func respondError(c *gin.Context, err error) {
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logx.Error().Err(appErr.Err).Int("status", appErr.Status).Msg("Request failed")
		}
		c.JSON(appErr.Status, gin.H{"detail": appErr.Message})
		return
	}

	logx.Error().Err(err).Msg("Unhandled request error")
	c.JSON(http.StatusInternalServerError, gin.H{"detail": errx.SystemErrorMessage})
}
