package handlers

import (
	"errors"
	"net/http"

	"go-print-erp/internal/ai"
	"go-print-erp/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

type AskResponse struct {
	Reply string `json:"reply"`
}

type AIHandler struct {
	agent *ai.Agent
}

func NewAIHandler(agent *ai.Agent) *AIHandler {
	return &AIHandler{agent: agent}
}

// POST /ask
func (h *AIHandler) Ask(c *gin.Context) {
	var req AskRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.agent.Ask(c.Request.Context(), req.Message)
	if errors.Is(err, ai.ErrNotConfigured) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, middleware.ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "assistant is not configured on this server",
			Error:      "unavailable",
		})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, AskResponse{Reply: reply})
}
