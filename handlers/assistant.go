package handlers

import (
	"net/http"
	"strings"

	"medichat/models"
	"medichat/services/assistant"
	"medichat/utils"

	"github.com/gin-gonic/gin"
)

// AssistantHandler exposes the conversational turn endpoint.
type AssistantHandler struct {
	Service assistant.AssistantService
}

func NewAssistantHandler(svc assistant.AssistantService) *AssistantHandler {
	return &AssistantHandler{Service: svc}
}

// ExecuteTurn handles one inbound conversational turn. The service never
// propagates a fault, so every valid request gets a 200 with a well-formed
// turn response, error turns included.
func (h *AssistantHandler) ExecuteTurn(c *gin.Context) {
	var req models.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if req.UserID <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", "user_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", "message is required")
		return
	}

	resp := h.Service.ProcessTurn(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}

// HealthHandler reports service liveness plus the latest dependency snapshot.
func (h *AssistantHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      "appointment-assistant",
		"dependencies": utils.GetHealthStatus(),
	})
}
