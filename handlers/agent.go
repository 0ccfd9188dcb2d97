package handlers

import (
	"net/http"

	"radbook/services/agent"
	"radbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AgentSvc is injected at startup.
var AgentSvc agent.AgentService

// ChatHandler streams a booking-agent answer over server-sent events. Events
// carry a type (token, tool_call, tool_result, complete, error) and end with
// a final done event. A client disconnect cancels the request context and
// stops the stream.
func ChatHandler(c *gin.Context) {
	patientID, ok := patientIDFromContext(c)
	if !ok {
		return
	}

	var input struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	emit := func(ev agent.Event) error {
		if err := c.Request.Context().Err(); err != nil {
			return err
		}
		c.SSEvent(ev.Type, ev.Data)
		flusher.Flush()
		return nil
	}

	if err := AgentSvc.StreamChat(c.Request.Context(), patientID, input.Message, emit); err != nil {
		utils.GetLogger().Warn("chat stream ended with error",
			zap.String("patientId", patientID.Hex()), zap.Error(err))
	}

	c.SSEvent("done", "")
	flusher.Flush()
}

// ClearChatHandler drops the patient's stored conversation.
func ClearChatHandler(c *gin.Context) {
	patientID, ok := patientIDFromContext(c)
	if !ok {
		return
	}

	if err := AgentSvc.ClearConversation(c.Request.Context(), patientID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
