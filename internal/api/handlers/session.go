package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/session"
)

// CreateSessionResponse carries the credentials of a new session. The token
// is shown only once.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

// HandleCreateSession handles POST /v1/sessions
func HandleCreateSession(sessions *session.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, token, err := sessions.Create()
		if err != nil {
			logger.Error("Failed to create session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, CreateSessionResponse{
			SessionID: sess.ID.String(),
			Token:     token,
		})
	}
}

// HandleDeleteSession handles DELETE /v1/session
func HandleDeleteSession(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		sessions.Delete(sess.ID)
		c.Status(http.StatusNoContent)
	}
}
