package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/pkg/errors"
)

// AnswerRequest is the user's choice in the confirmation modal
type AnswerRequest struct {
	Confirmed *bool `json:"confirmed" binding:"required"`
}

// HandleGetConfirmation handles GET /v1/session/confirm
func HandleGetConfirmation() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		req, pending := sess.Confirm.Pending()
		if !pending {
			c.JSON(http.StatusOK, gin.H{"pending": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"pending": true, "request": req})
	}
}

// HandleAnswerConfirmation handles POST /v1/session/confirm/:id
func HandleAnswerConfirmation(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}
		id, ok := parseUUIDParam(c, "id", "confirmation")
		if !ok {
			return
		}

		var req AnswerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		if err := sess.Confirm.Answer(id, *req.Confirmed); err != nil {
			writeAnswerError(c, err, logger)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// HandleDismissConfirmation handles DELETE /v1/session/confirm/:id
func HandleDismissConfirmation(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}
		id, ok := parseUUIDParam(c, "id", "confirmation")
		if !ok {
			return
		}

		if err := sess.Confirm.Dismiss(id); err != nil {
			writeAnswerError(c, err, logger)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func writeAnswerError(c *gin.Context, err error, logger *zap.Logger) {
	if errors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "confirmation not found"})
		return
	}
	logger.Error("Failed to answer confirmation", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
