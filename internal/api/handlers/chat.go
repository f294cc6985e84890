package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jafarshop/feedshop/internal/config"
)

// HandleChatConfig handles GET /v1/chat/config. The chat widget itself is
// hosted elsewhere; clients only need its app key.
func HandleChatConfig(cfg config.ChatConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AppKey == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat is not configured"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"app_key": cfg.AppKey})
	}
}
