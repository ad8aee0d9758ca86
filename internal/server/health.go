package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and configuration presence. Only booleans, never
// secret values.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"configured": gin.H{
			"gateway":     s.cfg.Gateway.Configured(),
			"chat":        s.cfg.Chat.Configured(),
			"list":        s.cfg.List.Configured(),
			"email":       s.cfg.Email.Configured(),
			"fulfillment": s.cfg.Fulfillment.Configured(),
			"redis":       s.cfg.Redis.Configured(),
			"database":    s.cfg.Database.Configured(),
		},
	})
}
