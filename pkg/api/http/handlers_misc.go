package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aescanero/pulse/pkg/domain"
	"github.com/aescanero/pulse/pkg/ports"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Server is running",
		"timestamp": domain.Timestamp(),
	})
}

// handleMe returns the authenticated user's profile
func (s *Server) handleMe(c *gin.Context) {
	userID := c.GetString(userIDKey)

	user, err := s.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// handleDelay responds after the requested delay. Useful for testing
// client timeouts.
func (s *Server) handleDelay(c *gin.Context) {
	ms, err := strconv.Atoi(c.Query("ms"))
	if err != nil || ms < 0 {
		ms = 5000
	}

	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Waited %d ms", ms)})
	case <-c.Request.Context().Done():
		// Client gave up.
	}
}
