package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/services"
	"github.com/snap-point/fieldtrack/utils"
)

// SessionMiddleware resolves the :sessionId path parameter and stores the
// session in the request context.
func SessionMiddleware(tracker *services.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sessionId")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
			c.Abort()
			return
		}

		session, err := tracker.GetSession(c.Request.Context(), id)
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			c.Abort()
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			c.Abort()
			return
		}

		c.Set(string(utils.SessionContextKey), session)

		c.Next()
	}
}
