package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/models"
)

type contextKey string

const SessionContextKey contextKey = "session"

func GetSession(c *gin.Context) *models.Session {
	session, exists := c.Get(string(SessionContextKey))
	if !exists {
		return nil
	}
	if s, ok := session.(*models.Session); ok {
		return s
	}
	return nil
}
