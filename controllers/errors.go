package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/geo"
	"github.com/snap-point/fieldtrack/models"
	"github.com/snap-point/fieldtrack/services"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var gateErr *services.GateError
	var locErr *services.LocationError

	switch {
	case errors.As(err, &gateErr):
		e := gateErr.Eligibility
		c.JSON(http.StatusConflict, gin.H{
			"error": gateErr.Error(),
			"hint":  e.Hint(),
			"distance": gin.H{
				"current":   e.DistanceMeters,
				"minimum":   e.MinimumMeters,
				"remaining": e.RemainingMeters,
			},
		})
	case errors.As(err, &locErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": locErr.Message(), "code": locErr.Sensor.Code})
	case errors.Is(err, services.ErrNoLocation):
		c.JSON(http.StatusBadRequest, gin.H{"error": services.MsgNoLocation})
	case errors.Is(err, services.ErrNoFiles):
		c.JSON(http.StatusBadRequest, gin.H{"error": services.MsgNoFiles})
	case errors.Is(err, geo.ErrInvalidCoordinates):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStaleReading):
		c.JSON(http.StatusConflict, gin.H{"error": "A newer location sample was already received", "stale": true})
	case errors.Is(err, services.ErrUploadConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Another upload was just recorded for this session, please retry"})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, services.ErrUploadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
	case errors.Is(err, services.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}
