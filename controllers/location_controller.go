package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/geo"
	"github.com/snap-point/fieldtrack/services"
	"github.com/snap-point/fieldtrack/types"
	"github.com/snap-point/fieldtrack/utils"
)

type LocationController struct {
	Tracker *services.Tracker
}

func NewLocationController(tracker *services.Tracker) *LocationController {
	return &LocationController{Tracker: tracker}
}

// ReportLocation godoc
// @Summary Report a location sample or a sensor failure
// @Description Samples with a sequence number not above the last one seen are discarded.
// @Tags location
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param sample body types.LocationReportRequest true "Sensor answer"
// @Success 200 {object} services.EligibilityReport
// @Router /sessions/{sessionId}/location [post]
func (lc *LocationController) ReportLocation(c *gin.Context) {
	session := utils.GetSession(c)
	var req types.LocationReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reading := services.LocationReading{
		Seq:        req.Seq,
		Accuracy:   req.Accuracy,
		CapturedAt: time.Now().UTC(),
	}
	switch {
	case req.Error != nil:
		reading.Error = &services.SensorError{Code: req.Error.Code, Message: req.Error.Message}
	case req.Latitude != nil && req.Longitude != nil:
		reading.Point = &geo.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude, or error, are required"})
		return
	}

	ctx := c.Request.Context()
	if err := lc.Tracker.RecordLocation(ctx, session.ID, reading); err != nil {
		respondError(c, err)
		return
	}

	report, err := lc.Tracker.Eligibility(ctx, session.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (lc *LocationController) GetEligibility(c *gin.Context) {
	session := utils.GetSession(c)

	report, err := lc.Tracker.Eligibility(c.Request.Context(), session.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
