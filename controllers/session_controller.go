package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/config"
	"github.com/snap-point/fieldtrack/geo"
	"github.com/snap-point/fieldtrack/services"
	"github.com/snap-point/fieldtrack/types"
	"github.com/snap-point/fieldtrack/utils"
)

type SessionController struct {
	Tracker   *services.Tracker
	PublicURL string
}

func NewSessionController(tracker *services.Tracker, publicURL string) *SessionController {
	return &SessionController{Tracker: tracker, PublicURL: publicURL}
}

func (sc *SessionController) link(id string) string {
	return fmt.Sprintf("%s/api/sessions/%s", sc.PublicURL, id)
}

// CreateSession godoc
// @Summary Start a new upload session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body types.CreateSessionRequest false "Optional label"
// @Success 201 {object} StandardResponse
// @Router /sessions [post]
func (sc *SessionController) CreateSession(c *gin.Context) {
	var req types.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := sc.Tracker.CreateSession(c.Request.Context(), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data: types.SessionSummary{
			Session: session,
			Link:    sc.link(session.ID),
		},
		Message: "Session created successfully",
	})
}

func (sc *SessionController) GetSession(c *gin.Context) {
	session := utils.GetSession(c)
	ctx := c.Request.Context()

	counts, err := sc.Tracker.Counts(ctx, session.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	last, err := sc.Tracker.LastUpload(ctx, session.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	summary := types.SessionSummary{
		Session: session,
		Counts:  counts,
		Link:    sc.link(session.ID),
	}
	if last != nil {
		p := last.Point()
		summary.LastLocation = &p
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: summary})
}

// GetSessionQR returns a PNG QR code pointing at the session.
func (sc *SessionController) GetSessionQR(c *gin.Context) {
	session := utils.GetSession(c)

	png, err := services.SessionQRCode(sc.link(session.ID), 256)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

type ConfigController struct {
	Config *config.Config
}

func NewConfigController(cfg *config.Config) *ConfigController {
	return &ConfigController{Config: cfg}
}

// GetClientConfig publishes the sensor options and file rules the front end must apply.
func (cc *ConfigController) GetClientConfig(c *gin.Context) {
	loc := cc.Config.Location
	up := cc.Config.Upload

	minDistance := up.MinDistance
	if minDistance <= 0 {
		minDistance = geo.MinUploadDistance
	}

	c.JSON(http.StatusOK, types.ClientConfig{
		Sensor: types.SensorOptions{
			EnableHighAccuracy: loc.HighAccuracy,
			TimeoutMs:          loc.SensorTimeout.Milliseconds(),
			MaximumAgeMs:       loc.SensorMaxAge.Milliseconds(),
		},
		MinDistanceMeters: minDistance,
		MaxFileBytes:      up.MaxFileBytes,
		MaxFiles:          up.MaxFilesPerUpload,
		AllowedExtensions: up.AllowedExtensions,
	})
}
