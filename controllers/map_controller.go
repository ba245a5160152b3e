package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/services"
	"github.com/snap-point/fieldtrack/utils"
)

type MapController struct {
	Tracker *services.Tracker
	Builder *services.MapBuilder
}

func NewMapController(tracker *services.Tracker, builder *services.MapBuilder) *MapController {
	return &MapController{Tracker: tracker, Builder: builder}
}

// GetSessionMap godoc
// @Summary Upload markers and route lines as GeoJSON
// @Tags map
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /sessions/{sessionId}/map [get]
func (mc *MapController) GetSessionMap(c *gin.Context) {
	session := utils.GetSession(c)

	uploads, err := mc.Tracker.SessionUploads(c.Request.Context(), session.ID, "")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mc.Builder.Build(c.Request.Context(), uploads))
}
