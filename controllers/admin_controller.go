package controllers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/snap-point/fieldtrack/models"
	"github.com/snap-point/fieldtrack/services"
	"github.com/snap-point/fieldtrack/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type AdminController struct {
	Tracker *services.Tracker
	Hub     *services.EventHub
}

func NewAdminController(tracker *services.Tracker, hub *services.EventHub) *AdminController {
	return &AdminController{Tracker: tracker, Hub: hub}
}

// ListUploads godoc
// @Summary List uploads for review
// @Tags admin
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param sessionId query string false "Restrict to one session"
// @Param page query integer false "Page number (default: 1)"
// @Param pageSize query integer false "Items per page (default: 20, max: 100)"
// @Success 200 {object} StandardResponse
// @Router /admin/uploads [get]
func (ac *AdminController) ListUploads(c *gin.Context) {
	var query types.AdminUploadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uploads, total, err := ac.Tracker.ListUploads(c.Request.Context(), services.UploadFilter{
		SessionID: query.SessionID,
		Status:    models.UploadStatus(query.Status),
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       uploads,
		Pagination: newPagination(query.Page, query.PageSize, total),
	})
}

func (ac *AdminController) GetStats(c *gin.Context) {
	counts, err := ac.Tracker.Counts(c.Request.Context(), c.Query("sessionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: counts})
}

func (ac *AdminController) ApproveUpload(c *gin.Context) {
	ac.review(c, models.StatusApproved)
}

func (ac *AdminController) RejectUpload(c *gin.Context) {
	ac.review(c, models.StatusRejected)
}

func (ac *AdminController) review(c *gin.Context, to models.UploadStatus) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req types.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upload, err := ac.Tracker.Review(c.Request.Context(), id, to, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    upload,
		Message: fmt.Sprintf("Upload %s", to),
	})
}

// ExportUploads streams every matching upload as an XLSX workbook.
func (ac *AdminController) ExportUploads(c *gin.Context) {
	var query types.SessionUploadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uploads, _, err := ac.Tracker.ListUploads(c.Request.Context(), services.UploadFilter{
		SessionID: c.Query("sessionId"),
		Status:    models.UploadStatus(query.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("uploads_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := services.ExportUploads(c.Writer, uploads); err != nil {
		log.Printf("export uploads: %v", err)
	}
}

// Feed upgrades to a websocket that receives upload.created and upload.reviewed events.
func (ac *AdminController) Feed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Print("Upgrade error:", err)
		return
	}

	client := &services.Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	ac.Hub.Register(client)

	go ac.Hub.ReadPump(client)
	go ac.Hub.WritePump(client)
}
