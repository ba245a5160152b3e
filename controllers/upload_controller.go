package controllers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snap-point/fieldtrack/models"
	"github.com/snap-point/fieldtrack/services"
	"github.com/snap-point/fieldtrack/types"
	"github.com/snap-point/fieldtrack/utils"
)

type UploadController struct {
	Tracker *services.Tracker
	Rules   services.FileRules
}

func NewUploadController(tracker *services.Tracker, rules services.FileRules) *UploadController {
	return &UploadController{Tracker: tracker, Rules: rules}
}

// CreateUpload godoc
// @Summary Submit files from the current location
// @Description Files failing validation are excluded and listed in rejectedFiles.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param files formData file true "One or more files"
// @Param remark formData string false "Free-text remark"
// @Success 201 {object} StandardResponse
// @Router /sessions/{sessionId}/uploads [post]
func (uc *UploadController) CreateUpload(c *gin.Context) {
	session := utils.GetSession(c)

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	var remark string
	var selected []*multipart.FileHeader
	if form != nil {
		selected = form.File["files"]
		if v := form.Value["remark"]; len(v) > 0 {
			remark = v[0]
		}
	}

	accepted, rejected := uc.Rules.Validate(selected)
	if len(accepted) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         services.MsgNoFiles,
			"rejectedFiles": rejected,
		})
		return
	}

	upload, err := uc.Tracker.SubmitUpload(c.Request.Context(), session.ID, accepted, remark)
	if err != nil {
		respondError(c, err)
		return
	}
	uc.attachURLs(c, upload)

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data: gin.H{
			"upload":        upload,
			"rejectedFiles": rejected,
		},
		Message: "Upload submitted for review",
	})
}

func (uc *UploadController) ListSessionUploads(c *gin.Context) {
	session := utils.GetSession(c)
	var query types.SessionUploadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	uploads, err := uc.Tracker.SessionUploads(ctx, session.ID, models.UploadStatus(query.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	counts, err := uc.Tracker.Counts(ctx, session.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range uploads {
		uc.attachURLs(c, &uploads[i])
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    uploads,
		Meta:    counts,
	})
}

// GetUpload returns one upload with its files for the detail viewer.
func (uc *UploadController) GetUpload(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	upload, err := uc.Tracker.GetUpload(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	uc.attachURLs(c, upload)

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: upload})
}

// DownloadFile redirects to the storage URL when there is one and streams the
// bytes otherwise.
func (uc *UploadController) DownloadFile(c *gin.Context) {
	uploadID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseUintParam(c, "fileId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	url, err := uc.Tracker.FileURL(ctx, uploadID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	if url != "" {
		c.Redirect(http.StatusFound, url)
		return
	}

	file, body, err := uc.Tracker.OpenFile(ctx, uploadID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", file.FileName),
	})
}

func (uc *UploadController) attachURLs(c *gin.Context, u *models.Upload) {
	for i := range u.Files {
		f := &u.Files[i]
		url, err := uc.Tracker.Files.DownloadURL(c.Request.Context(), f.StorageKey)
		if err != nil {
			log.Printf("download url for %s: %v", f.StorageKey, err)
		}
		if url == "" {
			url = fmt.Sprintf("/api/uploads/%d/files/%d", u.ID, f.ID)
		}
		f.URL = url
	}
}
