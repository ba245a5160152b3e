package types

import (
	"github.com/snap-point/fieldtrack/geo"
	"github.com/snap-point/fieldtrack/models"
)

type CreateSessionRequest struct {
	Label string `json:"label" binding:"max=120"`
}

type SessionSummary struct {
	Session      *models.Session     `json:"session"`
	Counts       models.StatusCounts `json:"counts"`
	LastLocation *geo.GeoPoint       `json:"lastLocation"`
	Link         string              `json:"link"`
}

type ReviewRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

type AdminUploadsQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	SessionID string `form:"sessionId"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	PageSize  int    `form:"pageSize,default=20" binding:"min=1,max=100"`
}

type SessionUploadsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}
