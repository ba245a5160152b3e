package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/snap-point/fieldtrack/geo"
	"gorm.io/gorm"
)

type UploadStatus string

const (
	StatusPending  UploadStatus = "pending"
	StatusApproved UploadStatus = "approved"
	StatusRejected UploadStatus = "rejected"
)

var ErrInvalidTransition = errors.New("invalid status transition")

func (s UploadStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether an admin has already decided on the upload.
func (s UploadStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Upload struct {
	ID                   uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID            string           `json:"sessionId" gorm:"not null;type:varchar(36);uniqueIndex:idx_upload_session_sequence"`
	Sequence             int              `json:"sequence" gorm:"not null;uniqueIndex:idx_upload_session_sequence"`
	Latitude             float64          `json:"latitude" gorm:"not null;type:decimal(10,8)"`
	Longitude            float64          `json:"longitude" gorm:"not null;type:decimal(11,8)"`
	Accuracy             float64          `json:"accuracy"`
	DistanceFromPrevious *float64         `json:"distanceFromPrevious"`
	Remark               string           `json:"remark" gorm:"type:text"`
	Status               UploadStatus     `json:"status" gorm:"not null;default:'pending';type:varchar(10);index"`
	ReviewNote           string           `json:"reviewNote" gorm:"type:text"`
	ReviewedAt           *time.Time       `json:"reviewedAt"`
	Files                []FileAttachment `json:"files" gorm:"foreignKey:UploadID"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
	DeletedAt            gorm.DeletedAt   `json:"-" gorm:"index"`
}

func (u *Upload) Point() geo.GeoPoint {
	return geo.GeoPoint{Latitude: u.Latitude, Longitude: u.Longitude}
}

// Review moves a pending upload to approved or rejected. Decided uploads stay decided.
func (u *Upload) Review(to UploadStatus, note string, at time.Time) error {
	if !to.Terminal() {
		return fmt.Errorf("%w: cannot move to %q", ErrInvalidTransition, to)
	}
	if u.Status != StatusPending {
		return fmt.Errorf("%w: upload %d is already %s", ErrInvalidTransition, u.ID, u.Status)
	}
	u.Status = to
	u.ReviewNote = note
	u.ReviewedAt = &at
	return nil
}

// StatusCounts is the per-status tally shown in the admin panel header.
type StatusCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

func (c *StatusCounts) Add(status UploadStatus, n int64) {
	c.Total += n
	switch status {
	case StatusPending:
		c.Pending += n
	case StatusApproved:
		c.Approved += n
	case StatusRejected:
		c.Rejected += n
	}
}
