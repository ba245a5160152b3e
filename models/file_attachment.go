package models

import (
	"time"

	"gorm.io/gorm"
)

// FileAttachment is one file submitted with an upload.
type FileAttachment struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	UploadID    uint           `gorm:"not null;index" json:"uploadId"`
	FileName    string         `gorm:"size:255;not null" json:"fileName"`
	StorageKey  string         `gorm:"size:512;not null" json:"-"`
	ContentType string         `gorm:"size:100" json:"contentType"`
	Size        int64          `json:"size"`
	OrderIndex  int            `gorm:"default:0" json:"orderIndex"`
	URL         string         `gorm:"-" json:"url,omitempty"`
}
