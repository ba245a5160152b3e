package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session owns one field worker's upload trail. It replaces the page-global
// state of the browser demo.
type Session struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Label     string         `gorm:"size:120" json:"label"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Uploads   []Upload       `gorm:"foreignKey:SessionID" json:"uploads,omitempty"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// AutoMigrate creates or updates every table the service needs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Session{}, &Upload{}, &FileAttachment{})
}
