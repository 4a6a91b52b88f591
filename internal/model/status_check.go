package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusCheck records a client checking in.
type StatusCheck struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientName string    `gorm:"type:varchar(255);not null" json:"client_name"`
	Timestamp  time.Time `gorm:"column:checked_at;not null" json:"timestamp"`
}

func (StatusCheck) TableName() string {
	return "status_checks"
}

func (s *StatusCheck) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
