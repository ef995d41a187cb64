package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLog struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserId       *uuid.UUID        `gorm:"type:uuid;index"`
	Action       string            `gorm:"type:varchar(100);not null;index"`
	ResourceType string            `gorm:"type:varchar(100);not null;index"`
	ResourceId   string            `gorm:"type:varchar(255)"`
	Details      datatypes.JSONMap
	IpAddress    string            `gorm:"type:varchar(64)"`
	Timestamp    time.Time         `gorm:"not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.Id == uuid.Nil {
		a.Id = uuid.New()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	return nil
}
