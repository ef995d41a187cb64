package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByAction struct {
	Action string
}

func (s ByAction) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("action = ?", s.Action)
}

type ByResourceType struct {
	ResourceType string
}

func (s ByResourceType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("resource_type = ?", s.ResourceType)
}

type ByActor struct {
	UserID uuid.UUID
}

func (s ByActor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// TimestampBetween ignores a zero bound.
type TimestampBetween struct {
	From time.Time
	To   time.Time
}

func (s TimestampBetween) Apply(db *gorm.DB) *gorm.DB {
	if !s.From.IsZero() {
		db = db.Where("timestamp >= ?", s.From)
	}
	if !s.To.IsZero() {
		db = db.Where("timestamp <= ?", s.To)
	}
	return db
}
