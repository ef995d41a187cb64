package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Case struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title           string     `gorm:"type:varchar(255);not null"`
	Description     string     `gorm:"type:text"`
	ClientId        uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssignedStaffId *uuid.UUID `gorm:"type:uuid;index"`
	Status          string     `gorm:"type:varchar(50);not null;default:'open'"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Case) TableName() string {
	return "cases"
}

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}
