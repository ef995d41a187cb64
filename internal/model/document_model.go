package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CaseId      uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename    string    `gorm:"type:varchar(512);not null"`
	MimeType    string    `gorm:"type:varchar(255);not null"`
	Size        int64     `gorm:"not null"`
	BucketName  string    `gorm:"type:varchar(255);not null"`
	StoragePath string    `gorm:"type:varchar(1024);not null;uniqueIndex:idx_documents_object"`
	UploadedAt  time.Time `gorm:"not null;index"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      string    `gorm:"type:varchar(50);not null;default:'pending'"`
	Notes       string    `gorm:"type:text"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.Id == uuid.Nil {
		d.Id = uuid.New()
	}
	return nil
}
