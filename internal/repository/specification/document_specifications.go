package specification

import (
	"case-portal-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByCaseID struct {
	CaseID uuid.UUID
}

func (s ByCaseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("case_id = ?", s.CaseID)
}

// ByObject matches the row that points at one stored object.
type ByObject struct {
	Bucket string
	Path   string
}

func (s ByObject) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("bucket_name = ? AND storage_path = ?", s.Bucket, s.Path)
}

type ByDocumentStatus struct {
	Status entity.DocumentStatus
}

func (s ByDocumentStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type ByCaseIDs struct {
	CaseIDs []uuid.UUID
}

func (s ByCaseIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("case_id IN ?", s.CaseIDs)
}
