package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaseOwnedBy struct {
	ClientID uuid.UUID
}

func (s CaseOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("client_id = ?", s.ClientID)
}

type CaseAssignedTo struct {
	StaffID uuid.UUID
}

func (s CaseAssignedTo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("assigned_staff_id = ?", s.StaffID)
}
