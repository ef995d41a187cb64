package entity

import (
	"time"

	"github.com/google/uuid"
)

type CaseStatus string

const (
	CaseStatusOpen   CaseStatus = "open"
	CaseStatusClosed CaseStatus = "closed"
)

type Case struct {
	Id              uuid.UUID
	Title           string
	Description     string
	ClientId        uuid.UUID
	AssignedStaffId *uuid.UUID
	Status          CaseStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AccessibleBy reports whether a user with the given role may read or add documents.
func (c *Case) AccessibleBy(userId uuid.UUID, role UserRole) bool {
	switch role {
	case UserRoleAdmin, UserRoleStaff:
		return true
	case UserRoleClient:
		return c.ClientId == userId
	}
	return false
}
