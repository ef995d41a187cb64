// FILE: internal/dto/case_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCaseRequest struct {
	Title           string     `json:"title" validate:"required,min=3,max=255"`
	Description     string     `json:"description"`
	ClientId        uuid.UUID  `json:"client_id" validate:"required"`
	AssignedStaffId *uuid.UUID `json:"assigned_staff_id"`
}

type CaseResponse struct {
	Id              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	ClientId        uuid.UUID  `json:"client_id"`
	AssignedStaffId *uuid.UUID `json:"assigned_staff_id,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}
