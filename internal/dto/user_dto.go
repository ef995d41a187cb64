// FILE: internal/dto/user_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	StaffRole *string   `json:"staff_role,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	FullName  string  `json:"full_name" validate:"required,min=2"`
	Role      string  `json:"role" validate:"required,oneof=admin staff client"`
	StaffRole *string `json:"staff_role" validate:"omitempty,max=100"`
}

type UserListQuery struct {
	Role   string `query:"role"`
	Offset int    `query:"offset"`
	Limit  int    `query:"limit"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
}

type DeleteUserResponse struct {
	Id              uuid.UUID `json:"id"`
	SessionsRevoked int       `json:"sessions_revoked"`
}
