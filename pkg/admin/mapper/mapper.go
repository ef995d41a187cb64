package mapper

import (
	"case-portal-be/internal/dto"
	"case-portal-be/internal/entity"
)

// UserToResponse converts entity to response DTO
func UserToResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		StaffRole: u.StaffRole,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

func UsersToResponse(users []*entity.User) []dto.UserResponse {
	res := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, UserToResponse(u))
	}
	return res
}

func CaseToResponse(c *entity.Case) dto.CaseResponse {
	return dto.CaseResponse{
		Id:              c.Id,
		Title:           c.Title,
		Description:     c.Description,
		ClientId:        c.ClientId,
		AssignedStaffId: c.AssignedStaffId,
		Status:          string(c.Status),
		CreatedAt:       c.CreatedAt,
	}
}

func CasesToResponse(cases []*entity.Case) []dto.CaseResponse {
	res := make([]dto.CaseResponse, 0, len(cases))
	for _, c := range cases {
		res = append(res, CaseToResponse(c))
	}
	return res
}

func DocumentToResponse(d *entity.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		Id:          d.Id,
		CaseId:      d.CaseId,
		Filename:    d.Filename,
		MimeType:    d.MimeType,
		Size:        d.Size,
		BucketName:  d.BucketName,
		StoragePath: d.StoragePath,
		UploadedAt:  d.UploadedAt,
		UploadedBy:  d.UploadedBy,
		Status:      string(d.Status),
		Notes:       d.Notes,
	}
}

func DocumentsToResponse(docs []*entity.Document) []dto.DocumentResponse {
	res := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, DocumentToResponse(d))
	}
	return res
}

func AuditLogToResponse(l *entity.AuditLog) dto.AuditLogResponse {
	return dto.AuditLogResponse{
		Id:           l.Id,
		UserId:       l.UserId,
		Action:       l.Action,
		ResourceType: l.ResourceType,
		ResourceId:   l.ResourceId,
		Details:      l.Details,
		IpAddress:    l.IpAddress,
		Timestamp:    l.Timestamp,
	}
}

func AuditLogsToResponse(logs []*entity.AuditLog) []dto.AuditLogResponse {
	res := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogToResponse(l))
	}
	return res
}
