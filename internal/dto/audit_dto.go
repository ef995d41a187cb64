// FILE: internal/dto/audit_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type AuditLogQuery struct {
	UserId       string `query:"user_id"`
	Action       string `query:"action"`
	ResourceType string `query:"resource_type"`
	Start        string `query:"start"` // RFC3339
	End          string `query:"end"`
	Offset       int    `query:"offset"`
	Limit        int    `query:"limit"`
}

type AuditLogResponse struct {
	Id           uuid.UUID              `json:"id"`
	UserId       *uuid.UUID             `json:"user_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceId   string                 `json:"resource_id"`
	Details      map[string]interface{} `json:"details,omitempty"`
	IpAddress    string                 `json:"ip_address,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
}

// Log ids are MD5 hashes of the line, not UUIDs.
type LogListResponse struct {
	Id        string `json:"id"`
	Level     string `json:"level"`
	Module    string `json:"module"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}

type DashboardStats struct {
	Users            int64 `json:"users"`
	OpenCases        int64 `json:"open_cases"`
	Documents        int64 `json:"documents"`
	PendingDocuments int64 `json:"pending_documents"`
}
