package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionLogin            = "LOGIN"
	AuditActionLogout           = "LOGOUT"
	AuditActionSetup            = "SETUP_ADMIN"
	AuditActionUserCreated      = "USER_CREATED"
	AuditActionUserDeleted      = "USER_DELETED"
	AuditActionCaseCreated      = "CASE_CREATED"
	AuditActionDocumentUploaded = "DOCUMENT_UPLOADED"
	AuditActionUploadFailed     = "DOCUMENT_UPLOAD_FAILED"
	AuditActionDocumentStatus   = "DOCUMENT_STATUS_CHANGED"
	AuditActionAiParse          = "AI_PARSE_REQUESTED"
	AuditActionAiGenerate       = "AI_GENERATE_REQUESTED"
)

const (
	AuditResourceUser     = "user"
	AuditResourceCase     = "case"
	AuditResourceDocument = "document"
	AuditResourceAiTask   = "ai_task"
)

type AuditLog struct {
	Id           uuid.UUID
	UserId       *uuid.UUID
	Action       string
	ResourceType string
	ResourceId   string
	Details      map[string]interface{}
	IpAddress    string
	Timestamp    time.Time
}
