// FILE: internal/dto/document_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentResponse struct {
	Id          uuid.UUID `json:"id"`
	CaseId      uuid.UUID `json:"case_id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	BucketName  string    `json:"bucket_name"`
	StoragePath string    `json:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
}

// UploadResponse distinguishes full success (ai_error empty) from a stored
// document whose AI step failed.
type UploadResponse struct {
	Document       DocumentResponse `json:"document"`
	AiTaskId       string           `json:"ai_task_id,omitempty"`
	AiError        string           `json:"ai_error,omitempty"`
	RetryAvailable bool             `json:"retry_available"`
}

type RetryAIRequest struct {
	Notes string `json:"notes"`
}

type UpdateDocumentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type SignedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
