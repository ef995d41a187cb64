// FILE: internal/dto/ai_dto.go
package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type GenerateDocumentRequest struct {
	CaseId       uuid.UUID `json:"case_id" validate:"required"`
	DocumentType string    `json:"document_type" validate:"required,max=100"`
	Instructions string    `json:"instructions" validate:"max=5000"`
}

type AiTaskResponse struct {
	TaskId string `json:"task_id"`
}

type AiTaskStatusResponse struct {
	TaskId       string          `json:"task_id"`
	Status       string          `json:"status"`
	Details      string          `json:"details,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
}
