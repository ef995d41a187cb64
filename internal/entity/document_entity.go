package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusApproved, DocumentStatusRejected:
		return true
	}
	return false
}

// Document is the metadata row for one stored object. BucketName and
// StoragePath always name an object that exists.
type Document struct {
	Id          uuid.UUID
	CaseId      uuid.UUID
	Filename    string
	MimeType    string
	Size        int64
	BucketName  string
	StoragePath string
	UploadedAt  time.Time
	UploadedBy  uuid.UUID
	Status      DocumentStatus
	Notes       string
	UpdatedAt   time.Time
}
