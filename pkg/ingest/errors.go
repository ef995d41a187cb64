package ingest

import "fmt"

type Kind string

const (
	KindValidation Kind = "validation"
	KindSession    Kind = "session"
	KindStorage    Kind = "storage"
	KindMetadata   Kind = "metadata"
	KindNotFound   Kind = "not_found"
)

const (
	msgSessionExpired   = "Your session has expired. Please log in again."
	msgRetriesDisabled  = "AI retries are disabled until you sign in again."
	msgMetadataFailed   = "Failed to save document metadata."
	msgDocumentNotFound = "Document not found."
)

// Error is a total failure of an ingestion call. Message is safe to show users.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func sessionError(cause error) *Error {
	return &Error{Kind: KindSession, Message: msgSessionExpired, Cause: cause}
}
