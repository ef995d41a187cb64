package ingest

import (
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const DefaultMaxFileSize int64 = 10 * 1024 * 1024

const octetStream = "application/octet-stream"

// AllowedTypes maps accepted MIME types to a short label for messages.
var AllowedTypes = map[string]string{
	"application/pdf":    "PDF",
	"application/msword": "DOC",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "DOCX",
	"application/vnd.ms-excel": "XLS",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "XLSX",
	"image/jpeg": "JPEG",
	"image/png":  "PNG",
	"text/plain": "TXT",
	"text/csv":   "CSV",
}

type FileInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (f FileInput) Size() int64 { return int64(len(f.Content)) }

// Validate checks the file and case without touching the network. It returns
// the MIME type the file will be stored under.
func Validate(file FileInput, caseID *uuid.UUID, maxSize int64) (string, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	contentType := normalize(file.ContentType)
	if contentType == "" || contentType == octetStream {
		contentType = normalize(mimetype.Detect(file.Content).String())
	}
	if _, ok := AllowedTypes[contentType]; !ok {
		return "", validationError(fmt.Sprintf("File type %q is not allowed. Allowed types: PDF, Word, Excel, JPEG, PNG, TXT, CSV.", contentType))
	}

	size := file.Size()
	if size == 0 {
		return "", validationError("File is empty.")
	}
	if size > maxSize {
		return "", validationError(fmt.Sprintf("File is too large (%d bytes). Maximum size is %d MB.", size, maxSize/(1024*1024)))
	}

	if caseID == nil || *caseID == uuid.Nil {
		return "", validationError("Please select a case for this document.")
	}
	if strings.TrimSpace(file.Filename) == "" {
		return "", validationError("File name is required.")
	}
	return contentType, nil
}

func normalize(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// safeName keeps the base name readable inside an object key.
func safeName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "file"
	}
	if len(base) > 120 {
		ext := filepath.Ext(base)
		if len(ext) > 20 {
			ext = ""
		}
		base = base[:120-len(ext)] + ext
	}
	return base
}
