package ingest

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	caseID := uuid.New()
	nilCase := uuid.Nil

	tests := []struct {
		name     string
		file     FileInput
		caseID   *uuid.UUID
		wantType string
		wantErr  string
	}{
		{name: "pdf", file: FileInput{Filename: "a.pdf", ContentType: "application/pdf", Content: pdfBytes}, caseID: &caseID, wantType: "application/pdf"},
		{name: "params stripped", file: FileInput{Filename: "a.txt", ContentType: "text/plain; charset=utf-8", Content: []byte("hi")}, caseID: &caseID, wantType: "text/plain"},
		{name: "sniffed octet stream", file: FileInput{Filename: "scan", ContentType: "application/octet-stream", Content: pdfBytes}, caseID: &caseID, wantType: "application/pdf"},
		{name: "sniffed empty type", file: FileInput{Filename: "scan", Content: pdfBytes}, caseID: &caseID, wantType: "application/pdf"},
		{name: "zip", file: FileInput{Filename: "a.zip", ContentType: "application/zip", Content: []byte("PK\x03\x04")}, caseID: &caseID, wantErr: "not allowed"},
		{name: "empty", file: FileInput{Filename: "a.pdf", ContentType: "application/pdf"}, caseID: &caseID, wantErr: "empty"},
		{name: "too large", file: FileInput{Filename: "a.pdf", ContentType: "application/pdf", Content: make([]byte, DefaultMaxFileSize+1)}, caseID: &caseID, wantErr: "too large"},
		{name: "no case", file: FileInput{Filename: "a.pdf", ContentType: "application/pdf", Content: pdfBytes}, wantErr: "select a case"},
		{name: "nil case id", file: FileInput{Filename: "a.pdf", ContentType: "application/pdf", Content: pdfBytes}, caseID: &nilCase, wantErr: "select a case"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.file, tt.caseID, 0)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, KindValidation, kindOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got)
		})
	}
}

func TestValidateExactLimit(t *testing.T) {
	caseID := uuid.New()
	_, err := Validate(FileInput{Filename: "a.pdf", ContentType: "application/pdf", Content: make([]byte, DefaultMaxFileSize)}, &caseID, 0)
	assert.NoError(t, err)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "Client_Brief_v2_.pdf", safeName("Client Brief (v2).pdf"))
	assert.Equal(t, "passwd", safeName("../../etc/passwd"))
	assert.Equal(t, "evil.doc", safeName(`C:\Users\me\evil.doc`))
	assert.Equal(t, "file", safeName("..."))

	long := safeName(strings.Repeat("a", 200) + ".pdf")
	assert.Len(t, long, 120)
	assert.True(t, strings.HasSuffix(long, ".pdf"))
}

func TestObjectKeyIsUnique(t *testing.T) {
	caseID := uuid.New()
	a := ObjectKey(caseID, "x.pdf")
	b := ObjectKey(caseID, "x.pdf")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "cases/"+caseID.String()+"/"))
}
