package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/pkg/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantMsg    string
		wantRedir  string
		wantErrors map[string]string
	}{
		{name: "app error", err: apperror.Forbidden("You do not have access to this case"), wantCode: 403, wantMsg: "You do not have access to this case"},
		{name: "wrapped app error", err: fmt.Errorf("ctx: %w", apperror.NotFound("Document not found")), wantCode: 404, wantMsg: "Document not found"},
		{name: "fiber error", err: fiber.ErrRequestEntityTooLarge, wantCode: 413, wantMsg: "Request Entity Too Large"},
		{name: "validation", err: &ValidationError{Fields: map[string]string{"Email": "is required"}}, wantCode: 400, wantMsg: "Validation failed", wantErrors: map[string]string{"Email": "is required"}},
		{name: "ingest validation", err: &ingest.Error{Kind: ingest.KindValidation, Message: "File is empty."}, wantCode: 400, wantMsg: "File is empty."},
		{name: "ingest session", err: &ingest.Error{Kind: ingest.KindSession, Message: "expired"}, wantCode: 401, wantMsg: "expired", wantRedir: "/"},
		{name: "ingest storage", err: &ingest.Error{Kind: ingest.KindStorage, Message: "Failed to upload file: x"}, wantCode: 502, wantMsg: "Failed to upload file: x"},
		{name: "unknown", err: errors.New("pq: secret detail"), wantCode: 500, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/", func(ctx *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body BaseResponse[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, tt.wantRedir, body.RedirectTo)
			assert.Equal(t, tt.wantErrors, body.Errors)
		})
	}
}
