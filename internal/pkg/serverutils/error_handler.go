package serverutils

import (
	"errors"
	"net/http"

	"case-portal-be/internal/pkg/apperror"
	"case-portal-be/pkg/ingest"

	"github.com/gofiber/fiber/v2"
)

// RedirectTarget is sent with session failures so JSON clients know where to go.
var RedirectTarget = "/"

// ErrorHandler renders any error returned by a handler as the JSON envelope.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code, resp := translate(err)
	return ctx.Status(code).JSON(resp)
}

func translate(err error) (int, BaseResponse[any]) {
	var (
		fiberErr  *fiber.Error
		appErr    *apperror.Error
		validErr  *ValidationError
		ingestErr *ingest.Error
	)

	switch {
	case errors.As(err, &validErr):
		resp := ErrorResponse(http.StatusBadRequest, "Validation failed")
		resp.Errors = validErr.Fields
		return http.StatusBadRequest, resp
	case errors.As(err, &ingestErr):
		code := ingestStatus(ingestErr.Kind)
		if ingestErr.Kind == ingest.KindSession {
			return code, RedirectResponse(code, ingestErr.Message, RedirectTarget)
		}
		return code, ErrorResponse(code, ingestErr.Message)
	case errors.As(err, &appErr):
		code := appErr.Code
		if code == 0 {
			code = http.StatusInternalServerError
		}
		return code, ErrorResponse(code, appErr.Message)
	case errors.As(err, &fiberErr):
		return fiberErr.Code, ErrorResponse(fiberErr.Code, fiberErr.Message)
	default:
		return http.StatusInternalServerError, ErrorResponse(http.StatusInternalServerError, "Internal server error")
	}
}

func ingestStatus(kind ingest.Kind) int {
	switch kind {
	case ingest.KindValidation:
		return http.StatusBadRequest
	case ingest.KindSession:
		return http.StatusUnauthorized
	case ingest.KindNotFound:
		return http.StatusNotFound
	case ingest.KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
