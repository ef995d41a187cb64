package controller

import (
	"io"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/pkg/serverutils"
	"case-portal-be/internal/service"
	"case-portal-be/pkg/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	RetryAI(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	SignedURL(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
	users   service.IUserService
}

func NewDocumentController(service service.IDocumentService, users service.IUserService) IDocumentController {
	return &documentController{service: service, users: users}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Post("/", c.Upload)
	h.Get("/", c.List)
	h.Get("/:id", c.Get)
	h.Get("/:id/url", c.SignedURL)
	h.Post("/:id/retry-ai", c.RetryAI)

	// Review is staff only; the gate guards /staff.
	r.Put("/staff/documents/:id/status", c.UpdateStatus)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx, c.users)
	if err != nil {
		return err
	}

	var in service.UploadInput
	if raw := ctx.FormValue("case_id"); raw != "" {
		caseId, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "case_id must be a valid uuid")
		}
		in.CaseID = &caseId
	}
	in.Notes = ctx.FormValue("notes")

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file provided")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to read file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to read file")
	}
	in.File = ingest.FileInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}

	res, err := c.service.Upload(requestContext(ctx), actor, in)
	if err != nil {
		return err
	}

	message := "Document uploaded"
	if res.AiError != "" {
		message = "Document uploaded, AI processing failed"
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse(message, res))
}

func (c *documentController) RetryAI(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx, c.users)
	if err != nil {
		return err
	}
	documentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid Document ID")
	}
	var req dto.RetryAIRequest
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &req); err != nil {
			return err
		}
	}

	res, err := c.service.RetryAI(requestContext(ctx), actor, documentId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("AI processing requested", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx, c.users)
	if err != nil {
		return err
	}
	var caseId *uuid.UUID
	if raw := ctx.Query("case_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "case_id must be a valid uuid")
		}
		caseId = &id
	}

	res, err := c.service.List(requestContext(ctx), actor, caseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Documents", res))
}

func (c *documentController) Get(ctx *fiber.Ctx) error {
	actor, documentId, err := c.documentRequest(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Get(requestContext(ctx), actor, documentId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document", res))
}

func (c *documentController) SignedURL(ctx *fiber.Ctx) error {
	actor, documentId, err := c.documentRequest(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.SignedURL(requestContext(ctx), actor, documentId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Download link", res))
}

func (c *documentController) UpdateStatus(ctx *fiber.Ctx) error {
	actor, documentId, err := c.documentRequest(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateDocumentStatusRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateStatus(requestContext(ctx), actor, documentId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document status updated", res))
}

func (c *documentController) documentRequest(ctx *fiber.Ctx) (service.Actor, uuid.UUID, error) {
	actor, err := currentActor(ctx, c.users)
	if err != nil {
		return service.Actor{}, uuid.Nil, err
	}
	documentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return service.Actor{}, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid Document ID")
	}
	return actor, documentId, nil
}
