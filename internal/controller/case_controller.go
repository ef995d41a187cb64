package controller

import (
	"case-portal-be/internal/dto"
	"case-portal-be/internal/pkg/serverutils"
	"case-portal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICaseController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
}

type caseController struct {
	service service.ICaseService
	users   service.IUserService
}

func NewCaseController(service service.ICaseService, users service.IUserService) ICaseController {
	return &caseController{service: service, users: users}
}

func (c *caseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cases")
	h.Get("/", c.List)
	h.Post("/", c.Create)
	h.Get("/:id", c.Get)
}

func (c *caseController) Create(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx, c.users)
	if err != nil {
		return err
	}
	var req dto.CreateCaseRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(requestContext(ctx), actor, req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Case created", res))
}

func (c *caseController) List(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx, c.users)
	if err != nil {
		return err
	}
	res, err := c.service.List(requestContext(ctx), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Cases", res))
}

func (c *caseController) Get(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx, c.users)
	if err != nil {
		return err
	}
	caseId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid Case ID")
	}

	res, err := c.service.Get(requestContext(ctx), actor, caseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Case", res))
}
