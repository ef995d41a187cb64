package controller

import (
	"context"
	"time"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/pkg/serverutils"
	"case-portal-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxStatusWait = 60 * time.Second

type IAiController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type aiController struct {
	service service.IAiTaskService
	users   service.IUserService
}

func NewAiController(service service.IAiTaskService, users service.IUserService) IAiController {
	return &aiController{service: service, users: users}
}

func (c *aiController) RegisterRoutes(r fiber.Router) {
	r.Post("/staff/ai/generate", c.Generate)
	r.Get("/ai/status/:taskId", c.Status)
}

func (c *aiController) Generate(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx, c.users)
	if err != nil {
		return err
	}
	var req dto.GenerateDocumentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Generate(requestContext(ctx), actor, req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Generation started", res))
}

// Status answers immediately unless ?wait=true, which blocks until the task
// finishes or maxStatusWait passes.
func (c *aiController) Status(ctx *fiber.Ctx) error {
	actor, err := currentActor(ctx, c.users)
	if err != nil {
		return err
	}
	taskId := ctx.Params("taskId")

	if !ctx.QueryBool("wait", false) {
		res, err := c.service.Status(requestContext(ctx), actor, taskId)
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Task status", res))
	}

	waitCtx, cancel := context.WithTimeout(requestContext(ctx), maxStatusWait)
	defer cancel()

	res, err := c.service.WaitForCompletion(waitCtx, actor, taskId)
	if err != nil {
		if waitCtx.Err() != nil {
			return fiber.NewError(fiber.StatusGatewayTimeout, "Task did not finish in time")
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Task status", res))
}
