package controller

import (
	"context"

	"case-portal-be/internal/pkg/serverutils"
	"case-portal-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// requestContext carries the caller's IP down to the audit log.
func requestContext(ctx *fiber.Ctx) context.Context {
	return service.WithClientIP(ctx.UserContext(), ctx.IP())
}

// currentActor reads the gate's locals and the role from the profile row.
func currentActor(ctx *fiber.Ctx, users service.IUserService) (service.Actor, error) {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return service.Actor{}, err
	}
	actor, err := users.ResolveActor(requestContext(ctx), userId, serverutils.CurrentSessionID(ctx))
	if err != nil {
		return service.Actor{}, err
	}
	return *actor, nil
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}
