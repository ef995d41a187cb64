// FILE: internal/controller/admin_controller.go
package controller

import (
	"case-portal-be/internal/dto"
	"case-portal-be/internal/pkg/serverutils"
	"case-portal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetDashboardStats(ctx *fiber.Ctx) error
	GetAllUsers(ctx *fiber.Ctx) error
	CreateUser(ctx *fiber.Ctx) error
	DeleteUser(ctx *fiber.Ctx) error
	GetAuditLogs(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
	audit   service.IAuditService
}

func NewAdminController(service service.IAdminService, audit service.IAuditService) IAdminController {
	return &adminController{
		service: service,
		audit:   audit,
	}
}

// RegisterRoutes mounts /admin. The gate only lets admins through.
func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")

	// Dashboard
	h.Get("/dashboard", c.GetDashboardStats)

	// Users
	h.Get("/users", c.GetAllUsers)
	h.Post("/users", c.CreateUser)
	h.Delete("/users/:id", c.DeleteUser)

	// Audit
	h.Get("/audit-logs", c.GetAuditLogs)

	// Logs
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

func (c *adminController) GetDashboardStats(ctx *fiber.Ctx) error {
	stats, err := c.service.GetDashboardStats(requestContext(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard stats", stats))
}

func (c *adminController) GetAllUsers(ctx *fiber.Ctx) error {
	var query dto.UserListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	users, err := c.service.ListUsers(requestContext(ctx), query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User list", users))
}

func (c *adminController) CreateUser(ctx *fiber.Ctx) error {
	actorId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	result, err := c.service.CreateUser(requestContext(ctx), actorId, req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("User created", result))
}

func (c *adminController) DeleteUser(ctx *fiber.Ctx) error {
	actorId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	userId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid User ID")
	}

	result, err := c.service.DeleteUser(requestContext(ctx), actorId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User deleted", result))
}

func (c *adminController) GetAuditLogs(ctx *fiber.Ctx) error {
	var query dto.AuditLogQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	logs, err := c.audit.List(requestContext(ctx), query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Audit logs", logs))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	logs, err := c.service.GetSystemLogs(requestContext(ctx), ctx.QueryInt("offset", 0), ctx.QueryInt("limit", 100), ctx.Query("level"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	entry, err := c.service.GetLogDetail(requestContext(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", entry))
}
