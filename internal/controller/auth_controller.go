// FILE: internal/controller/auth_controller.go
package controller

import (
	"context"
	"time"

	"case-portal-be/internal/dto"
	"case-portal-be/internal/pkg/serverutils"
	"case-portal-be/internal/service"
	"case-portal-be/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	SetupStatus(ctx *fiber.Ctx) error
	Setup(ctx *fiber.Ctx) error
}

// SessionResolver resolves the token on routes the gate leaves public.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type authController struct {
	service  service.IAuthService
	sessions SessionResolver
	cookie   CookieConfig
}

func NewAuthController(service service.IAuthService, sessions SessionResolver, cookie CookieConfig) IAuthController {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	return &authController{service: service, sessions: sessions, cookie: cookie}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/login", c.Login)
	h.Post("/logout", c.Logout)
	h.Get("/setup", c.SetupStatus)
	h.Post("/setup", c.Setup)
}

func (c *authController) setCookie(ctx *fiber.Ctx, token string, expires time.Time) {
	ctx.Cookie(&fiber.Cookie{
		Name:     c.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Login(requestContext(ctx), &req)
	if err != nil {
		return err
	}
	c.setCookie(ctx, res.Token, res.ExpiresAt)
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

// Logout always clears the cookie, even when the session is already gone.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	token := serverutils.SessionToken(ctx, c.cookie.Name)
	if token != "" {
		sess, err := c.sessions.Resolve(ctx.UserContext(), token)
		if err == nil {
			if err := c.service.Logout(requestContext(ctx), sess.UserID, sess.ID); err != nil {
				return err
			}
		}
	}
	c.setCookie(ctx, "", time.Unix(0, 0))
	return ctx.JSON(serverutils.SuccessResponse[any]("Logout successful", nil))
}

func (c *authController) SetupStatus(ctx *fiber.Ctx) error {
	res, err := c.service.SetupStatus(requestContext(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Setup status", res))
}

func (c *authController) Setup(ctx *fiber.Ctx) error {
	var req dto.SetupRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Setup(requestContext(ctx), &req)
	if err != nil {
		return err
	}
	c.setCookie(ctx, res.Token, res.ExpiresAt)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Administrator created", res))
}
