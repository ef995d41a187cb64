package serverutils

import (
	"strings"

	"case-portal-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalUserID    = "user_id"
	LocalSessionID = "session_id"
	LocalRole      = "role"
)

// SessionToken reads the bearer token first, then the session cookie.
// Websocket handshakes may also pass it as ?token= since browsers cannot set headers there.
func SessionToken(ctx *fiber.Ctx, cookieName string) string {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie := ctx.Cookies(cookieName); cookie != "" {
		return cookie
	}
	if strings.EqualFold(ctx.Get(fiber.HeaderUpgrade), "websocket") {
		return ctx.Query("token")
	}
	return ""
}

func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals(LocalUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Unauthorized("Unauthorized")
	}
	return id, nil
}

func CurrentSessionID(ctx *fiber.Ctx) string {
	sid, _ := ctx.Locals(LocalSessionID).(string)
	return sid
}

// CurrentRole is only set on paths covered by a role rule.
func CurrentRole(ctx *fiber.Ctx) string {
	role, _ := ctx.Locals(LocalRole).(string)
	return role
}
