package gate

import (
	"strings"

	"case-portal-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type MiddlewareConfig struct {
	CookieName string
	// SkipPrefixes bypass the gate entirely (static assets).
	SkipPrefixes []string
	// APIPrefix marks paths that get a JSON 401 instead of a redirect.
	APIPrefix string
}

// Middleware adapts the gate to fiber. Allowed requests carry the session in
// ctx.Locals; page requests that fail are redirected and API requests get a
// 401 body naming the redirect target.
func (g *Gate) Middleware(cfg MiddlewareConfig) fiber.Handler {
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/"
	}
	cfg.APIPrefix = CanonicalPath(cfg.APIPrefix)
	cfg.SkipPrefixes = canonicalAll(cfg.SkipPrefixes)
	return func(ctx *fiber.Ctx) error {
		path := CanonicalPath(ctx.Path())
		for _, prefix := range cfg.SkipPrefixes {
			if strings.HasPrefix(path, prefix) {
				return ctx.Next()
			}
		}

		d := g.Decide(ctx.UserContext(), path, serverutils.SessionToken(ctx, cfg.CookieName))
		if !d.Allowed() {
			if strings.HasPrefix(path, cfg.APIPrefix) {
				return ctx.Status(fiber.StatusUnauthorized).
					JSON(serverutils.RedirectResponse(fiber.StatusUnauthorized, "Unauthorized", d.RedirectTo))
			}
			return ctx.Redirect(d.RedirectTo, fiber.StatusTemporaryRedirect)
		}

		if d.Session != nil {
			ctx.Locals(serverutils.LocalUserID, d.Session.UserID.String())
			ctx.Locals(serverutils.LocalSessionID, d.Session.ID)
		}
		if d.Role != nil {
			ctx.Locals(serverutils.LocalRole, string(*d.Role))
		}
		return ctx.Next()
	}
}
