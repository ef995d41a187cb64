package gate

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"case-portal-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(f *fixture) *fiber.App {
	app := fiber.New()
	app.Use(f.gate.Middleware(MiddlewareConfig{
		CookieName:   "session",
		SkipPrefixes: []string{"/static/"},
	}))
	app.Get("/*", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"user_id":    ctx.Locals(serverutils.LocalUserID),
			"session_id": ctx.Locals(serverutils.LocalSessionID),
			"role":       ctx.Locals(serverutils.LocalRole),
		})
	})
	return app
}

func TestMiddlewareRedirectsPages(t *testing.T) {
	app := newApp(newFixture())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin-dashboard", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestMiddlewareRejectsAPIWithJSON(t *testing.T) {
	app := newApp(newFixture())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var parsed serverutils.BaseResponse[any]
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.False(t, parsed.Success)
	assert.Equal(t, "/", parsed.RedirectTo)
}

func TestMiddlewareSetsLocalsFromCookie(t *testing.T) {
	f := newFixture()
	app := newApp(f)

	req := httptest.NewRequest(http.MethodGet, "/staff-dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "staff-token"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, f.users["staff"].String(), body["user_id"])
	assert.Equal(t, "staff-sid", body["session_id"])
	assert.Equal(t, "staff", body["role"])
}

func TestMiddlewareAcceptsBearerToken(t *testing.T) {
	app := newApp(newFixture())

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer client-token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddlewareSkipsStaticAssets(t *testing.T) {
	f := newFixture()
	app := newApp(f)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/static/app.css", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, f.sessions.calls)
}

// The default fiber router is case insensitive, so a mixed-case path reaches
// the same handler and must get the same decision.
func TestMiddlewareMatchesRulesCaseInsensitively(t *testing.T) {
	app := newApp(newFixture())

	for _, target := range []string{"/API/ADMIN/users", "/Api/admin/users", "//api//admin/users", "/api/documents/../admin/users"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", "Bearer client-token")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, target)
	}

	req := httptest.NewRequest(http.MethodGet, "/Admin-Dashboard", nil)
	req.Header.Set("Authorization", "Bearer client-token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestMiddlewareAllowsAdminOnMixedCasePath(t *testing.T) {
	app := newApp(newFixture())

	req := httptest.NewRequest(http.MethodGet, "/API/Admin/users", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
