package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/pkg/serverutils"
	internalWS "case-portal-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWsApp(userID string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals(serverutils.LocalUserID, userID)
		}
		return c.Next()
	})
	h := NewNotificationHandler(internalWS.NewHub(nil, "test", logger.NewNopLogger()), logger.NewNopLogger())
	h.RegisterRoutes(app.Group("/api"))
	return app
}

func TestServeWsRequiresSession(t *testing.T) {
	resp, err := newWsApp("").Test(httptest.NewRequest(http.MethodGet, "/api/ws", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWsRequiresUpgrade(t *testing.T) {
	resp, err := newWsApp(uuid.NewString()).Test(httptest.NewRequest(http.MethodGet, "/api/ws", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
