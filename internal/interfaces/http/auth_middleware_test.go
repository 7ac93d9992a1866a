package http_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	apphttp "github.com/AymanElMikh/bmw/internal/interfaces/http"
	"github.com/AymanElMikh/bmw/pkg/jwt"
)

const testSecret = "secreto-de-test"

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func buildTestApp() *fiber.App {
	app := fiber.New()
	protected := app.Group("/api", apphttp.AuthMiddleware(testSecret))
	protected.Get("/perfil", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
		})
	})
	admin := protected.Group("/admin", apphttp.RequireRole(entity.RoleAdmin))
	admin.Get("/panel", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	billing := protected.Group("/facturas", apphttp.RequireRole(entity.RoleAdmin, entity.RoleProjectLeader))
	billing.Post("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	return app
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.Generate(testSecret, "user-123", role, "bmw-billing", 15)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	return er.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinHeader(t *testing.T) {
	app := buildTestApp()

	status, body := doRequest(t, app, fiber.MethodGet, "/api/perfil", "")

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, body))
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildTestApp()

	req := httptest.NewRequest(fiber.MethodGet, "/api/perfil", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, body))
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := buildTestApp()

	status, body := doRequest(t, app, fiber.MethodGet, "/api/perfil", "no-es-un-jwt")

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, body))
}

func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	app := buildTestApp()
	forged, err := jwt.Generate("otro-secreto", "user-123", entity.RoleAdmin, "bmw-billing", 15)
	require.NoError(t, err)

	status, body := doRequest(t, app, fiber.MethodGet, "/api/perfil", forged)

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, body))
}

func TestAuthMiddleware_ExtraeUserIDYRole(t *testing.T) {
	app := buildTestApp()

	status, body := doRequest(t, app, fiber.MethodGet, "/api/perfil", tokenForRole(t, entity.RoleViewer))

	require.Equal(t, fiber.StatusOK, status)
	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "user-123", got["user_id"])
	assert.Equal(t, entity.RoleViewer, got["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp()

	status, _ := doRequest(t, app, fiber.MethodGet, "/api/admin/panel", tokenForRole(t, entity.RoleAdmin))

	assert.Equal(t, fiber.StatusOK, status)
}

func TestRequireRole_ViewerRechazadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp()

	status, body := doRequest(t, app, fiber.MethodGet, "/api/admin/panel", tokenForRole(t, entity.RoleViewer))

	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))
}

func TestRequireRole_MultiRol(t *testing.T) {
	app := buildTestApp()

	status, _ := doRequest(t, app, fiber.MethodPost, "/api/facturas/", tokenForRole(t, entity.RoleProjectLeader))
	assert.Equal(t, fiber.StatusCreated, status, "PROJECT_LEADER puede generar facturas")

	status, body := doRequest(t, app, fiber.MethodPost, "/api/facturas/", tokenForRole(t, entity.RoleViewer))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))
}
