package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/presta-go-api/internal/middleware"
)

func okHandler(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func withLocals(userID interface{}, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID != nil {
			c.Locals("user_id", userID)
		}
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	}
}

func TestWithAuthRequiresAuthentication(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(okHandler, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuthRejectsWrongRole(t *testing.T) {
	app := fiber.New()
	app.Use(withLocals(uint(7), "student"))
	app.Get("/", middleware.WithAuth(okHandler, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestWithAuthAllowsMatchingRole(t *testing.T) {
	app := fiber.New()
	app.Use(withLocals(uint(7), "faculty"))
	app.Get("/", middleware.WithAuth(okHandler, middleware.AuthOptions{Role: middleware.AuthRoleFaculty}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWithAuthAnyAllowsAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(okHandler, middleware.AuthOptions{Role: middleware.AuthRoleAny}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
