package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = &config.Config{
	JWTSecret:    "middleware-secret",
	OfficerRoles: []string{"Police Officer", "Administrator"},
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func reporterApp() *fiber.App {
	app := fiber.New()
	app.Get("/", ReporterIdentity(testCfg), func(c *fiber.Ctx) error {
		return c.SendString(GetReporterID(c))
	})
	return app
}

func readBody(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestReporterIdentity(t *testing.T) {
	app := reporterApp()
	exp := time.Now().Add(time.Hour).Unix()

	assert.Equal(t, "", readBody(t, app, ""))
	assert.Equal(t, "resident-1", readBody(t, app, sign(t, testCfg.JWTSecret, jwt.MapClaims{"sub": "resident-1", "exp": exp})))
	assert.Equal(t, "", readBody(t, app, sign(t, "other-secret", jwt.MapClaims{"sub": "resident-1", "exp": exp})))
	assert.Equal(t, "", readBody(t, app, "not-a-token"))
}

func TestReporterIdentityAfterJWTProtected(t *testing.T) {
	app := fiber.New()
	app.Get("/", JWTProtected(testCfg), ReporterIdentity(testCfg), func(c *fiber.Ctx) error {
		return c.SendString(GetReporterID(c))
	})
	exp := time.Now().Add(time.Hour).Unix()

	assert.Equal(t, "officer-7", readBody(t, app, sign(t, testCfg.JWTSecret, jwt.MapClaims{"sub": "officer-7", "exp": exp})))
}

func TestOfficerRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/", JWTProtected(testCfg), OfficerRequired(testCfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"no token", "", fiber.StatusUnauthorized},
		{"resident", sign(t, testCfg.JWTSecret, jwt.MapClaims{"role": "Resident", "exp": exp}), fiber.StatusForbidden},
		{"missing role", sign(t, testCfg.JWTSecret, jwt.MapClaims{"exp": exp}), fiber.StatusForbidden},
		{"officer any case", sign(t, testCfg.JWTSecret, jwt.MapClaims{"role": "police officer", "exp": exp}), fiber.StatusNoContent},
		{"expired", sign(t, testCfg.JWTSecret, jwt.MapClaims{"role": "Administrator", "exp": time.Now().Add(-time.Hour).Unix()}), fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
