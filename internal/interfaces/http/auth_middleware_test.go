package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/internal/application/dto"
	apphttp "github.com/jhoicas/ventas-cfdi/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/ventas-cfdi/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "ventas-cfdi-test"
	testExpMin    = 60
)

func tokenFor(t *testing.T, companyID, role string) string {
	t.Helper()
	return signToken(t, testJWTSecret, testExpMin, pkgjwt.Claims{
		UserID:    testUserID,
		CompanyID: companyID,
		Email:     "usuario@example.com",
		Role:      role,
	})
}

func tokenForRole(t *testing.T, role string) string {
	return tokenFor(t, testCompanyID, role)
}

func signToken(t *testing.T, secret string, expMin int, c pkgjwt.Claims) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, testIssuer, expMin, c)
	require.NoError(t, err)
	return "Bearer " + tok
}

// protectedApp expone GET /protected detrás de AuthMiddleware + RequireRole(roles...).
func protectedApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			p := apphttp.GetPrincipal(c)
			return c.JSON(fiber.Map{
				"user_id":    p.UserID,
				"company_id": p.CompanyID,
				"email":      p.Email,
				"role":       p.Role,
			})
		},
	)
	return app
}

func TestRequireRole_Casos(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		header   func(t *testing.T) string
		wantCode int
		wantErr  string
	}{
		{
			name:     "rol permitido",
			roles:    []string{apphttp.RoleAdmin},
			header:   func(t *testing.T) string { return tokenForRole(t, apphttp.RoleAdmin) },
			wantCode: http.StatusOK,
		},
		{
			name:     "uno de varios roles",
			roles:    []string{apphttp.RoleAdmin, apphttp.RoleWarehouse},
			header:   func(t *testing.T) string { return tokenForRole(t, apphttp.RoleWarehouse) },
			wantCode: http.StatusOK,
		},
		{
			name:     "rol no permitido",
			roles:    []string{apphttp.RoleAdmin},
			header:   func(t *testing.T) string { return tokenForRole(t, apphttp.RoleSeller) },
			wantCode: http.StatusForbidden,
			wantErr:  "FORBIDDEN",
		},
		{
			name:     "token sin rol",
			roles:    []string{apphttp.RoleAdmin},
			header:   func(t *testing.T) string { return tokenForRole(t, "") },
			wantCode: http.StatusUnauthorized,
			wantErr:  "MISSING_ROLE",
		},
		{
			name:     "sin header",
			roles:    []string{apphttp.RoleAdmin},
			header:   func(*testing.T) string { return "" },
			wantCode: http.StatusUnauthorized,
			wantErr:  "MISSING_TOKEN",
		},
		{
			name:     "esquema distinto de Bearer",
			roles:    []string{apphttp.RoleAdmin},
			header:   func(*testing.T) string { return "Basic dXNlcjpwYXNz" },
			wantCode: http.StatusUnauthorized,
			wantErr:  "INVALID_TOKEN",
		},
		{
			name:     "token malformado",
			roles:    []string{apphttp.RoleAdmin},
			header:   func(*testing.T) string { return "Bearer token.invalido.aqui" },
			wantCode: http.StatusUnauthorized,
			wantErr:  "INVALID_TOKEN",
		},
		{
			name:  "firma con otro secreto",
			roles: []string{apphttp.RoleAdmin},
			header: func(t *testing.T) string {
				return signToken(t, "otro-secreto", testExpMin, pkgjwt.Claims{
					UserID: testUserID, CompanyID: testCompanyID, Role: apphttp.RoleAdmin,
				})
			},
			wantCode: http.StatusUnauthorized,
			wantErr:  "INVALID_TOKEN",
		},
		{
			name:  "token expirado",
			roles: []string{apphttp.RoleAdmin},
			header: func(t *testing.T) string {
				return signToken(t, testJWTSecret, -5, pkgjwt.Claims{
					UserID: testUserID, CompanyID: testCompanyID, Role: apphttp.RoleAdmin,
				})
			},
			wantCode: http.StatusUnauthorized,
			wantErr:  "INVALID_TOKEN",
		},
		{
			name:  "sin empresa en el token",
			roles: []string{apphttp.RoleAdmin},
			header: func(t *testing.T) string {
				return signToken(t, testJWTSecret, testExpMin, pkgjwt.Claims{
					UserID: testUserID, Role: apphttp.RoleAdmin,
				})
			},
			wantCode: http.StatusUnauthorized,
			wantErr:  "INVALID_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			resp, err := protectedApp(tt.roles...).Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantErr == "" {
				return
			}
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantErr, body.Code)
		})
	}
}

func TestAuthMiddleware_ExtractaClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleCashier))
	resp, err := protectedApp(apphttp.RoleCashier).Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, "usuario@example.com", body["email"])
	assert.Equal(t, apphttp.RoleCashier, body["role"])
}
