package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func adminClaims() models.JWTClaims {
	return models.JWTClaims{
		UserID: "admin-1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campus-idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newProtectedRouter(verifier *TokenVerifier, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := []gin.HandlerFunc{JWT(verifier)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/protected", handlers...)
	return router
}

func TestTokenVerifierValid(t *testing.T) {
	verifier := NewTokenVerifier(config.JWTConfig{Secret: testSecret, Issuer: "campus-idp"})

	claims, err := verifier.Verify(signToken(t, testSecret, adminClaims()))
	require.NoError(t, err)
	require.Equal(t, "admin-1", claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)
}

func TestTokenVerifierWrongSecret(t *testing.T) {
	verifier := NewTokenVerifier(config.JWTConfig{Secret: testSecret})

	_, err := verifier.Verify(signToken(t, "other-secret", adminClaims()))
	require.Error(t, err)
}

func TestTokenVerifierIssuerMismatch(t *testing.T) {
	verifier := NewTokenVerifier(config.JWTConfig{Secret: testSecret, Issuer: "campus-idp"})
	claims := adminClaims()
	claims.Issuer = "someone-else"

	_, err := verifier.Verify(signToken(t, testSecret, claims))
	require.Error(t, err)
}

func TestTokenVerifierExpired(t *testing.T) {
	verifier := NewTokenVerifier(config.JWTConfig{Secret: testSecret})
	claims := adminClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := verifier.Verify(signToken(t, testSecret, claims))
	require.Error(t, err)
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	router := newProtectedRouter(NewTokenVerifier(config.JWTConfig{Secret: testSecret}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareMalformedHeader(t *testing.T) {
	router := newProtectedRouter(NewTokenVerifier(config.JWTConfig{Secret: testSecret}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareAllowsValidToken(t *testing.T) {
	router := newProtectedRouter(NewTokenVerifier(config.JWTConfig{Secret: testSecret, Issuer: "campus-idp"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, adminClaims()))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesForbidden(t *testing.T) {
	router := newProtectedRouter(NewTokenVerifier(config.JWTConfig{Secret: testSecret}), models.RoleAdmin)
	claims := adminClaims()
	claims.Role = models.RoleViewer

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	router := newProtectedRouter(NewTokenVerifier(config.JWTConfig{Secret: testSecret}), models.RoleAdmin, models.RoleFaculty)
	claims := adminClaims()
	claims.Role = models.RoleFaculty

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
