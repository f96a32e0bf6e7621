package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier() *Verifier {
	return NewVerifier("test-secret", slog.Default(), map[string]*AuthUser{
		"static-token": {ID: "user-1", Email: "static@test.local", Role: "USER"},
	})
}

func signToken(t *testing.T, secret string, c claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyStaticToken(t *testing.T) {
	v := newTestVerifier()
	user, err := v.Verify(t.Context(), "static-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestVerifyJWT(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, "test-secret", claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"},
		Role:             "ADMIN",
		Scopes:           []string{"runs:write"},
	})

	user, err := v.Verify(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", user.ID)
	assert.True(t, user.IsAdmin())
	assert.True(t, user.HasScope("runs:write"))
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, "wrong-secret", claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-3"}})

	_, err := v.Verify(t.Context(), token)
	assert.Error(t, err)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireAuth(newTestVerifier())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	require.Error(t, err)
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer static-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUser *AuthUser
	handler := RequireAuth(newTestVerifier())(func(c echo.Context) error {
		gotUser = GetUser(c)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	require.NotNil(t, gotUser)
	assert.Equal(t, "user-1", gotUser.ID)
}

func TestOwnedOrNotFoundHidesExistence(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(contextKey, &AuthUser{ID: "user-1", Role: "USER"})

	err := OwnedOrNotFound(c, "someone-else", true)
	require.Error(t, err)

	err = OwnedOrNotFound(c, "user-1", true)
	assert.NoError(t, err)

	err = OwnedOrNotFound(c, "user-1", false)
	require.Error(t, err)
}
