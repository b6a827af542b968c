package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func callWithAuth(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	e := echo.New()
	var capturedUserID string
	e.GET("/", func(c echo.Context) error {
		capturedUserID = UserID(c)
		return c.NoContent(http.StatusOK)
	}, Auth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, capturedUserID
}

func TestAuthAllowsAnonymous(t *testing.T) {
	rec, userID := callWithAuth(t, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, userID)
}

func TestAuthResolvesSubject(t *testing.T) {
	token := signToken(t, "user-123", testSecret)
	rec, userID := callWithAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", userID)
}

func TestAuthRejectsBadSignature(t *testing.T) {
	token := signToken(t, "user-123", "wrong-secret")
	rec, _ := callWithAuth(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	rec, _ := callWithAuth(t, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec, _ := callWithAuth(t, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
