package server

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"bloggr/internal/middleware"
	"bloggr/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return s
}

func tokenClaims(userID uint, username string, role models.UserRole, exp time.Time) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"role":     string(role),
		"iss":      middleware.TokenIssuer,
		"aud":      middleware.TokenAudience,
		"exp":      exp.Unix(),
		"iat":      now.Add(-time.Hour).Unix(),
		"nbf":      now.Add(-time.Hour).Unix(),
	}
}

func anonCookieFrom(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.AnonCookieName {
			return ck
		}
	}
	return nil
}

func TestIdentity_MintsAnonCookieOnFirstContact(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/api/posts", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	minted := anonCookieFrom(resp)
	require.NotNil(t, minted, "first anonymous request should mint a visitor cookie")
	assert.NotEmpty(t, minted.Value)
	assert.True(t, minted.HttpOnly)

	// A request that already carries the cookie is not re-minted.
	resp = doJSON(t, app, http.MethodGet, "/api/posts", nil,
		&http.Cookie{Name: middleware.AnonCookieName, Value: minted.Value})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, anonCookieFrom(resp))
}

func TestIdentity_AuthenticatedRequestGetsNoAnonCookie(t *testing.T) {
	srv, app, db := setupTestServer(t)
	user := createTestUser(t, db, "alice", models.UserRoleAuthor)

	resp := doJSON(t, app, http.MethodGet, "/api/users/me", nil, authCookie(t, srv, user))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, anonCookieFrom(resp))

	var profile struct {
		Username string `json:"username"`
	}
	decodeBody(t, resp, &profile)
	assert.Equal(t, "alice", profile.Username)
}

func TestIdentity_MissingTokenOnProtectedRoute(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/api/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, models.CodeAuthMissing, body.Code)
}

func TestIdentity_InvalidTokenDistinctFromExpired(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/api/users/me", nil,
		&http.Cookie{Name: middleware.AuthCookieName, Value: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, models.CodeAuthInvalid, body.Code)

	expired := signedToken(t, tokenClaims(1, "alice", models.UserRoleAuthor, time.Now().Add(-time.Minute)))
	resp = doJSON(t, app, http.MethodGet, "/api/users/me", nil,
		&http.Cookie{Name: middleware.AuthCookieName, Value: expired})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, models.CodeAuthExpired, body.Code)
}

func TestIdentity_ExpiredTokenDegradesToAnonymousOnPublicRoute(t *testing.T) {
	_, app, _ := setupTestServer(t)

	expired := signedToken(t, tokenClaims(1, "alice", models.UserRoleAuthor, time.Now().Add(-time.Minute)))
	resp := doJSON(t, app, http.MethodGet, "/api/posts", nil,
		&http.Cookie{Name: middleware.AuthCookieName, Value: expired})
	resp.Body.Close()

	// The stale token never blocks browsing; the caller just browses anonymously.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, anonCookieFrom(resp))
}

func TestIdentity_WrongIssuerRejected(t *testing.T) {
	_, app, _ := setupTestServer(t)

	claims := tokenClaims(1, "alice", models.UserRoleAuthor, time.Now().Add(time.Hour))
	claims["iss"] = "someone-else"
	resp := doJSON(t, app, http.MethodGet, "/api/users/me", nil,
		&http.Cookie{Name: middleware.AuthCookieName, Value: signedToken(t, claims)})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, models.CodeAuthInvalid, body.Code)
}

func TestAuthFlow_SignupLoginLogout(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", fiber.Map{
		"username": "newcomer",
		"email":    "newcomer@example.com",
		"password": "Str0ng&Secure!",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var signupBody struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(t, resp, &signupBody)
	assert.NotEmpty(t, signupBody.Token)
	assert.Equal(t, "newcomer", signupBody.User.Username)
	assert.Equal(t, models.UserRoleReader, signupBody.User.Role)

	var tokenCookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.AuthCookieName {
			tokenCookie = ck
		}
	}
	require.NotNil(t, tokenCookie, "signup should set the auth cookie")
	assert.True(t, tokenCookie.HttpOnly)

	// The cookie works on protected routes.
	resp = doJSON(t, app, http.MethodGet, "/api/users/me", nil, tokenCookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Wrong password is rejected with a generic credential error.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "newcomer@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var errBody models.ErrorResponse
	decodeBody(t, resp, &errBody)
	assert.Equal(t, models.CodeAuthInvalid, errBody.Code)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "Newcomer@Example.com",
		"password": "Str0ng&Secure!",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Logout clears the auth cookie but leaves the anon cookie alone.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/logout", nil, tokenCookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.AuthCookieName {
			assert.True(t, ck.Expires.Before(time.Now()))
		}
	}
}
