// Package middleware provides identity resolution, logging, metrics and
// rate-limiting middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"bloggr/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AuthCookieName carries the signed auth token.
	AuthCookieName = "bloggr_token"
	// AnonCookieName carries the opaque anonymous visitor token.
	AnonCookieName = "bloggr_anon"

	// TokenIssuer and TokenAudience are validated on every auth token.
	TokenIssuer   = "bloggr-api"
	TokenAudience = "bloggr-client"

	identityLocal    = "identity"
	authFailureLocal = "authFailure"
)

// IdentityKey is the context key under which the resolved identity travels.
const IdentityKey contextKey = "identity"

// IdentityConfig holds the settings the resolver needs.
type IdentityConfig struct {
	JWTSecret    string
	AnonTTL      time.Duration
	CookieSecure bool
}

// IdentityResolver returns middleware that attributes every request to
// exactly one identity. An auth token (cookie or bearer header) wins when it
// verifies; a failed verification is recorded but degrades to anonymous
// resolution so personalized-but-public routes keep working. When no anon
// token is present either, a new one is minted, attached to the response,
// and used as the identity of the current request, so first-contact requests
// never run unattributed.
func IdentityResolver(cfg IdentityConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, failure := resolveAuthToken(c, cfg.JWTSecret)

		if !ident.IsAuthenticated() {
			anon := c.Cookies(AnonCookieName)
			if anon == "" {
				anon = uuid.NewString()
				c.Cookie(&fiber.Cookie{
					Name:     AnonCookieName,
					Value:    anon,
					Expires:  time.Now().Add(cfg.AnonTTL),
					HTTPOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: "Lax",
					Path:     "/",
				})
			}
			ident = models.AnonymousIdentity(anon)
		}

		c.Locals(identityLocal, ident)
		if failure != "" {
			c.Locals(authFailureLocal, failure)
		}

		ctx := context.WithValue(c.UserContext(), IdentityKey, ident)
		if ident.IsAuthenticated() {
			ctx = context.WithValue(ctx, UserIDKey, ident.UserID)
		}
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// resolveAuthToken verifies the auth token if one is present. On failure it
// returns NoIdentity plus the failure code (AUTH_MISSING, AUTH_INVALID or
// AUTH_EXPIRED) so guards can surface the precise reason later.
func resolveAuthToken(c *fiber.Ctx, secret string) (models.Identity, string) {
	tokenString := c.Cookies(AuthCookieName)
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}
	if tokenString == "" {
		return models.NoIdentity, models.CodeAuthMissing
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.NoIdentity, models.CodeAuthExpired
		}
		return models.NoIdentity, models.CodeAuthInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.NoIdentity, models.CodeAuthInvalid
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != TokenIssuer {
		return models.NoIdentity, models.CodeAuthInvalid
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != TokenAudience {
		return models.NoIdentity, models.CodeAuthInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return models.NoIdentity, models.CodeAuthInvalid
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return models.NoIdentity, models.CodeAuthInvalid
	}

	username, _ := claims["username"].(string)
	roleStr, _ := claims["role"].(string)
	role := models.UserRole(roleStr)
	if !models.ValidRole(role) {
		role = models.UserRoleReader
	}

	return models.AuthenticatedIdentity(uint(userID), username, role), ""
}

// RequireAuth rejects requests whose identity is not authenticated, with a
// distinct code per failure reason so clients can branch (expired prompts
// re-login; missing/invalid means treat as logged out).
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFrom(c).IsAuthenticated() {
			return c.Next()
		}

		code := models.CodeAuthMissing
		if f, ok := c.Locals(authFailureLocal).(string); ok && f != "" {
			code = f
		}

		var msg string
		switch code {
		case models.CodeAuthExpired:
			msg = "Authentication token has expired"
		case models.CodeAuthInvalid:
			msg = "Authentication token is invalid"
		default:
			msg = "Authentication required"
		}

		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthError(code, msg))
	}
}

// RequireAdmin rejects non-admin identities with 403. Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFrom(c).IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity resolved for the request, or NoIdentity
// if the resolver did not run.
func IdentityFrom(c *fiber.Ctx) models.Identity {
	if ident, ok := c.Locals(identityLocal).(models.Identity); ok {
		return ident
	}
	return models.NoIdentity
}

// IdentityFromContext returns the identity stored in a context by the
// resolver, for use in service layers that only see a context.Context.
func IdentityFromContext(ctx context.Context) models.Identity {
	if ident, ok := ctx.Value(IdentityKey).(models.Identity); ok {
		return ident
	}
	return models.NoIdentity
}
