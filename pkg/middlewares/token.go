package middlewares

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	//QueryToken token in query name (persistent channel handshake)
	QueryToken = "token"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenUserID set c.Locals name for the authenticated user id
	TokenUserID = "UserID"
	//TokenRaw set c.Locals name for the raw bearer credential
	TokenRaw = "Token"
)

// TokenVerifier resolves a bearer credential to a user id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (int64, error)
}

// BearerToken reads the credential from the Authorization header, then the query, then the cookie.
func BearerToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if t := c.Query(QueryToken); t != "" {
		return t
	}
	return c.Cookies(CookieToken)
}

// JWTMiddleware validates the bearer credential and stores the user id in Locals.
func JWTMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := BearerToken(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		userID, err := verifier.Verify(c.UserContext(), tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(TokenUserID, userID)
		c.Locals(TokenRaw, tokenStr)
		return c.Next()
	}
}

// UserID returns the id stored by JWTMiddleware.
func UserID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(TokenUserID).(int64)
	return id, ok
}
