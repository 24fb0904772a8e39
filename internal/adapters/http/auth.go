package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/anishmaharjan/caremap/internal/core/domain"
)

const userRefKey ctxKey = "user_ref"

// WithUser returns a context carrying the authenticated user's reference.
func WithUser(ctx context.Context, userRef string) context.Context {
	return context.WithValue(ctx, userRefKey, userRef)
}

// ContextAuth implements ports.AuthContext by reading the user reference the
// JWT middleware stored in the request context.
type ContextAuth struct{}

func (ContextAuth) CurrentUser(ctx context.Context) (string, error) {
	ref, ok := ctx.Value(userRefKey).(string)
	if !ok || ref == "" {
		return "", domain.ErrAuthRequired
	}
	return ref, nil
}

// JWTMiddleware validates a Bearer token and stores the subject claim in the
// request context. Requests without a token pass through unauthenticated;
// handlers that need a user get domain.ErrAuthRequired from ContextAuth.
func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return errUnauthorized(c, "malformed authorization header")
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			return errUnauthorized(c, "invalid token")
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			return errUnauthorized(c, "token has no subject")
		}

		c.SetUserContext(WithUser(c.UserContext(), sub))
		return c.Next()
	}
}
