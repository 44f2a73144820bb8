package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // context for the revocation lookup
	"net/http" // HTTP status codes for responses

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/armanhn/elearning-marketplace/internal/utils"
)

// RevocationChecker is the slice of the key store the gate needs: a read
// of the invalidated_token_<jti> marker.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTAuth returns an Echo middleware that runs the full token verifier on
// the Authorization header: bearer extraction, signature, expiry, then the
// revocation lookup. On success it stores the caller as an Identity in the
// request scope. Handlers must not assume this gate ran; verification is
// idempotent and several handlers repeat it inline.
func JWTAuth(secret string, revoked RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := utils.BearerFromHeader(c.Request().Header.Get("Authorization"))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}
			claims, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}
			// Revocation is checked last: it is the only stateful step and
			// only reached by tokens that are otherwise valid.
			isRevoked, err := revoked.IsRevoked(c.Request().Context(), claims.JTI)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "auth check failed"})
			}
			if isRevoked {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": utils.ErrTokenRevoked.Error()})
			}

			c.Set(identityKey, Identity{UserID: claims.UserID, Role: claims.Role, Claims: claims})
			return next(c)
		}
	}
}
