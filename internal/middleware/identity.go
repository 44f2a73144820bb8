package middleware

// identity.go defines the value the JWT gate threads through the request
// scope. Handlers receive the resolved caller as an explicit Identity
// instead of loose user_id/role entries, so downstream code never depends
// on ambient globals and can re-verify the bearer itself when it wants to.

import (
	"github.com/labstack/echo/v4"

	"github.com/armanhn/elearning-marketplace/internal/utils"
)

// identityKey is the context key under which JWTAuth stores the caller.
const identityKey = "identity"

// Identity is the verified caller of a protected request: the user id and
// role from the token plus the full claim snapshot for anything else a
// handler may need (phone, picture, can_host, jti).
type Identity struct {
	UserID uint64
	Role   string
	Claims utils.TokenClaims
}

// CurrentIdentity returns the Identity stored by JWTAuth, if any.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	v := c.Get(identityKey)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
