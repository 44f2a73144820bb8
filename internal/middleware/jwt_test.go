package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armanhn/elearning-marketplace/internal/middleware"
	"github.com/armanhn/elearning-marketplace/internal/utils"
)

const testSecret = "middleware-test-secret"

type staticRevocations struct {
	revoked map[string]bool
}

func (s staticRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], nil
}

func issue(t *testing.T) utils.IssuedToken {
	t.Helper()
	tok, err := utils.TokenIssuer{Secret: testSecret}.Issue(utils.TokenSubject{
		ID:   7,
		Role: "Mentor",
	}, 3600)
	require.NoError(t, err)
	return tok
}

func runGate(t *testing.T, mw echo.MiddlewareFunc, bearer string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	if next == nil {
		next = func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	}
	require.NoError(t, mw(next)(e.NewContext(req, rec)))
	return rec
}

func TestJWTAuthStoresIdentity(t *testing.T) {
	tok := issue(t)
	gate := middleware.JWTAuth(testSecret, staticRevocations{})

	var got middleware.Identity
	rec := runGate(t, gate, "Bearer "+tok.Token, func(c echo.Context) error {
		ident, ok := middleware.CurrentIdentity(c)
		require.True(t, ok)
		got = ident
		return c.NoContent(http.StatusOK)
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), got.UserID)
	assert.Equal(t, "Mentor", got.Role)
	assert.Equal(t, tok.JTI, got.Claims.JTI)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	gate := middleware.JWTAuth(testSecret, staticRevocations{})

	for _, header := range []string{"", "Token abc", "Bearer "} {
		rec := runGate(t, gate, header, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header=%q", header)
	}
}

func TestJWTAuthBadSignature(t *testing.T) {
	tok, err := utils.TokenIssuer{Secret: "some-other-secret"}.Issue(utils.TokenSubject{ID: 7}, 3600)
	require.NoError(t, err)

	gate := middleware.JWTAuth(testSecret, staticRevocations{})
	rec := runGate(t, gate, "Bearer "+tok.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRevokedToken(t *testing.T) {
	tok := issue(t)
	gate := middleware.JWTAuth(testSecret, staticRevocations{revoked: map[string]bool{tok.JTI: true}})

	rec := runGate(t, gate, "Bearer "+tok.Token, func(c echo.Context) error {
		t.Fatal("next handler must not run for a revoked token")
		return nil
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token revoked")
}

func TestRequireRole(t *testing.T) {
	tok := issue(t) // role Mentor
	gate := middleware.JWTAuth(testSecret, staticRevocations{})

	allowedChain := func(next echo.HandlerFunc) echo.HandlerFunc {
		return gate(middleware.RequireRole("Mentor", "Admin")(next))
	}
	rec := runGate(t, allowedChain, "Bearer "+tok.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	deniedChain := func(next echo.HandlerFunc) echo.HandlerFunc {
		return gate(middleware.RequireRole("Admin")(next))
	}
	rec = runGate(t, deniedChain, "Bearer "+tok.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	// RequireRole on its own, with no JWTAuth upstream, must refuse.
	rec := runGate(t, middleware.RequireRole("Admin"), "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
