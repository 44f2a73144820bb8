package utils // package utils provides helpers for token issuance, verification and hashing

import (
	"errors"  // sentinel error values for the verification taxonomy
	"strconv" // numeric claim coercion
	"strings" // bearer prefix handling
	"time"    // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
	"github.com/google/uuid"       // jti generation, one unique id per issued token
)

// Verification failures, ordered the way the verifier checks them. Every
// token-parsing or cryptographic failure is converted to one of these at
// this boundary; no raw jwt-library error reaches a handler or the client.
var (
	ErrMissingToken     = errors.New("missing bearer token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenRevoked     = errors.New("token revoked")
)

// DefaultTokenTTLSec is substituted when a caller asks for a non-positive
// token lifetime. Issuing still succeeds; a bad TTL is a configuration
// mistake, not a reason to fail a login.
const DefaultTokenTTLSec = 3600

// IssuedToken is a freshly signed JWT along with the metadata a caller may
// need to report back to the client.
type IssuedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // UTC expiration time
	JTI   string    // unique token id, the revocation key
}

// TokenClaims is the decoded, verified claim set of a token. UserID comes
// from the `uid` claim; the profile fields are snapshots taken at issuance
// time and may be stale relative to the user directory.
type TokenClaims struct {
	UserID    uint64
	Role      string
	Phone     string
	Picture   string
	CanHost   bool
	IssuedAt  time.Time
	ExpiresAt time.Time
	JTI       string
}

// TokenIssuer holds what both token kinds need at mint time: the process-wide
// HMAC secret. Access and refresh tokens are deliberately produced by the
// same routine and differ only in the requested lifetime.
type TokenIssuer struct {
	Secret string
}

// Issue builds and signs an HS256 JWT for a user with the given lifetime in
// seconds. Lifetimes <= 0 fall back to DefaultTokenTTLSec. The payload
// carries uid, role, phone, picture and can_host snapshots plus the
// standard iat/exp pair and a per-token jti used for revocation.
func (ti TokenIssuer) Issue(u TokenSubject, ttlSec int) (IssuedToken, error) {
	if ttlSec <= 0 {
		ttlSec = DefaultTokenTTLSec
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlSec) * time.Second)
	jti := uuid.NewString()

	claims := jwt.MapClaims{
		"uid":      u.ID,
		"role":     u.Role,
		"phone":    u.Phone,
		"picture":  u.Picture,
		"can_host": u.CanHost,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
		"jti":      jti,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(ti.Secret))
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, Exp: exp, JTI: jti}, nil
}

// TokenSubject is the minimal user shape the issuer needs. Declared here so
// the utils package does not depend on internal/model; handlers adapt their
// user records into it.
type TokenSubject struct {
	ID      uint64
	Role    string
	Phone   string
	Picture string
	CanHost bool
}

// VerifyToken parses raw, checks the HMAC-SHA256 signature (constant-time,
// done by the jwt library) and the expiry, and returns the claim set.
// Revocation is a separate, stateful check performed by callers against the
// key store; VerifyToken itself is a pure transform and safe to call twice.
func VerifyToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject any signing method other than HMAC so an attacker cannot
		// downgrade to "none" or swap in an asymmetric scheme.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return TokenClaims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return TokenClaims{}, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenUnverifiable), errors.Is(err, ErrInvalidSignature):
			return TokenClaims{}, ErrInvalidSignature
		default:
			return TokenClaims{}, ErrMalformedToken
		}
	}
	if !tok.Valid {
		return TokenClaims{}, ErrMalformedToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrMalformedToken
	}
	return claimsFromMap(mc)
}

// BearerFromHeader extracts the raw token from an Authorization header
// value. It fails with ErrMissingToken when the header is absent or lacks
// the required "Bearer " prefix.
func BearerFromHeader(header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrMissingToken
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" {
		return "", ErrMissingToken
	}
	return raw, nil
}

// claimsFromMap coerces a MapClaims payload into TokenClaims. JSON numbers
// decode as float64; some producers encode uid as a numeric string, so both
// are accepted, matching how the rest of the system reads the sub claim.
func claimsFromMap(mc jwt.MapClaims) (TokenClaims, error) {
	var c TokenClaims
	switch v := mc["uid"].(type) {
	case float64:
		c.UserID = uint64(v)
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return TokenClaims{}, ErrMalformedToken
		}
		c.UserID = n
	default:
		return TokenClaims{}, ErrMalformedToken
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}
	if v, ok := mc["phone"].(string); ok {
		c.Phone = v
	}
	if v, ok := mc["picture"].(string); ok {
		c.Picture = v
	}
	if v, ok := mc["can_host"].(bool); ok {
		c.CanHost = v
	}
	if v, ok := mc["jti"].(string); ok {
		c.JTI = v
	}
	if v, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(v), 0).UTC()
	}
	if v, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(v), 0).UTC()
	}
	return c, nil
}
