package handler

import (
	"context"  // provides context with cancellation for DB and cache calls
	"errors"   // errors.Is against repository and token sentinels
	"net/http" // HTTP status codes and primitives
	"regexp"   // email shape validation
	"strings"  // string normalization utilities
	"time"     // timeouts and revocation TTLs

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing
	"github.com/rs/zerolog/log"   // structured logging for anomalies

	"github.com/armanhn/elearning-marketplace/internal/config"     // app configuration
	"github.com/armanhn/elearning-marketplace/internal/model"      // user records
	"github.com/armanhn/elearning-marketplace/internal/queue"      // registration events
	"github.com/armanhn/elearning-marketplace/internal/repository" // sentinel errors
	"github.com/armanhn/elearning-marketplace/internal/utils"      // token issuing/verification, hashing
)

// UserStore is the slice of the user directory the auth endpoints need.
// The concrete implementation is repository.UserRepo; tests substitute an
// in-memory fake.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Update(ctx context.Context, u model.User) error
	EmailInUse(ctx context.Context, email string, exclude uint64) (bool, error)
	PhoneInUse(ctx context.Context, phone string, exclude uint64) (bool, error)
}

// RevocationStore records and reads back revoked token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RegistrationPublisher announces new registrations to the message broker.
// Publishing is best-effort; a broker outage never fails a signup.
type RegistrationPublisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens RevocationStore
	Events RegistrationPublisher // optional, may be nil
}

func NewAuthHandler(cfg config.Config, u UserStore, t RevocationStore, ev RegistrationPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Events: ev}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Picture  string `json:"picture"`
	Role     string `json:"role"` // Admin | Mentor | Learner
	CanHost  bool   `json:"can_host"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Register creates a user with a bcrypt-hashed password. It does not log
// the user in; the client is expected to call /login afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"body": "invalid json body"}})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)

	fieldErrs := map[string]string{}
	if req.Name == "" {
		fieldErrs["name"] = "name is required"
	}
	if req.Email == "" {
		fieldErrs["email"] = "email is required"
	} else if !emailShape.MatchString(req.Email) {
		fieldErrs["email"] = "email is not valid"
	}
	if len(req.Password) < 6 {
		fieldErrs["password"] = "password must be at least 6 characters"
	}
	if req.Phone == "" {
		fieldErrs["phone"] = "phone is required"
	}
	if !model.ValidRole(req.Role) {
		fieldErrs["role"] = "role must be Admin, Mentor or Learner"
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrs})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), config.RequestTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Picture:      req.Picture,
		Role:         req.Role,
		CanHost:      req.CanHost,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"email": "email already in use"}})
		}
		if errors.Is(err, repository.ErrPhoneExists) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"phone": "phone already in use"}})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	if h.Events != nil {
		ev := queue.UserRegisteredEvent{
			UserID:       uid,
			Email:        req.Email,
			Role:         req.Role,
			RegisteredAt: time.Now().UTC().Format(time.RFC3339),
		}
		// Detached from the request context so a slow broker cannot hold
		// the response; failures are logged inside the publisher.
		go func() { _ = h.Events.PublishUserRegistered(context.Background(), ev) }()
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "registration successful"})
}

// Login verifies credentials and returns an access/refresh token pair. An
// unknown email and a wrong password produce byte-identical responses so
// the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), config.RequestTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	issuer := utils.TokenIssuer{Secret: h.Cfg.JWTSecret}
	subject := tokenSubject(u)

	access, err := issuer.Issue(subject, h.Cfg.AccessTTLSec)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := issuer.Issue(subject, h.Cfg.RefreshTTLSec)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access.Token,
		"refresh_token": refresh.Token,
	})
}

// Refresh exchanges a still-valid token for a fresh access token. The
// presented token goes through the full verifier including expiry and
// revocation, so an expired refresh token cannot be redeemed; the refresh
// token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	claims, err := h.verifyBearer(c)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), config.RequestTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A valid signature carrying a uid with no user row means the
			// account was deleted after issuance, or the claim survived a
			// consistency bug. Worth a log line either way.
			log.Warn().Uint64("uid", claims.UserID).Str("jti", claims.JTI).
				Msg("refresh: token uid has no user record")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	access, err := utils.TokenIssuer{Secret: h.Cfg.JWTSecret}.Issue(tokenSubject(u), h.Cfg.AccessTTLSec)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": access.Token})
}

// Logout revokes the presented token by its jti. Only signature and expiry
// are checked first: an expired token is reported as such rather than
// revoked (nothing to revoke), and revoking an already-revoked jti just
// overwrites the marker, so repeat calls are safe.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, err := utils.BearerFromHeader(c.Request().Header.Get("Authorization"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}
	claims, err := utils.VerifyToken(h.Cfg.JWTSecret, raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token already expired"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), config.RequestTimeout)
	defer cancel()

	ttl := time.Duration(h.Cfg.RevocationTTLMin) * time.Minute
	if err := h.Tokens.Revoke(ctx, claims.JTI, ttl); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// verifyBearer runs the full verifier on the request's Authorization
// header: bearer extraction, signature, expiry, then revocation. Handlers
// call this themselves instead of trusting that the route gate ran; the
// check is idempotent and side-effect-free.
func (h *AuthHandler) verifyBearer(c echo.Context) (utils.TokenClaims, error) {
	raw, err := utils.BearerFromHeader(c.Request().Header.Get("Authorization"))
	if err != nil {
		return utils.TokenClaims{}, err
	}
	claims, err := utils.VerifyToken(h.Cfg.JWTSecret, raw)
	if err != nil {
		return utils.TokenClaims{}, err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), config.RequestTimeout)
	defer cancel()
	revoked, err := h.Tokens.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return utils.TokenClaims{}, err
	}
	if revoked {
		return utils.TokenClaims{}, utils.ErrTokenRevoked
	}
	return claims, nil
}

// authError renders a verification failure. Taxonomy errors keep their
// message; anything else (key store down, etc.) becomes a generic 500.
func authError(c echo.Context, err error) error {
	for _, known := range []error{
		utils.ErrMissingToken, utils.ErrMalformedToken, utils.ErrInvalidSignature,
		utils.ErrTokenExpired, utils.ErrTokenRevoked,
	} {
		if errors.Is(err, known) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": known.Error()})
		}
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "auth check failed"})
}

// tokenSubject snapshots the claim-bearing fields of a user record.
func tokenSubject(u model.User) utils.TokenSubject {
	return utils.TokenSubject{
		ID:      u.ID,
		Role:    u.Role,
		Phone:   u.Phone,
		Picture: u.Picture,
		CanHost: u.CanHost,
	}
}
