package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/armanhn/elearning-marketplace/internal/config"
	"github.com/armanhn/elearning-marketplace/internal/model"
	"github.com/armanhn/elearning-marketplace/internal/repository"
	"github.com/armanhn/elearning-marketplace/internal/utils"
)

// profilePart is the sanitized projection of a user record returned to the
// client. The password hash never appears here.
type profilePart struct {
	UserID  uint64 `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Picture string `json:"picture"`
	Role    string `json:"role"`
	CanHost bool   `json:"can_host"`
}

// updateProfileReq uses pointers so "field absent" and "field set to empty"
// are distinguishable; only fields present in the body are applied.
type updateProfileReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Picture  *string `json:"picture"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// Profile verifies the bearer and returns the caller's current record,
// re-read from the user directory rather than trusting the token's
// embedded claim snapshot.
func (h *AuthHandler) Profile(c echo.Context) error {
	claims, err := h.verifyBearer(c)
	if err != nil {
		return authError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), config.RequestTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"profile": profilePart{
			UserID:  u.ID,
			Name:    u.Name,
			Email:   u.Email,
			Phone:   u.Phone,
			Picture: u.Picture,
			Role:    u.Role,
			CanHost: u.CanHost,
		},
	})
}

// UpdateProfile applies the fields present in the request to the caller's
// record. Email and phone are re-validated for uniqueness against all other
// users before anything is written, so a conflicting request leaves the
// record unchanged. The caller's token is not reissued: claims embedded at
// issuance (role, can_host, phone, picture) stay stale until the next
// login or refresh.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	claims, err := h.verifyBearer(c)
	if err != nil {
		return authError(c, err)
	}

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"body": "invalid json body"}})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), config.RequestTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	fieldErrs := map[string]string{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			fieldErrs["name"] = "name cannot be empty"
		} else {
			u.Name = name
		}
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailShape.MatchString(email) {
			fieldErrs["email"] = "email is not valid"
		} else {
			taken, err := h.Users.EmailInUse(ctx, email, u.ID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
			}
			if taken {
				fieldErrs["email"] = "email already in use"
			} else {
				u.Email = email
			}
		}
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			fieldErrs["phone"] = "phone cannot be empty"
		} else {
			taken, err := h.Users.PhoneInUse(ctx, phone, u.ID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
			}
			if taken {
				fieldErrs["phone"] = "phone already in use"
			} else {
				u.Phone = phone
			}
		}
	}
	if req.Picture != nil {
		u.Picture = *req.Picture
	}
	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			fieldErrs["role"] = "role must be Admin, Mentor or Learner"
		} else {
			u.Role = *req.Role
		}
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			fieldErrs["password"] = "password must be at least 6 characters"
		} else {
			hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
			}
			u.PasswordHash = hash
		}
	}

	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": fieldErrs})
	}

	if err := h.Users.Update(ctx, u); err != nil {
		// The pre-checks race with concurrent writers; the unique indexes
		// have the final word.
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"email": "email already in use"}})
		}
		if errors.Is(err, repository.ErrPhoneExists) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"phone": "phone already in use"}})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}
