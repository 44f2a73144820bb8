package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armanhn/elearning-marketplace/internal/utils"
)

func TestProfileRequiresToken(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h.Profile, http.MethodGet, "/api/profile", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing bearer token", decodeBody(t, rec)["error"])
}

func TestProfileReturnsSanitizedProjection(t *testing.T) {
	h, _, _ := newTestHandler()
	register(t, h, `{"name":"A","email":"a@x.com","password":"abcdef","phone":"111","picture":"p.png","role":"Mentor","can_host":true}`)
	access, _ := loginTokens(t, h)

	rec := doJSON(t, h.Profile, http.MethodGet, "/api/profile", "", access)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, float64(1), profile["user_id"])
	assert.Equal(t, "A", profile["name"])
	assert.Equal(t, "a@x.com", profile["email"])
	assert.Equal(t, "111", profile["phone"])
	assert.Equal(t, "p.png", profile["picture"])
	assert.Equal(t, "Mentor", profile["role"])
	assert.Equal(t, true, profile["can_host"])
	assert.NotContains(t, profile, "password_hash")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUpdateProfilePartialFields(t *testing.T) {
	h, users, _ := newTestHandler()
	register(t, h, learnerJSON)
	access, _ := loginTokens(t, h)

	rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/profile/update",
		`{"name":"Renamed","picture":"new.png"}`, access)
	require.Equal(t, http.StatusOK, rec.Code)

	u, err := users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)
	assert.Equal(t, "new.png", u.Picture)
	// Untouched fields keep their values.
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "111", u.Phone)
	assert.Equal(t, "Learner", u.Role)
}

func TestUpdateProfilePhoneConflict(t *testing.T) {
	h, users, _ := newTestHandler()
	register(t, h, learnerJSON)
	register(t, h, `{"name":"B","email":"b@x.com","password":"abcdef","phone":"222","role":"Mentor"}`)
	access, _ := loginTokens(t, h) // user A

	rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/profile/update",
		`{"phone":"222"}`, access)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decodeBody(t, rec)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "phone")

	// The record is unchanged.
	u, err := users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "111", u.Phone)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	h, users, _ := newTestHandler()
	register(t, h, learnerJSON)
	register(t, h, `{"name":"B","email":"b@x.com","password":"abcdef","phone":"222","role":"Mentor"}`)
	access, _ := loginTokens(t, h)

	rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/profile/update",
		`{"email":"b@x.com"}`, access)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	u, err := users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
}

func TestUpdateProfilePasswordRehash(t *testing.T) {
	h, users, _ := newTestHandler()
	register(t, h, learnerJSON)
	access, _ := loginTokens(t, h)

	before, err := users.GetByID(context.Background(), 1)
	require.NoError(t, err)

	rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/profile/update",
		`{"password":"newsecret"}`, access)
	require.Equal(t, http.StatusOK, rec.Code)

	after, err := users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
	assert.True(t, utils.VerifyPassword(after.PasswordHash, "newsecret"))

	// Old password no longer works, new one does.
	assert.Equal(t, http.StatusUnauthorized, login(t, h, "a@x.com", "abcdef").Code)
	assert.Equal(t, http.StatusOK, login(t, h, "a@x.com", "newsecret").Code)
}

func TestUpdateProfileInvalidFields(t *testing.T) {
	h, _, _ := newTestHandler()
	register(t, h, learnerJSON)
	access, _ := loginTokens(t, h)

	cases := map[string]string{
		"bad email":      `{"email":"nope"}`,
		"short password": `{"password":"abc"}`,
		"unknown role":   `{"role":"Wizard"}`,
		"empty name":     `{"name":"  "}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/profile/update", body, access)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestUpdateProfileDoesNotReissueToken(t *testing.T) {
	h, users, _ := newTestHandler()
	register(t, h, learnerJSON)
	access, _ := loginTokens(t, h)

	rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/profile/update",
		`{"role":"Mentor"}`, access)
	require.Equal(t, http.StatusOK, rec.Code)

	// The directory has the new role; the old token keeps working with its
	// stale claim snapshot until the next login/refresh.
	u, err := users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Mentor", u.Role)

	claims, err := utils.VerifyToken(testConfig().JWTSecret, access)
	require.NoError(t, err)
	assert.Equal(t, "Learner", claims.Role)

	rec = doJSON(t, h.Profile, http.MethodGet, "/api/profile", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody(t, rec)["profile"].(map[string]interface{})
	assert.Equal(t, "Mentor", profile["role"])
}
