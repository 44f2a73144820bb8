package handler_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/armanhn/elearning-marketplace/internal/config"
	"github.com/armanhn/elearning-marketplace/internal/handler"
	"github.com/armanhn/elearning-marketplace/internal/model"
	"github.com/armanhn/elearning-marketplace/internal/repository"
)

// fakeUsers is an in-memory UserStore enforcing the same email/phone
// uniqueness the MySQL indexes would.
type fakeUsers struct {
	mu    sync.Mutex
	users map[uint64]model.User
	next  uint64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[uint64]model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u model.User) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == strings.ToLower(u.Email) {
			return 0, repository.ErrEmailExists
		}
		if existing.Phone == u.Phone {
			return 0, repository.ErrPhoneExists
		}
	}
	f.next++
	u.ID = f.next
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Update(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, existing := range f.users {
		if id == u.ID {
			continue
		}
		if existing.Email == strings.ToLower(u.Email) {
			return repository.ErrEmailExists
		}
		if existing.Phone == u.Phone {
			return repository.ErrPhoneExists
		}
	}
	u.Email = strings.ToLower(u.Email)
	u.UpdatedAt = time.Now().UTC()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) EmailInUse(_ context.Context, email string, exclude uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if id != exclude && u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) PhoneInUse(_ context.Context, phone string, exclude uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if id != exclude && u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) delete(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

// fakeRevocations mimics the Redis key store: TTL'd markers per jti.
type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: map[string]time.Time{}}
}

func (f *fakeRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	exp, ok := f.revoked[jti]
	return ok && time.Now().Before(exp), nil
}

func testConfig() config.Config {
	return config.Config{
		Env:              "test",
		JWTSecret:        "handler-test-secret",
		AccessTTLSec:     3600,
		RefreshTTLSec:    604800,
		RevocationTTLMin: 60,
		BcryptCost:       bcrypt.MinCost,
	}
}

func newTestHandler() (*handler.AuthHandler, *fakeUsers, *fakeRevocations) {
	users := newFakeUsers()
	tokens := newFakeRevocations()
	return handler.NewAuthHandler(testConfig(), users, tokens, nil), users, tokens
}
