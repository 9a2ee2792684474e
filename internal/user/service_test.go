package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecomkit/storefront/internal/auth"
)

type stubRepo struct {
	byPhone map[string]*User
	admins  map[string]*Admin
	created []*User
}

func (s *stubRepo) Create(ctx context.Context, u *User) error {
	if s.byPhone == nil {
		s.byPhone = map[string]*User{}
	}
	s.byPhone[u.Phone] = u
	s.created = append(s.created, u)
	return nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*User, error) {
	for _, u := range s.byPhone {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) GetByPhone(ctx context.Context, phone string) (*User, error) {
	u, ok := s.byPhone[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) GetAdminByUsername(ctx context.Context, username string) (*Admin, error) {
	a, ok := s.admins[username]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

type stubCodes struct{ valid string }

func (s *stubCodes) Check(ctx context.Context, phone, code string) error {
	if code != s.valid {
		return errors.New("mismatch")
	}
	return nil
}

func newTestUserService(repo *stubRepo) *Service {
	return NewService(repo, &stubCodes{valid: "482913"}, auth.NewTokens("test-secret", time.Hour), zap.NewNop())
}

func TestLogin_RegistersOnFirstUse(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := newTestUserService(repo)

	res, err := svc.Login(context.Background(), "13800138000", "482913")
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, "13800138000", res.User.Phone)
	assert.NotEmpty(t, res.Token)
	require.Len(t, repo.created, 1)

	// Second login reuses the account.
	res2, err := svc.Login(context.Background(), "13800138000", "482913")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, res2.User.ID)
	assert.Len(t, repo.created, 1)

	// Issued token carries the customer role.
	claims, err := auth.NewTokens("test-secret", time.Hour).Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCustomer, claims.Role)
	assert.Equal(t, res.User.ID, claims.Subject)
}

func TestLogin_BadCode(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc := newTestUserService(repo)

	_, err := svc.Login(context.Background(), "13800138000", "000000")
	require.ErrorIs(t, err, ErrBadCredentials)
	assert.Empty(t, repo.created, "no account registered on failed code")
}

func TestAdminLogin(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("hunter2")
	require.NoError(t, err)
	repo := &stubRepo{admins: map[string]*Admin{
		"ops": {ID: "admin-1", Username: "ops", PasswordHash: hash},
	}}
	svc := newTestUserService(repo)

	res, err := svc.AdminLogin(context.Background(), "ops", "hunter2")
	require.NoError(t, err)

	claims, err := auth.NewTokens("test-secret", time.Hour).Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "admin-1", claims.Subject)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("hunter2")
	require.NoError(t, err)
	repo := &stubRepo{admins: map[string]*Admin{
		"ops": {ID: "admin-1", Username: "ops", PasswordHash: hash},
	}}
	svc := newTestUserService(repo)

	_, err = svc.AdminLogin(context.Background(), "ops", "wrong")
	require.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.AdminLogin(context.Background(), "nobody", "hunter2")
	require.ErrorIs(t, err, ErrBadCredentials)
}
