package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecomkit/storefront/internal/auth"
)

var ErrBadCredentials = errors.New("bad credentials")

// CodeChecker validates an SMS verification code for a phone number.
type CodeChecker interface {
	Check(ctx context.Context, phone, code string) error
}

type Service struct {
	repo   Repository
	codes  CodeChecker
	tokens *auth.Tokens
	log    *zap.Logger
}

func NewService(repo Repository, codes CodeChecker, tokens *auth.Tokens, log *zap.Logger) *Service {
	return &Service{repo: repo, codes: codes, tokens: tokens, log: log}
}

// Login verifies the SMS code and issues a token. First login for a phone
// number registers the user on the fly.
func (s *Service) Login(ctx context.Context, phone, code string) (*AuthResponse, error) {
	if err := s.codes.Check(ctx, phone, code); err != nil {
		return nil, ErrBadCredentials
	}

	u, err := s.repo.GetByPhone(ctx, phone)
	if err == ErrNotFound {
		u = &User{ID: uuid.NewString(), Phone: phone}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, err
		}
		s.log.Info("registered new user", zap.String("user_id", u.ID))
	} else if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID, auth.RoleCustomer)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: u}, nil
}

// AdminLogin checks the bcrypt hash and issues an admin-role token.
func (s *Service) AdminLogin(ctx context.Context, username, password string) (*AuthResponse, error) {
	a, err := s.repo.GetAdminByUsername(ctx, username)
	if err == ErrNotFound {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	token, err := s.tokens.Issue(a.ID, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token}, nil
}
