// Package service holds the business rules of the API, between the HTTP
// handlers and the repositories:
//
//	Handler (HTTP) → Service (rules) → Repository (storage)
//
// Services take repository interfaces, never the sqlstore package, so their
// tests run against in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/ess-backend/internal/apperror"
	"github.com/sakif/ess-backend/internal/auth"
	"github.com/sakif/ess-backend/internal/model"
	"github.com/sakif/ess-backend/internal/repository"
)

// AuthService registers users, checks credentials and resolves the identity
// behind a request.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	digests   *auth.DigestService
	tokens    *auth.TokenService // nil when access tokens are disabled
	logger    *slog.Logger
}

// NewAuthService creates an AuthService. tokens may be nil, in which case no
// access token is issued and only the body token authenticates.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	digests *auth.DigestService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		digests:   digests,
		tokens:    tokens,
		logger:    logger,
	}
}

// AuthResult is what register and login hand back to the client.
// AccessToken is empty when access tokens are disabled.
type AuthResult struct {
	Token       model.Token
	AccessToken string
}

// Register creates a user and issues its tokens.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := checkCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
		}
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if apperror.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %s: %w", email, err)
	}

	s.logger.Info("user registered", slog.String("email", email))
	return s.issue(email)
}

// Login checks email and password and issues fresh tokens.
//
// An unknown email and a wrong password are distinct failures ("User not
// found", "Incorrect Password"); clients rely on the difference.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := checkCredentials(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperror.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", slog.String("email", email))
			return nil, apperror.Unauthorized("Incorrect Password")
		}
		return nil, fmt.Errorf("service/auth: verifying password for %s: %w", email, err)
	}

	return s.issue(email)
}

// Authenticate resolves the email a request acts as.
//
// A bearer identity placed in ctx by auth.BearerAuth wins. Otherwise the
// body token is required and its digest must verify. The email inside a
// verified body token is trusted without a user lookup.
func (s *AuthService) Authenticate(ctx context.Context, tok *model.Token) (string, error) {
	if email, ok := auth.EmailFromContext(ctx); ok {
		return email, nil
	}
	if tok == nil {
		return "", apperror.MissingField("token")
	}

	email, err := s.digests.Verify(*tok)
	if err != nil {
		s.logger.Debug("body token rejected", slog.String("email", tok.Email))
		return "", apperror.Unauthorized("Invalid Token Hash")
	}
	return email, nil
}

func (s *AuthService) issue(email string) (*AuthResult, error) {
	res := &AuthResult{Token: s.digests.Issue(email)}
	if s.tokens == nil {
		return res, nil
	}

	access, err := s.tokens.Generate(email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating access token for %s: %w", email, err)
	}
	res.AccessToken = access
	return res, nil
}

func checkCredentials(email, password string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "Email must not be empty")
	}
	if password == "" {
		return apperror.ValidationFailed("password", "Password must not be empty")
	}
	return nil
}
