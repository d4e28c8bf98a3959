package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"accountapi/internal/auth"
	apperrors "accountapi/internal/errors"
	"accountapi/internal/model"
	"accountapi/internal/repository"
)

// AccountService handles the account lifecycle: registration, login, logout
// and deletion. Collaborators are injected so tests can substitute fakes.
type AccountService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, tokenID string) error
	DeleteAccount(ctx context.Context, userID uint, tokenID string) error
}

type accountService struct {
	users      repository.UserRepository
	issuer     auth.TokenIssuer
	bcryptCost int
}

// NewAccountService creates a new account service.
func NewAccountService(users repository.UserRepository, issuer auth.TokenIssuer, bcryptCost int) AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &accountService{users: users, issuer: issuer, bcryptCost: bcryptCost}
}

// Register creates a user with a hashed password and mints a first session
// token. The duplicate-email race is decided by the unique index on insert.
func (s *accountService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issuer.Issue(ctx, user)
	if err != nil {
		// no partial writes: a registration without a token is rolled back
		_ = s.users.Delete(ctx, user.ID)
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and mints a new session token. Unknown email and
// wrong password return the same error.
func (s *accountService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Logout revokes the presented session token only; other sessions of the same
// user stay valid.
func (s *accountService) Logout(ctx context.Context, tokenID string) error {
	return s.issuer.Revoke(ctx, tokenID)
}

// DeleteAccount revokes the current token, then every remaining token, then
// removes the user record. The token table's ON DELETE CASCADE backstops any
// token minted concurrently.
func (s *accountService) DeleteAccount(ctx context.Context, userID uint, tokenID string) error {
	if err := s.issuer.Revoke(ctx, tokenID); err != nil {
		return err
	}
	if err := s.issuer.RevokeAll(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
