package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "accountapi/internal/errors"
	"accountapi/internal/model"
)

// MockTokenRepository is a mock implementation of TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *model.AccessToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindByID(ctx context.Context, id string) (*model.AccessToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessToken), args.Error(1)
}

func (m *MockTokenRepository) ListByUser(ctx context.Context, userID uint) ([]model.AccessToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AccessToken), args.Error(1)
}

func (m *MockTokenRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestTokenIssuer_Issue(t *testing.T) {
	mockTokens := new(MockTokenRepository)
	mockUsers := new(MockUserRepository)

	var stored *model.AccessToken
	mockTokens.On("Create", mock.Anything, mock.AnythingOfType("*model.AccessToken")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*model.AccessToken)
	}).Return(nil)

	issuer := NewTokenIssuer(mockTokens, mockUsers, nil)
	plaintext, err := issuer.Issue(context.Background(), &model.User{ID: 3})

	require.NoError(t, err)
	id, secret, ok := strings.Cut(plaintext, "|")
	require.True(t, ok)
	assert.NotEmpty(t, secret)

	require.NotNil(t, stored)
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, uint(3), stored.UserID)
	_, err = uuid.Parse(stored.ID)
	assert.NoError(t, err)

	// only the digest is persisted
	assert.NotEqual(t, secret, stored.TokenHash)
	assert.Equal(t, hashSecret(secret), stored.TokenHash)

	mockTokens.AssertExpectations(t)
}

func TestTokenIssuer_Resolve(t *testing.T) {
	user := &model.User{ID: 2, Email: "ann@example.com"}
	goodToken := &model.AccessToken{ID: "tok-1", UserID: 2, TokenHash: hashSecret("s3cret")}

	tests := []struct {
		name          string
		plaintext     string
		setupMock     func(*MockTokenRepository, *MockUserRepository)
		expectedError error
	}{
		{
			name:      "valid token",
			plaintext: "tok-1|s3cret",
			setupMock: func(mTokens *MockTokenRepository, mUsers *MockUserRepository) {
				mTokens.On("FindByID", mock.Anything, "tok-1").Return(goodToken, nil)
				mUsers.On("FindByID", mock.Anything, uint(2)).Return(user, nil)
				mTokens.On("TouchLastUsed", mock.Anything, "tok-1", mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "missing separator",
			plaintext:     "tok-1s3cret",
			setupMock:     func(mTokens *MockTokenRepository, mUsers *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidToken,
		},
		{
			name:          "empty secret",
			plaintext:     "tok-1|",
			setupMock:     func(mTokens *MockTokenRepository, mUsers *MockUserRepository) {},
			expectedError: apperrors.ErrInvalidToken,
		},
		{
			name:      "wrong secret",
			plaintext: "tok-1|not-the-secret",
			setupMock: func(mTokens *MockTokenRepository, mUsers *MockUserRepository) {
				mTokens.On("FindByID", mock.Anything, "tok-1").Return(goodToken, nil)
			},
			expectedError: apperrors.ErrInvalidToken,
		},
		{
			name:      "revoked token",
			plaintext: "gone|s3cret",
			setupMock: func(mTokens *MockTokenRepository, mUsers *MockUserRepository) {
				mTokens.On("FindByID", mock.Anything, "gone").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidToken,
		},
		{
			name:      "user deleted after issuance",
			plaintext: "tok-1|s3cret",
			setupMock: func(mTokens *MockTokenRepository, mUsers *MockUserRepository) {
				mTokens.On("FindByID", mock.Anything, "tok-1").Return(goodToken, nil)
				mUsers.On("FindByID", mock.Anything, uint(2)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTokens := new(MockTokenRepository)
			mockUsers := new(MockUserRepository)
			tt.setupMock(mockTokens, mockUsers)

			issuer := NewTokenIssuer(mockTokens, mockUsers, nil)
			resolved, tokenID, err := issuer.Resolve(context.Background(), tt.plaintext)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, resolved)
				assert.Empty(t, tokenID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, user, resolved)
				assert.Equal(t, "tok-1", tokenID)
			}

			mockTokens.AssertExpectations(t)
			mockUsers.AssertExpectations(t)
		})
	}
}

func TestTokenIssuer_Revoke(t *testing.T) {
	mockTokens := new(MockTokenRepository)
	mockTokens.On("Delete", mock.Anything, "tok-1").Return(nil)

	issuer := NewTokenIssuer(mockTokens, new(MockUserRepository), nil)
	assert.NoError(t, issuer.Revoke(context.Background(), "tok-1"))
	// revoking again is still fine; the delete is idempotent
	assert.NoError(t, issuer.Revoke(context.Background(), "tok-1"))

	mockTokens.AssertExpectations(t)
}

func TestTokenIssuer_RevokeAll(t *testing.T) {
	mockTokens := new(MockTokenRepository)
	mockTokens.On("ListByUser", mock.Anything, uint(2)).Return([]model.AccessToken{
		{ID: "tok-1", UserID: 2},
		{ID: "tok-2", UserID: 2},
	}, nil)
	mockTokens.On("DeleteByUser", mock.Anything, uint(2)).Return(nil)

	issuer := NewTokenIssuer(mockTokens, new(MockUserRepository), nil)
	assert.NoError(t, issuer.RevokeAll(context.Background(), 2))

	mockTokens.AssertExpectations(t)
}
