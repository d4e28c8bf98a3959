package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "accountapi/internal/errors"
	"accountapi/internal/handler"
	"accountapi/internal/model"
)

// MockTokenIssuer is a mock implementation of auth.TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(ctx context.Context, user *model.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) Resolve(ctx context.Context, plaintext string) (*model.User, string, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockTokenIssuer) Revoke(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenIssuer) RevokeAll(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func protectedEcho(issuer *MockTokenIssuer) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		user := c.Get(handler.ContextKeyUser).(*model.User)
		return c.String(http.StatusOK, user.Email)
	}, BearerAuth(issuer))
	return e
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name           string
		authorization  string
		setupMock      func(*MockTokenIssuer)
		expectedStatus int
	}{
		{
			name:          "valid token reaches the handler",
			authorization: "Bearer tok-1|s3cret",
			setupMock: func(m *MockTokenIssuer) {
				m.On("Resolve", mock.Anything, "tok-1|s3cret").
					Return(&model.User{ID: 1, Email: "ann@x.com"}, "tok-1", nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			authorization:  "",
			setupMock:      func(m *MockTokenIssuer) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:          "unknown token",
			authorization: "Bearer gone|s3cret",
			setupMock: func(m *MockTokenIssuer) {
				m.On("Resolve", mock.Anything, "gone|s3cret").
					Return(nil, "", apperrors.ErrInvalidToken)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authorization:  "Basic dXNlcjpwdw==",
			setupMock:      func(m *MockTokenIssuer) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockIssuer := new(MockTokenIssuer)
			tt.setupMock(mockIssuer)

			e := protectedEcho(mockIssuer)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authorization != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.authorization)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "ann@x.com", rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), apperrors.ErrInvalidToken.Error())
			}
			mockIssuer.AssertExpectations(t)
		})
	}
}
