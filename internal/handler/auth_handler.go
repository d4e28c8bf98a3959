package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "accountapi/internal/errors"
	"accountapi/internal/model"
	"accountapi/internal/service"
	"accountapi/internal/validation"
)

// Context keys set by the bearer-token middleware.
const (
	ContextKeyUser    = "current_user"
	ContextKeyTokenID = "current_token_id"
)

// AuthHandler handles the account endpoints.
type AuthHandler struct {
	accounts service.AccountService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts service.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// RegisterRequest represents a registration request. Email is only required
// to be present; format checks are not part of the contract.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public projection of a user record. Fields are
// whitelisted here so the password hash can never leak into a response.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is the success body for register and login.
type AuthResponse struct {
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
	Message string       `json:"message"`
}

// MessageResponse is the success body for logout and account deletion.
type MessageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Message: "invalid request body",
			Code:    "BAD_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, validation.FieldErrors(err))
	}

	user, token, err := h.accounts.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailTaken) {
			return validationFailed(c, map[string]string{"email": apperrors.ErrEmailTaken.Error()})
		}
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		User:    toUserResponse(user),
		Token:   token,
		Message: "success",
	})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 201 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Message: "invalid request body",
			Code:    "BAD_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, validation.FieldErrors(err))
	}

	user, token, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errorJSON(c, err)
	}

	// 201 matches the deployed behavior this API replaces; clients key on it.
	return c.JSON(http.StatusCreated, AuthResponse{
		User:    toUserResponse(user),
		Token:   token,
		Message: "success",
	})
}

// Logout godoc
// @Summary Revoke the current session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	tokenID, ok := c.Get(ContextKeyTokenID).(string)
	if !ok || tokenID == "" {
		return errorJSON(c, apperrors.ErrInvalidToken)
	}

	if err := h.accounts.Logout(c.Request().Context(), tokenID); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "success"})
}

// DeleteAccount godoc
// @Summary Delete the authenticated user and all its tokens
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /deleteAccount [post]
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	user, uok := c.Get(ContextKeyUser).(*model.User)
	tokenID, tok := c.Get(ContextKeyTokenID).(string)
	if !uok || !tok || tokenID == "" {
		return errorJSON(c, apperrors.ErrInvalidToken)
	}

	if err := h.accounts.DeleteAccount(c.Request().Context(), user.ID, tokenID); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "success"})
}

// Me godoc
// @Summary Return the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /user [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := c.Get(ContextKeyUser).(*model.User)
	if !ok {
		return errorJSON(c, apperrors.ErrInvalidToken)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func validationFailed(c echo.Context, fields map[string]string) error {
	status, body := apperrors.MapErrorToHTTP(apperrors.NewValidationError(fields))
	return c.JSON(status, body)
}

func errorJSON(c echo.Context, err error) error {
	status, body := apperrors.MapErrorToHTTP(err)
	return c.JSON(status, body)
}
