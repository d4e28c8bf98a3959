package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"accountapi/internal/auth"
	apperrors "accountapi/internal/errors"
	"accountapi/internal/handler"
	"accountapi/internal/validation"
)

// Register wires routes and middleware.
func Register(e *echo.Echo, issuer auth.TokenIssuer, authHandler *handler.AuthHandler) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = validation.NewEchoValidator(validation.New())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	// Secured routes (require a valid bearer token)
	secured := api.Group("", BearerAuth(issuer))
	secured.POST("/logout", authHandler.Logout)
	secured.POST("/deleteAccount", authHandler.DeleteAccount)
	secured.GET("/user", authHandler.Me)
}

// BearerAuth resolves the Authorization bearer token through the issuer and
// stores the user and token ID on the request context. Every failure mode
// collapses to the same 401 body.
func BearerAuth(issuer auth.TokenIssuer) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			user, tokenID, err := issuer.Resolve(c.Request().Context(), key)
			if err != nil {
				return false, err
			}
			c.Set(handler.ContextKeyUser, user)
			c.Set(handler.ContextKeyTokenID, tokenID)
			return true, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Message: apperrors.ErrInvalidToken.Error(),
				Code:    "INVALID_TOKEN",
			})
		},
	})
}
