package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yourusername/storefront/auth"
	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/store"
)

const userContextKey = "auth_user"

// ContentTypeJson checks that the requests have the Content-Type header set to "application/json".
// This helps against CSRF attacks.
func ContentTypeJson(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		contentType := c.Request().Header.Get("Content-Type")
		if contentType != "application/json" {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Only JSON allowed"})
		}

		return next(c)
	}
}

// Authenticate extracts the session cookie, verifies the token and
// binds the resolved user record to the request context. A missing
// cookie, an invalid or expired token and an unknown user ID all fail
// the same way.
func Authenticate(db store.IStore, issuer *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, jsonHTTPResponse{false, "Not authenticated"})
			}

			userID, err := issuer.Verify(cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonHTTPResponse{false, "Not authenticated"})
			}

			user, err := db.GetUserByID(userID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonHTTPResponse{false, "Not authenticated"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// AdminRequired rejects requests whose bound user does not carry the
// admin flag. It must run after Authenticate.
func AdminRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := currentUser(c)
		if !ok || !user.Admin {
			return c.JSON(http.StatusForbidden, jsonHTTPResponse{false, "Admin access required"})
		}
		return next(c)
	}
}

// currentUser returns the user record bound by Authenticate.
func currentUser(c echo.Context) (model.User, bool) {
	user, ok := c.Get(userContextKey).(model.User)
	return user, ok
}
