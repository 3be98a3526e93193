package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/rs/xid"

	"github.com/yourusername/storefront/auth"
	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/store"
	"github.com/yourusername/storefront/util"
)

type jsonHTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// userResponse is the profile shape returned by registration, login and
// the admin user routes. The password hash is never part of it.
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Admin    bool   `json:"isAdmin"`
}

func toUserResponse(user model.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Admin:    user.Admin,
	}
}

type registerUserPayload struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfilePayload struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

type adminUpdateUserPayload struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Admin    bool   `json:"isAdmin"`
}

// RegisterUser handler creates a new account. Duplicate emails are
// rejected by the store inside a single conditional write.
func RegisterUser(db store.IStore, issuer *auth.TokenIssuer, secureCookie bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload registerUserPayload
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Bad post data"})
		}
		if err := c.Validate(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Please fill all the inputs"})
		}

		hash, err := util.HashPassword(payload.Password)
		if err != nil {
			log.Error("Cannot hash password: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot create user"})
		}

		now := time.Now().UTC()
		user := model.User{
			ID:           xid.New().String(),
			Username:     payload.Username,
			Email:        payload.Email,
			PasswordHash: hash,
			Admin:        false,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := db.CreateUser(user); err != nil {
			if err == store.ErrEmailExists {
				return c.JSON(http.StatusConflict, jsonHTTPResponse{false, "User already exists"})
			}
			log.Error("Cannot create user: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot create user"})
		}

		token, err := issuer.Issue(user.ID)
		if err != nil {
			log.Error("Cannot issue session token: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot create session"})
		}
		bindSessionCookie(c, token, issuer.Duration(), secureCookie)

		return c.JSON(http.StatusCreated, toUserResponse(user))
	}
}

// Login handler verifies the credentials and issues a session cookie.
// Both an unknown email and a wrong password yield an explicit 401 with
// the same message.
func Login(db store.IStore, issuer *auth.TokenIssuer, secureCookie bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var payload loginPayload
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Bad post data"})
		}
		if err := c.Validate(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Please fill all the inputs"})
		}

		user, err := db.GetUserByEmail(payload.Email)
		if err != nil || !util.VerifyHash(user.PasswordHash, payload.Password) {
			return c.JSON(http.StatusUnauthorized, jsonHTTPResponse{false, "Invalid email or password"})
		}

		token, err := issuer.Issue(user.ID)
		if err != nil {
			log.Error("Cannot issue session token: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot create session"})
		}
		bindSessionCookie(c, token, issuer.Duration(), secureCookie)

		return c.JSON(http.StatusCreated, toUserResponse(user))
	}
}

// Logout handler clears the session cookie.
func Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		clearSessionCookie(c)
		return c.JSON(http.StatusOK, jsonHTTPResponse{true, "Logged out successfully"})
	}
}

// GetUsers handler lists all accounts for an admin.
func GetUsers(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := db.GetUsers()
		if err != nil {
			log.Error("Cannot fetch users from database: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot fetch users"})
		}

		resp := make([]userResponse, 0, len(users))
		for _, user := range users {
			resp = append(resp, toUserResponse(user))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// GetProfile handler returns the profile of the authenticated user.
func GetProfile() echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := currentUser(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, jsonHTTPResponse{false, "Not authenticated"})
		}

		return c.JSON(http.StatusOK, map[string]string{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		})
	}
}

// UpdateProfile handler applies self-service changes to the
// authenticated user. Empty fields keep their stored value.
func UpdateProfile(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := currentUser(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, jsonHTTPResponse{false, "Not authenticated"})
		}

		var payload updateProfilePayload
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Bad post data"})
		}
		if err := c.Validate(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Invalid profile data"})
		}

		if payload.Username != "" {
			user.Username = payload.Username
		}
		if payload.Email != "" {
			user.Email = payload.Email
		}
		if payload.Password != "" {
			hash, err := util.HashPassword(payload.Password)
			if err != nil {
				log.Error("Cannot hash password: ", err)
				return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot update user"})
			}
			user.PasswordHash = hash
		}
		user.UpdatedAt = time.Now().UTC()

		if err := db.SaveUser(user); err != nil {
			if err == store.ErrEmailExists {
				return c.JSON(http.StatusConflict, jsonHTTPResponse{false, "Email already in use"})
			}
			log.Error("Cannot update user: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot update user"})
		}

		return c.JSON(http.StatusOK, toUserResponse(user))
	}
}

// GetUser handler returns an arbitrary account to an admin.
func GetUser(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := db.GetUserByID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, jsonHTTPResponse{false, "User not found"})
		}
		return c.JSON(http.StatusOK, toUserResponse(user))
	}
}

// UpdateUser handler lets an admin change an arbitrary account,
// including the admin flag.
func UpdateUser(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := db.GetUserByID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, jsonHTTPResponse{false, "User not found"})
		}

		var payload adminUpdateUserPayload
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Bad post data"})
		}
		if err := c.Validate(&payload); err != nil {
			return c.JSON(http.StatusBadRequest, jsonHTTPResponse{false, "Invalid user data"})
		}

		if payload.Username != "" {
			user.Username = payload.Username
		}
		if payload.Email != "" {
			user.Email = payload.Email
		}
		user.Admin = payload.Admin
		user.UpdatedAt = time.Now().UTC()

		if err := db.SaveUser(user); err != nil {
			if err == store.ErrEmailExists {
				return c.JSON(http.StatusConflict, jsonHTTPResponse{false, "Email already in use"})
			}
			log.Error("Cannot update user: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot update user"})
		}

		return c.JSON(http.StatusOK, toUserResponse(user))
	}
}

// DeleteUser handler removes an account. Accounts carrying the admin
// flag cannot be deleted.
func DeleteUser(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := db.GetUserByID(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, jsonHTTPResponse{false, "User not found"})
		}

		if user.Admin {
			return c.JSON(http.StatusForbidden, jsonHTTPResponse{false, "Cannot delete admin user"})
		}

		if err := db.DeleteUser(user.ID); err != nil {
			log.Error("Cannot delete user: ", err)
			return c.JSON(http.StatusInternalServerError, jsonHTTPResponse{false, "Cannot delete user"})
		}

		return c.JSON(http.StatusOK, jsonHTTPResponse{true, "User removed"})
	}
}
