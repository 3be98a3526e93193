package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/storefront/auth"
	"github.com/yourusername/storefront/model"
	"github.com/yourusername/storefront/router"
	"github.com/yourusername/storefront/store"
	"github.com/yourusername/storefront/store/jsondb"
	"github.com/yourusername/storefront/util"
)

func newTestEnv(t *testing.T) (*echo.Echo, store.IStore, *auth.TokenIssuer) {
	t.Helper()

	db, err := jsondb.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.Init())

	e := echo.New()
	e.Validator = router.NewValidator()

	return e, db, auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func seedUser(t *testing.T, db store.IStore, email, password string, admin bool) model.User {
	t.Helper()

	hash, err := util.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := model.User{
		ID:           xid.New().String(),
		Username:     "seeded",
		Email:        email,
		PasswordHash: hash,
		Admin:        admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.CreateUser(user))
	return user
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestRegisterUser(t *testing.T) {
	e, db, issuer := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/api/users", `{"username":"a","email":"a@x.com","password":"p1"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, RegisterUser(db, issuer, false)(e.NewContext(req, rec)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "a", resp.Username)
	assert.Equal(t, "a@x.com", resp.Email)
	assert.False(t, resp.Admin, "registration must never grant the admin flag")

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie, "registration must bind a session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	userID, err := issuer.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, userID)

	stored, err := db.GetUserByEmail("a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "p1", stored.PasswordHash, "the stored password must never equal the plaintext")
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	e, db, issuer := newTestEnv(t)
	seedUser(t, db, "a@x.com", "p1", false)

	req := jsonRequest(http.MethodPost, "/api/users", `{"username":"b","email":"a@x.com","password":"p2"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, RegisterUser(db, issuer, false)(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Nil(t, sessionCookie(rec))

	users, err := db.GetUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1, "the duplicate registration must not create a second account")
}

func TestRegisterUserMissingFields(t *testing.T) {
	e, db, issuer := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/api/users", `{"email":"a@x.com"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, RegisterUser(db, issuer, false)(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	e, db, issuer := newTestEnv(t)
	user := seedUser(t, db, "a@x.com", "correct-horse", false)

	req := jsonRequest(http.MethodPost, "/api/users/auth", `{"email":"a@x.com","password":"correct-horse"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, Login(db, issuer, false)(e.NewContext(req, rec)))

	require.Equal(t, http.StatusCreated, rec.Code)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Greater(t, cookie.MaxAge, 0)

	userID, err := issuer.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLoginWrongPassword(t *testing.T) {
	e, db, issuer := newTestEnv(t)
	seedUser(t, db, "a@x.com", "correct-horse", false)

	req := jsonRequest(http.MethodPost, "/api/users/auth", `{"email":"a@x.com","password":"wrong"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, Login(db, issuer, false)(e.NewContext(req, rec)))

	// an explicit 401 with a body, never an empty response
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp jsonHTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Nil(t, sessionCookie(rec))
}

func TestLoginUnknownEmail(t *testing.T) {
	e, db, issuer := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/api/users/auth", `{"email":"nobody@x.com","password":"p"}`)
	rec := httptest.NewRecorder()
	require.NoError(t, Login(db, issuer, false)(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	e, _, _ := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, Logout()(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestAuthenticate(t *testing.T) {
	e, db, issuer := newTestEnv(t)
	user := seedUser(t, db, "a@x.com", "p1", false)
	protected := Authenticate(db, issuer)(GetProfile())

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, protected(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not.a.jwt"})
		rec := httptest.NewRecorder()
		require.NoError(t, protected(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		token, err := issuer.Issue("gone")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		require.NoError(t, protected(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := issuer.Issue(user.ID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		require.NoError(t, protected(e.NewContext(req, rec)))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, user.Email, resp["email"])
	})
}

func TestAdminRequired(t *testing.T) {
	e, db, issuer := newTestEnv(t)
	member := seedUser(t, db, "member@x.com", "p1", false)
	admin := seedUser(t, db, "admin@x.com", "p2", true)
	protected := Authenticate(db, issuer)(AdminRequired(GetUsers(db)))

	t.Run("member is forbidden", func(t *testing.T) {
		token, err := issuer.Issue(member.ID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		require.NoError(t, protected(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		token, err := issuer.Issue(admin.ID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		require.NoError(t, protected(e.NewContext(req, rec)))

		require.Equal(t, http.StatusOK, rec.Code)

		var users []userResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 2)
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})
}

func TestUpdateProfile(t *testing.T) {
	e, db, _ := newTestEnv(t)
	user := seedUser(t, db, "a@x.com", "p1", false)

	req := jsonRequest(http.MethodPut, "/api/users/profile", `{"username":"renamed"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(userContextKey, user)
	require.NoError(t, UpdateProfile(db)(c))

	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Username)
	assert.Equal(t, user.Email, stored.Email, "empty fields keep their stored value")
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	e, db, _ := newTestEnv(t)
	user := seedUser(t, db, "a@x.com", "p1", false)
	seedUser(t, db, "b@x.com", "p2", false)

	req := jsonRequest(http.MethodPut, "/api/users/profile", `{"email":"b@x.com"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(userContextKey, user)
	require.NoError(t, UpdateProfile(db)(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateUserAdminFlag(t *testing.T) {
	e, db, _ := newTestEnv(t)
	user := seedUser(t, db, "a@x.com", "p1", false)

	req := jsonRequest(http.MethodPut, "/api/users/"+user.ID, `{"isAdmin":true}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/users/:id")
	c.SetParamNames("id")
	c.SetParamValues(user.ID)
	require.NoError(t, UpdateUser(db)(c))

	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.Admin)
}

func TestDeleteUser(t *testing.T) {
	e, db, _ := newTestEnv(t)
	admin := seedUser(t, db, "admin@x.com", "p1", true)
	member := seedUser(t, db, "member@x.com", "p2", false)

	deleteByID := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/users/"+id, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/users/:id")
		c.SetParamNames("id")
		c.SetParamValues(id)
		require.NoError(t, DeleteUser(db)(c))
		return rec
	}

	assert.Equal(t, http.StatusForbidden, deleteByID(admin.ID).Code, "admin accounts cannot be deleted")
	_, err := db.GetUserByID(admin.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, deleteByID(member.ID).Code)
	_, err = db.GetUserByID(member.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	assert.Equal(t, http.StatusNotFound, deleteByID(member.ID).Code)
}

func TestContentTypeJson(t *testing.T) {
	e, _, _ := newTestEnv(t)
	wrapped := ContentTypeJson(Logout())

	req := httptest.NewRequest(http.MethodPost, "/api/users/logout", strings.NewReader("x"))
	req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
	rec := httptest.NewRecorder()
	require.NoError(t, wrapped(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
