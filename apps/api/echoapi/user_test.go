package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/user"
)

func Test_authApi_signup(t *testing.T) {
	app := newTestApp(t)

	t.Run("student", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/auth/signup", "", echoMap{
			"username": "alex",
			"name":     "Alex Johnson",
			"email":    "alex@test.cd",
			"password": testPassword,
			"role":     "student",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp AuthResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alex", resp.User.Username)
		assert.Equal(t, "STU2026001", resp.User.StudentID)
	})

	t.Run("bad role", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/auth/signup", "", echoMap{
			"username": "bree",
			"name":     "Bree",
			"email":    "bree@test.cd",
			"password": testPassword,
			"role":     "principal",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		decode(t, rec, &resp)
		assert.Contains(t, resp, "role")
	})

	t.Run("duplicate username", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/auth/signup", "", echoMap{
			"username": "alex",
			"name":     "Another Alex",
			"email":    "alex2@test.cd",
			"password": testPassword,
			"role":     "student",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_authApi_login(t *testing.T) {
	app := newTestApp(t)
	usr := app.register(t, "alex", user.RoleStudent)

	t.Run("ok", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/auth/login", "", echoMap{
			"username": "alex",
			"password": testPassword,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp AuthResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, usr.ID, resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/auth/login", "", echoMap{
			"username": "alex",
			"password": "nope-nope",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/auth/login", "", echoMap{"username": "alex"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_authApi_me(t *testing.T) {
	app := newTestApp(t)
	usr := app.register(t, "alex", user.RoleStudent)

	t.Run("ok", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/auth/me", app.token(t, usr), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got user.User
		decode(t, rec, &got)
		assert.Equal(t, usr.ID, got.ID)
		assert.Equal(t, usr.Username, got.Username)
	})

	t.Run("no token", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_authApi_changePassword(t *testing.T) {
	app := newTestApp(t)
	usr := app.register(t, "alex", user.RoleStudent)

	rec := app.request(t, http.MethodPut, "/v1/auth/password", app.token(t, usr), echoMap{
		"old_password": testPassword,
		"new_password": "new-p@ssw0rd!",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = app.request(t, http.MethodPost, "/v1/auth/login", "", echoMap{
		"username": "alex",
		"password": "new-p@ssw0rd!",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

type echoMap = map[string]interface{}
