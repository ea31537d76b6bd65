package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annBody = `{"name": "Ann Example", "email": "ann@example.com", "password": "secret1", "age": 30}`

func createUserViaAPI(t *testing.T, app *testApp, body string) map[string]any {
	t.Helper()
	resp := app.do(t, http.MethodPost, "/api/v1/users", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	return resp.Body["data"].(map[string]any)
}

func TestCreateUser(t *testing.T) {
	app := newTestApplication(t, nil)
	resp := app.do(t, http.MethodPost, "/api/v1/users", annBody)

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, true, resp.Body["success"])
	assert.Equal(t, "User created", resp.Body["message"])
	user := resp.Body["data"].(map[string]any)
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "ann@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, true, user["isActive"])
	assert.Equal(t, float64(30), user["age"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")
	assert.Equal(t, 1, app.store.writes)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	app := newTestApplication(t, nil)
	createUserViaAPI(t, app, annBody)

	resp := app.do(t, http.MethodPost, "/api/v1/users",
		`{"name": "Another Ann", "email": "ANN@example.com", "password": "secret2"}`)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, false, resp.Body["success"])
	assert.Equal(t, 1, app.store.writes)
}

func TestCreateUserValidation(t *testing.T) {
	app := newTestApplication(t, nil)
	testCases := []struct {
		name  string
		body  string
		field string
	}{
		{name: "short name", body: `{"name": "A", "email": "a@example.com", "password": "secret1"}`, field: "name"},
		{name: "bad email", body: `{"name": "Ann", "email": "not-an-email", "password": "secret1"}`, field: "email"},
		{name: "short password", body: `{"name": "Ann", "email": "a@example.com", "password": "123"}`, field: "password"},
		{name: "age out of range", body: `{"name": "Ann", "email": "a@example.com", "password": "secret1", "age": 150}`, field: "age"},
		{name: "unknown role", body: `{"name": "Ann", "email": "a@example.com", "password": "secret1", "role": "root"}`, field: "role"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := app.do(t, http.MethodPost, "/api/v1/users", tc.body)
			require.Equal(t, http.StatusBadRequest, resp.Code)
			errs := resp.Body["errors"].([]any)
			require.NotEmpty(t, errs)
			assert.Equal(t, tc.field, errs[0].(map[string]any)["field"])
		})
	}
	assert.Zero(t, app.store.writes)
}

func TestCreateUserMalformedBody(t *testing.T) {
	app := newTestApplication(t, nil)
	testCases := map[string]string{
		"broken json":   `{"name": "Ann",`,
		"unknown field": `{"name": "Ann", "email": "a@example.com", "password": "secret1", "admin": true}`,
		"wrong type":    `{"name": 42}`,
	}
	for name, body := range testCases {
		t.Run(name, func(t *testing.T) {
			resp := app.do(t, http.MethodPost, "/api/v1/users", body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, false, resp.Body["success"])
		})
	}
}

func TestGetUser(t *testing.T) {
	app := newTestApplication(t, nil)
	created := createUserViaAPI(t, app, annBody)

	resp := app.do(t, http.MethodGet, "/api/v1/users/"+created["id"].(string), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, created["id"], resp.Body["data"].(map[string]any)["id"])

	resp = app.do(t, http.MethodGet, "/api/v1/users/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = app.do(t, http.MethodGet, "/api/v1/users/0b7c1a52-4a0e-4a3e-9c55-3b0d1c1f0e11", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListUsers(t *testing.T) {
	app := newTestApplication(t, nil)
	for i := range 3 {
		createUserViaAPI(t, app, fmt.Sprintf(`{"name": "User %d", "email": "user%d@example.com", "password": "secret1"}`, i, i))
	}

	resp := app.do(t, http.MethodGet, "/api/v1/users?page=1&limit=2", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.Body["data"], 2)
	pagination := resp.Body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["current"])
	assert.Equal(t, float64(2), pagination["pages"])
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, true, pagination["hasNext"])
	assert.Equal(t, false, pagination["hasPrev"])

	resp = app.do(t, http.MethodGet, "/api/v1/users?search=user1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.Body["data"], 1)

	resp = app.do(t, http.MethodGet, "/api/v1/users?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = app.do(t, http.MethodGet, "/api/v1/users?page=9223372036854775807", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body["message"], "between 1 and 100")
}

func TestUpdateUser(t *testing.T) {
	app := newTestApplication(t, nil)
	ann := createUserViaAPI(t, app, annBody)
	bob := createUserViaAPI(t, app, `{"name": "Bob", "email": "bob@example.com", "password": "secret1"}`)

	resp := app.do(t, http.MethodPut, "/api/v1/users/"+ann["id"].(string), `{"name": "Ann B", "isActive": false}`)
	require.Equal(t, http.StatusOK, resp.Code)
	updated := resp.Body["data"].(map[string]any)
	assert.Equal(t, "Ann B", updated["name"])
	assert.Equal(t, false, updated["isActive"])
	assert.Equal(t, "ann@example.com", updated["email"])

	resp = app.do(t, http.MethodPut, "/api/v1/users/"+bob["id"].(string), `{"email": "ann@example.com"}`)
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = app.do(t, http.MethodPut, "/api/v1/users/"+bob["id"].(string), `{"age": -1}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeleteUser(t *testing.T) {
	app := newTestApplication(t, nil)
	ann := createUserViaAPI(t, app, annBody)
	target := "/api/v1/users/" + ann["id"].(string)

	resp := app.do(t, http.MethodDelete, target, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "User deleted", resp.Body["message"])

	resp = app.do(t, http.MethodDelete, target, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = app.do(t, http.MethodGet, target, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUserStoreUnavailable(t *testing.T) {
	app := newTestApplication(t, nil)
	app.store.unavailable = true

	resp := app.do(t, http.MethodPost, "/api/v1/users", annBody)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	resp = app.do(t, http.MethodGet, "/api/v1/users", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.NotContains(t, resp.Body["message"], "unavailable:")

	// movie endpoints do not depend on the user store
	resp = app.do(t, http.MethodGet, "/api/v1/movies/tt1375666", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestLogin(t *testing.T) {
	app := newTestApplication(t, nil)
	createUserViaAPI(t, app, annBody)

	resp := app.do(t, http.MethodPost, "/api/v1/users/login", `{"email": "ann@example.com", "password": "secret1"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	tokens := resp.Body["data"].(map[string]any)
	assert.NotEmpty(t, tokens["accessToken"])
	assert.NotEmpty(t, tokens["expiresAt"])

	resp = app.do(t, http.MethodPost, "/api/v1/users/login", `{"email": "ann@example.com", "password": "wrong-one"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = app.do(t, http.MethodPost, "/api/v1/users/login", `{"email": "ann@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func loginToken(t *testing.T, app *testApp, email string) string {
	t.Helper()
	resp := app.do(t, http.MethodPost, "/api/v1/users/login", fmt.Sprintf(`{"email": %q, "password": "secret1"}`, email))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	return resp.Body["data"].(map[string]any)["accessToken"].(string)
}

func TestAdminOnlyCacheClear(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.AdminOnlyCacheClear = true
	app := newTestApplication(t, cfg)
	createUserViaAPI(t, app, annBody)
	createUserViaAPI(t, app, `{"name": "Root", "email": "root@example.com", "password": "secret1", "role": "admin"}`)

	resp := app.do(t, http.MethodDelete, "/api/v1/movies/cache", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = app.do(t, http.MethodDelete, "/api/v1/movies/cache", "", "Authorization", "Token abc")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = app.do(t, http.MethodDelete, "/api/v1/movies/cache", "", "Authorization", "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	userToken := loginToken(t, app, "ann@example.com")
	resp = app.do(t, http.MethodDelete, "/api/v1/movies/cache", "", "Authorization", "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	adminToken := loginToken(t, app, "root@example.com")
	resp = app.do(t, http.MethodDelete, "/api/v1/movies/cache", "", "Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, float64(0), resp.Body["cleared"])
}
