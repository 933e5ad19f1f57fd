package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ksred/mt5-portal-api/internal/auth"
	"github.com/ksred/mt5-portal-api/internal/database"
	"github.com/ksred/mt5-portal-api/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	service := auth.NewService(db, "handlers-test-secret")
	handlers := auth.NewGinHandlers(service)

	router := gin.New()
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", handlers.RegisterHandler())
		authGroup.POST("/login", handlers.LoginHandler())
	}
	session := router.Group("/api/auth")
	session.Use(middleware.JWTAuth(service))
	{
		session.GET("/profile", handlers.ProfileHandler())
		session.POST("/change-password", handlers.ChangePasswordHandler())
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)

	// Register alice.
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      "alice@x.com",
		"password":   "secret1",
		"first_name": "Alice",
		"last_name":  "Smith",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Login returns a token.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loginResp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	token := loginResp.Data.Token
	require.NotEmpty(t, token)

	// Profile returns alice without any password material.
	rec = doJSON(t, router, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "alice@x.com")
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "hash")

	// Change password with the wrong current password is rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/change-password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "newsecret",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The original password still works afterwards.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_DuplicateReturnsConflict(t *testing.T) {
	router := newTestRouter(t)

	payload := map[string]string{
		"email":      "bob@x.com",
		"password":   "secret1",
		"first_name": "Bob",
		"last_name":  "Jones",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE_RESOURCE")
}

func TestRegister_ValidationFieldList(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "nope",
		"password": "x",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
	assert.Contains(t, rec.Body.String(), "first_name")
	assert.Contains(t, rec.Body.String(), "last_name")
}

func TestLogin_UnknownAndWrongPasswordMatch(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      "carol@x.com",
		"password":   "secret1",
		"first_name": "Carol",
		"last_name":  "King",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "carol@x.com",
		"password": "wrong",
	})
	unknownUser := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nosuchuser@example.com",
		"password": "anything",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestProfile_RequiresToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/auth/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
