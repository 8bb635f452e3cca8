package middleware

import (
	"context"
	"elearn_backend/internal/config"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/service"
	"elearn_backend/internal/testutil"
	"elearn_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret-0123456789"

func newRouter(t *testing.T, roles ...model.UserRole) (*gin.Engine, *repository.UserRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret}}

	r := gin.New()
	r.GET("/private",
		AuthMiddleware(cfg),
		ScopeMiddleware(service.NewUserService(users)),
		RoleMiddleware(roles...),
		func(c *gin.Context) {
			scope, ok := GetScope(c)
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{"role": scope.Role, "universities": scope.Universities})
		},
	)
	return r, users
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRejectsMissingAndBadTokens(t *testing.T) {
	r, _ := newRouter(t, model.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "garbage").Code)

	other, err := util.GenerateJWT(&model.User{Role: model.RoleUser}, "another-secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, other).Code)
}

func TestScopeIsLoadedFromTheDatabase(t *testing.T) {
	r, users := newRouter(t, model.RoleSubadmin)

	u := testutil.CreateUser(t, users.DB, model.RoleUser)
	token, err := util.GenerateJWT(u, secret, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, token).Code)

	u.Role = model.RoleSubadmin
	u.AssignedUniversities = []string{"UNILAG"}
	require.NoError(t, users.UpdateScope(context.Background(), u))

	w := get(r, token)
	require.Equal(t, http.StatusOK, w.Code, "role change applies without a new token")
	assert.JSONEq(t, `{"role":"subadmin","universities":["UNILAG"]}`, w.Body.String())
}

func TestScopeMiddlewareRejectsDeletedAndDisabledUsers(t *testing.T) {
	r, users := newRouter(t, model.RoleUser)

	ghost, err := util.GenerateJWT(&model.User{Role: model.RoleUser}, secret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, ghost).Code)

	u := testutil.CreateUser(t, users.DB, model.RoleUser)
	token, err := util.GenerateJWT(u, secret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, token).Code)

	require.NoError(t, users.SetDisabled(context.Background(), u.ID, true))
	assert.Equal(t, http.StatusForbidden, get(r, token).Code)
}

func TestStaffOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/staff", func(c *gin.Context) {
		c.Set(scopeKey, service.ScopeContext{Role: model.UserRole(c.Query("role"))})
	}, StaffOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for role, want := range map[string]int{
		"admin":      http.StatusNoContent,
		"subadmin":   http.StatusNoContent,
		"waec_admin": http.StatusNoContent,
		"jamb_admin": http.StatusNoContent,
		"user":       http.StatusForbidden,
		"moderator":  http.StatusForbidden,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff?role="+role, nil))
		assert.Equal(t, want, w.Code, role)
	}
}
