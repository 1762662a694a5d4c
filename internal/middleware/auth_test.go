package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheduling-server/internal/config"
	"scheduling-server/internal/middleware"
	"scheduling-server/internal/models"
	"scheduling-server/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            "test-secret",
		JWTExpirationMinutes: 15,
	}
}

func authRouter(cfg *config.Config, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", middleware.AuthMiddleware(cfg))
	if len(roles) > 0 {
		group.Use(middleware.RoleAuthMiddleware(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		userID, _ := middleware.GetUserIDFromContext(c)
		role, _ := middleware.GetUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role})
	})
	return router
}

func get(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg)

	t.Run("valid token puts identity into the context", func(t *testing.T) {
		user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Role: models.RoleDoctor}
		token, err := utils.GenerateToken(user, cfg)
		require.NoError(t, err)

		recorder := get(router, "Bearer "+token)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"userId":"user-1"`)
		assert.Contains(t, recorder.Body.String(), `"role":"doctor"`)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(router, "Token abc").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(router, "Bearer not.a.jwt").Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		otherCfg := &config.Config{JWTSecret: "other-secret", JWTExpirationMinutes: 15}
		user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Role: models.RolePatient}
		token, err := utils.GenerateToken(user, otherCfg)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, get(router, "Bearer "+token).Code)
	})
}

func TestRoleAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg, models.RoleAdmin)

	tokenFor := func(t *testing.T, role models.Role) string {
		t.Helper()
		user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Role: role}
		token, err := utils.GenerateToken(user, cfg)
		require.NoError(t, err)
		return token
	}

	t.Run("allowed role passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(router, "Bearer "+tokenFor(t, models.RoleAdmin)).Code)
	})

	t.Run("other roles are rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(router, "Bearer "+tokenFor(t, models.RolePatient)).Code)
	})
}
