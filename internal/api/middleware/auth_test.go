package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/config"
	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
	"github.com/0xDyno/healthy-blend/internal/service"
)

func newAuthFixture(t *testing.T) (*service.AuthService, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	hash, err := service.HashPassword("secret")
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{
		Username: "kitchen", Password: hash, Role: model.RoleKitchen, IsActive: true,
	}).Error)

	auth := service.NewAuthService(repository.NewUserRepository(db), config.AuthConfig{
		JWTSecret: "test-secret", TokenTTL: time.Hour,
	})
	token, _, err := auth.Login(context.Background(), "kitchen", "secret")
	require.NoError(t, err)
	return auth, token
}

func authRouter(auth *service.AuthService, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("", JWTAuth(auth))
	if len(roles) > 0 {
		grp.Use(RequireRoles(roles...))
	}
	grp.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": UserID(c)})
	})
	return r
}

func get(r *gin.Engine, authz string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	auth, token := newAuthFixture(t)
	r := authRouter(auth)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer garbage").Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+token).Code)
}

func TestRequireRoles(t *testing.T) {
	auth, token := newAuthFixture(t)

	allowed := authRouter(auth, model.RoleKitchen, model.RoleManager)
	assert.Equal(t, http.StatusOK, get(allowed, "Bearer "+token).Code)

	denied := authRouter(auth, model.RoleOwner)
	assert.Equal(t, http.StatusForbidden, get(denied, "Bearer "+token).Code)
}
