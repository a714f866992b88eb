package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/LucHocIT/Social-media-app-sub000/internal/config"
	"github.com/LucHocIT/Social-media-app-sub000/internal/middleware"
	"github.com/LucHocIT/Social-media-app-sub000/internal/models"
	"github.com/LucHocIT/Social-media-app-sub000/pkg/utils"
)

func adminTestRouter() *gin.Engine {
	r := gin.New()
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	admin.GET("/users", AdminListUsers)
	admin.PATCH("/users/:id/role", AdminSetUserRole)
	admin.DELETE("/users/:id", AdminDeactivateUser)
	return r
}

func bearerRequest(t *testing.T, method, path, userID string) *http.Request {
	t.Helper()
	token, err := utils.GenerateToken(userID)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	db := setupHandlerDB(t)
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	admin := createHandlerUser(t, db, "root", models.RoleAdmin)
	regular := createHandlerUser(t, db, "plain", models.RoleUser)
	r := adminTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, bearerRequest(t, http.MethodGet, "/admin/users", regular.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "no token at all")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, bearerRequest(t, http.MethodGet, "/admin/users", admin.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "plain")
}

func TestAdminDeactivateUser(t *testing.T) {
	db := setupHandlerDB(t)
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	admin := createHandlerUser(t, db, "root", models.RoleAdmin)
	target := createHandlerUser(t, db, "target", models.RoleUser)
	r := adminTestRouter()

	// Self-deactivation is refused.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, bearerRequest(t, http.MethodDelete, "/admin/users/"+admin.ID, admin.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, bearerRequest(t, http.MethodDelete, "/admin/users/"+target.ID, admin.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var gone models.User
	err := db.First(&gone, "id = ?", target.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "soft-deleted accounts leave default queries")

	// The deactivated account can no longer authenticate.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, bearerRequest(t, http.MethodGet, "/admin/users", target.ID))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
