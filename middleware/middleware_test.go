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

	"edpharma/logger"
	"edpharma/models"
	"edpharma/services"
	"edpharma/store/memstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIdentity() *services.Identity {
	return services.NewIdentity(memstore.NewUserRepository(), memstore.NewTokenRevocationRepository(),
		"secret", time.Hour, []string{"boss@x.com"}, logger.NewNop())
}

func session(t *testing.T, id *services.Identity, email string) services.Session {
	t.Helper()
	s, err := id.CreateAccount(context.Background(), services.Profile{FirstName: "Jane", LastName: "Roe", Email: email}, "s3cret!")
	require.NoError(t, err)
	return s
}

func newRouter(id *services.Identity) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(logger.NewNop()))
	protected := r.Group("/", AuthMiddleware(id))
	protected.GET("/me", func(c *gin.Context) {
		p, _ := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	protected.GET("/admin", AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	id := newIdentity()
	r := newRouter(id)
	user := session(t, id, "jane@x.com")

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)

	w := do(r, "/me", user.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.Principal.ID)
}

func TestAdminMiddleware(t *testing.T) {
	id := newIdentity()
	r := newRouter(id)
	user := session(t, id, "jane@x.com")
	boss := session(t, id, "boss@x.com")
	require.Equal(t, models.RoleAdmin, boss.Principal.Role)

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", user.Token).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", boss.Token).Code)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/login", NewRateLimiter(2).Limit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, "/login", "").Code)
	assert.Equal(t, http.StatusOK, do(r, "/login", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/login", "").Code)
}
