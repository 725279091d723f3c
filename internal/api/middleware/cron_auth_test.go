package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func cronRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/cron/refresh", CronAuth(secret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doCron(r *gin.Engine, auth string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cron/refresh", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w.Code
}

func TestCronAuth(t *testing.T) {
	r := cronRouter("topsecret")

	assert.Equal(t, http.StatusOK, doCron(r, "Bearer topsecret"))
	assert.Equal(t, http.StatusUnauthorized, doCron(r, "Bearer wrong"))
	assert.Equal(t, http.StatusUnauthorized, doCron(r, "topsecret"))
	assert.Equal(t, http.StatusUnauthorized, doCron(r, ""))
}

func TestCronAuthNoSecretIsOpen(t *testing.T) {
	r := cronRouter("")
	assert.Equal(t, http.StatusOK, doCron(r, ""))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origins get no CORS headers.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
