package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"foodai-backend/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCache(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	calls := 0
	r := gin.New()
	r.GET("/summary", Cache(store, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/fail", Cache(store, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream"})
	})
	r.PUT("/write", Invalidate(store), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/summary", nil)
	assert.Equal(t, "MISS", w.Header().Get(HeaderCache))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())

	w = serve(r, http.MethodGet, "/summary", nil)
	assert.Equal(t, "HIT", w.Header().Get(HeaderCache))
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())

	// Errors are never cached.
	serve(r, http.MethodGet, "/fail", nil)
	w = serve(r, http.MethodGet, "/fail", nil)
	assert.Equal(t, "MISS", w.Header().Get(HeaderCache))
	assert.Equal(t, 3, calls)

	serve(r, http.MethodPut, "/write", nil)
	w = serve(r, http.MethodGet, "/summary", nil)
	assert.Equal(t, "MISS", w.Header().Get(HeaderCache))
	assert.JSONEq(t, `{"calls":4}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2, time.Minute)
	r := gin.New()
	r.Use(RateLimiter(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate_limited","message":"too many requests"}`, w.Body.String())
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1, time.Minute)
	limiter.GetLimiter("10.0.0.1")
	limiter.GetLimiter("10.0.0.2")
	assert.Equal(t, 2, limiter.Len())

	assert.Equal(t, 0, limiter.Sweep(time.Now()))
	assert.Equal(t, 2, limiter.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, limiter.Len())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, http.MethodGet, "/", nil)
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)

	w = serve(r, http.MethodGet, "/", http.Header{HeaderRequestID: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodOptions, "/", http.Header{
		"Origin":                        {"http://localhost:5173"},
		"Access-Control-Request-Method": {http.MethodGet},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/", http.Header{"Origin": {"http://evil.example"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
