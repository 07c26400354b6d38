package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"foodai-backend/internal/mw"
)

// RouterConfig holds the HTTP-level settings of the router.
type RouterConfig struct {
	ServiceName string
	CacheTTL    time.Duration // <= 0 disables response caching
	CORSOrigins []string
	Limiter     *mw.IPRateLimiter
}

func passThrough(c *gin.Context) { c.Next() }

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(mw.RequestID(), mw.RequestLogger(h.log), mw.CORS(cfg.CORSOrigins))

	// Response caching is off unless a TTL is set. Rows written outside this
	// service are only seen once the TTL expires.
	var caching, invalidate gin.HandlerFunc = passThrough, passThrough
	if cfg.CacheTTL > 0 {
		cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
		caching = mw.Cache(cacheStore, cfg.CacheTTL)
		invalidate = mw.Invalidate(cacheStore)
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.GetHealth)
	v1.GET("/ready", h.GetReady)

	api := v1.Group("")
	if cfg.Limiter != nil {
		api.Use(mw.RateLimiter(cfg.Limiter))
	}
	{
		api.POST("/predict", h.PostPredict)

		api.POST("/ia/entrenar", invalidate, h.PostTrain)
		api.GET("/ia/predecir", h.GetPredictStatus)
		api.GET("/ia/recomendar", caching, h.GetRecommendations)

		api.GET("/analisis/restaurante-mas-reservado", caching, h.GetMostBooked)
		api.GET("/analisis/resumen", caching, h.GetSummary)
		api.GET("/restaurants/:id/ai-insights", caching, h.GetInsights)

		api.PUT("/reservations/:id/reschedule", invalidate, h.PutReschedule)
		api.GET("/reservations/:id/availability", h.GetAvailability)

		api.POST("/email/send", h.PostEmail)

		api.PUT("/restaurants/:id/push-subscriptions", h.PutSubscription)
		api.DELETE("/restaurants/:id/push-subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
