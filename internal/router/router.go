package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arogyacare/platform-api/internal/handler"
	authhandler "github.com/arogyacare/platform-api/internal/handler/auth"
	provisionhandler "github.com/arogyacare/platform-api/internal/handler/provision"
	voicehandler "github.com/arogyacare/platform-api/internal/handler/voice"
	"github.com/arogyacare/platform-api/internal/middleware"
	"github.com/arogyacare/platform-api/pkg/logger"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Timeout        time.Duration
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
}

type Router struct {
	engine     *gin.Engine
	auth       *middleware.AuthMiddleware
	authH      *authhandler.Handler
	provisionH *provisionhandler.Handler
	voiceH     *voicehandler.Handler
	h          *handler.Handler
	limiter    *middleware.RateLimiter
	metrics    *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authhandler.Handler,
	provisionH *provisionhandler.Handler,
	voiceH *voicehandler.Handler,
	h *handler.Handler,
	log *logger.Logger,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	r := &Router{
		engine:     engine,
		auth:       auth,
		authH:      authH,
		provisionH: provisionH,
		voiceH:     voiceH,
		h:          h,
		limiter:    middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst),
		metrics:    initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.ErrorLogger(log),
		r.metricsMiddleware(),
		middleware.Timeout(config.Timeout),
		middleware.CORS(config.CORSConfig),
	)

	return r
}

func (r *Router) Setup() {
	r.setupHealthCheck()

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Public auth endpoints carry the per-IP limiter: these are the
	// routes where codes and passwords can be guessed.
	public := api.Group("/auth")
	public.Use(r.limiter.Limit())
	{
		public.POST("/patient/otp/request", r.authH.RequestOTP)
		public.POST("/patient/otp/verify", r.authH.VerifyOTP)
		public.POST("/staff/login", r.authH.StaffLogin)
		public.POST("/staff/refresh", r.authH.RefreshToken)
		// Kept for patient apps shipped against the unscoped path.
		public.POST("/refresh", r.authH.RefreshToken)
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	{
		protected.POST("/auth/change-password", r.authH.ChangePassword)

		provision := protected.Group("/provision")
		provision.Use(r.auth.RequirePermission("staff:provision"))
		{
			provision.POST("/hospitals", r.provisionH.CreateHospital)
			provision.POST("/doctors", r.provisionH.CreateDoctor)
		}

		voice := protected.Group("/voice")
		voice.Use(r.auth.RequirePermission("voice:session"))
		{
			voice.POST("/session", r.voiceH.CreateSession)
		}
	}
}

func (r *Router) setupHealthCheck() {
	health := r.engine.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	r.engine.GET("/metrics", r.h.MetricsHandler)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Close stops the router's background work (the rate limiter cleanup).
func (r *Router) Close() {
	r.limiter.Stop()
}

func initRouterMetrics(prefix string) *routerMetrics {
	if prefix == "" {
		prefix = "platform_api"
	}
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
