package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/application/courier"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/application/payrail"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shipping"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/config"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/metrics"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/handler"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/middleware"
)

// Dependencies are the services the HTTP surface is built over
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics        // nil disables /metrics and request metrics
	Idempotency shared.IdempotencyStore // nil disables Idempotency-Key replay
	Payments    *payrail.Emulator
	Courier     *courier.Emulator
	Calculator  *shipping.Calculator
	Rates       *shipping.RateEngine
}

// NewEngine builds the gin engine with the middleware stack and every route
func NewEngine(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := logger.OrNop(deps.Logger)

	middleware.SetupValidator()
	engine := gin.New()

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Tracing - Server spans (if enabled)
	// 4. Logger - Log requests
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. Metrics - Request count and latency
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.App.Name), middleware.SpanAttributes())
	}
	engine.Use(logger.GinMiddleware(log, logger.WithQuietPaths("/health", cfg.Metrics.Path)))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.MaxAge = 12 * time.Hour
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))

	if deps.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(deps.Metrics))
		engine.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Float64("rps", cfg.HTTP.RateLimitRPS),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}

	// Replay runs after authentication so keys are scoped to the caller
	authenticated := func(auth gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{auth}
		if deps.Idempotency != nil && cfg.Idempotency.Enabled {
			chain = append(chain, middleware.Idempotency(deps.Idempotency, cfg.Idempotency.TTL, log))
		}
		return chain
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name)
	engine.GET("/health", systemHandler.Health)

	r := NewRouter(engine, WithAPIVersion("v1"), WithLogger(log))

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	shippingHandler := handler.NewShippingHandler(deps.Calculator, deps.Rates)
	shippingRoutes := NewDomainGroup("shipping", "/shipping")
	shippingRoutes.GET("/zones/:pincode", shippingHandler.ResolveZone)
	shippingRoutes.POST("/quote", shippingHandler.Quote)
	shippingRoutes.POST("/calculate", shippingHandler.Calculate)
	r.Register(shippingRoutes)

	paymentHandler := handler.NewPaymentHandler(deps.Payments)
	paymentRoutes := NewDomainGroup("payments", "/payments").
		Use(authenticated(middleware.ClientCredentials(deps.Payments, log))...)
	paymentRoutes.POST("/accounts", paymentHandler.CreateAccount)
	paymentRoutes.GET("/accounts/:id", paymentHandler.GetAccount)
	paymentRoutes.GET("/accounts/:id/transactions", paymentHandler.ListTransactions)
	paymentRoutes.POST("/links", paymentHandler.CreateLink)
	paymentRoutes.GET("/links/:id", paymentHandler.GetLink)
	paymentRoutes.POST("/settlements", paymentHandler.Settle)
	paymentRoutes.GET("/transactions/:id", paymentHandler.GetTransaction)
	paymentRoutes.GET("/transactions/verify/:reference", paymentHandler.VerifyByReference)
	r.Register(paymentRoutes)

	courierHandler := handler.NewCourierHandler(deps.Courier)
	courierRoutes := NewDomainGroup("courier", "/courier")
	courierRoutes.POST("/auth/login", courierHandler.Login)
	courierAPI := courierRoutes.Group("courier-api", "").
		Use(authenticated(middleware.BearerAuth(deps.Courier, log))...)
	courierAPI.POST("/orders/create/adhoc", courierHandler.CreateAdhoc)
	courierAPI.POST("/orders/cancel", courierHandler.Cancel)
	courierAPI.POST("/courier/assign/awb", courierHandler.AssignAWB)
	courierAPI.POST("/courier/generate/pickup", courierHandler.GeneratePickup)
	courierAPI.GET("/courier/serviceability", courierHandler.Serviceability)
	courierAPI.GET("/courier/track/awb/:awb", courierHandler.Track)
	r.Register(courierRoutes)

	mounted := r.Setup()
	endpoints := make([]string, 0, len(mounted))
	for _, route := range mounted {
		endpoints = append(endpoints, route.Method+" "+route.Path)
	}
	systemHandler.SetEndpoints(endpoints)
	return engine
}
