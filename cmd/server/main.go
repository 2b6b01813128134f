package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/application/courier"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/application/payrail"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shipping"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/cache"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/config"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/metrics"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/random"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/telemetry"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/webhook"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/handler"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/router"
)

//	@title			Shopabell Provider Emulator API
//	@version		1.0
//	@description	Payment rail and courier aggregator emulators with zone-based shipping pricing

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Courier token. Format: "Bearer {token}"

//	@securityDefinitions.apikey	ClientID
//	@in							header
//	@name						X-Client-ID

//	@securityDefinitions.apikey	ClientSecret
//	@in							header
//	@name						X-Client-Secret

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting provider emulators",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", handler.Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		ServiceVersion:    handler.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	logExport, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.ExportLogs,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.App.Name,
		ServiceVersion:    handler.Version,
		Insecure:          cfg.Telemetry.Insecure,
		Level:             logger.ParseLevel(cfg.Log.Level),
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = logExport.Bridge(log)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace})
	}

	// Webhook dispatcher shared by both emulators
	dispatcher := webhook.NewDispatcher(webhook.Config{
		Workers:   cfg.Webhook.Workers,
		QueueSize: cfg.Webhook.QueueSize,
		Timeout:   cfg.Webhook.Timeout,
	}, logger.Component(log, "webhook"), m)
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal("Failed to start webhook dispatcher", zap.Error(err))
	}

	payments, err := newPaymentRail(cfg, log, m, dispatcher)
	if err != nil {
		log.Fatal("Failed to initialize payment rail emulator", zap.Error(err))
	}

	aggregator, err := courier.New(courier.Config{
		TokenSecret:           cfg.Courier.TokenSecret,
		TokenTTL:              cfg.Courier.TokenTTL,
		TokenIssuer:           cfg.Courier.TokenIssuer,
		WebhookURL:            cfg.Courier.WebhookURL,
		SellerRate:            decimal.NewFromFloat(cfg.Courier.SellerRate),
		DefaultPickupLocation: cfg.Courier.DefaultPickupLocation,
	},
		courier.WithLogger(logger.Component(log, "courier")),
		courier.WithMetrics(m),
		courier.WithSender(dispatcher),
	)
	if err != nil {
		log.Fatal("Failed to initialize courier emulator", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cache.RedisConfig{
		Addr:     cfg.Idempotency.RedisAddr,
		Password: cfg.Idempotency.RedisPassword,
		DB:       cfg.Idempotency.RedisDB,
	},
		cache.WithLogger(logger.Component(log, "idempotency")),
		cache.WithInMemoryFallback(!cfg.Idempotency.RequireRedis),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	zones := shipping.DefaultZoneTable().WithFreeShippingThresholds(freeShippingThresholds(cfg.Shipping))

	engine := router.NewEngine(router.Dependencies{
		Config:      cfg,
		Logger:      log,
		Metrics:     m,
		Idempotency: idempotencyStore,
		Payments:    payments,
		Courier:     aggregator,
		Calculator:  shipping.NewCalculator(zones),
		Rates:       shipping.NewDefaultRateEngine(),
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Pending stage timers and settlements die with the emulators
	if err := payments.Close(); err != nil {
		log.Error("Error closing payment rail emulator", zap.Error(err))
	}
	if err := aggregator.Close(); err != nil {
		log.Error("Error closing courier emulator", zap.Error(err))
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn("Webhook dispatcher did not drain", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logExport.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down log export", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func newPaymentRail(cfg *config.Config, log *zap.Logger, m *metrics.Metrics, sender webhook.Sender) (*payrail.Emulator, error) {
	railCfg := payrail.DefaultConfig()
	railCfg.BankCode = cfg.Payment.BankCode
	railCfg.RoutingCode = cfg.Payment.RoutingCode
	railCfg.HandleSuffix = cfg.Payment.HandleSuffix
	railCfg.MerchantHandle = cfg.Payment.MerchantHandle
	railCfg.MerchantName = cfg.Payment.MerchantName
	railCfg.MinLatency = cfg.Payment.MinLatency
	railCfg.MaxLatency = cfg.Payment.MaxLatency
	railCfg.SuccessRate = cfg.Payment.SuccessRate
	railCfg.LinkTTL = cfg.Payment.LinkTTL
	railCfg.WebhookURL = cfg.Payment.WebhookURL

	rail, err := payrail.New(railCfg,
		payrail.WithLogger(logger.Component(log, "payrail")),
		payrail.WithMetrics(m),
		payrail.WithSender(sender),
		payrail.WithRandom(random.NewSource(cfg.Payment.Seed)),
	)
	if err != nil {
		return nil, err
	}
	if err := rail.RegisterClient(cfg.Payment.ClientID, cfg.Payment.ClientSecret); err != nil {
		_ = rail.Close()
		return nil, err
	}
	return rail, nil
}

func freeShippingThresholds(cfg config.ShippingConfig) map[shipping.ZoneCode]decimal.Decimal {
	out := make(map[shipping.ZoneCode]decimal.Decimal, len(cfg.FreeShippingThresholds))
	for code, v := range cfg.FreeShippingThresholds {
		out[shipping.ZoneCode(code)] = decimal.NewFromFloat(v)
	}
	return out
}
