package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Payment     PaymentConfig
	Courier     CourierConfig
	Shipping    ShippingConfig
	Webhook     WebhookConfig
	Idempotency IdempotencyConfig
	Metrics     MetricsConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodyBytes     int64
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSAllowOrigins []string
}

// PaymentConfig holds payment rail emulator settings
type PaymentConfig struct {
	ClientID       string
	ClientSecret   string
	WebhookURL     string
	BankCode       string
	RoutingCode    string
	HandleSuffix   string
	MerchantHandle string
	MerchantName   string
	MinLatency     time.Duration
	MaxLatency     time.Duration
	SuccessRate    float64
	LinkTTL        time.Duration
	Seed           uint64 // 0 = random
}

// CourierConfig holds courier aggregator emulator settings
type CourierConfig struct {
	TokenSecret           string
	TokenTTL              time.Duration
	TokenIssuer           string
	WebhookURL            string
	SellerRate            float64
	DefaultPickupLocation string
}

// ShippingConfig holds zone pricing overrides
type ShippingConfig struct {
	// FreeShippingThresholds overrides the free-shipping threshold per zone code
	// (metro, tier1, remote, rest). Negative disables free shipping for the zone.
	FreeShippingThresholds map[string]float64
}

// WebhookConfig holds webhook dispatcher settings
type WebhookConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// IdempotencyConfig holds Idempotency-Key replay settings
type IdempotencyConfig struct {
	Enabled       bool
	TTL           time.Duration
	RedisAddr     string // empty keeps keys in memory
	RedisPassword string
	RedisDB       int
	RequireRedis  bool // fail startup instead of falling back to memory
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled   bool
	Namespace string
	Path      string
}

// TelemetryConfig holds OpenTelemetry tracing settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string // empty keeps spans in-process for log correlation only
	SamplingRatio     float64
	Insecure          bool
	ExportLogs        bool // also ship logs to the collector
}

// ShippingZoneKeys are the zone codes accepted in shipping.free_shipping_thresholds
var ShippingZoneKeys = []string{"metro", "tier1", "remote", "rest"}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SHOPABELL_ prefix (e.g., SHOPABELL_PAYMENT_SUCCESS_RATE)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return build(v)
}

// LoadFile loads configuration from an explicit file path, still honoring env overrides
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("SHOPABELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodyBytes:     v.GetInt64("http.max_body_bytes"),
			RateLimitEnabled: v.GetBool("http.rate_limit_enabled"),
			RateLimitRPS:     v.GetFloat64("http.rate_limit_rps"),
			RateLimitBurst:   v.GetInt("http.rate_limit_burst"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Payment: PaymentConfig{
			ClientID:       v.GetString("payment.client_id"),
			ClientSecret:   v.GetString("payment.client_secret"),
			WebhookURL:     v.GetString("payment.webhook_url"),
			BankCode:       v.GetString("payment.bank_code"),
			RoutingCode:    v.GetString("payment.routing_code"),
			HandleSuffix:   v.GetString("payment.handle_suffix"),
			MerchantHandle: v.GetString("payment.merchant_handle"),
			MerchantName:   v.GetString("payment.merchant_name"),
			MinLatency:     v.GetDuration("payment.min_latency"),
			MaxLatency:     v.GetDuration("payment.max_latency"),
			SuccessRate:    v.GetFloat64("payment.success_rate"),
			LinkTTL:        v.GetDuration("payment.link_ttl"),
			Seed:           v.GetUint64("payment.seed"),
		},
		Courier: CourierConfig{
			TokenSecret:           v.GetString("courier.token_secret"),
			TokenTTL:              v.GetDuration("courier.token_ttl"),
			TokenIssuer:           v.GetString("courier.token_issuer"),
			WebhookURL:            v.GetString("courier.webhook_url"),
			SellerRate:            v.GetFloat64("courier.seller_rate"),
			DefaultPickupLocation: v.GetString("courier.default_pickup_location"),
		},
		Shipping: ShippingConfig{
			FreeShippingThresholds: make(map[string]float64),
		},
		Webhook: WebhookConfig{
			Workers:   v.GetInt("webhook.workers"),
			QueueSize: v.GetInt("webhook.queue_size"),
			Timeout:   v.GetDuration("webhook.timeout"),
		},
		Idempotency: IdempotencyConfig{
			Enabled:       v.GetBool("idempotency.enabled"),
			TTL:           v.GetDuration("idempotency.ttl"),
			RedisAddr:     v.GetString("idempotency.redis_addr"),
			RedisPassword: v.GetString("idempotency.redis_password"),
			RedisDB:       v.GetInt("idempotency.redis_db"),
			RequireRedis:  v.GetBool("idempotency.require_redis"),
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("metrics.enabled"),
			Namespace: v.GetString("metrics.namespace"),
			Path:      v.GetString("metrics.path"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportLogs:        v.GetBool("telemetry.export_logs"),
		},
	}

	// zero is a meaningful value for these, so defaults apply only when unset
	if !v.IsSet("metrics.enabled") {
		cfg.Metrics.Enabled = true
	}
	if !v.IsSet("idempotency.enabled") {
		cfg.Idempotency.Enabled = true
	}
	if !v.IsSet("payment.success_rate") {
		cfg.Payment.SuccessRate = 0.95
	}
	if !v.IsSet("payment.min_latency") && !v.IsSet("payment.max_latency") {
		cfg.Payment.MinLatency = 5 * time.Second
		cfg.Payment.MaxLatency = 30 * time.Second
	}

	if !v.IsSet("telemetry.sampling_ratio") {
		cfg.Telemetry.SamplingRatio = 1.0
	}

	for _, zone := range ShippingZoneKeys {
		key := "shipping.free_shipping_thresholds." + zone
		if v.IsSet(key) {
			cfg.Shipping.FreeShippingThresholds[zone] = v.GetFloat64(key)
		}
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shopabell-emulator"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 45 * time.Second // settlements may hold a request for up to 30s
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodyBytes == 0 {
		cfg.HTTP.MaxBodyBytes = 1 << 20
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 50
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 100
	}
	if cfg.Payment.ClientID == "" {
		cfg.Payment.ClientID = "emulator_client"
	}
	if cfg.Payment.ClientSecret == "" {
		cfg.Payment.ClientSecret = "emulator_secret"
	}
	if cfg.Payment.BankCode == "" {
		cfg.Payment.BankCode = "5021"
	}
	if cfg.Payment.RoutingCode == "" {
		cfg.Payment.RoutingCode = "SBEM0000001"
	}
	if cfg.Payment.HandleSuffix == "" {
		cfg.Payment.HandleSuffix = "shopabell"
	}
	if cfg.Payment.MerchantHandle == "" {
		cfg.Payment.MerchantHandle = "shopabell@emulator"
	}
	if cfg.Payment.MerchantName == "" {
		cfg.Payment.MerchantName = "Shopabell"
	}
	if cfg.Payment.LinkTTL == 0 {
		cfg.Payment.LinkTTL = 60 * time.Minute
	}
	if cfg.Courier.TokenTTL == 0 {
		cfg.Courier.TokenTTL = 10 * 24 * time.Hour
	}
	if cfg.Courier.TokenIssuer == "" {
		cfg.Courier.TokenIssuer = "courier-emulator"
	}
	if cfg.Courier.SellerRate == 0 {
		cfg.Courier.SellerRate = 50
	}
	if cfg.Courier.DefaultPickupLocation == "" {
		cfg.Courier.DefaultPickupLocation = "Primary"
	}
	if cfg.Webhook.Workers == 0 {
		cfg.Webhook.Workers = 4
	}
	if cfg.Webhook.QueueSize == 0 {
		cfg.Webhook.QueueSize = 256
	}
	if cfg.Webhook.Timeout == 0 {
		cfg.Webhook.Timeout = 5 * time.Second
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "shopabell_emulator"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	// The token secret has no default outside development; validate rejects an empty one.
	if cfg.Courier.TokenSecret == "" && cfg.App.Env != "production" {
		cfg.Courier.TokenSecret = "development-courier-token-secret"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Payment.SuccessRate < 0.0 || c.Payment.SuccessRate > 1.0 {
		return fmt.Errorf("payment.success_rate must be between 0.0 and 1.0, got %f", c.Payment.SuccessRate)
	}
	if c.Payment.MinLatency < 0 || c.Payment.MaxLatency < 0 {
		return fmt.Errorf("payment latency bounds cannot be negative")
	}
	if c.Payment.MinLatency > c.Payment.MaxLatency {
		return fmt.Errorf("payment.min_latency (%s) cannot exceed payment.max_latency (%s)",
			c.Payment.MinLatency, c.Payment.MaxLatency)
	}
	if c.Payment.LinkTTL < 0 {
		return fmt.Errorf("payment.link_ttl cannot be negative")
	}
	if c.Courier.SellerRate < 0 {
		return fmt.Errorf("courier.seller_rate cannot be negative")
	}
	if c.Webhook.Workers < 0 || c.Webhook.QueueSize < 0 {
		return fmt.Errorf("webhook.workers and webhook.queue_size cannot be negative")
	}
	if c.HTTP.RateLimitRPS < 0 || c.HTTP.RateLimitBurst < 0 {
		return fmt.Errorf("http rate limit settings cannot be negative")
	}
	if c.Idempotency.TTL < 0 {
		return fmt.Errorf("idempotency.ttl cannot be negative")
	}
	if c.HTTP.MaxBodyBytes < 0 {
		return fmt.Errorf("http.max_body_bytes cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if c.Courier.TokenSecret == "" {
			return fmt.Errorf("courier.token_secret is required in production")
		}
		if len(c.Courier.TokenSecret) < 32 {
			return fmt.Errorf("courier.token_secret must be at least 32 characters in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// Addr returns the HTTP listen address
func (a *AppConfig) Addr() string {
	return ":" + a.Port
}
