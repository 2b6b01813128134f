// Package courier emulates a courier aggregator: bearer tokens, shipment
// bookings, AWB assignment, a timer-driven delivery state machine, tracking
// and per-transition webhooks.
package courier

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shipping"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/auth"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/metrics"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/random"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/webhook"
)

// Config holds courier aggregator emulator settings
type Config struct {
	TokenSecret           string
	TokenTTL              time.Duration
	TokenIssuer           string
	WebhookURL            string
	SellerRate            decimal.Decimal
	DefaultPickupLocation string
}

// DefaultConfig returns the default emulator configuration
func DefaultConfig() Config {
	return Config{
		TokenSecret:           "development-courier-token-secret",
		TokenTTL:              auth.DefaultTokenTTL,
		TokenIssuer:           "courier-emulator",
		SellerRate:            decimal.NewFromInt(50),
		DefaultPickupLocation: "Primary",
	}
}

// Option configures an Emulator
type Option func(*Emulator)

// WithClock sets the clock driving tokens, timestamps and stage timers
func WithClock(clock clockwork.Clock) Option {
	return func(e *Emulator) { e.clock = clock }
}

// WithRandom sets the source for AWB suffixes
func WithRandom(src random.Source) Option {
	return func(e *Emulator) { e.rnd = src }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Emulator) { e.logger = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Emulator) { e.metrics = m }
}

// WithSender sets how webhooks are delivered
func WithSender(s webhook.Sender) Option {
	return func(e *Emulator) { e.sender = s }
}

type orderEntry struct {
	mu       sync.Mutex
	order    ShipmentOrder
	pickupAt time.Time
	timers   []clockwork.Timer
}

func (o *orderEntry) stopTimers() {
	for _, t := range o.timers {
		t.Stop()
	}
	o.timers = nil
}

// Emulator is one independent courier aggregator. All state lives in memory
// and pending stage timers die with the instance.
type Emulator struct {
	cfg     Config
	clock   clockwork.Clock
	rnd     random.Source
	logger  *zap.Logger
	metrics *metrics.Metrics
	sender  webhook.Sender
	tokens  *auth.TokenService
	rates   *shipping.RateEngine

	mu         sync.RWMutex
	orders     map[string]*orderEntry
	byAWB      map[string]string
	webhookURL string
	closed     bool
}

// New creates an emulator
func New(cfg Config, opts ...Option) (*Emulator, error) {
	if cfg.SellerRate.IsNegative() {
		return nil, fmt.Errorf("courier: seller rate cannot be negative")
	}
	if cfg.DefaultPickupLocation == "" {
		cfg.DefaultPickupLocation = DefaultConfig().DefaultPickupLocation
	}

	e := &Emulator{
		cfg:        cfg,
		orders:     make(map[string]*orderEntry),
		byAWB:      make(map[string]string),
		webhookURL: cfg.WebhookURL,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.rnd == nil {
		e.rnd = random.NewSource(0)
	}
	e.logger = logger.Component(e.logger, "courier")
	if e.sender == nil {
		e.sender = webhook.NewAsyncSender(webhook.DefaultConfig().Timeout, e.logger, e.metrics)
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: cfg.TokenSecret,
		TTL:    cfg.TokenTTL,
		Issuer: cfg.TokenIssuer,
	}, e.clock)
	if err != nil {
		return nil, fmt.Errorf("courier: %w", err)
	}
	e.tokens = tokens
	e.rates = shipping.NewRateEngine(shipping.AggregatorProfiles(cfg.SellerRate), shipping.WithClock(e.clock))

	return e, nil
}

var (
	defaultOnce     sync.Once
	defaultEmulator *Emulator
)

// Default returns a process-wide emulator with the default configuration
func Default() *Emulator {
	defaultOnce.Do(func() {
		e, err := New(DefaultConfig())
		if err != nil {
			panic(err)
		}
		defaultEmulator = e
	})
	return defaultEmulator
}

// SetWebhookURL changes where shipment webhooks are sent. Empty disables them.
func (e *Emulator) SetWebhookURL(url string) {
	e.mu.Lock()
	e.webhookURL = url
	e.mu.Unlock()
}

// WebhookURL returns the configured webhook target
func (e *Emulator) WebhookURL() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.webhookURL
}

// Close stops every pending stage timer owned by this instance. Shipments
// keep the status they had reached.
func (e *Emulator) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	entries := make([]*orderEntry, 0, len(e.orders))
	for _, entry := range e.orders {
		entries = append(entries, entry)
	}
	e.mu.Unlock()

	for _, entry := range entries {
		entry.mu.Lock()
		entry.stopTimers()
		entry.mu.Unlock()
	}
	e.logger.Info("Courier emulator closed", zap.Int("orders", len(entries)))
	return nil
}

func (e *Emulator) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

func (e *Emulator) getOrderEntry(orderID string) (*orderEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.orders[orderID]
	return entry, ok
}

func (e *Emulator) getEntryByAWB(awb string) (*orderEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.byAWB[awb]
	if !ok {
		return nil, false
	}
	return e.orders[id], true
}
