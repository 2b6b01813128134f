// Package payrail emulates a payment rail: virtual collection accounts, UPI
// payment links, settlements with randomized latency and outcome, and signed
// payment.success webhooks.
package payrail

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/auth"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/metrics"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/random"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/webhook"
)

// Config holds payment rail emulator settings
type Config struct {
	BankCode       string // leading digits of synthetic account numbers
	RoutingCode    string
	HandleSuffix   string // domain part of collection handles
	MerchantHandle string // payee address in payment links
	MerchantName   string
	MinLatency     time.Duration
	MaxLatency     time.Duration
	SuccessRate    float64
	LinkTTL        time.Duration
	WebhookURL     string
	CredentialCost int // bcrypt cost for client secrets
}

// DefaultConfig returns the default emulator configuration
func DefaultConfig() Config {
	return Config{
		BankCode:       "5021",
		RoutingCode:    "SBEM0000001",
		HandleSuffix:   "shopabell",
		MerchantHandle: "shopabell@emulator",
		MerchantName:   "Shopabell",
		MinLatency:     5 * time.Second,
		MaxLatency:     30 * time.Second,
		SuccessRate:    0.95,
		LinkTTL:        60 * time.Minute,
		CredentialCost: bcrypt.DefaultCost,
	}
}

func (c Config) validate() error {
	if c.SuccessRate < 0 || c.SuccessRate > 1 {
		return fmt.Errorf("payrail: success rate must be within [0, 1], got %f", c.SuccessRate)
	}
	if c.MinLatency < 0 || c.MaxLatency < c.MinLatency {
		return fmt.Errorf("payrail: invalid latency bounds [%s, %s]", c.MinLatency, c.MaxLatency)
	}
	if c.LinkTTL <= 0 {
		return fmt.Errorf("payrail: link TTL must be positive")
	}
	if len(c.BankCode) >= accountNumberLength {
		return fmt.Errorf("payrail: bank code must be shorter than %d digits", accountNumberLength)
	}
	for _, r := range c.BankCode {
		if r < '0' || r > '9' {
			return fmt.Errorf("payrail: bank code must be numeric")
		}
	}
	return nil
}

// Option configures an Emulator
type Option func(*Emulator)

// WithClock sets the clock used for latency, timestamps and link expiry
func WithClock(clock clockwork.Clock) Option {
	return func(e *Emulator) { e.clock = clock }
}

// WithRandom sets the source for latency, outcomes and synthetic identifiers
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

type accountEntry struct {
	mu      sync.Mutex
	account CollectionAccount
}

type linkEntry struct {
	mu   sync.Mutex
	link PaymentLink

	// settling is set while a settlement referencing the link is unresolved
	settling bool
}

// Emulator is one independent payment rail. All state lives in memory for the
// lifetime of the instance.
type Emulator struct {
	cfg         Config
	clock       clockwork.Clock
	rnd         random.Source
	logger      *zap.Logger
	metrics     *metrics.Metrics
	sender      webhook.Sender
	credentials *auth.CredentialStore

	mu           sync.RWMutex
	accounts     map[string]*accountEntry
	handles      map[string]struct{}
	links        map[string]*linkEntry
	transactions map[string]*Transaction
	byAccount    map[string][]string
	byReference  map[string]string
	webhookURL   string

	closed    chan struct{}
	closeOnce sync.Once
	pending   sync.WaitGroup
}

// New creates an emulator
func New(cfg Config, opts ...Option) (*Emulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Emulator{
		cfg:          cfg,
		accounts:     make(map[string]*accountEntry),
		handles:      make(map[string]struct{}),
		links:        make(map[string]*linkEntry),
		transactions: make(map[string]*Transaction),
		byAccount:    make(map[string][]string),
		byReference:  make(map[string]string),
		webhookURL:   cfg.WebhookURL,
		closed:       make(chan struct{}),
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
	e.logger = logger.Component(e.logger, "payrail")
	if e.sender == nil {
		e.sender = webhook.NewAsyncSender(webhook.DefaultConfig().Timeout, e.logger, e.metrics)
	}
	e.credentials = auth.NewCredentialStore(cfg.CredentialCost)

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

// SetWebhookURL changes where payment.success webhooks are sent. Empty disables them.
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

// RegisterClient adds a client_id/client_secret pair accepted by VerifyClientCredentials
func (e *Emulator) RegisterClient(clientID, secret string) error {
	return e.credentials.Register(clientID, secret)
}

// VerifyClientCredentials checks the header-style credentials of a REST caller
func (e *Emulator) VerifyClientCredentials(clientID, secret string) error {
	if err := e.credentials.Verify(clientID, secret); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Close aborts pending settlements and rejects further operations. It waits
// for in-flight settlement goroutines to return.
func (e *Emulator) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		close(e.closed)
		e.mu.Unlock()
	})
	e.pending.Wait()
	return nil
}

func (e *Emulator) isClosed() bool {
	select {
	case <-e.closed:
		return true
	default:
		return false
	}
}

func (e *Emulator) now() time.Time {
	return e.clock.Now()
}

func (e *Emulator) getAccountEntry(id string) (*accountEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.accounts[id]
	return entry, ok
}

func (e *Emulator) getLinkEntry(id string) (*linkEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.links[id]
	return entry, ok
}

func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive()
}
