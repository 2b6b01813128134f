package webhook

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/metrics"
)

// Config holds dispatcher configuration
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// DefaultConfig returns default dispatcher configuration
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		QueueSize: 256,
		Timeout:   5 * time.Second,
	}
}

// Dispatcher delivers webhooks from a bounded queue with a fixed worker pool.
// Send never blocks: when the queue is full the delivery is dropped.
type Dispatcher struct {
	config Config
	d      *deliverer
	logger *zap.Logger

	queue     chan Delivery
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
}

// NewDispatcher creates a new dispatcher instance
func NewDispatcher(config Config, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	def := DefaultConfig()
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		config: config,
		d:      newDeliverer(config.Timeout, logger, m),
		logger: logger,
		queue:  make(chan Delivery, config.QueueSize),
	}
}

// Start starts the worker pool
func (s *Dispatcher) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Webhook dispatcher started",
		zap.Int("workers", s.config.Workers),
		zap.Int("queue_size", s.config.QueueSize),
		zap.Duration("timeout", s.config.Timeout),
	)
	return nil
}

// Stop stops accepting deliveries, drains the queue and waits for workers
func (s *Dispatcher) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("Webhook dispatcher stopped gracefully")
		return nil
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("Webhook dispatcher stop timed out")
		return ctx.Err()
	}
}

// Send implements Sender
func (s *Dispatcher) Send(delivery Delivery) error {
	if delivery.URL == "" {
		return ErrMissingURL
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return ErrDispatcherNotRunning
	}

	select {
	case s.queue <- delivery:
		s.logger.Debug("Webhook queued",
			zap.String("delivery_id", delivery.ID.String()),
			zap.String("event", delivery.Event),
		)
		return nil
	default:
		s.d.metrics.WebhookDelivered(delivery.Event, OutcomeDropped, 0)
		return ErrQueueFull
	}
}

func (s *Dispatcher) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for delivery := range s.queue {
		_ = s.d.deliver(ctx, delivery)
	}
	s.logger.Debug("Webhook worker stopping", zap.Int("worker_id", workerID))
}
