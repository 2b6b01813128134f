package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/metrics"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/telemetry"
)

// Errors returned by senders
var (
	ErrDispatcherNotRunning = errors.New("webhook: dispatcher is not running")
	ErrQueueFull            = errors.New("webhook: delivery queue is full")
	ErrMissingURL           = errors.New("webhook: missing target URL")
)

// Delivery outcomes recorded in metrics
const (
	OutcomeDelivered = "delivered"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

// Delivery is one outbound notification
type Delivery struct {
	ID      uuid.UUID
	Event   string
	URL     string
	Payload any
	Headers map[string]string

	// Parent is the span that caused the delivery; the zero value starts a new trace
	Parent trace.SpanContext
}

// NewDelivery creates a delivery with a fresh id
func NewDelivery(event, url string, payload any, headers map[string]string) Delivery {
	return Delivery{
		ID:      uuid.New(),
		Event:   event,
		URL:     url,
		Payload: payload,
		Headers: headers,
	}
}

// WithParent returns a copy of d that joins the trace active in ctx
func (d Delivery) WithParent(ctx context.Context) Delivery {
	d.Parent = trace.SpanContextFromContext(ctx)
	return d
}

// Sender accepts deliveries without blocking on the remote endpoint.
// Implementations never retry.
type Sender interface {
	Send(d Delivery) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(d Delivery) error

// Send implements Sender
func (f SenderFunc) Send(d Delivery) error {
	return f(d)
}

// deliverer performs the single HTTP attempt shared by all senders
type deliverer struct {
	client  *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func newDeliverer(timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *deliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &deliverer{
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: m,
	}
}

// deliver POSTs the payload once. Failures are logged and returned, never retried.
func (d *deliverer) deliver(ctx context.Context, delivery Delivery) error {
	if delivery.Parent.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, delivery.Parent)
	}
	traceHeaders := make(http.Header)
	ctx, span := telemetry.StartDelivery(ctx, delivery.Event, delivery.ID.String(), traceHeaders)
	defer span.End()

	start := time.Now()
	err := d.post(ctx, delivery, traceHeaders)
	elapsed := time.Since(start)
	telemetry.Fail(span, err)

	fields := []zap.Field{
		zap.String("delivery_id", delivery.ID.String()),
		zap.String("event", delivery.Event),
		zap.String("url", delivery.URL),
		zap.Duration("duration", elapsed),
	}

	var statusErr *statusError
	switch {
	case err == nil:
		d.metrics.WebhookDelivered(delivery.Event, OutcomeDelivered, elapsed)
		d.logger.Debug("Webhook delivered", fields...)
	case errors.As(err, &statusErr):
		d.metrics.WebhookDelivered(delivery.Event, OutcomeRejected, elapsed)
		d.logger.Warn("Webhook rejected by receiver", append(fields, zap.Int("status", statusErr.code))...)
	default:
		d.metrics.WebhookDelivered(delivery.Event, OutcomeFailed, elapsed)
		d.logger.Warn("Webhook delivery failed", append(fields, zap.Error(err))...)
	}
	return err
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook: receiver responded with status %d", e.code)
}

func (d *deliverer) post(ctx context.Context, delivery Delivery, traceHeaders http.Header) error {
	if delivery.URL == "" {
		return ErrMissingURL
	}
	body, err := json.Marshal(delivery.Payload)
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, delivery.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-ID", delivery.ID.String())
	req.Header.Set("X-Webhook-Event", delivery.Event)
	for k, v := range traceHeaders {
		req.Header[k] = v
	}
	for k, v := range delivery.Headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

// AsyncSender delivers each webhook on its own goroutine
type AsyncSender struct {
	d *deliverer
}

// NewAsyncSender creates a goroutine-per-delivery sender with a bounded request timeout
func NewAsyncSender(timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *AsyncSender {
	return &AsyncSender{d: newDeliverer(timeout, logger, m)}
}

// Send implements Sender
func (s *AsyncSender) Send(delivery Delivery) error {
	if delivery.URL == "" {
		return ErrMissingURL
	}
	go func() {
		_ = s.d.deliver(context.Background(), delivery)
	}()
	return nil
}
