package courier

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/telemetry"
)

// SchedulePickup moves an AWB-assigned shipment to PICKUP_SCHEDULED and arms
// one timer per delivery stage, anchored at pickupAt. A pickup time in the
// past makes every overdue stage apply on the first firing.
func (e *Emulator) SchedulePickup(ctx context.Context, awb string, pickupAt time.Time) (_ *ShipmentOrder, err error) {
	ctx, span := telemetry.StartOperation(ctx, "courier", "schedule_pickup", attribute.String("awb", awb))
	defer func() {
		telemetry.Fail(span, err)
		span.End()
	}()

	if e.isClosed() {
		return nil, ErrClosed
	}
	if pickupAt.IsZero() {
		return nil, ErrInvalidPickupTime
	}
	entry, ok := e.getEntryByAWB(awb)
	if !ok {
		return nil, ErrShipmentNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.order.Status != StatusAWBAssigned {
		return nil, ErrPickupNotAllowed
	}

	scheduled := pickupAt
	entry.pickupAt = pickupAt
	entry.order.PickupScheduledAt = &scheduled
	e.transition(ctx, entry, StatusPickupScheduled, "Pickup scheduled", e.clock.Now())

	orderID := entry.order.OrderID
	now := e.clock.Now()
	for _, st := range pickupStages {
		delay := max(pickupAt.Add(st.offset).Sub(now), 0)
		// The callback must not hold the clock while taking entry locks.
		entry.timers = append(entry.timers, e.clock.AfterFunc(delay, func() {
			go e.advance(orderID)
		}))
	}

	logger.WithLogger(ctx, e.logger).Debug("Delivery stages armed",
		zap.String("awb", awb),
		zap.Time("pickup_at", pickupAt),
		zap.Time("delivery_due", pickupAt.Add(DeliveryDuration())),
	)

	return entry.order.clone(), nil
}

// advance applies every stage that is due and whose prior status matches the
// shipment's current status. Firings that find nothing to do are stale.
func (e *Emulator) advance(orderID string) {
	if e.isClosed() {
		return
	}
	entry, ok := e.getOrderEntry(orderID)
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.order.PickupScheduledAt == nil {
		return
	}

	ctx := context.Background()
	now := e.clock.Now()
	applied := 0
	for _, st := range pickupStages {
		if entry.order.Status != st.from {
			continue
		}
		due := entry.pickupAt.Add(st.offset)
		if now.Before(due) {
			break
		}
		e.transition(ctx, entry, st.to, st.activity, due)
		applied++
	}

	if applied == 0 {
		e.logger.Debug("Stale stage timer skipped",
			zap.String("order_id", orderID),
			zap.String("status", string(entry.order.Status)),
		)
	}
	if entry.order.Status.IsTerminal() {
		entry.stopTimers()
	}
}
