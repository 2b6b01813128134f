package courier

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/telemetry"
)

const awbSuffixDigits = 2

// BookOrder stores a new shipment order in NEW, applying defaults for omitted
// package attributes. It always succeeds.
func (e *Emulator) BookOrder(ctx context.Context, req OrderRequest) *ShipmentOrder {
	order := ShipmentOrder{
		OrderID:        "ord_" + uuid.NewString(),
		ShipmentID:     "shp_" + uuid.NewString(),
		ChannelOrderID: req.ChannelOrderID,
		PickupLocation: req.PickupLocation,
		Billing:        req.Billing,
		Items:          req.Items,
		PaymentMethod:  req.PaymentMethod,
		SubTotal:       req.SubTotal,
		Dimensions:     req.Dimensions,
		Weight:         req.Weight,
		Status:         StatusNew,
		CreatedAt:      e.clock.Now(),
	}
	applyOrderDefaults(&order, e.cfg.DefaultPickupLocation)

	e.mu.Lock()
	e.orders[order.OrderID] = &orderEntry{order: order}
	e.mu.Unlock()

	e.metrics.OrderBooked()
	logger.WithLogger(ctx, e.logger).Info("Shipment order booked",
		zap.String("order_id", order.OrderID),
		zap.String("channel_order_id", order.ChannelOrderID),
		zap.String("payment_method", string(order.PaymentMethod)),
	)

	return order.clone()
}

func applyOrderDefaults(o *ShipmentOrder, pickupLocation string) {
	if o.PickupLocation == "" {
		o.PickupLocation = pickupLocation
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = PaymentPrepaid
	}
	if o.Dimensions.Length <= 0 {
		o.Dimensions.Length = DefaultLengthCm
	}
	if o.Dimensions.Breadth <= 0 {
		o.Dimensions.Breadth = DefaultBreadthCm
	}
	if o.Dimensions.Height <= 0 {
		o.Dimensions.Height = DefaultHeightCm
	}
	if o.Weight <= 0 {
		o.Weight = DefaultWeightKg
	}
	if o.SubTotal.IsZero() {
		total := decimal.Zero
		for _, item := range o.Items {
			total = total.Add(item.SellingPrice.Mul(decimal.NewFromInt(int64(item.Units))))
		}
		o.SubTotal = total
	}
	o.Items = append([]Item(nil), o.Items...)
}

// GetOrder returns a snapshot of an order
func (e *Emulator) GetOrder(ctx context.Context, orderID string) (*ShipmentOrder, error) {
	entry, ok := e.getOrderEntry(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.order.clone(), nil
}

// AssignAWB allocates a tracking number from courierID and moves the order to AWB_ASSIGNED
func (e *Emulator) AssignAWB(ctx context.Context, orderID string, courierID int) (_ *ShipmentOrder, err error) {
	ctx, span := telemetry.StartOperation(ctx, "courier", "assign_awb",
		attribute.String("order_id", orderID),
		attribute.Int("courier_id", courierID),
	)
	defer func() {
		telemetry.Fail(span, err)
		span.End()
	}()

	if e.isClosed() {
		return nil, ErrClosed
	}
	entry, ok := e.getOrderEntry(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	profile, ok := e.rates.Profile(courierID)
	if !ok {
		return nil, ErrUnknownCourier
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.order.Status != StatusNew {
		return nil, ErrAWBNotAllowed
	}

	entry.order.AWB = e.allocateAWB(courierID, orderID)
	entry.order.CourierID = profile.ID
	entry.order.CourierName = profile.Name
	e.transition(ctx, entry, StatusAWBAssigned, "AWB assigned", e.clock.Now())

	return entry.order.clone(), nil
}

// allocateAWB builds <courierID><unix millis><2 random digits>, retrying on collision
func (e *Emulator) allocateAWB(courierID int, orderID string) string {
	prefix := strconv.Itoa(courierID)
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		awb := prefix + strconv.FormatInt(e.clock.Now().UnixMilli(), 10) + e.rnd.DigitN(awbSuffixDigits)
		if _, taken := e.byAWB[awb]; !taken {
			e.byAWB[awb] = orderID
			return awb
		}
	}
}

// CancelOrder cancels an order that has not been picked up yet and stops its timers
func (e *Emulator) CancelOrder(ctx context.Context, orderID string) (*ShipmentOrder, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}
	entry, ok := e.getOrderEntry(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	return e.cancel(ctx, entry)
}

// CancelShipment cancels by AWB
func (e *Emulator) CancelShipment(ctx context.Context, awb string) (*ShipmentOrder, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}
	entry, ok := e.getEntryByAWB(awb)
	if !ok {
		return nil, ErrShipmentNotFound
	}
	return e.cancel(ctx, entry)
}

func (e *Emulator) cancel(ctx context.Context, entry *orderEntry) (*ShipmentOrder, error) {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if !entry.order.Status.Cancelable() {
		return nil, ErrCancelNotAllowed
	}
	entry.stopTimers()
	e.transition(ctx, entry, StatusCanceled, "Shipment cancelled", e.clock.Now())
	return entry.order.clone(), nil
}

// transition appends a tracking event stamped at and notifies. Must be called
// with entry locked.
func (e *Emulator) transition(ctx context.Context, entry *orderEntry, to ShipmentStatus, activity string, at time.Time) {
	from := entry.order.Status

	entry.order.Status = to
	entry.order.TrackingEvents = append(entry.order.TrackingEvents, TrackingEvent{
		Date:     at.Format(EventDateLayout),
		Time:     at.Format(EventTimeLayout),
		Activity: activity,
		Location: locationFor(&entry.order, to),
		Status:   to,
	})
	if to == StatusDelivered {
		entry.order.DeliveredAt = &at
	}

	e.metrics.ShipmentTransition(string(to))
	trace.SpanFromContext(ctx).AddEvent("shipment.transition", trace.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
	logger.WithLogger(ctx, e.logger).Info("Shipment status changed",
		zap.String("order_id", entry.order.OrderID),
		zap.String("awb", entry.order.AWB),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	e.notifyTransition(ctx, &entry.order)
}

func locationFor(o *ShipmentOrder, status ShipmentStatus) string {
	switch status {
	case StatusInTransit:
		return "Regional Transit Hub"
	case StatusOutForDelivery:
		return destinationOf(o) + " Delivery Centre"
	case StatusDelivered:
		return destinationOf(o)
	default:
		return o.PickupLocation
	}
}

func destinationOf(o *ShipmentOrder) string {
	switch {
	case o.Billing.City != "":
		return o.Billing.City
	case o.Billing.Pincode != "":
		return o.Billing.Pincode
	default:
		return "Destination"
	}
}
