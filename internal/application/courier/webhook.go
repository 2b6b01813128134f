package courier

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/webhook"
)

// EventShipmentUpdate is sent on every shipment status change
const EventShipmentUpdate = "shipment.update"

// ShipmentWebhook is the body POSTed to the webhook URL
type ShipmentWebhook struct {
	AWB            string          `json:"awb"`
	OrderID        string          `json:"order_id"`
	ShipmentID     string          `json:"shipment_id"`
	CurrentStatus  ShipmentStatus  `json:"current_status"`
	TrackingEvents []TrackingEvent `json:"tracking_events"`
}

// NewShipmentWebhook builds the webhook body for an order
func NewShipmentWebhook(o *ShipmentOrder) ShipmentWebhook {
	return ShipmentWebhook{
		AWB:            o.AWB,
		OrderID:        o.OrderID,
		ShipmentID:     o.ShipmentID,
		CurrentStatus:  o.Status,
		TrackingEvents: slices.Clone(o.TrackingEvents),
	}
}

func (e *Emulator) notifyTransition(ctx context.Context, o *ShipmentOrder) {
	url := e.WebhookURL()
	if url == "" {
		return
	}

	delivery := webhook.NewDelivery(EventShipmentUpdate, url, NewShipmentWebhook(o), nil).WithParent(ctx)
	if err := e.sender.Send(delivery); err != nil {
		logger.WithLogger(ctx, e.logger).Warn("Shipment webhook not sent",
			zap.String("order_id", o.OrderID),
			zap.String("status", string(o.Status)),
			zap.Error(err),
		)
	}
}
