package courier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipmentWebhook_FiredOnEveryTransition(t *testing.T) {
	sender := &captureSender{}
	e, clock := newTestEmulator(t, func(c *Config) { c.WebhookURL = "http://hooks.local/shipments" }, WithSender(sender))
	order := scheduledShipment(t, e)

	clock.Advance(31 * time.Hour)
	waitForStatus(t, e, order.OrderID, StatusDelivered)

	deliveries := sender.all()
	require.Len(t, deliveries, 6)

	statuses := make([]ShipmentStatus, 0, len(deliveries))
	for _, d := range deliveries {
		assert.Equal(t, EventShipmentUpdate, d.Event)
		assert.Equal(t, "http://hooks.local/shipments", d.URL)
		body, ok := d.Payload.(ShipmentWebhook)
		require.True(t, ok)
		assert.Equal(t, order.AWB, body.AWB)
		assert.Equal(t, order.OrderID, body.OrderID)
		assert.Equal(t, order.ShipmentID, body.ShipmentID)
		assert.Len(t, body.TrackingEvents, len(statuses)+1)
		statuses = append(statuses, body.CurrentStatus)
	}
	assert.Equal(t, StatusDelivered, statuses[5])
}

func TestShipmentWebhook_DisabledWithoutURL(t *testing.T) {
	sender := &captureSender{}
	e, _ := newTestEmulator(t, nil, WithSender(sender))

	order := e.BookOrder(context.Background(), sampleRequest())
	_, err := e.AssignAWB(context.Background(), order.OrderID, 1)
	require.NoError(t, err)

	assert.Empty(t, sender.all())
}

func TestShipmentWebhook_JSONShape(t *testing.T) {
	body := NewShipmentWebhook(&ShipmentOrder{
		OrderID:    "ord_1",
		ShipmentID: "shp_1",
		AWB:        "1123",
		Status:     StatusPicked,
		TrackingEvents: []TrackingEvent{
			{Date: "2026-03-10", Time: "11:00:00", Activity: "Shipment picked up", Location: "Primary", Status: StatusPicked},
		},
	})

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "1123", decoded["awb"])
	assert.Equal(t, "ord_1", decoded["order_id"])
	assert.Equal(t, "shp_1", decoded["shipment_id"])
	assert.Equal(t, "PICKED", decoded["current_status"])
	assert.Len(t, decoded["tracking_events"], 1)
}
