package courier

import "time"

// ShipmentStatus is the delivery state of a shipment order
type ShipmentStatus string

const (
	StatusNew             ShipmentStatus = "NEW"
	StatusAWBAssigned     ShipmentStatus = "AWB_ASSIGNED"
	StatusPickupScheduled ShipmentStatus = "PICKUP_SCHEDULED"
	StatusPicked          ShipmentStatus = "PICKED"
	StatusInTransit       ShipmentStatus = "IN_TRANSIT"
	StatusOutForDelivery  ShipmentStatus = "OUT_FOR_DELIVERY"
	StatusDelivered       ShipmentStatus = "DELIVERED"
	StatusCanceled        ShipmentStatus = "CANCELED"
)

// IsTerminal reports whether no further transition can happen
func (s ShipmentStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

// Cancelable reports whether a shipment in this status can still be cancelled
func (s ShipmentStatus) Cancelable() bool {
	switch s {
	case StatusNew, StatusAWBAssigned, StatusPickupScheduled:
		return true
	default:
		return false
	}
}

// stage is one timer-driven transition after pickup is scheduled
type stage struct {
	from     ShipmentStatus
	to       ShipmentStatus
	offset   time.Duration // from the scheduled pickup time
	activity string
}

// pickupStages run in order. Offsets: pickup at +0, in transit 2h later,
// out for delivery 24h after that, delivered 4h after that.
var pickupStages = []stage{
	{StatusPickupScheduled, StatusPicked, 0, "Shipment picked up"},
	{StatusPicked, StatusInTransit, 2 * time.Hour, "Shipment in transit"},
	{StatusInTransit, StatusOutForDelivery, 26 * time.Hour, "Out for delivery"},
	{StatusOutForDelivery, StatusDelivered, 30 * time.Hour, "Delivered"},
}

// DeliveryDuration is the time from scheduled pickup to delivery
func DeliveryDuration() time.Duration {
	return pickupStages[len(pickupStages)-1].offset
}
