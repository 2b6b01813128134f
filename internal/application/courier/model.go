package courier

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Tracking event date and time layouts
const (
	EventDateLayout = "2006-01-02"
	EventTimeLayout = "15:04:05"
)

// PaymentMethod of a shipment order
type PaymentMethod string

const (
	PaymentPrepaid PaymentMethod = "Prepaid"
	PaymentCOD     PaymentMethod = "COD"
)

// Default package attributes applied when a booking omits them
const (
	DefaultLengthCm  = 10.0
	DefaultBreadthCm = 10.0
	DefaultHeightCm  = 10.0
	DefaultWeightKg  = 0.5
)

// Party is the consignee of a shipment
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
}

// Item is one order line
type Item struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Units        int             `json:"units"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// Dimensions in centimetres
type Dimensions struct {
	Length  float64 `json:"length"`
	Breadth float64 `json:"breadth"`
	Height  float64 `json:"height"`
}

// TrackingEvent is one entry of the append-only shipment log
type TrackingEvent struct {
	Date     string         `json:"date"`
	Time     string         `json:"time"`
	Activity string         `json:"activity"`
	Location string         `json:"location"`
	Status   ShipmentStatus `json:"status"`
}

// ShipmentOrder is a booked shipment and its delivery state
type ShipmentOrder struct {
	OrderID           string
	ShipmentID        string
	ChannelOrderID    string
	PickupLocation    string
	Billing           Party
	Items             []Item
	PaymentMethod     PaymentMethod
	SubTotal          decimal.Decimal
	Dimensions        Dimensions
	Weight            float64
	AWB               string
	CourierID         int
	CourierName       string
	Status            ShipmentStatus
	TrackingEvents    []TrackingEvent
	PickupScheduledAt *time.Time
	DeliveredAt       *time.Time
	CreatedAt         time.Time
}

func (o ShipmentOrder) clone() *ShipmentOrder {
	o.Items = slices.Clone(o.Items)
	o.TrackingEvents = slices.Clone(o.TrackingEvents)
	if o.PickupScheduledAt != nil {
		t := *o.PickupScheduledAt
		o.PickupScheduledAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		o.DeliveredAt = &t
	}
	return &o
}

// OrderRequest is the booking input. Zero dimensions, weight, pickup location
// and payment method fall back to defaults.
type OrderRequest struct {
	ChannelOrderID string
	PickupLocation string
	Billing        Party
	Items          []Item
	PaymentMethod  PaymentMethod
	SubTotal       decimal.Decimal // zero sums the items
	Dimensions     Dimensions
	Weight         float64
}
