package handler

import (
	"github.com/shopspring/decimal"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/application/courier"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shipping"
)

// Courier endpoints answer in the aggregator's own response shapes rather than
// the success/data envelope, so existing aggregator clients can point at them.
// Errors still use the standard error envelope.

// LoginResponse is returned by the courier login endpoint
// @Description Bearer token for the courier API
type LoginResponse struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Email     string `json:"email" example:"ops@seller.example"`
	CreatedAt string `json:"created_at" example:"2026-03-10T10:00:00Z"`
	ExpiresAt string `json:"expires_at" example:"2026-03-20T10:00:00Z"`
}

// CreateOrderResponse is returned when an adhoc order is booked
// @Description Booked shipment order
type CreateOrderResponse struct {
	OrderID    string          `json:"order_id" example:"ord_3f0c6b1e"`
	ShipmentID string          `json:"shipment_id" example:"shp_9b1d2c44"`
	Status     string          `json:"status" example:"NEW"`
	StatusCode int             `json:"status_code" example:"1"`
	SubTotal   decimal.Decimal `json:"sub_total" swaggertype:"string" example:"400.00"`
	Weight     float64         `json:"weight" example:"0.5"`
	AWBCode    string          `json:"awb_code" example:""`
	CourierID  int             `json:"courier_company_id,omitempty" example:"1"`
	Courier    string          `json:"courier_name,omitempty" example:"Delhivery"`
	CreatedAt  string          `json:"created_at" example:"2026-03-10T10:00:00Z"`
}

// AWBAssignResponse is returned when an AWB is assigned
// @Description AWB assignment result
type AWBAssignResponse struct {
	AWBAssignStatus int             `json:"awb_assign_status" example:"1"`
	Response        AWBResponseBody `json:"response"`
}

// AWBResponseBody wraps the assigned AWB data
type AWBResponseBody struct {
	Data AWBData `json:"data"`
}

// AWBData describes the assigned AWB
type AWBData struct {
	AWBCode          string `json:"awb_code" example:"1177331234567842"`
	CourierCompanyID int    `json:"courier_company_id" example:"1"`
	CourierName      string `json:"courier_name" example:"Delhivery"`
	OrderID          string `json:"order_id" example:"ord_3f0c6b1e"`
	ShipmentID       string `json:"shipment_id" example:"shp_9b1d2c44"`
	AssignedDateTime string `json:"assigned_date_time" example:"2026-03-10 10:00:00"`
}

// PickupResponse is returned when a pickup is scheduled
// @Description Pickup scheduling result
type PickupResponse struct {
	PickupStatus int                `json:"pickup_status" example:"1"`
	Response     PickupResponseBody `json:"response"`
}

// PickupResponseBody describes the scheduled pickup
type PickupResponseBody struct {
	AWBCode              string `json:"awb_code" example:"1177331234567842"`
	PickupScheduledDate  string `json:"pickup_scheduled_date" example:"2026-03-10T11:00:00Z"`
	ExpectedDeliveryDate string `json:"expected_delivery_date" example:"2026-03-11T17:00:00Z"`
	Status               string `json:"status" example:"PICKUP_SCHEDULED"`
	PickupTokenNumber    string `json:"pickup_token_number" example:"Reference No: shp_9b1d2c44"`
	Message              string `json:"data" example:"Pickup is scheduled"`
}

// CancelResponse is returned when orders are cancelled
// @Description Cancellation result
type CancelResponse struct {
	Message  string   `json:"message" example:"Order cancelled successfully."`
	OrderIDs []string `json:"order_ids"`
}

// ServiceabilityResponse lists couriers able to carry a shipment
// @Description Courier serviceability and rates, cheapest first
type ServiceabilityResponse struct {
	Status int                `json:"status" example:"200"`
	Data   ServiceabilityData `json:"data"`
}

// ServiceabilityData holds the available courier quotes
type ServiceabilityData struct {
	AvailableCourierCompanies []shipping.CourierQuote `json:"available_courier_companies"`
}

func toCreateOrderResponse(o *courier.ShipmentOrder) CreateOrderResponse {
	return CreateOrderResponse{
		OrderID:    o.OrderID,
		ShipmentID: o.ShipmentID,
		Status:     string(o.Status),
		StatusCode: 1,
		SubTotal:   o.SubTotal,
		Weight:     o.Weight,
		AWBCode:    o.AWB,
		CourierID:  o.CourierID,
		Courier:    o.CourierName,
		CreatedAt:  formatTime(o.CreatedAt),
	}
}
