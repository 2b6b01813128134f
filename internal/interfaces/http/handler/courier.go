package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/application/courier"
)

// CourierHandler exposes the courier aggregator emulator
type CourierHandler struct {
	BaseHandler
	aggregator *courier.Emulator
}

// NewCourierHandler creates a new CourierHandler
func NewCourierHandler(aggregator *courier.Emulator) *CourierHandler {
	return &CourierHandler{aggregator: aggregator}
}

// LoginRequest represents a courier API login
// @Description Credentials for the courier API. Any non-empty pair is accepted.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ops@seller.example"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// OrderItemRequest is one line of an adhoc order
type OrderItemRequest struct {
	Name         string  `json:"name" binding:"required,max=200" example:"Cotton Kurta"`
	SKU          string  `json:"sku" binding:"max=100" example:"KRT-001"`
	Units        int     `json:"units" binding:"required,gt=0" example:"2"`
	SellingPrice float64 `json:"selling_price" binding:"gte=0" example:"150.50"`
}

// CreateAdhocOrderRequest represents an adhoc order booking
// @Description Request body for booking a shipment order
type CreateAdhocOrderRequest struct {
	OrderID             string             `json:"order_id" binding:"max=100" example:"SB-1001"`
	PickupLocation      string             `json:"pickup_location" binding:"max=100" example:"Primary"`
	BillingCustomerName string             `json:"billing_customer_name" binding:"required,max=200" example:"Asha Rao"`
	BillingAddress      string             `json:"billing_address" binding:"required,max=500" example:"12 MG Road"`
	BillingCity         string             `json:"billing_city" binding:"required,max=100" example:"Bengaluru"`
	BillingState        string             `json:"billing_state" binding:"max=100" example:"Karnataka"`
	BillingPincode      string             `json:"billing_pincode" binding:"required,pincode" example:"560001"`
	BillingPhone        string             `json:"billing_phone" binding:"required,max=20" example:"9876543210"`
	BillingEmail        string             `json:"billing_email" binding:"omitempty,email" example:"asha@example.com"`
	OrderItems          []OrderItemRequest `json:"order_items" binding:"required,min=1,dive"`
	PaymentMethod       string             `json:"payment_method" binding:"omitempty,oneof=Prepaid COD" example:"COD"`
	SubTotal            float64            `json:"sub_total" binding:"gte=0" example:"400"`
	Length              float64            `json:"length" binding:"gte=0" example:"10"`
	Breadth             float64            `json:"breadth" binding:"gte=0" example:"10"`
	Height              float64            `json:"height" binding:"gte=0" example:"10"`
	Weight              float64            `json:"weight" binding:"gte=0" example:"0.5"`
}

// CancelOrdersRequest represents a cancellation of one or more orders
// @Description Order IDs to cancel
type CancelOrdersRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

// AssignAWBRequest represents an AWB assignment
// @Description Assign an AWB from the given courier to a booked order
type AssignAWBRequest struct {
	OrderID   string `json:"order_id" binding:"required" example:"ord_3f0c6b1e"`
	CourierID int    `json:"courier_id" binding:"required,gt=0" example:"1"`
}

// GeneratePickupRequest represents a pickup request
// @Description Schedule pickup for an AWB. An omitted pickup_date means now.
type GeneratePickupRequest struct {
	AWB        string     `json:"awb" binding:"required" example:"1177331234567842"`
	PickupDate *time.Time `json:"pickup_date" example:"2026-03-10T11:00:00Z"`
}

// ServiceabilityQuery represents the serviceability query string
type ServiceabilityQuery struct {
	PickupPostcode   string  `form:"pickup_postcode" binding:"required,pincode"`
	DeliveryPostcode string  `form:"delivery_postcode" binding:"required,pincode"`
	Weight           float64 `form:"weight" binding:"required,gt=0"`
	COD              int     `form:"cod" binding:"oneof=0 1"`
}

// Login godoc
// @ID           courierLogin
//
//	@Summary		Obtain a courier API token
//	@Tags			courier
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/courier/auth/login [post]
func (h *CourierHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.aggregator.Authenticate(req.Email, req.Password)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token.Value,
		Email:     token.Identity,
		CreatedAt: formatTime(token.IssuedAt),
		ExpiresAt: formatTime(token.ExpiresAt),
	})
}

// CreateAdhoc godoc
// @ID           createAdhocOrder
//
//	@Summary		Book a shipment order
//	@Tags			courier
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateAdhocOrderRequest	true	"Order request"
//	@Success		200		{object}	CreateOrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/courier/orders/create/adhoc [post]
func (h *CourierHandler) CreateAdhoc(c *gin.Context) {
	var req CreateAdhocOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items := make([]courier.Item, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		items = append(items, courier.Item{
			Name:         item.Name,
			SKU:          item.SKU,
			Units:        item.Units,
			SellingPrice: toDecimal(item.SellingPrice),
		})
	}

	order := h.aggregator.BookOrder(c.Request.Context(), courier.OrderRequest{
		ChannelOrderID: req.OrderID,
		PickupLocation: req.PickupLocation,
		Billing: courier.Party{
			Name:    req.BillingCustomerName,
			Address: req.BillingAddress,
			City:    req.BillingCity,
			State:   req.BillingState,
			Pincode: req.BillingPincode,
			Phone:   req.BillingPhone,
			Email:   req.BillingEmail,
		},
		Items:         items,
		PaymentMethod: courier.PaymentMethod(req.PaymentMethod),
		SubTotal:      decimal.NewFromFloat(req.SubTotal),
		Dimensions: courier.Dimensions{
			Length:  req.Length,
			Breadth: req.Breadth,
			Height:  req.Height,
		},
		Weight: req.Weight,
	})

	c.JSON(http.StatusOK, toCreateOrderResponse(order))
}

// Cancel godoc
// @ID           cancelOrders
//
//	@Summary		Cancel orders
//	@Description	Cancel orders that have not been picked up yet. Stops at the first failure.
//	@Tags			courier
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CancelOrdersRequest	true	"Cancel request"
//	@Success		200		{object}	CancelResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/courier/orders/cancel [post]
func (h *CourierHandler) Cancel(c *gin.Context) {
	var req CancelOrdersRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cancelled := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if _, err := h.aggregator.CancelOrder(c.Request.Context(), id); err != nil {
			h.HandleDomainError(c, err)
			return
		}
		cancelled = append(cancelled, id)
	}

	c.JSON(http.StatusOK, CancelResponse{
		Message:  "Order cancelled successfully.",
		OrderIDs: cancelled,
	})
}

// AssignAWB godoc
// @ID           assignAWB
//
//	@Summary		Assign an AWB
//	@Tags			courier
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AssignAWBRequest	true	"AWB request"
//	@Success		200		{object}	AWBAssignResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/courier/courier/assign/awb [post]
func (h *CourierHandler) AssignAWB(c *gin.Context) {
	var req AssignAWBRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.aggregator.AssignAWB(c.Request.Context(), req.OrderID, req.CourierID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	data := AWBData{
		AWBCode:          order.AWB,
		CourierCompanyID: order.CourierID,
		CourierName:      order.CourierName,
		OrderID:          order.OrderID,
		ShipmentID:       order.ShipmentID,
	}
	if n := len(order.TrackingEvents); n > 0 {
		last := order.TrackingEvents[n-1]
		data.AssignedDateTime = last.Date + " " + last.Time
	}

	c.JSON(http.StatusOK, AWBAssignResponse{
		AWBAssignStatus: 1,
		Response:        AWBResponseBody{Data: data},
	})
}

// GeneratePickup godoc
// @ID           generatePickup
//
//	@Summary		Schedule a pickup
//	@Description	Schedules pickup and the delivery progression that follows it
//	@Tags			courier
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GeneratePickupRequest	true	"Pickup request"
//	@Success		200		{object}	PickupResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/courier/courier/generate/pickup [post]
func (h *CourierHandler) GeneratePickup(c *gin.Context) {
	var req GeneratePickupRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pickupAt := time.Now()
	if req.PickupDate != nil {
		pickupAt = *req.PickupDate
	}

	order, err := h.aggregator.SchedulePickup(c.Request.Context(), req.AWB, pickupAt)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, PickupResponse{
		PickupStatus: 1,
		Response: PickupResponseBody{
			AWBCode:              order.AWB,
			PickupScheduledDate:  formatTime(pickupAt),
			ExpectedDeliveryDate: formatTime(pickupAt.Add(courier.DeliveryDuration())),
			Status:               string(order.Status),
			PickupTokenNumber:    "Reference No: " + order.ShipmentID,
			Message:              "Pickup is scheduled",
		},
	})
}

// Serviceability godoc
// @ID           courierServiceability
//
//	@Summary		Courier serviceability and rates
//	@Tags			courier
//	@Produce		json
//	@Param			pickup_postcode		query		string	true	"Origin pincode"
//	@Param			delivery_postcode	query		string	true	"Destination pincode"
//	@Param			weight				query		number	true	"Weight in kg"
//	@Param			cod					query		int		false	"1 for cash on delivery"
//	@Success		200					{object}	ServiceabilityResponse
//	@Failure		400					{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/courier/courier/serviceability [get]
func (h *CourierHandler) Serviceability(c *gin.Context) {
	var query ServiceabilityQuery
	if !h.BindQuery(c, &query) {
		return
	}

	quotes, err := h.aggregator.QuoteRates(c.Request.Context(),
		query.PickupPostcode, query.DeliveryPostcode, query.Weight, query.COD == 1)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ServiceabilityResponse{
		Status: 200,
		Data:   ServiceabilityData{AvailableCourierCompanies: quotes},
	})
}

// Track godoc
// @ID           trackAWB
//
//	@Summary		Track a shipment by AWB
//	@Tags			courier
//	@Produce		json
//	@Param			awb	path		string	true	"AWB code"
//	@Success		200	{object}	object
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/courier/courier/track/awb/{awb} [get]
func (h *CourierHandler) Track(c *gin.Context) {
	snapshot, err := h.aggregator.Track(c.Request.Context(), c.Param("awb"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
