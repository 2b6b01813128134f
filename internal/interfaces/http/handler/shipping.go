package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shipping"
)

// ShippingHandler exposes zone pricing and multi-courier quotes
type ShippingHandler struct {
	BaseHandler
	calculator *shipping.Calculator
	rates      *shipping.RateEngine
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(calculator *shipping.Calculator, rates *shipping.RateEngine) *ShippingHandler {
	return &ShippingHandler{
		calculator: calculator,
		rates:      rates,
	}
}

// QuoteRequest represents a multi-courier quote request
// @Description Origin, destination and package weight to quote
type QuoteRequest struct {
	OriginPincode      string  `json:"origin_pincode" binding:"required,pincode" example:"110001"`
	DestinationPincode string  `json:"destination_pincode" binding:"required,pincode" example:"560001"`
	Weight             float64 `json:"weight" binding:"required,gt=0" example:"1.2"`
	COD                bool    `json:"cod" example:"false"`
}

// CalculateRequest represents a checkout shipping charge request
// @Description Destination, weight and order value for a checkout charge
type CalculateRequest struct {
	Pincode    string  `json:"pincode" binding:"required,pincode" example:"560001"`
	Weight     float64 `json:"weight" binding:"required,gt=0" example:"1.2"`
	COD        bool    `json:"cod" example:"false"`
	OrderValue float64 `json:"order_value" binding:"gte=0" example:"899"`
}

// ResolveZone godoc
// @ID           resolveShippingZone
//
//	@Summary		Resolve the delivery zone of a pincode
//	@Tags			shipping
//	@Produce		json
//	@Param			pincode	path		string	true	"6 digit pincode"
//	@Success		200		{object}	APIResponse[ZoneResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/shipping/zones/{pincode} [get]
func (h *ShippingHandler) ResolveZone(c *gin.Context) {
	pincode := c.Param("pincode")
	zone, err := h.calculator.ResolveZone(pincode)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ZoneResponse{Pincode: pincode, Zone: zone})
}

// Quote godoc
// @ID           quoteCouriers
//
//	@Summary		Quote every courier for a shipment
//	@Description	Quotes sorted by rate, cheapest first. COD requests only list couriers that support COD.
//	@Tags			shipping
//	@Accept			json
//	@Produce		json
//	@Param			request	body		QuoteRequest	true	"Quote request"
//	@Success		200		{object}	APIResponse[[]object]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/shipping/quote [post]
func (h *ShippingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quotes, err := h.rates.Quote(req.OriginPincode, req.DestinationPincode, req.Weight, req.COD)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quotes)
}

// Calculate godoc
// @ID           calculateShipping
//
//	@Summary		Calculate the checkout shipping charge
//	@Tags			shipping
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CalculateRequest	true	"Calculation request"
//	@Success		200		{object}	APIResponse[shipping.ShippingCharge]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/shipping/calculate [post]
func (h *ShippingHandler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	charge, err := h.calculator.Calculate(req.Pincode, req.Weight, req.COD, toDecimal(req.OrderValue))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, charge)
}
