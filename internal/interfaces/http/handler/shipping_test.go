package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shipping"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/dto"
)

func newShippingRouter() *gin.Engine {
	h := NewShippingHandler(shipping.NewCalculator(shipping.DefaultZoneTable()), shipping.NewDefaultRateEngine())
	router := gin.New()
	router.GET("/shipping/zones/:pincode", h.ResolveZone)
	router.POST("/shipping/quote", h.Quote)
	router.POST("/shipping/calculate", h.Calculate)
	return router
}

func TestShippingHandler_ResolveZone(t *testing.T) {
	router := newShippingRouter()

	w := performRequest(t, router, http.MethodGet, "/shipping/zones/400001", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Pincode string `json:"pincode"`
		Zone    struct {
			Code string `json:"code"`
			Name string `json:"name"`
		} `json:"zone"`
	}
	decodeData(t, w, &resp)
	assert.Equal(t, "400001", resp.Pincode)
	assert.Equal(t, "metro", resp.Zone.Code)

	w = performRequest(t, router, http.MethodGet, "/shipping/zones/40000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))
}

func TestShippingHandler_Quote(t *testing.T) {
	router := newShippingRouter()

	w := performRequest(t, router, http.MethodPost, "/shipping/quote", QuoteRequest{
		OriginPincode:      "110001",
		DestinationPincode: "560001",
		Weight:             1.2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quotes []struct {
		CourierName string  `json:"courier_name"`
		Rate        float64 `json:"rate"`
		ETD         string  `json:"etd"`
	}
	decodeData(t, w, &quotes)
	require.NotEmpty(t, quotes)
	for i := 1; i < len(quotes); i++ {
		assert.LessOrEqual(t, quotes[i-1].Rate, quotes[i].Rate)
	}

	w = performRequest(t, router, http.MethodPost, "/shipping/quote", QuoteRequest{OriginPincode: "110001", DestinationPincode: "560001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShippingHandler_Calculate(t *testing.T) {
	router := newShippingRouter()

	w := performRequest(t, router, http.MethodPost, "/shipping/calculate", CalculateRequest{
		Pincode:    "400001",
		Weight:     1.2,
		COD:        true,
		OrderValue: 100,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var charge struct {
		Zone         string `json:"zone"`
		Total        string `json:"total"`
		CODCharge    string `json:"cod_charge"`
		FreeShipping bool   `json:"free_shipping"`
		ChargeableKg int64  `json:"chargeable_weight_kg"`
	}
	decodeData(t, w, &charge)
	assert.Equal(t, int64(2), charge.ChargeableKg)
	assert.False(t, charge.FreeShipping)
	assert.Equal(t, "30", charge.CODCharge)
	assert.Equal(t, "110", charge.Total)
}
