package shipping

import (
	"math"

	"github.com/shopspring/decimal"
)

// ShippingCharge is the amount checkout charges for shipping an order
type ShippingCharge struct {
	Zone          Zone            `json:"-"`
	ZoneName      string          `json:"zone"`
	BaseCost      decimal.Decimal `json:"base_cost"`
	WeightCharge  decimal.Decimal `json:"weight_charge"`
	CODCharge     decimal.Decimal `json:"cod_charge"`
	Discount      decimal.Decimal `json:"free_shipping_discount"`
	Total         decimal.Decimal `json:"total"`
	FreeShipping  bool            `json:"free_shipping"`
	EstimatedDays int             `json:"estimated_delivery_days"`
	ChargeableKg  int64           `json:"chargeable_weight_kg"`
}

// Calculator computes zone-based shipping charges for checkout
type Calculator struct {
	zones *ZoneTable
}

// NewCalculator creates a calculator over the given zone table
func NewCalculator(zones *ZoneTable) *Calculator {
	if zones == nil {
		zones = DefaultZoneTable()
	}
	return &Calculator{zones: zones}
}

// ResolveZone returns the zone for a destination pincode
func (c *Calculator) ResolveZone(pincode string) (Zone, error) {
	return c.zones.Resolve(pincode)
}

// Calculate charges base + ceil(weight)*perKg (+ COD charge), then discounts the
// base and weight portions when orderValue reaches the zone's free-shipping
// threshold. The COD portion is never discounted.
func (c *Calculator) Calculate(pincode string, weightKg float64, cod bool, orderValue decimal.Decimal) (*ShippingCharge, error) {
	zone, err := c.zones.Resolve(pincode)
	if err != nil {
		return nil, err
	}
	if weightKg <= 0 || !isFinite(weightKg) {
		return nil, ErrInvalidWeight
	}
	if orderValue.IsNegative() {
		return nil, ErrInvalidAmount
	}

	chargeable := int64(math.Ceil(weightKg))
	weightCharge := zone.PerKgCost.Mul(decimal.NewFromInt(chargeable))
	codCharge := decimal.Zero
	if cod {
		codCharge = zone.CODCharge
	}

	charge := &ShippingCharge{
		Zone:          zone,
		ZoneName:      zone.Name,
		BaseCost:      zone.BaseCost,
		WeightCharge:  weightCharge,
		CODCharge:     codCharge,
		Discount:      decimal.Zero,
		EstimatedDays: zone.DeliveryDays,
		ChargeableKg:  chargeable,
	}
	if zone.QualifiesForFreeShipping(orderValue) {
		charge.Discount = zone.BaseCost.Add(weightCharge)
		charge.FreeShipping = true
	}
	charge.Total = zone.BaseCost.Add(weightCharge).Add(codCharge).Sub(charge.Discount)
	return charge, nil
}

// EstimatedDeliveryDays returns the zone delivery estimate for a pincode
func (c *Calculator) EstimatedDeliveryDays(pincode string) (int, error) {
	zone, err := c.zones.Resolve(pincode)
	if err != nil {
		return 0, err
	}
	return zone.DeliveryDays, nil
}
