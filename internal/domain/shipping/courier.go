package shipping

import "github.com/shopspring/decimal"

// CourierProfile describes how one courier prices and schedules deliveries
type CourierProfile struct {
	ID           int
	Name         string
	BaseRate     decimal.Decimal
	PerExtraKg   decimal.Decimal
	CODPercent   decimal.Decimal
	SupportsCOD  bool
	MinWeight    float64
	DeliveryDays map[RoutingZone]int
}

// DaysFor returns the delivery estimate for a routing zone
func (p CourierProfile) DaysFor(zone RoutingZone) int {
	if d, ok := p.DeliveryDays[zone]; ok {
		return d
	}
	return p.DeliveryDays[RoutingRestOfIndia]
}

// CODChargeFor returns round(base * codPercent), zero when COD is unsupported
func (p CourierProfile) CODChargeFor() decimal.Decimal {
	if !p.SupportsCOD {
		return decimal.Zero
	}
	return p.BaseRate.Mul(p.CODPercent).Round(0)
}

func days(sameCity, sameState, metro, special, rest int) map[RoutingZone]int {
	return map[RoutingZone]int{
		RoutingSameCity:    sameCity,
		RoutingSameState:   sameState,
		RoutingMetro:       metro,
		RoutingSpecialZone: special,
		RoutingRestOfIndia: rest,
	}
}

// DefaultCourierProfiles returns the courier table used by checkout quoting
func DefaultCourierProfiles() []CourierProfile {
	return []CourierProfile{
		{
			ID:           1,
			Name:         "Delhivery Surface",
			BaseRate:     decimal.NewFromInt(45),
			PerExtraKg:   decimal.NewFromInt(35),
			CODPercent:   decimal.RequireFromString("0.60"),
			SupportsCOD:  true,
			MinWeight:    0.5,
			DeliveryDays: days(2, 3, 4, 9, 6),
		},
		{
			ID:           2,
			Name:         "Blue Dart Express",
			BaseRate:     decimal.NewFromInt(70),
			PerExtraKg:   decimal.NewFromInt(55),
			CODPercent:   decimal.RequireFromString("0.50"),
			SupportsCOD:  true,
			MinWeight:    0.5,
			DeliveryDays: days(1, 2, 2, 5, 3),
		},
		{
			ID:           3,
			Name:         "DTDC Surface",
			BaseRate:     decimal.NewFromInt(38),
			PerExtraKg:   decimal.NewFromInt(30),
			SupportsCOD:  false,
			MinWeight:    0.5,
			DeliveryDays: days(2, 4, 5, 10, 7),
		},
		{
			ID:           4,
			Name:         "Xpressbees",
			BaseRate:     decimal.NewFromInt(42),
			PerExtraKg:   decimal.NewFromInt(32),
			CODPercent:   decimal.RequireFromString("0.55"),
			SupportsCOD:  true,
			MinWeight:    0.5,
			DeliveryDays: days(2, 3, 4, 8, 5),
		},
		{
			ID:           5,
			Name:         "Ekart Logistics",
			BaseRate:     decimal.NewFromInt(40),
			PerExtraKg:   decimal.NewFromInt(33),
			CODPercent:   decimal.RequireFromString("0.50"),
			SupportsCOD:  true,
			MinWeight:    0.5,
			DeliveryDays: days(2, 3, 4, 8, 6),
		},
		{
			ID:           6,
			Name:         "India Post Speed Post",
			BaseRate:     decimal.NewFromInt(35),
			PerExtraKg:   decimal.NewFromInt(28),
			SupportsCOD:  false,
			MinWeight:    0.5,
			DeliveryDays: days(3, 4, 5, 7, 6),
		},
	}
}

// aggregatorRates are the fixed courier partners of the aggregator emulator
// with their multipliers against the seller rate
var aggregatorRates = []struct {
	id          int
	name        string
	multiplier  string
	supportsCOD bool
	days        map[RoutingZone]int
}{
	{1, "Delhivery", "1.00", true, days(2, 3, 4, 9, 6)},
	{2, "Blue Dart", "1.40", true, days(1, 2, 2, 5, 3)},
	{3, "DTDC", "0.90", false, days(2, 4, 5, 10, 7)},
	{4, "Xpressbees", "0.95", true, days(2, 3, 4, 8, 5)},
}

// AggregatorProfiles returns the four courier partners of the aggregator,
// priced relative to a shared seller rate. Each courier's base is
// sellerRate*multiplier, extra weight costs half the base per kg and COD
// costs half the base.
func AggregatorProfiles(sellerRate decimal.Decimal) []CourierProfile {
	half := decimal.RequireFromString("0.5")
	profiles := make([]CourierProfile, 0, len(aggregatorRates))
	for _, r := range aggregatorRates {
		base := sellerRate.Mul(decimal.RequireFromString(r.multiplier)).Round(2)
		p := CourierProfile{
			ID:           r.id,
			Name:         r.name,
			BaseRate:     base,
			PerExtraKg:   base.Mul(half),
			SupportsCOD:  r.supportsCOD,
			MinWeight:    0.5,
			DeliveryDays: r.days,
		}
		if r.supportsCOD {
			p.CODPercent = half
		}
		profiles = append(profiles, p)
	}
	return profiles
}
