package shipping

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoutingZone is the coarse origin/destination classification used for courier pricing
type RoutingZone string

const (
	RoutingSameCity    RoutingZone = "same_city"
	RoutingSameState   RoutingZone = "same_state"
	RoutingMetro       RoutingZone = "metro"
	RoutingSpecialZone RoutingZone = "special_zone"
	RoutingRestOfIndia RoutingZone = "rest_of_india"
)

// AllRoutingZones lists every routing zone in classification order
func AllRoutingZones() []RoutingZone {
	return []RoutingZone{
		RoutingSameCity,
		RoutingSameState,
		RoutingMetro,
		RoutingSpecialZone,
		RoutingRestOfIndia,
	}
}

var routingMultipliers = map[RoutingZone]decimal.Decimal{
	RoutingSameCity:    decimal.NewFromInt(1),
	RoutingSameState:   decimal.RequireFromString("1.2"),
	RoutingMetro:       decimal.RequireFromString("1.5"),
	RoutingSpecialZone: decimal.RequireFromString("2.5"),
	RoutingRestOfIndia: decimal.RequireFromString("1.8"),
}

// Multiplier returns the rate multiplier applied to a courier's base rate
func (z RoutingZone) Multiplier() decimal.Decimal {
	if m, ok := routingMultipliers[z]; ok {
		return m
	}
	return routingMultipliers[RoutingRestOfIndia]
}

// ClassifyRoute assigns an origin/destination pair to a routing zone.
// Both pincodes must already be valid.
func ClassifyRoute(origin, destination string) RoutingZone {
	switch {
	case origin[:3] == destination[:3]:
		return RoutingSameCity
	case origin[0] == destination[0]:
		return RoutingSameState
	case hasAnyPrefix(destination, metroPrefixes):
		return RoutingMetro
	case hasAnyPrefix(destination, specialZonePrefixes):
		return RoutingSpecialZone
	default:
		return RoutingRestOfIndia
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
