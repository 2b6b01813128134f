package shipping

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ZoneCode identifies a pricing zone independent of its display name
type ZoneCode string

const (
	ZoneCodeMetro  ZoneCode = "metro"
	ZoneCodeTier1  ZoneCode = "tier1"
	ZoneCodeRemote ZoneCode = "remote"
	ZoneCodeRest   ZoneCode = "rest"
)

// Zone is a pricing and delivery-time bucket keyed by pincode prefixes
type Zone struct {
	Code      ZoneCode        `json:"code"`
	Name      string          `json:"name"`
	Prefixes  []string        `json:"pincode_prefixes"`
	BaseCost  decimal.Decimal `json:"base_cost"`
	PerKgCost decimal.Decimal `json:"per_kg_cost"`
	CODCharge decimal.Decimal `json:"cod_charge"`
	// FreeShippingThreshold is nil when the zone never ships free
	FreeShippingThreshold *decimal.Decimal `json:"free_shipping_threshold,omitempty"`
	DeliveryDays          int              `json:"estimated_delivery_days"`
}

// QualifiesForFreeShipping reports whether orderValue meets the zone threshold
func (z Zone) QualifiesForFreeShipping(orderValue decimal.Decimal) bool {
	return z.FreeShippingThreshold != nil && orderValue.GreaterThanOrEqual(*z.FreeShippingThreshold)
}

type prefixEntry struct {
	prefix string
	zone   int
}

// ZoneTable resolves pincodes to zones by longest-prefix match.
// It is immutable once built and safe for concurrent use.
type ZoneTable struct {
	zones    []Zone
	fallback Zone
	// sorted longest prefix first
	entries []prefixEntry
}

// NewZoneTable builds a table from zones and a catch-all fallback zone
func NewZoneTable(zones []Zone, fallback Zone) *ZoneTable {
	t := &ZoneTable{
		zones:    make([]Zone, len(zones)),
		fallback: fallback,
	}
	copy(t.zones, zones)
	for i, z := range t.zones {
		for _, p := range z.Prefixes {
			t.entries = append(t.entries, prefixEntry{prefix: p, zone: i})
		}
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		return len(t.entries[i].prefix) > len(t.entries[j].prefix)
	})
	return t
}

// Resolve returns the zone for pincode. Every valid pincode resolves to some zone.
func (t *ZoneTable) Resolve(pincode string) (Zone, error) {
	if err := ValidatePincode(pincode); err != nil {
		return Zone{}, err
	}
	for _, e := range t.entries {
		if strings.HasPrefix(pincode, e.prefix) {
			return t.zones[e.zone], nil
		}
	}
	return t.fallback, nil
}

// Zones returns every zone including the fallback, fallback last
func (t *ZoneTable) Zones() []Zone {
	out := make([]Zone, 0, len(t.zones)+1)
	out = append(out, t.zones...)
	return append(out, t.fallback)
}

// WithFreeShippingThresholds returns a copy of the table with thresholds replaced
// for the given zone codes. A negative value removes free shipping for that zone.
func (t *ZoneTable) WithFreeShippingThresholds(thresholds map[ZoneCode]decimal.Decimal) *ZoneTable {
	apply := func(z Zone) Zone {
		v, ok := thresholds[z.Code]
		if !ok {
			return z
		}
		if v.IsNegative() {
			z.FreeShippingThreshold = nil
			return z
		}
		z.FreeShippingThreshold = &v
		return z
	}
	zones := make([]Zone, len(t.zones))
	for i, z := range t.zones {
		zones[i] = apply(z)
	}
	return NewZoneTable(zones, apply(t.fallback))
}

var (
	metroPrefixes       = []string{"110", "400", "560", "600", "700", "500"}
	tier1Prefixes       = []string{"411", "380", "302", "226", "452", "440", "641", "682", "160"}
	specialZonePrefixes = []string{"78", "79", "18", "19", "194", "744", "682555"}
)

func threshold(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// DefaultZones returns the built-in zone definitions and the catch-all zone
func DefaultZones() ([]Zone, Zone) {
	zones := []Zone{
		{
			Code:                  ZoneCodeMetro,
			Name:                  "Metro Cities",
			Prefixes:              metroPrefixes,
			BaseCost:              decimal.NewFromInt(40),
			PerKgCost:             decimal.NewFromInt(20),
			CODCharge:             decimal.NewFromInt(30),
			FreeShippingThreshold: threshold(499),
			DeliveryDays:          2,
		},
		{
			Code:                  ZoneCodeTier1,
			Name:                  "Tier 1 Cities",
			Prefixes:              tier1Prefixes,
			BaseCost:              decimal.NewFromInt(50),
			PerKgCost:             decimal.NewFromInt(25),
			CODCharge:             decimal.NewFromInt(35),
			FreeShippingThreshold: threshold(699),
			DeliveryDays:          3,
		},
		{
			Code:         ZoneCodeRemote,
			Name:         "Remote Areas",
			Prefixes:     specialZonePrefixes,
			BaseCost:     decimal.NewFromInt(80),
			PerKgCost:    decimal.NewFromInt(40),
			CODCharge:    decimal.NewFromInt(50),
			DeliveryDays: 7,
		},
	}
	rest := Zone{
		Code:                  ZoneCodeRest,
		Name:                  "Rest of India",
		BaseCost:              decimal.NewFromInt(60),
		PerKgCost:             decimal.NewFromInt(30),
		CODCharge:             decimal.NewFromInt(40),
		FreeShippingThreshold: threshold(799),
		DeliveryDays:          5,
	}
	return zones, rest
}

// DefaultZoneTable returns a table built from DefaultZones
func DefaultZoneTable() *ZoneTable {
	zones, rest := DefaultZones()
	return NewZoneTable(zones, rest)
}
