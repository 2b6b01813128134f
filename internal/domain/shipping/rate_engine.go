package shipping

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// ETDLayout is the date format of CourierQuote.ETADate on the wire
const ETDLayout = "2006-01-02"

var halfKg = decimal.RequireFromString("0.5")

// CourierQuote is one courier's price and delivery estimate for a shipment
type CourierQuote struct {
	CourierID    int
	Name         string
	Rate         decimal.Decimal
	CODAvailable bool
	CODCharge    decimal.Decimal
	MinWeight    float64
	ETADays      int
	ETADate      time.Time
	Zone         RoutingZone
}

type courierQuoteJSON struct {
	CourierCompanyID      int     `json:"courier_company_id"`
	CourierName           string  `json:"courier_name"`
	Rate                  float64 `json:"rate"`
	COD                   int     `json:"cod"`
	CODCharges            float64 `json:"cod_charges"`
	MinWeight             float64 `json:"min_weight"`
	EstimatedDeliveryDays int     `json:"estimated_delivery_days"`
	ETD                   string  `json:"etd"`
}

// MarshalJSON renders the quote in the aggregator's serviceability format
func (q CourierQuote) MarshalJSON() ([]byte, error) {
	cod := 0
	if q.CODAvailable {
		cod = 1
	}
	return json.Marshal(courierQuoteJSON{
		CourierCompanyID:      q.CourierID,
		CourierName:           q.Name,
		Rate:                  q.Rate.InexactFloat64(),
		COD:                   cod,
		CODCharges:            q.CODCharge.InexactFloat64(),
		MinWeight:             q.MinWeight,
		EstimatedDeliveryDays: q.ETADays,
		ETD:                   q.ETADate.Format(ETDLayout),
	})
}

// RateEngine ranks courier quotes for a shipment
type RateEngine struct {
	profiles []CourierProfile
	clock    clockwork.Clock
}

// RateEngineOption configures a RateEngine
type RateEngineOption func(*RateEngine)

// WithClock sets the clock used to compute ETA dates
func WithClock(clock clockwork.Clock) RateEngineOption {
	return func(e *RateEngine) {
		e.clock = clock
	}
}

// NewRateEngine creates a rate engine over the given courier profiles.
// Profile order is the tie-break order for equal rates.
func NewRateEngine(profiles []CourierProfile, opts ...RateEngineOption) *RateEngine {
	e := &RateEngine{
		profiles: make([]CourierProfile, len(profiles)),
		clock:    clockwork.NewRealClock(),
	}
	copy(e.profiles, profiles)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefaultRateEngine creates a rate engine over DefaultCourierProfiles
func NewDefaultRateEngine(opts ...RateEngineOption) *RateEngine {
	return NewRateEngine(DefaultCourierProfiles(), opts...)
}

// Profiles returns a copy of the engine's courier table
func (e *RateEngine) Profiles() []CourierProfile {
	out := make([]CourierProfile, len(e.profiles))
	copy(out, e.profiles)
	return out
}

// Profile looks up a courier profile by id
func (e *RateEngine) Profile(id int) (CourierProfile, bool) {
	for _, p := range e.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return CourierProfile{}, false
}

// Quote returns quotes sorted ascending by rate, restricted to COD-capable
// couriers when cod is true. Equal rates keep profile order.
func (e *RateEngine) Quote(originPincode, destPincode string, weightKg float64, cod bool) ([]CourierQuote, error) {
	if err := ValidatePincode(originPincode); err != nil {
		return nil, err
	}
	if err := ValidatePincode(destPincode); err != nil {
		return nil, err
	}
	if weightKg < 0 || !isFinite(weightKg) {
		return nil, ErrInvalidWeight
	}

	zone := ClassifyRoute(originPincode, destPincode)
	extraKg := decimal.Max(decimal.Zero, decimal.NewFromFloat(weightKg).Sub(halfKg))
	now := e.clock.Now()

	quotes := make([]CourierQuote, 0, len(e.profiles))
	for _, p := range e.profiles {
		if cod && !p.SupportsCOD {
			continue
		}
		rate := p.BaseRate.Mul(zone.Multiplier()).Add(extraKg.Mul(p.PerExtraKg)).Round(0)
		etaDays := p.DaysFor(zone)
		quotes = append(quotes, CourierQuote{
			CourierID:    p.ID,
			Name:         p.Name,
			Rate:         rate,
			CODAvailable: p.SupportsCOD,
			CODCharge:    p.CODChargeFor(),
			MinWeight:    p.MinWeight,
			ETADays:      etaDays,
			ETADate:      now.AddDate(0, 0, etaDays),
			Zone:         zone,
		})
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Rate.LessThan(quotes[j].Rate)
	})
	return quotes, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
