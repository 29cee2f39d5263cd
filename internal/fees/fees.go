package fees

import "github.com/shopspring/decimal"

const (
	DefaultFeePercentage = 0.005
	DefaultMinFeeRp      = 500
	DefaultMaxFeeRp      = 2500
	DefaultTokenValueRp  = 1000
)

// Schedule is the platform fee configuration applied to a hub order total.
type Schedule struct {
	FeePercentage float64 `json:"feePercentage"`
	MinFeeRp      float64 `json:"minFeeRp"`
	MaxFeeRp      float64 `json:"maxFeeRp"`
	TokenValueRp  float64 `json:"tokenValueRp"`
}

// DefaultSchedule returns the schedule used when no platform settings are stored.
func DefaultSchedule() Schedule {
	return Schedule{
		FeePercentage: DefaultFeePercentage,
		MinFeeRp:      DefaultMinFeeRp,
		MaxFeeRp:      DefaultMaxFeeRp,
		TokenValueRp:  DefaultTokenValueRp,
	}
}

// WithDefaults returns DefaultSchedule for an unconfigured (zero) schedule.
// Otherwise a configured zero percentage or bound is kept; only negative
// amounts and a non-positive token value fall back to the default.
func (s Schedule) WithDefaults() Schedule {
	def := DefaultSchedule()
	if s == (Schedule{}) {
		return def
	}
	if s.FeePercentage < 0 {
		s.FeePercentage = def.FeePercentage
	}
	if s.MinFeeRp < 0 {
		s.MinFeeRp = def.MinFeeRp
	}
	if s.MaxFeeRp < 0 {
		s.MaxFeeRp = def.MaxFeeRp
	}
	if s.TokenValueRp <= 0 {
		s.TokenValueRp = def.TokenValueRp
	}
	return s
}

// ComputeFee converts an order total into the platform fee in tokens:
// min(max(total*pct, min), max) / tokenValue. Checkout previews and settlement
// both call this function.
func ComputeFee(total float64, schedule Schedule) float64 {
	s := schedule.WithDefaults()

	fee := decimal.NewFromFloat(total).Mul(decimal.NewFromFloat(s.FeePercentage))
	fee = decimal.Max(fee, decimal.NewFromFloat(s.MinFeeRp))
	fee = decimal.Min(fee, decimal.NewFromFloat(s.MaxFeeRp))

	tokens, _ := fee.Div(decimal.NewFromFloat(s.TokenValueRp)).Float64()
	return tokens
}
