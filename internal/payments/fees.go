package payments

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-donation-pages/internal/domain"
)

// Default processor fee terms.
const (
	DefaultNonprofitRate = 0.022
	DefaultForProfitRate = 0.029
	DefaultFlatFee       = 0.30
)

// FeeSchedule holds the processor fee terms. RecurringSurcharge is added to
// the percentage rate for recurring intervals.
type FeeSchedule struct {
	NonprofitRate      float64
	ForProfitRate      float64
	FlatFee            float64
	RecurringSurcharge float64
}

// DefaultFeeSchedule returns the standard fee terms with no recurring
// surcharge.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		NonprofitRate: DefaultNonprofitRate,
		ForProfitRate: DefaultForProfitRate,
		FlatFee:       DefaultFlatFee,
	}
}

// Rate returns the percentage rate applied to a contribution.
func (s FeeSchedule) Rate(interval domain.Interval, nonprofit bool) float64 {
	rate := s.ForProfitRate
	if nonprofit {
		rate = s.NonprofitRate
	}
	if interval.Recurring() {
		rate += s.RecurringSurcharge
	}
	return rate
}

// Calculate returns the fee a contributor covers so that the organization
// nets amount after the processor's cut. Intervals are matched case
// insensitively and an unrecognized interval is charged as one-time. The
// second result is false when no fee can be computed.
func (s FeeSchedule) Calculate(amount float64, interval domain.Interval, nonprofit bool) (float64, bool) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, false
	}
	if parsed, err := domain.ParseInterval(string(interval)); err == nil {
		interval = parsed
	}
	rate := s.Rate(interval, nonprofit)
	if rate < 0 || rate >= 1 {
		return 0, false
	}
	total := (amount + s.FlatFee) / (1 - rate)
	return Round2(Round2(total) - amount), true
}

// CalculateFee applies the default schedule.
func CalculateFee(amount float64, interval domain.Interval, nonprofit bool) (float64, bool) {
	return DefaultFeeSchedule().Calculate(amount, interval, nonprofit)
}

// CalculateFeeFromString parses raw as a decimal amount before applying the
// default schedule. Non-numeric input yields false.
func CalculateFeeFromString(raw string, interval domain.Interval, nonprofit bool) (float64, bool) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return CalculateFee(amount, interval, nonprofit)
}

// Round2 rounds to two decimals, half away from zero. Values whose decimal
// form ends in exactly 5 at the thousandths digit round up even when their
// binary form falls just below the midpoint, so 1.005 becomes 1.01.
func Round2(value float64) float64 {
	if value < 0 {
		return -Round2(-value)
	}
	scaled := value * 100
	floor := math.Floor(scaled)
	if math.Abs(scaled-(floor+0.5)) < 1e-9 {
		return (floor + 1) / 100
	}
	return math.Round(scaled) / 100
}
