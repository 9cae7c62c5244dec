package calculation

import (
	"math"

	"github.com/rpgo/actuarial-engine/internal/domain"
)

// ToEnd as an end month runs a present value to the end of its inputs.
const ToEnd = -1

// MonthlyRate converts an effective annual rate to its monthly equivalent.
func MonthlyRate(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12) - 1
}

// DiscountFactor is 1/(1+r)^(m+adj) for month m under the timing convention.
func DiscountFactor(r float64, m int, timing domain.PaymentTiming) float64 {
	return math.Pow(1+r, -(float64(m) + timing.Adjustment()))
}

// PresentValue discounts survival-weighted cash flows over months [start, end):
//
//	pv = sum cashFlows[m] * survival[m] / (1+r)^(m+adj)
//
// where adj is 0 for ADVANCE and 1 for ARREARS. The range is clipped to the
// shorter input; an empty range or all-zero input yields 0.
func PresentValue(cashFlows, survival []float64, r float64, timing domain.PaymentTiming, start, end int) float64 {
	n := min(len(cashFlows), len(survival))
	if end < 0 || end > n {
		end = n
	}
	if start < 0 {
		start = 0
	}
	pv := 0.0
	for m := start; m < end; m++ {
		if cashFlows[m] == 0 || survival[m] == 0 {
			continue
		}
		pv += cashFlows[m] * survival[m] * DiscountFactor(r, m, timing)
	}
	return pv
}

// NetOfFees applies the proportional loading and the fixed administrative fee
// to every contribution before it is discounted:
//
//	net[m] = max(0, c[m]*(1-loading) - fee)
//
// Months without a contribution carry no fee.
func NetOfFees(contributions []float64, loading, fee float64) []float64 {
	net := make([]float64, len(contributions))
	for m, c := range contributions {
		if c <= 0 {
			continue
		}
		net[m] = math.Max(0, c*(1-loading)-fee)
	}
	return net
}

// AnnuityFactor is the present value of a unit benefit stream. units[m] is
// the number of benefit units paid in month m (1, or more in months carrying
// extra payments); loading is the per-payment benefit loading.
func AnnuityFactor(units, survival []float64, r, loading float64, timing domain.PaymentTiming, start, end int) float64 {
	return (1 + loading) * PresentValue(units, survival, r, timing, start, end)
}

// ConditionalAnnuityFactor values a unit benefit stream at month from, for a
// life known to be active at from. It is zero when survival at from is zero.
func ConditionalAnnuityFactor(units, survival []float64, r, loading float64, timing domain.PaymentTiming, from int) float64 {
	if from < 0 || from >= len(survival) || survival[from] <= 0 {
		return 0
	}
	s0 := survival[from]
	n := min(len(units), len(survival))
	pv := 0.0
	for m := from; m < n; m++ {
		if units[m] == 0 || survival[m] == 0 {
			continue
		}
		pv += units[m] * survival[m] / s0 * DiscountFactor(r, m-from, timing)
	}
	return (1 + loading) * pv
}

// CertainAnnuityFactor values n monthly unit payments without mortality,
// starting at month from, at monthly rate r.
func CertainAnnuityFactor(units []float64, r, loading float64, timing domain.PaymentTiming, from, n int) float64 {
	end := min(from+n, len(units))
	pv := 0.0
	for m := from; m < end; m++ {
		pv += units[m] * DiscountFactor(r, m-from, timing)
	}
	return (1 + loading) * pv
}

// SustainableBenefit is the level benefit that exhausts resources over the
// annuity. A non-positive annuity factor is degenerate and yields 0, false.
func SustainableBenefit(resources, annuityFactor float64) (float64, bool) {
	if annuityFactor <= 0 || math.IsNaN(annuityFactor) || math.IsInf(annuityFactor, 0) {
		return 0, false
	}
	return resources / annuityFactor, true
}
