package calculation

import (
	"math"

	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/internal/tables"
)

// Decrement names used by the engine.
const (
	DecrementMortality  = "mortality"
	DecrementDisability = "disability"
)

// Decrement is one independent cause of exit from the active state.
type Decrement struct {
	Name  string
	Table *tables.DecrementTable
	// UntilMonth stops the cause at this month index (exclusive). Zero or
	// negative keeps it active over the whole horizon.
	UntilMonth int
}

func (d Decrement) activeAt(m int) bool {
	return d.UntilMonth <= 0 || m < d.UntilMonth
}

// MonthlyDecrement converts an annual decrement probability into the monthly
// probability with the same one-year survival: 1 - (1-q)^(1/12).
func MonthlyDecrement(annual float64) float64 {
	if annual >= 1 {
		return 1
	}
	if annual <= 0 {
		return 0
	}
	return 1 - math.Pow(1-annual, 1.0/12)
}

// Composer turns annual decrement tables into monthly survival curves.
type Composer struct {
	// Interpolate looks rates up at fractional ages instead of floor(age).
	Interpolate bool
}

func (c Composer) annualRate(t *tables.DecrementTable, initialAge, m int) float64 {
	if c.Interpolate {
		return t.Interpolate(float64(initialAge) + float64(m)/12)
	}
	return t.Rate(initialAge + m/12)
}

// Compose builds the active-state survival curve over months, starting at
// initialAge, under independent competing decrements. Active[m] is the
// product of (1 - monthly rate) over every cause active in months before m.
// Exits[name][m] is the cumulative probability of having left through that
// cause by the start of month m; each month's exits are split between causes
// in proportion to their monthly rates, so the exits always sum to
// 1 - Active[m].
//
// With a single decrement the curve is exactly the pure single-table curve.
func (c Composer) Compose(initialAge, months int, decrements []Decrement) domain.SurvivalCurve {
	curve := domain.SurvivalCurve{
		InitialAge: initialAge,
		Active:     make([]float64, months),
		Exits:      make(map[string][]float64, len(decrements)),
	}
	exits := make([][]float64, len(decrements))
	for i, d := range decrements {
		exits[i] = make([]float64, months)
		curve.Exits[d.Name] = exits[i]
	}
	if months == 0 {
		return curve
	}

	rates := make([]float64, len(decrements))
	s := 1.0
	curve.Active[0] = s
	for m := 0; m < months-1; m++ {
		stay := 1.0
		total := 0.0
		for i, d := range decrements {
			rates[i] = 0
			if d.activeAt(m) {
				rates[i] = MonthlyDecrement(c.annualRate(d.Table, initialAge, m))
			}
			stay *= 1 - rates[i]
			total += rates[i]
		}
		leaving := s * (1 - stay)
		for i := range decrements {
			share := 0.0
			if total > 0 {
				share = leaving * rates[i] / total
			}
			exits[i][m+1] = exits[i][m] + share
		}
		s *= stay
		curve.Active[m+1] = s
	}
	return curve
}

// DisabledLives returns, per month, the probability of being alive and
// disabled, given the curve's cumulative disability exits. Lives entering
// disability during month m are counted from month m+1 and are then subject
// to mortality only.
func (c Composer) DisabledLives(curve domain.SurvivalCurve, cause string, mortality *tables.DecrementTable) []float64 {
	entered := curve.Exits[cause]
	months := curve.Months()
	disabled := make([]float64, months)
	if entered == nil {
		return disabled
	}
	for m := 0; m < months-1; m++ {
		q := MonthlyDecrement(c.annualRate(mortality, curve.InitialAge, m))
		disabled[m+1] = disabled[m]*(1-q) + (entered[m+1] - entered[m])
	}
	return disabled
}
