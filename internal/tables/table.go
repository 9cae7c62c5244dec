package tables

import (
	"fmt"
	"math"

	"github.com/rpgo/actuarial-engine/internal/domain"
)

// DecrementTable is an annual decrement table (mortality, disability, ...)
// indexed by integer age. Rates[i] is the probability q for age MinAge+i.
// Tables are read-only once built and are safe to share between goroutines.
type DecrementTable struct {
	Code   string
	Gender domain.Gender
	MinAge int
	Rates  []float64
}

// NewDecrementTable validates and copies rates into a new table.
func NewDecrementTable(code string, gender domain.Gender, minAge int, rates []float64) (*DecrementTable, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("table %s (%s): no rates", code, gender)
	}
	if minAge < 0 {
		return nil, fmt.Errorf("table %s (%s): negative minimum age %d", code, gender, minAge)
	}
	cp := make([]float64, len(rates))
	for i, q := range rates {
		if math.IsNaN(q) || q < 0 || q > 1 {
			return nil, fmt.Errorf("table %s (%s): rate at age %d out of [0,1]: %v", code, gender, minAge+i, q)
		}
		cp[i] = q
	}
	return &DecrementTable{Code: code, Gender: gender, MinAge: minAge, Rates: cp}, nil
}

// MaxAge is the last age with an explicit rate.
func (t *DecrementTable) MaxAge() int { return t.MinAge + len(t.Rates) - 1 }

// Rate returns q at an integer age. Ages below the table return 0; ages past
// the end return the last entry.
func (t *DecrementTable) Rate(age int) float64 {
	if age < t.MinAge {
		return 0
	}
	if age > t.MaxAge() {
		return t.Rates[len(t.Rates)-1]
	}
	return t.Rates[age-t.MinAge]
}

// Interpolate returns q at a fractional age by linear interpolation between
// the surrounding integer ages, clamped like Rate.
func (t *DecrementTable) Interpolate(age float64) float64 {
	if age < float64(t.MinAge) {
		return 0
	}
	if age >= float64(t.MaxAge()) {
		return t.Rates[len(t.Rates)-1]
	}
	lo := math.Floor(age)
	frac := age - lo
	a := t.Rate(int(lo))
	if frac == 0 {
		return a
	}
	b := t.Rate(int(lo) + 1)
	return a + (b-a)*frac
}

// Mean is the average rate across all ages in the table.
func (t *DecrementTable) Mean() float64 {
	var sum float64
	for _, q := range t.Rates {
		sum += q
	}
	return sum / float64(len(t.Rates))
}

// ApplyAggravation scales every rate by (1 - pct/100), clamped to [0,1].
// Positive pct smooths the table (lower rates, longer lives); negative pct
// aggravates it. A zero pct returns the table unchanged.
func ApplyAggravation(t *DecrementTable, pct float64) *DecrementTable {
	if pct == 0 {
		return t
	}
	factor := 1 - pct/100
	rates := make([]float64, len(t.Rates))
	for i, q := range t.Rates {
		rates[i] = math.Min(1, math.Max(0, q*factor))
	}
	return &DecrementTable{Code: t.Code, Gender: t.Gender, MinAge: t.MinAge, Rates: rates}
}

// blend averages two tables entry-wise over their common age range. Used to
// build a unisex table when a source only carries sex-specific ones.
func blend(code string, a, b *DecrementTable) (*DecrementTable, error) {
	minAge := a.MinAge
	if b.MinAge > minAge {
		minAge = b.MinAge
	}
	maxAge := a.MaxAge()
	if b.MaxAge() < maxAge {
		maxAge = b.MaxAge()
	}
	if maxAge < minAge {
		return nil, fmt.Errorf("table %s: male and female ranges do not overlap", code)
	}
	rates := make([]float64, maxAge-minAge+1)
	for i := range rates {
		age := minAge + i
		rates[i] = (a.Rate(age) + b.Rate(age)) / 2
	}
	return NewDecrementTable(code, domain.GenderUnisex, minAge, rates)
}
