package calculation

import (
	"fmt"
	"math"

	"github.com/rpgo/actuarial-engine/internal/domain"
)

// ConversionResult summarizes how a CD balance was turned into benefits.
type ConversionResult struct {
	BalanceAtRetirement float64
	// Benefit is the monthly benefit level set at retirement.
	Benefit float64
	// AnnuityFactor is the factor the balance was divided by at retirement;
	// zero for the drawdown rules.
	AnnuityFactor float64
	// Degenerate is set when no benefit could be derived from the balance.
	Degenerate bool
}

// ProjectCD builds the CD projection: the balance accumulates net
// contributions at the accrual rate until retirement, then the plan's
// conversion rule generates the benefit stream. survival is the active curve
// and is only read by the actuarial rules.
func ProjectCD(a Assumptions, plan domain.CDPlan, survival []float64) (domain.CashFlowProjection, ConversionResult, error) {
	p := ProjectContributions(a)
	accrual := MonthlyRate(plan.AccrualRate)
	bal := accumulate(&p, a, accrual)
	res := ConversionResult{BalanceAtRetirement: bal}

	c := &cdRun{a: a, p: &p, accrual: accrual, units: a.BenefitUnits(), ret: a.retirementMonth()}
	if c.ret >= a.HorizonMonths {
		res.Degenerate = true
		return p, res, nil
	}

	switch conv := plan.Conversion.(type) {
	case domain.ActuarialConversion:
		c.actuarial(bal, survival, &res)
	case domain.FixedRateConversion:
		res.Benefit = bal * conv.AnnualRate / float64(a.BenefitMonthsPerYear)
		c.drawdown(bal, func(m int, _ float64, level float64) float64 { return level }, res.Benefit)
	case domain.PercentageConversion:
		rate := conv.AnnualRate / float64(a.BenefitMonthsPerYear)
		res.Benefit = bal * rate
		c.drawdown(bal, func(m int, balance float64, level float64) float64 {
			if (m-c.ret)%12 == 0 {
				return balance * rate
			}
			return level
		}, res.Benefit)
	case domain.CertainPeriodConversion:
		c.certainPeriod(bal, conv.Years*12, &res)
	case domain.ActuarialFloorConversion:
		res.Benefit = c.floorLevel(bal, c.ret, conv.Floor, survival)
		res.AnnuityFactor = ConditionalAnnuityFactor(c.units, survival, a.MonthlyDiscount, a.BenefitLoading, a.Timing, c.ret)
		c.drawdown(bal, func(m int, balance float64, level float64) float64 {
			if (m-c.ret)%12 == 0 {
				return c.floorLevel(balance, m, conv.Floor, survival)
			}
			return level
		}, res.Benefit)
	default:
		return p, res, fmt.Errorf("unsupported conversion %T", plan.Conversion)
	}
	if res.Benefit <= 0 && bal > 0 {
		res.Degenerate = true
	}
	return p, res, nil
}

// accumulate rolls the balance forward over the contributory phase and
// returns the balance at retirement.
func accumulate(p *domain.CashFlowProjection, a Assumptions, accrual float64) float64 {
	bal := a.InitialBalance
	for m := 0; m < p.RetirementMonth; m++ {
		c := p.NetContribution[m]
		if a.Timing == domain.TimingArrears {
			bal = bal*(1+accrual) + c
		} else {
			bal = (bal + c) * (1 + accrual)
		}
		p.Balance[m] = bal
	}
	return bal
}

type cdRun struct {
	a       Assumptions
	p       *domain.CashFlowProjection
	accrual float64
	units   []float64
	ret     int
}

// withdraw takes one month's payment from the balance, capped at what is
// available, and accrues the month's return.
func (c *cdRun) withdraw(bal, due float64) (float64, float64) {
	if c.a.Timing == domain.TimingArrears {
		bal *= 1 + c.accrual
	}
	paid := math.Min(due, math.Max(bal, 0))
	bal -= paid
	if c.a.Timing != domain.TimingArrears {
		bal *= 1 + c.accrual
	}
	return bal, paid
}

// drawdown pays level(m, balance, previous level) per unit each month until
// the balance runs out.
func (c *cdRun) drawdown(bal float64, level func(m int, balance, current float64) float64, initial float64) {
	load := 1 + c.a.BenefitLoading
	current := initial
	for m := c.ret; m < c.a.HorizonMonths; m++ {
		current = level(m, bal, current)
		var paid float64
		bal, paid = c.withdraw(bal, current*c.units[m]*load)
		c.p.Benefit[m] = paid / load
		c.p.Balance[m] = bal
	}
}

// actuarial converts the balance into a lifetime annuity valued at the
// discount rate. The balance column after retirement holds the prospective
// reserve at the end of each month.
func (c *cdRun) actuarial(bal float64, survival []float64, res *ConversionResult) {
	a := c.a
	af := ConditionalAnnuityFactor(c.units, survival, a.MonthlyDiscount, a.BenefitLoading, a.Timing, c.ret)
	res.AnnuityFactor = af
	benefit, ok := SustainableBenefit(bal, af)
	if !ok {
		res.Degenerate = true
		return
	}
	res.Benefit = benefit
	for m := c.ret; m < a.HorizonMonths; m++ {
		c.p.Benefit[m] = benefit * c.units[m]
	}

	v := 1 / (1 + a.MonthlyDiscount)
	vAdj := math.Pow(v, a.Timing.Adjustment())
	load := 1 + a.BenefitLoading
	next := 0.0
	for m := a.HorizonMonths - 1; m >= c.ret; m-- {
		c.p.Balance[m] = next
		p := 0.0
		if m+1 < len(survival) && survival[m] > 0 {
			p = survival[m+1] / survival[m]
		}
		next = c.p.Benefit[m]*load*vAdj + p*v*next
	}
}

// certainPeriod pays a level benefit for months that exhausts the balance
// under the accrual rate with no mortality.
func (c *cdRun) certainPeriod(bal float64, months int, res *ConversionResult) {
	a := c.a
	af := CertainAnnuityFactor(c.units, c.accrual, a.BenefitLoading, a.Timing, c.ret, months)
	res.AnnuityFactor = af
	benefit, ok := SustainableBenefit(bal, af)
	if !ok {
		res.Degenerate = true
		return
	}
	res.Benefit = benefit
	end := c.ret + months
	c.drawdown(bal, func(m int, _ float64, level float64) float64 {
		if m >= end {
			return 0
		}
		return level
	}, benefit)
}

// floorLevel is max(floor, balance / annuity factor at m).
func (c *cdRun) floorLevel(balance float64, m int, floor float64, survival []float64) float64 {
	af := ConditionalAnnuityFactor(c.units, survival, c.a.MonthlyDiscount, c.a.BenefitLoading, c.a.Timing, m)
	level, ok := SustainableBenefit(balance, af)
	if !ok {
		return floor
	}
	return math.Max(floor, level)
}
