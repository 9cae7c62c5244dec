package calculation

import (
	"math"
	"slices"
	"time"

	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/pkg/dateutil"
)

// Assumptions is the float64 view of a defaulted participant state that the
// projector and the present-value routines work on.
type Assumptions struct {
	Age             int
	EntryAge        int
	RetirementAge   int
	HorizonMonths   int
	RetirementMonth int

	Salary              float64 // monthly
	SalaryGrowth        float64 // annual
	ContributionRate    float64
	ContributionLoading float64
	AdministrativeFee   float64
	BenefitLoading      float64
	InitialBalance      float64

	DiscountRate    float64 // annual
	MonthlyDiscount float64
	Timing          domain.PaymentTiming

	SalaryMonthsPerYear  int
	BenefitMonthsPerYear int
	ExtraSalaryMonths    []int
	ExtraBenefitMonths   []int
	StartMonth           int

	DisabilityBenefits bool
}

// NewAssumptions converts a defaulted, validated state.
func NewAssumptions(p domain.ParticipantPlanState) Assumptions {
	return Assumptions{
		Age:                  p.Age,
		EntryAge:             p.EntryAge,
		RetirementAge:        p.RetirementAge,
		HorizonMonths:        p.HorizonMonths(),
		RetirementMonth:      p.RetirementMonth(),
		Salary:               p.Salary.InexactFloat64(),
		SalaryGrowth:         p.SalaryGrowthRate.InexactFloat64(),
		ContributionRate:     p.ContributionRate.InexactFloat64(),
		ContributionLoading:  p.ContributionLoading.InexactFloat64(),
		AdministrativeFee:    p.AdministrativeFee.InexactFloat64(),
		BenefitLoading:       p.BenefitLoading.InexactFloat64(),
		InitialBalance:       p.InitialBalance.InexactFloat64(),
		DiscountRate:         p.DiscountRate.InexactFloat64(),
		MonthlyDiscount:      MonthlyRate(p.DiscountRate.InexactFloat64()),
		Timing:               p.PaymentTiming,
		SalaryMonthsPerYear:  p.SalaryMonthsPerYear,
		BenefitMonthsPerYear: p.BenefitMonthsPerYear,
		ExtraSalaryMonths:    slices.Clone(p.ExtraSalaryMonths),
		ExtraBenefitMonths:   slices.Clone(p.ExtraBenefitMonths),
		StartMonth:           p.StartMonth,
		DisabilityBenefits:   p.DisabilityEnabled && p.DisabilityEntryMode == domain.DisabilityBenefit,
	}
}

// retirementMonth clamps the retirement month into the horizon so that a
// participant at or past retirement gets an empty contributory phase.
func (a Assumptions) retirementMonth() int {
	return max(0, min(a.RetirementMonth, a.HorizonMonths))
}

// PaymentUnits returns the number of payments due in each projection month.
// Every month pays one unit; the perYear-12 extra units are split equally
// between the designated calendar months.
func PaymentUnits(months, startMonth, perYear int, extraMonths []int) []float64 {
	units := make([]float64, months)
	extra := 0.0
	if perYear > 12 && len(extraMonths) > 0 {
		extra = float64(perYear-12) / float64(len(extraMonths))
	}
	for m := range units {
		units[m] = 1
		if extra == 0 {
			continue
		}
		cal := int(dateutil.CalendarMonth(time.Month(startMonth), m))
		if slices.Contains(extraMonths, cal) {
			units[m] += extra
		}
	}
	return units
}

// SalaryUnits is PaymentUnits for salaries.
func (a Assumptions) SalaryUnits() []float64 {
	return PaymentUnits(a.HorizonMonths, a.StartMonth, a.SalaryMonthsPerYear, a.ExtraSalaryMonths)
}

// BenefitUnits is PaymentUnits for benefits.
func (a Assumptions) BenefitUnits() []float64 {
	return PaymentUnits(a.HorizonMonths, a.StartMonth, a.BenefitMonthsPerYear, a.ExtraBenefitMonths)
}

// SalaryAt is the base monthly salary in month m: S0*(1+g)^(m/12).
func (a Assumptions) SalaryAt(m int) float64 {
	return a.Salary * math.Pow(1+a.SalaryGrowth, float64(m)/12)
}

// FinalSalary is the projected base monthly salary at retirement.
func (a Assumptions) FinalSalary() float64 {
	return a.SalaryAt(a.RetirementMonth)
}

// ProjectContributions fills the contributory phase of a projection: ages,
// salaries (including extra payments), gross and net contributions. Benefit
// and balance columns are allocated but left at zero.
func ProjectContributions(a Assumptions) domain.CashFlowProjection {
	n := a.HorizonMonths
	ret := a.retirementMonth()
	p := domain.CashFlowProjection{
		Age:             make([]float64, n),
		Salary:          make([]float64, n),
		Contribution:    make([]float64, n),
		Benefit:         make([]float64, n),
		Balance:         make([]float64, n),
		RetirementMonth: ret,
	}
	units := a.SalaryUnits()
	for m := 0; m < n; m++ {
		p.Age[m] = float64(a.Age) + float64(m)/12
		if m >= ret {
			continue
		}
		p.Salary[m] = a.SalaryAt(m) * units[m]
		p.Contribution[m] = p.Salary[m] * a.ContributionRate
	}
	p.NetContribution = NetOfFees(p.Contribution, a.ContributionLoading, a.AdministrativeFee)
	return p
}

// BDBenefitLevel resolves the base monthly benefit of a BD plan.
func BDBenefitLevel(a Assumptions, plan domain.BDPlan) float64 {
	if plan.TargetMode == domain.TargetModeReplacementRate {
		return plan.TargetReplacementRate * a.FinalSalary()
	}
	return plan.TargetBenefit
}

// BDBenefitStream returns the benefit paid per month per unit of base benefit:
// payment units indexed yearly from retirement, (1+idx)^floor((m-ret)/12),
// zero before retirement. When disability benefits are modelled, the second
// stream is paid to disabled lives from month 0 and indexed the same way.
func BDBenefitStream(a Assumptions, indexation float64) (retired, disabled []float64) {
	n := a.HorizonMonths
	ret := a.retirementMonth()
	units := a.BenefitUnits()
	retired = make([]float64, n)
	if a.DisabilityBenefits {
		disabled = make([]float64, n)
	}
	for m := 0; m < n; m++ {
		index := 1.0
		if m >= ret {
			index = math.Pow(1+indexation, float64((m-ret)/12))
			retired[m] = units[m] * index
		}
		if disabled != nil {
			disabled[m] = units[m] * index
		}
	}
	return retired, disabled
}

// ProjectBD builds the full BD projection for a base benefit level.
func ProjectBD(a Assumptions, plan domain.BDPlan, benefit float64) domain.CashFlowProjection {
	p := ProjectContributions(a)
	retired, disabled := BDBenefitStream(a, plan.IndexationRate)
	for m := range retired {
		p.Benefit[m] = benefit * retired[m]
	}
	if disabled != nil {
		p.DisabilityBenefit = make([]float64, len(disabled))
		for m := range disabled {
			p.DisabilityBenefit[m] = benefit * disabled[m]
		}
	}
	return p
}
