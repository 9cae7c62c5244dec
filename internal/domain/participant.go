package domain

import (
	"strings"
	"time"

	"github.com/rpgo/actuarial-engine/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// MaxAge is the oldest age any projection may reach.
const MaxAge = 120

// Gender selects the sex-specific variant of a decrement table.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderUnisex Gender = "UNISEX"
)

// PlanType is the top-level plan design.
type PlanType string

const (
	PlanTypeBD PlanType = "BD"
	PlanTypeCD PlanType = "CD"
)

// PaymentTiming decides whether a periodic payment happens at the start
// (ADVANCE) or the end (ARREARS) of its month.
type PaymentTiming string

const (
	TimingAdvance PaymentTiming = "ADVANCE"
	TimingArrears PaymentTiming = "ARREARS"
)

// Adjustment returns the extra discount exponent applied to every payment.
func (t PaymentTiming) Adjustment() float64 {
	if t == TimingArrears {
		return 1.0
	}
	return 0.0
}

// BenefitTargetMode selects how the BD benefit is specified.
type BenefitTargetMode string

const (
	TargetModeValue           BenefitTargetMode = "VALUE"
	TargetModeReplacementRate BenefitTargetMode = "REPLACEMENT_RATE"
)

// CalculationMethod is the cost method (BD) or direct accumulation (CD).
type CalculationMethod string

const (
	MethodPUC            CalculationMethod = "PUC"
	MethodEAN            CalculationMethod = "EAN"
	MethodCDAccumulation CalculationMethod = "CD_ACCUMULATION"
)

// ConversionMode is how a CD balance turns into benefits after retirement.
type ConversionMode string

const (
	ConversionActuarial          ConversionMode = "ACTUARIAL"
	ConversionFixedRate          ConversionMode = "FIXED_RATE"
	ConversionPercentage         ConversionMode = "PERCENTAGE"
	ConversionCertainPeriod      ConversionMode = "CERTAIN_PERIOD"
	ConversionActuarialWithFloor ConversionMode = "ACTUARIAL_EQUIVALENT_WITH_FLOOR"
)

// DisabilityEntryMode decides what happens to a participant who becomes disabled.
type DisabilityEntryMode string

const (
	// DisabilityExit treats disability as a pure exit from the active state.
	DisabilityExit DisabilityEntryMode = "EXIT"
	// DisabilityBenefit pays the plan benefit to disabled lives from entry.
	DisabilityBenefit DisabilityEntryMode = "BENEFIT"
)

// SolveTarget selects an optional root-finding pass after the main calculation.
type SolveTarget string

const (
	SolveNone             SolveTarget = "NONE"
	SolveContributionRate SolveTarget = "CONTRIBUTION_RATE"
)

// ParticipantPlanState is the complete, immutable input of one calculation.
// Rates are decimal fractions (0.05 = 5%) except MortalityAggravationPct.
type ParticipantPlanState struct {
	Age           int             `yaml:"age" json:"age"`
	EntryAge      int             `yaml:"entry_age,omitempty" json:"entry_age,omitempty"`
	BirthDate     *time.Time      `yaml:"birth_date,omitempty" json:"birth_date,omitempty"`
	ValuationDate *time.Time      `yaml:"valuation_date,omitempty" json:"valuation_date,omitempty"`
	Gender        Gender          `yaml:"gender" json:"gender"`
	Salary        decimal.Decimal `yaml:"salary" json:"salary"` // monthly
	PlanType      PlanType        `yaml:"plan_type" json:"plan_type"`
	RetirementAge int             `yaml:"retirement_age" json:"retirement_age"`

	ContributionRate      decimal.Decimal   `yaml:"contribution_rate" json:"contribution_rate"`
	TargetMode            BenefitTargetMode `yaml:"target_mode,omitempty" json:"target_mode,omitempty"`
	TargetBenefit         decimal.Decimal   `yaml:"target_benefit,omitempty" json:"target_benefit,omitempty"`
	TargetReplacementRate decimal.Decimal   `yaml:"target_replacement_rate,omitempty" json:"target_replacement_rate,omitempty"`
	InitialBalance        decimal.Decimal   `yaml:"initial_balance,omitempty" json:"initial_balance,omitempty"`

	MortalityTable          string          `yaml:"mortality_table" json:"mortality_table"`
	MortalityAggravationPct decimal.Decimal `yaml:"mortality_aggravation_pct,omitempty" json:"mortality_aggravation_pct,omitempty"`

	DiscountRate          decimal.Decimal `yaml:"discount_rate" json:"discount_rate"`
	SalaryGrowthRate      decimal.Decimal `yaml:"salary_growth_rate,omitempty" json:"salary_growth_rate,omitempty"`
	BenefitIndexationRate decimal.Decimal `yaml:"benefit_indexation_rate,omitempty" json:"benefit_indexation_rate,omitempty"`
	AccrualRate           decimal.Decimal `yaml:"accrual_rate,omitempty" json:"accrual_rate,omitempty"`

	PaymentTiming        PaymentTiming `yaml:"payment_timing,omitempty" json:"payment_timing,omitempty"`
	SalaryMonthsPerYear  int           `yaml:"salary_months_per_year,omitempty" json:"salary_months_per_year,omitempty"`
	BenefitMonthsPerYear int           `yaml:"benefit_months_per_year,omitempty" json:"benefit_months_per_year,omitempty"`
	ExtraSalaryMonths    []int         `yaml:"extra_salary_months,omitempty" json:"extra_salary_months,omitempty"`
	ExtraBenefitMonths   []int         `yaml:"extra_benefit_months,omitempty" json:"extra_benefit_months,omitempty"`
	StartMonth           int           `yaml:"start_month,omitempty" json:"start_month,omitempty"`

	ContributionLoading decimal.Decimal `yaml:"contribution_loading,omitempty" json:"contribution_loading,omitempty"`
	AdministrativeFee   decimal.Decimal `yaml:"administrative_fee,omitempty" json:"administrative_fee,omitempty"` // currency per contribution period
	BenefitLoading      decimal.Decimal `yaml:"benefit_loading,omitempty" json:"benefit_loading,omitempty"`

	HorizonYears int               `yaml:"horizon_years,omitempty" json:"horizon_years,omitempty"`
	Method       CalculationMethod `yaml:"method,omitempty" json:"method,omitempty"`

	ConversionMode     ConversionMode  `yaml:"conversion_mode,omitempty" json:"conversion_mode,omitempty"`
	WithdrawalRate     decimal.Decimal `yaml:"withdrawal_rate,omitempty" json:"withdrawal_rate,omitempty"`
	CertainPeriodYears int             `yaml:"certain_period_years,omitempty" json:"certain_period_years,omitempty"`
	BenefitFloor       decimal.Decimal `yaml:"benefit_floor,omitempty" json:"benefit_floor,omitempty"`

	DisabilityEnabled   bool                `yaml:"disability_enabled,omitempty" json:"disability_enabled,omitempty"`
	DisabilityTable     string              `yaml:"disability_table,omitempty" json:"disability_table,omitempty"`
	DisabilityEntryMode DisabilityEntryMode `yaml:"disability_entry_mode,omitempty" json:"disability_entry_mode,omitempty"`

	SolveFor SolveTarget `yaml:"solve_for,omitempty" json:"solve_for,omitempty"`
}

// WithDefaults returns a copy with every optional field resolved. Validate
// and the engine both operate on the resolved copy.
func (p ParticipantPlanState) WithDefaults() ParticipantPlanState {
	p.Gender = Gender(strings.ToUpper(string(p.Gender)))
	p.PlanType = PlanType(strings.ToUpper(string(p.PlanType)))
	p.PaymentTiming = PaymentTiming(strings.ToUpper(string(p.PaymentTiming)))
	p.TargetMode = BenefitTargetMode(strings.ToUpper(string(p.TargetMode)))
	p.Method = CalculationMethod(strings.ToUpper(string(p.Method)))
	p.ConversionMode = ConversionMode(strings.ToUpper(string(p.ConversionMode)))
	p.DisabilityEntryMode = DisabilityEntryMode(strings.ToUpper(string(p.DisabilityEntryMode)))
	p.SolveFor = SolveTarget(strings.ToUpper(string(p.SolveFor)))
	p.MortalityTable = strings.TrimSpace(p.MortalityTable)
	p.DisabilityTable = strings.TrimSpace(p.DisabilityTable)
	if p.BirthDate != nil && p.ValuationDate != nil && p.Age == 0 {
		p.Age = dateutil.Age(*p.BirthDate, *p.ValuationDate)
	}
	if p.ValuationDate != nil && p.StartMonth == 0 {
		p.StartMonth = int(p.ValuationDate.Month())
	}
	if p.StartMonth == 0 {
		p.StartMonth = int(time.January)
	}
	if p.EntryAge == 0 {
		p.EntryAge = p.Age
	}
	if p.Gender == "" {
		p.Gender = GenderUnisex
	}
	if p.PaymentTiming == "" {
		p.PaymentTiming = TimingAdvance
	}
	if p.SalaryMonthsPerYear == 0 {
		p.SalaryMonthsPerYear = 12
	}
	if p.BenefitMonthsPerYear == 0 {
		p.BenefitMonthsPerYear = 12
	}
	if len(p.ExtraSalaryMonths) == 0 {
		p.ExtraSalaryMonths = []int{int(time.December)}
	}
	if len(p.ExtraBenefitMonths) == 0 {
		p.ExtraBenefitMonths = []int{int(time.December)}
	}
	if p.HorizonYears == 0 {
		p.HorizonYears = MaxAge - p.Age
	}
	if p.TargetMode == "" {
		p.TargetMode = TargetModeValue
	}
	if p.Method == "" {
		if p.PlanType == PlanTypeCD {
			p.Method = MethodCDAccumulation
		} else {
			p.Method = MethodPUC
		}
	}
	if p.PlanType == PlanTypeCD && p.ConversionMode == "" {
		p.ConversionMode = ConversionActuarial
	}
	if p.DisabilityEnabled && p.DisabilityEntryMode == "" {
		p.DisabilityEntryMode = DisabilityExit
	}
	if p.SolveFor == "" {
		p.SolveFor = SolveNone
	}
	return p
}

// HorizonMonths is the projection length in months.
func (p ParticipantPlanState) HorizonMonths() int { return p.HorizonYears * 12 }

// RetirementMonth is the first projection month in which the participant is retired.
func (p ParticipantPlanState) RetirementMonth() int { return (p.RetirementAge - p.Age) * 12 }

// EngineSettings tunes the numeric behaviour of the engine and where tables come from.
type EngineSettings struct {
	MaxIterations     int     `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"`
	AbsoluteTolerance float64 `yaml:"absolute_tolerance,omitempty" json:"absolute_tolerance,omitempty"`
	RelativeTolerance float64 `yaml:"relative_tolerance,omitempty" json:"relative_tolerance,omitempty"` // fraction of monthly salary
	Interpolate       bool    `yaml:"interpolate,omitempty" json:"interpolate,omitempty"`
	TablesDir         string  `yaml:"tables_dir,omitempty" json:"tables_dir,omitempty"`
	TablesDB          string  `yaml:"tables_db,omitempty" json:"tables_db,omitempty"`
}

// DefaultEngineSettings returns the settings used when a configuration omits them.
func DefaultEngineSettings() EngineSettings {
	return EngineSettings{
		MaxIterations:     100,
		AbsoluteTolerance: 1.0,
		RelativeTolerance: 0.005,
	}
}

// Merge fills zero fields from the defaults.
func (s EngineSettings) Merge() EngineSettings {
	d := DefaultEngineSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.AbsoluteTolerance <= 0 {
		s.AbsoluteTolerance = d.AbsoluteTolerance
	}
	if s.RelativeTolerance <= 0 {
		s.RelativeTolerance = d.RelativeTolerance
	}
	return s
}

// Configuration is the top-level document read by the config loader.
type Configuration struct {
	Participant ParticipantPlanState `yaml:"participant" json:"participant"`
	Engine      EngineSettings       `yaml:"engine,omitempty" json:"engine,omitempty"`
}
