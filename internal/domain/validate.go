package domain

import (
	"github.com/shopspring/decimal"
)

var (
	one        = decimal.NewFromInt(1)
	minusOne   = decimal.NewFromInt(-1)
	minusHalf  = decimal.NewFromFloat(-0.5)
	half       = decimal.NewFromFloat(0.5)
	two        = decimal.NewFromInt(2)
	hundred    = decimal.NewFromInt(100)
	minusHundr = decimal.NewFromInt(-100)
)

// Validate checks a defaulted state. The first violation is returned as an
// *InvalidParameterError.
func (p ParticipantPlanState) Validate() error {
	if p.Age < 0 {
		return NewInvalidParameter("age", "must be non-negative, got %d", p.Age)
	}
	if p.RetirementAge <= p.Age {
		return NewInvalidParameter("retirement_age", "must be greater than age (%d), got %d", p.Age, p.RetirementAge)
	}
	if p.RetirementAge > MaxAge {
		return NewInvalidParameter("retirement_age", "must not exceed %d, got %d", MaxAge, p.RetirementAge)
	}
	if p.EntryAge < 0 || p.EntryAge > p.Age {
		return NewInvalidParameter("entry_age", "must be between 0 and age (%d), got %d", p.Age, p.EntryAge)
	}
	if !p.Salary.IsPositive() {
		return NewInvalidParameter("salary", "must be positive, got %s", p.Salary)
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderUnisex:
	default:
		return NewInvalidParameter("gender", "must be MALE, FEMALE or UNISEX, got %q", p.Gender)
	}
	if p.MortalityTable == "" {
		return NewInvalidParameter("mortality_table", "is required")
	}
	if p.MortalityAggravationPct.LessThanOrEqual(minusHundr) || p.MortalityAggravationPct.GreaterThan(hundred) {
		return NewInvalidParameter("mortality_aggravation_pct", "must be in (-100, 100], got %s", p.MortalityAggravationPct)
	}
	if err := rateBetween("contribution_rate", p.ContributionRate, decimal.Zero, one); err != nil {
		return err
	}
	if p.DiscountRate.LessThanOrEqual(minusHalf) || p.DiscountRate.GreaterThan(one) {
		return NewInvalidParameter("discount_rate", "must be in (-0.5, 1], got %s", p.DiscountRate)
	}
	if err := rateBetween("salary_growth_rate", p.SalaryGrowthRate, minusHalf, half); err != nil {
		return err
	}
	if err := rateBetween("benefit_indexation_rate", p.BenefitIndexationRate, minusHalf, half); err != nil {
		return err
	}
	if p.AccrualRate.LessThanOrEqual(minusOne) || p.AccrualRate.GreaterThan(one) {
		return NewInvalidParameter("accrual_rate", "must be in (-1, 1], got %s", p.AccrualRate)
	}
	switch p.PaymentTiming {
	case TimingAdvance, TimingArrears:
	default:
		return NewInvalidParameter("payment_timing", "must be ADVANCE or ARREARS, got %q", p.PaymentTiming)
	}
	if err := validatePayments("salary", p.SalaryMonthsPerYear, p.ExtraSalaryMonths); err != nil {
		return err
	}
	if err := validatePayments("benefit", p.BenefitMonthsPerYear, p.ExtraBenefitMonths); err != nil {
		return err
	}
	if p.StartMonth < 1 || p.StartMonth > 12 {
		return NewInvalidParameter("start_month", "must be between 1 and 12, got %d", p.StartMonth)
	}
	if err := rateBetween("contribution_loading", p.ContributionLoading, decimal.Zero, one); err != nil {
		return err
	}
	if err := rateBetween("benefit_loading", p.BenefitLoading, decimal.Zero, one); err != nil {
		return err
	}
	if p.AdministrativeFee.IsNegative() {
		return NewInvalidParameter("administrative_fee", "cannot be negative, got %s", p.AdministrativeFee)
	}
	if p.InitialBalance.IsNegative() {
		return NewInvalidParameter("initial_balance", "cannot be negative, got %s", p.InitialBalance)
	}
	if p.HorizonYears < p.RetirementAge-p.Age {
		return NewInvalidParameter("horizon_years", "must cover the contributory phase (%d years), got %d", p.RetirementAge-p.Age, p.HorizonYears)
	}
	if p.Age+p.HorizonYears > MaxAge {
		return NewInvalidParameter("horizon_years", "age + horizon must not exceed %d, got %d", MaxAge, p.Age+p.HorizonYears)
	}

	switch p.PlanType {
	case PlanTypeBD:
		if err := p.validateBD(); err != nil {
			return err
		}
	case PlanTypeCD:
		if err := p.validateCD(); err != nil {
			return err
		}
	default:
		return NewInvalidParameter("plan_type", "must be BD or CD, got %q", p.PlanType)
	}

	if p.DisabilityEnabled {
		if p.DisabilityTable == "" {
			return NewInvalidParameter("disability_table", "is required when disability is enabled")
		}
		switch p.DisabilityEntryMode {
		case DisabilityExit, DisabilityBenefit:
		default:
			return NewInvalidParameter("disability_entry_mode", "must be EXIT or BENEFIT, got %q", p.DisabilityEntryMode)
		}
	}

	switch p.SolveFor {
	case SolveNone, SolveContributionRate:
	default:
		return NewInvalidParameter("solve_for", "must be NONE or CONTRIBUTION_RATE, got %q", p.SolveFor)
	}
	return nil
}

func (p ParticipantPlanState) validateBD() error {
	switch p.Method {
	case MethodPUC, MethodEAN:
	default:
		return NewInvalidParameter("method", "BD plans use PUC or EAN, got %q", p.Method)
	}
	switch p.TargetMode {
	case TargetModeValue:
		if p.TargetBenefit.IsNegative() {
			return NewInvalidParameter("target_benefit", "cannot be negative, got %s", p.TargetBenefit)
		}
		if !p.TargetReplacementRate.IsZero() {
			return NewInvalidParameter("target_replacement_rate", "must be empty when target_mode is VALUE")
		}
	case TargetModeReplacementRate:
		if !p.TargetReplacementRate.IsPositive() || p.TargetReplacementRate.GreaterThan(two) {
			return NewInvalidParameter("target_replacement_rate", "must be in (0, 2], got %s", p.TargetReplacementRate)
		}
		if !p.TargetBenefit.IsZero() {
			return NewInvalidParameter("target_benefit", "must be empty when target_mode is REPLACEMENT_RATE")
		}
	default:
		return NewInvalidParameter("target_mode", "must be VALUE or REPLACEMENT_RATE, got %q", p.TargetMode)
	}
	return nil
}

func (p ParticipantPlanState) validateCD() error {
	if p.Method != MethodCDAccumulation {
		return NewInvalidParameter("method", "CD plans use CD_ACCUMULATION, got %q", p.Method)
	}
	switch p.ConversionMode {
	case ConversionActuarial:
	case ConversionFixedRate, ConversionPercentage:
		if !p.WithdrawalRate.IsPositive() || p.WithdrawalRate.GreaterThan(one) {
			return NewInvalidParameter("withdrawal_rate", "must be in (0, 1] for %s, got %s", p.ConversionMode, p.WithdrawalRate)
		}
	case ConversionCertainPeriod:
		payout := p.Age + p.HorizonYears - p.RetirementAge
		if payout < 1 {
			return NewInvalidParameter("certain_period_years", "no payout phase after retirement at age %d", p.RetirementAge)
		}
		if p.CertainPeriodYears < 1 || p.CertainPeriodYears > payout {
			return NewInvalidParameter("certain_period_years", "must be between 1 and %d, got %d", payout, p.CertainPeriodYears)
		}
	case ConversionActuarialWithFloor:
		if p.BenefitFloor.IsNegative() {
			return NewInvalidParameter("benefit_floor", "cannot be negative, got %s", p.BenefitFloor)
		}
	default:
		return NewInvalidParameter("conversion_mode", "unknown conversion mode %q", p.ConversionMode)
	}
	return nil
}

func rateBetween(field string, v, lo, hi decimal.Decimal) error {
	if v.LessThan(lo) || v.GreaterThan(hi) {
		return NewInvalidParameter(field, "must be between %s and %s, got %s", lo, hi, v)
	}
	return nil
}

func validatePayments(kind string, perYear int, months []int) error {
	if perYear < 12 || perYear > 24 {
		return NewInvalidParameter(kind+"_months_per_year", "must be between 12 and 24, got %d", perYear)
	}
	seen := make(map[int]bool, len(months))
	for _, m := range months {
		if m < 1 || m > 12 {
			return NewInvalidParameter("extra_"+kind+"_months", "calendar month must be between 1 and 12, got %d", m)
		}
		if seen[m] {
			return NewInvalidParameter("extra_"+kind+"_months", "calendar month %d listed twice", m)
		}
		seen[m] = true
	}
	return nil
}
