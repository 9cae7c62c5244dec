package output

import (
	"fmt"

	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/pkg/dateutil"
	money "github.com/rpgo/actuarial-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

// GenerateAssumptions creates the assumptions list rendered in console
// reports from a participant's resolved inputs.
func GenerateAssumptions(state domain.ParticipantPlanState) []string {
	p := state.WithDefaults()
	lines := []string{
		fmt.Sprintf("Mortality table: %s (%s)", p.MortalityTable, p.Gender),
		fmt.Sprintf("Discount rate: %s%% a year", pct(p.DiscountRate)),
		fmt.Sprintf("Real salary growth: %s%% a year", pct(p.SalaryGrowthRate)),
		fmt.Sprintf("Payments: %d salaries and %d benefits a year, %s", p.SalaryMonthsPerYear, p.BenefitMonthsPerYear, p.PaymentTiming),
	}
	if p.BirthDate != nil {
		ret := dateutil.RetirementDate(*p.BirthDate, p.RetirementAge)
		line := fmt.Sprintf("Retirement date: %s", ret.Format("2006-01"))
		if p.ValuationDate != nil {
			line += fmt.Sprintf(" (age %.2f at valuation, %d months to go)",
				dateutil.FractionalAge(*p.BirthDate, *p.ValuationDate), dateutil.MonthsBetween(*p.ValuationDate, ret))
		}
		lines = append(lines, line)
	}
	if !p.MortalityAggravationPct.IsZero() {
		lines = append(lines, fmt.Sprintf("Mortality adjustment: %s%%", p.MortalityAggravationPct.StringFixed(1)))
	}
	if !p.BenefitIndexationRate.IsZero() {
		lines = append(lines, fmt.Sprintf("Benefit indexation: %s%% a year", pct(p.BenefitIndexationRate)))
	}
	if p.PlanType == domain.PlanTypeCD {
		lines = append(lines, fmt.Sprintf("Balance accrual: %s%% a year", pct(p.AccrualRate)))
	}
	if !p.ContributionLoading.IsZero() || !p.AdministrativeFee.IsZero() || !p.BenefitLoading.IsZero() {
		lines = append(lines, fmt.Sprintf("Fees: contribution loading %s%%, administrative fee %s per period, benefit loading %s%%",
			pct(p.ContributionLoading), money.NewMoneyFromDecimal(p.AdministrativeFee).Format(), pct(p.BenefitLoading)))
	}
	if p.DisabilityEnabled {
		lines = append(lines, fmt.Sprintf("Disability: %s, entry mode %s", p.DisabilityTable, p.DisabilityEntryMode))
	}
	return lines
}

var decimalHundred = decimal.NewFromInt(100)

func pct(d decimal.Decimal) string { return d.Mul(decimalHundred).StringFixed(2) }
