package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/actuarial-engine/internal/domain"
)

// ConsoleFormatter renders a human-readable valuation report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.ActuarialResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "ACTUARIAL VALUATION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Plan: %s  Method: %s", result.PlanType, result.Method)
	if result.ConversionMode != "" {
		fmt.Fprintf(&buf, "  Conversion: %s", result.ConversionMode)
	}
	fmt.Fprintln(&buf)

	if len(result.Assumptions) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
		for _, a := range result.Assumptions {
			fmt.Fprintf(&buf, "• %s\n", a)
		}
	}

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "PRESENT VALUES")
	fmt.Fprintln(&buf, "--------------------------------")
	fmt.Fprintf(&buf, "VPA Benefits:          %s\n", FormatCurrency(result.VPABenefits))
	fmt.Fprintf(&buf, "VPA Contributions:     %s\n", FormatCurrency(result.VPAContributions))
	fmt.Fprintf(&buf, "VPA Salaries:          %s\n", FormatCurrency(result.VPASalaries))
	fmt.Fprintf(&buf, "Initial Balance:       %s\n", FormatCurrency(result.InitialBalance))
	fmt.Fprintf(&buf, "Total Resources:       %s\n", FormatCurrency(result.TotalResources))
	fmt.Fprintf(&buf, "Reserve:               %s\n", FormatCurrency(result.Reserve))
	fmt.Fprintf(&buf, "Deficit/Surplus:       %s\n", FormatCurrency(result.DeficitSurplus))

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "BENEFITS")
	fmt.Fprintln(&buf, "--------------------------------")
	fmt.Fprintf(&buf, "Annuity Factor:        %.4f\n", result.AnnuityFactor)
	fmt.Fprintf(&buf, "Sustainable Benefit:   %s\n", FormatCurrency(result.SustainableBenefit))
	fmt.Fprintf(&buf, "Final Salary:          %s\n", FormatCurrency(result.FinalSalary))
	if result.SalaryMonthsPerYear > 0 {
		fmt.Fprintf(&buf, "Final Salary (annual): %s\n", FormatAnnual(result.FinalSalary, result.SalaryMonthsPerYear))
	}
	switch result.PlanType {
	case domain.PlanTypeBD:
		fmt.Fprintf(&buf, "Projected Benefit:     %s\n", FormatCurrency(result.ProjectedBenefit))
		writeAnnualBenefit(&buf, result.ProjectedBenefit, result.BenefitMonthsPerYear)
		fmt.Fprintf(&buf, "Replacement Rate:      %s\n", FormatPercentage(result.ReplacementRate))
		fmt.Fprintf(&buf, "RMBA:                  %s\n", FormatCurrency(result.RMBA))
		fmt.Fprintf(&buf, "Normal Cost (annual):  %s\n", FormatCurrency(result.NormalCost))
	case domain.PlanTypeCD:
		fmt.Fprintf(&buf, "Balance at Retirement: %s\n", FormatCurrency(result.AccumulatedBalanceRetirement))
		fmt.Fprintf(&buf, "Estimated Benefit:     %s\n", FormatCurrency(result.EstimatedBenefit))
		writeAnnualBenefit(&buf, result.EstimatedBenefit, result.BenefitMonthsPerYear)
		fmt.Fprintf(&buf, "Replacement Rate:      %s\n", FormatPercentage(result.ReplacementRate))
	}

	if s := result.Solver; s != nil {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "SOLVER")
		fmt.Fprintln(&buf, "--------------------------------")
		fmt.Fprintf(&buf, "Target: %s  Status: %s  Iterations: %d\n", s.Target, s.Status, s.Iterations)
		fmt.Fprintf(&buf, "Value: %s  Residual: %s  Tolerance: %s\n",
			FormatPercentage(s.Value), FormatCurrency(s.Residual), FormatCurrency(s.Tolerance))
	}

	writeYearlyTable(&buf, result)

	sum := AnalyzeFunding(result)
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Funding status: %s", sum.Status)
	if sum.FundedRatio > 0 {
		fmt.Fprintf(&buf, " (funded ratio %s)", FormatPercentage(sum.FundedRatio))
	}
	fmt.Fprintln(&buf)
	if len(result.Warnings) > 0 {
		fmt.Fprintf(&buf, "Confidence: %s\n", sum.Confidence)
		for _, w := range result.Warnings {
			fmt.Fprintf(&buf, "  ! %s: %s\n", w.Code, w.Message)
		}
	}
	return buf.Bytes(), nil
}

func writeAnnualBenefit(buf *bytes.Buffer, monthly float64, payments int) {
	if payments > 0 {
		fmt.Fprintf(buf, "Benefit (annual):      %s\n", FormatAnnual(monthly, payments))
	}
}

// writeYearlyTable prints the first month of every projection year.
func writeYearlyTable(buf *bytes.Buffer, result *domain.ActuarialResult) {
	p := result.Projection
	if p.Months() == 0 {
		return
	}
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "YEARLY PROJECTION (first month of each year)")
	fmt.Fprintf(buf, "%4s %6s %9s %16s %16s %16s %18s\n", "Year", "Age", "Survival", "Salary", "Contribution", "Benefit", "Balance")
	fmt.Fprintln(buf, strings.Repeat("-", 91))
	for m := 0; m < p.Months(); m += 12 {
		surv := 0.0
		if m < len(result.Survival.Active) {
			surv = result.Survival.Active[m]
		}
		marker := ""
		if m == p.RetirementMonth {
			marker = " <- retirement"
		}
		fmt.Fprintf(buf, "%4d %6.1f %9.5f %16s %16s %16s %18s%s\n",
			m/12, p.Age[m], surv,
			FormatCurrency(p.Salary[m]), FormatCurrency(p.Contribution[m]),
			FormatCurrency(p.Benefit[m]), FormatCurrency(p.Balance[m]), marker)
	}
}
