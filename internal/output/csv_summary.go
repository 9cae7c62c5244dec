package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/actuarial-engine/internal/domain"
)

// CSVSummarizer writes the scalar results as a header row and one data row.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(result *domain.ActuarialResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"PlanType", "Method", "ConversionMode", "VPABenefits", "VPAContributions", "VPASalaries", "InitialBalance", "TotalResources", "Reserve", "DeficitSurplus", "AnnuityFactor", "SustainableBenefit", "ProjectedBenefit", "FinalSalary", "ReplacementRate", "RMBA", "NormalCost", "BalanceAtRetirement", "EstimatedBenefit", "SolverStatus", "SolverValue", "LowConfidence"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	status, value := "", ""
	if s := result.Solver; s != nil {
		status = string(s.Status)
		value = fixed(s.Value, 6)
	}
	row := []string{
		string(result.PlanType),
		string(result.Method),
		string(result.ConversionMode),
		fixed(result.VPABenefits, 2),
		fixed(result.VPAContributions, 2),
		fixed(result.VPASalaries, 2),
		fixed(result.InitialBalance, 2),
		fixed(result.TotalResources, 2),
		fixed(result.Reserve, 2),
		fixed(result.DeficitSurplus, 2),
		fixed(result.AnnuityFactor, 6),
		fixed(result.SustainableBenefit, 2),
		fixed(result.ProjectedBenefit, 2),
		fixed(result.FinalSalary, 2),
		fixed(result.ReplacementRate, 6),
		fixed(result.RMBA, 2),
		fixed(result.NormalCost, 2),
		fixed(result.AccumulatedBalanceRetirement, 2),
		fixed(result.EstimatedBenefit, 2),
		status,
		value,
		boolToString(result.LowConfidence),
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
