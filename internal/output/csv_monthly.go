package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/actuarial-engine/internal/domain"
)

// CSVMonthlyExporter writes one row per projection month with the survival
// probability next to every cash flow.
type CSVMonthlyExporter struct{}

func (c CSVMonthlyExporter) Name() string { return "csv-monthly" }

func (c CSVMonthlyExporter) Format(result *domain.ActuarialResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Month", "Age", "Survival", "Disabled", "Salary", "Contribution", "NetContribution", "Benefit", "DisabilityBenefit", "Balance", "Retired"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	p := result.Projection
	s := result.Survival
	for m := 0; m < p.Months(); m++ {
		row := []string{
			intToString(m),
			fixed(p.Age[m], 4),
			fixed(at(s.Active, m), 8),
			fixed(at(s.Disabled, m), 8),
			fixed(p.Salary[m], 2),
			fixed(p.Contribution[m], 2),
			fixed(at(p.NetContribution, m), 2),
			fixed(p.Benefit[m], 2),
			fixed(at(p.DisabilityBenefit, m), 2),
			fixed(p.Balance[m], 2),
			boolToString(m >= p.RetirementMonth),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// at reads an optional column, treating missing entries as zero.
func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}
