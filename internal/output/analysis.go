package output

import (
	"github.com/rpgo/actuarial-engine/internal/domain"
)

// FundingSummary condenses a result into the figures a report headline needs.
type FundingSummary struct {
	Status string // SURPLUS, DEFICIT or BALANCED
	// FundedRatio is TotalResources / VPABenefits; zero when there are no obligations.
	FundedRatio float64
	Gap         float64
	Confidence  string
}

// balancedBand is the absolute deficit/surplus under which a plan reports as balanced.
const balancedBand = 50.0

// AnalyzeFunding classifies the result's deficit or surplus.
// Extracted from embedded console logic for testability.
func AnalyzeFunding(result *domain.ActuarialResult) FundingSummary {
	s := FundingSummary{Gap: result.DeficitSurplus, Confidence: "normal"}
	switch {
	case result.DeficitSurplus > -balancedBand && result.DeficitSurplus < balancedBand:
		s.Status = "BALANCED"
	case result.IsSurplus():
		s.Status = "SURPLUS"
	default:
		s.Status = "DEFICIT"
	}
	if result.VPABenefits > 0 {
		s.FundedRatio = result.TotalResources / result.VPABenefits
	}
	if result.LowConfidence {
		s.Confidence = "low"
	}
	return s
}
