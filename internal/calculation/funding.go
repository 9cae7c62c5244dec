package calculation

// FundingResult is the split of a BD obligation between the past service
// reserve and the yearly cost of future accruals.
type FundingResult struct {
	RMBA float64
	// NormalCost is the annual normal cost.
	NormalCost float64
	// NormalCostRate is the normal cost as a fraction of salary (EAN only).
	NormalCostRate float64
}

// ProjectedUnitCredit accrues the projected benefit linearly over service:
// the reserve is the share of VPA already earned and the normal cost is one
// year's share.
func ProjectedUnitCredit(vpaBenefits float64, age, entryAge, retirementAge int) FundingResult {
	total := retirementAge - entryAge
	if total <= 0 {
		return FundingResult{RMBA: vpaBenefits}
	}
	service := age - entryAge
	return FundingResult{
		RMBA:       vpaBenefits * float64(service) / float64(total),
		NormalCost: vpaBenefits / float64(total),
	}
}

// EntryAgeNormal spreads the cost as a level fraction of salary from entry
// age. rate = VPA benefits / VPA salaries, both valued at entry; the reserve is
// today's VPA of benefits less the VPA of future normal costs.
func EntryAgeNormal(vpaBenefitsEntry, vpaSalariesEntry, vpaBenefits, vpaSalaries, annualSalary float64) FundingResult {
	if vpaSalariesEntry <= 0 {
		return FundingResult{RMBA: vpaBenefits}
	}
	rate := vpaBenefitsEntry / vpaSalariesEntry
	return FundingResult{
		RMBA:           vpaBenefits - rate*vpaSalaries,
		NormalCost:     rate * annualSalary,
		NormalCostRate: rate,
	}
}
