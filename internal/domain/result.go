package domain

// SurvivalCurve holds month-indexed probabilities from the participant's
// start age. Active[m] is the probability of still being in the active
// (non-decremented) state at the start of month m; Active[0] is 1.
type SurvivalCurve struct {
	InitialAge int       `json:"initial_age"`
	Active     []float64 `json:"active"`
	// Exits holds, per decrement name, the cumulative probability of having
	// left the active state through that cause by the start of month m.
	Exits map[string][]float64 `json:"exits,omitempty"`
	// Disabled is the probability of being alive and disabled at month m.
	// Nil when disability is not modelled with benefits.
	Disabled []float64 `json:"disabled,omitempty"`
}

// Months is the curve length.
func (c SurvivalCurve) Months() int { return len(c.Active) }

// CashFlowProjection holds monthly flows aligned 1:1 with the survival curve.
type CashFlowProjection struct {
	Age             []float64 `json:"age"`
	Salary          []float64 `json:"salary"`
	Contribution    []float64 `json:"contribution"`
	NetContribution []float64 `json:"net_contribution"`
	Benefit         []float64 `json:"benefit"`
	// DisabilityBenefit is paid to disabled lives and weighted with
	// SurvivalCurve.Disabled.
	DisabilityBenefit []float64 `json:"disability_benefit,omitempty"`
	Balance           []float64 `json:"balance"`
	RetirementMonth   int       `json:"retirement_month"`
}

// Months is the projection length.
func (p CashFlowProjection) Months() int { return len(p.Salary) }

// SolverStatus is the terminal state of a root-finding run.
type SolverStatus string

const (
	SolverNotStarted    SolverStatus = "NOT_STARTED"
	SolverIterating     SolverStatus = "ITERATING"
	SolverConverged     SolverStatus = "CONVERGED"
	SolverMaxIterations SolverStatus = "MAX_ITERS_REACHED"
	SolverNoBracket     SolverStatus = "NO_BRACKET"
	SolverDegenerate    SolverStatus = "DEGENERATE"
)

// SolverOutcome reports a root-finding run.
type SolverOutcome struct {
	Target     SolveTarget  `json:"target"`
	Status     SolverStatus `json:"status"`
	Value      float64      `json:"value"`
	Residual   float64      `json:"residual"`
	Iterations int          `json:"iterations"`
	Tolerance  float64      `json:"tolerance"`
}

// ActuarialResult is the output of one calculation. DeficitSurplus is
// TotalResources - VPABenefits: positive is a surplus, negative a deficit.
type ActuarialResult struct {
	PlanType       PlanType          `json:"plan_type"`
	Method         CalculationMethod `json:"method"`
	ConversionMode ConversionMode    `json:"conversion_mode,omitempty"`

	VPABenefits      float64 `json:"vpa_benefits"`
	VPAContributions float64 `json:"vpa_contributions"`
	VPASalaries      float64 `json:"vpa_salaries"`
	InitialBalance   float64 `json:"initial_balance"`
	TotalResources   float64 `json:"total_resources"`
	Reserve          float64 `json:"reserve"`
	DeficitSurplus   float64 `json:"deficit_surplus"`

	AnnuityFactor      float64 `json:"annuity_factor"`
	SustainableBenefit float64 `json:"sustainable_benefit"`
	ProjectedBenefit   float64 `json:"projected_benefit"`
	FinalSalary        float64 `json:"final_salary"`
	ReplacementRate    float64 `json:"replacement_rate"`

	SalaryMonthsPerYear  int `json:"salary_months_per_year"`
	BenefitMonthsPerYear int `json:"benefit_months_per_year"`

	RMBA       float64 `json:"rmba"`
	NormalCost float64 `json:"normal_cost"`

	AccumulatedBalanceRetirement float64 `json:"accumulated_balance_retirement"`
	EstimatedBenefit             float64 `json:"estimated_benefit"`

	// Assumptions is a caller-supplied summary of the inputs for reports.
	Assumptions []string `json:"assumptions,omitempty"`

	Solver        *SolverOutcome `json:"solver,omitempty"`
	Warnings      []Warning      `json:"warnings,omitempty"`
	LowConfidence bool           `json:"low_confidence"`

	Survival   SurvivalCurve      `json:"survival"`
	Projection CashFlowProjection `json:"projection"`
}

// IsSurplus reports whether resources cover the obligations.
func (r *ActuarialResult) IsSurplus() bool { return r.DeficitSurplus >= 0 }

// AddWarning records a degeneracy and lowers the result's confidence.
func (r *ActuarialResult) AddWarning(code WarningCode, msg string) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: msg})
	r.LowConfidence = true
}
