package calculation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/internal/tables"
	"github.com/shopspring/decimal"
)

// Engine orchestrates a calculation: table lookup, survival composition,
// cash-flow projection, present values and, on request, the contribution
// rate search. It holds no per-calculation state and is safe for concurrent
// use once configured.
type Engine struct {
	Provider *tables.Provider
	Settings domain.EngineSettings
	Logger   Logger
}

// NewEngine creates an engine. A nil provider serves the built-in tables.
func NewEngine(provider *tables.Provider, settings domain.EngineSettings) *Engine {
	if provider == nil {
		provider = tables.NewDefaultProvider()
	}
	return &Engine{
		Provider: provider,
		Settings: settings.Merge(),
		Logger:   NopLogger{},
	}
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// valuation is the per-calculation context shared by every evaluation of
// one participant: the assumptions and the survival curve.
type valuation struct {
	state    domain.ParticipantPlanState
	a        Assumptions
	survival domain.SurvivalCurve
}

// Compute runs one calculation. Parameter and table errors are returned
// unrecovered; numeric degeneracies come back as warnings on the result.
func (e *Engine) Compute(ctx context.Context, state domain.ParticipantPlanState) (*domain.ActuarialResult, error) {
	state = state.WithDefaults()
	res, err := e.compute(ctx, state)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case res.LowConfidence:
		outcome = "low_confidence"
	}
	calculationsTotal.WithLabelValues(string(state.PlanType), outcome).Inc()
	return res, err
}

// SolveContributionRate computes the result at the contribution rate that
// balances the plan (see Compute with solve_for CONTRIBUTION_RATE).
func (e *Engine) SolveContributionRate(ctx context.Context, state domain.ParticipantPlanState) (*domain.ActuarialResult, error) {
	state.SolveFor = domain.SolveContributionRate
	return e.Compute(ctx, state)
}

func (e *Engine) compute(ctx context.Context, state domain.ParticipantPlanState) (*domain.ActuarialResult, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}
	plan, err := state.Variant()
	if err != nil {
		return nil, err
	}
	e.Logger.Debugf("computing %s plan: age=%d retirement=%d horizon=%dy table=%s",
		state.PlanType, state.Age, state.RetirementAge, state.HorizonYears, state.MortalityTable)

	v, err := e.prepare(ctx, state)
	if err != nil {
		return nil, err
	}

	var res *domain.ActuarialResult
	if state.SolveFor == domain.SolveContributionRate {
		res, err = e.solveContributionRate(ctx, v, plan)
	} else {
		res, err = e.evaluate(ctx, v, plan)
	}
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		e.Logger.Warnf("%s: %s", w.Code, w.Message)
	}
	return res, nil
}

// prepare loads the decrement tables and composes the survival curve.
func (e *Engine) prepare(ctx context.Context, state domain.ParticipantPlanState) (*valuation, error) {
	a := NewAssumptions(state)
	mortality, err := e.Provider.GetAdjusted(ctx, state.MortalityTable, state.Gender,
		state.MortalityAggravationPct.InexactFloat64())
	if err != nil {
		return nil, err
	}
	decrements := []Decrement{{Name: DecrementMortality, Table: mortality}}
	if state.DisabilityEnabled {
		disability, err := e.Provider.Get(ctx, state.DisabilityTable, state.Gender)
		if err != nil {
			return nil, fmt.Errorf("failed to load table %s: %w", state.DisabilityTable, err)
		}
		decrements = append(decrements, Decrement{
			Name:       DecrementDisability,
			Table:      disability,
			UntilMonth: max(a.RetirementMonth, 1),
		})
	}

	composer := Composer{Interpolate: e.Settings.Interpolate}
	curve := composer.Compose(state.Age, a.HorizonMonths, decrements)
	if a.DisabilityBenefits {
		curve.Disabled = composer.DisabledLives(curve, DecrementDisability, mortality)
	}
	return &valuation{state: state, a: a, survival: curve}, nil
}

func (e *Engine) evaluate(ctx context.Context, v *valuation, plan domain.PlanVariant) (*domain.ActuarialResult, error) {
	switch p := plan.(type) {
	case domain.BDPlan:
		return e.evaluateBD(ctx, v, p)
	case domain.CDPlan:
		return e.evaluateCD(v, p)
	default:
		return nil, fmt.Errorf("unsupported plan variant %T", plan)
	}
}

// bdValues are the present values of a BD plan at one contribution rate.
type bdValues struct {
	projection       domain.CashFlowProjection
	benefit          float64
	annuityFactor    float64
	vpaBenefits      float64
	vpaContributions float64
	vpaSalaries      float64
}

func valueBD(a Assumptions, survival domain.SurvivalCurve, plan domain.BDPlan) bdValues {
	benefit := BDBenefitLevel(a, plan)
	proj := ProjectBD(a, plan, benefit)
	retired, disabled := BDBenefitStream(a, plan.IndexationRate)
	ret := proj.RetirementMonth
	r, t, fb := a.MonthlyDiscount, a.Timing, a.BenefitLoading

	af := AnnuityFactor(retired, survival.Active, r, fb, t, ret, ToEnd)
	pvBen := PresentValue(proj.Benefit, survival.Active, r, t, ret, ToEnd)
	if disabled != nil {
		af += AnnuityFactor(disabled, survival.Disabled, r, fb, t, 0, ToEnd)
		pvBen += PresentValue(proj.DisabilityBenefit, survival.Disabled, r, t, 0, ToEnd)
	}
	return bdValues{
		projection:       proj,
		benefit:          benefit,
		annuityFactor:    af,
		vpaBenefits:      (1 + fb) * pvBen,
		vpaContributions: PresentValue(proj.NetContribution, survival.Active, r, t, 0, ret),
		vpaSalaries:      PresentValue(proj.Salary, survival.Active, r, t, 0, ret),
	}
}

func (e *Engine) evaluateBD(ctx context.Context, v *valuation, plan domain.BDPlan) (*domain.ActuarialResult, error) {
	a := v.a
	vals := valueBD(a, v.survival, plan)
	res := newResult(v, vals.projection, vals.vpaBenefits, vals.vpaContributions, vals.vpaSalaries, vals.annuityFactor)
	addDegeneracyWarnings(res, v)
	res.Method = plan.Method
	res.ProjectedBenefit = vals.benefit
	res.EstimatedBenefit = vals.benefit
	if res.FinalSalary > 0 {
		res.ReplacementRate = vals.benefit / res.FinalSalary
	}

	var funding FundingResult
	switch plan.Method {
	case domain.MethodEAN:
		entry, err := e.entryAgeValues(ctx, v, plan)
		if err != nil {
			return nil, err
		}
		annualSalary := a.Salary * float64(a.SalaryMonthsPerYear)
		funding = EntryAgeNormal(entry.vpaBenefits, entry.vpaSalaries, vals.vpaBenefits, vals.vpaSalaries, annualSalary)
	default:
		funding = ProjectedUnitCredit(vals.vpaBenefits, a.Age, a.EntryAge, a.RetirementAge)
	}
	res.RMBA = funding.RMBA
	res.NormalCost = funding.NormalCost
	return res, nil
}

// entryAgeValues values the plan as seen at entry age, with the salary
// projected back at the growth rate.
func (e *Engine) entryAgeValues(ctx context.Context, v *valuation, plan domain.BDPlan) (bdValues, error) {
	st := v.state
	years := st.Age - st.EntryAge
	if years == 0 {
		return valueBD(v.a, v.survival, plan), nil
	}
	back := math.Pow(1+v.a.SalaryGrowth, float64(years))
	st.Salary = decimal.NewFromFloat(v.a.Salary / back)
	st.HorizonYears += years
	st.Age = st.EntryAge
	st.BirthDate, st.ValuationDate = nil, nil

	ev, err := e.prepare(ctx, st)
	if err != nil {
		return bdValues{}, err
	}
	return valueBD(ev.a, ev.survival, plan), nil
}

func (e *Engine) evaluateCD(v *valuation, plan domain.CDPlan) (*domain.ActuarialResult, error) {
	a := v.a
	proj, conv, err := ProjectCD(a, plan, v.survival.Active)
	if err != nil {
		return nil, err
	}
	ret := proj.RetirementMonth
	r, t, fb := a.MonthlyDiscount, a.Timing, a.BenefitLoading

	af := AnnuityFactor(a.BenefitUnits(), v.survival.Active, r, fb, t, ret, ToEnd)
	vpaBen := (1 + fb) * PresentValue(proj.Benefit, v.survival.Active, r, t, ret, ToEnd)
	vpaContrib := PresentValue(proj.NetContribution, v.survival.Active, r, t, 0, ret)
	vpaSal := PresentValue(proj.Salary, v.survival.Active, r, t, 0, ret)

	res := newResult(v, proj, vpaBen, vpaContrib, vpaSal, af)
	res.Method = domain.MethodCDAccumulation
	res.ConversionMode = plan.Conversion.Mode()
	res.AccumulatedBalanceRetirement = conv.BalanceAtRetirement
	res.EstimatedBenefit = conv.Benefit
	res.ProjectedBenefit = conv.Benefit
	if res.FinalSalary > 0 {
		res.ReplacementRate = conv.Benefit / res.FinalSalary
	}
	if conv.Degenerate {
		res.AddWarning(domain.WarnAnnuityFactorDegenerate,
			fmt.Sprintf("%s conversion produced no benefit from balance %.2f", plan.Conversion.Mode(), conv.BalanceAtRetirement))
	}
	addDegeneracyWarnings(res, v)
	return res, nil
}

// newResult fills the fields shared by both plan types.
func newResult(v *valuation, proj domain.CashFlowProjection, vpaBen, vpaContrib, vpaSal, af float64) *domain.ActuarialResult {
	a := v.a
	res := &domain.ActuarialResult{
		PlanType:         v.state.PlanType,
		VPABenefits:      vpaBen,
		VPAContributions: vpaContrib,
		VPASalaries:      vpaSal,
		InitialBalance:   a.InitialBalance,
		TotalResources:   a.InitialBalance + vpaContrib,
		Reserve:          vpaBen - vpaContrib,
		AnnuityFactor:    af,
		FinalSalary:      a.FinalSalary(),
		Survival:         v.survival,
		Projection:       proj,

		SalaryMonthsPerYear:  a.SalaryMonthsPerYear,
		BenefitMonthsPerYear: a.BenefitMonthsPerYear,
	}
	res.DeficitSurplus = res.TotalResources - vpaBen
	res.SustainableBenefit, _ = SustainableBenefit(res.TotalResources, af)
	return res
}

// addDegeneracyWarnings flags a non-positive annuity factor, unless a more
// specific ANNUITY_FACTOR_DEGENERATE warning is already present, and zero
// survival to retirement.
func addDegeneracyWarnings(res *domain.ActuarialResult, v *valuation) {
	if _, ok := SustainableBenefit(res.TotalResources, res.AnnuityFactor); !ok && !hasWarning(res, domain.WarnAnnuityFactorDegenerate) {
		res.AddWarning(domain.WarnAnnuityFactorDegenerate,
			fmt.Sprintf("annuity factor %.6f is not positive; no sustainable benefit", res.AnnuityFactor))
	}
	ret := res.Projection.RetirementMonth
	if ret < len(v.survival.Active) && v.survival.Active[ret] <= 0 {
		res.AddWarning(domain.WarnSurvivalExhausted,
			fmt.Sprintf("survival to retirement at age %d is zero", v.a.RetirementAge))
	}
}

func hasWarning(res *domain.ActuarialResult, code domain.WarningCode) bool {
	for _, w := range res.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// errNoTarget is returned when a CD contribution search has nothing to aim at.
var errNoTarget = errors.New("target_benefit must be positive to solve a CD contribution rate")

// solveContributionRate searches [0, 1] for the contribution rate that
// balances the plan. BD plans zero deficit(x) = VPA_benefits - VPA_contributions(x)
// - initial_balance; CD plans match the estimated benefit to target_benefit.
func (e *Engine) solveContributionRate(ctx context.Context, v *valuation, plan domain.PlanVariant) (*domain.ActuarialResult, error) {
	at := func(x float64) *valuation {
		cp := *v
		cp.a.ContributionRate = x
		return &cp
	}

	var objective Objective
	switch p := plan.(type) {
	case domain.BDPlan:
		objective = func(x float64) (float64, error) {
			vals := valueBD(at(x).a, v.survival, p)
			return vals.vpaBenefits - vals.vpaContributions - v.a.InitialBalance, nil
		}
	case domain.CDPlan:
		target := v.state.TargetBenefit.InexactFloat64()
		if target <= 0 {
			return nil, domain.NewInvalidParameter("target_benefit", "%s", errNoTarget)
		}
		objective = func(x float64) (float64, error) {
			_, conv, err := ProjectCD(at(x).a, p, v.survival.Active)
			if err != nil {
				return 0, err
			}
			return target - conv.Benefit, nil
		}
	default:
		return nil, fmt.Errorf("unsupported plan variant %T", plan)
	}

	tol := math.Max(e.Settings.AbsoluteTolerance, e.Settings.RelativeTolerance*v.a.Salary)
	solver := Bisection{Lower: 0, Upper: 1, Tolerance: tol, MaxIterations: e.Settings.MaxIterations}
	outcome, err := solver.Solve(objective)
	if err != nil {
		return nil, fmt.Errorf("contribution rate search failed: %w", err)
	}
	outcome.Target = domain.SolveContributionRate
	e.Logger.Infof("contribution rate search %s after %d evaluations: rate=%.6f residual=%.4f",
		outcome.Status, outcome.Iterations, outcome.Value, outcome.Residual)

	res, err := e.evaluate(ctx, at(outcome.Value), plan)
	if err != nil {
		return nil, err
	}
	res.Solver = &outcome
	switch outcome.Status {
	case domain.SolverMaxIterations:
		res.AddWarning(domain.WarnSolverMaxIterations,
			fmt.Sprintf("no contribution rate within %.2f after %d evaluations; best residual %.2f", tol, outcome.Iterations, outcome.Residual))
	case domain.SolverNoBracket:
		res.AddWarning(domain.WarnSolverNoBracket,
			fmt.Sprintf("residual keeps its sign over contribution rates [0, 1]; best residual %.2f at %.4f", outcome.Residual, outcome.Value))
	case domain.SolverDegenerate:
		res.AddWarning(domain.WarnAnnuityFactorDegenerate,
			"contribution rate has no effect on the objective")
	}
	return res, nil
}
