package calculation

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/internal/tables"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(tables.NewDefaultProvider(), domain.DefaultEngineSettings())
}

// bdScenario: age 30, salary 8000, retiring at 65, 8% contributions, 5%
// discount, BR_EMS_2021, target benefit 5000.
func bdScenario() domain.ParticipantPlanState {
	return domain.ParticipantPlanState{
		Age:              30,
		Salary:           decimal.NewFromInt(8000),
		PlanType:         domain.PlanTypeBD,
		RetirementAge:    65,
		ContributionRate: decimal.NewFromFloat(0.08),
		DiscountRate:     decimal.NewFromFloat(0.05),
		MortalityTable:   "BR_EMS_2021",
		TargetMode:       domain.TargetModeValue,
		TargetBenefit:    decimal.NewFromInt(5000),
	}
}

// cdScenario: age 35, retiring at 60, 12% contributions, 4% accrual,
// actuarial conversion, no initial balance.
func cdScenario() domain.ParticipantPlanState {
	return domain.ParticipantPlanState{
		Age:              35,
		Gender:           domain.GenderFemale,
		Salary:           decimal.NewFromInt(8000),
		PlanType:         domain.PlanTypeCD,
		RetirementAge:    60,
		ContributionRate: decimal.NewFromFloat(0.12),
		AccrualRate:      decimal.NewFromFloat(0.04),
		DiscountRate:     decimal.NewFromFloat(0.04),
		MortalityTable:   "BR_EMS_2021",
		ConversionMode:   domain.ConversionActuarial,
	}
}

func TestComputeBDScenario(t *testing.T) {
	res, err := newTestEngine().Compute(context.Background(), bdScenario())
	require.NoError(t, err)

	assert.Equal(t, domain.PlanTypeBD, res.PlanType)
	assert.Equal(t, domain.MethodPUC, res.Method)
	assert.False(t, math.IsNaN(res.DeficitSurplus) || math.IsInf(res.DeficitSurplus, 0))
	assert.Equal(t, res.DeficitSurplus >= 0, res.IsSurplus())
	assert.InDelta(t, res.TotalResources-res.VPABenefits, res.DeficitSurplus, 1e-6)
	assert.InDelta(t, res.VPABenefits-res.VPAContributions, res.Reserve, 1e-6)
	assert.Positive(t, res.VPABenefits)
	assert.Positive(t, res.VPAContributions)
	assert.Positive(t, res.AnnuityFactor)
	assert.Positive(t, res.SustainableBenefit)
	assert.Equal(t, 5000.0, res.ProjectedBenefit)
	assert.InDelta(t, 5000*res.AnnuityFactor, res.VPABenefits, 1e-6)
	assert.Zero(t, res.RMBA, "a new entrant has no past service")
	assert.Empty(t, res.Warnings)
	assert.False(t, res.LowConfidence)

	months := (120 - 30) * 12
	assert.Equal(t, months, res.Survival.Months())
	assert.Equal(t, months, res.Projection.Months())
	assert.Equal(t, 420, res.Projection.RetirementMonth)
	for m := 0; m < months; m++ {
		if m >= 420 {
			require.Zero(t, res.Projection.Contribution[m])
		} else {
			require.Zero(t, res.Projection.Benefit[m])
		}
	}
}

func TestSustainableBenefitRoundTrip(t *testing.T) {
	engine := newTestEngine()
	tests := []struct {
		name  string
		state func() domain.ParticipantPlanState
	}{
		{"reference scenario", bdScenario},
		{"arrears with 13th payments and fees", func() domain.ParticipantPlanState {
			s := bdScenario()
			s.PaymentTiming = domain.TimingArrears
			s.SalaryMonthsPerYear = 13
			s.BenefitMonthsPerYear = 13
			s.ContributionLoading = decimal.NewFromFloat(0.02)
			s.AdministrativeFee = decimal.NewFromInt(15)
			s.BenefitLoading = decimal.NewFromFloat(0.01)
			s.BenefitIndexationRate = decimal.NewFromFloat(0.01)
			s.InitialBalance = decimal.NewFromInt(50000)
			return s
		}},
		{"disability benefits", func() domain.ParticipantPlanState {
			s := bdScenario()
			s.Gender = domain.GenderMale
			s.DisabilityEnabled = true
			s.DisabilityTable = "ALVARO_VINDAS"
			s.DisabilityEntryMode = domain.DisabilityBenefit
			return s
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := engine.Compute(context.Background(), tt.state())
			require.NoError(t, err)

			again := tt.state()
			again.TargetBenefit = decimal.NewFromFloat(first.SustainableBenefit)
			second, err := engine.Compute(context.Background(), again)
			require.NoError(t, err)
			assert.Less(t, math.Abs(second.DeficitSurplus), 50.0)
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	engine := newTestEngine()
	for _, state := range []domain.ParticipantPlanState{bdScenario(), cdScenario()} {
		a, err := engine.Compute(context.Background(), state)
		require.NoError(t, err)
		b, err := engine.Compute(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestComputeCDScenario(t *testing.T) {
	res, err := newTestEngine().Compute(context.Background(), cdScenario())
	require.NoError(t, err)

	assert.Equal(t, domain.MethodCDAccumulation, res.Method)
	assert.Equal(t, domain.ConversionActuarial, res.ConversionMode)
	assert.Greater(t, res.AccumulatedBalanceRetirement, res.InitialBalance)
	assert.Positive(t, res.EstimatedBenefit)
	assert.Equal(t, res.EstimatedBenefit, res.Projection.Benefit[res.Projection.RetirementMonth])
	assert.False(t, res.LowConfidence)
}

func TestComputeCDConversionModes(t *testing.T) {
	engine := newTestEngine()
	modes := map[domain.ConversionMode]func(*domain.ParticipantPlanState){
		domain.ConversionFixedRate:          func(s *domain.ParticipantPlanState) { s.WithdrawalRate = decimal.NewFromFloat(0.06) },
		domain.ConversionPercentage:         func(s *domain.ParticipantPlanState) { s.WithdrawalRate = decimal.NewFromFloat(0.05) },
		domain.ConversionCertainPeriod:      func(s *domain.ParticipantPlanState) { s.CertainPeriodYears = 20 },
		domain.ConversionActuarialWithFloor: func(s *domain.ParticipantPlanState) { s.BenefitFloor = decimal.NewFromInt(1500) },
	}
	for mode, configure := range modes {
		t.Run(string(mode), func(t *testing.T) {
			s := cdScenario()
			s.ConversionMode = mode
			configure(&s)
			res, err := engine.Compute(context.Background(), s)
			require.NoError(t, err)
			assert.Equal(t, mode, res.ConversionMode)
			assert.Positive(t, res.EstimatedBenefit)
			assert.Positive(t, res.VPABenefits)
		})
	}
}

func TestComputeInvalidParameters(t *testing.T) {
	engine := newTestEngine()
	tests := []struct {
		name   string
		mutate func(*domain.ParticipantPlanState)
		field  string
	}{
		{"retirement not after age", func(s *domain.ParticipantPlanState) { s.RetirementAge = 30 }, "retirement_age"},
		{"negative salary", func(s *domain.ParticipantPlanState) { s.Salary = decimal.NewFromInt(-1) }, "salary"},
		{"both target modes", func(s *domain.ParticipantPlanState) { s.TargetReplacementRate = decimal.NewFromFloat(0.7) }, "target_replacement_rate"},
		{"implausible discount rate", func(s *domain.ParticipantPlanState) { s.DiscountRate = decimal.NewFromInt(3) }, "discount_rate"},
		{"retirement beyond table", func(s *domain.ParticipantPlanState) { s.RetirementAge = 121 }, "retirement_age"},
		{"certain period without payout phase", func(s *domain.ParticipantPlanState) {
			*s = cdScenario()
			s.ConversionMode = domain.ConversionCertainPeriod
			s.CertainPeriodYears = 10
			s.HorizonYears = s.RetirementAge - s.Age
		}, "certain_period_years"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := bdScenario()
			tt.mutate(&s)
			_, err := engine.Compute(context.Background(), s)
			require.ErrorIs(t, err, domain.ErrInvalidParameter)
			var ipe *domain.InvalidParameterError
			require.ErrorAs(t, err, &ipe)
			assert.Equal(t, tt.field, ipe.Field)
		})
	}
}

func TestCertainPeriodWithoutPayoutPhase(t *testing.T) {
	s := cdScenario()
	s.ConversionMode = domain.ConversionCertainPeriod
	s.CertainPeriodYears = 10
	s.HorizonYears = s.RetirementAge - s.Age
	_, err := newTestEngine().Compute(context.Background(), s)
	var ipe *domain.InvalidParameterError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "no payout phase after retirement at age 60", ipe.Reason)
}

func TestComputeUnknownTable(t *testing.T) {
	s := bdScenario()
	s.MortalityTable = "NO_SUCH_TABLE"
	_, err := newTestEngine().Compute(context.Background(), s)
	require.ErrorIs(t, err, domain.ErrTableNotFound)
	var nf *domain.TableNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "NO_SUCH_TABLE", nf.Code)
}

func TestComputeDegenerateAnnuityFactor(t *testing.T) {
	s := bdScenario()
	s.HorizonYears = s.RetirementAge - s.Age
	res, err := newTestEngine().Compute(context.Background(), s)
	require.NoError(t, err)
	assert.Zero(t, res.AnnuityFactor)
	assert.Zero(t, res.SustainableBenefit)
	assert.True(t, res.LowConfidence)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, domain.WarnAnnuityFactorDegenerate, res.Warnings[0].Code)
}

// exhaustedSource serves a table whose mortality is certain from age 70.
type exhaustedSource struct{}

func (exhaustedSource) Lookup(_ context.Context, code string, gender domain.Gender) (*tables.DecrementTable, error) {
	rates := make([]float64, domain.MaxAge+1)
	for age := range rates {
		rates[age] = 0.01
		if age >= 70 {
			rates[age] = 1
		}
	}
	return tables.NewDecrementTable(code, gender, 0, rates)
}

func TestComputeSurvivalExhausted(t *testing.T) {
	engine := NewEngine(tables.NewProvider(exhaustedSource{}, nil), domain.DefaultEngineSettings())

	bd := bdScenario()
	bd.RetirementAge = 80
	res, err := engine.Compute(context.Background(), bd)
	require.NoError(t, err)
	assert.True(t, res.LowConfidence)
	assert.Zero(t, res.SustainableBenefit)
	assert.Equal(t, []domain.WarningCode{domain.WarnAnnuityFactorDegenerate, domain.WarnSurvivalExhausted}, warningCodes(res))

	cd := cdScenario()
	cd.RetirementAge = 80
	res, err = engine.Compute(context.Background(), cd)
	require.NoError(t, err)
	assert.True(t, res.LowConfidence)
	assert.Zero(t, res.SustainableBenefit)
	assert.Zero(t, res.EstimatedBenefit)
	assert.Positive(t, res.AccumulatedBalanceRetirement)
	assert.Equal(t, []domain.WarningCode{domain.WarnAnnuityFactorDegenerate, domain.WarnSurvivalExhausted}, warningCodes(res))
	assert.Contains(t, res.Warnings[0].Message, "ACTUARIAL conversion produced no benefit")
}

func warningCodes(res *domain.ActuarialResult) []domain.WarningCode {
	codes := make([]domain.WarningCode, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	return codes
}

func TestTimingAndExtraPayments(t *testing.T) {
	engine := newTestEngine()
	adv, err := engine.Compute(context.Background(), bdScenario())
	require.NoError(t, err)

	arrears := bdScenario()
	arrears.PaymentTiming = domain.TimingArrears
	arr, err := engine.Compute(context.Background(), arrears)
	require.NoError(t, err)
	assert.InDelta(t, adv.VPAContributions/(1+MonthlyRate(0.05)), arr.VPAContributions, 1e-6)
	assert.Less(t, arr.VPABenefits, adv.VPABenefits)

	thirteen := bdScenario()
	thirteen.SalaryMonthsPerYear = 13
	th, err := engine.Compute(context.Background(), thirteen)
	require.NoError(t, err)
	assert.Equal(t, adv.Projection.Contribution[10], th.Projection.Contribution[10])
	assert.Equal(t, 2*adv.Projection.Contribution[11], th.Projection.Contribution[11])
	ratio := th.VPAContributions / adv.VPAContributions
	assert.Greater(t, ratio, 1.07)
	assert.Less(t, ratio, 13.0/12, "the extra salary lands in December only, not spread over the year")
}

func TestMortalityAggravationMovesLiabilities(t *testing.T) {
	engine := newTestEngine()
	base, err := engine.Compute(context.Background(), bdScenario())
	require.NoError(t, err)

	smoothed := bdScenario()
	smoothed.MortalityAggravationPct = decimal.NewFromInt(20)
	sm, err := engine.Compute(context.Background(), smoothed)
	require.NoError(t, err)

	aggravated := bdScenario()
	aggravated.MortalityAggravationPct = decimal.NewFromInt(-20)
	ag, err := engine.Compute(context.Background(), aggravated)
	require.NoError(t, err)

	assert.Greater(t, sm.VPABenefits, base.VPABenefits)
	assert.Less(t, ag.VPABenefits, base.VPABenefits)
}

func TestDisabilityModes(t *testing.T) {
	engine := newTestEngine()
	plain := bdScenario()
	plain.Gender = domain.GenderMale
	none, err := engine.Compute(context.Background(), plain)
	require.NoError(t, err)

	exit := plain
	exit.DisabilityEnabled = true
	exit.DisabilityTable = "ALVARO_VINDAS"
	ex, err := engine.Compute(context.Background(), exit)
	require.NoError(t, err)

	benefit := exit
	benefit.DisabilityEntryMode = domain.DisabilityBenefit
	bn, err := engine.Compute(context.Background(), benefit)
	require.NoError(t, err)

	assert.Less(t, ex.VPABenefits, none.VPABenefits)
	assert.Less(t, ex.VPAContributions, none.VPAContributions)
	assert.Greater(t, bn.VPABenefits, ex.VPABenefits)
	assert.Nil(t, ex.Survival.Disabled)
	assert.Len(t, bn.Survival.Disabled, bn.Survival.Months())
	assert.Contains(t, bn.Survival.Exits, DecrementDisability)
}

func TestEntryAgeNormalFunding(t *testing.T) {
	engine := newTestEngine()
	s := bdScenario()
	s.Method = domain.MethodEAN
	fresh, err := engine.Compute(context.Background(), s)
	require.NoError(t, err)
	assert.InDelta(t, 0, fresh.RMBA, 1e-6*fresh.VPABenefits, "entry at current age leaves no accrued liability")
	assert.Positive(t, fresh.NormalCost)

	s.Age = 45
	s.EntryAge = 30
	s.SalaryGrowthRate = decimal.NewFromFloat(0.01)
	vested, err := engine.Compute(context.Background(), s)
	require.NoError(t, err)
	assert.Positive(t, vested.RMBA)
	assert.Less(t, vested.RMBA, vested.VPABenefits)

	s.Method = domain.MethodPUC
	puc, err := engine.Compute(context.Background(), s)
	require.NoError(t, err)
	assert.InDelta(t, puc.VPABenefits*15/35, puc.RMBA, 1e-6)
}

func TestSolveContributionRateBD(t *testing.T) {
	engine := newTestEngine()
	res, err := engine.SolveContributionRate(context.Background(), bdScenario())
	require.NoError(t, err)
	require.NotNil(t, res.Solver)

	assert.Equal(t, domain.SolveContributionRate, res.Solver.Target)
	assert.Equal(t, domain.SolverConverged, res.Solver.Status)
	assert.Equal(t, 40.0, res.Solver.Tolerance)
	assert.LessOrEqual(t, math.Abs(res.DeficitSurplus), 40.0)
	assert.Greater(t, res.Solver.Value, 0.0)
	assert.Less(t, res.Solver.Value, 1.0)
	assert.InDelta(t, res.Solver.Value*8000, res.Projection.Contribution[1], 1e-6)
}

func TestSolveContributionRateCD(t *testing.T) {
	s := cdScenario()
	s.TargetBenefit = decimal.NewFromInt(3000)
	res, err := newTestEngine().SolveContributionRate(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, res.Solver)
	assert.Equal(t, domain.SolverConverged, res.Solver.Status)
	assert.InDelta(t, 3000, res.EstimatedBenefit, 40)

	s.TargetBenefit = decimal.Zero
	_, err = newTestEngine().SolveContributionRate(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	var ipe *domain.InvalidParameterError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "target_benefit", ipe.Field)
	assert.Equal(t, errNoTarget.Error(), ipe.Reason)
}

func TestSolveContributionRateNoBracket(t *testing.T) {
	s := bdScenario()
	s.InitialBalance = decimal.NewFromInt(100_000_000)
	res, err := newTestEngine().SolveContributionRate(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, domain.SolverNoBracket, res.Solver.Status)
	assert.Equal(t, 0.0, res.Solver.Value)
	assert.True(t, res.LowConfidence)
	assert.Equal(t, domain.WarnSolverNoBracket, res.Warnings[0].Code)
}

func TestSlogLoggerDropsDisabledLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	assert.Empty(t, buf.String())

	l.Warnf("warn %d", 3)
	assert.Contains(t, buf.String(), "msg=\"warn 3\"")
}

func TestSetLogger(t *testing.T) {
	e := newTestEngine()
	e.SetLogger(nil)
	assert.IsType(t, NopLogger{}, e.Logger)
	e.SetLogger(NewSlogLogger(nil))
	assert.IsType(t, SlogLogger{}, e.Logger)
}
