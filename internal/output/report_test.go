package output_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/actuarial-engine/internal/calculation"
	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/internal/output"
)

func computeCD(t *testing.T) (domain.ParticipantPlanState, *domain.ActuarialResult) {
	t.Helper()
	state := domain.ParticipantPlanState{
		Age:              35,
		Gender:           domain.GenderMale,
		Salary:           decimal.NewFromInt(6000),
		PlanType:         domain.PlanTypeCD,
		RetirementAge:    60,
		ContributionRate: decimal.NewFromFloat(0.12),
		AccrualRate:      decimal.NewFromFloat(0.04),
		MortalityTable:   "BR_EMS_2021",
		DiscountRate:     decimal.NewFromFloat(0.04),
		ConversionMode:   domain.ConversionActuarial,
	}
	eng := calculation.NewEngine(nil, domain.DefaultEngineSettings())
	res, err := eng.Compute(context.Background(), state)
	require.NoError(t, err)
	res.Assumptions = output.GenerateAssumptions(state)
	return state, res
}

func TestGenerateReportAllFormats(t *testing.T) {
	_, res := computeCD(t)
	for _, name := range output.AvailableFormatterNames() {
		var buf bytes.Buffer
		require.NoError(t, output.GenerateReport(&buf, res, name), name)
		assert.NotEmpty(t, buf.Bytes(), name)
	}

	var buf bytes.Buffer
	require.NoError(t, output.GenerateReport(&buf, res, "console"))
	assert.Contains(t, buf.String(), "Mortality table: BR_EMS_2021 (MALE)")
	assert.Contains(t, buf.String(), "Balance accrual: 4.00% a year")
}

func TestUnknownFormatErrorIncludesSuggestions(t *testing.T) {
	_, res := computeCD(t)
	err := output.GenerateReport(&bytes.Buffer{}, res, "definitely-not-a-format")
	require.Error(t, err)
	assert.ErrorIs(t, err, output.ErrUnsupportedFormat)
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "Try one of:") && strings.Contains(msg, "csv-monthly"), msg)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "csv", output.Extension("monthly"))
	assert.Equal(t, "csv", output.Extension("csv"))
	assert.Equal(t, "json", output.Extension("JSON"))
	assert.Equal(t, "txt", output.Extension("console"))
}

func TestGenerateAssumptionsOptionalLines(t *testing.T) {
	state, _ := computeCD(t)
	base := output.GenerateAssumptions(state)
	assert.Len(t, base, 5)

	state.MortalityAggravationPct = decimal.NewFromInt(-10)
	state.BenefitLoading = decimal.NewFromFloat(0.01)
	state.AdministrativeFee = decimal.RequireFromString("1234.5")
	state.DisabilityEnabled = true
	state.DisabilityTable = "ALVARO_VINDAS"
	lines := output.GenerateAssumptions(state)
	assert.Len(t, lines, 8)
	assert.Contains(t, lines, "Mortality adjustment: -10.0%")
	assert.Contains(t, lines, "Fees: contribution loading 0.00%, administrative fee R$ 1.234,50 per period, benefit loading 1.00%")
	assert.Contains(t, lines, "Disability: ALVARO_VINDAS, entry mode EXIT")
}

func TestGenerateAssumptionsRetirementDate(t *testing.T) {
	state, _ := computeCD(t)
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	state.BirthDate = &birth
	lines := output.GenerateAssumptions(state)
	assert.Contains(t, lines, "Retirement date: 2050-06")

	valuation := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	state.ValuationDate = &valuation
	lines = output.GenerateAssumptions(state)
	assert.Contains(t, lines, "Retirement date: 2050-06 (age 35.00 at valuation, 300 months to go)")
}
