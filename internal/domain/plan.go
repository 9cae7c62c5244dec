package domain

// PlanVariant is the closed set of plan designs: BDPlan or CDPlan. The
// unexported marker keeps other packages from adding cases, so a type switch
// over PlanVariant with those two cases is exhaustive.
type PlanVariant interface {
	planVariant()
}

// BDPlan carries the defined-benefit parameters of a calculation.
type BDPlan struct {
	Method                CalculationMethod
	TargetMode            BenefitTargetMode
	TargetBenefit         float64
	TargetReplacementRate float64
	IndexationRate        float64
}

// CDPlan carries the defined-contribution parameters of a calculation.
type CDPlan struct {
	AccrualRate float64
	Conversion  Conversion
}

func (BDPlan) planVariant() {}
func (CDPlan) planVariant() {}

// Conversion is the closed set of CD benefit-generation rules.
type Conversion interface {
	Mode() ConversionMode
	conversion()
}

// ActuarialConversion converts the balance into a lifetime annuity.
type ActuarialConversion struct{}

// FixedRateConversion pays a constant benefit equal to a fixed annual rate of
// the balance at retirement until the balance is exhausted.
type FixedRateConversion struct {
	AnnualRate float64
}

// PercentageConversion pays a percentage of the current balance, reset on
// every retirement anniversary, until the balance is exhausted.
type PercentageConversion struct {
	AnnualRate float64
}

// CertainPeriodConversion pays a level benefit for a fixed number of years.
type CertainPeriodConversion struct {
	Years int
}

// ActuarialFloorConversion recomputes the actuarial equivalent of the
// remaining balance on every anniversary, never paying less than Floor while
// the balance lasts.
type ActuarialFloorConversion struct {
	Floor float64
}

func (ActuarialConversion) Mode() ConversionMode      { return ConversionActuarial }
func (FixedRateConversion) Mode() ConversionMode      { return ConversionFixedRate }
func (PercentageConversion) Mode() ConversionMode     { return ConversionPercentage }
func (CertainPeriodConversion) Mode() ConversionMode  { return ConversionCertainPeriod }
func (ActuarialFloorConversion) Mode() ConversionMode { return ConversionActuarialWithFloor }

func (ActuarialConversion) conversion()      {}
func (FixedRateConversion) conversion()      {}
func (PercentageConversion) conversion()     {}
func (CertainPeriodConversion) conversion()  {}
func (ActuarialFloorConversion) conversion() {}

// Variant maps the flat input onto the plan sum type. The state must already
// carry defaults (see WithDefaults).
func (p ParticipantPlanState) Variant() (PlanVariant, error) {
	switch p.PlanType {
	case PlanTypeBD:
		return BDPlan{
			Method:                p.Method,
			TargetMode:            p.TargetMode,
			TargetBenefit:         p.TargetBenefit.InexactFloat64(),
			TargetReplacementRate: p.TargetReplacementRate.InexactFloat64(),
			IndexationRate:        p.BenefitIndexationRate.InexactFloat64(),
		}, nil
	case PlanTypeCD:
		conv, err := p.conversion()
		if err != nil {
			return nil, err
		}
		return CDPlan{AccrualRate: p.AccrualRate.InexactFloat64(), Conversion: conv}, nil
	default:
		return nil, NewInvalidParameter("plan_type", "unknown plan type %q", p.PlanType)
	}
}

func (p ParticipantPlanState) conversion() (Conversion, error) {
	switch p.ConversionMode {
	case ConversionActuarial:
		return ActuarialConversion{}, nil
	case ConversionFixedRate:
		return FixedRateConversion{AnnualRate: p.WithdrawalRate.InexactFloat64()}, nil
	case ConversionPercentage:
		return PercentageConversion{AnnualRate: p.WithdrawalRate.InexactFloat64()}, nil
	case ConversionCertainPeriod:
		return CertainPeriodConversion{Years: p.CertainPeriodYears}, nil
	case ConversionActuarialWithFloor:
		return ActuarialFloorConversion{Floor: p.BenefitFloor.InexactFloat64()}, nil
	default:
		return nil, NewInvalidParameter("conversion_mode", "unknown conversion mode %q", p.ConversionMode)
	}
}
