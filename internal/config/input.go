package config

import (
	"fmt"
	"os"

	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML (or JSON) file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a configuration document. Defaults are applied
// to the participant and engine settings before validation.
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.Participant = config.Participant.WithDefaults()
	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	config.Engine = config.Engine.Merge()

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration. The participant
// is checked with defaults applied; config itself is not modified.
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := config.Participant.WithDefaults().Validate(); err != nil {
		return err
	}
	return ip.validateEngine(&config.Engine)
}

// validateEngine rejects settings that would make the solver meaningless.
// Zero values are allowed and replaced by defaults.
func (ip *InputParser) validateEngine(settings *domain.EngineSettings) error {
	if settings.MaxIterations < 0 || settings.MaxIterations > 10000 {
		return fmt.Errorf("max_iterations must be between 0 and 10000, got %d", settings.MaxIterations)
	}
	if settings.AbsoluteTolerance < 0 {
		return fmt.Errorf("absolute_tolerance cannot be negative")
	}
	if settings.RelativeTolerance < 0 || settings.RelativeTolerance >= 1 {
		return fmt.Errorf("relative_tolerance must be in [0, 1), got %v", settings.RelativeTolerance)
	}
	if settings.TablesDir != "" {
		info, err := os.Stat(settings.TablesDir)
		if err != nil {
			return fmt.Errorf("tables_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("tables_dir %s is not a directory", settings.TablesDir)
		}
	}
	return nil
}

// CreateExampleConfiguration returns the reference BD valuation: a 30 year
// old earning 8,000 a month, retiring at 65 with a 5,000 target benefit.
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	return &domain.Configuration{
		Participant: domain.ParticipantPlanState{
			Age:                   30,
			Gender:                domain.GenderFemale,
			Salary:                decimal.NewFromInt(8000),
			PlanType:              domain.PlanTypeBD,
			RetirementAge:         65,
			ContributionRate:      decimal.NewFromFloat(0.08),
			TargetMode:            domain.TargetModeValue,
			TargetBenefit:         decimal.NewFromInt(5000),
			MortalityTable:        "BR_EMS_2021",
			DiscountRate:          decimal.NewFromFloat(0.05),
			SalaryGrowthRate:      decimal.NewFromFloat(0.01),
			BenefitIndexationRate: decimal.Zero,
			PaymentTiming:         domain.TimingAdvance,
			SalaryMonthsPerYear:   13,
			BenefitMonthsPerYear:  13,
			ExtraSalaryMonths:     []int{12},
			ExtraBenefitMonths:    []int{12},
			ContributionLoading:   decimal.NewFromFloat(0.02),
			Method:                domain.MethodPUC,
		},
		Engine: domain.DefaultEngineSettings(),
	}
}

// MarshalExample encodes CreateExampleConfiguration as YAML.
func (ip *InputParser) MarshalExample() ([]byte, error) {
	data, err := yaml.Marshal(ip.CreateExampleConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to encode example: %w", err)
	}
	return data, nil
}

// WriteExample writes CreateExampleConfiguration as YAML to filename.
func (ip *InputParser) WriteExample(filename string) error {
	data, err := ip.MarshalExample()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}
