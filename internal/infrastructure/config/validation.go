package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the config rules registered
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterStructValidation(validateDaemon, DaemonConfig{})
	v.RegisterStructValidation(validateFactory, FactoryConfig{})

	return &Validator{
		validate: v,
	}
}

// validateDaemon requires a snapshot cadence whenever a snapshot path is set
func validateDaemon(sl validator.StructLevel) {
	d := sl.Current().Interface().(DaemonConfig)
	if d.SnapshotPath != "" && d.SnapshotInterval <= 0 {
		sl.ReportError(d.SnapshotInterval, "SnapshotInterval", "snapshot_interval", "required_with_path", "")
	}
}

// validateFactory keeps the workforce cap reachable by the per-employee bonus
func validateFactory(sl validator.StructLevel) {
	f := sl.Current().Interface().(FactoryConfig)
	if f.BonusPerEmployee > 0 && f.MaxBonus < f.BonusPerEmployee {
		sl.ReportError(f.MaxBonus, "MaxBonus", "max_bonus", "gtefield_bonus_per_employee", "")
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Namespace(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}
