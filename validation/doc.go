// Package validation validates fixture descriptors and configuration.
//
// Struct tag validation is backed by go-playground/validator and reports
// failures as INVALID_CONFIG errors:
//
//	type Descriptor struct {
//	    Template string `validate:"required,relpath"`
//	    Dialect  string `validate:"omitempty,oneof=kotlin groovy any"`
//	}
//	err := validation.Validate(d)
//
// Programmatic checks collect field errors the same way:
//
//	v := validation.New()
//	v.Required("tool.binary", cfg.Binary).Positive("tool.timeout", cfg.Timeout)
//	err := v.Validate()
package validation
