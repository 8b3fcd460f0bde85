package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/buildprobe/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("tool.binary", "gradle")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("tool.binary", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("tool.binary", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorRelativePath(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"", false},
		{".gradle-home", false},
		{"build/home", false},
		{"/abs/home", true},
		{"../escape", true},
		{"a/../../b", true},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			v := New().RelativePath("tool.home_dir", tc.value)
			if v.HasErrors() != tc.wantErr {
				t.Errorf("RelativePath(%q) errors = %v, wantErr %v", tc.value, v.Errors(), tc.wantErr)
			}
		})
	}
}

func TestValidatorPositive(t *testing.T) {
	if New().Positive("tool.timeout", time.Second).HasErrors() {
		t.Error("expected no error for positive duration")
	}
	if !New().Positive("tool.timeout", 0).HasErrors() {
		t.Error("expected error for zero duration")
	}
	if !New().Positive("tool.timeout", -time.Second).HasErrors() {
		t.Error("expected error for negative duration")
	}
}

func TestValidatorPattern(t *testing.T) {
	v := New()
	v.Pattern("tool.version_pattern", `(?m)^Gradle\s+(\S+)`)
	if v.HasErrors() {
		t.Errorf("expected no error, got %v", v.Errors())
	}

	v2 := New()
	v2.Pattern("tool.version_pattern", `Gradle\s+\S+`)
	if !v2.HasErrors() {
		t.Error("expected error for pattern without capture group")
	}

	v3 := New()
	v3.Pattern("tool.version_pattern", `(unclosed`)
	if !v3.HasErrors() {
		t.Error("expected error for invalid pattern")
	}

	// Empty value should be skipped
	v4 := New()
	v4.Pattern("tool.version_pattern", "")
	if v4.HasErrors() {
		t.Error("expected no error for empty pattern")
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New()
	v.OneOf("dialect", "kotlin", []string{"kotlin", "groovy"})
	if v.HasErrors() {
		t.Error("expected no error for valid oneOf value")
	}

	v2 := New()
	v2.OneOf("dialect", "scala", []string{"kotlin", "groovy"})
	if !v2.HasErrors() {
		t.Error("expected error for invalid oneOf value")
	}

	// Empty should be skipped
	v3 := New()
	v3.OneOf("dialect", "", []string{"kotlin"})
	if v3.HasErrors() {
		t.Error("expected no error for empty oneOf value")
	}
}

func TestValidatorCustom(t *testing.T) {
	v2 := New()
	v2.Custom(false, "field", "custom error")
	if !v2.HasErrors() {
		t.Error("expected error for false condition")
	}
	if v2.Errors()[0].Message != "custom error" {
		t.Errorf("expected 'custom error', got %q", v2.Errors()[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	v := New()
	v.Required("tool.binary", "gradle")
	if err := v.Validate(); err != nil {
		t.Errorf("expected nil for valid input, got %v", err)
	}

	v2 := New()
	v2.Required("tool.binary", "")
	v2.Required("tool.config_file", "")
	err := v2.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %s", appErr.Code)
	}
	if appErr.Details["fields"] == nil {
		t.Fatal("expected fields in details")
	}
	if !strings.Contains(appErr.Message, "tool.binary") || !strings.Contains(appErr.Message, "tool.config_file") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("tool.binary", "gradle").RelativePath("tool.home_dir", ".home").Positive("tool.timeout", time.Minute)
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

type descriptor struct {
	Template string `mapstructure:"template" validate:"required,relpath"`
	Dialect  string `mapstructure:"dialect" validate:"omitempty,oneof=kotlin groovy any"`
}

func TestStructValidateValid(t *testing.T) {
	if err := Validate(descriptor{Template: "test-project", Dialect: "groovy"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := Validate(descriptor{Template: "projects/nested"}); err != nil {
		t.Errorf("expected no error for nested template, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	tests := []struct {
		name  string
		d     descriptor
		field string
	}{
		{"missing template", descriptor{}, "template"},
		{"absolute template", descriptor{Template: "/etc"}, "template"},
		{"escaping template", descriptor{Template: "../outside"}, "template"},
		{"unknown dialect", descriptor{Template: "p", Dialect: "scala"}, "dialect"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.d)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected error to mention %q, got %q", tc.field, err.Error())
			}
		})
	}
}

func TestStructValidateNestedNamespace(t *testing.T) {
	type tool struct {
		Binary string `mapstructure:"binary" validate:"required"`
	}
	type cfg struct {
		Tool tool `mapstructure:"tool"`
	}

	err := Validate(cfg{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "tool.binary: is required") {
		t.Errorf("expected namespaced field, got %q", err.Error())
	}
}

func TestRequiredFunc(t *testing.T) {
	if err := Required("name", "value"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Required("name", ""); err == nil {
		t.Error("expected error for empty required field")
	}
}
