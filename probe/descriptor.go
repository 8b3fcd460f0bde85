package probe

import (
	"io/fs"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/inject"
	"github.com/kbukum/buildprobe/validation"
	"github.com/kbukum/buildprobe/workspace"
)

// Fixture marks a struct as a fixture. Embed it with a tag naming the template:
//
//	probe.Fixture `probe:"template=test-project,version=8.5,dialect=kotlin"`
type Fixture struct{}

// Nested marks a grouping struct that is never staged or injected.
type Nested struct{}

var (
	fixtureType = reflect.TypeFor[Fixture]()
	nestedType  = reflect.TypeFor[Nested]()
)

// Descriptor is the type-level configuration of a fixture.
type Descriptor struct {
	// Template is the directory in the resource FS to stage.
	Template string `mapstructure:"template" validate:"required,relpath"`
	// Version pins the tool version. Empty uses the configured default.
	Version string `mapstructure:"version"`
	// Dialect selects which build-script variant survives: kotlin (default), groovy or any.
	Dialect string `mapstructure:"dialect" validate:"omitempty,oneof=kotlin groovy any"`
}

// Describer is implemented by fixtures that supply their descriptor in code.
// It takes precedence over a Fixture tag.
type Describer interface {
	FixtureDescriptor() Descriptor
}

// ResourceProvider is implemented by fixtures that bring their own templates,
// typically an embed.FS.
type ResourceProvider interface {
	Resources() fs.FS
}

// IsNested reports whether fixture embeds Nested.
func IsNested(fixture any) bool {
	t := reflect.TypeOf(fixture)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Anonymous && f.Type == nestedType {
			return true
		}
	}
	return false
}

// DescriptorOf reads and validates the descriptor of fixture.
func DescriptorOf(fixture any) (Descriptor, error) {
	if d, ok := fixture.(Describer); ok {
		return validated(d.FixtureDescriptor(), fixture)
	}

	t := reflect.TypeOf(fixture)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return Descriptor{}, errors.MissingFixtureDescriptor(typeName(fixture))
	}

	tag, ok := findFixtureTag(t)
	if !ok {
		return Descriptor{}, errors.MissingFixtureDescriptor(t.String())
	}
	d, err := parseDescriptor(tag)
	if err != nil {
		return Descriptor{}, errors.InvalidField(t.String()+".Fixture", err.Error()).WithCause(err)
	}
	return validated(d, fixture)
}

// findFixtureTag searches t and its embedded structs depth-first for a
// tagged Fixture field.
func findFixtureTag(t reflect.Type) (string, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		if f.Type == fixtureType {
			if tag, ok := f.Tag.Lookup(inject.TagName); ok {
				return tag, true
			}
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			if tag, ok := findFixtureTag(f.Type); ok {
				return tag, true
			}
		}
	}
	return "", false
}

func parseDescriptor(tag string) (Descriptor, error) {
	raw := make(map[string]string)
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		raw[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	var d Descriptor
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &d,
	})
	if err != nil {
		return Descriptor{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func validated(d Descriptor, fixture any) (Descriptor, error) {
	d.Dialect = strings.ToLower(d.Dialect)
	if err := validation.Validate(d); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return Descriptor{}, appErr.WithDetail("fixture", typeName(fixture))
		}
		return Descriptor{}, err
	}
	return d, nil
}

// dialect returns the parsed dialect, defaulting to kotlin.
func (d Descriptor) dialect() workspace.Dialect {
	dl, err := workspace.ParseDialect(d.Dialect)
	if err != nil {
		return workspace.DialectKotlin
	}
	return dl
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
