package inject

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag key read by the injector.
const TagName = "probe"

// Marker names a kind of injection point.
type Marker string

// Point is one tagged field discovered on a target.
type Point struct {
	// Field is the dotted field path from the target, e.g. "Base.Script".
	Field string
	// Type is the field's declared type.
	Type reflect.Type
	// Marker is the marker kind from the tag.
	Marker Marker
	// Param is the text after "=" in the tag, or "".
	Param string

	index []int
}

func (p Point) String() string {
	if p.Param != "" {
		return fmt.Sprintf("%s (%s=%s %s)", p.Field, p.Marker, p.Param, p.Type)
	}
	return fmt.Sprintf("%s (%s %s)", p.Field, p.Marker, p.Type)
}

// Variant is one typed value a provider can produce. Make is called only when
// the variant is selected.
type Variant struct {
	Type reflect.Type
	Make func() (any, error)
}

// Of builds a Variant for T.
func Of[T any](build func() (T, error)) Variant {
	return Variant{
		Type: reflect.TypeFor[T](),
		Make: func() (any, error) {
			v, err := build()
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Value builds a Variant that always yields v.
func Value[T any](v T) Variant {
	return Of(func() (T, error) { return v, nil })
}

// parseTag splits a tag into its markers and parameters.
func parseTag(tag string) (markers []Marker, params []string) {
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, param, _ := strings.Cut(part, "=")
		markers = append(markers, Marker(strings.TrimSpace(name)))
		params = append(params, strings.TrimSpace(param))
	}
	return markers, params
}
