package inject

import (
	"context"
	"reflect"
	"unsafe"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/logger"
	"github.com/kbukum/buildprobe/observability"
)

// Provider computes the variants for one injection point.
type Provider func(ctx context.Context, p Point) ([]Variant, error)

// Registry maps markers to providers. It is built for one target and is not
// safe for concurrent registration.
type Registry struct {
	order     []Marker
	providers map[Marker]Provider
	skip      map[reflect.Type]bool
	metrics   *observability.Metrics
	log       *logger.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithMarkerTypes names types whose fields are type-level markers rather than
// injection points. Their tags are ignored and they are not descended into.
func WithMarkerTypes(types ...reflect.Type) Option {
	return func(r *Registry) {
		for _, t := range types {
			r.skip[t] = true
		}
	}
}

// WithMetrics sets the instruments injections are counted on.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		providers: make(map[Marker]Provider),
		skip:      make(map[reflect.Type]bool),
		log:       logger.WithComponent("injector"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds the provider for marker. Registering a marker twice is an error.
func (r *Registry) Register(marker Marker, p Provider) error {
	if marker == "" || p == nil {
		return errors.InvalidConfig("marker and provider are required").WithDetail("marker", string(marker))
	}
	if _, dup := r.providers[marker]; dup {
		return errors.InvalidConfig("marker " + string(marker) + " is already registered").
			WithDetail("marker", string(marker))
	}
	r.order = append(r.order, marker)
	r.providers[marker] = p
	return nil
}

// Markers returns the registered markers in registration order.
func (r *Registry) Markers() []Marker {
	return append([]Marker(nil), r.order...)
}

// Points discovers the injection points of target in declaration order,
// descending depth-first into embedded structs.
func (r *Registry) Points(target any) ([]Point, error) {
	v, err := structOf(target)
	if err != nil {
		return nil, err
	}
	var points []Point
	if err := r.collect(v.Type(), nil, "", &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (r *Registry) collect(t reflect.Type, index []int, prefix string, out *[]Point) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if r.skip[f.Type] {
			continue
		}
		name := prefix + f.Name
		idx := append(append([]int(nil), index...), i)

		tag, tagged := f.Tag.Lookup(TagName)
		if !tagged {
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				if err := r.collect(f.Type, idx, name+".", out); err != nil {
					return err
				}
			}
			continue
		}

		markers, params := parseTag(tag)
		switch {
		case len(markers) == 0:
			return errors.InvalidField(name, "empty "+TagName+" tag").WithDetail("type", f.Type.String())
		case len(markers) > 1:
			names := make([]string, len(markers))
			for j, m := range markers {
				names[j] = string(m)
			}
			return errors.ConflictingMarkers(name, names).WithDetail("type", f.Type.String())
		}
		if _, ok := r.providers[markers[0]]; !ok {
			return errors.InvalidField(name, "unknown marker "+string(markers[0])).
				WithDetails(map[string]any{"marker": string(markers[0]), "type": f.Type.String()})
		}

		*out = append(*out, Point{
			Field:  name,
			Type:   f.Type,
			Marker: markers[0],
			Param:  params[0],
			index:  idx,
		})
	}
	return nil
}

// Inject assigns values to every zero-valued injection point of target, which
// must be a non-nil pointer to a struct. Tag errors are reported before any
// field is touched. A provider error stops injection; fields assigned before
// it keep their values.
func (r *Registry) Inject(ctx context.Context, target any) (err error) {
	points, err := r.Points(target)
	if err != nil {
		return err
	}
	v, _ := structOf(target)

	ctx, op := observability.StartOperation(ctx, observability.SpanInject,
		attribute.String(observability.AttrFixture, v.Type().String()),
		attribute.Int("buildprobe.points", len(points)),
	)
	defer func() { op.End(err) }()

	for _, p := range points {
		fv := v.FieldByIndex(p.index)
		if !fv.IsZero() {
			r.log.Debug("field already set, skipping", logger.Fields(logger.FieldField, p.Field, logger.FieldMarker, string(p.Marker)))
			continue
		}

		variants, err := r.providers[p.Marker](ctx, p)
		if err != nil {
			return err
		}

		variant, ok := match(variants, p.Type)
		if !ok {
			r.log.Debug("no variant for declared type, field left unset", logger.Fields(
				logger.FieldField, p.Field,
				logger.FieldMarker, string(p.Marker),
				logger.FieldType, p.Type.String(),
			))
			continue
		}

		value, err := variant.Make()
		if err != nil {
			return err
		}
		if err := assign(fv, value, p); err != nil {
			return err
		}
		r.metrics.RecordInjection(ctx, string(p.Marker))
	}
	return nil
}

func match(variants []Variant, t reflect.Type) (Variant, bool) {
	for _, v := range variants {
		if v.Type == t {
			return v, true
		}
	}
	return Variant{}, false
}

func assign(fv reflect.Value, value any, p Point) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		rv = reflect.Zero(p.Type)
	}
	if !rv.Type().AssignableTo(p.Type) {
		return errors.InvalidField(p.Field, "provider produced "+rv.Type().String()+" for "+p.Type.String()).
			WithDetail("marker", string(p.Marker))
	}
	settable(fv).Set(rv)
	return nil
}

// settable returns fv, or for unexported fields an alias of it that can be set.
func settable(fv reflect.Value) reflect.Value {
	if fv.CanSet() {
		return fv
	}
	return reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
}

func structOf(target any) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, errors.InvalidField(typeName(target), "injection target must be a non-nil pointer to a struct")
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, errors.InvalidField(typeName(target), "injection target must be a non-nil pointer to a struct")
	}
	return v, nil
}

func typeName(target any) string {
	if target == nil {
		return "<nil>"
	}
	return reflect.TypeOf(target).String()
}
