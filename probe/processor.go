package probe

import (
	"context"
	"io/fs"
	"os"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/buildprobe/config"
	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/inject"
	"github.com/kbukum/buildprobe/logger"
	"github.com/kbukum/buildprobe/observability"
	"github.com/kbukum/buildprobe/runner"
	"github.com/kbukum/buildprobe/workspace"
)

// Processor prepares fixtures: it stages the template, binds a runner and
// injects the tagged fields. A Processor is safe for concurrent use; every
// Process call works in its own temporary root with its own registry.
type Processor struct {
	cfg       *config.Config
	fs        afero.Fs
	resources fs.FS
	tempDir   func() (string, error)
	metrics   *observability.Metrics
	extra     []customProvider

	stager  *workspace.Stager
	factory *runner.Factory
	log     *logger.Logger
}

type customProvider struct {
	marker   inject.Marker
	provider inject.Provider
}

// Option configures a Processor.
type Option func(*Processor)

// WithResources sets the FS templates are staged from when the fixture does
// not implement ResourceProvider.
func WithResources(resources fs.FS) Option {
	return func(p *Processor) { p.resources = resources }
}

// WithTempDir replaces the function that creates a fresh temporary root per
// fixture. Every call must return a new, unique directory.
func WithTempDir(fn func() (string, error)) Option {
	return func(p *Processor) { p.tempDir = fn }
}

// WithFs sets the filesystem workspaces are staged onto.
func WithFs(afs afero.Fs) Option {
	return func(p *Processor) { p.fs = afs }
}

// WithMetrics sets the instruments processing is recorded on.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithProvider registers an additional marker. The provider can reach the
// fixture's Session through SessionFromContext.
func WithProvider(marker inject.Marker, provider inject.Provider) Option {
	return func(p *Processor) {
		p.extra = append(p.extra, customProvider{marker: marker, provider: provider})
	}
}

// New creates a Processor from a copy of cfg. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) (*Processor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	local := *cfg
	cfg = &local
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Processor{
		cfg:     cfg,
		fs:      afero.NewOsFs(),
		metrics: observability.DefaultMetrics(),
		log:     logger.WithComponent("processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tempDir == nil {
		p.tempDir = func() (string, error) {
			return afero.TempDir(p.fs, "", p.cfg.Workspace.TempPrefix)
		}
	}

	// Surface duplicate or reserved markers now rather than on first use.
	if _, err := p.registry(&Session{}); err != nil {
		return nil, err
	}

	p.stager = workspace.NewStager(p.fs)
	p.factory = runner.NewFactory(cfg.Tool,
		runner.WithFs(p.fs),
		runner.WithMetrics(p.metrics),
		runner.WithResources(p.resources),
	)
	return p, nil
}

// Config returns the processor's configuration.
func (p *Processor) Config() *config.Config { return p.cfg }

// Process prepares fixture, which must be a non-nil pointer to a struct.
// Fixtures embedding Nested are skipped and yield a nil Session.
func (p *Processor) Process(ctx context.Context, fixture any) (_ *Session, err error) {
	v := reflect.ValueOf(fixture)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, errors.InvalidField(typeName(fixture), "fixture must be a non-nil pointer to a struct")
	}
	typ := v.Elem().Type().String()

	if IsNested(fixture) {
		p.log.Debug("nested fixture skipped", logger.Fields("fixture", typ))
		return nil, nil
	}

	desc, err := DescriptorOf(fixture)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:         uuid.NewString(),
		Descriptor: desc,
		Dialect:    desc.dialect(),
	}
	log := p.log.WithFields(logger.Fields(
		logger.FieldSession, session.ID,
		logger.FieldTemplate, desc.Template,
	))

	ctx, op := observability.StartOperation(ctx, observability.SpanProcess,
		attribute.String(observability.AttrFixture, typ),
		attribute.String(observability.AttrTemplate, desc.Template),
		attribute.String(observability.AttrSession, session.ID),
		attribute.String(observability.AttrDialect, string(session.Dialect)),
	)
	ctx = observability.WithOperation(ctx, op)
	defer func() { op.End(err) }()

	tmp, err := p.tempDir()
	if err != nil {
		return nil, errors.IO("create temp dir", os.TempDir(), err)
	}
	session.TempDir = tmp

	resources := p.resourcesFor(fixture)
	if session.Root, err = p.stage(ctx, resources, desc.Template, tmp); err != nil {
		log.Error("staging failed", logger.ErrorFields("stage", err))
		return nil, err
	}

	if session.Pruned, err = p.stager.PruneDialect(session.Root, session.Dialect); err != nil {
		return nil, err
	}

	session.Handle, err = p.factory.ForResources(resources).Build(ctx, session.Root, desc.Version)
	if err != nil {
		return nil, err
	}

	reg, err := p.registry(session)
	if err != nil {
		return nil, err
	}
	if err := reg.Inject(withSession(ctx, session), fixture); err != nil {
		log.Error("injection failed", logger.ErrorFields("inject", err))
		return nil, err
	}

	log.Info("fixture processed", logger.MergeWithDuration(logger.Fields(
		logger.FieldWorkspace, session.Root.String(),
		logger.FieldDialect, string(session.Dialect),
		logger.FieldVersion, session.Handle.Version(),
	), op.Duration()))
	return session, nil
}

func (p *Processor) stage(ctx context.Context, resources fs.FS, template, dest string) (_ workspace.Path, err error) {
	ctx, op := observability.StartOperation(ctx, observability.SpanStage,
		attribute.String(observability.AttrTemplate, template),
	)
	start := time.Now()
	defer func() {
		op.End(err)
		p.metrics.RecordStaging(ctx, template, err)
	}()

	root, err := p.stager.Stage(resources, template, dest)
	if err != nil {
		return "", err
	}
	p.log.Debug("template staged", logger.MergeWithDuration(logger.Fields(
		logger.FieldTemplate, template,
		logger.FieldWorkspace, root.String(),
	), time.Since(start)))
	return root, nil
}

func (p *Processor) resourcesFor(fixture any) fs.FS {
	if rp, ok := fixture.(ResourceProvider); ok {
		if res := rp.Resources(); res != nil {
			return res
		}
	}
	if p.resources != nil {
		return p.resources
	}
	return os.DirFS(p.cfg.Workspace.ResourceDir)
}

// registry builds the per-fixture registry with the standard markers
// followed by any custom ones.
func (p *Processor) registry(s *Session) (*inject.Registry, error) {
	reg := inject.NewRegistry(
		inject.WithMarkerTypes(fixtureType, nestedType),
		inject.WithMetrics(p.metrics),
	)
	std := standardProviders(p.stager, s)
	for _, m := range []inject.Marker{MarkerRunner, MarkerWorkdir, MarkerFile} {
		if err := reg.Register(m, std[m]); err != nil {
			return nil, err
		}
	}
	for _, c := range p.extra {
		if err := reg.Register(c.marker, c.provider); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
