package runner

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/kbukum/buildprobe/config"
	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/logger"
	"github.com/kbukum/buildprobe/observability"
	"github.com/kbukum/buildprobe/process"
	"github.com/kbukum/buildprobe/workspace"
)

// Factory builds Handles bound to staged workspaces.
type Factory struct {
	cfg       config.ToolConfig
	resources fs.FS
	fs        afero.Fs
	adapter   *process.Adapter
	metrics   *observability.Metrics
	log       *logger.Logger

	ambient func() string
}

// Option configures a Factory.
type Option func(*Factory)

// WithResources sets the FS supplementary properties are read from.
func WithResources(resources fs.FS) Option {
	return func(f *Factory) { f.resources = resources }
}

// WithFs sets the filesystem workspaces live on. Defaults to the OS filesystem.
func WithFs(afs afero.Fs) Option {
	return func(f *Factory) { f.fs = afs }
}

// WithMetrics sets the instruments runs are recorded on.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *Factory) { f.metrics = m }
}

// NewFactory creates a Factory for the given tool configuration.
// Unset fields take their defaults.
func NewFactory(cfg config.ToolConfig, opts ...Option) *Factory {
	full := config.Config{Tool: cfg}
	full.ApplyDefaults()

	f := &Factory{
		cfg:     full.Tool,
		fs:      afero.NewOsFs(),
		metrics: observability.DefaultMetrics(),
		log:     logger.WithComponent("runner"),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.adapter = process.NewAdapter(process.Config{
		Name:        f.cfg.Binary,
		Timeout:     f.cfg.Timeout,
		GracePeriod: f.cfg.GracePeriod,
		Env:         envList(f.cfg.Env),
	})

	// The installed version cannot change while tests run; detect it once.
	f.ambient = sync.OnceValue(func() string { return f.detectVersion(context.Background()) })
	return f
}

// Build binds a Handle to workspaceRoot. The tool home is created under the
// workspace and supplementary properties are merged into its config file.
// versionSelector overrides the configured default version when non-empty.
// A pinned version must be mapped in Binaries or be the installed version;
// otherwise Build fails with INVALID_CONFIG.
func (f *Factory) Build(ctx context.Context, workspaceRoot workspace.Path, versionSelector string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok, err := afero.DirExists(f.fs, workspaceRoot.String()); err != nil || !ok {
		return nil, errors.IO("open workspace", workspaceRoot.String(), err)
	}

	version := f.resolveVersion(versionSelector)
	binary, err := f.binaryFor(version)
	if err != nil {
		return nil, err
	}

	home := workspaceRoot.Join(f.cfg.HomeDir)
	if err := f.fs.MkdirAll(home.String(), 0o755); err != nil {
		return nil, errors.IO("mkdir", home.String(), err)
	}

	if err := f.mergeProperties(workspaceRoot); err != nil {
		return nil, err
	}

	env := []string{f.cfg.HomeEnv + "=" + home.String()}
	if version != "" {
		env = append(env, f.cfg.VersionEnv+"="+version)
	}

	f.log.Debug("runner bound", logger.Fields(
		logger.FieldWorkspace, workspaceRoot.String(),
		logger.FieldVersion, version,
		logger.FieldBinary, binary,
	))

	return &Handle{
		root:    workspaceRoot,
		home:    home,
		version: version,
		binary:  binary,
		env:     env,
		verbose: append([]string(nil), f.cfg.VerboseArgs...),
		adapter: f.adapter,
		metrics: f.metrics,
		log:     f.log,
	}, nil
}

// ForResources returns a Factory that reads supplementary properties from
// resources and otherwise shares f's settings and detected version.
func (f *Factory) ForResources(resources fs.FS) *Factory {
	if resources == nil {
		return f
	}
	clone := *f
	clone.resources = resources
	return &clone
}

// resolveVersion picks the selector, then the configured default, then the
// installed version. Empty means whatever is installed.
func (f *Factory) resolveVersion(selector string) string {
	if v := strings.TrimSpace(selector); v != "" {
		return v
	}
	if f.cfg.DefaultVersion != "" {
		return f.cfg.DefaultVersion
	}
	if f.cfg.DetectVersion {
		return f.ambient()
	}
	return ""
}

// binaryFor returns the executable that runs version. A version without a
// Binaries entry is accepted only when it is the installed one.
func (f *Factory) binaryFor(version string) (string, error) {
	binary, mapped := f.cfg.BinaryFor(version)
	if version == "" || mapped {
		return binary, nil
	}
	installed := f.ambient()
	if installed == version {
		return binary, nil
	}
	if installed == "" {
		installed = "unknown"
	}
	return "", errors.InvalidConfig(fmt.Sprintf(
		"tool version %s has no tool.binaries entry and %s reports version %s", version, binary, installed,
	)).WithDetails(map[string]any{"version": version, "installed": installed, "binary": binary})
}

// detectVersion runs `<binary> --version` and extracts the version with VersionPattern.
func (f *Factory) detectVersion(ctx context.Context) string {
	result, err := f.adapter.Run(ctx, process.Command{
		Binary: f.cfg.Binary,
		Args:   []string{"--version"},
	})
	if err != nil {
		f.log.Warn("tool version detection failed", logger.Fields(logger.FieldBinary, f.cfg.Binary, logger.FieldError, err.Error()))
		return ""
	}
	re, err := regexp.Compile(f.cfg.VersionPattern)
	if err != nil {
		return ""
	}
	m := re.FindSubmatch(result.Output)
	if len(m) < 2 {
		f.log.Warn("tool version not recognized", logger.Fields(logger.FieldBinary, f.cfg.Binary))
		return ""
	}
	return string(m[1])
}

// envList renders env as KEY=value entries sorted by key. Keys are upper-cased
// because the config loader folds map keys to lower case.
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.ToUpper(k)+"="+env[k])
	}
	return out
}
