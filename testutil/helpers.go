package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/buildprobe/config"
	"github.com/kbukum/buildprobe/logger"
	"github.com/kbukum/buildprobe/probe"
	"github.com/kbukum/buildprobe/workspace"
)

// deadlineMargin is kept between the tool's context deadline and the test
// binary's own timeout.
const deadlineMargin = 5 * time.Second

// loadConfig reads buildprobe.yml, .env and BUILDPROBE_* once per test binary
// and sets up the global logger from it.
var loadConfig = sync.OnceValues(func() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging)
	return cfg, nil
})

// THelper provides testing.T integration for fixture processing.
type THelper struct {
	t    testing.TB
	ctx  context.Context
	cfg  *config.Config
	opts []probe.Option

	managerOnce sync.Once
	manager     *Manager
}

// T wraps a testing.TB.
//
// Example:
//
//	func TestCompile(t *testing.T) {
//	    var s CompileSuite
//	    testutil.T(t).Process(&s)
//	}
func T(t testing.TB) *THelper {
	return &THelper{
		t:   t,
		ctx: context.Background(),
	}
}

// WithContext sets the parent context for Context and Process.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// WithConfig replaces the loaded configuration.
func (h *THelper) WithConfig(cfg *config.Config) *THelper {
	h.cfg = cfg
	return h
}

// WithOptions adds processor options, e.g. probe.WithResources.
func (h *THelper) WithOptions(opts ...probe.Option) *THelper {
	h.opts = append(h.opts, opts...)
	return h
}

// Context returns a context that ends deadlineMargin before the test deadline,
// or the parent context when the test has none. It is canceled on cleanup.
func (h *THelper) Context() context.Context {
	ctx, cancel := context.WithCancel(h.ctx)
	if dt, ok := h.t.(interface{ Deadline() (time.Time, bool) }); ok {
		if deadline, ok := dt.Deadline(); ok {
			cancel()
			ctx, cancel = context.WithDeadline(h.ctx, deadline.Add(-deadlineMargin))
		}
	}
	h.t.Cleanup(cancel)
	return ctx
}

// Process stages and injects fixture in a directory under t.TempDir. It fails
// the test on any error. Nested fixtures yield nil.
func (h *THelper) Process(fixture any) *probe.Session {
	h.t.Helper()

	cfg := h.cfg
	if cfg == nil {
		loaded, err := loadConfig()
		require.NoError(h.t, err, "load buildprobe config")
		cfg = loaded
	}
	local := *cfg

	opts := append([]probe.Option{
		probe.WithTempDir(func() (string, error) { return h.t.TempDir(), nil }),
	}, h.opts...)

	p, err := probe.New(&local, opts...)
	require.NoError(h.t, err, "create processor")

	session, err := p.Process(h.Context(), fixture)
	require.NoError(h.t, err, "process fixture %T", fixture)
	return session
}

// RestoreAfter restores files to their snapshots when the test finishes.
func (h *THelper) RestoreAfter(files ...*workspace.RestorableFile) {
	h.managerOnce.Do(func() {
		h.manager = NewManager()
		h.t.Cleanup(func() {
			if err := h.manager.RestoreAll(); err != nil {
				h.t.Errorf("failed to restore files: %v", err)
			}
		})
	})
	h.manager.Add(files...)
}
