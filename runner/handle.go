package runner

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/logger"
	"github.com/kbukum/buildprobe/observability"
	"github.com/kbukum/buildprobe/process"
	"github.com/kbukum/buildprobe/workspace"
)

// Handle runs the build tool against one workspace with one pinned version.
// It holds no state between calls.
type Handle struct {
	root    workspace.Path
	home    workspace.Path
	version string
	binary  string
	env     []string
	verbose []string
	adapter *process.Adapter
	metrics *observability.Metrics
	log     *logger.Logger
}

// Root returns the workspace the handle is bound to.
func (h *Handle) Root() workspace.Path { return h.root }

// Home returns the isolated tool home.
func (h *Handle) Home() workspace.Path { return h.home }

// Version returns the pinned tool version, or "" for the installed one.
func (h *Handle) Version() string { return h.version }

// Binary returns the executable the handle invokes.
func (h *Handle) Binary() string { return h.binary }

// Run executes tasks and expects the build to succeed. On failure the outcome
// is returned together with an UNEXPECTED_FAILURE error.
func (h *Handle) Run(ctx context.Context, tasks ...string) (*Outcome, error) {
	out, err := h.Invoke(ctx, tasks...)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		h.log.Error("build failed", logger.Fields(
			logger.FieldTasks, tasks,
			logger.FieldExitCode, out.ExitCode,
			"output", out.Output,
		))
		return out, errors.UnexpectedFailure(tasks, out.ExitCode).WithDetail("output", out.Output)
	}
	return out, nil
}

// RunExpectingFailure executes tasks and expects the build to fail. If it
// succeeds the outcome is returned together with an UNEXPECTED_SUCCESS error.
func (h *Handle) RunExpectingFailure(ctx context.Context, tasks ...string) (*Outcome, error) {
	out, err := h.Invoke(ctx, tasks...)
	if err != nil {
		return nil, err
	}
	if out.Success {
		return out, errors.UnexpectedSuccess(tasks).WithDetail("output", out.Output)
	}
	return out, nil
}

// Invoke executes tasks and returns the outcome whatever the build result.
// It fails only when the tool cannot be run to completion.
func (h *Handle) Invoke(ctx context.Context, tasks ...string) (out *Outcome, err error) {
	ctx, op := observability.StartOperation(ctx, observability.SpanRun,
		attribute.StringSlice(observability.AttrTasks, tasks),
		attribute.String(observability.AttrVersion, h.version),
	)
	defer func() { op.End(err) }()

	args := make([]string, 0, len(tasks)+len(h.verbose))
	args = append(args, tasks...)
	args = append(args, h.verbose...)

	h.log.Debug("invoking tool", logger.Fields(
		logger.FieldBinary, h.binary,
		logger.FieldTasks, tasks,
		logger.FieldWorkspace, h.root.String(),
	))

	result, runErr := h.adapter.Run(ctx, process.Command{
		Binary: h.binary,
		Args:   args,
		Dir:    h.root.String(),
		Env:    h.env,
	})
	if runErr != nil && !stderrors.Is(runErr, process.ErrNonZeroExit) {
		var d time.Duration
		if result != nil {
			d = result.Duration
		}
		h.metrics.RecordRun(ctx, observability.ResultError, d)
		return nil, errors.ToolExecution(h.binary, runErr).WithDetail("tasks", tasks)
	}

	out = &Outcome{
		Success:  result.Success(),
		Tasks:    ParseTasks(string(result.Output)),
		Output:   string(result.Output),
		ExitCode: result.ExitCode,
		Duration: result.Duration,
		Args:     args,
	}
	op.SetAttributes(attribute.Int(observability.AttrExitCode, out.ExitCode))

	status := observability.ResultSuccess
	if !out.Success {
		status = observability.ResultFailure
	}
	h.metrics.RecordRun(ctx, status, out.Duration)
	h.log.Debug("tool finished", logger.MergeWithDuration(logger.Fields(
		logger.FieldTasks, tasks,
		logger.FieldExitCode, out.ExitCode,
	), out.Duration))
	return out, nil
}
