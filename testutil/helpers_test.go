package testutil_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/buildprobe/probe"
	"github.com/kbukum/buildprobe/runner"
	"github.com/kbukum/buildprobe/testutil"
	"github.com/kbukum/buildprobe/testutil/fixtures"
	"github.com/kbukum/buildprobe/workspace"
)

type helloSuite struct {
	probe.Fixture `probe:"template=test-project"`

	Runner *runner.Handle            `probe:"runner"`
	Script *workspace.RestorableFile `probe:"file=build.gradle.kts"`
}

func helper(t *testing.T) *testutil.THelper {
	return testutil.T(t).
		WithConfig(testutil.FakeToolConfig(t)).
		WithOptions(probe.WithResources(fixtures.FS()))
}

func TestProcessUnderTempDir(t *testing.T) {
	t.Parallel()

	var s helloSuite
	session := helper(t).Process(&s)
	require.NotNil(t, session)
	require.NotNil(t, s.Runner)
	assert.Equal(t, session.Root, s.Runner.Root())
	assert.DirExists(t, session.TempDir)
}

func TestProcessNestedReturnsNil(t *testing.T) {
	t.Parallel()

	var s struct {
		probe.Nested
		Runner *runner.Handle `probe:"runner"`
	}
	assert.Nil(t, helper(t).Process(&s))
	assert.Nil(t, s.Runner)
}

func TestRestoreAfter(t *testing.T) {
	var s helloSuite
	h := helper(t)
	h.Process(&s)

	path := s.Script.Path().String()
	original := s.Script.Original()
	// Registered before RestoreAfter, so it runs after the restore.
	t.Cleanup(func() {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, string(original), string(data))
	})
	h.RestoreAfter(s.Script)

	require.NoError(t, os.WriteFile(path, []byte("broken on purpose"), 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "broken on purpose", string(data))
}

func TestContextEndsBeforeDeadline(t *testing.T) {
	t.Parallel()

	ctx := testutil.T(t).Context()
	deadline, hasDeadline := t.Deadline()
	got, ok := ctx.Deadline()
	if !hasDeadline {
		assert.False(t, ok, "expected no deadline without -timeout")
		return
	}
	require.True(t, ok)
	assert.True(t, got.Before(deadline))
}

func TestContextUsesParent(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx := testutil.T(t).WithContext(parent).Context()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected context derived from parent")
	}
}

func TestAssertions(t *testing.T) {
	t.Parallel()

	var s helloSuite
	h := helper(t)
	h.Process(&s)

	out, err := s.Runner.Run(h.Context(), "hello", "compileJava", "check")
	require.NoError(t, err)
	testutil.AssertSuccess(t, out)
	testutil.AssertTaskOutcome(t, out, ":hello", runner.TaskSuccess)
	testutil.AssertTaskOutcome(t, out, ":compileJava", runner.TaskUpToDate)
	testutil.AssertTaskOutcome(t, out, ":check", runner.TaskSkipped)
	testutil.AssertOutputContains(t, out, "OK", "BUILD SUCCESSFUL")

	failed, err := s.Runner.RunExpectingFailure(h.Context(), "broken")
	require.NoError(t, err)
	testutil.AssertFailure(t, failed)
	testutil.AssertTaskOutcome(t, failed, ":broken", runner.TaskFailed)
}

func TestAssertionsReportMisses(t *testing.T) {
	t.Parallel()

	mock := &recordingT{}
	out := &runner.Outcome{Success: false, Output: "only this"}

	assert.False(t, testutil.AssertSuccess(mock, out))
	assert.False(t, testutil.AssertOutputContains(mock, out, "only", "missing", "also missing"))
	assert.False(t, testutil.AssertTaskOutcome(mock, out, ":hello", runner.TaskSuccess))
	assert.False(t, testutil.AssertFailure(mock, nil))
	assert.Len(t, mock.errors, 5)
}

type recordingT struct {
	errors []string
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}
