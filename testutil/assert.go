package testutil

import (
	"github.com/stretchr/testify/assert"

	"github.com/kbukum/buildprobe/runner"
)

// AssertSuccess checks that the build succeeded, printing its output if not.
func AssertSuccess(t assert.TestingT, out *runner.Outcome) bool {
	helper(t)
	if !assert.NotNil(t, out, "outcome") {
		return false
	}
	return assert.True(t, out.Success, "expected build success (exit %d)\n%s", out.ExitCode, out.Output)
}

// AssertFailure checks that the build failed.
func AssertFailure(t assert.TestingT, out *runner.Outcome) bool {
	helper(t)
	if !assert.NotNil(t, out, "outcome") {
		return false
	}
	return assert.False(t, out.Success, "expected build failure\n%s", out.Output)
}

// AssertTaskOutcome checks the outcome of the task at path, e.g. ":hello".
func AssertTaskOutcome(t assert.TestingT, out *runner.Outcome, path string, want runner.TaskOutcome) bool {
	helper(t)
	if !assert.NotNil(t, out, "outcome") {
		return false
	}
	got, ok := out.Task(path)
	if !assert.True(t, ok, "task %s did not run; ran %v", path, out.Tasks) {
		return false
	}
	return assert.Equal(t, want, got, "outcome of task %s", path)
}

// AssertOutputContains checks every string and reports each one missing.
func AssertOutputContains(t assert.TestingT, out *runner.Outcome, strs ...string) bool {
	helper(t)
	if !assert.NotNil(t, out, "outcome") {
		return false
	}
	ok := true
	for _, s := range strs {
		ok = assert.Contains(t, out.Output, s) && ok
	}
	return ok
}

func helper(t assert.TestingT) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
}
