package runner

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TaskOutcome is the result of a single task.
type TaskOutcome string

const (
	TaskSuccess   TaskOutcome = "SUCCESS"
	TaskFailed    TaskOutcome = "FAILED"
	TaskUpToDate  TaskOutcome = "UP_TO_DATE"
	TaskSkipped   TaskOutcome = "SKIPPED"
	TaskFromCache TaskOutcome = "FROM_CACHE"
)

// TaskResult pairs a task path with its outcome.
type TaskResult struct {
	Path    string      `json:"path"`
	Outcome TaskOutcome `json:"outcome"`
}

// Outcome is the structured result of one tool invocation.
type Outcome struct {
	Success  bool          `json:"success"`
	Tasks    []TaskResult  `json:"tasks"`
	Output   string        `json:"output"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	// Args are the arguments the tool was started with.
	Args []string `json:"args"`
}

// Task returns the outcome of the task at path (e.g. ":compileJava").
func (o *Outcome) Task(path string) (TaskOutcome, bool) {
	for _, t := range o.Tasks {
		if t.Path == path {
			return t.Outcome, true
		}
	}
	return "", false
}

// TaskPaths returns the paths of all tasks with the given outcome, in order.
func (o *Outcome) TaskPaths(outcome TaskOutcome) []string {
	var paths []string
	for _, t := range o.Tasks {
		if t.Outcome == outcome {
			paths = append(paths, t.Path)
		}
	}
	return paths
}

// AssertOutputContains reports every string missing from the console output
// in a single error. It returns nil when all are present.
func (o *Outcome) AssertOutputContains(strs ...string) error {
	var errs []error
	for _, s := range strs {
		if !strings.Contains(o.Output, s) {
			errs = append(errs, fmt.Errorf("output does not contain %q", s))
		}
	}
	return stderrors.Join(errs...)
}

var taskLine = regexp.MustCompile(`(?m)^> Task (:\S*)(?:[ \t]+(UP-TO-DATE|SKIPPED|NO-SOURCE|FROM-CACHE|FAILED))?[ \t]*\r?$`)

var outcomeBySuffix = map[string]TaskOutcome{
	"":           TaskSuccess,
	"UP-TO-DATE": TaskUpToDate,
	"SKIPPED":    TaskSkipped,
	"NO-SOURCE":  TaskSkipped,
	"FROM-CACHE": TaskFromCache,
	"FAILED":     TaskFailed,
}

// ParseTasks extracts task outcomes from plain console output. A task that
// appears more than once keeps its first position and its last outcome.
func ParseTasks(output string) []TaskResult {
	var tasks []TaskResult
	index := make(map[string]int)
	for _, m := range taskLine.FindAllStringSubmatch(output, -1) {
		path, outcome := m[1], outcomeBySuffix[m[2]]
		if i, ok := index[path]; ok {
			tasks[i].Outcome = outcome
			continue
		}
		index[path] = len(tasks)
		tasks = append(tasks, TaskResult{Path: path, Outcome: outcome})
	}
	return tasks
}
