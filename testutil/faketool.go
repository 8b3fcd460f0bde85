package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/kbukum/buildprobe/config"
)

// FakeToolVersion is what the fake tool reports for --version.
const FakeToolVersion = "8.5"

// fakeToolScript answers --version, echoes its environment and arguments, then
// runs each task declared with a "// fake-task <name> <action> [text]" line in
// build.gradle.kts (or build.gradle). Actions: prints, fails, uptodate,
// skipped, nosource, fromcache, sleeps. An undeclared task fails the build.
const fakeToolScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo
  echo "------------------------------------------------------------"
  echo "Gradle ` + FakeToolVersion + `"
  echo "------------------------------------------------------------"
  exit 0
fi

echo "home=$GRADLE_USER_HOME"
echo "version=$PROBE_TOOL_VERSION"
echo "args=$*"
if [ -f gradle.properties ]; then
  while IFS= read -r line || [ -n "$line" ]; do
    echo "property: $line"
  done < gradle.properties
fi

script=build.gradle.kts
[ -f "$script" ] || script=build.gradle

run_task() {
  name=$1
  action=$2
  shift 2
  case "$action" in
    prints) echo "> Task :$name"; echo "$*" ;;
    fails) echo "> Task :$name FAILED"; echo "$*" >&2; return 1 ;;
    uptodate) echo "> Task :$name UP-TO-DATE" ;;
    skipped) echo "> Task :$name SKIPPED" ;;
    nosource) echo "> Task :$name NO-SOURCE" ;;
    fromcache) echo "> Task :$name FROM-CACHE" ;;
    sleeps) echo "> Task :$name"; sleep "$1" ;;
    *) echo "> Task :$name" ;;
  esac
}

set -f
status=0
for arg in "$@"; do
  case "$arg" in
    -*) continue ;;
  esac
  name=${arg#:}
  line=$(grep "^// fake-task $name " "$script" 2>/dev/null | head -n 1)
  if [ -z "$line" ]; then
    echo "Task '$name' not found in root project." >&2
    status=1
    break
  fi
  if ! run_task ${line#// fake-task }; then
    status=1
    break
  fi
done

echo
if [ "$status" -eq 0 ]; then
  echo "BUILD SUCCESSFUL"
else
  echo "FAILURE: Build failed with an exception."
  echo "BUILD FAILED"
fi
exit "$status"
`

// FakeTool writes the fake build tool into a temporary directory and returns
// its path. The test is skipped on Windows.
func FakeTool(t testing.TB) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool is a POSIX shell script")
	}
	path := filepath.Join(t.TempDir(), "fake-gradle")
	if err := os.WriteFile(path, []byte(fakeToolScript), 0o755); err != nil { //nolint:gosec // must be executable
		t.Fatalf("failed to write fake tool: %v", err)
	}
	return path
}

// FakeToolConfig returns a default configuration that runs the fake tool.
func FakeToolConfig(t testing.TB) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Tool.Binary = FakeTool(t)
	return cfg
}
