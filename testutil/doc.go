// Package testutil wires buildprobe into Go tests.
//
// # Quick Start
//
//	type HelloSuite struct {
//	    probe.Fixture `probe:"template=test-project"`
//
//	    Runner *runner.Handle            `probe:"runner"`
//	    Script *workspace.RestorableFile `probe:"file=build.gradle.kts"`
//	}
//
//	func TestHello(t *testing.T) {
//	    t.Parallel()
//	    var s HelloSuite
//	    h := testutil.T(t)
//	    h.Process(&s)
//	    h.RestoreAfter(s.Script)
//
//	    out, err := s.Runner.Run(h.Context(), "hello")
//	    require.NoError(t, err)
//	    testutil.AssertOutputContains(t, out, "OK")
//	}
//
// Workspaces live under t.TempDir, so the testing package removes them. The
// context returned by Context ends shortly before the test deadline, which
// lets a hung tool be killed and reported instead of timing out the binary.
//
// # Fake tool
//
// FakeTool writes a small shell script that behaves enough like the build tool
// for tests that must not depend on a real installation. Task behaviour is
// declared in the build script with comment lines:
//
//	// fake-task hello prints OK
//	// fake-task broken fails deliberate failure
//
// # Restoring files
//
// Manager restores a set of RestorableFiles in reverse order and reports every
// failure. THelper.RestoreAfter registers files with a per-test Manager.
package testutil
