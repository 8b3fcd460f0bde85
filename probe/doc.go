// Package probe turns a test fixture struct into a wired test instance.
//
// A fixture names its template by embedding Fixture with a struct tag, and
// asks for values with field tags:
//
//	type CompileSuite struct {
//	    probe.Fixture `probe:"template=test-project,dialect=groovy"`
//
//	    Runner *runner.Handle            `probe:"runner"`
//	    Root   workspace.Path            `probe:"workdir"`
//	    Script *workspace.RestorableFile `probe:"file=build.gradle"`
//	}
//
// Processor.Process stages the template into a fresh directory, prunes the
// unused build-script dialect, binds a runner handle and injects the fields.
// Fixtures that embed Nested are grouping types and are skipped.
package probe
