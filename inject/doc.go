// Package inject assigns computed values to tagged struct fields.
//
// A field opts in with a `probe` struct tag naming exactly one marker:
//
//	type BuildSuite struct {
//	    Runner *runner.Handle          `probe:"runner"`
//	    Dir    string                  `probe:"workdir"`
//	    Script *workspace.RestorableFile `probe:"file=build.gradle.kts"`
//	}
//
// A Registry maps each marker to a Provider. For every tagged, zero-valued
// field the provider returns typed Variants, and the first variant whose type
// equals the field's declared type is built and assigned. Fields whose type no
// variant matches are left untouched.
package inject
