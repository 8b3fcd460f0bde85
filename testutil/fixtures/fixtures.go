// Package fixtures embeds the template projects used by buildprobe's own tests.
//
// Templates carry "// fake-task" lines so they run under testutil.FakeTool as
// well as under the real tool.
package fixtures

import (
	"embed"
	"io/fs"
)

//go:embed all:projects
var projects embed.FS

// Template names.
const (
	// TestProject has both script dialects, a hello task printing OK and a
	// broken task that fails.
	TestProject = "test-project"
	// GroovyOnly has only a Groovy build script.
	GroovyOnly = "groovy-only"
	// MultiModule has dialect pairs in nested directories.
	MultiModule = "multi-module"
)

// PropertiesResource is the supplementary properties file at the FS root.
const PropertiesResource = "testkit-gradle.properties"

// FS returns the template tree, one directory per template.
func FS() fs.FS {
	sub, err := fs.Sub(projects, "projects")
	if err != nil {
		panic(err)
	}
	return sub
}
