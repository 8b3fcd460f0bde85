// Package workspace stages template projects into per-test directories and
// provides file handles that can be reverted after a test mutates them.
//
// A Stager copies a template directory out of an fs.FS (embed.FS,
// os.DirFS("testdata"), fstest.MapFS) onto an afero.Fs:
//
//	st := workspace.NewStager(afero.NewOsFs())
//	root, err := st.Stage(os.DirFS("testdata"), "test-project", t.TempDir())
//	err = st.PruneDialect(root, workspace.DialectKotlin)
//	p, err := st.ResolveExisting(root, "build.gradle.kts")
//
// RestorableFile snapshots a live file at construction:
//
//	f, err := workspace.NewRestorableFile(fs, p)
//	// ... mutate p ...
//	err = f.RestoreOriginalContent()
package workspace
