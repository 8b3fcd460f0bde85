package probe

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/inject"
	"github.com/kbukum/buildprobe/runner"
	"github.com/kbukum/buildprobe/workspace"
)

// Standard markers.
const (
	// MarkerRunner injects the *runner.Handle bound to the workspace.
	MarkerRunner inject.Marker = "runner"
	// MarkerWorkdir injects the workspace root as workspace.Path or as a
	// slash-separated string.
	MarkerWorkdir inject.Marker = "workdir"
	// MarkerFile injects file=<rel> as workspace.Path, slash-separated string
	// or *workspace.RestorableFile. The file must exist.
	MarkerFile inject.Marker = "file"
)

// snapshotDir holds RestorableFile snapshots, beside the workspace rather than in it.
const snapshotDir = ".snapshots"

func standardProviders(stager *workspace.Stager, s *Session) map[inject.Marker]inject.Provider {
	return map[inject.Marker]inject.Provider{
		MarkerRunner: func(context.Context, inject.Point) ([]inject.Variant, error) {
			return []inject.Variant{inject.Value[*runner.Handle](s.Handle)}, nil
		},
		MarkerWorkdir: func(context.Context, inject.Point) ([]inject.Variant, error) {
			return []inject.Variant{
				inject.Value(s.Root),
				inject.Value(s.Root.Slash()),
			}, nil
		},
		MarkerFile: func(_ context.Context, p inject.Point) ([]inject.Variant, error) {
			if p.Param == "" {
				return nil, errors.InvalidField(p.Field, "file marker needs a relative path, e.g. file=build.gradle.kts")
			}
			// Resolved only once a variant matches the declared type, so an
			// unmatched field never fails on a missing file.
			resolve := sync.OnceValues(func() (workspace.Path, error) {
				path, err := stager.ResolveExisting(s.Root, p.Param)
				if err != nil {
					if appErr, ok := errors.AsAppError(err); ok {
						return "", appErr.WithDetail("field", p.Field)
					}
					return "", err
				}
				return path, nil
			})
			return []inject.Variant{
				inject.Of(resolve),
				inject.Of(func() (string, error) {
					path, err := resolve()
					return path.Slash(), err
				}),
				inject.Of(func() (*workspace.RestorableFile, error) {
					path, err := resolve()
					if err != nil {
						return nil, err
					}
					return workspace.NewRestorableFileIn(stager.Fs(), path, filepath.Join(s.TempDir, snapshotDir))
				}),
			}, nil
		},
	}
}
