package workspace

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/kbukum/buildprobe/errors"
)

// RestorableFile pairs a live file with a snapshot of its content taken at
// construction. The snapshot belongs to the RestorableFile; the live file does
// not, and concurrent writers to it are not coordinated.
type RestorableFile struct {
	fs       afero.Fs
	path     Path
	snapshot string
	original []byte
}

// NewRestorableFile snapshots livePath into a fresh temporary directory.
func NewRestorableFile(fs afero.Fs, livePath Path) (*RestorableFile, error) {
	dir, err := afero.TempDir(fs, "", "buildprobe-snapshot-")
	if err != nil {
		return nil, errors.IO("mkdir", os.TempDir(), err)
	}
	return NewRestorableFileIn(fs, livePath, dir)
}

// NewRestorableFileIn snapshots livePath into snapshotDir under a unique name.
// snapshotDir is created if it does not exist.
func NewRestorableFileIn(fs afero.Fs, livePath Path, snapshotDir string) (*RestorableFile, error) {
	data, err := afero.ReadFile(fs, livePath.String())
	if err != nil {
		return nil, errors.IO("read", livePath.String(), err)
	}
	if err := fs.MkdirAll(snapshotDir, 0o700); err != nil {
		return nil, errors.IO("mkdir", snapshotDir, err)
	}

	snapshot := filepath.Join(snapshotDir, uuid.NewString()+"-"+livePath.Base())
	if err := afero.WriteFile(fs, snapshot, data, 0o600); err != nil {
		return nil, errors.IO("write", snapshot, err)
	}

	return &RestorableFile{
		fs:       fs,
		path:     livePath,
		snapshot: snapshot,
		original: data,
	}, nil
}

// Path returns the live file path.
func (f *RestorableFile) Path() Path { return f.path }

// Original returns a copy of the snapshot content.
func (f *RestorableFile) Original() []byte {
	return append([]byte(nil), f.original...)
}

// RestoreOriginalContent overwrites the live file with the snapshot.
// Every call restores the same content.
func (f *RestorableFile) RestoreOriginalContent() error {
	data, err := afero.ReadFile(f.fs, f.snapshot)
	if err != nil {
		return errors.IO("read snapshot", f.snapshot, err)
	}
	if err := afero.WriteFile(f.fs, f.path.String(), data, 0o644); err != nil {
		return errors.IO("restore", f.path.String(), err)
	}
	return nil
}
