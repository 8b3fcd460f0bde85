package runner

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/spf13/afero"

	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/logger"
	"github.com/kbukum/buildprobe/workspace"
)

// mergeProperties appends supplementary tool properties to the workspace's
// config file. Existing content is never rewritten.
func (f *Factory) mergeProperties(root workspace.Path) error {
	target := root.Join(f.cfg.ConfigFile)

	if f.resources != nil && f.cfg.PropertiesResource != "" {
		data, err := fs.ReadFile(f.resources, f.cfg.PropertiesResource)
		switch {
		case err == nil:
			if err := appendText(f.fs, target, data); err != nil {
				return err
			}
			f.log.Debug("properties merged", logger.Fields(logger.FieldPath, target.String(), "source", f.cfg.PropertiesResource))
		case !stderrors.Is(err, fs.ErrNotExist):
			return errors.IO("read", f.cfg.PropertiesResource, err)
		}
	}

	if f.cfg.PropertiesPathEnv == "" {
		return nil
	}
	extra := os.Getenv(f.cfg.PropertiesPathEnv)
	if extra == "" {
		return nil
	}
	data, err := afero.ReadFile(f.fs, extra)
	if err != nil {
		return errors.IO("read", extra, err)
	}
	if err := appendText(f.fs, target, data); err != nil {
		return err
	}
	f.log.Debug("properties merged", logger.Fields(logger.FieldPath, target.String(), "source", extra))
	return nil
}

// appendText appends data to path, starting on a fresh line.
func appendText(afs afero.Fs, path workspace.Path, data []byte) error {
	existing, err := afero.ReadFile(afs, path.String())
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.IO("read", path.String(), err)
	}

	file, err := afs.OpenFile(path.String(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.IO("open", path.String(), err)
	}
	defer file.Close()

	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		if _, err := file.Write([]byte("\n")); err != nil {
			return errors.IO("append", path.String(), err)
		}
	}
	if _, err := file.Write(data); err != nil {
		return errors.IO("append", path.String(), err)
	}
	return nil
}
