package workspace

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/logger"
)

// Stager copies templates into workspaces and inspects staged trees.
// It holds no per-workspace state and is safe for concurrent use.
type Stager struct {
	fs  afero.Fs
	log *logger.Logger
}

// NewStager creates a Stager writing to fs. A nil fs means the OS filesystem.
func NewStager(fs afero.Fs) *Stager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Stager{fs: fs, log: logger.WithComponent("stager")}
}

// Fs returns the destination filesystem.
func (s *Stager) Fs() afero.Fs { return s.fs }

// Stage copies the directory templateName from src into destinationRoot/templateName
// and returns the absolute path of the copy. Existing files are overwritten;
// src is never modified.
func (s *Stager) Stage(src fs.FS, templateName, destinationRoot string) (Path, error) {
	templateName = strings.Trim(templateName, "/")
	if !fs.ValidPath(templateName) || templateName == "." {
		return "", errors.ResourceNotFound(templateName)
	}
	info, err := fs.Stat(src, templateName)
	if err != nil || !info.IsDir() {
		return "", errors.ResourceNotFound(templateName)
	}

	dest, err := filepath.Abs(filepath.Join(destinationRoot, filepath.FromSlash(templateName)))
	if err != nil {
		return "", errors.IO("resolve", destinationRoot, err)
	}

	files := 0
	err = fs.WalkDir(src, templateName, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.IO("read", p, walkErr)
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, templateName), "/")
		target := filepath.Join(dest, filepath.FromSlash(rel))

		if d.IsDir() {
			if err := s.fs.MkdirAll(target, dirPerm(d)); err != nil {
				return errors.IO("mkdir", target, err)
			}
			return nil
		}

		data, err := fs.ReadFile(src, p)
		if err != nil {
			return errors.IO("read", p, err)
		}
		if err := afero.WriteFile(s.fs, target, data, filePerm(d)); err != nil {
			return errors.IO("write", target, err)
		}
		files++
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Debug("template staged", logger.Fields(
		logger.FieldTemplate, templateName,
		logger.FieldWorkspace, dest,
		"files", files,
	))
	return Path(dest), nil
}

// ResolveExisting joins the slash-separated relativePath onto root and checks it exists.
func (s *Stager) ResolveExisting(root Path, relativePath string) (Path, error) {
	clean := path.Clean(strings.TrimPrefix(relativePath, "./"))
	if relativePath == "" || path.IsAbs(relativePath) || !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", errors.InvalidField(relativePath, "project file path must stay inside the workspace").
			WithDetail("path", relativePath)
	}

	p := root.Join(clean)
	if _, err := s.fs.Stat(p.String()); err != nil {
		if os.IsNotExist(err) {
			return "", errors.ProjectFileNotFound(relativePath)
		}
		return "", errors.IO("stat", p.String(), err)
	}
	return p, nil
}

func dirPerm(d fs.DirEntry) os.FileMode {
	perm := os.FileMode(0o755)
	if info, err := d.Info(); err == nil && info.Mode().Perm() != 0 {
		perm = info.Mode().Perm()
	}
	return perm | 0o700
}

func filePerm(d fs.DirEntry) os.FileMode {
	perm := os.FileMode(0o644)
	if info, err := d.Info(); err == nil && info.Mode().Perm() != 0 {
		perm = info.Mode().Perm()
	}
	return perm | 0o600
}
