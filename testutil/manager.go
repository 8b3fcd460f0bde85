package testutil

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/buildprobe/workspace"
)

// Manager restores a group of RestorableFiles together.
type Manager struct {
	files []*workspace.RestorableFile
	mu    sync.RWMutex
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{files: make([]*workspace.RestorableFile, 0)}
}

// Add registers files with the manager. Nil entries are ignored.
func (m *Manager) Add(files ...*workspace.RestorableFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range files {
		if f != nil {
			m.files = append(m.files, f)
		}
	}
}

// Files returns all registered files.
func (m *Manager) Files() []*workspace.RestorableFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*workspace.RestorableFile, len(m.files))
	copy(result, m.files)
	return result
}

// Get returns the file registered for the given live path, or nil.
func (m *Manager) Get(path workspace.Path) *workspace.RestorableFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.files {
		if f.Path() == path {
			return f
		}
	}
	return nil
}

// RestoreAll restores every file, last registered first. It keeps going after
// a failure and returns all failures joined.
func (m *Manager) RestoreAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for i := len(m.files) - 1; i >= 0; i-- {
		f := m.files[i]
		if err := f.RestoreOriginalContent(); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", f.Path(), err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Cleanup is an alias for RestoreAll, convenient with defer or t.Cleanup.
func (m *Manager) Cleanup() error {
	return m.RestoreAll()
}
