package workspace

import (
	"path/filepath"
	"strings"
)

// Path is an absolute, OS-native filesystem path inside a staged workspace.
type Path string

// String returns the OS-native path.
func (p Path) String() string { return string(p) }

// Join appends slash-separated elements to p.
func (p Path) Join(elem ...string) Path {
	parts := make([]string, 0, len(elem)+1)
	parts = append(parts, string(p))
	for _, e := range elem {
		parts = append(parts, filepath.FromSlash(e))
	}
	return Path(filepath.Join(parts...))
}

// Slash returns p with forward slashes and, on Windows, a leading slash before
// the volume ("C:\a\b" becomes "/C:/a/b").
func (p Path) Slash() string {
	s := filepath.ToSlash(string(p))
	if s != "" && !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return s
}

// Base returns the last element of p.
func (p Path) Base() string { return filepath.Base(string(p)) }

// Dir returns all but the last element of p.
func (p Path) Dir() Path { return Path(filepath.Dir(string(p))) }
