package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// ModulePath is the module whose version is reported.
const ModulePath = "github.com/kbukum/buildprobe"

var (
	// These variables are set at build time using -ldflags
	Version   = ""
	GitCommit = ""
)

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	IsRelease bool   `json:"is_release"`
	IsDirty   bool   `json:"is_dirty"`
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetVersionInfo returns the buildprobe version. Without ldflags it is taken
// from the build info: the dependency entry when buildprobe is imported, the
// main module and VCS settings when buildprobe itself is built. "dev" when
// nothing is known.
func GetVersionInfo() *Info {
	info := &Info{Version: Version, GitCommit: GitCommit}

	if bi, ok := readBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Version == "" {
			info.Version = moduleVersion(bi)
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = setting.Value
					if len(info.GitCommit) > 7 {
						info.GitCommit = info.GitCommit[:7]
					}
				}
			case "vcs.modified":
				info.IsDirty = setting.Value == "true"
			}
		}
	}

	if info.Version == "" || info.Version == "(devel)" {
		info.Version = "dev"
	}
	info.IsRelease = info.Version != "dev" && !info.IsDirty &&
		!strings.Contains(info.Version, "dirty") && !isPseudo(info.Version)
	return info
}

func moduleVersion(bi *debug.BuildInfo) string {
	if bi.Main.Path == ModulePath {
		return bi.Main.Version
	}
	for _, dep := range bi.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return ""
}

// isPseudo reports whether v looks like a Go pseudo-version
// (v0.0.0-20240101000000-abcdef123456).
func isPseudo(v string) bool {
	parts := strings.Split(v, "-")
	if len(parts) < 3 {
		return false
	}
	ts := parts[len(parts)-2]
	if i := strings.LastIndex(ts, "."); i >= 0 {
		ts = ts[i+1:]
	}
	return len(ts) == 14 && strings.Trim(ts, "0123456789") == ""
}

// GetShortVersion returns the version, with the commit when one is known.
func GetShortVersion() string {
	info := GetVersionInfo()
	if info.GitCommit != "" {
		if info.IsDirty {
			return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
		}
		return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
	}
	return info.Version
}
