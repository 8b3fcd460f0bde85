// Package version reports the buildprobe module version compiled into the
// current binary.
//
// buildprobe is normally a test dependency, so the version comes from the
// dependency entry in the binary's build info. Version can still be set with
// -ldflags:
//
//	go test -ldflags "-X github.com/kbukum/buildprobe/version.Version=1.0.0" ./...
package version
