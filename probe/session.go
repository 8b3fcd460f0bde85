package probe

import (
	"context"

	"github.com/kbukum/buildprobe/runner"
	"github.com/kbukum/buildprobe/workspace"
)

// Session describes one processed fixture.
type Session struct {
	// ID is unique per Process call and tags logs and spans.
	ID         string
	Descriptor Descriptor
	Dialect    workspace.Dialect
	// TempDir is the fresh temporary root the template was staged under.
	TempDir string
	// Root is the staged workspace, TempDir/<template>.
	Root workspace.Path
	// Pruned lists the build scripts removed for the dialect.
	Pruned []workspace.Path
	Handle *runner.Handle
}

type sessionKey struct{}

func withSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the Session being injected, or nil. It is set for
// the duration of provider calls.
func SessionFromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey{}).(*Session); ok {
		return s
	}
	return nil
}
