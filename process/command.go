package process

import "time"

// Command is one invocation of an external tool.
type Command struct {
	// Binary is an absolute path or a name looked up in PATH.
	Binary string
	Args   []string
	// Dir is the working directory, typically a staged workspace root.
	Dir string
	// Env entries (KEY=value) are applied over the inherited environment;
	// an entry replaces any inherited variable of the same name.
	Env []string
	// GracePeriod is how long a canceled process gets between SIGTERM and
	// SIGKILL. Zero means 5s.
	GracePeriod time.Duration
}
