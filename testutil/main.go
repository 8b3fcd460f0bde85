package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/kbukum/buildprobe/observability"
)

// shutdownTimeout bounds the final telemetry flush.
const shutdownTimeout = 10 * time.Second

// Main runs the tests of a package with buildprobe's configuration loaded and,
// when telemetry.endpoint is set, spans and metrics exported over OTLP. Call
// it from TestMain:
//
//	func TestMain(m *testing.M) { testutil.Main(m) }
func Main(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildprobe: %v\n", err)
		return 1
	}

	shutdown, err := observability.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildprobe: telemetry: %v\n", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "buildprobe: telemetry shutdown: %v\n", err)
		}
	}()

	return m.Run()
}
