package process_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/buildprobe/process"
)

func TestAdapterTimeout(t *testing.T) {
	a := process.NewAdapter(process.Config{
		Name:        "sleeper",
		Timeout:     100 * time.Millisecond,
		GracePeriod: 200 * time.Millisecond,
	})
	if a.Name() != "sleeper" {
		t.Errorf("expected name 'sleeper', got %q", a.Name())
	}

	result, err := a.Run(context.Background(), process.Command{
		Binary: "sleep",
		Args:   []string{"10"},
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if result.Duration > 5*time.Second {
		t.Fatalf("process took too long to kill: %v", result.Duration)
	}
}

func TestAdapterEnv(t *testing.T) {
	a := process.NewAdapter(process.Config{Env: []string{"A_VAR=adapter", "B_VAR=adapter"}})

	result, err := a.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo $A_VAR $B_VAR"},
		Env:    []string{"B_VAR=command"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := strings.TrimSpace(string(result.Stdout)); out != "adapter command" {
		t.Fatalf("expected command env to win, got %q", out)
	}
}
