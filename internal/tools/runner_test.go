package tools

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := ExecRunner{}.Run(ctx, sh, "-c", "echo out; echo err >&2; exit 3")
	if err == nil {
		t.Fatalf("expected exit error")
	}
	if res.ExitCode != 3 {
		t.Fatalf("unexpected exit code: %d", res.ExitCode)
	}
	if strings.TrimSpace(string(res.Stdout)) != "out" || strings.TrimSpace(string(res.Stderr)) != "err" {
		t.Fatalf("unexpected output: stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), "/nonexistent/coqtop-binary")
	if err == nil {
		t.Fatalf("expected error for missing binary")
	}
	if res.ExitCode != 127 {
		t.Fatalf("expected exit code 127, got %d", res.ExitCode)
	}
}
