package secondary

import (
	"context"
	"time"
)

// ProcessSpec describes one external program invocation: every toolchain
// step in the harness (javac, jar, cmake, gcc, the MARS simulator, the
// candidate and reference binaries) goes through this shape.
type ProcessSpec struct {
	Path    string
	Args    []string
	Dir     string
	Stdin   string
	Timeout time.Duration
}

// ProcessCapture holds everything observed from a finished process. It is
// populated even when Run returns an error so diagnostics always carry the
// raw captured output.
type ProcessCapture struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// CombinedOutput joins stderr and stdout for human-facing diagnostics.
func (c ProcessCapture) CombinedOutput() string {
	if c.Stderr == "" {
		return c.Stdout
	}
	if c.Stdout == "" {
		return c.Stderr
	}
	return c.Stderr + "\n" + c.Stdout
}

// ProcessRunner executes one external program with captured stdio under a
// hard timeout.
type ProcessRunner interface {
	Run(ctx context.Context, spec ProcessSpec) (ProcessCapture, error)
}
