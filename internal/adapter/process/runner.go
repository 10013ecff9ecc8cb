// Package process runs external toolchain programs with captured stdio
// under hard per-stage timeouts.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/oNya685/SysYTest/internal/core/ports/secondary"
	"github.com/oNya685/SysYTest/internal/static/errs"
)

var _ secondary.ProcessRunner = (*ExecRunner)(nil)

// ExecRunner is the os/exec implementation of the ProcessRunner port.
// The zero value is ready to use.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes spec.Path with spec.Args in spec.Dir, feeding spec.Stdin to
// the process and capturing stdout and stderr. The process is killed when
// spec.Timeout elapses; in-flight output captured up to that point is still
// returned.
//
// A non-zero exit is not an error: the capture carries the exit code and
// callers decide what it means for their stage. Errors are reserved for a
// missing command (errs.ToolMissing), a timeout (errs.StageTimeout) and
// launch failures.
func (r *ExecRunner) Run(ctx context.Context, spec secondary.ProcessSpec) (secondary.ProcessCapture, error) {
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdin = strings.NewReader(spec.Stdin)
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	capture := secondary.ProcessCapture{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		capture.TimedOut = true
		capture.ExitCode = -1
		return capture, fmt.Errorf("%s after %s: %w", spec.Path, spec.Timeout, errs.StageTimeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			capture.ExitCode = exitErr.ExitCode()
			return capture, nil
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			capture.ExitCode = -1
			return capture, fmt.Errorf("%s: %w", spec.Path, errs.ToolMissing)
		}
		capture.ExitCode = -1
		return capture, fmt.Errorf("running %s: %w", spec.Path, err)
	}

	return capture, nil
}
