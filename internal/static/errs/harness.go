package errs

import "errors"

var (
	// ToolMissing marks a toolchain command that could not be located.
	// Terminal for the build step that needed it; never retried.
	ToolMissing = errors.New("toolchain command not found")

	// BuildFailed marks a non-zero toolchain exit. Diagnostics carry the
	// captured stderr and stdout.
	BuildFailed = errors.New("build failed")

	// StageTimeout marks a per-process stage timeout. A hang is treated as
	// a candidate defect, not a transient fault, so it is never retried.
	StageTimeout = errors.New("stage timed out")

	MissingSourceDir = errors.New("source directory not found")
	NoSourceFiles    = errors.New("no source files found")
	NoArtifact       = errors.New("compiler artifact not built")
)

// IsToolMissing reports whether err is a missing-toolchain error.
func IsToolMissing(err error) bool {
	return errors.Is(err, ToolMissing)
}

// IsStageTimeout reports whether err is a stage timeout.
func IsStageTimeout(err error) bool {
	return errors.Is(err, StageTimeout)
}
