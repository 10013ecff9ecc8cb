package build

import (
	"context"

	"github.com/oNya685/SysYTest/internal/domain"
)

// IBuildService compiles the candidate compiler project into a runnable
// artifact, dispatching on the project's declared language.
type IBuildService interface {
	// Build compiles the project once for this session. The returned
	// diagnostic is human-readable text: a summary on success, the
	// captured toolchain output on failure. Errors are terminal until the
	// next successful Build.
	Build(ctx context.Context, projectRoot string) (string, error)

	// Artifact returns the current build artifact, or nil when no build
	// has succeeded yet. The artifact is read-only and safe to share
	// across worker slots.
	Artifact() *domain.BuildArtifact
}
