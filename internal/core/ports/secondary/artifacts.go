package secondary

import "github.com/oNya685/SysYTest/internal/domain"

// ArtifactSource exposes the current build artifact to the scheduler and
// pipeline. Returns nil until a build has succeeded this session.
type ArtifactSource interface {
	Artifact() *domain.BuildArtifact
}
