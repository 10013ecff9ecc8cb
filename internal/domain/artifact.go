package domain

import "github.com/google/uuid"

// BuildArtifact is an opaque handle to the compiled candidate compiler: a
// jar for Java projects, a native executable for C/C++ projects. A new
// successful build replaces the artifact wholesale; it is never partially
// mutated, so once published it is safe to share across all worker slots.
type BuildArtifact struct {
	ID       uuid.UUID
	Language Language
	Path     string
}
