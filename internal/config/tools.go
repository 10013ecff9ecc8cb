package config

import (
	"os"
	"path/filepath"
)

// ToolsConfig locates the external toolchain. Empty paths mean "resolve the
// bare command name through the process search path".
type ToolsConfig struct {
	// JDKHome is the JDK installation directory; java/javac/jar are taken
	// from its bin/ subdirectory when set.
	JDKHome string
	// GCCPath is the host C/C++ compiler used for the reference build and
	// the direct candidate project build.
	GCCPath string
	// CMakePath is the cmake executable for cmake-based candidate projects.
	CMakePath string
}

func NewToolsConfig() *ToolsConfig {
	return &ToolsConfig{
		JDKHome:   os.Getenv("JDK_HOME"),
		GCCPath:   os.Getenv("GCC_PATH"),
		CMakePath: os.Getenv("CMAKE_PATH"),
	}
}

func (t *ToolsConfig) jdkTool(name string) string {
	if t.JDKHome != "" {
		return filepath.Join(t.JDKHome, "bin", name)
	}
	return name
}

// Java returns the java launcher command.
func (t *ToolsConfig) Java() string { return t.jdkTool("java") }

// Javac returns the java compiler command.
func (t *ToolsConfig) Javac() string { return t.jdkTool("javac") }

// Jar returns the jar packaging command.
func (t *ToolsConfig) Jar() string { return t.jdkTool("jar") }

// GCC returns the host C/C++ compiler command.
func (t *ToolsConfig) GCC() string {
	if t.GCCPath != "" {
		return t.GCCPath
	}
	return "g++"
}

// CMake returns the cmake command.
func (t *ToolsConfig) CMake() string {
	if t.CMakePath != "" {
		return t.CMakePath
	}
	return "cmake"
}
