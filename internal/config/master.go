package config

import (
	"os"
	"path/filepath"
)

// AppConfig aggregates every configuration concern of the harness. It is
// constructed once in main and passed by reference into each component;
// nothing looks configuration up globally.
type AppConfig struct {
	DebugMode bool
	// WorkDir is the session-scoped scratch directory holding the build
	// output, the cmake cache and the worker slot directories.
	WorkDir string
	// MarsJar is the path to the MARS MIPS simulator jar.
	MarsJar string
	// CHeader is the runtime shim prepended to case sources for the
	// reference compile.
	CHeader string

	TimeoutConfig  *TimeoutConfig
	ParallelConfig *ParallelConfig
	ToolsConfig    *ToolsConfig
}

func NewSystemConfig() *AppConfig {
	workDir := os.Getenv("SYSY_WORK_DIR")
	if workDir == "" {
		workDir = ".tmp"
	}
	marsJar := os.Getenv("SYSY_MARS_JAR")
	if marsJar == "" {
		marsJar = "Mars.jar"
	}
	// Case processes run with a slot directory as their working directory,
	// so every path handed to them must survive the CWD change.
	workDir = absPath(workDir)
	marsJar = absPath(marsJar)
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		WorkDir:        workDir,
		MarsJar:        marsJar,
		CHeader:        CHeader(),
		TimeoutConfig:  NewTimeoutConfig(),
		ParallelConfig: NewParallelConfig(),
		ToolsConfig:    NewToolsConfig(),
	}
}

// absPath resolves p against the harness working directory. When the
// resolution itself fails the relative path is all there is to return.
func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
