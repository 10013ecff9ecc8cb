package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"SYSY_WORK_DIR", "SYSY_MARS_JAR", "DEBUG_MODE",
		"COMPILE_TIMEOUT", "MARS_TIMEOUT", "MAX_WORKERS",
		"RAMP_UP_SEC", "RAMP_UP_THRESHOLD",
		"JDK_HOME", "GCC_PATH", "CMAKE_PATH", "C_HEADER_FILE",
	} {
		t.Setenv(key, "")
	}

	cwd, err := os.Getwd()
	require.NoError(t, err)

	cfg := NewSystemConfig()
	assert.Equal(t, filepath.Join(cwd, ".tmp"), cfg.WorkDir)
	assert.Equal(t, filepath.Join(cwd, "Mars.jar"), cfg.MarsJar)
	assert.False(t, cfg.DebugMode)
	assert.Equal(t, 60*time.Second, cfg.TimeoutConfig.CandidateCompile)
	assert.Equal(t, 10*time.Second, cfg.TimeoutConfig.Mars)
	assert.Equal(t, 4, cfg.ParallelConfig.MaxWorkers)
	assert.Equal(t, 5*time.Second, cfg.ParallelConfig.RampUpWindow)
	assert.Equal(t, 64, cfg.ParallelConfig.RampUpThreshold)
	assert.Contains(t, cfg.CHeader, "int getint()")
}

func TestNewSystemConfigOverrides(t *testing.T) {
	t.Setenv("SYSY_WORK_DIR", "/tmp/scratch")
	t.Setenv("SYSY_MARS_JAR", "/opt/mars/Mars.jar")
	t.Setenv("DEBUG_MODE", "true")
	t.Setenv("COMPILE_TIMEOUT", "5")
	t.Setenv("MAX_WORKERS", "16")
	t.Setenv("RAMP_UP_THRESHOLD", "100")

	cfg := NewSystemConfig()
	assert.Equal(t, "/tmp/scratch", cfg.WorkDir)
	assert.Equal(t, "/opt/mars/Mars.jar", cfg.MarsJar)
	assert.True(t, cfg.DebugMode)
	assert.Equal(t, 5*time.Second, cfg.TimeoutConfig.CandidateCompile)
	assert.Equal(t, 16, cfg.ParallelConfig.MaxWorkers)
	assert.Equal(t, 100, cfg.ParallelConfig.RampUpThreshold)
}

// Case processes run with a slot directory as CWD; relative work-dir or
// jar paths would resolve against the wrong directory there.
func TestNewSystemConfigResolvesRelativePaths(t *testing.T) {
	t.Setenv("SYSY_WORK_DIR", "scratch/.tmp")
	t.Setenv("SYSY_MARS_JAR", "tools/Mars.jar")

	cwd, err := os.Getwd()
	require.NoError(t, err)

	cfg := NewSystemConfig()
	assert.True(t, filepath.IsAbs(cfg.WorkDir))
	assert.True(t, filepath.IsAbs(cfg.MarsJar))
	assert.Equal(t, filepath.Join(cwd, "scratch", ".tmp"), cfg.WorkDir)
	assert.Equal(t, filepath.Join(cwd, "tools", "Mars.jar"), cfg.MarsJar)
}

func TestSecondsEnvRejectsGarbage(t *testing.T) {
	t.Setenv("MARS_TIMEOUT", "not-a-number")
	assert.Equal(t, 10*time.Second, secondsEnv("MARS_TIMEOUT", 10))

	t.Setenv("MARS_TIMEOUT", "-3")
	assert.Equal(t, 10*time.Second, secondsEnv("MARS_TIMEOUT", 10))

	t.Setenv("MARS_TIMEOUT", "0")
	assert.Equal(t, 10*time.Second, secondsEnv("MARS_TIMEOUT", 10))
}

func TestToolsConfigJDKHome(t *testing.T) {
	tools := &ToolsConfig{}
	assert.Equal(t, "javac", tools.Javac())
	assert.Equal(t, "java", tools.Java())
	assert.Equal(t, "jar", tools.Jar())
	assert.Equal(t, "g++", tools.GCC())
	assert.Equal(t, "cmake", tools.CMake())

	tools = &ToolsConfig{JDKHome: "/opt/jdk", GCCPath: "/usr/bin/g++-12", CMakePath: "/opt/cmake/bin/cmake"}
	assert.Equal(t, filepath.Join("/opt/jdk", "bin", "javac"), tools.Javac())
	assert.Equal(t, filepath.Join("/opt/jdk", "bin", "java"), tools.Java())
	assert.Equal(t, "/usr/bin/g++-12", tools.GCC())
	assert.Equal(t, "/opt/cmake/bin/cmake", tools.CMake())
}

func TestCHeaderFileOverride(t *testing.T) {
	shim := filepath.Join(t.TempDir(), "shim.c")
	require.NoError(t, os.WriteFile(shim, []byte("int getint(void);\n"), 0o644))
	t.Setenv("C_HEADER_FILE", shim)
	assert.Equal(t, "int getint(void);\n", CHeader())

	t.Setenv("C_HEADER_FILE", filepath.Join(t.TempDir(), "missing.c"))
	assert.Equal(t, defaultCHeader, CHeader())
}
