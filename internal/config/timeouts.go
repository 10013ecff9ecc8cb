package config

import (
	"os"
	"strconv"
	"time"
)

// TimeoutConfig carries the hard per-stage timeouts. Every external process
// the harness spawns is bounded by exactly one of these; exceeding a timeout
// aborts only that stage.
type TimeoutConfig struct {
	// CandidateCompile bounds one invocation of the built candidate
	// compiler on a single case.
	CandidateCompile time.Duration
	// Mars bounds one simulator run. This is the timeout that catches an
	// infinite loop in generated assembly.
	Mars time.Duration
	// GccCompile bounds the reference compile (and the direct candidate
	// project build for C/C++ without cmake).
	GccCompile time.Duration
	// GccRun bounds one reference binary run.
	GccRun time.Duration
	// JavaCompile bounds javac over the whole candidate project.
	JavaCompile time.Duration
	// Jar bounds packaging the compiled classes.
	Jar time.Duration

	CmakeConfigure time.Duration
	CmakeBuild     time.Duration
}

func NewTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		CandidateCompile: secondsEnv("COMPILE_TIMEOUT", 60),
		Mars:             secondsEnv("MARS_TIMEOUT", 10),
		GccCompile:       secondsEnv("GCC_COMPILE_TIMEOUT", 30),
		GccRun:           secondsEnv("GCC_RUN_TIMEOUT", 120),
		JavaCompile:      secondsEnv("JAVA_COMPILE_TIMEOUT", 120),
		Jar:              secondsEnv("JAR_TIMEOUT", 30),
		CmakeConfigure:   secondsEnv("CMAKE_CONFIGURE_TIMEOUT", 120),
		CmakeBuild:       secondsEnv("CMAKE_BUILD_TIMEOUT", 600),
	}
}

func secondsEnv(key string, fallback int) time.Duration {
	varInt, err := strconv.Atoi(os.Getenv(key))
	if err != nil || varInt <= 0 {
		varInt = fallback
	}
	return time.Duration(varInt) * time.Second
}
