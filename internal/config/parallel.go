package config

import (
	"os"
	"strconv"
	"time"
)

// ParallelConfig drives the scheduler: slot count and the admission
// ramp-up policy for large suites.
type ParallelConfig struct {
	// MaxWorkers is the slot count, bounding concurrent cases.
	MaxWorkers int
	// RampUpWindow is the total time across which task submission is
	// spread when the suite is at or above RampUpThreshold cases.
	RampUpWindow time.Duration
	// RampUpThreshold is the case count at which ramp-up kicks in;
	// smaller suites are submitted immediately.
	RampUpThreshold int
}

func NewParallelConfig() *ParallelConfig {
	workers, err := strconv.Atoi(os.Getenv("MAX_WORKERS"))
	if err != nil || workers <= 0 {
		workers = 4
	}
	threshold, err := strconv.Atoi(os.Getenv("RAMP_UP_THRESHOLD"))
	if err != nil || threshold <= 0 {
		threshold = 64
	}
	return &ParallelConfig{
		MaxWorkers:      workers,
		RampUpWindow:    secondsEnv("RAMP_UP_SEC", 5),
		RampUpThreshold: threshold,
	}
}
