package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oNya685/SysYTest/internal/adapter/process"
	"github.com/oNya685/SysYTest/internal/config"
	"github.com/oNya685/SysYTest/internal/core/services/build"
	"github.com/oNya685/SysYTest/internal/core/services/pipeline"
	"github.com/oNya685/SysYTest/internal/core/services/schedule"
	"github.com/oNya685/SysYTest/internal/discovery"
	"github.com/oNya685/SysYTest/internal/domain"
	logger2 "github.com/oNya685/SysYTest/internal/global/logger"
	"github.com/oNya685/SysYTest/internal/output"
)

const banner = `
    +------------------------------------------------+
    |      SysY Compiler Test Framework (oNya685)    |
    |      candidate vs. MARS vs. host compiler      |
    +------------------------------------------------+
`

type matchList []string

func (m *matchList) String() string { return strings.Join(*m, ",") }

func (m *matchList) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		project  = flag.String("project", "", "candidate compiler project directory (required)")
		testsDir = flag.String("tests", "testfiles", "directory holding test libraries")
		envFile  = flag.String("env", "", "optional .env file with harness settings")
		showTime = flag.Bool("show-time", false, "print candidate compile time on PASS lines")
		match    matchList
	)
	flag.Var(&match, "match", "only run cases whose name contains this substring (repeatable)")
	flag.Parse()

	if *project == "" {
		fmt.Fprintln(os.Stderr, "usage: sysytest -project <dir> [-tests <dir>] [-match substr]...")
		return 1
	}

	initEnv(*envFile)
	cfg := config.NewSystemConfig()
	logger := logger2.Logger

	fmt.Print(banner)
	fmt.Printf("[INFO] project: %s\n", *project)

	if _, err := os.Stat(*project); err != nil {
		fmt.Printf("[ERROR] project path does not exist: %s\n", *project)
		return 1
	}

	projectCfg, err := domain.LoadProjectConfig(*project)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		return 1
	}
	fmt.Printf("[INFO] compiler language: %s, target: %s\n",
		strings.ToUpper(projectCfg.Language.String()), strings.ToUpper(projectCfg.TargetBackend))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := process.NewExecRunner()
	buildSvc := build.NewBuildService(cfg, projectCfg, runner, logger)

	diag, err := buildSvc.Build(ctx, *project)
	if err != nil {
		fmt.Printf("[ERROR] %s\n", diag)
		return 1
	}
	fmt.Printf("[INFO] %s\n", diag)

	cases, err := discovery.DiscoverAll(*testsDir)
	if err != nil {
		fmt.Printf("[ERROR] discovering tests: %v\n", err)
		return 1
	}
	cases = filterCases(cases, match)
	if len(cases) == 0 {
		fmt.Println("[WARN] no test cases found")
		return 0
	}
	fmt.Printf("[INFO] %d cases, %d parallel slots\n", len(cases), cfg.ParallelConfig.MaxWorkers)

	pool, err := schedule.NewSlotPool(cfg.WorkDir, cfg.ParallelConfig.MaxWorkers)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		return 1
	}

	pipe := pipeline.NewPipelineService(cfg, projectCfg, buildSvc, runner, logger)
	sched := schedule.NewSchedulerService(cfg.ParallelConfig, projectCfg, pool, pipe, buildSvc, logger)
	comparator := output.NewComparator()

	var passed, failed int
	total := len(cases)
	sched.RunAll(ctx, cases, func(tc domain.TestCase, result domain.TestResult, percent float64) {
		if result.Passed() {
			passed++
			suffix := ""
			if *showTime {
				suffix = fmt.Sprintf(" (compile=%dms)", result.CompileTimeMs)
			}
			fmt.Printf("[PASS] %s%s\n", tc.Name, suffix)
		} else {
			failed++
			fmt.Printf("[FAIL] %s - %s %s\n", tc.Name, result.Status, result.Message)
			if result.Status == domain.StatusFailed {
				printIndented(comparator.Diff(result.ActualOutput, result.ExpectedOutput))
			}
		}
		fmt.Printf("[INFO] progress: %d/%d (%.1f%%)\n", passed+failed, total, percent)
	})

	fmt.Printf("[INFO] done: %d passed, %d failed, %d total\n", passed, failed, total)
	if failed > 0 {
		return 1
	}
	return 0
}

// initEnv loads harness settings from a .env file. Unlike a server, a
// missing file is fine: defaults cover everything.
func initEnv(envFile string) {
	path := envFile
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if envFile != "" {
			logger2.Warn("Could not load env file", "path", path, "error", err)
		}
	}
}

func filterCases(cases []domain.TestCase, match matchList) []domain.TestCase {
	if len(match) == 0 {
		return cases
	}
	var out []domain.TestCase
	for _, tc := range cases {
		name := strings.ToLower(tc.Name)
		for _, m := range match {
			if m != "" && strings.Contains(name, strings.ToLower(m)) {
				out = append(out, tc)
				break
			}
		}
	}
	return out
}

func printIndented(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Printf("    %s\n", line)
	}
}
