package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oNya685/SysYTest/internal/config"
	"github.com/oNya685/SysYTest/internal/core/ports/primary"
	"github.com/oNya685/SysYTest/internal/core/ports/secondary"
	"github.com/oNya685/SysYTest/internal/domain"
	"github.com/oNya685/SysYTest/internal/output"
	"github.com/oNya685/SysYTest/internal/static/errs"
)

const (
	// File names the candidate compiler contract fixes inside a slot: it
	// reads testfile.txt from its working directory and must emit mips.txt.
	caseFileName     = "testfile.txt"
	assemblyFileName = "mips.txt"

	refSourceName = "tmp_test.c"
	refBinaryName = "tmp_test"
)

var _ IPipelineService = (*PipelineService)(nil)

// PipelineService implements IPipelineService. Stage timeouts are taken
// from the session configuration. Stage contexts are derived from
// context.Background: suite cancellation must not kill in-flight stages,
// they run to completion or hit their own timeout.
type PipelineService struct {
	cfg        *config.AppConfig
	project    domain.CompilerProjectConfig
	artifacts  secondary.ArtifactSource
	runner     secondary.ProcessRunner
	comparator *output.Comparator
	logger     primary.Logger
}

func NewPipelineService(
	cfg *config.AppConfig,
	project domain.CompilerProjectConfig,
	artifacts secondary.ArtifactSource,
	runner secondary.ProcessRunner,
	logger primary.Logger,
) *PipelineService {
	return &PipelineService{
		cfg:        cfg,
		project:    project,
		artifacts:  artifacts,
		runner:     runner,
		comparator: output.NewComparator(),
		logger:     logger,
	}
}

// Run executes the four-stage pipeline for one case. Re-running the same
// case in the same slot with an unchanged artifact yields the same result:
// every file the pipeline touches is rewritten stage by stage.
func (s *PipelineService) Run(_ context.Context, tc domain.TestCase, slot domain.WorkerSlot) domain.TestResult {
	artifact := s.artifacts.Artifact()
	if artifact == nil {
		return domain.Skip(errs.NoArtifact.Error())
	}
	if artifact.Language != s.project.Language {
		return domain.Skip(fmt.Sprintf("artifact language %s does not match project language %s",
			artifact.Language, s.project.Language))
	}

	source, err := os.ReadFile(tc.SourcePath)
	if err != nil {
		return domain.Skip(fmt.Sprintf("cannot read test source: %v", err))
	}
	input, err := s.readInput(tc)
	if err != nil {
		return domain.Skip(fmt.Sprintf("cannot read test input: %v", err))
	}

	compileStart := time.Now()
	if res, ok := s.runCandidate(artifact, string(source), slot); !ok {
		return res
	}
	compileMs := time.Since(compileStart).Milliseconds()

	actual, res, ok := s.runSimulator(input, slot)
	if !ok {
		res.CompileTimeMs = compileMs
		return res
	}

	expected, res, ok := s.runReference(string(source), input, slot)
	if !ok {
		res.CompileTimeMs = compileMs
		return res
	}

	var result domain.TestResult
	if s.comparator.Equal(actual, expected) {
		result = domain.Pass()
	} else {
		result = domain.Fail("output mismatch", actual, expected)
	}
	result.CompileTimeMs = compileMs
	s.logger.Debug("Case judged",
		"case", tc.Name,
		"slot", slot.Index,
		"status", result.Status.String(),
		"compileMs", compileMs)
	return result
}

// runCandidate writes the case source into the slot and invokes the built
// artifact, expecting it to emit the target assembly file.
func (s *PipelineService) runCandidate(artifact *domain.BuildArtifact, source string, slot domain.WorkerSlot) (domain.TestResult, bool) {
	casePath := filepath.Join(slot.Dir, caseFileName)
	if err := os.WriteFile(casePath, []byte(normalizeNewlines(source)), 0o644); err != nil {
		return domain.Skip(fmt.Sprintf("cannot stage test source: %v", err)), false
	}
	asmPath := filepath.Join(slot.Dir, assemblyFileName)
	// A stale mips.txt from the previous occupant must not be mistaken
	// for this case's output.
	_ = os.Remove(asmPath)

	spec := secondary.ProcessSpec{
		Dir:     slot.Dir,
		Timeout: s.cfg.TimeoutConfig.CandidateCompile,
	}
	if artifact.Language == domain.LanguageJava {
		spec.Path = s.cfg.ToolsConfig.Java()
		spec.Args = []string{"-jar", artifact.Path}
	} else {
		spec.Path = artifact.Path
	}

	capture, err := s.runner.Run(context.Background(), spec)
	if err != nil {
		if errs.IsStageTimeout(err) {
			return domain.CompileError("candidate compiler timed out"), false
		}
		return domain.CompileError(fmt.Sprintf("cannot run candidate compiler: %v", err)), false
	}
	if capture.ExitCode != 0 {
		return domain.CompileError("candidate compiler failed:\n" + capture.CombinedOutput()), false
	}
	if _, err := os.Stat(asmPath); err != nil {
		return domain.CompileError(fmt.Sprintf("candidate compiler produced no %s", assemblyFileName)), false
	}
	return domain.TestResult{}, true
}

// runSimulator executes the produced assembly on MARS with the case input
// piped to stdin.
func (s *PipelineService) runSimulator(input string, slot domain.WorkerSlot) (string, domain.TestResult, bool) {
	capture, err := s.runner.Run(context.Background(), secondary.ProcessSpec{
		Path:    s.cfg.ToolsConfig.Java(),
		Args:    []string{"-jar", s.cfg.MarsJar, "nc", assemblyFileName},
		Dir:     slot.Dir,
		Stdin:   input,
		Timeout: s.cfg.TimeoutConfig.Mars,
	})
	if err != nil {
		if errs.IsStageTimeout(err) {
			return "", domain.RuntimeError(fmt.Sprintf(
				"simulator timed out after %s (possible infinite loop in generated assembly)",
				s.cfg.TimeoutConfig.Mars)), false
		}
		return "", domain.RuntimeError(fmt.Sprintf("cannot run simulator: %v", err)), false
	}
	return capture.Stdout, domain.TestResult{}, true
}

// runReference compiles the case source with the runtime shim prepended
// using the host compiler and runs the binary with the same input. Failures
// here mean the case is unjudgeable, never that the candidate is wrong.
// Temporary artifacts are removed on every exit path.
func (s *PipelineService) runReference(source, input string, slot domain.WorkerSlot) (string, domain.TestResult, bool) {
	srcPath := filepath.Join(slot.Dir, refSourceName)
	binPath := filepath.Join(slot.Dir, refBinaryName)
	defer func() {
		_ = os.Remove(srcPath)
		_ = os.Remove(binPath)
	}()

	full := s.cfg.CHeader + normalizeNewlines(source)
	if err := os.WriteFile(srcPath, []byte(full), 0o644); err != nil {
		return "", domain.Skip(fmt.Sprintf("cannot stage reference source: %v", err)), false
	}

	gcc := s.cfg.ToolsConfig.GCC()
	capture, err := s.runner.Run(context.Background(), secondary.ProcessSpec{
		Path:    gcc,
		Args:    []string{srcPath, "-o", binPath},
		Dir:     slot.Dir,
		Timeout: s.cfg.TimeoutConfig.GccCompile,
	})
	if err != nil {
		return "", domain.Skip(fmt.Sprintf("reference compile failed: %v", err)), false
	}
	if capture.ExitCode != 0 {
		return "", domain.Skip("reference compile failed:\n" + capture.CombinedOutput()), false
	}

	capture, err = s.runner.Run(context.Background(), secondary.ProcessSpec{
		Path:    binPath,
		Dir:     slot.Dir,
		Stdin:   input,
		Timeout: s.cfg.TimeoutConfig.GccRun,
	})
	if err != nil {
		return "", domain.Skip(fmt.Sprintf("reference run failed: %v", err)), false
	}
	// The exit code of the reference binary is the program's own main
	// return value, not a harness failure; the case is judged on stdout
	// whatever main returned.
	return capture.Stdout, domain.TestResult{}, true
}

func (s *PipelineService) readInput(tc domain.TestCase) (string, error) {
	if !tc.HasInput() {
		return "", nil
	}
	raw, err := os.ReadFile(tc.InputPath)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
