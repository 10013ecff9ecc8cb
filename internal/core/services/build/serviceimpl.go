package build

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oNya685/SysYTest/internal/config"
	"github.com/oNya685/SysYTest/internal/core/ports/primary"
	"github.com/oNya685/SysYTest/internal/core/ports/secondary"
	"github.com/oNya685/SysYTest/internal/domain"
	"github.com/oNya685/SysYTest/internal/static/errs"
	cmdline "github.com/oNya685/SysYTest/internal/utils"
)

var _ IBuildService = (*BuildService)(nil)

// BuildService implements IBuildService on top of the ProcessRunner port.
// All side effects stay under the session work directory; the candidate
// source tree is never written to.
type BuildService struct {
	cfg     *config.AppConfig
	project domain.CompilerProjectConfig
	runner  secondary.ProcessRunner
	logger  primary.Logger

	mu       sync.RWMutex
	artifact *domain.BuildArtifact
}

// NewBuildService creates a build service for one candidate project config.
func NewBuildService(
	cfg *config.AppConfig,
	project domain.CompilerProjectConfig,
	runner secondary.ProcessRunner,
	logger primary.Logger,
) *BuildService {
	return &BuildService{
		cfg:     cfg,
		project: project,
		runner:  runner,
		logger:  logger,
	}
}

// Artifact returns the artifact of the last successful build, or nil.
func (s *BuildService) Artifact() *domain.BuildArtifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifact
}

// Build compiles the candidate project. Not safe for concurrent calls.
func (s *BuildService) Build(ctx context.Context, projectRoot string) (string, error) {
	sessionID := uuid.New()
	s.logger.Info("Building candidate compiler",
		"sessionId", sessionID,
		"project", projectRoot,
		"language", s.project.Language.String())

	if err := os.MkdirAll(s.cfg.WorkDir, 0o755); err != nil {
		return "", fmt.Errorf("creating work dir: %w", err)
	}

	var (
		path string
		diag string
		err  error
	)
	switch s.project.Language {
	case domain.LanguageJava:
		path, diag, err = s.buildJava(ctx, projectRoot)
	case domain.LanguageC, domain.LanguageCpp:
		path, diag, err = s.buildNative(ctx, projectRoot)
	default:
		return "", fmt.Errorf("unsupported language %v", s.project.Language)
	}
	if err != nil {
		s.logger.Error("Candidate build failed", "sessionId", sessionID, "error", err)
		s.mu.Lock()
		s.artifact = nil
		s.mu.Unlock()
		return diag, err
	}

	s.mu.Lock()
	s.artifact = &domain.BuildArtifact{
		ID:       sessionID,
		Language: s.project.Language,
		Path:     path,
	}
	s.mu.Unlock()

	s.logger.Info("Candidate build succeeded", "sessionId", sessionID, "artifact", path)
	return diag, nil
}

// buildJava compiles every .java source into a class tree and packages it
// as an executable jar with a fixed Compiler entry class.
func (s *BuildService) buildJava(ctx context.Context, projectRoot string) (string, string, error) {
	srcDir := filepath.Join(projectRoot, "src")
	if _, err := os.Stat(srcDir); err != nil {
		return "", "", fmt.Errorf("%s: %w", srcDir, errs.MissingSourceDir)
	}

	sources, err := collectSources(srcDir, ".java")
	if err != nil {
		return "", "", err
	}
	if len(sources) == 0 {
		return "", "", fmt.Errorf("no .java files under %s: %w", srcDir, errs.NoSourceFiles)
	}

	classDir := filepath.Join(s.cfg.WorkDir, "build")
	if err := os.MkdirAll(classDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating class dir: %w", err)
	}

	javac := s.cfg.ToolsConfig.Javac()
	args := append([]string{"-encoding", "UTF-8", "-d", classDir}, sources...)
	capture, err := s.runner.Run(ctx, secondary.ProcessSpec{
		Path:    javac,
		Args:    args,
		Timeout: s.cfg.TimeoutConfig.JavaCompile,
	})
	if err != nil {
		return "", toolDiagnostic(javac, err), err
	}
	if capture.ExitCode != 0 {
		diag := "javac failed:\n" + capture.CombinedOutput()
		return "", diag, fmt.Errorf("javac exited with %d: %w", capture.ExitCode, errs.BuildFailed)
	}

	manifest := filepath.Join(classDir, "MANIFEST.MF")
	if err := os.WriteFile(manifest, []byte("Main-Class: Compiler\n"), 0o644); err != nil {
		return "", "", fmt.Errorf("writing manifest: %w", err)
	}

	jarPath := filepath.Join(s.cfg.WorkDir, "Compiler.jar")
	jar := s.cfg.ToolsConfig.Jar()
	capture, err = s.runner.Run(ctx, secondary.ProcessSpec{
		Path:    jar,
		Args:    []string{"cfm", jarPath, manifest, "-C", classDir, "."},
		Timeout: s.cfg.TimeoutConfig.Jar,
	})
	if err != nil {
		return "", toolDiagnostic(jar, err), err
	}
	if capture.ExitCode != 0 {
		diag := "jar packaging failed:\n" + capture.CombinedOutput()
		return "", diag, fmt.Errorf("jar exited with %d: %w", capture.ExitCode, errs.BuildFailed)
	}

	diag := fmt.Sprintf("[JAVA] compiled %d files -> Compiler.jar", len(sources))
	return jarPath, diag, nil
}

// buildNative compiles a C or C++ project, via cmake when the project
// carries a CMakeLists.txt and with a single direct compiler invocation
// otherwise.
func (s *BuildService) buildNative(ctx context.Context, projectRoot string) (string, string, error) {
	srcDir := filepath.Join(projectRoot, "src")
	if _, err := os.Stat(srcDir); err != nil {
		return "", "", fmt.Errorf("%s: %w", srcDir, errs.MissingSourceDir)
	}

	for _, lists := range []string{
		filepath.Join(projectRoot, "CMakeLists.txt"),
		filepath.Join(srcDir, "CMakeLists.txt"),
	} {
		if _, err := os.Stat(lists); err == nil {
			return s.buildCMake(ctx, projectRoot, filepath.Dir(lists))
		}
	}
	return s.buildDirect(ctx, srcDir)
}

// buildDirect compiles all sources into one executable with the host
// compiler.
func (s *BuildService) buildDirect(ctx context.Context, srcDir string) (string, string, error) {
	lang := s.project.Language
	ext := ".c"
	if lang == domain.LanguageCpp {
		ext = ".cpp"
	}
	sources, err := collectSources(srcDir, ext)
	if err != nil {
		return "", "", err
	}
	if lang == domain.LanguageCpp {
		// C++ projects may mix in C translation units.
		cs, err := collectSources(srcDir, ".c")
		if err != nil {
			return "", "", err
		}
		sources = append(sources, cs...)
	}
	if len(sources) == 0 {
		return "", "", fmt.Errorf("no %s files under %s: %w", ext, srcDir, errs.NoSourceFiles)
	}

	exePath := filepath.Join(s.cfg.WorkDir, exeName("Compiler"))
	gcc := s.cfg.ToolsConfig.GCC()
	path, args := cmdline.New(gcc).
		ArgIf(lang == domain.LanguageCpp, "-std=c++17").
		Arg("-o", exePath).
		Arg(sources...).
		Build()

	capture, err := s.runner.Run(ctx, secondary.ProcessSpec{
		Path:    path,
		Args:    args,
		Timeout: s.cfg.TimeoutConfig.GccCompile,
	})
	if err != nil {
		return "", toolDiagnostic(gcc, err), err
	}
	if capture.ExitCode != 0 {
		diag := "compile failed:\n" + capture.CombinedOutput()
		return "", diag, fmt.Errorf("%s exited with %d: %w", gcc, capture.ExitCode, errs.BuildFailed)
	}

	diag := fmt.Sprintf("[%s] compiled %d files -> %s", strings.ToUpper(lang.String()), len(sources), filepath.Base(exePath))
	return exePath, diag, nil
}

// buildCMake configures (once per project path, the cache directory is
// keyed by a hash of it) and builds the project, then locates the produced
// executable.
func (s *BuildService) buildCMake(ctx context.Context, projectRoot, listsDir string) (string, string, error) {
	cmake := s.cfg.ToolsConfig.CMake()
	if _, err := exec.LookPath(cmake); err != nil {
		return "", toolDiagnostic(cmake, errs.ToolMissing), fmt.Errorf("%s: %w", cmake, errs.ToolMissing)
	}

	key := fmt.Sprintf("%x", md5.Sum([]byte(projectRoot)))[:8]
	cacheDir := filepath.Join(s.cfg.WorkDir, "cmake_build_"+key)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating cmake cache dir: %w", err)
	}

	cxx := s.cfg.ToolsConfig.GCCPath
	cc := siblingCCompiler(cxx)

	if _, err := os.Stat(filepath.Join(cacheDir, "CMakeCache.txt")); err != nil {
		generator := ""
		if _, err := exec.LookPath("ninja"); err == nil {
			generator = "Ninja"
		}
		diag, err := s.cmakeConfigure(ctx, cmake, listsDir, cacheDir, generator, cxx, cc)
		if err != nil {
			if !looksLikeMissingCompiler(diag) {
				return "", "cmake configure failed:\n" + diag, err
			}
			// One retry with an alternate generator and an explicit
			// compiler pair. The signature match is best effort.
			s.logger.Warn("cmake could not identify a compiler, retrying with fallback toolchain")
			retryGen := fallbackGenerator()
			if retryGen == "" {
				return "", "cmake configure failed and no fallback generator (ninja/make) is available:\n" + diag,
					fmt.Errorf("no usable cmake generator: %w", errs.ToolMissing)
			}
			if err := os.RemoveAll(cacheDir); err != nil {
				return "", "", fmt.Errorf("resetting cmake cache dir: %w", err)
			}
			if err := os.MkdirAll(cacheDir, 0o755); err != nil {
				return "", "", fmt.Errorf("resetting cmake cache dir: %w", err)
			}
			fallbackCxx := cxx
			if fallbackCxx == "" {
				fallbackCxx = s.cfg.ToolsConfig.GCC()
			}
			diag, err = s.cmakeConfigure(ctx, cmake, listsDir, cacheDir, retryGen, fallbackCxx, siblingCCompiler(fallbackCxx))
			if err != nil {
				return "", "cmake configure failed:\n" + diag, err
			}
		}
	}

	path, args := cmdline.New(cmake).
		Arg("--build", cacheDir, "--config", "Release").
		ArgIf(s.cfg.ParallelConfig.MaxWorkers > 1, "--parallel", strconv.Itoa(s.cfg.ParallelConfig.MaxWorkers)).
		Build()
	capture, err := s.runner.Run(ctx, secondary.ProcessSpec{
		Path:    path,
		Args:    args,
		Timeout: s.cfg.TimeoutConfig.CmakeBuild,
	})
	if err != nil {
		return "", toolDiagnostic(cmake, err), err
	}
	if capture.ExitCode != 0 {
		diag := "cmake build failed:\n" + capture.CombinedOutput()
		return "", diag, fmt.Errorf("cmake build exited with %d: %w", capture.ExitCode, errs.BuildFailed)
	}

	built, err := findBuiltExecutable(cacheDir)
	if err != nil {
		return "", err.Error(), err
	}
	exePath := filepath.Join(s.cfg.WorkDir, exeName("Compiler"))
	if err := copyFile(built, exePath); err != nil {
		return "", "", fmt.Errorf("installing built executable: %w", err)
	}

	diag := fmt.Sprintf("[%s] cmake build succeeded -> %s",
		strings.ToUpper(s.project.Language.String()), filepath.Base(built))
	return exePath, diag, nil
}

// cmakeConfigure runs one configure attempt and returns the combined
// toolchain output alongside any error.
func (s *BuildService) cmakeConfigure(ctx context.Context, cmake, listsDir, cacheDir, generator, cxx, cc string) (string, error) {
	path, args := cmdline.New(cmake).
		ArgIf(generator != "", "-G", generator).
		Arg("-S", listsDir, "-B", cacheDir).
		Define("CMAKE_BUILD_TYPE", "Release").
		DefineIf(cxx != "", "CMAKE_CXX_COMPILER", cxx).
		DefineIf(cc != "", "CMAKE_C_COMPILER", cc).
		Build()

	capture, err := s.runner.Run(ctx, secondary.ProcessSpec{
		Path:    path,
		Args:    args,
		Timeout: s.cfg.TimeoutConfig.CmakeConfigure,
	})
	combined := capture.CombinedOutput()
	if err != nil {
		return combined, err
	}
	if capture.ExitCode != 0 {
		return combined, fmt.Errorf("cmake configure exited with %d: %w", capture.ExitCode, errs.BuildFailed)
	}
	return combined, nil
}

// looksLikeMissingCompiler matches the configure-output signatures cmake
// emits when it cannot locate a working toolchain. Implementation-defined
// best effort, not a contract.
func looksLikeMissingCompiler(out string) bool {
	lower := strings.ToLower(out)
	for _, sig := range []string{
		"no cmake_c_compiler could be found",
		"no cmake_cxx_compiler could be found",
		"the c compiler identification is unknown",
		"the cxx compiler identification is unknown",
	} {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// fallbackGenerator picks an alternate generator for the configure retry.
func fallbackGenerator() string {
	if _, err := exec.LookPath("ninja"); err == nil {
		return "Ninja"
	}
	for _, make := range []string{"mingw32-make", "make"} {
		if _, err := exec.LookPath(make); err == nil {
			if make == "mingw32-make" {
				return "MinGW Makefiles"
			}
			return "Unix Makefiles"
		}
	}
	return ""
}

// siblingCCompiler guesses the matching C compiler for an explicitly
// configured C++ compiler: a g++ path maps to the gcc next to it.
func siblingCCompiler(cxx string) string {
	if cxx == "" {
		return ""
	}
	base := strings.ToLower(filepath.Base(cxx))
	switch base {
	case "g++", "g++.exe":
		if cxx == base {
			return strings.Replace(base, "g++", "gcc", 1)
		}
		gcc := filepath.Join(filepath.Dir(cxx), strings.Replace(base, "g++", "gcc", 1))
		if _, err := os.Stat(gcc); err == nil {
			return gcc
		}
	}
	return ""
}

// findBuiltExecutable locates the executable cmake produced, preferring a
// file named Compiler, then a sole candidate, then the newest one.
func findBuiltExecutable(buildDir string) (string, error) {
	var candidates []string
	err := filepath.WalkDir(buildDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "CMakeFiles" {
				return filepath.SkipDir
			}
			return nil
		}
		if isExecutable(path, d) {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scanning cmake build dir: %w", err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("cmake build finished but produced no executable under %s: %w", buildDir, errs.BuildFailed)
	}

	for _, c := range candidates {
		name := strings.ToLower(filepath.Base(c))
		if name == "compiler" || name == "compiler.exe" {
			return c, nil
		}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	newest := candidates[0]
	newestTime := time.Time{}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil {
			continue
		}
		if info.ModTime().After(newestTime) {
			newest, newestTime = c, info.ModTime()
		}
	}
	return newest, nil
}

func isExecutable(path string, d fs.DirEntry) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(filepath.Ext(path), ".exe")
	}
	info, err := d.Info()
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// collectSources walks dir gathering files with the given extension, in a
// stable order.
func collectSources(dir, ext string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func exeName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// toolDiagnostic turns a runner error into the user-facing build
// diagnostic, naming the missing command when that is the cause.
func toolDiagnostic(tool string, err error) string {
	switch {
	case errs.IsToolMissing(err):
		return fmt.Sprintf("command not found: %s (install it or set its path in the environment)", tool)
	case errs.IsStageTimeout(err):
		return fmt.Sprintf("%s timed out", tool)
	default:
		return err.Error()
	}
}
