package build

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oNya685/SysYTest/internal/adapter/logging"
	"github.com/oNya685/SysYTest/internal/config"
	"github.com/oNya685/SysYTest/internal/core/ports/secondary"
	"github.com/oNya685/SysYTest/internal/domain"
	"github.com/oNya685/SysYTest/internal/static/errs"
)

// scriptedRunner replays a fixed sequence of process outcomes and records
// every spec it received, same shape as the pipeline test double.
type scriptedRunner struct {
	steps []scriptStep
	calls []secondary.ProcessSpec
}

type scriptStep struct {
	capture secondary.ProcessCapture
	err     error
}

func (r *scriptedRunner) Run(_ context.Context, spec secondary.ProcessSpec) (secondary.ProcessCapture, error) {
	r.calls = append(r.calls, spec)
	if len(r.steps) == 0 {
		return secondary.ProcessCapture{}, nil
	}
	step := r.steps[0]
	r.steps = r.steps[1:]
	return step.capture, step.err
}

func buildConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		WorkDir:        t.TempDir(),
		TimeoutConfig:  config.NewTimeoutConfig(),
		ParallelConfig: config.NewParallelConfig(),
		ToolsConfig:    &config.ToolsConfig{},
	}
}

func newService(cfg *config.AppConfig, lang domain.Language, runner secondary.ProcessRunner) *BuildService {
	project := domain.CompilerProjectConfig{Language: lang, TargetBackend: "mips"}
	return NewBuildService(cfg, project, runner, logging.NewNopLogger())
}

// javaProject lays out a candidate tree with the given files under src/.
func javaProject(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(srcDir, name), []byte("stub\n"), 0o644))
	}
	return root
}

func TestBuildJavaHappyPath(t *testing.T) {
	cfg := buildConfig(t)
	root := javaProject(t, "Compiler.java", "Lexer.java", "notes.txt")
	runner := &scriptedRunner{steps: []scriptStep{
		{capture: secondary.ProcessCapture{ExitCode: 0}},
		{capture: secondary.ProcessCapture{ExitCode: 0}},
	}}
	svc := newService(cfg, domain.LanguageJava, runner)

	diag, err := svc.Build(context.Background(), root)
	require.NoError(t, err)
	assert.Contains(t, diag, "compiled 2 files")

	artifact := svc.Artifact()
	require.NotNil(t, artifact)
	assert.Equal(t, domain.LanguageJava, artifact.Language)
	assert.Equal(t, filepath.Join(cfg.WorkDir, "Compiler.jar"), artifact.Path)

	require.Len(t, runner.calls, 2)

	javac := runner.calls[0]
	assert.Equal(t, "javac", javac.Path)
	assert.Equal(t, []string{"-encoding", "UTF-8", "-d", filepath.Join(cfg.WorkDir, "build")}, javac.Args[:4])
	assert.Len(t, javac.Args, 6)
	for _, src := range javac.Args[4:] {
		assert.Equal(t, ".java", filepath.Ext(src))
	}

	jar := runner.calls[1]
	assert.Equal(t, "jar", jar.Path)
	assert.Equal(t, "cfm", jar.Args[0])
	assert.Equal(t, artifact.Path, jar.Args[1])

	manifest, err := os.ReadFile(filepath.Join(cfg.WorkDir, "build", "MANIFEST.MF"))
	require.NoError(t, err)
	assert.Equal(t, "Main-Class: Compiler\n", string(manifest))
}

func TestBuildJavaMissingSourceDir(t *testing.T) {
	cfg := buildConfig(t)
	svc := newService(cfg, domain.LanguageJava, &scriptedRunner{})

	_, err := svc.Build(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.MissingSourceDir)
	assert.Nil(t, svc.Artifact())
}

func TestBuildJavaNoSources(t *testing.T) {
	cfg := buildConfig(t)
	root := javaProject(t, "README.md")
	svc := newService(cfg, domain.LanguageJava, &scriptedRunner{})

	_, err := svc.Build(context.Background(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.NoSourceFiles)
	assert.Nil(t, svc.Artifact())
}

func TestBuildJavaCompileFailureCarriesDiagnostic(t *testing.T) {
	cfg := buildConfig(t)
	root := javaProject(t, "Compiler.java")
	runner := &scriptedRunner{steps: []scriptStep{
		{capture: secondary.ProcessCapture{ExitCode: 1, Stderr: "Compiler.java:3: error: ';' expected"}},
	}}
	svc := newService(cfg, domain.LanguageJava, runner)

	diag, err := svc.Build(context.Background(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.BuildFailed)
	assert.Contains(t, diag, "';' expected")
	assert.Nil(t, svc.Artifact())
	assert.Len(t, runner.calls, 1)
}

func TestBuildJavaToolMissingNamesCommand(t *testing.T) {
	cfg := buildConfig(t)
	root := javaProject(t, "Compiler.java")
	runner := &scriptedRunner{steps: []scriptStep{
		{err: errs.ToolMissing},
	}}
	svc := newService(cfg, domain.LanguageJava, runner)

	diag, err := svc.Build(context.Background(), root)
	require.Error(t, err)
	assert.Contains(t, diag, "command not found: javac")
	assert.Nil(t, svc.Artifact())
}

func TestBuildDirectCppAddsStandardFlag(t *testing.T) {
	cfg := buildConfig(t)
	root := javaProject(t, "main.cpp", "lexer.cpp", "runtime.c")
	runner := &scriptedRunner{steps: []scriptStep{
		{capture: secondary.ProcessCapture{ExitCode: 0}},
	}}
	svc := newService(cfg, domain.LanguageCpp, runner)

	diag, err := svc.Build(context.Background(), root)
	require.NoError(t, err)
	assert.Contains(t, diag, "compiled 3 files")

	artifact := svc.Artifact()
	require.NotNil(t, artifact)
	assert.Equal(t, domain.LanguageCpp, artifact.Language)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "g++", call.Path)
	assert.Equal(t, "-std=c++17", call.Args[0])
	assert.Contains(t, call.Args, "-o")
	assert.Contains(t, call.Args, artifact.Path)
}

func TestBuildDirectCOmitsStandardFlag(t *testing.T) {
	cfg := buildConfig(t)
	root := javaProject(t, "main.c")
	runner := &scriptedRunner{steps: []scriptStep{
		{capture: secondary.ProcessCapture{ExitCode: 0}},
	}}
	svc := newService(cfg, domain.LanguageC, runner)

	_, err := svc.Build(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.NotContains(t, runner.calls[0].Args, "-std=c++17")
}

func TestBuildDirectFailureKeepsArtifactNil(t *testing.T) {
	cfg := buildConfig(t)
	root := javaProject(t, "main.c")
	runner := &scriptedRunner{steps: []scriptStep{
		{capture: secondary.ProcessCapture{ExitCode: 1, Stderr: "main.c: undefined reference"}},
	}}
	svc := newService(cfg, domain.LanguageC, runner)

	diag, err := svc.Build(context.Background(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.BuildFailed)
	assert.Contains(t, diag, "undefined reference")
	assert.Nil(t, svc.Artifact())
}

func TestLooksLikeMissingCompiler(t *testing.T) {
	assert.True(t, looksLikeMissingCompiler("CMake Error: No CMAKE_CXX_COMPILER could be found."))
	assert.True(t, looksLikeMissingCompiler("-- The C compiler identification is unknown"))
	assert.False(t, looksLikeMissingCompiler("CMakeLists.txt:12: syntax error"))
	assert.False(t, looksLikeMissingCompiler(""))
}

func TestSiblingCCompiler(t *testing.T) {
	assert.Equal(t, "gcc", siblingCCompiler("g++"))
	assert.Equal(t, "", siblingCCompiler(""))
	assert.Equal(t, "", siblingCCompiler("/opt/toolchain/bin/clang++"))

	dir := t.TempDir()
	gxx := filepath.Join(dir, "g++")
	require.NoError(t, os.WriteFile(gxx, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gcc"), []byte("#!/bin/sh\n"), 0o755))
	assert.Equal(t, filepath.Join(dir, "gcc"), siblingCCompiler(gxx))

	lonely := filepath.Join(t.TempDir(), "g++")
	require.NoError(t, os.WriteFile(lonely, []byte("#!/bin/sh\n"), 0o755))
	assert.Equal(t, "", siblingCCompiler(lonely))
}

func TestFindBuiltExecutablePrefersCompilerName(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "CMakeFiles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CMakeFiles", "probe"), []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper"), []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Compiler"), []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.ninja"), []byte("x"), 0o644))

	got, err := findBuiltExecutable(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Compiler"), got)
}

func TestFindBuiltExecutableSoleCandidate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parser"), []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Makefile"), []byte("x"), 0o644))

	got, err := findBuiltExecutable(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "parser"), got)
}

func TestFindBuiltExecutableNoneIsBuildFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Makefile"), []byte("x"), 0o644))

	_, err := findBuiltExecutable(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.BuildFailed)
}
