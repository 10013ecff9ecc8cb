package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CompilerProjectConfig describes the candidate compiler project: the
// language it is written in and the assembly it emits. Loaded once per
// session from the project's config.json and immutable afterwards.
type CompilerProjectConfig struct {
	Language      Language
	TargetBackend string
}

// DefaultProjectConfig is used when the project declares nothing.
func DefaultProjectConfig() CompilerProjectConfig {
	return CompilerProjectConfig{Language: LanguageJava, TargetBackend: "mips"}
}

// LoadProjectConfig reads config.json from <projectRoot>/src, falling back
// to the project root. A missing file yields the default (Java, MIPS); a
// present but malformed file, an unknown language, or a non-MIPS backend is
// an error.
func LoadProjectConfig(projectRoot string) (CompilerProjectConfig, error) {
	var path string
	for _, candidate := range []string{
		filepath.Join(projectRoot, "src", "config.json"),
		filepath.Join(projectRoot, "config.json"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		return DefaultProjectConfig(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return CompilerProjectConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var decl struct {
		Language   string `json:"programming language"`
		ObjectCode string `json:"object code"`
	}
	if err := json.Unmarshal(raw, &decl); err != nil {
		return CompilerProjectConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg := DefaultProjectConfig()
	if decl.Language != "" {
		lang, err := ParseLanguage(decl.Language)
		if err != nil {
			return CompilerProjectConfig{}, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Language = lang
	}
	if decl.ObjectCode != "" {
		backend := strings.ToLower(strings.TrimSpace(decl.ObjectCode))
		if backend != "mips" {
			return CompilerProjectConfig{}, fmt.Errorf("%s: unsupported object code %q, only mips is supported", path, decl.ObjectCode)
		}
		cfg.TargetBackend = backend
	}
	return cfg, nil
}
