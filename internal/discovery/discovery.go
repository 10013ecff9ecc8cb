// Package discovery locates test cases on disk. Cases follow the course
// naming convention: testfileN.txt paired with inputN.txt in the same
// directory (a <stem>.in next to the source is also accepted).
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/oNya685/SysYTest/internal/domain"
)

var testFilePattern = regexp.MustCompile(`^testfile(\d*)\.txt$`)

// DiscoverLibs lists the test-library subdirectories under root, sorted by
// name. A missing root is not an error; it just holds no libraries.
func DiscoverLibs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	var libs []string
	for _, e := range entries {
		if e.IsDir() {
			libs = append(libs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(libs)
	return libs, nil
}

// DiscoverCases pairs every test source in dir with its input file, if one
// exists. Cases are sorted numerically where the convention allows it, so
// testfile2 comes before testfile10.
func DiscoverCases(dir string) ([]domain.TestCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var cases []domain.TestCase
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := testFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".txt")
		tc := domain.TestCase{
			Name:       stem,
			SourcePath: filepath.Join(dir, e.Name()),
		}
		for _, input := range []string{
			filepath.Join(dir, "input"+m[1]+".txt"),
			filepath.Join(dir, stem+".in"),
		} {
			if _, err := os.Stat(input); err == nil {
				tc.InputPath = input
				break
			}
		}
		cases = append(cases, tc)
	}

	sort.Slice(cases, func(i, j int) bool {
		return caseLess(cases[i].Name, cases[j].Name)
	})
	return cases, nil
}

// DiscoverAll walks every library under root and returns its cases with
// lib-qualified names (lib/case).
func DiscoverAll(root string) ([]domain.TestCase, error) {
	libs, err := DiscoverLibs(root)
	if err != nil {
		return nil, err
	}
	var all []domain.TestCase
	for _, lib := range libs {
		cases, err := DiscoverCases(lib)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, lib)
		if err != nil {
			rel = filepath.Base(lib)
		}
		for _, tc := range cases {
			tc.Name = filepath.ToSlash(filepath.Join(rel, tc.Name))
			all = append(all, tc)
		}
	}
	// Cases directly under root, outside any library.
	direct, err := DiscoverCases(root)
	if err == nil {
		all = append(all, direct...)
	}
	return all, nil
}

func caseLess(a, b string) bool {
	na, oka := caseNumber(a)
	nb, okb := caseNumber(b)
	if oka && okb && caseStem(a) == caseStem(b) {
		return na < nb
	}
	return a < b
}

func caseNumber(name string) (int, bool) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return 0, false
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func caseStem(name string) string {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	return name[:i]
}
