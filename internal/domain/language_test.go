package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want Language
	}{
		{"java", LanguageJava},
		{"JAVA", LanguageJava},
		{" c ", LanguageC},
		{"cpp", LanguageCpp},
		{"C++", LanguageCpp},
	}
	for _, tc := range cases {
		got, err := ParseLanguage(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseLanguageRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "python", "go", "rust"} {
		_, err := ParseLanguage(in)
		assert.Error(t, err, in)
	}
}

func TestResultConstructors(t *testing.T) {
	pass := Pass()
	assert.True(t, pass.Passed())
	assert.Empty(t, pass.ActualOutput)
	assert.Empty(t, pass.ExpectedOutput)

	fail := Fail("output mismatch", "5\n", "6\n")
	assert.Equal(t, StatusFailed, fail.Status)
	assert.Equal(t, "5\n", fail.ActualOutput)
	assert.Equal(t, "6\n", fail.ExpectedOutput)

	// Outputs are attached only to failures.
	for _, r := range []TestResult{Pass(), CompileError("x"), RuntimeError("x"), Skip("x")} {
		assert.Empty(t, r.ActualOutput)
		assert.Empty(t, r.ExpectedOutput)
	}
}
