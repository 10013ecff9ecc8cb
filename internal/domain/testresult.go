package domain

// TestStatus classifies the outcome of a single test case.
type TestStatus string

const (
	StatusPassed       TestStatus = "PASSED"
	StatusFailed       TestStatus = "FAILED"
	StatusCompileError TestStatus = "COMPILE_ERROR"
	StatusRuntimeError TestStatus = "RUNTIME_ERROR"
	StatusTimeout      TestStatus = "TIMEOUT"
	StatusSkipped      TestStatus = "SKIPPED"
)

func (s TestStatus) String() string {
	return string(s)
}

// TestResult is produced exactly once per case by the pipeline and is
// immutable afterwards. ActualOutput and ExpectedOutput are set if and only
// if Status is StatusFailed.
type TestResult struct {
	Status         TestStatus
	Message        string
	ActualOutput   string
	ExpectedOutput string
	// CompileTimeMs is how long the candidate compiler took on this case,
	// in milliseconds. Zero when the candidate stage never ran.
	CompileTimeMs int64
}

// Passed reports whether the case passed.
func (r TestResult) Passed() bool {
	return r.Status == StatusPassed
}

// Pass builds a passing result.
func Pass() TestResult {
	return TestResult{Status: StatusPassed}
}

// Fail builds a failing result carrying both observed outputs.
func Fail(message, actual, expected string) TestResult {
	return TestResult{
		Status:         StatusFailed,
		Message:        message,
		ActualOutput:   actual,
		ExpectedOutput: expected,
	}
}

// CompileError builds a result for a candidate compile failure.
func CompileError(message string) TestResult {
	return TestResult{Status: StatusCompileError, Message: message}
}

// RuntimeError builds a result for a simulator failure.
func RuntimeError(message string) TestResult {
	return TestResult{Status: StatusRuntimeError, Message: message}
}

// Skip builds a result for a case that could not be judged.
func Skip(message string) TestResult {
	return TestResult{Status: StatusSkipped, Message: message}
}

// CaseResult pairs a case with its result for suite-level reporting.
type CaseResult struct {
	Case   TestCase
	Result TestResult
}
