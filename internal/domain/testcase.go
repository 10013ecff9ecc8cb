package domain

// TestCase is one conformance case supplied by the discovery collaborator.
// SourcePath points at the SysY source; InputPath is empty when the case
// reads no input. Cases are referenced, never mutated, by the harness.
type TestCase struct {
	Name       string
	SourcePath string
	InputPath  string
}

// HasInput reports whether the case carries an input file.
func (t TestCase) HasInput() bool {
	return t.InputPath != ""
}
