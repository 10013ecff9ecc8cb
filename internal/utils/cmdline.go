package cmdline

import "fmt"

// CommandBuilder assembles a toolchain command line incrementally. The
// cmake configure invocation in particular grows flags conditionally
// (generator choice, compiler overrides, retry variants); building it
// through one fluent chain keeps that assembly in one place.
type CommandBuilder interface {
	Arg(args ...string) CommandBuilder
	ArgIf(cond bool, args ...string) CommandBuilder
	// Define appends a cmake-style -D<name>=<value> cache definition.
	Define(name, value string) CommandBuilder
	DefineIf(cond bool, name, value string) CommandBuilder
	Build() (string, []string)
}

type commandBuilder struct {
	path string
	args []string
}

// New starts a command line for the given executable.
func New(path string) CommandBuilder {
	return &commandBuilder{path: path}
}

func (b *commandBuilder) Arg(args ...string) CommandBuilder {
	b.args = append(b.args, args...)
	return b
}

func (b *commandBuilder) ArgIf(cond bool, args ...string) CommandBuilder {
	if cond {
		b.args = append(b.args, args...)
	}
	return b
}

func (b *commandBuilder) Define(name, value string) CommandBuilder {
	b.args = append(b.args, fmt.Sprintf("-D%s=%s", name, value))
	return b
}

func (b *commandBuilder) DefineIf(cond bool, name, value string) CommandBuilder {
	if cond {
		return b.Define(name, value)
	}
	return b
}

func (b *commandBuilder) Build() (string, []string) {
	return b.path, b.args
}
