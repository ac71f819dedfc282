// Package cmd is the top-level "driver" package for the Kumeo compiler: it
// contains all the functionality for parsing command-line arguments, managing
// compiler state, and running all the various phases of the compiler.
package cmd

import "kumeo/report"

// KumeoCompilerID is the version string reported by `-v`.
const KumeoCompilerID = "kumeo 0.2.0"

// Compiler represents the overall state and configuration of compilation.
type Compiler struct {
	// The path to the workflow source file.
	inputPath string

	// The directory generated artifacts are written to.
	outputDir string

	// An optional template directory overriding the built-in bundles.
	templatesDir string

	// An optional language policy file (TOML or YAML).
	policyPath string

	// The reporter's log level.
	logLevel int

	// Whether to stop after analysis without generating anything.
	checkOnly bool

	// Whether to emit phase tracing on stderr.
	debug bool
}

// Process exit codes.
const (
	ExitOK    = 0 // compilation succeeded
	ExitDiags = 1 // source diagnostics were reported
	ExitIO    = 2 // an input, policy, or output path problem
	ExitArgs  = 3 // invalid command-line arguments
)

// RunCompiler is the main entry point for the Kumeo compiler.  This should be
// called directly from main.
func RunCompiler() int {
	c := NewCompilerFromArgs()

	return c.Compile(report.NewReporter(c.logLevel))
}
