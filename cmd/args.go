package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kumeo/report"
)

const usage = `Usage: kumeo [flags|options] <path to workflow file>

Flags:
------
-h, --help      Displays usage information (ie. this text).
-v, --version   Displays the current compiler version.
-c, --check     Runs analysis only; no artifacts are generated.
-d, --debug     Whether the compiler should output debug information.

Options:
--------
-o,  --outpath    Sets the directory for generated artifacts.  The directory
                  must be empty or not yet exist.  Defaults to ./<input stem>
                  if unspecified.
-t,  --templates  Sets a template directory overriding the built-in bundles.
-p,  --policy     Sets a language policy file (TOML or YAML).
-ll, --loglevel   Sets the compiler's log-level.  Valid values are:
                    - "verbose" for outputting all messages (default)
                    - "warn" for outputting errors and warnings
                    - "error" for outputting errors only
                    - "silent" for no output
`

// Prints the usage message and exits the compiler with the given exit code.
func printUsage(exitCode int) {
	fmt.Print(usage, "\n")
	os.Exit(exitCode)
}

// argParser is a command-line argument parser.
type argParser struct {
	// The arguments being parsed.
	args []string

	// The argument parser's position within those arguments.
	ndx int
}

// Set containing all the argument names that correspond to options.
var options = map[string]struct{}{
	"o":          {},
	"t":          {},
	"p":          {},
	"ll":         {},
	"-outpath":   {},
	"-templates": {},
	"-policy":    {},
	"-loglevel":  {},
}

// argumentError displays an argument error and exits the program.
func argumentError(message string, args ...interface{}) {
	fmt.Print("argument error: ", fmt.Sprintf(message, args...), "\n\n")
	printUsage(ExitArgs)
}

// nextArg parses the next command-line argument if one exists.  The first
// value is the name of the argument.  If this argument is positional, this
// value is empty.  The second value is the value of the argument.  If this
// value is empty, the argument is a flag.  The final value indicates whether
// or not there was an argument to parse.
func (ap *argParser) nextArg() (string, string, bool) {
	if ap.ndx < len(ap.args) {
		arg := ap.args[ap.ndx]
		ap.ndx++

		if strings.HasPrefix(arg, "-") { // flag or option
			name := arg[1:]

			if _, ok := options[name]; ok { // option
				// Make sure the option value exists.
				if ap.ndx < len(ap.args) && !strings.HasPrefix(ap.args[ap.ndx], "-") {
					value := ap.args[ap.ndx]
					ap.ndx++
					return name, value, true
				} else {
					argumentError("option %s requires an argument", strings.TrimLeft(name, "-"))
				}
			} else { // flag
				return name, "", true
			}

		} else { // positional
			return "", arg, true
		}
	}

	// No arguments to parse.
	return "", "", false
}

// useArg attempts to use a single command-line argument to initialize the
// compiler.  If the argument is invalid, the program will exit.
func useArg(c *Compiler, name, value string) {
	switch name {
	case "h", "-help":
		printUsage(ExitOK)
	case "v", "-version":
		fmt.Println(KumeoCompilerID)
		os.Exit(ExitOK)
	case "c", "-check":
		c.checkOnly = true
	case "d", "-debug":
		c.debug = true
	case "ll", "-loglevel":
		switch value {
		case "silent":
			c.logLevel = report.LogLevelSilent
		case "error":
			c.logLevel = report.LogLevelError
		case "warn":
			c.logLevel = report.LogLevelWarning
		case "verbose":
			c.logLevel = report.LogLevelVerbose
		default:
			argumentError("invalid log level")
		}
	case "o", "-outpath":
		c.outputDir = value
	case "t", "-templates":
		if _, err := os.Stat(value); err != nil {
			argumentError("invalid template directory: %s", value)
		}

		c.templatesDir = value
	case "p", "-policy":
		c.policyPath = value
	case "":
		if c.inputPath == "" {
			c.inputPath = value
		} else {
			argumentError("input path specified multiple times")
		}
	default:
		argumentError("unknown flag: %s", name)
	}
}

// NewCompilerFromArgs creates a new compiler instance based on the given
// command-line arguments if the arguments are valid and compilation should
// continue: ie. if the user requests the compiler version, then compilation
// should not continue.
func NewCompilerFromArgs() *Compiler {
	c := &Compiler{logLevel: report.LogLevelVerbose}

	ap := argParser{args: os.Args[1:], ndx: 0}

	// Parse all command line arguments.
	for {
		if name, value, ok := ap.nextArg(); ok {
			useArg(c, name, value)
		} else {
			break
		}
	}

	// Check to make sure an input path was specified.
	if c.inputPath == "" {
		argumentError("a workflow file must be specified")
	}

	// Set default values for any optional unspecified flags.
	if c.outputDir == "" {
		stem := filepath.Base(c.inputPath)
		stem = strings.TrimSuffix(stem, filepath.Ext(stem))
		c.outputDir = stem
	}

	return c
}
