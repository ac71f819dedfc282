package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kumeo/artifact"
	"kumeo/codegen"
	"kumeo/ir"
	"kumeo/render"
	"kumeo/report"
	"kumeo/syntax"
	"kumeo/templates"
	"kumeo/walk"
)

// Compile runs the full pipeline: parse, analyze, generate, write.  Each
// phase gates on the reporter so later phases never see a broken input.
func (c *Compiler) Compile(r *report.Reporter) int {
	log := c.newLogger()
	defer log.Sync()

	data, err := os.ReadFile(c.inputPath)
	if err != nil {
		r.ReportError(report.CodeIORead, c.inputPath, nil,
			fmt.Sprintf("cannot read workflow file: %v", err))
		r.Display(os.Stdout)
		return ExitIO
	}

	src := []rune(string(data))
	r.AddSource(c.inputPath, src)

	policy, code := c.loadPolicy(r)
	if code != ExitOK {
		r.Display(os.Stdout)
		return code
	}

	log.Debug("parsing", zap.String("file", c.inputPath))
	prog := syntax.NewParser(r, c.inputPath, src).Parse()

	var irProg *ir.Program
	if !r.AnyErrors() {
		log.Debug("analyzing")
		irProg = walk.NewWalker(r, log, prog, policy).Walk()
	}

	if r.AnyErrors() {
		r.Display(os.Stdout)
		return ExitDiags
	}

	if c.checkOnly {
		r.Display(os.Stdout)
		return ExitOK
	}

	log.Debug("generating", zap.Int("workflows", len(irProg.Workflows)))
	tree := c.generate(r, irProg, log)

	if r.AnyErrors() {
		r.Display(os.Stdout)
		return ExitDiags
	}

	if code := c.checkOutputDir(r); code != ExitOK {
		r.Display(os.Stdout)
		return code
	}

	if err := artifact.NewWriter(c.outputDir, log).WriteTree(tree); err != nil {
		r.ReportError(report.CodeIOWrite, c.outputDir, nil, err.Error())
		r.Display(os.Stdout)
		return ExitIO
	}

	r.Display(os.Stdout)
	return ExitOK
}

// loadPolicy resolves the language policy: the default table, overridden by
// the `-p` file when given.
func (c *Compiler) loadPolicy(r *report.Reporter) (ir.LanguagePolicy, int) {
	if c.policyPath == "" {
		return ir.DefaultLanguagePolicy(), ExitOK
	}

	policy, err := ir.LoadLanguagePolicy(c.policyPath)
	if err != nil {
		r.ReportError(report.CodeIORead, c.policyPath, nil,
			fmt.Sprintf("cannot load language policy: %v", err))
		return nil, ExitIO
	}

	for kind, lang := range policy {
		if ir.DefaultLanguagePolicy()[kind] != lang {
			r.ReportWarning(report.CodeWarnOverride, c.policyPath, nil,
				fmt.Sprintf("language for `%s` overridden to `%s`", kind, lang))
		}
	}

	return policy, ExitOK
}

// generate renders every workflow using either the built-in bundles or the
// directory given with `-t`.
func (c *Compiler) generate(r *report.Reporter, prog *ir.Program, log *zap.Logger) *artifact.Tree {
	fsys := templates.Builtin()
	if c.templatesDir != "" {
		fsys = os.DirFS(c.templatesDir)
	}

	engine := render.NewEngine(fsys)
	return codegen.NewGenerator(r, engine, c.inputPath, log).Generate(prog)
}

// checkOutputDir verifies the output directory is absent or empty, so a run
// never silently mixes new artifacts into old ones.
func (c *Compiler) checkOutputDir(r *report.Reporter) int {
	entries, err := os.ReadDir(c.outputDir)
	if os.IsNotExist(err) {
		return ExitOK
	}
	if err != nil {
		r.ReportError(report.CodeIOWrite, c.outputDir, nil,
			fmt.Sprintf("cannot inspect output directory: %v", err))
		return ExitIO
	}

	if len(entries) > 0 {
		r.ReportError(report.CodeIOWrite, c.outputDir, nil,
			"output directory is not empty")
		return ExitIO
	}

	return ExitOK
}

// newLogger builds the phase tracing logger: a development logger on stderr
// with `-d`, a no-op otherwise.
func (c *Compiler) newLogger() *zap.Logger {
	if !c.debug {
		return zap.NewNop()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}

	return log
}
