package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/itsatony/go-quill"
	"github.com/itsatony/go-quill/extensions/translator"
	"go.uber.org/zap"
)

// CLI is the top-level command-line interface for quill.
type CLI struct {
	Config      string   `help:"YAML configuration file" short:"c" type:"existingfile"`
	TemplateDir string   `help:"Load templates by name from this directory" name:"template-dir" short:"d"`
	Syntax      string   `help:"Initial delimiter syntax (single, double, latte)" short:"s"`
	Strict      bool     `help:"Enable strict parsing and strict types"`
	Catalogs    string   `help:"Directory of .po translation catalogs; enables the translator extension" type:"existingdir"`
	Locale      string   `help:"Static translation locale"`
	Linter      []string `help:"Linter command run over generated output" sep:"none"`
	Debug       bool     `help:"Log debug output to stderr"`

	Compile compileCmd `cmd:"" help:"Compile templates and report errors"`
	Dump    dumpCmd    `cmd:"" help:"Print the compiled tree of a template"`
	Tables  tablesCmd  `cmd:"" help:"List merged tags, filters, functions and passes"`
	Version versionCmd `cmd:"" help:"Show version information"`
}

// app carries the output streams and the engine to commands
type app struct {
	stdout io.Writer
	stderr io.Writer
	cli    *CLI
	engine *quill.Engine
}

// errValidation marks failures already reported per template
var errValidation = errors.New(ErrMsgTemplatesInvalid)

// exitRequest is raised by kong's exit hook and recovered in run
type exitRequest int

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			req, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			code = int(req)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name(CLIName),
		kong.Description(CLIDescription),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitRequest(code)) }),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
	)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgBuildEngine, err)
		return ExitCodeError
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtError, err)
		return ExitCodeUsageError
	}

	a := &app{stdout: stdout, stderr: stderr, cli: &cli}
	if ktx.Command() != CmdNameVersion {
		engine, err := buildEngine(&cli)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgBuildEngine, err)
			return ExitCodeError
		}
		defer engine.Close()
		a.engine = engine
	}

	err = ktx.Run(a)
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, errValidation):
		return ExitCodeValidationError
	default:
		fmt.Fprintf(stderr, FmtError, err)
		return ExitCodeError
	}
}

// buildEngine creates the engine from the configuration file and flags;
// flags win over the file
func buildEngine(cli *CLI) (*quill.Engine, error) {
	var opts []quill.Option
	extensions := map[string]quill.Extension{}

	if cli.Catalogs != "" {
		var topts []translator.Option
		if cli.Locale != "" {
			topts = append(topts, translator.WithStaticLocale(cli.Locale))
		}
		tr, err := translator.NewFromDir(cli.Catalogs, topts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgLoadCatalogs, err)
		}
		extensions[translator.ExtensionName] = tr
	}

	if cli.Config != "" {
		cfg, err := quill.LoadConfig(cli.Config)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgLoadConfig, err)
		}
		fileOpts, err := cfg.Options(extensions)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgLoadConfig, err)
		}
		opts = append(opts, fileOpts...)
	} else if tr, ok := extensions[translator.ExtensionName]; ok {
		opts = append(opts, quill.WithExtensions(tr))
	}

	if cli.TemplateDir != "" {
		opts = append(opts, quill.WithLoader(quill.NewFileLoader(cli.TemplateDir)))
	}
	if cli.Syntax != "" {
		opts = append(opts, quill.WithSyntax(cli.Syntax))
	}
	if cli.Strict {
		opts = append(opts, quill.WithStrictParsing(true), quill.WithStrictTypes(true))
	}
	if len(cli.Linter) > 0 {
		opts = append(opts, quill.WithLinter(cli.Linter...))
	}
	if cli.Debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, quill.WithLogger(logger))
	}
	return quill.New(opts...)
}

// compileTarget compiles a template by name through the loader when a
// template directory is set, otherwise from a file path
func (a *app) compileTarget(target string) (*quill.Compiled, error) {
	if a.cli.TemplateDir != "" {
		return a.engine.Compile(target)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgReadFileFailed, err)
	}
	return a.engine.CompileString(filepath.Base(target), string(data))
}
