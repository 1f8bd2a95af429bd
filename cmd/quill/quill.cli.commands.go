package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/itsatony/go-quill"
)

// compileCmd compiles every template and reports each result
type compileCmd struct {
	Templates []string `arg:"" help:"Template files, or names when --template-dir is set"`
}

// Run executes the compile command.
func (c *compileCmd) Run(a *app) error {
	failed := false
	for _, target := range c.Templates {
		compiled, err := a.compileTarget(target)
		if err != nil {
			failed = true
			fmt.Fprintf(a.stderr, FmtCompileFail, target, err)
			continue
		}
		fmt.Fprintf(a.stdout, FmtCompileOK, target, len(compiled.Blocks))
	}
	if failed {
		return errValidation
	}
	return nil
}

// dumpCmd prints the generated tree of one template
type dumpCmd struct {
	Template string `arg:"" help:"Template file, or name when --template-dir is set"`
	Output   string `help:"Write to this file instead of stdout" short:"o"`
}

// Run executes the dump command.
func (c *dumpCmd) Run(a *app) error {
	compiled, err := a.compileTarget(c.Template)
	if err != nil {
		fmt.Fprintf(a.stderr, FmtCompileFail, c.Template, err)
		return errValidation
	}
	out, err := a.engine.Generate(context.Background(), compiled)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgGenerateFailed, err)
	}
	if c.Output != "" {
		if err := os.WriteFile(c.Output, out, FilePermissions); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgWriteFailed, err)
		}
		return nil
	}
	_, err = a.stdout.Write(out)
	return err
}

// tablesCmd lists the merged capability tables
type tablesCmd struct{}

// Run executes the tables command.
func (c *tablesCmd) Run(a *app) error {
	tables, err := a.engine.Tables(CLIName)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, FmtTableHeader, SectionTags)
	for _, name := range tables.Tags.Names() {
		fmt.Fprintf(a.stdout, FmtTableEntry, name)
	}
	printCallables(a, SectionFilters, tables.Filters)
	printCallables(a, SectionFunctions, tables.Functions)
	fmt.Fprintf(a.stdout, FmtTableHeader, SectionPasses)
	for _, name := range tables.Passes.Names() {
		fmt.Fprintf(a.stdout, FmtTableEntry, name)
	}
	return nil
}

func printCallables(a *app, section string, table *quill.Table[quill.Callable]) {
	fmt.Fprintf(a.stdout, FmtTableHeader, section)
	table.Each(func(name string, c quill.Callable) {
		fmt.Fprintf(a.stdout, FmtTableCallable, name, c.Kind())
	})
}

// versionCmd prints the library version
type versionCmd struct{}

// Run executes the version command.
func (c *versionCmd) Run(a *app) error {
	fmt.Fprintf(a.stdout, FmtVersion, CLIName, quill.Version, runtime.Version())
	return nil
}
