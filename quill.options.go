package quill

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	tempDir       string
	autoRefresh   bool
	strictTypes   bool
	strictParsing bool
	linter        []string
	syntax        string
	extensions    []Extension
	disabled      map[string]bool
	routines      map[string]HostRoutine
	loader        Loader
	generator     Generator
	logger        *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		syntax:    DefaultSyntax,
		disabled:  make(map[string]bool),
		routines:  defaultHostRoutines(),
		generator: NewYAMLGenerator(),
		logger:    nil,
	}
}

// WithTempDirectory sets the directory for linter input files.
// Default: the system temp directory
func WithTempDirectory(dir string) Option {
	return func(c *engineConfig) {
		c.tempDir = dir
	}
}

// WithAutoRefresh invalidates cached templates when their files change.
// Only templates loaded through a FileLoader are watched.
func WithAutoRefresh(enabled bool) Option {
	return func(c *engineConfig) {
		c.autoRefresh = enabled
	}
}

// WithStrictTypes makes undefined variables an evaluation error.
func WithStrictTypes(enabled bool) Option {
	return func(c *engineConfig) {
		c.strictTypes = enabled
	}
}

// WithStrictParsing also rejects $this and $global in templates.
func WithStrictParsing(enabled bool) Option {
	return func(c *engineConfig) {
		c.strictParsing = enabled
	}
}

// WithLinter sets a command run over every generated output. The path of the
// generated file is appended as the last argument.
func WithLinter(command ...string) Option {
	return func(c *engineConfig) {
		c.linter = command
	}
}

// WithSyntax sets the initial delimiter syntax: single, double or latte.
// Default: single
func WithSyntax(name string) Option {
	return func(c *engineConfig) {
		if name != "" {
			c.syntax = name
		}
	}
}

// WithExtensions registers extensions after the core extension, in order.
func WithExtensions(extensions ...Extension) Option {
	return func(c *engineConfig) {
		c.extensions = append(c.extensions, extensions...)
	}
}

// WithoutCapabilities marks optional capabilities as unavailable. Entries
// gated on them compile but fail when called.
func WithoutCapabilities(capabilities ...string) Option {
	return func(c *engineConfig) {
		for _, name := range capabilities {
			c.disabled[name] = true
		}
	}
}

// WithHostRoutine provides or replaces a named host routine. A nil routine
// removes it.
func WithHostRoutine(name string, routine HostRoutine) Option {
	return func(c *engineConfig) {
		if routine == nil {
			delete(c.routines, name)
			return
		}
		c.routines[name] = routine
	}
}

// WithLoader sets the loader used by Engine.Compile.
func WithLoader(loader Loader) Option {
	return func(c *engineConfig) {
		c.loader = loader
	}
}

// WithGenerator sets the generator used by Engine.Generate.
// Default: the YAML tree generator
func WithGenerator(generator Generator) Option {
	return func(c *engineConfig) {
		if generator != nil {
			c.generator = generator
		}
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// capabilities returns the available optional capabilities
func (c *engineConfig) capabilities() map[string]bool {
	out := map[string]bool{
		CapabilityUnicode:         true,
		CapabilityTransliteration: true,
	}
	for name := range c.disabled {
		out[name] = false
	}
	return out
}
