package quill

import (
	"context"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Engine is the main entry point for quill. It owns the extension registry,
// compiles templates into trees through the pass pipeline, and creates
// render instances.
type Engine struct {
	registry *Registry
	config   *engineConfig
	syntax   LexerConfig
	watcher  *templateWatcher
	logger   *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string]*Compiled
}

// New creates a new quill Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	syntax, err := SyntaxConfig(config.syntax, "")
	if err != nil {
		return nil, err
	}

	registry := NewRegistry(logger)
	registry.Register(NewCoreExtension())
	for _, ext := range config.extensions {
		registry.Register(ext)
	}

	e := &Engine{
		registry: registry,
		config:   config,
		syntax:   syntax,
		logger:   logger,
		cache:    make(map[string]*Compiled),
	}

	if _, isFile := config.loader.(*FileLoader); isFile && config.autoRefresh {
		w, err := newTemplateWatcher(e.Invalidate, logger)
		if err != nil {
			return nil, NewEngineError(ErrMsgWatcherFailed, err)
		}
		e.watcher = w
	}

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldOpen, syntax.OpenDelim),
		zap.String(LogFieldClose, syntax.CloseDelim),
		zap.Int(LogFieldCount, len(registry.Extensions())),
	)
	return e, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// AddExtension registers an extension after all existing ones. It takes
// effect from the next compile.
func (e *Engine) AddExtension(ext Extension) {
	e.registry.Register(ext)
}

// Registry returns the extension registry
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Tables merges the capability tables as a compile of name would see them
func (e *Engine) Tables(name string) (*Tables, error) {
	return e.registry.CompileStart(e.compileState(name))
}

// CompileString compiles source under name: extensions contribute tables,
// the parser builds the tree and the passes transform it.
func (e *Engine) CompileString(name string, source string) (*Compiled, error) {
	start := time.Now()
	e.logger.Debug(LogMsgCompileStart, zap.String(LogFieldTemplate, name))

	state := e.compileState(name)
	tables, err := e.registry.CompileStart(state)
	if err != nil {
		return nil, err
	}

	root, err := NewParser(source, e.syntax, tables, state).Parse()
	if err != nil {
		return nil, err
	}
	root, err = NewPipeline(tables.Passes, e.logger).Run(root)
	if err != nil {
		return nil, err
	}

	compiled := &Compiled{
		Name:        name,
		Source:      source,
		Root:        root,
		Tables:      tables,
		Blocks:      collectBlocks(root),
		StrictTypes: e.config.strictTypes,
	}
	e.logger.Debug(LogMsgCompileDone,
		zap.String(LogFieldTemplate, name),
		zap.Duration(LogFieldDuration, time.Since(start)),
	)
	return compiled, nil
}

// Compile loads and compiles a template through the configured loader.
// Results are cached until invalidated.
func (e *Engine) Compile(name string) (*Compiled, error) {
	e.cacheMu.RLock()
	cached, ok := e.cache[name]
	e.cacheMu.RUnlock()
	if ok {
		e.logger.Debug(LogMsgCacheHit, zap.String(LogFieldTemplate, name))
		return cached, nil
	}

	if e.config.loader == nil {
		return nil, NewEngineError(ErrMsgNoLoader, nil)
	}
	source, err := e.config.loader.Load(name)
	if err != nil {
		return nil, err
	}
	compiled, err := e.CompileString(name, source)
	if err != nil {
		return nil, err
	}

	e.cacheMu.Lock()
	e.cache[name] = compiled
	e.cacheMu.Unlock()
	e.watch(name)
	return compiled, nil
}

// Invalidate drops a cached template
func (e *Engine) Invalidate(name string) {
	e.cacheMu.Lock()
	_, ok := e.cache[name]
	delete(e.cache, name)
	e.cacheMu.Unlock()
	if ok {
		e.logger.Debug(LogMsgCacheInvalidated, zap.String(LogFieldTemplate, name))
	}
}

// NewInstance starts a render of compiled with params. Every extension's
// BeforeRender hook runs before it is returned.
func (e *Engine) NewInstance(compiled *Compiled, params map[string]any) *Instance {
	inst := newInstance(compiled, params)
	e.registry.RenderStart(inst)
	return inst
}

// Generate produces the output of compiled and, if a linter is configured,
// runs it over the output.
func (e *Engine) Generate(ctx context.Context, compiled *Compiled) ([]byte, error) {
	out, err := e.config.generator.Generate(compiled)
	if err != nil {
		return nil, err
	}
	if len(e.config.linter) > 0 {
		if err := e.lint(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Close stops the template watcher, if any
func (e *Engine) Close() error {
	if e.watcher == nil {
		return nil
	}
	return e.watcher.Close()
}

func (e *Engine) compileState(name string) *CompileState {
	state := NewCompileState(name, e.config.capabilities(), e.config.routines, e.logger)
	state.StrictParsing = e.config.strictParsing
	state.StrictTypes = e.config.strictTypes
	return state
}

// watch adds the file of a loaded template to the watcher
func (e *Engine) watch(name string) {
	loader, ok := e.config.loader.(*FileLoader)
	if e.watcher == nil || !ok {
		return
	}
	path, err := loader.Path(name)
	if err == nil {
		err = e.watcher.Watch(name, path)
	}
	if err != nil {
		e.logger.Warn(LogMsgWatchFailed, zap.String(LogFieldTemplate, name), zap.Error(err))
	}
}

// lint writes output to a file in the temp directory and runs the linter on it
func (e *Engine) lint(ctx context.Context, output []byte) error {
	dir := e.config.tempDir
	if dir != "" {
		if err := os.MkdirAll(dir, DefaultTempDirPerm); err != nil {
			return NewEngineError(ErrMsgTempDir, err)
		}
	}
	f, err := os.CreateTemp(dir, DefaultLintFilePrefix+"*"+e.config.generator.FileExtension())
	if err != nil {
		return NewEngineError(ErrMsgTempDir, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(output); err != nil {
		f.Close()
		return NewEngineError(ErrMsgTempDir, err)
	}
	if err := f.Close(); err != nil {
		return NewEngineError(ErrMsgTempDir, err)
	}

	command := strings.Join(e.config.linter, " ")
	e.logger.Debug(LogMsgLinterRun,
		zap.String(LogFieldCommand, command),
		zap.String(LogFieldPath, f.Name()),
	)
	args := append(slices.Clone(e.config.linter[1:]), f.Name())
	out, err := exec.CommandContext(ctx, e.config.linter[0], args...).CombinedOutput()
	if err != nil {
		return NewLintError(command, string(out), err)
	}
	return nil
}
