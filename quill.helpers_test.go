package quill

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/require"
)

// testExtension contributes whatever tables a test fills in
type testExtension struct {
	BaseExtension

	name          string
	tags          *Table[TagHandler]
	filters       *Table[Callable]
	functions     *Table[Callable]
	passes        *Table[PassFunc]
	beforeCompile func(*CompileState) error
	beforeRender  func(*Instance)
}

func (e *testExtension) Name() string { return e.name }

func (e *testExtension) BeforeCompile(state *CompileState) error {
	if e.beforeCompile != nil {
		return e.beforeCompile(state)
	}
	return nil
}

func (e *testExtension) BeforeRender(inst *Instance) {
	if e.beforeRender != nil {
		e.beforeRender(inst)
	}
}

func (e *testExtension) Tags(*CompileState) *Table[TagHandler]    { return e.tags }
func (e *testExtension) Filters(*CompileState) *Table[Callable]   { return e.filters }
func (e *testExtension) Functions(*CompileState) *Table[Callable] { return e.functions }
func (e *testExtension) Passes(*CompileState) *Table[PassFunc]    { return e.passes }

// compileTest compiles source with a fresh engine
func compileTest(t *testing.T, source string, opts ...Option) *Compiled {
	t.Helper()
	compiled, err := MustNew(opts...).CompileString("test", source)
	require.NoError(t, err)
	return compiled
}

// compileErr compiles source and returns the error
func compileErr(t *testing.T, source string, opts ...Option) error {
	t.Helper()
	_, err := MustNew(opts...).CompileString("test", source)
	require.Error(t, err)
	return err
}

// requireCustomError unwraps err into a *cuserr.CustomError
func requireCustomError(t *testing.T, err error) *cuserr.CustomError {
	t.Helper()
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr), "expected CustomError, got %T", err)
	return customErr
}

// requireMeta asserts one metadata value of a custom error
func requireMeta(t *testing.T, err error, key, want string) {
	t.Helper()
	customErr := requireCustomError(t, err)
	got, ok := customErr.GetMetadata(key)
	require.True(t, ok, "missing metadata %q", key)
	require.Equal(t, want, got)
}

// mainChildren returns the top-level nodes of the main fragment
func mainChildren(c *Compiled) []Node {
	return c.Root.Main.Children
}

// newTestParser builds a parser over the core tables plus exts
func newTestParser(t *testing.T, source string, exts ...Extension) *Parser {
	t.Helper()
	registry := NewRegistry(nil)
	registry.Register(NewCoreExtension())
	for _, ext := range exts {
		registry.Register(ext)
	}
	state := NewCompileState("test", map[string]bool{}, nil, nil)
	tables, err := registry.CompileStart(state)
	require.NoError(t, err)
	syntax, err := SyntaxConfig(SyntaxSingle, "")
	require.NoError(t, err)
	return NewParser(source, syntax, tables, state)
}
