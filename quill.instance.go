package quill

import (
	"maps"
	"slices"
	"sync"

	"github.com/expr-lang/expr"
)

// Compiled is the result of compiling one template
type Compiled struct {
	Name        string
	Source      string
	Root        *TemplateNode
	Tables      *Tables
	Blocks      []string // Names of blocks defined by the template, sorted
	StrictTypes bool
}

// collectBlocks returns the sorted names of named blocks and defines under root
func collectBlocks(root *TemplateNode) []string {
	seen := make(map[string]bool)
	Walk(root, func(n Node) bool {
		switch node := n.(type) {
		case *BlockNode:
			if node.Name != "" {
				seen[node.Name] = true
			}
		case *DefineNode:
			seen[node.Name] = true
		}
		return true
	})
	return slices.Sorted(maps.Keys(seen))
}

// Instance is one render of a compiled template. It is passed to every filter
// and function call, so render-scoped data never lives on an extension.
type Instance struct {
	compiled *Compiled
	params   map[string]any

	mu     sync.RWMutex
	blocks map[string]bool
	state  map[string]any
}

// newInstance creates an instance; the engine runs the render-start hooks
func newInstance(compiled *Compiled, params map[string]any) *Instance {
	inst := &Instance{
		compiled: compiled,
		params:   make(map[string]any, len(params)),
		blocks:   make(map[string]bool),
		state:    make(map[string]any),
	}
	maps.Copy(inst.params, params)
	for _, name := range compiled.Blocks {
		inst.blocks[name] = true
	}
	return inst
}

// Name returns the template name
func (i *Instance) Name() string {
	return i.compiled.Name
}

// Compiled returns the compiled template being rendered
func (i *Instance) Compiled() *Compiled {
	return i.compiled
}

// Params returns a copy of the render parameters
func (i *Instance) Params() map[string]any {
	return maps.Clone(i.params)
}

// Param returns one render parameter
func (i *Instance) Param(name string) (any, bool) {
	v, ok := i.params[name]
	return v, ok
}

// HasBlock reports whether the instance has a block named name. A nil
// instance has no blocks.
func (i *Instance) HasBlock(name string) bool {
	if i == nil {
		return false
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.blocks[name]
}

// AddBlock registers a block added at render time, e.g. by an included template
func (i *Instance) AddBlock(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.blocks[name] = true
}

// SetState stores per-render data for an extension
func (i *Instance) SetState(key string, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state[key] = value
}

// State returns per-render data stored by SetState
func (i *Instance) State(key string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.state[key]
	return v, ok
}

// CallFunction calls a template function by name
func (i *Instance) CallFunction(name string, args ...any) (any, error) {
	fn, ok := i.compiled.Tables.Functions.Get(name)
	if !ok {
		return nil, NewRuntimeError(ErrMsgUnknownFunction, name, nil)
	}
	return fn.Call(i, args...)
}

// ApplyFilter applies a filter by name to value
func (i *Instance) ApplyFilter(name string, value any, args ...any) (any, error) {
	filter, ok := i.compiled.Tables.Filters.Get(name)
	if !ok {
		return nil, NewRuntimeError(ErrMsgUnknownFilter, name, nil)
	}
	return filter.Call(i, append([]any{value}, args...)...)
}

// ApplyFilters evaluates the arguments of each filter and applies the chain
// to value from left to right
func (i *Instance) ApplyFilters(value any, filters []*FilterNode) (any, error) {
	for _, f := range filters {
		args := make([]any, len(f.Args))
		for n, arg := range f.Args {
			v, err := i.Evaluate(arg)
			if err != nil {
				return nil, err
			}
			args[n] = v
		}
		var err error
		if value, err = i.ApplyFilter(f.Name, value, args...); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// Evaluate computes the value of an argument against the render parameters.
// Template functions are callable from the expression. Undefined variables
// evaluate to nil unless the template was compiled with strict types.
func (i *Instance) Evaluate(e Expr) (any, error) {
	switch node := e.(type) {
	case *StringNode:
		return node.Value, nil
	case *ExpressionNode:
		return i.evaluateExpression(node)
	}
	return nil, NewRuntimeError(ErrMsgEvaluateFailed, e.Source(), nil)
}

func (i *Instance) evaluateExpression(node *ExpressionNode) (any, error) {
	env := i.Params()
	opts := []expr.Option{expr.Env(env)}
	if !i.compiled.StrictTypes {
		opts = append(opts, expr.AllowUndefinedVariables())
	}
	for _, name := range node.Calls {
		if !i.compiled.Tables.Functions.Has(name) {
			continue
		}
		opts = append(opts, expr.Function(name, func(args ...any) (any, error) {
			return i.CallFunction(name, args...)
		}))
	}

	program, err := expr.Compile(node.Code, opts...)
	if err != nil {
		return nil, NewRuntimeError(ErrMsgEvaluateFailed, node.Code, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, NewRuntimeError(ErrMsgEvaluateFailed, node.Code, err)
	}
	return out, nil
}
