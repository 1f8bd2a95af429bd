package quill

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Tables holds the four merged capability tables of one compile
type Tables struct {
	Tags      *Table[TagHandler]
	Filters   *Table[Callable]
	Functions *Table[Callable]
	Passes    *Table[PassFunc]
}

// Registry holds extensions in registration order and merges their
// contributions at compile start. A later extension overrides an earlier one
// under the same name without any diagnostic.
type Registry struct {
	mu         sync.RWMutex
	extensions []Extension
	logger     *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Register appends ext. Registering the same extension twice is allowed.
func (r *Registry) Register(ext Extension) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions = append(r.extensions, ext)
	r.logger.Debug(LogMsgExtensionAdded,
		zap.String(LogFieldExtension, extensionName(ext)),
		zap.Int(LogFieldCount, len(r.extensions)),
	)
}

// Extensions returns the registered extensions in order
func (r *Registry) Extensions() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Extension, len(r.extensions))
	copy(out, r.extensions)
	return out
}

// CompileStart runs BeforeCompile on every extension, then merges functions,
// tags, filters and passes in registration order. Host and gated entries are
// resolved here, once. The returned tables are frozen.
func (r *Registry) CompileStart(state *CompileState) (*Tables, error) {
	extensions := r.Extensions()

	for _, ext := range extensions {
		if err := ext.BeforeCompile(state); err != nil {
			return nil, NewCompileError(ErrMsgBeforeCompileFailed, err)
		}
	}

	tables := &Tables{
		Tags:      NewTable[TagHandler](),
		Filters:   NewTable[Callable](),
		Functions: NewTable[Callable](),
		Passes:    NewTable[PassFunc](),
	}

	for _, ext := range extensions {
		tables.Functions.Merge(ext.Functions(state))
	}
	r.resolveCallables(tables.Functions, state)
	state.functionNames = tables.Functions.Names()

	for _, ext := range extensions {
		tables.Tags.Merge(ext.Tags(state))
		tables.Filters.Merge(ext.Filters(state))
	}
	r.resolveCallables(tables.Filters, state)

	for _, ext := range extensions {
		tables.Passes.Merge(ext.Passes(state))
	}

	tables.Tags.Freeze()
	tables.Filters.Freeze()
	tables.Functions.Freeze()
	tables.Passes.Freeze()

	r.logger.Debug(LogMsgTablesMerged,
		zap.String(LogFieldTemplate, state.Template),
		zap.Int(LogFieldTags, tables.Tags.Len()),
		zap.Int(LogFieldFilters, tables.Filters.Len()),
		zap.Int(LogFieldFunctions, tables.Functions.Len()),
		zap.Int(LogFieldPasses, tables.Passes.Len()),
	)
	return tables, nil
}

// RenderStart runs BeforeRender on every extension for a new instance
func (r *Registry) RenderStart(inst *Instance) {
	for _, ext := range r.Extensions() {
		ext.BeforeRender(inst)
	}
	r.logger.Debug(LogMsgRenderStart, zap.String(LogFieldTemplate, inst.Name()))
}

// resolveCallables replaces host and gated entries in place
func (r *Registry) resolveCallables(table *Table[Callable], state *CompileState) {
	for _, name := range table.Names() {
		entry, _ := table.Get(name)
		resolved, stubbed := entry.resolve(name, state)
		if stubbed {
			r.logger.Debug(LogMsgEntryStubbed,
				zap.String(LogFieldEntry, name),
				zap.String(LogFieldCapability, resolved.Requirement()),
			)
		}
		table.Set(name, resolved)
	}
}

// extensionName names an extension for logs
func extensionName(ext Extension) string {
	if named, ok := ext.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", ext)
}
