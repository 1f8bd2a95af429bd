package quill

import (
	"sort"

	"go.uber.org/zap"
)

// Extension contributes tags, filters, functions and passes to an engine and
// receives lifecycle hooks. Extensions are long-lived and shared by every
// compile and render of the engine that holds them, so per-render data must
// be kept on the *Instance rather than on the extension.
type Extension interface {
	// BeforeCompile runs once per compile before tables are collected.
	// An error aborts the compile.
	BeforeCompile(state *CompileState) error

	// BeforeRender runs once per render, when an instance is created
	BeforeRender(inst *Instance)

	Tags(state *CompileState) *Table[TagHandler]
	Filters(state *CompileState) *Table[Callable]
	Functions(state *CompileState) *Table[Callable]
	Passes(state *CompileState) *Table[PassFunc]
}

// BaseExtension implements Extension with no-ops. Embed it and override the
// methods you need.
type BaseExtension struct{}

// BeforeCompile does nothing
func (BaseExtension) BeforeCompile(*CompileState) error { return nil }

// BeforeRender does nothing
func (BaseExtension) BeforeRender(*Instance) {}

// Tags contributes nothing
func (BaseExtension) Tags(*CompileState) *Table[TagHandler] { return nil }

// Filters contributes nothing
func (BaseExtension) Filters(*CompileState) *Table[Callable] { return nil }

// Functions contributes nothing
func (BaseExtension) Functions(*CompileState) *Table[Callable] { return nil }

// Passes contributes nothing
func (BaseExtension) Passes(*CompileState) *Table[PassFunc] { return nil }

// TagFunc parses one tag occurrence and returns its node
type TagFunc func(tag *Tag, p *Parser) (Node, error)

// Continuation receives the parsed body of a suspended tag and builds the final node
type Continuation func(body *FragmentNode) (Node, error)

// PrepareFunc is the first phase of a suspending tag. It consumes the tag's
// arguments and describes how the body must be parsed.
type PrepareFunc func(tag *Tag, p *Parser) (*Suspension, error)

// Suspension asks the parser to parse a tag body under a mutated lexer
// configuration. The parser snapshots the configuration, applies Mutate,
// parses the body up to the closing tag named EndTag, restores the snapshot
// and calls Finish with the body.
type Suspension struct {
	Mutate func(cfg *LexerConfig) error
	EndTag string
	Finish Continuation
}

// TagHandler is a tag table entry: either a simple handler that returns a node
// directly, or a suspending handler that follows the prepare/finish protocol.
type TagHandler struct {
	simple  TagFunc
	prepare PrepareFunc
}

// SimpleTag creates a handler that returns its node directly
func SimpleTag(fn TagFunc) TagHandler {
	return TagHandler{simple: fn}
}

// SuspendingTag creates a handler whose body is parsed by the parser between
// the prepare and finish phases
func SuspendingTag(fn PrepareFunc) TagHandler {
	return TagHandler{prepare: fn}
}

// Suspends reports whether the handler follows the prepare/finish protocol
func (h TagHandler) Suspends() bool {
	return h.prepare != nil
}

// PassFunc transforms a whole template tree. It may mutate root in place and
// return it, or return a replacement root.
type PassFunc func(root *TemplateNode) (*TemplateNode, error)

// InPlace adapts a pass that only mutates the tree
func InPlace(fn func(root *TemplateNode) error) PassFunc {
	return func(root *TemplateNode) (*TemplateNode, error) {
		if err := fn(root); err != nil {
			return nil, err
		}
		return root, nil
	}
}

// CompileState is the read-only engine view handed to extensions for one compile
type CompileState struct {
	Template      string // Name of the template being compiled
	StrictParsing bool
	StrictTypes   bool
	Logger        *zap.Logger

	capabilities  map[string]bool
	routines      map[string]HostRoutine
	functionNames []string
}

// NewCompileState creates a compile state. A nil logger is replaced by a no-op logger.
func NewCompileState(template string, capabilities map[string]bool, routines map[string]HostRoutine, logger *zap.Logger) *CompileState {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompileState{
		Template:     template,
		Logger:       logger,
		capabilities: capabilities,
		routines:     routines,
	}
}

// HasCapability reports whether an optional capability is available
func (s *CompileState) HasCapability(name string) bool {
	return s.capabilities[name]
}

// Capabilities returns the available capabilities, sorted
func (s *CompileState) Capabilities() []string {
	out := make([]string, 0, len(s.capabilities))
	for name, ok := range s.capabilities {
		if ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// HostRoutine returns the host routine registered under name
func (s *CompileState) HostRoutine(name string) (HostRoutine, bool) {
	routine, ok := s.routines[name]
	return routine, ok && routine != nil
}

// FunctionNames returns the merged function names. It is populated before
// tags, filters and passes are collected.
func (s *CompileState) FunctionNames() []string {
	out := make([]string, len(s.functionNames))
	copy(out, s.functionNames)
	return out
}
