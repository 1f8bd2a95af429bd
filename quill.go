// Package quill provides the extensible core of a template compiler.
//
// Extensions contribute tag handlers, filters, functions and tree passes to
// one engine. The engine merges their contributions at the start of every
// compile, parses the template by dispatching each tag to its handler, and
// runs the passes over the resulting tree.
//
//	{block header}Hello {$name|upper}{/block}
//	{if hasBlock('header')}{include #header}{/if}
//
// # Basic Usage
//
//	engine := quill.MustNew()
//	compiled, err := engine.CompileString("page", source)
//	inst := engine.NewInstance(compiled, map[string]any{"name": "Alice"})
//	out, err := inst.ApplyFilter("upper", "alice")
//
// # Extensions
//
// An extension embeds BaseExtension and overrides what it contributes:
//
//	type MyExtension struct{ quill.BaseExtension }
//
//	func (MyExtension) Filters(*quill.CompileState) *quill.Table[quill.Callable] {
//	    return quill.NewTable[quill.Callable]().
//	        Set("shout", quill.Pure(func(_ *quill.Instance, args ...any) (any, error) {
//	            return fmt.Sprint(args[0]) + "!", nil
//	        }))
//	}
//
// Extensions registered later override earlier entries of the same name. The
// core extension is always registered first.
//
// # Suspending Tags
//
// A tag that changes the lexer configuration for its body returns a
// Suspension from its prepare step. The parser applies the mutation, parses
// the body, restores the previous configuration and hands the body to the
// continuation:
//
//	{syntax double}{{$x}}{{/syntax}}
//	{syntax off}{not a tag}{/syntax}
//
// # Capabilities
//
// Filters and functions may depend on host routines or optional
// capabilities. Missing dependencies do not fail the compile; the entry is
// replaced by a stub that fails when called, naming the missing capability
// and the entry.
package quill

// Version is the library version
const Version = "0.1.0"
