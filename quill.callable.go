package quill

// CallFunc implements a filter or function. The render-time instance is passed
// on every call; filters receive the filtered value as args[0].
type CallFunc func(inst *Instance, args ...any) (any, error)

// HostRoutine is a named routine provided by the embedding application
type HostRoutine func(args ...any) (any, error)

// callableKind tags the variant held by a Callable
type callableKind uint8

const (
	callablePure callableKind = iota
	callableHost
	callableGated
)

// Callable kind names reported by Callable.Kind
const (
	CallableKindPure  = "pure"
	CallableKindHost  = "host"
	CallableKindGated = "gated"
	CallableKindStub  = "stub"
)

// Callable is a filter or function table entry: a pure function, a reference
// to a host routine, or a function gated on an optional capability. Host and
// gated entries are resolved once when the registry merges tables; after that
// every entry is either a working function or a stub that always fails.
type Callable struct {
	kind       callableKind
	fn         CallFunc
	routine    string
	capability string
	stub       bool
}

// Pure creates an entry backed by fn
func Pure(fn CallFunc) Callable {
	return Callable{kind: callablePure, fn: fn}
}

// Host creates an entry backed by the host routine registered under routine
func Host(routine string) Callable {
	return Callable{kind: callableHost, routine: routine}
}

// Gated creates an entry that is only usable when capability is available
func Gated(capability string, fn CallFunc) Callable {
	return Callable{kind: callableGated, fn: fn, capability: capability}
}

// Kind describes the entry: pure, host, gated or stub
func (c Callable) Kind() string {
	switch {
	case c.stub:
		return CallableKindStub
	case c.capability != "":
		return CallableKindGated
	case c.routine != "":
		return CallableKindHost
	default:
		return CallableKindPure
	}
}

// Requirement returns the capability or routine the entry depends on, if any
func (c Callable) Requirement() string {
	if c.capability != "" {
		return c.capability
	}
	return c.routine
}

// Resolved reports whether the entry can be called directly
func (c Callable) Resolved() bool {
	return c.kind == callablePure && c.fn != nil
}

// Call invokes the entry. Unresolved host and gated entries fail.
func (c Callable) Call(inst *Instance, args ...any) (any, error) {
	if !c.Resolved() {
		return nil, NewRuntimeError(ErrMsgUnresolvedEntry, c.Requirement(), nil)
	}
	return c.fn(inst, args...)
}

// resolve turns a host or gated entry into a working entry or a failing stub.
// It reports whether a stub was produced.
func (c Callable) resolve(name string, state *CompileState) (Callable, bool) {
	switch c.kind {
	case callableHost:
		if routine, ok := state.HostRoutine(c.routine); ok {
			return Callable{kind: callablePure, routine: c.routine, fn: func(_ *Instance, args ...any) (any, error) {
				return routine(args...)
			}}, false
		}
		routine := c.routine
		return Callable{kind: callablePure, routine: routine, stub: true, fn: func(*Instance, ...any) (any, error) {
			return nil, NewMissingRoutineError(routine, name)
		}}, true

	case callableGated:
		if state.HasCapability(c.capability) {
			return Callable{kind: callablePure, capability: c.capability, fn: c.fn}, false
		}
		capability := c.capability
		return Callable{kind: callablePure, capability: capability, stub: true, fn: func(*Instance, ...any) (any, error) {
			return nil, NewCapabilityError(capability, name)
		}}, true
	}
	return c, false
}
