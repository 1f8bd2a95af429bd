package quill

import (
	"slices"
	"strings"

	"go.uber.org/zap"
)

// internalVariablesPass rejects variables reserved for generated code.
// Names starting with "__" are always rejected; $this and $global only
// when strict is set.
func internalVariablesPass(strict bool) PassFunc {
	return InPlace(func(root *TemplateNode) error {
		var failure error
		Walk(root, func(n Node) bool {
			if failure != nil {
				return false
			}
			var names []string
			switch node := n.(type) {
			case *ExpressionNode:
				names = node.Variables
			case Declarer:
				names = node.Declared()
			}
			for _, name := range names {
				if isForbiddenVariable(name, strict) {
					failure = NewForbiddenVariableError(name, n.Pos())
					return false
				}
			}
			return true
		})
		return failure
	})
}

func isForbiddenVariable(name string, strict bool) bool {
	if strings.HasPrefix(name, InternalVariablePrefix) {
		return true
	}
	return strict && (name == VariableThis || name == VariableGlobal)
}

// overwrittenVariablesPass records foreach loop variables that reuse a name
// assigned by {var} or {default} anywhere in the template
func overwrittenVariablesPass(logger *zap.Logger) PassFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return InPlace(func(root *TemplateNode) error {
		assigned := make(map[string]bool)
		var loops []*ForeachNode
		Walk(root, func(n Node) bool {
			switch node := n.(type) {
			case *VarNode:
				for _, name := range node.Declared() {
					assigned[name] = true
				}
			case *ForeachNode:
				loops = append(loops, node)
			}
			return true
		})

		for _, loop := range loops {
			loop.Overwritten = nil
			for _, name := range loop.Declared() {
				if !assigned[name] {
					continue
				}
				loop.Overwritten = append(loop.Overwritten, name)
				logger.Warn(LogMsgVariableOverwrite,
					zap.String(LogFieldVariable, name),
					zap.Stringer(LogFieldPosition, loop.Position),
				)
			}
		}
		return nil
	})
}

// customFunctionsPass marks calls to registered functions on every expression
func customFunctionsPass(names []string) PassFunc {
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}
	return InPlace(func(root *TemplateNode) error {
		Walk(root, func(n Node) bool {
			expr, ok := n.(*ExpressionNode)
			if !ok {
				return true
			}
			expr.CustomCalls = nil
			for _, call := range expr.Calls {
				if known[call] {
					expr.CustomCalls = append(expr.CustomCalls, call)
				}
			}
			return true
		})
		return nil
	})
}

// moveTemplatePrintToHead moves every {templatePrint} from the main body to
// the head, keeping their order
func moveTemplatePrintToHead(root *TemplateNode) error {
	if root.Main == nil {
		return nil
	}
	if root.Head == nil {
		root.Head = &FragmentNode{Position: root.Position}
	}

	var fragments []*FragmentNode
	var prints []Node
	Walk(root.Main, func(n Node) bool {
		switch node := n.(type) {
		case *FragmentNode:
			fragments = append(fragments, node)
		case *TemplatePrintNode:
			prints = append(prints, node)
		}
		return true
	})
	for _, fragment := range fragments {
		fragment.Children = slices.DeleteFunc(fragment.Children, func(child Node) bool {
			_, ok := child.(*TemplatePrintNode)
			return ok
		})
	}
	root.Head.Children = append(root.Head.Children, prints...)
	return nil
}
