package quill

// Walk visits node and its descendants depth-first. Expressions of a node are
// visited before its fragments. Returning false from fn skips the children of
// the current node.
func Walk(node Node, fn func(Node) bool) {
	if isNilNode(node) || !fn(node) {
		return
	}
	if holder, ok := node.(ExpressionHolder); ok {
		for _, expr := range holder.Expressions() {
			Walk(expr, fn)
		}
	}
	if fragment, ok := node.(*FragmentNode); ok {
		for _, child := range fragment.Children {
			Walk(child, fn)
		}
		return
	}
	if parent, ok := node.(Parent); ok {
		for _, fragment := range parent.Fragments() {
			if fragment != nil {
				Walk(fragment, fn)
			}
		}
	}
}

// WalkFragments calls fn for every fragment under node, outermost first
func WalkFragments(node Node, fn func(*FragmentNode)) {
	Walk(node, func(n Node) bool {
		if fragment, ok := n.(*FragmentNode); ok {
			fn(fragment)
		}
		return true
	})
}

// isNilNode reports whether node is nil or a typed nil pointer
func isNilNode(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *FragmentNode:
		return n == nil
	case *StringNode:
		return n == nil
	case *ExpressionNode:
		return n == nil
	}
	return false
}
