package quill

// Node is an element of the template tree. Parents own their children and no
// node refers back to its parent.
type Node interface {
	Kind() string
	Pos() Position
}

// Parent is a node that contains fragments of child nodes
type Parent interface {
	Node
	Fragments() []*FragmentNode
}

// ExpressionHolder is a node that contains expressions
type ExpressionHolder interface {
	Node
	Expressions() []Expr
}

// Declarer is a node that declares template variables
type Declarer interface {
	Node
	Declared() []string
}

// Expr is an argument value: a literal string or a parsed expression
type Expr interface {
	Node
	Source() string
}

// TemplateNode is the root of a compiled template. Head holds nodes that
// generators emit before the main body.
type TemplateNode struct {
	Position Position
	Head     *FragmentNode
	Main     *FragmentNode
}

func (n *TemplateNode) Kind() string               { return KindTemplate }
func (n *TemplateNode) Pos() Position              { return n.Position }
func (n *TemplateNode) Fragments() []*FragmentNode { return []*FragmentNode{n.Head, n.Main} }

// FragmentNode is an ordered list of nodes
type FragmentNode struct {
	Position Position
	Children []Node
}

func (n *FragmentNode) Kind() string  { return KindFragment }
func (n *FragmentNode) Pos() Position { return n.Position }

// Append adds a node to the fragment
func (n *FragmentNode) Append(node Node) {
	n.Children = append(n.Children, node)
}

// TextNode is literal template text
type TextNode struct {
	Position Position
	Content  string
}

func (n *TextNode) Kind() string  { return KindText }
func (n *TextNode) Pos() Position { return n.Position }

// StringNode is a string literal, quoted or unquoted
type StringNode struct {
	Position Position
	Value    string
}

func (n *StringNode) Kind() string   { return KindString }
func (n *StringNode) Pos() Position  { return n.Position }
func (n *StringNode) Source() string { return n.Value }

// ExpressionNode is an expression validated at compile time and evaluated at render time
type ExpressionNode struct {
	Position    Position
	Code        string   // Expression source with template sigils removed
	Calls       []string // Names of all called functions, each listed once
	Variables   []string // Template variables referenced, without '$'
	CustomCalls []string // Calls that resolve to registered functions; set by the customFunctions pass
}

func (n *ExpressionNode) Kind() string   { return KindExpression }
func (n *ExpressionNode) Pos() Position  { return n.Position }
func (n *ExpressionNode) Source() string { return n.Code }

// FilterNode applies a named filter with optional arguments
type FilterNode struct {
	Position Position
	Name     string
	Args     []Expr
}

func (n *FilterNode) Kind() string        { return KindFilter }
func (n *FilterNode) Pos() Position       { return n.Position }
func (n *FilterNode) Expressions() []Expr { return n.Args }

// ArgNode is a positional (empty Key) or named argument
type ArgNode struct {
	Position Position
	Key      string
	Value    Expr
}

func (n *ArgNode) Kind() string        { return KindArg }
func (n *ArgNode) Pos() Position       { return n.Position }
func (n *ArgNode) Expressions() []Expr { return []Expr{n.Value} }

// PrintNode prints an expression through filters
type PrintNode struct {
	Position   Position
	Expression Expr
	Filters    []*FilterNode
}

func (n *PrintNode) Kind() string  { return KindPrint }
func (n *PrintNode) Pos() Position { return n.Position }
func (n *PrintNode) Expressions() []Expr {
	return append([]Expr{n.Expression}, filterExprs(n.Filters)...)
}

// BlockNode is a named (or anonymous) block printed in place
type BlockNode struct {
	Position Position
	Name     string
	Filters  []*FilterNode
	Body     *FragmentNode
}

func (n *BlockNode) Kind() string               { return KindBlock }
func (n *BlockNode) Pos() Position              { return n.Position }
func (n *BlockNode) Fragments() []*FragmentNode { return []*FragmentNode{n.Body} }
func (n *BlockNode) Expressions() []Expr        { return filterExprs(n.Filters) }

// DefineNode defines a block without printing it
type DefineNode struct {
	Position Position
	Name     string
	Params   []string
	Body     *FragmentNode
}

func (n *DefineNode) Kind() string               { return KindDefine }
func (n *DefineNode) Pos() Position              { return n.Position }
func (n *DefineNode) Fragments() []*FragmentNode { return []*FragmentNode{n.Body} }
func (n *DefineNode) Declared() []string         { return n.Params }

// IncludeBlockNode prints a block by reference
type IncludeBlockNode struct {
	Position Position
	Name     Expr
	Args     []*ArgNode
	Filters  []*FilterNode
}

func (n *IncludeBlockNode) Kind() string  { return KindIncludeBlock }
func (n *IncludeBlockNode) Pos() Position { return n.Position }
func (n *IncludeBlockNode) Expressions() []Expr {
	return append(append([]Expr{n.Name}, argExprs(n.Args)...), filterExprs(n.Filters)...)
}

// IncludeFileNode prints another template resource
type IncludeFileNode struct {
	Position Position
	File     Expr
	Args     []*ArgNode
	Filters  []*FilterNode
}

func (n *IncludeFileNode) Kind() string  { return KindIncludeFile }
func (n *IncludeFileNode) Pos() Position { return n.Position }
func (n *IncludeFileNode) Expressions() []Expr {
	return append(append([]Expr{n.File}, argExprs(n.Args)...), filterExprs(n.Filters)...)
}

// Assignment is one `$name = value` pair of a {var} or {default} tag
type Assignment struct {
	Position Position
	Variable string
	Value    Expr
}

// VarNode assigns variables. Default only assigns variables that are unset.
type VarNode struct {
	Position    Position
	Default     bool
	Assignments []*Assignment
}

func (n *VarNode) Kind() string  { return KindVar }
func (n *VarNode) Pos() Position { return n.Position }
func (n *VarNode) Expressions() []Expr {
	out := make([]Expr, 0, len(n.Assignments))
	for _, a := range n.Assignments {
		out = append(out, a.Value)
	}
	return out
}
func (n *VarNode) Declared() []string {
	out := make([]string, 0, len(n.Assignments))
	for _, a := range n.Assignments {
		out = append(out, a.Variable)
	}
	return out
}

// IfBranch is the if or one elseif branch of an IfNode
type IfBranch struct {
	Position  Position
	Condition Expr
	Body      *FragmentNode
}

// IfNode is a conditional with optional elseif branches and else
type IfNode struct {
	Position Position
	Branches []*IfBranch
	Else     *FragmentNode
}

func (n *IfNode) Kind() string  { return KindIf }
func (n *IfNode) Pos() Position { return n.Position }
func (n *IfNode) Fragments() []*FragmentNode {
	out := make([]*FragmentNode, 0, len(n.Branches)+1)
	for _, b := range n.Branches {
		out = append(out, b.Body)
	}
	if n.Else != nil {
		out = append(out, n.Else)
	}
	return out
}
func (n *IfNode) Expressions() []Expr {
	out := make([]Expr, 0, len(n.Branches))
	for _, b := range n.Branches {
		out = append(out, b.Condition)
	}
	return out
}

// ForeachNode iterates over Subject. Overwritten lists loop variables that
// replace variables assigned elsewhere in the template.
type ForeachNode struct {
	Position    Position
	Subject     Expr
	Key         string
	Value       string
	Body        *FragmentNode
	Else        *FragmentNode
	Overwritten []string
}

func (n *ForeachNode) Kind() string  { return KindForeach }
func (n *ForeachNode) Pos() Position { return n.Position }
func (n *ForeachNode) Fragments() []*FragmentNode {
	if n.Else != nil {
		return []*FragmentNode{n.Body, n.Else}
	}
	return []*FragmentNode{n.Body}
}
func (n *ForeachNode) Expressions() []Expr { return []Expr{n.Subject} }
func (n *ForeachNode) Declared() []string {
	if n.Key != "" {
		return []string{n.Key, n.Value}
	}
	return []string{n.Value}
}

// CaptureNode renders its body into a variable
type CaptureNode struct {
	Position Position
	Variable string
	Filters  []*FilterNode
	Body     *FragmentNode
}

func (n *CaptureNode) Kind() string               { return KindCapture }
func (n *CaptureNode) Pos() Position              { return n.Position }
func (n *CaptureNode) Fragments() []*FragmentNode { return []*FragmentNode{n.Body} }
func (n *CaptureNode) Expressions() []Expr        { return filterExprs(n.Filters) }
func (n *CaptureNode) Declared() []string         { return []string{n.Variable} }

// SpacelessNode removes whitespace between markup in its body
type SpacelessNode struct {
	Position Position
	Body     *FragmentNode
}

func (n *SpacelessNode) Kind() string               { return KindSpaceless }
func (n *SpacelessNode) Pos() Position              { return n.Position }
func (n *SpacelessNode) Fragments() []*FragmentNode { return []*FragmentNode{n.Body} }

// TemplatePrintNode asks the generator to print the template's parameter type
type TemplatePrintNode struct {
	Position Position
	TypeName string
}

func (n *TemplatePrintNode) Kind() string  { return KindTemplatePrint }
func (n *TemplatePrintNode) Pos() Position { return n.Position }

// DoNode evaluates an expression without printing it
type DoNode struct {
	Position   Position
	Expression Expr
}

func (n *DoNode) Kind() string        { return KindDo }
func (n *DoNode) Pos() Position       { return n.Position }
func (n *DoNode) Expressions() []Expr { return []Expr{n.Expression} }

func filterExprs(filters []*FilterNode) []Expr {
	var out []Expr
	for _, f := range filters {
		out = append(out, f.Args...)
	}
	return out
}

func argExprs(args []*ArgNode) []Expr {
	out := make([]Expr, 0, len(args))
	for _, a := range args {
		out = append(out, a.Value)
	}
	return out
}
