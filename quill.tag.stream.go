package quill

import (
	"strings"

	exprast "github.com/expr-lang/expr/ast"
	exprparser "github.com/expr-lang/expr/parser"
	"github.com/itsatony/go-quill/internal"
)

// ArgToken is one token of a tag's argument stream
type ArgToken = internal.ArgToken

// Punctuation understood by the argument parsers
const (
	punctComma      = ","
	punctPipe       = "|"
	punctColon      = ":"
	punctArrow      = "=>"
	punctAssign     = "="
	punctNullsafe   = "?->"
	exprNullsafe    = "?."
	punctOpenParen  = "("
	punctCloseParen = ")"
)

// TokenStream is a cursor over a tag's argument tokens. It always ends with
// an EOF token, which Consume never moves past.
type TokenStream struct {
	tokens []ArgToken
	pos    int
}

// NewTokenStream creates a stream over tokens, appending EOF if missing
func NewTokenStream(tokens []ArgToken) *TokenStream {
	if len(tokens) == 0 || !isEOF(tokens[len(tokens)-1]) {
		var pos Position
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].Position
		}
		tokens = append(tokens, ArgToken{Type: internal.ArgTokenEOF, Position: pos})
	}
	return &TokenStream{tokens: tokens}
}

// TokenizeTagArgs tokenizes raw tag arguments that start at pos
func TokenizeTagArgs(args string, pos Position) (*TokenStream, error) {
	tokens, err := internal.TokenizeArgs(args, pos)
	if err != nil {
		return nil, newLexerError(err)
	}
	return NewTokenStream(tokens), nil
}

// Peek returns the current token
func (s *TokenStream) Peek() ArgToken {
	return s.tokens[s.pos]
}

// PeekAt returns the token offset positions ahead, or EOF past the end
func (s *TokenStream) PeekAt(offset int) ArgToken {
	i := s.pos + offset
	if i < 0 {
		i = 0
	}
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i]
}

// Consume returns the current token and advances
func (s *TokenStream) Consume() ArgToken {
	tok := s.Peek()
	if !isEOF(tok) {
		s.pos++
	}
	return tok
}

// TryConsume consumes the current token if its text is one of texts
func (s *TokenStream) TryConsume(texts ...string) (ArgToken, bool) {
	tok := s.Peek()
	if !tok.Is(texts...) {
		return tok, false
	}
	s.pos++
	return tok, true
}

// Expect consumes a token whose text is one of texts or fails
func (s *TokenStream) Expect(texts ...string) (ArgToken, error) {
	tok, ok := s.TryConsume(texts...)
	if !ok {
		return tok, NewParseError(ErrMsgUnexpectedToken, tok.Position, nil)
	}
	return tok, nil
}

// ExpectVariable consumes a $variable token and returns its name
func (s *TokenStream) ExpectVariable() (string, error) {
	tok := s.Peek()
	if tok.Type != internal.ArgTokenVariable {
		return "", NewParseError(ErrMsgExpectedVariable, tok.Position, nil)
	}
	s.pos++
	return tok.Value, nil
}

// Pos returns the cursor position
func (s *TokenStream) Pos() int {
	return s.pos
}

// Seek moves the cursor to pos, clamped to the stream
func (s *TokenStream) Seek(pos int) {
	switch {
	case pos < 0:
		pos = 0
	case pos >= len(s.tokens):
		pos = len(s.tokens) - 1
	}
	s.pos = pos
}

// IsEnd reports whether all tokens were consumed
func (s *TokenStream) IsEnd() bool {
	return isEOF(s.Peek())
}

// TryConsumeBeforeUnquoted consumes a keyword only when whitespace separates
// it from a following argument, so `include file 'a'` consumes "file" while
// `include file` and `include file.tpl` do not.
func (s *TokenStream) TryConsumeBeforeUnquoted(keywords ...string) (ArgToken, bool) {
	tok := s.Peek()
	if tok.Type != internal.ArgTokenIdent || !tok.Is(keywords...) {
		return tok, false
	}
	next := s.PeekAt(1)
	if isEOF(next) || !next.SpaceBefore || next.Is(punctComma, punctPipe, punctColon, punctAssign, punctArrow) {
		return tok, false
	}
	s.pos++
	return tok, true
}

// ParseUnquotedStringOrExpression parses one argument. A run of name-like
// tokens with no whitespace, such as header or ../layout.tpl, becomes a
// StringNode; a lone quoted string becomes a StringNode; anything else is
// parsed as an expression. Parsing stops at a top-level comma, pipe or any
// of stops.
func (s *TokenStream) ParseUnquotedStringOrExpression(stops ...string) (Expr, error) {
	if node, ok := s.tryUnquoted(stops); ok {
		return node, nil
	}
	return s.parseExpr(withPipe(stops))
}

// ParseExpression parses an expression up to a top-level comma or the end
func (s *TokenStream) ParseExpression() (*ExpressionNode, error) {
	return s.ParseExpressionUntil()
}

// ParseExpressionUntil parses an expression up to a top-level comma or one
// of stops
func (s *TokenStream) ParseExpressionUntil(stops ...string) (*ExpressionNode, error) {
	tokens, err := s.collect(stops)
	if err != nil {
		return nil, err
	}
	return buildExpression(tokens)
}

// ParseArguments parses comma separated `key: value` or positional arguments
// up to the end, a top-level pipe or one of stops
func (s *TokenStream) ParseArguments(stops ...string) ([]*ArgNode, error) {
	stops = withPipe(stops)
	var args []*ArgNode
	for !s.IsEnd() && !s.Peek().Is(stops...) {
		tok := s.Peek()
		key := ""
		if tok.Type == internal.ArgTokenIdent && s.PeekAt(1).Is(punctColon, punctArrow) {
			key = tok.Text
			s.pos += 2
		}
		value, err := s.parseExpr(stops)
		if err != nil {
			return nil, err
		}
		args = append(args, &ArgNode{Position: tok.Position, Key: key, Value: value})
		if _, ok := s.TryConsume(punctComma); !ok {
			break
		}
	}
	return args, nil
}

// ParseFilters parses `|name:arg,arg` filter chains
func (s *TokenStream) ParseFilters() ([]*FilterNode, error) {
	var filters []*FilterNode
	for {
		bar, ok := s.TryConsume(punctPipe)
		if !ok {
			return filters, nil
		}
		name := s.Peek()
		if name.Type != internal.ArgTokenIdent {
			return nil, NewParseError(ErrMsgExpectedName, name.Position, nil)
		}
		s.pos++

		filter := &FilterNode{Position: bar.Position, Name: name.Text}
		if _, ok := s.TryConsume(punctColon); ok {
			for {
				arg, err := s.parseExpr([]string{punctPipe})
				if err != nil {
					return nil, err
				}
				filter.Args = append(filter.Args, arg)
				if _, ok := s.TryConsume(punctComma); !ok {
					break
				}
			}
		}
		filters = append(filters, filter)
	}
}

// tryUnquoted consumes a whitespace-free run of name-like tokens that is
// followed by the end, a separator or a spaced keyword
func (s *TokenStream) tryUnquoted(stops []string) (*StringNode, bool) {
	start := s.pos
	var sb strings.Builder
	i := start
	for ; i < len(s.tokens); i++ {
		tok := s.tokens[i]
		if (i > start && tok.SpaceBefore) || !isUnquotedPart(tok) {
			break
		}
		sb.WriteString(tok.Text)
	}
	if i == start {
		return nil, false
	}

	next := s.tokens[i]
	ok := isEOF(next) ||
		next.Is(punctComma, punctPipe) ||
		next.Is(stops...) ||
		(next.SpaceBefore && next.Type == internal.ArgTokenIdent)
	if !ok {
		return nil, false
	}
	s.pos = i
	return &StringNode{Position: s.tokens[start].Position, Value: sb.String()}, true
}

// parseExpr parses one value, returning a StringNode for a lone string literal
func (s *TokenStream) parseExpr(stops []string) (Expr, error) {
	tokens, err := s.collect(stops)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 && tokens[0].Type == internal.ArgTokenString {
		return &StringNode{Position: tokens[0].Position, Value: tokens[0].Value}, nil
	}
	return buildExpression(tokens)
}

// collect consumes the tokens of one expression, tracking bracket depth
func (s *TokenStream) collect(stops []string) ([]ArgToken, error) {
	start := s.pos
	depth := 0
loop:
	for {
		tok := s.Peek()
		switch {
		case isEOF(tok):
			break loop
		case depth == 0 && (tok.Is(punctComma) || tok.Is(stops...)):
			break loop
		case tok.Is(punctOpenParen, "[", "{"):
			depth++
		case tok.Is(punctCloseParen, "]", "}"):
			if depth == 0 {
				break loop
			}
			depth--
		}
		s.pos++
	}
	if s.pos == start {
		return nil, NewParseError(ErrMsgExpectedExpression, s.Peek().Position, nil)
	}
	return s.tokens[start:s.pos], nil
}

// buildExpression turns template tokens into expression source, validates it
// and records referenced variables and called functions
func buildExpression(tokens []ArgToken) (*ExpressionNode, error) {
	var sb strings.Builder
	var variables []string
	seen := make(map[string]bool)
	for i, tok := range tokens {
		if i > 0 && tok.SpaceBefore {
			sb.WriteByte(' ')
		}
		switch {
		case tok.Type == internal.ArgTokenVariable:
			sb.WriteString(tok.Value)
			if !seen[tok.Value] {
				seen[tok.Value] = true
				variables = append(variables, tok.Value)
			}
		case tok.Is(punctNullsafe):
			sb.WriteString(exprNullsafe)
		default:
			sb.WriteString(tok.Text)
		}
	}

	code := sb.String()
	tree, err := exprparser.Parse(code)
	if err != nil {
		return nil, NewParseError(ErrMsgInvalidExpression, tokens[0].Position, err)
	}

	collector := &callCollector{seen: make(map[string]bool)}
	exprast.Walk(&tree.Node, collector)

	return &ExpressionNode{
		Position:  tokens[0].Position,
		Code:      code,
		Calls:     collector.calls,
		Variables: variables,
	}, nil
}

// callCollector gathers called function names from an expression tree
type callCollector struct {
	calls []string
	seen  map[string]bool
}

func (c *callCollector) Visit(node *exprast.Node) {
	switch n := (*node).(type) {
	case *exprast.CallNode:
		if ident, ok := n.Callee.(*exprast.IdentifierNode); ok {
			c.add(ident.Value)
		}
	case *exprast.BuiltinNode:
		c.add(n.Name)
	}
}

func (c *callCollector) add(name string) {
	if !c.seen[name] {
		c.seen[name] = true
		c.calls = append(c.calls, name)
	}
}

// withPipe returns a copy of stops that also stops at a pipe
func withPipe(stops []string) []string {
	out := make([]string, 0, len(stops)+1)
	return append(append(out, stops...), punctPipe)
}

func isEOF(tok ArgToken) bool {
	return tok.Type == internal.ArgTokenEOF
}

func isUnquotedPart(tok ArgToken) bool {
	switch tok.Type {
	case internal.ArgTokenIdent, internal.ArgTokenNumber:
		return true
	case internal.ArgTokenPunct:
		return tok.Is(".", "..", "/", "-")
	}
	return false
}
