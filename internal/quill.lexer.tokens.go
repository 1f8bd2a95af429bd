package internal

import "fmt"

// Position represents a location in the source template
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Token is one lexical unit of a template: a run of text or a whole tag.
type Token struct {
	Type     TokenType
	Position Position // Start of the token (the open delimiter for tags)

	// Text tokens
	Value string

	// Tag tokens
	Name      string   // Tag name; empty for {/}
	Args      string   // Raw argument text after the name
	ArgsPos   Position // Start of Args in the source
	Closing   bool     // {/name}
	SelfClose bool     // {name .../}
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenTypeText:
		return fmt.Sprintf("Token{%s: %q @ %s}", t.Type, t.Value, t.Position)
	case TokenTypeTag:
		prefix := ""
		if t.Closing {
			prefix = "/"
		}
		return fmt.Sprintf("Token{%s: %s%s %q @ %s}", t.Type, prefix, t.Name, t.Args, t.Position)
	default:
		return fmt.Sprintf("Token{%s @ %s}", t.Type, t.Position)
	}
}

// IsEOF returns true if this is an end-of-file token
func (t Token) IsEOF() bool {
	return t.Type == TokenTypeEOF
}

// ArgToken is one token of a tag's argument stream.
type ArgToken struct {
	Type        ArgTokenType
	Text        string // Source text, quotes and sigils included
	Value       string // Unquoted string value, or variable name without '$'
	Position    Position
	SpaceBefore bool // Whitespace separated this token from the previous one
}

// Is reports whether the token's text equals one of the given strings.
// Strings and variables never match, so a quoted "block" is not the keyword block.
func (t ArgToken) Is(texts ...string) bool {
	if t.Type == ArgTokenString || t.Type == ArgTokenVariable || t.Type == ArgTokenEOF {
		return false
	}
	for _, text := range texts {
		if t.Text == text {
			return true
		}
	}
	return false
}

// String returns a human-readable representation of the token
func (t ArgToken) String() string {
	return fmt.Sprintf("%s(%s)", t.Type, t.Text)
}

// LexerError represents a lexer error with position
type LexerError struct {
	Message  string
	Position Position
}

func (e *LexerError) Error() string {
	return e.Message + " at " + e.Position.String()
}
