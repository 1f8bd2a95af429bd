package quill

import "github.com/itsatony/go-quill/internal"

// SyntaxConfig returns the lexer configuration for a named syntax. endTag is
// the tag whose closing form ends an "off" region.
func SyntaxConfig(name string, endTag string) (LexerConfig, error) {
	switch name {
	case SyntaxSingle, SyntaxLatte:
		return LexerConfig{OpenDelim: "{", CloseDelim: "}"}, nil
	case SyntaxDouble:
		return LexerConfig{OpenDelim: "{{", CloseDelim: "}}"}, nil
	case SyntaxOff:
		return LexerConfig{OpenDelim: "{", CloseDelim: "}", Off: true, EndTag: endTag}, nil
	}
	return LexerConfig{}, NewParseError(ErrMsgUnknownSyntax, Position{}, nil)
}

// prepareSyntax switches the delimiters for the tag body:
//
//	{syntax double}{{$x}}{{/syntax}}
//	{syntax off}{not a tag}{/syntax}
func prepareSyntax(tag *Tag, _ *Parser) (*Suspension, error) {
	if err := tag.ExpectArguments(); err != nil {
		return nil, err
	}
	arg := tag.Args.Consume()
	name := arg.Text
	if arg.Type == internal.ArgTokenString {
		name = arg.Value
	}
	if err := tag.ExpectEnd(); err != nil {
		return nil, err
	}

	cfg, err := SyntaxConfig(name, tag.Name)
	if err != nil {
		return nil, NewTagError(ErrMsgUnknownSyntax, tag.Name, arg.Position)
	}
	return &Suspension{
		Mutate: func(c *LexerConfig) error {
			*c = cfg
			return nil
		},
		EndTag: tag.Name,
		Finish: func(body *FragmentNode) (Node, error) {
			return body, nil
		},
	}, nil
}

// braceTag prints a literal delimiter character: {l} and {r}
func braceTag(char string) TagFunc {
	return func(tag *Tag, _ *Parser) (Node, error) {
		if err := tag.ExpectNoArguments(); err != nil {
			return nil, err
		}
		return &TextNode{Position: tag.Position, Content: char}, nil
	}
}
