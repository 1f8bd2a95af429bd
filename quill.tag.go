package quill

import (
	"strings"

	"github.com/itsatony/go-quill/internal"
)

// Tag is the parse-time view of one tag occurrence. It is owned by the parser
// and only valid while its handler runs.
type Tag struct {
	Name      string
	Position  Position
	Args      *TokenStream // Unconsumed argument tokens
	Attribute bool         // Written in attribute form ({n:name ...}); the body is the rest of the enclosing fragment
	Void      bool         // Self-closing ({name .../}); the tag has no body
}

// newTag builds a tag from a lexer token
func newTag(tok internal.Token) (*Tag, error) {
	args, err := TokenizeTagArgs(tok.Args, tok.ArgsPos)
	if err != nil {
		return nil, err
	}
	tag := &Tag{
		Name:     tok.Name,
		Position: tok.Position,
		Args:     args,
		Void:     tok.SelfClose,
	}
	if name, ok := strings.CutPrefix(tag.Name, AttributePrefix); ok && name != "" {
		tag.Name = name
		tag.Attribute = true
	}
	return tag, nil
}

// ExpectArguments fails when the tag has no arguments
func (t *Tag) ExpectArguments() error {
	if t.Args.IsEnd() {
		return NewTagError(ErrMsgMissingArguments, t.Name, t.Position)
	}
	return nil
}

// ExpectNoArguments fails when the tag has arguments
func (t *Tag) ExpectNoArguments() error {
	if !t.Args.IsEnd() {
		return NewTagError(ErrMsgUnexpectedArguments, t.Name, t.Args.Peek().Position)
	}
	return nil
}

// ExpectEnd fails when arguments remain unconsumed
func (t *Tag) ExpectEnd() error {
	if !t.Args.IsEnd() {
		tok := t.Args.Peek()
		return NewUnexpectedTokenError(t.Name, tok.Text, tok.Position)
	}
	return nil
}

// ExpectNotVoid fails for a self-closing tag that needs a body
func (t *Tag) ExpectNotVoid() error {
	if t.Void {
		return NewTagError(ErrMsgVoidNotAllowed, t.Name, t.Position)
	}
	return nil
}
