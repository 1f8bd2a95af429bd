package quill

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configProbe records the lexer configuration and suspension depth each
// time its tag is dispatched
type configProbe struct {
	configs []LexerConfig
	depths  []int
}

func (c *configProbe) extension() *testExtension {
	return &testExtension{
		name: "probe",
		tags: NewTable[TagHandler]().Set("probe", SimpleTag(func(tag *Tag, p *Parser) (Node, error) {
			c.configs = append(c.configs, p.LexerConfig())
			c.depths = append(c.depths, p.Depth())
			return &TextNode{Position: tag.Position, Content: "P"}, nil
		})),
	}
}

func TestParser_UnknownTag(t *testing.T) {
	p := newTestParser(t, "line one\n{nope $x}")
	_, err := p.Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgUnknownTag)
	requireMeta(t, err, MetaKeyTag, "nope")
	requireMeta(t, err, MetaKeyLine, "2")
	requireMeta(t, err, MetaKeyColumn, "1")
}

func TestParser_ClosingTags(t *testing.T) {
	t.Run("mismatched", func(t *testing.T) {
		_, err := newTestParser(t, "{block a}x{/if}").Parse()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgMismatchedTag)
		requireMeta(t, err, MetaKeyExpected, "block")
		requireMeta(t, err, MetaKeyActual, "if")
	})

	t.Run("unexpected at top level", func(t *testing.T) {
		_, err := newTestParser(t, "x{/if}").Parse()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnexpectedClosing)
	})

	t.Run("unclosed", func(t *testing.T) {
		_, err := newTestParser(t, "{block a}x").Parse()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnclosedTag)
		requireMeta(t, err, MetaKeyTag, "block")
	})

	t.Run("anonymous closing tag", func(t *testing.T) {
		root, err := newTestParser(t, "{block a}x{/}").Parse()
		require.NoError(t, err)
		block, ok := root.Main.Children[0].(*BlockNode)
		require.True(t, ok)
		assert.Equal(t, "a", block.Name)
	})
}

func TestParser_SuspendNesting(t *testing.T) {
	probe := &configProbe{}
	source := "{syntax double}{{probe}}{{syntax off}}{probe}{/syntax}{{probe}}{{/syntax}}{probe}"
	p := newTestParser(t, source, probe.extension())

	root, err := p.Parse()
	require.NoError(t, err)

	double, _ := SyntaxConfig(SyntaxDouble, "")
	single, _ := SyntaxConfig(SyntaxSingle, "")
	assert.Equal(t, []LexerConfig{double, double, single}, probe.configs)
	assert.Equal(t, []int{1, 1, 0}, probe.depths)
	assert.Equal(t, single, p.LexerConfig())
	assert.Equal(t, 0, p.Depth())

	require.Len(t, root.Main.Children, 2)
	outer, ok := root.Main.Children[0].(*FragmentNode)
	require.True(t, ok)
	require.Len(t, outer.Children, 3)

	inner, ok := outer.Children[1].(*FragmentNode)
	require.True(t, ok)
	require.Len(t, inner.Children, 1)
	assert.Equal(t, "{probe}", inner.Children[0].(*TextNode).Content)
}

func TestParser_RestoreOnFailure(t *testing.T) {
	single, _ := SyntaxConfig(SyntaxSingle, "")

	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{name: "handler error in body", source: "{syntax double}{{nope}}{{/syntax}}", wantErr: ErrMsgUnknownTag},
		{name: "body never closed", source: "{syntax double}{{$a}}", wantErr: ErrMsgUnclosedTag},
		{name: "nested failure", source: "{syntax double}{{syntax off}}x", wantErr: ErrMsgUnclosedTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(t, tt.source)
			_, err := p.Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, single, p.LexerConfig())
			assert.Equal(t, 0, p.Depth())
		})
	}
}

func TestParser_SuspensionErrors(t *testing.T) {
	t.Run("mutation error", func(t *testing.T) {
		ext := &testExtension{tags: NewTable[TagHandler]().Set("bad", SuspendingTag(func(*Tag, *Parser) (*Suspension, error) {
			return &Suspension{
				Mutate: func(*LexerConfig) error { return errors.New("no") },
				Finish: func(body *FragmentNode) (Node, error) { return body, nil },
			}, nil
		}))}
		p := newTestParser(t, "{bad}x{/bad}", ext)
		_, err := p.Parse()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgMutationFailed)
		assert.Equal(t, 0, p.Depth())
	})

	t.Run("invalid mutated configuration", func(t *testing.T) {
		ext := &testExtension{tags: NewTable[TagHandler]().Set("bad", SuspendingTag(func(*Tag, *Parser) (*Suspension, error) {
			return &Suspension{
				Mutate: func(c *LexerConfig) error { c.OpenDelim = ""; return nil },
				Finish: func(body *FragmentNode) (Node, error) { return body, nil },
			}, nil
		}))}
		p := newTestParser(t, "{bad}x{/bad}", ext)
		_, err := p.Parse()
		require.Error(t, err)
		assert.Equal(t, "{", p.LexerConfig().OpenDelim)
	})

	t.Run("nil suspension", func(t *testing.T) {
		ext := &testExtension{tags: NewTable[TagHandler]().Set("bad", SuspendingTag(func(*Tag, *Parser) (*Suspension, error) {
			return nil, nil
		}))}
		_, err := newTestParser(t, "{bad}x{/bad}", ext).Parse()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgNilSuspension)
	})

	t.Run("prepare error", func(t *testing.T) {
		_, err := newTestParser(t, "{syntax klingon}x{/syntax}").Parse()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnknownSyntax)
	})
}

func TestParser_Continuation(t *testing.T) {
	var received *FragmentNode
	ext := &testExtension{tags: NewTable[TagHandler]().Set("raw", SuspendingTag(func(tag *Tag, _ *Parser) (*Suspension, error) {
		return &Suspension{
			Mutate: func(c *LexerConfig) error {
				c.Off = true
				c.EndTag = tag.Name
				return nil
			},
			Finish: func(body *FragmentNode) (Node, error) {
				received = body
				return &TextNode{Position: tag.Position, Content: "raw"}, nil
			},
		}, nil
	}))}

	root, err := newTestParser(t, "{raw}{if $a}{/raw}{$b}", ext).Parse()
	require.NoError(t, err)

	require.NotNil(t, received)
	require.Len(t, received.Children, 1)
	assert.Equal(t, "{if $a}", received.Children[0].(*TextNode).Content)

	require.Len(t, root.Main.Children, 2)
	assert.Equal(t, "raw", root.Main.Children[0].(*TextNode).Content)
	_, ok := root.Main.Children[1].(*PrintNode)
	assert.True(t, ok)
}

func TestParser_SuspendForms(t *testing.T) {
	t.Run("void tag finishes with an empty body", func(t *testing.T) {
		p := newTestParser(t, "{syntax double/}{$x}")
		root, err := p.Parse()
		require.NoError(t, err)
		require.Len(t, root.Main.Children, 2)
		body := root.Main.Children[0].(*FragmentNode)
		assert.Empty(t, body.Children)
		_, ok := root.Main.Children[1].(*PrintNode)
		assert.True(t, ok)
	})

	t.Run("attribute form runs to the end of the enclosing fragment", func(t *testing.T) {
		p := newTestParser(t, "{block a}{n:syntax double}{{$x}}{x}{{/block}}{$y}")
		root, err := p.Parse()
		require.NoError(t, err)

		require.Len(t, root.Main.Children, 2)
		block := root.Main.Children[0].(*BlockNode)
		require.Len(t, block.Body.Children, 1)
		body := block.Body.Children[0].(*FragmentNode)
		require.Len(t, body.Children, 2)
		_, ok := body.Children[0].(*PrintNode)
		assert.True(t, ok)
		assert.Equal(t, "{x}", body.Children[1].(*TextNode).Content)

		_, ok = root.Main.Children[1].(*PrintNode)
		assert.True(t, ok)
		assert.Equal(t, "{", p.LexerConfig().OpenDelim)
	})

	t.Run("attribute form at top level", func(t *testing.T) {
		root, err := newTestParser(t, "a{n:syntax off}{$x}").Parse()
		require.NoError(t, err)
		require.Len(t, root.Main.Children, 2)
		body := root.Main.Children[1].(*FragmentNode)
		assert.Equal(t, "{$x}", body.Children[0].(*TextNode).Content)
	})
}

func TestParser_AttributeSimpleTag(t *testing.T) {
	root, err := newTestParser(t, "{block outer}{n:spaceless} a {$b} {/block}c").Parse()
	require.NoError(t, err)

	require.Len(t, root.Main.Children, 2)
	outer := root.Main.Children[0].(*BlockNode)
	require.Len(t, outer.Body.Children, 1)
	spaceless := outer.Body.Children[0].(*SpacelessNode)
	assert.Len(t, spaceless.Body.Children, 3)
	assert.Equal(t, "c", root.Main.Children[1].(*TextNode).Content)
}

func TestParser_DispatchUsesTables(t *testing.T) {
	p := newTestParser(t, "")
	assert.True(t, p.Tables().Tags.Has(TagNameIf))
	assert.Equal(t, "test", p.State().Template)
}
