package quill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTag(t *testing.T, args string) *Tag {
	t.Helper()
	return &Tag{Name: TagNameInclude, Position: Position{Line: 1, Column: 1}, Args: stream(t, args)}
}

func TestDisambiguator_Resolve(t *testing.T) {
	d := NewIncludeDisambiguator()

	tests := []struct {
		name string
		args string
		want Variant
	}{
		{name: "block keyword", args: "block foo", want: VariantReference},
		{name: "file keyword", args: "file foo", want: VariantResource},
		{name: "sigil", args: "#foo", want: VariantReference},
		{name: "unquoted name", args: "sidebar", want: VariantReference},
		{name: "quoted name", args: "'sidebar'", want: VariantReference},
		{name: "name with arguments", args: "sidebar, title: 'x'", want: VariantReference},
		{name: "file path", args: "'layout.tpl'", want: VariantResource},
		{name: "unquoted path", args: "../parts/menu.tpl", want: VariantResource},
		{name: "expression", args: "$name", want: VariantResource},
		{name: "unparsable", args: "$a +", want: VariantResource},
		{name: "keyword alone is a name", args: "block", want: VariantReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := testTag(t, tt.args)
			got, err := d.Resolve(tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "got %s", got)
			assert.Equal(t, 0, tag.Args.Pos(), "cursor must be rewound")
		})
	}

	t.Run("no arguments", func(t *testing.T) {
		_, err := d.Resolve(testTag(t, ""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgMissingArguments)
	})
}

func TestDisambiguator_Split(t *testing.T) {
	var chosen string
	handler := NewIncludeDisambiguator().Split(
		func(tag *Tag, _ *Parser) (Node, error) {
			chosen = "reference"
			// the chosen handler sees the arguments from the start
			assert.Equal(t, 0, tag.Args.Pos())
			return &TextNode{}, nil
		},
		func(*Tag, *Parser) (Node, error) {
			chosen = "resource"
			return &TextNode{}, nil
		},
	)

	_, err := handler(testTag(t, "#header"), nil)
	require.NoError(t, err)
	assert.Equal(t, "reference", chosen)

	_, err = handler(testTag(t, "'page.tpl'"), nil)
	require.NoError(t, err)
	assert.Equal(t, "resource", chosen)
}

func TestVariant_String(t *testing.T) {
	assert.Equal(t, "reference", VariantReference.String())
	assert.Equal(t, "resource", VariantResource.String())
}

func TestInclude_Nodes(t *testing.T) {
	t.Run("block reference with arguments and filters", func(t *testing.T) {
		compiled := compileTest(t, "{include #sidebar, title: 'x'|upper}")
		node, ok := mainChildren(compiled)[0].(*IncludeBlockNode)
		require.True(t, ok)
		assert.Equal(t, "sidebar", node.Name.(*StringNode).Value)
		require.Len(t, node.Args, 1)
		assert.Equal(t, "title", node.Args[0].Key)
		require.Len(t, node.Filters, 1)
	})

	t.Run("explicit block keyword", func(t *testing.T) {
		compiled := compileTest(t, "{include block 'sidebar'}")
		node, ok := mainChildren(compiled)[0].(*IncludeBlockNode)
		require.True(t, ok)
		assert.Equal(t, "sidebar", node.Name.Source())
	})

	t.Run("file", func(t *testing.T) {
		compiled := compileTest(t, "{include 'parts/menu.tpl', active: $page}")
		node, ok := mainChildren(compiled)[0].(*IncludeFileNode)
		require.True(t, ok)
		assert.Equal(t, "parts/menu.tpl", node.File.Source())
		require.Len(t, node.Args, 1)
		assert.Equal(t, "page", node.Args[0].Value.Source())
	})

	t.Run("file keyword with a plain name", func(t *testing.T) {
		compiled := compileTest(t, "{include file menu}")
		node, ok := mainChildren(compiled)[0].(*IncludeFileNode)
		require.True(t, ok)
		assert.Equal(t, "menu", node.File.Source())
	})

	t.Run("dynamic file", func(t *testing.T) {
		compiled := compileTest(t, "{include $layout}")
		node, ok := mainChildren(compiled)[0].(*IncludeFileNode)
		require.True(t, ok)
		assert.Equal(t, "layout", node.File.Source())
	})
}
