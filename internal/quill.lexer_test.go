package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lexAll drains the lexer without touching its configuration
func lexAll(t *testing.T, source string, cfg LexerConfig) []Token {
	t.Helper()
	lexer := NewLexer(source, &cfg, nil)
	var tokens []Token
	for {
		tok, err := lexer.Next()
		require.NoError(t, err)
		tokens = append(tokens, tok)
		if tok.IsEOF() {
			return tokens
		}
	}
}

func TestLexer_Text(t *testing.T) {
	t.Run("empty source", func(t *testing.T) {
		tokens := lexAll(t, "", DefaultLexerConfig())
		require.Len(t, tokens, 1)
		assert.True(t, tokens[0].IsEOF())
	})

	t.Run("plain text", func(t *testing.T) {
		tokens := lexAll(t, "Hello, World!", DefaultLexerConfig())
		require.Len(t, tokens, 2)
		assert.Equal(t, TokenTypeText, tokens[0].Type)
		assert.Equal(t, "Hello, World!", tokens[0].Value)
	})

	t.Run("braces that cannot open a tag stay text", func(t *testing.T) {
		tokens := lexAll(t, `a { b } {"json": 1} {'k'} {}`, DefaultLexerConfig())
		require.Len(t, tokens, 2)
		assert.Equal(t, `a { b } {"json": 1} {'k'} {}`, tokens[0].Value)
	})
}

func TestLexer_Tags(t *testing.T) {
	t.Run("tag with arguments", func(t *testing.T) {
		tokens := lexAll(t, `Hi {include "a.tpl", x: 1}!`, DefaultLexerConfig())
		require.Len(t, tokens, 4)

		tag := tokens[1]
		assert.Equal(t, TokenTypeTag, tag.Type)
		assert.Equal(t, "include", tag.Name)
		assert.Equal(t, `"a.tpl", x: 1`, tag.Args)
		assert.Equal(t, 3, tag.Position.Offset)
		assert.Equal(t, 4, tag.Position.Column)
		assert.Equal(t, 12, tag.ArgsPos.Offset)
		assert.False(t, tag.Closing)
		assert.Equal(t, "!", tokens[2].Value)
	})

	t.Run("closing tag", func(t *testing.T) {
		tokens := lexAll(t, `{/block}`, DefaultLexerConfig())
		require.Len(t, tokens, 2)
		assert.True(t, tokens[0].Closing)
		assert.Equal(t, "block", tokens[0].Name)
	})

	t.Run("anonymous closing tag", func(t *testing.T) {
		tokens := lexAll(t, `{/}`, DefaultLexerConfig())
		assert.True(t, tokens[0].Closing)
		assert.Equal(t, "", tokens[0].Name)
	})

	t.Run("self closing tag", func(t *testing.T) {
		tokens := lexAll(t, `{block header /}`, DefaultLexerConfig())
		assert.True(t, tokens[0].SelfClose)
		assert.Equal(t, "block", tokens[0].Name)
		assert.Equal(t, "header", tokens[0].Args)
	})

	t.Run("implicit print", func(t *testing.T) {
		tokens := lexAll(t, `{$user.name|upper}`, DefaultLexerConfig())
		assert.Equal(t, PrintTagName, tokens[0].Name)
		assert.Equal(t, "$user.name|upper", tokens[0].Args)
	})

	t.Run("explicit print", func(t *testing.T) {
		tokens := lexAll(t, `{= 1 + 2 }`, DefaultLexerConfig())
		assert.Equal(t, PrintTagName, tokens[0].Name)
		assert.Equal(t, "1 + 2", tokens[0].Args)
		assert.Equal(t, 3, tokens[0].ArgsPos.Offset)
	})

	t.Run("close delimiter inside string", func(t *testing.T) {
		tokens := lexAll(t, `{= "}" }after`, DefaultLexerConfig())
		require.Len(t, tokens, 3)
		assert.Equal(t, `"}"`, tokens[0].Args)
		assert.Equal(t, "after", tokens[1].Value)
	})

	t.Run("multiline position", func(t *testing.T) {
		tokens := lexAll(t, "line1\nline2 {l}", DefaultLexerConfig())
		assert.Equal(t, 2, tokens[1].Position.Line)
		assert.Equal(t, 7, tokens[1].Position.Column)
	})
}

func TestLexer_Errors(t *testing.T) {
	t.Run("unterminated tag", func(t *testing.T) {
		cfg := DefaultLexerConfig()
		lexer := NewLexer("text {include x", &cfg, nil)
		_, err := lexer.Next()
		require.NoError(t, err)
		_, err = lexer.Next()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnterminatedTag)

		var lexErr *LexerError
		require.ErrorAs(t, err, &lexErr)
		assert.Equal(t, 5, lexErr.Position.Offset)
	})

	t.Run("unterminated string", func(t *testing.T) {
		cfg := DefaultLexerConfig()
		lexer := NewLexer(`{= "abc}`, &cfg, nil)
		_, err := lexer.Next()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnterminatedStr)
	})

	t.Run("invalid tag name", func(t *testing.T) {
		cfg := DefaultLexerConfig()
		lexer := NewLexer(`{#foo}`, &cfg, nil)
		_, err := lexer.Next()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgInvalidTagName)
	})
}

func TestLexer_ConfigChanges(t *testing.T) {
	t.Run("double delimiters", func(t *testing.T) {
		cfg := LexerConfig{OpenDelim: "{{", CloseDelim: "}}"}
		tokens := lexAll(t, `{x} {{= y}}`, cfg)
		require.Len(t, tokens, 3)
		assert.Equal(t, "{x} ", tokens[0].Value)
		assert.Equal(t, PrintTagName, tokens[1].Name)
	})

	t.Run("off recognises only the end tag", func(t *testing.T) {
		cfg := LexerConfig{OpenDelim: "{", CloseDelim: "}", Off: true, EndTag: "syntax"}
		tokens := lexAll(t, `{if $a}{= b}{/if}{/syntax}`, cfg)
		require.Len(t, tokens, 3)
		assert.Equal(t, `{if $a}{= b}{/if}`, tokens[0].Value)
		assert.True(t, tokens[1].Closing)
		assert.Equal(t, "syntax", tokens[1].Name)
	})

	t.Run("off without end tag is all text", func(t *testing.T) {
		cfg := LexerConfig{OpenDelim: "{", CloseDelim: "}", Off: true}
		tokens := lexAll(t, `{a}{/syntax}`, cfg)
		require.Len(t, tokens, 2)
		assert.Equal(t, `{a}{/syntax}`, tokens[0].Value)
	})

	t.Run("change between calls applies at current position", func(t *testing.T) {
		cfg := DefaultLexerConfig()
		lexer := NewLexer(`{syntax double}{a}{{= b}}`, &cfg, nil)

		tok, err := lexer.Next()
		require.NoError(t, err)
		assert.Equal(t, "syntax", tok.Name)

		cfg.OpenDelim, cfg.CloseDelim = "{{", "}}"

		tok, err = lexer.Next()
		require.NoError(t, err)
		assert.Equal(t, TokenTypeText, tok.Type)
		assert.Equal(t, "{a}", tok.Value)

		tok, err = lexer.Next()
		require.NoError(t, err)
		assert.Equal(t, PrintTagName, tok.Name)
		assert.Equal(t, "b", tok.Args)
	})

	t.Run("seek re-lexes under new config", func(t *testing.T) {
		cfg := DefaultLexerConfig()
		lexer := NewLexer(`{a}{{b}}`, &cfg, nil)

		first, err := lexer.Next()
		require.NoError(t, err)
		assert.Equal(t, "a", first.Name)

		second, err := lexer.Next()
		require.NoError(t, err)
		assert.Equal(t, TokenTypeText, second.Type)

		cfg.OpenDelim, cfg.CloseDelim = "{{", "}}"
		lexer.Seek(second.Position)

		again, err := lexer.Next()
		require.NoError(t, err)
		assert.Equal(t, TokenTypeTag, again.Type)
		assert.Equal(t, "b", again.Name)
	})
}

func TestLexerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultLexerConfig().Validate())
	assert.Error(t, LexerConfig{OpenDelim: "{"}.Validate())
}
