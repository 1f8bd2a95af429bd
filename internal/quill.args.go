package internal

import (
	"strings"

	"go.uber.org/zap"
)

// ArgTokenizer splits the raw argument text of a tag into tokens
type ArgTokenizer struct {
	input  string
	pos    int
	cur    Position
	logger *zap.Logger
}

// NewArgTokenizer creates a tokenizer for input, which starts at start in the
// template source
func NewArgTokenizer(input string, start Position, logger *zap.Logger) *ArgTokenizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArgTokenizer{input: input, cur: start, logger: logger}
}

// Tokenize returns all tokens followed by a single EOF token
func (t *ArgTokenizer) Tokenize() ([]ArgToken, error) {
	var tokens []ArgToken
	space := false

	for t.pos < len(t.input) {
		ch := t.input[t.pos]

		if isSpace(ch) {
			t.advance()
			space = true
			continue
		}

		var (
			tok ArgToken
			err error
		)
		switch {
		case ch == CharDollar:
			tok, err = t.scanVariable()
		case ch == CharDoubleQuote || ch == CharSingleQuote:
			tok, err = t.scanString(ch)
		case isDigit(ch):
			tok = t.scanNumber()
		case isIdentStart(ch):
			tok = t.scanIdent()
		default:
			tok, err = t.scanPunct()
		}
		if err != nil {
			return nil, err
		}

		tok.SpaceBefore = space
		space = false
		tokens = append(tokens, tok)
	}

	tokens = append(tokens, ArgToken{Type: ArgTokenEOF, Position: t.cur, SpaceBefore: space})
	t.logger.Debug(LogMsgArgsTokenized, zap.Int(LogFieldTokens, len(tokens)))
	return tokens, nil
}

// TokenizeArgs is a convenience wrapper around ArgTokenizer
func TokenizeArgs(input string, start Position) ([]ArgToken, error) {
	return NewArgTokenizer(input, start, nil).Tokenize()
}

func (t *ArgTokenizer) scanVariable() (ArgToken, error) {
	startPos := t.cur
	start := t.pos
	t.advance() // $
	if t.pos >= len(t.input) || !isIdentStart(t.input[t.pos]) {
		return ArgToken{}, &LexerError{Message: ErrMsgUnexpectedChar, Position: startPos}
	}
	for t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		t.advance()
	}
	text := t.input[start:t.pos]
	return ArgToken{Type: ArgTokenVariable, Text: text, Value: text[1:], Position: startPos}, nil
}

func (t *ArgTokenizer) scanString(quote byte) (ArgToken, error) {
	startPos := t.cur
	start := t.pos
	t.advance() // opening quote

	var sb strings.Builder
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == quote {
			t.advance()
			return ArgToken{
				Type:     ArgTokenString,
				Text:     t.input[start:t.pos],
				Value:    sb.String(),
				Position: startPos,
			}, nil
		}
		if ch == CharBackslash && t.pos+1 < len(t.input) {
			next := t.input[t.pos+1]
			t.advance()
			t.advance()
			switch next {
			case 'n':
				sb.WriteByte(CharNewline)
			case 't':
				sb.WriteByte(CharTab)
			case quote, CharBackslash:
				sb.WriteByte(next)
			default:
				sb.WriteByte(CharBackslash)
				sb.WriteByte(next)
			}
			continue
		}
		sb.WriteByte(ch)
		t.advance()
	}
	return ArgToken{}, &LexerError{Message: ErrMsgUnterminatedStr, Position: startPos}
}

func (t *ArgTokenizer) scanNumber() ArgToken {
	startPos := t.cur
	start := t.pos
	for t.pos < len(t.input) && isDigit(t.input[t.pos]) {
		t.advance()
	}
	// fraction, but not a range operator like 1..5
	if t.pos+1 < len(t.input) && t.input[t.pos] == '.' && isDigit(t.input[t.pos+1]) {
		t.advance()
		for t.pos < len(t.input) && isDigit(t.input[t.pos]) {
			t.advance()
		}
	}
	text := t.input[start:t.pos]
	return ArgToken{Type: ArgTokenNumber, Text: text, Value: text, Position: startPos}
}

func (t *ArgTokenizer) scanIdent() ArgToken {
	startPos := t.cur
	start := t.pos
	for t.pos < len(t.input) && isIdentChar(t.input[t.pos]) {
		t.advance()
	}
	text := t.input[start:t.pos]
	return ArgToken{Type: ArgTokenIdent, Text: text, Value: text, Position: startPos}
}

func (t *ArgTokenizer) scanPunct() (ArgToken, error) {
	startPos := t.cur
	rest := t.input[t.pos:]
	for _, p := range multiCharPuncts {
		if strings.HasPrefix(rest, p) {
			for range len(p) {
				t.advance()
			}
			return ArgToken{Type: ArgTokenPunct, Text: p, Value: p, Position: startPos}, nil
		}
	}
	if strings.IndexByte(singleCharPuncts, rest[0]) >= 0 {
		t.advance()
		return ArgToken{Type: ArgTokenPunct, Text: rest[:1], Value: rest[:1], Position: startPos}, nil
	}
	return ArgToken{}, &LexerError{Message: ErrMsgUnexpectedChar, Position: startPos}
}

// advance consumes one byte and updates the position
func (t *ArgTokenizer) advance() {
	ch := t.input[t.pos]
	t.pos++
	t.cur.Offset++
	if ch == CharNewline {
		t.cur.Line++
		t.cur.Column = 1
	} else {
		t.cur.Column++
	}
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == CharUnderscore || ch >= 0x80
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
