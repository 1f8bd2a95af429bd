package internal

import (
	"strings"

	"go.uber.org/zap"
)

// LexerConfig holds the delimiter settings the lexer honours. The parser owns
// one per compile and handlers may mutate it while a tag body is parsed.
type LexerConfig struct {
	OpenDelim  string // Opening delimiter (default: "{")
	CloseDelim string // Closing delimiter (default: "}")
	Off        bool   // When set, only the closing tag named EndTag is recognised
	EndTag     string // Tag whose closing form ends an Off region
}

// DefaultLexerConfig returns the default lexer configuration
func DefaultLexerConfig() LexerConfig {
	return LexerConfig{
		OpenDelim:  StrOpenDelim,
		CloseDelim: StrCloseDelim,
	}
}

// Validate checks that both delimiters are set
func (c LexerConfig) Validate() error {
	if c.OpenDelim == "" || c.CloseDelim == "" {
		return &LexerError{Message: ErrMsgEmptyDelimiter}
	}
	return nil
}

// endTagClose returns the closing form of EndTag, e.g. "{/syntax}"
func (c LexerConfig) endTagClose() string {
	return c.OpenDelim + string(CharSlash) + c.EndTag + c.CloseDelim
}

// Lexer splits template source into text and tag tokens on demand. It reads
// the delimiters from a shared *LexerConfig on every call to Next, so changes
// made between calls take effect at the current position.
type Lexer struct {
	source string
	config *LexerConfig
	pos    int // Current byte position
	line   int // Current line (1-indexed)
	column int // Current column (1-indexed)
	logger *zap.Logger
}

// NewLexer creates a lexer reading delimiters from config
func NewLexer(source string, config *LexerConfig, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgLexerCreated,
		zap.Int(LogFieldSource, len(source)),
		zap.String(LogFieldOpen, config.OpenDelim),
		zap.String(LogFieldClose, config.CloseDelim),
	)
	return &Lexer{
		source: source,
		config: config,
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Next returns the next token under the current configuration
func (l *Lexer) Next() (Token, error) {
	if l.isAtEnd() {
		return Token{Type: TokenTypeEOF, Position: l.currentPosition()}, nil
	}
	if l.isTagStart() {
		return l.scanTag()
	}
	return l.scanText(), nil
}

// Seek moves the lexer back (or forward) to pos, which must come from a token
// this lexer produced.
func (l *Lexer) Seek(pos Position) {
	l.pos = pos.Offset
	l.line = pos.Line
	l.column = pos.Column
	l.logger.Debug(LogMsgLexerSeek, zap.Int(LogFieldOffset, pos.Offset))
}

// Position returns the current lexer position
func (l *Lexer) Position() Position {
	return l.currentPosition()
}

// isTagStart reports whether a tag begins at the current position
func (l *Lexer) isTagStart() bool {
	cfg := l.config
	if cfg.Off {
		return cfg.EndTag != "" && l.matchStr(cfg.endTagClose())
	}
	if !l.matchStr(cfg.OpenDelim) {
		return false
	}
	next := l.pos + len(cfg.OpenDelim)
	if next >= len(l.source) {
		return false
	}
	switch l.source[next] {
	case CharSpace, CharTab, CharNewline, CharCarriageRet, CharDoubleQuote, CharSingleQuote, CharOpenBrace, CharCloseBrace:
		return false
	}
	return true
}

// scanText scans text up to the next tag or the end of input
func (l *Lexer) scanText() Token {
	startPos := l.currentPosition()
	start := l.pos
	for !l.isAtEnd() && !l.isTagStart() {
		l.advance()
	}
	return Token{Type: TokenTypeText, Value: l.source[start:l.pos], Position: startPos}
}

// scanTag scans a whole tag including both delimiters
func (l *Lexer) scanTag() (Token, error) {
	startPos := l.currentPosition()
	l.advanceN(len(l.config.OpenDelim))
	contentPos := l.currentPosition()
	contentStart := l.pos

	var quote byte
	for !l.isAtEnd() {
		ch := l.peek()
		if quote != 0 {
			if ch == CharBackslash && l.pos+1 < len(l.source) {
				l.advanceN(2)
				continue
			}
			if ch == quote {
				quote = 0
			}
			l.advance()
			continue
		}
		if ch == CharDoubleQuote || ch == CharSingleQuote {
			quote = ch
			l.advance()
			continue
		}
		if l.matchStr(l.config.CloseDelim) {
			content := l.source[contentStart:l.pos]
			l.advanceN(len(l.config.CloseDelim))
			return buildTagToken(content, startPos, contentPos)
		}
		l.advance()
	}

	if quote != 0 {
		return Token{}, &LexerError{Message: ErrMsgUnterminatedStr, Position: startPos}
	}
	return Token{}, &LexerError{Message: ErrMsgUnterminatedTag, Position: startPos}
}

// buildTagToken splits raw tag content into name and arguments
func buildTagToken(content string, start, contentPos Position) (Token, error) {
	tok := Token{Type: TokenTypeTag, Position: start}

	if strings.HasPrefix(content, string(CharSlash)) {
		tok.Closing = true
		rest := content[1:]
		name, args, argsOffset := splitName(rest)
		tok.Name = name
		tok.Args = args
		tok.ArgsPos = advancePosition(contentPos, content[:1+argsOffset])
		return tok, nil
	}

	trimmed := strings.TrimRight(content, " \t\r\n")
	if strings.HasSuffix(trimmed, string(CharSlash)) {
		tok.SelfClose = true
		content = trimmed[:len(trimmed)-1]
	}

	if content == "" {
		return Token{}, &LexerError{Message: ErrMsgInvalidTagName, Position: contentPos}
	}

	switch ch := content[0]; {
	case ch == CharEquals:
		tok.Name = PrintTagName
		args := strings.TrimLeft(content[1:], " \t\r\n")
		tok.Args = strings.TrimRight(args, " \t\r\n")
		tok.ArgsPos = advancePosition(contentPos, content[:len(content)-len(args)])
	case ch == CharDollar || ch == CharLParen:
		tok.Name = PrintTagName
		tok.Args = strings.TrimRight(content, " \t\r\n")
		tok.ArgsPos = contentPos
	case isLetter(ch) || ch == CharUnderscore:
		name, args, argsOffset := splitName(content)
		tok.Name = name
		tok.Args = args
		tok.ArgsPos = advancePosition(contentPos, content[:argsOffset])
	default:
		return Token{}, &LexerError{Message: ErrMsgInvalidTagName, Position: contentPos}
	}
	return tok, nil
}

// splitName splits "name args" into its parts. argsOffset is the byte offset of
// args within s.
func splitName(s string) (name, args string, argsOffset int) {
	i := 0
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	name = s[:i]
	j := i
	for j < len(s) && isSpace(s[j]) {
		j++
	}
	return name, strings.TrimRight(s[j:], " \t\r\n"), j
}

// advancePosition returns pos moved past text
func advancePosition(pos Position, text string) Position {
	for i := 0; i < len(text); i++ {
		pos.Offset++
		if text[i] == CharNewline {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

// Helper methods

// currentPosition returns the current position
func (l *Lexer) currentPosition() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// isAtEnd returns true if we've reached the end of source
func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// peek returns the current character without advancing
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == CharNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

// advanceN advances by n characters
func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
}

// matchStr returns true if the remaining source starts with s
func (l *Lexer) matchStr(s string) bool {
	return s != "" && strings.HasPrefix(l.source[l.pos:], s)
}

// Character classification helpers

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == CharSpace || ch == CharTab || ch == CharNewline || ch == CharCarriageRet
}

func isNameChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == CharUnderscore || ch == '-' || ch == ':' || ch == '.'
}
