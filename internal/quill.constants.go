package internal

// TokenType represents the type of a template token
type TokenType string

// Template token type constants
const (
	TokenTypeText TokenType = "TEXT"
	TokenTypeTag  TokenType = "TAG"
	TokenTypeEOF  TokenType = "EOF"
)

// ArgTokenType represents the type of a tag argument token
type ArgTokenType string

// Argument token type constants
const (
	ArgTokenIdent    ArgTokenType = "IDENT"
	ArgTokenVariable ArgTokenType = "VARIABLE"
	ArgTokenString   ArgTokenType = "STRING"
	ArgTokenNumber   ArgTokenType = "NUMBER"
	ArgTokenPunct    ArgTokenType = "PUNCT"
	ArgTokenEOF      ArgTokenType = "EOF"
)

// Character constants
const (
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBackslash   = '\\'
	CharSlash       = '/'
	CharDollar      = '$'
	CharEquals      = '='
	CharLParen      = '('
	CharOpenBrace   = '{'
	CharCloseBrace  = '}'
	CharUnderscore  = '_'
	CharNewline     = '\n'
	CharSpace       = ' '
	CharTab         = '\t'
	CharCarriageRet = '\r'
)

// Default delimiters
const (
	StrOpenDelim  = "{"
	StrCloseDelim = "}"
)

// PrintTagName is the implicit tag name used for bare expressions like {$x}
const PrintTagName = "="

// Multi-character punctuators recognised by the argument tokenizer, longest first.
var multiCharPuncts = []string{
	"...", "?->",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "..", "::", "**",
}

// Single-character punctuators recognised by the argument tokenizer.
const singleCharPuncts = "#,()[]{}|:=+-*/%<>!?.~^&@;"

// Log message constants
const (
	LogMsgLexerCreated  = "lexer created"
	LogMsgLexerSeek     = "lexer rewound"
	LogMsgArgsTokenized = "tag arguments tokenized"
)

// Log field constants
const (
	LogFieldSource = "source_length"
	LogFieldOffset = "offset"
	LogFieldTokens = "tokens"
	LogFieldOpen   = "open_delim"
	LogFieldClose  = "close_delim"
)

// Error message constants
const (
	ErrMsgUnterminatedTag = "unterminated tag"
	ErrMsgUnterminatedStr = "unterminated string literal"
	ErrMsgInvalidTagName  = "invalid tag name"
	ErrMsgUnexpectedChar  = "unexpected character"
	ErrMsgEmptyDelimiter  = "delimiter cannot be empty"
)
