package quill

// Core tag names
const (
	TagNamePrint         = "="
	TagNameBlock         = "block"
	TagNameDefine        = "define"
	TagNameInclude       = "include"
	TagNameSyntax        = "syntax"
	TagNameLeftBrace     = "l"
	TagNameRightBrace    = "r"
	TagNameVar           = "var"
	TagNameDefault       = "default"
	TagNameIf            = "if"
	TagNameElseIf        = "elseif"
	TagNameElse          = "else"
	TagNameForeach       = "foreach"
	TagNameCapture       = "capture"
	TagNameSpaceless     = "spaceless"
	TagNameTemplatePrint = "templatePrint"
	TagNameDo            = "do"
)

// AttributePrefix marks the attribute form of a tag, e.g. {n:syntax off}.
// An attribute-form tag has no closing tag; its body runs to the end of the
// enclosing fragment.
const AttributePrefix = "n:"

// Syntax names accepted by {syntax} and WithSyntax
const (
	SyntaxSingle = "single"
	SyntaxLatte  = "latte"
	SyntaxDouble = "double"
	SyntaxOff    = "off"
)

// Include disambiguation keywords and sigil
const (
	KeywordFile   = "file"
	KeywordBlock  = "block"
	KeywordAs     = "as"
	SigilBlockRef = "#"
)

// Optional runtime capabilities that gate filters
const (
	CapabilityUnicode         = "unicode"
	CapabilityTransliteration = "transliteration"
)

// Host routine names referenced by core filters
const (
	RoutineRawURLEncode = "rawurlencode"
	RoutineNumberFormat = "number_format"
)

// Core pass names, in registration order
const (
	PassInternalVariables       = "internalVariables"
	PassOverwrittenVariables    = "overwrittenVariables"
	PassCustomFunctions         = "customFunctions"
	PassMoveTemplatePrintToHead = "moveTemplatePrintToHead"
)

// Node kinds
const (
	KindTemplate      = "template"
	KindFragment      = "fragment"
	KindText          = "text"
	KindString        = "string"
	KindExpression    = "expression"
	KindFilter        = "filter"
	KindArg           = "arg"
	KindPrint         = "print"
	KindBlock         = "block"
	KindDefine        = "define"
	KindIncludeBlock  = "include-block"
	KindIncludeFile   = "include-file"
	KindVar           = "var"
	KindIf            = "if"
	KindIfBranch      = "if-branch"
	KindForeach       = "foreach"
	KindCapture       = "capture"
	KindSpaceless     = "spaceless"
	KindTemplatePrint = "template-print"
	KindDo            = "do"
)

// Variable names rejected by the internalVariables pass
const (
	InternalVariablePrefix = "__"
	VariableThis           = "this"
	VariableGlobal         = "global"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyLine       = "line"
	MetaKeyColumn     = "column"
	MetaKeyOffset     = "offset"
	MetaKeyTag        = "tag"
	MetaKeyTemplate   = "template"
	MetaKeyPass       = "pass"
	MetaKeyCapability = "capability"
	MetaKeyRoutine    = "routine"
	MetaKeyEntry      = "entry"
	MetaKeyVariable   = "variable"
	MetaKeyExpected   = "expected"
	MetaKeyActual     = "actual"
	MetaKeyPath       = "path"
	MetaKeyCommand    = "command"
	MetaKeyOutput     = "output"
	MetaKeyReason     = "reason"
)

// Engine defaults
const (
	DefaultSyntax         = SyntaxSingle
	DefaultGeneratedExt   = ".yaml"
	DefaultTempDirPerm    = 0o750
	DefaultLintFilePrefix = "quill-"
)

// Log message constants
const (
	LogMsgEngineCreated     = "quill engine created"
	LogMsgExtensionAdded    = "extension registered"
	LogMsgCompileStart      = "compile started"
	LogMsgCompileDone       = "compile finished"
	LogMsgTablesMerged      = "capability tables merged"
	LogMsgRenderStart       = "render started"
	LogMsgTagDispatched     = "tag dispatched"
	LogMsgSuspended         = "tag suspended for body parse"
	LogMsgRestored          = "lexer configuration restored"
	LogMsgPassRun           = "pass applied"
	LogMsgPassFailed        = "pass failed"
	LogMsgEntryStubbed      = "entry replaced by failing stub"
	LogMsgVariableOverwrite = "foreach overwrites variable"
	LogMsgCacheHit          = "compiled template cache hit"
	LogMsgCacheInvalidated  = "compiled template invalidated"
	LogMsgWatcherStarted    = "template watcher started"
	LogMsgWatcherError      = "template watcher error"
	LogMsgWatchFailed       = "failed to watch template file"
	LogMsgLinterRun         = "running linter"
	LogMsgConfigLoaded      = "configuration loaded"
)

// Log field constants
const (
	LogFieldTemplate   = "template"
	LogFieldTag        = "tag"
	LogFieldPass       = "pass"
	LogFieldExtension  = "extension"
	LogFieldCount      = "count"
	LogFieldTags       = "tags"
	LogFieldFilters    = "filters"
	LogFieldFunctions  = "functions"
	LogFieldPasses     = "passes"
	LogFieldOpen       = "open_delim"
	LogFieldClose      = "close_delim"
	LogFieldOff        = "off"
	LogFieldEntry      = "entry"
	LogFieldCapability = "capability"
	LogFieldVariable   = "variable"
	LogFieldPath       = "path"
	LogFieldCommand    = "command"
	LogFieldError      = "error"
	LogFieldDuration   = "duration"
	LogFieldPosition   = "position"
)
