package main

// CLI identity
const (
	CLIName        = "quill"
	CLIDescription = "Compile and inspect quill templates"
)

// Command names
const (
	CmdNameCompile = "compile"
	CmdNameDump    = "dump"
	CmdNameTables  = "tables"
	CmdNameVersion = "version"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
)

// File permissions
const (
	FilePermissions = 0o644
)

// Error messages - ALL must be constants
const (
	ErrMsgBuildEngine      = "failed to create engine"
	ErrMsgLoadConfig       = "failed to load configuration"
	ErrMsgLoadCatalogs     = "failed to load translation catalogs"
	ErrMsgReadFileFailed   = "failed to read file"
	ErrMsgCompileFailed    = "template compilation failed"
	ErrMsgGenerateFailed   = "output generation failed"
	ErrMsgWriteFailed      = "failed to write output"
	ErrMsgTemplatesInvalid = "some templates failed to compile"
)

// Output format strings
const (
	FmtError          = "error: %s\n"
	FmtErrorWithCause = "error: %s: %v\n"
	FmtCompileOK      = "ok %s (%d blocks)\n"
	FmtCompileFail    = "fail %s: %v\n"
	FmtTableHeader    = "%s:\n"
	FmtTableEntry     = "  %s\n"
	FmtTableCallable  = "  %s [%s]\n"
	FmtVersion        = "%s %s (%s)\n"
)

// Table section names
const (
	SectionTags      = "tags"
	SectionFilters   = "filters"
	SectionFunctions = "functions"
	SectionPasses    = "passes"
)
