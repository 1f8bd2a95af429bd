package quill

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-quill/internal"
)

// Error message constants - every error message is a constant
const (
	// Parse errors
	ErrMsgParseFailed         = "template parsing failed"
	ErrMsgUnexpectedToken     = "unexpected token in tag arguments"
	ErrMsgExpectedExpression  = "expected expression"
	ErrMsgInvalidExpression   = "invalid expression"
	ErrMsgMissingArguments    = "missing arguments"
	ErrMsgUnexpectedArguments = "tag takes no arguments"
	ErrMsgUnclosedTag         = "missing closing tag"
	ErrMsgMismatchedTag       = "mismatched closing tag"
	ErrMsgUnexpectedClosing   = "unexpected closing tag"
	ErrMsgExpectedVariable    = "expected variable"
	ErrMsgExpectedName        = "expected name"
	ErrMsgUnknownSyntax       = "unknown syntax"
	ErrMsgVoidNotAllowed      = "tag cannot be self-closing"

	// Compile errors
	ErrMsgUnknownTag          = "unknown tag"
	ErrMsgNilSuspension       = "suspending tag returned no suspension"
	ErrMsgMutationFailed      = "lexer configuration mutation failed"
	ErrMsgBeforeCompileFailed = "extension failed before compile"
	ErrMsgForbiddenVariable   = "forbidden variable"

	// Pass errors
	ErrMsgPassFailed = "compiler pass failed"

	// Runtime errors
	ErrMsgMissingCapability = "missing capability for entry"
	ErrMsgMissingRoutine    = "missing host routine for entry"
	ErrMsgUnresolvedEntry   = "entry was not resolved by a registry"
	ErrMsgUnknownFunction   = "unknown function"
	ErrMsgUnknownFilter     = "unknown filter"
	ErrMsgCallFailed        = "call failed"
	ErrMsgEvaluateFailed    = "expression evaluation failed"
	ErrMsgBadArgument       = "invalid argument"

	// Table errors
	ErrMsgTableFrozen = "capability table is frozen"

	// Engine errors
	ErrMsgNoLoader        = "engine has no template loader"
	ErrMsgTemplateLoad    = "failed to load template"
	ErrMsgTemplateMissing = "template not found"
	ErrMsgGenerateFailed  = "code generation failed"
	ErrMsgLintFailed      = "linter rejected generated output"
	ErrMsgTempDir         = "failed to prepare temp directory"
	ErrMsgWatcherFailed   = "failed to start template watcher"

	// Config errors
	ErrMsgConfigRead    = "failed to read configuration file"
	ErrMsgConfigParse   = "failed to parse configuration file"
	ErrMsgConfigInvalid = "invalid configuration"
)

// Error code constants for categorization
const (
	ErrCodeParse   = "QUILL_PARSE"
	ErrCodeCompile = "QUILL_COMPILE"
	ErrCodePass    = "QUILL_PASS"
	ErrCodeRuntime = "QUILL_RUNTIME"
	ErrCodeEngine  = "QUILL_ENGINE"
	ErrCodeConfig  = "QUILL_CONFIG"
	ErrCodeLint    = "QUILL_LINT"
)

// Position represents a location in the source template
type Position = internal.Position

// withPosition attaches line, column and offset metadata
func withPosition(err *cuserr.CustomError, pos Position) *cuserr.CustomError {
	return err.
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
}

// NewParseError creates a parse error with position context
func NewParseError(msg string, pos Position, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeParse, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeParse, msg)
	}
	return withPosition(err, pos)
}

// newLexerError converts an internal lexer error, keeping its position
func newLexerError(err error) error {
	var lexErr *internal.LexerError
	if errors.As(err, &lexErr) {
		return NewParseError(lexErr.Message, lexErr.Position, err)
	}
	return NewParseError(ErrMsgParseFailed, Position{}, err)
}

// NewTagError creates a parse error raised while handling a specific tag
func NewTagError(msg string, tagName string, pos Position) error {
	return withPosition(cuserr.NewValidationError(ErrCodeParse, msg), pos).
		WithMetadata(MetaKeyTag, tagName)
}

// NewUnexpectedTokenError creates an error for a leftover or misplaced argument token
func NewUnexpectedTokenError(tagName string, token string, pos Position) error {
	return withPosition(cuserr.NewValidationError(ErrCodeParse, ErrMsgUnexpectedToken), pos).
		WithMetadata(MetaKeyTag, tagName).
		WithMetadata(MetaKeyActual, token)
}

// NewUnknownTagError creates a compile error for a tag with no handler
func NewUnknownTagError(tagName string, pos Position) error {
	return withPosition(cuserr.NewValidationError(ErrCodeCompile, ErrMsgUnknownTag), pos).
		WithMetadata(MetaKeyTag, tagName)
}

// NewMismatchedTagError creates an error for a closing tag that does not match
func NewMismatchedTagError(expected, actual string, pos Position) error {
	return withPosition(cuserr.NewValidationError(ErrCodeParse, ErrMsgMismatchedTag), pos).
		WithMetadata(MetaKeyExpected, expected).
		WithMetadata(MetaKeyActual, actual)
}

// NewCompileError creates a compile error wrapping cause
func NewCompileError(msg string, cause error) error {
	if cause == nil {
		return cuserr.NewValidationError(ErrCodeCompile, msg)
	}
	return cuserr.WrapStdError(cause, ErrCodeCompile, msg)
}

// NewForbiddenVariableError creates an error for a reserved variable name
func NewForbiddenVariableError(name string, pos Position) error {
	return withPosition(cuserr.NewValidationError(ErrCodeCompile, ErrMsgForbiddenVariable), pos).
		WithMetadata(MetaKeyVariable, name)
}

// NewPassError creates an error for a failed compiler pass
func NewPassError(pass string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodePass, ErrMsgPassFailed).
		WithMetadata(MetaKeyPass, pass)
}

// NewCapabilityError creates the error raised by a stub whose capability is missing
func NewCapabilityError(capability, entry string) error {
	return cuserr.NewValidationError(ErrCodeRuntime, ErrMsgMissingCapability).
		WithMetadata(MetaKeyCapability, capability).
		WithMetadata(MetaKeyEntry, entry)
}

// NewMissingRoutineError creates the error raised by a stub whose host routine is missing
func NewMissingRoutineError(routine, entry string) error {
	return cuserr.NewValidationError(ErrCodeRuntime, ErrMsgMissingRoutine).
		WithMetadata(MetaKeyRoutine, routine).
		WithMetadata(MetaKeyEntry, entry)
}

// NewRuntimeError creates a render-time error for the named entry
func NewRuntimeError(msg string, entry string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeRuntime, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeRuntime, msg)
	}
	return err.WithMetadata(MetaKeyEntry, entry)
}

// NewBadArgumentError creates an error for a filter or function argument of the wrong kind
func NewBadArgumentError(entry string, reason string) error {
	return cuserr.NewValidationError(ErrCodeRuntime, ErrMsgBadArgument).
		WithMetadata(MetaKeyEntry, entry).
		WithMetadata(MetaKeyReason, reason)
}

// NewTemplateNotFoundError creates an error for a template the loader cannot find
func NewTemplateNotFoundError(name string) error {
	return cuserr.NewNotFoundError(MetaKeyTemplate, ErrMsgTemplateMissing).
		WithMetadata(MetaKeyTemplate, name)
}

// NewEngineError creates an engine-level error wrapping cause
func NewEngineError(msg string, cause error) error {
	if cause == nil {
		return cuserr.NewInternalError(ErrCodeEngine, errors.New(msg))
	}
	return cuserr.WrapStdError(cause, ErrCodeEngine, msg)
}

// NewLintError creates an error for a linter that rejected generated output
func NewLintError(command string, output string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeLint, ErrMsgLintFailed).
		WithMetadata(MetaKeyCommand, command).
		WithMetadata(MetaKeyOutput, output)
}

// NewConfigError creates a configuration error
func NewConfigError(msg string, path string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeConfig, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeConfig, msg)
	}
	return err.WithMetadata(MetaKeyPath, path)
}
