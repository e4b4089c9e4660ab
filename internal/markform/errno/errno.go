// Package errno defines the closed error hierarchy shared by every engine
// layer: a flat block of sentinels for errors.Is checks, plus the typed
// carriers from the error taxonomy (ParseError, PatchError, ValidationError,
// ConfigError, AbortError). Every engine-originated error satisfies error and
// carries EngineVersion.
package errno

import (
	"errors"
	"fmt"
)

// EngineVersion identifies the engine build, independent of the on-disk
// spec version (FormMetadata.SpecVersion).
const EngineVersion = "markform-engine/0.1"

var (
	ErrFieldNotFound     = errors.New("field not found")
	ErrGroupNotFound     = errors.New("group not found")
	ErrOptionNotFound    = errors.New("option not found")
	ErrColumnNotFound    = errors.New("column not found")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrUnresolvedRef     = errors.New("unresolved documentation ref")
	ErrUnknownTag        = errors.New("unknown tag")
	ErrUnknownAttribute  = errors.New("unknown attribute")
	ErrLegacyFieldTag    = errors.New("legacy per-kind field tag")
	ErrKindMismatch      = errors.New("patch op does not target this field kind")
	ErrShapeMismatch     = errors.New("patch payload has the wrong shape")
	ErrMaxTurnsExceeded  = errors.New("max turns exceeded")
	ErrAborted           = errors.New("form fill aborted")
	ErrCancelled         = errors.New("form fill cancelled")
	ErrUnfenced          = errors.New("value containing tag-like text must use process=false fence")
	ErrUnknownCoercion   = errors.New("no coercion available for this value shape")
	ErrUnknownHookPlugin = errors.New("unknown hook validator")
)

// Kind discriminates the typed error carriers below.
type Kind string

const (
	KindParse      Kind = "parse"
	KindPatch      Kind = "patch"
	KindValidation Kind = "validation"
	KindConfig     Kind = "config"
	KindLLM        Kind = "llm"
	KindAbort      Kind = "abort"
)

// ParseError is raised by the syntax preprocessor and form parser (spec L0-L2)
// for syntactic or schema violations.
type ParseError struct {
	Source string // originating file or form id, if known
	Line   int
	Column int
	Msg    string
	Cause  error
}

func (e *ParseError) Error() string {
	loc := ""
	if e.Line > 0 {
		loc = fmt.Sprintf(" at %d:%d", e.Line, e.Column)
	}
	if e.Source != "" {
		loc = fmt.Sprintf(" in %s%s", e.Source, loc)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: parse error%s: %s: %v", EngineVersion, loc, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: parse error%s: %s", EngineVersion, loc, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) Kind() Kind { return KindParse }

// NewParseError builds a ParseError with no known position.
func NewParseError(msg string, cause error) *ParseError {
	return &ParseError{Msg: msg, Cause: cause}
}

// PatchError is raised per-patch by the applicator (spec L5); it is
// recovered locally by the caller, never fatal to the batch.
type PatchError struct {
	FieldID       string
	PatchIndex    int
	PatchOp       string
	ExpectedType  string
	ReceivedValue any
	ReceivedType  string
	Msg           string
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("%s: patch %d (%s op=%s): %s (expected %s, got %s)",
		EngineVersion, e.PatchIndex, e.FieldID, e.PatchOp, e.Msg, e.ExpectedType, e.ReceivedType)
}

func (e *PatchError) Kind() Kind { return KindPatch }

// ValidationError wraps a batch of PatchErrors (spec L5 batch wrapper).
type ValidationError struct {
	Issues []*PatchError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation error: %d patch(es) rejected", EngineVersion, len(e.Issues))
}

func (e *ValidationError) Kind() Kind { return KindValidation }

// ConfigError is raised by the harness, coercion and export layers for
// malformed caller-supplied options.
type ConfigError struct {
	Option        string
	ExpectedType  string
	ReceivedValue any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: config error: option %q expected %s, got %v",
		EngineVersion, e.Option, e.ExpectedType, e.ReceivedValue)
}

func (e *ConfigError) Kind() Kind { return KindConfig }

// AbortError is raised when an abort_form patch applies or the harness is
// cancelled mid-run.
type AbortError struct {
	Reason          string
	OriginatingID   string
	OriginatingKind string // "abort_form" | "cancel"
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s: aborted (%s, field=%s): %s",
		EngineVersion, e.OriginatingKind, e.OriginatingID, e.Reason)
}

func (e *AbortError) Kind() Kind { return KindAbort }

// LlmError forwards an opaque provider failure from the agent adapter.
type LlmError struct {
	Provider   string
	Model      string
	StatusCode int
	Retryable  bool
	Cause      error
}

func (e *LlmError) Error() string {
	return fmt.Sprintf("%s: llm error: provider=%s model=%s status=%d retryable=%t: %v",
		EngineVersion, e.Provider, e.Model, e.StatusCode, e.Retryable, e.Cause)
}

func (e *LlmError) Unwrap() error { return e.Cause }

func (e *LlmError) Kind() Kind { return KindLLM }
