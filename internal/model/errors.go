package model

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Kinds are what the CLI reports, not Go types.
type Kind string

const (
	KindScriptNotFound           Kind = "ScriptNotFound"
	KindInvalidProjectStructure  Kind = "InvalidProjectStructure"
	KindToolUnavailable          Kind = "ToolUnavailable"
	KindToolExecutionTimeout     Kind = "ToolExecutionTimeout"
	KindParseFailure             Kind = "ParseFailure"
	KindNoLastRun                Kind = "NoLastRun"
	KindNoBaseline               Kind = "NoBaseline"
	KindMalformedPersistedRecord Kind = "MalformedPersistedRecord"
	KindFileSystemError          Kind = "FileSystemError"
	KindQoRRegression            Kind = "QoRRegression"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrScriptNotFound           = &Error{Kind: KindScriptNotFound}
	ErrInvalidProjectStructure  = &Error{Kind: KindInvalidProjectStructure}
	ErrToolUnavailable          = &Error{Kind: KindToolUnavailable}
	ErrToolExecutionTimeout     = &Error{Kind: KindToolExecutionTimeout}
	ErrParseFailure             = &Error{Kind: KindParseFailure}
	ErrNoLastRun                = &Error{Kind: KindNoLastRun}
	ErrNoBaseline               = &Error{Kind: KindNoBaseline}
	ErrMalformedPersistedRecord = &Error{Kind: KindMalformedPersistedRecord}
	ErrFileSystem               = &Error{Kind: KindFileSystemError}
	ErrQoRRegression            = &Error{Kind: KindQoRRegression}
)

// Error is a classified failure with an operator-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Errorf builds a classified error. A trailing %w in format is kept as the cause.
func Errorf(kind Kind, format string, args ...any) error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{Kind: kind, Msg: wrapped.Error(), Err: errors.Unwrap(wrapped)}
}

// Wrap classifies err under kind, prefixing its text with msg.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return &Error{Kind: kind, Msg: msg}
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf("%s: %v", msg, err), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
