// Package shemerr defines the closed set of error kinds this tool can
// return, so callers — the CLI layer above all — can branch on what went
// wrong (a bad connection string vs. a destructive migration vs. a parse
// failure) without parsing error strings.
package shemerr

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of error categories.
type Kind string

const (
	KindParseError          Kind = "parse_error"
	KindUnsupportedStatement Kind = "unsupported_statement"
	KindSchemaSemanticError Kind = "schema_semantic_error"
	KindIntrospectionError  Kind = "introspection_error"
	KindDependencyCycle     Kind = "dependency_cycle"
	KindShadowDivergence    Kind = "shadow_divergence"
	KindHistoryDivergence   Kind = "history_divergence"
	KindDestructiveChange   Kind = "destructive_change"
	KindConnectionError     Kind = "connection_error"
)

// Error wraps an underlying cause with a Kind so errors.Is/As and a type
// switch on Kind both work, matching the teacher's "%w"-wrapping style
// while making the category explicit instead of implicit in the message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, shemerr.New(shemerr.KindParseError, "", nil)) or more
// idiomatically use the Is<Kind> helpers below.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Parsef(format string, cause error, args ...any) *Error {
	return &Error{Kind: KindParseError, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func UnsupportedStatementf(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedStatement, Message: fmt.Sprintf(format, args...)}
}

func SchemaSemanticf(format string, args ...any) *Error {
	return &Error{Kind: KindSchemaSemanticError, Message: fmt.Sprintf(format, args...)}
}

func Introspectionf(format string, cause error, args ...any) *Error {
	return &Error{Kind: KindIntrospectionError, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func DependencyCyclef(format string, args ...any) *Error {
	return &Error{Kind: KindDependencyCycle, Message: fmt.Sprintf(format, args...)}
}

func ShadowDivergencef(format string, args ...any) *Error {
	return &Error{Kind: KindShadowDivergence, Message: fmt.Sprintf(format, args...)}
}

func HistoryDivergencef(format string, args ...any) *Error {
	return &Error{Kind: KindHistoryDivergence, Message: fmt.Sprintf(format, args...)}
}

func DestructiveChangef(format string, args ...any) *Error {
	return &Error{Kind: KindDestructiveChange, Message: fmt.Sprintf(format, args...)}
}

func Connectionf(format string, cause error, args ...any) *Error {
	return &Error{Kind: KindConnectionError, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Of reports the Kind of err if it (or something it wraps) is a *Error.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
