package errors

import (
	"errors"
	"fmt"
)

// Kind defines the category of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindEnvironment
	KindPermission
	KindToolNotFound
	KindValidation
	KindCommand
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindPermission:
		return "permission"
	case KindToolNotFound:
		return "tool_not_found"
	case KindValidation:
		return "validation"
	case KindCommand:
		return "command"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a structured error carrying a Kind and optional attributes.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
	Attributes map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Underlying == nil:
		return e.Message
	case e.Message == "":
		return e.Underlying.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a new Error of the specified kind.
func New(kind Kind, msg string) error {
	return &Error{
		Kind:    kind,
		Message: msg,
	}
}

// Errorf creates a new Error of the specified kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error as a new Error of the specified kind.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:       kind,
		Message:    msg,
		Underlying: err,
	}
}

// Wrapf wraps an existing error as a new Error of the specified kind with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		Underlying: err,
	}
}

// Attr attaches key=val to err. Only an *Error at the top of the chain is
// annotated in place; anything else is wrapped so its message survives.
func Attr(err error, key string, val any) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok {
		e = &Error{Kind: GetKind(err), Underlying: err}
	}
	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	e.Attributes[key] = val
	return e
}

// kinded is implemented by domain errors that classify themselves.
type kinded interface {
	Kind() Kind
}

// GetKind returns the Kind of the first classified error in err's chain,
// or KindUnknown.
func GetKind(err error) Kind {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Kind
		case kinded:
			return e.Kind()
		}
		err = errors.Unwrap(err)
	}
	return KindUnknown
}

// GetAttributes collects the attributes of every *Error in err's chain.
// The outermost value wins for a repeated key.
func GetAttributes(err error) map[string]any {
	attrs := make(map[string]any)
	for ; err != nil; err = errors.Unwrap(err) {
		e, ok := err.(*Error)
		if !ok {
			continue
		}
		for k, v := range e.Attributes {
			if _, seen := attrs[k]; !seen {
				attrs[k] = v
			}
		}
	}
	return attrs
}

// Fields returns the attributes of err plus its kind, ready for a
// structured log entry.
func Fields(err error) map[string]any {
	f := GetAttributes(err)
	f["kind"] = GetKind(err).String()
	return f
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
