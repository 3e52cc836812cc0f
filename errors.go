package construct

import "github.com/pkg/errors"

// Error kinds. Every failure surfaced by this package satisfies errors.Is
// against exactly one of these sentinels, mirroring the four-way taxonomy
// of structures.py's Error/BuildingError/ParsingError/SizeofError/
// ContextualError hierarchy.
var (
	// ErrBuild is the sentinel for build-side failures: the value being
	// built cannot be serialized under the given description.
	ErrBuild = errors.New("construct: build error")
	// ErrParse is the sentinel for parse-side failures: the byte stream
	// cannot be decoded under the given description.
	ErrParse = errors.New("construct: parse error")
	// ErrSize is the sentinel for a construct with no determinate size
	// under the given context.
	ErrSize = errors.New("construct: size error")
	// ErrContextual is the sentinel for a user-supplied context closure
	// that returned an error or an unusable value.
	ErrContextual = errors.New("construct: contextual error")
)

// BuildError reports that a value could not be built into bytes.
type BuildError struct{ cause error }

func (e *BuildError) Error() string { return e.cause.Error() }
func (e *BuildError) Unwrap() error { return e.cause }

// newBuildError formats a message and wraps it so errors.Is(err, ErrBuild)
// holds.
func newBuildError(format string, args ...interface{}) *BuildError {
	return &BuildError{cause: errors.Wrapf(ErrBuild, format, args...)}
}

func wrapBuildError(err error) *BuildError {
	if be, ok := err.(*BuildError); ok {
		return be
	}
	return &BuildError{cause: errors.Wrap(ErrBuild, err.Error())}
}

// ParseError reports that bytes could not be decoded into a value.
type ParseError struct{ cause error }

func (e *ParseError) Error() string { return e.cause.Error() }
func (e *ParseError) Unwrap() error { return e.cause }

func newParseError(format string, args ...interface{}) *ParseError {
	return &ParseError{cause: errors.Wrapf(ErrParse, format, args...)}
}

func wrapParseError(err error) *ParseError {
	if pe, ok := err.(*ParseError); ok {
		return pe
	}
	return &ParseError{cause: errors.Wrap(ErrParse, err.Error())}
}

// SizeError reports that a construct has no determinate size under the
// given context.
type SizeError struct{ cause error }

func (e *SizeError) Error() string { return e.cause.Error() }
func (e *SizeError) Unwrap() error { return e.cause }

func newSizeError(format string, args ...interface{}) *SizeError {
	return &SizeError{cause: errors.Wrapf(ErrSize, format, args...)}
}

func wrapSizeError(err error) *SizeError {
	if se, ok := err.(*SizeError); ok {
		return se
	}
	return &SizeError{cause: errors.Wrap(ErrSize, err.Error())}
}

// ContextualError reports that a closure evaluated against a Context
// failed or produced an unusable result.
type ContextualError struct{ cause error }

func (e *ContextualError) Error() string { return e.cause.Error() }
func (e *ContextualError) Unwrap() error { return e.cause }

func newContextualError(format string, args ...interface{}) *ContextualError {
	return &ContextualError{cause: errors.Wrapf(ErrContextual, format, args...)}
}

// isLibraryError reports whether err already carries one of this package's
// error kinds, in which case it must propagate unchanged rather than being
// rewrapped by the public entry points.
func isLibraryError(err error) bool {
	switch err.(type) {
	case *BuildError, *ParseError, *SizeError, *ContextualError:
		return true
	default:
		return false
	}
}
