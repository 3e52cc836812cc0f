package construct

import (
	"errors"
	"testing"
)

func TestBuildErrorIsErrBuild(t *testing.T) {
	err := newBuildError("boom %d", 1)
	if !errors.Is(err, ErrBuild) {
		t.Errorf("expected errors.Is(err, ErrBuild) to hold")
	}
}

func TestIsLibraryErrorPropagatesUnchanged(t *testing.T) {
	be := newBuildError("inner")
	if !isLibraryError(be) {
		t.Errorf("expected *BuildError to be recognized as a library error")
	}
	if isLibraryError(errors.New("plain")) {
		t.Errorf("expected a plain error not to be recognized as a library error")
	}
}

func TestWrapBuildErrorIsIdempotent(t *testing.T) {
	be := newBuildError("inner")
	wrapped := wrapBuildError(be)
	if wrapped != be {
		t.Errorf("expected wrapBuildError to return the same *BuildError unchanged")
	}
}

func TestBuildStreamWrapsPlainErrors(t *testing.T) {
	boom := raiser{err: errors.New("not a library error")}
	err := BuildStream(boom, nil, NewBuildStream(), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*BuildError); !ok {
		t.Errorf("expected *BuildError, got %T", err)
	}
}

// raiser is a minimal Construct used only to exercise the
// wrap-non-library-errors-once policy at the public entry points.
type raiser struct{ err error }

func (r raiser) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	return nil, r.err
}
func (r raiser) parseStream(stream *Stream, ctx *Context) (any, error) { return nil, r.err }
func (r raiser) sizeOf(ctx *Context) (int, error)                     { return 0, r.err }
func (r raiser) embedded() bool                                       { return false }
