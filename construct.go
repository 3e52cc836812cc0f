// Package construct provides a declarative way to describe binary formats:
// a small algebra of composable constructs, each of which knows how to
// build a typed Go value to bytes, parse it back from bytes, and (when
// determinate) report its on-wire size. The same description drives both
// directions, so a message framing, an EEPROM layout, or a line protocol
// is written once and used for both encoding and decoding.
//
// This is a from-scratch generalization of the original
// github.com/njchilds90/go-construct idea (a Field interface with
// Parse(io.Reader)/Build(io.Writer, any)) into the fuller combinator
// algebra of malinoff/structures (Python): fields can depend on each
// other's values through a threaded Context, structs can embed one
// another, and every combinator restores stream position and context
// scoping precisely.
package construct

// Construct is the contract every node in a description tree implements.
// It is immutable after construction.
type Construct interface {
	// buildStream writes obj's wire representation into stream and
	// returns a "context value": when non-nil, the enclosing Struct
	// records this value (not obj) under the field name in context.
	buildStream(obj any, stream *Stream, ctx *Context) (any, error)

	// parseStream reads and decodes a value from stream.
	parseStream(stream *Stream, ctx *Context) (any, error)

	// sizeOf returns this construct's size in bytes under ctx, or a
	// *SizeError if it has no determinate size.
	sizeOf(ctx *Context) (int, error)

	// embedded reports whether this construct, when used as a Struct
	// field, contributes its values directly into the enclosing frame
	// instead of occupying a single named slot.
	embedded() bool
}

// Build materializes obj into bytes using c, with an optional initial
// context mapping.
func Build(c Construct, obj any, initialCtx map[string]any) ([]byte, error) {
	stream := NewBuildStream()
	if err := BuildStream(c, obj, stream, initialCtx); err != nil {
		return nil, err
	}
	return stream.Bytes(), nil
}

// Parse decodes a value from data using c, with an optional initial
// context mapping.
func Parse(c Construct, data []byte, initialCtx map[string]any) (any, error) {
	stream := NewStream(data)
	return ParseStream(c, stream, initialCtx)
}

// SizeOf returns c's size in bytes under the given initial context
// mapping, or a *SizeError if it is not determinate.
func SizeOf(c Construct, initialCtx map[string]any) (int, error) {
	ctx := NewContext(initialCtx)
	n, err := c.sizeOf(ctx)
	if err != nil {
		if isLibraryError(err) {
			return 0, err
		}
		return 0, wrapSizeError(err)
	}
	return n, nil
}

// BuildStream writes obj's wire representation for c into an
// already-open stream, using a fresh context seeded with initialCtx
// (empty if nil). Any error
// already one of this package's kinds propagates unchanged; anything else
// is translated once, at this boundary, into a *BuildError — mirroring
// structures.py's "except Error: raise / except Exception: raise
// BuildingError" pattern at every public entry point.
func BuildStream(c Construct, obj any, stream *Stream, initialCtx map[string]any) error {
	ctx := NewContext(initialCtx)
	_, err := c.buildStream(obj, stream, ctx)
	if err == nil {
		return nil
	}
	if isLibraryError(err) {
		return err
	}
	return wrapBuildError(err)
}

// ParseStream decodes a value for c from an already-open stream, using a
// fresh context seeded with initialCtx (empty if nil).
func ParseStream(c Construct, stream *Stream, initialCtx map[string]any) (any, error) {
	ctx := NewContext(initialCtx)
	v, err := c.parseStream(stream, ctx)
	if err == nil {
		return v, nil
	}
	if isLibraryError(err) {
		return nil, err
	}
	return nil, wrapParseError(err)
}

// Subconstruct is embedded by combinators that wrap exactly one inner
// Construct and want sensible default forwarding for the parts of the
// contract they don't override — the Go analogue of structures.py's
// Subconstruct base class. Embedders override whichever of
// buildStream/parseStream/sizeOf they need to change; embedded() is
// already sticky (see NewSubconstruct).
type Subconstruct struct {
	Inner      Construct
	isEmbedded bool
}

// NewSubconstruct wraps inner, inheriting its embedded flag so that
// wrapping an embedded struct in e.g. Adapted preserves embedding — the
// "embedding survives transforms" rule from spec.md section 4.7.
func NewSubconstruct(inner Construct) Subconstruct {
	return Subconstruct{Inner: inner, isEmbedded: inner.embedded()}
}

func (s Subconstruct) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	return s.Inner.buildStream(obj, stream, ctx)
}

func (s Subconstruct) parseStream(stream *Stream, ctx *Context) (any, error) {
	return s.Inner.parseStream(stream, ctx)
}

func (s Subconstruct) sizeOf(ctx *Context) (int, error) {
	return s.Inner.sizeOf(ctx)
}

func (s Subconstruct) embedded() bool {
	return s.isEmbedded
}

// Repeated builds a Repeat of c spanning the half-open range [start, stop),
// the Go rendering of structures.py's Construct.__getitem__ slice sugar
// (c[start:stop]), since Go has no slicing-operator overload.
func Repeated(c Construct, start, stop int) *Repeat {
	return NewRepeat(c, start, stop, nil)
}

// RepeatedExactly builds a RepeatExactly of c, n times — the Go rendering
// of structures.py's Construct.__getitem__ integer sugar (c[n]).
func RepeatedExactly(c Construct, n int) *RepeatExactly {
	return NewRepeatExactly(c, n, nil)
}
