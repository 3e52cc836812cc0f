package construct

import "fmt"

// UntilFunc is called with all items built/parsed so far (most recent
// last); returning true stops repeating, and the triggering item stays in
// the result.
type UntilFunc func(items []any) bool

// Repeat repeats a construct for a half-open range of times, [start, stop),
// the Go rendering of structures.py's Repeat (built-in range semantics,
// step always 1, no negative bounds).
type Repeat struct {
	Subconstruct
	Start, Stop int
	Until       UntilFunc
}

// NewRepeat wraps construct to build/parse between start (inclusive) and
// stop (exclusive) times, stopping early if until returns true. It panics
// on invalid bounds, mirroring structures.py's ValueError at construction.
// stop == start is accepted: such a Repeat always fails to build, and it
// parses successfully only when start is 0, yielding no items.
func NewRepeat(construct Construct, start, stop int, until UntilFunc) *Repeat {
	if start < 0 {
		panic(fmt.Sprintf("construct: start must be >= 0, got %d", start))
	}
	if stop < 0 {
		panic(fmt.Sprintf("construct: stop must be >= 0, got %d", stop))
	}
	if stop < start {
		panic("construct: stop must be >= start")
	}
	return &Repeat{Subconstruct: NewSubconstruct(construct), Start: start, Stop: stop, Until: until}
}

func (r *Repeat) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	items, ok := obj.([]any)
	if !ok {
		return nil, newBuildError("Repeat: expected []any, got %T", obj)
	}
	if !(r.Start <= len(items) && len(items) < r.Stop) {
		return nil, newBuildError("length of the object to build must be in range [%d, %d), got %d", r.Start, r.Stop, len(items))
	}
	built := make([]any, 0, len(items))
	for _, item := range items {
		if _, err := r.Inner.buildStream(item, stream, ctx); err != nil {
			return nil, err
		}
		built = append(built, item)
		if r.Until != nil && r.Until(built) {
			break
		}
	}
	return nil, nil
}

func (r *Repeat) parseStream(stream *Stream, ctx *Context) (any, error) {
	obj := make([]any, 0, r.Start)
	stop := r.Stop - 1
	for len(obj) < stop {
		item, err := r.Inner.parseStream(stream, ctx)
		if err != nil {
			if len(obj) < r.Start {
				return nil, newParseError("required to parse at least %d, parsed %d instead; error was: %s", r.Start, len(obj), err.Error())
			}
			return obj, nil
		}
		obj = append(obj, item)
		if r.Until != nil && r.Until(obj) {
			break
		}
	}
	if len(obj) < r.Start {
		return nil, newParseError("required to parse at least %d, parsed %d instead; exited due to 'until' predicate", r.Start, len(obj))
	}
	return obj, nil
}

func (r *Repeat) sizeOf(ctx *Context) (int, error) {
	if r.Start != r.Stop-1 || r.Until != nil {
		return 0, newSizeError("cannot determine size of variable sized Repeat")
	}
	innerSize, err := r.Inner.sizeOf(ctx)
	if err != nil {
		return 0, err
	}
	return r.Start * innerSize, nil
}

// RepeatExactly repeats a construct exactly N times — sugar for
// Repeat(construct, n, n+1, until).
type RepeatExactly struct {
	*Repeat
	N int
}

// NewRepeatExactly wraps construct to build/parse exactly n times.
func NewRepeatExactly(construct Construct, n int, until UntilFunc) *RepeatExactly {
	return &RepeatExactly{Repeat: NewRepeat(construct, n, n+1, until), N: n}
}
