package construct

import "reflect"

// Const builds and parses a single constant value. A build obj of nil
// means "use the constant"; any other value must equal it exactly.
type Const struct {
	Subconstruct
	Value any
}

// NewConst wraps construct around a fixed value.
func NewConst(construct Construct, value any) *Const {
	return &Const{Subconstruct: NewSubconstruct(construct), Value: value}
}

// NewConstBytes is sugar for NewConst(Bytes(len(signature)), signature),
// the common case of a fixed ASCII/binary signature field.
func NewConstBytes(signature []byte) *Const {
	return NewConst(NewBytes(len(signature)), signature)
}

func (c *Const) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	if obj != nil && !reflect.DeepEqual(obj, c.Value) {
		return nil, newBuildError("provided value must be nil or %v, got %v", c.Value, obj)
	}
	return c.Inner.buildStream(c.Value, stream, ctx)
}

func (c *Const) parseStream(stream *Stream, ctx *Context) (any, error) {
	obj, err := c.Inner.parseStream(stream, ctx)
	if err != nil {
		return nil, err
	}
	if !reflect.DeepEqual(obj, c.Value) {
		return nil, newParseError("parsed value must be %v, got %v", c.Value, obj)
	}
	return obj, nil
}

// PredicateFunc decides, from context, which branch a conditional
// construct takes.
type PredicateFunc func(ctx *Context) (bool, error)

// If builds/parses Then when predicate is true, Else otherwise. Else
// defaults to Pass() when omitted via NewIf.
type If struct {
	Predicate PredicateFunc
	Then      Construct
	Else      Construct
}

// NewIf wraps then/els behind predicate; a nil els defaults to Pass().
func NewIf(predicate PredicateFunc, then Construct, els Construct) *If {
	if els == nil {
		els = NewPass()
	}
	return &If{Predicate: predicate, Then: then, Else: els}
}

func (i *If) branch(ctx *Context) (Construct, error) {
	ok, err := i.Predicate(ctx)
	if err != nil {
		return nil, newContextualError("%s", err.Error())
	}
	if ok {
		return i.Then, nil
	}
	return i.Else, nil
}

func (i *If) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	c, err := i.branch(ctx)
	if err != nil {
		return nil, err
	}
	return c.buildStream(obj, stream, ctx)
}

func (i *If) parseStream(stream *Stream, ctx *Context) (any, error) {
	c, err := i.branch(ctx)
	if err != nil {
		return nil, err
	}
	return c.parseStream(stream, ctx)
}

func (i *If) sizeOf(ctx *Context) (int, error) {
	c, err := i.branch(ctx)
	if err != nil {
		return 0, err
	}
	return c.sizeOf(ctx)
}

func (i *If) embedded() bool { return false }

// KeyFunc extracts the dispatch key from context for Switch.
type KeyFunc func(ctx *Context) (any, error)

// Switch dispatches to one of several constructs by a context-derived key,
// the Go rendering of a C-style switch over the wire representation.
type Switch struct {
	Key     KeyFunc
	Cases   map[any]Construct
	Default Construct
}

// NewSwitch wraps cases behind key; a nil def defaults to a Raise
// reporting "no default case specified", matching every public entry
// point's "no matching case" behavior.
func NewSwitch(key KeyFunc, cases map[any]Construct, def Construct) *Switch {
	if def == nil {
		def = NewRaise("no default case specified")
	}
	return &Switch{Key: key, Cases: cases, Default: def}
}

func (s *Switch) dispatch(ctx *Context) (Construct, error) {
	k, err := s.Key(ctx)
	if err != nil {
		return nil, newContextualError("%s", err.Error())
	}
	if c, ok := s.Cases[k]; ok {
		return c, nil
	}
	return s.Default, nil
}

func (s *Switch) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	c, err := s.dispatch(ctx)
	if err != nil {
		return nil, err
	}
	return c.buildStream(obj, stream, ctx)
}

func (s *Switch) parseStream(stream *Stream, ctx *Context) (any, error) {
	c, err := s.dispatch(ctx)
	if err != nil {
		return nil, err
	}
	return c.parseStream(stream, ctx)
}

func (s *Switch) sizeOf(ctx *Context) (int, error) {
	c, err := s.dispatch(ctx)
	if err != nil {
		return 0, err
	}
	return c.sizeOf(ctx)
}

func (s *Switch) embedded() bool { return false }

// Enum maps string names to on-wire values. Building accepts either a name
// or its corresponding value (recording the name into context either way);
// parsing looks up the decoded value's name. Values with no known name (or
// names with no known value on build) fall back to Default, which is a
// Raise when NewEnum is given no default.
type Enum struct {
	Subconstruct
	names      map[string]any
	valueToKey map[any]string
	Default    Construct
}

// NewEnum wraps construct with a name<->value mapping. It panics if two
// names map to the same value, since parsing such a map could never
// determine which name to report.
func NewEnum(construct Construct, cases map[string]any, def Construct) *Enum {
	valueToKey := make(map[any]string, len(cases))
	for name, value := range cases {
		if existing, ok := valueToKey[value]; ok {
			panic("construct: Enum cases must be injective, " + existing + " and " + name + " both map to the same value")
		}
		valueToKey[value] = name
	}
	if def == nil {
		def = NewRaise("no default case specified")
	}
	names := make(map[string]any, len(cases))
	for k, v := range cases {
		names[k] = v
	}
	return &Enum{Subconstruct: NewSubconstruct(construct), names: names, valueToKey: valueToKey, Default: def}
}

func (e *Enum) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	value, ok := e.names[fmtKey(obj)]
	if !ok {
		// obj might already be a wire value rather than a name.
		if name, ok := e.valueToKey[obj]; ok {
			value = obj
			obj = name
		} else {
			return e.Default.buildStream(obj, stream, ctx)
		}
	}
	fallback := stream.Tell()
	if _, err := e.Inner.buildStream(value, stream, ctx); err != nil {
		stream.Seek(fallback)
		if _, derr := e.Default.buildStream(value, stream, ctx); derr != nil {
			return nil, derr
		}
	}
	return obj, nil
}

func (e *Enum) parseStream(stream *Stream, ctx *Context) (any, error) {
	fallback := stream.Tell()
	value, err := e.Inner.parseStream(stream, ctx)
	if err != nil {
		stream.Seek(fallback)
		return e.Default.parseStream(stream, ctx)
	}
	name, ok := e.valueToKey[value]
	if !ok {
		stream.Seek(fallback)
		return e.Default.parseStream(stream, ctx)
	}
	return name, nil
}

// fmtKey normalizes obj into a map key lookup for e.names: only strings
// can be names, everything else simply misses so the value-lookup branch
// runs instead.
func fmtKey(obj any) string {
	if s, ok := obj.(string); ok {
		return s
	}
	return "\x00not-a-name\x00"
}
