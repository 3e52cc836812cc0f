package construct

// Field is one named, ordered entry of a Struct. Fields build and parse in
// declaration order, and later fields' Contextual factories can see every
// earlier field's recorded context value.
type Field struct {
	Name      string
	Construct Construct
}

// F is a short constructor for Field, for compact Struct literals.
func F(name string, c Construct) Field { return Field{Name: name, Construct: c} }

// Struct is an ordered sequence of named fields, the Go rendering of
// structures.py's Struct/StructMeta pair (which exists only to capture
// declaration order from a Python class body; Go's field slice already
// has stable order, so no metaclass machinery is needed). A Struct obj is
// a map[string]any; an embedded Struct's fields merge directly into the
// enclosing frame and object instead of nesting under the field's name.
type Struct struct {
	Fields     []Field
	isEmbedded bool
}

// NewStruct builds an ordered struct description out of fields, in the
// order given.
func NewStruct(embedded bool, fields ...Field) *Struct {
	return &Struct{Fields: fields, isEmbedded: embedded}
}

func (s *Struct) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	values, ok := obj.(map[string]any)
	if !ok {
		return nil, newBuildError("Struct: expected map[string]any, got %T", obj)
	}
	if !s.isEmbedded {
		ctx.Push(values)
		defer ctx.Pop()
	}
	for _, f := range s.Fields {
		var subobj any
		if f.Construct.embedded() {
			subobj = values
		} else {
			subobj = values[f.Name]
		}
		ctxValue, err := f.Construct.buildStream(subobj, stream, ctx)
		if err != nil {
			return nil, err
		}
		if ctxValue != nil {
			ctx.Set(f.Name, ctxValue)
		}
	}
	return nil, nil
}

func (s *Struct) parseStream(stream *Stream, ctx *Context) (any, error) {
	if !s.isEmbedded {
		ctx.Push(nil)
		defer ctx.Pop()
	}
	obj := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		subobj, err := f.Construct.parseStream(stream, ctx)
		if err != nil {
			return nil, err
		}
		if f.Construct.embedded() {
			m, ok := subobj.(map[string]any)
			if !ok {
				return nil, newParseError("Struct: embedded field %q did not produce map[string]any", f.Name)
			}
			for k, v := range m {
				obj[k] = v
			}
			ctx.Update(m)
		} else {
			obj[f.Name] = subobj
			ctx.Set(f.Name, subobj)
		}
	}
	return obj, nil
}

func (s *Struct) sizeOf(ctx *Context) (int, error) {
	total := 0
	for _, f := range s.Fields {
		n, err := f.Construct.sizeOf(ctx)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (s *Struct) embedded() bool { return s.isEmbedded }
