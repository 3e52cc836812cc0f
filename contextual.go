package construct

// ContextualFactory builds the Construct to delegate to, given the current
// context. It is re-evaluated on every build/parse/sizeOf call, since the
// shape of a contextual field (e.g. its length) may differ each time it is
// used — the Go rendering of structures.py's Contextual, collapsing its
// to_construct/args_func pair into a single closure since Go has no
// *args/**kwargs construct instantiation to mirror.
type ContextualFactory func(ctx *Context) (Construct, error)

// Contextual delegates to whatever construct its factory returns for the
// current context, the mechanism that lets one struct field's shape depend
// on another's already-recorded value.
type Contextual struct {
	Factory ContextualFactory
}

// NewContextual wraps factory as a Construct.
func NewContextual(factory ContextualFactory) *Contextual {
	return &Contextual{Factory: factory}
}

func (c *Contextual) resolve(ctx *Context) (Construct, error) {
	construct, err := c.Factory(ctx)
	if err != nil {
		return nil, newContextualError("%s", err.Error())
	}
	return construct, nil
}

func (c *Contextual) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	construct, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return construct.buildStream(obj, stream, ctx)
}

func (c *Contextual) parseStream(stream *Stream, ctx *Context) (any, error) {
	construct, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return construct.parseStream(stream, ctx)
}

func (c *Contextual) sizeOf(ctx *Context) (int, error) {
	construct, err := c.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return construct.sizeOf(ctx)
}

func (c *Contextual) embedded() bool { return false }
