package construct

// Context is an ordered stack of name->value frames threaded through a
// single build or parse call, the Go analogue of structures.py's
// Context(ChainMap). Lookups search the newest (top) frame first. Entering
// a non-embedded Struct pushes a frame; leaving it pops. An embedded
// sub-construct writes directly into the enclosing frame instead.
type Context struct {
	frames []map[string]any
}

// NewContext returns a fresh context with a single root frame, optionally
// seeded with initial values.
func NewContext(initial map[string]any) *Context {
	frame := make(map[string]any, len(initial))
	for k, v := range initial {
		frame[k] = v
	}
	return &Context{frames: []map[string]any{frame}}
}

// Push opens a new frame, seeded with initial (used when entering a
// non-embedded struct while building: the frame starts out containing the
// object being built so later fields can see sibling target values before
// they're individually recorded).
func (c *Context) Push(initial map[string]any) {
	frame := make(map[string]any, len(initial))
	for k, v := range initial {
		frame[k] = v
	}
	c.frames = append(c.frames, frame)
}

// Pop discards the current (top) frame.
func (c *Context) Pop() {
	if len(c.frames) == 0 {
		return
	}
	c.frames = c.frames[:len(c.frames)-1]
}

// Get searches frames newest-first for key.
func (c *Context) Get(key string) (any, bool) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if v, ok := c.frames[i][key]; ok {
			return v, true
		}
	}
	return nil, false
}

// MustGet returns the value for key or a ContextualError if it is absent,
// the Go rendering of Python's ctx['key'] raising KeyError.
func (c *Context) MustGet(key string) (any, error) {
	v, ok := c.Get(key)
	if !ok {
		return nil, newContextualError("context has no key %q", key)
	}
	return v, nil
}

// Set writes into the current (top) frame.
func (c *Context) Set(key string, value any) {
	c.frames[len(c.frames)-1][key] = value
}

// Update merges a mapping into the current (top) frame, used when an
// embedded struct's parsed fields must become directly visible to the
// enclosing struct.
func (c *Context) Update(values map[string]any) {
	top := c.frames[len(c.frames)-1]
	for k, v := range values {
		top[k] = v
	}
}

// ensureContext returns ctx if non-nil, else a fresh empty context — the
// "if context is None: context = Context()" behavior every public entry
// point applies.
func ensureContext(ctx *Context) *Context {
	if ctx == nil {
		return NewContext(nil)
	}
	return ctx
}
