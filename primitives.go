package construct

import (
	"encoding/binary"
	"math"
)

// Pass is the identity construct: zero bytes, size 0, parses to nil.
// Useful as a default branch for conditional constructs.
type Pass struct{}

// NewPass returns a Pass construct.
func NewPass() Pass { return Pass{} }

func (Pass) buildStream(obj any, stream *Stream, ctx *Context) (any, error) { return nil, nil }
func (Pass) parseStream(stream *Stream, ctx *Context) (any, error)         { return nil, nil }
func (Pass) sizeOf(ctx *Context) (int, error)                              { return 0, nil }
func (Pass) embedded() bool                                                { return false }

// Flag builds and parses a single byte: true -> 0x01, false -> 0x00 on
// build; 0 -> false, anything else -> true on parse.
type Flag struct{}

// NewFlag returns a Flag construct.
func NewFlag() Flag { return Flag{} }

func (Flag) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	b, ok := obj.(bool)
	if !ok {
		return nil, newBuildError("Flag: expected bool, got %T", obj)
	}
	if b {
		stream.Write([]byte{0x01})
	} else {
		stream.Write([]byte{0x00})
	}
	return nil, nil
}

func (Flag) parseStream(stream *Stream, ctx *Context) (any, error) {
	data := stream.Read(1)
	if len(data) != 1 {
		return nil, newParseError("could not read enough bytes, expected 1, found %d", len(data))
	}
	return data[0] != 0x00, nil
}

func (Flag) sizeOf(ctx *Context) (int, error) { return 1, nil }
func (Flag) embedded() bool                   { return false }

// Bytes builds and parses a raw run of the given length. length == -1
// means "remainder of stream" on parse and "whatever was given" on build;
// SizeOf fails in that case.
type Bytes struct {
	Length int
}

// NewBytes returns a Bytes construct of the given length, or -1 for
// "consume/produce the whole stream".
func NewBytes(length int) *Bytes {
	if length < -1 {
		panic("construct: Bytes length must be >= -1")
	}
	return &Bytes{Length: length}
}

func (b *Bytes) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	var data []byte
	switch v := obj.(type) {
	case []byte:
		data = v
	case byte:
		if b.Length == 1 {
			data = []byte{v}
		} else {
			return nil, newBuildError("Bytes: expected []byte, got byte with length %d", b.Length)
		}
	case int:
		if b.Length == 1 {
			data = []byte{byte(v)}
		} else {
			return nil, newBuildError("Bytes: expected []byte, got int with length %d", b.Length)
		}
	case nil:
		data = nil
	default:
		return nil, newBuildError("Bytes: expected []byte, got %T", obj)
	}
	if b.Length != -1 && len(data) != b.Length {
		return nil, newBuildError("must build %d bytes, got %d", b.Length, len(data))
	}
	stream.Write(data)
	return nil, nil
}

func (b *Bytes) parseStream(stream *Stream, ctx *Context) (any, error) {
	data := stream.Read(b.Length)
	if b.Length != -1 && len(data) != b.Length {
		return nil, newParseError("could not read enough bytes, expected %d, found %d", b.Length, len(data))
	}
	return data, nil
}

func (b *Bytes) sizeOf(ctx *Context) (int, error) {
	if b.Length == -1 {
		return 0, newSizeError("Bytes() has no fixed size")
	}
	return b.Length, nil
}

func (b *Bytes) embedded() bool { return false }

// Integer builds bytes from, and parses bytes into, fixed-width integers.
// Width must be 1, 2, 4, or 8 bytes.
type Integer struct {
	Width     int
	BigEndian bool
	Signed    bool
}

// NewInteger returns an Integer construct. byteorder must be "big" or
// "little"; width must be 1, 2, 4, or 8.
func NewInteger(width int, byteorder string, signed bool) *Integer {
	switch width {
	case 1, 2, 4, 8:
	default:
		panic("construct: Integer width must be 1, 2, 4, or 8")
	}
	var big bool
	switch byteorder {
	case "big":
		big = true
	case "little":
		big = false
	default:
		panic("construct: Integer byteorder must be 'big' or 'little'")
	}
	return &Integer{Width: width, BigEndian: big, Signed: signed}
}

func (i *Integer) order() binary.ByteOrder {
	if i.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// toUint64 converts obj (any Go integer kind, signed or unsigned) to its
// raw bit pattern for packing, rejecting values that don't fit Width/Signed.
func (i *Integer) toUint64(obj any) (uint64, error) {
	var signedVal int64
	var unsignedVal uint64
	var hasSigned, hasUnsigned bool
	switch v := obj.(type) {
	case int:
		signedVal, hasSigned = int64(v), true
	case int8:
		signedVal, hasSigned = int64(v), true
	case int16:
		signedVal, hasSigned = int64(v), true
	case int32:
		signedVal, hasSigned = int64(v), true
	case int64:
		signedVal, hasSigned = v, true
	case uint:
		unsignedVal, hasUnsigned = uint64(v), true
	case uint8:
		unsignedVal, hasUnsigned = uint64(v), true
	case uint16:
		unsignedVal, hasUnsigned = uint64(v), true
	case uint32:
		unsignedVal, hasUnsigned = uint64(v), true
	case uint64:
		unsignedVal, hasUnsigned = v, true
	default:
		return 0, newBuildError("Integer: expected an integer value, got %T", obj)
	}

	bits := uint(i.Width) * 8
	if i.Signed {
		var val int64
		if hasSigned {
			val = signedVal
		} else {
			val = int64(unsignedVal)
		}
		minV := -(int64(1) << (bits - 1))
		maxV := (int64(1) << (bits - 1)) - 1
		if val < minV || val > maxV {
			return 0, newBuildError("cannot pack %d into a %d-byte signed integer", val, i.Width)
		}
		mask := uint64(1)<<bits - 1
		return uint64(val) & mask, nil
	}
	var val uint64
	if hasUnsigned {
		val = unsignedVal
	} else {
		if signedVal < 0 {
			return 0, newBuildError("cannot pack negative value %d into an unsigned integer", signedVal)
		}
		val = uint64(signedVal)
	}
	if bits < 64 && val >= uint64(1)<<bits {
		return 0, newBuildError("cannot pack %d into a %d-byte unsigned integer", val, i.Width)
	}
	return val, nil
}

func (i *Integer) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	raw, err := i.toUint64(obj)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, i.Width)
	switch i.Width {
	case 1:
		buf[0] = byte(raw)
	case 2:
		i.order().PutUint16(buf, uint16(raw))
	case 4:
		i.order().PutUint32(buf, uint32(raw))
	case 8:
		i.order().PutUint64(buf, raw)
	}
	stream.Write(buf)
	return nil, nil
}

func (i *Integer) parseStream(stream *Stream, ctx *Context) (any, error) {
	data := stream.Read(i.Width)
	if len(data) != i.Width {
		return nil, newParseError("could not read enough bytes, expected %d, found %d", i.Width, len(data))
	}
	var raw uint64
	switch i.Width {
	case 1:
		raw = uint64(data[0])
	case 2:
		raw = uint64(i.order().Uint16(data))
	case 4:
		raw = uint64(i.order().Uint32(data))
	case 8:
		raw = i.order().Uint64(data)
	}
	if !i.Signed {
		return raw, nil
	}
	bits := uint(i.Width) * 8
	signBit := uint64(1) << (bits - 1)
	if raw&signBit != 0 && bits < 64 {
		raw |= ^uint64(0) << bits
	}
	return int64(raw), nil
}

func (i *Integer) sizeOf(ctx *Context) (int, error) { return i.Width, nil }
func (i *Integer) embedded() bool                   { return false }

// Float builds bytes from, and parses bytes into, IEEE 754 single- or
// double-precision floats. Width must be 4 or 8 bytes.
type Float struct {
	Width     int
	BigEndian bool
}

// NewFloat returns a Float construct. width must be 4 or 8.
func NewFloat(width int, byteorder string) *Float {
	switch width {
	case 4, 8:
	default:
		panic("construct: Float width must be 4 or 8")
	}
	var big bool
	switch byteorder {
	case "big":
		big = true
	case "little":
		big = false
	default:
		panic("construct: Float byteorder must be 'big' or 'little'")
	}
	return &Float{Width: width, BigEndian: big}
}

func (f *Float) order() binary.ByteOrder {
	if f.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (f *Float) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	var v float64
	switch n := obj.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	default:
		return nil, newBuildError("Float: expected a float value, got %T", obj)
	}
	buf := make([]byte, f.Width)
	if f.Width == 4 {
		f.order().PutUint32(buf, math.Float32bits(float32(v)))
	} else {
		f.order().PutUint64(buf, math.Float64bits(v))
	}
	stream.Write(buf)
	return nil, nil
}

func (f *Float) parseStream(stream *Stream, ctx *Context) (any, error) {
	data := stream.Read(f.Width)
	if len(data) != f.Width {
		return nil, newParseError("could not read enough bytes, expected %d, found %d", f.Width, len(data))
	}
	if f.Width == 4 {
		return float64(math.Float32frombits(f.order().Uint32(data))), nil
	}
	return math.Float64frombits(f.order().Uint64(data)), nil
}

func (f *Float) sizeOf(ctx *Context) (int, error) { return f.Width, nil }
func (f *Float) embedded() bool                   { return false }

// Tell returns the current stream position during both build and parse;
// its size is always 0. Useful for measuring the span between two points
// in a struct via a Contextual field over the difference of two Tells.
type Tell struct{}

// NewTell returns a Tell construct.
func NewTell() Tell { return Tell{} }

func (Tell) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	return stream.Tell(), nil
}
func (Tell) parseStream(stream *Stream, ctx *Context) (any, error) {
	return stream.Tell(), nil
}
func (Tell) sizeOf(ctx *Context) (int, error) { return 0, nil }
func (Tell) embedded() bool                   { return false }

// ComputedFunc computes a value from the current context.
type ComputedFunc func(ctx *Context) (any, error)

// Computed consumes no bytes. On parse it returns its value (evaluated
// against the context, if it was made with NewComputedFunc); on build it
// emits nothing but yields the computed value as its context value when
// the input is nil.
type Computed struct {
	Value any          // the constant value, used when fn is nil
	fn    ComputedFunc // set by NewComputedFunc
}

// NewComputed returns a Computed construct with a constant value.
func NewComputed(value any) *Computed {
	return &Computed{Value: value}
}

// NewComputedFunc returns a Computed construct whose value is derived from
// the context at build/parse time.
func NewComputedFunc(fn ComputedFunc) *Computed {
	return &Computed{fn: fn}
}

func (c *Computed) eval(ctx *Context) (any, error) {
	if c.fn != nil {
		v, err := c.fn(ctx)
		if err != nil {
			return nil, newContextualError("%s", err.Error())
		}
		return v, nil
	}
	return c.Value, nil
}

func (c *Computed) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	if obj != nil {
		return nil, nil
	}
	return c.eval(ctx)
}

func (c *Computed) parseStream(stream *Stream, ctx *Context) (any, error) {
	return c.eval(ctx)
}

func (c *Computed) sizeOf(ctx *Context) (int, error) { return 0, nil }
func (c *Computed) embedded() bool                   { return false }

// Raise unconditionally fails with message, using the error kind
// appropriate to whichever operation was invoked. Useful as the default
// branch of conditional constructs (Enum, Switch).
type Raise struct {
	Message string
}

// NewRaise returns a Raise construct with the given message.
func NewRaise(message string) *Raise { return &Raise{Message: message} }

func (r *Raise) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	return nil, newBuildError("%s", r.Message)
}
func (r *Raise) parseStream(stream *Stream, ctx *Context) (any, error) {
	return nil, newParseError("%s", r.Message)
}
func (r *Raise) sizeOf(ctx *Context) (int, error) {
	return 0, newSizeError("%s", r.Message)
}
func (r *Raise) embedded() bool { return false }
