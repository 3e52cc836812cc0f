package construct

import (
	"fmt"
	"strconv"
	"strings"
)

// bitField is a single named entry in a BitFields spec.
type bitField struct {
	name string
	bits int
}

// BitFields builds and parses named bit-packed fields, byte-aligned as a
// whole: "version:4, header_length:4" packs two nibbles big-endian,
// most-significant-bit-first, into ceil(sum(bits)/8) bytes. Values are
// always unsigned.
type BitFields struct {
	Spec       string
	fields     []bitField
	byteLength int
	isEmbedded bool
}

// NewBitFields parses a comma-separated "name:bits, ..." spec. embedded
// marks the construct so a wrapping Struct merges its fields directly into
// the enclosing frame instead of giving them one slot.
func NewBitFields(spec string, embedded bool) (*BitFields, error) {
	b := &BitFields{Spec: spec, isEmbedded: embedded}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		nameLen := strings.SplitN(part, ":", 2)
		if len(nameLen) != 2 {
			return nil, fmt.Errorf("construct: invalid BitFields entry %q", part)
		}
		name := strings.TrimSpace(nameLen[0])
		bits, err := strconv.Atoi(strings.TrimSpace(nameLen[1]))
		if err != nil {
			return nil, fmt.Errorf("construct: invalid bit length in %q: %w", part, err)
		}
		if bits < 0 {
			return nil, fmt.Errorf("construct: %q bit length must be >= 0, got %d", name, bits)
		}
		b.fields = append(b.fields, bitField{name: name, bits: bits})
	}
	total := 0
	for _, f := range b.fields {
		total += f.bits
	}
	b.byteLength = (total + 7) / 8
	return b, nil
}

// MustNewBitFields is like NewBitFields but panics on a malformed spec,
// for use in package-level var declarations analogous to class bodies.
func MustNewBitFields(spec string, embedded bool) *BitFields {
	b, err := NewBitFields(spec, embedded)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *BitFields) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	values, _ := obj.(map[string]any)
	totalBits := b.byteLength * 8
	bits := make([]byte, 0, totalBits)
	for _, f := range b.fields {
		v, ok := values[f.name]
		var n uint64
		if ok {
			u, err := toUnsigned(v)
			if err != nil {
				return nil, newBuildError("BitFields: field %q: %s", f.name, err.Error())
			}
			n = u
		}
		if f.bits < 64 && n >= uint64(1)<<uint(f.bits) {
			return nil, newBuildError("cannot pack %d into %d bit(s)", n, f.bits)
		}
		for shift := f.bits - 1; shift >= 0; shift-- {
			bits = append(bits, byte((n>>uint(shift))&1))
		}
	}
	for len(bits) < totalBits {
		bits = append(bits, 0)
	}
	out := make([]byte, b.byteLength)
	for byteIdx := 0; byteIdx < b.byteLength; byteIdx++ {
		var v byte
		for bitIdx := 0; bitIdx < 8; bitIdx++ {
			v = (v << 1) | bits[byteIdx*8+bitIdx]
		}
		out[byteIdx] = v
	}
	stream.Write(out)
	return nil, nil
}

func (b *BitFields) parseStream(stream *Stream, ctx *Context) (any, error) {
	data := stream.Read(b.byteLength)
	if len(data) != b.byteLength {
		return nil, newParseError("could not read enough bytes, expected %d, found %d", b.byteLength, len(data))
	}
	bits := make([]byte, 0, b.byteLength*8)
	for _, byt := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (byt>>uint(i))&1)
		}
	}
	out := make(map[string]any, len(b.fields))
	idx := 0
	for _, f := range b.fields {
		var n uint64
		for i := 0; i < f.bits; i++ {
			n = (n << 1) | uint64(bits[idx])
			idx++
		}
		out[f.name] = n
	}
	return out, nil
}

func (b *BitFields) sizeOf(ctx *Context) (int, error) { return b.byteLength, nil }
func (b *BitFields) embedded() bool                   { return b.isEmbedded }

// toUnsigned coerces any Go integer kind into a uint64 for bit-packing,
// rejecting negative values (BitFields values are always unsigned).
func toUnsigned(v any) (uint64, error) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, fmt.Errorf("value must be >= 0, got %d", n)
		}
		return uint64(n), nil
	case int8, int16, int32, int64:
		return toUnsignedSigned(n)
	case uint:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func toUnsignedSigned(v any) (uint64, error) {
	var n int64
	switch x := v.(type) {
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	}
	if n < 0 {
		return 0, fmt.Errorf("value must be >= 0, got %d", n)
	}
	return uint64(n), nil
}
