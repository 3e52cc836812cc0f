package construct

import (
	"bytes"
	"hash"
)

// BeforeBuildFunc transforms a value before it is handed to the wrapped
// construct for building.
type BeforeBuildFunc func(obj any) (any, error)

// AfterParseFunc transforms a value returned by the wrapped construct's
// parse.
type AfterParseFunc func(obj any) (any, error)

// Adapted applies a functional transform to values only; it never changes
// the bytes semantics of the wrapped construct.
type Adapted struct {
	Subconstruct
	BeforeBuild BeforeBuildFunc
	AfterParse  AfterParseFunc
}

// NewAdapted wraps inner with optional before-build/after-parse value
// transforms; either may be nil to skip that side.
func NewAdapted(inner Construct, beforeBuild BeforeBuildFunc, afterParse AfterParseFunc) *Adapted {
	return &Adapted{Subconstruct: NewSubconstruct(inner), BeforeBuild: beforeBuild, AfterParse: afterParse}
}

func (a *Adapted) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	if a.BeforeBuild != nil {
		v, err := a.BeforeBuild(obj)
		if err != nil {
			return nil, wrapBuildError(err)
		}
		obj = v
	}
	return a.Inner.buildStream(obj, stream, ctx)
}

func (a *Adapted) parseStream(stream *Stream, ctx *Context) (any, error) {
	obj, err := a.Inner.parseStream(stream, ctx)
	if err != nil {
		return nil, err
	}
	if a.AfterParse != nil {
		v, err := a.AfterParse(obj)
		if err != nil {
			return nil, wrapParseError(err)
		}
		obj = v
	}
	return obj, nil
}

// Prefixed builds a length-prefixed payload: the length field's encoding
// of len(payload), followed by the payload. On parse, reads the length,
// reads exactly that many bytes, and parses inner against only that slice
// so inner constructs that read "to end of stream" (Bytes with length -1)
// are correctly bounded.
type Prefixed struct {
	Subconstruct
	LengthField Construct
}

// NewPrefixed wraps inner, prefixed by lengthField's encoding of its byte
// length.
func NewPrefixed(inner Construct, lengthField Construct) *Prefixed {
	return &Prefixed{Subconstruct: NewSubconstruct(inner), LengthField: lengthField}
}

func (p *Prefixed) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	data, ok := obj.([]byte)
	if !ok {
		return nil, newBuildError("Prefixed: expected []byte, got %T", obj)
	}
	if _, err := p.LengthField.buildStream(len(data), stream, ctx); err != nil {
		return nil, err
	}
	return p.Inner.buildStream(data, stream, ctx)
}

func (p *Prefixed) parseStream(stream *Stream, ctx *Context) (any, error) {
	lengthAny, err := p.LengthField.parseStream(stream, ctx)
	if err != nil {
		return nil, err
	}
	length, err := asInt(lengthAny)
	if err != nil {
		return nil, newParseError("Prefixed: %s", err.Error())
	}
	data := stream.Read(length)
	if len(data) != length {
		return nil, newParseError("could not read enough bytes, expected %d, found %d", length, len(data))
	}
	sub := NewStream(data)
	return p.Inner.parseStream(sub, ctx)
}

func (p *Prefixed) sizeOf(ctx *Context) (int, error) {
	lengthSize, err := p.LengthField.sizeOf(ctx)
	if err != nil {
		return 0, err
	}
	innerSize, err := p.Inner.sizeOf(ctx)
	if err != nil {
		return 0, err
	}
	return lengthSize + innerSize, nil
}

// PadDirection selects which side(s) of a payload Padded/Aligned pad.
type PadDirection int

const (
	PadRight PadDirection = iota
	PadLeft
	PadCenter
)

// Padded renders inner into a scratch buffer, then pads (or, on parse,
// strips) to exactly Length bytes in the chosen direction.
type Padded struct {
	Subconstruct
	Length    int
	PadChar   byte
	Direction PadDirection
}

// NewPadded wraps inner, padded to exactly length bytes with padChar in
// the given direction.
func NewPadded(inner Construct, length int, padChar byte, direction PadDirection) *Padded {
	if length < 0 {
		panic("construct: Padded length must be >= 0")
	}
	return &Padded{Subconstruct: NewSubconstruct(inner), Length: length, PadChar: padChar, Direction: direction}
}

func (p *Padded) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	scratch := NewBuildStream()
	ctxValue, err := p.Inner.buildStream(obj, scratch, ctx)
	if err != nil {
		return nil, err
	}
	data := scratch.Bytes()
	padded := padTo(data, p.Length, p.PadChar, p.Direction)
	stream.Write(padded)
	return ctxValue, nil
}

func (p *Padded) parseStream(stream *Stream, ctx *Context) (any, error) {
	data := stream.Read(p.Length)
	if len(data) != p.Length {
		return nil, newParseError("could not read enough bytes, expected %d, found %d", p.Length, len(data))
	}
	stripped := stripPad(data, p.PadChar, p.Direction)
	sub := NewStream(stripped)
	return p.Inner.parseStream(sub, ctx)
}

func (p *Padded) sizeOf(ctx *Context) (int, error) { return p.Length, nil }

func padTo(data []byte, length int, padChar byte, dir PadDirection) []byte {
	if len(data) >= length {
		out := make([]byte, length)
		copy(out, data[:length])
		return out
	}
	padLen := length - len(data)
	out := make([]byte, length)
	switch dir {
	case PadLeft:
		for i := 0; i < padLen; i++ {
			out[i] = padChar
		}
		copy(out[padLen:], data)
	case PadCenter:
		left := padLen / 2
		right := padLen - left
		for i := 0; i < left; i++ {
			out[i] = padChar
		}
		copy(out[left:left+len(data)], data)
		for i := 0; i < right; i++ {
			out[left+len(data)+i] = padChar
		}
	default: // PadRight
		copy(out, data)
		for i := len(data); i < length; i++ {
			out[i] = padChar
		}
	}
	return out
}

func stripPad(data []byte, padChar byte, dir PadDirection) []byte {
	switch dir {
	case PadLeft:
		i := 0
		for i < len(data) && data[i] == padChar {
			i++
		}
		return data[i:]
	case PadCenter:
		start := 0
		for start < len(data) && data[start] == padChar {
			start++
		}
		end := len(data)
		for end > start && data[end-1] == padChar {
			end--
		}
		return data[start:end]
	default: // PadRight
		end := len(data)
		for end > 0 && data[end-1] == padChar {
			end--
		}
		return data[:end]
	}
}

// Padding is sugar for Padded(Pass(), length, padchar, direction): raw
// filler bytes, ignored on parse.
func Padding(length int, padChar byte, direction PadDirection) *Padded {
	return NewPadded(NewPass(), length, padChar, direction)
}

// Aligned pads to the next multiple of Length past inner's actual size.
// On parse, after inner consumes, it reads (-consumed) mod Length padding
// bytes and verifies they equal PadChar repeated, restoring nothing (the
// stream has already moved past the padding on both success and failure).
type Aligned struct {
	Subconstruct
	Length  int
	PadChar byte
}

// NewAligned wraps inner, aligned to the next multiple of length bytes.
func NewAligned(inner Construct, length int, padChar byte) *Aligned {
	return &Aligned{Subconstruct: NewSubconstruct(inner), Length: length, PadChar: padChar}
}

func (a *Aligned) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	before := stream.Tell()
	ctxValue, err := a.Inner.buildStream(obj, stream, ctx)
	if err != nil {
		return nil, err
	}
	after := stream.Tell()
	padLen := negMod(after-before, a.Length)
	if padLen > 0 {
		stream.Write(bytes.Repeat([]byte{a.PadChar}, padLen))
	}
	return ctxValue, nil
}

func (a *Aligned) parseStream(stream *Stream, ctx *Context) (any, error) {
	before := stream.Tell()
	obj, err := a.Inner.parseStream(stream, ctx)
	if err != nil {
		return nil, err
	}
	after := stream.Tell()
	padLen := negMod(after-before, a.Length)
	if padLen > 0 {
		padding := stream.Read(padLen)
		want := bytes.Repeat([]byte{a.PadChar}, padLen)
		if !bytes.Equal(padding, want) {
			return nil, newParseError("must read padding of %x, got %x", want, padding)
		}
	}
	return obj, nil
}

func (a *Aligned) sizeOf(ctx *Context) (int, error) {
	size, err := a.Inner.sizeOf(ctx)
	if err != nil {
		return 0, err
	}
	return size + negMod(size, a.Length), nil
}

func negMod(n, m int) int {
	if m == 0 {
		return 0
	}
	r := (-n) % m
	if r < 0 {
		r += m
	}
	return r
}

// Offset saves the stream position, seeks to absoluteOffset, runs inner,
// and restores the saved position on both success and failure. Its size
// equals inner's size, because the typical use defines a region whose
// location is declared elsewhere in the header, not traversed in place.
type Offset struct {
	Subconstruct
	AbsoluteOffset int
}

// NewOffset wraps inner to build/parse at an absolute stream offset.
func NewOffset(inner Construct, absoluteOffset int) *Offset {
	if absoluteOffset < 0 {
		panic("construct: Offset must be >= 0")
	}
	return &Offset{Subconstruct: NewSubconstruct(inner), AbsoluteOffset: absoluteOffset}
}

func (o *Offset) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	fallback := stream.Tell()
	stream.Seek(o.AbsoluteOffset)
	ctxValue, err := o.Inner.buildStream(obj, stream, ctx)
	stream.Seek(fallback)
	if err != nil {
		return nil, err
	}
	return ctxValue, nil
}

func (o *Offset) parseStream(stream *Stream, ctx *Context) (any, error) {
	fallback := stream.Tell()
	stream.Seek(o.AbsoluteOffset)
	obj, err := o.Inner.parseStream(stream, ctx)
	stream.Seek(fallback)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (o *Offset) sizeOf(ctx *Context) (int, error) { return o.Inner.sizeOf(ctx) }

// DataFunc supplies the bytes a Checksum should hash, computed from the
// current context (e.g. a sibling field's already-built/parsed payload).
type DataFunc func(ctx *Context) ([]byte, error)

// Checksum builds and parses a digest of externally supplied data using
// any hash.Hash-producing function (crypto/sha256.New, hash/crc32.NewIEEE,
// github.com/sigurn/crc16's Hash constructor, ...). On build, a nil input
// computes and writes the digest; a non-nil input must match the computed
// digest or building fails. On parse, the digest is always recomputed and
// compared; a mismatch fails.
type Checksum struct {
	Subconstruct
	NewHash  func() hash.Hash
	DataFunc DataFunc
}

// NewChecksum wraps inner (expected to be a fixed-width byte run, e.g.
// Bytes(32) for SHA-256) with a checksum over dataFunc's bytes.
func NewChecksum(inner Construct, newHash func() hash.Hash, dataFunc DataFunc) *Checksum {
	return &Checksum{Subconstruct: NewSubconstruct(inner), NewHash: newHash, DataFunc: dataFunc}
}

func (c *Checksum) digest(ctx *Context) ([]byte, error) {
	data, err := c.DataFunc(ctx)
	if err != nil {
		return nil, newContextualError("%s", err.Error())
	}
	h := c.NewHash()
	h.Write(data)
	return h.Sum(nil), nil
}

func (c *Checksum) buildStream(obj any, stream *Stream, ctx *Context) (any, error) {
	digest, err := c.digest(ctx)
	if err != nil {
		return nil, err
	}
	var toWrite []byte
	if obj == nil {
		toWrite = digest
	} else {
		given, ok := obj.([]byte)
		if !ok {
			return nil, newBuildError("Checksum: expected []byte or nil, got %T", obj)
		}
		if !bytes.Equal(given, digest) {
			return nil, newBuildError("wrong checksum, provided %x but expected %x", given, digest)
		}
		toWrite = given
	}
	if _, err := c.Inner.buildStream(toWrite, stream, ctx); err != nil {
		return nil, err
	}
	return toWrite, nil
}

func (c *Checksum) parseStream(stream *Stream, ctx *Context) (any, error) {
	parsedAny, err := c.Inner.parseStream(stream, ctx)
	if err != nil {
		return nil, err
	}
	parsed, ok := parsedAny.([]byte)
	if !ok {
		return nil, newParseError("Checksum: inner construct did not produce []byte")
	}
	expected, err := c.digest(ctx)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(parsed, expected) {
		return nil, newParseError("wrong checksum, parsed %x but expected %x", parsed, expected)
	}
	return parsed, nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	default:
		return 0, newParseError("expected an integer length, got %T", v)
	}
}
