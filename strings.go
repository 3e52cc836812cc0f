package construct

import (
	"math"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// lookupEncoding maps the small set of named text encodings this package
// understands to a golang.org/x/text/encoding.Encoding, since the Go
// standard library only speaks UTF-8 natively. "", "utf-8" and "utf8" pass
// through unchanged (no Encoding needed).
func lookupEncoding(name string) (encoding.Encoding, bool) {
	switch strings.ToLower(name) {
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, true
	case "utf-16-le", "utf16-le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), true
	case "utf-16-be", "utf16-be", "utf-16", "utf16":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), true
	default:
		return nil, false
	}
}

// encodeString converts a Go string to bytes under the named encoding.
// An empty name means UTF-8 passthrough.
func encodeString(s, name string) ([]byte, error) {
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return []byte(s), nil
	}
	enc, ok := lookupEncoding(name)
	if !ok {
		return nil, newContextualError("unknown encoding %q", name)
	}
	return enc.NewEncoder().Bytes([]byte(s))
}

// decodeString converts bytes to a Go string under the named encoding.
func decodeString(b []byte, name string) (string, error) {
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return string(b), nil
	}
	enc, ok := lookupEncoding(name)
	if !ok {
		return "", newContextualError("unknown encoding %q", name)
	}
	decoded, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// StringEncoded adapts a byte-producing construct into a string, encoding
// before build and decoding after parse with the named encoding. An empty
// encoding disables conversion: building/parsing stays in terms of []byte.
func StringEncoded(inner Construct, enc string) *Adapted {
	if enc == "" {
		return NewAdapted(inner, nil, nil)
	}
	before := func(obj any) (any, error) {
		s, ok := obj.(string)
		if !ok {
			return nil, newBuildError("StringEncoded: expected string, got %T", obj)
		}
		return encodeString(s, enc)
	}
	after := func(obj any) (any, error) {
		b, ok := obj.([]byte)
		if !ok {
			return nil, newParseError("StringEncoded: expected []byte, got %T", obj)
		}
		return decodeString(b, enc)
	}
	return NewAdapted(inner, before, after)
}

// joinBytes concatenates a []any of []byte (as produced by Repeat over
// Bytes(1)) into one []byte.
func joinBytes(items []any) ([]byte, error) {
	out := make([]byte, 0, len(items))
	for _, it := range items {
		b, ok := it.([]byte)
		if !ok {
			return nil, newContextualError("expected []byte element, got %T", it)
		}
		out = append(out, b...)
	}
	return out, nil
}

// splitBytes turns a []byte into a []any of single-byte []byte, the
// build-side inverse of joinBytes, matching how Repeat(Bytes(1), ...)
// expects its input.
func splitBytes(b []byte) []any {
	out := make([]any, len(b))
	for i, c := range b {
		out[i] = []byte{c}
	}
	return out
}

// String builds/parses a string constrained to exactly length bytes, with
// null bytes (by default) padded or trimmed per direction.
func String(length int, enc string, padChar byte, direction PadDirection) Construct {
	variableBytes := NewAdapted(
		NewRepeat(NewBytes(1), 1, length+1, nil),
		func(obj any) (any, error) {
			s, ok := obj.([]byte)
			if !ok {
				return nil, newBuildError("String: expected []byte, got %T", obj)
			}
			return splitBytes(s), nil
		},
		func(obj any) (any, error) {
			items, _ := obj.([]any)
			return joinBytes(items)
		},
	)
	padded := NewPadded(variableBytes, length, padChar, direction)
	return StringEncoded(padded, enc)
}

// PascalString builds/parses a string prefixed by its byte length, encoded
// with lengthField.
func PascalString(lengthField Construct, enc string) Construct {
	return StringEncoded(NewPrefixed(NewBytes(-1), lengthField), enc)
}

// pascalSizeless wraps a construct so that sizeOf always fails: the size of
// a PascalString (and of CString and Line, which also use this wrapper)
// depends on the runtime value of its payload, never on its description
// alone.
type pascalSizeless struct{ Construct }

func (p pascalSizeless) sizeOf(ctx *Context) (int, error) {
	return 0, newSizeError("PascalString has no fixed size")
}

// NewPascalString is PascalString wrapped so SizeOf reports it as
// indeterminate, mirroring structures.py's explicit override.
func NewPascalString(lengthField Construct, enc string) Construct {
	return pascalSizeless{Construct: PascalString(lengthField, enc)}
}

func untilLastByteIsZero(items []any) bool {
	if len(items) == 0 {
		return false
	}
	last, ok := items[len(items)-1].([]byte)
	return ok && len(last) == 1 && last[0] == 0
}

// CString builds/parses a string terminated by a single zero byte. Using a
// multi-byte encoding whose code points can contain an embedded zero byte
// (UTF-16, UTF-32) makes termination ambiguous; callers are responsible for
// choosing a safe encoding, matching the original's caveat.
func CString(enc string) Construct {
	construct := NewAdapted(
		NewRepeat(NewBytes(1), 0, math.MaxInt32, untilLastByteIsZero),
		func(obj any) (any, error) {
			s, ok := obj.([]byte)
			if !ok {
				return nil, newBuildError("CString: expected []byte, got %T", obj)
			}
			return splitBytes(append(append([]byte{}, s...), 0)), nil
		},
		func(obj any) (any, error) {
			items, _ := obj.([]any)
			b, err := joinBytes(items)
			if err != nil {
				return nil, err
			}
			return b[:len(b)-1], nil
		},
	)
	return pascalSizeless{Construct: StringEncoded(construct, enc)}
}

func untilCRLF(items []any) bool {
	if len(items) < 2 {
		return false
	}
	a, aok := items[len(items)-2].([]byte)
	b, bok := items[len(items)-1].([]byte)
	return aok && bok && len(a) == 1 && len(b) == 1 && a[0] == '\r' && b[0] == '\n'
}

// Line builds/parses a string terminated by CRLF, the framing used by
// text-based line protocols such as RESP. raw disables the default
// latin-1 encoding, returning []byte instead of string.
func Line(raw bool) Construct {
	construct := NewAdapted(
		NewRepeat(NewBytes(1), 0, math.MaxInt32, untilCRLF),
		func(obj any) (any, error) {
			s, ok := obj.([]byte)
			if !ok {
				return nil, newBuildError("Line: expected []byte, got %T", obj)
			}
			return splitBytes(append(append([]byte{}, s...), '\r', '\n')), nil
		},
		func(obj any) (any, error) {
			items, _ := obj.([]any)
			b, err := joinBytes(items)
			if err != nil {
				return nil, err
			}
			return b[:len(b)-2], nil
		},
	)
	if !raw {
		return pascalSizeless{Construct: StringEncoded(construct, "latin-1")}
	}
	return pascalSizeless{Construct: construct}
}
