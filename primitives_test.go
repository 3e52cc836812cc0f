package construct

import (
	"bytes"
	"testing"
)

func TestFlag(t *testing.T) {
	f := NewFlag()
	data, err := Build(f, true, nil)
	if err != nil || !bytes.Equal(data, []byte{0x01}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	v, err := Parse(f, []byte{0x00}, nil)
	if err != nil || v != false {
		t.Fatalf("unexpected parse: %v, %v", v, err)
	}
}

func TestBytesFixedLength(t *testing.T) {
	b := NewBytes(3)
	data, err := Build(b, []byte("foo"), nil)
	if err != nil || !bytes.Equal(data, []byte("foo")) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	if _, err := Build(b, []byte("toolong"), nil); err == nil {
		t.Fatal("expected a build error for wrong length")
	}
}

func TestBytesRemainder(t *testing.T) {
	b := NewBytes(-1)
	v, err := Parse(b, []byte("rest"), nil)
	if err != nil || !bytes.Equal(v.([]byte), []byte("rest")) {
		t.Fatalf("unexpected parse: %v, %v", v, err)
	}
	if _, err := SizeOf(b, nil); err == nil {
		t.Fatal("expected SizeOf to fail for a variable-length Bytes")
	}
}

func TestIntegerBigEndianUnsigned(t *testing.T) {
	i := NewInteger(2, "big", false)
	data, err := Build(i, 300, nil)
	if err != nil || !bytes.Equal(data, []byte{0x01, 0x2c}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	v, err := Parse(i, data, nil)
	if err != nil || v != uint64(300) {
		t.Fatalf("unexpected parse: %v, %v", v, err)
	}
}

func TestIntegerSignedRoundTrip(t *testing.T) {
	i := NewInteger(1, "big", true)
	data, err := Build(i, -2, nil)
	if err != nil {
		t.Fatal(err)
	}
	v, err := Parse(i, data, nil)
	if err != nil || v != int64(-2) {
		t.Fatalf("unexpected parse: %v, %v", v, err)
	}
}

func TestIntegerOverflowRejected(t *testing.T) {
	i := NewInteger(1, "big", false)
	if _, err := Build(i, 256, nil); err == nil {
		t.Fatal("expected an overflow error")
	}
}

func TestFloatRoundTrip(t *testing.T) {
	f := NewFloat(4, "big")
	data, err := Build(f, 1.5, nil)
	if err != nil {
		t.Fatal(err)
	}
	v, err := Parse(f, data, nil)
	if err != nil || v != 1.5 {
		t.Fatalf("unexpected parse: %v, %v", v, err)
	}
}

func TestComputedBuildOnlyWhenObjNil(t *testing.T) {
	c := NewComputedFunc(func(ctx *Context) (any, error) { return "computed", nil })
	data, err := Build(c, nil, nil)
	if err != nil || len(data) != 0 {
		t.Fatalf("expected zero bytes, got %v, %v", data, err)
	}
	if _, err := Build(c, "already set", nil); err != nil {
		t.Fatalf("expected no error when obj is non-nil, got %v", err)
	}
}

func TestRaise(t *testing.T) {
	r := NewRaise("always fails")
	if _, err := Build(r, nil, nil); err == nil {
		t.Fatal("expected a build error")
	}
	if _, err := Parse(r, nil, nil); err == nil {
		t.Fatal("expected a parse error")
	}
}
