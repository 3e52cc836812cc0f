package construct

import (
	"bytes"
	"crypto/sha256"
	"hash"
	"testing"
)

func TestAdapted(t *testing.T) {
	a := NewAdapted(NewInteger(1, "big", false),
		func(obj any) (any, error) { return obj.(int) * 2, nil },
		func(obj any) (any, error) { return obj.(uint64) / 2, nil },
	)
	data, err := Build(a, 10, nil)
	if err != nil || !bytes.Equal(data, []byte{20}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	v, err := Parse(a, data, nil)
	if err != nil || v != uint64(10) {
		t.Fatalf("unexpected parse: %v, %v", v, err)
	}
}

func TestPrefixed(t *testing.T) {
	p := NewPrefixed(NewBytes(-1), NewInteger(1, "big", false))
	data, err := Build(p, []byte("foo"), nil)
	if err != nil || !bytes.Equal(data, []byte{0x03, 'f', 'o', 'o'}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	v, err := Parse(p, data, nil)
	if err != nil || !bytes.Equal(v.([]byte), []byte("foo")) {
		t.Fatalf("unexpected parse: %v, %v", v, err)
	}
}

func TestPaddedRight(t *testing.T) {
	p := NewPadded(NewBytes(-1), 5, 0x00, PadRight)
	data, err := Build(p, []byte("ab"), nil)
	if err != nil || !bytes.Equal(data, []byte{'a', 'b', 0, 0, 0}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
}

func TestPaddedLeft(t *testing.T) {
	p := NewPadded(NewBytes(-1), 5, 0x00, PadLeft)
	data, err := Build(p, []byte("ab"), nil)
	if err != nil || !bytes.Equal(data, []byte{0, 0, 0, 'a', 'b'}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
}

func TestAlignedPadsToMultiple(t *testing.T) {
	a := NewAligned(NewBytes(-1), 4, 0x00)
	data, err := Build(a, []byte("ab"), nil)
	if err != nil || !bytes.Equal(data, []byte{'a', 'b', 0, 0}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
}

func TestOffsetRestoresPosition(t *testing.T) {
	stream := NewBuildStream()
	stream.Write([]byte{0, 0, 0, 0, 0, 0})
	o := NewOffset(NewBytes(1), 2)
	if _, err := o.buildStream([]byte("Z"), stream, NewContext(nil)); err != nil {
		t.Fatal(err)
	}
	if stream.Tell() != 6 {
		t.Errorf("expected position restored to 6, got %d", stream.Tell())
	}
	if !bytes.Equal(stream.Bytes(), []byte{0, 0, 'Z', 0, 0, 0}) {
		t.Errorf("unexpected buffer: %v", stream.Bytes())
	}
}

func newSHA256() hash.Hash { return sha256.New() }

func TestChecksumBuildsDigestWhenNil(t *testing.T) {
	c := NewChecksum(NewBytes(32), newSHA256, func(ctx *Context) ([]byte, error) {
		v, _ := ctx.Get("data")
		return v.([]byte), nil
	})
	ctx := NewContext(map[string]any{"data": []byte("foo")})
	digest, err := c.buildStream(nil, NewBuildStream(), ctx)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256([]byte("foo"))
	if !bytes.Equal(digest.([]byte), sum[:]) {
		t.Errorf("unexpected digest: %x", digest)
	}
}

func TestChecksumRejectsMismatch(t *testing.T) {
	c := NewChecksum(NewBytes(32), newSHA256, func(ctx *Context) ([]byte, error) {
		v, _ := ctx.Get("data")
		return v.([]byte), nil
	})
	ctx := NewContext(map[string]any{"data": []byte("foo")})
	wrong := bytes.Repeat([]byte{0xff}, 32)
	if _, err := c.buildStream(wrong, NewBuildStream(), ctx); err == nil {
		t.Fatal("expected an error for a mismatched checksum")
	}
}
