package construct

import (
	"bytes"
	"testing"
)

func TestStreamReadWrite(t *testing.T) {
	s := NewBuildStream()
	s.Write([]byte("hello"))
	if s.Tell() != 5 {
		t.Errorf("expected position 5, got %d", s.Tell())
	}
	s.Seek(0)
	got := s.Read(5)
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("unexpected read: %q", got)
	}
}

func TestStreamShortRead(t *testing.T) {
	s := NewStream([]byte("ab"))
	got := s.Read(5)
	if !bytes.Equal(got, []byte("ab")) {
		t.Errorf("expected short read of 2 bytes, got %q", got)
	}
}

func TestStreamReadToEnd(t *testing.T) {
	s := NewStream([]byte("abcdef"))
	s.Seek(2)
	got := s.Read(-1)
	if !bytes.Equal(got, []byte("cdef")) {
		t.Errorf("expected remainder, got %q", got)
	}
}

func TestStreamOverwrite(t *testing.T) {
	s := NewStream([]byte("abcdef"))
	s.Seek(1)
	s.Write([]byte("XY"))
	if !bytes.Equal(s.Bytes(), []byte("aXYdef")) {
		t.Errorf("unexpected buffer: %q", s.Bytes())
	}
}

func TestStreamSeekNegativeClampsToZero(t *testing.T) {
	s := NewStream([]byte("abc"))
	s.Seek(-5)
	if s.Tell() != 0 {
		t.Errorf("expected clamped position 0, got %d", s.Tell())
	}
}
