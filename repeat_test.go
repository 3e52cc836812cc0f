package construct

import (
	"bytes"
	"testing"
)

func TestRepeatBuildAndParse(t *testing.T) {
	r := NewRepeat(NewFlag(), 1, 4, nil)
	data, err := Build(r, []any{true, true}, nil)
	if err != nil || !bytes.Equal(data, []byte{0x01, 0x01}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	v, err := Parse(r, []byte{0x00, 0x01, 0x00}, nil)
	if err != nil {
		t.Fatal(err)
	}
	items := v.([]any)
	if len(items) != 3 || items[0] != false || items[1] != true || items[2] != false {
		t.Errorf("unexpected items: %v", items)
	}
}

func TestRepeatUntilPredicateIncludesTriggerElement(t *testing.T) {
	r := NewRepeat(NewFlag(), 1, 5, func(items []any) bool {
		return !items[len(items)-1].(bool)
	})
	data, err := Build(r, []any{true, true, false, true}, nil)
	if err != nil || !bytes.Equal(data, []byte{0x01, 0x01, 0x00}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	v, err := Parse(r, []byte{0x01, 0x00, 0x00}, nil)
	if err != nil {
		t.Fatal(err)
	}
	items := v.([]any)
	if len(items) != 2 || items[0] != true || items[1] != false {
		t.Errorf("unexpected items: %v", items)
	}
}

func TestRepeatBoundsAreMandatory(t *testing.T) {
	r := NewRepeat(NewFlag(), 3, 5, nil)
	if _, err := Build(r, []any{true}, nil); err == nil {
		t.Fatal("expected a build error for too few items")
	}
	if _, err := Parse(r, []byte{0x01, 0x01}, nil); err == nil {
		t.Fatal("expected a parse error for too few bytes")
	}
}

func TestRepeatExactlySizeOf(t *testing.T) {
	r := NewRepeatExactly(NewInteger(2, "big", false), 3, nil)
	n, err := SizeOf(r, nil)
	if err != nil || n != 6 {
		t.Fatalf("expected size 6, got %d, %v", n, err)
	}
}

func TestRepeatVariableSizeIsIndeterminate(t *testing.T) {
	r := NewRepeat(NewFlag(), 1, 5, nil)
	if _, err := SizeOf(r, nil); err == nil {
		t.Fatal("expected SizeOf to fail for a variable-length Repeat")
	}
}

func TestNewRepeatPanicsOnInvalidBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for stop < start")
		}
	}()
	NewRepeat(NewFlag(), 6, 2, nil)
}
