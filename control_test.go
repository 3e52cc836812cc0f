package construct

import (
	"bytes"
	"testing"
)

func TestConstBuildsFixedValue(t *testing.T) {
	c := NewConstBytes([]byte("SIGNATURE"))
	data, err := Build(c, nil, nil)
	if err != nil || !bytes.Equal(data, []byte("SIGNATURE")) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	if _, err := Build(c, []byte("WRONGWRONG"), nil); err == nil {
		t.Fatal("expected an error for a value that doesn't match the constant")
	}
}

func TestConstParseMismatch(t *testing.T) {
	c := NewConstBytes([]byte("ABCD"))
	if _, err := Parse(c, []byte("WXYZ"), nil); err == nil {
		t.Fatal("expected an error for a parsed value that doesn't match")
	}
}

func TestIfBranchesOnPredicate(t *testing.T) {
	i := NewIf(func(ctx *Context) (bool, error) {
		v, _ := ctx.Get("flag")
		return v.(bool), nil
	}, NewConstBytes([]byte("True")), NewConstBytes([]byte("False")))

	data, err := Build(i, nil, map[string]any{"flag": true})
	if err != nil || !bytes.Equal(data, []byte("True")) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	data, err = Build(i, nil, map[string]any{"flag": false})
	if err != nil || !bytes.Equal(data, []byte("False")) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
}

func TestSwitchDispatchesOnKey(t *testing.T) {
	s := NewSwitch(func(ctx *Context) (any, error) {
		v, _ := ctx.Get("foo")
		return v, nil
	}, map[any]Construct{
		1: NewInteger(1, "big", false),
		2: NewBytes(3),
	}, nil)

	data, err := Build(s, 5, map[string]any{"foo": 1})
	if err != nil || !bytes.Equal(data, []byte{5}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	if _, err := Build(s, []byte("bar"), map[string]any{"foo": 3}); err == nil {
		t.Fatal("expected an error for an unmatched case with no default")
	}
}

func TestEnumBuildsAndParsesByName(t *testing.T) {
	e := NewEnum(NewFlag(), map[string]any{"yes": true, "no": false}, nil)
	data, err := Build(e, "yes", nil)
	if err != nil || !bytes.Equal(data, []byte{0x01}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	v, err := Parse(e, []byte{0x00}, nil)
	if err != nil || v != "no" {
		t.Fatalf("unexpected parse: %v, %v", v, err)
	}
}

func TestEnumRejectsNonInjectiveCases(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for non-injective enum cases")
		}
	}()
	NewEnum(NewFlag(), map[string]any{"a": true, "b": true}, nil)
}
