package construct

import (
	"bytes"
	"errors"
	"testing"
)

func TestContextualResolvesPerCall(t *testing.T) {
	c := NewContextual(func(ctx *Context) (Construct, error) {
		v, err := ctx.MustGet("length")
		if err != nil {
			return nil, err
		}
		return NewInteger(v.(int), "big", false), nil
	})

	data, err := Build(c, 1, map[string]any{"length": 1})
	if err != nil || !bytes.Equal(data, []byte{1}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
	data, err = Build(c, 1, map[string]any{"length": 2})
	if err != nil || !bytes.Equal(data, []byte{0, 1}) {
		t.Fatalf("unexpected build: %v, %v", data, err)
	}
}

func TestContextualMissingKeyIsContextualError(t *testing.T) {
	c := NewContextual(func(ctx *Context) (Construct, error) {
		v, err := ctx.MustGet("length")
		if err != nil {
			return nil, err
		}
		return NewInteger(v.(int), "big", false), nil
	})
	_, err := Build(c, 1, nil)
	if err == nil {
		t.Fatal("expected an error for a missing context key")
	}
	var ce *ContextualError
	if !errors.As(err, &ce) {
		t.Errorf("expected a *ContextualError in the chain, got %T", err)
	}
}
