// Package resp implements RESP (REdis Serialization Protocol), the
// line-oriented wire format Redis uses for client/server messages:
// https://redis.io/topics/protocol. It exists as a worked acceptance
// example for the construct package, covering five message types whose
// shapes depend on each other only through the Switch/Contextual/If
// combinators, not through any RESP-specific code of their own.
package resp

import (
	"fmt"
	"strconv"
	"strings"

	construct "github.com/njchilds90/binstruct"
)

// RedisError is the Go value a RESP error reply ("-message\r\n") parses
// into, and the value a reply must hold to build one.
type RedisError struct{ Message string }

// NewRedisError wraps message as a RedisError.
func NewRedisError(message string) *RedisError { return &RedisError{Message: message} }

func (e *RedisError) Error() string { return e.Message }

var (
	simpleString = construct.Line(false)

	errorReply = construct.NewAdapted(
		construct.Line(false),
		func(obj any) (any, error) {
			re, ok := obj.(*RedisError)
			if !ok {
				return nil, fmt.Errorf("expected *RedisError, got %T", obj)
			}
			return re.Message, nil
		},
		func(obj any) (any, error) {
			s, ok := obj.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", obj)
			}
			return NewRedisError(s), nil
		},
	)

	integer = construct.NewAdapted(
		construct.Line(false),
		func(obj any) (any, error) {
			n, ok := obj.(int)
			if !ok {
				return nil, fmt.Errorf("expected int, got %T", obj)
			}
			return strconv.Itoa(n), nil
		},
		func(obj any) (any, error) {
			s, ok := obj.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", obj)
			}
			return strconv.Atoi(s)
		},
	)

	lengthIsPresent = func(ctx *construct.Context) (bool, error) {
		v, err := ctx.MustGet("length")
		if err != nil {
			return false, err
		}
		n, ok := v.(int)
		if !ok {
			return false, fmt.Errorf("length: expected int, got %T", v)
		}
		return n != -1, nil
	}

	bulkStringStruct = construct.NewStruct(false,
		construct.F("length", integer),
		construct.F("data", construct.NewIf(
			lengthIsPresent,
			construct.NewContextual(func(ctx *construct.Context) (construct.Construct, error) {
				v, err := ctx.MustGet("length")
				if err != nil {
					return nil, err
				}
				return construct.NewBytes(v.(int)), nil
			}),
			nil,
		)),
		construct.F("ending", construct.NewIf(
			lengthIsPresent,
			construct.NewConstBytes([]byte("\r\n")),
			nil,
		)),
	)

	bulkString = construct.NewAdapted(
		bulkStringStruct,
		func(obj any) (any, error) { return bulkStringFromPython(obj) },
		func(obj any) (any, error) { return bulkStringToPython(obj) },
	)

	arrayStruct = construct.NewStruct(false,
		construct.F("length", integer),
		construct.F("data", construct.NewIf(
			lengthIsPresent,
			construct.NewContextual(func(ctx *construct.Context) (construct.Construct, error) {
				v, err := ctx.MustGet("length")
				if err != nil {
					return nil, err
				}
				return construct.NewRepeatExactly(messageRef, v.(int), nil), nil
			}),
			nil,
		)),
	)

	array = construct.NewAdapted(
		arrayStruct,
		func(obj any) (any, error) { return arrayFromPython(obj) },
		func(obj any) (any, error) { return arrayToPython(obj) },
	)

	messageStruct = construct.NewStruct(false,
		construct.F("data_type", construct.NewBytes(1)),
		construct.F("data", construct.NewSwitch(
			func(ctx *construct.Context) (any, error) {
				v, err := ctx.MustGet("data_type")
				if err != nil {
					return nil, err
				}
				b, ok := v.([]byte)
				if !ok || len(b) != 1 {
					return nil, fmt.Errorf("data_type: expected a single byte, got %v", v)
				}
				return string(b), nil
			},
			map[any]construct.Construct{
				"+": simpleString,
				"-": errorReply,
				":": integer,
				"$": bulkString,
				"*": array,
			},
			nil,
		)),
	)

	// Message is the top-level RESP construct: a one-byte type tag
	// followed by a type-dependent payload, exposed as whichever Go
	// value is natural for that payload (string, *RedisError, int,
	// []byte, or []any — recursively, for arrays).
	Message = construct.NewAdapted(
		messageStruct,
		func(obj any) (any, error) { return messageFromPython(obj) },
		func(obj any) (any, error) {
			m, ok := obj.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("expected map[string]any, got %T", obj)
			}
			return m["data"], nil
		},
	)
)

// messageRef is the element construct of arrays. It is set to Message in
// init, because referring to Message directly from arrayStruct would form
// an initialization cycle.
var messageRef construct.Construct

func init() { messageRef = Message }

func bulkStringFromPython(obj any) (any, error) {
	if obj == nil {
		return map[string]any{"length": -1}, nil
	}
	b, ok := obj.([]byte)
	if !ok {
		return nil, fmt.Errorf("expected []byte or nil, got %T", obj)
	}
	return map[string]any{"length": len(b), "data": b}, nil
}

func bulkStringToPython(obj any) (any, error) {
	m, ok := obj.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected map[string]any, got %T", obj)
	}
	if m["length"].(int) == -1 {
		return nil, nil
	}
	return m["data"], nil
}

func arrayFromPython(obj any) (any, error) {
	if obj == nil {
		return map[string]any{"length": -1}, nil
	}
	items, ok := obj.([]any)
	if !ok {
		return nil, fmt.Errorf("expected []any or nil, got %T", obj)
	}
	return map[string]any{"length": len(items), "data": items}, nil
}

func arrayToPython(obj any) (any, error) {
	m, ok := obj.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected map[string]any, got %T", obj)
	}
	if m["length"].(int) == -1 {
		return nil, nil
	}
	return m["data"], nil
}

func messageFromPython(obj any) (any, error) {
	var dataType []byte
	switch v := obj.(type) {
	case string:
		if !strings.Contains(v, "\r\n") {
			dataType = []byte("+")
		} else {
			dataType = []byte("$")
			obj = []byte(v)
		}
	case *RedisError:
		dataType = []byte("-")
	case int:
		dataType = []byte(":")
	case []byte:
		dataType = []byte("$")
	case []any:
		dataType = []byte("*")
	case nil:
		dataType = []byte("$")
	default:
		return nil, fmt.Errorf("unsupported type %T", obj)
	}
	return map[string]any{"data_type": dataType, "data": obj}, nil
}
