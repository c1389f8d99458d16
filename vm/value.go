package vm

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	}
	return "invalid"
}

// Value is the closed variant every operand stack slot and property holds.
// The zero Value is undefined. Strings are objects of the string class.
type Value struct {
	kind Kind
	b    bool
	n    float64
	o    *Object
}

var (
	Undefined = Value{}
	Null      = Value{kind: KindNull}
	True      = Value{kind: KindBoolean, b: true}
	False     = Value{kind: KindBoolean}
)

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Number returns a number value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// ObjectValue wraps an object reference. A nil object yields null.
func ObjectValue(o *Object) Value {
	if o == nil {
		return Null
	}
	return Value{kind: KindObject, o: o}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullish() bool   { return v.kind <= KindNull }
func (v Value) IsBool() bool      { return v.kind == KindBoolean }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsObject() bool    { return v.kind == KindObject }

// AsBool returns the boolean payload. It is false for other kinds.
func (v Value) AsBool() bool { return v.kind == KindBoolean && v.b }

// AsNumber returns the numeric payload. It is 0 for other kinds.
func (v Value) AsNumber() float64 { return v.n }

// AsObject returns the object reference, or nil.
func (v Value) AsObject() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.o
}

// IsString reports whether v refers to a string object.
func (v Value) IsString() bool {
	_, ok := v.StringValue()
	return ok
}

// StringValue returns the contents of a string object.
func (v Value) StringValue() (string, bool) {
	if v.kind != KindObject {
		return "", false
	}
	if s, ok := v.o.class.(*StringClass); ok {
		return s.Value, true
	}
	return "", false
}

// IsCallable reports whether v is a function or native function object.
func (v Value) IsCallable() bool {
	if v.kind != KindObject {
		return false
	}
	return v.o.IsCallable()
}

// String renders the value without invoking script code. It is used for
// logging and by hosts; scripts go through ToString.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return FormatNumber(v.n)
	case KindObject:
		return v.o.describe()
	}
	return "?"
}

// FormatNumber converts a number to its script string form.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		if exp == "" {
			exp = "0"
		}
		return mant + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
