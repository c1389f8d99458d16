package vm

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-42, "-42"},
		{3.14, "3.14"},
		{0.1 + 0.2, "0.30000000000000004"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{123456789012, "123456789012"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestValueKinds(t *testing.T) {
	rt := NewRuntime()
	tests := []struct {
		v        Value
		kind     Kind
		typeOf   string
		nullish  bool
		truthy   bool
		rendered string
	}{
		{Undefined, KindUndefined, "undefined", true, false, "undefined"},
		{Null, KindNull, "object", true, false, "null"},
		{True, KindBoolean, "boolean", false, true, "true"},
		{False, KindBoolean, "boolean", false, false, "false"},
		{Number(0), KindNumber, "number", false, false, "0"},
		{Number(math.NaN()), KindNumber, "number", false, false, "NaN"},
		{Number(-1), KindNumber, "number", false, true, "-1"},
		{rt.String(""), KindObject, "string", false, false, ""},
		{rt.String("x"), KindObject, "string", false, true, "x"},
		{ObjectValue(rt.NewPlainObject()), KindObject, "object", false, true, "[object Object]"},
		{ObjectValue(rt.NewArray([]Value{Number(1), Null, Number(3)})), KindObject, "object", false, true, "1,,3"},
	}
	for _, tt := range tests {
		if got := tt.v.Kind(); got != tt.kind {
			t.Errorf("%v: Kind = %s, want %s", tt.v, got, tt.kind)
		}
		if got := TypeOf(tt.v); got != tt.typeOf {
			t.Errorf("%v: TypeOf = %q, want %q", tt.v, got, tt.typeOf)
		}
		if got := tt.v.IsNullish(); got != tt.nullish {
			t.Errorf("%v: IsNullish = %v, want %v", tt.v, got, tt.nullish)
		}
		if got := ToBoolean(tt.v); got != tt.truthy {
			t.Errorf("%v: ToBoolean = %v, want %v", tt.v, got, tt.truthy)
		}
		if got := tt.v.String(); got != tt.rendered {
			t.Errorf("String() = %q, want %q", got, tt.rendered)
		}
	}
	if ObjectValue(nil) != Null {
		t.Error("ObjectValue(nil) should be null")
	}
}

func TestStringToNumber(t *testing.T) {
	tests := []struct {
		s    string
		want float64
	}{
		{"", 0},
		{"  42  ", 42},
		{"-1.5", -1.5},
		{"1e3", 1000},
		{"0x1F", 31},
		{"0b101", 5},
		{"0o17", 15},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
	}
	for _, tt := range tests {
		if got := StringToNumber(tt.s); got != tt.want {
			t.Errorf("StringToNumber(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
	for _, s := range []string{"abc", "12px", "0x", "0xZZ", "1..2", "inf"} {
		if got := StringToNumber(s); !math.IsNaN(got) {
			t.Errorf("StringToNumber(%q) = %v, want NaN", s, got)
		}
	}
}

func TestToInt32(t *testing.T) {
	tests := []struct {
		n     float64
		int32 int32
		uint  uint32
	}{
		{0, 0, 0},
		{1.9, 1, 1},
		{-1.9, -1, 4294967295},
		{4294967296, 0, 0},
		{2147483648, -2147483648, 2147483648},
		{-2147483649, 2147483647, 2147483647},
		{math.NaN(), 0, 0},
		{math.Inf(1), 0, 0},
		{math.Inf(-1), 0, 0},
	}
	for _, tt := range tests {
		if got := ToInt32(tt.n); got != tt.int32 {
			t.Errorf("ToInt32(%v) = %d, want %d", tt.n, got, tt.int32)
		}
		if got := ToUint32(tt.n); got != tt.uint {
			t.Errorf("ToUint32(%v) = %d, want %d", tt.n, got, tt.uint)
		}
	}
}
