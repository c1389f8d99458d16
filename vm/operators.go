package vm

import (
	"math"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Coercions
// ---------------------------------------------------------------------------

// ToBoolean converts a value to a boolean.
func ToBoolean(v Value) bool {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindObject:
		if s, ok := v.StringValue(); ok {
			return s != ""
		}
		return true
	}
	return false
}

// StringToNumber parses a numeric string. Unparseable input yields NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseRadix(s[2:], base)
		}
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return math.NaN()
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return n
		}
		return math.NaN()
	}
	return n
}

func parseRadix(digits string, base int) float64 {
	if digits == "" {
		return math.NaN()
	}
	n := 0.0
	for i := 0; i < len(digits); i++ {
		d, err := strconv.ParseUint(digits[i:i+1], base, 8)
		if err != nil {
			return math.NaN()
		}
		n = n*float64(base) + float64(d)
	}
	return n
}

// ToPrimitive converts objects other than strings to a primitive by
// calling valueOf and toString. hintString selects toString first.
func (rt *Runtime) ToPrimitive(v Value, hintString bool) (Value, error) {
	if !v.IsObject() || v.IsString() {
		return v, nil
	}
	order := [2]string{"valueOf", "toString"}
	if hintString {
		order = [2]string{"toString", "valueOf"}
	}
	for _, name := range order {
		m, err := rt.GetProperty(v, name)
		if err != nil {
			return Undefined, err
		}
		if !m.IsCallable() {
			continue
		}
		r, err := rt.CallValue(m, v)
		if err != nil {
			return Undefined, err
		}
		if !r.IsObject() || r.IsString() {
			return r, nil
		}
	}
	if _, ok := v.o.class.(*ExceptionClass); ok {
		return rt.String(v.o.describe()), nil
	}
	return Undefined, rt.TypeError("cannot convert object to primitive value")
}

// ToNumber converts a value to a number.
func (rt *Runtime) ToNumber(v Value) (float64, error) {
	switch v.kind {
	case KindUndefined:
		return math.NaN(), nil
	case KindNull:
		return 0, nil
	case KindBoolean:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindNumber:
		return v.n, nil
	}
	if s, ok := v.StringValue(); ok {
		return StringToNumber(s), nil
	}
	p, err := rt.ToPrimitive(v, false)
	if err != nil {
		return 0, err
	}
	return rt.ToNumber(p)
}

// ToString converts a value to a Go string.
func (rt *Runtime) ToString(v Value) (string, error) {
	if !v.IsObject() {
		return v.String(), nil
	}
	if s, ok := v.StringValue(); ok {
		return s, nil
	}
	p, err := rt.ToPrimitive(v, true)
	if err != nil {
		return "", err
	}
	return rt.ToString(p)
}

// ToInt32 truncates a number to a signed 32-bit integer. NaN and the
// infinities become 0.
func ToInt32(n float64) int32 {
	return int32(ToUint32(n))
}

// ToUint32 truncates a number to an unsigned 32-bit integer. NaN and the
// infinities become 0.
func ToUint32(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	n = math.Trunc(n)
	n = math.Mod(n, 1<<32)
	if n < 0 {
		n += 1 << 32
	}
	return uint32(n)
}

// TypeOf returns the typeof string of a value.
func TypeOf(v Value) string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "object"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	}
	switch v.o.class.(type) {
	case *StringClass:
		return "string"
	case *FunctionClass, *NativeClass:
		return "function"
	}
	return "object"
}

// ---------------------------------------------------------------------------
// Equality and comparison
// ---------------------------------------------------------------------------

// StrictEquals implements ===. Strings compare by content, other objects
// by identity.
func StrictEquals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	}
	as, aok := a.StringValue()
	bs, bok := b.StringValue()
	if aok || bok {
		return aok && bok && as == bs
	}
	return a.o == b.o
}

// LooseEquals implements ==.
func (rt *Runtime) LooseEquals(a, b Value) (bool, error) {
	for {
		if a.IsNullish() || b.IsNullish() {
			return a.IsNullish() && b.IsNullish(), nil
		}
		aStr, bStr := a.IsString(), b.IsString()
		switch {
		case a.kind == b.kind && (a.kind != KindObject || aStr == bStr):
			return StrictEquals(a, b), nil
		case a.IsNumber() && bStr:
			s, _ := b.StringValue()
			return a.n == StringToNumber(s), nil
		case aStr && b.IsNumber():
			s, _ := a.StringValue()
			return StringToNumber(s) == b.n, nil
		case a.IsBool():
			a = Number(boolNumber(a.b))
		case b.IsBool():
			b = Number(boolNumber(b.b))
		case a.IsObject() && !aStr:
			p, err := rt.ToPrimitive(a, false)
			if err != nil {
				return false, err
			}
			a = p
		case b.IsObject() && !bStr:
			p, err := rt.ToPrimitive(b, false)
			if err != nil {
				return false, err
			}
			b = p
		default:
			return false, nil
		}
	}
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// compare reports a < b. It returns false when either side is NaN.
// Two strings compare lexically, anything else numerically.
func (rt *Runtime) compare(a, b Value, op Opcode) (bool, error) {
	pa, err := rt.ToPrimitive(a, false)
	if err != nil {
		return false, err
	}
	pb, err := rt.ToPrimitive(b, false)
	if err != nil {
		return false, err
	}
	as, aok := pa.StringValue()
	bs, bok := pb.StringValue()
	if aok && bok {
		switch op {
		case OpLt:
			return as < bs, nil
		case OpGt:
			return as > bs, nil
		case OpLe:
			return as <= bs, nil
		default:
			return as >= bs, nil
		}
	}
	x, err := rt.ToNumber(pa)
	if err != nil {
		return false, err
	}
	y, err := rt.ToNumber(pb)
	if err != nil {
		return false, err
	}
	switch op {
	case OpLt:
		return x < y, nil
	case OpGt:
		return x > y, nil
	case OpLe:
		return x <= y, nil
	default:
		return x >= y, nil
	}
}

// Add implements binary +. Concatenation happens when either primitive
// operand is a string; otherwise the operands are added as numbers.
func (rt *Runtime) Add(a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return Number(a.n + b.n), nil
	}
	pa, err := rt.ToPrimitive(a, false)
	if err != nil {
		return Undefined, err
	}
	pb, err := rt.ToPrimitive(b, false)
	if err != nil {
		return Undefined, err
	}
	if pa.IsString() || pb.IsString() {
		x, err := rt.ToString(pa)
		if err != nil {
			return Undefined, err
		}
		y, err := rt.ToString(pb)
		if err != nil {
			return Undefined, err
		}
		return rt.String(x + y), nil
	}
	x, err := rt.ToNumber(pa)
	if err != nil {
		return Undefined, err
	}
	y, err := rt.ToNumber(pb)
	if err != nil {
		return Undefined, err
	}
	return Number(x + y), nil
}

// arith applies a numeric binary operator.
func arith(op Opcode, x, y float64) float64 {
	switch op {
	case OpMul:
		return x * y
	case OpDiv:
		return x / y
	case OpMod:
		if y == 0 || math.IsInf(x, 0) || math.IsNaN(x) || math.IsNaN(y) {
			return math.NaN()
		}
		if math.IsInf(y, 0) {
			return x
		}
		return math.Mod(x, y)
	case OpSub:
		return x - y
	case OpShl:
		return float64(ToInt32(x) << (ToUint32(y) & 31))
	case OpShr:
		return float64(ToInt32(x) >> (ToUint32(y) & 31))
	case OpUShr:
		return float64(ToUint32(x) >> (ToUint32(y) & 31))
	case OpBitAnd:
		return float64(ToInt32(x) & ToInt32(y))
	case OpBitXor:
		return float64(ToInt32(x) ^ ToInt32(y))
	case OpBitOr:
		return float64(ToInt32(x) | ToInt32(y))
	}
	return math.NaN()
}

// InstanceOf walks v's prototype chain looking for ctor.prototype.
func (rt *Runtime) InstanceOf(v, ctor Value) (bool, error) {
	if !ctor.IsCallable() {
		return false, rt.TypeError("right-hand side of instanceof is not callable")
	}
	// strings are primitives to scripts
	if !v.IsObject() || v.IsString() {
		return false, nil
	}
	pv, err := rt.GetProperty(ctor, "prototype")
	if err != nil {
		return false, err
	}
	proto := pv.AsObject()
	if proto == nil {
		return false, rt.TypeError("function has non-object prototype in instanceof check")
	}
	for o := v.o.proto; o != nil; o = o.proto {
		if o == proto {
			return true, nil
		}
	}
	return false, nil
}
