package builtins

import (
	"strings"
	"unicode/utf8"

	"github.com/chazu/teajs/vm"
)

// ---------------------------------------------------------------------------
// String
// ---------------------------------------------------------------------------

func installString(rt *vm.Runtime) {
	proto := rt.Prototypes.String
	ctor := rt.NewConstructor("String", 0, stringConstructor, stringConstructor, proto)
	rt.DefineGlobal("String", vm.ObjectValue(ctor))

	method(rt, proto, "toString", 0, stringValueOf)
	method(rt, proto, "valueOf", 0, stringValueOf)
	method(rt, proto, "charAt", 1, stringCharAt)
	method(rt, proto, "indexOf", 1, stringIndexOf)
	method(rt, proto, "substring", 2, stringSubstring)
	method(rt, proto, "toUpperCase", 0, stringMap(strings.ToUpper))
	method(rt, proto, "toLowerCase", 0, stringMap(strings.ToLower))
}

// stringConstructor converts its argument; String() is the empty string.
func stringConstructor(rt *vm.Runtime, argc int) error {
	if argc == 0 {
		return result(rt, rt.String(""))
	}
	s, err := rt.ToString(rt.Arg(argc, 0))
	if err != nil {
		return err
	}
	return result(rt, rt.String(s))
}

// thisString coerces the receiver of a string method.
func thisString(rt *vm.Runtime, argc int) (string, error) {
	this := rt.This(argc)
	if this.IsNullish() {
		return "", rt.TypeError("String.prototype method called on %s", this)
	}
	return rt.ToString(this)
}

func intArg(rt *vm.Runtime, argc, i int, def int) (int, error) {
	v := rt.Arg(argc, i)
	if v.IsUndefined() {
		return def, nil
	}
	n, err := rt.ToNumber(v)
	if err != nil {
		return 0, err
	}
	if n != n {
		return 0, nil
	}
	return int(max(min(n, 1<<31), -(1 << 31))), nil
}

func stringValueOf(rt *vm.Runtime, argc int) error {
	this := rt.This(argc)
	if !this.IsString() {
		return rt.TypeError("String.prototype.valueOf called on %s", this)
	}
	return result(rt, this)
}

func stringCharAt(rt *vm.Runtime, argc int) error {
	s, err := thisString(rt, argc)
	if err != nil {
		return err
	}
	pos, err := intArg(rt, argc, 0, 0)
	if err != nil {
		return err
	}
	runes := []rune(s)
	if pos < 0 || pos >= len(runes) {
		return result(rt, rt.String(""))
	}
	return result(rt, rt.String(string(runes[pos])))
}

func stringIndexOf(rt *vm.Runtime, argc int) error {
	s, err := thisString(rt, argc)
	if err != nil {
		return err
	}
	sub, err := rt.ToString(rt.Arg(argc, 0))
	if err != nil {
		return err
	}
	i := strings.Index(s, sub)
	if i < 0 {
		return result(rt, vm.Number(-1))
	}
	return result(rt, vm.Number(float64(utf8.RuneCountInString(s[:i]))))
}

func stringSubstring(rt *vm.Runtime, argc int) error {
	s, err := thisString(rt, argc)
	if err != nil {
		return err
	}
	runes := []rune(s)
	start, err := intArg(rt, argc, 0, 0)
	if err != nil {
		return err
	}
	end, err := intArg(rt, argc, 1, len(runes))
	if err != nil {
		return err
	}
	start = max(0, min(start, len(runes)))
	end = max(0, min(end, len(runes)))
	if start > end {
		start, end = end, start
	}
	return result(rt, rt.String(string(runes[start:end])))
}

func stringMap(f func(string) string) vm.NativeFunction {
	return func(rt *vm.Runtime, argc int) error {
		s, err := thisString(rt, argc)
		if err != nil {
			return err
		}
		return result(rt, rt.String(f(s)))
	}
}
