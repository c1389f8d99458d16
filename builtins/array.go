package builtins

import (
	"strings"

	"github.com/chazu/teajs/vm"
)

// ---------------------------------------------------------------------------
// Array
// ---------------------------------------------------------------------------

func installArray(rt *vm.Runtime) {
	proto := rt.Prototypes.Array
	ctor := rt.NewConstructor("Array", 0, arrayConstructor, arrayConstructor, proto)
	rt.DefineGlobal("Array", vm.ObjectValue(ctor))

	method(rt, proto, "push", 0, arrayPush)
	method(rt, proto, "pop", 0, arrayPop)
	method(rt, proto, "join", 1, arrayJoin)
	method(rt, proto, "toString", 0, arrayToString)
	method(rt, proto, "indexOf", 1, arrayIndexOf)
	method(rt, proto, "slice", 2, arraySlice)
}

// arrayConstructor builds an array from its arguments. A single numeric
// argument is a length.
func arrayConstructor(rt *vm.Runtime, argc int) error {
	if argc == 1 && rt.Arg(argc, 0).IsNumber() {
		n := rt.Arg(argc, 0).AsNumber()
		if n < 0 || n != float64(vm.ToUint32(n)) {
			return rt.RangeError("invalid array length %s", vm.FormatNumber(n))
		}
		elems := make([]vm.Value, int(n))
		for i := range elems {
			elems[i] = vm.Undefined
		}
		return result(rt, vm.ObjectValue(rt.NewArray(elems)))
	}
	return result(rt, vm.ObjectValue(rt.NewArray(rt.Args(argc))))
}

func thisArray(rt *vm.Runtime, argc int, what string) (*vm.ArrayClass, error) {
	if o := rt.This(argc).AsObject(); o != nil {
		if a, ok := o.Class().(*vm.ArrayClass); ok {
			return a, nil
		}
	}
	return nil, rt.TypeError("Array.prototype.%s called on %s", what, rt.This(argc))
}

// arrayPush appends the arguments that were actually passed.
func arrayPush(rt *vm.Runtime, argc int) error {
	a, err := thisArray(rt, argc, "push")
	if err != nil {
		return err
	}
	a.Push(rt.Args(argc)...)
	return result(rt, vm.Number(float64(len(a.Elements))))
}

func arrayPop(rt *vm.Runtime, argc int) error {
	a, err := thisArray(rt, argc, "pop")
	if err != nil {
		return err
	}
	n := len(a.Elements)
	if n == 0 {
		return result(rt, vm.Undefined)
	}
	v := a.Elements[n-1]
	a.Truncate(n - 1)
	return result(rt, v)
}

func join(rt *vm.Runtime, a *vm.ArrayClass, sep string) (string, error) {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		if e.IsNullish() {
			continue
		}
		s, err := rt.ToString(e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, sep), nil
}

func arrayJoin(rt *vm.Runtime, argc int) error {
	a, err := thisArray(rt, argc, "join")
	if err != nil {
		return err
	}
	sep := ","
	if v := rt.Arg(argc, 0); !v.IsUndefined() {
		if sep, err = rt.ToString(v); err != nil {
			return err
		}
	}
	s, err := join(rt, a, sep)
	if err != nil {
		return err
	}
	return result(rt, rt.String(s))
}

func arrayToString(rt *vm.Runtime, argc int) error {
	a, err := thisArray(rt, argc, "toString")
	if err != nil {
		return err
	}
	s, err := join(rt, a, ",")
	if err != nil {
		return err
	}
	return result(rt, rt.String(s))
}

func arrayIndexOf(rt *vm.Runtime, argc int) error {
	a, err := thisArray(rt, argc, "indexOf")
	if err != nil {
		return err
	}
	needle := rt.Arg(argc, 0)
	for i, e := range a.Elements {
		if a.Has(i) && vm.StrictEquals(e, needle) {
			return result(rt, vm.Number(float64(i)))
		}
	}
	return result(rt, vm.Number(-1))
}

func arraySlice(rt *vm.Runtime, argc int) error {
	a, err := thisArray(rt, argc, "slice")
	if err != nil {
		return err
	}
	n := len(a.Elements)
	bound := func(i, def int) (int, error) {
		v, err := intArg(rt, argc, i, def)
		if err != nil {
			return 0, err
		}
		if v < 0 {
			v += n
		}
		return max(0, min(v, n)), nil
	}
	start, err := bound(0, 0)
	if err != nil {
		return err
	}
	end, err := bound(1, n)
	if err != nil {
		return err
	}
	var elems []vm.Value
	if start < end {
		elems = append(elems, a.Elements[start:end]...)
	}
	return result(rt, vm.ObjectValue(rt.NewArray(elems)))
}
