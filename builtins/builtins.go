// Package builtins installs the host functions scripts expect to find:
// the global helpers and the Object, Function, String, Array and
// Exception constructors with their prototype methods.
package builtins

import (
	"fmt"
	"strings"

	"github.com/chazu/teajs/vm"
)

// Install adds every builtin to rt's global object and prototypes.
func Install(rt *vm.Runtime) {
	installObject(rt)
	installFunction(rt)
	installString(rt)
	installArray(rt)
	installException(rt)
	installGlobals(rt)
}

// method defines a hidden native method on obj.
func method(rt *vm.Runtime, obj *vm.Object, name string, arity int, fn vm.NativeFunction) {
	rt.DefineProperty(obj, name, vm.ObjectValue(rt.NewNative(name, arity, fn)), vm.AttrHidden, nil, nil)
}

func result(rt *vm.Runtime, v vm.Value) error {
	rt.Push(v)
	return nil
}

// ---------------------------------------------------------------------------
// Globals
// ---------------------------------------------------------------------------

func installGlobals(rt *vm.Runtime) {
	rt.DefineGlobal("print", vm.ObjectValue(rt.NewNative("print", 0, builtinPrint(""))))
	rt.DefineGlobal("println", vm.ObjectValue(rt.NewNative("println", 0, builtinPrint("\n"))))
	rt.DefineGlobal("assert", vm.ObjectValue(rt.NewNative("assert", 2, builtinAssert)))
	rt.DefineGlobal("isNaN", vm.ObjectValue(rt.NewNative("isNaN", 1, builtinIsNaN)))
	rt.DefineGlobal("parseFloat", vm.ObjectValue(rt.NewNative("parseFloat", 1, builtinParseFloat)))
}

// builtinPrint writes its arguments separated by spaces, followed by end.
func builtinPrint(end string) vm.NativeFunction {
	return func(rt *vm.Runtime, argc int) error {
		parts := make([]string, argc)
		for i := 0; i < argc; i++ {
			s, err := rt.ToString(rt.Arg(argc, i))
			if err != nil {
				return err
			}
			parts[i] = s
		}
		if _, err := fmt.Fprint(rt.Output(), strings.Join(parts, " ")+end); err != nil {
			return fmt.Errorf("print: %w", err)
		}
		return result(rt, vm.Undefined)
	}
}

func builtinAssert(rt *vm.Runtime, argc int) error {
	if vm.ToBoolean(rt.Arg(argc, 0)) {
		return result(rt, vm.Undefined)
	}
	msg := "assertion failed"
	if m := rt.Arg(argc, 1); !m.IsUndefined() {
		s, err := rt.ToString(m)
		if err != nil {
			return err
		}
		msg = s
	}
	return vm.Throw(vm.ObjectValue(rt.NewError("AssertionError", msg)))
}

func builtinIsNaN(rt *vm.Runtime, argc int) error {
	n, err := rt.ToNumber(rt.Arg(argc, 0))
	if err != nil {
		return err
	}
	return result(rt, vm.Bool(n != n))
}

func builtinParseFloat(rt *vm.Runtime, argc int) error {
	s, err := rt.ToString(rt.Arg(argc, 0))
	if err != nil {
		return err
	}
	return result(rt, vm.Number(vm.StringToNumber(strings.TrimSpace(s))))
}
