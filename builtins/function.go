package builtins

import (
	"errors"

	"github.com/chazu/teajs/compiler"
	"github.com/chazu/teajs/vm"
)

// ---------------------------------------------------------------------------
// Function
// ---------------------------------------------------------------------------

func installFunction(rt *vm.Runtime) {
	proto := rt.Prototypes.Function
	ctor := rt.NewConstructor("Function", 1, functionConstructor, functionConstructor, proto)
	rt.DefineGlobal("Function", vm.ObjectValue(ctor))

	method(rt, proto, "call", 1, functionCall)
	method(rt, proto, "apply", 2, functionApply)
	method(rt, proto, "toString", 0, functionToString)
}

// functionConstructor compiles its last argument as a function body and
// the others as parameter names. The result closes over the global
// environment.
func functionConstructor(rt *vm.Runtime, argc int) error {
	var params []string
	body := ""
	for i := 0; i < argc; i++ {
		s, err := rt.ToString(rt.Arg(argc, i))
		if err != nil {
			return err
		}
		if i == argc-1 {
			body = s
		} else {
			params = append(params, s)
		}
	}
	fn, err := compiler.CompileFunctionSource("anonymous", params, body)
	if err != nil {
		var list compiler.ErrorList
		var ce *compiler.CompileError
		switch {
		case errors.As(err, &list) && len(list) > 0:
			return rt.ThrowError("SyntaxError", "%s", list[0].Msg)
		case errors.As(err, &ce):
			return rt.ThrowError("SyntaxError", "%s", ce.Msg)
		}
		return rt.ThrowError("SyntaxError", "%s", err)
	}
	return result(rt, vm.ObjectValue(rt.NewClosure(fn, rt.GlobalEnv())))
}

func callableThis(rt *vm.Runtime, argc int, what string) (vm.Value, error) {
	this := rt.This(argc)
	if !this.IsCallable() {
		return vm.Undefined, rt.TypeError("Function.prototype.%s called on %s", what, this)
	}
	return this, nil
}

func functionCall(rt *vm.Runtime, argc int) error {
	fn, err := callableThis(rt, argc, "call")
	if err != nil {
		return err
	}
	args := rt.Args(argc)
	v, err := rt.CallValue(fn, args[0], args[1:]...)
	if err != nil {
		return err
	}
	return result(rt, v)
}

func functionApply(rt *vm.Runtime, argc int) error {
	fn, err := callableThis(rt, argc, "apply")
	if err != nil {
		return err
	}
	var args []vm.Value
	if list := rt.Arg(argc, 1); !list.IsNullish() {
		o := list.AsObject()
		if o == nil {
			return rt.TypeError("argument list must be an object")
		}
		n, err := rt.GetProperty(list, "length")
		if err != nil {
			return err
		}
		length, err := rt.ToNumber(n)
		if err != nil {
			return err
		}
		for i := 0; i < int(vm.ToUint32(length)); i++ {
			v, err := rt.GetProperty(list, vm.FormatNumber(float64(i)))
			if err != nil {
				return err
			}
			args = append(args, v)
		}
	}
	v, err := rt.CallValue(fn, rt.Arg(argc, 0), args...)
	if err != nil {
		return err
	}
	return result(rt, v)
}

func functionToString(rt *vm.Runtime, argc int) error {
	return result(rt, rt.String(rt.This(argc).String()))
}
