package builtins

import "github.com/chazu/teajs/vm"

// ---------------------------------------------------------------------------
// Exception
// ---------------------------------------------------------------------------

// errorNames are the exception constructors besides Exception itself. They
// all share Exception.prototype.
var errorNames = []string{"Error", "TypeError", "ReferenceError", "RangeError", "SyntaxError", "AssertionError"}

func installException(rt *vm.Runtime) {
	proto := rt.Prototypes.Exception
	ctor := rt.NewConstructor("Exception", 1, exceptionConstructor("Exception"), nil, proto)
	rt.DefineGlobal("Exception", vm.ObjectValue(ctor))
	for _, name := range errorNames {
		c := rt.NewNative(name, 1, exceptionConstructor(name))
		rt.DefineProperty(c, "prototype", vm.ObjectValue(proto), vm.AttrReadOnly, nil, nil)
		rt.DefineGlobal(name, vm.ObjectValue(c))
	}

	method(rt, proto, "toString", 0, exceptionToString)
}

func exceptionConstructor(name string) vm.NativeFunction {
	return func(rt *vm.Runtime, argc int) error {
		msg := ""
		if v := rt.Arg(argc, 0); !v.IsUndefined() {
			s, err := rt.ToString(v)
			if err != nil {
				return err
			}
			msg = s
		}
		return result(rt, vm.ObjectValue(rt.NewError(name, msg)))
	}
}

// exceptionToString renders "name: message", reading both properties so
// scripts can override them.
func exceptionToString(rt *vm.Runtime, argc int) error {
	this := rt.This(argc)
	if !this.IsObject() {
		return rt.TypeError("Exception.prototype.toString called on %s", this)
	}
	part := func(key, def string) (string, error) {
		v, err := rt.GetProperty(this, key)
		if err != nil || v.IsUndefined() {
			return def, err
		}
		return rt.ToString(v)
	}
	name, err := part("name", "Exception")
	if err != nil {
		return err
	}
	msg, err := part("message", "")
	if err != nil {
		return err
	}
	switch {
	case msg == "":
		return result(rt, rt.String(name))
	case name == "":
		return result(rt, rt.String(msg))
	}
	return result(rt, rt.String(name+": "+msg))
}
