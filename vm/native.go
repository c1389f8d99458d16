package vm

// NativeFunction is a host function callable from script code.
//
// While it runs the operand stack ends with callee, this and argc
// arguments, where argc has already been padded with undefined up to the
// declared arity. The function reads them with Arg and This, must not pop
// them, and must push exactly one result before returning nil. A returned
// error propagates like a throw; use Throw or the Runtime error helpers to
// raise catchable exceptions.
type NativeFunction func(rt *Runtime, argc int) error

// Arg returns argument i of a native call, or undefined.
func (rt *Runtime) Arg(argc, i int) Value {
	if i < 0 || i >= argc {
		return Undefined
	}
	return rt.Top(i - argc)
}

// Args copies the arguments of a native call.
func (rt *Runtime) Args(argc int) []Value {
	args := make([]Value, argc)
	for i := range args {
		args[i] = rt.Top(i - argc)
	}
	return args
}

// This returns the this value of a native call.
func (rt *Runtime) This(argc int) Value {
	return rt.Top(-argc - 1)
}

// Callee returns the function object of a native call.
func (rt *Runtime) Callee(argc int) Value {
	return rt.Top(-argc - 2)
}
