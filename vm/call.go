package vm

import "fmt"

// ---------------------------------------------------------------------------
// Call protocol
//
// A call frame is an offset into the shared operand stack. Before a call
// the stack ends with callee, this, arg0 ... arg(argc-1). The slot holding
// this is the frame bottom; the callee sits just below it. On return all
// of those slots are replaced by the single result.
// ---------------------------------------------------------------------------

// Call invokes the callee argc+1 slots below the top of the stack.
func (rt *Runtime) Call(argc int) error {
	bot := len(rt.stack) - argc - 1
	if argc < 0 || bot < 1 {
		fatalf("call with %d arguments on a stack of %d", argc, len(rt.stack))
	}
	callee := rt.stack[bot-1]
	fo := callee.AsObject()
	if fo == nil || !fo.IsCallable() {
		rt.truncate(bot - 1)
		return rt.TypeError("%s is not a function", calleeName(callee))
	}

	rt.enter()
	defer rt.leave()

	switch c := fo.class.(type) {
	case *FunctionClass:
		if c.Fn.Script {
			return rt.callScript(c, bot)
		}
		return rt.callFunction(fo, c, bot, argc)
	case *NativeClass:
		return rt.callNative(c.Name, c.Fn, c.Arity, bot, argc)
	case *PlainClass, *StringClass, *ArrayClass, *IteratorClass, *ExceptionClass:
	}
	fatalf("callable object of class %s", fo.ClassName())
	return nil
}

// New constructs with the callee argc slots below the top of the stack.
// Unlike Call there is no this slot; it is created here.
func (rt *Runtime) New(argc int) error {
	fpos := len(rt.stack) - argc - 1
	if argc < 0 || fpos < 0 {
		fatalf("new with %d arguments on a stack of %d", argc, len(rt.stack))
	}
	callee := rt.stack[fpos]
	fo := callee.AsObject()
	if fo == nil || !fo.IsCallable() {
		rt.truncate(fpos)
		return rt.TypeError("%s is not a constructor", calleeName(callee))
	}

	switch c := fo.class.(type) {
	case *NativeClass:
		// Builtin constructors allocate their own object.
		rt.insert(fpos+1, Null)
		construct := c.Fn
		if c.Constructor != nil {
			construct = c.Constructor
		}
		rt.enter()
		defer rt.leave()
		return rt.callNative(c.Name, construct, c.Arity, fpos+1, argc)
	case *FunctionClass:
		pv, err := rt.GetProperty(callee, "prototype")
		if err != nil {
			return err
		}
		proto := pv.AsObject()
		if proto == nil || pv.IsString() {
			proto = rt.Prototypes.Object
		}
		obj := NewObject(proto, nil)
		rt.insert(fpos+1, ObjectValue(obj))
		if err := rt.Call(argc); err != nil {
			return err
		}
		if r := rt.Top(-1); !r.IsObject() || r.IsString() {
			rt.setTop(-1, ObjectValue(obj))
		}
		return nil
	case *PlainClass, *StringClass, *ArrayClass, *IteratorClass, *ExceptionClass:
	}
	fatalf("callable object of class %s", fo.ClassName())
	return nil
}

// CallValue calls fn with the given this and arguments from host code.
func (rt *Runtime) CallValue(fn, this Value, args ...Value) (Value, error) {
	depth := len(rt.stack)
	rt.Push(fn)
	rt.Push(this)
	for _, a := range args {
		rt.Push(a)
	}
	if err := rt.Call(len(args)); err != nil {
		if len(rt.stack) > depth {
			rt.truncate(depth)
		}
		return Undefined, err
	}
	return rt.Pop(), nil
}

func (rt *Runtime) enter() {
	rt.depth++
	if rt.depth > rt.maxDepth {
		fatalf("maximum call depth %d exceeded", rt.maxDepth)
	}
}

func (rt *Runtime) leave() {
	rt.depth--
}

// callScript runs top-level code. Its hoisted names become bindings of the
// current environment rather than of a fresh one.
func (rt *Runtime) callScript(c *FunctionClass, bot int) error {
	fn := c.Fn
	for _, name := range fn.Vars {
		rt.env.Hoist(name)
	}
	rt.truncate(bot + 1)

	saved := rt.env
	result, err := rt.Run(fn, bot)
	rt.env = saved
	if err != nil {
		return err
	}
	rt.truncate(bot - 1)
	rt.Push(result)
	return nil
}

// callFunction runs a closure in a new environment whose outer link is the
// environment the closure captured.
func (rt *Runtime) callFunction(fo *Object, c *FunctionClass, bot, argc int) error {
	fn := c.Fn
	if !fn.Strict && rt.stack[bot].IsNullish() {
		rt.stack[bot] = ObjectValue(rt.global)
	}

	env := NewEnvironment(c.Scope)
	if fn.UsesArguments {
		env.Declare("arguments", ObjectValue(rt.newArguments(fo, bot, argc)))
	}
	for i := 0; i < fn.NumParams; i++ {
		v := Undefined
		if i < argc {
			v = rt.stack[bot+1+i]
		}
		env.Declare(fn.Vars[i], v)
	}
	for _, name := range fn.Vars[fn.NumParams:] {
		env.Hoist(name)
	}
	rt.truncate(bot + 1)

	saved := rt.env
	rt.env = env
	result, err := rt.Run(fn, bot)
	rt.env = saved
	if err != nil {
		return err
	}
	rt.truncate(bot - 1)
	rt.Push(result)
	return nil
}

// callNative pads the arguments to the declared arity and checks that the
// host function left exactly one result.
func (rt *Runtime) callNative(name string, fn NativeFunction, arity, bot, argc int) error {
	for ; argc < arity; argc++ {
		rt.Push(Undefined)
	}
	before := len(rt.stack)
	if err := fn(rt, argc); err != nil {
		return err
	}
	if len(rt.stack) != before+1 {
		fatalf("native function %s changed the stack by %d, want 1", name, len(rt.stack)-before)
	}
	result := rt.Pop()
	rt.truncate(bot - 1)
	rt.Push(result)
	return nil
}

// newArguments builds the arguments object: indexed enumerable elements, a
// hidden length and a hidden callee.
func (rt *Runtime) newArguments(callee *Object, bot, argc int) *Object {
	args := rt.NewPlainObject()
	for i := 0; i < argc; i++ {
		args.props.put(indexName(i), &Property{Value: rt.stack[bot+1+i], Attrs: AttrDefault})
	}
	args.props.put("length", &Property{Value: Number(float64(argc)), Attrs: AttrHidden})
	args.props.put("callee", &Property{Value: ObjectValue(callee), Attrs: AttrHidden})
	return args
}

func calleeName(v Value) string {
	if s, ok := v.StringValue(); ok {
		return fmt.Sprintf("%q", s)
	}
	return v.String()
}
