package vm

import (
	"io"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

const (
	DefaultMaxCallDepth = 1000
	DefaultStackLimit   = 1 << 20
)

// Prototypes holds the builtin prototype objects every runtime creates.
type Prototypes struct {
	Object    *Object
	Function  *Object
	String    *Object
	Array     *Object
	Exception *Object
}

// DebugHook is invoked by the debugger statement.
type DebugHook func(rt *Runtime, fn *Function, pc int)

// Runtime is the state of one script execution context: builtin
// prototypes, the global environment, the current environment and the
// operand stack shared by every nested call. A Runtime is not safe for
// concurrent use; independent runtimes may run side by side.
type Runtime struct {
	ID         string
	Prototypes Prototypes

	global    *Object
	globalEnv *Environment
	env       *Environment
	stack     []Value
	depth     int

	maxDepth int
	maxStack int
	trace    bool
	out      io.Writer
	log      commonlog.Logger
	debug    DebugHook
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for tracing and debugger output.
func WithLogger(log commonlog.Logger) Option {
	return func(rt *Runtime) { rt.log = log }
}

// WithOutput sets the writer builtins print to.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) { rt.out = w }
}

// WithMaxCallDepth bounds nested calls. Exceeding it is fatal.
func WithMaxCallDepth(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.maxDepth = n
		}
	}
}

// WithStackLimit bounds the operand stack. Exceeding it is fatal.
func WithStackLimit(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.maxStack = n
		}
	}
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(on bool) Option {
	return func(rt *Runtime) { rt.trace = on }
}

// WithDebugHook sets the handler for the debugger statement.
func WithDebugHook(h DebugHook) Option {
	return func(rt *Runtime) { rt.debug = h }
}

// NewRuntime creates a runtime with fresh prototypes and an empty global
// environment. Builtin functions are installed separately.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		ID:       uuid.New().String(),
		maxDepth: DefaultMaxCallDepth,
		maxStack: DefaultStackLimit,
		out:      os.Stdout,
		log:      commonlog.GetLogger("teajs.vm"),
		stack:    make([]Value, 0, 256),
	}
	for _, opt := range opts {
		opt(rt)
	}

	objProto := NewObject(nil, nil)
	rt.Prototypes = Prototypes{
		Object:    objProto,
		Function:  NewObject(objProto, &NativeClass{Name: "", Fn: returnUndefined}),
		String:    NewObject(objProto, &StringClass{}),
		Array:     NewObject(objProto, &ArrayClass{}),
		Exception: NewObject(objProto, nil),
	}
	rt.global = NewObject(objProto, nil)
	rt.globalEnv = &Environment{vars: rt.global}
	rt.env = rt.globalEnv
	rt.global.props.put("undefined", &Property{Value: Undefined, Attrs: AttrReadOnly})
	rt.global.props.put("NaN", &Property{Value: Number(math.NaN()), Attrs: AttrReadOnly})
	rt.global.props.put("Infinity", &Property{Value: Number(math.Inf(1)), Attrs: AttrReadOnly})
	rt.log.Debugf("runtime %s created", rt.ID)
	return rt
}

func returnUndefined(rt *Runtime, argc int) error {
	rt.Push(Undefined)
	return nil
}

// Global returns the global object.
func (rt *Runtime) Global() *Object { return rt.global }

// GlobalEnv returns the global environment.
func (rt *Runtime) GlobalEnv() *Environment { return rt.globalEnv }

// Env returns the current environment.
func (rt *Runtime) Env() *Environment { return rt.env }

// Output returns the writer builtins print to.
func (rt *Runtime) Output() io.Writer { return rt.out }

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() commonlog.Logger { return rt.log }

// DefineGlobal installs a non-enumerable global binding.
func (rt *Runtime) DefineGlobal(name string, v Value) {
	rt.global.props.put(name, &Property{Value: v, Attrs: AttrHidden})
}

// GetGlobal reads a global variable, running getters.
func (rt *Runtime) GetGlobal(name string) (Value, error) {
	return rt.GetProperty(ObjectValue(rt.global), name)
}

// ---------------------------------------------------------------------------
// Object construction
// ---------------------------------------------------------------------------

// NewPlainObject creates an empty object inheriting from Object.prototype.
func (rt *Runtime) NewPlainObject() *Object {
	return NewObject(rt.Prototypes.Object, nil)
}

// String creates a string value.
func (rt *Runtime) String(s string) Value {
	return ObjectValue(NewObject(rt.Prototypes.String, &StringClass{Value: s}))
}

// NewArray creates an array holding elems.
func (rt *Runtime) NewArray(elems []Value) *Object {
	return NewObject(rt.Prototypes.Array, &ArrayClass{Elements: elems})
}

// NewNative creates a host function object.
func (rt *Runtime) NewNative(name string, arity int, fn NativeFunction) *Object {
	o := NewObject(rt.Prototypes.Function, &NativeClass{Name: name, Arity: arity, Fn: fn})
	o.props.put("length", &Property{Value: Number(float64(arity)), Attrs: AttrReadOnly})
	o.props.put("name", &Property{Value: rt.String(name), Attrs: AttrReadOnly})
	return o
}

// NewConstructor creates a host function with a separate behaviour for new
// and links proto as its prototype property.
func (rt *Runtime) NewConstructor(name string, arity int, call, construct NativeFunction, proto *Object) *Object {
	o := rt.NewNative(name, arity, call)
	o.class.(*NativeClass).Constructor = construct
	if proto != nil {
		o.props.put("prototype", &Property{Value: ObjectValue(proto), Attrs: AttrReadOnly})
		proto.props.put("constructor", &Property{Value: ObjectValue(o), Attrs: AttrHidden})
	}
	return o
}

// NewClosure creates a function object over fn capturing env. Named
// function expressions get an intermediate environment binding their name.
func (rt *Runtime) NewClosure(fn *Function, env *Environment) *Object {
	o := NewObject(rt.Prototypes.Function, nil)
	scope := env
	if fn.Expression && fn.Name != "" {
		scope = NewEnvironment(env)
		scope.DeclareConst(fn.Name, ObjectValue(o))
	}
	o.class = &FunctionClass{Fn: fn, Scope: scope}
	o.props.put("length", &Property{Value: Number(float64(fn.NumParams)), Attrs: AttrReadOnly})
	o.props.put("name", &Property{Value: rt.String(fn.Name), Attrs: AttrReadOnly})
	proto := rt.NewPlainObject()
	proto.props.put("constructor", &Property{Value: ObjectValue(o), Attrs: AttrHidden})
	o.props.put("prototype", &Property{Value: ObjectValue(proto), Attrs: AttrWritable})
	return o
}
