package vm

import (
	"errors"
	"fmt"
)

// RunScript runs a function compiled as a top-level script. It pushes the
// function object and the implicit this (the global object, or undefined
// in strict code) and calls it. Host-fatal conditions come back as a
// *FatalError; uncaught script exceptions as an *Exception.
func (rt *Runtime) RunScript(fn *Function) (result Value, err error) {
	if !fn.Script {
		return Undefined, &FatalError{Reason: "RunScript: " + fn.Name + " is not a script"}
	}

	depth, env, calls := len(rt.stack), rt.env, rt.depth
	defer func() {
		if r := recover(); r != nil {
			fe, ok := r.(*FatalError)
			if !ok {
				panic(r)
			}
			rt.log.Errorf("runtime %s: %s", rt.ID, fe)
			rt.truncate(min(depth, len(rt.stack)))
			rt.env, rt.depth = env, calls
			result, err = Undefined, fe
		}
	}()

	this := ObjectValue(rt.global)
	if fn.Strict {
		this = Undefined
	}
	rt.Push(ObjectValue(rt.NewClosure(fn, rt.env)))
	rt.Push(this)
	if err := rt.Call(0); err != nil {
		if len(rt.stack) > depth {
			rt.truncate(depth)
		}
		rt.env = env
		return Undefined, err
	}
	return rt.Pop(), nil
}

// Run executes fn's instructions with the frame bottom (the this slot) at
// bot and returns the value of the RETURN instruction.
func (rt *Runtime) Run(fn *Function, bot int) (Value, error) {
	var handlers *tryHandler
	code := fn.Code
	pc, opPC := 0, 0

	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*FatalError); ok && fe.Function == "" {
				fe.Function, fe.PC = fn.Name, opPC
			}
			panic(r)
		}
	}()

	word := func() uint16 {
		if pc >= len(code) {
			fatalf("truncated instruction at pc %d", opPC)
		}
		w := code[pc]
		pc++
		return w
	}
	address := func() int {
		hi := word()
		lo := word()
		addr := JoinAddress(hi, lo)
		if addr > len(code) {
			fatalf("jump target %d outside code of length %d", addr, len(code))
		}
		return addr
	}
	str := func() string {
		i := int(word())
		if i >= len(fn.Strings) {
			fatalf("string index %d out of range", i)
		}
		return fn.Strings[i]
	}
	local := func() string {
		i := int(word())
		if i >= len(fn.Vars) {
			fatalf("variable index %d out of range", i)
		}
		return fn.Vars[i]
	}

	for {
		if pc >= len(code) {
			fatalf("execution ran past the end of %s", fn.Name)
		}
		opPC = pc
		op := Opcode(code[pc])
		pc++
		if rt.trace {
			rt.log.Debugf("%s %04d %-10s depth=%d", fn.Name, opPC, op, len(rt.stack))
		}

		var err error
		switch op {
		case OpNop:

		// Stack manipulation
		case OpPop:
			rt.Pop()
		case OpDup:
			rt.Push(rt.Top(-1))
		case OpDup2:
			a, b := rt.Top(-2), rt.Top(-1)
			rt.Push(a)
			rt.Push(b)
		case OpRot2:
			rt.rotate(2)
		case OpRot3:
			rt.rotate(3)
		case OpRot4:
			rt.rotate(4)

		// Literals
		case OpInteger:
			rt.Push(Number(float64(int16(word()))))
		case OpNumber:
			i := int(word())
			if i >= len(fn.Numbers) {
				fatalf("number index %d out of range", i)
			}
			rt.Push(Number(fn.Numbers[i]))
		case OpString:
			rt.Push(rt.String(str()))
		case OpUndef:
			rt.Push(Undefined)
		case OpNull:
			rt.Push(Null)
		case OpTrue:
			rt.Push(True)
		case OpFalse:
			rt.Push(False)

		// Construction
		case OpClosure:
			i := int(word())
			if i >= len(fn.Funcs) {
				fatalf("function index %d out of range", i)
			}
			rt.Push(ObjectValue(rt.NewClosure(fn.Funcs[i], rt.env)))
		case OpNewArray:
			rt.Push(ObjectValue(rt.NewArray(nil)))
		case OpNewObject:
			rt.Push(ObjectValue(rt.NewPlainObject()))

		// Frame access
		case OpThis:
			rt.Push(rt.frameSlot(bot))
		case OpCurrent:
			rt.Push(rt.frameSlot(bot - 1))

		// Variables
		case OpGetLocal, OpGetVar:
			name := rt.varName(op == OpGetLocal, local, str)
			var v Value
			if v, err = rt.GetVariable(name); err == nil {
				rt.Push(v)
			}
		case OpHasVar:
			var v Value
			if v, err = rt.LookupVariable(str()); err == nil {
				rt.Push(v)
			}
		case OpSetLocal, OpSetVar:
			name := rt.varName(op == OpSetLocal, local, str)
			err = rt.SetVariable(name, rt.Top(-1), fn.Strict)
		case OpDelLocal, OpDelVar:
			name := rt.varName(op == OpDelLocal, local, str)
			rt.Push(Bool(rt.DeleteVariable(name)))

		// Properties
		case OpInitProp, OpInitGetter, OpInitSetter:
			err = rt.initProperty(op)
		case OpGetProp:
			key := rt.Pop()
			obj := rt.Pop()
			err = rt.getProp(obj, key)
		case OpGetPropS:
			obj := rt.Pop()
			var v Value
			if v, err = rt.GetProperty(obj, str()); err == nil {
				rt.Push(v)
			}
		case OpSetProp:
			val := rt.Pop()
			key := rt.Pop()
			obj := rt.Pop()
			var name string
			if name, err = rt.propertyKey(key); err == nil {
				if err = rt.SetProperty(obj, name, val); err == nil {
					rt.Push(val)
				}
			}
		case OpSetPropS:
			val := rt.Pop()
			obj := rt.Pop()
			if err = rt.SetProperty(obj, str(), val); err == nil {
				rt.Push(val)
			}
		case OpDelProp:
			key := rt.Pop()
			obj := rt.Pop()
			var name string
			if name, err = rt.propertyKey(key); err == nil {
				err = rt.deleteProp(obj, name)
			}
		case OpDelPropS:
			err = rt.deleteProp(rt.Pop(), str())

		// Iteration
		case OpIterator:
			rt.Push(ObjectValue(rt.NewIterator(rt.Pop())))
		case OpNextIter:
			it, ok := rt.Top(-1).AsObject().classOrNil().(*IteratorClass)
			if !ok {
				fatalf("NEXTITER on a non-iterator")
			}
			if k, more := nextKey(it); more {
				rt.Push(rt.String(k))
				rt.Push(True)
			} else {
				rt.Pop()
				rt.Push(False)
			}

		// Calls
		case OpCall:
			err = rt.Call(int(word()))
		case OpNew:
			err = rt.New(int(word()))

		// Unary operators
		case OpTypeof:
			rt.Push(rt.String(TypeOf(rt.Pop())))
		case OpLogNot:
			rt.Push(Bool(!ToBoolean(rt.Pop())))
		case OpPos, OpNeg, OpBitNot, OpInc, OpDec, OpPostInc, OpPostDec:
			err = rt.unary(op)

		// Binary operators
		case OpAdd:
			b := rt.Pop()
			a := rt.Pop()
			var v Value
			if v, err = rt.Add(a, b); err == nil {
				rt.Push(v)
			}
		case OpMul, OpDiv, OpMod, OpSub, OpShl, OpShr, OpUShr, OpBitAnd, OpBitXor, OpBitOr:
			err = rt.binary(op)
		case OpLt, OpGt, OpLe, OpGe:
			b := rt.Pop()
			a := rt.Pop()
			var r bool
			if r, err = rt.compare(a, b, op); err == nil {
				rt.Push(Bool(r))
			}
		case OpEq, OpNe:
			b := rt.Pop()
			a := rt.Pop()
			var r bool
			if r, err = rt.LooseEquals(a, b); err == nil {
				rt.Push(Bool(r == (op == OpEq)))
			}
		case OpStrictEq:
			b := rt.Pop()
			rt.Push(Bool(StrictEquals(rt.Pop(), b)))
		case OpStrictNe:
			b := rt.Pop()
			rt.Push(Bool(!StrictEquals(rt.Pop(), b)))
		case OpInstanceOf:
			b := rt.Pop()
			a := rt.Pop()
			var r bool
			if r, err = rt.InstanceOf(a, b); err == nil {
				rt.Push(Bool(r))
			}
		case OpIn:
			obj := rt.Pop()
			key := rt.Pop()
			var name string
			if name, err = rt.propertyKey(key); err == nil {
				var r bool
				if r, err = rt.HasProperty(obj, name); err == nil {
					rt.Push(Bool(r))
				}
			}

		// Exceptions and scopes
		case OpThrow:
			err = Throw(rt.Pop())
		case OpTry:
			addr := address()
			handlers = &tryHandler{addr: addr, depth: len(rt.stack), env: rt.env, prev: handlers}
		case OpEndTry:
			if handlers == nil {
				fatalf("ENDTRY without an active handler")
			}
			handlers = handlers.prev
		case OpCatch:
			name := str()
			env := NewEnvironment(rt.env)
			env.Declare(name, rt.Pop())
			rt.env = env
		case OpWith:
			v := rt.Pop()
			o := v.AsObject()
			if o == nil {
				err = rt.TypeError("cannot use %s as a with scope", v)
				break
			}
			rt.env = NewObjectEnvironment(o, rt.env)
		case OpEndCatch, OpEndWith:
			if rt.env.outer == nil {
				fatalf("%s would leave the global environment", op)
			}
			rt.env = rt.env.outer
		case OpDebugger:
			if rt.debug != nil {
				rt.debug(rt, fn, opPC)
			} else {
				rt.log.Infof("debugger: %s line %d, stack depth %d", fn.Name, fn.LineAt(opPC), len(rt.stack))
			}

		// Control flow
		case OpJump:
			pc = address()
		case OpJTrue:
			addr := address()
			if ToBoolean(rt.Pop()) {
				pc = addr
			}
		case OpJFalse:
			addr := address()
			if !ToBoolean(rt.Pop()) {
				pc = addr
			}
		case OpJCase:
			addr := address()
			b := rt.Pop()
			if StrictEquals(rt.Top(-1), b) {
				rt.Pop()
				pc = addr
			}
		case OpReturn:
			return rt.Pop(), nil

		default:
			fatalf("unknown opcode %d", uint16(op))
		}

		if err == nil {
			continue
		}
		exc, ok := rt.toException(err)
		if !ok {
			return Undefined, err
		}
		if handlers == nil {
			exc.Trace = append(exc.Trace, fmt.Sprintf("%s:%d", displayName(fn), fn.LineAt(opPC)))
			return Undefined, exc
		}
		h := handlers
		handlers = h.prev
		if h.depth > len(rt.stack) {
			fatalf("handler depth %d above stack depth %d", h.depth, len(rt.stack))
		}
		rt.truncate(h.depth)
		rt.env = h.env
		rt.Push(exc.Value)
		pc = h.addr
	}
}

// toException converts an error raised during an instruction into the
// language exception scripts can catch. Fatal errors are not converted.
func (rt *Runtime) toException(err error) (*Exception, bool) {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc, true
	}
	if IsFatal(err) {
		return nil, false
	}
	return &Exception{Value: ObjectValue(rt.NewError("Error", err.Error()))}, true
}

func (rt *Runtime) frameSlot(i int) Value {
	if i < 0 || i >= len(rt.stack) {
		fatalf("frame slot %d outside stack of %d", i, len(rt.stack))
	}
	return rt.stack[i]
}

func (rt *Runtime) varName(isLocal bool, local, str func() string) string {
	if isLocal {
		return local()
	}
	return str()
}

func (rt *Runtime) initProperty(op Opcode) error {
	val := rt.Pop()
	key := rt.Pop()
	o := rt.Top(-1).AsObject()
	if o == nil {
		fatalf("%s on a non-object", op)
	}
	name, err := rt.propertyKey(key)
	if err != nil {
		return err
	}
	switch op {
	case OpInitGetter:
		rt.DefineProperty(o, name, Undefined, AttrEnumerable|AttrConfigurable, val.AsObject(), nil)
	case OpInitSetter:
		rt.DefineProperty(o, name, Undefined, AttrEnumerable|AttrConfigurable, nil, val.AsObject())
	default:
		rt.DefineProperty(o, name, val, AttrDefault, nil, nil)
	}
	return nil
}

func (rt *Runtime) getProp(obj, key Value) error {
	name, err := rt.propertyKey(key)
	if err != nil {
		return err
	}
	v, err := rt.GetProperty(obj, name)
	if err != nil {
		return err
	}
	rt.Push(v)
	return nil
}

func (rt *Runtime) deleteProp(obj Value, name string) error {
	if obj.IsNullish() {
		return rt.TypeError("cannot delete property '%s' of %s", name, obj)
	}
	o := obj.AsObject()
	if o == nil {
		rt.Push(True)
		return nil
	}
	rt.Push(Bool(rt.DeleteProperty(o, name)))
	return nil
}

func (rt *Runtime) unary(op Opcode) error {
	n, err := rt.ToNumber(rt.Pop())
	if err != nil {
		return err
	}
	switch op {
	case OpPos:
		rt.Push(Number(n))
	case OpNeg:
		rt.Push(Number(-n))
	case OpBitNot:
		rt.Push(Number(float64(^ToInt32(n))))
	case OpInc:
		rt.Push(Number(n + 1))
	case OpDec:
		rt.Push(Number(n - 1))
	case OpPostInc:
		rt.Push(Number(n + 1))
		rt.Push(Number(n))
	case OpPostDec:
		rt.Push(Number(n - 1))
		rt.Push(Number(n))
	}
	return nil
}

func (rt *Runtime) binary(op Opcode) error {
	b := rt.Pop()
	a := rt.Pop()
	x, err := rt.ToNumber(a)
	if err != nil {
		return err
	}
	y, err := rt.ToNumber(b)
	if err != nil {
		return err
	}
	rt.Push(Number(arith(op, x, y)))
	return nil
}

func displayName(fn *Function) string {
	if fn.Name == "" {
		return "<anonymous>"
	}
	return fn.Name
}
