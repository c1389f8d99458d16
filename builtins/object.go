package builtins

import "github.com/chazu/teajs/vm"

// ---------------------------------------------------------------------------
// Object
// ---------------------------------------------------------------------------

func installObject(rt *vm.Runtime) {
	proto := rt.Prototypes.Object
	ctor := rt.NewConstructor("Object", 1, objectConstructor, objectConstructor, proto)
	rt.DefineGlobal("Object", vm.ObjectValue(ctor))

	method(rt, ctor, "keys", 1, objectKeys)
	method(rt, ctor, "getPrototypeOf", 1, objectGetPrototypeOf)
	method(rt, ctor, "setPrototypeOf", 2, objectSetPrototypeOf)
	method(rt, ctor, "defineProperty", 3, objectDefineProperty)
	method(rt, ctor, "preventExtensions", 1, objectPreventExtensions)
	method(rt, ctor, "isExtensible", 1, objectIsExtensible)

	method(rt, proto, "toString", 0, objectToString)
	method(rt, proto, "valueOf", 0, objectValueOf)
	method(rt, proto, "hasOwnProperty", 1, objectHasOwnProperty)
	method(rt, proto, "propertyIsEnumerable", 1, objectPropertyIsEnumerable)
}

// objectConstructor returns object arguments unchanged and creates an
// empty object otherwise.
func objectConstructor(rt *vm.Runtime, argc int) error {
	if v := rt.Arg(argc, 0); v.IsObject() {
		return result(rt, v)
	}
	return result(rt, vm.ObjectValue(rt.NewPlainObject()))
}

func objectArg(rt *vm.Runtime, argc, i int, fn string) (*vm.Object, error) {
	o := rt.Arg(argc, i).AsObject()
	if o == nil {
		return nil, rt.TypeError("%s called on non-object", fn)
	}
	return o, nil
}

func objectKeys(rt *vm.Runtime, argc int) error {
	o, err := objectArg(rt, argc, 0, "Object.keys")
	if err != nil {
		return err
	}
	var keys []vm.Value
	for _, k := range o.OwnKeys() {
		if p, ok := o.OwnProperty(k); ok && !p.Enumerable() {
			continue
		}
		keys = append(keys, rt.String(k))
	}
	return result(rt, vm.ObjectValue(rt.NewArray(keys)))
}

func objectGetPrototypeOf(rt *vm.Runtime, argc int) error {
	o, err := objectArg(rt, argc, 0, "Object.getPrototypeOf")
	if err != nil {
		return err
	}
	if p := o.Proto(); p != nil {
		return result(rt, vm.ObjectValue(p))
	}
	return result(rt, vm.Null)
}

func objectSetPrototypeOf(rt *vm.Runtime, argc int) error {
	o, err := objectArg(rt, argc, 0, "Object.setPrototypeOf")
	if err != nil {
		return err
	}
	pv := rt.Arg(argc, 1)
	var p *vm.Object
	switch {
	case pv.IsNull():
	case pv.IsObject():
		p = pv.AsObject()
	default:
		return rt.TypeError("object prototype may only be an object or null")
	}
	if !o.SetProto(p) {
		return rt.TypeError("cyclic prototype chain")
	}
	return result(rt, vm.ObjectValue(o))
}

// objectDefineProperty reads a descriptor object. Missing attribute
// fields default to false.
func objectDefineProperty(rt *vm.Runtime, argc int) error {
	o, err := objectArg(rt, argc, 0, "Object.defineProperty")
	if err != nil {
		return err
	}
	name, err := rt.ToString(rt.Arg(argc, 1))
	if err != nil {
		return err
	}
	desc := rt.Arg(argc, 2)
	if !desc.IsObject() {
		return rt.TypeError("property description must be an object")
	}

	field := func(key string) (vm.Value, error) { return rt.GetProperty(desc, key) }
	var attrs vm.Attr
	for _, f := range []struct {
		key  string
		attr vm.Attr
	}{
		{"writable", vm.AttrWritable},
		{"enumerable", vm.AttrEnumerable},
		{"configurable", vm.AttrConfigurable},
	} {
		v, err := field(f.key)
		if err != nil {
			return err
		}
		if vm.ToBoolean(v) {
			attrs |= f.attr
		}
	}
	value, err := field("value")
	if err != nil {
		return err
	}
	var accessors [2]*vm.Object
	for i, key := range []string{"get", "set"} {
		v, err := field(key)
		if err != nil {
			return err
		}
		if v.IsUndefined() {
			continue
		}
		if !v.IsCallable() {
			return rt.TypeError("%s must be a function", key)
		}
		accessors[i] = v.AsObject()
	}

	if !rt.DefineProperty(o, name, value, attrs, accessors[0], accessors[1]) {
		return rt.TypeError("cannot redefine property: %s", name)
	}
	return result(rt, vm.ObjectValue(o))
}

func objectPreventExtensions(rt *vm.Runtime, argc int) error {
	v := rt.Arg(argc, 0)
	if o := v.AsObject(); o != nil {
		o.PreventExtensions()
	}
	return result(rt, v)
}

func objectIsExtensible(rt *vm.Runtime, argc int) error {
	o := rt.Arg(argc, 0).AsObject()
	return result(rt, vm.Bool(o != nil && o.Extensible()))
}

func objectToString(rt *vm.Runtime, argc int) error {
	this := rt.This(argc)
	switch {
	case this.IsUndefined():
		return result(rt, rt.String("[object Undefined]"))
	case this.IsNull():
		return result(rt, rt.String("[object Null]"))
	case this.IsObject():
		return result(rt, rt.String("[object "+this.AsObject().ClassName()+"]"))
	}
	return result(rt, rt.String("[object Object]"))
}

func objectValueOf(rt *vm.Runtime, argc int) error {
	return result(rt, rt.This(argc))
}

func objectHasOwnProperty(rt *vm.Runtime, argc int) error {
	name, err := rt.ToString(rt.Arg(argc, 0))
	if err != nil {
		return err
	}
	o := rt.This(argc).AsObject()
	return result(rt, vm.Bool(o != nil && vm.HasOwnProperty(o, name)))
}

func objectPropertyIsEnumerable(rt *vm.Runtime, argc int) error {
	name, err := rt.ToString(rt.Arg(argc, 0))
	if err != nil {
		return err
	}
	o := rt.This(argc).AsObject()
	if o == nil || !vm.HasOwnProperty(o, name) {
		return result(rt, vm.False)
	}
	p, ok := o.OwnProperty(name)
	return result(rt, vm.Bool(!ok || p.Enumerable()))
}
