package vm

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Element access for string and array objects
// ---------------------------------------------------------------------------

// ownElement resolves length and index names on string and array objects.
func (rt *Runtime) ownElement(o *Object, name string) (Value, bool) {
	switch c := o.class.(type) {
	case *ArrayClass:
		if name == "length" {
			return Number(float64(len(c.Elements))), true
		}
		if i, ok := arrayIndex(name); ok && c.Has(i) {
			return c.Elements[i], true
		}
	case *StringClass:
		if name == "length" {
			return Number(float64(utf8.RuneCountInString(c.Value))), true
		}
		if i, ok := arrayIndex(name); ok {
			if r, ok := runeAt(c.Value, i); ok {
				return rt.String(string(r)), true
			}
		}
	case *PlainClass, *FunctionClass, *NativeClass, *IteratorClass, *ExceptionClass:
	}
	return Undefined, false
}

func hasOwnElement(o *Object, name string) bool {
	switch c := o.class.(type) {
	case *ArrayClass:
		i, ok := arrayIndex(name)
		return name == "length" || (ok && c.Has(i))
	case *StringClass:
		i, ok := arrayIndex(name)
		return name == "length" || (ok && i < utf8.RuneCountInString(c.Value))
	case *PlainClass, *FunctionClass, *NativeClass, *IteratorClass, *ExceptionClass:
	}
	return false
}

func runeAt(s string, i int) (rune, bool) {
	n := 0
	for _, r := range s {
		if n == i {
			return r, true
		}
		n++
	}
	return 0, false
}

// setArrayElement handles writes to length and indices of an array.
// It reports whether name was an element name.
func (rt *Runtime) setArrayElement(o *Object, c *ArrayClass, name string, v Value) (bool, error) {
	if name == "length" {
		n, err := rt.ToNumber(v)
		if err != nil {
			return true, err
		}
		if n < 0 || n != math.Trunc(n) || n > math.MaxUint32 {
			return true, rt.RangeError("invalid array length")
		}
		size := int(n)
		if size <= len(c.Elements) {
			c.Truncate(size)
		} else if o.extensible {
			c.Push(make([]Value, size-len(c.Elements))...)
		}
		return true, nil
	}
	i, ok := arrayIndex(name)
	if !ok {
		return false, nil
	}
	if i < len(c.Elements) {
		if !c.Has(i) && !o.extensible {
			return true, nil
		}
		delete(c.holes, i)
		c.Elements[i] = v
		return true, nil
	}
	if !o.extensible {
		return true, nil
	}
	if i > len(c.Elements) {
		c.Push(make([]Value, i-len(c.Elements))...)
	}
	c.Push(v)
	return true, nil
}

// ---------------------------------------------------------------------------
// Property lookup
// ---------------------------------------------------------------------------

// FindProperty resolves an ordinary property along the prototype chain and
// returns it together with the object that owns it. The property is own
// when the owner is o itself.
func FindProperty(o *Object, name string) (*Property, *Object) {
	for obj := o; obj != nil; obj = obj.proto {
		if p, ok := obj.props.get(name); ok {
			return p, obj
		}
	}
	return nil, nil
}

// hasProperty reports whether name resolves on o or its prototypes.
func hasProperty(o *Object, name string) bool {
	for obj := o; obj != nil; obj = obj.proto {
		if hasOwnElement(obj, name) {
			return true
		}
		if _, ok := obj.props.get(name); ok {
			return true
		}
	}
	return false
}

// HasOwnProperty reports whether name is an own property or element of o.
func HasOwnProperty(o *Object, name string) bool {
	if hasOwnElement(o, name) {
		return true
	}
	_, ok := o.props.get(name)
	return ok
}

// HasProperty implements the in operator.
func (rt *Runtime) HasProperty(v Value, name string) (bool, error) {
	o := v.AsObject()
	if o == nil || v.IsString() {
		return false, rt.TypeError("cannot use 'in' operator to search for '%s' in %s", name, v)
	}
	return hasProperty(o, name), nil
}

// GetProperty reads name from v. Getters run with v as this, even when the
// property is inherited.
func (rt *Runtime) GetProperty(v Value, name string) (Value, error) {
	var o *Object
	switch v.kind {
	case KindUndefined, KindNull:
		return Undefined, rt.TypeError("cannot read property '%s' of %s", name, v)
	case KindBoolean, KindNumber:
		o = rt.Prototypes.Object
	case KindObject:
		o = v.o
	}
	for obj := o; obj != nil; obj = obj.proto {
		if e, ok := rt.ownElement(obj, name); ok {
			return e, nil
		}
		p, ok := obj.props.get(name)
		if !ok {
			continue
		}
		if p.Getter != nil {
			return rt.CallValue(ObjectValue(p.Getter), v)
		}
		if p.Setter != nil {
			return Undefined, nil
		}
		return p.Value, nil
	}
	return Undefined, nil
}

// SetProperty writes name on v. A setter anywhere on the chain is
// invoked; otherwise the write lands on v itself, shadowing any inherited
// data property. Writes to read-only properties are ignored.
func (rt *Runtime) SetProperty(v Value, name string, val Value) error {
	if v.IsNullish() {
		return rt.TypeError("cannot set property '%s' of %s", name, v)
	}
	o := v.AsObject()
	if o == nil {
		return nil
	}
	switch c := o.class.(type) {
	case *ArrayClass:
		if handled, err := rt.setArrayElement(o, c, name, val); handled {
			return err
		}
	case *StringClass:
		if hasOwnElement(o, name) {
			return nil
		}
	case *PlainClass, *FunctionClass, *NativeClass, *IteratorClass, *ExceptionClass:
	}
	for obj := o; obj != nil; obj = obj.proto {
		p, ok := obj.props.get(name)
		if !ok {
			continue
		}
		if p.IsAccessor() {
			if p.Setter != nil {
				_, err := rt.CallValue(ObjectValue(p.Setter), v, val)
				return err
			}
			return nil
		}
		if !p.Writable() {
			return nil
		}
		if obj == o {
			p.Value = val
			return nil
		}
		break
	}
	if o.extensible {
		o.props.put(name, &Property{Value: val, Attrs: AttrDefault})
	}
	return nil
}

// DefineProperty creates a property or updates its value and attributes
// without running accessors. A non-nil getter or setter turns the property
// into an accessor; accessors only attach to new or configurable
// properties. Reports whether the definition took effect.
func (rt *Runtime) DefineProperty(o *Object, name string, val Value, attrs Attr, getter, setter *Object) bool {
	accessor := getter != nil || setter != nil
	if c, ok := o.class.(*ArrayClass); ok && !accessor {
		if handled, err := rt.setArrayElement(o, c, name, val); handled {
			return err == nil
		}
	}
	if hasOwnElement(o, name) {
		if _, ok := o.class.(*StringClass); ok {
			return false
		}
	}
	p, ok := o.props.get(name)
	if !ok {
		if !o.extensible {
			return false
		}
		p = &Property{Attrs: attrs}
		if accessor {
			p.Getter, p.Setter = getter, setter
		} else {
			p.Value = val
		}
		o.props.put(name, p)
		return true
	}
	if !p.Configurable() {
		if accessor || p.IsAccessor() || !p.Writable() {
			return false
		}
		p.Value = val
		return true
	}
	if accessor {
		if getter != nil {
			p.Getter = getter
		}
		if setter != nil {
			p.Setter = setter
		}
		p.Value = Undefined
	} else {
		p.Value = val
		p.Getter, p.Setter = nil, nil
	}
	p.Attrs = attrs
	return true
}

// DeleteProperty removes an own configurable property. It reports false,
// leaving the object unchanged, for non-configurable properties.
func (rt *Runtime) DeleteProperty(o *Object, name string) bool {
	switch c := o.class.(type) {
	case *ArrayClass:
		if name == "length" {
			return false
		}
		if i, ok := arrayIndex(name); ok && i < len(c.Elements) {
			if c.Has(i) {
				c.punch(i)
			}
			return true
		}
	case *StringClass:
		if hasOwnElement(o, name) {
			return false
		}
	case *PlainClass, *FunctionClass, *NativeClass, *IteratorClass, *ExceptionClass:
	}
	p, ok := o.props.get(name)
	if !ok {
		return true
	}
	if !p.Configurable() {
		return false
	}
	o.props.remove(name)
	return true
}

// propertyKey converts a computed property name to a string.
func (rt *Runtime) propertyKey(v Value) (string, error) {
	if v.IsNumber() {
		return FormatNumber(v.n), nil
	}
	return rt.ToString(v)
}

// ---------------------------------------------------------------------------
// Enumeration
// ---------------------------------------------------------------------------

// EnumerableKeys lists the keys a for-in loop visits: own enumerable keys,
// then inherited enumerable keys not shadowed by a nearer property.
func EnumerableKeys(o *Object) []string {
	var keys []string
	seen := make(map[string]bool)
	for obj := o; obj != nil; obj = obj.proto {
		for _, k := range obj.OwnKeys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			if p, ok := obj.props.get(k); ok && !p.Enumerable() {
				continue
			}
			keys = append(keys, k)
		}
	}
	return keys
}

// NewIterator snapshots the keys of v for a for-in loop. Null, undefined
// and primitives produce an empty iteration.
func (rt *Runtime) NewIterator(v Value) *Object {
	it := &IteratorClass{}
	if o := v.AsObject(); o != nil {
		it.Target = o
		it.Keys = EnumerableKeys(o)
	}
	return NewObject(nil, it)
}

// nextKey advances an iterator, skipping keys deleted since the snapshot.
func nextKey(it *IteratorClass) (string, bool) {
	for it.Pos < len(it.Keys) {
		k := it.Keys[it.Pos]
		it.Pos++
		if it.Target == nil || hasProperty(it.Target, k) {
			return k, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Variables
// ---------------------------------------------------------------------------

// GetVariable resolves name through the current environment chain. An
// unresolved name raises a ReferenceError.
func (rt *Runtime) GetVariable(name string) (Value, error) {
	env := rt.env.Lookup(name)
	if env == nil {
		return Undefined, rt.ReferenceError("%s is not defined", name)
	}
	return rt.GetProperty(ObjectValue(env.vars), name)
}

// LookupVariable is GetVariable without the error for unresolved names.
func (rt *Runtime) LookupVariable(name string) (Value, error) {
	env := rt.env.Lookup(name)
	if env == nil {
		return Undefined, nil
	}
	return rt.GetProperty(ObjectValue(env.vars), name)
}

// SetVariable assigns to the innermost binding of name. Without one, the
// assignment creates a global property, or fails in strict code.
func (rt *Runtime) SetVariable(name string, v Value, strict bool) error {
	env := rt.env.Lookup(name)
	if env == nil {
		if strict {
			return rt.ReferenceError("assignment to undeclared variable %s", name)
		}
		env = rt.globalEnv
	}
	return rt.SetProperty(ObjectValue(env.vars), name, v)
}

// DeleteVariable removes the innermost binding of name if it is
// configurable. Declared variables never are.
func (rt *Runtime) DeleteVariable(name string) bool {
	env := rt.env.Lookup(name)
	if env == nil {
		return true
	}
	return rt.DeleteProperty(env.vars, name)
}

func indexName(i int) string {
	return strconv.Itoa(i)
}
