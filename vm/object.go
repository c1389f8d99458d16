package vm

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Class is the closed set of object payloads. Every switch over a Class in
// this package handles all of its variants.
type Class interface {
	className() string
}

// PlainClass is an ordinary object.
type PlainClass struct{}

// StringClass is a string value. Strings are immutable.
type StringClass struct {
	Value string
}

// ArrayClass holds array elements. A deleted index becomes a hole: its
// slot reads undefined but it is no longer an own property.
type ArrayClass struct {
	Elements []Value
	holes    map[int]struct{}
}

// Has reports whether index i is a present element.
func (c *ArrayClass) Has(i int) bool {
	if i < 0 || i >= len(c.Elements) {
		return false
	}
	_, hole := c.holes[i]
	return !hole
}

// Push appends elements.
func (c *ArrayClass) Push(vals ...Value) {
	for i := range vals {
		delete(c.holes, len(c.Elements)+i)
	}
	c.Elements = append(c.Elements, vals...)
}

// Truncate shortens the array to n elements.
func (c *ArrayClass) Truncate(n int) {
	clear(c.Elements[n:])
	c.Elements = c.Elements[:n]
	for i := range c.holes {
		if i >= n {
			delete(c.holes, i)
		}
	}
}

func (c *ArrayClass) punch(i int) {
	if c.holes == nil {
		c.holes = make(map[int]struct{})
	}
	c.holes[i] = struct{}{}
	c.Elements[i] = Undefined
}

// FunctionClass is a closure: compiled code plus the environment it was
// created in.
type FunctionClass struct {
	Fn    *Function
	Scope *Environment
}

// NativeClass is a host function. Arity is the number of arguments the
// VM pads to before invoking Fn. Constructor, when set, is used by new.
type NativeClass struct {
	Name        string
	Arity       int
	Fn          NativeFunction
	Constructor NativeFunction
}

// IteratorClass is a for-in cursor over a snapshot of key names. Keys
// removed from Target after the snapshot are skipped.
type IteratorClass struct {
	Target *Object
	Keys   []string
	Pos    int
}

// ExceptionClass marks objects raised as errors.
type ExceptionClass struct {
	Name    string
	Message string
}

func (*PlainClass) className() string     { return "Object" }
func (*StringClass) className() string    { return "String" }
func (*ArrayClass) className() string     { return "Array" }
func (*FunctionClass) className() string  { return "Function" }
func (*NativeClass) className() string    { return "Function" }
func (*IteratorClass) className() string  { return "Iterator" }
func (*ExceptionClass) className() string { return "Exception" }

// Object is a prototype-linked property bag with a class payload. Objects
// are shared by reference; all mutation goes through the methods in this
// package.
type Object struct {
	proto      *Object
	extensible bool
	props      propertyMap
	class      Class
}

// NewObject creates an extensible object with the given prototype and class.
// A nil class means a plain object.
func NewObject(proto *Object, class Class) *Object {
	if class == nil {
		class = &PlainClass{}
	}
	return &Object{proto: proto, extensible: true, class: class}
}

// Proto returns the object's prototype, or nil.
func (o *Object) Proto() *Object { return o.proto }

// SetProto replaces the prototype. It refuses (returning false) when the
// change would make the chain cyclic.
func (o *Object) SetProto(p *Object) bool {
	for q := p; q != nil; q = q.proto {
		if q == o {
			return false
		}
	}
	o.proto = p
	return true
}

// Class returns the class payload.
func (o *Object) Class() Class { return o.class }

func (o *Object) classOrNil() Class {
	if o == nil {
		return nil
	}
	return o.class
}

// ClassName returns a short name for the payload.
func (o *Object) ClassName() string { return o.class.className() }

// Extensible reports whether new own properties may be created.
func (o *Object) Extensible() bool { return o.extensible }

// PreventExtensions locks the object against new own properties.
func (o *Object) PreventExtensions() { o.extensible = false }

// IsCallable reports whether the object can be the target of a call.
func (o *Object) IsCallable() bool {
	switch o.class.(type) {
	case *FunctionClass, *NativeClass:
		return true
	}
	return false
}

// OwnProperty returns an ordinary own property. Array and string elements
// are not stored as properties; use the runtime accessors for those.
func (o *Object) OwnProperty(name string) (*Property, bool) {
	return o.props.get(name)
}

// OwnKeys lists own property names in enumeration order: element indices
// first, then named properties in insertion order.
func (o *Object) OwnKeys() []string {
	var keys []string
	switch c := o.class.(type) {
	case *ArrayClass:
		for i := range c.Elements {
			if c.Has(i) {
				keys = append(keys, strconv.Itoa(i))
			}
		}
	case *StringClass:
		for i, n := 0, utf8.RuneCountInString(c.Value); i < n; i++ {
			keys = append(keys, strconv.Itoa(i))
		}
	case *PlainClass, *FunctionClass, *NativeClass, *IteratorClass, *ExceptionClass:
	}
	return append(keys, o.props.keys...)
}

// PropertyCount returns the number of ordinary own properties.
func (o *Object) PropertyCount() int {
	return o.props.len()
}

// describe renders the object without running script code.
func (o *Object) describe() string {
	switch c := o.class.(type) {
	case *StringClass:
		return c.Value
	case *ArrayClass:
		parts := make([]string, len(c.Elements))
		for i, e := range c.Elements {
			if !e.IsNullish() {
				parts[i] = e.String()
			}
		}
		return strings.Join(parts, ",")
	case *FunctionClass:
		return "function " + c.Fn.Name + "() { [bytecode] }"
	case *NativeClass:
		return "function " + c.Name + "() { [native code] }"
	case *ExceptionClass:
		if c.Message == "" {
			return c.Name
		}
		return c.Name + ": " + c.Message
	case *IteratorClass:
		return "[object Iterator]"
	case *PlainClass:
	}
	return "[object Object]"
}

// arrayIndex parses a canonical element index.
func arrayIndex(name string) (int, bool) {
	if name == "" || len(name) > 10 || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	n := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n >= 1<<32-1 {
		return 0, false
	}
	return n, true
}
