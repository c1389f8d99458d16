package vm

// Environment is one link of the scope chain: an object used as a
// name to binding map, and the enclosing environment. The global
// environment has no outer link and uses the global object as its map.
type Environment struct {
	vars     *Object
	outer    *Environment
	isObject bool // with-statement environment over a script object
}

// NewEnvironment creates an empty environment linked to outer.
func NewEnvironment(outer *Environment) *Environment {
	return &Environment{vars: NewObject(nil, nil), outer: outer}
}

// NewObjectEnvironment creates an environment whose bindings are the
// properties of obj, inherited ones included.
func NewObjectEnvironment(obj *Object, outer *Environment) *Environment {
	return &Environment{vars: obj, outer: outer, isObject: true}
}

// Outer returns the enclosing environment, or nil for the global one.
func (e *Environment) Outer() *Environment { return e.outer }

// Vars returns the object holding this environment's bindings.
func (e *Environment) Vars() *Object { return e.vars }

// Declare installs or overwrites a binding that cannot be deleted.
func (e *Environment) Declare(name string, v Value) {
	if p, ok := e.vars.props.get(name); ok && !e.isObject {
		p.Value = v
		p.Getter, p.Setter = nil, nil
		return
	}
	e.vars.props.put(name, &Property{Value: v, Attrs: AttrBinding})
}

// DeclareConst installs a read-only binding.
func (e *Environment) DeclareConst(name string, v Value) {
	e.vars.props.put(name, &Property{Value: v, Attrs: AttrReadOnly})
}

// Hoist declares name as undefined unless a binding already exists.
func (e *Environment) Hoist(name string) {
	if _, ok := e.vars.props.get(name); ok {
		return
	}
	e.vars.props.put(name, &Property{Value: Undefined, Attrs: AttrBinding})
}

// Has reports whether this environment itself binds name.
func (e *Environment) Has(name string) bool {
	if e.isObject {
		return hasProperty(e.vars, name)
	}
	_, ok := e.vars.props.get(name)
	return ok
}

// Lookup walks the chain from e outward and returns the innermost
// environment binding name, or nil.
func (e *Environment) Lookup(name string) *Environment {
	for env := e; env != nil; env = env.outer {
		if env.Has(name) {
			return env
		}
	}
	return nil
}
