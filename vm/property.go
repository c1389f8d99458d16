package vm

import "strings"

// Attr is a set of independent property attribute bits.
type Attr uint8

const (
	AttrWritable Attr = 1 << iota
	AttrEnumerable
	AttrConfigurable

	// AttrDefault is what ordinary assignment and literals create.
	AttrDefault = AttrWritable | AttrEnumerable | AttrConfigurable
	// AttrHidden is used for builtin methods and prototype links.
	AttrHidden = AttrWritable | AttrConfigurable
	// AttrBinding is used for declared variables and parameters.
	AttrBinding = AttrWritable
	// AttrReadOnly properties can be neither changed nor removed.
	AttrReadOnly Attr = 0
)

func (a Attr) String() string {
	var parts []string
	if a&AttrWritable != 0 {
		parts = append(parts, "writable")
	}
	if a&AttrEnumerable != 0 {
		parts = append(parts, "enumerable")
	}
	if a&AttrConfigurable != 0 {
		parts = append(parts, "configurable")
	}
	if len(parts) == 0 {
		return "readonly"
	}
	return strings.Join(parts, "|")
}

// Property is a value slot with optional accessors and attribute bits.
type Property struct {
	Value  Value
	Getter *Object
	Setter *Object
	Attrs  Attr
}

func (p *Property) Writable() bool     { return p.Attrs&AttrWritable != 0 }
func (p *Property) Enumerable() bool   { return p.Attrs&AttrEnumerable != 0 }
func (p *Property) Configurable() bool { return p.Attrs&AttrConfigurable != 0 }

// IsAccessor reports whether the property has a getter or a setter.
func (p *Property) IsAccessor() bool {
	return p.Getter != nil || p.Setter != nil
}

// propertyMap is a name to property map that remembers insertion order.
type propertyMap struct {
	keys  []string
	props map[string]*Property
}

func (m *propertyMap) get(name string) (*Property, bool) {
	p, ok := m.props[name]
	return p, ok
}

func (m *propertyMap) put(name string, p *Property) {
	if m.props == nil {
		m.props = make(map[string]*Property)
	}
	if _, ok := m.props[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.props[name] = p
}

func (m *propertyMap) remove(name string) {
	if _, ok := m.props[name]; !ok {
		return
	}
	delete(m.props, name)
	for i, k := range m.keys {
		if k == name {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *propertyMap) len() int {
	return len(m.keys)
}
