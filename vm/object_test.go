package vm

import (
	"slices"
	"testing"
)

func returnThis(rt *Runtime, argc int) error {
	rt.Push(rt.This(argc))
	return nil
}

func TestGetPropertyInherited(t *testing.T) {
	rt := NewRuntime()
	base := rt.NewPlainObject()
	rt.DefineProperty(base, "x", Number(1), AttrDefault, nil, nil)
	derived := NewObject(base, nil)

	v, err := rt.GetProperty(ObjectValue(derived), "x")
	if err != nil || v.AsNumber() != 1 {
		t.Errorf("derived.x = %v, %v, want 1", v, err)
	}
	if HasOwnProperty(derived, "x") {
		t.Error("x should be inherited, not own")
	}
	if _, owner := FindProperty(derived, "x"); owner != base {
		t.Error("FindProperty owner should be the prototype")
	}
	if v, _ := rt.GetProperty(ObjectValue(derived), "missing"); !v.IsUndefined() {
		t.Errorf("derived.missing = %v, want undefined", v)
	}
	if _, err := rt.GetProperty(Undefined, "x"); !IsException(err) {
		t.Errorf("undefined.x: err = %v, want TypeError", err)
	}
}

func TestGetterReceivesOriginalReceiver(t *testing.T) {
	rt := NewRuntime()
	base := rt.NewPlainObject()
	getter := rt.NewNative("get", 0, returnThis)
	rt.DefineProperty(base, "self", Undefined, AttrEnumerable|AttrConfigurable, getter, nil)
	derived := NewObject(base, nil)

	v, err := rt.GetProperty(ObjectValue(derived), "self")
	if err != nil {
		t.Fatal(err)
	}
	if v.AsObject() != derived {
		t.Error("getter should run with the derived object as this")
	}
}

func TestSetPropertyShadows(t *testing.T) {
	rt := NewRuntime()
	base := rt.NewPlainObject()
	rt.DefineProperty(base, "x", Number(1), AttrDefault, nil, nil)
	derived := NewObject(base, nil)

	if err := rt.SetProperty(ObjectValue(derived), "x", Number(2)); err != nil {
		t.Fatal(err)
	}
	if p, ok := derived.OwnProperty("x"); !ok || p.Value.AsNumber() != 2 {
		t.Error("write should create an own property on the receiver")
	}
	if p, _ := base.OwnProperty("x"); p.Value.AsNumber() != 1 {
		t.Errorf("prototype x = %v, want unchanged 1", p.Value)
	}
}

func TestSetPropertyCallsInheritedSetter(t *testing.T) {
	rt := NewRuntime()
	var gotThis, gotArg Value
	setter := rt.NewNative("set", 1, func(rt *Runtime, argc int) error {
		gotThis, gotArg = rt.This(argc), rt.Arg(argc, 0)
		rt.Push(Undefined)
		return nil
	})
	base := rt.NewPlainObject()
	rt.DefineProperty(base, "v", Undefined, AttrEnumerable|AttrConfigurable, nil, setter)
	derived := NewObject(base, nil)

	if err := rt.SetProperty(ObjectValue(derived), "v", Number(7)); err != nil {
		t.Fatal(err)
	}
	if gotThis.AsObject() != derived || gotArg.AsNumber() != 7 {
		t.Errorf("setter saw this=%v arg=%v", gotThis, gotArg)
	}
	if HasOwnProperty(derived, "v") {
		t.Error("setter write should not create an own property")
	}
	if v, _ := rt.GetProperty(ObjectValue(derived), "v"); !v.IsUndefined() {
		t.Errorf("setter-only property reads as %v, want undefined", v)
	}
}

func TestReadOnlyAndNonExtensible(t *testing.T) {
	rt := NewRuntime()
	o := rt.NewPlainObject()
	rt.DefineProperty(o, "fixed", Number(1), AttrReadOnly, nil, nil)
	rt.SetProperty(ObjectValue(o), "fixed", Number(2))
	if p, _ := o.OwnProperty("fixed"); p.Value.AsNumber() != 1 {
		t.Errorf("read-only write changed value to %v", p.Value)
	}

	rt.DefineProperty(o, "open", Number(1), AttrDefault, nil, nil)
	o.PreventExtensions()
	rt.SetProperty(ObjectValue(o), "open", Number(3))
	rt.SetProperty(ObjectValue(o), "added", Number(4))
	if p, _ := o.OwnProperty("open"); p.Value.AsNumber() != 3 {
		t.Errorf("existing property = %v, want 3", p.Value)
	}
	if HasOwnProperty(o, "added") {
		t.Error("non-extensible object gained a property")
	}
	if rt.DefineProperty(o, "defined", Number(1), AttrDefault, nil, nil) {
		t.Error("DefineProperty on a non-extensible object should fail")
	}
}

func TestDeleteNonConfigurableIsIdempotent(t *testing.T) {
	rt := NewRuntime()
	o := rt.NewPlainObject()
	rt.DefineProperty(o, "keep", Number(1), AttrWritable|AttrEnumerable, nil, nil)
	rt.DefineProperty(o, "drop", Number(2), AttrDefault, nil, nil)

	for i := 0; i < 2; i++ {
		if rt.DeleteProperty(o, "keep") {
			t.Errorf("delete #%d of non-configurable property succeeded", i+1)
		}
		if p, ok := o.OwnProperty("keep"); !ok || p.Value.AsNumber() != 1 {
			t.Errorf("delete #%d changed the object", i+1)
		}
	}
	if !rt.DeleteProperty(o, "drop") || HasOwnProperty(o, "drop") {
		t.Error("configurable property should be deleted")
	}
	if !rt.DeleteProperty(o, "never") {
		t.Error("deleting a missing property should succeed")
	}
	if got := o.OwnKeys(); !slices.Equal(got, []string{"keep"}) {
		t.Errorf("OwnKeys = %v, want [keep]", got)
	}
}

func TestArrayElements(t *testing.T) {
	rt := NewRuntime()
	a := rt.NewArray([]Value{Number(1), Number(2)})
	av := ObjectValue(a)

	if err := rt.SetProperty(av, "4", Number(5)); err != nil {
		t.Fatal(err)
	}
	if v, _ := rt.GetProperty(av, "length"); v.AsNumber() != 5 {
		t.Errorf("length = %v, want 5", v)
	}
	if v, _ := rt.GetProperty(av, "3"); !v.IsUndefined() {
		t.Errorf("hole = %v, want undefined", v)
	}
	if err := rt.SetProperty(av, "length", Number(1)); err != nil {
		t.Fatal(err)
	}
	if got := a.OwnKeys(); !slices.Equal(got, []string{"0"}) {
		t.Errorf("OwnKeys after truncation = %v, want [0]", got)
	}
	if err := rt.SetProperty(av, "length", Number(-1)); !IsException(err) {
		t.Errorf("length = -1: err = %v, want RangeError", err)
	}
	if rt.DeleteProperty(a, "length") {
		t.Error("array length should not be deletable")
	}
	// names that are not canonical indices are ordinary properties
	rt.SetProperty(av, "01", True)
	if !HasOwnProperty(a, "01") || len(a.Class().(*ArrayClass).Elements) != 1 {
		t.Error(`"01" should be a named property`)
	}
}

func TestDeleteArrayElement(t *testing.T) {
	rt := NewRuntime()
	a := rt.NewArray([]Value{Number(1), Number(2), Number(3)})
	av := ObjectValue(a)

	for i := 0; i < 2; i++ {
		if !rt.DeleteProperty(a, "1") {
			t.Fatal("delete a[1] = false, want true")
		}
	}
	if HasOwnProperty(a, "1") {
		t.Error("deleted index is still an own property")
	}
	if got := a.OwnKeys(); !slices.Equal(got, []string{"0", "2"}) {
		t.Errorf("OwnKeys = %v, want [0 2]", got)
	}
	if v, _ := rt.GetProperty(av, "length"); v.AsNumber() != 3 {
		t.Errorf("length = %v, want 3", v)
	}
	if v, _ := rt.GetProperty(av, "1"); !v.IsUndefined() {
		t.Errorf("a[1] = %v, want undefined", v)
	}

	rt.SetProperty(av, "1", Number(7))
	if !HasOwnProperty(a, "1") {
		t.Error("writing a hole should restore the element")
	}
	rt.DeleteProperty(a, "2")
	rt.SetProperty(av, "length", Number(2))
	rt.SetProperty(av, "length", Number(3))
	if !HasOwnProperty(a, "2") {
		t.Error("a hole past a truncation should not survive regrowth")
	}
}

func TestStringElements(t *testing.T) {
	rt := NewRuntime()
	s := rt.String("héllo")
	if v, _ := rt.GetProperty(s, "length"); v.AsNumber() != 5 {
		t.Errorf("length = %v, want 5", v)
	}
	if v, _ := rt.GetProperty(s, "1"); v.String() != "é" {
		t.Errorf(`s[1] = %v, want "é"`, v)
	}
	if v, _ := rt.GetProperty(s, "9"); !v.IsUndefined() {
		t.Errorf("s[9] = %v, want undefined", v)
	}
	if rt.DeleteProperty(s.AsObject(), "0") {
		t.Error("string characters should not be deletable")
	}
	if _, err := rt.HasProperty(s, "length"); !IsException(err) {
		t.Error("'in' on a string should raise a TypeError")
	}
}

func TestEnumerableKeys(t *testing.T) {
	rt := NewRuntime()
	base := rt.NewPlainObject()
	rt.DefineProperty(base, "a", Number(1), AttrDefault, nil, nil)
	rt.DefineProperty(base, "b", Number(2), AttrDefault, nil, nil)
	rt.DefineProperty(base, "hidden", Number(3), AttrHidden, nil, nil)
	rt.DefineProperty(base, "c", Number(4), AttrDefault, nil, nil)
	derived := NewObject(base, nil)
	rt.DefineProperty(derived, "b", Number(5), AttrDefault, nil, nil)
	rt.DefineProperty(derived, "own", Number(6), AttrDefault, nil, nil)
	rt.DefineProperty(derived, "c", Number(7), AttrHidden, nil, nil)

	want := []string{"b", "own", "a"}
	if got := EnumerableKeys(derived); !slices.Equal(got, want) {
		t.Errorf("EnumerableKeys = %v, want %v", got, want)
	}
}

func TestIteratorSkipsDeletedKeys(t *testing.T) {
	rt := NewRuntime()
	o := rt.NewPlainObject()
	for _, k := range []string{"a", "b", "c"} {
		rt.DefineProperty(o, k, True, AttrDefault, nil, nil)
	}
	it := rt.NewIterator(ObjectValue(o)).Class().(*IteratorClass)
	var seen []string
	for {
		k, ok := nextKey(it)
		if !ok {
			break
		}
		seen = append(seen, k)
		if k == "a" {
			rt.DeleteProperty(o, "b")
		}
	}
	if !slices.Equal(seen, []string{"a", "c"}) {
		t.Errorf("iterated %v, want [a c]", seen)
	}
	if empty := rt.NewIterator(Null).Class().(*IteratorClass); len(empty.Keys) != 0 {
		t.Error("iterating null should produce no keys")
	}
}

func TestSetProtoRejectsCycles(t *testing.T) {
	a := NewObject(nil, nil)
	b := NewObject(a, nil)
	if a.SetProto(b) {
		t.Error("SetProto should reject a cycle")
	}
	if a.Proto() != nil {
		t.Error("rejected SetProto changed the prototype")
	}
	c := NewObject(nil, nil)
	if !c.SetProto(b) || c.Proto() != b {
		t.Error("SetProto should accept an acyclic chain")
	}
}

func TestAttrString(t *testing.T) {
	tests := []struct {
		a    Attr
		want string
	}{
		{AttrDefault, "writable|enumerable|configurable"},
		{AttrHidden, "writable|configurable"},
		{AttrReadOnly, "readonly"},
	}
	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("Attr(%d) = %q, want %q", tt.a, got, tt.want)
		}
	}
}
