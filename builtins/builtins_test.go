package builtins_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/chazu/teajs/builtins"
	"github.com/chazu/teajs/compiler"
	"github.com/chazu/teajs/vm"
)

func run(t *testing.T, src string) (string, string, error) {
	t.Helper()
	fn, err := compiler.Compile("test.js", src)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	var out bytes.Buffer
	rt := vm.NewRuntime(vm.WithOutput(&out))
	builtins.Install(rt)
	v, err := rt.RunScript(fn)
	if err != nil {
		return "", out.String(), err
	}
	s, ok := v.StringValue()
	if !ok {
		s = v.String()
	}
	return s, out.String(), nil
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"object to string", `'' + {}`, "[object Object]"},
		{"object call", `var o = {}; Object(o) === o`, "true"},
		{"object keys", `var o = {a: 1, b: 2}; Object.defineProperty(o, 'h', {value: 3}); Object.keys(o).join()`, "a,b"},
		{"array keys", `Object.keys(['x', 'y']).join('|')`, "0|1"},
		{"define read-only", `var o = {}; Object.defineProperty(o, 'x', {value: 1}); o.x = 2; '' + o.x + delete o.x`, "1false"},
		{"define accessor", `var o = {}; var n = 0; Object.defineProperty(o, 'x', {get: function () { return ++n; }, configurable: true}); o.x + o.x`, "3"},
		{"prototype access", `var p = {greet: function () { return 'hi ' + this.n; }}; var o = Object.setPrototypeOf({n: 'bo'}, p); o.greet() + (Object.getPrototypeOf(o) === p)`, "hi botrue"},
		{"has own property", `var o = {a: 1}; '' + o.hasOwnProperty('a') + o.hasOwnProperty('toString') + [1].hasOwnProperty('length')`, "truefalsetrue"},
		{"prevent extensions", `var o = {}; Object.preventExtensions(o); o.x = 1; '' + o.x + Object.isExtensible(o)`, "undefinedfalse"},
		{"property is enumerable", `var o = {a: 1}; '' + o.propertyIsEnumerable('a') + o.propertyIsEnumerable('toString')`, "truefalse"},
		{"value of", `var o = {valueOf: function () { return 41; }}; o + 1`, "42"},
		{"function call", `function f(a) { return this.x + a; } f.call({x: 1}, 2)`, "3"},
		{"function apply", `function f(a, b) { return a + b; } f.apply(null, [3, 4])`, "7"},
		{"function apply arguments", `function g() { return f.apply(null, arguments); } function f(a, b) { return a * b; } g(5, 6)`, "30"},
		{"function constructor", `var add = new Function('a', 'b', 'return a + b;'); add(2, 3)`, "5"},
		{"function constructor scope", `var g = 10; function mk() { var g = 1; return Function('return g;'); } mk()()`, "10"},
		{"function instanceof", `(function () {}) instanceof Function`, "true"},
		{"string is not a String instance", `('a' instanceof String) + ',' + ([] instanceof Array)`, "false,true"},
		{"array holes", `var a = [1, 2, 3]; delete a[1]; a.join('-') + a.indexOf(undefined) + Object.keys(a).length`, "1--3-12"},
		{"push after pop over a hole", `var a = [1, 2]; delete a[1]; a.pop(); a.push('x'); (1 in a) + a.join()`, "true1,x"},
		{"string convert", `String(12) + String(true) + String()`, "12true"},
		{"string methods", `var s = 'Hello'; s.charAt(1) + s.indexOf('l') + s.substring(1, 3) + s.toUpperCase() + s.toLowerCase()`, "e2elHELLOhello"},
		{"substring swaps", `'abcdef'.substring(4, 1)`, "bcd"},
		{"string to string", `'abc'.toString()`, "abc"},
		{"array push pop", `var a = [1]; a.push(2, 3); var last = a.pop(); '' + a.length + last`, "23"},
		{"array push nothing", `var a = []; a.push(); a.length`, "0"},
		{"array join", `[1, null, 'x'].join('-')`, "1--x"},
		{"array to string", `'' + [1, [2, 3]]`, "1,2,3"},
		{"array constructor", `'' + new Array(3).length + Array(1, 2).join()`, "31,2"},
		{"array index of", `[1, '2', 3].indexOf(3) + [1].indexOf('1')`, "1"},
		{"array slice", `[1, 2, 3, 4].slice(1, -1).join()`, "2,3"},
		{"exception objects", `var e = new TypeError('bad'); '' + e + (e instanceof Exception) + e.name`, "TypeError: badtrueTypeError"},
		{"exception to string", `'' + Exception('plain')`, "Exception: plain"},
		{"caught type error", `var r; try { null.x; } catch (e) { r = e.toString(); } r`, "TypeError: cannot read property 'x' of null"},
		{"is nan", `'' + isNaN('x') + isNaN('1')`, "truefalse"},
		{"parse float", `parseFloat(' 2.5 ') * 2`, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := run(t, tt.src)
			if err != nil {
				t.Fatalf("RunScript error: %v", err)
			}
			if got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrint(t *testing.T) {
	_, out, err := run(t, `print('a', 1, true); println(); println('x', null, [1, 2])`)
	if err != nil {
		t.Fatal(err)
	}
	if want := "a 1 true\nx null 1,2\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestAssert(t *testing.T) {
	if _, _, err := run(t, `assert(1 + 1 == 2, 'math');`); err != nil {
		t.Errorf("passing assert: %v", err)
	}
	_, _, err := run(t, `assert(false, 'it broke');`)
	var exc *vm.Exception
	if !errors.As(err, &exc) {
		t.Fatalf("err = %v, want exception", err)
	}
	if got := exc.Value.String(); got != "AssertionError: it broke" {
		t.Errorf("exception = %q, want AssertionError: it broke", got)
	}
	got, _, err := run(t, `var r; try { assert(0); } catch (e) { r = e.message; } r`)
	if err != nil || got != "assertion failed" {
		t.Errorf("default message = %q, %v", got, err)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`Object.keys(1)`, "TypeError"},
		{`Object.setPrototypeOf({}, 1)`, "TypeError"},
		{`var a = {}; Object.setPrototypeOf(Object.prototype, a)`, "TypeError"},
		{`Object.defineProperty({}, 'x', 1)`, "TypeError"},
		{`var o = {}; Object.defineProperty(o, 'x', {value: 1}); Object.defineProperty(o, 'x', {get: function () {}})`, "TypeError"},
		{`Function('return (')`, "SyntaxError"},
		{`Array.prototype.push.call({}, 1)`, "TypeError"},
		{`new Array(-1)`, "RangeError"},
		{`Function.prototype.call.call(1)`, "TypeError"},
	}
	for _, tt := range tests {
		got, _, err := run(t, "var r; try { "+tt.src+"; } catch (e) { r = e.name; } r")
		if err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: caught %q, want %q", tt.src, got, tt.want)
		}
	}
}
