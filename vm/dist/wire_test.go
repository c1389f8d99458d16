package dist

import (
	"bytes"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/chazu/teajs/compiler"
	"github.com/chazu/teajs/vm"
)

const sample = `
var total = 0;
function add(n) { 'use strict'; return function () { return n + arguments.length; }; }
outer: for (var i = 0; i < 4; i++) {
	try { if (i == 2) continue outer; total += add(i)(1, 2); } finally { total += 0.5; }
}
total
`

func mustCompile(t *testing.T, src string) *vm.Function {
	t.Helper()
	fn, err := compiler.Compile("sample.js", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return fn
}

func TestFunction_CBORRoundTrip(t *testing.T) {
	fn := mustCompile(t, sample)
	data, err := MarshalFunction("sample.js", sample, fn)
	if err != nil {
		t.Fatalf("MarshalFunction: %v", err)
	}
	got, err := UnmarshalFunction(data)
	if err != nil {
		t.Fatalf("UnmarshalFunction: %v", err)
	}

	if vm.Disassemble(got) != vm.Disassemble(fn) {
		t.Errorf("disassembly differs after round trip:\n%s\nwant:\n%s", vm.Disassemble(got), vm.Disassemble(fn))
	}
	if !slices.Equal(got.Code, fn.Code) {
		t.Error("Code mismatch")
	}
	if len(got.Funcs) != 1 || !got.Funcs[0].Strict || !got.Funcs[0].Funcs[0].UsesArguments {
		t.Error("nested function flags lost")
	}
	if len(got.Jumps) != len(fn.Jumps) || len(got.Lines) != len(fn.Lines) {
		t.Error("debug tables lost")
	}
}

func TestFunction_RunsAfterRoundTrip(t *testing.T) {
	fn := mustCompile(t, sample)
	data, err := MarshalFunction("sample.js", sample, fn)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := UnmarshalFunction(data)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []*vm.Function{fn, loaded} {
		v, err := vm.NewRuntime(vm.WithOutput(io.Discard)).RunScript(f)
		if err != nil {
			t.Fatalf("RunScript: %v", err)
		}
		// i = 0, 1, 3 each add i + 2; every iteration adds 0.5.
		if v.AsNumber() != 12 {
			t.Errorf("result = %v, want 12", v)
		}
	}
}

func TestImage_Load(t *testing.T) {
	fn := mustCompile(t, sample)
	img := NewImage("sample.js", Hash(sample), fn)
	got, err := img.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Script || got.Name != fn.Name {
		t.Errorf("Load = %q script=%v, want %q script=true", got.Name, got.Script, fn.Name)
	}

	img.Version = FormatVersion + 1
	if _, err := img.Load(); err == nil {
		t.Error("Load accepted a newer format version")
	}
	img.Version = FormatVersion
	img.Function = FunctionToImage(fn.Funcs[0])
	if _, err := img.Load(); err == nil {
		t.Error("Load accepted a non-script function")
	}
	img.Function = nil
	if _, err := img.Load(); err == nil {
		t.Error("Load accepted an empty image")
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	a, err := MarshalFunction("sample.js", sample, mustCompile(t, sample))
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalFunction("sample.js", sample, mustCompile(t, sample))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two compilations of the same source encoded differently")
	}
}

func TestImageCarriesHash(t *testing.T) {
	data, err := MarshalFunction("sample.js", sample, mustCompile(t, sample))
	if err != nil {
		t.Fatal(err)
	}
	img, err := UnmarshalImage(data)
	if err != nil {
		t.Fatal(err)
	}
	if img.Hash != Hash(sample) {
		t.Error("image hash does not match the source hash")
	}
	if img.Name != "sample.js" || img.Version != FormatVersion {
		t.Errorf("header = %q v%d, want sample.js v%d", img.Name, img.Version, FormatVersion)
	}
}

func TestHash(t *testing.T) {
	if Hash("a") == Hash("b") {
		t.Error("different sources hash equal")
	}
	if Hash("x = 1") != Hash("x = 1") {
		t.Error("hash is not stable")
	}
}

func TestUnmarshalRejects(t *testing.T) {
	fn := mustCompile(t, "var x = 1;")

	tests := []struct {
		name   string
		mutate func(img *Image)
		want   string
	}{
		{"version", func(img *Image) { img.Version = FormatVersion + 1 }, "image format"},
		{"empty", func(img *Image) { img.Function = nil }, "has no function"},
		{"not a script", func(img *Image) { img.Function.Flags &^= FlagScript }, "does not hold a script"},
		{"bad bytecode", func(img *Image) { img.Function.Code = append(img.Function.Code, 9999) }, "unknown opcode"},
	}
	for _, tt := range tests {
		img := NewImage("x.js", Hash("var x = 1;"), fn)
		tt.mutate(img)
		data, err := MarshalImage(img)
		if err != nil {
			t.Fatalf("%s: MarshalImage: %v", tt.name, err)
		}
		_, err = UnmarshalFunction(data)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want %q", tt.name, err, tt.want)
		}
	}

	if _, err := UnmarshalFunction([]byte{0xff, 0x00}); err == nil {
		t.Error("garbage input decoded without error")
	}
	if _, err := MarshalFunction("f", "", vm.NewFunction("f", false)); err == nil {
		t.Error("MarshalFunction accepted a non-script")
	}
}
