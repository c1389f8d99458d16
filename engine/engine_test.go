package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/teajs/compiler"
	"github.com/chazu/teajs/manifest"
	"github.com/chazu/teajs/vm"
)

func newEngine(t *testing.T, m *manifest.Manifest) (*Engine, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e, err := New(m, vm.WithOutput(&out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, &out
}

func TestRun(t *testing.T) {
	e, out := newEngine(t, manifest.Default(t.TempDir()))
	v, err := e.Run("hello.js", `println('hello', 1 + 2); 'done'`)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := v.StringValue(); s != "done" {
		t.Errorf("result = %v, want done", v)
	}
	if out.String() != "hello 3\n" {
		t.Errorf("output = %q, want %q", out.String(), "hello 3\n")
	}
	if e.Cache() != nil {
		t.Error("cache opened although disabled")
	}
}

func TestRunSharesGlobals(t *testing.T) {
	e, _ := newEngine(t, manifest.Default(t.TempDir()))
	if _, err := e.Run("a.js", `var shared = 20;`); err != nil {
		t.Fatal(err)
	}
	v, err := e.Run("b.js", `shared + 1`)
	if err != nil {
		t.Fatal(err)
	}
	if v.AsNumber() != 21 {
		t.Errorf("shared + 1 = %v, want 21", v)
	}
}

func TestRunErrors(t *testing.T) {
	e, _ := newEngine(t, manifest.Default(t.TempDir()))

	_, err := e.Run("bad.js", `var = 1;`)
	var ce *compiler.CompileError
	if !errors.As(err, &ce) {
		t.Errorf("syntax error: err = %v, want *compiler.CompileError", err)
	}

	_, err = e.Run("throw.js", `throw new TypeError('nope');`)
	if !vm.IsException(err) || !strings.Contains(err.Error(), "TypeError: nope") {
		t.Errorf("throw: err = %v", err)
	}

	if _, err := e.RunFile(filepath.Join(t.TempDir(), "missing.js")); err == nil {
		t.Error("RunFile of a missing file succeeded")
	}
}

func TestRuntimeLimitsFromManifest(t *testing.T) {
	m := manifest.Default(t.TempDir())
	m.Runtime.MaxCallDepth = 20
	e, _ := newEngine(t, m)
	_, err := e.Run("deep.js", `function f(n) { return n == 0 ? 0 : f(n - 1); } f(100)`)
	if !vm.IsFatal(err) {
		t.Errorf("err = %v, want fatal call depth error", err)
	}
}

func TestStrictManifest(t *testing.T) {
	m := manifest.Default(t.TempDir())
	m.Runtime.Strict = true
	e, _ := newEngine(t, m)
	_, err := e.Run("strict.js", `undeclared = 1;`)
	if !vm.IsException(err) || !strings.Contains(err.Error(), "ReferenceError") {
		t.Errorf("err = %v, want ReferenceError", err)
	}
}

func TestCompileUsesCache(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Default(dir)
	m.Cache.Enabled = true
	src := `function fib(n) { return n < 2 ? n : fib(n - 1) + fib(n - 2); } fib(15)`

	e, _ := newEngine(t, m)
	for i := 0; i < 2; i++ {
		v, err := e.Run("fib.js", src)
		if err != nil {
			t.Fatal(err)
		}
		if v.AsNumber() != 610 {
			t.Errorf("fib(15) = %v, want 610", v)
		}
	}
	if e.Stats != (Stats{Hits: 1, Misses: 1, Compiled: 1}) {
		t.Errorf("Stats = %+v, want one miss then one hit", e.Stats)
	}
	if _, err := os.Stat(filepath.Join(dir, ".teajs", "cache.db")); err != nil {
		t.Errorf("cache database not created: %v", err)
	}

	// A second engine on the same project starts warm.
	e2, _ := newEngine(t, m)
	if _, err := e2.Compile("fib.js", src); err != nil {
		t.Fatal(err)
	}
	if e2.Stats.Hits != 1 || e2.Stats.Compiled != 0 {
		t.Errorf("second engine Stats = %+v, want a hit", e2.Stats)
	}

	// Strict compilation must not reuse sloppy images.
	m.Runtime.Strict = true
	e3, _ := newEngine(t, m)
	if _, err := e3.Compile("fib.js", src); err != nil {
		t.Fatal(err)
	}
	if e3.Stats.Hits != 0 {
		t.Errorf("strict engine Stats = %+v, want a miss", e3.Stats)
	}
}

func TestCompileErrorsAreNotCached(t *testing.T) {
	m := manifest.Default(t.TempDir())
	m.Cache.Enabled = true
	e, _ := newEngine(t, m)
	if _, err := e.Compile("bad.js", `break;`); err == nil {
		t.Fatal("Compile succeeded")
	}
	if n, _ := e.Cache().Len(); n != 0 {
		t.Errorf("cache holds %d entries after a failed compile", n)
	}
}

func TestRunProject(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("teajs.toml", "[project]\nname = \"demo\"\n")
	write("src/a.js", "var parts = ['a'];")
	write("src/b.js", "parts.push('b'); parts.join('')")

	m, err := manifest.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	e, _ := newEngine(t, m)
	v, err := e.RunProject()
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := v.StringValue(); s != "ab" {
		t.Errorf("project result = %v, want ab", v)
	}

	m.Source.Entry = "src/a.js"
	e2, _ := newEngine(t, m)
	if _, err := e2.RunProject(); err != nil {
		t.Fatal(err)
	}
	if v, _ := e2.Runtime.GetGlobal("parts"); !v.IsObject() {
		t.Error("entry script did not run")
	}

	empty := manifest.Default(t.TempDir())
	e3, _ := newEngine(t, empty)
	if _, err := e3.RunProject(); err == nil {
		t.Error("RunProject without sources succeeded")
	}
}

func TestDisassemble(t *testing.T) {
	e, _ := newEngine(t, manifest.Default(t.TempDir()))
	listing, err := e.Disassemble("d.js", `var x = 1;`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(listing, "; === script d.js ===") || !strings.Contains(listing, "SETLOCAL") {
		t.Errorf("listing:\n%s", listing)
	}
}
