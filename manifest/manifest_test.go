package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "test-app"
version = "0.1.0"

[source]
dirs = ["src", "lib"]
entry = "src/main.js"

[runtime]
strict = true
trace = true
max-call-depth = 200
stack-limit = 4096

[cache]
enabled = true
path = "build/cache.db"

[log]
verbosity = 2
file = "teajs.log"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "test-app" {
		t.Errorf("project name = %q, want test-app", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	if len(m.Source.Dirs) != 2 {
		t.Errorf("source dirs count = %d, want 2", len(m.Source.Dirs))
	}
	if m.EntryPath() != filepath.Join(m.Dir, "src", "main.js") {
		t.Errorf("entry path = %q", m.EntryPath())
	}
	if !m.Runtime.Strict || !m.Runtime.Trace {
		t.Error("runtime flags not loaded")
	}
	if m.Runtime.MaxCallDepth != 200 || m.Runtime.StackLimit != 4096 {
		t.Errorf("runtime limits = %d, %d, want 200, 4096", m.Runtime.MaxCallDepth, m.Runtime.StackLimit)
	}
	if !m.Cache.Enabled || m.CachePath() != filepath.Join(m.Dir, "build", "cache.db") {
		t.Errorf("cache = %v at %q", m.Cache.Enabled, m.CachePath())
	}
	if m.Log.Verbosity != 2 {
		t.Errorf("log verbosity = %d, want 2", m.Log.Verbosity)
	}
	if f := m.LogFile(); f == nil || *f != filepath.Join(m.Dir, "teajs.log") {
		t.Errorf("log file = %v", f)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "src" {
		t.Errorf("default source dirs = %v, want [src]", m.Source.Dirs)
	}
	if m.Runtime.MaxCallDepth != 1000 {
		t.Errorf("default max call depth = %d, want 1000", m.Runtime.MaxCallDepth)
	}
	if m.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
	if m.LogFile() != nil {
		t.Error("default log file should be stderr")
	}
	if m.EntryPath() != "" {
		t.Errorf("default entry = %q, want none", m.EntryPath())
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Error("Load of a missing file succeeded")
	}

	writeManifest(t, dir, "[project\nname = ")
	if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Errorf("Load of bad TOML: err = %v", err)
	}

	writeManifest(t, dir, "[runtime]\nstrickt = true\n")
	if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "runtime.strickt") {
		t.Errorf("Load with unknown key: err = %v", err)
	}
}

func TestDefault(t *testing.T) {
	m := Default("/app")
	if m.Dir != "/app" || m.Source.Dirs[0] != "src" {
		t.Errorf("Default = %+v", m)
	}
	if m.CachePath() != filepath.Join("/app", ".teajs", "cache.db") {
		t.Errorf("default cache path = %q", m.CachePath())
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, `[project]
name = "found-project"
`)

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no teajs.toml exists")
	}
}

func TestSourceDirPaths(t *testing.T) {
	m := &Manifest{
		Dir: "/app",
		Source: Source{
			Dirs: []string{"src", "/abs/lib"},
		},
	}

	paths := m.SourceDirPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "/app/src" {
		t.Errorf("paths[0] = %q, want /app/src", paths[0])
	}
	if paths[1] != "/abs/lib" {
		t.Errorf("paths[1] = %q, want /abs/lib", paths[1])
	}
}

func TestSourceFiles(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"src/b.js", "src/a.js", "src/util/c.js", "src/notes.txt"} {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("1"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	m := Default(dir)
	m.Source.Dirs = append(m.Source.Dirs, "missing")

	files, err := m.SourceFiles()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"src/a.js", "src/b.js", "src/util/c.js"}
	if len(files) != len(want) {
		t.Fatalf("SourceFiles = %v, want %v", files, want)
	}
	for i, w := range want {
		if files[i] != filepath.Join(dir, w) {
			t.Errorf("files[%d] = %q, want %q", i, files[i], filepath.Join(dir, w))
		}
	}
}
