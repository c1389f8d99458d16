// Package engine is the host entry point: it wires configuration, the
// compiled-code cache, the compiler and a runtime with builtins installed.
package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/teajs/builtins"
	"github.com/chazu/teajs/cache"
	"github.com/chazu/teajs/compiler"
	"github.com/chazu/teajs/manifest"
	"github.com/chazu/teajs/vm"
	"github.com/chazu/teajs/vm/dist"
)

var log = commonlog.GetLogger("teajs.engine")

// Stats counts cache activity.
type Stats struct {
	Hits     int
	Misses   int
	Compiled int
}

// Engine runs scripts in one shared runtime. Globals defined by one script
// are visible to the next.
type Engine struct {
	Manifest *manifest.Manifest
	Runtime  *vm.Runtime
	Stats    Stats

	cache *cache.Store
}

// New creates an engine configured by m. A nil manifest means the
// defaults rooted at the working directory. Extra options are applied to
// the runtime after the configured ones.
func New(m *manifest.Manifest, opts ...vm.Option) (*Engine, error) {
	if m == nil {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		m = manifest.Default(wd)
	}

	rtOpts := []vm.Option{
		vm.WithMaxCallDepth(m.Runtime.MaxCallDepth),
		vm.WithStackLimit(m.Runtime.StackLimit),
		vm.WithTrace(m.Runtime.Trace),
	}
	rt := vm.NewRuntime(append(rtOpts, opts...)...)
	builtins.Install(rt)

	e := &Engine{Manifest: m, Runtime: rt}
	if m.Cache.Enabled {
		store, err := cache.Open(m.CachePath())
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		e.cache = store
	}
	log.Debugf("engine ready (runtime %s, cache %v)", rt.ID, m.Cache.Enabled)
	return e, nil
}

// Close releases the cache.
func (e *Engine) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

// Cache returns the compiled-code cache, or nil when caching is off.
func (e *Engine) Cache() *cache.Store { return e.cache }

// cacheKey hashes the source together with the compilation mode.
func (e *Engine) cacheKey(src string) [16]byte {
	if e.Manifest.Runtime.Strict {
		return dist.Hash("\x00strict\x00" + src)
	}
	return dist.Hash(src)
}

// Compile compiles a script, consulting the cache first. Cache failures
// are logged and fall back to compiling.
func (e *Engine) Compile(name, src string) (*vm.Function, error) {
	var key [16]byte
	if e.cache != nil {
		key = e.cacheKey(src)
		fn, err := e.cache.Get(key)
		switch {
		case err == nil:
			e.Stats.Hits++
			fn.Name = name
			return fn, nil
		case errors.Is(err, cache.ErrNotFound):
			e.Stats.Misses++
		default:
			e.Stats.Misses++
			log.Warningf("discarding cache entry for %s: %s", name, err)
			if err := e.cache.Delete(key); err != nil {
				log.Warningf("%s", err)
			}
		}
	}

	compile := compiler.Compile
	if e.Manifest.Runtime.Strict {
		compile = compiler.CompileStrict
	}
	fn, err := compile(name, src)
	if err != nil {
		return nil, err
	}
	e.Stats.Compiled++

	if e.cache != nil {
		if err := e.cache.Put(name, key, fn); err != nil {
			log.Warningf("caching %s: %s", name, err)
		}
	}
	return fn, nil
}

// Run compiles and runs a script and returns its completion value.
func (e *Engine) Run(name, src string) (vm.Value, error) {
	fn, err := e.Compile(name, src)
	if err != nil {
		return vm.Undefined, err
	}
	log.Debugf("running %s", name)
	return e.Runtime.RunScript(fn)
}

// RunFile runs the script at path.
func (e *Engine) RunFile(path string) (vm.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vm.Undefined, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return e.Run(path, string(data))
}

// RunProject runs the configured entry script, or every source file in
// order when no entry is set. It stops at the first error.
func (e *Engine) RunProject() (vm.Value, error) {
	if entry := e.Manifest.EntryPath(); entry != "" {
		return e.RunFile(entry)
	}
	files, err := e.Manifest.SourceFiles()
	if err != nil {
		return vm.Undefined, err
	}
	if len(files) == 0 {
		return vm.Undefined, fmt.Errorf("no source files in %v", e.Manifest.SourceDirPaths())
	}
	result := vm.Undefined
	for _, f := range files {
		if result, err = e.RunFile(f); err != nil {
			return vm.Undefined, err
		}
	}
	return result, nil
}

// Disassemble compiles a script and returns its listing.
func (e *Engine) Disassemble(name, src string) (string, error) {
	fn, err := e.Compile(name, src)
	if err != nil {
		return "", err
	}
	return vm.Disassemble(fn), nil
}
