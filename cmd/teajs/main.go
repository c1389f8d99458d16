// teajs CLI - runs scripts, projects and an interactive prompt
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/kutil/util"

	"github.com/chazu/teajs/engine"
	"github.com/chazu/teajs/manifest"
	"github.com/chazu/teajs/vm"
)

func main() {
	configDir := flag.String("config", "", "Directory to search for teajs.toml (default: current directory)")
	disasm := flag.Bool("d", false, "Print bytecode instead of running")
	trace := flag.Bool("trace", false, "Trace every executed instruction")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides the manifest)")
	noCache := flag.Bool("no-cache", false, "Do not read or write the compiled-code cache")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: teajs [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the given scripts in one shared runtime. With no files, runs the\n")
		fmt.Fprintf(os.Stderr, "project described by teajs.toml, or starts a prompt if there is none.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  teajs hello.js           # Run a script\n")
		fmt.Fprintf(os.Stderr, "  teajs -d hello.js        # Show its bytecode\n")
		fmt.Fprintf(os.Stderr, "  teajs -config ./app      # Run the project in ./app\n")
	}
	flag.Parse()

	start := *configDir
	if start == "" {
		start = "."
	}
	m, err := manifest.FindAndLoad(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	hasManifest := m != nil
	if m == nil {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		m = manifest.Default(wd)
	}
	if *verbosity >= 0 {
		m.Log.Verbosity = *verbosity
	}
	if *trace {
		m.Runtime.Trace = true
	}
	if *noCache {
		m.Cache.Enabled = false
	}
	commonlog.Configure(m.Log.Verbosity, m.LogFile())

	e, err := engine.New(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		util.Exit(1)
	}
	code := run(e, flag.Args(), *disasm, hasManifest)
	e.Close()
	util.Exit(code)
}

func run(e *engine.Engine, files []string, disasm, hasManifest bool) int {
	switch {
	case disasm:
		return disassemble(e, files)
	case len(files) > 0:
		for _, path := range files {
			if _, err := e.RunFile(path); err != nil {
				return report(os.Stderr, err)
			}
		}
	case hasManifest:
		if _, err := e.RunProject(); err != nil {
			return report(os.Stderr, err)
		}
	default:
		repl(e, os.Stdin, os.Stdout)
	}
	return 0
}

func disassemble(e *engine.Engine, files []string) int {
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "Error: -d needs at least one file\n")
		return 1
	}
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		listing, err := e.Disassemble(path, string(src))
		if err != nil {
			return report(os.Stderr, err)
		}
		fmt.Print(listing)
	}
	return 0
}

// report prints err and returns the exit status for it: 2 for fatal
// runtime errors, 1 for everything else.
func report(w io.Writer, err error) int {
	var exc *vm.Exception
	if errors.As(err, &exc) {
		fmt.Fprintf(w, "Uncaught %s\n", exc.Value)
		for _, frame := range exc.Trace {
			fmt.Fprintf(w, "    at %s\n", frame)
		}
		return 1
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	var fatal *vm.FatalError
	if errors.As(err, &fatal) {
		return 2
	}
	return 1
}

// repl reads one line at a time and prints each non-undefined completion
// value. Errors are reported and the session continues.
func repl(e *engine.Engine, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "teajs - type .exit to quit")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ".exit" {
			return
		}
		result, err := e.Run("repl", line)
		if err != nil {
			report(out, err)
			continue
		}
		if !result.IsUndefined() {
			fmt.Fprintln(out, result)
		}
	}
}
