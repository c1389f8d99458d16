package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/teajs/vm"
)

// ---------------------------------------------------------------------------
// Codegen: compile the AST to bytecode
// ---------------------------------------------------------------------------

var log = commonlog.GetLogger("teajs.compiler")

// Compiler holds the state of one function being compiled. Nested
// functions get their own Compiler sharing the error list.
type Compiler struct {
	file   string
	fn     *vm.Function
	scopes []*scope
	labels []string // labels waiting for the next loop or switch
	errors *ErrorList
}

// errorf records a compile error at n's line. Compilation continues so
// that one pass reports as many errors as possible.
func (c *Compiler) errorf(n *Node, format string, args ...any) {
	line := 0
	if n != nil {
		line = n.Line
	}
	*c.errors = append(*c.errors, &CompileError{File: c.file, Line: line, Msg: fmt.Sprintf(format, args...)})
}

// operand checks that a table index fits an instruction operand.
func (c *Compiler) operand(n *Node, what string, i int) uint16 {
	if i > vm.MaxOperand {
		c.errorf(n, "too many %s in %s (limit %d)", what, c.fn.Name, vm.MaxOperand+1)
		return 0
	}
	return uint16(i)
}

// Compile parses and compiles a script. The name is used for errors,
// tracebacks and the disassembly header.
func Compile(name, source string) (*vm.Function, error) {
	body, err := Parse(name, source)
	if err != nil {
		return nil, err
	}
	return compile(name, nil, body, true, false)
}

// CompileStrict is Compile with strict mode in force for the whole script,
// as if it began with a "use strict" directive.
func CompileStrict(name, source string) (*vm.Function, error) {
	body, err := Parse(name, source)
	if err != nil {
		return nil, err
	}
	return compile(name, nil, body, true, true)
}

// CompileFunctionSource compiles a function from parameter names and body
// text, the way the Function constructor does.
func CompileFunctionSource(name string, params []string, body string) (*vm.Function, error) {
	src := "(function (" + strings.Join(params, ", ") + ") {\n" + body + "\n})"
	block, err := Parse(name, src)
	if err != nil {
		return nil, err
	}
	if len(block.List) != 1 || block.List[0].Kind != NodeExprStmt || block.List[0].A.Kind != NodeFunction {
		return nil, &CompileError{File: name, Msg: "function body closes the function early"}
	}
	f := block.List[0].A
	names := make([]string, len(f.List))
	for i, p := range f.List {
		names[i] = p.String
	}
	return compile(name, names, f.A, false, false)
}

// CompileFunction compiles a parsed body. A script body keeps the value of
// its last top-level expression statement as its result; a function body
// binds params in order.
func CompileFunction(name string, params []string, body *Node, script bool) (*vm.Function, error) {
	return compile(name, params, body, script, false)
}

func compile(name string, params []string, body *Node, script, strict bool) (*vm.Function, error) {
	var errs ErrorList
	fn := compileBody(name, name, params, body, script, strict, &errs)
	if err := errs.Err(); err != nil {
		log.Debugf("%s: %d compile errors", name, len(errs))
		return nil, err
	}
	log.Debugf("compiled %s: %d words, %d functions", name, len(fn.Code), countFunctions(fn))
	return fn, nil
}

func countFunctions(fn *vm.Function) int {
	n := 1
	for _, f := range fn.Funcs {
		n += countFunctions(f)
	}
	return n
}

func compileBody(file, name string, params []string, body *Node, script, strict bool, errs *ErrorList) *vm.Function {
	if body == nil {
		body = &Node{Kind: NodeBlock}
	}
	c := &Compiler{file: file, fn: vm.NewFunction(name, script), errors: errs}
	fn := c.fn
	fn.Strict = strict || hasUseStrict(body)
	fn.NumParams = len(params)

	// Parameters occupy the first slots of the variable table. Repeated
	// names keep separate slots so arguments still line up; the last one
	// wins when bound.
	for _, p := range params {
		if fn.Strict && fn.VarIndex(p) >= 0 {
			c.errorf(body, "duplicate parameter %q in strict mode", p)
		}
		fn.Vars = append(fn.Vars, p)
	}
	for _, v := range hoistedNames(body) {
		fn.AddVar(v)
	}
	if !script {
		fn.UsesArguments = usesArguments(body)
	}
	c.operand(body, "variables", len(fn.Vars)-1)

	if script {
		// completion value slot
		fn.Emit(vm.OpUndef)
	}
	c.hoistFunctions(body.List)
	for _, s := range body.List {
		if script && s.Kind == NodeExprStmt {
			fn.MarkLine(s.Line)
			c.expression(s.A)
			fn.Emit(vm.OpRot2)
			fn.Emit(vm.OpPop)
			continue
		}
		c.statement(s)
	}
	if !script {
		fn.Emit(vm.OpUndef)
	}
	fn.Emit(vm.OpReturn)
	return fn
}

// hoistFunctions binds the function declarations of a statement list at
// the point the list is entered.
func (c *Compiler) hoistFunctions(list []*Node) {
	for _, d := range functionDecls(list) {
		c.closure(d.A, false)
		c.emitVar(d, vm.OpSetLocal, vm.OpSetVar, d.A.String)
		c.fn.Emit(vm.OpPop)
	}
}

// closure compiles a function literal as a child and emits CLOSURE.
func (c *Compiler) closure(n *Node, expression bool) {
	params := make([]string, len(n.List))
	for i, p := range n.List {
		params[i] = p.String
	}
	sub := compileBody(c.file, n.String, params, n.A, false, c.fn.Strict, c.errors)
	sub.Expression = expression && n.String != ""
	idx := c.fn.AddFunc(sub)
	c.fn.EmitArg(vm.OpClosure, c.operand(n, "functions", idx))
}

// emitVar emits the slot form of a variable instruction when the name is
// in this function's variable table and the string form otherwise. Both
// forms resolve through the environment chain at run time.
func (c *Compiler) emitVar(n *Node, local, named vm.Opcode, name string) {
	if i := c.fn.VarIndex(name); i >= 0 {
		c.fn.EmitArg(local, uint16(i))
		return
	}
	c.fn.EmitArg(named, c.str(n, name))
}

func (c *Compiler) str(n *Node, s string) uint16 {
	return c.operand(n, "strings", c.fn.AddString(s))
}

// emitNumber uses the inline INTEGER form for values that fit a signed
// 16-bit word.
func (c *Compiler) emitNumber(n *Node, f float64) {
	if f == math.Trunc(f) && f >= math.MinInt16 && f <= math.MaxInt16 && !(f == 0 && math.Signbit(f)) {
		c.fn.EmitArg(vm.OpInteger, uint16(int16(f)))
		return
	}
	c.fn.EmitArg(vm.OpNumber, c.operand(n, "numbers", c.fn.AddNumber(f)))
}
