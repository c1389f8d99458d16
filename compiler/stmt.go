package compiler

import (
	"slices"

	"github.com/chazu/teajs/vm"
)

// ---------------------------------------------------------------------------
// Statements
//
// Statements leave the stack as they found it.
// ---------------------------------------------------------------------------

func (c *Compiler) statement(n *Node) {
	if n == nil {
		return
	}
	fn := c.fn
	fn.MarkLine(n.Line)
	switch n.Kind {
	case NodeEmpty, NodeFunDecl:
		// declarations are bound when their enclosing list is entered
	case NodeBlock:
		c.hoistFunctions(n.List)
		for _, s := range n.List {
			c.statement(s)
		}
	case NodeExprStmt:
		c.expression(n.A)
		fn.Emit(vm.OpPop)
	case NodeVarDecl:
		c.varDecl(n)
	case NodeIf:
		c.expression(n.A)
		alt := fn.EmitJump(vm.OpJFalse)
		c.statement(n.B)
		if n.C == nil {
			fn.PatchJumpHere(alt)
			return
		}
		end := fn.EmitJump(vm.OpJump)
		fn.PatchJumpHere(alt)
		c.statement(n.C)
		fn.PatchJumpHere(end)
	case NodeWhile:
		c.whileStatement(n)
	case NodeDo:
		c.doStatement(n)
	case NodeFor:
		c.forStatement(n)
	case NodeForIn:
		c.forInStatement(n)
	case NodeSwitch:
		c.switchStatement(n)
	case NodeTry:
		c.tryStatement(n)
	case NodeLabel:
		c.labelStatement(n)
	case NodeBreak, NodeContinue:
		c.jump(n)
	case NodeReturn:
		if fn.Script {
			c.errorf(n, "return outside of function")
			return
		}
		c.expression(n.A)
		c.unwind(-1, true)
		fn.Emit(vm.OpReturn)
	case NodeThrow:
		c.expression(n.A)
		fn.Emit(vm.OpThrow)
	case NodeWith:
		if fn.Strict {
			c.errorf(n, "with statement in strict mode")
			return
		}
		c.expression(n.A)
		fn.Emit(vm.OpWith)
		s := c.pushScope(scopeWith, nil)
		c.statement(n.B)
		c.popScope(s, -1, fn.Here())
		fn.Emit(vm.OpEndWith)
	case NodeDebugger:
		fn.Emit(vm.OpDebugger)
	default:
		c.errorf(n, "unexpected %s in statement", n.Kind)
	}
}

func (c *Compiler) varDecl(n *Node) {
	for _, v := range n.List {
		if v.A == nil {
			continue
		}
		if c.fn.Strict && (v.String == "eval" || v.String == "arguments") {
			c.errorf(v, "cannot declare %s in strict mode", v.String)
		}
		c.fn.MarkLine(v.Line)
		c.expression(v.A)
		c.emitVar(v, vm.OpSetLocal, vm.OpSetVar, v.String)
		c.fn.Emit(vm.OpPop)
	}
}

// ---------------------------------------------------------------------------
// Loops
// ---------------------------------------------------------------------------

func (c *Compiler) whileStatement(n *Node) {
	fn := c.fn
	labels := c.takeLabels()
	top := fn.Here()
	c.expression(n.A)
	exit := fn.EmitJump(vm.OpJFalse)
	s := c.pushScope(scopeWhile, labels)
	s.start = top
	c.statement(n.B)
	fn.EmitJumpTo(vm.OpJump, top)
	c.popScope(s, top, fn.Here())
	fn.PatchJumpHere(exit)
}

func (c *Compiler) doStatement(n *Node) {
	fn := c.fn
	s := c.pushScope(scopeDo, c.takeLabels())
	top := fn.Here()
	c.statement(n.A)
	cont := fn.Here()
	c.expression(n.B)
	fn.EmitJumpTo(vm.OpJTrue, top)
	c.popScope(s, cont, fn.Here())
}

func (c *Compiler) forStatement(n *Node) {
	fn := c.fn
	labels := c.takeLabels()
	switch {
	case n.A == nil:
	case n.A.Kind == NodeVarDecl:
		c.varDecl(n.A)
	default:
		c.expression(n.A)
		fn.Emit(vm.OpPop)
	}
	top := fn.Here()
	exit := -1
	if n.B != nil {
		c.expression(n.B)
		exit = fn.EmitJump(vm.OpJFalse)
	}
	s := c.pushScope(scopeFor, labels)
	s.start = top
	c.statement(n.D)
	cont := fn.Here()
	if n.C != nil {
		c.expression(n.C)
		fn.Emit(vm.OpPop)
	}
	fn.EmitJumpTo(vm.OpJump, top)
	c.popScope(s, cont, fn.Here())
	if exit >= 0 {
		fn.PatchJumpHere(exit)
	}
}

// forInStatement keeps the iterator on the stack for the whole loop. A
// break lands on the POP that discards it; normal exhaustion is handled
// by NEXTITER, which pops the iterator itself.
func (c *Compiler) forInStatement(n *Node) {
	fn := c.fn
	labels := c.takeLabels()
	target := n.A
	if target.Kind == NodeVarDecl {
		c.varDecl(target)
	}
	c.expression(n.B)
	fn.Emit(vm.OpIterator)
	next := fn.Here()
	fn.Emit(vm.OpNextIter)
	done := fn.EmitJump(vm.OpJFalse)
	if target.Kind == NodeVarDecl {
		v := target.List[0]
		c.emitVar(v, vm.OpSetLocal, vm.OpSetVar, v.String)
	} else {
		c.assignTop(target)
	}
	fn.Emit(vm.OpPop)
	s := c.pushScope(scopeForIn, labels)
	s.start = next
	c.statement(n.C)
	fn.EmitJumpTo(vm.OpJump, next)
	exit := fn.Here()
	fn.Emit(vm.OpPop)
	c.popScope(s, next, exit)
	fn.PatchJumpHere(done)
}

// ---------------------------------------------------------------------------
// Switch and labels
// ---------------------------------------------------------------------------

// switchStatement tests every case in order with JCASE, which consumes
// the discriminant on a match. When nothing matches the discriminant is
// dropped and control goes to default or past the statement.
func (c *Compiler) switchStatement(n *Node) {
	fn := c.fn
	labels := c.takeLabels()
	for _, cs := range n.List {
		c.hoistFunctions(cs.List)
	}
	c.expression(n.A)
	entries := make([]int, len(n.List))
	def := -1
	for i, cs := range n.List {
		if cs.Kind == NodeDefault {
			if def >= 0 {
				c.errorf(cs, "more than one default clause in switch")
			}
			def = i
			continue
		}
		c.expression(cs.A)
		entries[i] = fn.EmitJump(vm.OpJCase)
	}
	fn.Emit(vm.OpPop)
	noMatch := fn.EmitJump(vm.OpJump)

	s := c.pushScope(scopeSwitch, labels)
	for i, cs := range n.List {
		if i == def {
			fn.PatchJumpHere(noMatch)
		} else {
			fn.PatchJumpHere(entries[i])
		}
		for _, st := range cs.List {
			c.statement(st)
		}
	}
	exit := fn.Here()
	if def < 0 {
		fn.PatchJump(noMatch, exit)
	}
	c.popScope(s, -1, exit)
}

// labelStatement hands its labels to a directly enclosed loop or switch.
// Any other statement gets a scope that only break can target.
func (c *Compiler) labelStatement(n *Node) {
	var labels []string
	for n.Kind == NodeLabel {
		if c.labelInUse(n.String) || slices.Contains(labels, n.String) {
			c.errorf(n, "label %q already declared", n.String)
		}
		labels = append(labels, n.String)
		n = n.A
	}
	if n.Kind.isLoop() || n.Kind == NodeSwitch {
		c.labels = labels
		c.statement(n)
		return
	}
	s := c.pushScope(scopeLabel, labels)
	c.statement(n)
	c.popScope(s, -1, c.fn.Here())
}

// ---------------------------------------------------------------------------
// Exceptions
// ---------------------------------------------------------------------------

// tryStatement installs one handler per clause. With both catch and
// finally the outer handler runs the finally block for exceptions that
// escape the catch block, then rethrows. The finally block is also inlined
// on the normal exit of each region and before every jump leaving it.
func (c *Compiler) tryStatement(n *Node) {
	fn := c.fn
	block, catchName, catchBlock, finally := n.A, n.String, n.B, n.C
	var ends []int

	switch {
	case catchBlock != nil && finally != nil:
		outer := fn.EmitJump(vm.OpTry)
		inner := fn.EmitJump(vm.OpTry)
		c.tryRegion(block, 2, finally)
		fn.Emit(vm.OpEndTry)
		fn.Emit(vm.OpEndTry)
		c.statement(finally)
		ends = append(ends, fn.EmitJump(vm.OpJump))

		fn.PatchJumpHere(inner)
		c.catchClause(catchName, catchBlock, 1, finally)
		fn.Emit(vm.OpEndTry)
		c.statement(finally)
		ends = append(ends, fn.EmitJump(vm.OpJump))

		fn.PatchJumpHere(outer)
		c.statement(finally)
		fn.Emit(vm.OpThrow)

	case catchBlock != nil:
		inner := fn.EmitJump(vm.OpTry)
		c.tryRegion(block, 1, nil)
		fn.Emit(vm.OpEndTry)
		ends = append(ends, fn.EmitJump(vm.OpJump))

		fn.PatchJumpHere(inner)
		c.catchClause(catchName, catchBlock, 0, nil)

	default:
		outer := fn.EmitJump(vm.OpTry)
		c.tryRegion(block, 1, finally)
		fn.Emit(vm.OpEndTry)
		c.statement(finally)
		ends = append(ends, fn.EmitJump(vm.OpJump))

		fn.PatchJumpHere(outer)
		c.statement(finally)
		fn.Emit(vm.OpThrow)
	}
	for _, pos := range ends {
		fn.PatchJumpHere(pos)
	}
}

func (c *Compiler) tryRegion(block *Node, handlers int, finally *Node) {
	s := c.pushScope(scopeTry, nil)
	s.handlers = handlers
	s.finally = finally
	c.statement(block)
	c.popScope(s, -1, c.fn.Here())
}

// catchClause binds the exception on top of the stack. A clause without a
// parameter just drops it.
func (c *Compiler) catchClause(name string, block *Node, handlers int, finally *Node) {
	fn := c.fn
	if name == "" {
		fn.Emit(vm.OpPop)
	} else {
		if fn.Strict && (name == "eval" || name == "arguments") {
			c.errorf(block, "cannot bind %s in strict mode", name)
		}
		fn.EmitArg(vm.OpCatch, c.str(block, name))
	}
	s := c.pushScope(scopeCatch, nil)
	s.handlers = handlers
	s.finally = finally
	s.bound = name != ""
	c.statement(block)
	c.popScope(s, -1, fn.Here())
	if name != "" {
		fn.Emit(vm.OpEndCatch)
	}
}
