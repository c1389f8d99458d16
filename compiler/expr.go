package compiler

import "github.com/chazu/teajs/vm"

// ---------------------------------------------------------------------------
// Expressions
//
// Every expression leaves exactly one value on the stack.
// ---------------------------------------------------------------------------

var binaryOpcodes = map[NodeKind]vm.Opcode{
	NodeMul: vm.OpMul, NodeDiv: vm.OpDiv, NodeMod: vm.OpMod,
	NodeAdd: vm.OpAdd, NodeSub: vm.OpSub,
	NodeShl: vm.OpShl, NodeShr: vm.OpShr, NodeUShr: vm.OpUShr,
	NodeLt: vm.OpLt, NodeGt: vm.OpGt, NodeLe: vm.OpLe, NodeGe: vm.OpGe,
	NodeEq: vm.OpEq, NodeNe: vm.OpNe, NodeStrictEq: vm.OpStrictEq, NodeStrictNe: vm.OpStrictNe,
	NodeBitAnd: vm.OpBitAnd, NodeBitXor: vm.OpBitXor, NodeBitOr: vm.OpBitOr,
	NodeInstanceOf: vm.OpInstanceOf, NodeIn: vm.OpIn,
}

var unaryOpcodes = map[NodeKind]vm.Opcode{
	NodePos: vm.OpPos, NodeNeg: vm.OpNeg, NodeBitNot: vm.OpBitNot, NodeLogNot: vm.OpLogNot,
}

func (c *Compiler) expression(n *Node) {
	if n == nil {
		c.fn.Emit(vm.OpUndef)
		return
	}
	fn := c.fn
	switch n.Kind {
	case NodeIdentifier:
		c.emitVar(n, vm.OpGetLocal, vm.OpGetVar, n.String)
	case NodeNumber:
		c.emitNumber(n, n.Number)
	case NodeString:
		fn.EmitArg(vm.OpString, c.str(n, n.String))
	case NodeTrue:
		fn.Emit(vm.OpTrue)
	case NodeFalse:
		fn.Emit(vm.OpFalse)
	case NodeNull:
		fn.Emit(vm.OpNull)
	case NodeThis:
		fn.Emit(vm.OpThis)
	case NodeArray:
		fn.Emit(vm.OpNewArray)
		for i, e := range n.List {
			c.emitNumber(n, float64(i))
			c.expression(e)
			fn.Emit(vm.OpInitProp)
		}
	case NodeObject:
		c.objectLiteral(n)
	case NodeFunction:
		c.closure(n, true)
	case NodeMember:
		c.expression(n.A)
		fn.EmitArg(vm.OpGetPropS, c.str(n, n.String))
	case NodeIndex:
		c.expression(n.A)
		c.expression(n.B)
		fn.Emit(vm.OpGetProp)
	case NodeCall:
		c.call(n)
	case NodeNew:
		c.expression(n.A)
		c.arguments(n)
		fn.EmitArg(vm.OpNew, c.operand(n, "arguments", len(n.List)))
	case NodePreInc, NodePreDec, NodePostInc, NodePostDec:
		c.update(n)
	case NodeDelete:
		c.delete(n)
	case NodeVoid:
		c.expression(n.A)
		fn.Emit(vm.OpPop)
		fn.Emit(vm.OpUndef)
	case NodeTypeof:
		if n.A.Kind == NodeIdentifier {
			// an unresolvable name is "undefined", not an error
			fn.EmitArg(vm.OpHasVar, c.str(n, n.A.String))
		} else {
			c.expression(n.A)
		}
		fn.Emit(vm.OpTypeof)
	case NodePos, NodeNeg, NodeBitNot, NodeLogNot:
		c.expression(n.A)
		fn.Emit(unaryOpcodes[n.Kind])
	case NodeLogAnd, NodeLogOr:
		jump := vm.OpJFalse
		if n.Kind == NodeLogOr {
			jump = vm.OpJTrue
		}
		c.expression(n.A)
		fn.Emit(vm.OpDup)
		pos := fn.EmitJump(jump)
		fn.Emit(vm.OpPop)
		c.expression(n.B)
		fn.PatchJumpHere(pos)
	case NodeCond:
		c.expression(n.A)
		alt := fn.EmitJump(vm.OpJFalse)
		c.expression(n.B)
		end := fn.EmitJump(vm.OpJump)
		fn.PatchJumpHere(alt)
		c.expression(n.C)
		fn.PatchJumpHere(end)
	case NodeAssign:
		c.assign(n)
	case NodeComma:
		for i, e := range n.List {
			if i > 0 {
				fn.Emit(vm.OpPop)
			}
			c.expression(e)
		}
	default:
		if op, ok := binaryOpcodes[n.Kind]; ok {
			c.expression(n.A)
			c.expression(n.B)
			fn.Emit(op)
			return
		}
		c.errorf(n, "unexpected %s in expression", n.Kind)
		fn.Emit(vm.OpUndef)
	}
}

func (c *Compiler) objectLiteral(n *Node) {
	c.fn.Emit(vm.OpNewObject)
	for _, p := range n.List {
		switch p.A.Kind {
		case NodeString:
			c.fn.EmitArg(vm.OpString, c.str(p, p.A.String))
		case NodeNumber:
			c.emitNumber(p, p.A.Number)
		default:
			c.expression(p.A)
		}
		switch p.Kind {
		case NodeGetter:
			c.closure(p.B, false)
			c.fn.Emit(vm.OpInitGetter)
		case NodeSetter:
			c.closure(p.B, false)
			c.fn.Emit(vm.OpInitSetter)
		default:
			c.expression(p.B)
			c.fn.Emit(vm.OpInitProp)
		}
	}
}

func (c *Compiler) arguments(n *Node) {
	for _, a := range n.List {
		c.expression(a)
	}
}

// call pushes callee, this and the arguments. A member callee is
// evaluated once and supplies this.
func (c *Compiler) call(n *Node) {
	fn := c.fn
	callee := n.A
	switch callee.Kind {
	case NodeMember:
		c.expression(callee.A)
		fn.Emit(vm.OpDup)
		fn.EmitArg(vm.OpGetPropS, c.str(callee, callee.String))
		fn.Emit(vm.OpRot2)
	case NodeIndex:
		c.expression(callee.A)
		fn.Emit(vm.OpDup)
		c.expression(callee.B)
		fn.Emit(vm.OpGetProp)
		fn.Emit(vm.OpRot2)
	default:
		c.expression(callee)
		fn.Emit(vm.OpUndef)
	}
	c.arguments(n)
	fn.EmitArg(vm.OpCall, c.operand(n, "arguments", len(n.List)))
}

func (c *Compiler) checkAssignable(n *Node) bool {
	if !isReference(n) {
		c.errorf(n, "invalid assignment target")
		return false
	}
	if c.fn.Strict && n.Kind == NodeIdentifier && (n.String == "eval" || n.String == "arguments") {
		c.errorf(n, "cannot assign to %s in strict mode", n.String)
		return false
	}
	return true
}

func (c *Compiler) assign(n *Node) {
	fn := c.fn
	target := n.A
	if !c.checkAssignable(target) {
		fn.Emit(vm.OpUndef)
		return
	}
	if n.Op == NodeInvalid {
		switch target.Kind {
		case NodeIdentifier:
			c.expression(n.B)
			c.emitVar(target, vm.OpSetLocal, vm.OpSetVar, target.String)
		case NodeMember:
			c.expression(target.A)
			c.expression(n.B)
			fn.EmitArg(vm.OpSetPropS, c.str(target, target.String))
		case NodeIndex:
			c.expression(target.A)
			c.expression(target.B)
			c.expression(n.B)
			fn.Emit(vm.OpSetProp)
		}
		return
	}
	op, ok := binaryOpcodes[n.Op]
	if !ok {
		c.errorf(n, "unexpected compound operator %s", n.Op)
		op = vm.OpAdd
	}
	switch target.Kind {
	case NodeIdentifier:
		c.emitVar(target, vm.OpGetLocal, vm.OpGetVar, target.String)
		c.expression(n.B)
		fn.Emit(op)
		c.emitVar(target, vm.OpSetLocal, vm.OpSetVar, target.String)
	case NodeMember:
		name := c.str(target, target.String)
		c.expression(target.A)
		fn.Emit(vm.OpDup)
		fn.EmitArg(vm.OpGetPropS, name)
		c.expression(n.B)
		fn.Emit(op)
		fn.EmitArg(vm.OpSetPropS, name)
	case NodeIndex:
		c.expression(target.A)
		c.expression(target.B)
		fn.Emit(vm.OpDup2)
		fn.Emit(vm.OpGetProp)
		c.expression(n.B)
		fn.Emit(op)
		fn.Emit(vm.OpSetProp)
	}
}

// assignTop stores the value on top of the stack into target, leaving the
// value in place.
func (c *Compiler) assignTop(target *Node) {
	fn := c.fn
	if !c.checkAssignable(target) {
		return
	}
	switch target.Kind {
	case NodeIdentifier:
		c.emitVar(target, vm.OpSetLocal, vm.OpSetVar, target.String)
	case NodeMember:
		c.expression(target.A)
		fn.Emit(vm.OpRot2)
		fn.EmitArg(vm.OpSetPropS, c.str(target, target.String))
	case NodeIndex:
		c.expression(target.A)
		c.expression(target.B)
		fn.Emit(vm.OpRot3)
		fn.Emit(vm.OpRot3)
		fn.Emit(vm.OpSetProp)
	}
}

// update compiles ++ and --. The postfix forms use POSTINC/POSTDEC, which
// leave the new value under the old one; the old value is rotated below
// the reference before storing.
func (c *Compiler) update(n *Node) {
	fn := c.fn
	target := n.A
	if !c.checkAssignable(target) {
		fn.Emit(vm.OpUndef)
		return
	}
	var op vm.Opcode
	switch n.Kind {
	case NodePreInc:
		op = vm.OpInc
	case NodePreDec:
		op = vm.OpDec
	case NodePostInc:
		op = vm.OpPostInc
	case NodePostDec:
		op = vm.OpPostDec
	}
	postfix := n.Kind == NodePostInc || n.Kind == NodePostDec
	switch target.Kind {
	case NodeIdentifier:
		c.emitVar(target, vm.OpGetLocal, vm.OpGetVar, target.String)
		fn.Emit(op)
		if postfix {
			fn.Emit(vm.OpRot2)
		}
		c.emitVar(target, vm.OpSetLocal, vm.OpSetVar, target.String)
	case NodeMember:
		name := c.str(target, target.String)
		c.expression(target.A)
		fn.Emit(vm.OpDup)
		fn.EmitArg(vm.OpGetPropS, name)
		fn.Emit(op)
		if postfix {
			fn.Emit(vm.OpRot3)
		}
		fn.EmitArg(vm.OpSetPropS, name)
	case NodeIndex:
		c.expression(target.A)
		c.expression(target.B)
		fn.Emit(vm.OpDup2)
		fn.Emit(vm.OpGetProp)
		fn.Emit(op)
		if postfix {
			fn.Emit(vm.OpRot4)
		}
		fn.Emit(vm.OpSetProp)
	}
	if postfix {
		fn.Emit(vm.OpPop)
	}
}

func (c *Compiler) delete(n *Node) {
	fn := c.fn
	target := n.A
	switch target.Kind {
	case NodeIdentifier:
		if fn.Strict {
			c.errorf(n, "delete of an unqualified identifier in strict mode")
		}
		c.emitVar(target, vm.OpDelLocal, vm.OpDelVar, target.String)
	case NodeMember:
		c.expression(target.A)
		fn.EmitArg(vm.OpDelPropS, c.str(target, target.String))
	case NodeIndex:
		c.expression(target.A)
		c.expression(target.B)
		fn.Emit(vm.OpDelProp)
	default:
		c.expression(target)
		fn.Emit(vm.OpPop)
		fn.Emit(vm.OpTrue)
	}
}
