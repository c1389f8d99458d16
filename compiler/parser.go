package compiler

import (
	"fmt"
	"sort"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"

	"github.com/chazu/teajs/vm"
)

// ---------------------------------------------------------------------------
// Parser adapter
//
// Tokenizing and parsing are done by the goja parser. This file converts
// its syntax tree into Node, rejecting constructs the engine does not
// implement.
// ---------------------------------------------------------------------------

// Parse parses a script and returns its body as a NodeBlock.
func Parse(name, source string) (*Node, error) {
	prog, err := parser.ParseFile(nil, name, source, 0)
	if err != nil {
		return nil, &CompileError{File: name, Msg: fmt.Sprintf("syntax error: %v", err)}
	}
	cv := newConverter(name, source)
	body := &Node{Kind: NodeBlock, Line: 1, List: cv.statements(prog.Body)}
	if err := cv.errors.Err(); err != nil {
		return nil, err
	}
	return body, nil
}

type converter struct {
	file       string
	lineStarts []int
	errors     ErrorList
}

func newConverter(file, source string) *converter {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &converter{file: file, lineStarts: starts}
}

// line maps a goja position (1-based byte offset) to a 1-based line.
func (cv *converter) line(n ast.Node) int {
	offset := int(n.Idx0()) - 1
	return sort.Search(len(cv.lineStarts), func(i int) bool {
		return cv.lineStarts[i] > offset
	})
}

func (cv *converter) unsupported(line int, what string) *Node {
	cv.errors = append(cv.errors, &CompileError{File: cv.file, Line: line, Msg: what + " is not supported"})
	return &Node{Kind: NodeEmpty, Line: line}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (cv *converter) statements(list []ast.Statement) []*Node {
	nodes := make([]*Node, 0, len(list))
	for _, s := range list {
		nodes = append(nodes, cv.statement(s))
	}
	return nodes
}

func (cv *converter) block(b *ast.BlockStatement) *Node {
	if b == nil {
		return nil
	}
	return &Node{Kind: NodeBlock, Line: cv.line(b), List: cv.statements(b.List)}
}

func (cv *converter) statement(s ast.Statement) *Node {
	line := cv.line(s)
	switch s := s.(type) {
	case *ast.BlockStatement:
		return cv.block(s)
	case *ast.EmptyStatement:
		return &Node{Kind: NodeEmpty, Line: line}
	case *ast.ExpressionStatement:
		return &Node{Kind: NodeExprStmt, Line: line, A: cv.expression(s.Expression)}
	case *ast.VariableStatement:
		return cv.varDecl(line, s.List)
	case *ast.LexicalDeclaration:
		return cv.varDecl(line, s.List)
	case *ast.FunctionDeclaration:
		return &Node{Kind: NodeFunDecl, Line: line, A: cv.function(s.Function)}
	case *ast.IfStatement:
		n := &Node{Kind: NodeIf, Line: line, A: cv.expression(s.Test), B: cv.statement(s.Consequent)}
		if s.Alternate != nil {
			n.C = cv.statement(s.Alternate)
		}
		return n
	case *ast.DoWhileStatement:
		return &Node{Kind: NodeDo, Line: line, A: cv.statement(s.Body), B: cv.expression(s.Test)}
	case *ast.WhileStatement:
		return &Node{Kind: NodeWhile, Line: line, A: cv.expression(s.Test), B: cv.statement(s.Body)}
	case *ast.ForStatement:
		return cv.forStatement(line, s)
	case *ast.ForInStatement:
		return cv.forInStatement(line, s)
	case *ast.SwitchStatement:
		n := &Node{Kind: NodeSwitch, Line: line, A: cv.expression(s.Discriminant)}
		for _, cs := range s.Body {
			c := &Node{Kind: NodeDefault, Line: cv.line(cs), List: cv.statements(cs.Consequent)}
			if cs.Test != nil {
				c.Kind = NodeCase
				c.A = cv.expression(cs.Test)
			}
			n.List = append(n.List, c)
		}
		return n
	case *ast.TryStatement:
		n := &Node{Kind: NodeTry, Line: line, A: cv.block(s.Body), C: cv.block(s.Finally)}
		if s.Catch != nil {
			switch p := s.Catch.Parameter.(type) {
			case nil:
			case *ast.Identifier:
				n.String = string(p.Name)
			default:
				cv.unsupported(line, "destructuring catch parameter")
			}
			n.B = cv.block(s.Catch.Body)
		}
		return n
	case *ast.LabelledStatement:
		return &Node{Kind: NodeLabel, Line: line, String: string(s.Label.Name), A: cv.statement(s.Statement)}
	case *ast.BranchStatement:
		n := &Node{Kind: NodeBreak, Line: line}
		if s.Token == token.CONTINUE {
			n.Kind = NodeContinue
		}
		if s.Label != nil {
			n.String = string(s.Label.Name)
		}
		return n
	case *ast.ReturnStatement:
		n := &Node{Kind: NodeReturn, Line: line}
		if s.Argument != nil {
			n.A = cv.expression(s.Argument)
		}
		return n
	case *ast.ThrowStatement:
		return &Node{Kind: NodeThrow, Line: line, A: cv.expression(s.Argument)}
	case *ast.WithStatement:
		return &Node{Kind: NodeWith, Line: line, A: cv.expression(s.Object), B: cv.statement(s.Body)}
	case *ast.DebuggerStatement:
		return &Node{Kind: NodeDebugger, Line: line}
	case *ast.ForOfStatement:
		return cv.unsupported(line, "for-of")
	}
	return cv.unsupported(line, fmt.Sprintf("statement %T", s))
}

func (cv *converter) varDecl(line int, list []*ast.Binding) *Node {
	n := &Node{Kind: NodeVarDecl, Line: line}
	for _, b := range list {
		id, ok := b.Target.(*ast.Identifier)
		if !ok {
			cv.unsupported(line, "destructuring declaration")
			continue
		}
		init := &Node{Kind: NodeVarInit, Line: cv.line(id), String: string(id.Name)}
		if b.Initializer != nil {
			init.A = cv.expression(b.Initializer)
		}
		n.List = append(n.List, init)
	}
	return n
}

func (cv *converter) forStatement(line int, s *ast.ForStatement) *Node {
	n := &Node{Kind: NodeFor, Line: line, D: cv.statement(s.Body)}
	switch init := s.Initializer.(type) {
	case nil:
	case *ast.ForLoopInitializerExpression:
		n.A = cv.expression(init.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		n.A = cv.varDecl(line, init.List)
	case *ast.ForLoopInitializerLexicalDecl:
		n.A = cv.varDecl(line, init.LexicalDeclaration.List)
	default:
		cv.unsupported(line, fmt.Sprintf("for initializer %T", init))
	}
	if s.Test != nil {
		n.B = cv.expression(s.Test)
	}
	if s.Update != nil {
		n.C = cv.expression(s.Update)
	}
	return n
}

func (cv *converter) forInStatement(line int, s *ast.ForInStatement) *Node {
	n := &Node{Kind: NodeForIn, Line: line, B: cv.expression(s.Source), C: cv.statement(s.Body)}
	switch into := s.Into.(type) {
	case *ast.ForIntoVar:
		n.A = cv.varDecl(line, []*ast.Binding{into.Binding})
	case *ast.ForDeclaration:
		id, ok := into.Target.(*ast.Identifier)
		if !ok {
			return cv.unsupported(line, "destructuring for-in target")
		}
		n.A = &Node{Kind: NodeVarDecl, Line: line, List: []*Node{
			{Kind: NodeVarInit, Line: line, String: string(id.Name)},
		}}
	case *ast.ForIntoExpression:
		n.A = cv.expression(into.Expression)
	default:
		return cv.unsupported(line, fmt.Sprintf("for-in target %T", into))
	}
	return n
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

var binaryOps = map[token.Token]NodeKind{
	token.MULTIPLY:             NodeMul,
	token.SLASH:                NodeDiv,
	token.REMAINDER:            NodeMod,
	token.PLUS:                 NodeAdd,
	token.MINUS:                NodeSub,
	token.SHIFT_LEFT:           NodeShl,
	token.SHIFT_RIGHT:          NodeShr,
	token.UNSIGNED_SHIFT_RIGHT: NodeUShr,
	token.LESS:                 NodeLt,
	token.GREATER:              NodeGt,
	token.LESS_OR_EQUAL:        NodeLe,
	token.GREATER_OR_EQUAL:     NodeGe,
	token.EQUAL:                NodeEq,
	token.NOT_EQUAL:            NodeNe,
	token.STRICT_EQUAL:         NodeStrictEq,
	token.STRICT_NOT_EQUAL:     NodeStrictNe,
	token.AND:                  NodeBitAnd,
	token.EXCLUSIVE_OR:         NodeBitXor,
	token.OR:                   NodeBitOr,
	token.INSTANCEOF:           NodeInstanceOf,
	token.IN:                   NodeIn,
	token.LOGICAL_AND:          NodeLogAnd,
	token.LOGICAL_OR:           NodeLogOr,
}

var unaryOps = map[token.Token]NodeKind{
	token.DELETE:      NodeDelete,
	token.VOID:        NodeVoid,
	token.TYPEOF:      NodeTypeof,
	token.PLUS:        NodePos,
	token.MINUS:       NodeNeg,
	token.BITWISE_NOT: NodeBitNot,
	token.NOT:         NodeLogNot,
}

func (cv *converter) expressions(list []ast.Expression) []*Node {
	nodes := make([]*Node, 0, len(list))
	for _, e := range list {
		if _, ok := e.(*ast.SpreadElement); ok {
			cv.unsupported(cv.line(e), "spread")
			continue
		}
		nodes = append(nodes, cv.expression(e))
	}
	return nodes
}

func (cv *converter) expression(e ast.Expression) *Node {
	line := cv.line(e)
	switch e := e.(type) {
	case *ast.Identifier:
		return &Node{Kind: NodeIdentifier, Line: line, String: string(e.Name)}
	case *ast.NumberLiteral:
		n := &Node{Kind: NodeNumber, Line: line}
		switch v := e.Value.(type) {
		case int64:
			n.Number = float64(v)
		case float64:
			n.Number = v
		default:
			n.Number = vm.StringToNumber(e.Literal)
		}
		return n
	case *ast.StringLiteral:
		return &Node{Kind: NodeString, Line: line, String: string(e.Value)}
	case *ast.BooleanLiteral:
		if e.Value {
			return &Node{Kind: NodeTrue, Line: line}
		}
		return &Node{Kind: NodeFalse, Line: line}
	case *ast.NullLiteral:
		return &Node{Kind: NodeNull, Line: line}
	case *ast.ThisExpression:
		return &Node{Kind: NodeThis, Line: line}
	case *ast.ArrayLiteral:
		n := &Node{Kind: NodeArray, Line: line}
		for _, v := range e.Value {
			if v == nil {
				n.List = append(n.List, nil)
				continue
			}
			if _, ok := v.(*ast.SpreadElement); ok {
				return cv.unsupported(line, "spread")
			}
			n.List = append(n.List, cv.expression(v))
		}
		return n
	case *ast.ObjectLiteral:
		return cv.objectLiteral(line, e)
	case *ast.FunctionLiteral:
		return cv.function(e)
	case *ast.DotExpression:
		return &Node{Kind: NodeMember, Line: line, A: cv.expression(e.Left), String: string(e.Identifier.Name)}
	case *ast.BracketExpression:
		return &Node{Kind: NodeIndex, Line: line, A: cv.expression(e.Left), B: cv.expression(e.Member)}
	case *ast.CallExpression:
		return &Node{Kind: NodeCall, Line: line, A: cv.expression(e.Callee), List: cv.expressions(e.ArgumentList)}
	case *ast.NewExpression:
		return &Node{Kind: NodeNew, Line: line, A: cv.expression(e.Callee), List: cv.expressions(e.ArgumentList)}
	case *ast.UnaryExpression:
		return cv.unary(line, e)
	case *ast.BinaryExpression:
		kind, ok := binaryOps[e.Operator]
		if !ok {
			return cv.unsupported(line, "operator "+e.Operator.String())
		}
		return &Node{Kind: kind, Line: line, A: cv.expression(e.Left), B: cv.expression(e.Right)}
	case *ast.ConditionalExpression:
		return &Node{Kind: NodeCond, Line: line,
			A: cv.expression(e.Test), B: cv.expression(e.Consequent), C: cv.expression(e.Alternate)}
	case *ast.AssignExpression:
		return cv.assign(line, e)
	case *ast.SequenceExpression:
		return &Node{Kind: NodeComma, Line: line, List: cv.expressions(e.Sequence)}
	case *ast.RegExpLiteral:
		return cv.unsupported(line, "regular expression literal")
	}
	return cv.unsupported(line, fmt.Sprintf("expression %T", e))
}

func (cv *converter) unary(line int, e *ast.UnaryExpression) *Node {
	operand := cv.expression(e.Operand)
	switch e.Operator {
	case token.INCREMENT, token.DECREMENT:
		if !isReference(operand) {
			return cv.unsupported(line, "increment of a non-reference")
		}
		kind := NodePreInc
		switch {
		case e.Operator == token.INCREMENT && e.Postfix:
			kind = NodePostInc
		case e.Operator == token.DECREMENT && e.Postfix:
			kind = NodePostDec
		case e.Operator == token.DECREMENT:
			kind = NodePreDec
		}
		return &Node{Kind: kind, Line: line, A: operand}
	}
	kind, ok := unaryOps[e.Operator]
	if !ok {
		return cv.unsupported(line, "operator "+e.Operator.String())
	}
	return &Node{Kind: kind, Line: line, A: operand}
}

func (cv *converter) assign(line int, e *ast.AssignExpression) *Node {
	target := cv.expression(e.Left)
	if !isReference(target) {
		return cv.unsupported(line, "assignment target")
	}
	n := &Node{Kind: NodeAssign, Line: line, A: target, B: cv.expression(e.Right)}
	if e.Operator != token.ASSIGN {
		op, ok := binaryOps[e.Operator]
		if !ok || !op.isBinary() {
			return cv.unsupported(line, "compound assignment "+e.Operator.String())
		}
		n.Op = op
	}
	return n
}

func isReference(n *Node) bool {
	switch n.Kind {
	case NodeIdentifier, NodeMember, NodeIndex:
		return true
	}
	return false
}

func (cv *converter) objectLiteral(line int, e *ast.ObjectLiteral) *Node {
	n := &Node{Kind: NodeObject, Line: line}
	for _, p := range e.Value {
		switch p := p.(type) {
		case *ast.PropertyKeyed:
			prop := &Node{Kind: NodeProp, Line: cv.line(p.Key), A: cv.propertyKey(p.Key, p.Computed), B: cv.expression(p.Value)}
			switch p.Kind {
			case ast.PropertyKindGet:
				prop.Kind = NodeGetter
			case ast.PropertyKindSet:
				prop.Kind = NodeSetter
			}
			n.List = append(n.List, prop)
		case *ast.PropertyShort:
			if p.Initializer != nil {
				return cv.unsupported(line, "shorthand property initializer")
			}
			name := string(p.Name.Name)
			n.List = append(n.List, &Node{Kind: NodeProp, Line: line,
				A: &Node{Kind: NodeString, Line: line, String: name},
				B: &Node{Kind: NodeIdentifier, Line: line, String: name}})
		default:
			return cv.unsupported(line, fmt.Sprintf("object literal member %T", p))
		}
	}
	return n
}

// propertyKey turns a literal key into a string node; computed keys stay
// expressions.
func (cv *converter) propertyKey(key ast.Expression, computed bool) *Node {
	if computed {
		return cv.expression(key)
	}
	line := cv.line(key)
	switch k := key.(type) {
	case *ast.Identifier:
		return &Node{Kind: NodeString, Line: line, String: string(k.Name)}
	case *ast.StringLiteral:
		return &Node{Kind: NodeString, Line: line, String: string(k.Value)}
	}
	return cv.expression(key)
}

func (cv *converter) function(f *ast.FunctionLiteral) *Node {
	line := cv.line(f)
	n := &Node{Kind: NodeFunction, Line: line, A: cv.block(f.Body)}
	if f.Name != nil {
		n.String = string(f.Name.Name)
	}
	if f.ParameterList != nil {
		for _, b := range f.ParameterList.List {
			id, ok := b.Target.(*ast.Identifier)
			if !ok || b.Initializer != nil {
				return cv.unsupported(line, "parameter pattern or default")
			}
			n.List = append(n.List, &Node{Kind: NodeIdentifier, Line: line, String: string(id.Name)})
		}
		if f.ParameterList.Rest != nil {
			return cv.unsupported(line, "rest parameter")
		}
	}
	if n.A == nil {
		n.A = &Node{Kind: NodeBlock, Line: line}
	}
	return n
}
