package compiler

import "fmt"

// ---------------------------------------------------------------------------
// AST
// ---------------------------------------------------------------------------

// NodeKind tags an AST node.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota

	// Primary expressions
	NodeIdentifier // String: name
	NodeNumber     // Number: value
	NodeString     // String: value
	NodeTrue
	NodeFalse
	NodeNull
	NodeThis
	NodeArray    // List: elements, nil for holes
	NodeObject   // List: NodeProp, NodeGetter, NodeSetter
	NodeProp     // A: key, B: value
	NodeGetter   // A: key, B: NodeFunction
	NodeSetter   // A: key, B: NodeFunction
	NodeFunction // String: name, List: parameter identifiers, A: body block

	// Member access and calls
	NodeMember // A: object, String: property name
	NodeIndex  // A: object, B: computed key
	NodeCall   // A: callee, List: arguments
	NodeNew    // A: callee, List: arguments

	// Unary operators: A
	NodePreInc
	NodePreDec
	NodePostInc
	NodePostDec
	NodeDelete
	NodeVoid
	NodeTypeof
	NodePos
	NodeNeg
	NodeBitNot
	NodeLogNot

	// Binary operators: A, B
	NodeMul
	NodeDiv
	NodeMod
	NodeAdd
	NodeSub
	NodeShl
	NodeShr
	NodeUShr
	NodeLt
	NodeGt
	NodeLe
	NodeGe
	NodeEq
	NodeNe
	NodeStrictEq
	NodeStrictNe
	NodeBitAnd
	NodeBitXor
	NodeBitOr
	NodeInstanceOf
	NodeIn
	NodeLogAnd
	NodeLogOr

	NodeCond   // A: test, B: consequent, C: alternate
	NodeAssign // A: target, B: value, Op: binary operator for compound forms
	NodeComma  // List: expressions

	// Statements
	NodeVarDecl  // List: NodeVarInit
	NodeVarInit  // String: name, A: initializer or nil
	NodeFunDecl  // A: NodeFunction
	NodeBlock    // List: statements
	NodeEmpty
	NodeExprStmt // A: expression
	NodeIf       // A: test, B: consequent, C: alternate or nil
	NodeDo       // A: body, B: test
	NodeWhile    // A: test, B: body
	NodeFor      // A: init (NodeVarDecl or expression), B: test, C: update, D: body
	NodeForIn    // A: target (NodeVarDecl or lvalue), B: object, C: body
	NodeSwitch   // A: discriminant, List: NodeCase and NodeDefault
	NodeCase     // A: test, List: statements
	NodeDefault  // List: statements
	NodeTry      // A: block, String: catch name, B: catch block, C: finally block
	NodeLabel    // String: label, A: statement
	NodeBreak    // String: label or ""
	NodeContinue // String: label or ""
	NodeReturn   // A: value or nil
	NodeThrow    // A: value
	NodeWith     // A: object, B: body
	NodeDebugger
)

var nodeNames = map[NodeKind]string{
	NodeIdentifier: "identifier", NodeNumber: "number", NodeString: "string",
	NodeTrue: "true", NodeFalse: "false", NodeNull: "null", NodeThis: "this",
	NodeArray: "array", NodeObject: "object", NodeProp: "property",
	NodeGetter: "getter", NodeSetter: "setter", NodeFunction: "function",
	NodeMember: "member", NodeIndex: "index", NodeCall: "call", NodeNew: "new",
	NodePreInc: "++x", NodePreDec: "--x", NodePostInc: "x++", NodePostDec: "x--",
	NodeDelete: "delete", NodeVoid: "void", NodeTypeof: "typeof",
	NodePos: "+x", NodeNeg: "-x", NodeBitNot: "~", NodeLogNot: "!",
	NodeMul: "*", NodeDiv: "/", NodeMod: "%", NodeAdd: "+", NodeSub: "-",
	NodeShl: "<<", NodeShr: ">>", NodeUShr: ">>>",
	NodeLt: "<", NodeGt: ">", NodeLe: "<=", NodeGe: ">=",
	NodeEq: "==", NodeNe: "!=", NodeStrictEq: "===", NodeStrictNe: "!==",
	NodeBitAnd: "&", NodeBitXor: "^", NodeBitOr: "|",
	NodeInstanceOf: "instanceof", NodeIn: "in", NodeLogAnd: "&&", NodeLogOr: "||",
	NodeCond: "?:", NodeAssign: "=", NodeComma: ",",
	NodeVarDecl: "var", NodeVarInit: "var-init", NodeFunDecl: "function-declaration",
	NodeBlock: "block", NodeEmpty: "empty", NodeExprStmt: "expression-statement",
	NodeIf: "if", NodeDo: "do", NodeWhile: "while", NodeFor: "for", NodeForIn: "for-in",
	NodeSwitch: "switch", NodeCase: "case", NodeDefault: "default", NodeTry: "try",
	NodeLabel: "label", NodeBreak: "break", NodeContinue: "continue",
	NodeReturn: "return", NodeThrow: "throw", NodeWith: "with", NodeDebugger: "debugger",
}

func (k NodeKind) String() string {
	if s, ok := nodeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("node(%d)", uint8(k))
}

// Node is a tagged AST node with literal payloads, four named child slots
// and an ordered child list for sequences.
type Node struct {
	Kind   NodeKind
	Line   int
	Number float64
	String string
	Op     NodeKind

	A, B, C, D *Node
	List       []*Node
}

// isBinary reports whether k is a binary operator kind that maps to a
// single opcode.
func (k NodeKind) isBinary() bool {
	return k >= NodeMul && k <= NodeIn
}

// isLoop reports whether the node kind is an iteration statement.
func (k NodeKind) isLoop() bool {
	switch k {
	case NodeDo, NodeWhile, NodeFor, NodeForIn:
		return true
	}
	return false
}
