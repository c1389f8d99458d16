package compiler

// ---------------------------------------------------------------------------
// Hoisting pre-pass
// ---------------------------------------------------------------------------

// walk visits n and its descendants in source order. Descent below a node
// stops when visit returns false.
func walk(n *Node, visit func(*Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	walk(n.A, visit)
	walk(n.B, visit)
	walk(n.C, visit)
	walk(n.D, visit)
	for _, c := range n.List {
		walk(c, visit)
	}
}

// hoistedNames returns var-declared and function-declared names of a
// function body in declaration order. Nested function bodies are skipped.
func hoistedNames(body *Node) []string {
	var names []string
	walk(body, func(n *Node) bool {
		switch n.Kind {
		case NodeFunction:
			return false
		case NodeFunDecl:
			if n.A != nil && n.A.String != "" {
				names = append(names, n.A.String)
			}
			return false
		case NodeVarInit:
			names = append(names, n.String)
		}
		return true
	})
	return names
}

// usesArguments reports whether a function body refers to arguments
// outside of nested functions.
func usesArguments(body *Node) bool {
	found := false
	walk(body, func(n *Node) bool {
		switch n.Kind {
		case NodeFunction:
			return false
		case NodeIdentifier:
			if n.String == "arguments" {
				found = true
			}
		}
		return !found
	})
	return found
}

// hasUseStrict reports whether a body starts with a "use strict" directive.
func hasUseStrict(body *Node) bool {
	if body == nil {
		return false
	}
	for _, s := range body.List {
		if s.Kind != NodeExprStmt || s.A == nil || s.A.Kind != NodeString {
			return false
		}
		if s.A.String == "use strict" {
			return true
		}
	}
	return false
}

// functionDecls returns the function declarations directly in a
// statement list.
func functionDecls(list []*Node) []*Node {
	var decls []*Node
	for _, s := range list {
		if s != nil && s.Kind == NodeFunDecl {
			decls = append(decls, s)
		}
	}
	return decls
}
