package compiler

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	body, err := Parse("test.js", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return body
}

func TestParseVarDecl(t *testing.T) {
	body := mustParse(t, "var a = 1, b;\nlet c = 'x';")
	if len(body.List) != 2 {
		t.Fatalf("statements = %d, want 2", len(body.List))
	}
	decl := body.List[0]
	if decl.Kind != NodeVarDecl || len(decl.List) != 2 {
		t.Fatalf("first statement = %s with %d inits, want var with 2", decl.Kind, len(decl.List))
	}
	if decl.List[0].String != "a" || decl.List[0].A.Kind != NodeNumber || decl.List[0].A.Number != 1 {
		t.Errorf("a = %+v, want initializer 1", decl.List[0])
	}
	if decl.List[1].A != nil {
		t.Errorf("b initializer = %v, want nil", decl.List[1].A)
	}
	if got := body.List[1]; got.Kind != NodeVarDecl || got.Line != 2 {
		t.Errorf("let = %s at line %d, want var at line 2", got.Kind, got.Line)
	}
}

func TestParseOperators(t *testing.T) {
	tests := []struct {
		src  string
		want NodeKind
	}{
		{"a + b", NodeAdd},
		{"a >>> b", NodeUShr},
		{"a !== b", NodeStrictNe},
		{"a instanceof b", NodeInstanceOf},
		{"'k' in b", NodeIn},
		{"a && b", NodeLogAnd},
		{"a || b", NodeLogOr},
		{"!a", NodeLogNot},
		{"~a", NodeBitNot},
		{"typeof a", NodeTypeof},
		{"void a", NodeVoid},
		{"delete a.b", NodeDelete},
		{"++a", NodePreInc},
		{"a--", NodePostDec},
		{"a ? b : c", NodeCond},
		{"a, b", NodeComma},
		{"new F(1)", NodeNew},
		{"a[0]", NodeIndex},
	}
	for _, tt := range tests {
		body := mustParse(t, tt.src)
		if got := body.List[0].A.Kind; got != tt.want {
			t.Errorf("%q parsed as %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestParseCompoundAssignment(t *testing.T) {
	n := mustParse(t, "a.b <<= 2").List[0].A
	if n.Kind != NodeAssign || n.Op != NodeShl {
		t.Fatalf("parsed as %s op %s, want = op <<", n.Kind, n.Op)
	}
	if n.A.Kind != NodeMember || n.A.String != "b" {
		t.Errorf("target = %s %q, want member b", n.A.Kind, n.A.String)
	}
	if plain := mustParse(t, "a = 1").List[0].A; plain.Op != NodeInvalid {
		t.Errorf("plain assignment Op = %s, want none", plain.Op)
	}
}

func TestParseObjectLiteral(t *testing.T) {
	n := mustParse(t, "x = { a: 1, 'b c': 2, 3: 4, get d() { return 1; }, set d(v) {}, e }").List[0].A.B
	if n.Kind != NodeObject || len(n.List) != 6 {
		t.Fatalf("object = %s with %d members, want 6", n.Kind, len(n.List))
	}
	kinds := []NodeKind{NodeProp, NodeProp, NodeProp, NodeGetter, NodeSetter, NodeProp}
	for i, want := range kinds {
		if n.List[i].Kind != want {
			t.Errorf("member %d = %s, want %s", i, n.List[i].Kind, want)
		}
	}
	if k := n.List[1].A; k.Kind != NodeString || k.String != "b c" {
		t.Errorf("quoted key = %s %q", k.Kind, k.String)
	}
	if k := n.List[2].A; k.Kind != NodeNumber || k.Number != 3 {
		t.Errorf("numeric key = %s %v", k.Kind, k.Number)
	}
	if v := n.List[5].B; v.Kind != NodeIdentifier || v.String != "e" {
		t.Errorf("shorthand value = %s %q, want identifier e", v.Kind, v.String)
	}
}

func TestParseStatements(t *testing.T) {
	src := `
lbl: for (var k in o) { continue lbl; }
try { f(); } catch (e) { g(e); } finally { h(); }
switch (x) { case 1: break; default: }
do { x--; } while (x > 0);
with (o) { p; }
debugger;
`
	body := mustParse(t, src)
	want := []NodeKind{NodeLabel, NodeTry, NodeSwitch, NodeDo, NodeWith, NodeDebugger}
	if len(body.List) != len(want) {
		t.Fatalf("statements = %d, want %d", len(body.List), len(want))
	}
	for i, k := range want {
		if body.List[i].Kind != k {
			t.Errorf("statement %d = %s, want %s", i, body.List[i].Kind, k)
		}
	}
	forIn := body.List[0].A
	if forIn.Kind != NodeForIn || forIn.A.Kind != NodeVarDecl || forIn.A.List[0].String != "k" {
		t.Errorf("for-in = %s target %s, want var k", forIn.Kind, forIn.A.Kind)
	}
	try := body.List[1]
	if try.String != "e" || try.B == nil || try.C == nil {
		t.Errorf("try = %+v, want catch e and finally", try)
	}
	sw := body.List[2]
	if len(sw.List) != 2 || sw.List[0].Kind != NodeCase || sw.List[1].Kind != NodeDefault {
		t.Errorf("switch clauses = %v", sw.List)
	}
}

func TestParseUnsupported(t *testing.T) {
	tests := []string{
		"var r = /ab+c/;",
		"for (var x of y) {}",
		"function f(a = 1) {}",
		"var [a, b] = c;",
	}
	for _, src := range tests {
		_, err := Parse("test.js", src)
		if err == nil {
			t.Errorf("%q: expected an error", src)
			continue
		}
		if !strings.Contains(err.Error(), "not supported") {
			t.Errorf("%q: error = %v, want not supported", src, err)
		}
	}
}

func TestParseLines(t *testing.T) {
	body := mustParse(t, "a;\nb;\n\n  c;")
	for i, want := range []int{1, 2, 4} {
		if got := body.List[i].Line; got != want {
			t.Errorf("statement %d line = %d, want %d", i, got, want)
		}
	}
}
