// parser_test.go
package veureka

import (
	"reflect"
	"strings"
	"testing"
)

func parseProg(t *testing.T, src string) *Node {
	t.Helper()
	prog, lexErrs, err := Parse(src)
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lexErrs)
	}
	if err != nil {
		t.Fatalf("parse error: %v\nsource:\n%s", err, src)
	}
	return prog
}

func parseStmt(t *testing.T, src string) *Node {
	t.Helper()
	prog := parseProg(t, src)
	if len(prog.Children) != 1 {
		t.Fatalf("want 1 statement, got %d", len(prog.Children))
	}
	return prog.Children[0]
}

func parseFail(t *testing.T, src string) *ParseError {
	t.Helper()
	_, _, err := Parse(src)
	if err == nil {
		t.Fatalf("want parse error for:\n%s", src)
	}
	return err.(*ParseError)
}

func Test_Parser_Is_Deterministic(t *testing.T) {
	src := `
let x = 1 + 2 * 3
fn f(a, b)
    if a > b
        return a
    end
    return b
end
for i in range(3) print(i) end
`
	first := parseProg(t, src)
	second := parseProg(t, src)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two parses of the same source differ")
	}
}

func Test_Parser_Newlines_Are_Insignificant(t *testing.T) {
	oneLine := parseProg(t, "let x = 1 let y = 2")
	twoLines := parseProg(t, "let x = 1\nlet y = 2")
	if len(oneLine.Children) != 2 || len(twoLines.Children) != 2 {
		t.Fatalf("want 2 statements each, got %d and %d",
			len(oneLine.Children), len(twoLines.Children))
	}
}

func Test_Parser_Precedence_Shape(t *testing.T) {
	// 1 + 2 * 3 parses as (+ 1 (* 2 3))
	n := parseStmt(t, "1 + 2 * 3")
	if n.Kind != NodeBinary || n.Op != "+" {
		t.Fatalf("want '+' at root, got %#v", n)
	}
	rhs := n.Children[1]
	if rhs.Kind != NodeBinary || rhs.Op != "*" {
		t.Fatalf("want '*' on the right, got %#v", rhs)
	}
}

func Test_Parser_Power_Is_Right_Associative(t *testing.T) {
	// 2 ** 3 ** 2 parses as (** 2 (** 3 2))
	n := parseStmt(t, "2 ** 3 ** 2")
	if n.Op != "**" || n.Children[1].Op != "**" {
		t.Fatalf("want right-nested power, got %#v", n)
	}
}

func Test_Parser_Assignment_Is_Right_Associative(t *testing.T) {
	// x = y = 1 parses as x = (y = 1)
	n := parseStmt(t, "x = y = 1")
	if n.Kind != NodeAssign || n.Name != "x" {
		t.Fatalf("want assign to x, got %#v", n)
	}
	inner := n.Children[0]
	if inner.Kind != NodeAssign || inner.Name != "y" {
		t.Fatalf("want nested assign to y, got %#v", inner)
	}
}

func Test_Parser_Logical_Below_Bitwise_Below_Comparison(t *testing.T) {
	// a or b & c == d parses as (or a (& b (== c d)))
	n := parseStmt(t, "a or b & c == d")
	if n.Op != "or" {
		t.Fatalf("want 'or' at root, got %q", n.Op)
	}
	band := n.Children[1]
	if band.Op != "&" {
		t.Fatalf("want '&' under or, got %q", band.Op)
	}
	if band.Children[1].Op != "==" {
		t.Fatalf("want '==' under '&', got %q", band.Children[1].Op)
	}
}

func Test_Parser_Let_Const(t *testing.T) {
	n := parseStmt(t, "let x = 1")
	if n.Kind != NodeLet || n.Name != "x" || n.IsConst {
		t.Fatalf("bad let node: %#v", n)
	}
	n = parseStmt(t, "const y = 2")
	if n.Kind != NodeLet || n.Name != "y" || !n.IsConst {
		t.Fatalf("bad const node: %#v", n)
	}
}

func Test_Parser_Compound_Assign_On_Variable(t *testing.T) {
	n := parseStmt(t, "x += 2")
	if n.Kind != NodeCompoundAssign || n.Name != "x" || n.Op != "+=" {
		t.Fatalf("bad compound assign: %#v", n)
	}
}

func Test_Parser_Attr_Compound_Assign_Desugars(t *testing.T) {
	// o.n += 1 parses as o.n = (o.n + 1)
	n := parseStmt(t, "o.n += 1")
	if n.Kind != NodeAttrAssign || n.Name != "n" {
		t.Fatalf("want attribute assignment, got %#v", n)
	}
	bin := n.Children[1]
	if bin.Kind != NodeBinary || bin.Op != "+" {
		t.Fatalf("want '+' desugar, got %#v", bin)
	}
	if bin.Children[0].Kind != NodeAttr || bin.Children[0].Name != "n" {
		t.Fatalf("want o.n read on the left, got %#v", bin.Children[0])
	}
}

func Test_Parser_IncDec_Forms(t *testing.T) {
	n := parseStmt(t, "++x")
	if n.Kind != NodeIncDec || !n.Prefix || n.Op != "++" {
		t.Fatalf("bad prefix increment: %#v", n)
	}
	n = parseStmt(t, "x--")
	if n.Kind != NodeIncDec || n.Prefix || n.Op != "--" {
		t.Fatalf("bad postfix decrement: %#v", n)
	}
	n = parseStmt(t, "o.count++")
	if n.Kind != NodeIncDec || n.Children[0].Kind != NodeAttr {
		t.Fatalf("bad attribute increment: %#v", n)
	}
}

func Test_Parser_IncDec_Requires_Lvalue(t *testing.T) {
	pe := parseFail(t, "++5")
	if !strings.Contains(pe.Msg, "variable or attribute") {
		t.Fatalf("want lvalue error, got %q", pe.Msg)
	}
}

func Test_Parser_Fn_Forms(t *testing.T) {
	n := parseStmt(t, "fn add(a, b)\nreturn a + b\nend")
	if n.Kind != NodeFn || n.Name != "add" || !reflect.DeepEqual(n.Params, []string{"a", "b"}) {
		t.Fatalf("bad fn: %#v", n)
	}

	// arrow form desugars to a single return statement
	n = parseStmt(t, "fn(x) => x * 2")
	if n.Kind != NodeFn || n.Name != "" || len(n.Children) != 1 || n.Children[0].Kind != NodeReturn {
		t.Fatalf("bad arrow fn: %#v", n)
	}
}

func Test_Parser_Bare_Return(t *testing.T) {
	n := parseStmt(t, "fn f()\nreturn\nend")
	ret := n.Children[0]
	if ret.Kind != NodeReturn || len(ret.Children) != 0 {
		t.Fatalf("want bare return, got %#v", ret)
	}
}

func Test_Parser_Class(t *testing.T) {
	src := `
class Point
    fn __init__(x, y)
        self.x = x
        self.y = y
    end
    fn norm()
        return self.x * self.x + self.y * self.y
    end
end
`
	n := parseStmt(t, src)
	if n.Kind != NodeClass || n.Name != "Point" || len(n.Children) != 2 {
		t.Fatalf("bad class: %#v", n)
	}
	if n.Children[0].Name != "__init__" || n.Children[1].Name != "norm" {
		t.Fatalf("bad methods: %v, %v", n.Children[0].Name, n.Children[1].Name)
	}
}

func Test_Parser_If_Arms(t *testing.T) {
	src := `
if a
    1
elif b
    2
elif c
    3
else
    4
end
`
	n := parseStmt(t, src)
	conds, blocks, elseBlock := n.IfArms()
	if len(conds) != 3 || len(blocks) != 3 || elseBlock == nil {
		t.Fatalf("want 3 arms and an else, got %d/%d/%v", len(conds), len(blocks), elseBlock)
	}
}

func Test_Parser_Try_Forms(t *testing.T) {
	n := parseStmt(t, "try\n1\nend")
	tb, cb, fb := n.TryParts()
	if tb == nil || cb != nil || fb != nil {
		t.Fatalf("bare try: %#v", n)
	}

	n = parseStmt(t, "try\n1\ncatch (e)\n2\nend")
	_, cb, fb = n.TryParts()
	if cb == nil || fb != nil || n.Name != "e" {
		t.Fatalf("try/catch: %#v", n)
	}

	n = parseStmt(t, "try\n1\ncatch\n2\nfinally\n3\nend")
	_, cb, fb = n.TryParts()
	if cb == nil || fb == nil || n.Name != "" {
		t.Fatalf("try/catch/finally: %#v", n)
	}

	n = parseStmt(t, "try\n1\nfinally\n2\nend")
	_, cb, fb = n.TryParts()
	if cb != nil || fb == nil {
		t.Fatalf("try/finally: %#v", n)
	}
}

func Test_Parser_Include_Forms(t *testing.T) {
	n := parseStmt(t, `include "util"`)
	if n.Kind != NodeInclude || n.Str != "util" {
		t.Fatalf("bad include: %#v", n)
	}
	n = parseStmt(t, `include("lib/util.ver")`)
	if n.Kind != NodeInclude || n.Str != "lib/util.ver" {
		t.Fatalf("bad include(): %#v", n)
	}
}

func Test_Parser_List_And_Map_Literals(t *testing.T) {
	n := parseStmt(t, "[1, 2, 3]")
	if n.Kind != NodeListLit || len(n.Children) != 3 {
		t.Fatalf("bad list literal: %#v", n)
	}

	n = parseStmt(t, `{name: "x", "two words": 2, 3: "three"}`)
	if n.Kind != NodeMapLit {
		t.Fatalf("bad map literal: %#v", n)
	}
	if !reflect.DeepEqual(n.Keys, []string{"name", "two words", "3"}) {
		t.Fatalf("bad map keys: %v", n.Keys)
	}
}

func Test_Parser_New_Expression(t *testing.T) {
	n := parseStmt(t, `new Point(1, 2)`)
	if n.Kind != NodeNew || n.Name != "Point" || len(n.Children) != 2 {
		t.Fatalf("bad new: %#v", n)
	}
}

func Test_Parser_Postfix_Chains(t *testing.T) {
	// a.b[0](1).c
	n := parseStmt(t, "a.b[0](1).c")
	if n.Kind != NodeAttr || n.Name != "c" {
		t.Fatalf("want attr at root, got %#v", n)
	}
	call := n.Children[0]
	if call.Kind != NodeCall {
		t.Fatalf("want call under attr, got %#v", call)
	}
	idx := call.Children[0]
	if idx.Kind != NodeIndex {
		t.Fatalf("want index under call, got %#v", idx)
	}
}

func Test_Parser_Match_Case_Are_Reserved(t *testing.T) {
	pe := parseFail(t, "match x")
	if !strings.Contains(pe.Msg, "reserved") {
		t.Fatalf("want reserved-word error, got %q", pe.Msg)
	}
}

func Test_Parser_Errors_Have_Positions(t *testing.T) {
	pe := parseFail(t, "let x = (1 + 2")
	if pe.Line == 0 {
		t.Fatalf("parse error without position: %#v", pe)
	}
}

func Test_Parser_Interactive_Incomplete(t *testing.T) {
	for _, src := range []string{
		"fn f()",
		"if x > 1",
		"class C",
		"while true",
		"for i in xs",
		"try",
	} {
		_, _, err := ParseInteractive(src)
		if !IsIncomplete(err) {
			t.Fatalf("want incomplete for %q, got %v", src, err)
		}
	}

	// a genuine syntax error is not incomplete
	_, _, err := ParseInteractive("let 5 = 3")
	if err == nil || IsIncomplete(err) {
		t.Fatalf("want hard parse error, got %v", err)
	}

	// non-interactive mode never reports incomplete
	_, _, err = Parse("fn f()")
	if err == nil || IsIncomplete(err) {
		t.Fatalf("want plain parse error, got %v", err)
	}
}
