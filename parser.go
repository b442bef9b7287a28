// parser.go — recursive-descent parser for Veureka.
//
// The parser consumes the token stream produced by lexer.go with NEWLINE
// tokens filtered out (newlines only separate statements; the grammar is
// unambiguous without them) and builds the kind-tagged AST of ast.go.
//
// Precedence, lowest to highest:
//
//	assignment   = += -= *= /=   (right-assoc; LHS must be a variable or attribute)
//	or
//	and
//	|
//	^
//	&
//	== != < <= > >=
//	+ -
//	* / %
//	**                           (right-assoc)
//	unary  - not ~ ++ -- (prefix)
//	postfix  call, index, attribute, ++ -- (postfix)
//
// Errors are structured *ParseError values. In interactive mode an
// unexpected end of input is reported as DiagIncomplete so a REPL can keep
// reading continuation lines (probe with IsIncomplete).
package veureka

import "fmt"

// DiagKind classifies parser diagnostics.
type DiagKind int

const (
	DiagParse DiagKind = iota
	DiagIncomplete
)

// ParseError is a fatal parsing diagnostic with a 1-based position.
type ParseError struct {
	Kind DiagKind
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IsIncomplete reports whether err is a ParseError caused by running out of
// input mid-construct (interactive mode only).
func IsIncomplete(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.Kind == DiagIncomplete
}

// Parse tokenizes and parses a complete source string. Lexical diagnostics
// are recoverable and returned alongside the program; a parse error is
// fatal and yields a nil program.
func Parse(src string) (*Node, []*LexError, error) {
	return parse(src, false)
}

// ParseInteractive parses in REPL-friendly mode: an unterminated construct
// at end of input produces a *ParseError with Kind DiagIncomplete.
func ParseInteractive(src string) (*Node, []*LexError, error) {
	return parse(src, true)
}

func parse(src string, interactive bool) (prog *Node, lexErrs []*LexError, err error) {
	toks, lexErrs := NewLexer(src).Scan()
	p := &parser{interactive: interactive}
	for _, t := range toks {
		if t.Type != NEWLINE {
			p.toks = append(p.toks, t)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			prog, err = nil, pe
		}
	}()

	prog = p.program()
	return prog, lexErrs, nil
}

type parser struct {
	toks        []Token
	pos         int
	interactive bool
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) current() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *parser) previous() Token { return p.toks[p.pos-1] }

func (p *parser) isAtEnd() bool { return p.current().Type == EOF }

func (p *parser) check(tt TokenType) bool { return p.current().Type == tt }

func (p *parser) advance() Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *parser) match(tt ...TokenType) bool {
	for _, t := range tt {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(tt TokenType, msg string) Token {
	if p.check(tt) {
		return p.advance()
	}
	panic(p.errAtCurrent(msg))
}

func (p *parser) errAtCurrent(msg string) *ParseError {
	g := p.current()
	kind := DiagParse
	if g.Type == EOF && p.interactive {
		kind = DiagIncomplete
	}
	return &ParseError{Kind: kind, Line: g.Line, Col: g.Col, Msg: msg}
}

func (p *parser) node(kind NodeKind, at Token) *Node {
	return &Node{Kind: kind, Line: at.Line, Col: at.Col}
}

// blockEnd reports whether the current token terminates a statement block.
func (p *parser) blockEnd() bool {
	switch p.current().Type {
	case END, ELIF, ELSE, CATCH, FINALLY, EOF:
		return true
	}
	return false
}

// block parses statements until a block terminator, without consuming it.
func (p *parser) block() *Node {
	b := p.node(NodeBlock, p.current())
	for !p.blockEnd() {
		b.Children = append(b.Children, p.statement())
	}
	return b
}

// ─────────────────────────────── statements ─────────────────────────────────

func (p *parser) program() *Node {
	prog := p.node(NodeProgram, p.current())
	for !p.isAtEnd() {
		prog.Children = append(prog.Children, p.statement())
	}
	return prog
}

func (p *parser) statement() *Node {
	switch {
	case p.match(INCLUDE):
		return p.includeStmt()
	case p.match(LET):
		return p.letStmt(false)
	case p.match(CONST):
		return p.letStmt(true)
	case p.match(FN):
		return p.fnDef()
	case p.match(CLASS):
		return p.classDef()
	case p.match(IF):
		return p.ifStmt()
	case p.match(FOR):
		return p.forStmt()
	case p.match(WHILE):
		return p.whileStmt()
	case p.match(TRY):
		return p.tryStmt()
	case p.match(THROW):
		return p.throwStmt()
	case p.match(RETURN):
		return p.returnStmt()
	case p.match(BREAK):
		return p.node(NodeBreak, p.previous())
	case p.match(CONTINUE):
		return p.node(NodeContinue, p.previous())
	case p.check(MATCH), p.check(CASE):
		panic(p.errAtCurrent(fmt.Sprintf("'%s' is reserved and not yet supported", p.current().Lexeme)))
	default:
		return p.expression()
	}
}

// includeStmt accepts both `include "path"` and `include("path")`.
func (p *parser) includeStmt() *Node {
	n := p.node(NodeInclude, p.previous())
	switch {
	case p.check(STRING):
		n.Str = p.advance().Lexeme
	case p.match(LPAREN):
		n.Str = p.consume(STRING, "expected file path after 'include'").Lexeme
		p.consume(RPAREN, "expected ')' after include path")
	default:
		panic(p.errAtCurrent("expected file path after 'include'"))
	}
	return n
}

func (p *parser) letStmt(isConst bool) *Node {
	n := p.node(NodeLet, p.previous())
	n.IsConst = isConst
	what := "'let'"
	if isConst {
		what = "'const'"
	}
	n.Name = p.consume(IDENT, "expected identifier after "+what).Lexeme
	p.consume(ASSIGN, "expected '=' after "+what+" name")
	n.Children = []*Node{p.expression()}
	return n
}

// fnDef parses a function definition or literal; 'fn' is already consumed.
// A name is optional. The body is either `=> expr` or statements up to 'end'.
func (p *parser) fnDef() *Node {
	n := p.node(NodeFn, p.previous())
	if p.check(IDENT) {
		n.Name = p.advance().Lexeme
	}

	p.consume(LPAREN, "expected '(' after 'fn'")
	for !p.check(RPAREN) {
		n.Params = append(n.Params, p.consume(IDENT, "expected parameter name").Lexeme)
		if !p.check(RPAREN) {
			p.consume(COMMA, "expected ',' between parameters")
		}
	}
	p.consume(RPAREN, "expected ')' after parameters")

	if p.match(ARROW) {
		ret := p.node(NodeReturn, p.previous())
		ret.Children = []*Node{p.expression()}
		n.Children = []*Node{ret}
		return n
	}

	for !p.check(END) {
		if p.isAtEnd() {
			panic(p.errAtCurrent("expected 'end' to close function body"))
		}
		n.Children = append(n.Children, p.statement())
	}
	p.consume(END, "expected 'end' to close function body")
	return n
}

func (p *parser) classDef() *Node {
	n := p.node(NodeClass, p.previous())
	n.Name = p.consume(IDENT, "expected class name").Lexeme
	for !p.check(END) {
		if p.isAtEnd() {
			panic(p.errAtCurrent("expected 'end' to close class body"))
		}
		p.consume(FN, "expected method definition in class body")
		m := p.fnDef()
		if m.Name == "" {
			panic(p.errAtCurrent("class methods must be named"))
		}
		n.Children = append(n.Children, m)
	}
	p.consume(END, "expected 'end' to close class body")
	return n
}

func (p *parser) ifStmt() *Node {
	n := p.node(NodeIf, p.previous())
	n.Children = append(n.Children, p.expression(), p.block())
	for p.match(ELIF) {
		n.Children = append(n.Children, p.expression(), p.block())
	}
	if p.match(ELSE) {
		n.Children = append(n.Children, p.block())
	}
	p.consume(END, "expected 'end' to close if")
	return n
}

func (p *parser) forStmt() *Node {
	n := p.node(NodeFor, p.previous())
	n.Name = p.consume(IDENT, "expected loop variable after 'for'").Lexeme
	p.consume(IN, "expected 'in' after loop variable")
	n.Children = append(n.Children, p.expression(), p.block())
	p.consume(END, "expected 'end' to close for")
	return n
}

func (p *parser) whileStmt() *Node {
	n := p.node(NodeWhile, p.previous())
	n.Children = append(n.Children, p.expression(), p.block())
	p.consume(END, "expected 'end' to close while")
	return n
}

// tryStmt parses `try ... [catch [(name)] ...] [finally ...] end`.
func (p *parser) tryStmt() *Node {
	n := p.node(NodeTry, p.previous())
	n.Children = append(n.Children, p.block())

	var catchBlock, finallyBlock *Node
	if p.match(CATCH) {
		if p.match(LPAREN) {
			n.Name = p.consume(IDENT, "expected identifier in catch").Lexeme
			p.consume(RPAREN, "expected ')' after catch variable")
		}
		catchBlock = p.block()
	}
	if p.match(FINALLY) {
		finallyBlock = p.block()
	}
	p.consume(END, "expected 'end' to close try")

	if catchBlock != nil || finallyBlock != nil {
		n.Children = append(n.Children, catchBlock)
	}
	if finallyBlock != nil {
		n.Children = append(n.Children, finallyBlock)
	}
	return n
}

func (p *parser) throwStmt() *Node {
	n := p.node(NodeThrow, p.previous())
	n.Children = []*Node{p.expression()}
	return n
}

// returnStmt parses `return [expr]`; the value is omitted when the next
// token closes the enclosing block.
func (p *parser) returnStmt() *Node {
	n := p.node(NodeReturn, p.previous())
	if !p.blockEnd() {
		n.Children = []*Node{p.expression()}
	}
	return n
}

// ─────────────────────────────── expressions ────────────────────────────────

func (p *parser) expression() *Node { return p.assignment() }

// assignment handles `x = v`, `x OP= v`, `o.a = v` and `o.a OP= v` on top of
// an already-parsed or-level expression. Compound attribute assignment is
// desugared to an attribute assignment of the corresponding binary result.
func (p *parser) assignment() *Node {
	expr := p.orExpr()

	if expr.Kind == NodeAttr {
		if p.match(ASSIGN) {
			n := p.node(NodeAttrAssign, p.previous())
			n.Name = expr.Name
			n.Children = []*Node{expr.Children[0], p.assignment()}
			return n
		}
		if p.check(PLUS_EQ) || p.check(MINUS_EQ) || p.check(STAR_EQ) || p.check(SLASH_EQ) {
			opTok := p.advance()
			value := p.assignment()
			bin := p.node(NodeBinary, opTok)
			bin.Op = opTok.Lexeme[:1]
			bin.Children = []*Node{expr, value}
			n := p.node(NodeAttrAssign, opTok)
			n.Name = expr.Name
			n.Children = []*Node{expr.Children[0], bin}
			return n
		}
	}

	if expr.Kind == NodeVar {
		if p.check(PLUS_EQ) || p.check(MINUS_EQ) || p.check(STAR_EQ) || p.check(SLASH_EQ) {
			opTok := p.advance()
			n := p.node(NodeCompoundAssign, opTok)
			n.Name = expr.Name
			n.Op = opTok.Lexeme
			n.Children = []*Node{p.assignment()}
			return n
		}
		if p.match(ASSIGN) {
			n := p.node(NodeAssign, p.previous())
			n.Name = expr.Name
			n.Children = []*Node{p.assignment()}
			return n
		}
	}

	return expr
}

func (p *parser) binaryLoop(sub func() *Node, tts ...TokenType) *Node {
	left := sub()
	for p.match(tts...) {
		opTok := p.previous()
		n := p.node(NodeBinary, opTok)
		n.Op = opTok.Lexeme
		n.Children = []*Node{left, sub()}
		left = n
	}
	return left
}

func (p *parser) orExpr() *Node  { return p.binaryLoop(p.andExpr, OR) }
func (p *parser) andExpr() *Node { return p.binaryLoop(p.bitOr, AND) }
func (p *parser) bitOr() *Node   { return p.binaryLoop(p.bitXor, PIPE) }
func (p *parser) bitXor() *Node  { return p.binaryLoop(p.bitAnd, CARET) }
func (p *parser) bitAnd() *Node  { return p.binaryLoop(p.comparison, AMPERSAND) }

func (p *parser) comparison() *Node {
	return p.binaryLoop(p.additive, EQ, NE, LT, LE, GT, GE)
}

func (p *parser) additive() *Node {
	return p.binaryLoop(p.multiplicative, PLUS, MINUS)
}

func (p *parser) multiplicative() *Node {
	return p.binaryLoop(p.power, STAR, SLASH, PERCENT)
}

func (p *parser) power() *Node {
	left := p.unary()
	if p.match(POWER) {
		opTok := p.previous()
		n := p.node(NodeBinary, opTok)
		n.Op = "**"
		n.Children = []*Node{left, p.power()} // right-associative
		return n
	}
	return left
}

func (p *parser) unary() *Node {
	if p.check(INCREMENT) || p.check(DECREMENT) {
		opTok := p.advance()
		operand := p.postfix()
		if operand.Kind != NodeVar && operand.Kind != NodeAttr {
			panic(&ParseError{Kind: DiagParse, Line: opTok.Line, Col: opTok.Col,
				Msg: "'++' and '--' require a variable or attribute"})
		}
		n := p.node(NodeIncDec, opTok)
		n.Op = opTok.Lexeme
		n.Prefix = true
		n.Children = []*Node{operand}
		return n
	}

	if p.match(MINUS, NOT, TILDE) {
		opTok := p.previous()
		n := p.node(NodeUnary, opTok)
		n.Op = opTok.Lexeme
		n.Children = []*Node{p.unary()}
		return n
	}

	return p.postfix()
}

func (p *parser) postfix() *Node {
	expr := p.primary()

	for {
		switch {
		case p.match(LPAREN):
			n := p.node(NodeCall, p.previous())
			n.Children = []*Node{expr}
			for !p.check(RPAREN) {
				n.Children = append(n.Children, p.expression())
				if !p.check(RPAREN) {
					p.consume(COMMA, "expected ',' between arguments")
				}
			}
			p.consume(RPAREN, "expected ')' after arguments")
			expr = n
		case p.match(LBRACKET):
			n := p.node(NodeIndex, p.previous())
			n.Children = []*Node{expr, p.expression()}
			p.consume(RBRACKET, "expected ']' after index")
			expr = n
		case p.match(DOT):
			n := p.node(NodeAttr, p.previous())
			n.Children = []*Node{expr}
			n.Name = p.consume(IDENT, "expected attribute name after '.'").Lexeme
			expr = n
		case p.check(INCREMENT) || p.check(DECREMENT):
			if expr.Kind != NodeVar && expr.Kind != NodeAttr {
				return expr
			}
			opTok := p.advance()
			n := p.node(NodeIncDec, opTok)
			n.Op = opTok.Lexeme
			n.Children = []*Node{expr}
			expr = n
		default:
			return expr
		}
	}
}

func (p *parser) primary() *Node {
	switch {
	case p.match(NUMBER):
		n := p.node(NodeNumberLit, p.previous())
		n.Num = p.previous().Num
		return n
	case p.match(STRING):
		n := p.node(NodeStringLit, p.previous())
		n.Str = p.previous().Lexeme
		return n
	case p.match(TRUE):
		n := p.node(NodeBoolLit, p.previous())
		n.Bool = true
		return n
	case p.match(FALSE):
		return p.node(NodeBoolLit, p.previous())
	case p.match(NIL):
		return p.node(NodeNilLit, p.previous())
	case p.match(SELF):
		n := p.node(NodeVar, p.previous())
		n.Name = "self"
		return n
	case p.match(NEW):
		n := p.node(NodeNew, p.previous())
		n.Name = p.consume(IDENT, "expected class name after 'new'").Lexeme
		p.consume(LPAREN, "expected '(' after class name")
		for !p.check(RPAREN) {
			n.Children = append(n.Children, p.expression())
			if !p.check(RPAREN) {
				p.consume(COMMA, "expected ',' between constructor arguments")
			}
		}
		p.consume(RPAREN, "expected ')' after constructor arguments")
		return n
	case p.match(IDENT):
		n := p.node(NodeVar, p.previous())
		n.Name = p.previous().Lexeme
		return n
	case p.match(LPAREN):
		expr := p.expression()
		p.consume(RPAREN, "expected ')' after expression")
		return expr
	case p.match(LBRACKET):
		return p.listLit()
	case p.match(LBRACE):
		return p.mapLit()
	case p.match(FN):
		return p.fnDef()
	}
	panic(p.errAtCurrent(fmt.Sprintf("unexpected token %q", p.current().Lexeme)))
}

func (p *parser) listLit() *Node {
	n := p.node(NodeListLit, p.previous())
	for !p.check(RBRACKET) {
		n.Children = append(n.Children, p.expression())
		if !p.check(RBRACKET) {
			p.consume(COMMA, "expected ',' between list elements")
		}
	}
	p.consume(RBRACKET, "expected ']' after list")
	return n
}

// mapLit parses `{key: value, ...}`; a key may be an identifier, a string
// or a number, and is stored as a string.
func (p *parser) mapLit() *Node {
	n := p.node(NodeMapLit, p.previous())
	for !p.check(RBRACE) {
		var key string
		switch {
		case p.check(IDENT), p.check(STRING):
			key = p.advance().Lexeme
		case p.check(NUMBER):
			key = formatNumber(p.advance().Num)
		default:
			panic(p.errAtCurrent("map key must be an identifier, string or number"))
		}
		p.consume(COLON, "expected ':' after map key")
		n.Keys = append(n.Keys, key)
		n.Children = append(n.Children, p.expression())
		if !p.check(RBRACE) {
			p.consume(COMMA, "expected ',' between map entries")
		}
	}
	p.consume(RBRACE, "expected '}' after map")
	return n
}
