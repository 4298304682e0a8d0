package script

import "strings"

// MaxSource is the largest source Parse accepts, in bytes.
const MaxSource = 1 << 20

// maxNesting bounds the depth of the syntax tree. Brackets, unary and
// power operators, operator and postfix chains, elif chains and indented
// blocks all count. Parsing, vetting and evaluation recurse over the tree.
const maxNesting = 200

// Parse parses src into a Program. Failures are *Error values of kind
// SyntaxError, or PolicyError for a source longer than MaxSource.
func Parse(src string) (prog *Program, err error) {
	if err := CheckSize(src, MaxSource); err != nil {
		return nil, err
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			prog, err = nil, e
		}
	}()
	return p.program(), nil
}

// CheckSize rejects a source longer than limit bytes with a PolicyError.
// A limit of zero or less means MaxSource.
func CheckSize(src string, limit int) error {
	if limit <= 0 || limit > MaxSource {
		limit = MaxSource
	}
	if len(src) > limit {
		return errorf(PolicyError, Pos{}, "script is %d bytes, limit is %d", len(src), limit)
	}
	return nil
}

type parser struct {
	toks  []token
	i     int
	loops int
	funcs int
	nest  int
}

func (p *parser) fail(pos Pos, format string, args ...any) {
	panic(errorf(SyntaxError, pos, format, args...))
}

// enter adds one level of nesting. Callers undo it with restore.
func (p *parser) enter(pos Pos) {
	p.nest++
	if p.nest > maxNesting {
		p.fail(pos, "too many nested expressions or blocks (limit %d)", maxNesting)
	}
}

func (p *parser) restore(nest int) { p.nest = nest }

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tEOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tOp && t.text == text
}

func (p *parser) isKeyword(text string) bool {
	t := p.peek()
	return t.kind == tKeyword && t.text == text
}

func (p *parser) acceptOp(text string) bool {
	if p.isOp(text) {
		p.i++
		return true
	}
	return false
}

func (p *parser) acceptKeyword(text string) bool {
	if p.isKeyword(text) {
		p.i++
		return true
	}
	return false
}

func (p *parser) expectOp(text string) token {
	t := p.peek()
	if t.kind != tOp || t.text != text {
		p.fail(t.pos, "expected %q, found %s", text, t.describe())
	}
	return p.next()
}

func (p *parser) expectKind(kind tokenKind) token {
	t := p.peek()
	if t.kind != kind {
		p.fail(t.pos, "expected %s, found %s", kind, t.describe())
	}
	return p.next()
}

func (p *parser) expectName() token {
	t := p.peek()
	if t.kind != tName {
		p.fail(t.pos, "expected a name, found %s", t.describe())
	}
	return p.next()
}

func (p *parser) program() *Program {
	prog := &Program{}
	for p.peek().kind != tEOF {
		if p.peek().kind == tNewline {
			p.next()
			continue
		}
		prog.Body = append(prog.Body, p.statement()...)
	}
	return prog
}

func (p *parser) statement() []Stmt {
	t := p.peek()
	if t.kind == tIndent {
		p.fail(t.pos, "unexpected indent")
	}
	if t.kind == tKeyword {
		switch t.text {
		case "if":
			return []Stmt{p.ifStmt()}
		case "while":
			return []Stmt{p.whileStmt()}
		case "for":
			return []Stmt{p.forStmt()}
		case "def":
			return []Stmt{p.funcDef()}
		case "class", "with", "try", "async", "except", "finally":
			p.fail(t.pos, "%q statements are not supported", t.text)
		}
	}
	if t.kind == tOp && t.text == "@" {
		p.fail(t.pos, "decorators are not supported")
	}
	return p.simpleLine()
}

// simpleLine parses small statements separated by ";" up to NEWLINE.
func (p *parser) simpleLine() []Stmt {
	var out []Stmt
	for {
		out = append(out, p.smallStmt())
		if !p.acceptOp(";") {
			break
		}
		if p.peek().kind == tNewline {
			break
		}
	}
	p.expectKind(tNewline)
	return out
}

func (p *parser) smallStmt() Stmt {
	t := p.peek()
	if t.kind == tKeyword {
		switch t.text {
		case "pass":
			p.next()
			return &Pass{Pos: t.pos}
		case "break":
			p.next()
			if p.loops == 0 {
				p.fail(t.pos, "'break' outside loop")
			}
			return &Break{Pos: t.pos}
		case "continue":
			p.next()
			if p.loops == 0 {
				p.fail(t.pos, "'continue' not properly in loop")
			}
			return &Continue{Pos: t.pos}
		case "return":
			p.next()
			if p.funcs == 0 {
				p.fail(t.pos, "'return' outside function")
			}
			r := &Return{Pos: t.pos}
			if !p.atStmtEnd() {
				r.Value = p.testList()
			}
			return r
		case "raise":
			p.next()
			r := &Raise{Pos: t.pos}
			if !p.atStmtEnd() {
				r.Exc = p.expression()
			}
			return r
		case "assert":
			p.next()
			a := &Assert{Pos: t.pos, Test: p.expression()}
			if p.acceptOp(",") {
				a.Msg = p.expression()
			}
			return a
		case "import":
			return p.importStmt()
		case "from":
			return p.importFrom()
		case "global", "nonlocal", "del", "yield", "lambda", "await":
			p.fail(t.pos, "%q is not supported", t.text)
		}
	}
	return p.exprStmt()
}

func (p *parser) atStmtEnd() bool {
	t := p.peek()
	return t.kind == tNewline || t.kind == tEOF || (t.kind == tOp && t.text == ";")
}

func (p *parser) dottedName() string {
	parts := []string{p.expectName().text}
	for p.acceptOp(".") {
		parts = append(parts, p.expectName().text)
	}
	return strings.Join(parts, ".")
}

func (p *parser) importStmt() Stmt {
	t := p.next()
	imp := &Import{Pos: t.pos}
	for {
		imp.Names = append(imp.Names, p.dottedName())
		if p.acceptKeyword("as") {
			p.expectName()
		}
		if !p.acceptOp(",") {
			break
		}
	}
	return imp
}

func (p *parser) importFrom() Stmt {
	t := p.next()
	imp := &ImportFrom{Pos: t.pos}
	for p.isOp(".") {
		p.next()
		imp.Module += "."
	}
	if p.peek().kind == tName {
		imp.Module += p.dottedName()
	}
	if !p.acceptKeyword("import") {
		p.fail(p.peek().pos, "expected \"import\", found %s", p.peek().describe())
	}
	if p.acceptOp("*") {
		imp.Names = []string{"*"}
		return imp
	}
	paren := p.acceptOp("(")
	for {
		imp.Names = append(imp.Names, p.expectName().text)
		if p.acceptKeyword("as") {
			p.expectName()
		}
		if !p.acceptOp(",") {
			break
		}
		if paren && p.isOp(")") {
			break
		}
	}
	if paren {
		p.expectOp(")")
	}
	return imp
}

var augOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "//=": "//", "%=": "%", "**=": "**",
}

func (p *parser) exprStmt() Stmt {
	start := p.peek().pos
	first := p.testList()

	if t := p.peek(); t.kind == tOp {
		if op, ok := augOps[t.text]; ok {
			p.next()
			p.checkAugTarget(first)
			return &AugAssign{Pos: start, Target: first, Op: op, Value: p.testList()}
		}
	}
	if !p.isOp("=") {
		return &ExprStmt{Pos: start, X: first}
	}

	targets := []Expr{first}
	var value Expr
	for p.acceptOp("=") {
		value = p.testList()
		targets = append(targets, value)
	}
	targets = targets[:len(targets)-1]
	for _, tgt := range targets {
		p.checkTarget(tgt)
	}
	return &Assign{Pos: start, Targets: targets, Value: value}
}

func (p *parser) checkTarget(e Expr) {
	switch e := e.(type) {
	case *Name, *Index:
	case *TupleExpr:
		for _, el := range e.Elts {
			p.checkTarget(el)
		}
	case *ListExpr:
		for _, el := range e.Elts {
			p.checkTarget(el)
		}
	case *Attribute:
		p.fail(e.Pos, "cannot assign to attribute")
	default:
		p.fail(e.Position(), "cannot assign to expression")
	}
}

func (p *parser) checkAugTarget(e Expr) {
	switch e.(type) {
	case *Name, *Index:
	default:
		p.fail(e.Position(), "illegal target for augmented assignment")
	}
}

// block parses ":" followed by an inline simple line or an indented suite.
func (p *parser) block() []Stmt {
	defer p.restore(p.nest)
	p.enter(p.expectOp(":").pos)
	if p.peek().kind != tNewline {
		return p.simpleLine()
	}
	p.next()
	if p.peek().kind != tIndent {
		p.fail(p.peek().pos, "expected an indented block")
	}
	p.next()
	var body []Stmt
	for p.peek().kind != tDedent && p.peek().kind != tEOF {
		body = append(body, p.statement()...)
	}
	p.expectKind(tDedent)
	return body
}

func (p *parser) ifStmt() Stmt {
	t := p.next()
	s := &If{Pos: t.pos, Test: p.expression()}
	s.Body = p.block()
	switch {
	case p.isKeyword("elif"):
		defer p.restore(p.nest)
		p.enter(p.peek().pos)
		s.Else = []Stmt{p.ifStmt()}
	case p.acceptKeyword("else"):
		s.Else = p.block()
	}
	return s
}

func (p *parser) whileStmt() Stmt {
	t := p.next()
	s := &While{Pos: t.pos, Test: p.expression()}
	s.Body = p.loopBody()
	if p.isKeyword("else") {
		p.fail(p.peek().pos, "while/else is not supported")
	}
	return s
}

func (p *parser) forStmt() Stmt {
	t := p.next()
	s := &For{Pos: t.pos, Target: p.targetList()}
	p.checkTarget(s.Target)
	if !p.acceptKeyword("in") {
		p.fail(p.peek().pos, "expected \"in\", found %s", p.peek().describe())
	}
	s.Iter = p.testList()
	s.Body = p.loopBody()
	if p.isKeyword("else") {
		p.fail(p.peek().pos, "for/else is not supported")
	}
	return s
}

func (p *parser) targetList() Expr {
	start := p.peek().pos
	first := p.postfix()
	if !p.isOp(",") {
		return first
	}
	elts := []Expr{first}
	for p.acceptOp(",") {
		if p.isKeyword("in") {
			break
		}
		elts = append(elts, p.postfix())
	}
	return &TupleExpr{Pos: start, Elts: elts}
}

func (p *parser) funcDef() Stmt {
	t := p.next()
	name := p.expectName()
	fn := &FuncDef{Pos: t.pos, Name: name.text}
	p.expectOp("(")
	seenDefault := false
	for !p.isOp(")") {
		if p.isOp("*") || p.isOp("**") {
			p.fail(p.peek().pos, "variadic parameters are not supported")
		}
		pt := p.expectName()
		param := Param{Pos: pt.pos, Name: pt.text}
		if p.acceptOp("=") {
			param.Default = p.expression()
			seenDefault = true
		} else if seenDefault {
			p.fail(pt.pos, "non-default parameter follows default parameter")
		}
		for _, prev := range fn.Params {
			if prev.Name == param.Name {
				p.fail(pt.pos, "duplicate parameter %q", param.Name)
			}
		}
		fn.Params = append(fn.Params, param)
		if !p.acceptOp(",") {
			break
		}
	}
	p.expectOp(")")
	if p.acceptOp("->") {
		p.expression()
	}
	loops := p.loops
	p.loops = 0
	p.funcs++
	fn.Body = p.block()
	p.funcs--
	p.loops = loops
	return fn
}

func (p *parser) loopBody() []Stmt {
	p.loops++
	defer func() { p.loops-- }()
	return p.block()
}

// testList parses one expression or a bare comma-separated tuple.
func (p *parser) testList() Expr {
	start := p.peek().pos
	first := p.expression()
	if !p.isOp(",") {
		return first
	}
	elts := []Expr{first}
	for p.acceptOp(",") {
		if p.atExprEnd() {
			break
		}
		elts = append(elts, p.expression())
	}
	return &TupleExpr{Pos: start, Elts: elts}
}

func (p *parser) atExprEnd() bool {
	t := p.peek()
	if t.kind == tNewline || t.kind == tEOF {
		return true
	}
	if t.kind == tOp {
		switch t.text {
		case "=", ")", "]", "}", ":", ";":
			return true
		}
		_, aug := augOps[t.text]
		return aug
	}
	return false
}

func (p *parser) expression() Expr {
	t := p.peek()
	defer p.restore(p.nest)
	p.enter(t.pos)
	if t.kind == tKeyword && t.text == "lambda" {
		p.fail(t.pos, "lambda is not supported")
	}
	body := p.orTest()
	if !p.isKeyword("if") {
		return body
	}
	p.next()
	test := p.orTest()
	if !p.acceptKeyword("else") {
		p.fail(p.peek().pos, "expected \"else\" in conditional expression")
	}
	return &CondExpr{Pos: body.Position(), Body: body, Test: test, Else: p.expression()}
}

func (p *parser) orTest() Expr {
	defer p.restore(p.nest)
	x := p.andTest()
	for p.isKeyword("or") {
		t := p.next()
		p.enter(t.pos)
		x = &BoolOp{Pos: t.pos, Op: "or", X: x, Y: p.andTest()}
	}
	return x
}

func (p *parser) andTest() Expr {
	defer p.restore(p.nest)
	x := p.notTest()
	for p.isKeyword("and") {
		t := p.next()
		p.enter(t.pos)
		x = &BoolOp{Pos: t.pos, Op: "and", X: x, Y: p.notTest()}
	}
	return x
}

func (p *parser) notTest() Expr {
	if p.isKeyword("not") {
		t := p.next()
		defer p.restore(p.nest)
		p.enter(t.pos)
		return &Unary{Pos: t.pos, Op: "not", X: p.notTest()}
	}
	return p.comparison()
}

func (p *parser) compareOp() (string, bool) {
	t := p.peek()
	switch {
	case t.kind == tOp:
		switch t.text {
		case "==", "!=", "<", "<=", ">", ">=":
			p.next()
			return t.text, true
		}
	case t.kind == tKeyword && t.text == "in":
		p.next()
		return "in", true
	case t.kind == tKeyword && t.text == "not":
		if n := p.toks[p.i+1]; n.kind == tKeyword && n.text == "in" {
			p.i += 2
			return "not in", true
		}
	case t.kind == tKeyword && t.text == "is":
		p.next()
		if p.acceptKeyword("not") {
			return "is not", true
		}
		return "is", true
	}
	return "", false
}

func (p *parser) comparison() Expr {
	x := p.arith()
	op, ok := p.compareOp()
	if !ok {
		return x
	}
	c := &Compare{Pos: x.Position(), X: x}
	for ok {
		c.Ops = append(c.Ops, op)
		c.Rest = append(c.Rest, p.arith())
		op, ok = p.compareOp()
	}
	return c
}

func (p *parser) arith() Expr {
	defer p.restore(p.nest)
	x := p.term()
	for p.isOp("+") || p.isOp("-") {
		t := p.next()
		p.enter(t.pos)
		x = &Binary{Pos: t.pos, Op: t.text, X: x, Y: p.term()}
	}
	return x
}

func (p *parser) term() Expr {
	defer p.restore(p.nest)
	x := p.factor()
	for p.isOp("*") || p.isOp("/") || p.isOp("//") || p.isOp("%") {
		t := p.next()
		p.enter(t.pos)
		x = &Binary{Pos: t.pos, Op: t.text, X: x, Y: p.factor()}
	}
	return x
}

func (p *parser) factor() Expr {
	if p.isOp("-") || p.isOp("+") {
		t := p.next()
		defer p.restore(p.nest)
		p.enter(t.pos)
		return &Unary{Pos: t.pos, Op: t.text, X: p.factor()}
	}
	if t := p.peek(); t.kind == tOp {
		switch t.text {
		case "~", "&", "|", "^", "@":
			p.fail(t.pos, "operator %q is not supported", t.text)
		}
	}
	return p.power()
}

func (p *parser) power() Expr {
	x := p.postfix()
	if p.isOp("**") {
		t := p.next()
		defer p.restore(p.nest)
		p.enter(t.pos)
		return &Binary{Pos: t.pos, Op: "**", X: x, Y: p.factor()}
	}
	if t := p.peek(); t.kind == tOp {
		switch t.text {
		case "&", "|", "^", "@", "~":
			p.fail(t.pos, "operator %q is not supported", t.text)
		}
	}
	return x
}

func (p *parser) postfix() Expr {
	defer p.restore(p.nest)
	x := p.atom()
	for {
		if p.isOp("(") || p.isOp("[") || p.isOp(".") {
			p.enter(p.peek().pos)
		}
		switch {
		case p.isOp("("):
			x = p.call(x)
		case p.isOp("["):
			t := p.next()
			idx := p.subscript()
			p.expectOp("]")
			x = &Index{Pos: t.pos, X: x, Index: idx}
		case p.isOp("."):
			p.next()
			name := p.expectName()
			x = &Attribute{Pos: name.pos, X: x, Attr: name.text}
		default:
			return x
		}
	}
}

func (p *parser) call(fn Expr) Expr {
	t := p.expectOp("(")
	c := &Call{Pos: t.pos, Func: fn}
	if n, ok := fn.(*Name); ok {
		c.Pos = n.Pos
	}
	for !p.isOp(")") {
		if p.isOp("*") || p.isOp("**") {
			p.fail(p.peek().pos, "argument unpacking is not supported")
		}
		if p.peek().kind == tName && p.toks[p.i+1].kind == tOp && p.toks[p.i+1].text == "=" {
			name := p.next()
			p.next()
			for _, kw := range c.Keywords {
				if kw.Name == name.text {
					p.fail(name.pos, "keyword argument repeated: %s", name.text)
				}
			}
			c.Keywords = append(c.Keywords, Keyword{Pos: name.pos, Name: name.text, Value: p.expression()})
		} else {
			if len(c.Keywords) > 0 {
				p.fail(p.peek().pos, "positional argument follows keyword argument")
			}
			c.Args = append(c.Args, p.expression())
		}
		if !p.acceptOp(",") {
			break
		}
	}
	p.expectOp(")")
	return c
}

func (p *parser) subscript() Expr {
	start := p.peek().pos
	var lo Expr
	if !p.isOp(":") {
		lo = p.expression()
		if !p.isOp(":") {
			return lo
		}
	}
	s := &Slice{Pos: start, Lo: lo}
	p.expectOp(":")
	if !p.isOp(":") && !p.isOp("]") {
		s.Hi = p.expression()
	}
	if p.acceptOp(":") && !p.isOp("]") {
		s.Step = p.expression()
	}
	return s
}

func (p *parser) atom() Expr {
	t := p.peek()
	switch t.kind {
	case tName:
		p.next()
		return &Name{Pos: t.pos, ID: t.text}
	case tInt:
		p.next()
		return &Const{Pos: t.pos, Value: Int(t.ival)}
	case tFloat:
		p.next()
		return &Const{Pos: t.pos, Value: Float(t.fval)}
	case tString:
		var b strings.Builder
		for p.peek().kind == tString {
			b.WriteString(p.next().text)
		}
		return &Const{Pos: t.pos, Value: Str(b.String())}
	case tKeyword:
		switch t.text {
		case "True":
			p.next()
			return &Const{Pos: t.pos, Value: True}
		case "False":
			p.next()
			return &Const{Pos: t.pos, Value: False}
		case "None":
			p.next()
			return &Const{Pos: t.pos, Value: None}
		case "lambda":
			p.fail(t.pos, "lambda is not supported")
		}
	case tOp:
		switch t.text {
		case "(":
			return p.parenExpr()
		case "[":
			return p.listExpr()
		case "{":
			return p.dictExpr()
		}
	case tIndent:
		p.fail(t.pos, "unexpected indent")
	}
	p.fail(t.pos, "unexpected %s", t.describe())
	return nil
}

func (p *parser) parenExpr() Expr {
	t := p.next()
	if p.acceptOp(")") {
		return &TupleExpr{Pos: t.pos}
	}
	first := p.expression()
	if p.isKeyword("for") {
		p.fail(p.peek().pos, "comprehensions are not supported")
	}
	if p.acceptOp(")") {
		return first
	}
	elts := []Expr{first}
	for p.acceptOp(",") {
		if p.isOp(")") {
			break
		}
		elts = append(elts, p.expression())
	}
	p.expectOp(")")
	return &TupleExpr{Pos: t.pos, Elts: elts}
}

func (p *parser) listExpr() Expr {
	t := p.next()
	l := &ListExpr{Pos: t.pos}
	for !p.isOp("]") {
		l.Elts = append(l.Elts, p.expression())
		if p.isKeyword("for") {
			p.fail(p.peek().pos, "comprehensions are not supported")
		}
		if !p.acceptOp(",") {
			break
		}
	}
	p.expectOp("]")
	return l
}

func (p *parser) dictExpr() Expr {
	t := p.next()
	d := &DictExpr{Pos: t.pos}
	for !p.isOp("}") {
		k := p.expression()
		if !p.isOp(":") {
			p.fail(p.peek().pos, "set literals are not supported")
		}
		p.next()
		d.Keys = append(d.Keys, k)
		d.Values = append(d.Values, p.expression())
		if p.isKeyword("for") {
			p.fail(p.peek().pos, "comprehensions are not supported")
		}
		if !p.acceptOp(",") {
			break
		}
	}
	p.expectOp("}")
	return d
}
