package script

import (
	"strconv"
	"strings"
	"unicode"
)

const tabWidth = 8

type lexer struct {
	src         []rune
	i           int
	line, col   int
	indents     []int
	depth       int
	atLineStart bool
	toks        []token
}

// lex splits src into tokens, synthesizing NEWLINE, INDENT and DEDENT from
// the layout. Lines inside brackets or after a backslash continue the
// logical line.
func lex(src string) (toks []token, err error) {
	lx := &lexer{
		src:         []rune(strings.ReplaceAll(src, "\r\n", "\n")),
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
	}
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			toks, err = nil, e
		}
	}()
	lx.run()
	return lx.toks, nil
}

func (lx *lexer) fail(pos Pos, format string, args ...any) {
	panic(errorf(SyntaxError, pos, format, args...))
}

func (lx *lexer) pos() Pos { return Pos{Line: lx.line, Col: lx.col} }

func (lx *lexer) peekAt(off int) rune {
	if lx.i+off < len(lx.src) {
		return lx.src[lx.i+off]
	}
	return 0
}

func (lx *lexer) done() bool { return lx.i >= len(lx.src) }

func (lx *lexer) advance() rune {
	c := lx.src[lx.i]
	lx.i++
	if c == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return c
}

func (lx *lexer) emit(kind tokenKind, text string, pos Pos) {
	lx.toks = append(lx.toks, token{kind: kind, text: text, pos: pos})
}

func (lx *lexer) run() {
	for {
		if lx.atLineStart && lx.depth == 0 {
			if !lx.lineStart() {
				break
			}
		}
		if lx.done() {
			break
		}
		c := lx.peekAt(0)
		switch {
		case c == '\n':
			p := lx.pos()
			lx.advance()
			if lx.depth == 0 {
				lx.emit(tNewline, "", p)
				lx.atLineStart = true
			}
		case c == ' ' || c == '\t' || c == '\f':
			lx.advance()
		case c == '#':
			lx.skipComment()
		case c == '\\':
			p := lx.pos()
			lx.advance()
			if lx.peekAt(0) != '\n' {
				lx.fail(p, "unexpected character after line continuation")
			}
			lx.advance()
		case c == '_' || unicode.IsLetter(c):
			lx.name()
		case isDigit(c) || (c == '.' && isDigit(lx.peekAt(1))):
			lx.number()
		case c == '"' || c == '\'':
			lx.str()
		default:
			lx.operator()
		}
	}

	end := lx.pos()
	if n := len(lx.toks); n > 0 && lx.toks[n-1].kind != tNewline {
		lx.emit(tNewline, "", end)
	}
	for len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.emit(tDedent, "", end)
	}
	lx.emit(tEOF, "", end)
}

// lineStart measures indentation of the next non-blank line and emits
// INDENT/DEDENT tokens. It returns false at end of input.
func (lx *lexer) lineStart() bool {
	for {
		width := 0
		for !lx.done() {
			c := lx.peekAt(0)
			if c == ' ' {
				width++
			} else if c == '\t' {
				width = (width/tabWidth + 1) * tabWidth
			} else if c != '\f' {
				break
			}
			lx.advance()
		}
		if lx.done() {
			return false
		}
		switch lx.peekAt(0) {
		case '\n':
			lx.advance()
			continue
		case '#':
			lx.skipComment()
			continue
		}
		lx.atLineStart = false
		lx.indent(width)
		return true
	}
}

func (lx *lexer) indent(width int) {
	p := lx.pos()
	top := lx.indents[len(lx.indents)-1]
	if width > top {
		lx.indents = append(lx.indents, width)
		lx.emit(tIndent, "", p)
		return
	}
	for width < top {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.emit(tDedent, "", p)
		top = lx.indents[len(lx.indents)-1]
	}
	if width != top {
		lx.fail(p, "unindent does not match any outer indentation level")
	}
}

func (lx *lexer) skipComment() {
	for !lx.done() && lx.peekAt(0) != '\n' {
		lx.advance()
	}
}

func (lx *lexer) name() {
	p := lx.pos()
	start := lx.i
	for !lx.done() {
		c := lx.peekAt(0)
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		lx.advance()
	}
	text := string(lx.src[start:lx.i])
	if !lx.done() && (lx.peekAt(0) == '"' || lx.peekAt(0) == '\'') {
		lx.fail(p, "string prefix %q is not supported", text)
	}
	kind := tName
	if keywords[text] {
		kind = tKeyword
	}
	lx.emit(kind, text, p)
}

func (lx *lexer) number() {
	p := lx.pos()
	start := lx.i
	isFloat := false

	if lx.peekAt(0) == '0' && strings.ContainsRune("xXoObB", lx.peekAt(1)) {
		lx.advance()
		lx.advance()
		for !lx.done() && (isAlnum(lx.peekAt(0)) || lx.peekAt(0) == '_') {
			lx.advance()
		}
	} else {
		lx.digits()
		if lx.peekAt(0) == '.' {
			isFloat = true
			lx.advance()
			lx.digits()
		}
		if c := lx.peekAt(0); c == 'e' || c == 'E' {
			next := lx.peekAt(1)
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(lx.peekAt(2))) {
				isFloat = true
				lx.advance()
				if next == '+' || next == '-' {
					lx.advance()
				}
				lx.digits()
			}
		}
	}
	if !lx.done() && (lx.peekAt(0) == '_' || unicode.IsLetter(lx.peekAt(0))) {
		lx.fail(p, "invalid number literal")
	}

	text := string(lx.src[start:lx.i])
	clean := strings.ReplaceAll(text, "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			lx.fail(p, "invalid float literal %q", text)
		}
		lx.toks = append(lx.toks, token{kind: tFloat, text: text, pos: p, fval: f})
		return
	}

	base := 10
	if len(clean) > 1 && clean[0] == '0' && strings.ContainsRune("xXoObB", rune(clean[1])) {
		base = 0
	} else if len(clean) > 1 && strings.TrimLeft(clean, "0") != "" && clean[0] == '0' {
		lx.fail(p, "leading zeros in decimal integer literals are not permitted")
	}
	n, err := strconv.ParseInt(clean, base, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			lx.fail(p, "integer literal %s is too large", text)
		}
		lx.fail(p, "invalid integer literal %q", text)
	}
	lx.toks = append(lx.toks, token{kind: tInt, text: text, pos: p, ival: n})
}

func (lx *lexer) digits() {
	for !lx.done() && (isDigit(lx.peekAt(0)) || lx.peekAt(0) == '_') {
		lx.advance()
	}
}

func (lx *lexer) str() {
	p := lx.pos()
	q := lx.advance()
	triple := false
	if lx.peekAt(0) == q && lx.peekAt(1) == q {
		triple = true
		lx.advance()
		lx.advance()
	}

	var b strings.Builder
	for {
		if lx.done() {
			lx.fail(p, "unterminated string literal")
		}
		c := lx.peekAt(0)
		if c == q {
			if !triple {
				lx.advance()
				break
			}
			if lx.peekAt(1) == q && lx.peekAt(2) == q {
				lx.advance()
				lx.advance()
				lx.advance()
				break
			}
		}
		if c == '\n' && !triple {
			lx.fail(p, "unterminated string literal")
		}
		if c == '\\' {
			lx.advance()
			if lx.done() {
				lx.fail(p, "unterminated string literal")
			}
			lx.escape(&b)
			continue
		}
		b.WriteRune(lx.advance())
	}
	lx.toks = append(lx.toks, token{kind: tString, text: b.String(), pos: p})
}

func (lx *lexer) escape(b *strings.Builder) {
	p := lx.pos()
	c := lx.advance()
	switch c {
	case '\n':
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '\\', '\'', '"':
		b.WriteRune(c)
	case 'x', 'u':
		n := 2
		if c == 'u' {
			n = 4
		}
		if lx.i+n > len(lx.src) {
			lx.fail(p, "truncated \\%c escape", c)
		}
		v, err := strconv.ParseUint(string(lx.src[lx.i:lx.i+n]), 16, 32)
		if err != nil {
			lx.fail(p, "invalid \\%c escape", c)
		}
		for k := 0; k < n; k++ {
			lx.advance()
		}
		b.WriteRune(rune(v))
	default:
		b.WriteByte('\\')
		b.WriteRune(c)
	}
}

func (lx *lexer) operator() {
	p := lx.pos()
	for _, op := range operators {
		if lx.hasPrefix(op) {
			for range op {
				lx.advance()
			}
			switch op {
			case "(", "[", "{":
				lx.depth++
			case ")", "]", "}":
				if lx.depth > 0 {
					lx.depth--
				}
			}
			lx.emit(tOp, op, p)
			return
		}
	}
	lx.fail(p, "unexpected character %q", lx.peekAt(0))
}

func (lx *lexer) hasPrefix(op string) bool {
	k := 0
	for _, r := range op {
		if lx.peekAt(k) != r {
			return false
		}
		k++
	}
	return true
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isAlnum(c rune) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
