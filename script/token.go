package script

import "fmt"

// Pos is a 1-based source position.
type Pos struct {
	Line int `json:"line"`
	Col  int `json:"column"`
}

// String returns "line:col".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

type tokenKind uint8

const (
	tEOF tokenKind = iota
	tNewline
	tIndent
	tDedent
	tName
	tKeyword
	tInt
	tFloat
	tString
	tOp
)

func (k tokenKind) String() string {
	switch k {
	case tEOF:
		return "end of input"
	case tNewline:
		return "newline"
	case tIndent:
		return "indent"
	case tDedent:
		return "dedent"
	case tName:
		return "name"
	case tKeyword:
		return "keyword"
	case tInt, tFloat:
		return "number"
	case tString:
		return "string"
	default:
		return "operator"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Pos
	ival int64
	fval float64
}

func (t token) describe() string {
	switch t.kind {
	case tName, tKeyword, tOp, tInt, tFloat:
		return fmt.Sprintf("%q", t.text)
	default:
		return t.kind.String()
	}
}

var keywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "False": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true, "import": true,
	"in": true, "is": true, "lambda": true, "None": true, "nonlocal": true,
	"not": true, "or": true, "pass": true, "raise": true, "return": true,
	"True": true, "try": true, "while": true, "with": true, "yield": true,
}

// Longest operators first.
var operators = []string{
	"**=", "//=",
	"==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "%=", "**", "//", "->",
	"+", "-", "*", "/", "%", "<", ">", "=", "(", ")", "[", "]", "{", "}",
	",", ":", ".", ";", "@", "&", "|", "^", "~",
}
