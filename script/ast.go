package script

// Node is any syntax tree node.
type Node interface {
	Position() Pos
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmt()
}

// Program is a parsed script.
type Program struct {
	Body []Stmt
}

type (
	// Name is a bare identifier.
	Name struct {
		Pos Pos
		ID  string
	}

	// Const is a literal int, float, string, True, False or None.
	Const struct {
		Pos   Pos
		Value Value
	}

	ListExpr struct {
		Pos  Pos
		Elts []Expr
	}

	TupleExpr struct {
		Pos  Pos
		Elts []Expr
	}

	DictExpr struct {
		Pos    Pos
		Keys   []Expr
		Values []Expr
	}

	// Keyword is a name=value call argument.
	Keyword struct {
		Pos   Pos
		Name  string
		Value Expr
	}

	Call struct {
		Pos      Pos
		Func     Expr
		Args     []Expr
		Keywords []Keyword
	}

	// Attribute is X.Attr. It is only meaningful as a method callee.
	Attribute struct {
		Pos  Pos
		X    Expr
		Attr string
	}

	Index struct {
		Pos   Pos
		X     Expr
		Index Expr
	}

	// Slice appears only as the Index of an Index node. Nil bounds are open.
	Slice struct {
		Pos  Pos
		Lo   Expr
		Hi   Expr
		Step Expr
	}

	// BoolOp is a short-circuit "and" or "or".
	BoolOp struct {
		Pos Pos
		Op  string
		X   Expr
		Y   Expr
	}

	Unary struct {
		Pos Pos
		Op  string // "-", "+" or "not"
		X   Expr
	}

	Binary struct {
		Pos Pos
		Op  string
		X   Expr
		Y   Expr
	}

	// Compare is a possibly chained comparison: X Ops[0] Rest[0] Ops[1] Rest[1]...
	Compare struct {
		Pos  Pos
		X    Expr
		Ops  []string
		Rest []Expr
	}

	// CondExpr is "Body if Test else Else".
	CondExpr struct {
		Pos  Pos
		Body Expr
		Test Expr
		Else Expr
	}
)

type (
	ExprStmt struct {
		Pos Pos
		X   Expr
	}

	// Assign binds Value to each of Targets, left to right.
	Assign struct {
		Pos     Pos
		Targets []Expr
		Value   Expr
	}

	AugAssign struct {
		Pos    Pos
		Target Expr
		Op     string // binary operator without "="
		Value  Expr
	}

	// If holds elif chains as a nested If in Else.
	If struct {
		Pos  Pos
		Test Expr
		Body []Stmt
		Else []Stmt
	}

	While struct {
		Pos  Pos
		Test Expr
		Body []Stmt
	}

	For struct {
		Pos    Pos
		Target Expr
		Iter   Expr
		Body   []Stmt
	}

	Param struct {
		Pos     Pos
		Name    string
		Default Expr
	}

	FuncDef struct {
		Pos    Pos
		Name   string
		Params []Param
		Body   []Stmt
	}

	Return struct {
		Pos   Pos
		Value Expr
	}

	Break struct{ Pos Pos }

	Continue struct{ Pos Pos }

	Pass struct{ Pos Pos }

	Raise struct {
		Pos Pos
		Exc Expr
	}

	Assert struct {
		Pos  Pos
		Test Expr
		Msg  Expr
	}

	// Import is parsed so it can be rejected.
	Import struct {
		Pos   Pos
		Names []string
	}

	// ImportFrom is parsed so it can be rejected.
	ImportFrom struct {
		Pos    Pos
		Module string
		Names  []string
	}
)

func (n *Name) Position() Pos      { return n.Pos }
func (n *Const) Position() Pos     { return n.Pos }
func (n *ListExpr) Position() Pos  { return n.Pos }
func (n *TupleExpr) Position() Pos { return n.Pos }
func (n *DictExpr) Position() Pos  { return n.Pos }
func (n *Call) Position() Pos      { return n.Pos }
func (n *Attribute) Position() Pos { return n.Pos }
func (n *Index) Position() Pos     { return n.Pos }
func (n *Slice) Position() Pos     { return n.Pos }
func (n *BoolOp) Position() Pos    { return n.Pos }
func (n *Unary) Position() Pos     { return n.Pos }
func (n *Binary) Position() Pos    { return n.Pos }
func (n *Compare) Position() Pos   { return n.Pos }
func (n *CondExpr) Position() Pos  { return n.Pos }

func (n *ExprStmt) Position() Pos   { return n.Pos }
func (n *Assign) Position() Pos     { return n.Pos }
func (n *AugAssign) Position() Pos  { return n.Pos }
func (n *If) Position() Pos         { return n.Pos }
func (n *While) Position() Pos      { return n.Pos }
func (n *For) Position() Pos        { return n.Pos }
func (n *FuncDef) Position() Pos    { return n.Pos }
func (n *Return) Position() Pos     { return n.Pos }
func (n *Break) Position() Pos      { return n.Pos }
func (n *Continue) Position() Pos   { return n.Pos }
func (n *Pass) Position() Pos       { return n.Pos }
func (n *Raise) Position() Pos      { return n.Pos }
func (n *Assert) Position() Pos     { return n.Pos }
func (n *Import) Position() Pos     { return n.Pos }
func (n *ImportFrom) Position() Pos { return n.Pos }

func (*Name) expr()      {}
func (*Const) expr()     {}
func (*ListExpr) expr()  {}
func (*TupleExpr) expr() {}
func (*DictExpr) expr()  {}
func (*Call) expr()      {}
func (*Attribute) expr() {}
func (*Index) expr()     {}
func (*Slice) expr()     {}
func (*BoolOp) expr()    {}
func (*Unary) expr()     {}
func (*Binary) expr()    {}
func (*Compare) expr()   {}
func (*CondExpr) expr()  {}

func (*ExprStmt) stmt()   {}
func (*Assign) stmt()     {}
func (*AugAssign) stmt()  {}
func (*If) stmt()         {}
func (*While) stmt()      {}
func (*For) stmt()        {}
func (*FuncDef) stmt()    {}
func (*Return) stmt()     {}
func (*Break) stmt()      {}
func (*Continue) stmt()   {}
func (*Pass) stmt()       {}
func (*Raise) stmt()      {}
func (*Assert) stmt()     {}
func (*Import) stmt()     {}
func (*ImportFrom) stmt() {}

// Inspect walks the tree rooted at n in source order, calling f for each
// node. If f returns false, the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *ListExpr:
		inspectExprs(n.Elts, f)
	case *TupleExpr:
		inspectExprs(n.Elts, f)
	case *DictExpr:
		for i := range n.Keys {
			Inspect(n.Keys[i], f)
			Inspect(n.Values[i], f)
		}
	case *Call:
		Inspect(n.Func, f)
		inspectExprs(n.Args, f)
		for _, kw := range n.Keywords {
			Inspect(kw.Value, f)
		}
	case *Attribute:
		Inspect(n.X, f)
	case *Index:
		Inspect(n.X, f)
		Inspect(n.Index, f)
	case *Slice:
		inspectOpt(n.Lo, f)
		inspectOpt(n.Hi, f)
		inspectOpt(n.Step, f)
	case *BoolOp:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *Unary:
		Inspect(n.X, f)
	case *Binary:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *Compare:
		Inspect(n.X, f)
		inspectExprs(n.Rest, f)
	case *CondExpr:
		Inspect(n.Body, f)
		Inspect(n.Test, f)
		Inspect(n.Else, f)
	case *ExprStmt:
		Inspect(n.X, f)
	case *Assign:
		inspectExprs(n.Targets, f)
		Inspect(n.Value, f)
	case *AugAssign:
		Inspect(n.Target, f)
		Inspect(n.Value, f)
	case *If:
		Inspect(n.Test, f)
		inspectStmts(n.Body, f)
		inspectStmts(n.Else, f)
	case *While:
		Inspect(n.Test, f)
		inspectStmts(n.Body, f)
	case *For:
		Inspect(n.Target, f)
		Inspect(n.Iter, f)
		inspectStmts(n.Body, f)
	case *FuncDef:
		for _, p := range n.Params {
			inspectOpt(p.Default, f)
		}
		inspectStmts(n.Body, f)
	case *Return:
		inspectOpt(n.Value, f)
	case *Raise:
		inspectOpt(n.Exc, f)
	case *Assert:
		Inspect(n.Test, f)
		inspectOpt(n.Msg, f)
	}
}

func inspectOpt(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func inspectExprs(es []Expr, f func(Node) bool) {
	for _, e := range es {
		Inspect(e, f)
	}
}

func inspectStmts(ss []Stmt, f func(Node) bool) {
	for _, s := range ss {
		Inspect(s, f)
	}
}
