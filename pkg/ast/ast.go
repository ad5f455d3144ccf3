// Package ast defines the abstract syntax tree produced by the parser.
// The lowering pass consumes it read-only.
package ast

// StmtType classifies a statement.
type StmtType int

const (
	VarDec StmtType = iota
	VarAssign
	ArrayAssign
	If
	Elif
	Else
	While
	Break
	Continue
	FuncCall
	Return
	ExitStmt
	End
)

// ArgType classifies an expression token. Expressions reach the
// lowering pass as a flat list of these, already in evaluation order.
type ArgType int

const (
	NoArg ArgType = iota
	ByteL
	ShortL
	IntL
	FloatL
	CharL
	StringL
	Id
	Array
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
	OpXor
	OpLeftShift
	OpRightShift
)

// IsOperator reports whether the token is a binary operator.
func (t ArgType) IsOperator() bool {
	return t >= OpAdd && t <= OpRightShift
}

// ModType classifies a type modifier.
type ModType int

const (
	NoMod ModType = iota
	Byte
	ByteDynArray
	UByte
	UByteDynArray
	Short
	UShort
	ShortDynArray
	UShortDynArray
	Int
	UInt
	IntDynArray
	UIntDynArray
	Int64
	UInt64
	I64DynArray
	U64DynArray
	Float
	Double
	FloatDynArray
	DoubleDynArray
	Char
	Str
)

// Tree is the root of a translation unit.
type Tree struct {
	FileName  string
	Module    string
	Constants []Const
	Functions []Func
}

// Func is a function declaration, extern or with a body. The first
// modifier, when present, is the return type.
type Func struct {
	Name       string
	IsExtern   bool
	Args       []Stmt
	Statements []Stmt
	Modifiers  []Mod
	Line       string
}

// Const is a top-level constant declaration.
type Const struct {
	Name     string
	DataType Mod
	Value    Arg

	Line   string
	LineNo int
}

// Stmt is one statement. Args carries the expression token stream;
// SubArgs carries an array-index expression where one applies.
type Stmt struct {
	StmtType StmtType
	Name     string

	Args      []Arg
	SubArgs   []Arg
	Modifiers []Mod

	Line   string
	LineNo int
}

// Arg is a value carrier for literals, identifiers and operators.
// SubArgs holds an array-index or call-argument expression attached
// to an identifier.
type Arg struct {
	ArgType ArgType
	StrVal  string
	CharVal rune
	U8Val   uint8
	U16Val  uint16
	U64Val  uint64
	F64Val  float64

	SubArgs      []Arg
	SubModifiers []Mod
}

// Mod is a statement or declaration modifier.
type Mod struct {
	ModType ModType
}

// NewStmt creates a statement of the given type.
func NewStmt(t StmtType) Stmt {
	return Stmt{StmtType: t}
}

// NewArg creates an expression token of the given type.
func NewArg(t ArgType) Arg {
	return Arg{ArgType: t}
}

// IntArg creates an integer-literal token.
func IntArg(v uint64) Arg {
	return Arg{ArgType: IntL, U64Val: v}
}

// IdArg creates an identifier token.
func IdArg(name string) Arg {
	return Arg{ArgType: Id, StrVal: name}
}

// StringArg creates a string-literal token.
func StringArg(v string) Arg {
	return Arg{ArgType: StringL, StrVal: v}
}
