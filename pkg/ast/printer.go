package ast

import (
	"fmt"
	"io"
)

// Printer outputs the AST in a readable format for the -dparse flag.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new AST printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintTree prints a complete tree.
func (p *Printer) PrintTree(t *Tree) {
	fmt.Fprintf(p.w, "tree %s", t.FileName)
	if t.Module != "" {
		fmt.Fprintf(p.w, " (module %s)", t.Module)
	}
	fmt.Fprintln(p.w)

	for _, c := range t.Constants {
		fmt.Fprintf(p.w, "const %s %s = ", modName(c.DataType.ModType), c.Name)
		p.printArg(c.Value)
		fmt.Fprintln(p.w)
	}

	for _, f := range t.Functions {
		p.printFunc(&f)
	}
}

func (p *Printer) printFunc(f *Func) {
	if f.IsExtern {
		fmt.Fprintf(p.w, "extern func %s\n", f.Name)
		return
	}
	fmt.Fprintf(p.w, "func %s", f.Name)
	if len(f.Modifiers) > 0 {
		fmt.Fprintf(p.w, " -> %s", modName(f.Modifiers[0].ModType))
	}
	fmt.Fprintln(p.w)
	for _, a := range f.Args {
		fmt.Fprintf(p.w, "  param %s %s\n", modName(a.Modifiers[0].ModType), a.Name)
	}
	for _, s := range f.Statements {
		p.printStmt(&s)
	}
}

func (p *Printer) printStmt(s *Stmt) {
	fmt.Fprintf(p.w, "  %s", stmtName(s.StmtType))
	if s.Name != "" {
		fmt.Fprintf(p.w, " %s", s.Name)
	}
	if len(s.SubArgs) > 0 {
		fmt.Fprint(p.w, " [")
		for i, a := range s.SubArgs {
			if i > 0 {
				fmt.Fprint(p.w, " ")
			}
			p.printArg(a)
		}
		fmt.Fprint(p.w, "]")
	}
	if len(s.Args) > 0 {
		fmt.Fprint(p.w, " :")
		for _, a := range s.Args {
			fmt.Fprint(p.w, " ")
			p.printArg(a)
		}
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) printArg(a Arg) {
	switch a.ArgType {
	case IntL:
		fmt.Fprintf(p.w, "%d", a.U64Val)
	case FloatL:
		fmt.Fprintf(p.w, "%g", a.F64Val)
	case StringL:
		fmt.Fprintf(p.w, "%q", a.StrVal)
	case CharL:
		fmt.Fprintf(p.w, "'%c'", a.CharVal)
	case Id:
		fmt.Fprint(p.w, a.StrVal)
		if len(a.SubArgs) > 0 {
			fmt.Fprint(p.w, "[")
			for i, sub := range a.SubArgs {
				if i > 0 {
					fmt.Fprint(p.w, " ")
				}
				p.printArg(sub)
			}
			fmt.Fprint(p.w, "]")
		}
	case Array:
		fmt.Fprint(p.w, "array(")
		for i, sub := range a.SubArgs {
			if i > 0 {
				fmt.Fprint(p.w, " ")
			}
			p.printArg(sub)
		}
		fmt.Fprint(p.w, ")")
	default:
		fmt.Fprint(p.w, opSymbol(a.ArgType))
	}
}

func stmtName(t StmtType) string {
	switch t {
	case VarDec:
		return "var"
	case VarAssign:
		return "assign"
	case ArrayAssign:
		return "array-assign"
	case If:
		return "if"
	case Elif:
		return "elif"
	case Else:
		return "else"
	case While:
		return "while"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case FuncCall:
		return "call"
	case Return:
		return "return"
	case ExitStmt:
		return "exit"
	case End:
		return "end"
	}
	return "?"
}

func opSymbol(t ArgType) string {
	switch t {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpXor:
		return "^"
	case OpLeftShift:
		return "<<"
	case OpRightShift:
		return ">>"
	}
	return "?"
}

func modName(t ModType) string {
	switch t {
	case Byte:
		return "byte"
	case UByte:
		return "ubyte"
	case Short:
		return "short"
	case UShort:
		return "ushort"
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Int64:
		return "int64"
	case UInt64:
		return "uint64"
	case Float:
		return "float"
	case Double:
		return "double"
	case Char:
		return "char"
	case Str:
		return "str"
	case ByteDynArray:
		return "byte[]"
	case UByteDynArray:
		return "ubyte[]"
	case ShortDynArray:
		return "short[]"
	case UShortDynArray:
		return "ushort[]"
	case IntDynArray:
		return "int[]"
	case UIntDynArray:
		return "uint[]"
	case I64DynArray:
		return "int64[]"
	case U64DynArray:
		return "uint64[]"
	case FloatDynArray:
		return "float[]"
	case DoubleDynArray:
		return "double[]"
	}
	return "void"
}
