package ltac

import (
	"fmt"
	"io"
)

// Printer renders an LTAC file in a readable format for the -dltac
// debug flag. The output is diagnostic text, not assembly.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new LTAC printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintFile prints the data section followed by the code section.
func (p *Printer) PrintFile(f *File) {
	fmt.Fprintf(p.w, "file %s\n", f.Name)

	for _, d := range f.Data {
		switch d.Type {
		case StringL:
			fmt.Fprintf(p.w, "  %s: string %q\n", d.Name, d.Val)
		case FloatL:
			fmt.Fprintf(p.w, "  %s: float %s\n", d.Name, d.Val)
		case DoubleL:
			fmt.Fprintf(p.w, "  %s: double %s\n", d.Name, d.Val)
		}
	}
	if len(f.Data) > 0 {
		fmt.Fprintln(p.w)
	}

	for _, i := range f.Code {
		p.printInstr(i)
	}
}

func (p *Printer) printInstr(i Instr) {
	switch i.Op {
	case Extern:
		fmt.Fprintf(p.w, "extern %s\n", i.Name)
	case Func:
		fmt.Fprintf(p.w, "func %s [stack=%d]\n", i.Name, i.Arg1Val)
	case Label:
		fmt.Fprintf(p.w, "%s:\n", i.Name)
	case Ret:
		fmt.Fprintln(p.w, "  ret")
	case Call:
		fmt.Fprintf(p.w, "  call %s\n", i.Name)
	case Syscall:
		fmt.Fprintln(p.w, "  syscall")
	case Br:
		fmt.Fprintf(p.w, "  br %s\n", i.Name)
	default:
		if i.Op.IsCondBranch() {
			fmt.Fprintf(p.w, "  %s %s\n", opName(i.Op), i.Name)
			return
		}
		fmt.Fprintf(p.w, "  %s", opName(i.Op))
		if i.Arg1.Kind != ArgEmpty {
			fmt.Fprintf(p.w, " %s", argString(i.Arg1))
		}
		if i.Arg2.Kind != ArgEmpty {
			fmt.Fprintf(p.w, ", %s", argString(i.Arg2))
		}
		if i.Op == PushArg || i.Op == KPushArg {
			fmt.Fprintf(p.w, " [%d]", i.Arg2Val)
		}
		if i.Op >= LdArgI8 && i.Op <= LdArgPtr {
			fmt.Fprintf(p.w, " [%d]", i.Arg2Val)
		}
		fmt.Fprintln(p.w)
	}
}

var opNames = map[Op]string{
	Nop: "nop", Mov: "mov", MovB: "mov.b", MovUB: "mov.ub",
	MovW: "mov.w", MovUW: "mov.uw", MovU: "mov.u", MovQ: "mov.q",
	MovUQ: "mov.uq", MovF32: "mov.f32", MovF64: "mov.f64",
	MovI32Vec: "mov.i32vec",
	Ld:        "ld", LdB: "ld.b", LdUB: "ld.ub", LdW: "ld.w",
	LdUW: "ld.uw", LdU: "ld.u", LdQ: "ld.q", LdUQ: "ld.uq",
	Str: "str", StrB: "str.b", StrUB: "str.ub", StrW: "str.w",
	StrUW: "str.uw", StrU: "str.u", StrQ: "str.q", StrUQ: "str.uq",
	StrPtr:  "str.ptr",
	LdArgI8: "ldarg.i8", LdArgU8: "ldarg.u8", LdArgI16: "ldarg.i16",
	LdArgU16: "ldarg.u16", LdArgI32: "ldarg.i32",
	LdArgU32: "ldarg.u32", LdArgI64: "ldarg.i64",
	LdArgU64: "ldarg.u64", LdArgF32: "ldarg.f32",
	LdArgF64: "ldarg.f64", LdArgPtr: "ldarg.ptr",
	PushArg: "pusharg", KPushArg: "kpusharg",
	Malloc: "malloc", Free: "free", Exit: "exit",
	I8Cmp: "cmp.i8", U8Cmp: "cmp.u8", I16Cmp: "cmp.i16",
	U16Cmp: "cmp.u16", I32Cmp: "cmp.i32", U32Cmp: "cmp.u32",
	I64Cmp: "cmp.i64", U64Cmp: "cmp.u64", F32Cmp: "cmp.f32",
	F64Cmp: "cmp.f64", StrCmp: "cmp.str",
	Be: "be", Bne: "bne", Bl: "bl", Ble: "ble", Bg: "bg", Bge: "bge",
	Bfl: "bfl", Bfle: "bfle", Bfg: "bfg", Bfge: "bfge",
	I8Add: "add.i8", I8Sub: "sub.i8", I8Mul: "mul.i8",
	I8Div: "div.i8", I8Mod: "mod.i8",
	U8Add: "add.u8", U8Sub: "sub.u8", U8Mul: "mul.u8",
	U8Div: "div.u8", U8Mod: "mod.u8",
	I16Add: "add.i16", I16Sub: "sub.i16", I16Mul: "mul.i16",
	I16Div: "div.i16", I16Mod: "mod.i16",
	U16Add: "add.u16", U16Sub: "sub.u16", U16Mul: "mul.u16",
	U16Div: "div.u16", U16Mod: "mod.u16",
	I32Add: "add.i32", I32Sub: "sub.i32", I32Mul: "mul.i32",
	I32Div: "div.i32", I32Mod: "mod.i32",
	U32Add: "add.u32", U32Sub: "sub.u32", U32Mul: "mul.u32",
	U32Div: "div.u32", U32Mod: "mod.u32",
	I64Add: "add.i64", I64Sub: "sub.i64", I64Mul: "mul.i64",
	I64Div: "div.i64", I64Mod: "mod.i64",
	U64Add: "add.u64", U64Sub: "sub.u64", U64Mul: "mul.u64",
	U64Div: "div.u64", U64Mod: "mod.u64",
	I8And: "and.i8", I8Or: "or.i8", I8Xor: "xor.i8",
	I8Lsh: "lsh.i8", I8Rsh: "rsh.i8",
	I16And: "and.i16", I16Or: "or.i16", I16Xor: "xor.i16",
	I16Lsh: "lsh.i16", I16Rsh: "rsh.i16",
	I32And: "and.i32", I32Or: "or.i32", I32Xor: "xor.i32",
	I32Lsh: "lsh.i32", I32Rsh: "rsh.i32",
	I64And: "and.i64", I64Or: "or.i64", I64Xor: "xor.i64",
	I64Lsh: "lsh.i64", I64Rsh: "rsh.i64",
	F32Add: "add.f32", F32Sub: "sub.f32", F32Mul: "mul.f32",
	F32Div: "div.f32",
	F64Add: "add.f64", F64Sub: "sub.f64", F64Mul: "mul.f64",
	F64Div: "div.f64",
}

func opName(o Op) string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(o))
}

func argString(a Arg) string {
	switch a.Kind {
	case ArgReg8, ArgReg16, ArgReg32, ArgReg64:
		return fmt.Sprintf("r%d", a.Reg)
	case ArgFltReg, ArgFltReg64:
		return fmt.Sprintf("fr%d", a.Reg)
	case ArgRetRegI32, ArgRetRegU32, ArgRetRegI64, ArgRetRegU64:
		return "iret"
	case ArgRetRegF32, ArgRetRegF64:
		return "fret"
	case ArgMem:
		return fmt.Sprintf("[bp-%d]", a.Pos)
	case ArgMemOffset:
		switch idx := a.Index.(type) {
		case IndexImm:
			return fmt.Sprintf("[bp-%d +%d]", a.Pos, idx.Offset)
		case IndexMem:
			return fmt.Sprintf("[bp-%d +[bp-%d]*%d]", a.Pos, idx.Pos, idx.Size)
		case IndexReg:
			return fmt.Sprintf("[bp-%d +r%d*%d]", a.Pos, idx.Reg, idx.Size)
		}
		return fmt.Sprintf("[bp-%d +?]", a.Pos)
	case ArgByte, ArgI16, ArgI32, ArgI64:
		return fmt.Sprintf("%d", a.IVal)
	case ArgUByte, ArgU16, ArgU32, ArgU64:
		return fmt.Sprintf("%d", a.UVal)
	case ArgF32, ArgF64, ArgPtrLcl:
		return a.SVal
	case ArgPtr:
		return fmt.Sprintf("ptr[bp-%d]", a.Pos)
	}
	return "_"
}
