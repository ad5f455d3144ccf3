// Package riscv64 emits RISC-V 64 assembly from LTAC. Register-memory
// moves are first rewritten into the explicit Ld/Str forms, then a
// single dispatch loop renders the text.
package riscv64

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/asmfmt"

	"github.com/raymyers/lila-cc/pkg/ltac"
	"github.com/raymyers/lila-cc/pkg/toolchain"
)

// Compile formats the rendered assembly and writes /tmp/<name>.asm.
func Compile(file *ltac.File) error {
	text, err := Emit(file)
	if err != nil {
		return err
	}
	out, err := asmfmt.Format(strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("formatting assembly: %w", err)
	}
	return os.WriteFile("/tmp/"+file.Name+".asm", out, 0644)
}

// Emit renders the file to assembly text.
func Emit(file *ltac.File) (string, error) {
	var buf bytes.Buffer
	e := &emitter{w: &buf}
	e.writeData(file.Data)
	e.writeCode(Transform(file.Code))
	return buf.String(), nil
}

// BuildAsm assembles the generated file.
func BuildAsm(name string, noLink bool) error {
	return toolchain.Assemble(name, noLink)
}

// Link links the objects into an executable or shared library.
func Link(inputs []string, output string, useC, isLib bool) error {
	return toolchain.Link(inputs, output, toolchain.LinkOptions{
		UseC:      useC,
		IsLib:     isLib,
		DynLinker: "/lib64/ld-linux-riscv64-lp64d.so.1",
		CrtDir:    "/usr/lib64",
	})
}

// Fixed register maps. s0 is the frame pointer; s2 and s3 are the
// addressing scratch pair and stay out of the op table.
var (
	opRegs   = []string{"s1", "s4", "s5", "s6", "s7"}
	argRegs  = []string{"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7"}
	kargRegs = []string{"a7", "a0", "a1", "a2", "a3", "a4", "a5"}
)

func opReg(n int) string { return opRegs[n] }

// regRef renders a register-class operand.
func regRef(a ltac.Arg) string {
	switch a.Kind {
	case ltac.ArgRetRegI32, ltac.ArgRetRegU32,
		ltac.ArgRetRegI64, ltac.ArgRetRegU64:
		return "a0"
	}
	if a.Kind.IsReg() {
		return opReg(a.Reg)
	}
	return "?"
}

type emitter struct {
	w io.Writer

	// Frame size for the open function: declared locals plus the
	// 16-byte ra/s0 save area.
	stackSize int

	// Most recent comparison; branches reload its operands.
	cmpInstr *ltac.Instr
}

func (e *emitter) writeData(data []ltac.Data) {
	fmt.Fprintln(e.w, ".data")
	for _, d := range data {
		switch d.Type {
		case ltac.StringL:
			fmt.Fprintf(e.w, "%s: .string \"%s\"\n", d.Name, d.Val)
		case ltac.FloatL:
			fmt.Fprintf(e.w, "%s: .long %s\n", d.Name, d.Val)
		case ltac.DoubleL:
			fmt.Fprintf(e.w, "%s: .quad %s\n", d.Name, d.Val)
		}
	}
	fmt.Fprintln(e.w)
}

func (e *emitter) writeCode(code []ltac.Instr) {
	fmt.Fprintln(e.w, ".text")

	for i := range code {
		instr := &code[i]
		switch instr.Op {
		case ltac.Extern:
			fmt.Fprintf(e.w, ".extern %s\n", instr.Name)
		case ltac.Label:
			fmt.Fprintf(e.w, "%s:\n", instr.Name)
		case ltac.Func:
			e.stackSize = instr.Arg1Val + 16
			e.buildFunc(instr)
		case ltac.Ret:
			e.buildRet()

		case ltac.LdArgI32, ltac.LdArgU32, ltac.LdArgPtr:
			e.buildLdArg(instr)

		case ltac.Mov, ltac.MovQ:
			e.buildMov(instr)

		case ltac.Ld, ltac.LdQ, ltac.Str, ltac.StrQ:
			e.buildLdStr(instr)

		case ltac.PushArg:
			e.buildPushArg(instr, false)
		case ltac.KPushArg:
			e.buildPushArg(instr, true)
		case ltac.Call:
			fmt.Fprintf(e.w, "call %s\n\n", instr.Name)

		case ltac.I32Cmp, ltac.U32Cmp:
			e.cmpInstr = instr

		case ltac.Br:
			fmt.Fprintf(e.w, "j %s\n\n", instr.Name)
		case ltac.Be, ltac.Bne, ltac.Bl, ltac.Ble, ltac.Bg, ltac.Bge:
			e.buildCondJump(instr)

		case ltac.I32Add, ltac.I32Sub, ltac.I32Mul, ltac.I32Div,
			ltac.I32Mod, ltac.I32And, ltac.I32Or, ltac.I32Xor,
			ltac.I32Lsh, ltac.I32Rsh:
			e.buildInstr(instr)
		}
		// Everything else is not implemented on this target yet.
	}
}
