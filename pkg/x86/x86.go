// Package x86 emits x86_64 assembly (Intel syntax) from LTAC.
// This back-end carries the complete op matrix; it is the reference
// target for the other two.
package x86

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
	e.writeCode(file.Code)
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
		DynLinker: "/lib64/ld-linux-x86-64.so.2",
		CrtDir:    "/usr/lib64",
	})
}

// emitter walks the instruction stream. lastCmp remembers the most
// recent comparison so branches can pick the signed, unsigned or
// float jump family.
type emitter struct {
	w       io.Writer
	lastCmp ltac.Op
}

func (e *emitter) writeData(data []ltac.Data) {
	fmt.Fprintln(e.w, ".intel_syntax noprefix")
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
			e.buildFunc(instr)
		case ltac.Ret:
			e.buildRet()

		case ltac.LdArgI8, ltac.LdArgU8, ltac.LdArgI16, ltac.LdArgU16,
			ltac.LdArgI32, ltac.LdArgU32, ltac.LdArgI64, ltac.LdArgU64,
			ltac.LdArgF32, ltac.LdArgF64, ltac.LdArgPtr:
			e.buildLdArg(instr)

		case ltac.Mov, ltac.MovB, ltac.MovUB, ltac.MovW, ltac.MovUW,
			ltac.MovU, ltac.MovQ, ltac.MovUQ:
			e.buildMov(instr)
		case ltac.MovF32, ltac.MovF64:
			e.buildMovFlt(instr)

		case ltac.PushArg:
			e.buildPushArg(instr, false)
		case ltac.KPushArg:
			e.buildPushArg(instr, true)
		case ltac.Call:
			fmt.Fprintf(e.w, "call %s\n", instr.Name)
		case ltac.Syscall:
			fmt.Fprintln(e.w, "syscall")
		case ltac.Malloc:
			fmt.Fprintln(e.w, "call malloc")
		case ltac.Free:
			fmt.Fprintln(e.w, "call free")
		case ltac.Exit:
			e.buildExit(instr)

		case ltac.I8Cmp, ltac.U8Cmp, ltac.I16Cmp, ltac.U16Cmp,
			ltac.I32Cmp, ltac.U32Cmp, ltac.I64Cmp, ltac.U64Cmp:
			e.lastCmp = instr.Op
			e.buildCmp(instr)
		case ltac.F32Cmp, ltac.F64Cmp:
			e.lastCmp = instr.Op
			e.buildFltCmp(instr)
		case ltac.StrCmp:
			e.lastCmp = instr.Op
			e.buildStrCmp(instr)

		case ltac.Br:
			fmt.Fprintf(e.w, "jmp %s\n", instr.Name)
		case ltac.Be, ltac.Bne, ltac.Bl, ltac.Ble, ltac.Bg, ltac.Bge,
			ltac.Bfl, ltac.Bfle, ltac.Bfg, ltac.Bfge:
			e.buildCondBranch(instr)

		case ltac.F32Add, ltac.F32Sub, ltac.F32Mul, ltac.F32Div,
			ltac.F64Add, ltac.F64Sub, ltac.F64Mul, ltac.F64Div:
			e.buildFltMath(instr)

		default:
			if mn, ok := mathMnemonics[instr.Op]; ok {
				e.buildMath(instr, mn)
			}
			// Anything else is not an x86 concern.
		}
	}
}

func (e *emitter) buildFunc(instr *ltac.Instr) {
	fmt.Fprintf(e.w, "\n.global %s\n", instr.Name)
	fmt.Fprintf(e.w, "%s:\n", instr.Name)
	fmt.Fprintln(e.w, "push rbp")
	fmt.Fprintln(e.w, "mov rbp, rsp")
	if instr.Arg1Val > 0 {
		fmt.Fprintf(e.w, "sub rsp, %d\n", instr.Arg1Val)
	}
}

func (e *emitter) buildRet() {
	fmt.Fprintln(e.w, "leave")
	fmt.Fprintln(e.w, "ret")
}

// buildLdArg stores an incoming argument register to its stack slot.
func (e *emitter) buildLdArg(instr *ltac.Instr) {
	pos := instr.Arg1.Pos
	n := instr.Arg2Val - 1

	switch instr.Op {
	case ltac.LdArgI8, ltac.LdArgU8:
		fmt.Fprintf(e.w, "mov [rbp-%d], %s\n", pos, argReg8(n))
	case ltac.LdArgI16, ltac.LdArgU16:
		fmt.Fprintf(e.w, "mov [rbp-%d], %s\n", pos, argReg16(n))
	case ltac.LdArgI32, ltac.LdArgU32:
		fmt.Fprintf(e.w, "mov [rbp-%d], %s\n", pos, argReg32(n))
	case ltac.LdArgI64, ltac.LdArgU64, ltac.LdArgPtr:
		fmt.Fprintf(e.w, "mov [rbp-%d], %s\n", pos, argReg64(n))
	case ltac.LdArgF32:
		fmt.Fprintf(e.w, "movss [rbp-%d], xmm%d\n", pos, n)
	case ltac.LdArgF64:
		fmt.Fprintf(e.w, "movsd [rbp-%d], xmm%d\n", pos, n)
	}
}

func (e *emitter) buildExit(instr *ltac.Instr) {
	switch instr.Arg1.Kind {
	case ltac.ArgI32:
		fmt.Fprintf(e.w, "mov rdi, %d\n", instr.Arg1.IVal)
	case ltac.ArgMem:
		fmt.Fprintf(e.w, "mov edi, [rbp-%d]\n", instr.Arg1.Pos)
	default:
		fmt.Fprintln(e.w, "mov rdi, 0")
	}
	fmt.Fprintln(e.w, "mov rax, 60")
	fmt.Fprintln(e.w, "syscall")
}
