// Package aarch64 emits AArch64 assembly from LTAC. Coverage is the
// minimum call-capable set: functions, labels, calls, argument passing
// (plain and kernel) and the unconditional branch. Every other op
// dispatches as a no-op.
package aarch64

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
		DynLinker: "/lib/ld-linux-aarch64.so.1",
		CrtDir:    "/usr/lib64",
	})
}

type emitter struct {
	w io.Writer

	// The epilogue needs the frame size chosen at the prologue.
	stackSize int
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
			e.buildFunc(instr)
		case ltac.Ret:
			e.buildRet()
		case ltac.PushArg:
			e.buildPushArg(instr, false)
		case ltac.KPushArg:
			e.buildPushArg(instr, true)
		case ltac.Call:
			fmt.Fprintf(e.w, "bl %s\n\n", instr.Name)
		case ltac.Br:
			fmt.Fprintf(e.w, "b %s\n", instr.Name)
		}
		// Remaining ops are deliberately absent at this stage.
	}
}

// buildFunc emits the prologue. The frame grows until it clears the
// local high-water mark by 24 bytes: saved fp/lr plus one scratch.
func (e *emitter) buildFunc(instr *ltac.Instr) {
	size := instr.Arg1Val
	if size == 0 {
		size = 16
	}
	for size-instr.Arg2Val < 24 {
		size += 16
	}
	e.stackSize = size

	fmt.Fprintf(e.w, ".global %s\n", instr.Name)
	fmt.Fprintf(e.w, "%s:\n", instr.Name)
	fmt.Fprintf(e.w, "stp x29, x30, [sp, -%d]!\n", size)
	fmt.Fprintln(e.w, "mov x29, sp")
	fmt.Fprintln(e.w)
}

func (e *emitter) buildRet() {
	fmt.Fprintf(e.w, "ldp x29, x30, [sp], %d\n", e.stackSize)
	fmt.Fprintln(e.w, "ret")
}

var (
	argRegs32  = []string{"w0", "w1", "w2", "w3", "w4", "w5", "w6", "w7"}
	argRegs64  = []string{"x0", "x1", "x2", "x3", "x4", "x5", "x6", "x7"}
	kargRegs32 = []string{"w8", "w0", "w1", "w2", "w3", "w4", "w5"}
	kargRegs64 = []string{"x8", "x0", "x1", "x2", "x3", "x4", "x5"}
)

// buildPushArg loads a call argument. Local data pointers take the
// adrp/lo12 pair.
func (e *emitter) buildPushArg(instr *ltac.Instr, isKarg bool) {
	n := instr.Arg2Val - 1
	reg32 := argRegs32[n]
	reg64 := argRegs64[n]
	if isKarg {
		reg32 = kargRegs32[n]
		reg64 = kargRegs64[n]
	}

	switch instr.Arg1.Kind {
	case ltac.ArgI32:
		fmt.Fprintf(e.w, "mov %s, %d\n", reg32, instr.Arg1.IVal)
	case ltac.ArgPtrLcl:
		fmt.Fprintf(e.w, "adrp %s, %s\n", reg64, instr.Arg1.SVal)
		fmt.Fprintf(e.w, "add %s, %s, :lo12:%s\n", reg64, reg64, instr.Arg1.SVal)
	case ltac.ArgMem:
		fmt.Fprintf(e.w, "ldr %s, [x29, -%d]\n", reg32, instr.Arg1.Pos)
	}
}
