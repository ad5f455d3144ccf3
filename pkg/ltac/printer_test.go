package ltac

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintFile(t *testing.T) {
	f := NewFile("demo")
	f.Data = append(f.Data,
		Data{Type: StringL, Name: "STR0", Val: "hi"},
		Data{Type: DoubleL, Name: "FLT0", Val: "4614256656552045848"},
	)

	fc := NewInstr(Func)
	fc.Name = "main"
	fc.Arg1Val = 16
	f.Code = append(f.Code, fc)

	mov := NewInstr(Mov)
	mov.Arg1 = Mem(4)
	mov.Arg2 = I32(5)
	f.Code = append(f.Code, mov)

	lbl := NewInstr(Label)
	lbl.Name = "L0"
	f.Code = append(f.Code, lbl)

	br := NewInstr(Bne)
	br.Name = "L0"
	f.Code = append(f.Code, br)

	f.Code = append(f.Code, NewInstr(Ret))

	var buf bytes.Buffer
	NewPrinter(&buf).PrintFile(f)
	out := buf.String()

	for _, want := range []string{
		"file demo",
		`STR0: string "hi"`,
		"FLT0: double 4614256656552045848",
		"func main [stack=16]",
		"mov [bp-4], 5",
		"L0:",
		"bne L0",
		"ret",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintMemOffsetArgs(t *testing.T) {
	if s := argString(MemOffset(8, IndexImm{Offset: 12})); s != "[bp-8 +12]" {
		t.Errorf("imm index: %q", s)
	}
	if s := argString(MemOffset(8, IndexMem{Pos: 4, Size: 4})); s != "[bp-8 +[bp-4]*4]" {
		t.Errorf("mem index: %q", s)
	}
	if s := argString(MemOffset(8, IndexReg{Reg: 1, Size: 8})); s != "[bp-8 +r1*8]" {
		t.Errorf("reg index: %q", s)
	}
}
