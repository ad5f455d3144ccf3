package riscv64

import "github.com/raymyers/lila-cc/pkg/ltac"

// ldForMov and strForMov map a move op onto the explicit load/store
// forms this target consumes.
var ldForMov = map[ltac.Op]ltac.Op{
	ltac.Mov:   ltac.Ld,
	ltac.MovB:  ltac.LdB,
	ltac.MovUB: ltac.LdUB,
	ltac.MovW:  ltac.LdW,
	ltac.MovUW: ltac.LdUW,
	ltac.MovU:  ltac.LdU,
	ltac.MovQ:  ltac.LdQ,
	ltac.MovUQ: ltac.LdUQ,
}

var strForMov = map[ltac.Op]ltac.Op{
	ltac.Mov:   ltac.Str,
	ltac.MovB:  ltac.StrB,
	ltac.MovUB: ltac.StrUB,
	ltac.MovW:  ltac.StrW,
	ltac.MovUW: ltac.StrUW,
	ltac.MovU:  ltac.StrU,
	ltac.MovQ:  ltac.StrQ,
	ltac.MovUQ: ltac.StrUQ,
}

func isMemArg(a ltac.Arg) bool {
	return a.Kind == ltac.ArgMem || a.Kind == ltac.ArgMemOffset
}

// Transform rewrites the register-memory Mov forms into Ld/Str, and
// stages literal stores and memory math operands through registers,
// so the emit loop only ever sees load-store shapes. In the Ld/Str
// forms Arg1 is the memory operand and Arg2 the register.
func Transform(code []ltac.Instr) []ltac.Instr {
	out := make([]ltac.Instr, 0, len(code))

	for i := range code {
		instr := code[i]

		if ldOp, isMov := ldForMov[instr.Op]; isMov {
			switch {
			case isMemArg(instr.Arg1) &&
				(instr.Arg2.Kind.IsLiteral() || instr.Arg2.Kind == ltac.ArgPtrLcl):
				// No store-immediate form: materialise first.
				li := ltac.NewInstr(instr.Op)
				li.Arg1 = ltac.Reg32(0)
				li.Arg2 = instr.Arg2
				out = append(out, li)

				st := ltac.NewInstr(strForMov[instr.Op])
				st.Arg1 = instr.Arg1
				st.Arg2 = ltac.Reg32(0)
				out = append(out, st)
				continue

			case isMemArg(instr.Arg1):
				st := ltac.NewInstr(strForMov[instr.Op])
				st.Arg1 = instr.Arg1
				st.Arg2 = instr.Arg2
				out = append(out, st)
				continue

			case isMemArg(instr.Arg2):
				ld := ltac.NewInstr(ldOp)
				ld.Arg1 = instr.Arg2
				ld.Arg2 = instr.Arg1
				out = append(out, ld)
				continue
			}
			out = append(out, instr)
			continue
		}

		if isMathOp(instr.Op) && isMemArg(instr.Arg2) {
			ld := ltac.NewInstr(ltac.Ld)
			ld.Arg1 = instr.Arg2
			ld.Arg2 = ltac.Reg32(2)
			out = append(out, ld)

			instr.Arg2 = ltac.Reg32(2)
			out = append(out, instr)
			continue
		}

		out = append(out, instr)
	}

	return out
}

func isMathOp(op ltac.Op) bool {
	switch op {
	case ltac.I32Add, ltac.I32Sub, ltac.I32Mul, ltac.I32Div,
		ltac.I32Mod, ltac.I32And, ltac.I32Or, ltac.I32Xor,
		ltac.I32Lsh, ltac.I32Rsh:
		return true
	}
	return false
}
