package ltacgen

import (
	"sort"

	"github.com/samber/lo"

	"github.com/raymyers/lila-cc/pkg/ast"
	"github.com/raymyers/lila-cc/pkg/diag"
	"github.com/raymyers/lila-cc/pkg/ltac"
)

// buildArrayAlloc lowers `T[] a = array(n)`: push the byte size, run
// the malloc intrinsic, and store the returned pointer in the slot.
func (b *Builder) buildArrayAlloc(line *ast.Stmt, v Var) {
	size := &line.Args[0].SubArgs[0]
	elemWidth := v.DataType.Elem().Width()

	push := ltac.NewInstr(ltac.PushArg)
	push.Arg2Val = 1

	switch size.ArgType {
	case ast.IntL:
		push.Arg1 = ltac.I32(int32(size.U64Val) * int32(elemWidth))
		b.push(push)

	case ast.Id:
		sv, ok := b.vars[size.StrVal]
		if !ok {
			b.errs.Report(diag.UnknownIdentifier, line.LineNo,
				"unknown size variable %s", size.StrVal)
			return
		}
		mov := ltac.NewInstr(ltac.Mov)
		mov.Arg1 = ltac.Reg32(0)
		mov.Arg2 = ltac.Mem(sv.Pos)
		b.push(mov)

		mul := ltac.NewInstr(ltac.I32Mul)
		mul.Arg1 = ltac.Reg32(0)
		mul.Arg2 = ltac.I32(int32(elemWidth))
		b.push(mul)

		push.Arg1 = ltac.Reg32(0)
		b.push(push)

	default:
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"unsupported array size expression")
		return
	}

	malloc := ltac.NewInstr(ltac.Malloc)
	malloc.Name = "malloc"
	b.push(malloc)

	store := ltac.NewInstr(ltac.MovQ)
	store.Arg1 = ltac.Mem(v.Pos)
	store.Arg2 = ltac.RetRegI64()
	b.push(store)
}

// buildArrayAssign lowers `a[i] = expr`. The destination is a
// MemOffset whose index form depends on the subscript: a literal
// becomes an immediate byte offset, a variable an in-memory index
// scaled by the element size.
func (b *Builder) buildArrayAssign(line *ast.Stmt) {
	v, ok := b.vars[line.Name]
	if !ok {
		b.errs.Report(diag.UnknownIdentifier, line.LineNo,
			"unknown array %s", line.Name)
		return
	}
	if !v.DataType.IsArray() {
		b.errs.Report(diag.TypeMismatch, line.LineNo,
			"%s is not an array", line.Name)
		return
	}
	if len(line.SubArgs) == 0 {
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"array assignment to %s has no index", line.Name)
		return
	}

	elem := v.DataType.Elem()
	idx := b.indexFor(&line.SubArgs[len(line.SubArgs)-1],
		elem.Width(), line.LineNo)
	dest := ltac.MemOffset(v.Pos, idx)

	if len(line.Args) == 1 {
		b.buildSingleAssign(line, dest, elem)
		return
	}
	b.buildExprAssign(line, dest, elem)
}

// freeArrays releases every live array before a return. Slots are
// freed in declaration order so the emitted sequence is stable.
func (b *Builder) freeArrays() {
	arrays := lo.Filter(lo.Values(b.vars), func(v Var, _ int) bool {
		return v.DataType.IsArray() && !v.IsParam
	})
	sort.Slice(arrays, func(i, j int) bool {
		return arrays[i].Pos < arrays[j].Pos
	})

	for _, v := range arrays {
		push := ltac.NewInstr(ltac.PushArg)
		push.Arg1 = ltac.Ptr(v.Pos)
		push.Arg2Val = 1
		b.push(push)

		free := ltac.NewInstr(ltac.Free)
		free.Name = "free"
		b.push(free)
	}
}
