// Package ltacgen implements the lowering pass: AST → LTAC.
// This file holds the data-type lattice and the width-directed
// instruction selection helpers.
package ltacgen

import (
	"github.com/raymyers/lila-cc/pkg/ast"
	"github.com/raymyers/lila-cc/pkg/ltac"
)

// DataType is the lowering pass's view of a variable's type. Only
// width, signedness and array-ness matter here; anything richer was
// the parser's problem.
type DataType int

const (
	Void DataType = iota
	Byte
	UByte
	Short
	UShort
	Int
	UInt
	Int64
	UInt64
	Float
	Double
	Char
	Str
	ByteArray
	UByteArray
	ShortArray
	UShortArray
	IntArray
	UIntArray
	I64Array
	U64Array
	FloatArray
	DoubleArray
)

func astToDataType(m ast.Mod) DataType {
	switch m.ModType {
	case ast.Byte:
		return Byte
	case ast.UByte:
		return UByte
	case ast.Short:
		return Short
	case ast.UShort:
		return UShort
	case ast.Int:
		return Int
	case ast.UInt:
		return UInt
	case ast.Int64:
		return Int64
	case ast.UInt64:
		return UInt64
	case ast.Float:
		return Float
	case ast.Double:
		return Double
	case ast.Char:
		return Char
	case ast.Str:
		return Str
	case ast.ByteDynArray:
		return ByteArray
	case ast.UByteDynArray:
		return UByteArray
	case ast.ShortDynArray:
		return ShortArray
	case ast.UShortDynArray:
		return UShortArray
	case ast.IntDynArray:
		return IntArray
	case ast.UIntDynArray:
		return UIntArray
	case ast.I64DynArray:
		return I64Array
	case ast.U64DynArray:
		return U64Array
	case ast.FloatDynArray:
		return FloatArray
	case ast.DoubleDynArray:
		return DoubleArray
	}
	return Void
}

// IsArray reports whether the type is a dynamic array.
func (d DataType) IsArray() bool {
	return d >= ByteArray && d <= DoubleArray
}

// Elem returns an array type's element type.
func (d DataType) Elem() DataType {
	switch d {
	case ByteArray:
		return Byte
	case UByteArray:
		return UByte
	case ShortArray:
		return Short
	case UShortArray:
		return UShort
	case IntArray:
		return Int
	case UIntArray:
		return UInt
	case I64Array:
		return Int64
	case U64Array:
		return UInt64
	case FloatArray:
		return Float
	case DoubleArray:
		return Double
	}
	return d
}

// IsUnsigned reports unsigned integer types.
func (d DataType) IsUnsigned() bool {
	switch d {
	case UByte, UShort, UInt, UInt64:
		return true
	}
	return false
}

// IsFloat reports the floating types.
func (d DataType) IsFloat() bool {
	return d == Float || d == Double
}

// Width returns the stack footprint in bytes. Arrays and strings
// occupy one pointer slot.
func (d DataType) Width() int {
	switch d {
	case Byte, UByte, Char:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, Float:
		return 4
	case Int64, UInt64, Double, Str:
		return 8
	}
	if d.IsArray() {
		return 8
	}
	return 0
}

// movForType returns the move op for a value of the given type.
func movForType(d DataType) ltac.Op {
	switch d {
	case Byte, Char:
		return ltac.MovB
	case UByte:
		return ltac.MovUB
	case Short:
		return ltac.MovW
	case UShort:
		return ltac.MovUW
	case Int:
		return ltac.Mov
	case UInt:
		return ltac.MovU
	case Int64:
		return ltac.MovQ
	case UInt64:
		return ltac.MovUQ
	case Float:
		return ltac.MovF32
	case Double:
		return ltac.MovF64
	case Str:
		return ltac.MovQ
	}
	if d.IsArray() {
		return movForType(d.Elem())
	}
	return ltac.Mov
}

// regForType returns virtual register n in the register class of the
// given type.
func regForType(d DataType, n int) ltac.Arg {
	switch d {
	case Byte, UByte, Char:
		return ltac.Reg8(n)
	case Short, UShort:
		return ltac.Reg16(n)
	case Int, UInt:
		return ltac.Reg32(n)
	case Int64, UInt64, Str:
		return ltac.Reg64(n)
	case Float:
		return ltac.FltReg(n)
	case Double:
		return ltac.FltReg64(n)
	}
	if d.IsArray() {
		return regForType(d.Elem(), n)
	}
	return ltac.Reg32(n)
}

// retRegForType returns the return-value register of the given type.
func retRegForType(d DataType) ltac.Arg {
	switch d {
	case UInt:
		return ltac.RetRegU32()
	case Int64:
		return ltac.RetRegI64()
	case UInt64:
		return ltac.RetRegU64()
	case Float:
		return ltac.RetRegF32()
	case Double:
		return ltac.RetRegF64()
	}
	if d.IsArray() || d == Str {
		return ltac.RetRegI64()
	}
	return ltac.RetRegI32()
}

// ldargForType returns the argument-load op for a parameter of the
// given type. Arrays and strings arrive as pointers.
func ldargForType(d DataType) ltac.Op {
	switch d {
	case Byte, Char:
		return ltac.LdArgI8
	case UByte:
		return ltac.LdArgU8
	case Short:
		return ltac.LdArgI16
	case UShort:
		return ltac.LdArgU16
	case Int:
		return ltac.LdArgI32
	case UInt:
		return ltac.LdArgU32
	case Int64:
		return ltac.LdArgI64
	case UInt64:
		return ltac.LdArgU64
	case Float:
		return ltac.LdArgF32
	case Double:
		return ltac.LdArgF64
	}
	return ltac.LdArgPtr
}

// cmpForType returns the comparison op of matching width.
func cmpForType(d DataType) ltac.Op {
	switch d {
	case Byte, Char:
		return ltac.I8Cmp
	case UByte:
		return ltac.U8Cmp
	case Short:
		return ltac.I16Cmp
	case UShort:
		return ltac.U16Cmp
	case Int:
		return ltac.I32Cmp
	case UInt:
		return ltac.U32Cmp
	case Int64:
		return ltac.I64Cmp
	case UInt64:
		return ltac.U64Cmp
	case Float:
		return ltac.F32Cmp
	case Double:
		return ltac.F64Cmp
	case Str:
		return ltac.StrCmp
	}
	return ltac.I32Cmp
}

// literalForType converts an integer-literal token into the operand
// of the given type. Unsigned types reinterpret the raw value.
func literalForType(d DataType, v uint64) ltac.Arg {
	switch d {
	case Byte, Char:
		return ltac.Byte(int8(v))
	case UByte:
		return ltac.UByte(uint8(v))
	case Short:
		return ltac.I16(int16(v))
	case UShort:
		return ltac.U16(uint16(v))
	case UInt:
		return ltac.U32(uint32(v))
	case Int64:
		return ltac.I64(int64(v))
	case UInt64:
		return ltac.U64(v)
	}
	if d.IsArray() {
		return literalForType(d.Elem(), v)
	}
	return ltac.I32(int32(v))
}

// opTable maps an operator token to the op family, indexed by the
// signed 8/16/32/64 then unsigned 8/16/32/64 widths.
var opTable = map[ast.ArgType][8]ltac.Op{
	ast.OpAdd: {ltac.I8Add, ltac.I16Add, ltac.I32Add, ltac.I64Add,
		ltac.U8Add, ltac.U16Add, ltac.U32Add, ltac.U64Add},
	ast.OpSub: {ltac.I8Sub, ltac.I16Sub, ltac.I32Sub, ltac.I64Sub,
		ltac.U8Sub, ltac.U16Sub, ltac.U32Sub, ltac.U64Sub},
	ast.OpMul: {ltac.I8Mul, ltac.I16Mul, ltac.I32Mul, ltac.I64Mul,
		ltac.U8Mul, ltac.U16Mul, ltac.U32Mul, ltac.U64Mul},
	ast.OpDiv: {ltac.I8Div, ltac.I16Div, ltac.I32Div, ltac.I64Div,
		ltac.U8Div, ltac.U16Div, ltac.U32Div, ltac.U64Div},
	ast.OpMod: {ltac.I8Mod, ltac.I16Mod, ltac.I32Mod, ltac.I64Mod,
		ltac.U8Mod, ltac.U16Mod, ltac.U32Mod, ltac.U64Mod},
	ast.OpAnd: {ltac.I8And, ltac.I16And, ltac.I32And, ltac.I64And,
		ltac.I8And, ltac.I16And, ltac.I32And, ltac.I64And},
	ast.OpOr: {ltac.I8Or, ltac.I16Or, ltac.I32Or, ltac.I64Or,
		ltac.I8Or, ltac.I16Or, ltac.I32Or, ltac.I64Or},
	ast.OpXor: {ltac.I8Xor, ltac.I16Xor, ltac.I32Xor, ltac.I64Xor,
		ltac.I8Xor, ltac.I16Xor, ltac.I32Xor, ltac.I64Xor},
	ast.OpLeftShift: {ltac.I8Lsh, ltac.I16Lsh, ltac.I32Lsh, ltac.I64Lsh,
		ltac.I8Lsh, ltac.I16Lsh, ltac.I32Lsh, ltac.I64Lsh},
	ast.OpRightShift: {ltac.I8Rsh, ltac.I16Rsh, ltac.I32Rsh, ltac.I64Rsh,
		ltac.I8Rsh, ltac.I16Rsh, ltac.I32Rsh, ltac.I64Rsh},
}

var fltOpTable = map[ast.ArgType][2]ltac.Op{
	ast.OpAdd: {ltac.F32Add, ltac.F64Add},
	ast.OpSub: {ltac.F32Sub, ltac.F64Sub},
	ast.OpMul: {ltac.F32Mul, ltac.F64Mul},
	ast.OpDiv: {ltac.F32Div, ltac.F64Div},
}

// opForType selects the op for an operator token applied at the given
// type. ok is false when the operator has no variant for the type.
func opForType(d DataType, t ast.ArgType) (ltac.Op, bool) {
	if d.IsArray() {
		d = d.Elem()
	}
	if d.IsFloat() {
		ops, ok := fltOpTable[t]
		if !ok {
			return ltac.Nop, false
		}
		if d == Double {
			return ops[1], true
		}
		return ops[0], true
	}

	ops, ok := opTable[t]
	if !ok {
		return ltac.Nop, false
	}
	idx := 0
	switch d {
	case Byte, UByte, Char:
		idx = 0
	case Short, UShort:
		idx = 1
	case Int, UInt:
		idx = 2
	case Int64, UInt64:
		idx = 3
	default:
		return ltac.Nop, false
	}
	if d.IsUnsigned() {
		idx += 4
	}
	return ops[idx], true
}
