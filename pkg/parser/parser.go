// Package parser implements a recursive descent parser for Lila.
// Statements are line-oriented; expressions are collected as flat
// token lists in evaluation order for the lowering pass.
package parser

import (
	"fmt"
	"strconv"

	"github.com/raymyers/lila-cc/pkg/ast"
	"github.com/raymyers/lila-cc/pkg/lexer"
)

// Parser parses Lila source code into an AST
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string
}

// New creates a new Parser for the given lexer
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s",
		p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("unexpected token %q", p.curToken.Literal))
	return false
}

func (p *Parser) skipNewLines() {
	for p.curTokenIs(lexer.TokenNewLine) {
		p.nextToken()
	}
}

// ParseTree parses a whole translation unit.
func (p *Parser) ParseTree(fileName string) *ast.Tree {
	tree := &ast.Tree{FileName: fileName}

	for {
		p.skipNewLines()
		switch p.curToken.Type {
		case lexer.TokenEOF:
			return tree

		case lexer.TokenModule:
			p.nextToken()
			tree.Module = p.curToken.Literal
			p.nextToken()

		case lexer.TokenConst:
			if c, ok := p.parseConst(); ok {
				tree.Constants = append(tree.Constants, c)
			}

		case lexer.TokenExtern:
			p.nextToken()
			if fn, ok := p.parseFunc(true); ok {
				tree.Functions = append(tree.Functions, fn)
			}

		case lexer.TokenFunc:
			if fn, ok := p.parseFunc(false); ok {
				tree.Functions = append(tree.Functions, fn)
			}

		default:
			p.addError(fmt.Sprintf("unexpected token %q at top level",
				p.curToken.Literal))
			p.nextToken()
		}
	}
}

// parseConst parses `const type NAME = literal`.
func (p *Parser) parseConst() (ast.Const, bool) {
	c := ast.Const{LineNo: p.curToken.Line}
	p.nextToken()

	mod, ok := p.parseTypeMod()
	if !ok {
		return c, false
	}
	c.DataType = mod

	c.Name = p.curToken.Literal
	p.nextToken()

	if !p.expect(lexer.TokenAssign) {
		return c, false
	}

	val, ok := p.parseValue()
	if !ok {
		return c, false
	}
	c.Value = val
	return c, true
}

// parseTypeMod consumes a type keyword and an optional [] suffix.
func (p *Parser) parseTypeMod() (ast.Mod, bool) {
	if !p.curToken.Type.IsType() {
		p.addError(fmt.Sprintf("expected a type, got %q", p.curToken.Literal))
		return ast.Mod{}, false
	}

	base := typeModFor(p.curToken.Type)
	p.nextToken()

	if p.curTokenIs(lexer.TokenLBracket) && p.peekToken.Type == lexer.TokenRBracket {
		p.nextToken()
		p.nextToken()
		return ast.Mod{ModType: dynArrayOf(base)}, true
	}
	return ast.Mod{ModType: base}, true
}

// parseFunc parses a function header and, unless extern, its body up
// to the matching end.
func (p *Parser) parseFunc(isExtern bool) (ast.Func, bool) {
	fn := ast.Func{IsExtern: isExtern}

	if !p.expect(lexer.TokenFunc) {
		return fn, false
	}
	fn.Name = p.curToken.Literal
	p.nextToken()

	if p.curTokenIs(lexer.TokenLParen) {
		p.nextToken()
		for !p.curTokenIs(lexer.TokenRParen) && !p.curTokenIs(lexer.TokenEOF) {
			mod, ok := p.parseTypeMod()
			if !ok {
				return fn, false
			}
			arg := ast.NewStmt(ast.VarDec)
			arg.Name = p.curToken.Literal
			arg.LineNo = p.curToken.Line
			arg.Modifiers = []ast.Mod{mod}
			fn.Args = append(fn.Args, arg)
			p.nextToken()

			if p.curTokenIs(lexer.TokenComma) {
				p.nextToken()
			}
		}
		if !p.expect(lexer.TokenRParen) {
			return fn, false
		}
	}

	if p.curTokenIs(lexer.TokenArrow) {
		p.nextToken()
		mod, ok := p.parseTypeMod()
		if !ok {
			return fn, false
		}
		fn.Modifiers = []ast.Mod{mod}
	}

	if isExtern {
		return fn, true
	}

	p.skipNewLines()
	if !p.expect(lexer.TokenBegin) {
		return fn, false
	}

	depth := 0
	for {
		p.skipNewLines()
		if p.curTokenIs(lexer.TokenEOF) {
			p.addError(fmt.Sprintf("unterminated function %s", fn.Name))
			return fn, false
		}

		if p.curTokenIs(lexer.TokenEnd) && depth == 0 {
			end := ast.NewStmt(ast.End)
			end.LineNo = p.curToken.Line
			fn.Statements = append(fn.Statements, end)
			p.nextToken()
			return fn, true
		}

		stmt, ok := p.parseStatement()
		if !ok {
			return fn, false
		}
		switch stmt.StmtType {
		case ast.If, ast.While:
			depth++
		case ast.End:
			depth--
		}
		fn.Statements = append(fn.Statements, stmt)
	}
}

// parseStatement parses one line.
func (p *Parser) parseStatement() (ast.Stmt, bool) {
	line := p.curToken.Line

	switch {
	case p.curToken.Type.IsType():
		return p.parseVarDec()

	case p.curTokenIs(lexer.TokenIdent):
		return p.parseIdentStatement()

	case p.curTokenIs(lexer.TokenIf), p.curTokenIs(lexer.TokenElif):
		stmtType := ast.If
		if p.curTokenIs(lexer.TokenElif) {
			stmtType = ast.Elif
		}
		p.nextToken()
		stmt := ast.NewStmt(stmtType)
		stmt.LineNo = line
		ok := p.parseCondition(&stmt)
		if ok && !p.expect(lexer.TokenThen) {
			return stmt, false
		}
		return stmt, ok

	case p.curTokenIs(lexer.TokenElse):
		p.nextToken()
		stmt := ast.NewStmt(ast.Else)
		stmt.LineNo = line
		return stmt, true

	case p.curTokenIs(lexer.TokenWhile):
		p.nextToken()
		stmt := ast.NewStmt(ast.While)
		stmt.LineNo = line
		ok := p.parseCondition(&stmt)
		if ok && !p.expect(lexer.TokenDo) {
			return stmt, false
		}
		return stmt, ok

	case p.curTokenIs(lexer.TokenBreak):
		p.nextToken()
		stmt := ast.NewStmt(ast.Break)
		stmt.LineNo = line
		return stmt, true

	case p.curTokenIs(lexer.TokenContinue):
		p.nextToken()
		stmt := ast.NewStmt(ast.Continue)
		stmt.LineNo = line
		return stmt, true

	case p.curTokenIs(lexer.TokenReturn):
		p.nextToken()
		stmt := ast.NewStmt(ast.Return)
		stmt.LineNo = line
		args, ok := p.parseExprList()
		stmt.Args = args
		return stmt, ok

	case p.curTokenIs(lexer.TokenExit):
		p.nextToken()
		stmt := ast.NewStmt(ast.ExitStmt)
		stmt.Name = "exit"
		stmt.LineNo = line
		if p.curTokenIs(lexer.TokenLParen) {
			p.nextToken()
			if !p.curTokenIs(lexer.TokenRParen) {
				val, ok := p.parseValue()
				if !ok {
					return stmt, false
				}
				stmt.Args = append(stmt.Args, val)
			}
			if !p.expect(lexer.TokenRParen) {
				return stmt, false
			}
		}
		return stmt, true

	case p.curTokenIs(lexer.TokenEnd):
		p.nextToken()
		stmt := ast.NewStmt(ast.End)
		stmt.LineNo = line
		return stmt, true
	}

	p.addError(fmt.Sprintf("unexpected token %q", p.curToken.Literal))
	return ast.Stmt{}, false
}

// parseVarDec parses `type name = expr`. A declaration whose
// initialiser is an allocation promotes the type to its array form.
func (p *Parser) parseVarDec() (ast.Stmt, bool) {
	stmt := ast.NewStmt(ast.VarDec)
	stmt.LineNo = p.curToken.Line

	mod, ok := p.parseTypeMod()
	if !ok {
		return stmt, false
	}

	stmt.Name = p.curToken.Literal
	p.nextToken()

	if !p.expect(lexer.TokenAssign) {
		return stmt, false
	}

	args, ok := p.parseExprList()
	if !ok {
		return stmt, false
	}
	stmt.Args = args

	if len(args) == 1 && args[0].ArgType == ast.Array {
		mod.ModType = dynArrayOf(mod.ModType)
	}
	stmt.Modifiers = []ast.Mod{mod}
	return stmt, true
}

// parseIdentStatement parses calls, assignments and array-element
// assignments, all of which open with an identifier.
func (p *Parser) parseIdentStatement() (ast.Stmt, bool) {
	name := p.curToken.Literal
	line := p.curToken.Line
	p.nextToken()

	switch p.curToken.Type {
	case lexer.TokenLParen:
		stmt := ast.NewStmt(ast.FuncCall)
		stmt.Name = name
		stmt.LineNo = line
		args, ok := p.parseCallArgs()
		stmt.Args = args
		return stmt, ok

	case lexer.TokenLBracket:
		p.nextToken()
		stmt := ast.NewStmt(ast.ArrayAssign)
		stmt.Name = name
		stmt.LineNo = line

		idx, ok := p.parseValue()
		if !ok {
			return stmt, false
		}
		stmt.SubArgs = append(stmt.SubArgs, idx)

		if !p.expect(lexer.TokenRBracket) || !p.expect(lexer.TokenAssign) {
			return stmt, false
		}

		args, ok := p.parseExprList()
		stmt.Args = args
		return stmt, ok

	case lexer.TokenAssign:
		p.nextToken()
		stmt := ast.NewStmt(ast.VarAssign)
		stmt.Name = name
		stmt.LineNo = line
		args, ok := p.parseExprList()
		stmt.Args = args
		return stmt, ok
	}

	p.addError(fmt.Sprintf("unexpected token %q after %s",
		p.curToken.Literal, name))
	return ast.Stmt{}, false
}

// parseCallArgs parses a parenthesised, comma-separated value list.
func (p *Parser) parseCallArgs() ([]ast.Arg, bool) {
	var args []ast.Arg

	if !p.expect(lexer.TokenLParen) {
		return nil, false
	}
	for !p.curTokenIs(lexer.TokenRParen) && !p.curTokenIs(lexer.TokenEOF) {
		val, ok := p.parseValue()
		if !ok {
			return args, false
		}
		args = append(args, val)
		if p.curTokenIs(lexer.TokenComma) {
			p.nextToken()
		}
	}
	return args, p.expect(lexer.TokenRParen)
}

// parseCondition parses `value op value` into a three-token list.
func (p *Parser) parseCondition(stmt *ast.Stmt) bool {
	lhs, ok := p.parseValue()
	if !ok {
		return false
	}

	op, isOp := condOps[p.curToken.Type]
	if !isOp {
		p.addError(fmt.Sprintf("expected a comparison operator, got %q",
			p.curToken.Literal))
		return false
	}
	p.nextToken()

	rhs, ok := p.parseValue()
	if !ok {
		return false
	}

	stmt.Args = []ast.Arg{lhs, ast.NewArg(op), rhs}
	return true
}

var condOps = map[lexer.TokenType]ast.ArgType{
	lexer.TokenEq: ast.OpEq,
	lexer.TokenNe: ast.OpNeq,
	lexer.TokenLt: ast.OpLt,
	lexer.TokenLe: ast.OpLte,
	lexer.TokenGt: ast.OpGt,
	lexer.TokenGe: ast.OpGte,
}

var exprOps = map[lexer.TokenType]ast.ArgType{
	lexer.TokenPlus:    ast.OpAdd,
	lexer.TokenMinus:   ast.OpSub,
	lexer.TokenStar:    ast.OpMul,
	lexer.TokenSlash:   ast.OpDiv,
	lexer.TokenPercent: ast.OpMod,
	lexer.TokenAmpersand: ast.OpAnd,
	lexer.TokenPipe:      ast.OpOr,
	lexer.TokenCaret:     ast.OpXor,
	lexer.TokenShl:       ast.OpLeftShift,
	lexer.TokenShr:       ast.OpRightShift,
}

// parseExprList collects operands and operators until the end of the
// line, in source order. No precedence is applied; the list is the
// evaluation order the lowering pass consumes.
func (p *Parser) parseExprList() ([]ast.Arg, bool) {
	var args []ast.Arg

	for !p.curTokenIs(lexer.TokenNewLine) && !p.curTokenIs(lexer.TokenEOF) {
		if op, isOp := exprOps[p.curToken.Type]; isOp {
			args = append(args, ast.NewArg(op))
			p.nextToken()
			continue
		}

		val, ok := p.parseValue()
		if !ok {
			return args, false
		}
		args = append(args, val)
	}
	return args, true
}

// parseValue parses one operand: a literal, an identifier with an
// optional subscript or call, or an array allocation.
func (p *Parser) parseValue() (ast.Arg, bool) {
	switch p.curToken.Type {
	case lexer.TokenInt:
		v, err := strconv.ParseUint(p.curToken.Literal, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("bad integer literal %q", p.curToken.Literal))
			return ast.Arg{}, false
		}
		p.nextToken()
		return ast.IntArg(v), true

	case lexer.TokenFloat:
		v, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.addError(fmt.Sprintf("bad float literal %q", p.curToken.Literal))
			return ast.Arg{}, false
		}
		p.nextToken()
		arg := ast.NewArg(ast.FloatL)
		arg.F64Val = v
		return arg, true

	case lexer.TokenString:
		arg := ast.StringArg(p.curToken.Literal)
		p.nextToken()
		return arg, true

	case lexer.TokenChar:
		arg := ast.NewArg(ast.CharL)
		for _, r := range p.curToken.Literal {
			arg.CharVal = r
			break
		}
		p.nextToken()
		return arg, true

	case lexer.TokenArray:
		p.nextToken()
		if !p.expect(lexer.TokenLParen) {
			return ast.Arg{}, false
		}
		size, ok := p.parseValue()
		if !ok {
			return ast.Arg{}, false
		}
		if !p.expect(lexer.TokenRParen) {
			return ast.Arg{}, false
		}
		arg := ast.NewArg(ast.Array)
		arg.SubArgs = []ast.Arg{size}
		return arg, true

	case lexer.TokenIdent:
		arg := ast.IdArg(p.curToken.Literal)
		p.nextToken()

		if p.curTokenIs(lexer.TokenLBracket) {
			p.nextToken()
			idx, ok := p.parseValue()
			if !ok {
				return arg, false
			}
			arg.SubArgs = []ast.Arg{idx}
			if !p.expect(lexer.TokenRBracket) {
				return arg, false
			}
		} else if p.curTokenIs(lexer.TokenLParen) {
			sub, ok := p.parseCallArgs()
			if !ok {
				return arg, false
			}
			arg.SubArgs = sub
		}
		return arg, true
	}

	p.addError(fmt.Sprintf("unexpected token %q in expression",
		p.curToken.Literal))
	return ast.Arg{}, false
}

func typeModFor(t lexer.TokenType) ast.ModType {
	switch t {
	case lexer.TokenByte:
		return ast.Byte
	case lexer.TokenUByte:
		return ast.UByte
	case lexer.TokenShort:
		return ast.Short
	case lexer.TokenUShort:
		return ast.UShort
	case lexer.TokenIntT:
		return ast.Int
	case lexer.TokenUInt:
		return ast.UInt
	case lexer.TokenInt64:
		return ast.Int64
	case lexer.TokenUInt64:
		return ast.UInt64
	case lexer.TokenFloatT:
		return ast.Float
	case lexer.TokenDouble:
		return ast.Double
	case lexer.TokenCharT:
		return ast.Char
	case lexer.TokenStr:
		return ast.Str
	}
	return ast.NoMod
}

func dynArrayOf(t ast.ModType) ast.ModType {
	switch t {
	case ast.Byte:
		return ast.ByteDynArray
	case ast.UByte:
		return ast.UByteDynArray
	case ast.Short:
		return ast.ShortDynArray
	case ast.UShort:
		return ast.UShortDynArray
	case ast.Int:
		return ast.IntDynArray
	case ast.UInt:
		return ast.UIntDynArray
	case ast.Int64:
		return ast.I64DynArray
	case ast.UInt64:
		return ast.U64DynArray
	case ast.Float:
		return ast.FloatDynArray
	case ast.Double:
		return ast.DoubleDynArray
	}
	return t
}
