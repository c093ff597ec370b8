package parser

import (
	"github.com/gul-lang/gul/compiler/ast"
	"github.com/gul-lang/gul/compiler/lexer"
)

// Binary operator precedence, loosest first: ||, &&, (== != in),
// (< <= > >=), (+ -), (* / %).  Unary and postfix operators bind
// tighter and are handled below the climb.
var binaryLevels = [][]lexer.Kind{
	{lexer.OrOr},
	{lexer.AndAnd},
	{lexer.EqEq, lexer.BangEq, lexer.KwIn},
	{lexer.Lt, lexer.LtEq, lexer.Gt, lexer.GtEq},
	{lexer.Plus, lexer.Minus},
	{lexer.Star, lexer.Slash, lexer.Percent},
}

var binaryOps = map[lexer.Kind]string{
	lexer.OrOr:    "||",
	lexer.AndAnd:  "&&",
	lexer.EqEq:    "==",
	lexer.BangEq:  "!=",
	lexer.KwIn:    "in",
	lexer.Lt:      "<",
	lexer.LtEq:    "<=",
	lexer.Gt:      ">",
	lexer.GtEq:    ">=",
	lexer.Plus:    "+",
	lexer.Minus:   "-",
	lexer.Star:    "*",
	lexer.Slash:   "/",
	lexer.Percent: "%",
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseBinary(0)
}

// parseCond parses a control-flow condition with struct literals
// disabled so the following brace reads as a block.
func (p *parser) parseCond() ast.Expr {
	saved := p.noStruct
	p.noStruct = true
	e := p.parseExpr()
	p.noStruct = saved
	return e
}

func (p *parser) parseBinary(level int) ast.Expr {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	lhs := p.parseBinary(level + 1)
	for {
		kind := p.cur().Kind
		if !kindIn(kind, binaryLevels[level]) {
			return lhs
		}
		p.advance()
		rhs := p.parseBinary(level + 1)
		lhs = &ast.BinaryExpr{
			Kind: "BinaryExpr",
			Op:   binaryOps[kind],
			LHS:  lhs,
			RHS:  rhs,
			Loc:  ast.NewLoc(lhs.Pos(), rhs.End()),
		}
	}
}

func kindIn(k lexer.Kind, ks []lexer.Kind) bool {
	for _, other := range ks {
		if k == other {
			return true
		}
	}
	return false
}

func (p *parser) parseUnary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case lexer.Minus:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Kind: "UnaryExpr", Op: "-", Operand: operand, Loc: ast.NewLoc(t.Pos, operand.End())}
	case lexer.Bang:
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Kind: "UnaryExpr", Op: "!", Operand: operand, Loc: ast.NewLoc(t.Pos, operand.End())}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of
// call, index, and dot operators.
func (p *parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case lexer.LParen:
			p.advance()
			args, end := p.parseArgs(lexer.RParen)
			e = &ast.Call{Kind: "Call", Callee: e, Args: args, Loc: ast.NewLoc(e.Pos(), end)}
		case lexer.LBracket:
			p.advance()
			index := p.parseExpr()
			end := p.expect(lexer.RBracket).End
			e = &ast.Index{Kind: "Index", Target: e, Index: index, Loc: ast.NewLoc(e.Pos(), end)}
		case lexer.Dot:
			p.advance()
			name := p.parseID()
			if p.eat(lexer.LParen) {
				args, end := p.parseArgs(lexer.RParen)
				e = &ast.MethodCall{Kind: "MethodCall", Receiver: e, Name: name, Args: args, Loc: ast.NewLoc(e.Pos(), end)}
			} else {
				e = &ast.FieldAccess{Kind: "FieldAccess", Target: e, Name: name, Loc: ast.NewLoc(e.Pos(), name.End())}
			}
		default:
			return e
		}
	}
}

func (p *parser) parseArgs(close lexer.Kind) ([]ast.Expr, int) {
	var args []ast.Expr
	for !p.at(close) {
		if len(args) > 0 {
			p.expect(lexer.Comma)
		}
		args = append(args, p.parseExprNoGuard())
	}
	end := p.expect(close).End
	return args, end
}

// parseExprNoGuard parses an expression with struct literals
// re-enabled; bracketed positions are never block-ambiguous.
func (p *parser) parseExprNoGuard() ast.Expr {
	saved := p.noStruct
	p.noStruct = false
	e := p.parseExpr()
	p.noStruct = saved
	return e
}

func (p *parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case lexer.Int:
		p.advance()
		return &ast.IntLit{Kind: "IntLit", Text: t.Text, Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.Float:
		p.advance()
		return &ast.FloatLit{Kind: "FloatLit", Text: t.Text, Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.String:
		p.advance()
		return &ast.StringLit{Kind: "StringLit", Value: t.Text, Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.KwTrue:
		p.advance()
		return &ast.BoolLit{Kind: "BoolLit", Value: true, Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.KwFalse:
		p.advance()
		return &ast.BoolLit{Kind: "BoolLit", Value: false, Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.Underscore:
		p.advance()
		return &ast.Wildcard{Kind: "Wildcard", Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.Ident:
		p.advance()
		if p.at(lexer.LBrace) && !p.noStruct {
			return p.parseStructLiteral(t)
		}
		return &ast.Identifier{Kind: "Identifier", Name: t.Text, Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.LParen:
		p.advance()
		e := p.parseExprNoGuard()
		p.expect(lexer.RParen)
		return e
	case lexer.LBracket:
		p.advance()
		items, end := p.parseArgs(lexer.RBracket)
		return &ast.List{Kind: "List", Items: items, Loc: ast.NewLoc(t.Pos, end)}
	}
	p.unexpected("an expression")
	return nil
}

func (p *parser) parseStructLiteral(name lexer.Token) ast.Expr {
	id := &ast.ID{Kind: "ID", Name: name.Text, Loc: ast.NewLoc(name.Pos, name.End)}
	p.expect(lexer.LBrace)
	var fields []*ast.FieldValue
	for !p.at(lexer.RBrace) {
		if len(fields) > 0 {
			p.expect(lexer.Comma)
		}
		fname := p.parseID()
		p.expect(lexer.Colon)
		value := p.parseExprNoGuard()
		fields = append(fields, &ast.FieldValue{
			Kind:  "FieldValue",
			Name:  fname,
			Value: value,
			Loc:   ast.NewLoc(fname.Pos(), value.End()),
		})
	}
	end := p.expect(lexer.RBrace).End
	return &ast.StructLiteral{Kind: "StructLiteral", Name: id, Fields: fields, Loc: ast.NewLoc(name.Pos, end)}
}
