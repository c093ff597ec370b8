package parser

import (
	"fmt"

	"github.com/gul-lang/gul/compiler/ast"
	"github.com/gul-lang/gul/compiler/diag"
	"github.com/gul-lang/gul/compiler/lexer"
)

// parser is a recursive-descent parser with one-token lookahead.  On
// an unexpected token it records a diagnostic and panics with sync{};
// the statement loops recover and skip to the next newline or dedent
// boundary (panic-mode recovery).
type parser struct {
	tokens []lexer.Token
	pos    int
	kind   FileKind
	errs   *diag.List
	// noStruct disables struct-literal parsing while a control-flow
	// condition is being parsed so "if x {" reads the brace as a block.
	noStruct bool
}

type sync struct{}

func (p *parser) cur() lexer.Token { return p.tokens[p.pos] }

func (p *parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	if t.Kind != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *parser) eat(k lexer.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(k lexer.Kind) lexer.Token {
	if !p.at(k) {
		p.unexpected(k.String())
	}
	return p.advance()
}

// unexpected records an UnexpectedToken diagnostic naming the expected
// set and unwinds to the nearest recovery point.
func (p *parser) unexpected(expected string) {
	t := p.cur()
	p.errs.Add(diag.UnexpectedToken,
		fmt.Sprintf("unexpected %s, expected %s", t, expected), t.Pos, t.End)
	panic(sync{})
}

// recoverStmt catches a sync panic and discards tokens through the
// next newline or up to a dedent so parsing can continue.
func (p *parser) recoverStmt(stmt *ast.Stmt) {
	if r := recover(); r != nil {
		if _, ok := r.(sync); !ok {
			panic(r)
		}
		*stmt = nil
		for {
			switch p.cur().Kind {
			case lexer.EOF, lexer.Dedent:
				return
			case lexer.Newline:
				p.advance()
				return
			}
			p.advance()
		}
	}
}

func (p *parser) parseFile() ast.Seq {
	var seq ast.Seq
	mains := 0
	for !p.at(lexer.EOF) {
		if p.eat(lexer.Newline) || p.eat(lexer.Semicolon) {
			continue
		}
		s := p.parseTopLevel()
		if s == nil {
			continue
		}
		p.checkTopLevel(s, &mains)
		seq.Append(s)
	}
	if p.kind == Main && mains == 0 && p.errs.Len() == 0 {
		p.errs.Add(diag.DisallowedTopLevel, "main file does not declare a main function", 0, 0)
	}
	return seq
}

func (p *parser) parseTopLevel() (s ast.Stmt) {
	defer p.recoverStmt(&s)
	return p.parseStatement()
}

func (p *parser) checkTopLevel(s ast.Stmt, mains *int) {
	switch p.kind {
	case Fragment:
		return
	case Main:
		switch s := s.(type) {
		case *ast.Import, *ast.Global, *ast.StructDecl, *ast.EnumDecl:
			return
		case *ast.Function:
			if s.Name.Name == "main" {
				*mains++
				if *mains > 1 {
					p.errs.Add(diag.DisallowedTopLevel,
						"duplicate main function", s.Pos(), s.Name.End())
				}
			}
			return
		}
		p.errs.AddHint(diag.DisallowedTopLevel,
			"statement not allowed at top level of a main file",
			"move it into a function body", s.Pos(), s.End())
	case Definition:
		switch s := s.(type) {
		case *ast.Import, *ast.Global, *ast.StructDecl, *ast.EnumDecl, *ast.Let:
			return
		case *ast.Function:
			p.errs.AddHint(diag.DisallowedTopLevel,
				fmt.Sprintf("function %q not allowed in a definition file", s.Name.Name),
				"definition files hold constants and type declarations only",
				s.Pos(), s.Name.End())
			return
		}
		p.errs.Add(diag.DisallowedTopLevel,
			"statement not allowed at top level of a definition file", s.Pos(), s.End())
	}
}

func (p *parser) parseStatement() ast.Stmt {
	switch p.cur().Kind {
	case lexer.KwUse:
		return p.parseImport()
	case lexer.KwGlobal:
		return p.parseGlobal()
	case lexer.KwLet:
		return p.parseLet()
	case lexer.KwVar:
		return p.parseVar()
	case lexer.KwFn:
		return p.parseFunction()
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwLoop:
		return p.parseLoop()
	case lexer.KwMatch:
		return p.parseMatch()
	case lexer.KwBreak:
		t := p.advance()
		p.endStmt()
		return &ast.Break{Kind: "Break", Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.KwContinue:
		t := p.advance()
		p.endStmt()
		return &ast.Continue{Kind: "Continue", Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.KwStruct:
		return p.parseStruct()
	case lexer.KwEnum:
		return p.parseEnum()
	}
	return p.parseSimple()
}

// endStmt consumes a statement terminator.  Dedent, closing brace, and
// EOF terminate without being consumed so the enclosing block sees
// them.
func (p *parser) endStmt() {
	switch p.cur().Kind {
	case lexer.Newline, lexer.Semicolon:
		p.advance()
	case lexer.Dedent, lexer.RBrace, lexer.EOF:
	default:
		p.unexpected("end of statement")
	}
}

func (p *parser) parseImport() ast.Stmt {
	t := p.expect(lexer.KwUse)
	var path []string
	id := p.expect(lexer.Ident)
	path = append(path, id.Text)
	end := id.End
	for p.eat(lexer.Dot) {
		id = p.expect(lexer.Ident)
		path = append(path, id.Text)
		end = id.End
	}
	p.endStmt()
	return &ast.Import{Kind: "Import", Path: path, Loc: ast.NewLoc(t.Pos, end)}
}

func (p *parser) parseGlobal() ast.Stmt {
	t := p.expect(lexer.KwGlobal)
	name := p.parseID()
	p.expect(lexer.Eq)
	value := p.parseExpr()
	p.endStmt()
	return &ast.Global{Kind: "Global", Name: name, Value: value, Loc: ast.NewLoc(t.Pos, value.End())}
}

func (p *parser) parseLet() ast.Stmt {
	t := p.expect(lexer.KwLet)
	name := p.parseID()
	p.expect(lexer.Eq)
	value := p.parseExpr()
	p.endStmt()
	return &ast.Let{Kind: "Let", Name: name, Value: value, Loc: ast.NewLoc(t.Pos, value.End())}
}

func (p *parser) parseVar() ast.Stmt {
	t := p.expect(lexer.KwVar)
	name := p.parseID()
	p.expect(lexer.Eq)
	value := p.parseExpr()
	p.endStmt()
	return &ast.Var{Kind: "Var", Name: name, Value: value, Loc: ast.NewLoc(t.Pos, value.End())}
}

func (p *parser) parseFunction() ast.Stmt {
	t := p.expect(lexer.KwFn)
	name := p.parseID()
	p.expect(lexer.LParen)
	var params []*ast.Param
	for !p.at(lexer.RParen) {
		if len(params) > 0 {
			p.expect(lexer.Comma)
		}
		params = append(params, p.parseParam())
	}
	p.expect(lexer.RParen)
	var result *ast.TypeRef
	if p.eat(lexer.Arrow) {
		result = p.parseTypeRef()
	}
	body, end := p.parseBlock()
	return &ast.Function{
		Kind:   "Function",
		Name:   name,
		Params: params,
		Result: result,
		Body:   body,
		Loc:    ast.NewLoc(t.Pos, end),
	}
}

func (p *parser) parseParam() *ast.Param {
	start := p.cur().Pos
	byRef := p.eat(lexer.Amp)
	name := p.parseID()
	var typ *ast.TypeRef
	end := name.End()
	if p.eat(lexer.Colon) {
		typ = p.parseTypeRef()
		end = typ.End()
	}
	return &ast.Param{Kind: "Param", Name: name, Type: typ, ByRef: byRef, Loc: ast.NewLoc(start, end)}
}

func (p *parser) parseReturn() ast.Stmt {
	t := p.expect(lexer.KwReturn)
	var value ast.Expr
	end := t.End
	if !p.at(lexer.Newline) && !p.at(lexer.Semicolon) && !p.at(lexer.Dedent) &&
		!p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		value = p.parseExpr()
		end = value.End()
	}
	p.endStmt()
	return &ast.Return{Kind: "Return", Value: value, Loc: ast.NewLoc(t.Pos, end)}
}

func (p *parser) parseIf() ast.Stmt {
	t := p.expect(lexer.KwIf)
	cond := p.parseCond()
	then, end := p.parseBlock()
	var els ast.Seq
	switch {
	case p.at(lexer.KwElif):
		// elif sugars to an else holding a nested if.
		p.tokens[p.pos].Kind = lexer.KwIf
		nested := p.parseIf()
		els = ast.Seq{nested}
		end = nested.End()
	case p.eat(lexer.KwElse):
		els, end = p.parseBlock()
	}
	return &ast.If{Kind: "If", Cond: cond, Then: then, Else: els, Loc: ast.NewLoc(t.Pos, end)}
}

func (p *parser) parseWhile() ast.Stmt {
	t := p.expect(lexer.KwWhile)
	cond := p.parseCond()
	body, end := p.parseBlock()
	return &ast.While{Kind: "While", Cond: cond, Body: body, Loc: ast.NewLoc(t.Pos, end)}
}

func (p *parser) parseLoop() ast.Stmt {
	t := p.expect(lexer.KwLoop)
	body, end := p.parseBlock()
	return &ast.Loop{Kind: "Loop", Body: body, Loc: ast.NewLoc(t.Pos, end)}
}

func (p *parser) parseMatch() ast.Stmt {
	t := p.expect(lexer.KwMatch)
	expr := p.parseCond()
	var arms []*ast.Arm
	var end int
	if p.eat(lexer.LBrace) {
		for !p.at(lexer.RBrace) {
			if len(arms) > 0 && !p.eat(lexer.Comma) && !p.eat(lexer.Semicolon) {
				break
			}
			if p.at(lexer.RBrace) {
				break
			}
			arms = append(arms, p.parseArm())
		}
		end = p.expect(lexer.RBrace).End
	} else {
		p.expect(lexer.Colon)
		p.expectBlockStart()
		for !p.at(lexer.Dedent) && !p.at(lexer.EOF) {
			if p.eat(lexer.Newline) || p.eat(lexer.Comma) {
				continue
			}
			arms = append(arms, p.parseArm())
		}
		end = p.expect(lexer.Dedent).Pos
	}
	p.checkArms(arms)
	return &ast.Match{Kind: "Match", Expr: expr, Arms: arms, Loc: ast.NewLoc(t.Pos, end)}
}

func (p *parser) parseArm() *ast.Arm {
	pattern := p.parsePattern()
	p.expect(lexer.FatArrow)
	var body ast.Seq
	var end int
	if p.at(lexer.LBrace) || p.at(lexer.Colon) {
		body, end = p.parseBlock()
	} else {
		e := p.parseExpr()
		body = ast.Seq{&ast.ExprStmt{Kind: "ExprStmt", Expr: e, Loc: ast.NewLoc(e.Pos(), e.End())}}
		end = e.End()
	}
	return &ast.Arm{Kind: "Arm", Pattern: pattern, Body: body, Loc: ast.NewLoc(pattern.Pos(), end)}
}

// parsePattern admits literals, identifier bindings, and the wildcard.
func (p *parser) parsePattern() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case lexer.Underscore:
		p.advance()
		return &ast.Wildcard{Kind: "Wildcard", Loc: ast.NewLoc(t.Pos, t.End)}
	case lexer.Int, lexer.Float, lexer.String, lexer.KwTrue, lexer.KwFalse, lexer.Minus:
		return p.parseUnary()
	case lexer.Ident:
		p.advance()
		return &ast.Identifier{Kind: "Identifier", Name: t.Text, Loc: ast.NewLoc(t.Pos, t.End)}
	}
	p.unexpected("match pattern")
	return nil
}

func (p *parser) checkArms(arms []*ast.Arm) {
	for i, arm := range arms {
		if _, ok := arm.Pattern.(*ast.Wildcard); ok && i != len(arms)-1 {
			p.errs.AddHint(diag.UnexpectedToken,
				"wildcard arm must be the last arm of a match",
				"move '_' below the other patterns", arm.Pos(), arm.Pattern.End())
		}
	}
}

func (p *parser) parseStruct() ast.Stmt {
	t := p.expect(lexer.KwStruct)
	name := p.parseID()
	var fields []*ast.Field
	var end int
	if p.eat(lexer.LBrace) {
		for !p.at(lexer.RBrace) {
			if len(fields) > 0 && !p.eat(lexer.Comma) && !p.eat(lexer.Semicolon) {
				break
			}
			if p.at(lexer.RBrace) {
				break
			}
			fields = append(fields, p.parseField())
		}
		end = p.expect(lexer.RBrace).End
	} else {
		p.expect(lexer.Colon)
		p.expectBlockStart()
		for !p.at(lexer.Dedent) && !p.at(lexer.EOF) {
			if p.eat(lexer.Newline) || p.eat(lexer.Comma) {
				continue
			}
			fields = append(fields, p.parseField())
		}
		end = p.expect(lexer.Dedent).Pos
	}
	return &ast.StructDecl{Kind: "StructDecl", Name: name, Fields: fields, Loc: ast.NewLoc(t.Pos, end)}
}

func (p *parser) parseField() *ast.Field {
	name := p.parseID()
	p.expect(lexer.Colon)
	typ := p.parseTypeRef()
	return &ast.Field{Kind: "Field", Name: name, Type: typ, Loc: ast.NewLoc(name.Pos(), typ.End())}
}

func (p *parser) parseEnum() ast.Stmt {
	t := p.expect(lexer.KwEnum)
	name := p.parseID()
	var variants []*ast.Variant
	var end int
	if p.eat(lexer.LBrace) {
		for !p.at(lexer.RBrace) {
			if len(variants) > 0 && !p.eat(lexer.Comma) && !p.eat(lexer.Semicolon) {
				break
			}
			if p.at(lexer.RBrace) {
				break
			}
			variants = append(variants, p.parseVariant())
		}
		end = p.expect(lexer.RBrace).End
	} else {
		p.expect(lexer.Colon)
		p.expectBlockStart()
		for !p.at(lexer.Dedent) && !p.at(lexer.EOF) {
			if p.eat(lexer.Newline) || p.eat(lexer.Comma) {
				continue
			}
			variants = append(variants, p.parseVariant())
		}
		end = p.expect(lexer.Dedent).Pos
	}
	return &ast.EnumDecl{Kind: "EnumDecl", Name: name, Variants: variants, Loc: ast.NewLoc(t.Pos, end)}
}

// parseVariant parses a bare or tuple-like enum variant.
func (p *parser) parseVariant() *ast.Variant {
	name := p.parseID()
	var elems []*ast.TypeRef
	end := name.End()
	if p.eat(lexer.LParen) {
		for !p.at(lexer.RParen) {
			if len(elems) > 0 {
				p.expect(lexer.Comma)
			}
			elems = append(elems, p.parseTypeRef())
		}
		end = p.expect(lexer.RParen).End
	}
	return &ast.Variant{Kind: "Variant", Name: name, Elems: elems, Loc: ast.NewLoc(name.Pos(), end)}
}

func (p *parser) parseTypeRef() *ast.TypeRef {
	t := p.expect(lexer.Ident)
	ref := &ast.TypeRef{Kind: "TypeRef", Name: t.Text, Loc: ast.NewLoc(t.Pos, t.End)}
	if t.Text == "list" && p.eat(lexer.LParen) {
		ref.Elem = p.parseTypeRef()
		end := p.expect(lexer.RParen).End
		ref.Loc = ast.NewLoc(t.Pos, end)
	}
	return ref
}

// parseSimple handles expression statements and the assignment forms,
// which cannot be distinguished without parsing the left-hand side
// first.
func (p *parser) parseSimple() ast.Stmt {
	e := p.parseExpr()
	if p.at(lexer.Eq) {
		p.advance()
		value := p.parseExpr()
		p.endStmt()
		switch lhs := e.(type) {
		case *ast.Identifier:
			name := &ast.ID{Kind: "ID", Name: lhs.Name, Loc: ast.NewLoc(lhs.Pos(), lhs.End())}
			return &ast.Assignment{Kind: "Assignment", Name: name, Value: value, Loc: ast.NewLoc(e.Pos(), value.End())}
		case *ast.Index:
			return &ast.SetIndex{Kind: "SetIndex", Target: lhs.Target, Index: lhs.Index, Value: value, Loc: ast.NewLoc(e.Pos(), value.End())}
		}
		p.errs.Add(diag.UnexpectedToken, "cannot assign to this expression", e.Pos(), e.End())
		return nil
	}
	p.endStmt()
	return &ast.ExprStmt{Kind: "ExprStmt", Expr: e, Loc: ast.NewLoc(e.Pos(), e.End())}
}

func (p *parser) parseID() *ast.ID {
	t := p.expect(lexer.Ident)
	return &ast.ID{Kind: "ID", Name: t.Text, Loc: ast.NewLoc(t.Pos, t.End)}
}

// parseBlock parses either a braced block or a colon-introduced
// indentation block.  A colon followed by a statement on the same line
// is a single-statement block.
func (p *parser) parseBlock() (ast.Seq, int) {
	var seq ast.Seq
	if t := p.cur(); t.Kind == lexer.LBrace {
		p.advance()
		for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
			if p.eat(lexer.Semicolon) || p.eat(lexer.Newline) {
				continue
			}
			if s := p.parseStatement(); s != nil {
				seq.Append(s)
			}
		}
		end := p.expect(lexer.RBrace).End
		return seq, end
	}
	p.expect(lexer.Colon)
	if !p.at(lexer.Newline) {
		s := p.parseStatement()
		if s == nil {
			return seq, p.cur().Pos
		}
		return ast.Seq{s}, s.End()
	}
	p.advance()
	p.expectBlockStart()
	for !p.at(lexer.Dedent) && !p.at(lexer.EOF) {
		if p.eat(lexer.Newline) || p.eat(lexer.Semicolon) {
			continue
		}
		s := p.parseNested()
		if s != nil {
			seq.Append(s)
		}
	}
	end := p.expect(lexer.Dedent).Pos
	return seq, end
}

// parseNested parses one statement inside a block with its own
// recovery point so one bad statement doesn't abandon the block.
func (p *parser) parseNested() (s ast.Stmt) {
	defer p.recoverStmt(&s)
	return p.parseStatement()
}

// expectBlockStart requires an Indent.  Note this check runs after the
// colon-newline so a missing indented body is ExpectedBlock rather
// than a generic unexpected-token error.
func (p *parser) expectBlockStart() {
	for p.eat(lexer.Newline) {
	}
	if !p.at(lexer.Indent) {
		t := p.cur()
		p.errs.AddHint(diag.ExpectedBlock,
			"expected an indented block after ':'",
			"indent the block body", t.Pos, t.End)
		panic(sync{})
	}
	p.advance()
}
