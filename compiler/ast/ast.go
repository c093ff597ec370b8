// Package ast declares the types used to represent syntax trees for
// GUL source files.
package ast

// This module is derived from the GO AST design pattern in
// https://golang.org/pkg/go/ast/
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

type Node interface {
	Pos() int // Position of first character belonging to the node.
	End() int // Position of first character immediately after the node.
}

type Loc struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

func NewLoc(pos, end int) Loc {
	return Loc{pos, end}
}

func (l Loc) Pos() int { return l.First }
func (l Loc) End() int { return l.Last }

// Stmt is the interface implemented by all statement nodes.
type Stmt interface {
	Node
	StmtAST()
}

// Seq is a sequence of statements, e.g., a block body or the top level
// of a file.
type Seq []Stmt

func (seq *Seq) Prepend(front Stmt) {
	*seq = append([]Stmt{front}, *seq...)
}

func (seq *Seq) Append(s Stmt) {
	*seq = append(*seq, s)
}

type ID struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

// Statements.  A Let binding is owned and immutable; Var is a mutable
// binding exempt from the linear-use rule.

type (
	Let struct {
		Kind  string `json:"kind"`
		Name  *ID    `json:"name"`
		Value Expr   `json:"value"`
		Loc   `json:"loc"`
	}
	Var struct {
		Kind  string `json:"kind"`
		Name  *ID    `json:"name"`
		Value Expr   `json:"value"`
		Loc   `json:"loc"`
	}
	Assignment struct {
		Kind  string `json:"kind"`
		Name  *ID    `json:"name"`
		Value Expr   `json:"value"`
		Loc   `json:"loc"`
	}
	SetIndex struct {
		Kind   string `json:"kind"`
		Target Expr   `json:"target"`
		Index  Expr   `json:"index"`
		Value  Expr   `json:"value"`
		Loc    `json:"loc"`
	}
	Function struct {
		Kind   string   `json:"kind"`
		Name   *ID      `json:"name"`
		Params []*Param `json:"params"`
		Result *TypeRef `json:"result"`
		Body   Seq      `json:"body"`
		Loc    `json:"loc"`
	}
	Return struct {
		Kind  string `json:"kind"`
		Value Expr   `json:"value"` // may be nil
		Loc   `json:"loc"`
	}
	If struct {
		Kind string `json:"kind"`
		Cond Expr   `json:"cond"`
		Then Seq    `json:"then"`
		Else Seq    `json:"else"` // nil when absent
		Loc  `json:"loc"`
	}
	While struct {
		Kind string `json:"kind"`
		Cond Expr   `json:"cond"`
		Body Seq    `json:"body"`
		Loc  `json:"loc"`
	}
	Loop struct {
		Kind string `json:"kind"`
		Body Seq    `json:"body"`
		Loc  `json:"loc"`
	}
	Match struct {
		Kind string `json:"kind"`
		Expr Expr   `json:"expr"`
		Arms []*Arm `json:"arms"`
		Loc  `json:"loc"`
	}
	Break struct {
		Kind string `json:"kind"`
		Loc  `json:"loc"`
	}
	Continue struct {
		Kind string `json:"kind"`
		Loc  `json:"loc"`
	}
	ExprStmt struct {
		Kind string `json:"kind"`
		Expr Expr   `json:"expr"`
		Loc  `json:"loc"`
	}
	StructDecl struct {
		Kind   string   `json:"kind"`
		Name   *ID      `json:"name"`
		Fields []*Field `json:"fields"`
		Loc    `json:"loc"`
	}
	EnumDecl struct {
		Kind     string     `json:"kind"`
		Name     *ID        `json:"name"`
		Variants []*Variant `json:"variants"`
		Loc      `json:"loc"`
	}
	Import struct {
		Kind string   `json:"kind"`
		Path []string `json:"path"`
		Loc  `json:"loc"`
	}
	Global struct {
		Kind  string `json:"kind"`
		Name  *ID    `json:"name"`
		Value Expr   `json:"value"`
		Loc   `json:"loc"`
	}
)

func (*Let) StmtAST()        {}
func (*Var) StmtAST()        {}
func (*Assignment) StmtAST() {}
func (*SetIndex) StmtAST()   {}
func (*Function) StmtAST()   {}
func (*Return) StmtAST()     {}
func (*If) StmtAST()         {}
func (*While) StmtAST()      {}
func (*Loop) StmtAST()       {}
func (*Match) StmtAST()      {}
func (*Break) StmtAST()      {}
func (*Continue) StmtAST()   {}
func (*ExprStmt) StmtAST()   {}
func (*StructDecl) StmtAST() {}
func (*EnumDecl) StmtAST()   {}
func (*Import) StmtAST()     {}
func (*Global) StmtAST()     {}

// Param is a function parameter.  ByRef parameters borrow their
// argument instead of consuming it.
type Param struct {
	Kind  string   `json:"kind"`
	Name  *ID      `json:"name"`
	Type  *TypeRef `json:"type"` // may be nil
	ByRef bool     `json:"by_ref"`
	Loc   `json:"loc"`
}

type Field struct {
	Kind string   `json:"kind"`
	Name *ID      `json:"name"`
	Type *TypeRef `json:"type"`
	Loc  `json:"loc"`
}

// Variant is an enum variant, either bare or tuple-like.
type Variant struct {
	Kind  string     `json:"kind"`
	Name  *ID        `json:"name"`
	Elems []*TypeRef `json:"elems"`
	Loc   `json:"loc"`
}

// TypeRef is a type written in source, resolved later.
type TypeRef struct {
	Kind string   `json:"kind"`
	Name string   `json:"name"`
	Elem *TypeRef `json:"elem"` // list element type
	Loc  `json:"loc"`
}

// Arm is one match arm.  Pattern is a literal expression, an ID
// binding, or a Wildcard.
type Arm struct {
	Kind    string `json:"kind"`
	Pattern Expr   `json:"pattern"`
	Body    Seq    `json:"body"`
	Loc     `json:"loc"`
}

// Wildcard is the "_" pattern, admissible only as the final match arm.
type Wildcard struct {
	Kind string `json:"kind"`
	TypeAnn
	Loc `json:"loc"`
}

func (*Wildcard) ExprAST() {}
