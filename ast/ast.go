// Copyright (c) 2014, Kevin Walsh.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ast defines the ByteLog abstract syntax tree. The tree is a
// strict hierarchy: Program owns Statements, Rule owns BodyOps and an Emit;
// there are no back-pointers and no sharing, so the root can be discarded
// to free everything beneath it.
package ast

import (
	"bytes"
	"fmt"
)

// Pos is a source position, 1-based in both dimensions. Every node carries
// one; it is the only cross-cutting attribute nodes share.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// WildcardSlot is the sentinel numeric value denoting "?" in a Query
// argument. A Scan without a match variable is marked by a nil MatchVar
// instead. See the "Sentinel values" design note: real atom IDs and
// registers are always non-negative.
const WildcardSlot = -1

// Statement is one top-level ByteLog statement.
type Statement interface {
	Pos() Pos
	String() string
	isStatement()
}

// Program is an ordered sequence of statements, in source order.
type Program struct {
	Statements []Statement
}

// Walk calls visit for each statement in source order. Both the engine's
// Load pass and the WAT generator traverse the program this way, so the two
// back ends share one traversal idiom.
func (p *Program) Walk(visit func(Statement)) {
	for _, s := range p.Statements {
		visit(s)
	}
}

func (p *Program) String() string {
	var buf bytes.Buffer
	for _, s := range p.Statements {
		fmt.Fprintln(&buf, s.String())
	}
	return buf.String()
}

// RelDecl declares a binary relation name.
type RelDecl struct {
	PosVal Pos
	Name   string
}

func (n *RelDecl) Pos() Pos      { return n.PosVal }
func (n *RelDecl) isStatement()  {}
func (n *RelDecl) String() string {
	return fmt.Sprintf("REL %s", n.Name)
}

// Fact asserts a ground tuple over relation. AtomA/AtomB are non-nil exactly
// when the corresponding slot was parsed as an identifier; ANum/BNum hold
// the integer literal for integer slots. For atom slots the parser leaves
// the numeric slot sentinel-set (0), and the engine and WAT generator
// intern the atom text when they use the fact; the interned ID is not
// written back into ANum/BNum.
type Fact struct {
	PosVal   Pos
	Relation string
	ANum     int64
	BNum     int64
	AtomA    *string
	AtomB    *string
}

func (n *Fact) Pos() Pos     { return n.PosVal }
func (n *Fact) isStatement() {}
func (n *Fact) String() string {
	return fmt.Sprintf("FACT %s %s %s", n.Relation, argString(n.ANum, n.AtomA), argString(n.BNum, n.AtomB))
}

// Query resolves a pattern against a relation. A numeric slot of
// WildcardSlot denotes "?" in that position, with the associated atom also
// absent.
type Query struct {
	PosVal   Pos
	Relation string
	ANum     int64
	BNum     int64
	AtomA    *string
	AtomB    *string
}

func (n *Query) Pos() Pos     { return n.PosVal }
func (n *Query) isStatement() {}
func (n *Query) String() string {
	return fmt.Sprintf("QUERY %s %s %s", n.Relation, queryArgString(n.ANum, n.AtomA), queryArgString(n.BNum, n.AtomB))
}

// Solve triggers (or, after the first time, idempotently re-confirms) the
// fixpoint computation.
type Solve struct {
	PosVal Pos
}

func (n *Solve) Pos() Pos      { return n.PosVal }
func (n *Solve) isStatement()  {}
func (n *Solve) String() string {
	return "SOLVE"
}

// Rule derives new facts for Target from a conjunction of BodyOps, ending
// in an Emit. The first BodyOp is always a Scan (the parser/validator
// enforce this as a static check).
type Rule struct {
	PosVal Pos
	Target string
	Body   []BodyOp
	Emit   Emit
}

func (n *Rule) Pos() Pos     { return n.PosVal }
func (n *Rule) isStatement() {}
func (n *Rule) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "RULE %s:", n.Target)
	for _, op := range n.Body {
		fmt.Fprintf(&buf, " %s,", op.String())
	}
	fmt.Fprintf(&buf, " %s", n.Emit.String())
	return buf.String()
}

// BodyOp is one operation in a rule body: Scan or Join.
type BodyOp interface {
	Pos() Pos
	String() string
	isBodyOp()
}

// Scan iterates every fact in Relation. If MatchVar is non-nil, the scanned
// (a, b) pair is filtered to those whose a equals the current binding for
// *MatchVar, and only b is bound into a fresh register; otherwise both
// columns are bound into two fresh registers.
type Scan struct {
	PosVal   Pos
	Relation string
	MatchVar *int
}

func (n *Scan) Pos() Pos   { return n.PosVal }
func (n *Scan) isBodyOp()  {}
func (n *Scan) String() string {
	if n.MatchVar == nil {
		return fmt.Sprintf("SCAN %s", n.Relation)
	}
	return fmt.Sprintf("SCAN %s MATCH $%d", n.Relation, *n.MatchVar)
}

// Join looks up facts in Relation whose first column equals the current
// binding for MatchVar, binding the second column into a fresh register.
type Join struct {
	PosVal   Pos
	Relation string
	MatchVar int
}

func (n *Join) Pos() Pos   { return n.PosVal }
func (n *Join) isBodyOp()  {}
func (n *Join) String() string {
	return fmt.Sprintf("JOIN %s $%d", n.Relation, n.MatchVar)
}

// Emit inserts (Relation, env[VarA], env[VarB]) whenever the enclosing
// rule's body is fully satisfied.
type Emit struct {
	PosVal   Pos
	Relation string
	VarA     int
	VarB     int
}

func (n Emit) Pos() Pos { return n.PosVal }
func (n Emit) String() string {
	return fmt.Sprintf("EMIT %s $%d $%d", n.Relation, n.VarA, n.VarB)
}

func argString(n int64, atom *string) string {
	if atom != nil {
		return *atom
	}
	return fmt.Sprintf("%d", n)
}

func queryArgString(n int64, atom *string) string {
	if n == WildcardSlot && atom == nil {
		return "?"
	}
	return argString(n, atom)
}
