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

// Package engine computes the least fixed point of a ByteLog program's
// rules over its asserted facts, and answers queries against the result.
//
// Execution runs in three passes, in order: Load (intern and assert every
// Fact), Solve (run every Rule to a fixpoint by naive evaluation, re-scanning
// the whole fact DB on every pass, the first time a SOLVE statement is
// seen), and Query resolution (answer every QUERY in
// source order). The engine owns the atom table and fact DB for the
// duration; the AST is only borrowed.
package engine

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/bigattichouse/bytelogic/ast"
	"github.com/bigattichouse/bytelogic/atom"
	"github.com/bigattichouse/bytelogic/factdb"
)

// RegisterWidth is the fixed width of the per-rule-evaluation binding
// environment, i.e. how many distinct $k registers a single rule body may
// use. Sixteen registers is generous headroom for any rule body this
// grammar can express: each body op binds at most two fresh registers, so
// RegisterWidth/2 body ops would have to appear in one rule before this
// limit could ever be reached.
const RegisterWidth = 16

// ResultKind distinguishes the three query-resolution shapes from §4.6.
type ResultKind int

const (
	// Membership is the concrete/concrete pattern: a single true/false.
	Membership ResultKind = iota
	// Column is the one-wildcard pattern: a set of free-column values.
	Column
	// Relation is the wildcard/wildcard pattern: the entire relation.
	Relation
)

// Result is the materialized answer to one Query statement, in the order
// the matching facts were inserted.
type Result struct {
	Query  *ast.Query
	Kind   ResultKind
	Found  bool
	Values []int64
	Pairs  []factdb.Pair
}

// Engine owns an atom table, a fact DB, and a borrowed program for the
// duration of execution.
type Engine struct {
	Atoms   *atom.Table
	DB      *factdb.DB
	Program *ast.Program
	Results []Result

	rules     []*ast.Rule
	solved    bool
	logger    hclog.Logger
	lastError string
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the engine's diagnostic logger. The default is a
// logger named "bytelog-engine" at Info level.
func WithLogger(l hclog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an Engine over prog, with a fresh atom table and fact DB.
func New(prog *ast.Program, opts ...Option) *Engine {
	e := &Engine{
		Atoms:   atom.NewTable(),
		DB:      factdb.New(),
		Program: prog,
		logger:  hclog.New(&hclog.LoggerOptions{Name: "bytelog-engine", Level: hclog.Info}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetError returns the message from the most recent fatal execution error,
// or "" if none has occurred.
func (e *Engine) GetError() string {
	return e.lastError
}

func (e *Engine) fatalf(format string, args ...interface{}) error {
	e.lastError = fmt.Sprintf(format, args...)
	return fmt.Errorf("%s", e.lastError)
}

// relID interns name into the atom table. Every relation name referenced
// anywhere in the program — whether or not it ever receives a fact — gets
// a stable ID this way.
func (e *Engine) relID(name string) int32 {
	return e.Atoms.Intern(name)
}

// resolveArg returns the numeric value for a fact/query argument slot,
// interning atomText if present.
func (e *Engine) resolveArg(num int64, atomText *string) int64 {
	if atomText != nil {
		return int64(e.Atoms.Intern(*atomText))
	}
	return num
}

// Run executes the whole program: Load, then Solve on the first SOLVE
// statement, then resolve every Query in source order. Results accumulates
// in e.Results.
func (e *Engine) Run() error {
	e.load()
	for _, s := range e.Program.Statements {
		if _, ok := s.(*ast.Solve); ok {
			if err := e.solveOnce(); err != nil {
				return err
			}
		}
	}
	for _, s := range e.Program.Statements {
		if q, ok := s.(*ast.Query); ok {
			e.Results = append(e.Results, e.resolveQuery(q))
		}
	}
	return nil
}

// load is pass 1: intern and assert every Fact, and intern every relation
// name mentioned anywhere (RelDecl, Rule target/body/emit) so its atom ID
// is stable even if it never appears in a fact.
func (e *Engine) load() {
	e.Program.Walk(func(s ast.Statement) {
		switch s := s.(type) {
		case *ast.RelDecl:
			e.relID(s.Name)
		case *ast.Fact:
			rel := e.relID(s.Relation)
			a := e.resolveArg(s.ANum, s.AtomA)
			b := e.resolveArg(s.BNum, s.AtomB)
			e.DB.Add(rel, a, b)
		case *ast.Rule:
			e.relID(s.Target)
			for _, op := range s.Body {
				switch op := op.(type) {
				case *ast.Scan:
					e.relID(op.Relation)
				case *ast.Join:
					e.relID(op.Relation)
				}
			}
			e.relID(s.Emit.Relation)
			e.rules = append(e.rules, s)
		}
	})
}

// solveOnce runs the fixpoint computation the first time it is called;
// subsequent calls are no-ops, matching the spec's "subsequent SOLVEs are
// idempotent after fixpoint" rule.
func (e *Engine) solveOnce() error {
	if e.solved {
		return nil
	}
	pass := 0
	for {
		pass++
		productive := false
		for _, r := range e.rules {
			p, err := e.evalRule(r)
			if err != nil {
				return err
			}
			if p {
				productive = true
			}
		}
		e.logger.Debug("fixpoint pass complete", "pass", pass, "productive", productive)
		if !productive {
			break
		}
	}
	e.logger.Info("fixpoint converged", "passes", pass, "rules", len(e.rules))
	e.solved = true
	return nil
}

// evalRule runs one rule's body as a nested-loop relational join over the
// current fact DB, emitting a derived tuple each time the body is fully
// satisfied. It reports whether any emitted tuple was novel.
func (e *Engine) evalRule(r *ast.Rule) (bool, error) {
	var env [RegisterWidth]int64
	productive := false

	var step func(i, next int) error
	step = func(i, next int) error {
		if i == len(r.Body) {
			rel := e.relID(r.Emit.Relation)
			a := env[r.Emit.VarA]
			b := env[r.Emit.VarB]
			if e.DB.Add(rel, a, b) {
				productive = true
			}
			return nil
		}

		switch op := r.Body[i].(type) {
		case *ast.Scan:
			rel, ok := e.Atoms.Lookup(op.Relation)
			if !ok {
				return nil // unasserted relation: zero matches, not an error
			}
			if op.MatchVar == nil {
				if next+1 >= RegisterWidth {
					return e.fatalf("at %s: rule %q overflows the %d-register environment", op.Pos(), r.Target, RegisterWidth)
				}
				for _, pair := range e.DB.Iterate(rel) {
					env[next] = pair.A
					env[next+1] = pair.B
					if err := step(i+1, next+2); err != nil {
						return err
					}
				}
				return nil
			}
			if next >= RegisterWidth {
				return e.fatalf("at %s: rule %q overflows the %d-register environment", op.Pos(), r.Target, RegisterWidth)
			}
			for _, b := range e.DB.IterateByFirst(rel, env[*op.MatchVar]) {
				env[next] = b
				if err := step(i+1, next+1); err != nil {
					return err
				}
			}
			return nil
		case *ast.Join:
			rel, ok := e.Atoms.Lookup(op.Relation)
			if !ok {
				return nil
			}
			if next >= RegisterWidth {
				return e.fatalf("at %s: rule %q overflows the %d-register environment", op.Pos(), r.Target, RegisterWidth)
			}
			for _, b := range e.DB.IterateByFirst(rel, env[op.MatchVar]) {
				env[next] = b
				if err := step(i+1, next+1); err != nil {
					return err
				}
			}
			return nil
		default:
			return e.fatalf("at %s: unknown body operation in rule %q", r.Body[i].Pos(), r.Target)
		}
	}

	if err := step(0, 0); err != nil {
		return false, err
	}
	return productive, nil
}

// resolveQuery answers a single Query per the pattern table in §4.6:
// concrete/concrete is a membership test, one wildcard projects the free
// column, and wildcard/wildcard returns the whole relation. Queries on a
// relation that was never asserted resolve to the empty result, never an
// error.
func (e *Engine) resolveQuery(q *ast.Query) Result {
	rel := e.relID(q.Relation)
	aWild := q.ANum == ast.WildcardSlot && q.AtomA == nil
	bWild := q.BNum == ast.WildcardSlot && q.AtomB == nil

	switch {
	case !aWild && !bWild:
		a := e.resolveArg(q.ANum, q.AtomA)
		b := e.resolveArg(q.BNum, q.AtomB)
		return Result{Query: q, Kind: Membership, Found: e.DB.Contains(rel, a, b)}
	case !aWild && bWild:
		a := e.resolveArg(q.ANum, q.AtomA)
		return Result{Query: q, Kind: Column, Values: e.DB.IterateByFirst(rel, a)}
	case aWild && !bWild:
		b := e.resolveArg(q.BNum, q.AtomB)
		return Result{Query: q, Kind: Column, Values: e.DB.IterateBySecond(rel, b)}
	default:
		return Result{Query: q, Kind: Relation, Pairs: e.DB.Iterate(rel)}
	}
}
