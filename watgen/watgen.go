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

// Package watgen lowers a ByteLog AST to a WebAssembly text module exposing
// main, add_fact, and has_fact over linear memory. It shares the parser and
// AST with the in-process engine but carries its own atom table — the WAT
// backend's atoms exist only to keep relation IDs (and fact atom arguments)
// stable across every add_fact/has_fact call site it emits, not to drive
// any fixpoint (see the "WAT rule lowering" design note: this backend
// stores and checks the base facts loaded by $main only).
package watgen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/bigattichouse/bytelogic/ast"
	"github.com/bigattichouse/bytelogic/atom"
)

// bucketCount is the number of hash buckets hash_fact maps into.
const bucketCount = 1000

// slotBytes is the size in bytes of one (rel, a, b) triple slot in linear
// memory.
const slotBytes = 12

// pageSize is the WebAssembly linear-memory page size.
const pageSize = 65536

// Generator lowers an ast.Program to WAT text. Errors propagate through a
// generator-local buffer, retrievable with GetError, in addition to the
// returned error.
type Generator struct {
	Atoms *atom.Table
	err   string
}

// New returns a Generator with a fresh atom table.
func New() *Generator {
	return &Generator{Atoms: atom.NewTable()}
}

// GetError returns the message from the most recent generation failure, or
// "" if none has occurred.
func (g *Generator) GetError() string {
	return g.err
}

// Generate lowers prog and streams the resulting module text to w.
func (g *Generator) Generate(prog *ast.Program, w io.Writer) error {
	facts := collectFacts(prog)
	g.internAll(prog, facts)

	pages := g.memoryPages(len(facts))

	bw := bufio.NewWriter(w)
	write := func(format string, args ...interface{}) error {
		if _, err := fmt.Fprintf(bw, format, args...); err != nil {
			g.err = "wat: write failed"
			return errors.Wrap(err, g.err)
		}
		return nil
	}

	if err := write("(module\n"); err != nil {
		return err
	}
	if err := write("  (memory (export \"memory\") %d)\n\n", pages); err != nil {
		return err
	}
	if err := g.emitHashFact(write); err != nil {
		return err
	}
	if err := g.emitAddFact(write); err != nil {
		return err
	}
	if err := g.emitHasFact(write); err != nil {
		return err
	}
	if err := g.emitMain(write, facts); err != nil {
		return err
	}
	if err := g.emitQueries(write, prog); err != nil {
		return err
	}
	if err := write(")\n"); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		g.err = "wat: write failed"
		return errors.Wrap(err, g.err)
	}
	return nil
}

func collectFacts(prog *ast.Program) []*ast.Fact {
	var facts []*ast.Fact
	prog.Walk(func(s ast.Statement) {
		if f, ok := s.(*ast.Fact); ok {
			facts = append(facts, f)
		}
	})
	return facts
}

// internAll interns every relation name and every atom argument mentioned
// anywhere in the program, so that the generator's relation-ID space is
// fully determined before any code is emitted: every add_fact/has_fact
// call site this pass produces reuses identical IDs for identical names.
func (g *Generator) internAll(prog *ast.Program, facts []*ast.Fact) {
	prog.Walk(func(s ast.Statement) {
		switch s := s.(type) {
		case *ast.RelDecl:
			g.Atoms.Intern(s.Name)
		case *ast.Rule:
			g.Atoms.Intern(s.Target)
			for _, op := range s.Body {
				switch op := op.(type) {
				case *ast.Scan:
					g.Atoms.Intern(op.Relation)
				case *ast.Join:
					g.Atoms.Intern(op.Relation)
				}
			}
			g.Atoms.Intern(s.Emit.Relation)
		case *ast.Query:
			g.Atoms.Intern(s.Relation)
		}
	})
	for _, f := range facts {
		g.Atoms.Intern(f.Relation)
		if f.AtomA != nil {
			g.Atoms.Intern(*f.AtomA)
		}
		if f.AtomB != nil {
			g.Atoms.Intern(*f.AtomB)
		}
	}
}

// memoryPages computes the page count from §4.7: enough for 3*factCount*12
// bytes of fact slots plus the bytes of every interned atom name, with one
// extra page of headroom for derivations, rounded up.
func (g *Generator) memoryPages(factCount int) int {
	totalAtomBytes := 0
	for _, name := range g.Atoms.Snapshot() {
		totalAtomBytes += len(name)
	}
	needed := 3*factCount*slotBytes + totalAtomBytes
	pages := (needed + pageSize - 1) / pageSize
	return pages + 1
}

func (g *Generator) resolveArg(num int64, atomText *string) int32 {
	if atomText != nil {
		return g.Atoms.Intern(*atomText)
	}
	return int32(num)
}

func (g *Generator) emitHashFact(write func(string, ...interface{}) error) error {
	return write(`  (func $hash_fact (param $rel i32) (param $a i32) (param $b i32) (result i32)
    (i32.rem_u
      (i32.add
        (i32.mul
          (i32.add
            (i32.mul (local.get $rel) (i32.const 31))
            (local.get $a))
          (i32.const 31))
        (local.get $b))
      (i32.const %d)))

`, bucketCount)
}

func (g *Generator) emitAddFact(write func(string, ...interface{}) error) error {
	return write(`  (func $add_fact (export "add_fact") (param $rel i32) (param $a i32) (param $b i32)
    (local $slot i32)
    (local.set $slot (i32.mul (call $hash_fact (local.get $rel) (local.get $a) (local.get $b)) (i32.const %d)))
    (i32.store (local.get $slot) (local.get $rel))
    (i32.store offset=4 (local.get $slot) (local.get $a))
    (i32.store offset=8 (local.get $slot) (local.get $b)))

`, slotBytes)
}

func (g *Generator) emitHasFact(write func(string, ...interface{}) error) error {
	return write(`  (func $has_fact (export "has_fact") (param $rel i32) (param $a i32) (param $b i32) (result i32)
    (local $slot i32)
    (local.set $slot (i32.mul (call $hash_fact (local.get $rel) (local.get $a) (local.get $b)) (i32.const %d)))
    (i32.and
      (i32.and
        (i32.eq (i32.load (local.get $slot)) (local.get $rel))
        (i32.eq (i32.load offset=4 (local.get $slot)) (local.get $a)))
      (i32.eq (i32.load offset=8 (local.get $slot)) (local.get $b))))

`, slotBytes)
}

func (g *Generator) emitMain(write func(string, ...interface{}) error, facts []*ast.Fact) error {
	if err := write("  (func $main (export \"main\")\n"); err != nil {
		return err
	}
	for _, f := range facts {
		rel := g.Atoms.Intern(f.Relation)
		a := g.resolveArg(f.ANum, f.AtomA)
		b := g.resolveArg(f.BNum, f.AtomB)
		if err := write("    (call $add_fact (i32.const %d) (i32.const %d) (i32.const %d))\n", rel, a, b); err != nil {
			return err
		}
	}
	return write("  )\n\n")
}

// emitQueries emits one $query_k helper per QUERY statement, in source
// order. Concrete/concrete queries lower to a has_fact call; any wildcard
// slot currently emits a constant-1 placeholder, per §4.7's "wildcard
// queries currently emit a constant 1 placeholder" rule — the module ABI
// this spec targets has no result-set shape, only a boolean has_fact.
func (g *Generator) emitQueries(write func(string, ...interface{}) error, prog *ast.Program) error {
	k := 0
	var err error
	prog.Walk(func(s ast.Statement) {
		if err != nil {
			return
		}
		q, ok := s.(*ast.Query)
		if !ok {
			return
		}
		aWild := q.ANum == ast.WildcardSlot && q.AtomA == nil
		bWild := q.BNum == ast.WildcardSlot && q.AtomB == nil
		if aWild || bWild {
			err = write("  (func $query_%d (result i32)\n    (i32.const 1))\n\n", k)
			k++
			return
		}
		rel := g.Atoms.Intern(q.Relation)
		a := g.resolveArg(q.ANum, q.AtomA)
		b := g.resolveArg(q.BNum, q.AtomB)
		err = write("  (func $query_%d (result i32)\n    (call $has_fact (i32.const %d) (i32.const %d) (i32.const %d)))\n\n", k, rel, a, b)
		k++
	})
	return err
}
